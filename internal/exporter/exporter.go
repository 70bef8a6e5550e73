package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cgmcli/internal/config"
	"cgmcli/internal/dataprocessing"
	apperrors "cgmcli/internal/errors"
	"cgmcli/internal/render"
	"cgmcli/pkg/contracts/domain"
)

// Supported dashboard formats.
const (
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatHTML = "html"
)

// Options configures dashboard assembly.
type Options struct {
	// Overview prepends a whole-range panel above the day panels.
	Overview bool

	// Title heads the HTML page and PDF. Empty uses a default.
	Title string
}

// Exporter assembles rendered panels into one dashboard artifact.
type Exporter struct {
	logger   *slog.Logger
	renderer *render.Renderer
	paths    *config.Paths
	opts     Options
}

// New creates a dashboard exporter.
func New(logger *slog.Logger, renderer *render.Renderer, paths *config.Paths, opts Options) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = "Glucose dashboard"
	}
	return &Exporter{logger: logger, renderer: renderer, paths: paths, opts: opts}
}

// ExportDashboard writes the dashboard in the requested format and
// returns the artifact path and its size in bytes.
func (e *Exporter) ExportDashboard(ctx context.Context, dataset *dataprocessing.MergedDataset, summaries []domain.DailySummary, agg dataprocessing.RangeSummary, format string) (string, int64, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatPNG:
		data, err = e.composePNG(ctx, dataset, summaries, agg)
	case FormatHTML:
		data, err = e.buildHTML(dataset, summaries, agg)
	case FormatPDF:
		var html []byte
		if html, err = e.buildHTML(dataset, summaries, agg); err == nil {
			data, err = e.printPDF(ctx, html)
		}
	default:
		return "", 0, apperrors.NewExportError(
			fmt.Sprintf("unsupported export format %q (want png, pdf or html)", format), nil)
	}
	if err != nil {
		return "", 0, err
	}

	path := e.paths.DashboardPath(format)
	size, err := e.writeArtifact(path, data)
	if err != nil {
		return "", 0, err
	}

	e.logger.InfoContext(ctx, "dashboard exported",
		slog.String("format", format),
		slog.String("path", path),
		slog.Int64("bytes", size),
		slog.Int("days", len(dataset.Days)))
	return path, size, nil
}

// writeArtifact persists the artifact, refusing to leave an empty file
// behind.
func (e *Exporter) writeArtifact(path string, data []byte) (int64, error) {
	if len(data) == 0 {
		return 0, apperrors.NewExportError(fmt.Sprintf("empty artifact for %s", path), nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, apperrors.NewExportError(fmt.Sprintf("create output directory for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, apperrors.NewExportError(fmt.Sprintf("write artifact %s", path), err)
	}
	return int64(len(data)), nil
}
