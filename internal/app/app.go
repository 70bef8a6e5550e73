package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"cgmcli/internal/config"
	"cgmcli/internal/dataprocessing"
	apperrors "cgmcli/internal/errors"
	"cgmcli/internal/exporter"
	"cgmcli/internal/files"
	"cgmcli/internal/infrastructure"
	"cgmcli/internal/loader"
	"cgmcli/internal/render"
	"cgmcli/pkg/contracts/domain"
)

// Stage names used in logs, spans and metric labels.
const (
	StageLoad      = "load"
	StageMerge     = "merge"
	StageSummarize = "summarize"
	StageExport    = "export"
)

// Result carries everything one pipeline run produced.
type Result struct {
	RunID  string
	Format string
	Unit   domain.Unit

	Summaries []domain.DailySummary
	Aggregate dataprocessing.RangeSummary
	Quality   domain.QualityReport

	// LoadResults holds per-source row and skip counts.
	LoadResults map[domain.Source]loader.LoadResult

	// ArtifactPath and ArtifactSize describe the written dashboard.
	ArtifactPath string
	ArtifactSize int64

	// Side export paths, empty when the export is disabled.
	SummaryCSVPath  string
	SummaryXLSXPath string

	Duration time.Duration
}

// Runner executes the dashboard pipeline: load the four CSV exports,
// align them on the glucose timeline, compute the daily statistics and
// write the dashboard artifact plus the side exports.
type Runner struct {
	config    *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	metrics   *infrastructure.PipelineMetrics
	runtime   *infrastructure.RuntimeMetrics

	loader     *loader.Loader
	merger     *dataprocessing.Merger
	summarizer *dataprocessing.Summarizer
	renderer   *render.Renderer
	exporter   *exporter.Exporter
	summaries  *exporter.SummaryExporter
}

// NewRunner wires the pipeline components from configuration.
// Providers may be nil when observability is disabled.
func NewRunner(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Runner, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("configuration is nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	order, err := loader.ParseDateOrder(cfg.Data.DateOrder)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid data.date_order", err)
	}

	unit := cfg.Unit()
	paths := cfg.ResolvePaths()

	renderer := render.NewRenderer(logger, render.Options{
		Width:          cfg.Dashboard.PanelWidth,
		Height:         cfg.Dashboard.PanelHeight,
		Unit:           unit,
		TargetLow:      cfg.Glucose.TargetLow,
		TargetHigh:     cfg.Glucose.TargetHigh,
		MinLabelGap:    time.Duration(cfg.Dashboard.Annotations.MinGapMinutes) * time.Minute,
		MaxLabelLevels: cfg.Dashboard.Annotations.MaxLevels,
	})

	r := &Runner{
		config:    cfg,
		paths:     paths,
		logger:    logger,
		providers: providers,
		loader:    loader.New(logger, unit, order),
		merger:    dataprocessing.NewMerger(logger, unit),
		summarizer: dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{
			TargetLow:  cfg.Glucose.TargetLow,
			TargetHigh: cfg.Glucose.TargetHigh,
		}),
		renderer: renderer,
		exporter: exporter.New(logger, renderer, paths, exporter.Options{
			Overview: cfg.Dashboard.Overview,
			Title:    config.AppName,
		}),
		summaries: exporter.NewSummaryExporter(paths),
	}

	if providers != nil && providers.Meter != nil {
		metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
		}
		r.metrics = metrics

		rt, err := infrastructure.NewRuntimeMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
		}
		r.runtime = rt
	}

	return r, nil
}

// Run executes one pipeline run end to end. Stages run in order; the
// first failure aborts the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	started := time.Now()

	result := &Result{
		RunID:  infrastructure.GetRunID(ctx),
		Format: r.config.Dashboard.Format,
		Unit:   r.config.Unit(),
	}

	r.logger.InfoContext(ctx, "pipeline run starting",
		slog.String("run_id", result.RunID),
		slog.String("format", result.Format),
		slog.String("data_dir", r.paths.DataDir),
		slog.String("output_dir", r.paths.OutputDir))

	err := r.run(ctx, result)
	result.Duration = time.Since(started)

	infrastructure.RecordRunMetrics(ctx, r.metrics, err == nil)
	if r.runtime != nil {
		r.runtime.Snapshot(ctx, started)
	}

	if err != nil {
		r.logger.ErrorContext(ctx, "pipeline run failed",
			slog.String("run_id", result.RunID),
			slog.Duration("duration", result.Duration),
			slog.String("error", err.Error()))
		return nil, err
	}

	r.logger.InfoContext(ctx, "pipeline run completed",
		slog.String("run_id", result.RunID),
		slog.Int("days", len(result.Summaries)),
		slog.String("artifact", result.ArtifactPath),
		slog.Int64("bytes", result.ArtifactSize),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// run executes the stages against a shared result.
func (r *Runner) run(ctx context.Context, result *Result) error {
	if err := r.prepare(ctx); err != nil {
		return err
	}

	var data *loader.Data
	if err := r.stage(ctx, StageLoad, func(ctx context.Context) error {
		var err error
		data, err = r.loadInputs(ctx)
		return err
	}); err != nil {
		return err
	}
	result.LoadResults = data.Results

	var dataset *dataprocessing.MergedDataset
	if err := r.stage(ctx, StageMerge, func(ctx context.Context) error {
		var err error
		dataset, err = r.mergeDataset(ctx, data)
		return err
	}); err != nil {
		return err
	}

	if err := r.stage(ctx, StageSummarize, func(ctx context.Context) error {
		summaries, err := r.summarizer.GenerateFromDataset(ctx, dataset)
		if err != nil {
			return err
		}
		result.Summaries = summaries
		result.Aggregate = r.summarizer.Aggregate(dataset)
		result.Quality = dataprocessing.BuildQualityReport(dataset, sourceCounts(data), skippedCounts(data))
		infrastructure.RecordSummaryMetrics(ctx, r.metrics, len(summaries))
		return nil
	}); err != nil {
		return err
	}

	return r.stage(ctx, StageExport, func(ctx context.Context) error {
		path, size, err := r.exporter.ExportDashboard(ctx, dataset, result.Summaries, result.Aggregate, result.Format)
		if err != nil {
			return err
		}
		result.ArtifactPath = path
		result.ArtifactSize = size

		panels := len(dataset.Days)
		if r.config.Dashboard.Overview {
			panels++
		}
		infrastructure.RecordRenderMetrics(ctx, r.metrics, panels)
		infrastructure.RecordExportMetrics(ctx, r.metrics, result.Format, size)

		return r.writeSideExports(ctx, result)
	})
}

// prepare ensures the output tree exists and every input file is
// present before any work starts. When a file is missing, the CSV
// files actually found in the data directory are logged to make the
// fix obvious.
func (r *Runner) prepare(ctx context.Context) error {
	if err := r.paths.EnsureDirectories(); err != nil {
		return apperrors.NewConfigError("create output directories", err)
	}

	if err := r.paths.ValidateRequiredFiles(); err != nil {
		discovery := files.NewDiscovery(r.paths.DataDir)
		if found, derr := discovery.FindCSVFiles(""); derr == nil {
			names := make([]string, 0, len(found))
			for _, f := range found {
				names = append(names, f.Name)
			}
			r.logger.ErrorContext(ctx, "input files missing",
				slog.String("data_dir", r.paths.DataDir),
				slog.String("csv_files_present", strings.Join(names, ", ")))
		}
		return apperrors.NewAppError(apperrors.ErrTypeNotFound, "input files", err)
	}

	return nil
}

// loadInputs reads the four exports and records per-source load metrics.
func (r *Runner) loadInputs(ctx context.Context) (*loader.Data, error) {
	data, err := r.loader.LoadAll(ctx, loader.Sources{
		GlucosePath:   r.paths.GlucoseCSV,
		SleepPath:     r.paths.SleepCSV,
		WorkoutPath:   r.paths.WorkoutCSV,
		NutritionPath: r.paths.NutritionCSV,
	})
	if err != nil {
		return nil, err
	}

	for source, res := range data.Results {
		infrastructure.RecordLoadMetrics(ctx, r.metrics, string(source), res.Rows, res.Skipped)
	}
	return data, nil
}

// mergeDataset windows the glucose series per configuration and aligns
// the secondary sources onto it.
func (r *Runner) mergeDataset(ctx context.Context, data *loader.Data) (*dataprocessing.MergedDataset, error) {
	from, to, err := r.window()
	if err != nil {
		return nil, err
	}

	glucose := dataprocessing.WindowReadings(data.Glucose, from, to, r.config.Dashboard.MaxDays)
	if len(glucose) == 0 && len(data.Glucose) > 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"no glucose readings between %q and %q", r.config.Dashboard.From, r.config.Dashboard.To))
	}

	return r.merger.Merge(ctx, glucose, data.Sleep, data.Workouts, data.Meals)
}

// window converts the configured From/To dates into the half-open
// range applied to the readings. To names an inclusive calendar day,
// so the cut falls at the following midnight.
func (r *Runner) window() (from, to time.Time, err error) {
	if s := r.config.Dashboard.From; s != "" {
		from, err = time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewConfigError("invalid dashboard.from date", err)
		}
	}
	if s := r.config.Dashboard.To; s != "" {
		day, perr := time.Parse("2006-01-02", s)
		if perr != nil {
			return time.Time{}, time.Time{}, apperrors.NewConfigError("invalid dashboard.to date", perr)
		}
		to = day.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError(fmt.Sprintf(
			"dashboard window is empty: to %s is before from %s", r.config.Dashboard.To, r.config.Dashboard.From))
	}
	return from, to, nil
}

// writeSideExports writes the enabled summary exports next to the
// dashboard artifact.
func (r *Runner) writeSideExports(ctx context.Context, result *Result) error {
	if r.config.Exports.SummaryCSV {
		if err := r.summaries.ExportCSV(result.Summaries); err != nil {
			return err
		}
		result.SummaryCSVPath = r.paths.SummaryCSV
		r.logger.InfoContext(ctx, "summary csv written",
			slog.String("path", r.paths.SummaryCSV),
			slog.Int("days", len(result.Summaries)))
	}

	if r.config.Exports.SummaryXLSX {
		if err := r.summaries.ExportXLSX(result.Summaries, result.Aggregate); err != nil {
			return err
		}
		result.SummaryXLSXPath = r.paths.SummaryXLSX
		r.logger.InfoContext(ctx, "summary xlsx written",
			slog.String("path", r.paths.SummaryXLSX),
			slog.Int("days", len(result.Summaries)))
	}

	return nil
}

// stage runs one pipeline stage with tracing, timing and metrics.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := r.tracer().Start(ctx, "pipeline."+name)
	defer span.End()

	started := time.Now()
	err := fn(ctx)
	duration := time.Since(started)

	infrastructure.RecordStageMetrics(ctx, r.metrics, name, duration, err == nil)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		r.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", name),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	r.logger.InfoContext(ctx, "stage completed",
		slog.String("stage", name),
		slog.Duration("duration", duration))
	return nil
}

// tracer returns the run's tracer, or the global no-op tracer when
// tracing is disabled.
func (r *Runner) tracer() trace.Tracer {
	if r.providers != nil && r.providers.Tracer != nil {
		return r.providers.Tracer
	}
	return otel.Tracer(infrastructure.MeterName)
}

// sourceCounts extracts the loaded row counts for the quality report.
func sourceCounts(data *loader.Data) dataprocessing.SourceCounts {
	return dataprocessing.SourceCounts{
		GlucoseReadings: data.Results[domain.SourceGlucose].Rows,
		SleepSessions:   data.Results[domain.SourceSleep].Rows,
		Workouts:        data.Results[domain.SourceWorkout].Rows,
		Meals:           data.Results[domain.SourceNutrition].Rows,
	}
}

// skippedCounts extracts the per-source skip counts, omitting sources
// that dropped nothing.
func skippedCounts(data *loader.Data) map[domain.Source]int {
	skipped := make(map[domain.Source]int)
	for source, res := range data.Results {
		if res.Skipped > 0 {
			skipped[source] = res.Skipped
		}
	}
	return skipped
}
