package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cgmcli/internal/config"
	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("create directory %s", dir), err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return apperrors.NewExportError(fmt.Sprintf("create csv file %s", fullPath), err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8.
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewExportError("write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewExportError("write csv headers", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewExportError(fmt.Sprintf("write csv record %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("flush csv file %s", fullPath), err)
	}
	return nil
}

// resolvePath resolves a relative path against the output directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return filepath.Join(w.paths.OutputDir, filepath.Base(filePath))
}

// SummaryExporter writes the daily-summary table as side artifacts
// next to the dashboard.
type SummaryExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
}

// NewSummaryExporter creates a new summary exporter
func NewSummaryExporter(paths *config.Paths) *SummaryExporter {
	return &SummaryExporter{
		csvWriter: NewCSVWriter(paths),
		paths:     paths,
	}
}

// ExportCSV writes one row per daily summary to daily_summaries.csv.
func (s *SummaryExporter) ExportCSV(summaries []domain.DailySummary) error {
	records := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		records = append(records, summaryRow(summary))
	}
	return s.csvWriter.WriteCSV(s.paths.SummaryCSV, WriteOptions{
		Headers:   summaryHeaders(),
		Records:   records,
		BOMPrefix: true,
	})
}
