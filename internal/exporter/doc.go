// Package exporter assembles the dashboard artifact and the summary
// side exports.
//
// This package contains three main components:
//
// Exporter: Dispatches one merged dataset plus its daily summaries to
// the configured artifact format: png (vertical panel composition),
// html (self-contained page with inline SVG charts), or pdf (the HTML
// page printed through headless Chrome).
//
// CSVWriter: Core CSV writing functionality with support for headers
// and UTF-8 BOM for Excel compatibility, used for the
// daily_summaries.csv side export.
//
// SummaryExporter: Writes the daily-summary table as CSV and XLSX
// files next to the dashboard artifact.
//
// Example usage:
//
//	exp := exporter.New(logger, renderer, paths, exporter.Options{Overview: true})
//
//	// Write the dashboard in the configured format
//	artifact, size, err := exp.ExportDashboard(ctx, dataset, summaries, agg, "png")
//
//	// Write the side exports
//	summaryExporter := exporter.NewSummaryExporter(paths)
//	err = summaryExporter.ExportCSV(summaries)
package exporter
