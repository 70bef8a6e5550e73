package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cgmcli/internal/app"
	"cgmcli/internal/config"
	"cgmcli/internal/infrastructure"
	"cgmcli/pkg/contracts/domain"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: search known locations)")
	dataDir := flag.String("data-dir", "", "directory holding the four CSV exports (overrides config)")
	outDir := flag.String("out", "", "output directory for the dashboard artifact (overrides config)")
	format := flag.String("format", "", fmt.Sprintf("dashboard format: %s (overrides config)", strings.Join(config.DashboardFormats, ", ")))
	from := flag.String("from", "", "first day to include, ISO date (overrides config)")
	to := flag.String("to", "", "last day to include, ISO date (overrides config)")
	maxDays := flag.Int("max-days", -1, "cap on rendered days, most recent kept; 0 renders all (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	applyOverrides(cfg, overrides{
		dataDir: *dataDir,
		outDir:  *outDir,
		format:  *format,
		from:    *from,
		to:      *to,
		maxDays: *maxDays,
	})
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithRunID(context.Background())
	paths := cfg.ResolvePaths()
	paths.LogPathResolution()

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Observability), logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize OpenTelemetry", "error", err)
		os.Exit(1)
	}

	runner, err := app.NewRunner(cfg, logger, providers)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build pipeline", "error", err)
		os.Exit(1)
	}

	result, err := runner.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Dashboard generation failed", "error", err)
		flushObservability(ctx, logger, providers, paths.MetricsFile)
		os.Exit(1)
	}

	printSummary(os.Stdout, result)
	flushObservability(ctx, logger, providers, paths.MetricsFile)
}

// overrides holds the flag values that take precedence over the file
// and environment configuration.
type overrides struct {
	dataDir string
	outDir  string
	format  string
	from    string
	to      string
	maxDays int
}

// applyOverrides copies the set flags onto the configuration. Empty
// strings and a negative maxDays keep the configured value.
func applyOverrides(cfg *config.Config, o overrides) {
	if o.dataDir != "" {
		cfg.Data.Dir = o.dataDir
	}
	if o.outDir != "" {
		cfg.Dashboard.OutputDir = o.outDir
	}
	if o.format != "" {
		cfg.Dashboard.Format = o.format
	}
	if o.from != "" {
		cfg.Dashboard.From = o.from
	}
	if o.to != "" {
		cfg.Dashboard.To = o.to
	}
	if o.maxDays >= 0 {
		cfg.Dashboard.MaxDays = o.maxDays
	}
}

// flushObservability writes the metrics snapshot and shuts the
// providers down. Failures here are logged, not fatal.
func flushObservability(ctx context.Context, logger *slog.Logger, providers *infrastructure.OTelProviders, metricsFile string) {
	if err := providers.WriteMetricsFile(ctx, metricsFile); err != nil {
		logger.WarnContext(ctx, "Failed to write metrics file", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.WarnContext(ctx, "Observability shutdown failed", "error", err)
	}
}

// printSummary writes the per-day statistics table, the range
// aggregate and the quality report to w.
func printSummary(w io.Writer, result *app.Result) {
	if result == nil || len(result.Summaries) == 0 {
		return
	}

	fmt.Fprintf(w, "\n=== DAILY GLUCOSE SUMMARY (%s) ===\n", result.Unit)
	fmt.Fprintln(w, "Date       | Readings |  Mean | Median | StdDev |  TIR% |   CV% | Sleep  | Workouts | Meals")
	fmt.Fprintln(w, "-----------|----------|-------|--------|--------|-------|-------|--------|----------|------")
	for _, s := range result.Summaries {
		fmt.Fprintf(w, "%-10s | %8d | %5.2f | %6.2f | %6.2f | %5.1f | %5s | %-6s | %8d | %5d\n",
			s.DateString(), s.ReadingCount, s.Mean, s.Median, s.StdDev,
			s.TIRPercent, formatCV(s.CV, s.CVValid), formatSleep(s.TimeAsleep),
			s.WorkoutCount, s.MealCount)
	}

	agg := result.Aggregate
	fmt.Fprintf(w, "\n=== RANGE AGGREGATE (%d days) ===\n", agg.Days)
	fmt.Fprintf(w, "Readings: %d\n", agg.TotalReadings)
	fmt.Fprintf(w, "Mean:     %.2f %s\n", agg.Mean, result.Unit)
	fmt.Fprintf(w, "Median:   %.2f %s\n", agg.Median, result.Unit)
	fmt.Fprintf(w, "StdDev:   %.2f %s\n", agg.StdDev, result.Unit)
	fmt.Fprintf(w, "TIR:      %.1f%%\n", agg.TIRPercent)
	fmt.Fprintf(w, "CV:       %s%%\n", formatCV(agg.CV, agg.CVValid))
	fmt.Fprintf(w, "Sleep:    %s\n", formatSleep(agg.TotalAsleep))
	fmt.Fprintf(w, "Workouts: %d\n", agg.TotalWorkouts)
	fmt.Fprintf(w, "Meals:    %d\n", agg.TotalMeals)

	q := result.Quality
	fmt.Fprintf(w, "\n=== DATA QUALITY ===\n")
	fmt.Fprintf(w, "Window:          %s to %s\n",
		q.Start.Format("2006-01-02"), q.End.AddDate(0, 0, -1).Format("2006-01-02"))
	fmt.Fprintf(w, "Missing glucose: %.1f%% of 5-minute slots\n", q.MissingGlucosePct)
	fmt.Fprintf(w, "Sleep coverage:  %.1f%% of days\n", q.SleepCoveragePct)
	if q.Skipped() > 0 {
		fmt.Fprintf(w, "Skipped rows:    %s\n", formatSkipped(q.SkippedRows))
	}

	fmt.Fprintf(w, "\nDashboard: %s (%d bytes)\n", result.ArtifactPath, result.ArtifactSize)
	if result.SummaryCSVPath != "" {
		fmt.Fprintf(w, "Summary CSV: %s\n", result.SummaryCSVPath)
	}
	if result.SummaryXLSXPath != "" {
		fmt.Fprintf(w, "Summary XLSX: %s\n", result.SummaryXLSXPath)
	}
}

// formatCV renders a coefficient of variation, or a dash when the
// value is undefined.
func formatCV(cv float64, valid bool) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%.1f", cv)
}

// formatSleep renders a duration as 7h05m.
func formatSleep(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) - 60*h
	return fmt.Sprintf("%dh%02dm", h, m)
}

// formatSkipped lists the per-source skip counts in a stable order.
func formatSkipped(skipped map[domain.Source]int) string {
	order := []domain.Source{domain.SourceGlucose, domain.SourceSleep, domain.SourceWorkout, domain.SourceNutrition}
	parts := make([]string, 0, len(skipped))
	for _, source := range order {
		if n := skipped[source]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", source, n))
		}
	}
	return strings.Join(parts, ", ")
}
