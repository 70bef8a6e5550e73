package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cgmcli/internal/config"
	"cgmcli/internal/infrastructure"
	"cgmcli/internal/sampledata"
)

func main() {
	dir := flag.String("dir", "data/sample", "directory to write the four CSV files into")
	days := flag.Int("days", 7, "number of calendar days to cover")
	seed := flag.Int64("seed", 42, "random seed; the same seed reproduces the same dataset")
	start := flag.String("start", "", "first day as an ISO date (default: days before today)")
	flag.Parse()

	startDay, err := parseStart(*start)
	if err != nil {
		slog.Error("Invalid -start value", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithRunID(context.Background())

	gen := sampledata.NewGenerator(logger)
	summary, err := gen.Generate(ctx, sampledata.Options{
		Dir:   *dir,
		Days:  *days,
		Seed:  *seed,
		Start: startDay,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Sample data generation failed", "error", err)
		os.Exit(1)
	}

	printGenerated(os.Stdout, summary)
}

// parseStart reads the -start flag; empty means the generator picks
// its own default.
func parseStart(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("want an ISO date like 2024-12-01: %w", err)
	}
	return day, nil
}

// printGenerated writes the dataset summary and the follow-up commands.
func printGenerated(w io.Writer, summary *sampledata.Summary) {
	fmt.Fprintf(w, "\n=== SAMPLE DATA ===\n")
	fmt.Fprintf(w, "Directory: %s\n", summary.Dir)
	fmt.Fprintf(w, "Days:      %d\n", summary.Days)
	fmt.Fprintf(w, "Glucose:   %d readings\n", summary.GlucoseReadings)
	fmt.Fprintf(w, "Sleep:     %d sessions\n", summary.SleepSessions)
	fmt.Fprintf(w, "Workouts:  %d\n", summary.Workouts)
	fmt.Fprintf(w, "Meals:     %d\n", summary.Meals)

	fmt.Fprintf(w, "\nNext steps:\n")
	fmt.Fprintf(w, "  dashgen -data-dir %s -format html\n", summary.Dir)
	fmt.Fprintf(w, "  CGM_DATA_DATE_ORDER=dmy dashgen -data-dir %s   (food log dates are day-first)\n", summary.Dir)
}
