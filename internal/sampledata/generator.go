// Package sampledata writes a synthetic four-file dataset shaped like
// the real exports: a LibreView glucose CSV, Sleep Cycle sessions, a
// workout log and a food log. The dataset is deterministic for a given
// seed, so demos and tests get reproducible dashboards.
package sampledata

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"cgmcli/internal/config"
	"cgmcli/internal/files"
)

const (
	readingInterval = 5 * time.Minute
	readingsPerDay  = int(24 * time.Hour / readingInterval)

	glucoseBaseline = 6.5
	glucoseSpread   = 1.2
	glucoseFloor    = 3.0
	glucoseCeiling  = 15.0
	scanJitter      = 0.02
)

var (
	sleepQualities = []string{"Excellent", "Good", "Fair", "Poor"}
	workoutTypes   = []string{"Strength", "Cardio", "Mixed"}

	meals = []struct {
		hour int
		name string
	}{
		{8, "Breakfast"},
		{13, "Lunch"},
		{19, "Dinner"},
	}
)

// Options control the generated dataset.
type Options struct {
	// Dir receives the four CSV files.
	Dir string

	// Days is the number of calendar days to cover; zero or
	// negative means one week.
	Days int

	// Seed makes the dataset reproducible.
	Seed int64

	// Start is the first day at midnight. The zero value starts the
	// dataset Days before today.
	Start time.Time
}

// Summary reports what Generate wrote.
type Summary struct {
	Dir             string
	Days            int
	GlucoseReadings int
	SleepSessions   int
	Workouts        int
	Meals           int
	Files           []string
}

// Generator writes sample datasets through the file manager.
type Generator struct {
	logger  *slog.Logger
	manager *files.Manager
}

// NewGenerator creates a Generator logging through the given logger.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger, manager: files.NewManager("")}
}

// Generate writes the four CSV files into opts.Dir and returns what
// was produced.
//
// Glucose readings follow a 5-minute cadence around a 6.5 mmol/L
// baseline with gaussian variation, clipped to a realistic range. One
// sleep session starts at 22:30 each day, workouts land on every
// second evening, and three meals a day go into the food log with
// day-first dates, matching the export it imitates.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Days <= 0 {
		opts.Days = 7
	}
	start := opts.Start
	if start.IsZero() {
		now := time.Now()
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).
			AddDate(0, 0, -opts.Days)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	summary := &Summary{Dir: opts.Dir, Days: opts.Days}

	outputs := []struct {
		name  string
		build func(rng *rand.Rand, start time.Time, days int, s *Summary) string
	}{
		{config.DefaultGlucoseFile, glucoseCSV},
		{config.DefaultSleepFile, sleepCSV},
		{config.DefaultWorkoutFile, workoutCSV},
		{config.DefaultNutritionFile, nutritionCSV},
	}
	for _, f := range outputs {
		content := f.build(rng, start, opts.Days, summary)
		path := filepath.Join(opts.Dir, f.name)
		if err := g.manager.WriteFile(path, []byte(content)); err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, path)
	}

	g.logger.InfoContext(ctx, "sample dataset written",
		"dir", opts.Dir,
		"days", summary.Days,
		"glucose_readings", summary.GlucoseReadings,
		"sleep_sessions", summary.SleepSessions,
		"workouts", summary.Workouts,
		"meals", summary.Meals,
	)
	return summary, nil
}

// glucoseCSV emits 5-minute readings for every day. The export has no
// Record Type column; every row is a historic reading with a lightly
// jittered scan value alongside, like a continuously worn sensor.
func glucoseCSV(rng *rand.Rand, start time.Time, days int, s *Summary) string {
	var b strings.Builder
	b.WriteString("Device Timestamp,Historic Glucose mmol/L,Scan Glucose mmol/L\n")

	for day := 0; day < days; day++ {
		midnight := start.AddDate(0, 0, day)
		for slot := 0; slot < readingsPerDay; slot++ {
			ts := midnight.Add(time.Duration(slot) * readingInterval)
			value := glucoseBaseline + rng.NormFloat64()*glucoseSpread
			if value < glucoseFloor {
				value = glucoseFloor
			}
			if value > glucoseCeiling {
				value = glucoseCeiling
			}
			scan := value * (1 + rng.NormFloat64()*scanJitter)
			fmt.Fprintf(&b, "%s,%.1f,%.1f\n", ts.Format("2006-01-02 15:04:05"), value, scan)
			s.GlucoseReadings++
		}
	}
	return b.String()
}

// sleepCSV emits one session per day starting at 22:30 and ending
// 8h15m later, so every session crosses midnight.
func sleepCSV(rng *rand.Rand, start time.Time, days int, s *Summary) string {
	var b strings.Builder
	b.WriteString("Start;End;Sleep Quality;Time in bed (seconds);Time asleep (seconds)\n")

	for day := 0; day < days; day++ {
		bedtime := start.AddDate(0, 0, day).Add(22*time.Hour + 30*time.Minute)
		wake := bedtime.Add(8*time.Hour + 15*time.Minute)
		quality := sleepQualities[rng.Intn(len(sleepQualities))]
		fmt.Fprintf(&b, "%s;%s;%s;%d;%d\n",
			bedtime.Format("2006-01-02 15:04:05"),
			wake.Format("2006-01-02 15:04:05"),
			quality,
			int(8.25*3600),
			int(7.5*3600),
		)
		s.SleepSessions++
	}
	return b.String()
}

// workoutCSV emits a 90-minute evening workout on every second day.
func workoutCSV(rng *rand.Rand, start time.Time, days int, s *Summary) string {
	var b strings.Builder
	b.WriteString("start_time,end_time,workout_type\n")

	for day := 1; day < days; day += 2 {
		begin := start.AddDate(0, 0, day).Add(18 * time.Hour)
		end := begin.Add(90 * time.Minute)
		kind := workoutTypes[rng.Intn(len(workoutTypes))]
		fmt.Fprintf(&b, "%s,%s,%s\n",
			begin.Format("2006-01-02 15:04:05"),
			end.Format("2006-01-02 15:04:05"),
			kind,
		)
		s.Workouts++
	}
	return b.String()
}

// nutritionCSV emits three meals a day. Dates are written day-first,
// the format the food log export uses.
func nutritionCSV(rng *rand.Rand, start time.Time, days int, s *Summary) string {
	var b strings.Builder
	b.WriteString("Date,Time,Meal,P_Macro,F_Macro,C_Macro\n")

	for day := 0; day < days; day++ {
		date := start.AddDate(0, 0, day)
		for _, meal := range meals {
			at := date.Add(time.Duration(meal.hour) * time.Hour)
			fmt.Fprintf(&b, "%s,%s,%s - Sample meal,%d,%d,%d\n",
				at.Format("02/01/2006"),
				at.Format("15:04"),
				meal.name,
				rng.Intn(25)+15,
				rng.Intn(20)+10,
				rng.Intn(40)+20,
			)
			s.Meals++
		}
	}
	return b.String()
}
