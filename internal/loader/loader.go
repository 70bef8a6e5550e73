// Package loader reads the four CSV exports (glucose, sleep, workout,
// nutrition) into typed records. Malformed rows are skipped, counted
// and logged with their line number; structural problems such as a
// missing column or an unresolvable date order abort the load with a
// DATA_FORMAT error.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

// LoadResult reports how many rows a loader kept and skipped.
type LoadResult struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}

// Sources names the four input files of one run.
type Sources struct {
	GlucosePath   string
	SleepPath     string
	WorkoutPath   string
	NutritionPath string
}

// Data holds everything one run loaded, with per-source row counts.
type Data struct {
	Glucose  []domain.GlucoseReading
	Sleep    []domain.SleepSession
	Workouts []domain.WorkoutSession
	Meals    []domain.MealEntry
	Results  map[domain.Source]LoadResult
}

// Loader reads CSV exports and normalizes them into domain records.
// Glucose values are converted to the configured unit on ingest.
type Loader struct {
	logger *slog.Logger
	unit   domain.Unit
	order  DateOrder
}

// New creates a Loader that emits readings in the given unit and reads
// slash dates in the given order.
func New(logger *slog.Logger, unit domain.Unit, order DateOrder) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger,
		unit:   unit,
		order:  order,
	}
}

// LoadAll reads the four sources in sequence. Any structural failure
// aborts the whole load; there is no partial dataset.
func (l *Loader) LoadAll(ctx context.Context, src Sources) (*Data, error) {
	glucose, glucoseResult, err := l.LoadGlucose(ctx, src.GlucosePath)
	if err != nil {
		return nil, err
	}

	sleep, sleepResult, err := l.LoadSleep(ctx, src.SleepPath)
	if err != nil {
		return nil, err
	}

	workouts, workoutResult, err := l.LoadWorkouts(ctx, src.WorkoutPath)
	if err != nil {
		return nil, err
	}

	meals, mealResult, err := l.LoadNutrition(ctx, src.NutritionPath)
	if err != nil {
		return nil, err
	}

	return &Data{
		Glucose:  glucose,
		Sleep:    sleep,
		Workouts: workouts,
		Meals:    meals,
		Results: map[domain.Source]LoadResult{
			domain.SourceGlucose:   glucoseResult,
			domain.SourceSleep:     sleepResult,
			domain.SourceWorkout:   workoutResult,
			domain.SourceNutrition: mealResult,
		},
	}, nil
}

// resolveOrder returns the configured date order, or infers it from
// the file's own date strings when set to auto.
func (l *Loader) resolveOrder(path string, samples []string) (DateOrder, error) {
	if l.order != OrderAuto && l.order != "" {
		return l.order, nil
	}
	order, err := inferDateOrder(samples)
	if err != nil {
		return "", apperrors.NewDataFormatError(
			fmt.Sprintf("detect date order in %s", filepath.Base(path)), err)
	}
	return order, nil
}

// readCSV reads a whole CSV file into memory. Field counts may vary
// per row; LibreView prefixes exports with a short report-title line.
func readCSV(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("input file %s", path))
		}
		return nil, apperrors.NewDataFormatError(fmt.Sprintf("open %s", filepath.Base(path)), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewDataFormatError(fmt.Sprintf("read %s", filepath.Base(path)), err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewDataFormatError(fmt.Sprintf("%s is empty", filepath.Base(path)), nil)
	}
	return records, nil
}

// columnIndex finds a header column by name, ignoring case and
// surrounding whitespace. Returns -1 when absent.
func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

// requireColumns resolves the named columns or fails with a
// DATA_FORMAT error naming the first missing one.
func requireColumns(header []string, path string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for _, name := range names {
		i := columnIndex(header, name)
		if i < 0 {
			return nil, apperrors.NewDataFormatError(
				fmt.Sprintf("%s: missing column %q", filepath.Base(path), name), nil)
		}
		idx[name] = i
	}
	return idx, nil
}

// field returns the trimmed cell at index i, or "" when the row is
// shorter than the header.
func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
