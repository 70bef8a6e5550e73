package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"cgmcli/pkg/contracts/domain"
)

// Food log columns. Date and Time are separate; macros are grams.
const (
	colMealDate  = "Date"
	colMealTime  = "Time"
	colMealLabel = "Meal"
	colProtein   = "P_Macro"
	colFat       = "F_Macro"
	colCarbs     = "C_Macro"
)

// LoadNutrition reads the food log. The Date and Time columns combine
// into one timestamp; the date order is resolved like any other file.
func (l *Loader) LoadNutrition(ctx context.Context, path string) ([]domain.MealEntry, LoadResult, error) {
	records, err := readCSV(path, ',')
	if err != nil {
		return nil, LoadResult{}, err
	}

	idx, err := requireColumns(records[0], path,
		colMealDate, colMealTime, colMealLabel, colProtein, colFat, colCarbs)
	if err != nil {
		return nil, LoadResult{}, err
	}

	samples := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		samples = append(samples, field(record, idx[colMealDate]))
	}
	order, err := l.resolveOrder(path, samples)
	if err != nil {
		return nil, LoadResult{}, err
	}

	var meals []domain.MealEntry
	var skipped int
	for i := 1; i < len(records); i++ {
		meal, err := parseMealRecord(records[i], idx, order, i+1)
		if err != nil {
			skipped++
			l.logger.WarnContext(ctx, "skipping nutrition row",
				"file", filepath.Base(path),
				"line", i+1,
				"error", err,
			)
			continue
		}
		meals = append(meals, meal)
	}

	sort.Slice(meals, func(i, j int) bool {
		return meals[i].Timestamp.Before(meals[j].Timestamp)
	})

	l.logger.InfoContext(ctx, "nutrition data loaded",
		"file", filepath.Base(path),
		"meals", len(meals),
		"skipped", skipped,
	)

	return meals, LoadResult{Rows: len(meals), Skipped: skipped}, nil
}

func parseMealRecord(record []string, idx map[string]int, order DateOrder, lineNum int) (domain.MealEntry, error) {
	ts, err := parseTimestamp(field(record, idx[colMealDate])+" "+field(record, idx[colMealTime]), order)
	if err != nil {
		return domain.MealEntry{}, fmt.Errorf("parse date and time (line %d): %w", lineNum, err)
	}

	protein, err := parseMacro(field(record, idx[colProtein]), colProtein, lineNum)
	if err != nil {
		return domain.MealEntry{}, err
	}
	fat, err := parseMacro(field(record, idx[colFat]), colFat, lineNum)
	if err != nil {
		return domain.MealEntry{}, err
	}
	carbs, err := parseMacro(field(record, idx[colCarbs]), colCarbs, lineNum)
	if err != nil {
		return domain.MealEntry{}, err
	}

	meal := domain.MealEntry{
		Timestamp: ts,
		Label:     field(record, idx[colMealLabel]),
		ProteinG:  protein,
		FatG:      fat,
		CarbsG:    carbs,
	}
	if err := meal.Validate(); err != nil {
		return domain.MealEntry{}, fmt.Errorf("line %d: %w", lineNum, err)
	}
	return meal, nil
}

// parseMacro converts a macro cell into grams. Empty cells mean the
// macro was not logged and map to zero.
func parseMacro(raw, name string, lineNum int) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	grams, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s (line %d): %w", name, lineNum, err)
	}
	return grams, nil
}
