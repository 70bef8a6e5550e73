package exporter

import (
	"fmt"

	"cgmcli/internal/dataprocessing"
	"cgmcli/pkg/contracts/domain"
)

// formatFloat formats a statistic with exactly 2 decimal places so
// values like 6.5 appear as 6.50 in every export.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatPercent formats a percentage with 1 decimal place
func formatPercent(f float64) string {
	return fmt.Sprintf("%.1f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// summaryHeaders returns the column order shared by the CSV, XLSX and
// HTML summary tables.
func summaryHeaders() []string {
	return []string{
		"Date", "Readings", "Mean", "Median", "StdDev", "Min", "Max",
		"TIR%", "CV%", "CVValid", "TimeAsleep", "Workouts", "Meals",
	}
}

// summaryRow converts a daily summary to one table row.
func summaryRow(s domain.DailySummary) []string {
	return []string{
		s.Date.Format("2006-01-02"),
		formatInt(s.ReadingCount),
		formatFloat(s.Mean),
		formatFloat(s.Median),
		formatFloat(s.StdDev),
		formatFloat(s.Min),
		formatFloat(s.Max),
		formatPercent(s.TIRPercent),
		formatPercent(s.CV),
		formatBool(s.CVValid),
		s.TimeAsleep.String(),
		formatInt(s.WorkoutCount),
		formatInt(s.MealCount),
	}
}

// aggregateRow converts the range-wide summary to the closing table row.
func aggregateRow(agg dataprocessing.RangeSummary) []string {
	return []string{
		fmt.Sprintf("TOTAL (%d days)", agg.Days),
		formatInt(agg.TotalReadings),
		formatFloat(agg.Mean),
		formatFloat(agg.Median),
		formatFloat(agg.StdDev),
		formatFloat(agg.Min),
		formatFloat(agg.Max),
		formatPercent(agg.TIRPercent),
		formatPercent(agg.CV),
		formatBool(agg.CVValid),
		agg.TotalAsleep.String(),
		formatInt(agg.TotalWorkouts),
		formatInt(agg.TotalMeals),
	}
}
