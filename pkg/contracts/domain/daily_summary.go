package domain

import (
	"fmt"
	"time"
)

// DailySummary is the authoritative per-day glucose statistics record.
// Exporters, the statistics panel, and the console summary all consume
// this structure; it is produced once per calendar day that has at
// least one glucose reading.
type DailySummary struct {
	// Date is the calendar day at midnight.
	Date time.Time `json:"date" csv:"Date"`

	// ReadingCount is the number of glucose readings on the day.
	// Always at least 1; days without readings get no summary.
	ReadingCount int `json:"reading_count" csv:"Readings" validate:"min=1"`

	Mean   float64 `json:"mean" csv:"Mean"`
	Median float64 `json:"median" csv:"Median"`
	StdDev float64 `json:"std_dev" csv:"StdDev"`
	Min    float64 `json:"min" csv:"Min"`
	Max    float64 `json:"max" csv:"Max"`

	// TIRPercent is the share of readings inside the target range,
	// in percent. Bounded to [0, 100]; exactly 100 when every
	// reading is in range.
	TIRPercent float64 `json:"tir_percent" csv:"TIR%" validate:"min=0,max=100"`

	// CV is the coefficient of variation (100 * stddev / mean).
	// CVValid is false when the mean is zero and CV is undefined.
	CV      float64 `json:"cv" csv:"CV%"`
	CVValid bool    `json:"cv_valid" csv:"CVValid"`

	// TimeAsleep is the sleep overlap with this day, clipped at the
	// day's boundaries.
	TimeAsleep time.Duration `json:"time_asleep" csv:"TimeAsleep"`

	WorkoutCount int `json:"workout_count" csv:"Workouts" validate:"min=0"`
	MealCount    int `json:"meal_count" csv:"Meals" validate:"min=0"`
}

// DateString formats the day as an ISO date.
func (s DailySummary) DateString() string {
	return s.Date.Format("2006-01-02")
}

// Validate checks the internal consistency of a summary.
func (s DailySummary) Validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("summary date is zero")
	}
	if s.ReadingCount < 1 {
		return fmt.Errorf("summary for %s has no readings", s.DateString())
	}
	if s.TIRPercent < 0 || s.TIRPercent > 100 {
		return fmt.Errorf("summary for %s has TIR %.2f outside [0, 100]", s.DateString(), s.TIRPercent)
	}
	if s.Min > s.Max {
		return fmt.Errorf("summary for %s has min %.2f above max %.2f", s.DateString(), s.Min, s.Max)
	}
	if s.Mean < s.Min || s.Mean > s.Max {
		return fmt.Errorf("summary for %s has mean %.2f outside [min, max]", s.DateString(), s.Mean)
	}
	if s.CVValid && s.CV < 0 {
		return fmt.Errorf("summary for %s has negative CV %.2f", s.DateString(), s.CV)
	}
	return nil
}

// Source names one of the four input tables. Used in logs, skip
// counters, and metric labels.
type Source string

const (
	SourceGlucose   Source = "glucose"
	SourceSleep     Source = "sleep"
	SourceWorkout   Source = "workout"
	SourceNutrition Source = "nutrition"
)

// QualityReport summarizes dataset health after loading and merging.
type QualityReport struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Days            int `json:"days"`
	GlucoseReadings int `json:"glucose_readings"`
	SleepSessions   int `json:"sleep_sessions"`
	Workouts        int `json:"workouts"`
	Meals           int `json:"meals"`

	// SkippedRows counts malformed rows dropped per source.
	SkippedRows map[Source]int `json:"skipped_rows,omitempty"`

	// MissingGlucosePct is the share of expected 5-minute sampling
	// slots in [Start, End] without a reading, in percent.
	MissingGlucosePct float64 `json:"missing_glucose_pct"`

	// SleepCoveragePct is the share of days with at least one sleep
	// session, in percent.
	SleepCoveragePct float64 `json:"sleep_coverage_pct"`
}

// Skipped returns the total number of dropped rows across sources.
func (q QualityReport) Skipped() int {
	total := 0
	for _, n := range q.SkippedRows {
		total += n
	}
	return total
}
