package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

// Summarizer is the single source of truth for daily glucose
// statistics. The statistics panel, the console summary and the CSV
// and XLSX exports all consume its output.
type Summarizer struct {
	logger     *slog.Logger
	targetLow  float64
	targetHigh float64
}

// SummarizerConfig holds the target range used for time-in-range.
type SummarizerConfig struct {
	TargetLow  float64 // lower bound, inclusive
	TargetHigh float64 // upper bound, inclusive
}

// NewSummarizer creates a summarizer with the given configuration.
// An empty or inverted target range falls back to 3.9-10.0 mmol/L.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TargetHigh <= config.TargetLow {
		config.TargetLow = 3.9
		config.TargetHigh = 10.0
	}

	return &Summarizer{
		logger:     logger,
		targetLow:  config.TargetLow,
		targetHigh: config.TargetHigh,
	}
}

// TargetRange returns the configured target bounds.
func (s *Summarizer) TargetRange() (low, high float64) {
	return s.targetLow, s.targetHigh
}

// GenerateFromDataset computes one DailySummary per merged day, sorted
// chronologically. Days without readings produce no summary.
func (s *Summarizer) GenerateFromDataset(ctx context.Context, dataset *MergedDataset) ([]domain.DailySummary, error) {
	s.logger.InfoContext(ctx, "generating daily summaries",
		slog.Int("days", len(dataset.Days)))

	summaries := make([]domain.DailySummary, 0, len(dataset.Days))
	for _, day := range dataset.Days {
		if len(day.Readings) == 0 {
			continue
		}
		summary := s.summarizeDay(day)
		if err := summary.Validate(); err != nil {
			return nil, apperrors.NewProcessingError(
				fmt.Sprintf("inconsistent summary for %s", summary.DateString()), err)
		}
		summaries = append(summaries, summary)
	}

	// The dataset is already ordered; sort anyway so output order never
	// depends on upstream behavior.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.Before(summaries[j].Date)
	})

	s.logger.InfoContext(ctx, "daily summaries generated",
		slog.Int("summary_count", len(summaries)))

	return summaries, nil
}

// summarizeDay computes the statistics of one day.
func (s *Summarizer) summarizeDay(day MergedDay) domain.DailySummary {
	values := make([]float64, len(day.Readings))
	for i, reading := range day.Readings {
		values[i] = reading.Value
	}

	stats := computeStats(values)
	cv, cvValid := coefficientOfVariation(stats.mean, stats.stddev)

	return domain.DailySummary{
		Date:         day.Date,
		ReadingCount: len(values),
		Mean:         stats.mean,
		Median:       stats.median,
		StdDev:       stats.stddev,
		Min:          stats.min,
		Max:          stats.max,
		TIRPercent:   timeInRange(values, s.targetLow, s.targetHigh),
		CV:           cv,
		CVValid:      cvValid,
		TimeAsleep:   day.TimeAsleep,
		WorkoutCount: len(day.Workouts),
		MealCount:    len(day.Meals),
	}
}

// RangeSummary is the roll-up over the whole dashboard window,
// computed from every reading rather than from daily averages so
// uneven days do not skew it.
type RangeSummary struct {
	Days          int           `json:"days"`
	TotalReadings int           `json:"total_readings"`
	Mean          float64       `json:"mean"`
	Median        float64       `json:"median"`
	StdDev        float64       `json:"std_dev"`
	Min           float64       `json:"min"`
	Max           float64       `json:"max"`
	TIRPercent    float64       `json:"tir_percent"`
	CV            float64       `json:"cv"`
	CVValid       bool          `json:"cv_valid"`
	TotalAsleep   time.Duration `json:"total_asleep"`
	TotalWorkouts int           `json:"total_workouts"`
	TotalMeals    int           `json:"total_meals"`
}

// Aggregate computes the range-wide summary across all readings of the
// dataset. Returns the zero value when the dataset has no readings.
func (s *Summarizer) Aggregate(dataset *MergedDataset) RangeSummary {
	var values []float64
	var agg RangeSummary

	for _, day := range dataset.Days {
		if len(day.Readings) == 0 {
			continue
		}
		agg.Days++
		agg.TotalAsleep += day.TimeAsleep
		agg.TotalWorkouts += len(day.Workouts)
		agg.TotalMeals += len(day.Meals)
		for _, reading := range day.Readings {
			values = append(values, reading.Value)
		}
	}
	if len(values) == 0 {
		return RangeSummary{}
	}

	stats := computeStats(values)
	agg.TotalReadings = len(values)
	agg.Mean = stats.mean
	agg.Median = stats.median
	agg.StdDev = stats.stddev
	agg.Min = stats.min
	agg.Max = stats.max
	agg.TIRPercent = timeInRange(values, s.targetLow, s.targetHigh)
	agg.CV, agg.CVValid = coefficientOfVariation(stats.mean, stats.stddev)

	return agg
}
