package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgmcli/pkg/contracts/domain"
)

// mergedDay builds a day whose readings are 5 minutes apart.
func mergedDay(date time.Time, values ...float64) MergedDay {
	day := MergedDay{Date: date}
	for i, v := range values {
		day.Readings = append(day.Readings, MergedReading{
			GlucoseReading: domain.GlucoseReading{
				Timestamp: date.Add(8*time.Hour + time.Duration(i)*5*time.Minute),
				Value:     v,
				Type:      domain.RecordHistoric,
			},
		})
	}
	return day
}

func TestSummarizeDayHandComputed(t *testing.T) {
	day := mergedDay(at(24, 0, 0), 5, 6, 7, 8)
	day.TimeAsleep = 7 * time.Hour
	day.Workouts = []DayWorkout{{Activity: domain.ActivityCardio}}
	day.Meals = []domain.MealEntry{{Label: "Lunch"}}

	s := NewSummarizer(testLogger(), SummarizerConfig{TargetLow: 3.9, TargetHigh: 10.0})
	summary := s.summarizeDay(day)

	assert.Equal(t, 4, summary.ReadingCount)
	assert.InDelta(t, 6.5, summary.Mean, 1e-9)
	assert.InDelta(t, 6.5, summary.Median, 1e-9)
	// Sample standard deviation of {5,6,7,8}: sqrt(5/3).
	assert.InDelta(t, 1.29099, summary.StdDev, 1e-4)
	assert.Equal(t, 5.0, summary.Min)
	assert.Equal(t, 8.0, summary.Max)
	assert.Equal(t, 100.0, summary.TIRPercent)
	require.True(t, summary.CVValid)
	assert.InDelta(t, 100*1.29099/6.5, summary.CV, 1e-3)
	assert.Equal(t, 7*time.Hour, summary.TimeAsleep)
	assert.Equal(t, 1, summary.WorkoutCount)
	assert.Equal(t, 1, summary.MealCount)
}

func TestSummarizeDayPartialTIR(t *testing.T) {
	day := mergedDay(at(24, 0, 0), 5, 6, 7, 8)

	s := NewSummarizer(testLogger(), SummarizerConfig{TargetLow: 6.0, TargetHigh: 10.0})
	summary := s.summarizeDay(day)

	// 6, 7 and 8 are in range, bounds inclusive.
	assert.InDelta(t, 75.0, summary.TIRPercent, 1e-9)
}

func TestSummarizeDayFlagsUndefinedCV(t *testing.T) {
	day := mergedDay(at(24, 0, 0), -5, 5)

	s := NewSummarizer(testLogger(), SummarizerConfig{TargetLow: 3.9, TargetHigh: 10.0})
	summary := s.summarizeDay(day)

	assert.False(t, summary.CVValid, "CV is undefined when the mean is zero")
	assert.Equal(t, 0.0, summary.CV)
}

func TestSummarizeSingleReadingDay(t *testing.T) {
	day := mergedDay(at(24, 0, 0), 6.5)

	s := NewSummarizer(testLogger(), SummarizerConfig{TargetLow: 3.9, TargetHigh: 10.0})
	summary := s.summarizeDay(day)

	assert.Equal(t, 1, summary.ReadingCount)
	assert.Equal(t, 0.0, summary.StdDev)
	assert.Equal(t, 6.5, summary.Median)
	assert.Equal(t, 100.0, summary.TIRPercent)
	require.True(t, summary.CVValid)
	assert.Equal(t, 0.0, summary.CV)
}

func TestGenerateFromDataset(t *testing.T) {
	glucose, sleep, workouts, meals := testFixture()
	m := NewMerger(testLogger(), domain.UnitMmolPerL)
	dataset, err := m.Merge(context.Background(), glucose, sleep, workouts, meals)
	require.NoError(t, err)

	s := NewSummarizer(testLogger(), SummarizerConfig{TargetLow: 3.9, TargetHigh: 10.0})
	summaries, err := s.GenerateFromDataset(context.Background(), dataset)
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, "2024-12-24", summaries[0].DateString())
	assert.Equal(t, "2024-12-25", summaries[1].DateString())
	assert.Equal(t, 1, summaries[0].ReadingCount)
	assert.Equal(t, 5, summaries[1].ReadingCount)
	assert.Equal(t, 90*time.Minute, summaries[0].TimeAsleep)

	for _, summary := range summaries {
		assert.NoError(t, summary.Validate())
	}
}

func TestAggregateAcrossDays(t *testing.T) {
	dataset := &MergedDataset{
		Days: []MergedDay{
			mergedDay(at(24, 0, 0), 5, 6, 7, 8),
			mergedDay(at(25, 0, 0), 10, 12),
		},
		Start: at(24, 0, 0),
		End:   at(26, 0, 0),
		Unit:  domain.UnitMmolPerL,
	}

	s := NewSummarizer(testLogger(), SummarizerConfig{TargetLow: 3.9, TargetHigh: 10.0})
	agg := s.Aggregate(dataset)

	assert.Equal(t, 2, agg.Days)
	assert.Equal(t, 6, agg.TotalReadings)
	assert.InDelta(t, 8.0, agg.Mean, 1e-9)
	// 5 of 6 readings are inside [3.9, 10], the 10 on the bound included.
	assert.InDelta(t, 100.0*5/6, agg.TIRPercent, 1e-9)
	assert.Equal(t, 5.0, agg.Min)
	assert.Equal(t, 12.0, agg.Max)
	assert.True(t, agg.CVValid)
}

func TestAggregateEmptyDataset(t *testing.T) {
	s := NewSummarizer(testLogger(), SummarizerConfig{TargetLow: 3.9, TargetHigh: 10.0})
	agg := s.Aggregate(&MergedDataset{})
	assert.Equal(t, RangeSummary{}, agg)
}

func TestNewSummarizerDefaultsInvertedRange(t *testing.T) {
	s := NewSummarizer(testLogger(), SummarizerConfig{TargetLow: 10, TargetHigh: 4})
	low, high := s.TargetRange()
	assert.Equal(t, 3.9, low)
	assert.Equal(t, 10.0, high)
}
