package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

// MergedReading is one glucose reading annotated with the context that
// overlaps it in the other sources.
type MergedReading struct {
	domain.GlucoseReading

	// Asleep is true when a sleep session covers the timestamp.
	Asleep bool

	// Activity is the covering workout's type, or "" outside workouts.
	Activity domain.ActivityType

	// RateOfChange is the value delta per minute against the previous
	// reading of the same day. The first reading of a day carries 0.
	RateOfChange float64
}

// DayWorkout is a workout session clipped to one calendar day.
type DayWorkout struct {
	Interval domain.Interval
	Activity domain.ActivityType
}

// MergedDay holds everything attributed to one calendar day.
type MergedDay struct {
	Date     time.Time
	Readings []MergedReading

	// Sleep holds the sleep intervals clipped to the day's bounds;
	// TimeAsleep is their summed duration.
	Sleep      []domain.Interval
	TimeAsleep time.Duration

	Workouts []DayWorkout
	Meals    []domain.MealEntry
}

// MergedDataset is the aligned view of one run's data, one entry per
// calendar day that has at least one glucose reading. Days are sorted
// chronologically.
type MergedDataset struct {
	Days []MergedDay

	// Start is the first day's midnight, End the midnight after the
	// last day, so [Start, End) spans the whole dataset.
	Start time.Time
	End   time.Time

	// Unit is the unit all glucose values are stored in.
	Unit domain.Unit
}

// Day returns the merged day for a date, or nil when the date has no
// readings.
func (d *MergedDataset) Day(date time.Time) *MergedDay {
	date = domain.Midnight(date)
	for i := range d.Days {
		if d.Days[i].Date.Equal(date) {
			return &d.Days[i]
		}
	}
	return nil
}

// Readings returns all readings of the dataset in chronological order.
func (d *MergedDataset) Readings() []MergedReading {
	var all []MergedReading
	for _, day := range d.Days {
		all = append(all, day.Readings...)
	}
	return all
}

// Merger aligns the secondary sources onto the glucose timeline. The
// inputs are never mutated; every merge builds a fresh dataset.
type Merger struct {
	logger *slog.Logger
	unit   domain.Unit
}

// NewMerger creates a Merger. The unit tags the dataset so downstream
// consumers can label axes without re-reading configuration.
func NewMerger(logger *slog.Logger, unit domain.Unit) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{logger: logger, unit: unit}
}

// Merge builds the per-day dataset. Glucose timestamps are the primary
// axis: only days with at least one reading appear, and sleep, workout
// and meal data attach to those days. Sessions spanning midnight are
// clipped into every day they intersect.
func (m *Merger) Merge(ctx context.Context, glucose []domain.GlucoseReading, sleep []domain.SleepSession, workouts []domain.WorkoutSession, meals []domain.MealEntry) (*MergedDataset, error) {
	if len(glucose) == 0 {
		return nil, apperrors.NewProcessingError("no glucose readings to merge", nil)
	}

	m.logger.InfoContext(ctx, "merging data sources",
		slog.Int("glucose_readings", len(glucose)),
		slog.Int("sleep_sessions", len(sleep)),
		slog.Int("workouts", len(workouts)),
		slog.Int("meals", len(meals)),
	)

	byDay := groupReadingsByDay(glucose)

	dates := make([]time.Time, 0, len(byDay))
	for date := range byDay {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	days := make([]MergedDay, 0, len(dates))
	for _, date := range dates {
		days = append(days, m.mergeDay(date, byDay[date], sleep, workouts, meals))
	}

	dataset := &MergedDataset{
		Days:  days,
		Start: days[0].Date,
		End:   days[len(days)-1].Date.AddDate(0, 0, 1),
		Unit:  m.unit,
	}

	m.logger.InfoContext(ctx, "merge completed",
		slog.Int("days", len(dataset.Days)),
		slog.Time("start", dataset.Start),
		slog.Time("end", dataset.End),
	)

	return dataset, nil
}

// mergeDay assembles one calendar day from the already grouped
// readings and the full session and meal lists.
func (m *Merger) mergeDay(date time.Time, readings []domain.GlucoseReading, sleep []domain.SleepSession, workouts []domain.WorkoutSession, meals []domain.MealEntry) MergedDay {
	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	day := MergedDay{Date: date}

	for _, session := range sleep {
		if clipped, ok := session.Interval().Clip(dayStart, dayEnd); ok {
			day.Sleep = append(day.Sleep, clipped)
			day.TimeAsleep += clipped.Duration()
		}
	}
	for _, workout := range workouts {
		if clipped, ok := workout.Interval().Clip(dayStart, dayEnd); ok {
			day.Workouts = append(day.Workouts, DayWorkout{Interval: clipped, Activity: workout.Activity})
		}
	}
	for _, meal := range meals {
		if meal.Day().Equal(date) {
			day.Meals = append(day.Meals, meal)
		}
	}

	day.Readings = make([]MergedReading, 0, len(readings))
	for i, reading := range readings {
		merged := MergedReading{GlucoseReading: reading}

		for _, iv := range day.Sleep {
			if iv.Covers(reading.Timestamp) {
				merged.Asleep = true
				break
			}
		}
		for _, workout := range day.Workouts {
			if workout.Interval.Covers(reading.Timestamp) {
				merged.Activity = workout.Activity
				break
			}
		}
		if i > 0 {
			prev := readings[i-1]
			if minutes := reading.Timestamp.Sub(prev.Timestamp).Minutes(); minutes > 0 {
				merged.RateOfChange = (reading.Value - prev.Value) / minutes
			}
		}

		day.Readings = append(day.Readings, merged)
	}

	return day
}

// groupReadingsByDay buckets readings by calendar day, keeping each
// bucket in chronological order.
func groupReadingsByDay(readings []domain.GlucoseReading) map[time.Time][]domain.GlucoseReading {
	byDay := make(map[time.Time][]domain.GlucoseReading)
	for _, reading := range readings {
		day := reading.Day()
		byDay[day] = append(byDay[day], reading)
	}
	for day := range byDay {
		bucket := byDay[day]
		sort.Slice(bucket, func(i, j int) bool {
			return bucket[i].Timestamp.Before(bucket[j].Timestamp)
		})
	}
	return byDay
}

// WindowReadings trims a glucose series to the [from, to) window and
// keeps at most maxDays of the most recent calendar days. A zero time
// or a zero maxDays disables the respective cut. The input slice is
// not modified.
func WindowReadings(readings []domain.GlucoseReading, from, to time.Time, maxDays int) []domain.GlucoseReading {
	out := make([]domain.GlucoseReading, 0, len(readings))
	for _, reading := range readings {
		if !from.IsZero() && reading.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !reading.Timestamp.Before(to) {
			continue
		}
		out = append(out, reading)
	}

	if maxDays <= 0 {
		return out
	}

	seen := make(map[time.Time]bool)
	for _, reading := range out {
		seen[reading.Day()] = true
	}
	if len(seen) <= maxDays {
		return out
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	cutoff := days[len(days)-maxDays]

	kept := out[:0]
	for _, reading := range out {
		if !reading.Day().Before(cutoff) {
			kept = append(kept, reading)
		}
	}
	return kept
}
