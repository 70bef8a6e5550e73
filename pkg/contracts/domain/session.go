package domain

import (
	"fmt"
	"strings"
	"time"
)

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the span length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Covers reports whether t lies inside the interval.
func (iv Interval) Covers(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Clip intersects the interval with [from, to). The second return is
// false when they do not overlap.
func (iv Interval) Clip(from, to time.Time) (Interval, bool) {
	start, end := iv.Start, iv.End
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// Days lists the midnights of every calendar day the interval touches.
// A session that spans midnight belongs to each day it intersects.
func (iv Interval) Days() []time.Time {
	var days []time.Time
	for d := Midnight(iv.Start); d.Before(iv.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// SleepSession is one recorded sleep period from the sleep app export.
type SleepSession struct {
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Quality    string        `json:"quality,omitempty"`
	TimeInBed  time.Duration `json:"time_in_bed"`
	TimeAsleep time.Duration `json:"time_asleep"`
}

// Interval returns the session's time span.
func (s SleepSession) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Validate checks session ordering and duration consistency.
func (s SleepSession) Validate() error {
	if !s.End.After(s.Start) {
		return fmt.Errorf("sleep session end %s not after start %s",
			s.End.Format(time.RFC3339), s.Start.Format(time.RFC3339))
	}
	if s.TimeInBed < 0 || s.TimeAsleep < 0 {
		return fmt.Errorf("negative sleep duration")
	}
	return nil
}

// ActivityType classifies a workout session.
type ActivityType string

const (
	ActivityStrength ActivityType = "strength"
	ActivityCardio   ActivityType = "cardio"
	ActivityOther    ActivityType = "other"
)

// ParseActivityType maps free-form workout labels onto the known
// classes. Unrecognized labels fall back to ActivityOther.
func ParseActivityType(s string) ActivityType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strength", "weights", "weightlifting", "gym":
		return ActivityStrength
	case "cardio", "run", "running", "cycling", "swimming", "rowing", "hiit":
		return ActivityCardio
	default:
		return ActivityOther
	}
}

// WorkoutSession is one logged workout.
type WorkoutSession struct {
	Start    time.Time    `json:"start"`
	End      time.Time    `json:"end"`
	Activity ActivityType `json:"activity"`
}

// Interval returns the session's time span.
func (w WorkoutSession) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}

// Validate checks session ordering.
func (w WorkoutSession) Validate() error {
	if !w.End.After(w.Start) {
		return fmt.Errorf("workout end %s not after start %s",
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}
