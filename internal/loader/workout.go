package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"cgmcli/pkg/contracts/domain"
)

// Workout log columns.
const (
	colWorkoutStart = "start_time"
	colWorkoutEnd   = "end_time"
	colWorkoutType  = "workout_type"
)

// LoadWorkouts reads the workout log. Free-form activity labels are
// normalized into strength, cardio or other.
func (l *Loader) LoadWorkouts(ctx context.Context, path string) ([]domain.WorkoutSession, LoadResult, error) {
	records, err := readCSV(path, ',')
	if err != nil {
		return nil, LoadResult{}, err
	}

	idx, err := requireColumns(records[0], path, colWorkoutStart, colWorkoutEnd, colWorkoutType)
	if err != nil {
		return nil, LoadResult{}, err
	}

	samples := make([]string, 0, 2*(len(records)-1))
	for _, record := range records[1:] {
		samples = append(samples, field(record, idx[colWorkoutStart]), field(record, idx[colWorkoutEnd]))
	}
	order, err := l.resolveOrder(path, samples)
	if err != nil {
		return nil, LoadResult{}, err
	}

	var sessions []domain.WorkoutSession
	var skipped int
	for i := 1; i < len(records); i++ {
		session, err := parseWorkoutRecord(records[i], idx, order, i+1)
		if err != nil {
			skipped++
			l.logger.WarnContext(ctx, "skipping workout row",
				"file", filepath.Base(path),
				"line", i+1,
				"error", err,
			)
			continue
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Start.Before(sessions[j].Start)
	})

	l.logger.InfoContext(ctx, "workout data loaded",
		"file", filepath.Base(path),
		"sessions", len(sessions),
		"skipped", skipped,
	)

	return sessions, LoadResult{Rows: len(sessions), Skipped: skipped}, nil
}

func parseWorkoutRecord(record []string, idx map[string]int, order DateOrder, lineNum int) (domain.WorkoutSession, error) {
	start, err := parseTimestamp(field(record, idx[colWorkoutStart]), order)
	if err != nil {
		return domain.WorkoutSession{}, fmt.Errorf("parse start_time (line %d): %w", lineNum, err)
	}
	end, err := parseTimestamp(field(record, idx[colWorkoutEnd]), order)
	if err != nil {
		return domain.WorkoutSession{}, fmt.Errorf("parse end_time (line %d): %w", lineNum, err)
	}

	session := domain.WorkoutSession{
		Start:    start,
		End:      end,
		Activity: domain.ParseActivityType(field(record, idx[colWorkoutType])),
	}
	if err := session.Validate(); err != nil {
		return domain.WorkoutSession{}, fmt.Errorf("line %d: %w", lineNum, err)
	}
	return session, nil
}
