package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"cgmcli/pkg/contracts/domain"
)

// Sleep app export columns. The file is semicolon separated and the
// duration columns hold seconds.
const (
	colSleepStart   = "Start"
	colSleepEnd     = "End"
	colSleepQuality = "Sleep Quality"
	colTimeInBed    = "Time in bed (seconds)"
	colTimeAsleep   = "Time asleep (seconds)"
)

// LoadSleep reads a semicolon-separated sleep export. Sessions that
// span midnight are kept whole; day attribution happens in the merge.
func (l *Loader) LoadSleep(ctx context.Context, path string) ([]domain.SleepSession, LoadResult, error) {
	records, err := readCSV(path, ';')
	if err != nil {
		return nil, LoadResult{}, err
	}

	idx, err := requireColumns(records[0], path,
		colSleepStart, colSleepEnd, colSleepQuality, colTimeInBed, colTimeAsleep)
	if err != nil {
		return nil, LoadResult{}, err
	}

	samples := make([]string, 0, 2*(len(records)-1))
	for _, record := range records[1:] {
		samples = append(samples, field(record, idx[colSleepStart]), field(record, idx[colSleepEnd]))
	}
	order, err := l.resolveOrder(path, samples)
	if err != nil {
		return nil, LoadResult{}, err
	}

	var sessions []domain.SleepSession
	var skipped int
	for i := 1; i < len(records); i++ {
		session, err := parseSleepRecord(records[i], idx, order, i+1)
		if err != nil {
			skipped++
			l.logger.WarnContext(ctx, "skipping sleep row",
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

	l.logger.InfoContext(ctx, "sleep data loaded",
		"file", filepath.Base(path),
		"sessions", len(sessions),
		"skipped", skipped,
	)

	return sessions, LoadResult{Rows: len(sessions), Skipped: skipped}, nil
}

func parseSleepRecord(record []string, idx map[string]int, order DateOrder, lineNum int) (domain.SleepSession, error) {
	start, err := parseTimestamp(field(record, idx[colSleepStart]), order)
	if err != nil {
		return domain.SleepSession{}, fmt.Errorf("parse start (line %d): %w", lineNum, err)
	}
	end, err := parseTimestamp(field(record, idx[colSleepEnd]), order)
	if err != nil {
		return domain.SleepSession{}, fmt.Errorf("parse end (line %d): %w", lineNum, err)
	}

	inBed, err := parseSeconds(field(record, idx[colTimeInBed]), "time in bed", lineNum)
	if err != nil {
		return domain.SleepSession{}, err
	}
	asleep, err := parseSeconds(field(record, idx[colTimeAsleep]), "time asleep", lineNum)
	if err != nil {
		return domain.SleepSession{}, err
	}

	session := domain.SleepSession{
		Start:      start,
		End:        end,
		Quality:    field(record, idx[colSleepQuality]),
		TimeInBed:  inBed,
		TimeAsleep: asleep,
	}
	if err := session.Validate(); err != nil {
		return domain.SleepSession{}, fmt.Errorf("line %d: %w", lineNum, err)
	}
	return session, nil
}

// parseSeconds converts a seconds cell into a Duration. Empty cells
// mean the app did not record the value and map to zero.
func parseSeconds(raw, name string, lineNum int) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s (line %d): %w", name, lineNum, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
