package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

// LibreView export columns. The glucose value columns carry the export
// unit in their name, e.g. "Historic Glucose mmol/L".
const (
	colDeviceTimestamp = "Device Timestamp"
	colRecordType      = "Record Type"

	historicGlucosePrefix = "historic glucose"
	scanGlucosePrefix     = "scan glucose"
)

// glucoseColumns locates the LibreView columns and the export unit.
type glucoseColumns struct {
	timestamp  int
	recordType int // -1 when the export has no Record Type column
	historic   int
	scan       int
	unit       domain.Unit
}

// LoadGlucose reads a LibreView glucose export. Full exports open with
// a report-title line before the header row; trimmed exports start at
// the header, so both layouts are probed. Values are converted to the
// configured unit, implausible readings are skipped, and readings that
// share a timestamp are averaged into one.
func (l *Loader) LoadGlucose(ctx context.Context, path string) ([]domain.GlucoseReading, LoadResult, error) {
	records, err := readCSV(path, ',')
	if err != nil {
		return nil, LoadResult{}, err
	}

	headerRow := -1
	for i := 0; i < len(records) && i < 2; i++ {
		if columnIndex(records[i], colDeviceTimestamp) >= 0 {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, LoadResult{}, apperrors.NewDataFormatError(
			fmt.Sprintf("%s: missing column %q", filepath.Base(path), colDeviceTimestamp), nil)
	}

	cols, err := findGlucoseColumns(records[headerRow], path)
	if err != nil {
		return nil, LoadResult{}, err
	}

	dataStart := headerRow + 1
	samples := make([]string, 0, len(records)-dataStart)
	for _, record := range records[dataStart:] {
		samples = append(samples, field(record, cols.timestamp))
	}
	order, err := l.resolveOrder(path, samples)
	if err != nil {
		return nil, LoadResult{}, err
	}

	low, high := domain.PlausibleRange(cols.unit)

	var readings []domain.GlucoseReading
	var skipped int
	for i := dataStart; i < len(records); i++ {
		reading, err := parseGlucoseRecord(records[i], cols, order, i+1)
		if err != nil {
			skipped++
			l.logger.WarnContext(ctx, "skipping glucose row",
				"file", filepath.Base(path),
				"line", i+1,
				"error", err,
			)
			continue
		}
		if reading.Value < low || reading.Value > high {
			skipped++
			l.logger.WarnContext(ctx, "skipping implausible glucose value",
				"file", filepath.Base(path),
				"line", i+1,
				"value", reading.Value,
				"unit", string(cols.unit),
			)
			continue
		}
		reading.Value = domain.ConvertUnit(reading.Value, cols.unit, l.unit)
		readings = append(readings, reading)
	}

	readings, duplicates := mergeDuplicateTimestamps(readings)

	l.logger.InfoContext(ctx, "glucose data loaded",
		"file", filepath.Base(path),
		"readings", len(readings),
		"skipped", skipped,
		"duplicates_averaged", duplicates,
		"export_unit", string(cols.unit),
	)

	return readings, LoadResult{Rows: len(readings), Skipped: skipped}, nil
}

// findGlucoseColumns resolves the value columns by prefix and reads
// the export unit off the historic column's name.
func findGlucoseColumns(header []string, path string) (glucoseColumns, error) {
	cols := glucoseColumns{timestamp: -1, recordType: -1, historic: -1, scan: -1}
	cols.timestamp = columnIndex(header, colDeviceTimestamp)
	cols.recordType = columnIndex(header, colRecordType)

	var unitLabel string
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		switch {
		case strings.HasPrefix(name, historicGlucosePrefix) && cols.historic < 0:
			cols.historic = i
			unitLabel = strings.TrimSpace(name[len(historicGlucosePrefix):])
		case strings.HasPrefix(name, scanGlucosePrefix) && cols.scan < 0:
			cols.scan = i
		}
	}

	if cols.historic < 0 {
		return cols, apperrors.NewDataFormatError(
			fmt.Sprintf("%s: missing column %q", filepath.Base(path), "Historic Glucose"), nil)
	}
	unit, err := domain.ParseUnit(unitLabel)
	if err != nil {
		return cols, apperrors.NewDataFormatError(
			fmt.Sprintf("%s: unreadable glucose unit in header", filepath.Base(path)), err)
	}
	cols.unit = unit
	return cols, nil
}

// parseGlucoseRecord parses one data row. The Record Type column, when
// present, selects between the historic and scan value columns.
func parseGlucoseRecord(record []string, cols glucoseColumns, order DateOrder, lineNum int) (domain.GlucoseReading, error) {
	ts, err := parseTimestamp(field(record, cols.timestamp), order)
	if err != nil {
		return domain.GlucoseReading{}, fmt.Errorf("parse timestamp (line %d): %w", lineNum, err)
	}

	recordType := domain.RecordHistoric
	valueCol := cols.historic
	if cols.recordType >= 0 {
		switch field(record, cols.recordType) {
		case "", "0":
			// historic reading
		case "1":
			recordType = domain.RecordScan
			valueCol = cols.scan
		default:
			return domain.GlucoseReading{}, fmt.Errorf("unsupported record type %q (line %d)",
				field(record, cols.recordType), lineNum)
		}
	}
	if valueCol < 0 {
		return domain.GlucoseReading{}, fmt.Errorf("no value column for %s record (line %d)", recordType, lineNum)
	}

	raw := field(record, valueCol)
	if raw == "" {
		return domain.GlucoseReading{}, fmt.Errorf("empty glucose value (line %d)", lineNum)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.GlucoseReading{}, fmt.Errorf("parse glucose value (line %d): %w", lineNum, err)
	}

	return domain.GlucoseReading{Timestamp: ts, Value: value, Type: recordType}, nil
}

// mergeDuplicateTimestamps sorts readings chronologically and averages
// the values of readings sharing an identical timestamp, keeping the
// first record's type. Returns how many rows were folded away.
func mergeDuplicateTimestamps(readings []domain.GlucoseReading) ([]domain.GlucoseReading, int) {
	if len(readings) < 2 {
		return readings, 0
	}

	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})

	out := make([]domain.GlucoseReading, 0, len(readings))
	var duplicates int
	for i := 0; i < len(readings); {
		j := i + 1
		sum := readings[i].Value
		for j < len(readings) && readings[j].Timestamp.Equal(readings[i].Timestamp) {
			sum += readings[j].Value
			j++
		}
		reading := readings[i]
		if n := j - i; n > 1 {
			reading.Value = sum / float64(n)
			duplicates += n - 1
		}
		out = append(out, reading)
		i = j
	}
	return out, duplicates
}
