package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateOrder fixes how slash-separated dates (25/12/2024 vs 12/25/2024)
// are read. ISO 8601 dates carry their own order and parse regardless.
type DateOrder string

const (
	// OrderAuto infers the order per file from a day field greater
	// than 12. Files without such evidence refuse to load.
	OrderAuto DateOrder = "auto"
	// OrderDayFirst reads slash dates as DD/MM/YYYY.
	OrderDayFirst DateOrder = "dmy"
	// OrderMonthFirst reads slash dates as MM/DD/YYYY.
	OrderMonthFirst DateOrder = "mdy"
)

// ParseDateOrder normalizes a configured date order value.
func ParseDateOrder(s string) (DateOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return OrderAuto, nil
	case "dmy":
		return OrderDayFirst, nil
	case "mdy":
		return OrderMonthFirst, nil
	default:
		return "", fmt.Errorf("unknown date order %q (want auto, dmy or mdy)", s)
	}
}

// isoLayouts are tried first; they are unambiguous.
var isoLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
}

var monthFirstLayouts = []string{
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"01-02-2006 15:04:05",
	"01-02-2006 15:04",
	"01-02-2006",
}

// parseTimestamp parses a timestamp string using the resolved date
// order. Slash dates under OrderAuto are rejected rather than guessed;
// callers resolve the order for the whole file before parsing rows.
func parseTimestamp(s string, order DateOrder) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	var layouts []string
	switch order {
	case OrderDayFirst:
		layouts = dayFirstLayouts
	case OrderMonthFirst:
		layouts = monthFirstLayouts
	default:
		return time.Time{}, fmt.Errorf("ambiguous date %q: date order not resolved", s)
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp %q", s)
}

// inferDateOrder scans raw date strings for a leading field greater
// than 12, which can only be a day. ISO dates carry no evidence and
// are skipped. Files with conflicting evidence, or with slash dates
// but no evidence at all, fail loudly instead of guessing.
func inferDateOrder(samples []string) (DateOrder, error) {
	var slashDates, dayFirst, monthFirst int
	for _, s := range samples {
		first, second, ok := splitSlashDate(s)
		if !ok {
			continue
		}
		slashDates++
		if first > 12 && second > 12 {
			continue // invalid under either order, row parsing will reject it
		}
		if first > 12 {
			dayFirst++
		}
		if second > 12 {
			monthFirst++
		}
	}

	switch {
	case slashDates == 0:
		// Every date is ISO, the order is never consulted.
		return OrderAuto, nil
	case dayFirst > 0 && monthFirst > 0:
		return "", fmt.Errorf("conflicting date order evidence: %d day-first and %d month-first dates", dayFirst, monthFirst)
	case dayFirst > 0:
		return OrderDayFirst, nil
	case monthFirst > 0:
		return OrderMonthFirst, nil
	default:
		return "", fmt.Errorf("date order is ambiguous: no day greater than 12 among %d dates, set data.date_order to dmy or mdy", slashDates)
	}
}

// splitSlashDate extracts the first two numeric fields of a slash or
// dash date like 25/12/2024. ISO dates (leading 4-digit year) and
// non-date strings report ok=false.
func splitSlashDate(s string) (first, second int, ok bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, 0, false
	}
	date := fields[0]

	sep := "/"
	if !strings.Contains(date, sep) {
		sep = "-"
	}
	parts := strings.Split(date, sep)
	if len(parts) != 3 || len(parts[0]) > 2 || len(parts[2]) != 4 {
		return 0, 0, false
	}

	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	second, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return first, second, true
}
