package domain

import (
	"fmt"
	"strings"
	"time"
)

// Unit is the measurement unit of a glucose value
type Unit string

const (
	UnitMmolPerL Unit = "mmol/L"
	UnitMgPerDl  Unit = "mg/dL"
)

// MmolToMgdl is the conversion factor between mmol/L and mg/dL
// for glucose (molar mass 180.182 g/mol).
const MmolToMgdl = 18.0182

// ParseUnit normalizes a unit label from a CSV header or config value.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mmol/l", "mmol":
		return UnitMmolPerL, nil
	case "mg/dl", "mgdl":
		return UnitMgPerDl, nil
	default:
		return "", fmt.Errorf("unknown glucose unit %q", s)
	}
}

// ConvertUnit converts a glucose value between units.
func ConvertUnit(value float64, from, to Unit) float64 {
	if from == to {
		return value
	}
	if from == UnitMmolPerL && to == UnitMgPerDl {
		return value * MmolToMgdl
	}
	return value / MmolToMgdl
}

// PlausibleRange returns the physiologically plausible glucose range
// for a unit. Values outside it are treated as sensor noise.
func PlausibleRange(u Unit) (low, high float64) {
	if u == UnitMgPerDl {
		return 18.0, 630.0
	}
	return 1.0, 35.0
}

// RecordType identifies how a CGM reading was captured.
type RecordType string

const (
	// RecordHistoric is an automatically logged sensor reading.
	RecordHistoric RecordType = "historic"
	// RecordScan is a reading taken by manually scanning the sensor.
	RecordScan RecordType = "scan"
)

// GlucoseReading is a single timestamped glucose measurement. Values are
// stored in the dataset's configured unit; loaders convert on ingest.
type GlucoseReading struct {
	Timestamp time.Time  `json:"timestamp"`
	Value     float64    `json:"value" validate:"min=0"`
	Type      RecordType `json:"type"`
}

// InRange reports whether the reading lies inside [low, high] inclusive.
func (r GlucoseReading) InRange(low, high float64) bool {
	return r.Value >= low && r.Value <= high
}

// Day returns the reading's calendar date at midnight.
func (r GlucoseReading) Day() time.Time {
	return Midnight(r.Timestamp)
}

// Midnight truncates a timestamp to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
