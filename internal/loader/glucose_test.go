package loader

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

func testLoader(unit domain.Unit, order DateOrder) *Loader {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), unit, order)
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadGlucoseLibreViewExport(t *testing.T) {
	content := `Glucose Data,Generated on,25/12/2024
Device,Serial Number,Device Timestamp,Record Type,Historic Glucose mmol/L,Scan Glucose mmol/L
FreeStyle Libre,ABC123,25/12/2024 08:00,0,6.5,
FreeStyle Libre,ABC123,25/12/2024 08:15,0,7.1,
FreeStyle Libre,ABC123,25/12/2024 08:20,1,,7.8
FreeStyle Libre,ABC123,25/12/2024 08:30,0,0,
FreeStyle Libre,ABC123,not a date,0,6.0,
FreeStyle Libre,ABC123,25/12/2024 08:45,0,abc,
`
	path := writeCSV(t, "glucose_data.csv", content)

	l := testLoader(domain.UnitMmolPerL, OrderAuto)
	readings, result, err := l.LoadGlucose(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, readings, 3)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 3, result.Skipped)

	assert.Equal(t, 6.5, readings[0].Value)
	assert.Equal(t, domain.RecordHistoric, readings[0].Type)
	assert.Equal(t, 25, readings[0].Timestamp.Day())
	assert.Equal(t, 8, readings[0].Timestamp.Hour())

	assert.Equal(t, 7.8, readings[2].Value)
	assert.Equal(t, domain.RecordScan, readings[2].Type)
}

func TestLoadGlucoseConvertsMgdl(t *testing.T) {
	content := `Device Timestamp,Record Type,Historic Glucose mg/dL,Scan Glucose mg/dL
2024-12-25 08:00,0,180,
2024-12-25 08:15,0,90,
`
	path := writeCSV(t, "glucose_data.csv", content)

	l := testLoader(domain.UnitMmolPerL, OrderAuto)
	readings, _, err := l.LoadGlucose(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, readings, 2)
	assert.InDelta(t, 180.0/domain.MmolToMgdl, readings[0].Value, 1e-9)
	assert.InDelta(t, 90.0/domain.MmolToMgdl, readings[1].Value, 1e-9)
}

func TestLoadGlucoseAveragesDuplicateTimestamps(t *testing.T) {
	content := `Device Timestamp,Record Type,Historic Glucose mmol/L,Scan Glucose mmol/L
2024-12-25 08:00,0,6.0,
2024-12-25 08:00,0,8.0,
2024-12-25 08:10,0,5.0,
`
	path := writeCSV(t, "glucose_data.csv", content)

	l := testLoader(domain.UnitMmolPerL, OrderAuto)
	readings, result, err := l.LoadGlucose(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, readings, 2)
	assert.Equal(t, 7.0, readings[0].Value)
	assert.Equal(t, 5.0, readings[1].Value)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 0, result.Skipped)
}

func TestLoadGlucoseWithoutRecordTypeColumn(t *testing.T) {
	content := `Device Timestamp,Historic Glucose mmol/L,Scan Glucose mmol/L
2024-12-25 08:00,6.5,6.6
2024-12-25 08:05,7.0,7.1
`
	path := writeCSV(t, "glucose_data.csv", content)

	l := testLoader(domain.UnitMmolPerL, OrderAuto)
	readings, _, err := l.LoadGlucose(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, readings, 2)
	assert.Equal(t, domain.RecordHistoric, readings[0].Type)
	assert.Equal(t, 6.5, readings[0].Value)
}

func TestLoadGlucoseMissingColumn(t *testing.T) {
	content := `Timestamp,Value
2024-12-25 08:00,6.5
`
	path := writeCSV(t, "glucose_data.csv", content)

	l := testLoader(domain.UnitMmolPerL, OrderAuto)
	_, _, err := l.LoadGlucose(context.Background(), path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataFormat))
	assert.Contains(t, err.Error(), "Device Timestamp")
}

func TestLoadGlucoseMissingFile(t *testing.T) {
	l := testLoader(domain.UnitMmolPerL, OrderAuto)
	_, _, err := l.LoadGlucose(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestLoadGlucoseAmbiguousDateOrder(t *testing.T) {
	content := `Device Timestamp,Record Type,Historic Glucose mmol/L,Scan Glucose mmol/L
05/06/2024 08:00,0,6.5,
`
	path := writeCSV(t, "glucose_data.csv", content)

	l := testLoader(domain.UnitMmolPerL, OrderAuto)
	_, _, err := l.LoadGlucose(context.Background(), path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataFormat))
	assert.Contains(t, err.Error(), "ambiguous")

	// The same file loads once the order is configured.
	l = testLoader(domain.UnitMmolPerL, OrderDayFirst)
	readings, _, err := l.LoadGlucose(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 5, readings[0].Timestamp.Day())
	assert.Equal(t, 6, int(readings[0].Timestamp.Month()))
}
