package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgmcli/internal/dataprocessing"
	"cgmcli/pkg/contracts/domain"
)

func testSummaries() []domain.DailySummary {
	return []domain.DailySummary{
		{
			Date:         time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC),
			ReadingCount: 4,
			Mean:         6.5,
			Median:       6.5,
			StdDev:       1.2,
			Min:          5,
			Max:          8,
			TIRPercent:   100,
			CV:           18.46,
			CVValid:      true,
			TimeAsleep:   8 * time.Hour,
			WorkoutCount: 1,
			MealCount:    3,
		},
		{
			Date:         time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
			ReadingCount: 3,
			Mean:         7,
			Median:       6,
			StdDev:       2.1,
			Min:          4,
			Max:          12,
			TIRPercent:   66.666,
			CVValid:      false,
			TimeAsleep:   6*time.Hour + 30*time.Minute,
			MealCount:    1,
		},
	}
}

func testAggregate() dataprocessing.RangeSummary {
	return dataprocessing.RangeSummary{
		Days:          2,
		TotalReadings: 7,
		Mean:          6.71,
		Median:        6.5,
		StdDev:        1.8,
		Min:           4,
		Max:           12,
		TIRPercent:    85.7,
		CV:            26.8,
		CVValid:       true,
		TotalAsleep:   14*time.Hour + 30*time.Minute,
		TotalWorkouts: 1,
		TotalMeals:    4,
	}
}

func TestExportCSVWritesSummaryTable(t *testing.T) {
	paths := testPaths(t)
	exp := NewSummaryExporter(paths)

	require.NoError(t, exp.ExportCSV(testSummaries()))

	data, err := os.ReadFile(paths.SummaryCSV)
	require.NoError(t, err)

	// The BOM keeps Excel from misreading UTF-8.
	bom := []byte{0xEF, 0xBB, 0xBF}
	require.True(t, bytes.HasPrefix(data, bom))

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, bom))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per summary")

	assert.Equal(t, summaryHeaders(), rows[0])
	assert.Equal(t, []string{
		"2024-12-24", "4", "6.50", "6.50", "1.20", "5.00", "8.00",
		"100.0", "18.5", "true", "8h0m0s", "1", "3",
	}, rows[1])
	assert.Equal(t, "2024-12-25", rows[2][0])
	assert.Equal(t, "66.7", rows[2][7])
	assert.Equal(t, "false", rows[2][9])
}

func TestCSVWriterResolvesRelativePaths(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths)

	err := w.WriteCSV("extra.csv", WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(paths.OutputDir, "extra.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}
