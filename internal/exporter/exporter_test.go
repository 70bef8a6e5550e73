package exporter

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgmcli/internal/config"
	"cgmcli/internal/dataprocessing"
	apperrors "cgmcli/internal/errors"
	"cgmcli/internal/render"
	"cgmcli/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()
	cfg.Dashboard.OutputDir = t.TempDir()
	return config.NewPaths(cfg)
}

func testDay(dayOfMonth int, values ...float64) dataprocessing.MergedDay {
	date := time.Date(2024, 12, dayOfMonth, 0, 0, 0, 0, time.UTC)
	day := dataprocessing.MergedDay{
		Date: date,
		Meals: []domain.MealEntry{
			{Timestamp: date.Add(8 * time.Hour), Label: "Breakfast"},
		},
	}
	for i, v := range values {
		day.Readings = append(day.Readings, dataprocessing.MergedReading{
			GlucoseReading: domain.GlucoseReading{
				Timestamp: date.Add(6*time.Hour + time.Duration(i)*30*time.Minute),
				Value:     v,
				Type:      domain.RecordHistoric,
			},
		})
	}
	return day
}

func testDataset() *dataprocessing.MergedDataset {
	return &dataprocessing.MergedDataset{
		Days: []dataprocessing.MergedDay{
			testDay(24, 5.2, 6.8, 7.4, 6.1),
			testDay(25, 6.0, 9.2, 5.5, 7.7),
		},
		Start: time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC),
		Unit:  domain.UnitMmolPerL,
	}
}

func testExporter(t *testing.T, opts Options) (*Exporter, *config.Paths, []domain.DailySummary, dataprocessing.RangeSummary) {
	t.Helper()
	paths := testPaths(t)
	renderer := render.NewRenderer(testLogger(), render.Options{Width: 700, Height: 260})
	summarizer := dataprocessing.NewSummarizer(testLogger(), dataprocessing.SummarizerConfig{TargetLow: 3.9, TargetHigh: 10.0})

	dataset := testDataset()
	summaries, err := summarizer.GenerateFromDataset(context.Background(), dataset)
	require.NoError(t, err)
	agg := summarizer.Aggregate(dataset)

	return New(testLogger(), renderer, paths, opts), paths, summaries, agg
}

func TestExportDashboardUnsupportedFormat(t *testing.T) {
	exp, _, summaries, agg := testExporter(t, Options{})

	_, _, err := exp.ExportDashboard(context.Background(), testDataset(), summaries, agg, "gif")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))
	assert.Contains(t, err.Error(), `unsupported export format "gif"`)
}

func TestExportDashboardPNG(t *testing.T) {
	exp, paths, summaries, agg := testExporter(t, Options{Overview: true})

	path, size, err := exp.ExportDashboard(context.Background(), testDataset(), summaries, agg, FormatPNG)

	require.NoError(t, err)
	assert.Equal(t, paths.DashboardPath("png"), path)
	assert.Greater(t, size, int64(0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	assert.Equal(t, size, int64(len(data)))
}

func TestExportDashboardHTML(t *testing.T) {
	exp, paths, summaries, agg := testExporter(t, Options{})

	path, size, err := exp.ExportDashboard(context.Background(), testDataset(), summaries, agg, FormatHTML)

	require.NoError(t, err)
	assert.Equal(t, paths.DashboardPath("html"), path)
	assert.Greater(t, size, int64(0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	// One inline chart per day, no overview.
	assert.Equal(t, 2, strings.Count(html, "<svg"))
	assert.Contains(t, html, "day-2024-12-24")
	assert.Contains(t, html, "day-2024-12-25")
	assert.Contains(t, html, "TOTAL (2 days)")
	assert.Contains(t, html, "mmol/L")
}

func TestExportDashboardHTMLWithOverview(t *testing.T) {
	exp, _, summaries, agg := testExporter(t, Options{Overview: true})

	path, _, err := exp.ExportDashboard(context.Background(), testDataset(), summaries, agg, FormatHTML)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(string(data), "<svg"))
	assert.Contains(t, string(data), `id="overview"`)
}

func TestWriteArtifactRejectsEmpty(t *testing.T) {
	exp, paths, _, _ := testExporter(t, Options{})

	_, err := exp.writeArtifact(paths.DashboardPath("png"), nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))
}
