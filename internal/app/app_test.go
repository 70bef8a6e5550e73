package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgmcli/internal/config"
	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sampleConfig points a default configuration at the bundled sample
// exports and a temporary output directory.
func sampleConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = filepath.Join("testdata", "sample")
	cfg.Dashboard.OutputDir = t.TempDir()
	cfg.Dashboard.Format = "html"
	cfg.Exports.SummaryCSV = true
	cfg.Exports.SummaryXLSX = false
	cfg.Logging.FilePath = filepath.Join(t.TempDir(), "run.log")
	cfg.Observability.MetricsFile = ""
	return cfg
}

func runSample(t *testing.T, cfg *config.Config) *Result {
	t.Helper()
	runner, err := NewRunner(cfg, testLogger(), nil)
	require.NoError(t, err)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	return result
}

// The sample exports are small enough to verify every statistic by
// hand. Day one carries 5, 6, 7 and 10 mmol/L; day two carries 4, 6
// (a scan row) and 12. One row has a broken timestamp and one an
// implausible 45 mmol/L value; both must be skipped, not loaded.
func TestRunnerEndToEnd(t *testing.T) {
	cfg := sampleConfig(t)
	result := runSample(t, cfg)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, domain.UnitMmolPerL, result.Unit)
	require.Len(t, result.Summaries, 2)

	day1 := result.Summaries[0]
	assert.Equal(t, "2024-12-24", day1.DateString())
	assert.Equal(t, 4, day1.ReadingCount)
	assert.InDelta(t, 7.0, day1.Mean, 1e-9)
	assert.InDelta(t, 6.5, day1.Median, 1e-9)
	// Sample standard deviation of {5,6,7,10}: sqrt(14/3).
	assert.InDelta(t, 2.160247, day1.StdDev, 1e-5)
	assert.Equal(t, 5.0, day1.Min)
	assert.Equal(t, 10.0, day1.Max)
	// 10.0 sits exactly on the upper bound and counts as in range.
	assert.Equal(t, 100.0, day1.TIRPercent)
	require.True(t, day1.CVValid)
	assert.InDelta(t, 100*2.160247/7.0, day1.CV, 1e-3)
	// Sleep 22:00 to 06:30 contributes two hours before midnight.
	assert.Equal(t, 2*time.Hour, day1.TimeAsleep)
	assert.Equal(t, 0, day1.WorkoutCount)
	assert.Equal(t, 2, day1.MealCount)

	day2 := result.Summaries[1]
	assert.Equal(t, "2024-12-25", day2.DateString())
	assert.Equal(t, 3, day2.ReadingCount)
	assert.InDelta(t, 22.0/3, day2.Mean, 1e-9)
	assert.InDelta(t, 6.0, day2.Median, 1e-9)
	// Sample standard deviation of {4,6,12}: sqrt(52/3).
	assert.InDelta(t, 4.163332, day2.StdDev, 1e-5)
	assert.Equal(t, 4.0, day2.Min)
	assert.Equal(t, 12.0, day2.Max)
	assert.InDelta(t, 100.0*2/3, day2.TIRPercent, 1e-9)
	assert.Equal(t, 6*time.Hour+30*time.Minute, day2.TimeAsleep)
	assert.Equal(t, 1, day2.WorkoutCount)
	assert.Equal(t, 1, day2.MealCount)

	agg := result.Aggregate
	assert.Equal(t, 2, agg.Days)
	assert.Equal(t, 7, agg.TotalReadings)
	assert.InDelta(t, 50.0/7, agg.Mean, 1e-9)
	assert.InDelta(t, 6.0, agg.Median, 1e-9)
	assert.InDelta(t, 100.0*6/7, agg.TIRPercent, 1e-9)
	assert.Equal(t, 8*time.Hour+30*time.Minute, agg.TotalAsleep)
	assert.Equal(t, 1, agg.TotalWorkouts)
	assert.Equal(t, 3, agg.TotalMeals)

	glucose := result.LoadResults[domain.SourceGlucose]
	assert.Equal(t, 7, glucose.Rows)
	assert.Equal(t, 2, glucose.Skipped)

	quality := result.Quality
	assert.Equal(t, 2, quality.Days)
	assert.Equal(t, 2, quality.SkippedRows[domain.SourceGlucose])
	assert.InDelta(t, 100.0, quality.SleepCoveragePct, 1e-9)
	// 7 readings against 576 five-minute slots in two days.
	assert.InDelta(t, 100*(1-7.0/576), quality.MissingGlucosePct, 1e-6)

	info, err := os.Stat(result.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), result.ArtifactSize)
	assert.Greater(t, result.ArtifactSize, int64(0))
	assert.True(t, strings.HasSuffix(result.ArtifactPath, ".html"))

	require.NotEmpty(t, result.SummaryCSVPath)
	data, err := os.ReadFile(result.SummaryCSVPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3, "header plus one row per day")
}

func TestRunnerPNGArtifact(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Dashboard.Format = "png"
	cfg.Exports.SummaryXLSX = true

	result := runSample(t, cfg)

	assert.True(t, strings.HasSuffix(result.ArtifactPath, ".png"))
	assert.Greater(t, result.ArtifactSize, int64(0))

	require.NotEmpty(t, result.SummaryXLSXPath)
	info, err := os.Stat(result.SummaryXLSXPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunnerWindowRestrictsDays(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Dashboard.From = "2024-12-25"
	cfg.Dashboard.To = "2024-12-25"

	result := runSample(t, cfg)

	require.Len(t, result.Summaries, 1)
	assert.Equal(t, "2024-12-25", result.Summaries[0].DateString())
	assert.Equal(t, 1, result.Quality.Days)
}

func TestRunnerMaxDaysKeepsMostRecent(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Dashboard.MaxDays = 1

	result := runSample(t, cfg)

	require.Len(t, result.Summaries, 1)
	assert.Equal(t, "2024-12-25", result.Summaries[0].DateString())
}

func TestRunnerEmptyWindowFails(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Dashboard.From = "2030-01-01"

	runner, err := NewRunner(cfg, testLogger(), nil)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestRunnerInvertedWindowFails(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Dashboard.From = "2024-12-25"
	cfg.Dashboard.To = "2024-12-24"

	runner, err := NewRunner(cfg, testLogger(), nil)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestRunnerMissingInputsFails(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Data.Dir = t.TempDir()

	runner, err := NewRunner(cfg, testLogger(), nil)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestNewRunnerRejectsNilConfig(t *testing.T) {
	_, err := NewRunner(nil, testLogger(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestNewRunnerRejectsUnknownDateOrder(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Data.DateOrder = "ymd"

	_, err := NewRunner(cfg, testLogger(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

// Two runs over the same inputs must agree on every statistic.
func TestRunnerIsDeterministic(t *testing.T) {
	cfg := sampleConfig(t)
	first := runSample(t, cfg)
	second := runSample(t, cfg)

	assert.Equal(t, first.Summaries, second.Summaries)
	assert.Equal(t, first.Aggregate, second.Aggregate)
	assert.Equal(t, first.Quality, second.Quality)
}
