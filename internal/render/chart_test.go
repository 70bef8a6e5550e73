package render

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"cgmcli/internal/dataprocessing"
	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

func testRenderer(opts Options) *Renderer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRenderer(logger, opts)
}

func panelReading(hour, minute int, value float64) dataprocessing.MergedReading {
	return dataprocessing.MergedReading{
		GlucoseReading: domain.GlucoseReading{
			Timestamp: time.Date(2024, 12, 24, hour, minute, 0, 0, time.UTC),
			Value:     value,
			Type:      domain.RecordHistoric,
		},
	}
}

func panelDay() dataprocessing.MergedDay {
	date := time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
	return dataprocessing.MergedDay{
		Date: date,
		Readings: []dataprocessing.MergedReading{
			panelReading(6, 0, 5.2),
			panelReading(8, 15, 7.9),
			panelReading(12, 0, 6.4),
			panelReading(15, 30, 5.8),
			panelReading(19, 0, 9.1),
			panelReading(22, 0, 6.0),
		},
		Sleep: []domain.Interval{
			{Start: date, End: date.Add(6*time.Hour + 45*time.Minute)},
		},
		TimeAsleep: 6*time.Hour + 45*time.Minute,
		Workouts: []dataprocessing.DayWorkout{
			{
				Interval: domain.Interval{
					Start: date.Add(18 * time.Hour),
					End:   date.Add(19*time.Hour + 30*time.Minute),
				},
				Activity: domain.ActivityStrength,
			},
		},
		Meals: []domain.MealEntry{
			{Timestamp: date.Add(8*time.Hour + 10*time.Minute), Label: "Breakfast"},
			{Timestamp: date.Add(13 * time.Hour), Label: "Lunch"},
		},
	}
}

func TestNewRendererDefaults(t *testing.T) {
	r := testRenderer(Options{})

	opts := r.Options()
	assert.Equal(t, 1500, opts.Width)
	assert.Equal(t, 400, opts.Height)
	assert.Equal(t, domain.UnitMmolPerL, opts.Unit)
	assert.Equal(t, 3.9, opts.TargetLow)
	assert.Equal(t, 10.0, opts.TargetHigh)
	assert.Equal(t, 45*time.Minute, opts.MinLabelGap)
	assert.Equal(t, 4, opts.MaxLabelLevels)
}

func TestDayChartAssemblesOverlays(t *testing.T) {
	r := testRenderer(Options{})
	day := panelDay()

	ch, err := r.DayChart(day)

	require.NoError(t, err)
	assert.Equal(t, "Tue 2024-12-24", ch.Title)
	// Target band pair, sleep band, workout band, trace, meal dots,
	// meal labels.
	assert.Len(t, ch.Series, 7)

	xRange, ok := ch.XAxis.Range.(*chart.ContinuousRange)
	require.True(t, ok)
	assert.Equal(t, chart.TimeToFloat64(day.Date), xRange.Min)
	assert.Equal(t, chart.TimeToFloat64(day.Date.AddDate(0, 0, 1)), xRange.Max)

	yRange, ok := ch.YAxis.Range.(*chart.ContinuousRange)
	require.True(t, ok)
	assert.LessOrEqual(t, yRange.Min, 3.9)
	assert.GreaterOrEqual(t, yRange.Max, 10.0)
}

func TestDayChartWithoutMealsSkipsAnnotations(t *testing.T) {
	r := testRenderer(Options{})
	day := panelDay()
	day.Meals = nil

	ch, err := r.DayChart(day)

	require.NoError(t, err)
	assert.Len(t, ch.Series, 5)
}

func TestDayChartNoReadings(t *testing.T) {
	r := testRenderer(Options{})
	day := panelDay()
	day.Readings = nil

	_, err := r.DayChart(day)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
	assert.Contains(t, err.Error(), "2024-12-24")
}

func TestRenderDayPNG(t *testing.T) {
	r := testRenderer(Options{Width: 800, Height: 300})

	png, err := r.RenderDayPNG(panelDay())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected a PNG header")
}

func TestRenderDaySVG(t *testing.T) {
	r := testRenderer(Options{Width: 800, Height: 300})

	svg, err := r.RenderDaySVG(panelDay())

	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), "Breakfast")
}

func TestSinglePointDayRenders(t *testing.T) {
	r := testRenderer(Options{Width: 800, Height: 300})
	day := panelDay()
	day.Readings = day.Readings[:1]
	day.Meals = nil

	png, err := r.RenderDayPNG(day)

	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestOverviewChart(t *testing.T) {
	r := testRenderer(Options{Width: 800, Height: 300})

	day1 := panelDay()
	day2 := panelDay()
	day2.Date = day1.Date.AddDate(0, 0, 1)
	for i := range day2.Readings {
		day2.Readings[i].Timestamp = day2.Readings[i].Timestamp.AddDate(0, 0, 1)
	}
	dataset := &dataprocessing.MergedDataset{
		Days:  []dataprocessing.MergedDay{day1, day2},
		Start: day1.Date,
		End:   day2.Date.AddDate(0, 0, 1),
		Unit:  domain.UnitMmolPerL,
	}
	summaries := []domain.DailySummary{
		{Date: day1.Date, Mean: 6.7},
		{Date: day2.Date, Mean: 6.7},
	}

	ch, err := r.OverviewChart(dataset, summaries)

	require.NoError(t, err)
	// Target band pair, full trace, daily means.
	assert.Len(t, ch.Series, 4)
	assert.Len(t, ch.Elements, 1)

	png, err := r.RenderOverviewPNG(dataset, summaries)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestOverviewChartEmptyDataset(t *testing.T) {
	r := testRenderer(Options{})

	_, err := r.OverviewChart(&dataprocessing.MergedDataset{}, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
}
