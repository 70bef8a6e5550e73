package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"cgmcli/internal/dataprocessing"
	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

// Options controls panel geometry and overlay behavior.
type Options struct {
	// Width and Height are the pixel dimensions of one day panel.
	Width  int
	Height int

	// Unit labels the Y axis.
	Unit domain.Unit

	// TargetLow and TargetHigh bound the shaded target band.
	TargetLow  float64
	TargetHigh float64

	// MinLabelGap is the spacing under which neighboring meal labels
	// are pushed onto different levels; MaxLabelLevels caps the stack.
	MinLabelGap    time.Duration
	MaxLabelLevels int
}

// Renderer draws day panels and the range overview as go-chart charts.
type Renderer struct {
	logger *slog.Logger
	opts   Options
}

// NewRenderer creates a renderer, filling in defaults for unset options.
func NewRenderer(logger *slog.Logger, opts Options) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Width <= 0 {
		opts.Width = 1500
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}
	if opts.Unit == "" {
		opts.Unit = domain.UnitMmolPerL
	}
	if opts.TargetHigh <= opts.TargetLow {
		opts.TargetLow, opts.TargetHigh = 3.9, 10.0
	}
	if opts.MinLabelGap <= 0 {
		opts.MinLabelGap = 45 * time.Minute
	}
	if opts.MaxLabelLevels <= 0 {
		opts.MaxLabelLevels = 4
	}

	// go-chart parses its embedded font lazily; do it here so
	// concurrent panel renders only read the cached value.
	_, _ = chart.GetDefaultFont()

	return &Renderer{logger: logger, opts: opts}
}

// Options returns the effective options after defaulting.
func (r *Renderer) Options() Options {
	return r.opts
}

// DayChart assembles the panel for one merged day: target band, sleep
// and workout bands, the glucose trace, and meal markers with labels.
func (r *Renderer) DayChart(day dataprocessing.MergedDay) (chart.Chart, error) {
	if len(day.Readings) == 0 {
		return chart.Chart{}, apperrors.NewRenderError(
			fmt.Sprintf("no readings to draw for %s", day.Date.Format("2006-01-02")), nil)
	}

	dayStart := day.Date
	dayEnd := day.Date.AddDate(0, 0, 1)

	times := make([]time.Time, len(day.Readings))
	values := make([]float64, len(day.Readings))
	vMin, vMax := day.Readings[0].Value, day.Readings[0].Value
	for i, reading := range day.Readings {
		times[i] = reading.Timestamp
		values[i] = reading.Value
		if reading.Value < vMin {
			vMin = reading.Value
		}
		if reading.Value > vMax {
			vMax = reading.Value
		}
	}
	if r.opts.TargetLow < vMin {
		vMin = r.opts.TargetLow
	}
	if r.opts.TargetHigh > vMax {
		vMax = r.opts.TargetHigh
	}
	yLo, yHi := niceAxisBounds(vMin, vMax)

	// Bands first so the trace stays on top. The target band's white
	// mask repaints everything under TargetLow, so sleep and workout
	// bands must come after it.
	series := targetBandSeries(dayStart, dayEnd, r.opts.TargetLow, r.opts.TargetHigh)
	for _, iv := range day.Sleep {
		series = append(series, intervalBand(iv, yHi, colorSleepBand))
	}
	for _, w := range day.Workouts {
		series = append(series, intervalBand(w.Interval, yHi, workoutBandColor(w.Activity)))
	}

	traceStyle := chart.Style{StrokeColor: colorGlucoseLine, StrokeWidth: 2}
	if len(times) == 1 {
		traceStyle = chart.Style{StrokeWidth: 0, DotWidth: 4, DotColor: colorGlucoseLine}
	}
	series = append(series, chart.TimeSeries{
		Name:    "Glucose",
		XValues: times,
		YValues: values,
		Style:   traceStyle,
	})

	series = append(series, r.mealSeries(day, yLo, yHi)...)

	ch := chart.Chart{
		Title:      day.Date.Format("Mon 2006-01-02"),
		Width:      r.opts.Width,
		Height:     r.opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Ticks: dayHourTicks(dayStart, 2*time.Hour),
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(dayStart),
				Max: chart.TimeToFloat64(dayEnd),
			},
		},
		YAxis: chart.YAxis{
			Name:  string(r.opts.Unit),
			Ticks: niceTicks(yLo, yHi, 6),
			Range: &chart.ContinuousRange{Min: yLo, Max: yHi},
		},
		Series: series,
	}
	return ch, nil
}

// mealSeries builds the marker dots pinned to the trace plus one
// annotation per meal, staggered across label levels so close meals
// stay readable.
func (r *Renderer) mealSeries(day dataprocessing.MergedDay, yLo, yHi float64) []chart.Series {
	if len(day.Meals) == 0 {
		return nil
	}

	dotTimes := make([]time.Time, 0, len(day.Meals))
	dotValues := make([]float64, 0, len(day.Meals))
	for _, meal := range day.Meals {
		if v, ok := nearestReadingValue(day.Readings, meal.Timestamp); ok {
			dotTimes = append(dotTimes, meal.Timestamp)
			dotValues = append(dotValues, v)
		}
	}

	labelStep := (yHi - yLo) * 0.07
	annotations := make([]chart.Value2, 0, len(day.Meals))
	for _, label := range assignLabelSlots(day.Meals, r.opts.MinLabelGap, r.opts.MaxLabelLevels) {
		annotations = append(annotations, chart.Value2{
			XValue: chart.TimeToFloat64(label.Meal.Timestamp),
			YValue: yHi - labelStep*float64(label.Level+1),
			Label:  label.Meal.Label,
		})
	}

	series := make([]chart.Series, 0, 2)
	if len(dotTimes) > 0 {
		series = append(series, chart.TimeSeries{
			XValues: dotTimes,
			YValues: dotValues,
			Style:   chart.Style{StrokeWidth: 0, DotWidth: 5, DotColor: colorMealDot},
		})
	}
	series = append(series, chart.AnnotationSeries{
		Annotations: annotations,
		Style: chart.Style{
			FontSize:    8,
			StrokeColor: colorMealDot,
			FillColor:   drawing.Color{R: 255, G: 255, B: 255, A: 220},
		},
	})
	return series
}

// OverviewChart draws the whole range in one panel: the full glucose
// trace with one mean marker per day.
func (r *Renderer) OverviewChart(dataset *dataprocessing.MergedDataset, summaries []domain.DailySummary) (chart.Chart, error) {
	readings := dataset.Readings()
	if len(readings) == 0 {
		return chart.Chart{}, apperrors.NewRenderError("no readings to draw for range overview", nil)
	}

	times := make([]time.Time, len(readings))
	values := make([]float64, len(readings))
	vMin, vMax := readings[0].Value, readings[0].Value
	for i, reading := range readings {
		times[i] = reading.Timestamp
		values[i] = reading.Value
		if reading.Value < vMin {
			vMin = reading.Value
		}
		if reading.Value > vMax {
			vMax = reading.Value
		}
	}
	if r.opts.TargetLow < vMin {
		vMin = r.opts.TargetLow
	}
	if r.opts.TargetHigh > vMax {
		vMax = r.opts.TargetHigh
	}
	yLo, yHi := niceAxisBounds(vMin, vMax)

	series := targetBandSeries(dataset.Start, dataset.End, r.opts.TargetLow, r.opts.TargetHigh)
	series = append(series, chart.TimeSeries{
		Name:    "Glucose",
		XValues: times,
		YValues: values,
		Style:   chart.Style{StrokeColor: colorGlucoseLine, StrokeWidth: 1},
	})

	if len(summaries) > 0 {
		meanTimes := make([]time.Time, len(summaries))
		meanValues := make([]float64, len(summaries))
		for i, s := range summaries {
			meanTimes[i] = s.Date.Add(12 * time.Hour)
			meanValues[i] = s.Mean
		}
		series = append(series, chart.TimeSeries{
			Name:    "Daily mean",
			XValues: meanTimes,
			YValues: meanValues,
			Style:   chart.Style{StrokeWidth: 0, DotWidth: 6, DotColor: colorDailyMean},
		})
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("Glucose %s to %s", dataset.Start.Format("2006-01-02"), dataset.End.AddDate(0, 0, -1).Format("2006-01-02")),
		Width:      r.opts.Width,
		Height:     r.opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Ticks: spanTimeTicks(dataset.Start, dataset.End),
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(dataset.Start),
				Max: chart.TimeToFloat64(dataset.End),
			},
		},
		YAxis: chart.YAxis{
			Name:  string(r.opts.Unit),
			Ticks: niceTicks(yLo, yHi, 6),
			Range: &chart.ContinuousRange{Min: yLo, Max: yHi},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch, nil
}

// RenderDayPNG renders one day panel to PNG bytes.
func (r *Renderer) RenderDayPNG(day dataprocessing.MergedDay) ([]byte, error) {
	ch, err := r.DayChart(day)
	if err != nil {
		return nil, err
	}
	return r.render(ch, chart.PNG, day.Date.Format("2006-01-02"))
}

// RenderDaySVG renders one day panel to SVG bytes.
func (r *Renderer) RenderDaySVG(day dataprocessing.MergedDay) ([]byte, error) {
	ch, err := r.DayChart(day)
	if err != nil {
		return nil, err
	}
	return r.render(ch, chart.SVG, day.Date.Format("2006-01-02"))
}

// RenderOverviewPNG renders the range overview to PNG bytes.
func (r *Renderer) RenderOverviewPNG(dataset *dataprocessing.MergedDataset, summaries []domain.DailySummary) ([]byte, error) {
	ch, err := r.OverviewChart(dataset, summaries)
	if err != nil {
		return nil, err
	}
	return r.render(ch, chart.PNG, "overview")
}

// RenderOverviewSVG renders the range overview to SVG bytes.
func (r *Renderer) RenderOverviewSVG(dataset *dataprocessing.MergedDataset, summaries []domain.DailySummary) ([]byte, error) {
	ch, err := r.OverviewChart(dataset, summaries)
	if err != nil {
		return nil, err
	}
	return r.render(ch, chart.SVG, "overview")
}

func (r *Renderer) render(ch chart.Chart, provider chart.RendererProvider, panel string) ([]byte, error) {
	var buf bytes.Buffer
	if err := ch.Render(provider, &buf); err != nil {
		return nil, apperrors.NewRenderError(fmt.Sprintf("render panel %s", panel), err)
	}
	r.logger.Debug("panel rendered",
		slog.String("panel", panel),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}
