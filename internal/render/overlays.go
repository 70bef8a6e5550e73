package render

import (
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"cgmcli/internal/dataprocessing"
	"cgmcli/pkg/contracts/domain"
)

// Panel palette. Bands are translucent so overlapping context stays
// readable under the glucose trace.
var (
	colorGlucoseLine  = chart.ColorBlue
	colorDailyMean    = chart.ColorGreen
	colorMealDot      = drawing.Color{R: 44, G: 160, B: 44, A: 255}
	colorTargetBand   = drawing.Color{R: 144, G: 238, B: 144, A: 90}
	colorBandMask     = drawing.Color{R: 255, G: 255, B: 255, A: 255}
	colorSleepBand    = drawing.Color{R: 100, G: 149, B: 237, A: 60}
	colorStrengthBand = drawing.Color{R: 255, G: 140, B: 0, A: 70}
	colorCardioBand   = drawing.Color{R: 220, G: 20, B: 60, A: 70}
	colorOtherBand    = drawing.Color{R: 128, G: 128, B: 128, A: 70}
)

// targetBandSeries shades [low, high] across the whole window. The
// first series fills down from high, the second repaints everything
// below low in the background color, leaving only the band shaded.
func targetBandSeries(start, end time.Time, low, high float64) []chart.Series {
	return []chart.Series{
		chart.TimeSeries{
			XValues: []time.Time{start, end},
			YValues: []float64{high, high},
			Style:   chart.Style{StrokeColor: colorTargetBand, StrokeWidth: 1, FillColor: colorTargetBand},
		},
		chart.TimeSeries{
			XValues: []time.Time{start, end},
			YValues: []float64{low, low},
			Style:   chart.Style{StrokeColor: colorBandMask, StrokeWidth: 1, FillColor: colorBandMask},
		},
	}
}

// intervalBand shades one interval over the full panel height.
func intervalBand(iv domain.Interval, top float64, color drawing.Color) chart.Series {
	return chart.TimeSeries{
		XValues: []time.Time{iv.Start, iv.End},
		YValues: []float64{top, top},
		Style:   chart.Style{StrokeColor: color, StrokeWidth: 1, FillColor: color},
	}
}

func workoutBandColor(activity domain.ActivityType) drawing.Color {
	switch activity {
	case domain.ActivityStrength:
		return colorStrengthBand
	case domain.ActivityCardio:
		return colorCardioBand
	default:
		return colorOtherBand
	}
}

// nearestReadingValue returns the value of the reading closest in time
// to t, used to pin meal dots onto the glucose trace.
func nearestReadingValue(readings []dataprocessing.MergedReading, t time.Time) (float64, bool) {
	if len(readings) == 0 {
		return 0, false
	}
	best := readings[0].Value
	bestDiff := absDuration(readings[0].Timestamp.Sub(t))
	for _, r := range readings[1:] {
		if diff := absDuration(r.Timestamp.Sub(t)); diff < bestDiff {
			bestDiff = diff
			best = r.Value
		}
	}
	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
