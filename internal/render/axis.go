package render

import (
	"fmt"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// niceAxisBounds expands [min, max] by a small margin and rounds to
// "nice" numbers for readability.
func niceAxisBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	pad := span * 0.05
	if pad <= 0 {
		pad = 1
	}
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	if a < 0 && min >= 0 {
		a = 0 // glucose never goes negative, keep the baseline honest
	}
	return a, b
}

// niceTicks generates up to n tick marks between [min, max] using nice
// increments (1, 2, 2.5, 5, 10 scaled by magnitude).
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil((max - min) / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	ticks := []chart.Tick{}
	for v := start; v <= end+bestStep/2; v += bestStep {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// dayHourTicks returns X ticks for one calendar day at the given step,
// labelled as hours ("06:00"). The midnight closing the day is
// included so the axis spans the full 24 hours.
func dayHourTicks(day time.Time, step time.Duration) []chart.Tick {
	if step <= 0 {
		step = 2 * time.Hour
	}
	end := day.AddDate(0, 0, 1)
	ticks := []chart.Tick{}
	for t := day; !t.After(end); t = t.Add(step) {
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(t),
			Label: t.Format("15:04"),
		})
	}
	return ticks
}

// spanTimeTicks returns X ticks across an arbitrary window, choosing a
// step and label format from the span length.
func spanTimeTicks(start, end time.Time) []chart.Tick {
	span := end.Sub(start)
	step, labelFmt := pickTimeStep(span)

	aligned := start.Truncate(step)
	ticks := []chart.Tick{}
	for t := aligned; !t.After(end.Add(step)); t = t.Add(step) {
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(t),
			Label: t.Format(labelFmt),
		})
		if len(ticks) > 20 {
			break
		}
	}
	return ticks
}

func pickTimeStep(span time.Duration) (time.Duration, string) {
	switch {
	case span <= 6*time.Hour:
		return 30 * time.Minute, "15:04"
	case span <= 24*time.Hour:
		return 2 * time.Hour, "15:04"
	case span <= 3*24*time.Hour:
		return 6 * time.Hour, "Jan 2 15:04"
	case span <= 14*24*time.Hour:
		return 24 * time.Hour, "Jan 2"
	default:
		return 7 * 24 * time.Hour, "Jan 2"
	}
}
