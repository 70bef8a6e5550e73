package render

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgmcli/internal/dataprocessing"
	"cgmcli/pkg/contracts/domain"
)

func TestStatsPanelLayout(t *testing.T) {
	r := testRenderer(Options{Width: 900})
	summaries := []domain.DailySummary{
		{
			Date:         time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC),
			ReadingCount: 288,
			Mean:         6.5, Median: 6.4, StdDev: 1.2, Min: 4.1, Max: 9.8,
			TIRPercent: 92.4, CV: 18.5, CVValid: true,
			TimeAsleep:   8*time.Hour + 15*time.Minute,
			WorkoutCount: 1, MealCount: 3,
		},
		{
			Date:         time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
			ReadingCount: 280,
			Mean:         7.1, Median: 7.0, StdDev: 1.4, Min: 4.4, Max: 11.2,
			TIRPercent: 88.0, CV: 19.7, CVValid: true,
			MealCount: 3,
		},
	}
	agg := dataprocessing.RangeSummary{
		Days: 2, TotalReadings: 568,
		Mean: 6.8, Median: 6.7, StdDev: 1.3, Min: 4.1, Max: 11.2,
		TIRPercent: 90.2, CV: 19.1, CVValid: true,
		TotalAsleep: 8*time.Hour + 15*time.Minute, TotalWorkouts: 1, TotalMeals: 6,
	}

	img := r.StatsPanel(summaries, agg)

	require.NotNil(t, img)
	assert.Equal(t, 900, img.Bounds().Dx())
	assert.Greater(t, img.Bounds().Dy(), statsRowHeight*5)

	drawn := 0
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.RGBAAt(x, y) != white {
				drawn++
			}
		}
	}
	assert.Greater(t, drawn, 100, "expected table text on the panel")
}

func TestStatsPanelEmptyRange(t *testing.T) {
	r := testRenderer(Options{})

	img := r.StatsPanel(nil, dataprocessing.RangeSummary{})

	require.NotNil(t, img)
	assert.Equal(t, 1500, img.Bounds().Dx())
}

func TestCVCell(t *testing.T) {
	assert.Equal(t, "18.5", cvCell(18.49, true))
	assert.Equal(t, "n/a", cvCell(0, false))
}

func TestFormatPanelDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{8*time.Hour + 15*time.Minute, "8h15m"},
		{45 * time.Minute, "0h45m"},
		{0, "0h00m"},
		{26*time.Hour + 5*time.Minute, "26h05m"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, formatPanelDuration(tc.d))
	}
}
