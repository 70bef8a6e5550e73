package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"cgmcli/internal/dataprocessing"
	"cgmcli/pkg/contracts/domain"
)

// Column layout of the stats table. Offsets are pixels from the left
// padding; the 7x13 face runs about 7px per glyph.
var statsColumns = []struct {
	title string
	x     int
}{
	{"Date", 0},
	{"Readings", 110},
	{"Mean", 190},
	{"Median", 260},
	{"StdDev", 335},
	{"Min", 410},
	{"Max", 470},
	{"TIR%", 530},
	{"CV%", 595},
	{"Sleep", 660},
	{"Workouts", 740},
	{"Meals", 820},
}

const (
	statsPad       = 14
	statsRowHeight = 17
)

// StatsPanel draws the per-day statistics table onto a plain image:
// one row per daily summary plus a range-wide TOTAL row. The panel is
// sized to match the day panels so exports can stack them vertically.
func (r *Renderer) StatsPanel(summaries []domain.DailySummary, agg dataprocessing.RangeSummary) *image.RGBA {
	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()

	height := statsPad*2 + statsRowHeight*(len(summaries)+3) + 10
	img := image.NewRGBA(image.Rect(0, 0, r.opts.Width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	titleSrc := image.NewUniform(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	textSrc := image.NewUniform(color.RGBA{R: 51, G: 51, B: 51, A: 255})
	ruleSrc := image.NewUniform(color.RGBA{R: 200, G: 200, B: 200, A: 255})

	y := statsPad + ascent
	drawPanelText(img, titleSrc, statsPad, y, fmt.Sprintf("Daily glucose statistics (%s)", r.opts.Unit))
	y += statsRowHeight + 6

	for _, col := range statsColumns {
		drawPanelText(img, titleSrc, statsPad+col.x, y, col.title)
	}
	y += statsRowHeight

	for _, s := range summaries {
		drawStatsRow(img, textSrc, y, []string{
			s.Date.Format("2006-01-02"),
			fmt.Sprintf("%d", s.ReadingCount),
			fmt.Sprintf("%.2f", s.Mean),
			fmt.Sprintf("%.2f", s.Median),
			fmt.Sprintf("%.2f", s.StdDev),
			fmt.Sprintf("%.2f", s.Min),
			fmt.Sprintf("%.2f", s.Max),
			fmt.Sprintf("%.1f", s.TIRPercent),
			cvCell(s.CV, s.CVValid),
			formatPanelDuration(s.TimeAsleep),
			fmt.Sprintf("%d", s.WorkoutCount),
			fmt.Sprintf("%d", s.MealCount),
		})
		y += statsRowHeight
	}

	rule := image.Rect(statsPad, y-ascent-3, r.opts.Width-statsPad, y-ascent-2)
	draw.Draw(img, rule, ruleSrc, image.Point{}, draw.Src)
	y += 4

	drawStatsRow(img, titleSrc, y, []string{
		fmt.Sprintf("TOTAL %dd", agg.Days),
		fmt.Sprintf("%d", agg.TotalReadings),
		fmt.Sprintf("%.2f", agg.Mean),
		fmt.Sprintf("%.2f", agg.Median),
		fmt.Sprintf("%.2f", agg.StdDev),
		fmt.Sprintf("%.2f", agg.Min),
		fmt.Sprintf("%.2f", agg.Max),
		fmt.Sprintf("%.1f", agg.TIRPercent),
		cvCell(agg.CV, agg.CVValid),
		formatPanelDuration(agg.TotalAsleep),
		fmt.Sprintf("%d", agg.TotalWorkouts),
		fmt.Sprintf("%d", agg.TotalMeals),
	})

	return img
}

func drawStatsRow(img *image.RGBA, src *image.Uniform, y int, cells []string) {
	for i, cell := range cells {
		if i >= len(statsColumns) {
			break
		}
		drawPanelText(img, src, statsPad+statsColumns[i].x, y, cell)
	}
}

func drawPanelText(dst *image.RGBA, src *image.Uniform, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func cvCell(cv float64, valid bool) string {
	if !valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", cv)
}

func formatPanelDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%02dm", h, m)
}
