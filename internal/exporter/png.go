package exporter

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"cgmcli/internal/dataprocessing"
	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

// composePNG stacks the overview, one panel per day, and the stats
// table into a single image, top to bottom.
func (e *Exporter) composePNG(ctx context.Context, dataset *dataprocessing.MergedDataset, summaries []domain.DailySummary, agg dataprocessing.RangeSummary) ([]byte, error) {
	var panels []image.Image

	if e.opts.Overview {
		raw, err := e.renderer.RenderOverviewPNG(dataset, summaries)
		if err != nil {
			return nil, err
		}
		img, err := decodePanel(raw, "overview")
		if err != nil {
			return nil, err
		}
		panels = append(panels, img)
	}

	// Day panels are independent of each other; render them
	// concurrently and keep their chronological order.
	dayPanels := make([]image.Image, len(dataset.Days))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, day := range dataset.Days {
		g.Go(func() error {
			raw, err := e.renderer.RenderDayPNG(day)
			if err != nil {
				return err
			}
			img, err := decodePanel(raw, day.Date.Format("2006-01-02"))
			if err != nil {
				return err
			}
			dayPanels[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	panels = append(panels, dayPanels...)

	panels = append(panels, e.renderer.StatsPanel(summaries, agg))

	width, height := 0, 0
	for _, panel := range panels {
		if panel.Bounds().Dx() > width {
			width = panel.Bounds().Dx()
		}
		height += panel.Bounds().Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	y := 0
	for _, panel := range panels {
		target := image.Rect(0, y, panel.Bounds().Dx(), y+panel.Bounds().Dy())
		draw.Draw(canvas, target, panel, panel.Bounds().Min, draw.Over)
		y += panel.Bounds().Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, apperrors.NewExportError("encode dashboard png", err)
	}

	e.logger.DebugContext(ctx, "png dashboard composed",
		slog.Int("panels", len(panels)),
		slog.Int("width", width),
		slog.Int("height", height))
	return buf.Bytes(), nil
}

func decodePanel(raw []byte, panel string) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewExportError(fmt.Sprintf("decode rendered panel %s", panel), err)
	}
	return img, nil
}
