package exporter

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"cgmcli/internal/dataprocessing"
	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

//go:embed templates/dashboard.html.tmpl
var dashboardTemplate string

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardTemplate))

type htmlDay struct {
	Date  string
	Chart template.HTML
}

type htmlPage struct {
	Title       string
	GeneratedAt string
	Unit        string
	Target      string
	Overview    template.HTML
	Days        []htmlDay
	Headers     []string
	Rows        [][]string
	Total       []string
}

// buildHTML renders a self-contained dashboard page: inline SVG charts
// plus the summary table, no external assets.
func (e *Exporter) buildHTML(dataset *dataprocessing.MergedDataset, summaries []domain.DailySummary, agg dataprocessing.RangeSummary) ([]byte, error) {
	opts := e.renderer.Options()
	page := htmlPage{
		Title:       fmt.Sprintf("%s %s to %s", e.opts.Title, dataset.Start.Format("2006-01-02"), dataset.End.AddDate(0, 0, -1).Format("2006-01-02")),
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
		Unit:        string(dataset.Unit),
		Target:      fmt.Sprintf("%.1f to %.1f %s", opts.TargetLow, opts.TargetHigh, dataset.Unit),
		Headers:     summaryHeaders(),
		Total:       aggregateRow(agg),
	}

	if e.opts.Overview {
		svg, err := e.renderer.RenderOverviewSVG(dataset, summaries)
		if err != nil {
			return nil, err
		}
		page.Overview = template.HTML(svg)
	}

	for _, day := range dataset.Days {
		svg, err := e.renderer.RenderDaySVG(day)
		if err != nil {
			return nil, err
		}
		page.Days = append(page.Days, htmlDay{
			Date:  day.Date.Format("2006-01-02"),
			Chart: template.HTML(svg),
		})
	}

	for _, s := range summaries {
		page.Rows = append(page.Rows, summaryRow(s))
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, page); err != nil {
		return nil, apperrors.NewExportError("render dashboard html", err)
	}
	return buf.Bytes(), nil
}
