package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"cgmcli/internal/dataprocessing"
	apperrors "cgmcli/internal/errors"
	"cgmcli/pkg/contracts/domain"
)

const summarySheet = "Daily Summaries"

// ExportXLSX writes the daily-summary table plus a TOTAL row to
// daily_summaries.xlsx. Numeric cells keep their native type so the
// sheet stays sortable.
func (s *SummaryExporter) ExportXLSX(summaries []domain.DailySummary, agg dataprocessing.RangeSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return apperrors.NewExportError("name summary sheet", err)
	}

	rows := make([][]interface{}, 0, len(summaries)+2)
	header := make([]interface{}, 0, len(summaryHeaders()))
	for _, h := range summaryHeaders() {
		header = append(header, h)
	}
	rows = append(rows, header)
	for _, summary := range summaries {
		rows = append(rows, summaryCells(summary))
	}
	rows = append(rows, aggregateCells(agg))

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return apperrors.NewExportError("address summary cell", err)
			}
			if err := f.SetCellValue(summarySheet, cell, value); err != nil {
				return apperrors.NewExportError(fmt.Sprintf("set summary cell %s", cell), err)
			}
		}
	}

	path := s.paths.SummaryXLSX
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("create directory for %s", path), err)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewExportError(fmt.Sprintf("save xlsx file %s", path), err)
	}
	return nil
}

func summaryCells(s domain.DailySummary) []interface{} {
	return []interface{}{
		s.Date.Format("2006-01-02"),
		s.ReadingCount,
		s.Mean,
		s.Median,
		s.StdDev,
		s.Min,
		s.Max,
		s.TIRPercent,
		s.CV,
		s.CVValid,
		s.TimeAsleep.String(),
		s.WorkoutCount,
		s.MealCount,
	}
}

func aggregateCells(agg dataprocessing.RangeSummary) []interface{} {
	return []interface{}{
		fmt.Sprintf("TOTAL (%d days)", agg.Days),
		agg.TotalReadings,
		agg.Mean,
		agg.Median,
		agg.StdDev,
		agg.Min,
		agg.Max,
		agg.TIRPercent,
		agg.CV,
		agg.CVValid,
		agg.TotalAsleep.String(),
		agg.TotalWorkouts,
		agg.TotalMeals,
	}
}
