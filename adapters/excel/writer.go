package excel

import (
	"fmt"
	"math"

	"gpgam/domain/run"

	"github.com/xuri/excelize/v2"
)

// TimingSheet is the worksheet holding the comparison table
const TimingSheet = "timing"

var timingHeader = []string{"lat", "lon", "month", "baseline_s", "optimised_s", "speedup_x"}

// WriteTimingWorkbook saves the comparison rows and a TOTAL row to an
// XLSX file laid out like the CSV table
func WriteTimingWorkbook(path string, rows []run.Timing) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TimingSheet); err != nil {
		return fmt.Errorf("failed to name timing sheet: %w", err)
	}

	for col, h := range timingHeader {
		if err := setCell(f, col+1, 1, h); err != nil {
			return err
		}
	}

	rowIdx := 2
	for _, r := range rows {
		values := []interface{}{
			r.Point.Lat, r.Point.Lon, r.Month,
			round2(r.Baseline.Seconds()), round2(r.Optimised.Seconds()), round2(r.Speedup()),
		}
		for col, v := range values {
			if err := setCell(f, col+1, rowIdx, v); err != nil {
				return err
			}
		}
		rowIdx++
	}

	// blank separator row, then totals
	rowIdx++
	b, o, sp := run.Totals(rows)
	totals := []interface{}{"TOTAL", "", "", round2(b.Seconds()), round2(o.Seconds()), round2(sp)}
	for col, v := range totals {
		if err := setCell(f, col+1, rowIdx, v); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(TimingSheet, "A", "F", 14); err != nil {
		return fmt.Errorf("failed to size timing columns: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save timing workbook %s: %w", path, err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	// NaN cannot be stored as a number
	if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
		v = "nan"
	}
	if err := f.SetCellValue(TimingSheet, cell, v); err != nil {
		return fmt.Errorf("failed to set %s: %w", cell, err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
