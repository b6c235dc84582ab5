package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gpgam/domain/grid"
	"gpgam/domain/run"

	"github.com/xuri/excelize/v2"
)

// PointsReader loads comparison targets from a CSV or XLSX table with
// columns lat, lon and an optional month. A header row is skipped when its
// first cell is not a number.
type PointsReader struct {
	filePath     string
	fileType     string // "xlsx" or "csv"
	defaultMonth string
}

// NewPointsReader picks the format from the file extension
func NewPointsReader(filePath, defaultMonth string) *PointsReader {
	fileType := "csv"
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		fileType = "xlsx"
	}
	return &PointsReader{filePath: filePath, fileType: fileType, defaultMonth: defaultMonth}
}

// ReadTargets returns one target per data row, in file order
func (r *PointsReader) ReadTargets() ([]run.Target, error) {
	var rows [][]string
	var err error
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		rows, err = r.readCSVRows()
	}
	if err != nil {
		return nil, err
	}
	return r.processRows(rows)
}

func (r *PointsReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open points workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("points workbook %s has no sheets", r.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func (r *PointsReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open points file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read points file: %w", err)
	}
	return rows, nil
}

func (r *PointsReader) processRows(rows [][]string) ([]run.Target, error) {
	var targets []run.Target
	headerSkipped := false
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("%s row %d: want lat,lon[,month], got %d columns", r.filePath, i+1, len(row))
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if latErr != nil && !headerSkipped && len(targets) == 0 {
			headerSkipped = true
			continue
		}
		if latErr != nil {
			return nil, fmt.Errorf("%s row %d: invalid lat %q", r.filePath, i+1, row[0])
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid lon %q", r.filePath, i+1, row[1])
		}

		month := r.defaultMonth
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			month = strings.TrimSpace(row[2])
		}
		targets = append(targets, run.Target{Point: grid.Point{Lat: lat, Lon: lon}, Month: month})
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no points found in %s", r.filePath)
	}
	return targets, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
