package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/webpos/posdash/internal/analytics"
)

const firstSheet = "Sheet1"

// WriteReportXLSX writes a workbook with a summary sheet followed by one
// sheet per report series.
func WriteReportXLSX(w io.Writer, s analytics.Summary, r analytics.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	sheets := append([]table{summaryTable(s)}, tables(r)...)

	for i, t := range sheets {
		if i == 0 {
			if err := f.SetSheetName(firstSheet, t.name); err != nil {
				return fmt.Errorf("export: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			return fmt.Errorf("export: new sheet %s: %w", t.name, err)
		}
		if err := writeSheet(f, t, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, t table, headerStyle int) error {
	if err := f.SetSheetRow(t.name, "A1", &t.header); err != nil {
		return fmt.Errorf("export: %s header: %w", t.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(t.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("export: %s header style: %w", t.name, err)
	}
	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = cellValue(v)
		}
		if err := f.SetSheetRow(t.name, cell, &values); err != nil {
			return fmt.Errorf("export: %s row %d: %w", t.name, i+1, err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(t.header))
	if err != nil {
		return err
	}
	return f.SetColWidth(t.name, "A", lastCol, 20)
}

// cellValue stores numeric strings as numbers so spreadsheets can sum them.
func cellValue(v string) any {
	if isNumeric(v) {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return v
}

func isNumeric(v string) bool {
	if v == "" {
		return false
	}
	dot := false
	for i, r := range v {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && i == 0:
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}
