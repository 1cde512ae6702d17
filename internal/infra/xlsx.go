package infra

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// GenerateBillingXLSX renders the report as a single-sheet workbook. Cells that
// parse as numbers are written as numbers so the sheet can be summed.
func GenerateBillingXLSX(rep BillingReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("%04d-%02d", rep.Anio, rep.Mes)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: style: %w", err)
	}

	header := make([]interface{}, len(rep.Headers))
	for i, h := range rep.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(rep.Headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}

	for r, row := range rep.Rows {
		values := make([]interface{}, len(row))
		for i, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil && i > 0 {
				values[i] = n
			} else {
				values[i] = v
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: row %d: %w", r+1, err)
		}
	}

	totalRow := len(rep.Rows) + 3
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(2, totalRow)
	_ = f.SetCellValue(sheet, labelCell, "Total del mes")
	_ = f.SetCellValue(sheet, valueCell, rep.Total)
	_ = f.SetCellStyle(sheet, labelCell, valueCell, bold)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}
