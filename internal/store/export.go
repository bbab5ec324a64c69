package store

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportWorkbook renders the given tables as an XLSX workbook, one worksheet
// per table with a bold header row.
func ExportWorkbook(tables map[Table]Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	first := ""
	for _, table := range Tables {
		sheet, ok := tables[table]
		if !ok {
			continue
		}
		name := string(table)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
		if first == "" {
			first = name
		}

		header := sheet.Header
		if len(header) == 0 {
			header, _ = Columns(table)
		}
		if err := setRow(f, name, 1, header); err != nil {
			return nil, err
		}
		lastCol, err := excelize.ColumnNumberToName(len(header))
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(name, "A1", lastCol+"1", headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
		if err := f.SetColWidth(name, "A", lastCol, 16); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
		for i, row := range sheet.Rows {
			if err := setRow(f, name, i+2, row); err != nil {
				return nil, err
			}
		}
	}
	if first != "" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to drop default worksheet: %w", err)
		}
		if index, err := f.GetSheetIndex(first); err == nil && index >= 0 {
			f.SetActiveSheet(index)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
