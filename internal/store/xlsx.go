package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// XLSXStore keeps the clinic tables as worksheets of a local workbook.
// It is used for offline clinics and for development without Google credentials.
type XLSXStore struct {
	path string
	mu   sync.Mutex
}

// NewXLSXStore creates a store over the workbook at path. The file is
// created on the first append.
func NewXLSXStore(path string) *XLSXStore {
	return &XLSXStore{path: path}
}

// ReadTable returns the worksheet named after table. A missing workbook or
// worksheet is an empty table.
func (s *XLSXStore) ReadTable(ctx context.Context, table Table) (Sheet, error) {
	if _, err := Columns(table); err != nil {
		return Sheet{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Sheet{}, nil
		}
		return Sheet{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(string(table)); err != nil || idx < 0 {
		return Sheet{}, nil
	}
	raw, err := f.GetRows(string(table))
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read worksheet %s: %w", table, err)
	}
	return padRows(splitRows(raw)), nil
}

// AppendRow writes row after the last used row, creating the workbook and
// the worksheet with its header row when needed.
func (s *XLSXStore) AppendRow(ctx context.Context, table Table, row []string) error {
	columns, err := Columns(table)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, created, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := string(table)
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to look up worksheet %s: %w", table, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create worksheet %s: %w", table, err)
		}
		if created {
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return fmt.Errorf("failed to drop default worksheet: %w", err)
			}
			f.SetActiveSheet(0)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read worksheet %s: %w", table, err)
	}
	if len(rows) == 0 {
		if err := setRow(f, sheet, 1, columns); err != nil {
			return err
		}
		rows = [][]string{columns}
	}
	if err := setRow(f, sheet, len(rows)+1, row); err != nil {
		return err
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (s *XLSXStore) open() (f *excelize.File, created bool, err error) {
	f, err = excelize.OpenFile(s.path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("failed to open workbook: %w", err)
}

// setRow writes cells as text so zero-padded HNs keep their zeros.
func setRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", rowNum, sheet, err)
	}
	return nil
}
