package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXStore_MissingWorkbookIsEmpty(t *testing.T) {
	s := NewXLSXStore(filepath.Join(t.TempDir(), "clinic.xlsx"))
	sheet, err := s.ReadTable(context.Background(), Patients)
	require.NoError(t, err)
	assert.Empty(t, sheet.Rows)
}

func TestXLSXStore_AppendThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewXLSXStore(filepath.Join(t.TempDir(), "clinic.xlsx"))

	first := []string{
		"0000123", "2026-10-19", "380", "Partly Controlled", "Seretide, Budesonide", "Salbutamol",
		"90", "ลืมพ่นยา", "พ่นยาทุกวัน", "ทำ", "2026-11-19", "",
	}
	second := []string{
		"0000123", "2026-11-19", "0", "Controlled", "", "",
		"0", "", "", "ไม่ทำ", "", "[ญาติรับแทน] รับยาเดิม",
	}
	require.NoError(t, s.AppendRow(ctx, Visits, first))
	require.NoError(t, s.AppendRow(ctx, Visits, second))

	sheet, err := s.ReadTable(ctx, Visits)
	require.NoError(t, err)
	assert.Equal(t, VisitColumns, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, first, sheet.Rows[0])
	assert.Equal(t, second, sheet.Rows[1])

	// other tables stay untouched
	patients, err := s.ReadTable(ctx, Patients)
	require.NoError(t, err)
	assert.Empty(t, patients.Rows)
}

func TestXLSXStore_UnknownTable(t *testing.T) {
	s := NewXLSXStore(filepath.Join(t.TempDir(), "clinic.xlsx"))
	err := s.AppendRow(context.Background(), Table("staff"), []string{"x"})
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestXLSXStore_AppendToEmptyWorksheetWritesHeader(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clinic.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet(string(Patients))
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s := NewXLSXStore(path)
	row := []string{"0000001", "นาย", "สมชาย", "ใจดี", "1996-01-01", "0", "170", "male"}
	require.NoError(t, s.AppendRow(ctx, Patients, row))

	sheet, err := s.ReadTable(ctx, Patients)
	require.NoError(t, err)
	assert.Equal(t, PatientColumns, sheet.Header)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, row, sheet.Rows[0])
}
