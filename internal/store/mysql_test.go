package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockSQLStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return NewSQLStore(gdb), mock
}

func TestSQLStore_ReadTable(t *testing.T) {
	s, mock := newMockSQLStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `sheet_rows` WHERE sheet = ?")).
		WithArgs("patients").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sheet", "cells", "created_at"}).
			AddRow(1, "patients", `["0000001","นาย","ก","ข","1990-01-01","0","170"]`, time.Now()).
			AddRow(2, "patients", `["0000002","นาง","ค","ง","1985-01-01","0","160","female"]`, time.Now()))

	sheet, err := s.ReadTable(context.Background(), Patients)
	require.NoError(t, err)
	assert.Equal(t, PatientColumns, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "", sheet.Rows[0][7])
	assert.Equal(t, "female", sheet.Rows[1][7])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_AppendRow(t *testing.T) {
	s, mock := newMockSQLStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `sheet_rows`")).
		WithArgs("visits", `["0000001","2026-10-19"]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.AppendRow(context.Background(), Visits, []string{"0000001", "2026-10-19"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UnknownTable(t *testing.T) {
	s, _ := newMockSQLStore(t)
	_, err := s.ReadTable(context.Background(), Table("staff"))
	assert.ErrorIs(t, err, ErrUnknownTable)
}
