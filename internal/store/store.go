// Package store reads and appends rows of the clinic spreadsheet tables.
// Every backend speaks the same row model: a header followed by data rows of
// plain strings, in the column order of the table schema.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Table names a table of the clinic spreadsheet.
type Table string

const (
	Patients Table = "patients"
	Visits   Table = "visits"
)

// Tables lists every table the clinic uses.
var Tables = []Table{Patients, Visits}

// ErrUnknownTable is returned for a table outside the clinic schema.
var ErrUnknownTable = errors.New("unknown table")

// PatientColumns is the column order of the patients table.
// sex was appended later; rows without it are still valid.
var PatientColumns = []string{
	"hn", "prefix", "first_name", "last_name", "dob", "best_pefr", "height", "sex",
}

// VisitColumns is the column order of the visits table.
var VisitColumns = []string{
	"hn", "date", "pefr", "control_level", "controller", "reliever",
	"adherence", "drp", "advice", "technique_check", "next_appt", "note",
}

// Columns returns the schema of t.
func Columns(t Table) ([]string, error) {
	switch t {
	case Patients:
		return PatientColumns, nil
	case Visits:
		return VisitColumns, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTable, string(t))
}

// Sheet is a whole table as read from a backend.
type Sheet struct {
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
	FetchedAt time.Time  `json:"fetchedAt"`
}

// Reader fetches whole tables. There is no filtering; every call is a full scan.
type Reader interface {
	ReadTable(ctx context.Context, table Table) (Sheet, error)
}

// Appender writes one row at the end of a table, ordered like Columns(table).
type Appender interface {
	AppendRow(ctx context.Context, table Table, row []string) error
}

// Store is a backend that can both read and append.
type Store interface {
	Reader
	Appender
}

// splitRows treats the first row of raw as the header.
func splitRows(raw [][]string) Sheet {
	if len(raw) == 0 {
		return Sheet{}
	}
	return Sheet{Header: raw[0], Rows: raw[1:]}
}

// padRows extends short rows to the header width; spreadsheet APIs drop
// trailing empty cells.
func padRows(s Sheet) Sheet {
	for i, r := range s.Rows {
		if len(r) < len(s.Header) {
			padded := make([]string, len(s.Header))
			copy(padded, r)
			s.Rows[i] = padded
		}
	}
	return s
}
