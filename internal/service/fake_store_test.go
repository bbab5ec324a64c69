package service

import (
	"context"
	"errors"
	"sync"

	"asthma-care-server/internal/store"
)

// fakeStore is an in-memory store.Store for unit tests.
type fakeStore struct {
	mu        sync.Mutex
	tables    map[store.Table]store.Sheet
	reads     int
	readErr   error
	appendErr error
	appended  map[store.Table][][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables: map[store.Table]store.Sheet{
			store.Patients: {Header: store.PatientColumns},
			store.Visits:   {Header: store.VisitColumns},
		},
		appended: make(map[store.Table][][]string),
	}
}

func (f *fakeStore) ReadTable(ctx context.Context, table store.Table) (store.Sheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return store.Sheet{}, f.readErr
	}
	s, ok := f.tables[table]
	if !ok {
		return store.Sheet{}, errors.New("no such table")
	}
	rows := make([][]string, len(s.Rows))
	copy(rows, s.Rows)
	return store.Sheet{Header: s.Header, Rows: rows}, nil
}

func (f *fakeStore) AppendRow(ctx context.Context, table store.Table, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	s := f.tables[table]
	s.Rows = append(s.Rows, row)
	f.tables[table] = s
	f.appended[table] = append(f.appended[table], row)
	return nil
}

func (f *fakeStore) add(table store.Table, rows ...[]string) {
	s := f.tables[table]
	s.Rows = append(s.Rows, rows...)
	f.tables[table] = s
}
