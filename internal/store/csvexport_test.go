package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCSVExportReader_ReadTable(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("hn,prefix,first_name,last_name,dob,best_pefr,height\n1234,นาย,สมชาย,ใจดี,1980-05-01,450\n"))
	}))
	defer srv.Close()

	r := NewCSVExportReader(srv.URL, map[Table]string{Patients: "0", Visits: "1491996218"}, zap.NewNop())
	sheet, err := r.ReadTable(context.Background(), Patients)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "format=csv")
	assert.Contains(t, gotQuery, "gid=0")
	assert.Equal(t, "hn", sheet.Header[0])
	require.Len(t, sheet.Rows, 1)
	assert.Len(t, sheet.Rows[0], 7)
	assert.Equal(t, "", sheet.Rows[0][6])

	patients := DecodePatients(sheet)
	require.Len(t, patients, 1)
	assert.Equal(t, "0001234", patients[0].HN)
}

func TestCSVExportReader_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewCSVExportReader(srv.URL, map[Table]string{Patients: "0"}, zap.NewNop())
	_, err := r.ReadTable(context.Background(), Patients)
	assert.Error(t, err)

	_, err = r.ReadTable(context.Background(), Visits)
	assert.ErrorIs(t, err, ErrUnknownTable)
}
