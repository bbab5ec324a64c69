package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"asthma-care-server/internal/service"
	"asthma-care-server/internal/store"
)

// readOnlyStore serves empty tables and rejects every write.
type readOnlyStore struct{}

func (readOnlyStore) ReadTable(ctx context.Context, table store.Table) (store.Sheet, error) {
	columns, err := store.Columns(table)
	if err != nil {
		return store.Sheet{}, err
	}
	return store.Sheet{Header: columns}, nil
}

func (readOnlyStore) AppendRow(ctx context.Context, table store.Table, row []string) error {
	return errors.New("the caller does not have permission")
}

func setupPatientRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	var s readOnlyStore
	clinic := service.NewClinic(s, s, s, "https://asthma.example", zap.NewNop())
	patients := NewPatientHandler(clinic, logger)
	public := NewPublicHandler(clinic, logger)

	r := gin.New()
	r.POST("/patients", patients.RegisterPatient)
	r.GET("/patients/:hn", patients.GetPatient)
	r.GET("/", public.GetSummary)
	return r, logs
}

func TestRegisterPatient_SheetWriteFailureIsLogged(t *testing.T) {
	r, logs := setupPatientRouter(t)

	body, _ := json.Marshal(gin.H{
		"hn": "1234", "prefix": "นาย", "firstName": "สมชาย", "lastName": "ใจดี",
		"dob": "1996-01-01", "height": 170,
	})
	req := httptest.NewRequest(http.MethodPost, "/patients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	entries := logs.FilterMessage("Clinic sheet write failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "0001234", entries[0].ContextMap()["hn"])
	assert.Equal(t, "/patients", entries[0].ContextMap()["path"])
}

func TestNotFoundIsNotLogged(t *testing.T) {
	r, logs := setupPatientRouter(t)

	for _, path := range []string{"/patients/999", "/?hn=999"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	assert.Zero(t, logs.Len())
}
