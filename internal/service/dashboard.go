package service

import (
	"context"
	"time"

	"asthma-care-server/internal/clinical"
	"asthma-care-server/internal/store"
)

// Dashboard is the clinic overview.
type Dashboard struct {
	KPIs         clinical.KPIs           `json:"kpis"`
	ControlTally []clinical.ControlCount `json:"controlTally"`
	AgeHistogram []clinical.AgeBin       `json:"ageHistogram"`
	MonthlyTrend []clinical.MonthCount   `json:"monthlyTrend"`
	AsOf         time.Time               `json:"asOf"`
	FetchedAt    time.Time               `json:"fetchedAt"`
}

// Dashboard aggregates both tables. An empty or unreachable store yields zeros.
func (s *Clinic) Dashboard(ctx context.Context) Dashboard {
	t := s.LoadTables(ctx, StaffView)
	now := s.now()
	return Dashboard{
		KPIs:         clinical.ComputeKPIs(t.Patients, t.Visits, now),
		ControlTally: clinical.ControlTally(clinical.LatestVisits(t.Visits)),
		AgeHistogram: clinical.AgeHistogram(t.Patients, now),
		MonthlyTrend: clinical.MonthlyTrend(t.Visits),
		AsOf:         now,
		FetchedAt:    t.FetchedAt,
	}
}

// ExportWorkbook returns both tables as an XLSX workbook, exactly as stored.
func (s *Clinic) ExportWorkbook(ctx context.Context) ([]byte, error) {
	tables := make(map[store.Table]store.Sheet, len(store.Tables))
	for _, t := range store.Tables {
		sheet, err := s.staff.ReadTable(ctx, t)
		if err != nil {
			return nil, err
		}
		tables[t] = sheet
	}
	return store.ExportWorkbook(tables)
}
