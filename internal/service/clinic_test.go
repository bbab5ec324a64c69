package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"asthma-care-server/internal/clinical"
	"asthma-care-server/internal/models"
	"asthma-care-server/internal/store"
)

var testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func newTestClinic(fs *fakeStore) *Clinic {
	c := NewClinic(fs, fs, fs, "https://asthma.example/", zap.NewNop())
	c.now = func() time.Time { return testNow }
	return c
}

func seededStore() *fakeStore {
	fs := newFakeStore()
	fs.add(store.Patients,
		[]string{"1", "นาย", "สมชาย", "ใจดี", "1996-01-01", "0", "170", ""},
		[]string{"0000002", "นาง", "สมหญิง", "รักดี", "1980-06-15", "400", "", ""},
		[]string{"3.0", "ด.ช.", "ต้น", "กล้า", "2016-03-01", "0", "130", "male"},
	)
	fs.add(store.Visits,
		[]string{"0000001", "2026-06-01", "480", "Controlled", "Seretide", "Salbutamol", "90", "", "", "ทำ", "", ""},
		[]string{"1", "2026-10-02", "300", "Uncontrolled", "Seretide", "Salbutamol", "70", "ลืมพ่นยา", "", "ไม่ทำ", "", ""},
		[]string{"0000002", "2026-07-01", "0", "Partly Controlled", "", "", "80", "", "", "ไม่ทำ", "", ""},
		[]string{"0000002", "2026-10-10", "320", "Controlled", "", "", "100", "-", "", "ไม่ทำ", "", ""},
		[]string{"0000003", "2025-10-10", "200", "Controlled", "", "", "100", "", "", "ทำ", "", ""},
	)
	return fs
}

func TestDashboard_KPIs(t *testing.T) {
	c := newTestClinic(seededStore())
	d := c.Dashboard(context.Background())

	assert.Equal(t, clinical.KPIs{TotalPatients: 3, ThisMonthVisits: 2, UncontrolledCount: 1}, d.KPIs)
	assert.Equal(t, []clinical.ControlCount{
		{Status: models.Controlled, Count: 2},
		{Status: models.Uncontrolled, Count: 1},
	}, d.ControlTally)
	assert.Len(t, d.MonthlyTrend, 4)
	assert.Equal(t, clinical.MonthCount{Month: "2026-10", Count: 2}, d.MonthlyTrend[3])
	assert.Equal(t, testNow, d.AsOf)
}

func TestDashboard_StoreDownDegradesToZeros(t *testing.T) {
	fs := seededStore()
	fs.readErr = errors.New("connection refused")
	d := newTestClinic(fs).Dashboard(context.Background())

	assert.Equal(t, clinical.KPIs{}, d.KPIs)
	assert.Empty(t, d.ControlTally)
	assert.Empty(t, d.MonthlyTrend)
}

func TestListPatients(t *testing.T) {
	list := newTestClinic(seededStore()).ListPatients(context.Background())
	require.Len(t, list, 3)
	assert.Equal(t, PatientListItem{HN: "0000001", Name: "นายสมชาย ใจดี"}, list[0])
	assert.Equal(t, "0000003", list[2].HN)
}

func TestPatientRecord(t *testing.T) {
	rec, err := newTestClinic(seededStore()).PatientRecord(context.Background(), " 1 ")
	require.NoError(t, err)

	assert.Equal(t, "0000001", rec.Patient.HN)
	assert.Equal(t, 30, rec.Age)
	assert.InDelta(t, 576.06, rec.PredictedPEFR, 1e-6)
	assert.Equal(t, clinical.TechniqueOK, rec.Technique.State)
	assert.Equal(t, epochDays(2026, 6, 1)+365-epochDays(2026, 10, 19), rec.Technique.Days)
	assert.Equal(t, "4 months ago", rec.ReviewedAgo)
	assert.Equal(t, "ลืมพ่นยา", rec.LatestDRP)
	require.NotNil(t, rec.LatestVisit)
	assert.Equal(t, models.Uncontrolled, rec.LatestVisit.ControlLevel)
	assert.Equal(t, "https://asthma.example/?hn=0000001", rec.Link)

	require.Len(t, rec.Visits, 2)
	assert.Equal(t, time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), rec.Visits[0].Date)
	require.NotNil(t, rec.Visits[0].PercentPredicted)
	assert.Equal(t, 52, *rec.Visits[0].PercentPredicted)
	assert.Equal(t, clinical.ZoneOrange, rec.Visits[0].Zone)
	assert.Equal(t, clinical.ZoneGreen, rec.Visits[1].Zone)
}

func epochDays(y int, m time.Month, d int) int {
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func TestPatientRecord_IncompleteData(t *testing.T) {
	rec, err := newTestClinic(seededStore()).PatientRecord(context.Background(), "2")
	require.NoError(t, err)

	assert.Equal(t, 0.0, rec.PredictedPEFR)
	assert.Equal(t, 400.0, rec.ReferencePEFR)
	assert.Equal(t, clinical.TechniqueNever, rec.Technique.State)
	assert.Empty(t, rec.LatestDRP)
	for _, v := range rec.Visits {
		assert.Nil(t, v.PercentPredicted)
	}
}

func TestPatientRecord_NotFound(t *testing.T) {
	_, err := newTestClinic(seededStore()).PatientRecord(context.Background(), "999")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestPublicSummary_Masked(t *testing.T) {
	sum, err := newTestClinic(seededStore()).PublicSummary(context.Background(), "0000002")
	require.NoError(t, err)

	assert.Equal(t, "0000002", sum.Patient.HN)
	assert.Equal(t, "นางสมxxxx รัxxx", sum.Patient.Name)
	assert.Equal(t, "320", sum.LatestPEFR)
	assert.Equal(t, 400.0, sum.ReferencePEFR)
	require.NotNil(t, sum.LatestDate)
}

func TestRegisterPatient(t *testing.T) {
	fs := seededStore()
	c := newTestClinic(fs)

	p, err := c.RegisterPatient(context.Background(), RegisterInput{
		HN:          "42",
		Prefix:      "น.ส.",
		FirstName:   "มาลี",
		LastName:    "ดีใจ",
		DateOfBirth: time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC),
		HeightCM:    158,
	})
	require.NoError(t, err)
	assert.Equal(t, "0000042", p.HN)
	assert.Equal(t, models.SexFemale, p.Sex)
	require.Len(t, fs.appended[store.Patients], 1)
	assert.Equal(t, []string{"0000042", "น.ส.", "มาลี", "ดีใจ", "2001-02-03", "0", "158", "female"}, fs.appended[store.Patients][0])
}

func TestRegisterPatient_Duplicate(t *testing.T) {
	fs := seededStore()
	_, err := newTestClinic(fs).RegisterPatient(context.Background(), RegisterInput{HN: "3", FirstName: "ซ้ำ"})
	assert.ErrorIs(t, err, ErrDuplicateHN)
	assert.Empty(t, fs.appended[store.Patients])
}

func TestRegisterPatient_AppendFails(t *testing.T) {
	fs := seededStore()
	fs.appendErr = errors.New("quota exceeded")
	_, err := newTestClinic(fs).RegisterPatient(context.Background(), RegisterInput{HN: "77", FirstName: "ใหม่"})
	assert.ErrorIs(t, err, ErrAppendFailed)
}

func TestRegisterPatient_MissingHN(t *testing.T) {
	_, err := newTestClinic(seededStore()).RegisterPatient(context.Background(), RegisterInput{HN: "  "})
	assert.ErrorIs(t, err, ErrInvalidHN)
}

func TestRecordVisit_RelativePickup(t *testing.T) {
	fs := seededStore()
	c := newTestClinic(fs)

	v, err := c.RecordVisit(context.Background(), "1", VisitInput{
		Date:           time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		PEFR:           350,
		ControlLevel:   models.Controlled,
		Controllers:    []string{"Symbicort"},
		Adherence:      95,
		RelativePickup: true,
		Note:           "มารับยาแทน",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, v.PEFR)
	assert.Equal(t, 0, v.Adherence)
	assert.Equal(t, "[ญาติรับแทน] มารับยาแทน", v.Note)

	require.Len(t, fs.appended[store.Visits], 1)
	assert.Equal(t, []string{
		"0000001", "2026-10-19", "0", "Controlled", "Symbicort", "",
		"0", "", "", "ไม่ทำ", "", "[ญาติรับแทน] มารับยาแทน",
	}, fs.appended[store.Visits][0])
}

func TestRecordVisit_NotMeasuredAndUnknownPatient(t *testing.T) {
	fs := seededStore()
	c := newTestClinic(fs)

	v, err := c.RecordVisit(context.Background(), "2", VisitInput{PEFR: 300, NotMeasured: true, TechniqueTaught: true})
	require.NoError(t, err)
	assert.Equal(t, 0, v.PEFR)
	assert.Equal(t, testNow, v.Date)
	assert.True(t, v.TechniqueChecked)

	_, err = c.RecordVisit(context.Background(), "404", VisitInput{})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestRecordVisit_InvalidatesCache(t *testing.T) {
	fs := seededStore()
	cache := store.NewTableCache(fs, store.NewMemoryKVStore(), time.Hour, "staff", zap.NewNop())
	c := NewClinic(cache, cache, fs, "http://localhost:8501", zap.NewNop())
	c.now = func() time.Time { return testNow }
	ctx := context.Background()

	before, err := c.PatientRecord(ctx, "3")
	require.NoError(t, err)
	require.Len(t, before.Visits, 1)

	_, err = c.RecordVisit(ctx, "3", VisitInput{PEFR: 250, ControlLevel: models.Controlled})
	require.NoError(t, err)

	after, err := c.PatientRecord(ctx, "3")
	require.NoError(t, err)
	assert.Len(t, after.Visits, 2)
}

func TestExportWorkbook(t *testing.T) {
	data, err := newTestClinic(seededStore()).ExportWorkbook(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
