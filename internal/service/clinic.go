package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"asthma-care-server/internal/clinical"
	"asthma-care-server/internal/models"
	"asthma-care-server/internal/store"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrDuplicateHN     = errors.New("hn already registered")
	ErrInvalidHN       = errors.New("hn is required")
	ErrAppendFailed    = errors.New("failed to save to the clinic sheet")
)

// View selects which read path serves a request.
type View int

const (
	// StaffView reads through the authenticated backend.
	StaffView View = iota
	// PublicView reads through the credential-free export used by patient links.
	PublicView
)

// Invalidator is implemented by readers that cache tables.
type Invalidator interface {
	Invalidate(ctx context.Context, tables ...store.Table) error
}

// Clinic joins the patients and visits tables and runs the clinical
// calculations over them. It holds no state between requests besides what the
// readers cache.
type Clinic struct {
	staff  store.Reader
	public store.Reader
	writer store.Appender
	appURL string
	logger *zap.Logger
	now    func() time.Time
}

// NewClinic creates the service. public may equal staff when there is no
// separate export path.
func NewClinic(staff, public store.Reader, writer store.Appender, appURL string, logger *zap.Logger) *Clinic {
	return &Clinic{
		staff:  staff,
		public: public,
		writer: writer,
		appURL: strings.TrimRight(appURL, "/"),
		logger: logger,
		now:    time.Now,
	}
}

// Tables is one consistent read of both clinic tables.
type Tables struct {
	Patients  []models.Patient
	Visits    []models.Visit
	FetchedAt time.Time
}

func (s *Clinic) reader(view View) store.Reader {
	if view == PublicView && s.public != nil {
		return s.public
	}
	return s.staff
}

// readSheet returns an empty sheet when the store cannot be reached, so
// pages degrade to zeros instead of failing.
func (s *Clinic) readSheet(ctx context.Context, view View, table store.Table) store.Sheet {
	sheet, err := s.reader(view).ReadTable(ctx, table)
	if err != nil {
		s.logger.Warn("Store unavailable, using empty table",
			zap.String("table", string(table)),
			zap.Error(err),
		)
		return store.Sheet{}
	}
	return sheet
}

// LoadTables fetches both tables concurrently and decodes them.
func (s *Clinic) LoadTables(ctx context.Context, view View) Tables {
	var patients, visits store.Sheet
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		patients = s.readSheet(gCtx, view, store.Patients)
		return nil
	})
	g.Go(func() error {
		visits = s.readSheet(gCtx, view, store.Visits)
		return nil
	})
	_ = g.Wait()

	fetched := patients.FetchedAt
	if visits.FetchedAt.Before(fetched) {
		fetched = visits.FetchedAt
	}
	if fetched.IsZero() {
		fetched = s.now()
	}
	return Tables{
		Patients:  store.DecodePatients(patients),
		Visits:    store.DecodeVisits(visits),
		FetchedAt: fetched,
	}
}

func findPatient(patients []models.Patient, hn string) (models.Patient, bool) {
	for _, p := range patients {
		if p.HN == hn {
			return p, true
		}
	}
	return models.Patient{}, false
}

func visitsOf(visits []models.Visit, hn string) []models.Visit {
	var out []models.Visit
	for _, v := range visits {
		if v.HN == hn {
			out = append(out, v)
		}
	}
	return out
}

// newestFirst sorts a copy of visits by date, newest first, keeping table
// order for equal dates.
func newestFirst(visits []models.Visit) []models.Visit {
	out := make([]models.Visit, len(visits))
	copy(out, visits)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// PatientLink is the unauthenticated link printed on the asthma card.
func (s *Clinic) PatientLink(hn string) string {
	return s.appURL + "/?hn=" + url.QueryEscape(clinical.NormalizeHN(hn))
}

func (s *Clinic) invalidate(ctx context.Context, tables ...store.Table) {
	readers := []store.Reader{s.staff}
	if s.public != nil && s.public != s.staff {
		readers = append(readers, s.public)
	}
	for _, r := range readers {
		if inv, ok := r.(Invalidator); ok {
			if err := inv.Invalidate(ctx, tables...); err != nil {
				s.logger.Warn("Failed to invalidate table cache", zap.Error(err))
			}
		}
	}
}

func (s *Clinic) appendRow(ctx context.Context, table store.Table, row []string) error {
	if err := s.writer.AppendRow(ctx, table, row); err != nil {
		s.logger.Error("Append failed",
			zap.String("table", string(table)),
			zap.String("hn", row[0]),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrAppendFailed, err)
	}
	s.invalidate(ctx, table)
	return nil
}
