package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"asthma-care-server/internal/clinical"
	"asthma-care-server/internal/models"
	"asthma-care-server/internal/store"
)

// PatientListItem is one entry of the staff patient picker.
type PatientListItem struct {
	HN   string `json:"hn"`
	Name string `json:"name"`
}

// ListPatients returns every registered patient ordered by HN.
func (s *Clinic) ListPatients(ctx context.Context) []PatientListItem {
	t := s.LoadTables(ctx, StaffView)
	seen := make(map[string]bool, len(t.Patients))
	out := make([]PatientListItem, 0, len(t.Patients))
	for _, p := range t.Patients {
		if seen[p.HN] {
			continue
		}
		seen[p.HN] = true
		out = append(out, PatientListItem{HN: p.HN, Name: p.FullName()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HN < out[j].HN })
	return out
}

// VisitView is a visit with its derived values.
type VisitView struct {
	models.Visit
	PercentPredicted *int          `json:"percentPredicted,omitempty"`
	Zone             clinical.Zone `json:"zone,omitempty"`
}

// PatientRecord is everything the staff page shows for one patient.
type PatientRecord struct {
	Patient       models.Patient           `json:"patient"`
	Age           int                      `json:"age"`
	PredictedPEFR float64                  `json:"predictedPefr"`
	ReferencePEFR float64                  `json:"referencePefr"`
	Technique     clinical.TechniqueStatus `json:"technique"`
	ReviewedAgo   string                   `json:"reviewedAgo,omitempty"`
	LatestDRP     string                   `json:"latestDrp,omitempty"`
	LatestVisit   *models.Visit            `json:"latestVisit,omitempty"`
	Visits        []VisitView              `json:"visits"`
	Link          string                   `json:"link"`
	FetchedAt     time.Time                `json:"fetchedAt"`
}

// emptyDRP lists the DRP cell values that mean nothing was noted.
var emptyDRP = map[string]bool{"": true, "-": true, "nan": true}

func (s *Clinic) buildRecord(t Tables, hn string) (PatientRecord, error) {
	hn = clinical.NormalizeHN(hn)
	p, ok := findPatient(t.Patients, hn)
	if !ok {
		return PatientRecord{}, fmt.Errorf("%w: HN %s", ErrPatientNotFound, hn)
	}

	now := s.now()
	visits := visitsOf(t.Visits, hn)
	age := clinical.AgeYears(p.DateOfBirth, now)
	predicted := clinical.PredictPEFR(age, p.HeightCM, clinical.PatientSex(p))
	reference := clinical.ReferencePEFR(predicted, p.BestPEFR, visits)

	rec := PatientRecord{
		Patient:       p,
		Age:           age,
		PredictedPEFR: predicted,
		ReferencePEFR: reference,
		Technique:     clinical.EvaluateTechnique(visits, now),
		Link:          s.PatientLink(hn),
		FetchedAt:     t.FetchedAt,
	}
	if last := rec.Technique.LastReview; last != nil {
		rec.ReviewedAgo = humanize.RelTime(*last, now, "ago", "from now")
	}
	if latest, ok := clinical.LatestVisits(visits)[hn]; ok {
		rec.LatestVisit = &latest
		if drp := strings.TrimSpace(latest.DRP); !emptyDRP[drp] {
			rec.LatestDRP = drp
		}
	}

	ordered := newestFirst(visits)
	rec.Visits = make([]VisitView, len(ordered))
	for i, v := range ordered {
		vv := VisitView{Visit: v}
		if pct, ok := clinical.PercentOfPredicted(float64(v.PEFR), predicted); ok {
			vv.PercentPredicted = &pct
		}
		if v.HasPEFR() && reference > 0 {
			vv.Zone = clinical.PEFRZone(float64(v.PEFR), reference)
		}
		rec.Visits[i] = vv
	}
	return rec, nil
}

// PatientRecord returns the staff view of one patient.
func (s *Clinic) PatientRecord(ctx context.Context, hn string) (PatientRecord, error) {
	return s.buildRecord(s.LoadTables(ctx, StaffView), hn)
}

// PublicSummary is the masked view behind the patient link.
type PublicSummary struct {
	Patient       models.PatientMasked     `json:"patient"`
	Technique     clinical.TechniqueStatus `json:"technique"`
	ReviewedAgo   string                   `json:"reviewedAgo,omitempty"`
	LatestDate    *time.Time               `json:"latestDate,omitempty"`
	LatestPEFR    string                   `json:"latestPefr,omitempty"`
	ReferencePEFR float64                  `json:"referencePefr"`
	Visits        []VisitView              `json:"visits"`
}

// PublicSummary returns the masked summary for the unauthenticated patient link.
func (s *Clinic) PublicSummary(ctx context.Context, hn string) (PublicSummary, error) {
	rec, err := s.buildRecord(s.LoadTables(ctx, PublicView), hn)
	if err != nil {
		return PublicSummary{}, err
	}
	out := PublicSummary{
		Patient:       rec.Patient.Mask(),
		Technique:     rec.Technique,
		ReviewedAgo:   rec.ReviewedAgo,
		ReferencePEFR: rec.ReferencePEFR,
		Visits:        rec.Visits,
	}
	if v := rec.LatestVisit; v != nil {
		d := v.Date
		out.LatestDate = &d
		out.LatestPEFR = "N/A"
		if v.HasPEFR() {
			out.LatestPEFR = fmt.Sprint(v.PEFR)
		}
	}
	return out, nil
}

// RegisterInput is a new patient as entered on the registration form.
type RegisterInput struct {
	HN          string
	Prefix      string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	BestPEFR    int
	HeightCM    float64
	Sex         models.Sex
}

// RegisterPatient appends a new patient after checking the HN is free.
// The check and the append are not atomic.
func (s *Clinic) RegisterPatient(ctx context.Context, in RegisterInput) (models.Patient, error) {
	if strings.TrimSpace(in.HN) == "" {
		return models.Patient{}, ErrInvalidHN
	}
	hn := clinical.NormalizeHN(in.HN)

	t := s.LoadTables(ctx, StaffView)
	if _, exists := findPatient(t.Patients, hn); exists {
		return models.Patient{}, fmt.Errorf("%w: HN %s", ErrDuplicateHN, hn)
	}

	sex := in.Sex
	if sex != models.SexMale && sex != models.SexFemale {
		sex = clinical.SexFromPrefix(in.Prefix)
	}
	p := models.Patient{
		HN:          hn,
		Prefix:      strings.TrimSpace(in.Prefix),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		DateOfBirth: in.DateOfBirth,
		BestPEFR:    in.BestPEFR,
		HeightCM:    in.HeightCM,
		Sex:         sex,
	}
	if err := s.appendRow(ctx, store.Patients, store.EncodePatient(p)); err != nil {
		return models.Patient{}, err
	}
	s.logger.Info("Registered patient", zap.String("hn", hn))
	return p, nil
}

// RelativePickupNote marks visits where a relative collected the medicine.
const RelativePickupNote = "[ญาติรับแทน] "

// VisitInput is a visit as entered on the visit form.
type VisitInput struct {
	Date            time.Time
	PEFR            int
	NotMeasured     bool
	ControlLevel    models.ControlLevel
	Controllers     []string
	Relievers       []string
	Adherence       int
	RelativePickup  bool
	TechniqueTaught bool
	DRP             string
	Advice          string
	NextAppointment *time.Time
	Note            string
}

// RecordVisit appends a visit for a registered patient.
func (s *Clinic) RecordVisit(ctx context.Context, hn string, in VisitInput) (models.Visit, error) {
	hn = clinical.NormalizeHN(hn)
	t := s.LoadTables(ctx, StaffView)
	if _, ok := findPatient(t.Patients, hn); !ok {
		return models.Visit{}, fmt.Errorf("%w: HN %s", ErrPatientNotFound, hn)
	}

	v := models.Visit{
		HN:               hn,
		Date:             in.Date,
		PEFR:             in.PEFR,
		ControlLevel:     in.ControlLevel,
		Controllers:      in.Controllers,
		Relievers:        in.Relievers,
		Adherence:        in.Adherence,
		DRP:              in.DRP,
		Advice:           in.Advice,
		TechniqueChecked: in.TechniqueTaught,
		NextAppointment:  in.NextAppointment,
		Note:             in.Note,
	}
	if in.RelativePickup {
		// the patient was not seen, so nothing was measured
		v.PEFR = 0
		v.Adherence = 0
		v.Note = RelativePickupNote + in.Note
	}
	if in.NotMeasured {
		v.PEFR = 0
	}
	if v.Date.IsZero() {
		v.Date = s.now()
	}

	if err := s.appendRow(ctx, store.Visits, store.EncodeVisit(v)); err != nil {
		return models.Visit{}, err
	}
	s.logger.Info("Recorded visit",
		zap.String("hn", hn),
		zap.String("control_level", string(v.ControlLevel)),
	)
	return v, nil
}
