package clinical

import (
	"math"
	"time"

	"asthma-care-server/internal/models"
)

// TechniqueState is the inhaler-technique review status of a patient.
type TechniqueState string

const (
	TechniqueNever   TechniqueState = "never"
	TechniqueOK      TechniqueState = "ok"
	TechniqueOverdue TechniqueState = "overdue"
)

// TechniqueValidity is how long a technique review stays valid.
const TechniqueValidity = 365

// TechniqueStatus is the result of EvaluateTechnique.
// Days is the number of days left for TechniqueOK and days overdue for
// TechniqueOverdue.
type TechniqueStatus struct {
	State      TechniqueState `json:"state"`
	Days       int            `json:"days"`
	LastReview *time.Time     `json:"lastReview,omitempty"`
}

// EvaluateTechnique derives the review status from one patient's visits as of today.
func EvaluateTechnique(visits []models.Visit, today time.Time) TechniqueStatus {
	var last time.Time
	for _, v := range visits {
		if !v.TechniqueChecked || v.Date.IsZero() {
			continue
		}
		if v.Date.After(last) {
			last = v.Date
		}
	}
	if last.IsZero() {
		return TechniqueStatus{State: TechniqueNever}
	}

	due := dateOnly(last).AddDate(0, 0, TechniqueValidity)
	remaining := daysBetween(dateOnly(today), due)
	st := TechniqueStatus{LastReview: &last}
	if remaining < 0 {
		st.State = TechniqueOverdue
		st.Days = -remaining
	} else {
		st.State = TechniqueOK
		st.Days = remaining
	}
	return st
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b; both must be dateOnly values.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
