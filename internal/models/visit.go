package models

import (
	"time"
)

// ControlLevel is the symptom-control classification recorded at a visit.
// Values outside the three canonical levels are kept verbatim.
type ControlLevel string

const (
	Controlled       ControlLevel = "Controlled"
	PartlyControlled ControlLevel = "Partly Controlled"
	Uncontrolled     ControlLevel = "Uncontrolled"
)

// ControlLevels lists the canonical levels from best to worst control.
var ControlLevels = []ControlLevel{Controlled, PartlyControlled, Uncontrolled}

// Severity orders canonical levels; unknown levels sort after them.
func (l ControlLevel) Severity() int {
	for i, c := range ControlLevels {
		if l == c {
			return i
		}
	}
	return len(ControlLevels)
}

// Technique-check markers as written in the visits sheet.
const (
	TechniqueDone    = "ทำ"
	TechniqueNotDone = "ไม่ทำ"
)

// Visit represents one clinic visit of a patient.
type Visit struct {
	HN               string       `json:"hn"`
	Date             time.Time    `json:"date"`
	PEFR             int          `json:"pefr"`
	ControlLevel     ControlLevel `json:"controlLevel"`
	Controllers      []string     `json:"controllers"`
	Relievers        []string     `json:"relievers"`
	Adherence        int          `json:"adherence"`
	DRP              string       `json:"drp"`
	Advice           string       `json:"advice"`
	TechniqueChecked bool         `json:"techniqueChecked"`
	NextAppointment  *time.Time   `json:"nextAppointment,omitempty"`
	Note             string       `json:"note"`
}

// HasPEFR reports whether a peak flow was actually measured at this visit.
func (v Visit) HasPEFR() bool {
	return v.PEFR > 0
}
