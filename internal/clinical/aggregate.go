package clinical

import (
	"math"
	"sort"
	"strconv"
	"time"

	"asthma-care-server/internal/models"
)

// PercentOfPredicted returns round(measured/predicted*100). ok is false when
// either value is missing.
func PercentOfPredicted(measured, predicted float64) (pct int, ok bool) {
	if measured <= 0 || predicted <= 0 {
		return 0, false
	}
	return int(math.Round(measured / predicted * 100)), true
}

// AgeYears returns the age in completed calendar years at now, or 0 for an unknown birth date.
func AgeYears(dob, now time.Time) int {
	if dob.IsZero() || dob.After(now) {
		return 0
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// LatestVisits returns the chronologically last visit of every HN.
// Visits without a date are ignored; on equal dates the later row wins.
func LatestVisits(visits []models.Visit) map[string]models.Visit {
	latest := make(map[string]models.Visit)
	for _, v := range visits {
		if v.Date.IsZero() {
			continue
		}
		if cur, ok := latest[v.HN]; ok && cur.Date.After(v.Date) {
			continue
		}
		latest[v.HN] = v
	}
	return latest
}

// ControlCount is one slice of the control-status tally.
type ControlCount struct {
	Status models.ControlLevel `json:"status"`
	Count  int                 `json:"count"`
}

// ControlTally counts latest visits per control level. Canonical levels come
// first in severity order and only appear when seen.
func ControlTally(latest map[string]models.Visit) []ControlCount {
	counts := make(map[models.ControlLevel]int)
	for _, v := range latest {
		counts[v.ControlLevel]++
	}
	out := make([]ControlCount, 0, len(counts))
	for level, n := range counts {
		out = append(out, ControlCount{Status: level, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Status.Severity(), out[j].Status.Severity()
		if si != sj {
			return si < sj
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// AgeBinCount and AgeBinWidth fix the shape of the age histogram; the last bin is open ended.
const (
	AgeBinCount = 10
	AgeBinWidth = 10
)

// AgeBin is one bar of the age histogram.
type AgeBin struct {
	Label string `json:"label"`
	From  int    `json:"from"`
	Count int    `json:"count"`
}

// AgeHistogram buckets patients by age at now. Patients without a birth date are skipped.
func AgeHistogram(patients []models.Patient, now time.Time) []AgeBin {
	bins := make([]AgeBin, AgeBinCount)
	for i := range bins {
		from := i * AgeBinWidth
		bins[i].From = from
		if i == AgeBinCount-1 {
			bins[i].Label = strconv.Itoa(from) + "+"
		} else {
			bins[i].Label = strconv.Itoa(from) + "-" + strconv.Itoa(from+AgeBinWidth-1)
		}
	}
	for _, p := range patients {
		if p.DateOfBirth.IsZero() || p.DateOfBirth.After(now) {
			continue
		}
		i := AgeYears(p.DateOfBirth, now) / AgeBinWidth
		if i >= AgeBinCount {
			i = AgeBinCount - 1
		}
		bins[i].Count++
	}
	return bins
}

// MonthCount is the number of visits in one calendar month (YYYY-MM).
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyTrend counts all visits per calendar month in ascending order.
// Months without visits are not filled in.
func MonthlyTrend(visits []models.Visit) []MonthCount {
	counts := make(map[string]int)
	for _, v := range visits {
		if v.Date.IsZero() {
			continue
		}
		counts[v.Date.Format("2006-01")]++
	}
	out := make([]MonthCount, 0, len(counts))
	for m, n := range counts {
		out = append(out, MonthCount{Month: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// KPIs are the headline numbers of the clinic dashboard.
type KPIs struct {
	TotalPatients     int `json:"totalPatients"`
	ThisMonthVisits   int `json:"thisMonthVisits"`
	UncontrolledCount int `json:"uncontrolledCount"`
}

// ComputeKPIs derives the dashboard KPIs as of now.
func ComputeKPIs(patients []models.Patient, visits []models.Visit, now time.Time) KPIs {
	k := KPIs{TotalPatients: len(patients)}
	month := now.Format("2006-01")
	for _, v := range visits {
		if !v.Date.IsZero() && v.Date.Format("2006-01") == month {
			k.ThisMonthVisits++
		}
	}
	for _, c := range ControlTally(LatestVisits(visits)) {
		if c.Status == models.Uncontrolled {
			k.UncontrolledCount = c.Count
		}
	}
	return k
}

// Zone is the traffic-light band of a PEFR reading against a reference value.
type Zone string

const (
	ZoneGreen  Zone = "green"
	ZoneOrange Zone = "orange"
	ZoneRed    Zone = "red"
)

// Zone thresholds as fractions of the reference PEFR.
const (
	GreenZoneFraction  = 0.8
	OrangeZoneFraction = 0.5
)

// PEFRZone classifies value against reference.
func PEFRZone(value, reference float64) Zone {
	switch {
	case value >= reference*GreenZoneFraction:
		return ZoneGreen
	case value >= reference*OrangeZoneFraction:
		return ZoneOrange
	default:
		return ZoneRed
	}
}

// ReferencePEFR picks the value readings are compared against: the predicted
// PEFR, else the patient's own best, else the best measured reading.
func ReferencePEFR(predicted float64, best int, visits []models.Visit) float64 {
	if predicted > 0 {
		return predicted
	}
	if best > 0 {
		return float64(best)
	}
	var highest int
	for _, v := range visits {
		if v.PEFR > highest {
			highest = v.PEFR
		}
	}
	return float64(highest)
}
