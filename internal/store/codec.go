package store

import (
	"strconv"
	"strings"
	"time"

	"asthma-care-server/internal/clinical"
	"asthma-care-server/internal/models"
)

// DateLayout is how dates are written to the tables.
const DateLayout = "2006-01-02"

// Slash dates are always day first, as typed at the clinic. "2" and "1"
// also accept two digits, so zero-padded dates need no separate layout.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
}

// headerAliases maps legacy column names onto the canonical schema.
// Old visit sheets used "control" before it became "control_level".
var headerAliases = map[string]string{
	"control": "control_level",
}

// ParseDate accepts the layouts found in the clinic sheets. Anything else is
// the zero time, which date-dependent aggregations skip.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	return int(parseNumber(s))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SplitList splits a ", "-joined medication cell.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseTechnique reads the technique-check cell. "ไม่ทำ" contains "ทำ", so the
// match has to be exact.
func ParseTechnique(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.TechniqueDone, "true", "yes", "1":
		return true
	}
	return false
}

func formatTechnique(done bool) string {
	if done {
		return models.TechniqueDone
	}
	return models.TechniqueNotDone
}

// columnIndex maps canonical column names to their position in header.
// Without a header the schema order is assumed.
func columnIndex(header, schema []string) map[string]int {
	idx := make(map[string]int, len(schema))
	if len(header) == 0 {
		for i, c := range schema {
			idx[c] = i
		}
		return idx
	}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := headerAliases[name]; ok {
			if _, taken := idx[canonical]; taken {
				continue
			}
			name = canonical
		}
		idx[name] = i
	}
	return idx
}

type rowReader struct {
	idx map[string]int
	row []string
}

func (r rowReader) get(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

// DecodePatients converts the patients sheet into typed records.
// Rows without an HN are dropped.
func DecodePatients(s Sheet) []models.Patient {
	idx := columnIndex(s.Header, PatientColumns)
	out := make([]models.Patient, 0, len(s.Rows))
	for _, row := range s.Rows {
		r := rowReader{idx: idx, row: row}
		if r.get("hn") == "" {
			continue
		}
		out = append(out, models.Patient{
			HN:          clinical.NormalizeHN(r.get("hn")),
			Prefix:      r.get("prefix"),
			FirstName:   r.get("first_name"),
			LastName:    r.get("last_name"),
			DateOfBirth: ParseDate(r.get("dob")),
			BestPEFR:    parseInt(r.get("best_pefr")),
			HeightCM:    parseNumber(r.get("height")),
			Sex:         models.ParseSex(r.get("sex")),
		})
	}
	return out
}

// DecodeVisits converts the visits sheet into typed records in table order.
// Rows without an HN are dropped; an unparseable date leaves Date zero.
func DecodeVisits(s Sheet) []models.Visit {
	idx := columnIndex(s.Header, VisitColumns)
	out := make([]models.Visit, 0, len(s.Rows))
	for _, row := range s.Rows {
		r := rowReader{idx: idx, row: row}
		if r.get("hn") == "" {
			continue
		}
		v := models.Visit{
			HN:               clinical.NormalizeHN(r.get("hn")),
			Date:             ParseDate(r.get("date")),
			PEFR:             parseInt(r.get("pefr")),
			ControlLevel:     models.ControlLevel(r.get("control_level")),
			Controllers:      SplitList(r.get("controller")),
			Relievers:        SplitList(r.get("reliever")),
			Adherence:        parseInt(r.get("adherence")),
			DRP:              r.get("drp"),
			Advice:           r.get("advice"),
			TechniqueChecked: ParseTechnique(r.get("technique_check")),
			Note:             r.get("note"),
		}
		if next := ParseDate(r.get("next_appt")); !next.IsZero() {
			v.NextAppointment = &next
		}
		out = append(out, v)
	}
	return out
}

// EncodePatient lays a patient out in PatientColumns order.
func EncodePatient(p models.Patient) []string {
	sex := ""
	if p.Sex == models.SexMale || p.Sex == models.SexFemale {
		sex = string(p.Sex)
	}
	return []string{
		clinical.NormalizeHN(p.HN),
		p.Prefix,
		p.FirstName,
		p.LastName,
		formatDate(p.DateOfBirth),
		strconv.Itoa(p.BestPEFR),
		formatNumber(p.HeightCM),
		sex,
	}
}

// EncodeVisit lays a visit out in VisitColumns order.
func EncodeVisit(v models.Visit) []string {
	next := ""
	if v.NextAppointment != nil {
		next = formatDate(*v.NextAppointment)
	}
	return []string{
		clinical.NormalizeHN(v.HN),
		formatDate(v.Date),
		strconv.Itoa(v.PEFR),
		string(v.ControlLevel),
		strings.Join(v.Controllers, ", "),
		strings.Join(v.Relievers, ", "),
		strconv.Itoa(v.Adherence),
		v.DRP,
		v.Advice,
		formatTechnique(v.TechniqueChecked),
		next,
		v.Note,
	}
}
