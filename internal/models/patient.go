package models

import (
	"time"
)

// Sex is the sex used to pick a predicted-PEFR regression branch.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// ParseSex maps a stored or submitted value onto a Sex. Anything unrecognised is SexUnknown.
func ParseSex(s string) Sex {
	switch Sex(s) {
	case SexMale, SexFemale:
		return Sex(s)
	}
	switch s {
	case "M", "m", "ชาย":
		return SexMale
	case "F", "f", "หญิง":
		return SexFemale
	}
	return SexUnknown
}

// Patient represents a registered asthma clinic patient.
type Patient struct {
	HN          string    `json:"hn"`
	Prefix      string    `json:"prefix"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	BestPEFR    int       `json:"bestPefr"`
	HeightCM    float64   `json:"heightCm"`
	Sex         Sex       `json:"sex"`
}

// FullName returns the prefix and names the way the clinic writes them.
func (p Patient) FullName() string {
	return p.Prefix + p.FirstName + " " + p.LastName
}

// PatientMasked is the patient view that is safe to show on the public link.
type PatientMasked struct {
	HN   string `json:"hn"`
	Name string `json:"name"`
}

// Mask creates a PatientMasked from a Patient, hiding most of the names.
func (p Patient) Mask() PatientMasked {
	return PatientMasked{
		HN:   p.HN,
		Name: p.Prefix + MaskText(p.FirstName) + " " + MaskText(p.LastName),
	}
}

// MaskText keeps the first two runes of s and replaces the rest with 'x'.
// A single rune is kept as is.
func MaskText(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		if len(r) == 0 {
			return s
		}
		return string(r[:1]) + repeatX(len(r)-1)
	}
	return string(r[:2]) + repeatX(len(r)-2)
}

func repeatX(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
