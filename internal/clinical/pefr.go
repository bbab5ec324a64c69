package clinical

import (
	"math"
	"strings"

	"asthma-care-server/internal/models"
)

// childAgeLimit is the age from which the adult regressions apply.
const childAgeLimit = 15

// minChildPEFR floors the paediatric formula for very short children.
const minChildPEFR = 100

// PredictPEFR returns the expected peak expiratory flow in L/min.
// A height of zero or less means there is not enough data and yields 0.
// SexUnknown uses the male regression.
func PredictPEFR(ageYears int, heightCM float64, sex models.Sex) float64 {
	if heightCM <= 0 {
		return 0
	}
	if ageYears < childAgeLimit {
		return math.Max(-425.5714+5.2428*heightCM, minChildPEFR)
	}

	a := float64(ageYears)
	h := heightCM
	var litresPerSecond float64
	if sex == models.SexFemale {
		litresPerSecond = -31.355 + 0.162*a - 0.00084*a*a + 0.391*h - 0.00099*h*h - 0.00072*a*h
	} else {
		litresPerSecond = -16.859 + 0.307*a + 0.141*h - 0.0018*a*a - 0.001*a*h
	}
	return litresPerSecond * 60
}

var femalePrefixes = []string{"นาง", "น.ส.", "หญิง", "ด.ญ.", "Miss", "Mrs.", "Ms."}

// SexFromPrefix infers sex from a name prefix. It only exists for patient
// rows registered before the sex column was added.
func SexFromPrefix(prefix string) models.Sex {
	p := strings.TrimSpace(prefix)
	for _, f := range femalePrefixes {
		if strings.Contains(p, f) {
			return models.SexFemale
		}
	}
	return models.SexMale
}

// PatientSex returns the recorded sex, falling back to the prefix for legacy rows.
func PatientSex(p models.Patient) models.Sex {
	if p.Sex == models.SexMale || p.Sex == models.SexFemale {
		return p.Sex
	}
	return SexFromPrefix(p.Prefix)
}
