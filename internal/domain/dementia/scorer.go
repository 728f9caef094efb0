// Package dementia implements the exploratory dual-track dementia risk score:
// classical menopause risk factors (Rocca 2007/2021, Maki 2013) plus an
// ARIA-H neurovascular track (microbleeds, WMH, siderosis, APOE). The score
// is hypothesis-generating, not validated.
package dementia

import (
	"fmt"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/kprisk"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
)

// RiskLevel is the combined risk band.
type RiskLevel string

const (
	LevelCritical        RiskLevel = "CRITICAL"
	LevelElevated        RiskLevel = "ELEVATED"
	LevelModerate        RiskLevel = "MODERATE"
	LevelPopulationLevel RiskLevel = "POPULATION_LEVEL"
)

// NeurovascularLevel bands the ARIA-H track on its own.
type NeurovascularLevel string

const (
	NVHigh     NeurovascularLevel = "HIGH"
	NVModerate NeurovascularLevel = "MODERATE"
	NVLow      NeurovascularLevel = "LOW"
)

// Track maxima.
const (
	MaxClassical     = 12
	MaxNeurovascular = 11
	MaxTotal         = MaxClassical + MaxNeurovascular
)

// Contribution is one scored risk factor with its literature anchor.
type Contribution struct {
	Factor     string `json:"factor"`
	EffectSize string `json:"effect_size"`
	Source     string `json:"source"`
	Points     int    `json:"points"`
}

// Result is a scored dual-track assessment. Contributions are ordered:
// classical factors first, then neurovascular.
type Result struct {
	ClassicalScore     int                `json:"classical_score"`      // /12
	NeurovascularScore int                `json:"neurovascular_score"`  // /11
	TotalScore         int                `json:"total_score"`          // /23
	NeurovascularLevel NeurovascularLevel `json:"neurovascular_level"`
	Level              RiskLevel          `json:"level"`
	Contributions      []Contribution     `json:"contributions"`
	Disclaimer         string             `json:"disclaimer"`
}

const disclaimer = "EXPLORATORY: dementia risk scoring is not validated. " +
	"The triple-hit model is hypothesis-generating only."

// Score evaluates a profile. kpLevel is nil when no biomarker panel was
// provided; the KP contributions then do not apply. History of depression is
// an accepted risk factor but carries no points in this model.
func Score(p *patient.Profile, kpLevel *kprisk.RiskLevel) Result {
	res := Result{
		NeurovascularLevel: NVLow,
		Level:              LevelPopulationLevel,
		Disclaimer:         disclaimer,
	}
	add := func(track *int, pts int, factor, effect, source string) {
		*track += pts
		res.Contributions = append(res.Contributions, Contribution{
			Factor: factor, EffectSize: effect, Source: source, Points: pts,
		})
	}

	if p.HasRiskFactor(patient.RiskBilateralOophorectomy) {
		add(&res.ClassicalScore, 3, "Bilateral oophorectomy <menopause", "HR = 1.46", "Rocca 2007")
	}
	if p.HasRiskFactor(patient.RiskEarlyMenopause) {
		add(&res.ClassicalScore, 3, "Early menopause (<45)", "aOR = 2.21 for MCI", "Rocca 2021")
	}
	if p.HasRiskFactor(patient.RiskFamilyHistoryDementia) {
		add(&res.ClassicalScore, 2, "Family history", "OR ~2.0", "Literature")
	}
	if p.HasRiskFactor(patient.RiskNoCurrentMHT) {
		add(&res.ClassicalScore, 1, "No MHT during critical window", "~30% risk reduction missed", "Maki 2013")
	}
	if kpLevel != nil {
		switch *kpLevel {
		case kprisk.LevelHigh:
			add(&res.ClassicalScore, 2, "KP dysregulation (HIGH)", "Neurotoxic shift", "Metri 2023 + Giil 2016")
		case kprisk.LevelModerate:
			add(&res.ClassicalScore, 1, "KP activation (MODERATE)", "Elevated KYN/TRP", "Metri 2023")
		}
	}
	if p.HasSymptom(patient.SymptomCognitiveFog) || p.HasSymptom(patient.SymptomMemoryProblems) {
		add(&res.ClassicalScore, 1, "Current cognitive symptoms", "Subjective", "Self-report")
	}

	if img := p.Neuroimaging; img != nil {
		if img.MicrobleedCount >= 5 {
			add(&res.NeurovascularScore, 3, "Cerebral microbleeds (>=5)",
				fmt.Sprintf("%d CMBs on MRI", img.MicrobleedCount), "ARIA-H literature")
		} else if img.MicrobleedCount >= 1 {
			add(&res.NeurovascularScore, 2, "Cerebral microbleeds (1-4)",
				fmt.Sprintf("%d CMBs on MRI", img.MicrobleedCount), "ARIA-H literature")
		}
		if img.HasWhiteMatterChanges {
			add(&res.NeurovascularScore, 2, "WMH (Fazekas 2-3)", "BBB compromise marker", "Cerebrovascular lit.")
		}
		if img.HasSiderosis {
			add(&res.NeurovascularScore, 3, "Superficial siderosis", "CAA marker, high BBB vulnerability", "ARIA-H literature")
		}
	}

	// APOE status applies with or without imaging.
	switch p.APOE {
	case patient.APOEHomozygous:
		add(&res.NeurovascularScore, 3, "APOE e4/e4 homozygous", "OR ~12 for AD; BBB permeability", "Literature")
	case patient.APOEHeterozygous:
		add(&res.NeurovascularScore, 2, "APOE e3/e4 heterozygous", "OR ~3.2 for AD", "Literature")
	}

	res.TotalScore = res.ClassicalScore + res.NeurovascularScore
	res.NeurovascularLevel = nvLevel(res.NeurovascularScore)
	res.Level = combinedLevel(res.TotalScore)
	return res
}

func nvLevel(score int) NeurovascularLevel {
	switch {
	case score >= 5:
		return NVHigh
	case score >= 2:
		return NVModerate
	default:
		return NVLow
	}
}

func combinedLevel(total int) RiskLevel {
	switch {
	case total >= 10:
		return LevelCritical
	case total >= 6:
		return LevelElevated
	case total >= 3:
		return LevelModerate
	default:
		return LevelPopulationLevel
	}
}
