// Package kprisk scores kynurenine pathway dysregulation from a TRP/KYN
// blood panel against age-adjusted population norms.
package kprisk

import (
	"fmt"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
	"github.com/markgannott/menopause-kp-cdst/internal/refdata"
)

// RiskLevel is the classified KP risk band.
type RiskLevel string

const (
	LevelHigh        RiskLevel = "HIGH"
	LevelModerate    RiskLevel = "MODERATE"
	LevelLowModerate RiskLevel = "LOW_MODERATE"
	LevelLow         RiskLevel = "LOW"
)

var interpretations = map[RiskLevel]string{
	LevelHigh:        "Significant KP dysregulation. Elevated neurotoxic shift. Consider intervention.",
	LevelModerate:    "Moderate KP activation. Monitor and consider targeted intervention if symptomatic.",
	LevelLowModerate: "Mild KP changes consistent with normal perimenopause transition.",
	LevelLow:         "KP within normal range. Standard menopause management recommended.",
}

// Elevated reports whether the level warrants biomarker-guided treatment
// selection.
func (l RiskLevel) Elevated() bool {
	return l == LevelHigh || l == LevelModerate
}

// Result is a scored KP panel. Z-scores are against age-adjusted normative
// means; the composite averages the inverted TRP z, the KYN z, and the ratio z.
type Result struct {
	TRPZ           float64   `json:"trp_z"`
	KYNZ           float64   `json:"kyn_z"`
	Ratio          float64   `json:"kyn_trp_ratio"`
	RatioZ         float64   `json:"ratio_z"`
	NormRatio      float64   `json:"norm_ratio"`
	Composite      float64   `json:"composite"`
	Level          RiskLevel `json:"level"`
	Interpretation string    `json:"interpretation"`
	NormTRPMean    float64   `json:"norm_trp_mean"`
	NormKYNMean    float64   `json:"norm_kyn_mean"`
	AdjTRPMean     float64   `json:"adjusted_trp_mean"`
	AdjKYNMean     float64   `json:"adjusted_kyn_mean"`
}

// Scorer evaluates KP panels against one immutable reference data set. Safe
// for concurrent use.
type Scorer struct {
	ref *refdata.Reference
}

func NewScorer(ref *refdata.Reference) *Scorer {
	return &Scorer{ref: ref}
}

// AgeAdjust shifts a normative mean to the given age using a per-year
// regression coefficient centered at the reference study mean age.
func AgeAdjust(age, mean, beta float64) float64 {
	return mean + beta*(age-refdata.ReferenceAge)
}

// ZScore is the standard score; a zero SD yields zero rather than dividing.
func ZScore(value, mean, sd float64) float64 {
	if sd == 0 {
		return 0
	}
	return (value - mean) / sd
}

// Score evaluates a panel for a patient of the given age against the chosen
// normative population.
func (s *Scorer) Score(age float64, pop patient.Population, b patient.Biomarkers) (Result, error) {
	if err := pop.Validate(); err != nil {
		return Result{}, err
	}
	trpNorm, err := s.ref.Norm(pop, b.Sample, refdata.Tryptophan)
	if err != nil {
		return Result{}, fmt.Errorf("score kp panel: %w", err)
	}
	kynNorm, err := s.ref.Norm(pop, b.Sample, refdata.Kynurenine)
	if err != nil {
		return Result{}, fmt.Errorf("score kp panel: %w", err)
	}
	trpAge, err := s.ref.AgeEffect(b.Sample, refdata.Tryptophan)
	if err != nil {
		return Result{}, fmt.Errorf("score kp panel: %w", err)
	}
	kynAge, err := s.ref.AgeEffect(b.Sample, refdata.Kynurenine)
	if err != nil {
		return Result{}, fmt.Errorf("score kp panel: %w", err)
	}

	adjTRP := AgeAdjust(age, trpNorm.Mean, trpAge.Beta)
	adjKYN := AgeAdjust(age, kynNorm.Mean, kynAge.Beta)

	trpZ := ZScore(b.TRP, adjTRP, trpNorm.SD)
	kynZ := ZScore(b.KYN, adjKYN, kynNorm.SD)

	var ratio float64
	if b.TRP > 0 {
		ratio = b.KYN / b.TRP
	}
	normRatio := kynNorm.Mean / trpNorm.Mean
	if adjTRP > 0 {
		normRatio = adjKYN / adjTRP
	}
	ratioZ := (ratio - normRatio) / (normRatio * refdata.RatioCV)

	// Low TRP, high KYN, and a high ratio all indicate neurotoxic shift, so
	// the TRP z enters inverted.
	composite := (-trpZ + kynZ + ratioZ) / 3

	level := classify(composite)
	return Result{
		TRPZ:           trpZ,
		KYNZ:           kynZ,
		Ratio:          ratio,
		RatioZ:         ratioZ,
		NormRatio:      normRatio,
		Composite:      composite,
		Level:          level,
		Interpretation: interpretations[level],
		NormTRPMean:    trpNorm.Mean,
		NormKYNMean:    kynNorm.Mean,
		AdjTRPMean:     adjTRP,
		AdjKYNMean:     adjKYN,
	}, nil
}

// classify bands the composite. Thresholds are strict so a composite of
// exactly 1.5 is MODERATE, not HIGH.
func classify(composite float64) RiskLevel {
	switch {
	case composite > 1.5:
		return LevelHigh
	case composite > 0.5:
		return LevelModerate
	case composite > -0.5:
		return LevelLowModerate
	default:
		return LevelLow
	}
}

// TrajectoryPoint is the expected normative metabolite level at one age.
type TrajectoryPoint struct {
	Age         int     `json:"age"`
	ExpectedTRP float64 `json:"expected_trp"`
	ExpectedKYN float64 `json:"expected_kyn"`
}

// Trajectory returns the expected TRP and KYN means across the supported age
// window for the given population and sample type, one point per year.
func (s *Scorer) Trajectory(pop patient.Population, sample patient.SampleType) ([]TrajectoryPoint, error) {
	if err := pop.Validate(); err != nil {
		return nil, err
	}
	trpNorm, err := s.ref.Norm(pop, sample, refdata.Tryptophan)
	if err != nil {
		return nil, err
	}
	kynNorm, err := s.ref.Norm(pop, sample, refdata.Kynurenine)
	if err != nil {
		return nil, err
	}
	trpAge, err := s.ref.AgeEffect(sample, refdata.Tryptophan)
	if err != nil {
		return nil, err
	}
	kynAge, err := s.ref.AgeEffect(sample, refdata.Kynurenine)
	if err != nil {
		return nil, err
	}

	points := make([]TrajectoryPoint, 0, patient.MaxAge-patient.MinAge+1)
	for a := patient.MinAge; a <= patient.MaxAge; a++ {
		points = append(points, TrajectoryPoint{
			Age:         a,
			ExpectedTRP: AgeAdjust(float64(a), trpNorm.Mean, trpAge.Beta),
			ExpectedKYN: AgeAdjust(float64(a), kynNorm.Mean, kynAge.Beta),
		})
	}
	return points, nil
}
