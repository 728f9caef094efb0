package kprisk

import (
	"math"
	"testing"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
	"github.com/markgannott/menopause-kp-cdst/internal/refdata"
)

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	ref, err := refdata.New()
	if err != nil {
		t.Fatalf("refdata.New: %v", err)
	}
	return NewScorer(ref)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAgeAdjust(t *testing.T) {
	// Ten years past the reference age at -0.20/yr drops the mean by 2.0.
	got := AgeAdjust(57.35, 60.52, -0.20)
	if !approx(got, 58.52) {
		t.Errorf("AgeAdjust = %v, want 58.52", got)
	}
	if !approx(AgeAdjust(refdata.ReferenceAge, 60.52, -0.20), 60.52) {
		t.Error("adjustment at the reference age must be the identity")
	}
}

func TestZScore_ZeroSD(t *testing.T) {
	if got := ZScore(99, 50, 0); got != 0 {
		t.Errorf("zero sd should yield z of 0, got %v", got)
	}
}

func TestScore_IdentityAtReferenceAge(t *testing.T) {
	s := newScorer(t)
	// A panel exactly at the Australian serum means, at the reference age,
	// must score zero across the board.
	res, err := s.Score(refdata.ReferenceAge, patient.PopulationAustralian, patient.Biomarkers{
		Sample: patient.SampleSerum, TRP: 67.26, KYN: 2.43,
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !approx(res.TRPZ, 0) || !approx(res.KYNZ, 0) || !approx(res.RatioZ, 0) || !approx(res.Composite, 0) {
		t.Errorf("expected all-zero result, got %+v", res)
	}
	if res.Level != LevelLowModerate {
		t.Errorf("composite of 0 is LOW_MODERATE, got %s", res.Level)
	}
	if res.Interpretation == "" {
		t.Error("interpretation must be set")
	}
}

func TestScore_NeurotoxicShift(t *testing.T) {
	s := newScorer(t)
	// Two SDs low on TRP and two SDs high on KYN at the reference age.
	res, err := s.Score(refdata.ReferenceAge, patient.PopulationAustralian, patient.Biomarkers{
		Sample: patient.SampleSerum, TRP: 67.26 - 2*11.19, KYN: 2.43 + 2*0.59,
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !approx(res.TRPZ, -2) || !approx(res.KYNZ, 2) {
		t.Errorf("z-scores = %v, %v, want -2, 2", res.TRPZ, res.KYNZ)
	}
	if res.Level != LevelHigh {
		t.Errorf("level = %s, want HIGH (composite %v)", res.Level, res.Composite)
	}
	if !res.Level.Elevated() {
		t.Error("HIGH must report elevated")
	}
}

func TestScore_ZeroTRP(t *testing.T) {
	s := newScorer(t)
	res, err := s.Score(51, patient.PopulationAustralian, patient.Biomarkers{
		Sample: patient.SampleSerum, TRP: 0, KYN: 2.43,
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Ratio != 0 {
		t.Errorf("zero TRP must yield a zero ratio, got %v", res.Ratio)
	}
}

func TestScore_GlobalPlasmaNorms(t *testing.T) {
	s := newScorer(t)
	res, err := s.Score(refdata.ReferenceAge, patient.PopulationGlobal, patient.Biomarkers{
		Sample: patient.SamplePlasma, TRP: 51.45, KYN: 1.82,
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.NormTRPMean != 51.45 || res.NormKYNMean != 1.82 {
		t.Errorf("wrong norms selected: %+v", res)
	}
	if !approx(res.Composite, 0) {
		t.Errorf("composite = %v, want 0", res.Composite)
	}
}

func TestScore_UnknownPopulation(t *testing.T) {
	s := newScorer(t)
	_, err := s.Score(51, "nordic", patient.Biomarkers{Sample: patient.SampleSerum, TRP: 60, KYN: 2})
	if err == nil {
		t.Error("expected error for unknown population")
	}
}

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		composite float64
		want      RiskLevel
	}{
		{1.6, LevelHigh},
		{1.5, LevelModerate}, // thresholds are strict
		{0.6, LevelModerate},
		{0.5, LevelLowModerate},
		{-0.49, LevelLowModerate},
		{-0.5, LevelLow},
		{-3, LevelLow},
	}
	for _, tc := range cases {
		if got := classify(tc.composite); got != tc.want {
			t.Errorf("classify(%v) = %s, want %s", tc.composite, got, tc.want)
		}
	}
}

func TestTrajectory(t *testing.T) {
	s := newScorer(t)
	points, err := s.Trajectory(patient.PopulationAustralian, patient.SampleSerum)
	if err != nil {
		t.Fatalf("Trajectory: %v", err)
	}
	if len(points) != 26 {
		t.Fatalf("expected 26 points (ages 40-65), got %d", len(points))
	}
	if points[0].Age != 40 || points[len(points)-1].Age != 65 {
		t.Errorf("age range = [%d, %d]", points[0].Age, points[len(points)-1].Age)
	}
	// At 40 the TRP mean sits above the reference mean (negative slope).
	if !approx(points[0].ExpectedTRP, 67.26-0.20*(40-refdata.ReferenceAge)) {
		t.Errorf("ExpectedTRP at 40 = %v", points[0].ExpectedTRP)
	}
	if points[0].ExpectedTRP <= points[25].ExpectedTRP {
		t.Error("expected TRP must decline with age")
	}
	if points[0].ExpectedKYN >= points[25].ExpectedKYN {
		t.Error("expected KYN must rise with age")
	}
}

func TestTrajectory_UnknownPopulation(t *testing.T) {
	s := newScorer(t)
	if _, err := s.Trajectory("martian", patient.SampleSerum); err == nil {
		t.Error("expected error for unknown population")
	}
}
