package dementia

import (
	"testing"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/kprisk"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
)

func kp(l kprisk.RiskLevel) *kprisk.RiskLevel { return &l }

func TestScore_EmptyProfile(t *testing.T) {
	p := &patient.Profile{Age: 51, Stage: patient.StageLatePerimenopause}
	res := Score(p, nil)

	if res.TotalScore != 0 {
		t.Errorf("total = %d, want 0", res.TotalScore)
	}
	if res.Level != LevelPopulationLevel {
		t.Errorf("level = %s, want POPULATION_LEVEL", res.Level)
	}
	if res.NeurovascularLevel != NVLow {
		t.Errorf("nv level = %s, want LOW", res.NeurovascularLevel)
	}
	if len(res.Contributions) != 0 {
		t.Errorf("unexpected contributions: %v", res.Contributions)
	}
	if res.Disclaimer == "" {
		t.Error("disclaimer must always be present")
	}
}

func TestScore_WorstCase(t *testing.T) {
	p := &patient.Profile{
		Age:   48,
		Stage: patient.StageSurgicalMenopause,
		RiskFactors: []patient.RiskFactor{
			patient.RiskBilateralOophorectomy,
			patient.RiskEarlyMenopause,
			patient.RiskFamilyHistoryDementia,
			patient.RiskNoCurrentMHT,
		},
		Symptoms: []patient.Symptom{patient.SymptomMemoryProblems},
		Neuroimaging: &patient.Neuroimaging{
			MicrobleedCount:       6,
			HasWhiteMatterChanges: true,
			HasSiderosis:          true,
		},
		APOE: patient.APOEHomozygous,
	}
	res := Score(p, kp(kprisk.LevelHigh))

	if res.ClassicalScore != MaxClassical {
		t.Errorf("classical = %d, want %d", res.ClassicalScore, MaxClassical)
	}
	if res.NeurovascularScore != MaxNeurovascular {
		t.Errorf("neurovascular = %d, want %d", res.NeurovascularScore, MaxNeurovascular)
	}
	if res.TotalScore != MaxTotal {
		t.Errorf("total = %d, want %d", res.TotalScore, MaxTotal)
	}
	if res.Level != LevelCritical {
		t.Errorf("level = %s, want CRITICAL", res.Level)
	}
	if res.NeurovascularLevel != NVHigh {
		t.Errorf("nv level = %s, want HIGH", res.NeurovascularLevel)
	}
}

func TestScore_MicrobleedBands(t *testing.T) {
	cases := []struct {
		count  int
		points int
		factor string
	}{
		{0, 0, ""},
		{1, 2, "Cerebral microbleeds (1-4)"},
		{4, 2, "Cerebral microbleeds (1-4)"},
		{5, 3, "Cerebral microbleeds (>=5)"},
	}
	for _, tc := range cases {
		p := &patient.Profile{
			Age: 51, Stage: patient.StageLatePerimenopause,
			Neuroimaging: &patient.Neuroimaging{MicrobleedCount: tc.count},
		}
		res := Score(p, nil)
		if res.NeurovascularScore != tc.points {
			t.Errorf("count %d: nv score = %d, want %d", tc.count, res.NeurovascularScore, tc.points)
		}
		if tc.factor != "" {
			if len(res.Contributions) != 1 || res.Contributions[0].Factor != tc.factor {
				t.Errorf("count %d: contributions = %v", tc.count, res.Contributions)
			}
		}
	}
}

func TestScore_ImagingFindingsRequireImaging(t *testing.T) {
	// Without an MRI, microbleed and WMH contributions cannot apply, but
	// APOE genotype still scores.
	p := &patient.Profile{
		Age: 51, Stage: patient.StageLatePerimenopause,
		APOE: patient.APOEHeterozygous,
	}
	res := Score(p, nil)
	if res.NeurovascularScore != 2 {
		t.Errorf("nv score = %d, want 2 (APOE only)", res.NeurovascularScore)
	}
	if res.NeurovascularLevel != NVModerate {
		t.Errorf("nv level = %s, want MODERATE", res.NeurovascularLevel)
	}
}

func TestScore_KPContribution(t *testing.T) {
	base := &patient.Profile{Age: 51, Stage: patient.StageLatePerimenopause}

	if got := Score(base, kp(kprisk.LevelHigh)).ClassicalScore; got != 2 {
		t.Errorf("HIGH KP classical score = %d, want 2", got)
	}
	if got := Score(base, kp(kprisk.LevelModerate)).ClassicalScore; got != 1 {
		t.Errorf("MODERATE KP classical score = %d, want 1", got)
	}
	if got := Score(base, kp(kprisk.LevelLowModerate)).ClassicalScore; got != 0 {
		t.Errorf("LOW_MODERATE KP classical score = %d, want 0", got)
	}
	if got := Score(base, nil).ClassicalScore; got != 0 {
		t.Errorf("no-panel classical score = %d, want 0", got)
	}
}

func TestScore_HistoryOfDepressionCarriesNoPoints(t *testing.T) {
	p := &patient.Profile{
		Age: 51, Stage: patient.StageLatePerimenopause,
		RiskFactors: []patient.RiskFactor{patient.RiskHistoryOfDepression},
	}
	res := Score(p, nil)
	if res.TotalScore != 0 || len(res.Contributions) != 0 {
		t.Errorf("history of depression must not score: %+v", res)
	}
}

func TestScore_CognitiveSymptomsCountOnce(t *testing.T) {
	p := &patient.Profile{
		Age: 51, Stage: patient.StageLatePerimenopause,
		Symptoms: []patient.Symptom{patient.SymptomCognitiveFog, patient.SymptomMemoryProblems},
	}
	res := Score(p, nil)
	if res.ClassicalScore != 1 {
		t.Errorf("classical = %d, want 1 (single cognitive contribution)", res.ClassicalScore)
	}
}

func TestCombinedLevelBoundaries(t *testing.T) {
	cases := []struct {
		total int
		want  RiskLevel
	}{
		{0, LevelPopulationLevel},
		{2, LevelPopulationLevel},
		{3, LevelModerate},
		{5, LevelModerate},
		{6, LevelElevated},
		{9, LevelElevated},
		{10, LevelCritical},
		{23, LevelCritical},
	}
	for _, tc := range cases {
		if got := combinedLevel(tc.total); got != tc.want {
			t.Errorf("combinedLevel(%d) = %s, want %s", tc.total, got, tc.want)
		}
	}
}
