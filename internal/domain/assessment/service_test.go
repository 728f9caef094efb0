package assessment

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/dementia"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
	"github.com/markgannott/menopause-kp-cdst/internal/refdata"
)

func newService(t *testing.T) *Service {
	t.Helper()
	ref, err := refdata.New()
	if err != nil {
		t.Fatalf("refdata.New: %v", err)
	}
	return NewService(ref, refdata.DefaultEligiblePopulation, 2.0, zerolog.Nop())
}

func minimalRequest() Request {
	return Request{
		Patient: patient.Profile{
			Age:   51,
			Stage: patient.StageLatePerimenopause,
		},
	}
}

func TestAssess_NoBiomarkers(t *testing.T) {
	s := newService(t)
	a, err := s.Assess(context.Background(), minimalRequest())
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if a.KPRisk != nil {
		t.Error("no panel supplied, KPRisk must be nil")
	}
	if a.Population != patient.PopulationAustralian {
		t.Errorf("population default = %s", a.Population)
	}
	if len(a.Treatments) != 5 {
		t.Fatalf("treatments = %d, want 5", len(a.Treatments))
	}
	if a.Dementia.TotalScore != 0 || a.Dementia.Level != dementia.LevelPopulationLevel {
		t.Errorf("dementia = %+v", a.Dementia)
	}
	// Unguided economics: iTBS offset at the base efficacy.
	if a.CostOffsets[0].Treatment != refdata.TreatmentITBS || a.CostOffsets[0].Offset != 3110 {
		t.Errorf("iTBS offset = %+v", a.CostOffsets[0])
	}
	if a.National.Treated != 7200 {
		t.Errorf("national treated = %d, want 7200", a.National.Treated)
	}
	if a.National.Treatment != a.Treatments[0].Treatment.Name {
		t.Error("national scale must use the top-ranked treatment")
	}

	joined := strings.Join(a.Summary, "\n")
	if !strings.Contains(joined, "not available") {
		t.Errorf("summary must note missing biomarkers:\n%s", joined)
	}
	if !strings.Contains(joined, "Recommended treatment:") {
		t.Errorf("summary must name the recommendation:\n%s", joined)
	}
}

func TestAssess_HighKPGuidesEconomics(t *testing.T) {
	s := newService(t)
	req := minimalRequest()
	req.Patient.Biomarkers = &patient.Biomarkers{
		Sample: patient.SampleSerum,
		TRP:    67.26 - 2*11.19,
		KYN:    2.43 + 2*0.59,
	}
	a, err := s.Assess(context.Background(), req)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if a.KPRisk == nil || a.KPRisk.Level != "HIGH" {
		t.Fatalf("kp risk = %+v", a.KPRisk)
	}
	if a.Treatments[0].Treatment.Name != refdata.TreatmentITBS {
		t.Errorf("top treatment = %s, want itbs", a.Treatments[0].Treatment.Name)
	}
	if a.CostOffsets[0].Offset != 5702 {
		t.Errorf("guided iTBS offset = %d, want 5702", a.CostOffsets[0].Offset)
	}
	if a.Dementia.ClassicalScore != 2 {
		t.Errorf("dementia classical = %d, want 2 (HIGH KP)", a.Dementia.ClassicalScore)
	}

	joined := strings.Join(a.Summary, "\n")
	if !strings.Contains(joined, "KP risk level: HIGH") {
		t.Errorf("summary missing KP level:\n%s", joined)
	}
}

func TestAssess_Deterministic(t *testing.T) {
	s := newService(t)
	req := minimalRequest()
	req.Patient.Symptoms = []patient.Symptom{patient.SymptomVasomotor, patient.SymptomDepression}

	a1, err := s.Assess(context.Background(), req)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	a2, err := s.Assess(context.Background(), req)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if a1.ID == a2.ID {
		t.Error("assessment IDs must be unique")
	}
	for i := range a1.Treatments {
		if a1.Treatments[i].Score != a2.Treatments[i].Score ||
			a1.Treatments[i].Treatment.Name != a2.Treatments[i].Treatment.Name {
			t.Error("scores must be deterministic across calls")
		}
	}
}

func TestAssess_Overrides(t *testing.T) {
	s := newService(t)
	req := minimalRequest()
	req.EligiblePopulation = 100_000
	req.UptakePct = 10

	a, err := s.Assess(context.Background(), req)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if a.National.Treated != 10_000 {
		t.Errorf("treated = %d, want 10000", a.National.Treated)
	}
}

func TestAssess_InvalidProfile(t *testing.T) {
	s := newService(t)
	req := minimalRequest()
	req.Patient.Age = 30
	if _, err := s.Assess(context.Background(), req); err == nil {
		t.Error("expected error for out-of-range age")
	}

	req = minimalRequest()
	req.Population = "nordic"
	if _, err := s.Assess(context.Background(), req); err == nil {
		t.Error("expected error for unknown population")
	}
}

func TestScoreKP_Validation(t *testing.T) {
	s := newService(t)

	_, err := s.ScoreKP(context.Background(), KPRiskRequest{
		Age: 30, Biomarkers: patient.Biomarkers{Sample: patient.SampleSerum, TRP: 60, KYN: 2},
	})
	if err == nil {
		t.Error("expected error for out-of-range age")
	}

	_, err = s.ScoreKP(context.Background(), KPRiskRequest{
		Age: 51, Biomarkers: patient.Biomarkers{Sample: "csf", TRP: 60, KYN: 2},
	})
	if err == nil {
		t.Error("expected error for unknown sample type")
	}

	res, err := s.ScoreKP(context.Background(), KPRiskRequest{
		Age: 51, Biomarkers: patient.Biomarkers{Sample: patient.SampleSerum, TRP: 67.26, KYN: 2.43},
	})
	if err != nil {
		t.Fatalf("ScoreKP: %v", err)
	}
	if res.Level == "" {
		t.Error("level must be set")
	}
}

func TestGroupSymptoms(t *testing.T) {
	g := groupSymptoms([]patient.Symptom{
		patient.SymptomCognitiveFog,
		patient.SymptomMemoryProblems,
		patient.SymptomDepression,
		patient.SymptomVasomotor,
		patient.SymptomFatigue,
	})
	if len(g.Cognitive) != 2 || len(g.Mood) != 1 || len(g.Physical) != 2 {
		t.Errorf("groups = %+v", g)
	}
}
