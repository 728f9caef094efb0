// Package assessment orchestrates the scoring engines into a single clinical
// assessment: KP risk, treatment ranking, dementia risk, and the economic
// models, plus a plain-text clinical summary.
package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/costoffset"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/dementia"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/kprisk"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/treatment"
	"github.com/markgannott/menopause-kp-cdst/internal/refdata"
)

// Service wires the scoring engines together. Stateless between requests;
// safe for concurrent use.
type Service struct {
	scorer   *kprisk.Scorer
	ranker   *treatment.Ranker
	calc     *costoffset.Calculator
	eligible int
	uptake   float64
	log      zerolog.Logger
}

// NewService builds the orchestrator. eligible and uptakePct are the national
// scaling defaults; requests may override them.
func NewService(ref *refdata.Reference, eligible int, uptakePct float64, log zerolog.Logger) *Service {
	return &Service{
		scorer:   kprisk.NewScorer(ref),
		ranker:   treatment.NewRanker(ref),
		calc:     costoffset.NewCalculator(ref),
		eligible: eligible,
		uptake:   uptakePct,
		log:      log,
	}
}

// Assess runs the full pipeline for one profile. The same request always
// yields the same scores; only the ID and timestamp differ between calls.
func (s *Service) Assess(ctx context.Context, req Request) (*Assessment, error) {
	if err := req.Patient.Validate(); err != nil {
		return nil, err
	}
	pop := req.Population
	if pop == "" {
		pop = patient.PopulationAustralian
	}
	if err := pop.Validate(); err != nil {
		return nil, err
	}

	a := &Assessment{
		ID:            uuid.New(),
		CreatedAt:     time.Now().UTC(),
		Patient:       req.Patient,
		Population:    pop,
		SymptomGroups: groupSymptoms(req.Patient.Symptoms),
	}

	var kpLevel *kprisk.RiskLevel
	if req.Patient.Biomarkers != nil {
		res, err := s.scorer.Score(req.Patient.Age, pop, *req.Patient.Biomarkers)
		if err != nil {
			return nil, err
		}
		a.KPRisk = &res
		kpLevel = &res.Level
	}

	a.Treatments = s.ranker.Rank(treatment.Input{
		Age:      req.Patient.Age,
		Stage:    req.Patient.Stage,
		Symptoms: req.Patient.Symptoms,
		KPLevel:  kpLevel,
	})

	a.Dementia = dementia.Score(&req.Patient, kpLevel)

	kpGuided := kpLevel != nil && kpLevel.Elevated()
	a.CostOffsets = s.calc.PerPatient(kpGuided)

	eligible := s.eligible
	if req.EligiblePopulation > 0 {
		eligible = req.EligiblePopulation
	}
	uptake := s.uptake
	if req.UptakePct > 0 {
		uptake = req.UptakePct
	}
	national, err := s.calc.Scale(a.Treatments[0].Treatment.Name, kpGuided, eligible, uptake)
	if err != nil {
		return nil, err
	}
	a.National = national

	avoidance, err := s.calc.Avoidance(costoffset.AvoidanceParams{
		NVLevel: a.Dementia.NeurovascularLevel,
	})
	if err != nil {
		return nil, err
	}
	a.CostAvoidance = avoidance

	a.Summary = s.summarize(a)

	s.log.Info().
		Str("assessment_id", a.ID.String()).
		Str("kp_level", string(levelOrNone(kpLevel))).
		Str("top_treatment", string(a.Treatments[0].Treatment.Name)).
		Str("dementia_level", string(a.Dementia.Level)).
		Msg("assessment completed")

	return a, nil
}

// ScoreKP scores a biomarker panel without the rest of the pipeline.
func (s *Service) ScoreKP(ctx context.Context, req KPRiskRequest) (kprisk.Result, error) {
	if req.Age < patient.MinAge || req.Age > patient.MaxAge {
		return kprisk.Result{}, fmt.Errorf("age must be in [%d, %d], got %v", patient.MinAge, patient.MaxAge, req.Age)
	}
	if err := req.Biomarkers.Sample.Validate(); err != nil {
		return kprisk.Result{}, err
	}
	if req.Biomarkers.TRP < 0 || req.Biomarkers.KYN < 0 {
		return kprisk.Result{}, fmt.Errorf("biomarker values must be >= 0")
	}
	pop := req.Population
	if pop == "" {
		pop = patient.PopulationAustralian
	}
	return s.scorer.Score(req.Age, pop, req.Biomarkers)
}

// Trajectory exposes the expected metabolite trajectory across the supported
// age window.
func (s *Service) Trajectory(pop patient.Population, sample patient.SampleType) ([]kprisk.TrajectoryPoint, error) {
	if pop == "" {
		pop = patient.PopulationAustralian
	}
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	return s.scorer.Trajectory(pop, sample)
}

var cognitiveSymptoms = map[patient.Symptom]bool{
	patient.SymptomCognitiveFog:            true,
	patient.SymptomMemoryProblems:          true,
	patient.SymptomConcentrationDifficulty: true,
}

var moodSymptoms = map[patient.Symptom]bool{
	patient.SymptomDepression: true,
	patient.SymptomAnxiety:    true,
}

func groupSymptoms(symptoms []patient.Symptom) SymptomGroups {
	var g SymptomGroups
	for _, s := range symptoms {
		switch {
		case cognitiveSymptoms[s]:
			g.Cognitive = append(g.Cognitive, s)
		case moodSymptoms[s]:
			g.Mood = append(g.Mood, s)
		default:
			g.Physical = append(g.Physical, s)
		}
	}
	return g
}

func (s *Service) summarize(a *Assessment) []string {
	lines := []string{
		fmt.Sprintf("Patient: %.0fyo female, %s", a.Patient.Age, a.Patient.Stage),
		fmt.Sprintf("Symptoms: %s", joinOr(symptomStrings(a.Patient.Symptoms), "None reported")),
		fmt.Sprintf("Risk factors: %s", joinOr(riskFactorStrings(a.Patient.RiskFactors), "None")),
	}

	if kp := a.KPRisk; kp != nil {
		b := a.Patient.Biomarkers
		lines = append(lines,
			fmt.Sprintf("KP biomarkers (%s): TRP %.1f μM, KYN %.2f μM, KYN/TRP %.4f", b.Sample, b.TRP, b.KYN, kp.Ratio),
			fmt.Sprintf("KP risk level: %s (composite z = %.2f)", kp.Level, kp.Composite),
			fmt.Sprintf("Interpretation: %s", kp.Interpretation),
		)
	} else {
		lines = append(lines, "KP biomarkers: not available. Recommend serum TRP/KYN ($80 AUD)")
	}

	top, alt := a.Treatments[0], a.Treatments[1]
	lines = append(lines,
		fmt.Sprintf("Recommended treatment: %s (score %d/100)", top.Treatment.Label, top.Score),
		fmt.Sprintf("Alternative: %s (score %d/100)", alt.Treatment.Label, alt.Score),
		fmt.Sprintf("Estimated annual productivity loss: $%d AUD", refdata.PerWomanIndirectLoss),
	)
	for _, co := range a.CostOffsets {
		if co.Treatment == top.Treatment.Name {
			lines = append(lines, fmt.Sprintf("Potential offset with %s: $%d AUD (%.0f%% improvement)",
				top.Treatment.Label, co.Offset, co.Efficacy*100))
			break
		}
	}

	lines = append(lines,
		fmt.Sprintf("Dementia risk score: %d/%d (%s)", a.Dementia.TotalScore, dementia.MaxTotal, a.Dementia.Level),
		fmt.Sprintf("Classical: %d/%d | ARIA-H/neurovascular: %d/%d",
			a.Dementia.ClassicalScore, dementia.MaxClassical,
			a.Dementia.NeurovascularScore, dementia.MaxNeurovascular),
	)
	if a.Dementia.NeurovascularLevel != dementia.NVLow {
		lines = append(lines, fmt.Sprintf("Neurovascular vulnerability: %s", a.Dementia.NeurovascularLevel))
	}
	if img := a.Patient.Neuroimaging; img != nil && img.MicrobleedCount > 0 {
		lines = append(lines, fmt.Sprintf("CMBs: %d | WMH: %s | Siderosis: %s",
			img.MicrobleedCount, yesNo(img.HasWhiteMatterChanges), yesNo(img.HasSiderosis)))
	}
	if a.Patient.APOE == patient.APOEHeterozygous || a.Patient.APOE == patient.APOEHomozygous {
		lines = append(lines, fmt.Sprintf("APOE: %s", a.Patient.APOE))
	}
	return lines
}

func symptomStrings(ss []patient.Symptom) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func riskFactorStrings(rs []patient.RiskFactor) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func levelOrNone(l *kprisk.RiskLevel) kprisk.RiskLevel {
	if l == nil {
		return "NONE"
	}
	return *l
}
