// Package refdata holds the population reference tables the scoring engine
// runs against: KP normative ranges (Metri et al. 2023, N=8,089 across 120
// studies), age and sex regression coefficients, treatment cost and evidence
// tables, productivity-loss constants (Gannott 2025 COI, Stromberg
// decomposition), and dementia economics. Tables are constructed once at
// process start, validated, and never mutated.
package refdata

import (
	"fmt"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
)

// Metabolite identifies a measured KP biomarker.
type Metabolite string

const (
	Tryptophan Metabolite = "trp"
	Kynurenine Metabolite = "kyn"
)

// Fixed modeling constants. RatioCV and the composite divisor in the kprisk
// package are uncalibrated assumptions carried over from the source model;
// they must not be changed without re-deriving the risk thresholds.
const (
	// ReferenceAge is the mean study age the regression coefficients are
	// centered at.
	ReferenceAge = 47.35

	// RatioCV is the assumed coefficient of variation of the normative
	// KYN/TRP ratio (~25%).
	RatioCV = 0.25

	// PerWomanIndirectLoss is the Stromberg-adjusted annual productivity
	// loss per symptomatic employed woman, AUD.
	PerWomanIndirectLoss = 25_917

	// DementiaLifetimeCost is the per-case lifetime cost of dementia, AUD
	// (NATSEM estimate).
	DementiaLifetimeCost = 442_000

	// ARIAHPrevalence is the estimated prevalence of cerebral microbleeds
	// in postmenopausal women.
	ARIAHPrevalence = 0.12

	// KPDysregulationPrevalence is the estimated prevalence of KP
	// dysregulation in perimenopausal women (unvalidated estimate).
	KPDysregulationPrevalence = 0.30

	// PerimenopausalPopulation is the national perimenopausal population
	// used by the cost-avoidance model.
	PerimenopausalPopulation = 2_500_000

	// DefaultEligiblePopulation is the default eligible population for
	// national scaling.
	DefaultEligiblePopulation = 360_000

	// DefaultSubgroupSize is the default high-risk subgroup size
	// (ARIA-H positive and KP-dysregulated) for the cost-avoidance model.
	DefaultSubgroupSize = 50_000
)

// NormativeRef is one population normative range.
type NormativeRef struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
	Unit string  `json:"unit"`
}

// RegressionEffect is a regression coefficient with its significance.
type RegressionEffect struct {
	Beta float64 `json:"beta"`
	P    float64 `json:"p"`
}

// TreatmentName is a closed enumeration of the treatment options.
type TreatmentName string

const (
	TreatmentITBS       TreatmentName = "itbs"
	TreatmentMHT        TreatmentName = "mht"
	TreatmentSSRI       TreatmentName = "ssri-snri"
	TreatmentCBT        TreatmentName = "cbt"
	TreatmentMonitoring TreatmentName = "monitoring"
)

// EvidenceGrade is an evidence quality grade; GradeGap marks an unstudied
// indication.
type EvidenceGrade string

const (
	GradeA   EvidenceGrade = "A"
	GradeB   EvidenceGrade = "B"
	GradeC   EvidenceGrade = "C"
	GradeD   EvidenceGrade = "D"
	GradeGap EvidenceGrade = "GAP"
)

// Treatment is one static treatment option with its Australian funding
// profile. Costs are AUD per year.
type Treatment struct {
	Name              TreatmentName `json:"name"`
	Label             string        `json:"label"`
	AnnualCost        int           `json:"annual_cost"`
	Rebate            int           `json:"rebate"`
	OutOfPocket       int           `json:"out_of_pocket"`
	MoodEvidence      EvidenceGrade `json:"mood_evidence"`
	CognitionEvidence EvidenceGrade `json:"cognition_evidence"`
	Description       string        `json:"description"`
}

// EvidenceProfile scores a treatment 0-10 across clinical and practical
// domains.
type EvidenceProfile struct {
	Mood              int `json:"mood"`
	Cognition         int `json:"cognition"`
	VMS               int `json:"vms"`
	CostEffectiveness int `json:"cost_effectiveness"`
	Access            int `json:"access"`
	Safety            int `json:"safety"`
}

// Condition is a KP-linked condition with its national annual burden.
type Condition struct {
	Name          string        `json:"name"`
	AnnualBurdenB float64       `json:"annual_burden_b"` // $B AUD per year
	KPLink        string        `json:"kp_link"`
	HazardRatio   float64       `json:"hazard_ratio"`
	Evidence      EvidenceGrade `json:"evidence"`
}

// StrombergDecomposition breaks the per-woman productivity loss into its five
// buckets, AUD per year.
type StrombergDecomposition struct {
	EmployeeAbsenteeism  int `json:"employee_absenteeism"`
	EmployerReplacement  int `json:"employer_replacement"` // SA=0.97
	EmployeePresenteeism int `json:"employee_presenteeism"`
	EmployerFriction     int `json:"employer_friction"` // SP=0.54
	WorkplaceEnvironment int `json:"workplace_environment"` // SWEP=0.72 x employer-side
}

// ResearchGap is one entry in the research gap register.
type ResearchGap struct {
	Gap             string `json:"gap"`
	CurrentEvidence string `json:"current_evidence"`
	FundableStudy   string `json:"fundable_study"`
	Fills           string `json:"fills"`
	Owner           string `json:"owner"`
	Priority        string `json:"priority"`
}

type normKey struct {
	pop    patient.Population
	sample patient.SampleType
	met    Metabolite
}

type effectKey struct {
	sample patient.SampleType
	met    Metabolite
}

// Reference is the immutable reference data set. Construct with New and pass
// by pointer into each component; no component mutates it.
type Reference struct {
	norms      map[normKey]NormativeRef
	ageEffects map[effectKey]RegressionEffect
	sexEffects map[effectKey]RegressionEffect
	treatments []Treatment
	evidence   map[TreatmentName]EvidenceProfile
	efficacy   map[TreatmentName]float64
	conditions []Condition
	gaps       []ResearchGap
	stromberg  StrombergDecomposition
}

// ITBSGuidedEfficacy is the assumed iTBS responder efficacy under KP
// biomarker-guided selection (HIGH or MODERATE KP risk); the table value
// applies otherwise.
const ITBSGuidedEfficacy = 0.22

// New builds and validates the reference data set.
func New() (*Reference, error) {
	r := &Reference{
		norms: map[normKey]NormativeRef{
			{patient.PopulationGlobal, patient.SampleSerum, Tryptophan}:      {Mean: 60.52, SD: 15.38, Unit: "μM"},
			{patient.PopulationGlobal, patient.SampleSerum, Kynurenine}:      {Mean: 1.96, SD: 0.51, Unit: "μM"},
			{patient.PopulationGlobal, patient.SamplePlasma, Tryptophan}:     {Mean: 51.45, SD: 10.47, Unit: "μM"},
			{patient.PopulationGlobal, patient.SamplePlasma, Kynurenine}:     {Mean: 1.82, SD: 0.54, Unit: "μM"},
			{patient.PopulationAustralian, patient.SampleSerum, Tryptophan}:  {Mean: 67.26, SD: 11.19, Unit: "μM"},
			{patient.PopulationAustralian, patient.SampleSerum, Kynurenine}:  {Mean: 2.43, SD: 0.59, Unit: "μM"},
			{patient.PopulationAustralian, patient.SamplePlasma, Tryptophan}: {Mean: 42.87, SD: 8.51, Unit: "μM"},
			{patient.PopulationAustralian, patient.SamplePlasma, Kynurenine}: {Mean: 2.12, SD: 0.52, Unit: "μM"},
		},
		ageEffects: map[effectKey]RegressionEffect{
			{patient.SampleSerum, Tryptophan}:  {Beta: -0.20, P: 0.036},
			{patient.SampleSerum, Kynurenine}:  {Beta: 0.01, P: 0.002},
			{patient.SamplePlasma, Tryptophan}: {Beta: -0.74, P: 0.001},
			{patient.SamplePlasma, Kynurenine}: {Beta: 0.02, P: 0.001},
		},
		sexEffects: map[effectKey]RegressionEffect{
			{patient.SampleSerum, Tryptophan}: {Beta: -0.22, P: 0.012},
			{patient.SampleSerum, Kynurenine}: {Beta: -0.05, P: 0.001},
		},
		treatments: []Treatment{
			{
				Name: TreatmentITBS, Label: "Intermittent Theta-Burst Stimulation",
				AnnualCost: 7500, Rebate: 4080, OutOfPocket: 3420,
				MoodEvidence: GradeB, CognitionEvidence: GradeGap,
				Description: "Non-invasive brain stimulation targeting DLPFC. MBS Items 14216-14220. " +
					"MenoStim trial is the first to test for menopausal symptoms.",
			},
			{
				Name: TreatmentMHT, Label: "Menopausal Hormone Therapy",
				AnnualCost: 380, Rebate: 0, OutOfPocket: 380,
				MoodEvidence: GradeA, CognitionEvidence: GradeB,
				Description: "Estrogen ± progesterone. PBS-listed from March 2025. First-line for VMS; " +
					"may benefit mood and cognition during the critical window (Maki 2013).",
			},
			{
				Name: TreatmentSSRI, Label: "Antidepressant Medication",
				AnnualCost: 300, Rebate: 0, OutOfPocket: 300,
				MoodEvidence: GradeA, CognitionEvidence: GradeD,
				Description: "Escitalopram, desvenlafaxine. PBS generic. Evidence for mood but not " +
					"cognition; may worsen cognitive symptoms in some women.",
			},
			{
				Name: TreatmentCBT, Label: "Cognitive Behavioural Therapy",
				AnnualCost: 560, Rebate: 560, OutOfPocket: 0,
				MoodEvidence: GradeA, CognitionEvidence: GradeC,
				Description: "MBS Better Access: 6 sessions/yr. Evidence for mood and hot flush coping; " +
					"limited direct evidence for menopausal cognitive symptoms.",
			},
			{
				Name: TreatmentMonitoring, Label: "Watchful Waiting + Lifestyle",
				AnnualCost: 320, Rebate: 165, OutOfPocket: 155,
				MoodEvidence: GradeC, CognitionEvidence: GradeC,
				Description: "GP monitoring plus lifestyle measures. Cognitive symptoms are often " +
					"transient and reverse postmenopause (SWAN longitudinal).",
			},
		},
		evidence: map[TreatmentName]EvidenceProfile{
			TreatmentITBS:       {Mood: 6, Cognition: 3, VMS: 1, CostEffectiveness: 5, Access: 4, Safety: 8},
			TreatmentMHT:        {Mood: 7, Cognition: 6, VMS: 10, CostEffectiveness: 9, Access: 9, Safety: 7},
			TreatmentSSRI:       {Mood: 9, Cognition: 2, VMS: 5, CostEffectiveness: 9, Access: 10, Safety: 6},
			TreatmentCBT:        {Mood: 8, Cognition: 4, VMS: 6, CostEffectiveness: 8, Access: 7, Safety: 10},
			TreatmentMonitoring: {Mood: 2, Cognition: 3, VMS: 1, CostEffectiveness: 10, Access: 10, Safety: 10},
		},
		efficacy: map[TreatmentName]float64{
			TreatmentITBS:       0.12,
			TreatmentMHT:        0.15,
			TreatmentSSRI:       0.10,
			TreatmentCBT:        0.08,
			TreatmentMonitoring: 0.03,
		},
		conditions: []Condition{
			{Name: "Major Depression", AnnualBurdenB: 12.6, KPLink: "Elevated KYN/TRP; reduced serotonin", HazardRatio: 2.5, Evidence: GradeA},
			{Name: "Alzheimer's/Dementia", AnnualBurdenB: 18.0, KPLink: "Neurotoxic QUIN accumulation", HazardRatio: 1.46, Evidence: GradeA},
			{Name: "Type 2 Diabetes", AnnualBurdenB: 6.3, KPLink: "IDO upregulation; insulin resistance", HazardRatio: 1.3, Evidence: GradeB},
			{Name: "Cardiovascular Disease", AnnualBurdenB: 12.5, KPLink: "KYN predicts cardiovascular events", HazardRatio: 1.4, Evidence: GradeA},
			{Name: "Anxiety Disorders", AnnualBurdenB: 5.8, KPLink: "Serotonin depletion via KP shunt", HazardRatio: 1.58, Evidence: GradeA},
			{Name: "Osteoporosis", AnnualBurdenB: 3.4, KPLink: "TRP→serotonin→bone metabolism", HazardRatio: 1.2, Evidence: GradeB},
		},
		gaps: []ResearchGap{
			{
				Gap:             "KP dysregulation prevalence in perimenopausal women",
				CurrentEvidence: "30% estimate — extrapolated from age-sex regression, not menopause-specific",
				FundableStudy:   "Cross-sectional KP profiling of 200-500 women stratified by menopausal stage (STRAW+10)",
				Fills:           "Population funnel; risk threshold calibration",
				Owner:           "MenoStim trial baseline KP data (n=72)",
				Priority:        "HIGH",
			},
			{
				Gap:             "Cognitive symptom attribution to productivity loss",
				CurrentEvidence: "35% estimate — based on Griffiths 2013 UK survey, not validated",
				FundableStudy:   "WPAI-M (menopause-specific work productivity instrument) validation study",
				Fills:           "COI cognitive burden; per-symptom economic attribution",
				Owner:           "Nestable within MenoStim as secondary outcome",
				Priority:        "HIGH",
			},
			{
				Gap:             "iTBS efficacy for menopausal cognitive/mood symptoms",
				CurrentEvidence: "No data — MenoStim is the first trial",
				FundableStudy:   "Phase III multi-site RCT following MenoStim pilot (n=72)",
				Fills:           "Efficacy parameter; treatment ranking validation",
				Owner:           "MenoStim trial (ACTRN12625000030471)",
				Priority:        "CRITICAL",
			},
			{
				Gap:             "KP biomarker response to iTBS",
				CurrentEvidence: "No data on whether iTBS modifies the KYN/TRP ratio",
				FundableStudy:   "Pre/post KP profiling within MenoStim",
				Fills:           "Mechanistic link; biomarker-guided selection validation",
				Owner:           "MenoStim, if bloods collected pre/post",
				Priority:        "CRITICAL",
			},
			{
				Gap:             "Menopause-attributable fraction for dementia",
				CurrentEvidence: "3% estimate — speculative, from Rocca observational HRs",
				FundableStudy:   "Longitudinal cohort linking perimenopause KP levels to 10-year dementia incidence",
				Fills:           "Dementia cost avoidance model",
				Owner:           "Requires ALSWH or 45-and-Up linkage",
				Priority:        "MEDIUM",
			},
			{
				Gap:             "KYNA/QUIN ratio in menopausal women",
				CurrentEvidence: "Normative data covers TRP and KYN only, not downstream metabolites",
				FundableStudy:   "Extended KP metabolome (KYNA, QUIN, 3-HK, picolinic acid) in menopause cohort",
				Fills:           "Neuroprotective vs neurotoxic balance; precision risk stratification",
				Owner:           "Recommended as future work in the normative study",
				Priority:        "HIGH",
			},
			{
				Gap:             "ARIA-H prevalence in KP-dysregulated perimenopausal women",
				CurrentEvidence: "No data linking cerebral microbleeds to KP status in menopause",
				FundableStudy:   "MRI substudy within MenoStim: brain MRI + KP bloods at baseline and post-iTBS",
				Fills:           "Triple-hit model validation; neurovascular risk stratification",
				Owner:           "Nestable within MenoStim if MRI added to protocol",
				Priority:        "CRITICAL",
			},
		},
		stromberg: StrombergDecomposition{
			EmployeeAbsenteeism:  196,
			EmployerReplacement:  190,
			EmployeePresenteeism: 13_166,
			EmployerFriction:     7_110,
			WorkplaceEnvironment: 5_256,
		},
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reference) validate() error {
	for k, n := range r.norms {
		if n.Mean <= 0 {
			return fmt.Errorf("normative mean must be positive: %s/%s/%s", k.pop, k.sample, k.met)
		}
		if n.SD < 0 {
			return fmt.Errorf("normative sd must be non-negative: %s/%s/%s", k.pop, k.sample, k.met)
		}
	}
	for _, t := range r.treatments {
		if t.AnnualCost < 0 {
			return fmt.Errorf("treatment %s has negative annual cost", t.Name)
		}
		if _, ok := r.efficacy[t.Name]; !ok {
			return fmt.Errorf("treatment %s has no efficacy assumption", t.Name)
		}
		if _, ok := r.evidence[t.Name]; !ok {
			return fmt.Errorf("treatment %s has no evidence profile", t.Name)
		}
	}
	return nil
}

// Norm returns the normative range for the given population, sample type, and
// metabolite. Unknown keys are programmer errors.
func (r *Reference) Norm(pop patient.Population, sample patient.SampleType, met Metabolite) (NormativeRef, error) {
	n, ok := r.norms[normKey{pop, sample, met}]
	if !ok {
		return NormativeRef{}, fmt.Errorf("no normative data for %s/%s/%s", pop, sample, met)
	}
	return n, nil
}

// AgeEffect returns the age regression coefficient for the given sample type
// and metabolite.
func (r *Reference) AgeEffect(sample patient.SampleType, met Metabolite) (RegressionEffect, error) {
	e, ok := r.ageEffects[effectKey{sample, met}]
	if !ok {
		return RegressionEffect{}, fmt.Errorf("no age effect for %s/%s", sample, met)
	}
	return e, nil
}

// SexEffect returns the female-vs-male regression coefficient. Only serum
// effects were published.
func (r *Reference) SexEffect(sample patient.SampleType, met Metabolite) (RegressionEffect, error) {
	e, ok := r.sexEffects[effectKey{sample, met}]
	if !ok {
		return RegressionEffect{}, fmt.Errorf("no sex effect for %s/%s", sample, met)
	}
	return e, nil
}

// Treatments returns the treatment table in its fixed reference order
// (iTBS, MHT, SSRI/SNRI, CBT, Monitoring). The returned slice is a copy.
func (r *Reference) Treatments() []Treatment {
	out := make([]Treatment, len(r.treatments))
	copy(out, r.treatments)
	return out
}

// Treatment returns a single treatment by name.
func (r *Reference) Treatment(name TreatmentName) (Treatment, error) {
	for _, t := range r.treatments {
		if t.Name == name {
			return t, nil
		}
	}
	return Treatment{}, fmt.Errorf("unknown treatment: %q", string(name))
}

// EvidenceProfile returns the 0-10 evidence scores for a treatment.
func (r *Reference) EvidenceProfile(name TreatmentName) (EvidenceProfile, error) {
	p, ok := r.evidence[name]
	if !ok {
		return EvidenceProfile{}, fmt.Errorf("unknown treatment: %q", string(name))
	}
	return p, nil
}

// Efficacy returns the assumed responder efficacy for a treatment. kpGuided
// selects the biomarker-guided iTBS assumption; it has no effect on other
// treatments.
func (r *Reference) Efficacy(name TreatmentName, kpGuided bool) (float64, error) {
	eff, ok := r.efficacy[name]
	if !ok {
		return 0, fmt.Errorf("unknown treatment: %q", string(name))
	}
	if name == TreatmentITBS && kpGuided {
		return ITBSGuidedEfficacy, nil
	}
	return eff, nil
}

// Conditions returns the KP-linked condition burden table.
func (r *Reference) Conditions() []Condition {
	out := make([]Condition, len(r.conditions))
	copy(out, r.conditions)
	return out
}

// ResearchGaps returns the research gap register.
func (r *Reference) ResearchGaps() []ResearchGap {
	out := make([]ResearchGap, len(r.gaps))
	copy(out, r.gaps)
	return out
}

// Stromberg returns the productivity-loss decomposition.
func (r *Reference) Stromberg() StrombergDecomposition {
	return r.stromberg
}

// Norms returns every normative entry as a flat list for the reference API.
func (r *Reference) Norms() []NormEntry {
	out := make([]NormEntry, 0, len(r.norms))
	for _, pop := range []patient.Population{patient.PopulationGlobal, patient.PopulationAustralian} {
		for _, sample := range []patient.SampleType{patient.SampleSerum, patient.SamplePlasma} {
			for _, met := range []Metabolite{Tryptophan, Kynurenine} {
				n := r.norms[normKey{pop, sample, met}]
				out = append(out, NormEntry{
					Population: pop, Sample: sample, Metabolite: met, Norm: n,
				})
			}
		}
	}
	return out
}

// AgeEffects returns every age regression entry as a flat list.
func (r *Reference) AgeEffects() []AgeEffectEntry {
	out := make([]AgeEffectEntry, 0, len(r.ageEffects))
	for _, sample := range []patient.SampleType{patient.SampleSerum, patient.SamplePlasma} {
		for _, met := range []Metabolite{Tryptophan, Kynurenine} {
			e := r.ageEffects[effectKey{sample, met}]
			out = append(out, AgeEffectEntry{Sample: sample, Metabolite: met, Effect: e})
		}
	}
	return out
}

// NormEntry is one normative table row for the reference API.
type NormEntry struct {
	Population patient.Population `json:"population"`
	Sample     patient.SampleType `json:"sample_type"`
	Metabolite Metabolite         `json:"metabolite"`
	Norm       NormativeRef       `json:"norm"`
}

// AgeEffectEntry is one age regression row for the reference API.
type AgeEffectEntry struct {
	Sample     patient.SampleType `json:"sample_type"`
	Metabolite Metabolite         `json:"metabolite"`
	Effect     RegressionEffect   `json:"effect"`
}
