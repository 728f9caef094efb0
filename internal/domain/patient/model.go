// Package patient defines the patient profile supplied to the assessment
// engine and the closed enumerations it is built from. Unknown values are
// rejected at parse time; the scoring packages never see an invalid value.
package patient

import "fmt"

// SampleType identifies the blood fraction a KP biomarker was measured in.
type SampleType string

const (
	SampleSerum  SampleType = "serum"
	SamplePlasma SampleType = "plasma"
)

// Population selects the normative reference table.
type Population string

const (
	PopulationGlobal     Population = "global"
	PopulationAustralian Population = "australian"
)

// MenopausalStage per STRAW+10 staging as used by the reference model.
type MenopausalStage string

const (
	StageEarlyPerimenopause MenopausalStage = "early-perimenopause"
	StageLatePerimenopause  MenopausalStage = "late-perimenopause"
	StageEarlyPostmenopause MenopausalStage = "early-postmenopause"
	StageLatePostmenopause  MenopausalStage = "late-postmenopause" // >5yr
	StageSurgicalMenopause  MenopausalStage = "surgical-menopause"
)

// Symptom is a current patient-reported symptom.
type Symptom string

const (
	SymptomCognitiveFog            Symptom = "cognitive-fog"
	SymptomMemoryProblems          Symptom = "memory-problems"
	SymptomDepression              Symptom = "depression"
	SymptomAnxiety                 Symptom = "anxiety"
	SymptomVasomotor               Symptom = "vasomotor" // hot flushes / VMS
	SymptomSleepDisturbance        Symptom = "sleep-disturbance"
	SymptomFatigue                 Symptom = "fatigue"
	SymptomConcentrationDifficulty Symptom = "concentration-difficulty"
)

// RiskFactor is a historical dementia risk factor.
type RiskFactor string

const (
	RiskEarlyMenopause        RiskFactor = "early-menopause" // early/surgical menopause <45
	RiskFamilyHistoryDementia RiskFactor = "family-history-dementia"
	RiskBilateralOophorectomy RiskFactor = "bilateral-oophorectomy"
	RiskNoCurrentMHT          RiskFactor = "no-current-mht"
	RiskHistoryOfDepression   RiskFactor = "history-of-depression"
)

// APOEStatus is the apolipoprotein E e4 carrier status.
type APOEStatus string

const (
	APOEUnknown      APOEStatus = "unknown"
	APOENonCarrier   APOEStatus = "non-carrier"
	APOEHeterozygous APOEStatus = "heterozygous" // e3/e4
	APOEHomozygous   APOEStatus = "homozygous"   // e4/e4
)

var (
	validSampleTypes = map[SampleType]bool{
		SampleSerum: true, SamplePlasma: true,
	}
	validPopulations = map[Population]bool{
		PopulationGlobal: true, PopulationAustralian: true,
	}
	validStages = map[MenopausalStage]bool{
		StageEarlyPerimenopause: true, StageLatePerimenopause: true,
		StageEarlyPostmenopause: true, StageLatePostmenopause: true,
		StageSurgicalMenopause: true,
	}
	validSymptoms = map[Symptom]bool{
		SymptomCognitiveFog: true, SymptomMemoryProblems: true,
		SymptomDepression: true, SymptomAnxiety: true,
		SymptomVasomotor: true, SymptomSleepDisturbance: true,
		SymptomFatigue: true, SymptomConcentrationDifficulty: true,
	}
	validRiskFactors = map[RiskFactor]bool{
		RiskEarlyMenopause: true, RiskFamilyHistoryDementia: true,
		RiskBilateralOophorectomy: true, RiskNoCurrentMHT: true,
		RiskHistoryOfDepression: true,
	}
	validAPOE = map[APOEStatus]bool{
		APOEUnknown: true, APOENonCarrier: true,
		APOEHeterozygous: true, APOEHomozygous: true,
	}
)

func (s SampleType) Validate() error {
	if !validSampleTypes[s] {
		return fmt.Errorf("unknown sample type: %q", string(s))
	}
	return nil
}

func (p Population) Validate() error {
	if !validPopulations[p] {
		return fmt.Errorf("unknown population: %q", string(p))
	}
	return nil
}

func (m MenopausalStage) Validate() error {
	if !validStages[m] {
		return fmt.Errorf("unknown menopausal stage: %q", string(m))
	}
	return nil
}

func (s Symptom) Validate() error {
	if !validSymptoms[s] {
		return fmt.Errorf("unknown symptom: %q", string(s))
	}
	return nil
}

func (r RiskFactor) Validate() error {
	if !validRiskFactors[r] {
		return fmt.Errorf("unknown risk factor: %q", string(r))
	}
	return nil
}

func (a APOEStatus) Validate() error {
	if !validAPOE[a] {
		return fmt.Errorf("unknown APOE status: %q", string(a))
	}
	return nil
}

// Biomarkers holds an optional KP blood panel.
type Biomarkers struct {
	Sample SampleType `json:"sample_type"`
	TRP    float64    `json:"trp"` // μM
	KYN    float64    `json:"kyn"` // μM
}

// Neuroimaging holds optional MRI findings relevant to ARIA-H scoring.
type Neuroimaging struct {
	MicrobleedCount       int  `json:"microbleed_count"`
	HasWhiteMatterChanges bool `json:"has_white_matter_changes"` // Fazekas 2-3 WMH
	HasSiderosis          bool `json:"has_siderosis"`
}

// Profile is one assessment request's patient input. Immutable once
// validated; the engine never mutates it and keeps no copy between requests.
type Profile struct {
	Age          float64         `json:"age"`
	Stage        MenopausalStage `json:"menopausal_stage"`
	Symptoms     []Symptom       `json:"symptoms,omitempty"`
	RiskFactors  []RiskFactor    `json:"risk_factors,omitempty"`
	Biomarkers   *Biomarkers     `json:"biomarkers,omitempty"`
	Neuroimaging *Neuroimaging   `json:"neuroimaging,omitempty"`
	APOE         APOEStatus      `json:"apoe_status,omitempty"`
}

// MinAge and MaxAge bound the validated input range. The scoring functions
// themselves accept any age; the regression coefficients are only validated
// for this window.
const (
	MinAge = 40
	MaxAge = 65
)

// Validate checks every enumerated field and the age window. An empty APOE
// status normalizes to unknown.
func (p *Profile) Validate() error {
	if p.Age < MinAge || p.Age > MaxAge {
		return fmt.Errorf("age must be in [%d, %d], got %v", MinAge, MaxAge, p.Age)
	}
	if err := p.Stage.Validate(); err != nil {
		return err
	}
	for _, s := range p.Symptoms {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, r := range p.RiskFactors {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	if p.Biomarkers != nil {
		if err := p.Biomarkers.Sample.Validate(); err != nil {
			return err
		}
		if p.Biomarkers.TRP < 0 {
			return fmt.Errorf("trp must be >= 0, got %v", p.Biomarkers.TRP)
		}
		if p.Biomarkers.KYN < 0 {
			return fmt.Errorf("kyn must be >= 0, got %v", p.Biomarkers.KYN)
		}
	}
	if p.Neuroimaging != nil && p.Neuroimaging.MicrobleedCount < 0 {
		return fmt.Errorf("microbleed_count must be >= 0, got %d", p.Neuroimaging.MicrobleedCount)
	}
	if p.APOE == "" {
		p.APOE = APOEUnknown
	}
	return p.APOE.Validate()
}

// HasSymptom reports whether the profile lists the given symptom.
func (p *Profile) HasSymptom(s Symptom) bool {
	for _, v := range p.Symptoms {
		if v == s {
			return true
		}
	}
	return false
}

// HasRiskFactor reports whether the profile lists the given risk factor.
func (p *Profile) HasRiskFactor(r RiskFactor) bool {
	for _, v := range p.RiskFactors {
		if v == r {
			return true
		}
	}
	return false
}
