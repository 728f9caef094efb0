// Package costoffset implements the health-economic models: per-patient
// treatment cost against productivity offset, national budget impact
// scaling, and the dementia cost avoidance model. All amounts are AUD.
package costoffset

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/dementia"
	"github.com/markgannott/menopause-kp-cdst/internal/refdata"
)

// Years is a break-even duration. An unreachable break-even (zero offset) is
// +Inf and marshals as JSON null.
type Years float64

func (y Years) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(y), 1) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(y))
}

// PerTreatment is the annual cost-offset position for one treatment.
type PerTreatment struct {
	Treatment      refdata.TreatmentName `json:"treatment"`
	AnnualCost     int                   `json:"annual_cost"`
	Efficacy       float64               `json:"assumed_efficacy"`
	Offset         int                   `json:"productivity_offset"`
	NetAnnual      int                   `json:"net_annual"` // negative = saving
	ROIPct         float64               `json:"roi_pct"`
	BreakEvenYears Years                 `json:"break_even_years"`
}

// NationalScale is the budget impact of treating the assumed national uptake
// with one treatment.
type NationalScale struct {
	Treatment        refdata.TreatmentName `json:"treatment"`
	Eligible         int                   `json:"eligible_population"`
	UptakePct        float64               `json:"uptake_pct"`
	Treated          int                   `json:"patients_treated"`
	PerPatientOffset int                   `json:"per_patient_offset"`
	NationalOffset   int64                 `json:"national_offset"`
	NationalCost     int64                 `json:"national_cost"`
	NetBudgetImpact  int64                 `json:"net_budget_impact"` // negative = saving
}

// CostAvoidance contrasts the speculative population-level dementia cost
// avoidance estimate with the defensible precision-subgroup estimate.
type CostAvoidance struct {
	PopulationN         int     `json:"population_n"`
	PopulationAF        float64 `json:"population_af"`
	PopulationAvoidable float64 `json:"population_avoidable"` // lifetime AUD
	SubgroupN           int     `json:"subgroup_n"`
	SubgroupAF          float64 `json:"subgroup_af"`
	SubgroupAvoidable   float64 `json:"subgroup_avoidable"` // lifetime AUD
	PerPatientValue     int     `json:"per_patient_value"`  // round(AF x lifetime cost)
}

// FunnelStage is one step of the precision medicine population funnel.
type FunnelStage struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Calculator runs the economic models against one immutable reference data
// set. Safe for concurrent use.
type Calculator struct {
	ref *refdata.Reference
}

func NewCalculator(ref *refdata.Reference) *Calculator {
	return &Calculator{ref: ref}
}

// PerPatient returns the cost-offset table for all five treatments in
// reference order. kpGuided selects the biomarker-guided iTBS efficacy.
func (c *Calculator) PerPatient(kpGuided bool) []PerTreatment {
	treatments := c.ref.Treatments()
	out := make([]PerTreatment, 0, len(treatments))
	for _, tx := range treatments {
		eff, _ := c.ref.Efficacy(tx.Name, kpGuided)
		out = append(out, perTreatment(tx, eff))
	}
	return out
}

func perTreatment(tx refdata.Treatment, eff float64) PerTreatment {
	offset := int(math.Round(refdata.PerWomanIndirectLoss * eff))
	p := PerTreatment{
		Treatment:      tx.Name,
		AnnualCost:     tx.AnnualCost,
		Efficacy:       eff,
		Offset:         offset,
		NetAnnual:      tx.AnnualCost - offset,
		BreakEvenYears: Years(math.Inf(1)),
	}
	if tx.AnnualCost > 0 {
		p.ROIPct = (float64(offset)/float64(tx.AnnualCost) - 1) * 100
	}
	if offset > 0 {
		p.BreakEvenYears = Years(float64(tx.AnnualCost) / float64(offset))
	}
	return p
}

// Scale projects national budget impact for one treatment. The per-patient
// offset is rounded before multiplying, so the national figures stay
// consistent with the per-patient table.
func (c *Calculator) Scale(name refdata.TreatmentName, kpGuided bool, eligible int, uptakePct float64) (NationalScale, error) {
	tx, err := c.ref.Treatment(name)
	if err != nil {
		return NationalScale{}, err
	}
	if eligible < 0 {
		return NationalScale{}, fmt.Errorf("eligible population must be >= 0, got %d", eligible)
	}
	if uptakePct < 0 || uptakePct > 100 {
		return NationalScale{}, fmt.Errorf("uptake must be in [0, 100] percent, got %v", uptakePct)
	}

	eff, _ := c.ref.Efficacy(name, kpGuided)
	perOffset := int(math.Round(refdata.PerWomanIndirectLoss * eff))
	treated := int(math.Round(float64(eligible) * uptakePct / 100))

	return NationalScale{
		Treatment:        name,
		Eligible:         eligible,
		UptakePct:        uptakePct,
		Treated:          treated,
		PerPatientOffset: perOffset,
		NationalOffset:   int64(treated) * int64(perOffset),
		NationalCost:     int64(treated) * int64(tx.AnnualCost),
		NetBudgetImpact:  int64(treated)*int64(tx.AnnualCost) - int64(treated)*int64(perOffset),
	}, nil
}

// SubgroupAF returns the default menopause-attributable fraction for the
// precision subgroup at a given neurovascular vulnerability level.
func SubgroupAF(nv dementia.NeurovascularLevel) float64 {
	switch nv {
	case dementia.NVHigh:
		return 0.20
	case dementia.NVModerate:
		return 0.12
	default:
		return 0.05
	}
}

// AvoidanceParams tunes the cost avoidance model. Zero values take the model
// defaults; SubgroupAF defaults from the neurovascular level.
type AvoidanceParams struct {
	NVLevel      dementia.NeurovascularLevel
	PopulationAF float64
	SubgroupAF   float64
	SubgroupN    int
}

// Avoidance runs the dementia cost avoidance model.
func (c *Calculator) Avoidance(p AvoidanceParams) (CostAvoidance, error) {
	if p.PopulationAF == 0 {
		p.PopulationAF = 0.03
	}
	if p.SubgroupAF == 0 {
		p.SubgroupAF = SubgroupAF(p.NVLevel)
	}
	if p.SubgroupN == 0 {
		p.SubgroupN = refdata.DefaultSubgroupSize
	}
	if p.PopulationAF < 0 || p.PopulationAF > 1 || p.SubgroupAF < 0 || p.SubgroupAF > 1 {
		return CostAvoidance{}, fmt.Errorf("attributable fractions must be in [0, 1]")
	}
	if p.SubgroupN < 0 {
		return CostAvoidance{}, fmt.Errorf("subgroup size must be >= 0, got %d", p.SubgroupN)
	}

	return CostAvoidance{
		PopulationN:         refdata.PerimenopausalPopulation,
		PopulationAF:        p.PopulationAF,
		PopulationAvoidable: float64(refdata.PerimenopausalPopulation) * p.PopulationAF * refdata.DementiaLifetimeCost,
		SubgroupN:           p.SubgroupN,
		SubgroupAF:          p.SubgroupAF,
		SubgroupAvoidable:   float64(p.SubgroupN) * p.SubgroupAF * refdata.DementiaLifetimeCost,
		PerPatientValue:     int(math.Round(p.SubgroupAF * refdata.DementiaLifetimeCost)),
	}, nil
}

// Funnel returns the precision medicine population funnel from all
// perimenopausal women down to the KP and ARIA-H overlap.
func (c *Calculator) Funnel() []FunnelStage {
	return []FunnelStage{
		{Label: "All perimenopausal women", Count: 2_500_000},
		{Label: "Symptomatic (cognitive/mood)", Count: 1_400_000},
		{Label: "KP-dysregulated (~30%)", Count: 420_000},
		{Label: "ARIA-H positive (~12%)", Count: 50_000},
		{Label: "KP + ARIA-H overlap", Count: 30_000},
	}
}
