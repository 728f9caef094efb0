package costoffset

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/dementia"
	"github.com/markgannott/menopause-kp-cdst/internal/refdata"
)

func newCalc(t *testing.T) *Calculator {
	t.Helper()
	ref, err := refdata.New()
	if err != nil {
		t.Fatalf("refdata.New: %v", err)
	}
	return NewCalculator(ref)
}

func TestPerPatient_Offsets(t *testing.T) {
	c := newCalc(t)

	wantGuided := map[refdata.TreatmentName]int{
		refdata.TreatmentITBS:       5702, // 25917 x 0.22
		refdata.TreatmentMHT:        3888,
		refdata.TreatmentSSRI:       2592,
		refdata.TreatmentCBT:        2073,
		refdata.TreatmentMonitoring: 778,
	}
	for _, p := range c.PerPatient(true) {
		if p.Offset != wantGuided[p.Treatment] {
			t.Errorf("%s offset = %d, want %d", p.Treatment, p.Offset, wantGuided[p.Treatment])
		}
		if p.NetAnnual != p.AnnualCost-p.Offset {
			t.Errorf("%s net = %d, want cost %d - offset %d", p.Treatment, p.NetAnnual, p.AnnualCost, p.Offset)
		}
	}

	// Without biomarker guidance only the iTBS offset changes.
	unguided := c.PerPatient(false)
	if unguided[0].Treatment != refdata.TreatmentITBS || unguided[0].Offset != 3110 {
		t.Errorf("unguided iTBS = %+v, want offset 3110", unguided[0])
	}
	for _, p := range unguided[1:] {
		if p.Offset != wantGuided[p.Treatment] {
			t.Errorf("%s offset changed without guidance: %d", p.Treatment, p.Offset)
		}
	}
}

func TestPerPatient_ROIAndBreakEven(t *testing.T) {
	c := newCalc(t)
	var mht PerTreatment
	for _, p := range c.PerPatient(true) {
		if p.Treatment == refdata.TreatmentMHT {
			mht = p
		}
	}

	wantROI := (3888.0/380.0 - 1) * 100
	if math.Abs(mht.ROIPct-wantROI) > 1e-9 {
		t.Errorf("MHT ROI = %v, want %v", mht.ROIPct, wantROI)
	}
	wantBE := 380.0 / 3888.0
	if math.Abs(float64(mht.BreakEvenYears)-wantBE) > 1e-9 {
		t.Errorf("MHT break-even = %v, want %v", mht.BreakEvenYears, wantBE)
	}
	if mht.NetAnnual != -3508 {
		t.Errorf("MHT net = %d, want -3508 (saving)", mht.NetAnnual)
	}
}

func TestPerTreatment_ZeroEfficacy(t *testing.T) {
	tx := refdata.Treatment{Name: refdata.TreatmentMonitoring, AnnualCost: 320}
	p := perTreatment(tx, 0)
	if p.Offset != 0 {
		t.Errorf("offset = %d, want 0", p.Offset)
	}
	if !math.IsInf(float64(p.BreakEvenYears), 1) {
		t.Errorf("break-even = %v, want +Inf", p.BreakEvenYears)
	}
}

func TestYears_InfMarshalsAsNull(t *testing.T) {
	tx := refdata.Treatment{Name: refdata.TreatmentMonitoring, AnnualCost: 320}
	b, err := json.Marshal(perTreatment(tx, 0))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"break_even_years":null`) {
		t.Errorf("infinite break-even must marshal as null: %s", b)
	}
}

func TestScale_DefaultUptake(t *testing.T) {
	c := newCalc(t)
	s, err := c.Scale(refdata.TreatmentITBS, true, refdata.DefaultEligiblePopulation, 2.0)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	if s.Treated != 7200 {
		t.Errorf("treated = %d, want 7200", s.Treated)
	}
	if s.NationalOffset != 7200*5702 {
		t.Errorf("national offset = %d, want %d", s.NationalOffset, 7200*5702)
	}
	if s.NationalCost != 7200*7500 {
		t.Errorf("national cost = %d, want %d", s.NationalCost, 7200*7500)
	}
	if s.NetBudgetImpact != s.NationalCost-s.NationalOffset {
		t.Errorf("net = %d", s.NetBudgetImpact)
	}
}

func TestScale_Validation(t *testing.T) {
	c := newCalc(t)
	if _, err := c.Scale("acupuncture", false, 1000, 2); err == nil {
		t.Error("expected error for unknown treatment")
	}
	if _, err := c.Scale(refdata.TreatmentMHT, false, -1, 2); err == nil {
		t.Error("expected error for negative population")
	}
	if _, err := c.Scale(refdata.TreatmentMHT, false, 1000, 101); err == nil {
		t.Error("expected error for uptake over 100")
	}
}

func TestSubgroupAF(t *testing.T) {
	cases := []struct {
		nv   dementia.NeurovascularLevel
		want float64
	}{
		{dementia.NVHigh, 0.20},
		{dementia.NVModerate, 0.12},
		{dementia.NVLow, 0.05},
	}
	for _, tc := range cases {
		if got := SubgroupAF(tc.nv); got != tc.want {
			t.Errorf("SubgroupAF(%s) = %v, want %v", tc.nv, got, tc.want)
		}
	}
}

func TestAvoidance_Defaults(t *testing.T) {
	c := newCalc(t)
	ca, err := c.Avoidance(AvoidanceParams{NVLevel: dementia.NVHigh})
	if err != nil {
		t.Fatalf("Avoidance: %v", err)
	}
	if ca.PopulationAF != 0.03 || ca.SubgroupAF != 0.20 || ca.SubgroupN != 50_000 {
		t.Errorf("defaults not applied: %+v", ca)
	}
	if ca.PerPatientValue != 88_400 { // round(0.20 x 442,000)
		t.Errorf("per-patient value = %d, want 88400", ca.PerPatientValue)
	}
	if ca.SubgroupAvoidable != 50_000*0.20*442_000 {
		t.Errorf("subgroup avoidable = %v", ca.SubgroupAvoidable)
	}
	if ca.PopulationAvoidable != 2_500_000*0.03*442_000 {
		t.Errorf("population avoidable = %v", ca.PopulationAvoidable)
	}
}

func TestAvoidance_Validation(t *testing.T) {
	c := newCalc(t)
	if _, err := c.Avoidance(AvoidanceParams{PopulationAF: 1.5}); err == nil {
		t.Error("expected error for AF over 1")
	}
	if _, err := c.Avoidance(AvoidanceParams{SubgroupN: -5}); err == nil {
		t.Error("expected error for negative subgroup size")
	}
}

func TestFunnel(t *testing.T) {
	stages := newCalc(t).Funnel()
	if len(stages) != 5 {
		t.Fatalf("expected 5 stages, got %d", len(stages))
	}
	for i := 1; i < len(stages); i++ {
		if stages[i].Count >= stages[i-1].Count {
			t.Errorf("funnel must narrow: %s (%d) >= %s (%d)",
				stages[i].Label, stages[i].Count, stages[i-1].Label, stages[i-1].Count)
		}
	}
	if stages[0].Count != refdata.PerimenopausalPopulation {
		t.Errorf("funnel top = %d", stages[0].Count)
	}
}
