// Package treatment ranks the five treatment options for a patient profile
// using additive scoring rules over KP risk level, symptoms, menopausal
// stage, and age.
package treatment

import (
	"sort"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/kprisk"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
	"github.com/markgannott/menopause-kp-cdst/internal/refdata"
)

const baseScore = 50

// Adjustment records one scoring rule that fired for an option.
type Adjustment struct {
	Reason string `json:"reason"`
	Delta  int    `json:"delta"`
}

// Option is one ranked treatment with its final suitability score.
type Option struct {
	Treatment   refdata.Treatment `json:"treatment"`
	Score       int               `json:"score"` // 0-100
	Adjustments []Adjustment      `json:"adjustments,omitempty"`
}

// Input is everything the ranking rules consume. KPLevel is nil when no
// biomarker panel was provided; the risk-level rules then do not fire.
type Input struct {
	Age      float64
	Stage    patient.MenopausalStage
	Symptoms []patient.Symptom
	KPLevel  *kprisk.RiskLevel
}

// Ranker scores treatments against one immutable reference table. Safe for
// concurrent use.
type Ranker struct {
	ref *refdata.Reference
}

func NewRanker(ref *refdata.Reference) *Ranker {
	return &Ranker{ref: ref}
}

// Rank returns all five options sorted by descending score. Ties keep the
// reference table order (iTBS, MHT, SSRI/SNRI, CBT, Monitoring).
func (r *Ranker) Rank(in Input) []Option {
	has := func(s patient.Symptom) bool {
		for _, v := range in.Symptoms {
			if v == s {
				return true
			}
		}
		return false
	}

	treatments := r.ref.Treatments()
	options := make([]Option, 0, len(treatments))
	for _, tx := range treatments {
		opt := Option{Treatment: tx}
		add := func(reason string, delta int) {
			opt.Adjustments = append(opt.Adjustments, Adjustment{Reason: reason, Delta: delta})
		}

		if in.KPLevel != nil {
			switch *in.KPLevel {
			case kprisk.LevelHigh:
				switch tx.Name {
				case refdata.TreatmentITBS:
					add("strong KP dysregulation: brain stimulation most targeted", 30)
				case refdata.TreatmentMHT:
					add("estrogen modulates the kynurenine pathway", 20)
				case refdata.TreatmentMonitoring:
					add("watchful waiting insufficient for HIGH KP risk", -20)
				}
			case kprisk.LevelModerate:
				switch tx.Name {
				case refdata.TreatmentMHT:
					add("estrogen modulates the kynurenine pathway", 20)
				case refdata.TreatmentITBS:
					add("moderate KP activation", 10)
				}
			case kprisk.LevelLow:
				switch tx.Name {
				case refdata.TreatmentMonitoring:
					add("KP within normal range", 20)
				case refdata.TreatmentITBS:
					add("no biomarker indication for stimulation", -15)
				}
			}
		}

		if has(patient.SymptomCognitiveFog) {
			switch tx.Name {
			case refdata.TreatmentITBS:
				add("cognitive symptoms: DLPFC target", 15)
			case refdata.TreatmentSSRI:
				add("may worsen cognitive symptoms", -10)
			}
		}
		if has(patient.SymptomDepression) {
			switch tx.Name {
			case refdata.TreatmentSSRI, refdata.TreatmentCBT:
				add("first-line for depression", 15)
			case refdata.TreatmentITBS:
				add("established for treatment-resistant depression", 10)
			}
		}
		if has(patient.SymptomAnxiety) {
			switch tx.Name {
			case refdata.TreatmentSSRI, refdata.TreatmentCBT:
				add("effective for anxiety", 10)
			}
		}
		if has(patient.SymptomVasomotor) && tx.Name == refdata.TreatmentMHT {
			add("first-line for vasomotor symptoms", 25)
		}
		if has(patient.SymptomSleepDisturbance) {
			switch tx.Name {
			case refdata.TreatmentMHT:
				add("improves sleep via VMS reduction", 10)
			case refdata.TreatmentCBT:
				add("CBT-I component", 5)
			}
		}

		switch in.Stage {
		case patient.StageLatePerimenopause:
			if tx.Name == refdata.TreatmentMHT {
				add("critical window for hormone therapy", 10)
			}
		case patient.StageEarlyPostmenopause:
			if tx.Name == refdata.TreatmentMHT {
				add("within the critical window", 5)
			}
		case patient.StageLatePostmenopause:
			switch tx.Name {
			case refdata.TreatmentMHT:
				add("past the critical window", -15)
			case refdata.TreatmentMonitoring:
				add("cognitive symptoms often resolve postmenopause", 10)
			}
		}

		if in.Age > 55 && tx.Name == refdata.TreatmentMonitoring {
			add("closer to natural symptom resolution", 5)
		}

		score := baseScore
		for _, a := range opt.Adjustments {
			score += a.Delta
		}
		opt.Score = clamp(score)
		options = append(options, opt)
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Score > options[j].Score
	})
	return options
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
