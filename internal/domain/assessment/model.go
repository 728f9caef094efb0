package assessment

import (
	"time"

	"github.com/google/uuid"

	"github.com/markgannott/menopause-kp-cdst/internal/domain/costoffset"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/dementia"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/kprisk"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/patient"
	"github.com/markgannott/menopause-kp-cdst/internal/domain/treatment"
)

// Request is one assessment invocation. Population defaults to australian.
// UptakePct and EligiblePopulation override the configured national scaling
// defaults when positive.
type Request struct {
	Patient            patient.Profile    `json:"patient"`
	Population         patient.Population `json:"population,omitempty"`
	UptakePct          float64            `json:"uptake_pct,omitempty"`
	EligiblePopulation int                `json:"eligible_population,omitempty"`
}

// SymptomGroups buckets reported symptoms for the clinical summary.
type SymptomGroups struct {
	Cognitive []patient.Symptom `json:"cognitive"`
	Mood      []patient.Symptom `json:"mood"`
	Physical  []patient.Symptom `json:"physical"`
}

// Assessment is the full engine output for one profile. KPRisk is nil when no
// biomarker panel was supplied.
type Assessment struct {
	ID            uuid.UUID                `json:"id"`
	CreatedAt     time.Time                `json:"created_at"`
	Patient       patient.Profile          `json:"patient"`
	Population    patient.Population       `json:"population"`
	KPRisk        *kprisk.Result           `json:"kp_risk,omitempty"`
	SymptomGroups SymptomGroups            `json:"symptom_groups"`
	Treatments    []treatment.Option       `json:"treatments"`
	Dementia      dementia.Result          `json:"dementia_risk"`
	CostOffsets   []costoffset.PerTreatment `json:"cost_offsets"`
	National      costoffset.NationalScale `json:"national_scale"`
	CostAvoidance costoffset.CostAvoidance `json:"cost_avoidance"`
	Summary       []string                 `json:"summary"`
}

// KPRiskRequest scores a biomarker panel on its own.
type KPRiskRequest struct {
	Age        float64            `json:"age"`
	Population patient.Population `json:"population,omitempty"`
	Biomarkers patient.Biomarkers `json:"biomarkers"`
}
