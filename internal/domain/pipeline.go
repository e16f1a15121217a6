package domain

import (
	"time"

	"github.com/google/uuid"
)

type PipelineKind string

const (
	PipelineTraining PipelineKind = "TRAINING"
	PipelineHospital PipelineKind = "HOSPITAL"
)

// Service identifies one of the downstream services the orchestrator drives.
type Service string

const (
	ServiceProxyFHIR   Service = "ProxyFHIR"
	ServiceDEID        Service = "DEID"
	ServiceFeaturizer  Service = "Featurizer"
	ServiceModelRisque Service = "ModelRisque"
)

// DataSource selects which bundle set ProxyFHIR serves.
type DataSource string

const (
	SourceTraining DataSource = "training"
	SourceHospital DataSource = "hospital"
)

// Step names match the stages of the clinical pipeline.
const (
	StepFetch   = "ProxyFHIR Data Fetch"
	StepIngest  = "DEID Ingestion"
	StepExtract = "Feature Extraction"
	StepTrain   = "Model Training"
	StepPredict = "Model Risque Predictions"
)

// StepOutcome is the uniform result of one stage operation. Immutable once
// produced; downstream failures land here as Success=false, never as errors.
type StepOutcome struct {
	Name       string         `json:"name"`
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Details    map[string]any `json:"details,omitempty"`
}

// PipelineReport is the sealed record of one pipeline run. Steps is always a
// prefix of the topology: nothing past the first failed step is attempted.
type PipelineReport struct {
	ID         uuid.UUID     `json:"id"`
	Kind       PipelineKind  `json:"kind"`
	Success    bool          `json:"success"`
	Message    string        `json:"message"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Steps      []StepOutcome `json:"steps"`
}

// HealthSnapshot is a fresh, point-in-time view of downstream reachability.
type HealthSnapshot struct {
	ProxyFHIRHealthy   bool      `json:"proxy_fhir_healthy"`
	DEIDHealthy        bool      `json:"deid_healthy"`
	FeaturizerHealthy  bool      `json:"featurizer_healthy"`
	ModelRisqueHealthy bool      `json:"model_risque_healthy"`
	AllHealthy         bool      `json:"all_healthy"`
	CheckedAt          time.Time `json:"checked_at"`
}

// ClearReport lists the services whose clear call returned without error.
type ClearReport struct {
	Success         bool      `json:"success"`
	Message         string    `json:"message"`
	ClearedServices []Service `json:"cleared_services"`
}
