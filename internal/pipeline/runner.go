// SPDX-License-Identifier: Apache-2.0

// Package pipeline drives the fixed-topology clinical data workflow
// (ProxyFHIR → DEID → Featurizer → ModelRisque) and aggregates downstream
// health. All mutable state lives in the downstream services; the runner
// itself only holds per-kind run locks.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/clinpipe/orchestrator/internal/domain"
	"github.com/clinpipe/orchestrator/internal/metrics"
	"github.com/google/uuid"
)

const (
	defaultBatchSize       = 100
	defaultPredictionLimit = 1000
)

type Deps struct {
	ProxyFHIR   ManifestFetcher
	DEID        Ingester
	Featurizer  FeatureExtractor
	ModelRisque RiskModel
	Logger      *slog.Logger
	Audit       ReportSink
	// ProbeTimeout bounds each individual health probe. Zero means 5s.
	ProbeTimeout time.Duration
}

type Runner struct {
	fhir         ManifestFetcher
	deid         Ingester
	featurizer   FeatureExtractor
	model        RiskModel
	logger       *slog.Logger
	audit        ReportSink
	probeTimeout time.Duration

	// One lock per pipeline kind: at most one active mutation of shared
	// downstream state per kind. A second trigger is rejected, not queued.
	runLocks map[domain.PipelineKind]*sync.Mutex
}

func New(deps Deps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	probeTimeout := deps.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}

	return &Runner{
		fhir:         deps.ProxyFHIR,
		deid:         deps.DEID,
		featurizer:   deps.Featurizer,
		model:        deps.ModelRisque,
		logger:       logger,
		audit:        deps.Audit,
		probeTimeout: probeTimeout,
		runLocks: map[domain.PipelineKind]*sync.Mutex{
			domain.PipelineTraining: {},
			domain.PipelineHospital: {},
		},
	}
}

// RunTraining executes fetch → ingest → extract → train, failing fast.
func (r *Runner) RunTraining(ctx context.Context, clearExisting bool) (domain.PipelineReport, error) {
	steps := []step{
		{
			run: func(ctx context.Context) domain.StepOutcome {
				return r.FetchSource(ctx, domain.SourceTraining)
			},
			failureMessage: "Pipeline failed at ProxyFHIR step",
		},
		{
			run: func(ctx context.Context) domain.StepOutcome {
				return r.IngestSource(ctx, domain.SourceTraining, clearExisting)
			},
			failureMessage: "Pipeline failed at DEID step",
		},
		{
			run: func(ctx context.Context) domain.StepOutcome {
				return r.ExtractFeatures(ctx, defaultBatchSize)
			},
			failureMessage: "Pipeline failed at Featurizer step",
		},
		{
			run: func(ctx context.Context) domain.StepOutcome {
				return r.TrainModel(ctx)
			},
			failureMessage: "Pipeline failed at Model Training step",
		},
	}

	return r.run(ctx, domain.PipelineTraining, steps, "Training pipeline completed successfully")
}

// RunHospital executes fetch → ingest → extract → predict, failing fast.
func (r *Runner) RunHospital(ctx context.Context, clearExisting bool) (domain.PipelineReport, error) {
	steps := []step{
		{
			run: func(ctx context.Context) domain.StepOutcome {
				return r.FetchSource(ctx, domain.SourceHospital)
			},
			failureMessage: "Pipeline failed at ProxyFHIR step",
		},
		{
			run: func(ctx context.Context) domain.StepOutcome {
				return r.IngestSource(ctx, domain.SourceHospital, clearExisting)
			},
			failureMessage: "Pipeline failed at DEID step",
		},
		{
			run: func(ctx context.Context) domain.StepOutcome {
				return r.ExtractFeatures(ctx, defaultBatchSize)
			},
			failureMessage: "Pipeline failed at Featurizer step",
		},
		{
			run: func(ctx context.Context) domain.StepOutcome {
				return r.Predict(ctx, clearExisting, defaultPredictionLimit)
			},
			failureMessage: "Pipeline failed at Prediction step",
		},
	}

	return r.run(ctx, domain.PipelineHospital, steps, "Hospital pipeline completed successfully with predictions")
}

func (r *Runner) run(ctx context.Context, kind domain.PipelineKind, steps []step, successMessage string) (domain.PipelineReport, error) {
	lock := r.runLocks[kind]
	if !lock.TryLock() {
		r.logger.Warn("pipeline run rejected", "kind", kind, "reason", "run in progress")
		return domain.PipelineReport{}, domain.ErrRunInProgress
	}
	defer lock.Unlock()

	report := domain.PipelineReport{
		ID:        uuid.New(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}

	r.logger.Info("pipeline started",
		"run_id", report.ID,
		"kind", kind,
		"steps", len(steps),
	)

	outcomes, failureMessage := runSequential(ctx, steps)
	report.Steps = outcomes
	report.FinishedAt = time.Now().UTC()

	if failureMessage != "" {
		report.Success = false
		report.Message = failureMessage
	} else {
		report.Success = true
		report.Message = successMessage
	}

	metrics.IncPipelineRun(kind, report.Success)

	r.logger.Info("pipeline finished",
		"run_id", report.ID,
		"kind", kind,
		"success", report.Success,
		"steps_executed", len(report.Steps),
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)

	if r.audit != nil {
		if err := r.audit.SaveReport(ctx, report); err != nil {
			// Audit is best-effort; the run result stands either way.
			r.logger.Error("audit save failed", "run_id", report.ID, "error", err)
		}
	}

	return report, nil
}

// FetchSource pulls the bulk-export manifest for the selected data source.
func (r *Runner) FetchSource(ctx context.Context, source domain.DataSource) domain.StepOutcome {
	return executeStep(ctx, r.logger, domain.StepFetch, func(ctx context.Context) (stepPayload, error) {
		manifest, err := r.fhir.FetchManifest(ctx, source)
		if err != nil {
			return stepPayload{}, fmt.Errorf("ProxyFHIR fetch failed: %w", err)
		}
		return stepPayload{
			OK:      true,
			Message: fmt.Sprintf("Successfully fetched %s data from ProxyFHIR", source),
			Details: manifest,
		}, nil
	})
}

// IngestSource pushes the selected source through de-identification. The
// step fails when DEID itself reports a non-success status, even on a 2xx.
func (r *Runner) IngestSource(ctx context.Context, source domain.DataSource, clearExisting bool) domain.StepOutcome {
	return executeStep(ctx, r.logger, domain.StepIngest, func(ctx context.Context) (stepPayload, error) {
		res, err := r.deid.Ingest(ctx, source, clearExisting)
		if err != nil {
			return stepPayload{}, fmt.Errorf("DEID ingestion failed: %w", err)
		}
		return stepPayload{
			OK:      strings.EqualFold(res.Status, "success"),
			Message: res.Message,
			Details: map[string]any{
				"files_processed":             res.FilesProcessed,
				"patients_created":            res.PatientsCreated,
				"encounters_created":          res.EncountersCreated,
				"conditions_created":          res.ConditionsCreated,
				"observations_created":        res.ObservationsCreated,
				"medication_requests_created": res.MedicationRequestsCreated,
			},
		}, nil
	})
}

// ExtractFeatures triggers batch feature extraction.
func (r *Runner) ExtractFeatures(ctx context.Context, batchSize int) domain.StepOutcome {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return executeStep(ctx, r.logger, domain.StepExtract, func(ctx context.Context) (stepPayload, error) {
		summary, err := r.featurizer.ExtractAll(ctx, batchSize)
		if err != nil {
			return stepPayload{}, fmt.Errorf("Feature extraction failed: %w", err)
		}
		return stepPayload{
			OK:      true,
			Message: "Features extracted successfully",
			Details: summary,
		}, nil
	})
}

// TrainModel retrains the readmission model.
func (r *Runner) TrainModel(ctx context.Context) domain.StepOutcome {
	return executeStep(ctx, r.logger, domain.StepTrain, func(ctx context.Context) (stepPayload, error) {
		summary, err := r.model.Train(ctx)
		if err != nil {
			return stepPayload{}, fmt.Errorf("Model training failed: %w", err)
		}
		return stepPayload{
			OK:      true,
			Message: "Model trained successfully",
			Details: summary,
		}, nil
	})
}

// Predict generates readmission predictions. The step succeeds as long as at
// least one per-patient prediction succeeded; partial failures are counted
// and surfaced in the outcome, matching the model service's contract.
func (r *Runner) Predict(ctx context.Context, clearExisting bool, limit int) domain.StepOutcome {
	if limit <= 0 {
		limit = defaultPredictionLimit
	}
	return executeStep(ctx, r.logger, domain.StepPredict, func(ctx context.Context) (stepPayload, error) {
		if clearExisting {
			if err := r.model.ClearPredictions(ctx); err != nil {
				// Stale predictions are overwritten anyway; keep going.
				r.logger.Warn("clear predictions failed", "error", err)
			}
		}

		predictions, err := r.model.Predict(ctx, false, limit)
		if err != nil {
			return stepPayload{}, fmt.Errorf("Prediction generation failed: %w", err)
		}

		successCount := 0
		failureCount := 0
		for patientID, entry := range predictions {
			pred, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if errMsg, failed := pred["error"]; failed {
				failureCount++
				r.logger.Warn("prediction failed", "patient_id", patientID, "error", errMsg)
			} else {
				successCount++
			}
		}

		return stepPayload{
			OK: successCount > 0,
			Message: fmt.Sprintf("Predictions completed: %d successful, %d failed",
				successCount, failureCount),
			Details: map[string]any{
				"predictions_successful": successCount,
				"predictions_failed":     failureCount,
				"limit":                  limit,
				"cleared_existing":       clearExisting,
			},
		}, nil
	})
}
