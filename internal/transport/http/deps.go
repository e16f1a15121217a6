// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"context"

	"github.com/clinpipe/orchestrator/internal/domain"
	"github.com/google/uuid"
)

type PipelineRunner interface {
	RunTraining(ctx context.Context, clearExisting bool) (domain.PipelineReport, error)
	RunHospital(ctx context.Context, clearExisting bool) (domain.PipelineReport, error)
	FetchSource(ctx context.Context, source domain.DataSource) domain.StepOutcome
	IngestSource(ctx context.Context, source domain.DataSource, clearExisting bool) domain.StepOutcome
	ExtractFeatures(ctx context.Context, batchSize int) domain.StepOutcome
	TrainModel(ctx context.Context) domain.StepOutcome
	Predict(ctx context.Context, clearExisting bool, limit int) domain.StepOutcome
}

type HealthAggregator interface {
	CheckHealth(ctx context.Context) domain.HealthSnapshot
}

type ResetCoordinator interface {
	ClearAll(ctx context.Context) domain.ClearReport
}

type ReportReader interface {
	GetReport(ctx context.Context, id uuid.UUID) (domain.PipelineReport, error)
}
