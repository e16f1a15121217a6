// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"

	"github.com/clinpipe/orchestrator/internal/domain"
	"github.com/clinpipe/orchestrator/internal/stageclient"
)

type ManifestFetcher interface {
	FetchManifest(ctx context.Context, source domain.DataSource) (map[string]any, error)
	Health(ctx context.Context) error
}

type Ingester interface {
	Ingest(ctx context.Context, source domain.DataSource, clearExisting bool) (stageclient.IngestResult, error)
	ClearDatabase(ctx context.Context) error
	Health(ctx context.Context) error
}

type FeatureExtractor interface {
	ExtractAll(ctx context.Context, batchSize int) (map[string]any, error)
	Prune(ctx context.Context) error
	Health(ctx context.Context) error
}

type RiskModel interface {
	Train(ctx context.Context) (map[string]any, error)
	Predict(ctx context.Context, skipCache bool, limit int) (map[string]any, error)
	ClearPredictions(ctx context.Context) error
	ClearDatabase(ctx context.Context) error
	Health(ctx context.Context) error
}

// ReportSink receives sealed pipeline reports for audit. Persistence is
// optional; a nil sink leaves reports ephemeral.
type ReportSink interface {
	SaveReport(ctx context.Context, report domain.PipelineReport) error
}
