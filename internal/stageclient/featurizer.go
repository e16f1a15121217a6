// SPDX-License-Identifier: Apache-2.0

package stageclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/clinpipe/orchestrator/internal/domain"
)

type FeaturizerClient struct {
	client
}

func NewFeaturizer(baseURL string, timeout time.Duration, httpClient *http.Client, logger *slog.Logger) *FeaturizerClient {
	return &FeaturizerClient{
		client: newClient(domain.ServiceFeaturizer, baseURL, timeout, httpClient, logger),
	}
}

// ExtractAll triggers batch feature extraction and returns the service's
// extraction summary.
func (c *FeaturizerClient) ExtractAll(ctx context.Context, batchSize int) (map[string]any, error) {
	path := fmt.Sprintf("/features/all?force_refresh=true&limit=%d", batchSize)

	var summary map[string]any
	if err := c.doJSON(ctx, "extract features", http.MethodPost, path, nil, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Prune drops all stored patient features.
func (c *FeaturizerClient) Prune(ctx context.Context) error {
	return c.doJSON(ctx, "prune features", http.MethodDelete, "/features/patient/prune", nil, nil)
}

func (c *FeaturizerClient) Health(ctx context.Context) error {
	return c.probe(ctx, "/")
}
