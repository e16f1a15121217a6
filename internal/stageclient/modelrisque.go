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

// Fixed training split parameters, kept in lockstep with the model service.
const (
	trainTestSize    = 0.2
	trainRandomState = 42
)

type trainRequest struct {
	TestSize    float64 `json:"test_size"`
	RandomState int     `json:"random_state"`
}

type ModelRisqueClient struct {
	client
}

func NewModelRisque(baseURL string, timeout time.Duration, httpClient *http.Client, logger *slog.Logger) *ModelRisqueClient {
	return &ModelRisqueClient{
		client: newClient(domain.ServiceModelRisque, baseURL, timeout, httpClient, logger),
	}
}

// Train retrains the readmission model and returns its training summary.
func (c *ModelRisqueClient) Train(ctx context.Context) (map[string]any, error) {
	body := trainRequest{TestSize: trainTestSize, RandomState: trainRandomState}

	var summary map[string]any
	if err := c.doJSON(ctx, "train", http.MethodPost, "/train", body, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Predict generates predictions from the featurizer data. The response is a
// map keyed by patient id; an entry containing an "error" field is a failed
// per-patient prediction and is counted by the caller.
func (c *ModelRisqueClient) Predict(ctx context.Context, skipCache bool, limit int) (map[string]any, error) {
	path := fmt.Sprintf("/prediction/data?skip_cache=%t&limit=%d", skipCache, limit)

	var predictions map[string]any
	if err := c.doJSON(ctx, "predict", http.MethodPost, path, nil, &predictions); err != nil {
		return nil, err
	}
	return predictions, nil
}

func (c *ModelRisqueClient) ClearPredictions(ctx context.Context) error {
	return c.doJSON(ctx, "clear predictions", http.MethodDelete, "/predictions/clear", nil, nil)
}

func (c *ModelRisqueClient) ClearDatabase(ctx context.Context) error {
	return c.doJSON(ctx, "clear database", http.MethodDelete, "/model/clear-database", nil, nil)
}

func (c *ModelRisqueClient) Health(ctx context.Context) error {
	return c.probe(ctx, "/")
}
