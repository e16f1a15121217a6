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

// IngestResult is the DEID service's per-resource ingestion summary.
type IngestResult struct {
	Status                    string   `json:"status"`
	Message                   string   `json:"message"`
	FilesProcessed            []string `json:"files_processed"`
	PatientsCreated           int      `json:"patients_created"`
	EncountersCreated         int      `json:"encounters_created"`
	ConditionsCreated         int      `json:"conditions_created"`
	ObservationsCreated       int      `json:"observations_created"`
	MedicationRequestsCreated int      `json:"medication_requests_created"`
}

type DEIDClient struct {
	client
}

func NewDEID(baseURL string, timeout time.Duration, httpClient *http.Client, logger *slog.Logger) *DEIDClient {
	return &DEIDClient{
		client: newClient(domain.ServiceDEID, baseURL, timeout, httpClient, logger),
	}
}

// Ingest pushes the selected source's bundles through de-identification.
// A decoded result with Status other than "success" is reported by the
// caller, not classified here; the wire call itself succeeded.
func (c *DEIDClient) Ingest(ctx context.Context, source domain.DataSource, clearExisting bool) (IngestResult, error) {
	endpoint := "/deid/ingest"
	if source == domain.SourceHospital {
		endpoint = "/deid/ingest-hospital"
	}
	path := fmt.Sprintf("%s?clear_existing=%t", endpoint, clearExisting)

	var result IngestResult
	if err := c.doJSON(ctx, "ingest", http.MethodPost, path, nil, &result); err != nil {
		return IngestResult{}, err
	}
	return result, nil
}

func (c *DEIDClient) ClearDatabase(ctx context.Context) error {
	return c.doJSON(ctx, "clear database", http.MethodDelete, "/deid/clear-database", nil, nil)
}

func (c *DEIDClient) Health(ctx context.Context) error {
	return c.probe(ctx, "/")
}
