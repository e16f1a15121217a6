// SPDX-License-Identifier: Apache-2.0

package stageclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/clinpipe/orchestrator/internal/domain"
)

// ProxyFHIRClient consumes the bulk-export manifest contract. The service is
// a read-only source; it is never cleared.
type ProxyFHIRClient struct {
	client
}

func NewProxyFHIR(baseURL string, timeout time.Duration, httpClient *http.Client, logger *slog.Logger) *ProxyFHIRClient {
	return &ProxyFHIRClient{
		client: newClient(domain.ServiceProxyFHIR, baseURL, timeout, httpClient, logger),
	}
}

// FetchManifest returns the file listing for the selected data source.
func (c *ProxyFHIRClient) FetchManifest(ctx context.Context, source domain.DataSource) (map[string]any, error) {
	path := "/bulk/manifest"
	if source == domain.SourceHospital {
		path = "/bulk/hospital/manifest"
	}

	var manifest map[string]any
	if err := c.doJSON(ctx, "fetch manifest", http.MethodGet, path, nil, &manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (c *ProxyFHIRClient) Health(ctx context.Context) error {
	return c.probe(ctx, "/api/health")
}
