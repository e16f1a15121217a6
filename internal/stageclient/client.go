// SPDX-License-Identifier: Apache-2.0

// Package stageclient holds one typed HTTP client per downstream pipeline
// service. Every operation performs exactly one outbound call with a bounded
// wait and classifies failures as unreachable, remote, or decode errors.
// Retries are deliberately absent at this layer.
package stageclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/clinpipe/orchestrator/internal/domain"
)

const maxResponseBytes = 8 << 20

type client struct {
	service domain.Service
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

func newClient(service domain.Service, baseURL string, timeout time.Duration, httpClient *http.Client, logger *slog.Logger) client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return client{
		service: service,
		baseURL: baseURL,
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
	}
}

// doJSON performs one request against the service. A non-nil body is sent as
// JSON; a non-nil out receives the decoded response body.
func (c *client) doJSON(ctx context.Context, op, method, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &domain.StageError{
				Kind:    domain.KindDecode,
				Service: c.service,
				Op:      op,
				Err:     fmt.Errorf("encode request body: %w", err),
			}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &domain.StageError{
			Kind:    domain.KindUnreachable,
			Service: c.service,
			Op:      op,
			Err:     err,
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("stage call",
		"service", c.service,
		"op", op,
		"method", method,
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.StageError{
			Kind:    domain.KindUnreachable,
			Service: c.service,
			Op:      op,
			Err:     err,
		}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &domain.StageError{
			Kind:    domain.KindRemote,
			Service: c.service,
			Op:      op,
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &domain.StageError{
			Kind:    domain.KindUnreachable,
			Service: c.service,
			Op:      op,
			Err:     fmt.Errorf("read response body: %w", err),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.StageError{
			Kind:    domain.KindDecode,
			Service: c.service,
			Op:      op,
			Err:     fmt.Errorf("decode response body: %w", err),
		}
	}

	return nil
}

// probe issues the service's lightweight health request. Any response in the
// 2xx range counts as healthy; the body is ignored.
func (c *client) probe(ctx context.Context, path string) error {
	return c.doJSON(ctx, "health probe", http.MethodGet, path, nil, nil)
}
