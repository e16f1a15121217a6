// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// apiClient is a thin HTTP wrapper around the orchestrator API. Responses
// are passed through as raw JSON so the CLI prints exactly what the API said.
type apiClient struct {
	baseURL    string
	adminToken string
	http       *http.Client
}

func clientFromFlags(cmd *cobra.Command) (*apiClient, error) {
	apiURL, err := cmd.Flags().GetString("api-url")
	if err != nil {
		return nil, err
	}
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		return nil, fmt.Errorf("api-url must not be empty")
	}

	return &apiClient{
		baseURL: apiURL,
		// Pipeline runs block until every step finishes downstream.
		http: &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

func (c *apiClient) call(ctx context.Context, method, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orchestrator unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%s %s: %s", method, path, msg)
	}

	return body, nil
}

func printJSON(cmd *cobra.Command, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		// Not JSON; print as-is.
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(raw)))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), buf.String())
	return nil
}
