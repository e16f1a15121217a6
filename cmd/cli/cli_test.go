// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func execCLI(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--api-url", apiURL))

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	err := cmd.Execute()
	return buf.String(), err
}

func TestRunCommandHitsTrainingEndpoint(t *testing.T) {
	var gotPath, gotMethod, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Training pipeline completed successfully"}`))
	}))
	defer srv.Close()

	out, err := execCLI(t, srv.URL, "run", "training", "--clear")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/pipeline/run/training" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotQuery != "clear_existing=true" {
		t.Fatalf("expected clear_existing query, got %q", gotQuery)
	}
	if !strings.Contains(out, "Training pipeline completed successfully") {
		t.Fatalf("expected report in output, got %q", out)
	}
}

func TestRunCommandRejectsUnknownKind(t *testing.T) {
	if _, err := execCLI(t, "http://localhost:0", "run", "backup"); err == nil {
		t.Fatal("expected error for unknown pipeline kind")
	}
}

func TestStepCommandBuildsQuery(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"DEID Ingestion","success":true}`))
	}))
	defer srv.Close()

	_, err := execCLI(t, srv.URL, "step", "deid", "--data-source", "hospital", "--clear")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if gotPath != "/pipeline/steps/deid" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "data_source=hospital") || !strings.Contains(gotQuery, "clear_existing=true") {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestClearAllSendsBearerToken(t *testing.T) {
	var gotAuth, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"All data cleared successfully"}`))
	}))
	defer srv.Close()

	out, err := execCLI(t, srv.URL, "clear-all", "--admin-token", "s3cret")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if gotMethod != http.MethodDelete {
		t.Fatalf("expected DELETE got %s", gotMethod)
	}
	if gotAuth != "Bearer s3cret" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
	if !strings.Contains(out, "All data cleared successfully") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestClearAllRequiresToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")
	if _, err := execCLI(t, "http://localhost:0", "clear-all"); err == nil {
		t.Fatal("expected error when no admin token is provided")
	}
}

func TestAPIErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "a training pipeline run is already in progress", http.StatusConflict)
	}))
	defer srv.Close()

	_, err := execCLI(t, srv.URL, "run", "training")
	if err == nil {
		t.Fatal("expected error for 409 response")
	}
	if !strings.Contains(err.Error(), "already in progress") {
		t.Fatalf("expected conflict message in error, got %v", err)
	}
}

func TestShowRunRejectsInvalidID(t *testing.T) {
	if _, err := execCLI(t, "http://localhost:0", "show-run", "not-a-uuid"); err == nil {
		t.Fatal("expected error for invalid run ID")
	}
}
