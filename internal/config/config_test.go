// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR", "ENV", "ADMIN_TOKEN", "DATABASE_URL", "AUTO_MIGRATE",
		"PROXY_FHIR_URL", "DEID_URL", "FEATURIZER_URL", "MODEL_RISQUE_URL",
		"STAGE_TIMEOUT", "PROBE_TIMEOUT", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default HTTPAddr=:8080, got %s", cfg.HTTPAddr)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected default Env=dev, got %s", cfg.Env)
	}
	if cfg.ProxyFHIRURL != "http://localhost:8001" {
		t.Fatalf("expected default ProxyFHIRURL, got %s", cfg.ProxyFHIRURL)
	}
	if cfg.DEIDURL != "http://localhost:8000" {
		t.Fatalf("expected default DEIDURL, got %s", cfg.DEIDURL)
	}
	if cfg.ModelRisqueURL != "http://localhost:8002" {
		t.Fatalf("expected default ModelRisqueURL, got %s", cfg.ModelRisqueURL)
	}
	if cfg.StageTimeout != 30*time.Second {
		t.Fatalf("expected default StageTimeout=30s, got %s", cfg.StageTimeout)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Fatalf("expected default ProbeTimeout=5s, got %s", cfg.ProbeTimeout)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("expected audit store disabled by default, got %s", cfg.DatabaseURL)
	}
	if !cfg.AutoMigrate {
		t.Fatal("expected default AutoMigrate=true")
	}
}

func TestLoadRespectsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("ENV", "prod")
	t.Setenv("ADMIN_TOKEN", "master-token")
	t.Setenv("DEID_URL", "http://deid.internal:8000")
	t.Setenv("STAGE_TIMEOUT", "10s")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected HTTP_ADDR override, got %s", cfg.HTTPAddr)
	}
	if cfg.Env != "prod" {
		t.Fatalf("expected ENV override, got %s", cfg.Env)
	}
	if cfg.AdminToken != "master-token" {
		t.Fatalf("expected ADMIN_TOKEN override, got %s", cfg.AdminToken)
	}
	if cfg.DEIDURL != "http://deid.internal:8000" {
		t.Fatalf("expected DEID_URL override, got %s", cfg.DEIDURL)
	}
	if cfg.StageTimeout != 10*time.Second {
		t.Fatalf("expected STAGE_TIMEOUT override, got %s", cfg.StageTimeout)
	}
	if cfg.AutoMigrate {
		t.Fatal("expected AUTO_MIGRATE override to false")
	}
}

func TestLoadConfigFileOverlay(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "orchestrator.yaml")
	body := `
http_addr: ":7070"
services:
  proxy_fhir: http://fhir.staging:8001
  model_risque: http://model.staging:8002
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DEID_URL", "http://deid.staging:8000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("expected file http_addr override, got %s", cfg.HTTPAddr)
	}
	if cfg.ProxyFHIRURL != "http://fhir.staging:8001" {
		t.Fatalf("expected file proxy_fhir override, got %s", cfg.ProxyFHIRURL)
	}
	if cfg.ModelRisqueURL != "http://model.staging:8002" {
		t.Fatalf("expected file model_risque override, got %s", cfg.ModelRisqueURL)
	}
	// env still applies where the file is silent
	if cfg.DEIDURL != "http://deid.staging:8000" {
		t.Fatalf("expected env DEID_URL to survive, got %s", cfg.DEIDURL)
	}
	if cfg.FeaturizerURL != "http://localhost:8001" {
		t.Fatalf("expected default FeaturizerURL to survive, got %s", cfg.FeaturizerURL)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadConfigFileInvalid(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "orchestrator.yaml")
	if err := os.WriteFile(path, []byte("services: ["), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid config file")
	}
}

func TestGetenvDuration(t *testing.T) {
	t.Setenv("DUR_KEY", "750ms")
	if got := getenvDuration("DUR_KEY", time.Second); got != 750*time.Millisecond {
		t.Fatalf("expected 750ms got %s", got)
	}

	t.Setenv("DUR_KEY", "nonsense")
	if got := getenvDuration("DUR_KEY", time.Second); got != time.Second {
		t.Fatalf("expected fallback 1s got %s", got)
	}

	t.Setenv("DUR_KEY", "-3s")
	if got := getenvDuration("DUR_KEY", time.Second); got != time.Second {
		t.Fatalf("expected fallback for non-positive duration, got %s", got)
	}
}

func TestGetenvBool(t *testing.T) {
	t.Setenv("BOOL_KEY", "true")
	if !getenvBool("BOOL_KEY", false) {
		t.Fatal("expected true value")
	}

	t.Setenv("BOOL_KEY", "0")
	if getenvBool("BOOL_KEY", true) {
		t.Fatal("expected false value")
	}

	t.Setenv("BOOL_KEY", "")
	if !getenvBool("BOOL_KEY", true) {
		t.Fatal("expected fallback true value")
	}
}
