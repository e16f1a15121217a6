package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr    string
	Env         string
	AdminToken  string
	DatabaseURL string
	AutoMigrate bool

	ProxyFHIRURL   string
	DEIDURL        string
	FeaturizerURL  string
	ModelRisqueURL string

	// StageTimeout bounds each outbound stage call; ProbeTimeout bounds each
	// health probe independently of the stage deadline.
	StageTimeout time.Duration
	ProbeTimeout time.Duration
}

// fileConfig is the optional YAML overlay (CONFIG_FILE). Only service URLs
// and the listen address belong in the file; secrets stay in the environment.
type fileConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	Services struct {
		ProxyFHIR   string `yaml:"proxy_fhir"`
		DEID        string `yaml:"deid"`
		Featurizer  string `yaml:"featurizer"`
		ModelRisque string `yaml:"model_risque"`
	} `yaml:"services"`
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		Env:            getenv("ENV", "dev"),
		AdminToken:     getenv("ADMIN_TOKEN", ""),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		AutoMigrate:    getenvBool("AUTO_MIGRATE", true),
		ProxyFHIRURL:   getenv("PROXY_FHIR_URL", "http://localhost:8001"),
		DEIDURL:        getenv("DEID_URL", "http://localhost:8000"),
		FeaturizerURL:  getenv("FEATURIZER_URL", "http://localhost:8001"),
		ModelRisqueURL: getenv("MODEL_RISQUE_URL", "http://localhost:8002"),
		StageTimeout:   getenvDuration("STAGE_TIMEOUT", 30*time.Second),
		ProbeTimeout:   getenvDuration("PROBE_TIMEOUT", 5*time.Second),
	}

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	overlay(&cfg.HTTPAddr, fc.HTTPAddr)
	overlay(&cfg.ProxyFHIRURL, fc.Services.ProxyFHIR)
	overlay(&cfg.DEIDURL, fc.Services.DEID)
	overlay(&cfg.FeaturizerURL, fc.Services.Featurizer)
	overlay(&cfg.ModelRisqueURL, fc.Services.ModelRisque)

	return cfg, nil
}

func overlay(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func getenv(key, defaultValue string) string {
	v := os.Getenv(key)
	if v != "" {
		return v
	}
	return defaultValue
}

func getenvBool(key string, defaultValue bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
