// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinpipe/orchestrator/internal/config"
	"github.com/clinpipe/orchestrator/internal/logging"
	"github.com/clinpipe/orchestrator/internal/persistence/postgres"
	"github.com/clinpipe/orchestrator/internal/pipeline"
	"github.com/clinpipe/orchestrator/internal/repository"
	"github.com/clinpipe/orchestrator/internal/stageclient"
	httptransport "github.com/clinpipe/orchestrator/internal/transport/http"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := logging.NewLogger(cfg.Env)

	httpClient := &http.Client{}
	fhir := stageclient.NewProxyFHIR(cfg.ProxyFHIRURL, cfg.StageTimeout, httpClient, logger)
	deid := stageclient.NewDEID(cfg.DEIDURL, cfg.StageTimeout, httpClient, logger)
	featurizer := stageclient.NewFeaturizer(cfg.FeaturizerURL, cfg.StageTimeout, httpClient, logger)
	model := stageclient.NewModelRisque(cfg.ModelRisqueURL, cfg.StageTimeout, httpClient, logger)

	deps := pipeline.Deps{
		ProxyFHIR:    fhir,
		DEID:         deid,
		Featurizer:   featurizer,
		ModelRisque:  model,
		Logger:       logger,
		ProbeTimeout: cfg.ProbeTimeout,
	}

	var reports httptransport.ReportReader
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool, logger); err != nil {
				log.Fatalf("schema bootstrap failed: %v", err)
			}
		}

		reportRepo := repository.NewReportRepository(pool, logger)
		deps.Audit = reportRepo
		reports = reportRepo
	} else {
		logger.Warn("DATABASE_URL not set; run audit trail disabled")
	}

	runner := pipeline.New(deps)

	handler := httptransport.NewRouter(httptransport.Deps{
		Runner:     runner,
		Health:     runner,
		Reset:      runner,
		Reports:    reports,
		Logger:     logger,
		AdminToken: cfg.AdminToken,
		Version:    Version,
		Commit:     Commit,
		BuildDate:  BuildDate,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api listening",
			"addr", cfg.HTTPAddr,
			"version", Version,
			"commit", Commit,
			"build_date", BuildDate,
		)

		if err := srv.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
}
