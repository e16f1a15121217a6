// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/clinpipe/orchestrator/internal/domain"
	"github.com/clinpipe/orchestrator/internal/metrics"
	"github.com/clinpipe/orchestrator/internal/transport/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Runner  PipelineRunner
	Health  HealthAggregator
	Reset   ResetCoordinator
	Reports ReportReader

	Logger     *slog.Logger
	AdminToken string
	Version    string
	Commit     string
	BuildDate  string
}

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics.Init()
	version := valueOrDefault(deps.Version, "dev")
	commit := valueOrDefault(deps.Commit, "none")
	buildDate := valueOrDefault(deps.BuildDate, "unknown")

	r := chi.NewRouter()
	r.Use(requestIDMiddleware())
	r.Use(requestLoggingMiddleware(logger))

	// ---------------- HEALTH ----------------

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("health check hit")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ---------------- METRICS ----------------

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// ---------------- VERSION ----------------

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":    version,
			"commit":     commit,
			"build_date": buildDate,
		})
	})

	r.Route("/pipeline", func(p chi.Router) {

		// ---------------- FULL PIPELINE RUNS ----------------

		p.Post("/run/training", func(w http.ResponseWriter, r *http.Request) {
			clearExisting, err := boolQueryParam(r, "clear_existing", false)
			if err != nil {
				http.Error(w, "invalid clear_existing", http.StatusBadRequest)
				return
			}

			report, err := deps.Runner.RunTraining(r.Context(), clearExisting)
			if err != nil {
				writeRunError(w, logger, "training", err)
				return
			}

			// A failed run is still a completed request; the report says so.
			writeJSON(w, http.StatusOK, report)
		})

		p.Post("/run/hospital", func(w http.ResponseWriter, r *http.Request) {
			clearExisting, err := boolQueryParam(r, "clear_existing", false)
			if err != nil {
				http.Error(w, "invalid clear_existing", http.StatusBadRequest)
				return
			}

			report, err := deps.Runner.RunHospital(r.Context(), clearExisting)
			if err != nil {
				writeRunError(w, logger, "hospital", err)
				return
			}

			writeJSON(w, http.StatusOK, report)
		})

		// ---------------- INDIVIDUAL STEPS ----------------

		p.Post("/steps/proxyfhir", func(w http.ResponseWriter, r *http.Request) {
			source, err := dataSourceQueryParam(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			writeJSON(w, http.StatusOK, deps.Runner.FetchSource(r.Context(), source))
		})

		p.Post("/steps/deid", func(w http.ResponseWriter, r *http.Request) {
			source, err := dataSourceQueryParam(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			clearExisting, err := boolQueryParam(r, "clear_existing", false)
			if err != nil {
				http.Error(w, "invalid clear_existing", http.StatusBadRequest)
				return
			}

			writeJSON(w, http.StatusOK, deps.Runner.IngestSource(r.Context(), source, clearExisting))
		})

		p.Post("/steps/featurizer", func(w http.ResponseWriter, r *http.Request) {
			batchSize, err := intQueryParam(r, "batch_size", 100)
			if err != nil {
				http.Error(w, "invalid batch_size", http.StatusBadRequest)
				return
			}

			writeJSON(w, http.StatusOK, deps.Runner.ExtractFeatures(r.Context(), batchSize))
		})

		p.Post("/steps/model-train", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, deps.Runner.TrainModel(r.Context()))
		})

		p.Post("/steps/predict", func(w http.ResponseWriter, r *http.Request) {
			clearExisting, err := boolQueryParam(r, "clear_existing", false)
			if err != nil {
				http.Error(w, "invalid clear_existing", http.StatusBadRequest)
				return
			}
			limit, err := intQueryParam(r, "limit", 1000)
			if err != nil {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}

			writeJSON(w, http.StatusOK, deps.Runner.Predict(r.Context(), clearExisting, limit))
		})

		// ---------------- DOWNSTREAM HEALTH ----------------

		p.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, deps.Health.CheckHealth(r.Context()))
		})

		p.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			snapshot := deps.Health.CheckHealth(r.Context())
			writeJSON(w, http.StatusOK, map[string]any{
				"operational": snapshot.AllHealthy,
				"services":    snapshot,
			})
		})

		// ---------------- CLEAR ALL (ADMIN) ----------------

		p.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminTokenAuth(deps.AdminToken, logger))

			admin.Delete("/clear-all", func(w http.ResponseWriter, r *http.Request) {
				report := deps.Reset.ClearAll(r.Context())
				logger.Info("clear-all requested via API",
					"success", report.Success,
					"cleared", len(report.ClearedServices),
				)
				writeJSON(w, http.StatusOK, report)
			})
		})

		// ---------------- RUN HISTORY ----------------

		if deps.Reports != nil {
			p.Get("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
				runID, err := uuid.Parse(chi.URLParam(r, "id"))
				if err != nil {
					http.Error(w, "invalid run ID", http.StatusBadRequest)
					return
				}

				report, err := deps.Reports.GetReport(r.Context(), runID)
				if err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						logger.Warn("run not found", "run_id", runID)
						http.Error(w, "run not found", http.StatusNotFound)
						return
					}
					logger.Error("get run failed", "run_id", runID, "error", err)
					http.Error(w, "failed to get run", http.StatusInternalServerError)
					return
				}

				writeJSON(w, http.StatusOK, report)
			})
		}
	})

	return r
}

func writeRunError(w http.ResponseWriter, logger *slog.Logger, kind string, err error) {
	if errors.Is(err, domain.ErrRunInProgress) {
		http.Error(w, "a "+kind+" pipeline run is already in progress", http.StatusConflict)
		return
	}
	logger.Error("pipeline run failed to start", "kind", kind, "error", err)
	http.Error(w, "failed to run pipeline", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func dataSourceQueryParam(r *http.Request) (domain.DataSource, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("data_source"))
	switch domain.DataSource(raw) {
	case domain.SourceTraining:
		return domain.SourceTraining, nil
	case domain.SourceHospital:
		return domain.SourceHospital, nil
	}
	return "", errors.New("data_source must be training or hospital")
}

func boolQueryParam(r *http.Request, name string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(raw)
}

func intQueryParam(r *http.Request, name string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.New("must be positive")
	}
	return v, nil
}

func valueOrDefault(value, defaultValue string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	return trimmed
}
