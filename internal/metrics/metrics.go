// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"
	"time"

	"github.com/clinpipe/orchestrator/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	pipelineRunsCounter  *prometheus.CounterVec
	pipelineStepsCounter *prometheus.CounterVec
	stepDurationMetric   prometheus.Histogram
	probeDurationMetric  *prometheus.HistogramVec
	serviceClearsCounter *prometheus.CounterVec
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		pipelineRunsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Total number of pipeline runs by kind and terminal status.",
			},
			[]string{"kind", "status"},
		)

		pipelineStepsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_steps_total",
				Help: "Total number of executed pipeline steps by name and status.",
			},
			[]string{"step", "status"},
		)

		stepDurationMetric = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipeline_step_duration_seconds",
				Help:    "Duration of stage client calls in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		)

		probeDurationMetric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "service_probe_duration_seconds",
				Help:    "Duration of downstream health probes in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		)

		serviceClearsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "service_clears_total",
				Help: "Total number of downstream clear calls by service and status.",
			},
			[]string{"service", "status"},
		)

		prometheus.MustRegister(
			pipelineRunsCounter,
			pipelineStepsCounter,
			stepDurationMetric,
			probeDurationMetric,
			serviceClearsCounter,
		)

		// Ensure counter vectors are visible at /metrics before first increment.
		for _, kind := range []domain.PipelineKind{
			domain.PipelineTraining,
			domain.PipelineHospital,
		} {
			pipelineRunsCounter.WithLabelValues(string(kind), "succeeded")
			pipelineRunsCounter.WithLabelValues(string(kind), "failed")
		}

		for _, svc := range []domain.Service{
			domain.ServiceProxyFHIR,
			domain.ServiceDEID,
			domain.ServiceFeaturizer,
			domain.ServiceModelRisque,
		} {
			probeDurationMetric.WithLabelValues(string(svc))
		}
	})
}

func IncPipelineRun(kind domain.PipelineKind, success bool) {
	Init()
	pipelineRunsCounter.WithLabelValues(string(kind), statusLabel(success)).Inc()
}

func IncPipelineStep(step string, success bool) {
	Init()
	pipelineStepsCounter.WithLabelValues(step, statusLabel(success)).Inc()
}

func ObserveStepDuration(d time.Duration) {
	Init()
	stepDurationMetric.Observe(d.Seconds())
}

func ObserveProbeDuration(service domain.Service, d time.Duration) {
	Init()
	probeDurationMetric.WithLabelValues(string(service)).Observe(d.Seconds())
}

func IncServiceClear(service domain.Service, success bool) {
	Init()
	serviceClearsCounter.WithLabelValues(string(service), statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "succeeded"
	}
	return "failed"
}
