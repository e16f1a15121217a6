// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"time"

	"github.com/clinpipe/orchestrator/internal/domain"
	"github.com/clinpipe/orchestrator/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// CheckHealth probes all four downstream services concurrently and reduces
// the results into a fresh snapshot. Probes are independent: one slow or
// unreachable service never blocks reporting on the others, and probe
// failures never surface as errors.
func (r *Runner) CheckHealth(ctx context.Context) domain.HealthSnapshot {
	snapshot := domain.HealthSnapshot{
		CheckedAt: time.Now().UTC(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snapshot.ProxyFHIRHealthy = r.probeService(ctx, domain.ServiceProxyFHIR, r.fhir.Health)
		return nil
	})
	g.Go(func() error {
		snapshot.DEIDHealthy = r.probeService(ctx, domain.ServiceDEID, r.deid.Health)
		return nil
	})
	g.Go(func() error {
		snapshot.FeaturizerHealthy = r.probeService(ctx, domain.ServiceFeaturizer, r.featurizer.Health)
		return nil
	})
	g.Go(func() error {
		snapshot.ModelRisqueHealthy = r.probeService(ctx, domain.ServiceModelRisque, r.model.Health)
		return nil
	})
	_ = g.Wait()

	snapshot.AllHealthy = snapshot.ProxyFHIRHealthy &&
		snapshot.DEIDHealthy &&
		snapshot.FeaturizerHealthy &&
		snapshot.ModelRisqueHealthy

	return snapshot
}

func (r *Runner) probeService(ctx context.Context, service domain.Service, probe func(context.Context) error) bool {
	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	started := time.Now()
	err := probe(ctx)
	metrics.ObserveProbeDuration(service, time.Since(started))

	if err != nil {
		r.logger.Warn("health probe failed", "service", service, "error", err)
		return false
	}
	return true
}
