// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"

	"github.com/clinpipe/orchestrator/internal/domain"
	"github.com/clinpipe/orchestrator/internal/metrics"
)

// ClearAll clears mutable pipeline state in DEID, Featurizer and ModelRisque.
// ProxyFHIR serves read-only source files and is never cleared. Unlike a
// pipeline run, every clear is attempted: ClearedServices lists exactly the
// services whose clear returned without error.
func (r *Runner) ClearAll(ctx context.Context) domain.ClearReport {
	ops := []clearOp{
		{service: domain.ServiceDEID, clear: r.deid.ClearDatabase},
		{service: domain.ServiceFeaturizer, clear: r.featurizer.Prune},
		{service: domain.ServiceModelRisque, clear: r.model.ClearDatabase},
	}

	cleared, failures := runBestEffort(ctx, ops)

	for _, svc := range cleared {
		metrics.IncServiceClear(svc, true)
		r.logger.Info("service cleared", "service", svc)
	}
	for _, f := range failures {
		metrics.IncServiceClear(f.service, false)
		r.logger.Error("service clear failed", "service", f.service, "error", f.err)
	}

	report := domain.ClearReport{
		ClearedServices: cleared,
	}
	if len(failures) == 0 {
		report.Success = true
		report.Message = "All data cleared successfully"
		return report
	}

	first := failures[0]
	report.Success = false
	report.Message = fmt.Sprintf("Clear failed for %s: %v", first.service, first.err)
	return report
}
