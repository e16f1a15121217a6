// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/clinpipe/orchestrator/internal/domain"
	"github.com/clinpipe/orchestrator/internal/metrics"
)

// stepPayload is what a stage operation hands back to the executor on a
// completed wire call. OK lets an operation mark itself failed from the
// decoded payload (e.g. a DEID response with status != success).
type stepPayload struct {
	OK      bool
	Message string
	Details map[string]any
}

type stepFunc func(ctx context.Context) (stepPayload, error)

// executeStep wraps one stage operation with timing and uniform outcome
// shaping. Stage failures never escape as errors; they become a failed
// StepOutcome so the runner can inspect every step the same way.
func executeStep(ctx context.Context, logger *slog.Logger, name string, fn stepFunc) domain.StepOutcome {
	started := time.Now().UTC()

	payload, err := fn(ctx)

	finished := time.Now().UTC()
	metrics.ObserveStepDuration(finished.Sub(started))

	outcome := domain.StepOutcome{
		Name:       name,
		StartedAt:  started,
		FinishedAt: finished,
	}

	if err != nil {
		outcome.Success = false
		outcome.Message = err.Error()
	} else {
		outcome.Success = payload.OK
		outcome.Message = payload.Message
		outcome.Details = payload.Details
	}

	metrics.IncPipelineStep(name, outcome.Success)

	if outcome.Success {
		logger.Info("step completed",
			"step", name,
			"duration_ms", finished.Sub(started).Milliseconds(),
		)
	} else {
		logger.Error("step failed",
			"step", name,
			"duration_ms", finished.Sub(started).Milliseconds(),
			"message", outcome.Message,
		)
	}

	return outcome
}
