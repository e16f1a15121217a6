// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"

	"github.com/clinpipe/orchestrator/internal/domain"
)

// The two step-driving policies are deliberately separate. Pipeline stages
// feed each other, so a failure aborts the rest; clears are independent, so
// every one is attempted. Do not unify them.

type step struct {
	run func(ctx context.Context) domain.StepOutcome
	// failureMessage becomes the report message when this step fails.
	failureMessage string
}

// runSequential executes steps in topology order and stops at the first
// failure, returning the outcomes produced so far and that step's failure
// message ("" when every step succeeded).
func runSequential(ctx context.Context, steps []step) ([]domain.StepOutcome, string) {
	outcomes := make([]domain.StepOutcome, 0, len(steps))
	for _, s := range steps {
		outcome := s.run(ctx)
		outcomes = append(outcomes, outcome)
		if !outcome.Success {
			return outcomes, s.failureMessage
		}
	}
	return outcomes, ""
}

type clearOp struct {
	service domain.Service
	clear   func(ctx context.Context) error
}

type clearFailure struct {
	service domain.Service
	err     error
}

// runBestEffort attempts every clear regardless of earlier failures and
// reports which services were cleared and which failed, in call order.
func runBestEffort(ctx context.Context, ops []clearOp) ([]domain.Service, []clearFailure) {
	cleared := make([]domain.Service, 0, len(ops))
	var failures []clearFailure

	for _, op := range ops {
		if err := op.clear(ctx); err != nil {
			failures = append(failures, clearFailure{service: op.service, err: err})
			continue
		}
		cleared = append(cleared, op.service)
	}

	return cleared, failures
}
