// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clinpipe/orchestrator/internal/domain"
)

func TestClearAllSucceeds(t *testing.T) {
	fhir, deid, feat, model := healthyMocks()
	r := newTestRunner(fhir, deid, feat, model, nil)

	report := r.ClearAll(context.Background())

	if !report.Success {
		t.Fatalf("expected success, got %q", report.Message)
	}
	if report.Message != "All data cleared successfully" {
		t.Fatalf("unexpected message %q", report.Message)
	}

	want := []domain.Service{domain.ServiceDEID, domain.ServiceFeaturizer, domain.ServiceModelRisque}
	if len(report.ClearedServices) != len(want) {
		t.Fatalf("expected %d cleared services got %d", len(want), len(report.ClearedServices))
	}
	for i, svc := range want {
		if report.ClearedServices[i] != svc {
			t.Fatalf("cleared[%d]: expected %s got %s", i, svc, report.ClearedServices[i])
		}
	}

	if !deid.clearCalled || !feat.pruneCalled || !model.clearDBCalled {
		t.Fatal("expected every service clear to be invoked")
	}
	if model.clearPredCalled {
		t.Fatal("clear-all must use the model database clear, not the prediction clear")
	}
}

func TestClearAllContinuesPastFailures(t *testing.T) {
	fhir, deid, feat, model := healthyMocks()
	feat.pruneErr = errors.New("prune endpoint unavailable")
	r := newTestRunner(fhir, deid, feat, model, nil)

	report := r.ClearAll(context.Background())

	if report.Success {
		t.Fatal("expected failure when any clear fails")
	}
	if !strings.Contains(report.Message, "Featurizer") {
		t.Fatalf("expected message to name the failing service, got %q", report.Message)
	}
	if !strings.Contains(report.Message, "prune endpoint unavailable") {
		t.Fatalf("expected message to embed the error, got %q", report.Message)
	}

	// The remaining services are still cleared.
	if !model.clearDBCalled {
		t.Fatal("expected model clear to be attempted after featurizer failure")
	}
	want := []domain.Service{domain.ServiceDEID, domain.ServiceModelRisque}
	if len(report.ClearedServices) != len(want) {
		t.Fatalf("expected cleared %v got %v", want, report.ClearedServices)
	}
	for i, svc := range want {
		if report.ClearedServices[i] != svc {
			t.Fatalf("cleared[%d]: expected %s got %s", i, svc, report.ClearedServices[i])
		}
	}
}

func TestClearAllAllFail(t *testing.T) {
	fhir, deid, feat, model := healthyMocks()
	deid.clearErr = errors.New("deid down")
	feat.pruneErr = errors.New("featurizer down")
	model.clearDBErr = errors.New("model down")
	r := newTestRunner(fhir, deid, feat, model, nil)

	report := r.ClearAll(context.Background())

	if report.Success {
		t.Fatal("expected failure")
	}
	if len(report.ClearedServices) != 0 {
		t.Fatalf("expected no cleared services, got %v", report.ClearedServices)
	}
	// The first failure in call order names the message.
	if !strings.Contains(report.Message, "DEID") {
		t.Fatalf("expected first failure to name DEID, got %q", report.Message)
	}
}
