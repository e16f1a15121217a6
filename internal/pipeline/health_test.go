// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestCheckHealthTruthTable(t *testing.T) {
	probeErr := errors.New("probe failed")

	// Exercise every combination of the four probes.
	for mask := 0; mask < 16; mask++ {
		fhirUp := mask&1 != 0
		deidUp := mask&2 != 0
		featUp := mask&4 != 0
		modelUp := mask&8 != 0

		name := fmt.Sprintf("fhir=%t deid=%t feat=%t model=%t", fhirUp, deidUp, featUp, modelUp)
		t.Run(name, func(t *testing.T) {
			fhir, deid, feat, model := healthyMocks()
			if !fhirUp {
				fhir.healthErr = probeErr
			}
			if !deidUp {
				deid.healthErr = probeErr
			}
			if !featUp {
				feat.healthErr = probeErr
			}
			if !modelUp {
				model.healthErr = probeErr
			}
			r := newTestRunner(fhir, deid, feat, model, nil)

			snap := r.CheckHealth(context.Background())

			if snap.ProxyFHIRHealthy != fhirUp {
				t.Fatalf("proxyfhir: expected %t got %t", fhirUp, snap.ProxyFHIRHealthy)
			}
			if snap.DEIDHealthy != deidUp {
				t.Fatalf("deid: expected %t got %t", deidUp, snap.DEIDHealthy)
			}
			if snap.FeaturizerHealthy != featUp {
				t.Fatalf("featurizer: expected %t got %t", featUp, snap.FeaturizerHealthy)
			}
			if snap.ModelRisqueHealthy != modelUp {
				t.Fatalf("modelrisque: expected %t got %t", modelUp, snap.ModelRisqueHealthy)
			}

			wantAll := fhirUp && deidUp && featUp && modelUp
			if snap.AllHealthy != wantAll {
				t.Fatalf("all_healthy: expected %t got %t", wantAll, snap.AllHealthy)
			}
			if snap.CheckedAt.IsZero() {
				t.Fatal("expected checked_at to be set")
			}
		})
	}
}

func TestCheckHealthSnapshotIsFresh(t *testing.T) {
	fhir, deid, feat, model := healthyMocks()
	r := newTestRunner(fhir, deid, feat, model, nil)

	first := r.CheckHealth(context.Background())
	if !first.AllHealthy {
		t.Fatal("expected all healthy")
	}

	// A service going down must be reflected by the next check.
	deid.healthErr = errors.New("connection refused")
	second := r.CheckHealth(context.Background())
	if second.DEIDHealthy {
		t.Fatal("expected deid to be reported unhealthy")
	}
	if second.AllHealthy {
		t.Fatal("expected all_healthy to be false")
	}
	if second.CheckedAt.Before(first.CheckedAt) {
		t.Fatal("expected second snapshot to be at least as recent")
	}
}

type slowProbeFHIR struct {
	mockFHIR
}

func (s *slowProbeFHIR) Health(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheckHealthProbeTimeoutBounds(t *testing.T) {
	fhir := &slowProbeFHIR{}
	_, deid, feat, model := healthyMocks()
	r := New(Deps{
		ProxyFHIR:    fhir,
		DEID:         deid,
		Featurizer:   feat,
		ModelRisque:  model,
		Logger:       discardLogger(),
		ProbeTimeout: 50 * time.Millisecond,
	})

	started := time.Now()
	snap := r.CheckHealth(context.Background())
	elapsed := time.Since(started)

	if snap.ProxyFHIRHealthy {
		t.Fatal("expected hung probe to be reported unhealthy")
	}
	if !snap.DEIDHealthy || !snap.FeaturizerHealthy || !snap.ModelRisqueHealthy {
		t.Fatal("expected other probes to be unaffected")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("expected probe timeout to bound the check, took %s", elapsed)
	}
}
