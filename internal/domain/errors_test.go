// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestStageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &StageError{
		Kind:    KindUnreachable,
		Service: ServiceProxyFHIR,
		Op:      "fetch manifest",
		Err:     cause,
	}

	if !errors.Is(err, cause) {
		t.Fatal("expected StageError to unwrap to its cause")
	}

	wrapped := fmt.Errorf("ProxyFHIR fetch failed: %w", err)
	kind, ok := StageErrorKind(wrapped)
	if !ok {
		t.Fatal("expected wrapped error to carry a stage error kind")
	}
	if kind != KindUnreachable {
		t.Fatalf("expected kind %s got %s", KindUnreachable, kind)
	}
}

func TestStageErrorKindOnPlainError(t *testing.T) {
	if _, ok := StageErrorKind(errors.New("plain")); ok {
		t.Fatal("expected no stage error kind for a plain error")
	}
}

func TestStageErrorMessageNamesServiceAndOp(t *testing.T) {
	err := &StageError{
		Kind:    KindRemote,
		Service: ServiceDEID,
		Op:      "ingest",
		Err:     errors.New("unexpected status 500"),
	}

	want := "DEID ingest: unexpected status 500"
	if err.Error() != want {
		t.Fatalf("expected %q got %q", want, err.Error())
	}
}
