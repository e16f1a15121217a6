// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"errors"
	"fmt"
)

var ErrRunInProgress = errors.New("pipeline run already in progress")

// ErrorKind classifies a failed stage call.
type ErrorKind string

const (
	// KindUnreachable covers connection failures and timeouts.
	KindUnreachable ErrorKind = "UNREACHABLE"
	// KindRemote covers non-2xx responses and error payloads.
	KindRemote ErrorKind = "REMOTE_ERROR"
	// KindDecode covers malformed response bodies.
	KindDecode ErrorKind = "DECODE_ERROR"
)

// StageError is the normalized failure of one stage client call.
type StageError struct {
	Kind    ErrorKind
	Service Service
	Op      string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Service, e.Op, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageErrorKind reports the classification of err, if it carries one.
func StageErrorKind(err error) (ErrorKind, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}
