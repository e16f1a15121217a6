// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "  error  ", want: slog.LevelError},
		{in: "trace", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q): expected %v got %v", tc.in, tc.want, got)
		}
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	for _, env := range []string{"dev", "prod", "PROD"} {
		logger := NewLogger(env)
		if logger == nil {
			t.Fatalf("expected logger for env %q", env)
		}
		if logger.Enabled(context.Background(), slog.LevelInfo) {
			t.Fatalf("env %q: expected info to be suppressed at error level", env)
		}
		if !logger.Enabled(context.Background(), slog.LevelError) {
			t.Fatalf("env %q: expected error level to be enabled", env)
		}
	}
}
