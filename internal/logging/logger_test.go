// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLogger := Logger()
	prevLevel := zerolog.GlobalLevel()
	SetLogger(NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		SetLogger(prevLogger)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev); zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Init(Config{Level: "info", Format: "json", Output: &buf})
	Debug().Msg("hidden")
	Info().Str("code", "01").Msg("Region saved")

	out := decodeLine(t, &buf)
	if out["message"] != "Region saved" {
		t.Errorf("message = %v", out["message"])
	}
	if out["code"] != "01" {
		t.Errorf("code = %v", out["code"])
	}
}

func TestCtx_AddsContextFields(t *testing.T) {
	buf := captureLogs(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr1234")
	ctx = ContextWithUsername(ctx, "admin")
	Ctx(ctx).Info().Msg("handled")

	out := decodeLine(t, buf)
	for key, want := range map[string]string{
		"request_id":     "req-1",
		"correlation_id": "corr1234",
		"username":       "admin",
	} {
		if out[key] != want {
			t.Errorf("%s = %v, want %s", key, out[key], want)
		}
	}
}

func TestCtx_EmptyContext(t *testing.T) {
	buf := captureLogs(t)
	Ctx(context.Background()).Info().Msg("bare")
	out := decodeLine(t, buf)
	if _, ok := out["request_id"]; ok {
		t.Error("request_id should be absent")
	}
}

func TestGenerateCorrelationID(t *testing.T) {
	a, b := GenerateCorrelationID(), GenerateCorrelationID()
	if len(a) != 8 {
		t.Errorf("len = %d, want 8", len(a))
	}
	if a == b {
		t.Error("correlation IDs should differ")
	}
}

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	buf := captureLogs(t)

	logger := NewSlogLogger().WithGroup("svc").With("name", "http-server")
	logger.Warn("service restarted", "attempt", 2)

	out := decodeLine(t, buf)
	if out["level"] != "warn" {
		t.Errorf("level = %v", out["level"])
	}
	if out["svc.name"] != "http-server" {
		t.Errorf("svc.name = %v", out["svc.name"])
	}
	if out["svc.attempt"] != float64(2) {
		t.Errorf("svc.attempt = %v", out["svc.attempt"])
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	captureLogs(t)
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	h := &SlogHandler{logger: Logger()}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
