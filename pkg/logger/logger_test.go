package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorAttachesErrorField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Error("fetch failed", errors.New("boom"), "endpoint", "coins/markets")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["endpoint"] != "coins/markets" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if fields["error"] != "boom" {
		t.Fatalf("expected error field, got %+v", fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		dev  bool
		want zapcore.Level
	}{
		{"debug", false, zapcore.DebugLevel},
		{"WARN", false, zapcore.WarnLevel},
		{"", true, zapcore.DebugLevel},
		{"", false, zapcore.InfoLevel},
		{"nonsense", false, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in, tt.dev); got != tt.want {
			t.Fatalf("parseLevel(%q, %v) = %v, want %v", tt.in, tt.dev, got, tt.want)
		}
	}
}

func TestInit(t *testing.T) {
	t.Cleanup(func() { Set(zap.NewNop()) })
	if err := Init(Config{Level: "info"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Info("ready", "component", "test")
}
