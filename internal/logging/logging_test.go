package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitializeRejectsBadLevel(t *testing.T) {
	if _, err := Initialize(Options{Level: "loud"}); err == nil {
		t.Error("Initialize() accepted an unknown level")
	}
}

func TestInitializeWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regexle.log")
	logger, err := Initialize(Options{Level: "info", Format: "json", File: path})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	logger.Info("hello from test")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing entry:\n%s", data)
	}
}

func TestLReturnsNamedChild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regexle.log")
	if _, err := Initialize(Options{Level: "debug", Format: "json", File: path}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	L("scanner").Debug("subsystem line")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"scanner"`) {
		t.Errorf("log entry missing subsystem name:\n%s", data)
	}
}
