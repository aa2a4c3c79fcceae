package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.name); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestInitConsoleLogger(t *testing.T) {
	for _, jsonFormat := range []bool{true, false} {
		logger, err := InitConsoleLogger(true, jsonFormat)
		if err != nil {
			t.Fatalf("InitConsoleLogger(json=%v) error = %v", jsonFormat, err)
		}
		if logger == nil {
			t.Fatal("InitConsoleLogger returned nil logger")
		}
	}
}
