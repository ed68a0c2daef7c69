package logging

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  log.Level
	}{
		{"debug level", "debug", log.DebugLevel},
		{"info level", "info", log.InfoLevel},
		{"warn level", "warn", log.WarnLevel},
		{"warning alias", "warning", log.WarnLevel},
		{"error level", "error", log.ErrorLevel},
		{"case insensitive", "DEBUG", log.DebugLevel},
		{"invalid defaults to info", "bogus", log.InfoLevel},
		{"empty defaults to info", "", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if logger.GetLevel() != tt.want {
				t.Errorf("New(%q) level = %v, want %v", tt.level, logger.GetLevel(), tt.want)
			}
		})
	}
}

func TestDefaultIsStable(t *testing.T) {
	if Default() != Default() {
		t.Error("Default should return the same logger instance")
	}
}
