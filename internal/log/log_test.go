package log

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	logger := New()
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.log == nil {
		t.Fatal("logger.log is nil")
	}
}

func TestNew_DefaultLevel(t *testing.T) {
	_ = os.Unsetenv("LOG_LEVEL")
	logger := New()
	if logger.log.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected default level Info, got %v", logger.log.GetLevel())
	}
}

func TestNew_CustomLevels(t *testing.T) {
	tests := []struct {
		envValue string
		expected logrus.Level
	}{
		{"trace", logrus.TraceLevel},
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"invalid", logrus.InfoLevel}, // Should default to Info
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.envValue)

			logger := New()
			if logger.log.GetLevel() != tt.expected {
				t.Errorf("for LOG_LEVEL=%s, expected level %v, got %v", tt.envValue, tt.expected, logger.log.GetLevel())
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	logger := New()

	logger.SetLevel("debug")
	if logger.log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected Debug level, got %v", logger.log.GetLevel())
	}

	logger.SetLevel("error")
	if logger.log.GetLevel() != logrus.ErrorLevel {
		t.Errorf("expected Error level, got %v", logger.log.GetLevel())
	}
}

func TestGetLogrus(t *testing.T) {
	logger := New()
	if logger.GetLogrus() == nil {
		t.Fatal("GetLogrus() returned nil")
	}
}
