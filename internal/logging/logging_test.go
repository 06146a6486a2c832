package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewInstallsGlobal(t *testing.T) {
	logger, restore, err := New(Config{Level: "warn", Format: "console"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer restore()

	if zap.L() != logger {
		t.Error("Should install the logger as the global")
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("Error should be enabled at warn level")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("Should reject unknown level")
	}
	if _, _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("Should reject unknown format")
	}
}
