package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("New must return a usable logger")
	}
	if err := l.Init("debug"); err != nil {
		t.Fatalf("Init(debug) error: %v", err)
	}
	if !l.Log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	if err := l.Init("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
