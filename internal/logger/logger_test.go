package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"indexscore/internal/config"
)

func TestNew_LevelFallback(t *testing.T) {
	log, err := New(config.LogConfig{Level: "verbose", Encoding: "json"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info must stay enabled after level fallback")
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug must stay disabled after level fallback")
	}
}

func TestNew_ConsoleEncoding(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "debug", Encoding: "console", Development: true}); err != nil {
		t.Fatalf("new: %v", err)
	}
}

func TestNew_UnknownEncodingFallsBackToJSON(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "info", Encoding: "text"}); err != nil {
		t.Fatalf("new: %v", err)
	}
}
