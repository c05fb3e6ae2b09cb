package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultHasSensibleWorkerTimeout(t *testing.T) {
	cfg := Default()
	if cfg.Worker.Timeout != 5*time.Second {
		t.Fatalf("expected 5s default worker timeout, got %v", cfg.Worker.Timeout)
	}
	if cfg.Worker.Enabled {
		t.Fatal("expected worker offload disabled by default")
	}
}

func TestLoadConfigWithoutFilesReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := viper.New()
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AutoLayout.ReflowBehavior != "static" {
		t.Fatalf("expected default reflow behavior 'static', got %q", cfg.AutoLayout.ReflowBehavior)
	}
}

func TestNewLoggerDefaultsToStderr(t *testing.T) {
	logger := NewLogger(LogRotationConfig{Enabled: false}, "info")
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
}
