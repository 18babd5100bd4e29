package resilience

import (
	"testing"
	"time"
)

func TestFromRetryConfig_Overrides(t *testing.T) {
	cfg := FromRetryConfig(5, 250, 4000, 3, 0.1)
	if cfg.MaxAttempts != 5 {
		t.Errorf("expected MaxAttempts 5, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialBackoff != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != 4*time.Second {
		t.Errorf("expected 4s, got %v", cfg.MaxBackoff)
	}
	if cfg.Multiplier != 3 {
		t.Errorf("expected multiplier 3, got %v", cfg.Multiplier)
	}
	if cfg.JitterFraction != 0.1 {
		t.Errorf("expected jitter 0.1, got %v", cfg.JitterFraction)
	}
}

func TestFromRetryConfig_ZeroKeepsDefaults(t *testing.T) {
	cfg := FromRetryConfig(0, 0, 0, 0, 0)
	def := DefaultRetryConfig()
	if cfg.MaxAttempts != def.MaxAttempts || cfg.InitialBackoff != def.InitialBackoff ||
		cfg.MaxBackoff != def.MaxBackoff || cfg.Multiplier != def.Multiplier {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.JitterFraction != 0 {
		t.Errorf("expected no jitter, got %v", cfg.JitterFraction)
	}
}
