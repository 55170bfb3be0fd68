package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("Port = %q, want 3001", cfg.Port)
	}
	if cfg.NLPTimeout != 30*time.Second {
		t.Errorf("NLPTimeout = %v, want 30s", cfg.NLPTimeout)
	}
	if len(cfg.SupportedLanguages) != 4 {
		t.Errorf("SupportedLanguages = %v, want 4 entries", cfg.SupportedLanguages)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("NLP_TIMEOUT", "10s")
	t.Setenv("RATE_LIMIT_MAX", "25")
	t.Setenv("SUPPORTED_LANGUAGES", "en, tw")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.NLPTimeout != 10*time.Second {
		t.Errorf("NLPTimeout = %v, want 10s", cfg.NLPTimeout)
	}
	if cfg.RateLimitMax != 25 {
		t.Errorf("RateLimitMax = %d, want 25", cfg.RateLimitMax)
	}
	if len(cfg.SupportedLanguages) != 2 || cfg.SupportedLanguages[1] != "tw" {
		t.Errorf("SupportedLanguages = %v, want [en tw]", cfg.SupportedLanguages)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")
	t.Setenv("NLP_TIMEOUT", "soon")

	cfg := Load()

	if cfg.RateLimitMax != 100 {
		t.Errorf("RateLimitMax = %d, want default 100", cfg.RateLimitMax)
	}
	if cfg.NLPTimeout != 30*time.Second {
		t.Errorf("NLPTimeout = %v, want default 30s", cfg.NLPTimeout)
	}
}
