package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Consensus.AcceptRatio != 0.7 || cfg.Consensus.RejectRatio != 0.5 {
		t.Errorf("consensus thresholds = %v/%v, want 0.7/0.5",
			cfg.Consensus.AcceptRatio, cfg.Consensus.RejectRatio)
	}
	if cfg.Offer.MinConfidence != 70 || cfg.Offer.MaxOffers != 3 {
		t.Errorf("offer policy = %v/%d, want 70/3",
			cfg.Offer.MinConfidence, cfg.Offer.MaxOffers)
	}
	if cfg.Engine.MaxSpawnDepth != 1 {
		t.Errorf("max spawn depth = %d, want 1", cfg.Engine.MaxSpawnDepth)
	}
	if cfg.EvaluationTimeout() != 5*time.Minute {
		t.Errorf("evaluation timeout = %v, want 5m", cfg.EvaluationTimeout())
	}
	if cfg.JudgeTimeout() != 90*time.Second {
		t.Errorf("judge timeout = %v, want 90s", cfg.JudgeTimeout())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LLM.Model != DefaultConfig().LLM.Model {
		t.Errorf("model = %q, want default", cfg.LLM.Model)
	}
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, ".dealdesk")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := []byte(`
engine:
  max_parallel: 8
  evaluation_timeout: 2m
  max_spawn_depth: 2
consensus:
  accept_ratio: 0.6
  reject_ratio: 0.5
  top_list_size: 3
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(ws)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.MaxParallel != 8 || cfg.Engine.MaxSpawnDepth != 2 {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Consensus.AcceptRatio != 0.6 {
		t.Errorf("accept ratio = %v, want 0.6", cfg.Consensus.AcceptRatio)
	}
	// Untouched sections keep defaults.
	if cfg.Offer.MaxOffers != 3 {
		t.Errorf("offer.max_offers = %d, want default 3", cfg.Offer.MaxOffers)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, ".dealdesk")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := []byte("engine:\n  max_parallel: 0\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(ws); err == nil {
		t.Fatal("expected validation failure for max_parallel=0")
	}
}

func TestValidateFailures(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero parallel", func(c *Config) { c.Engine.MaxParallel = 0 }},
		{"zero spawn depth", func(c *Config) { c.Engine.MaxSpawnDepth = 0 }},
		{"bad eval timeout", func(c *Config) { c.Engine.EvaluationTimeout = "soon" }},
		{"bad llm timeout", func(c *Config) { c.LLM.Timeout = "whenever" }},
		{"accept ratio above 1", func(c *Config) { c.Consensus.AcceptRatio = 1.5 }},
		{"accept ratio zero", func(c *Config) { c.Consensus.AcceptRatio = 0 }},
		{"reject ratio above 1", func(c *Config) { c.Consensus.RejectRatio = 2 }},
		{"zero top list", func(c *Config) { c.Consensus.TopListSize = 0 }},
		{"confidence above 100", func(c *Config) { c.Offer.MinConfidence = 120 }},
		{"negative max offers", func(c *Config) { c.Offer.MaxOffers = -1 }},
		{"inverted equity band", func(c *Config) { c.Offer.EquityFloor = 30 }},
		{"zero multiplier ceiling", func(c *Config) { c.Offer.MultiplierCeiling = 0 }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DEALDESK_API_KEY", "env-key")
	t.Setenv("DEALDESK_MODEL", "gemini-2.5-pro")
	t.Setenv("DEALDESK_DEBUG", "true")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("api key = %q, want env override", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gemini-2.5-pro" {
		t.Errorf("model = %q, want env override", cfg.LLM.Model)
	}
	if !cfg.Logging.DebugMode || cfg.Logging.Level != "debug" {
		t.Errorf("debug override not applied: %+v", cfg.Logging)
	}
}

func TestGeminiKeyFallback(t *testing.T) {
	t.Setenv("DEALDESK_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	if cfg.LLM.APIKey != "gemini-key" {
		t.Errorf("api key = %q, want GEMINI_API_KEY fallback", cfg.LLM.APIKey)
	}
}

func TestSaveThenLoad(t *testing.T) {
	ws := t.TempDir()

	cfg := DefaultConfig()
	cfg.Engine.MaxParallel = 6
	if err := cfg.Save(ws); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(ws)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Engine.MaxParallel != 6 {
		t.Errorf("round-trip lost max_parallel: %d", loaded.Engine.MaxParallel)
	}
}
