// Package config loads and validates dealdesk configuration from
// .dealdesk/config.yaml, with environment overrides for deployment
// settings. All evaluation policy constants (consensus thresholds, offer
// cutoffs) live here so they are configuration, not code.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all dealdesk configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM judgment backend
	LLM LLMConfig `yaml:"llm"`

	// Execution engine settings
	Engine EngineConfig `yaml:"engine"`

	// Worker runner settings
	Runner RunnerConfig `yaml:"runner"`

	// Consensus policy
	Consensus ConsensusConfig `yaml:"consensus"`

	// Offer policy
	Offer OfferConfig `yaml:"offer"`

	// Evaluator registry settings
	Registry RegistryConfig `yaml:"registry"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the external judgment backend.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`

	// CachePath enables the SQLite judgment cache when set.
	CachePath string `yaml:"cache_path"`
}

// EngineConfig configures the execution engine.
type EngineConfig struct {
	MaxParallel       int    `yaml:"max_parallel"`       // bounded worker pool size
	EvaluationTimeout string `yaml:"evaluation_timeout"` // deadline for the whole run
	MaxSpawnDepth     int    `yaml:"max_spawn_depth"`    // hard cap on sub-worker depth
}

// RunnerConfig configures the worker runner.
type RunnerConfig struct {
	// DegradeOnInvalid coerces malformed judgments to a safe neutral
	// result instead of recording an instance failure.
	DegradeOnInvalid bool `yaml:"degrade_on_invalid"`
}

// ConsensusConfig holds the consensus policy thresholds. The defaults are
// not tuned values; treat them as knobs.
type ConsensusConfig struct {
	AcceptRatio float64 `yaml:"accept_ratio"` // accepting share needed for overall accept
	RejectRatio float64 `yaml:"reject_ratio"` // rejecting share needed for overall reject
	TopListSize int     `yaml:"top_list_size"`
}

// OfferConfig holds the offer generation policy.
type OfferConfig struct {
	MinConfidence     float64 `yaml:"min_confidence"`     // eligibility cutoff per instance
	MaxOffers         int     `yaml:"max_offers"`         // offers per run
	MultiplierCeiling float64 `yaml:"multiplier_ceiling"` // cap on ask multiplier
	EquityFloor       float64 `yaml:"equity_floor"`
	EquityCeiling     float64 `yaml:"equity_ceiling"`
}

// RegistryConfig configures the evaluator registry.
type RegistryConfig struct {
	// OverlayPath points to a user-defined evaluators JSON file merged
	// on top of the built-in catalog.
	OverlayPath string `yaml:"overlay_path"`

	// WatchOverlay reloads the overlay on file change.
	WatchOverlay bool `yaml:"watch_overlay"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "dealdesk",
		Version: "0.3.0",
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			Timeout:  "90s",
		},
		Engine: EngineConfig{
			MaxParallel:       4,
			EvaluationTimeout: "5m",
			MaxSpawnDepth:     1,
		},
		Runner: RunnerConfig{
			DegradeOnInvalid: false,
		},
		Consensus: ConsensusConfig{
			AcceptRatio: 0.7,
			RejectRatio: 0.5,
			TopListSize: 5,
		},
		Offer: OfferConfig{
			MinConfidence:     70,
			MaxOffers:         3,
			MultiplierCeiling: 1.5,
			EquityFloor:       8,
			EquityCeiling:     25,
		},
		Registry: RegistryConfig{
			OverlayPath:  "",
			WatchOverlay: false,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads config from workspace/.dealdesk/config.yaml, layered over the
// defaults. A missing file is not an error; the defaults apply.
func Load(workspace string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(workspace, ".dealdesk", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// ApplyEnvOverrides lets deployment environment variables win over the file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DEALDESK_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("DEALDESK_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("DEALDESK_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// Validate checks the configuration and fails fast on anything malformed.
// This catches configuration failures at startup, not per-run.
func (c *Config) Validate() error {
	if c.Engine.MaxParallel < 1 {
		return fmt.Errorf("engine.max_parallel must be >= 1, got %d", c.Engine.MaxParallel)
	}
	if c.Engine.MaxSpawnDepth < 1 {
		return fmt.Errorf("engine.max_spawn_depth must be >= 1, got %d", c.Engine.MaxSpawnDepth)
	}
	if _, err := time.ParseDuration(c.Engine.EvaluationTimeout); err != nil {
		return fmt.Errorf("engine.evaluation_timeout invalid: %w", err)
	}
	if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
		return fmt.Errorf("llm.timeout invalid: %w", err)
	}
	if c.Consensus.AcceptRatio <= 0 || c.Consensus.AcceptRatio > 1 {
		return fmt.Errorf("consensus.accept_ratio must be in (0, 1], got %v", c.Consensus.AcceptRatio)
	}
	if c.Consensus.RejectRatio <= 0 || c.Consensus.RejectRatio > 1 {
		return fmt.Errorf("consensus.reject_ratio must be in (0, 1], got %v", c.Consensus.RejectRatio)
	}
	if c.Consensus.TopListSize < 1 {
		return fmt.Errorf("consensus.top_list_size must be >= 1, got %d", c.Consensus.TopListSize)
	}
	if c.Offer.MinConfidence < 0 || c.Offer.MinConfidence > 100 {
		return fmt.Errorf("offer.min_confidence must be in [0, 100], got %v", c.Offer.MinConfidence)
	}
	if c.Offer.MaxOffers < 0 {
		return fmt.Errorf("offer.max_offers must be >= 0, got %d", c.Offer.MaxOffers)
	}
	if c.Offer.EquityFloor >= c.Offer.EquityCeiling {
		return fmt.Errorf("offer.equity_floor (%v) must be below offer.equity_ceiling (%v)",
			c.Offer.EquityFloor, c.Offer.EquityCeiling)
	}
	if c.Offer.MultiplierCeiling <= 0 {
		return fmt.Errorf("offer.multiplier_ceiling must be > 0, got %v", c.Offer.MultiplierCeiling)
	}
	return nil
}

// EvaluationTimeout returns the parsed run deadline.
func (c *Config) EvaluationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Engine.EvaluationTimeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// JudgeTimeout returns the parsed per-call LLM timeout.
func (c *Config) JudgeTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 90 * time.Second
	}
	return d
}

// Save writes the config back to workspace/.dealdesk/config.yaml.
func (c *Config) Save(workspace string) error {
	dir := filepath.Join(workspace, ".dealdesk")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
