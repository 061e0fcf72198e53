// Package config loads the analytics configuration: API credentials, the
// base/table identifiers behind each logical dataset, fetch parameters, and
// scoring weight overrides. YAML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for fetch parameters. Source literals without documented
// rationale; kept as configuration defaults, not contract.
const (
	DefaultPageSize   = 1000
	DefaultMaxRetries = 3
	DefaultTimeout    = 30 * time.Second
	DefaultBaseURL    = "https://api.airtable.com"
)

// Base identifies one remote base/table pair.
type Base struct {
	BaseID  string `yaml:"base_id"`
	TableID string `yaml:"table_id"`
	Name    string `yaml:"name,omitempty"`
}

// Scoring carries optional overrides for the KPI scoring defaults.
type Scoring struct {
	Weights         map[string]float64 `yaml:"weights,omitempty"`
	Minimums        map[string]float64 `yaml:"minimums,omitempty"`
	BlendCompliance float64            `yaml:"blend_compliance,omitempty"`
	BlendMagnitude  float64            `yaml:"blend_magnitude,omitempty"`
}

// Config is the resolved configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	PageSize   int
	WriteRPS   float64
	Bases      map[string]Base
	Scoring    Scoring
}

// fileConfig mirrors the YAML layout.
type fileConfig struct {
	Credentials struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"credentials"`
	Params struct {
		BaseURL               string  `yaml:"base_url,omitempty"`
		PageSize              int     `yaml:"page_size,omitempty"`
		RequestTimeoutSeconds int     `yaml:"request_timeout_seconds,omitempty"`
		MaxRetries            *int    `yaml:"max_retries,omitempty"`
		WriteRPS              float64 `yaml:"write_rps,omitempty"`
	} `yaml:"params"`
	Bases   map[string]Base `yaml:"bases"`
	Scoring Scoring         `yaml:"scoring"`
}

// Load reads a YAML config file and applies environment overrides
// (INSIGHT_API_KEY, INSIGHT_BASE_URL, INSIGHT_MAX_RETRIES, INSIGHT_PAGE_SIZE).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		APIKey:   fc.Credentials.APIKey,
		BaseURL:  fc.Params.BaseURL,
		PageSize: fc.Params.PageSize,
		WriteRPS: fc.Params.WriteRPS,
		Bases:    fc.Bases,
		Scoring:  fc.Scoring,
	}

	if fc.Params.RequestTimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(fc.Params.RequestTimeoutSeconds) * time.Second
	}
	if fc.Params.MaxRetries != nil {
		cfg.MaxRetries = *fc.Params.MaxRetries
	} else {
		cfg.MaxRetries = DefaultMaxRetries
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required (credentials.api_key or INSIGHT_API_KEY)")
	}

	if err := cfg.Scoring.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects half-specified blend overrides: a lone blend_compliance
// would silently zero the magnitude term downstream.
func (s Scoring) validate() error {
	if s.BlendCompliance < 0 || s.BlendMagnitude < 0 {
		return fmt.Errorf("scoring blend weights must not be negative")
	}
	if (s.BlendCompliance > 0) != (s.BlendMagnitude > 0) {
		return fmt.Errorf("scoring.blend_compliance and scoring.blend_magnitude must be set together")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Bases == nil {
		cfg.Bases = map[string]Base{}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INSIGHT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("INSIGHT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("INSIGHT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("INSIGHT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
}

// BaseFor looks up the base/table pair for a dataset key.
func (c *Config) BaseFor(key string) (Base, error) {
	b, ok := c.Bases[key]
	if !ok {
		return Base{}, fmt.Errorf("no base configured for dataset %q", key)
	}
	if b.BaseID == "" || b.TableID == "" {
		return Base{}, fmt.Errorf("base for dataset %q is missing base_id or table_id", key)
	}
	return b, nil
}
