package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tool-wide settings. Values absent from the file keep
// their defaults, so a partial config is always valid input.
type Config struct {
	Export struct {
		FrameRate   int     `yaml:"frame_rate"`
		MaskOpacity float64 `yaml:"mask_opacity"`
		BlurRadius  int     `yaml:"blur_radius"`
		FontScale   float64 `yaml:"font_scale"`
	} `yaml:"export"`

	History struct {
		Limit int `yaml:"limit"`
	} `yaml:"history"`

	Speech struct {
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Voice       string        `yaml:"voice"`
		MaxAttempts int           `yaml:"max_attempts"`
		BaseDelay   time.Duration `yaml:"base_delay"`
		MaxDelay    time.Duration `yaml:"max_delay"`
	} `yaml:"speech"`

	Translate struct {
		Provider       string `yaml:"provider"`
		Model          string `yaml:"model"`
		TargetLanguage string `yaml:"target_language"`
		BatchSize      int    `yaml:"batch_size"`
		Concurrency    int    `yaml:"concurrency"`
	} `yaml:"translate"`
}

func Default() *Config {
	c := &Config{}

	c.Export.FrameRate = 30
	c.Export.MaskOpacity = 60
	c.Export.BlurRadius = 6
	c.Export.FontScale = 0.045

	c.History.Limit = 50

	c.Speech.MaxAttempts = 4
	c.Speech.BaseDelay = time.Second
	c.Speech.MaxDelay = 30 * time.Second

	c.Translate.Provider = "gemini"
	c.Translate.BatchSize = 50
	c.Translate.Concurrency = 3

	return c
}

// Load reads a YAML config from path. A missing file is not an error:
// the defaults are returned so the tool runs without any config at all.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = "veilcut.yaml"
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Speech.BaseURL = strings.TrimSpace(c.Speech.BaseURL)
	c.Translate.Provider = strings.TrimSpace(
		strings.ToLower(c.Translate.Provider),
	)

	if c.Export.FrameRate <= 0 {
		c.Export.FrameRate = 30
	}
	if c.Export.BlurRadius <= 0 {
		c.Export.BlurRadius = 6
	}
	if c.Export.FontScale <= 0 {
		c.Export.FontScale = 0.045
	}
	if c.History.Limit <= 0 {
		c.History.Limit = 50
	}
	if c.Translate.BatchSize <= 0 {
		c.Translate.BatchSize = 50
	}
	if c.Translate.Concurrency <= 0 {
		c.Translate.Concurrency = 3
	}
	if c.Speech.MaxAttempts <= 0 {
		c.Speech.MaxAttempts = 4
	}
	if c.Speech.BaseDelay <= 0 {
		c.Speech.BaseDelay = time.Second
	}
	if c.Speech.MaxDelay < c.Speech.BaseDelay {
		c.Speech.MaxDelay = 30 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Export.MaskOpacity < 0 || c.Export.MaskOpacity > 100 {
		return fmt.Errorf(
			"export.mask_opacity must be between 0 and 100, got %v",
			c.Export.MaskOpacity,
		)
	}

	switch c.Translate.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf(
			"translate.provider must be gemini, openai or anthropic, got %q",
			c.Translate.Provider,
		)
	}

	return nil
}
