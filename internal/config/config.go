// Package config holds the kvfilter configuration: an embedded default
// document merged with an optional user file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvfilter/internal/limiter"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// Formats lists the accepted output formats.
var Formats = []string{"yaml", "json", "ndjson", "toml", "table"}

// Config is the merged configuration.
type Config struct {
	Completion Completion     `yaml:"completion"`
	Output     Output         `yaml:"output"`
	Limits     limiter.Config `yaml:"limits"`
	Serve      Serve          `yaml:"serve"`
	Log        Log            `yaml:"log"`
}

// Completion configures candidate generation.
type Completion struct {
	MaxResults    int `yaml:"max_results"`
	MaxComposites int `yaml:"max_composites"`
	HistorySize   int `yaml:"history_size"`
}

// Output configures rendering of matched records.
type Output struct {
	Format  string `yaml:"format"`
	NoColor bool   `yaml:"no_color"`
}

// Serve configures the HTTP service.
type Serve struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	BodyLimit    int           `yaml:"body_limit"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level"`
}

var levels = map[string]int8{"debug": -1, "info": 0, "warn": 1, "error": 2}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// DefaultYAML returns a copy of the embedded default config YAML bytes.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default decodes the embedded defaults.
func Default() (Config, error) {
	var cfg Config
	if len(embeddedDefaultConfig) == 0 {
		return cfg, fmt.Errorf("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults merged with the file at path, when path is set.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Merge(cfg, data)
}

// Merge decodes data over cfg. Keys absent from data keep their value.
func Merge(cfg Config, data []byte) (Config, error) {
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("%w: output.format %q, want one of %v", ErrInvalid, c.Output.Format, Formats)
	}
	if _, ok := levels[c.Log.Level]; !ok {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	if c.Completion.MaxResults < 0 || c.Completion.MaxComposites < 0 || c.Completion.HistorySize < 0 {
		return fmt.Errorf("%w: completion limits must be non-negative", ErrInvalid)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// LogLevel maps Log.Level to a zap level; unknown names map to info.
func (c Config) LogLevel() int8 {
	return levels[c.Log.Level]
}
