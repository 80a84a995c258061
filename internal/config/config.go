// Package config loads shadegraph settings from an optional file and
// SHADEGRAPH_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SHADEGRAPH_LOG_LEVEL.
const EnvPrefix = "SHADEGRAPH"

// Config holds all application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Output  OutputConfig  `mapstructure:"output"`
	Store   StoreConfig   `mapstructure:"store"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	// Path of the SQLite compilation log. Empty disables recording.
	Path string `mapstructure:"path"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

var defaults = map[string]any{
	"log.level":             "info",
	"log.format":            "text",
	"output.format":         "text",
	"store.path":            "",
	"tracing.otlp_endpoint": "",
	"tracing.service_name":  "shadegraph",
	"tracing.sample_rate":   1.0,
}

// Default returns the configuration used when no file or environment
// variable overrides anything.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Output:  OutputConfig{Format: "text"},
		Tracing: TracingConfig{ServiceName: "shadegraph", SampleRate: 1.0},
	}
}

// Load reads configuration from path (skipped when empty) and the environment.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if _, err := ParseLevel(c.Log.Level); err != nil {
		warnings = append(warnings, fmt.Sprintf("log level %q is not recognised, using info", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		warnings = append(warnings, fmt.Sprintf("log format %q is not recognised, using text", c.Log.Format))
	}
	if c.Output.Format != "text" && c.Output.Format != "json" {
		warnings = append(warnings, fmt.Sprintf("output format %q is not recognised", c.Output.Format))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		warnings = append(warnings, fmt.Sprintf("tracing sample rate %.2f is outside [0, 1]", c.Tracing.SampleRate))
	}
	return warnings
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
