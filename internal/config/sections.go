package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every folio setting.
type Config struct {
	History HistoryConfig `toml:"history" yaml:"history"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Text    TextConfig    `toml:"text" yaml:"text"`
}

// HistoryConfig configures snapshot history.
type HistoryConfig struct {
	// MaxSize is the maximum number of snapshots kept.
	MaxSize int `toml:"max_size" yaml:"max_size"`

	// SampleInterval is how long edits are gathered before a snapshot.
	SampleInterval Duration `toml:"sample_interval" yaml:"sample_interval"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is the logging verbosity level ("debug", "info", "warn", "error").
	Level string `toml:"level" yaml:"level"`
}

// TextConfig configures text insertion.
type TextConfig struct {
	// Normalize turns on NFC normalization of inserted text.
	Normalize bool `toml:"normalize" yaml:"normalize"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{
			MaxSize:        500,
			SampleInterval: Duration{time.Second},
		},
		Logging: LoggingConfig{Level: "info"},
		Text:    TextConfig{Normalize: true},
	}
}

// Duration is a time.Duration written as a string such as "750ms".
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("duration %q: %w", b, ErrTypeMismatch)
	}
	d.Duration = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a string: %w", value.Line, ErrTypeMismatch)
	}
	return d.UnmarshalText([]byte(value.Value))
}
