package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/dshills/folio/internal/config/loader"
	"github.com/dshills/folio/internal/logging"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "FOLIO_"

// settings lists every setting path accepted by Set.
var settings = []string{
	"history.max_size",
	"history.sample_interval",
	"logging.level",
	"text.normalize",
}

type options struct {
	fs      loader.FileSystem
	environ []string
	useEnv  bool
}

// Option configures Load.
type Option func(*options)

// WithFS reads the configuration file from fs.
func WithFS(fs loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithEnviron reads settings from environ instead of the process
// environment.
func WithEnviron(environ []string) Option {
	return func(o *options) {
		o.environ = environ
	}
}

// WithoutEnv skips environment variables.
func WithoutEnv() Option {
	return func(o *options) {
		o.useEnv = false
	}
}

// Load returns the defaults overridden by the file at path and then by
// FOLIO_ environment variables. An empty path skips the file. The result
// is validated.
func Load(path string, opts ...Option) (Config, error) {
	o := options{fs: loader.DefaultFS(), useEnv: true}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()
	if path != "" {
		err := loader.NewFileLoaderWithFS(o.fs).LoadInto(path, &cfg)
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%s: %w", path, ErrFileNotFound)
		}
		if err != nil {
			return Config{}, err
		}
	}

	if o.useEnv {
		env := loader.NewEnvLoader(EnvPrefix)
		if o.environ != nil {
			env = loader.NewEnvLoaderWithEnviron(EnvPrefix, o.environ)
		}
		if err := cfg.ApplyEnv(env.Load()); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv sets each path in values. Paths that name no setting are
// ignored, so unrelated FOLIO_ variables do no harm.
func (c *Config) ApplyEnv(values map[string]string) error {
	for path, value := range values {
		err := c.Set(path, value)
		if errors.Is(err, ErrSettingNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("environment: %w", err)
		}
	}
	return nil
}

// Set parses value and stores it at the dotted setting path.
func (c *Config) Set(path, value string) error {
	value = strings.TrimSpace(value)
	switch path {
	case "history.max_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s = %q: %w", path, value, ErrTypeMismatch)
		}
		c.History.MaxSize = n
	case "history.sample_interval":
		if err := c.History.SampleInterval.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	case "logging.level":
		c.Logging.Level = value
	case "text.normalize":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%s = %q: %w", path, value, err)
		}
		c.Text.Normalize = b
	default:
		return fmt.Errorf("%q: %w", path, ErrSettingNotFound)
	}
	return nil
}

// Settings returns the setting paths accepted by Set.
func Settings() []string {
	return append([]string(nil), settings...)
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.History.MaxSize <= 0 {
		return &ValidationError{Path: "history.max_size", Message: "must be positive", Value: c.History.MaxSize}
	}
	if c.History.SampleInterval.Duration <= 0 {
		return &ValidationError{Path: "history.sample_interval", Message: "must be positive", Value: c.History.SampleInterval}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: c.Logging.Level}
	}
	return nil
}

// LogLevel returns the configured logging level.
func (c Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, ErrTypeMismatch
}
