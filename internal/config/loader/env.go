package loader

import (
	"os"
	"strings"
)

// EnvLoader loads settings from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "FOLIO_")
	mapping map[string]string // Env var -> config path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "FOLIO_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// NewEnvLoaderWithEnviron creates a loader reading variables from environ
// instead of the process environment.
func NewEnvLoaderWithEnviron(prefix string, environ []string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return environ }
	return l
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "HISTORY_MAX_SIZE":        "history.max_size",
		prefix + "HISTORY_SAMPLE_INTERVAL": "history.sample_interval",
		prefix + "LOG_LEVEL":               "logging.level",
		prefix + "LOGGING_LEVEL":           "logging.level",
		prefix + "TEXT_NORMALIZE":          "text.normalize",
	}
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// Load returns the raw value of every prefixed variable keyed by setting
// path. Variables without a mapping are converted by envToPath.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() map[string]string {
	out := make(map[string]string)
	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path != "" {
			out[path] = value
		}
	}
	return out
}

// envToPath converts FOLIO_HISTORY_MAX_SIZE to history.max_size.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return section + "." + key
}
