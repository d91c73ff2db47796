package engine

import (
	"time"

	"github.com/dshills/folio/internal/engine/history"
	"github.com/dshills/folio/internal/engine/model"
	"github.com/dshills/folio/internal/logging"
)

// Default configuration values.
const (
	DefaultMaxHistory     = history.DefaultMaxSize
	DefaultSampleInterval = history.DefaultSampleInterval
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithRoot sets the document root. It must be a detached Division whose
// slot accepts blocks.
func WithRoot(root *model.Component) Option {
	return func(e *Engine) {
		e.initRoot = root
	}
}

// WithDefinitions registers extra component definitions.
func WithDefinitions(defs ...*model.Definition) Option {
	return func(e *Engine) {
		e.extraDefs = append(e.extraDefs, defs...)
	}
}

// WithFormatters registers extra formatters.
func WithFormatters(fs ...*model.Formatter) Option {
	return func(e *Engine) {
		e.extraFormatters = append(e.extraFormatters, fs...)
	}
}

// WithMaxHistory sets the maximum number of history snapshots.
func WithMaxHistory(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxHistory = max
		}
	}
}

// WithSampleInterval sets how long edits are gathered before a snapshot.
func WithSampleInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sampleInterval = d
		}
	}
}

// WithScheduler sets the timer source used for history sampling.
func WithScheduler(s history.Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNormalize turns NFC normalization of inserted text on or off.
// It is on by default.
func WithNormalize(on bool) Option {
	return func(e *Engine) {
		e.normalize = on
	}
}

// WithReadOnly creates a read-only engine.
// Edit commands will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}
