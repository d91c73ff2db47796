package history

import (
	"sync"
	"time"

	"github.com/dshills/folio/internal/logging"
)

// Defaults.
const (
	DefaultMaxSize        = 500
	DefaultSampleInterval = time.Second
)

// Option configures a History.
type Option func(*History)

// WithMaxSize sets the stack bound. Values below 1 are ignored.
func WithMaxSize(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.maxSize = n
		}
	}
}

// WithSampleInterval sets the sampling window. Values below 1ns are ignored.
func WithSampleInterval(d time.Duration) Option {
	return func(h *History) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(h *History) {
		if s != nil {
			h.scheduler = s
		}
	}
}

// WithLocker sets the lock held while a sampled snapshot is captured.
func WithLocker(l sync.Locker) Option {
	return func(h *History) {
		h.locker = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.logger = l.WithComponent("history")
		}
	}
}

// WithClock sets the time source for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		if now != nil {
			h.now = now
		}
	}
}
