package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/folio/internal/engine/model"
	"github.com/dshills/folio/internal/engine/selection"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/notify"
)

// ChangeEvent reports the stack after it changed.
type ChangeEvent struct {
	Len    int
	Cursor int
}

// UsedEvent reports a snapshot applied by Back or Forward.
type UsedEvent struct {
	ID     uuid.UUID
	Cursor int
	// Err is the path resolution error, if the selection could not be restored.
	Err error
}

// History is a bounded stack of snapshots with a cursor.
type History struct {
	mu sync.Mutex

	root *model.Component
	sel  *selection.Selection

	stack  []*Snapshot
	cursor int

	maxSize   int
	interval  time.Duration
	scheduler Scheduler
	locker    sync.Locker
	logger    *logging.Logger
	now       func() time.Time

	sub       *notify.Subscription[model.Change]
	pending   Timer
	gen       uint64
	destroyed bool

	changes notify.Notifier[ChangeEvent]
	used    notify.Notifier[UsedEvent]
}

// New creates a history for root. sel may be nil, in which case snapshots
// carry no paths and navigation restores content only.
//
// The default scheduler is RealScheduler, whose timer goroutine clones the
// root. Record and Listen return ErrNoLocker unless WithLocker names the
// lock that guards edits to root, or WithScheduler supplies a scheduler
// that runs callbacks where edits happen.
func New(root *model.Component, sel *selection.Selection, opts ...Option) *History {
	h := &History{
		root:      root,
		sel:       sel,
		maxSize:   DefaultMaxSize,
		interval:  DefaultSampleInterval,
		scheduler: RealScheduler,
		logger:    logging.Null(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record pushes a snapshot of the current document and starts sampling
// root changes.
func (h *History) Record() error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return ErrDestroyed
	}
	if err := h.checkLocker(); err != nil {
		h.mu.Unlock()
		return err
	}
	snap, err := h.captureLocked()
	if err != nil {
		h.mu.Unlock()
		return err
	}
	ev := h.pushLocked(snap)
	h.listenLocked()
	h.mu.Unlock()

	h.changes.Notify(ev)
	return nil
}

// Capture returns a snapshot of the current document without pushing it.
func (h *History) Capture() (*Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.captureLocked()
}

// Push appends snap after the cursor, discarding any redo entries, and
// evicts the oldest entry when the stack is over its bound.
func (h *History) Push(snap *Snapshot) {
	if snap == nil {
		return
	}
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return
	}
	ev := h.pushLocked(snap)
	h.mu.Unlock()

	h.changes.Notify(ev)
}

// Flush captures a pending sample now. It does nothing when no change is
// waiting to be sampled.
func (h *History) Flush() error {
	h.mu.Lock()
	if h.pending == nil {
		h.mu.Unlock()
		return nil
	}
	h.cancelLocked()
	ev, pushed, err := h.sampleLocked()
	h.mu.Unlock()

	if pushed {
		h.changes.Notify(ev)
	}
	return err
}

// Back applies the previous snapshot. It is a no-op at the oldest entry.
func (h *History) Back() error {
	return h.move(-1)
}

// Forward applies the next snapshot. It is a no-op at the newest entry.
func (h *History) Forward() error {
	return h.move(1)
}

func (h *History) move(delta int) error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return ErrDestroyed
	}
	target := h.cursor + delta
	if target < 0 || target >= len(h.stack) {
		h.mu.Unlock()
		return nil
	}
	ev, err := h.applyLocked(target)
	h.mu.Unlock()

	if err != nil && ev == nil {
		return err
	}
	h.used.Notify(*ev)
	return err
}

// applyLocked restores the snapshot at index into the live root. The
// returned event is nil if the content could not be restored.
func (h *History) applyLocked(index int) (*UsedEvent, error) {
	listening := h.sub != nil
	h.stopLocked()
	defer func() {
		if listening {
			h.listenLocked()
		}
	}()

	snap := h.stack[index]
	content, paths := snap.Restore()
	if err := h.root.ReplaceContent(content); err != nil {
		return nil, fmt.Errorf("restore snapshot %s: %w", snap.ID, err)
	}
	h.cursor = index

	ev := &UsedEvent{ID: snap.ID, Cursor: index}
	if h.sel != nil {
		if err := h.sel.UsePaths(paths); err != nil {
			h.logger.WithField("snapshot", snap.ID).Warn("selection not restored: %v", err)
			ev.Err = err
		}
	}
	h.logger.Debug("applied snapshot %d of %d", index+1, len(h.stack))
	return ev, ev.Err
}

// CanBack returns true if Back would apply a snapshot.
func (h *History) CanBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

// CanForward returns true if Forward would apply a snapshot.
func (h *History) CanForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < len(h.stack)-1
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}

// Cursor returns the index of the current entry.
func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Current returns the entry at the cursor, or nil for an empty stack.
func (h *History) Current() *Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.stack) == 0 {
		return nil
	}
	return h.stack[h.cursor]
}

// Snapshot returns the entry at index.
func (h *History) Snapshot(index int) (*Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.stack) {
		return nil, false
	}
	return h.stack[index], true
}

// Listening returns true while root changes are being sampled.
func (h *History) Listening() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sub != nil
}

// Clean empties the stack. It does not touch the document and does not
// emit a used event.
func (h *History) Clean() {
	h.mu.Lock()
	h.stack = nil
	h.cursor = 0
	ev := ChangeEvent{}
	h.mu.Unlock()

	h.changes.Notify(ev)
}

// StopListen stops sampling root changes and cancels a pending sample.
func (h *History) StopListen() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

// Listen starts sampling root changes without pushing a snapshot.
func (h *History) Listen() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return ErrDestroyed
	}
	if err := h.checkLocker(); err != nil {
		return err
	}
	h.listenLocked()
	return nil
}

func (h *History) checkLocker() error {
	if h.locker == nil && h.scheduler == RealScheduler {
		return ErrNoLocker
	}
	return nil
}

// Destroy stops sampling, drops the stack and every observer.
func (h *History) Destroy() {
	h.mu.Lock()
	h.stopLocked()
	h.stack = nil
	h.cursor = 0
	h.destroyed = true
	h.mu.Unlock()

	h.changes.Close()
	h.used.Close()
}

// OnChange subscribes to stack changes.
func (h *History) OnChange(observer notify.Observer[ChangeEvent]) *notify.Subscription[ChangeEvent] {
	return h.changes.Subscribe(observer)
}

// OnUsed subscribes to snapshot applications.
func (h *History) OnUsed(observer notify.Observer[UsedEvent]) *notify.Subscription[UsedEvent] {
	return h.used.Subscribe(observer)
}

func (h *History) captureLocked() (*Snapshot, error) {
	var paths []selection.Paths
	if h.sel != nil {
		p, err := h.sel.Paths()
		if err != nil {
			h.logger.Warn("selection not captured: %v", err)
		} else {
			paths = p
		}
	}
	return NewSnapshot(h.root, paths, h.now())
}

func (h *History) pushLocked(snap *Snapshot) ChangeEvent {
	if len(h.stack) > 0 {
		h.stack = h.stack[:h.cursor+1]
	}
	h.stack = append(h.stack, snap)
	if over := len(h.stack) - h.maxSize; over > 0 {
		clear(h.stack[:over])
		h.stack = h.stack[over:]
	}
	h.cursor = len(h.stack) - 1
	return ChangeEvent{Len: len(h.stack), Cursor: h.cursor}
}

func (h *History) listenLocked() {
	if h.sub == nil && !h.destroyed {
		h.sub = h.root.OnChange(h.onRootChange)
	}
}

func (h *History) stopLocked() {
	h.sub.Unsubscribe()
	h.sub = nil
	h.cancelLocked()
}

func (h *History) cancelLocked() {
	if h.pending != nil {
		h.pending.Stop()
		h.pending = nil
	}
	h.gen++
}

// onRootChange arms the sample timer unless one is already pending.
func (h *History) onRootChange(model.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sub == nil || h.pending != nil {
		return
	}
	h.gen++
	gen := h.gen
	h.pending = h.scheduler.AfterFunc(h.interval, func() { h.sample(gen) })
}

// sample runs on the timer goroutine.
func (h *History) sample(gen uint64) {
	if h.locker != nil {
		h.locker.Lock()
		defer h.locker.Unlock()
	}
	h.mu.Lock()
	if gen != h.gen || h.pending == nil {
		h.mu.Unlock()
		return
	}
	h.pending = nil
	ev, pushed, err := h.sampleLocked()
	h.mu.Unlock()

	if err != nil {
		h.logger.Error("sample failed: %v", err)
	}
	if pushed {
		h.changes.Notify(ev)
	}
}

// sampleLocked captures and pushes a snapshot unless its content matches
// the entry at the cursor.
func (h *History) sampleLocked() (ChangeEvent, bool, error) {
	snap, err := h.captureLocked()
	if err != nil {
		return ChangeEvent{}, false, err
	}
	if len(h.stack) > 0 && h.stack[h.cursor].Digest == snap.Digest {
		h.logger.Debug("sample skipped: content unchanged")
		return ChangeEvent{}, false, nil
	}
	return h.pushLocked(snap), true, nil
}

// IsLookupError reports whether err came from an unresolvable path.
func IsLookupError(err error) bool {
	var le *selection.LookupError
	return errors.As(err, &le)
}
