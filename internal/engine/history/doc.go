// Package history provides snapshot-based undo and redo for a document.
//
// Every entry of the stack is a Snapshot: a frozen deep clone of the root
// component plus the selection encoded as structural paths. Moving through
// the stack clones the target snapshot, replaces the content of the live
// root with it and restores the selection by resolving the stored paths
// against the restored tree.
//
// # Recording
//
// Record takes an immediate snapshot and subscribes to root changes. The
// first change after a capture arms one timer for the sample interval; when
// it fires one snapshot is taken. Edits that keep arriving faster than the
// interval still produce one snapshot per interval instead of waiting for a
// pause:
//
//	h := history.New(root, sel,
//	    history.WithMaxSize(200),
//	    history.WithSampleInterval(500*time.Millisecond),
//	    history.WithLocker(&engineMu),
//	)
//	if err := h.Record(); err != nil {
//	    return err
//	}
//
// A sampled snapshot whose content digest equals the current entry is
// dropped. Flush captures a pending sample immediately, which callers use
// before Back so recent edits become a redo point.
//
// # Navigation
//
// Back and Forward are no-ops at the ends of the stack. A new entry pushed
// after Back discards every entry after the cursor. When the stack exceeds
// MaxSize the oldest entry is evicted.
//
// If stored paths no longer resolve, the content stays restored, the live
// selection is left as it was, and the *selection.LookupError is both
// returned and reported in the UsedEvent.
//
// # Events
//
// OnChange fires when the stack changes (push, clean, import). OnUsed fires
// when a snapshot is applied by Back or Forward. Observers are called after
// the history lock is released.
//
// # Concurrency
//
// The sample timer runs on its own goroutine. When a Locker is configured
// it is held while a sampled snapshot is taken, so the capture never sees a
// document in the middle of an edit. With the default RealScheduler a
// Locker is required and Record returns ErrNoLocker without one. A custom
// Scheduler may instead run callbacks on the editing goroutine.
package history
