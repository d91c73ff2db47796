package history

import "errors"

// Errors returned by history operations.
var (
	// ErrDestroyed indicates use of a destroyed history.
	ErrDestroyed = errors.New("history destroyed")

	// ErrNoSelection indicates a history created without a selection.
	ErrNoSelection = errors.New("history has no selection")

	// ErrNoLocker indicates recording with the real scheduler but no
	// locker to serialize the sample goroutine with edits.
	ErrNoLocker = errors.New("history sampling with the real scheduler needs a locker")

	// ErrInvalidExport indicates an export stream that cannot be imported.
	ErrInvalidExport = errors.New("invalid history export")
)
