package script

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("script state is closed")

	// ErrNoEngine is returned when a state is created without an engine.
	ErrNoEngine = errors.New("script state needs an engine")
)
