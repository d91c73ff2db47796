package selection

import (
	"errors"
	"fmt"
)

// Errors returned by selection operations.
var (
	// ErrPositionNotFound indicates a structural path that does not resolve.
	ErrPositionNotFound = errors.New("position not found")

	// ErrForeignSlot indicates a slot that is not part of the selection's document.
	ErrForeignSlot = errors.New("slot is not part of the document")

	// ErrNoSlot indicates a position without a slot.
	ErrNoSlot = errors.New("position has no slot")
)

// LookupError reports where resolution of a structural path failed.
type LookupError struct {
	Path   []int
	Depth  int
	Reason string
}

// Error implements error.
func (e *LookupError) Error() string {
	return fmt.Sprintf("resolve path %v at %d: %s", e.Path, e.Depth, e.Reason)
}

// Unwrap returns ErrPositionNotFound.
func (e *LookupError) Unwrap() error {
	return ErrPositionNotFound
}
