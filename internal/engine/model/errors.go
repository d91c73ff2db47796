package model

import (
	"errors"
	"fmt"
)

// Errors returned by model operations.
var (
	// ErrOutOfBounds indicates an index outside a slot or slot list.
	ErrOutOfBounds = errors.New("index out of bounds")

	// ErrContentNotAllowed indicates the slot schema rejects an item.
	ErrContentNotAllowed = errors.New("content type not allowed in slot")

	// ErrAlreadyAttached indicates a slot or component already has an owner.
	ErrAlreadyAttached = errors.New("already attached")

	// ErrCycle indicates an attachment would make a node its own ancestor.
	ErrCycle = errors.New("attachment would create a cycle")

	// ErrKindMismatch indicates an operation the component kind does not support.
	ErrKindMismatch = errors.New("operation not supported by component kind")

	// ErrSameSlot indicates a slot was given as its own target.
	ErrSameSlot = errors.New("source and target slot are the same")

	// ErrDuplicateName indicates a name is already registered or in use.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrUnknownComponent indicates a component name missing from the registry.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrUnknownFormatter indicates a formatter name missing from the registry.
	ErrUnknownFormatter = errors.New("unknown formatter")

	// ErrInvalidState indicates state bytes that are not valid JSON.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidSlots indicates init slots that do not fit the component kind.
	ErrInvalidSlots = errors.New("invalid slots for component kind")
)

// BoundsError reports an index outside [0, Length] for an operation.
type BoundsError struct {
	Op     string
	Index  int
	Length int
}

// Error implements error.
func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: index %d out of bounds [0,%d]", e.Op, e.Index, e.Length)
}

// Unwrap returns ErrOutOfBounds.
func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

func boundsErr(op string, index, length int) error {
	return &BoundsError{Op: op, Index: index, Length: length}
}
