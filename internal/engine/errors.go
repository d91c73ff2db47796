package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrClosed indicates use of a closed engine.
	ErrClosed = errors.New("engine is closed")

	// ErrReadOnly indicates an edit was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrNoSelection indicates a command that needs a caret ran with an
	// empty selection.
	ErrNoSelection = errors.New("no selection")

	// ErrStaleSelection indicates the selection points at content that is
	// no longer in the document.
	ErrStaleSelection = errors.New("selection is not in the document")

	// ErrEmptyRange indicates a format command ran on a collapsed selection.
	ErrEmptyRange = errors.New("selection is collapsed")

	// ErrNotFlag indicates a toggle of a format that is not on/off.
	ErrNotFlag = errors.New("format is not an on/off flag")

	// ErrUnsupportedRange indicates a deletion across slots that cannot be
	// merged, such as from a paragraph into a table cell.
	ErrUnsupportedRange = errors.New("selection spans slots that cannot be merged")

	// ErrCannotBreak indicates the caret's slot has no place for a new
	// paragraph or item.
	ErrCannotBreak = errors.New("slot cannot be split here")

	// ErrNothingToUndo indicates the history is at its oldest entry.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the history is at its newest entry.
	ErrNothingToRedo = errors.New("nothing to redo")
)
