// Package model provides the document content model: slots, the format
// layer over them, and the component tree built from slots.
//
// # Slots
//
// A Slot is a content container. It holds an ordered sequence of items,
// each either a text run or an embedded Component, and an independent
// layer of formats. All positions use one linear index space in which each
// rune and each embedded component occupies exactly one index:
//
//	s := model.NewSlot([]model.ContentType{model.ContentText})
//	s.Insert(model.Text("Hello world"))    // length 11
//	s.ApplyFormat(bold, true, 0, 5)         // "Hello" is bold
//	tail, _ := s.Cut(5)                     // s = "Hello", tail = " world"
//
// Format ranges of different formatters may overlap freely. Ranges of one
// formatter never overlap each other; applying a value replaces the
// overlapped parts, and UnapplyFormat punches a hole. Inserting content
// grows a range that reaches the insertion point from the left and shifts
// a range that starts at or after it. Deleting content clips ranges and
// drops those left empty.
//
// # Components
//
// A Component owns slots according to its Kind:
//
//   - KindDivision: exactly one slot (a paragraph)
//   - KindBranch: named slots (a table with head and body)
//   - KindBackbone: an ordered, resizable list of slots (list items)
//   - KindLeaf: no slots (an image)
//
// Components are created from a Definition, usually through a Registry.
// Each slot has a back-reference to its component and each component to the
// slot holding it. Attaching a node that already has an owner fails with
// ErrAlreadyAttached, and attaching an ancestor fails with ErrCycle.
//
// # Cloning
//
// Component.Clone and Slot.Clone produce deep copies that share no mutable
// data with the original. The history package relies on this: a snapshot
// holds a clone while the live tree keeps changing.
//
// # Changes
//
// Every mutation is reported to OnChange observers of the owning component
// and of each ancestor, so observing the root sees the whole document.
//
// # Errors
//
// Out-of-range indices return a *BoundsError wrapping ErrOutOfBounds.
// Indices are validated before anything is mutated.
package model
