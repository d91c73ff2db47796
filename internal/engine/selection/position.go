package selection

import (
	"fmt"
	"slices"

	"github.com/dshills/folio/internal/engine/model"
)

// Position is an offset within a slot.
type Position struct {
	Slot   *model.Slot
	Offset int
}

// At returns the position at offset in slot.
func At(slot *model.Slot, offset int) Position {
	return Position{Slot: slot, Offset: offset}
}

// IsZero returns true if the position has no slot.
func (p Position) IsZero() bool {
	return p.Slot == nil
}

// String returns a debug form of the position.
func (p Position) String() string {
	if p.Slot == nil {
		return "<none>"
	}
	owner := "detached"
	if c := p.Slot.Parent(); c != nil {
		owner = c.Name()
	}
	return fmt.Sprintf("%s@%d", owner, p.Offset)
}

// check validates the offset against the slot.
func (p Position) check(op string) error {
	if p.Slot == nil {
		return ErrNoSlot
	}
	if p.Offset < 0 || p.Offset > p.Slot.Length() {
		return &model.BoundsError{Op: op, Index: p.Offset, Length: p.Slot.Length()}
	}
	return nil
}

// Range is a span between two positions in document order.
type Range struct {
	Start Position
	End   Position
}

// Collapsed returns a range with both ends at p.
func Collapsed(p Position) Range {
	return Range{Start: p, End: p}
}

// IsCollapsed returns true if the range is a caret.
func (r Range) IsCollapsed() bool {
	return r.Start == r.End
}

// rootOf returns the component at the top of the tree holding slot.
func rootOf(slot *model.Slot) *model.Component {
	if c := slot.Parent(); c != nil {
		return c.Root()
	}
	return nil
}

// PathOf encodes p as a structural path from the root of its tree.
func PathOf(p Position) ([]int, error) {
	if err := p.check("path"); err != nil {
		return nil, err
	}
	path := []int{p.Offset}
	slot := p.Slot
	for {
		comp := slot.Parent()
		if comp == nil {
			return nil, ErrForeignSlot
		}
		if comp.Kind() != model.KindDivision {
			path = append(path, comp.IndexOfSlot(slot))
		}
		parent := comp.Parent()
		if parent == nil {
			break
		}
		path = append(path, parent.IndexOf(comp))
		slot = parent
	}
	slices.Reverse(path)
	return path, nil
}

// Compare orders two positions of the same tree. It returns -1 when a
// comes first, 1 when b does and 0 when they are equal.
func Compare(a, b Position) (int, error) {
	if a == b {
		return 0, nil
	}
	pa, err := PathOf(a)
	if err != nil {
		return 0, err
	}
	pb, err := PathOf(b)
	if err != nil {
		return 0, err
	}
	if rootOf(a.Slot) != rootOf(b.Slot) {
		return 0, ErrForeignSlot
	}
	return slices.Compare(pa, pb), nil
}
