package model

import (
	"fmt"
	"slices"
)

// Fragment is detached slot content: items plus formats rebased to zero.
// Slot.Delete returns one and Slot.InsertFragment consumes one, which makes
// fragments the unit of cut, copy and paste.
type Fragment struct {
	items   itemList
	formats *formatLayer
	length  int
}

// NewFragment creates an empty fragment.
func NewFragment() *Fragment {
	return &Fragment{formats: &formatLayer{}}
}

// Append adds item to the end of the fragment with the given formats.
func (f *Fragment) Append(item Item, formats ...FormatValue) error {
	if c := item.component; c != nil && c.parent != nil {
		return fmt.Errorf("append component %s: %w", c.Name(), ErrAlreadyAttached)
	}
	n := item.Len()
	if n == 0 {
		return nil
	}
	start := f.length
	f.items.insert(start, item)
	f.length += n
	for _, fv := range formats {
		if fv.Formatter == nil {
			continue
		}
		f.formats.set(fv.Formatter.Name, fv.Formatter.Priority, start, start+n, normalizeValue(fv.Formatter, fv.Value))
	}
	return nil
}

// Len returns the number of index positions in the fragment.
func (f *Fragment) Len() int {
	return f.length
}

// IsEmpty returns true if the fragment has no content.
func (f *Fragment) IsEmpty() bool {
	return f.length == 0
}

// Items returns the fragment content.
func (f *Fragment) Items() []Item {
	return slices.Clone(f.items)
}

// Formats returns the fragment formats ordered by priority.
func (f *Fragment) Formats() []FormatItem {
	return f.formats.items()
}

// FormatRanges returns the ranges of the named formatter.
func (f *Fragment) FormatRanges(name string) []FormatRange {
	return f.formats.ranges(name)
}

// Text returns the fragment text with U+FFFC in place of components.
func (f *Fragment) Text() string {
	return f.items.text()
}

// Clone returns a deep copy of the fragment.
func (f *Fragment) Clone() *Fragment {
	out := &Fragment{
		items:   make(itemList, len(f.items)),
		formats: f.formats.clone(),
		length:  f.length,
	}
	for i, it := range f.items {
		if it.component != nil {
			out.items[i] = Embed(it.component.Clone())
			continue
		}
		out.items[i] = it
	}
	return out
}
