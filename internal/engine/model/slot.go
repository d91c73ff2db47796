package model

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SlotOption configures a Slot during creation.
type SlotOption func(*Slot)

// WithSlotState sets the initial slot state. Invalid JSON is ignored.
func WithSlotState(state json.RawMessage) SlotOption {
	return func(s *Slot) {
		if len(state) == 0 || json.Valid(state) {
			s.state = cloneBytes(state)
		}
	}
}

// Slot is a content container: an ordered sequence of text runs and
// embedded components, plus a layer of formats over that sequence.
//
// Positions are expressed in one linear index space where each rune and
// each embedded component occupies one index. Every mutation validates its
// indices before changing anything.
//
// Slot is not safe for concurrent use.
type Slot struct {
	schema  []ContentType
	state   []byte
	items   itemList
	length  int
	formats *formatLayer
	index   int
	parent  *Component
}

// NewSlot creates an empty slot that accepts the given content types.
func NewSlot(schema []ContentType, opts ...SlotOption) *Slot {
	s := &Slot{
		schema:  slices.Clone(schema),
		formats: &formatLayer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schema returns the content types the slot accepts.
func (s *Slot) Schema() []ContentType {
	return slices.Clone(s.schema)
}

// Accepts returns true if the slot schema allows t.
func (s *Slot) Accepts(t ContentType) bool {
	return slices.Contains(s.schema, t)
}

// Parent returns the component that owns the slot, or nil.
func (s *Slot) Parent() *Component {
	return s.parent
}

// Length returns the number of index positions in the slot.
func (s *Slot) Length() int {
	return s.length
}

// IsEmpty returns true if the slot has no content.
func (s *Slot) IsEmpty() bool {
	return s.length == 0
}

// Index returns the insertion cursor.
func (s *Slot) Index() int {
	return s.index
}

// Retain moves the insertion cursor to index without changing content.
func (s *Slot) Retain(index int) error {
	if index < 0 || index > s.length {
		return boundsErr("retain", index, s.length)
	}
	s.index = index
	return nil
}

// RetainFormat applies value for f over count positions from the cursor
// and moves the cursor past them. A nil value removes the format.
func (s *Slot) RetainFormat(count int, f *Formatter, value any) error {
	end := s.index + count
	if count < 0 || end > s.length {
		return boundsErr("retain", end, s.length)
	}
	if err := s.ApplyFormat(f, value, s.index, end); err != nil {
		return err
	}
	s.index = end
	return nil
}

// Insert inserts item at the cursor and advances the cursor past it.
func (s *Slot) Insert(item Item, formats ...FormatValue) error {
	return s.InsertAt(s.index, item, formats...)
}

// InsertAt inserts item at index. Formats that reach index from the left
// grow to cover the new content; formats at or after index shift right.
// The given formats are then applied over the inserted span.
// On success the cursor is placed after the inserted content.
func (s *Slot) InsertAt(index int, item Item, formats ...FormatValue) error {
	if index < 0 || index > s.length {
		return boundsErr("insert", index, s.length)
	}
	if err := s.checkItem(item); err != nil {
		return err
	}
	n := item.Len()
	if n == 0 {
		return nil
	}

	s.items.insert(index, item)
	s.length += n
	s.formats.stretch(index, n)
	if c := item.component; c != nil {
		c.parent = s
	}
	for _, fv := range formats {
		if fv.Formatter == nil {
			continue
		}
		s.formats.set(fv.Formatter.Name, fv.Formatter.Priority, index, index+n, normalizeValue(fv.Formatter, fv.Value))
	}
	s.index = index + n

	s.changed(ChangeInsert)
	return nil
}

// InsertFragment inserts the content and formats of f at index.
// Components of f become owned by the slot; insert a clone of f to reuse it.
func (s *Slot) InsertFragment(index int, f *Fragment) error {
	if index < 0 || index > s.length {
		return boundsErr("insert", index, s.length)
	}
	if f == nil || f.length == 0 {
		return nil
	}
	for _, it := range f.items {
		if err := s.checkItem(it); err != nil {
			return err
		}
	}

	s.items.insert(index, f.items...)
	s.length += f.length
	s.formats.stretch(index, f.length)
	for _, it := range f.items {
		if it.component != nil {
			it.component.parent = s
		}
	}
	s.formats.merge(index, f.formats)
	s.index = index + f.length

	s.changed(ChangeInsert)
	return nil
}

// Delete removes count positions starting at start. Formats are clipped to
// the remaining content and dropped when nothing of them remains.
// The removed items, with the formats that covered them rebased to zero,
// are returned as a Fragment. Removed components are detached.
func (s *Slot) Delete(start, count int) (*Fragment, error) {
	if start < 0 || start > s.length {
		return nil, boundsErr("delete", start, s.length)
	}
	if count < 0 || start+count > s.length {
		return nil, boundsErr("delete", start+count, s.length)
	}
	if count == 0 {
		return NewFragment(), nil
	}

	end := start + count
	frag := &Fragment{
		formats: s.formats.extract(start, end),
		length:  count,
	}
	frag.items = s.items.remove(start, end)
	s.length -= count
	s.formats.shrink(start, count)
	for _, it := range frag.items {
		if it.component != nil {
			it.component.parent = nil
		}
	}
	s.index = start

	s.changed(ChangeDelete)
	return frag, nil
}

// ApplyFormat applies value for f over [start, end). Existing ranges of f
// inside the span are replaced. A nil value is the same as UnapplyFormat.
func (s *Slot) ApplyFormat(f *Formatter, value any, start, end int) error {
	if err := s.checkRange("format", start, end); err != nil {
		return err
	}
	if f == nil || start == end {
		return nil
	}
	s.formats.set(f.Name, f.Priority, start, end, normalizeValue(f, value))
	s.changed(ChangeFormat)
	return nil
}

// UnapplyFormat removes f from [start, end), splitting ranges that extend
// past either side of the span.
func (s *Slot) UnapplyFormat(f *Formatter, start, end int) error {
	if err := s.checkRange("format", start, end); err != nil {
		return err
	}
	if f == nil || start == end {
		return nil
	}
	s.formats.set(f.Name, f.Priority, start, end, nil)
	s.changed(ChangeFormat)
	return nil
}

// Cut splits the slot at index and returns a new slot holding the tail.
// The new slot has the same schema and a copy of the state.
func (s *Slot) Cut(index int) (*Slot, error) {
	tail := NewSlot(s.schema, WithSlotState(s.state))
	if err := s.CutTo(tail, index); err != nil {
		return nil, err
	}
	tail.index = 0
	return tail, nil
}

// CutTo moves the content from index to the end of the slot, with its
// formats, onto the end of target.
func (s *Slot) CutTo(target *Slot, index int) error {
	if target == s {
		return ErrSameSlot
	}
	if index < 0 || index > s.length {
		return boundsErr("cut", index, s.length)
	}
	tail := s.items.slice(index, s.length)
	for _, it := range tail {
		if !target.Accepts(it.ContentType()) {
			return fmt.Errorf("cut %s into slot: %w", it.ContentType(), ErrContentNotAllowed)
		}
		if c := it.component; c != nil && c.isAncestorOfSlot(target) {
			return ErrCycle
		}
	}

	frag, err := s.Delete(index, s.length-index)
	if err != nil {
		return err
	}
	return target.InsertFragment(target.length, frag)
}

// ContentAt returns the single item at index. For text this is one rune.
func (s *Slot) ContentAt(index int) (Item, error) {
	if index < 0 || index >= s.length {
		return Item{}, boundsErr("content", index, s.length)
	}
	return s.items.slice(index, index+1)[0], nil
}

// SliceContent returns the items in [start, end). Embedded components are
// returned by reference.
func (s *Slot) SliceContent(start, end int) ([]Item, error) {
	if err := s.checkRange("slice", start, end); err != nil {
		return nil, err
	}
	return s.items.slice(start, end), nil
}

// Content returns all items.
func (s *Slot) Content() []Item {
	return slices.Clone(s.items)
}

// IndexOf returns the index of c in the slot, or -1.
func (s *Slot) IndexOf(c *Component) int {
	if c == nil || c.parent != s {
		return -1
	}
	pos := 0
	for _, it := range s.items {
		if it.component == c {
			return pos
		}
		pos += it.Len()
	}
	return -1
}

// Components returns the embedded components in order.
func (s *Slot) Components() []*Component {
	var out []*Component
	for _, it := range s.items {
		if it.component != nil {
			out = append(out, it.component)
		}
	}
	return out
}

// Text returns the slot text with U+FFFC in place of each component,
// so rune offsets in the result match slot indices.
func (s *Slot) Text() string {
	return s.items.text()
}

// Formats returns every format entry ordered by priority.
func (s *Slot) Formats() []FormatItem {
	return s.formats.items()
}

// FormatRanges returns the ranges of the named formatter.
func (s *Slot) FormatRanges(name string) []FormatRange {
	return s.formats.ranges(name)
}

// FormatsAt returns the formats covering the item at index.
func (s *Slot) FormatsAt(index int) []FormatItem {
	return s.formats.at(index)
}

// State returns a copy of the slot state.
func (s *Slot) State() json.RawMessage {
	return cloneBytes(s.state)
}

// SetState replaces the slot state.
func (s *Slot) SetState(state json.RawMessage) error {
	if len(state) > 0 && !json.Valid(state) {
		return ErrInvalidState
	}
	s.state = cloneBytes(state)
	s.changed(ChangeState)
	return nil
}

// StateValue reads a value from the slot state with a gjson path.
func (s *Slot) StateValue(path string) gjson.Result {
	return gjson.GetBytes(s.state, path)
}

// SetStateValue writes value into the slot state at a sjson path.
func (s *Slot) SetStateValue(path string, value any) error {
	state, err := sjson.SetBytes(cloneBytes(s.state), path, value)
	if err != nil {
		return fmt.Errorf("set slot state %q: %w", path, err)
	}
	s.state = state
	s.changed(ChangeState)
	return nil
}

// Clone returns a deep copy of the slot: content, nested components,
// formats and state. The copy has no parent.
func (s *Slot) Clone() *Slot {
	out := &Slot{
		schema:  slices.Clone(s.schema),
		state:   cloneBytes(s.state),
		items:   make(itemList, len(s.items)),
		length:  s.length,
		formats: s.formats.clone(),
		index:   s.index,
	}
	for i, it := range s.items {
		if it.component != nil {
			c := it.component.Clone()
			c.parent = out
			out.items[i] = Embed(c)
			continue
		}
		out.items[i] = it
	}
	return out
}

func (s *Slot) checkRange(op string, start, end int) error {
	if start < 0 || start > s.length {
		return boundsErr(op, start, s.length)
	}
	if end < start || end > s.length {
		return boundsErr(op, end, s.length)
	}
	return nil
}

func (s *Slot) checkItem(item Item) error {
	if !s.Accepts(item.ContentType()) {
		return fmt.Errorf("insert %s: %w", item.ContentType(), ErrContentNotAllowed)
	}
	c := item.component
	if c == nil {
		return nil
	}
	if c.parent != nil {
		return fmt.Errorf("insert component %s: %w", c.Name(), ErrAlreadyAttached)
	}
	if c.isAncestorOfSlot(s) {
		return fmt.Errorf("insert component %s: %w", c.Name(), ErrCycle)
	}
	return nil
}

// changed reports a mutation of this slot up the tree.
func (s *Slot) changed(op ChangeOp) {
	if s.parent != nil {
		s.parent.propagate(Change{Op: op, Slot: s, Component: s.parent})
	}
}

func normalizeValue(f *Formatter, v any) any {
	if v != nil && f.Normalize != nil {
		v = f.Normalize(v)
	}
	return plainValue(v)
}
