package model

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/folio/internal/notify"
)

// Kind is the structural shape of a component.
type Kind int

const (
	// KindDivision owns exactly one slot.
	KindDivision Kind = iota
	// KindBranch owns a set of named slots.
	KindBranch
	// KindBackbone owns an ordered, resizable list of slots.
	KindBackbone
	// KindLeaf owns no slots.
	KindLeaf
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDivision:
		return "division"
	case KindBranch:
		return "branch"
	case KindBackbone:
		return "backbone"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// ChangeOp categorizes a model change.
type ChangeOp int

const (
	ChangeInsert ChangeOp = iota
	ChangeDelete
	ChangeFormat
	ChangeState
	ChangeSlots
	ChangeReplace
)

// String returns the change op name.
func (op ChangeOp) String() string {
	switch op {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeFormat:
		return "format"
	case ChangeState:
		return "state"
	case ChangeSlots:
		return "slots"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change describes a mutation somewhere below a component.
type Change struct {
	Op ChangeOp
	// Slot is the mutated slot; nil for component-level changes.
	Slot *Slot
	// Component is the component owning the mutated slot or state.
	Component *Component
}

// Component is a node of the document tree. Its Kind decides how it owns
// slots; the Definition gives it a name and a content type.
//
// A component is attached to at most one slot and a slot to at most one
// component, so the tree is acyclic by construction.
type Component struct {
	def    *Definition
	state  []byte
	parent *Slot
	slots  []*Slot
	names  []string // parallel to slots for KindBranch

	changes notify.Notifier[Change]
}

// Definition returns the component definition.
func (c *Component) Definition() *Definition {
	return c.def
}

// Name returns the component type name.
func (c *Component) Name() string {
	return c.def.Name
}

// Kind returns the structural kind.
func (c *Component) Kind() Kind {
	return c.def.Kind
}

// Parent returns the slot holding the component, or nil for a root.
func (c *Component) Parent() *Slot {
	return c.parent
}

// SlotCount returns the number of owned slots.
func (c *Component) SlotCount() int {
	return len(c.slots)
}

// SlotAt returns the slot at index.
func (c *Component) SlotAt(index int) (*Slot, error) {
	if index < 0 || index >= len(c.slots) {
		return nil, boundsErr("slot", index, len(c.slots))
	}
	return c.slots[index], nil
}

// IndexOfSlot returns the position of s among the owned slots, or -1.
func (c *Component) IndexOfSlot(s *Slot) int {
	if s == nil || s.parent != c {
		return -1
	}
	return slices.Index(c.slots, s)
}

// Slots returns the owned slots in order.
func (c *Component) Slots() []*Slot {
	return slices.Clone(c.slots)
}

// Slot returns the single slot of a Division, or nil for other kinds.
func (c *Component) Slot() *Slot {
	if c.def.Kind != KindDivision || len(c.slots) == 0 {
		return nil
	}
	return c.slots[0]
}

// SlotByName returns the Branch slot with the given name.
func (c *Component) SlotByName(name string) (*Slot, bool) {
	if c.def.Kind != KindBranch {
		return nil, false
	}
	i := slices.Index(c.names, name)
	if i < 0 {
		return nil, false
	}
	return c.slots[i], true
}

// SlotName returns the name of the Branch slot at index.
func (c *Component) SlotName(index int) (string, error) {
	if c.def.Kind != KindBranch {
		return "", ErrKindMismatch
	}
	if index < 0 || index >= len(c.names) {
		return "", boundsErr("slot", index, len(c.names))
	}
	return c.names[index], nil
}

// SlotNames returns the Branch slot names in order.
func (c *Component) SlotNames() []string {
	return slices.Clone(c.names)
}

// InsertSlot inserts s at index of a Backbone.
func (c *Component) InsertSlot(index int, s *Slot) error {
	if c.def.Kind != KindBackbone {
		return fmt.Errorf("insert slot into %s: %w", c.def.Kind, ErrKindMismatch)
	}
	return c.insertSlot(index, "", s)
}

// InsertNamedSlot inserts s at index of a Branch under name.
func (c *Component) InsertNamedSlot(index int, name string, s *Slot) error {
	if c.def.Kind != KindBranch {
		return fmt.Errorf("insert named slot into %s: %w", c.def.Kind, ErrKindMismatch)
	}
	if slices.Contains(c.names, name) {
		return fmt.Errorf("slot %q: %w", name, ErrDuplicateName)
	}
	return c.insertSlot(index, name, s)
}

func (c *Component) insertSlot(index int, name string, s *Slot) error {
	if index < 0 || index > len(c.slots) {
		return boundsErr("insert slot", index, len(c.slots))
	}
	if err := c.checkSlot(s); err != nil {
		return err
	}
	c.slots = slices.Insert(c.slots, index, s)
	if c.def.Kind == KindBranch {
		c.names = slices.Insert(c.names, index, name)
	}
	s.parent = c
	c.propagate(Change{Op: ChangeSlots, Component: c})
	return nil
}

// RemoveSlot detaches and returns the slot at index of a Branch or Backbone.
func (c *Component) RemoveSlot(index int) (*Slot, error) {
	if c.def.Kind != KindBackbone && c.def.Kind != KindBranch {
		return nil, fmt.Errorf("remove slot from %s: %w", c.def.Kind, ErrKindMismatch)
	}
	if index < 0 || index >= len(c.slots) {
		return nil, boundsErr("remove slot", index, len(c.slots))
	}
	s := c.slots[index]
	c.slots = slices.Delete(c.slots, index, index+1)
	if c.def.Kind == KindBranch {
		c.names = slices.Delete(c.names, index, index+1)
	}
	s.parent = nil
	c.propagate(Change{Op: ChangeSlots, Component: c})
	return s, nil
}

// MoveSlot moves the slot at from so that it ends up at index to.
func (c *Component) MoveSlot(from, to int) error {
	if c.def.Kind != KindBackbone && c.def.Kind != KindBranch {
		return fmt.Errorf("move slot in %s: %w", c.def.Kind, ErrKindMismatch)
	}
	n := len(c.slots)
	if from < 0 || from >= n {
		return boundsErr("move slot", from, n)
	}
	if to < 0 || to >= n {
		return boundsErr("move slot", to, n)
	}
	if from == to {
		return nil
	}
	s := c.slots[from]
	c.slots = slices.Insert(slices.Delete(c.slots, from, from+1), to, s)
	if c.def.Kind == KindBranch {
		name := c.names[from]
		c.names = slices.Insert(slices.Delete(c.names, from, from+1), to, name)
	}
	c.propagate(Change{Op: ChangeSlots, Component: c})
	return nil
}

// ReplaceContent takes over the state and slots of src, which must have the
// same kind. src is left without slots. The component keeps its identity,
// its parent and its observers.
func (c *Component) ReplaceContent(src *Component) error {
	if src == nil || src == c {
		return nil
	}
	if src.def.Kind != c.def.Kind {
		return fmt.Errorf("replace %s with %s: %w", c.def.Kind, src.def.Kind, ErrKindMismatch)
	}
	for _, s := range c.slots {
		s.parent = nil
	}
	c.def = src.def
	c.state = cloneBytes(src.state)
	c.slots = src.slots
	c.names = src.names
	for _, s := range c.slots {
		s.parent = c
	}
	src.slots = nil
	src.names = nil
	c.propagate(Change{Op: ChangeReplace, Component: c})
	return nil
}

// State returns a copy of the component state.
func (c *Component) State() json.RawMessage {
	return cloneBytes(c.state)
}

// SetState replaces the component state.
func (c *Component) SetState(state json.RawMessage) error {
	if len(state) > 0 && !json.Valid(state) {
		return ErrInvalidState
	}
	c.state = cloneBytes(state)
	c.propagate(Change{Op: ChangeState, Component: c})
	return nil
}

// StateValue reads a value from the component state with a gjson path.
func (c *Component) StateValue(path string) gjson.Result {
	return gjson.GetBytes(c.state, path)
}

// SetStateValue writes value into the component state at a sjson path.
func (c *Component) SetStateValue(path string, value any) error {
	state, err := sjson.SetBytes(cloneBytes(c.state), path, value)
	if err != nil {
		return fmt.Errorf("set %s state %q: %w", c.def.Name, path, err)
	}
	c.state = state
	c.propagate(Change{Op: ChangeState, Component: c})
	return nil
}

// OnChange subscribes to changes of the component and everything below it.
func (c *Component) OnChange(observer notify.Observer[Change]) *notify.Subscription[Change] {
	return c.changes.Subscribe(observer)
}

// Clone returns a deep copy of the component and all its slots. The copy
// shares no mutable data with c, has no parent and no observers.
func (c *Component) Clone() *Component {
	out := &Component{
		def:   c.def,
		state: cloneBytes(c.state),
		slots: make([]*Slot, len(c.slots)),
		names: slices.Clone(c.names),
	}
	for i, s := range c.slots {
		cs := s.Clone()
		cs.parent = out
		out.slots[i] = cs
	}
	return out
}

// Root walks parent links to the top component.
func (c *Component) Root() *Component {
	for c.parent != nil && c.parent.parent != nil {
		c = c.parent.parent
	}
	return c
}

// propagate notifies observers of c and every ancestor.
func (c *Component) propagate(ch Change) {
	for cur := c; cur != nil; {
		cur.changes.Notify(ch)
		if cur.parent == nil {
			return
		}
		cur = cur.parent.parent
	}
}

// isAncestorOfSlot reports whether s lies inside c.
func (c *Component) isAncestorOfSlot(s *Slot) bool {
	for cur := s; cur != nil && cur.parent != nil; {
		if cur.parent == c {
			return true
		}
		cur = cur.parent.parent
	}
	return false
}

// isInsideSlot reports whether c lies inside s.
func (c *Component) isInsideSlot(s *Slot) bool {
	for cur := c; cur != nil && cur.parent != nil; {
		if cur.parent == s {
			return true
		}
		cur = cur.parent.parent
	}
	return false
}

func (c *Component) checkSlot(s *Slot) error {
	if s == nil {
		return fmt.Errorf("nil slot: %w", ErrInvalidSlots)
	}
	if s.parent != nil {
		return fmt.Errorf("insert slot: %w", ErrAlreadyAttached)
	}
	if c.isInsideSlot(s) {
		return fmt.Errorf("insert slot: %w", ErrCycle)
	}
	return nil
}
