package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Definition describes a component type. Definitions are immutable once
// registered and are shared by every instance and clone.
type Definition struct {
	// Name is the type discriminator written to literals.
	Name string

	// Kind is the structural shape of instances.
	Kind Kind

	// Type is how instances sit in a parent slot: ContentInline or ContentBlock.
	Type ContentType

	// Schema is the content accepted by slots created for new instances.
	Schema []ContentType

	// SlotNames are the default Branch slots of new instances.
	SlotNames []string

	// State is the default state of new instances.
	State json.RawMessage
}

// InitData overrides the defaults of a new instance.
type InitData struct {
	// State replaces the definition's default state when non-nil.
	State json.RawMessage

	// Slots replaces the default slots when non-nil. They must be detached.
	Slots []*Slot

	// SlotNames names Slots for a Branch; it must match Slots in length.
	SlotNames []string
}

// CreateInstance builds a new, detached component. It only constructs data.
func (d *Definition) CreateInstance(init *InitData) (*Component, error) {
	c := &Component{def: d, state: cloneBytes(d.State)}
	if init != nil && init.State != nil {
		if !json.Valid(init.State) {
			return nil, fmt.Errorf("create %s: %w", d.Name, ErrInvalidState)
		}
		c.state = cloneBytes(init.State)
	}

	var slots []*Slot
	var names []string
	if init != nil && init.Slots != nil {
		slots, names = init.Slots, init.SlotNames
	} else {
		slots, names = d.defaultSlots()
	}
	if err := d.checkSlots(slots, names); err != nil {
		return nil, err
	}

	c.slots = slices.Clone(slots)
	if d.Kind == KindBranch {
		c.names = slices.Clone(names)
	}
	for _, s := range c.slots {
		s.parent = c
	}
	return c, nil
}

func (d *Definition) defaultSlots() ([]*Slot, []string) {
	switch d.Kind {
	case KindDivision:
		return []*Slot{NewSlot(d.Schema)}, nil
	case KindBranch:
		slots := make([]*Slot, len(d.SlotNames))
		for i := range slots {
			slots[i] = NewSlot(d.Schema)
		}
		return slots, slices.Clone(d.SlotNames)
	default:
		return nil, nil
	}
}

func (d *Definition) checkSlots(slots []*Slot, names []string) error {
	switch d.Kind {
	case KindDivision:
		if len(slots) != 1 {
			return fmt.Errorf("create %s: division needs 1 slot, got %d: %w", d.Name, len(slots), ErrInvalidSlots)
		}
	case KindLeaf:
		if len(slots) != 0 {
			return fmt.Errorf("create %s: leaf takes no slots: %w", d.Name, ErrInvalidSlots)
		}
	case KindBranch:
		if len(names) != len(slots) {
			return fmt.Errorf("create %s: %d names for %d slots: %w", d.Name, len(names), len(slots), ErrInvalidSlots)
		}
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if seen[n] {
				return fmt.Errorf("create %s: slot %q: %w", d.Name, n, ErrDuplicateName)
			}
			seen[n] = true
		}
	}
	for i, s := range slots {
		if s == nil {
			return fmt.Errorf("create %s: slot %d is nil: %w", d.Name, i, ErrInvalidSlots)
		}
		if s.parent != nil {
			return fmt.Errorf("create %s: slot %d: %w", d.Name, i, ErrAlreadyAttached)
		}
		if slices.Index(slots, s) != i {
			return fmt.Errorf("create %s: slot %d given twice: %w", d.Name, i, ErrInvalidSlots)
		}
	}
	return nil
}

// Registry maps names to component definitions and formatters.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*Definition
	formatters map[string]*Formatter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]*Definition),
		formatters: make(map[string]*Formatter),
	}
}

// RegisterComponent adds definitions. Names must be unique.
func (r *Registry) RegisterComponent(defs ...*Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range defs {
		if _, ok := r.components[d.Name]; ok {
			return fmt.Errorf("component %q: %w", d.Name, ErrDuplicateName)
		}
		r.components[d.Name] = d
	}
	return nil
}

// RegisterFormatter adds formatters. Names must be unique.
func (r *Registry) RegisterFormatter(fs ...*Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range fs {
		if _, ok := r.formatters[f.Name]; ok {
			return fmt.Errorf("formatter %q: %w", f.Name, ErrDuplicateName)
		}
		r.formatters[f.Name] = f
	}
	return nil
}

// Definition returns the named component definition.
func (r *Registry) Definition(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.components[name]
	return d, ok
}

// Formatter returns the named formatter.
func (r *Registry) Formatter(name string) (*Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[name]
	return f, ok
}

// Create instantiates the named component.
func (r *Registry) Create(name string, init *InitData) (*Component, error) {
	d, ok := r.Definition(name)
	if !ok {
		return nil, fmt.Errorf("create %q: %w", name, ErrUnknownComponent)
	}
	return d.CreateInstance(init)
}

// ComponentNames returns the registered component names, sorted.
func (r *Registry) ComponentNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for n := range r.components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FormatterNames returns the registered formatter names, sorted.
func (r *Registry) FormatterNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.formatters))
	for n := range r.formatters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
