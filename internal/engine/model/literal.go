package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ComponentLiteral is the JSON form of a component.
type ComponentLiteral struct {
	Name      string          `json:"name"`
	State     json.RawMessage `json:"state,omitempty"`
	Slots     []SlotLiteral   `json:"slots,omitempty"`
	SlotNames []string        `json:"slotNames,omitempty"`
}

// SlotLiteral is the JSON form of a slot.
type SlotLiteral struct {
	Schema  []ContentType                   `json:"schema"`
	State   json.RawMessage                 `json:"state,omitempty"`
	Content []ItemLiteral                   `json:"content"`
	Formats map[string][]FormatRangeLiteral `json:"formats,omitempty"`
}

// FormatRangeLiteral is the JSON form of one format range.
type FormatRangeLiteral struct {
	Start int `json:"startIndex"`
	End   int `json:"endIndex"`
	Value any `json:"value"`
}

// ItemLiteral is a text run, written as a JSON string, or a component,
// written as an object.
type ItemLiteral struct {
	Text      string
	Component *ComponentLiteral
}

// MarshalJSON implements json.Marshaler.
func (l ItemLiteral) MarshalJSON() ([]byte, error) {
	if l.Component != nil {
		return json.Marshal(l.Component)
	}
	return json.Marshal(l.Text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *ItemLiteral) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var c ComponentLiteral
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		*l = ItemLiteral{Component: &c}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("content item must be a string or component: %w", err)
	}
	*l = ItemLiteral{Text: s}
	return nil
}

// ToJSON returns the literal form of the component and everything below it.
func (c *Component) ToJSON() ComponentLiteral {
	lit := ComponentLiteral{
		Name:  c.def.Name,
		State: cloneBytes(c.state),
	}
	if len(c.slots) > 0 {
		lit.Slots = make([]SlotLiteral, len(c.slots))
		for i, s := range c.slots {
			lit.Slots[i] = s.ToJSON()
		}
	}
	if c.def.Kind == KindBranch && len(c.names) > 0 {
		lit.SlotNames = append([]string(nil), c.names...)
	}
	return lit
}

// MarshalJSON implements json.Marshaler.
func (c *Component) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToJSON())
}

// ToJSON returns the literal form of the slot.
func (s *Slot) ToJSON() SlotLiteral {
	lit := SlotLiteral{
		Schema:  append([]ContentType{}, s.schema...),
		State:   cloneBytes(s.state),
		Content: make([]ItemLiteral, 0, len(s.items)),
	}
	for _, it := range s.items {
		if it.component != nil {
			cl := it.component.ToJSON()
			lit.Content = append(lit.Content, ItemLiteral{Component: &cl})
			continue
		}
		lit.Content = append(lit.Content, ItemLiteral{Text: it.text})
	}
	if !s.formats.isEmpty() {
		lit.Formats = make(map[string][]FormatRangeLiteral, len(s.formats.entries))
		for _, e := range s.formats.entries {
			ranges := make([]FormatRangeLiteral, len(e.ranges))
			for i, r := range e.ranges {
				ranges[i] = FormatRangeLiteral{Start: r.Start, End: r.End, Value: cloneValue(r.Value)}
			}
			lit.Formats[e.name] = ranges
		}
	}
	return lit
}

// MarshalJSON implements json.Marshaler.
func (s *Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToJSON())
}

// DecodeComponent builds a component tree from its literal form.
func (r *Registry) DecodeComponent(lit ComponentLiteral) (*Component, error) {
	d, ok := r.Definition(lit.Name)
	if !ok {
		return nil, fmt.Errorf("decode %q: %w", lit.Name, ErrUnknownComponent)
	}

	init := &InitData{State: lit.State}
	if d.Kind != KindLeaf || len(lit.Slots) > 0 {
		init.Slots = make([]*Slot, 0, len(lit.Slots))
		for i, sl := range lit.Slots {
			s, err := r.DecodeSlot(sl)
			if err != nil {
				return nil, fmt.Errorf("decode %s slot %d: %w", lit.Name, i, err)
			}
			init.Slots = append(init.Slots, s)
		}
		init.SlotNames = lit.SlotNames
	}
	return d.CreateInstance(init)
}

// DecodeSlot builds a slot from its literal form.
func (r *Registry) DecodeSlot(lit SlotLiteral) (*Slot, error) {
	if len(lit.State) > 0 && !json.Valid(lit.State) {
		return nil, ErrInvalidState
	}
	s := NewSlot(lit.Schema, WithSlotState(lit.State))
	for _, item := range lit.Content {
		if item.Component != nil {
			c, err := r.DecodeComponent(*item.Component)
			if err != nil {
				return nil, err
			}
			if err := s.Insert(Embed(c)); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.Insert(Text(item.Text)); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(lit.Formats))
	for name := range lit.Formats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, ok := r.Formatter(name)
		if !ok {
			return nil, fmt.Errorf("decode format %q: %w", name, ErrUnknownFormatter)
		}
		for _, fr := range lit.Formats[name] {
			if err := s.ApplyFormat(f, fr.Value, fr.Start, fr.End); err != nil {
				return nil, fmt.Errorf("decode format %q: %w", name, err)
			}
		}
	}
	s.index = 0
	return s, nil
}

// UnmarshalComponent decodes JSON bytes into a component tree.
func (r *Registry) UnmarshalComponent(data []byte) (*Component, error) {
	var lit ComponentLiteral
	if err := json.Unmarshal(data, &lit); err != nil {
		return nil, fmt.Errorf("unmarshal component: %w", err)
	}
	return r.DecodeComponent(lit)
}
