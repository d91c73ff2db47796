package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ContentType classifies what a slot accepts and what an item is.
type ContentType int

const (
	// ContentText is a run of text.
	ContentText ContentType = iota
	// ContentInline is a component that flows with text.
	ContentInline
	// ContentBlock is a component that stands on its own line.
	ContentBlock
)

// String returns the content type name.
func (t ContentType) String() string {
	switch t {
	case ContentText:
		return "text"
	case ContentInline:
		return "inline"
	case ContentBlock:
		return "block"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ContentType) MarshalText() ([]byte, error) {
	s := t.String()
	if s == "unknown" {
		return nil, fmt.Errorf("content type %d: %w", int(t), ErrContentNotAllowed)
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ContentType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "text":
		*t = ContentText
	case "inline":
		*t = ContentInline
	case "block":
		*t = ContentBlock
	default:
		return fmt.Errorf("content type %q: %w", b, ErrContentNotAllowed)
	}
	return nil
}

// ObjectReplacement stands in for an embedded component in Slot.Text.
const ObjectReplacement = '\uFFFC'

// Item is one entry of slot content: a text run or an embedded component.
// A text run occupies one index per rune; a component occupies one index.
type Item struct {
	text      string
	component *Component
}

// Text returns a text item.
func Text(s string) Item {
	return Item{text: s}
}

// Embed returns an item embedding c.
func Embed(c *Component) Item {
	return Item{component: c}
}

// IsComponent returns true if the item embeds a component.
func (i Item) IsComponent() bool {
	return i.component != nil
}

// Text returns the item's text. It is empty for components.
func (i Item) Text() string {
	return i.text
}

// Component returns the embedded component, or nil for text.
func (i Item) Component() *Component {
	return i.component
}

// Len returns the number of index positions the item occupies.
func (i Item) Len() int {
	if i.component != nil {
		return 1
	}
	return utf8.RuneCountInString(i.text)
}

// ContentType returns the item's content type.
func (i Item) ContentType() ContentType {
	if i.component != nil {
		return i.component.def.Type
	}
	return ContentText
}

// String returns the text, or the component name in angle brackets.
func (i Item) String() string {
	if i.component != nil {
		return "<" + i.component.Name() + ">"
	}
	return i.text
}

// itemList is the ordered content of a slot. Text runs are never empty and
// never adjacent to each other once normalize has run.
type itemList []Item

func (l itemList) length() int {
	n := 0
	for _, it := range l {
		n += it.Len()
	}
	return n
}

// split ensures an item boundary at index and returns the position of the
// first item at or after it.
func (l *itemList) split(index int) int {
	pos := 0
	for k, it := range *l {
		if pos == index {
			return k
		}
		n := it.Len()
		if index < pos+n {
			left, right := splitRunes(it.text, index-pos)
			items := *l
			items = append(items[:k+1], items[k:]...)
			items[k] = Text(left)
			items[k+1] = Text(right)
			*l = items
			return k + 1
		}
		pos += n
	}
	return len(*l)
}

func (l *itemList) normalize() {
	out := (*l)[:0]
	for _, it := range *l {
		if it.component == nil && it.text == "" {
			continue
		}
		if it.component == nil && len(out) > 0 && out[len(out)-1].component == nil {
			out[len(out)-1].text += it.text
			continue
		}
		out = append(out, it)
	}
	for k := len(out); k < len(*l); k++ {
		(*l)[k] = Item{}
	}
	*l = out
}

func (l *itemList) insert(index int, items ...Item) {
	p := l.split(index)
	merged := make(itemList, 0, len(*l)+len(items))
	merged = append(merged, (*l)[:p]...)
	merged = append(merged, items...)
	merged = append(merged, (*l)[p:]...)
	merged.normalize()
	*l = merged
}

// remove deletes [start, end) and returns the removed items.
func (l *itemList) remove(start, end int) itemList {
	a := l.split(start)
	b := l.split(end)
	removed := make(itemList, b-a)
	copy(removed, (*l)[a:b])
	rest := make(itemList, 0, len(*l)-(b-a))
	rest = append(rest, (*l)[:a]...)
	rest = append(rest, (*l)[b:]...)
	rest.normalize()
	*l = rest
	removed.normalize()
	return removed
}

// slice returns a copy of [start, end) without mutating the list.
func (l itemList) slice(start, end int) itemList {
	var out itemList
	pos := 0
	for _, it := range l {
		n := it.Len()
		from, to := max(start, pos), min(end, pos+n)
		if from < to {
			if it.component != nil {
				out = append(out, it)
			} else {
				out = append(out, Text(sliceRunes(it.text, from-pos, to-pos)))
			}
		}
		pos += n
		if pos >= end {
			break
		}
	}
	return out
}

// locate returns the item covering index and the index where it starts.
func (l itemList) locate(index int) (Item, int, bool) {
	pos := 0
	for _, it := range l {
		n := it.Len()
		if index < pos+n {
			return it, pos, true
		}
		pos += n
	}
	return Item{}, pos, false
}

func (l itemList) text() string {
	var b strings.Builder
	for _, it := range l {
		if it.component != nil {
			b.WriteRune(ObjectReplacement)
			continue
		}
		b.WriteString(it.text)
	}
	return b.String()
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for k := range s {
		if i == n {
			return s[:k], s[k:]
		}
		i++
	}
	return s, ""
}

func sliceRunes(s string, from, to int) string {
	_, rest := splitRunes(s, from)
	mid, _ := splitRunes(rest, to-from)
	return mid
}
