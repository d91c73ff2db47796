package engine

import (
	"fmt"
	"strings"

	"github.com/dshills/folio/internal/engine/model"
	"github.com/dshills/folio/internal/engine/selection"
)

// span is a part of one slot covered by a range.
type span struct {
	slot       *model.Slot
	start, end int
}

// allSlots returns every slot under c in document order: a slot comes
// before the slots of the components it holds.
func allSlots(c *model.Component) []*model.Slot {
	var out []*model.Slot
	var walk func(c *model.Component)
	walk = func(c *model.Component) {
		for _, s := range c.Slots() {
			out = append(out, s)
			for _, child := range s.Components() {
				walk(child)
			}
		}
	}
	walk(c)
	return out
}

// holdsText reports whether s takes text or inline content.
func holdsText(s *model.Slot) bool {
	return s.Accepts(model.ContentText) || s.Accepts(model.ContentInline)
}

// firstTextPosition returns the start of the first slot under c that
// accepts text.
func firstTextPosition(c *model.Component) (selection.Position, bool) {
	for _, s := range allSlots(c) {
		if s.Accepts(model.ContentText) {
			return selection.At(s, 0), true
		}
	}
	return selection.Position{}, false
}

// lastTextPosition returns the end of the last slot under c that accepts
// text.
func lastTextPosition(c *model.Component) (selection.Position, bool) {
	slots := allSlots(c)
	for i := len(slots) - 1; i >= 0; i-- {
		if s := slots[i]; s.Accepts(model.ContentText) {
			return selection.At(s, s.Length()), true
		}
	}
	return selection.Position{}, false
}

// rangeSpans splits r into the text slot spans it covers. A slot lying
// wholly between the two ends is covered in full.
func rangeSpans(root *model.Component, r selection.Range) ([]span, error) {
	if r.Start.Slot == r.End.Slot {
		if !holdsText(r.Start.Slot) {
			return nil, nil
		}
		return []span{{r.Start.Slot, r.Start.Offset, r.End.Offset}}, nil
	}

	var out []span
	for _, s := range allSlots(root) {
		if !holdsText(s) {
			continue
		}
		switch s {
		case r.Start.Slot:
			out = append(out, span{s, r.Start.Offset, s.Length()})
		case r.End.Slot:
			out = append(out, span{s, 0, r.End.Offset})
		default:
			after, err := selection.Compare(r.Start, selection.At(s, 0))
			if err != nil {
				return nil, err
			}
			before, err := selection.Compare(selection.At(s, s.Length()), r.End)
			if err != nil {
				return nil, err
			}
			if after <= 0 && before <= 0 {
				out = append(out, span{s, 0, s.Length()})
			}
		}
	}
	return out, nil
}

// coveredBy reports whether every index of sp carries a set flag named name.
func coveredBy(sp span, name string) bool {
	pos := sp.start
	for _, fr := range sp.slot.FormatRanges(name) {
		if b, ok := fr.Value.(bool); ok && !b {
			continue
		}
		if fr.Start <= pos && fr.End > pos {
			pos = fr.End
		}
	}
	return pos >= sp.end
}

// checkMerge returns an error if the content of src from index on could
// not be moved into dst.
func checkMerge(src *model.Slot, index int, dst *model.Slot) error {
	items, err := src.SliceContent(index, src.Length())
	if err != nil {
		return err
	}
	for _, it := range items {
		if !dst.Accepts(it.ContentType()) {
			return fmt.Errorf("merge %s: %w", it.ContentType(), model.ErrContentNotAllowed)
		}
	}
	return nil
}

// plainText renders c as lines: one per slot holding text, with the text
// of inline components spliced in.
func plainText(c *model.Component) string {
	return strings.Join(appendLines(nil, c), "\n")
}

func appendLines(lines []string, c *model.Component) []string {
	for _, s := range c.Slots() {
		if s.Accepts(model.ContentBlock) {
			for _, child := range s.Components() {
				lines = appendLines(lines, child)
			}
			continue
		}
		lines = append(lines, inlineText(s))
	}
	return lines
}

func inlineText(s *model.Slot) string {
	var b strings.Builder
	for _, it := range s.Content() {
		c := it.Component()
		if c == nil {
			b.WriteString(it.Text())
			continue
		}
		for _, cs := range c.Slots() {
			b.WriteString(inlineText(cs))
		}
	}
	return b.String()
}
