package model

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// NextOffset returns the index after the grapheme cluster or component
// that starts at index. It returns Length at the end of the slot.
func (s *Slot) NextOffset(index int) int {
	if index < 0 {
		return 0
	}
	if index >= s.length {
		return s.length
	}
	it, start, _ := s.items.locate(index)
	if it.component != nil {
		return index + 1
	}
	_, rest := splitRunes(it.text, index-start)
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
	return index + utf8.RuneCountInString(cluster)
}

// PrevOffset returns the index of the grapheme cluster or component that
// ends at index. It returns 0 at the start of the slot.
func (s *Slot) PrevOffset(index int) int {
	if index <= 0 {
		return 0
	}
	if index > s.length {
		return s.length
	}
	it, start, _ := s.items.locate(index - 1)
	if it.component != nil {
		return index - 1
	}
	prefix, _ := splitRunes(it.text, index-start)
	pos := start
	prev := start
	state := -1
	for len(prefix) > 0 {
		var cluster string
		cluster, prefix, _, state = uniseg.FirstGraphemeClusterInString(prefix, state)
		prev = pos
		pos += utf8.RuneCountInString(cluster)
	}
	return prev
}
