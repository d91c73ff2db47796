package model

import (
	"sort"
)

// Formatter identifies a kind of inline formatting such as bold or color.
// Format entries store only the formatter name and priority, so a Formatter
// is never referenced from the content model.
type Formatter struct {
	// Name is the stable key of the formatter.
	Name string

	// Priority orders overlapping formats; lower values render outermost.
	Priority int

	// Normalize canonicalizes a value before it is stored. Nil keeps values as given.
	Normalize func(value any) any
}

// FormatValue pairs a formatter with a value, used when inserting content.
type FormatValue struct {
	Formatter *Formatter
	Value     any
}

// FormatRange is a value applied over [Start, End) of a slot.
type FormatRange struct {
	Start int
	End   int
	Value any
}

// Len returns the number of index positions covered.
func (r FormatRange) Len() int {
	return r.End - r.Start
}

// FormatItem is a format entry as reported by queries.
type FormatItem struct {
	Name     string
	Priority int
	Value    any
	Start    int
	End      int
}

type formatEntry struct {
	name     string
	priority int
	ranges   []FormatRange // sorted by Start, non-overlapping
}

// formatLayer holds every format entry of a slot or fragment.
type formatLayer struct {
	entries []*formatEntry
}

func (l *formatLayer) entry(name string) *formatEntry {
	for _, e := range l.entries {
		if e.name == name {
			return e
		}
	}
	return nil
}

func (l *formatLayer) isEmpty() bool {
	return len(l.entries) == 0
}

// set writes value over [start, end) for the named formatter, replacing the
// overlapped parts of existing ranges. A nil value clears the span.
func (l *formatLayer) set(name string, priority, start, end int, value any) {
	if start >= end {
		return
	}
	e := l.entry(name)
	if e == nil {
		if value == nil {
			return
		}
		e = &formatEntry{name: name, priority: priority}
		l.entries = append(l.entries, e)
	}
	if value != nil {
		e.priority = priority
	}

	out := make([]FormatRange, 0, len(e.ranges)+2)
	for _, r := range e.ranges {
		if r.End <= start || r.Start >= end {
			out = append(out, r)
			continue
		}
		if r.Start < start {
			out = append(out, FormatRange{Start: r.Start, End: start, Value: r.Value})
		}
		if r.End > end {
			out = append(out, FormatRange{Start: end, End: r.End, Value: cloneValue(r.Value)})
		}
	}
	if value != nil {
		out = append(out, FormatRange{Start: start, End: end, Value: value})
	}
	e.ranges = out
	l.compact()
}

// stretch accounts for count positions inserted at index. A range that
// reaches the insertion point from the left grows; a range at or after it moves.
func (l *formatLayer) stretch(index, count int) {
	for _, e := range l.entries {
		for i := range e.ranges {
			r := &e.ranges[i]
			switch {
			case r.End < index:
			case r.Start < index:
				r.End += count
			default:
				r.Start += count
				r.End += count
			}
		}
	}
}

// shrink accounts for count positions removed at start.
func (l *formatLayer) shrink(start, count int) {
	end := start + count
	mapPos := func(x int) int {
		switch {
		case x <= start:
			return x
		case x < end:
			return start
		default:
			return x - count
		}
	}
	for _, e := range l.entries {
		out := e.ranges[:0]
		for _, r := range e.ranges {
			r.Start, r.End = mapPos(r.Start), mapPos(r.End)
			if r.Start < r.End {
				out = append(out, r)
			}
		}
		e.ranges = out
	}
	l.compact()
}

// extract returns the formats covering [start, end), rebased to zero.
func (l *formatLayer) extract(start, end int) *formatLayer {
	out := &formatLayer{}
	for _, e := range l.entries {
		var ranges []FormatRange
		for _, r := range e.ranges {
			s, t := max(r.Start, start), min(r.End, end)
			if s < t {
				ranges = append(ranges, FormatRange{Start: s - start, End: t - start, Value: cloneValue(r.Value)})
			}
		}
		if len(ranges) > 0 {
			out.entries = append(out.entries, &formatEntry{name: e.name, priority: e.priority, ranges: ranges})
		}
	}
	return out
}

// merge writes every range of other into l, offset by index.
func (l *formatLayer) merge(index int, other *formatLayer) {
	for _, e := range other.entries {
		for _, r := range e.ranges {
			l.set(e.name, e.priority, r.Start+index, r.End+index, cloneValue(r.Value))
		}
	}
}

func (l *formatLayer) clone() *formatLayer {
	out := &formatLayer{entries: make([]*formatEntry, len(l.entries))}
	for i, e := range l.entries {
		ranges := make([]FormatRange, len(e.ranges))
		for j, r := range e.ranges {
			ranges[j] = FormatRange{Start: r.Start, End: r.End, Value: cloneValue(r.Value)}
		}
		out.entries[i] = &formatEntry{name: e.name, priority: e.priority, ranges: ranges}
	}
	return out
}

// compact merges touching ranges with equal values and drops empty entries.
func (l *formatLayer) compact() {
	entries := l.entries[:0]
	for _, e := range l.entries {
		sort.SliceStable(e.ranges, func(i, j int) bool {
			return e.ranges[i].Start < e.ranges[j].Start
		})
		merged := e.ranges[:0]
		for _, r := range e.ranges {
			if n := len(merged); n > 0 && merged[n-1].End >= r.Start && equalValues(merged[n-1].Value, r.Value) {
				merged[n-1].End = max(merged[n-1].End, r.End)
				continue
			}
			merged = append(merged, r)
		}
		e.ranges = merged
		if len(e.ranges) > 0 {
			entries = append(entries, e)
		}
	}
	for k := len(entries); k < len(l.entries); k++ {
		l.entries[k] = nil
	}
	l.entries = entries
}

func (l *formatLayer) ranges(name string) []FormatRange {
	e := l.entry(name)
	if e == nil {
		return nil
	}
	out := make([]FormatRange, len(e.ranges))
	for i, r := range e.ranges {
		out[i] = FormatRange{Start: r.Start, End: r.End, Value: cloneValue(r.Value)}
	}
	return out
}

// items returns all entries ordered by priority, name, then start.
func (l *formatLayer) items() []FormatItem {
	var out []FormatItem
	for _, e := range l.entries {
		for _, r := range e.ranges {
			out = append(out, FormatItem{
				Name:     e.name,
				Priority: e.priority,
				Value:    cloneValue(r.Value),
				Start:    r.Start,
				End:      r.End,
			})
		}
	}
	sortFormatItems(out)
	return out
}

// at returns the formats covering the item at index.
func (l *formatLayer) at(index int) []FormatItem {
	var out []FormatItem
	for _, e := range l.entries {
		for _, r := range e.ranges {
			if r.Start <= index && index < r.End {
				out = append(out, FormatItem{
					Name:     e.name,
					Priority: e.priority,
					Value:    cloneValue(r.Value),
					Start:    r.Start,
					End:      r.End,
				})
			}
		}
	}
	sortFormatItems(out)
	return out
}

func sortFormatItems(items []FormatItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Start < b.Start
	})
}
