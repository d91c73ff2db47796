package selection

import (
	"slices"

	"github.com/dshills/folio/internal/engine/model"
	"github.com/dshills/folio/internal/notify"
)

// State is the shape of a selection.
type State int

const (
	// StateEmpty means there are no ranges.
	StateEmpty State = iota
	// StateCollapsed means every range is a caret.
	StateCollapsed
	// StateExtended means at least one range covers content.
	StateExtended
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCollapsed:
		return "collapsed"
	case StateExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// Event is delivered to selection observers after every change.
type Event struct {
	State  State
	Ranges []Range
}

// Selection holds the ranges selected in one document.
// Anchor and focus keep the direction of the primary range.
//
// Selection is not safe for concurrent use.
type Selection struct {
	root   *model.Component
	ranges []Range
	anchor Position
	focus  Position

	changes notify.Notifier[Event]
}

// New creates an empty selection over root.
func New(root *model.Component) *Selection {
	return &Selection{root: root}
}

// Root returns the document root.
func (s *Selection) Root() *model.Component {
	return s.root
}

// State returns the current state.
func (s *Selection) State() State {
	if len(s.ranges) == 0 {
		return StateEmpty
	}
	for _, r := range s.ranges {
		if !r.IsCollapsed() {
			return StateExtended
		}
	}
	return StateCollapsed
}

// IsCollapsed returns true if there is at least one range and all are carets.
func (s *Selection) IsCollapsed() bool {
	return s.State() == StateCollapsed
}

// IsEmpty returns true if there are no ranges.
func (s *Selection) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Ranges returns a copy of the ranges.
func (s *Selection) Ranges() []Range {
	return slices.Clone(s.ranges)
}

// RangeCount returns the number of ranges.
func (s *Selection) RangeCount() int {
	return len(s.ranges)
}

// FirstRange returns the primary range.
func (s *Selection) FirstRange() (Range, bool) {
	if len(s.ranges) == 0 {
		return Range{}, false
	}
	return s.ranges[0], true
}

// Anchor returns where the primary range was started.
func (s *Selection) Anchor() (Position, bool) {
	return s.anchor, len(s.ranges) > 0
}

// Focus returns where the primary range ends, which is the caret.
func (s *Selection) Focus() (Position, bool) {
	return s.focus, len(s.ranges) > 0
}

// SetPosition collapses the selection to a caret at offset in slot.
func (s *Selection) SetPosition(slot *model.Slot, offset int) error {
	p := At(slot, offset)
	if err := s.check(p); err != nil {
		return err
	}
	s.set([]Range{Collapsed(p)}, p, p)
	return nil
}

// SetRange replaces the selection with one range. The ends may be given in
// either order.
func (s *Selection) SetRange(start, end Position) error {
	r, err := s.normalize(start, end)
	if err != nil {
		return err
	}
	s.set([]Range{r}, r.Start, r.End)
	return nil
}

// SetBaseAndExtent selects from the anchor to the focus. The stored range
// is in document order; Anchor and Focus keep the given direction.
func (s *Selection) SetBaseAndExtent(anchorSlot *model.Slot, anchorOffset int, focusSlot *model.Slot, focusOffset int) error {
	anchor, focus := At(anchorSlot, anchorOffset), At(focusSlot, focusOffset)
	r, err := s.normalize(anchor, focus)
	if err != nil {
		return err
	}
	s.set([]Range{r}, anchor, focus)
	return nil
}

// AddRange appends a range. An empty selection takes its anchor and focus
// from the new range.
func (s *Selection) AddRange(r Range) error {
	n, err := s.normalize(r.Start, r.End)
	if err != nil {
		return err
	}
	anchor, focus := s.anchor, s.focus
	if len(s.ranges) == 0 {
		anchor, focus = n.Start, n.End
	}
	s.set(append(slices.Clone(s.ranges), n), anchor, focus)
	return nil
}

// RemoveAllRanges empties the selection.
func (s *Selection) RemoveAllRanges() {
	if len(s.ranges) == 0 {
		return
	}
	s.set(nil, Position{}, Position{})
}

// Collapse turns every range into a caret at its start or end.
func (s *Selection) Collapse(toStart bool) {
	if len(s.ranges) == 0 {
		return
	}
	ranges := make([]Range, len(s.ranges))
	for i, r := range s.ranges {
		p := r.End
		if toStart {
			p = r.Start
		}
		ranges[i] = Collapsed(p)
	}
	s.set(ranges, ranges[0].Start, ranges[0].Start)
}

// ToNext moves the caret one grapheme cluster or component forward within
// its slot. An extended selection collapses to its end.
func (s *Selection) ToNext() {
	s.step(true)
}

// ToPrevious moves the caret one grapheme cluster or component back within
// its slot. An extended selection collapses to its start.
func (s *Selection) ToPrevious() {
	s.step(false)
}

func (s *Selection) step(forward bool) {
	r, ok := s.FirstRange()
	if !ok {
		return
	}
	if !r.IsCollapsed() {
		s.Collapse(!forward)
		return
	}
	p := r.Start
	if forward {
		p.Offset = p.Slot.NextOffset(p.Offset)
	} else {
		p.Offset = p.Slot.PrevOffset(p.Offset)
	}
	if p == r.Start {
		return
	}
	s.set([]Range{Collapsed(p)}, p, p)
}

// Valid reports whether every range still lies inside the document and
// within its slot bounds.
func (s *Selection) Valid() bool {
	for _, r := range s.ranges {
		if s.check(r.Start) != nil || s.check(r.End) != nil {
			return false
		}
	}
	return true
}

// CommonAncestorSlot returns the deepest slot containing every range end,
// or nil for an empty selection.
func (s *Selection) CommonAncestorSlot() *model.Slot {
	var common []*model.Slot
	for i, p := range s.ends() {
		chain := slotChain(p.Slot)
		if i == 0 {
			common = chain
			continue
		}
		common = commonPrefix(common, chain)
	}
	if len(common) == 0 {
		return nil
	}
	return common[len(common)-1]
}

// CommonAncestorComponent returns the deepest component containing every
// range end, or nil for an empty selection.
func (s *Selection) CommonAncestorComponent() *model.Component {
	var common []*model.Component
	for i, p := range s.ends() {
		chain := componentChain(p.Slot)
		if i == 0 {
			common = chain
			continue
		}
		common = commonPrefix(common, chain)
	}
	if len(common) == 0 {
		return nil
	}
	return common[len(common)-1]
}

// OnChange subscribes to selection changes.
func (s *Selection) OnChange(observer notify.Observer[Event]) *notify.Subscription[Event] {
	return s.changes.Subscribe(observer)
}

func (s *Selection) ends() []Position {
	out := make([]Position, 0, 2*len(s.ranges))
	for _, r := range s.ranges {
		out = append(out, r.Start, r.End)
	}
	return out
}

func (s *Selection) set(ranges []Range, anchor, focus Position) {
	s.ranges = ranges
	s.anchor = anchor
	s.focus = focus
	s.changes.Notify(Event{State: s.State(), Ranges: slices.Clone(ranges)})
}

func (s *Selection) check(p Position) error {
	if err := p.check("position"); err != nil {
		return err
	}
	if rootOf(p.Slot) != s.root {
		return ErrForeignSlot
	}
	return nil
}

func (s *Selection) normalize(a, b Position) (Range, error) {
	if err := s.check(a); err != nil {
		return Range{}, err
	}
	if err := s.check(b); err != nil {
		return Range{}, err
	}
	cmp, err := Compare(a, b)
	if err != nil {
		return Range{}, err
	}
	if cmp > 0 {
		a, b = b, a
	}
	return Range{Start: a, End: b}, nil
}

// slotChain lists the slots from the root down to slot.
func slotChain(slot *model.Slot) []*model.Slot {
	var chain []*model.Slot
	for cur := slot; cur != nil; {
		chain = append(chain, cur)
		c := cur.Parent()
		if c == nil {
			break
		}
		cur = c.Parent()
	}
	slices.Reverse(chain)
	return chain
}

// componentChain lists the components from the root down to the owner of slot.
func componentChain(slot *model.Slot) []*model.Component {
	var chain []*model.Component
	for c := slot.Parent(); c != nil; {
		chain = append(chain, c)
		p := c.Parent()
		if p == nil {
			break
		}
		c = p.Parent()
	}
	slices.Reverse(chain)
	return chain
}

func commonPrefix[T comparable](a, b []T) []T {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n]
}
