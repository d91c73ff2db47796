package selection

import (
	"fmt"
	"slices"

	"github.com/dshills/folio/internal/engine/model"
)

// Paths is the structural form of one range.
type Paths struct {
	StartPaths []int `json:"startPaths"`
	EndPaths   []int `json:"endPaths"`
}

// IsCollapsed returns true if both paths are equal.
func (p Paths) IsCollapsed() bool {
	return slices.Equal(p.StartPaths, p.EndPaths)
}

// Clone returns a copy that shares no slices with p.
func (p Paths) Clone() Paths {
	return Paths{StartPaths: slices.Clone(p.StartPaths), EndPaths: slices.Clone(p.EndPaths)}
}

// CapturePaths encodes every range of sel. A collapsed range is encoded
// once; its end path is an independent copy of the start path.
func CapturePaths(sel *Selection) ([]Paths, error) {
	out := make([]Paths, 0, len(sel.ranges))
	for i, r := range sel.ranges {
		start, err := PathOf(r.Start)
		if err != nil {
			return nil, fmt.Errorf("capture range %d start: %w", i, err)
		}
		if r.IsCollapsed() {
			out = append(out, Paths{StartPaths: start, EndPaths: slices.Clone(start)})
			continue
		}
		end, err := PathOf(r.End)
		if err != nil {
			return nil, fmt.Errorf("capture range %d end: %w", i, err)
		}
		out = append(out, Paths{StartPaths: start, EndPaths: end})
	}
	return out, nil
}

// ResolvePath walks path down from root and returns the position it names.
func ResolvePath(path []int, root *model.Component) (Position, error) {
	fail := func(depth int, format string, args ...any) (Position, error) {
		return Position{}, &LookupError{Path: slices.Clone(path), Depth: depth, Reason: fmt.Sprintf(format, args...)}
	}
	if root == nil {
		return fail(0, "no root")
	}
	if len(path) == 0 {
		return fail(0, "empty path")
	}

	comp := root
	i := 0
	for {
		var slot *model.Slot
		switch comp.Kind() {
		case model.KindDivision:
			slot = comp.Slot()
			if slot == nil {
				return fail(i, "%s has no slot", comp.Name())
			}
		case model.KindBranch, model.KindBackbone:
			if len(path)-i < 2 {
				return fail(i, "missing slot index for %s", comp.Name())
			}
			s, err := comp.SlotAt(path[i])
			if err != nil {
				return fail(i, "%s has no slot %d", comp.Name(), path[i])
			}
			slot = s
			i++
		default:
			return fail(i, "%s has no slots", comp.Name())
		}

		if i == len(path)-1 {
			offset := path[i]
			if offset < 0 || offset > slot.Length() {
				return fail(i, "offset %d outside slot of length %d", offset, slot.Length())
			}
			return At(slot, offset), nil
		}

		item, err := slot.ContentAt(path[i])
		if err != nil || !item.IsComponent() {
			return fail(i, "no component at index %d", path[i])
		}
		comp = item.Component()
		i++
	}
}

// ResolvePaths resolves every entry of paths against root.
func ResolvePaths(paths []Paths, root *model.Component) ([]Range, error) {
	out := make([]Range, 0, len(paths))
	for _, p := range paths {
		start, err := ResolvePath(p.StartPaths, root)
		if err != nil {
			return nil, err
		}
		end := start
		if !p.IsCollapsed() {
			if end, err = ResolvePath(p.EndPaths, root); err != nil {
				return nil, err
			}
		}
		out = append(out, Range{Start: start, End: end})
	}
	return out, nil
}

// Paths encodes the current ranges. See CapturePaths.
func (s *Selection) Paths() ([]Paths, error) {
	return CapturePaths(s)
}

// UsePaths resolves paths against the selection's root and replaces the
// ranges. Nothing changes if any path fails to resolve.
func (s *Selection) UsePaths(paths []Paths) error {
	ranges, err := ResolvePaths(paths, s.root)
	if err != nil {
		return err
	}
	for i, r := range ranges {
		if r, err = s.normalize(r.Start, r.End); err != nil {
			return err
		}
		ranges[i] = r
	}
	if len(ranges) == 0 {
		s.RemoveAllRanges()
		return nil
	}
	s.set(ranges, ranges[0].Start, ranges[0].End)
	return nil
}
