// Package selection addresses positions and spans in a document tree and
// converts them to and from structural paths.
//
// # Positions and Ranges
//
// A Position is a slot plus an offset in that slot's index space. A Range is
// an ordered pair of positions; it is collapsed when both are equal.
//
// # Selection
//
// Selection is the live selection over one root component. It moves
// between three states:
//
//   - StateEmpty: no ranges
//   - StateCollapsed: every range is a caret
//   - StateExtended: at least one range covers content
//
// SetPosition collapses to a single caret. SetRange, SetBaseAndExtent and
// AddRange set or add spans. RemoveAllRanges returns to StateEmpty. Every
// position is checked against the slot bounds and must belong to the root.
//
// # Structural Paths
//
// A path is a detachable encoding of a position as indices walked down from
// the root:
//
//	[s0, c1, s1, ..., ck, sk, offset]
//
// s is the index of a slot within its component and c is the content index
// of a child component within the enclosing slot. No slot index is written
// for a Division, which has exactly one slot. A Leaf has no slots and so
// never appears before the final offset.
//
// CapturePaths encodes every range of a selection. ResolvePaths walks the
// same indices down a tree, which may be a clone of the tree the paths were
// captured from, and fails with a *LookupError when the shape no longer
// matches:
//
//	paths, _ := selection.CapturePaths(sel)
//	restored := root.Clone()
//	ranges, err := selection.ResolvePaths(paths, restored)
//	if errors.Is(err, selection.ErrPositionNotFound) {
//	    // a referenced slot or component is gone
//	}
package selection
