// Package engine provides the document editing engine for folio.
//
// The engine package serves as the main facade, combining the content
// model, the selection and snapshot history into a unified, thread-safe
// API for building rich-text editors.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - model: slots, components, formats and their JSON literals
//   - formatter: built-in inline formats and value normalization
//   - blocks: built-in root, paragraph, list, table and image components
//   - selection: ranges over slots and their structural paths
//   - history: sampled snapshots with undo/redo navigation
//
// # Thread Safety
//
// All Engine operations are thread-safe. The engine uses a read-write mutex
// to allow concurrent reads while serializing writes. The history sampling
// timer takes the same lock before it captures a snapshot, so a snapshot
// never sees a half-applied command.
//
// # Basic Usage
//
//	e, err := engine.New()
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	e.InsertText("Hello, World!")
//	e.SelectRange([]int{0, 0}, []int{0, 5})
//	e.ToggleFormat("bold")
//
//	e.Undo() // "Hello, World!" without bold
//
// # Paths
//
// A position is addressed by a path of integers. Walking down from the
// root, each component contributes the index of the slot that leads to the
// position, and each slot the index of the next component in it. The path
// ends with the offset. Division components have a single slot, so their
// slot index is left out: offset 5 of the first paragraph in the root is
// [0, 5]. Paths survive cloning and are what history snapshots store in
// place of live references.
package engine
