// Package script runs Lua programs against a folio engine.
//
// A State wraps a gopher-lua interpreter with only the base, table, string
// and math libraries opened. The global doc module exposes the engine's
// editing commands:
//
//	doc.insert("Hello")
//	doc.select({0, 0}, {0, 5})
//	doc.format("bold", true)
//	doc.undo()
//
// Paths are Lua sequences of the same zero-based integers the engine uses,
// so {0, 5} is offset 5 in the first paragraph. Engine errors are raised as
// Lua errors and surface from DoString and DoFile.
package script
