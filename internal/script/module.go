package script

import (
	"encoding/json"
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/folio/internal/engine"
)

// docModule implements the doc Lua module.
type docModule struct {
	engine *engine.Engine
}

func newDocModule(e *engine.Engine) *docModule {
	return &docModule{engine: e}
}

// Name returns the module name.
func (m *docModule) Name() string {
	return "doc"
}

// Register registers the module into the Lua state.
func (m *docModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "text", L.NewFunction(m.text))
	L.SetField(mod, "insert", L.NewFunction(m.insert))
	L.SetField(mod, "insert_component", L.NewFunction(m.insertComponent))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
	L.SetField(mod, "backspace", L.NewFunction(m.backspace))
	L.SetField(mod, "delete_forward", L.NewFunction(m.deleteForward))
	L.SetField(mod, "split", L.NewFunction(m.breakSlot))
	L.SetField(mod, "break", L.NewFunction(m.breakSlot))
	L.SetField(mod, "format", L.NewFunction(m.format))
	L.SetField(mod, "unformat", L.NewFunction(m.unformat))
	L.SetField(mod, "toggle", L.NewFunction(m.toggle))
	L.SetField(mod, "formats", L.NewFunction(m.formats))
	L.SetField(mod, "select", L.NewFunction(m.sel))
	L.SetField(mod, "caret", L.NewFunction(m.caret))
	L.SetField(mod, "paths", L.NewFunction(m.paths))
	L.SetField(mod, "move", L.NewFunction(m.move))
	L.SetField(mod, "undo", L.NewFunction(m.undo))
	L.SetField(mod, "redo", L.NewFunction(m.redo))
	L.SetField(mod, "checkpoint", L.NewFunction(m.checkpoint))
	L.SetField(mod, "state", L.NewFunction(m.state))

	L.SetGlobal(m.Name(), mod)
	return nil
}

// text() -> string
// Returns the plain text of the document.
func (m *docModule) text(L *lua.LState) int {
	L.Push(lua.LString(m.engine.Text()))
	return 1
}

// insert(text)
// Inserts text at the caret, replacing a non-collapsed selection.
func (m *docModule) insert(L *lua.LState) int {
	text := L.CheckString(1)
	if err := m.engine.InsertText(text); err != nil {
		L.RaiseError("insert: %v", err)
	}
	return 0
}

// insert_component(name [, state])
// Inserts a registered component, with state given as a table.
func (m *docModule) insertComponent(L *lua.LState) int {
	name := L.CheckString(1)
	var state json.RawMessage
	if tbl := L.OptTable(2, nil); tbl != nil {
		data, err := json.Marshal(toGoValue(tbl))
		if err != nil {
			L.ArgError(2, err.Error())
			return 0
		}
		state = data
	}
	if err := m.engine.InsertComponent(name, state); err != nil {
		L.RaiseError("insert_component: %v", err)
	}
	return 0
}

// delete()
// Deletes the selected content.
func (m *docModule) delete(L *lua.LState) int {
	if err := m.engine.DeleteSelection(); err != nil {
		L.RaiseError("delete: %v", err)
	}
	return 0
}

// backspace()
// Deletes the selection or the character before the caret.
func (m *docModule) backspace(L *lua.LState) int {
	if err := m.engine.DeleteBackward(); err != nil {
		L.RaiseError("backspace: %v", err)
	}
	return 0
}

// delete_forward()
// Deletes the selection or the character after the caret.
func (m *docModule) deleteForward(L *lua.LState) int {
	if err := m.engine.DeleteForward(); err != nil {
		L.RaiseError("delete_forward: %v", err)
	}
	return 0
}

// split(), also reachable as doc["break"]()
// Splits the caret's paragraph or list item.
func (m *docModule) breakSlot(L *lua.LState) int {
	if err := m.engine.BreakSlot(); err != nil {
		L.RaiseError("break: %v", err)
	}
	return 0
}

// format(name [, value])
// Applies a format to the selection. The value defaults to true.
func (m *docModule) format(L *lua.LState) int {
	name := L.CheckString(1)
	var value any = true
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		value = toGoValue(L.Get(2))
	}
	if err := m.engine.ApplyFormat(name, value); err != nil {
		L.RaiseError("format: %v", err)
	}
	return 0
}

// unformat(name)
// Removes a format from the selection.
func (m *docModule) unformat(L *lua.LState) int {
	name := L.CheckString(1)
	if err := m.engine.UnapplyFormat(name); err != nil {
		L.RaiseError("unformat: %v", err)
	}
	return 0
}

// toggle(name)
// Toggles an on/off format over the selection.
func (m *docModule) toggle(L *lua.LState) int {
	name := L.CheckString(1)
	if err := m.engine.ToggleFormat(name); err != nil {
		L.RaiseError("toggle: %v", err)
	}
	return 0
}

// formats() -> table
// Returns the formats at the caret keyed by name.
func (m *docModule) formats(L *lua.LState) int {
	items, err := m.engine.FormatsAt()
	if err != nil {
		L.RaiseError("formats: %v", err)
		return 0
	}
	tbl := L.NewTable()
	for _, item := range items {
		tbl.RawSetString(item.Name, toLuaValue(L, item.Value))
	}
	L.Push(tbl)
	return 1
}

// select(anchor [, focus])
// Selects from anchor to focus, or collapses the caret at anchor.
func (m *docModule) sel(L *lua.LState) int {
	anchor, err := pathFromTable(L.CheckTable(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	if L.GetTop() < 2 || L.Get(2) == lua.LNil {
		if err := m.engine.SetCaret(anchor); err != nil {
			L.RaiseError("select: %v", err)
		}
		return 0
	}
	focus, err := pathFromTable(L.CheckTable(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	if err := m.engine.SelectRange(anchor, focus); err != nil {
		L.RaiseError("select: %v", err)
	}
	return 0
}

// caret() -> table
// Returns the path of the selection focus.
func (m *docModule) caret(L *lua.LState) int {
	path, err := m.engine.Caret()
	if err != nil {
		L.RaiseError("caret: %v", err)
		return 0
	}
	L.Push(pathToTable(L, path))
	return 1
}

// paths() -> table
// Returns one {start = path, ["end"] = path} entry per range.
func (m *docModule) paths(L *lua.LState) int {
	all, err := m.engine.Paths()
	if err != nil {
		L.RaiseError("paths: %v", err)
		return 0
	}
	tbl := L.CreateTable(len(all), 0)
	for _, p := range all {
		entry := L.CreateTable(0, 2)
		entry.RawSetString("start", pathToTable(L, p.StartPaths))
		entry.RawSetString("end", pathToTable(L, p.EndPaths))
		tbl.Append(entry)
	}
	L.Push(tbl)
	return 1
}

// move(where)
// Moves the caret to "start", "end", "next" or "prev".
func (m *docModule) move(L *lua.LState) int {
	switch where := L.CheckString(1); where {
	case "start":
		m.engine.MoveToStart()
	case "end":
		m.engine.MoveToEnd()
	case "next":
		m.engine.MoveNext()
	case "prev":
		m.engine.MovePrevious()
	default:
		L.ArgError(1, "unknown direction "+where)
	}
	return 0
}

// undo() -> bool
// Restores the previous snapshot. Returns false when there is none.
func (m *docModule) undo(L *lua.LState) int {
	err := m.engine.Undo()
	if errors.Is(err, engine.ErrNothingToUndo) {
		L.Push(lua.LFalse)
		return 1
	}
	if err != nil {
		L.RaiseError("undo: %v", err)
		return 0
	}
	L.Push(lua.LTrue)
	return 1
}

// redo() -> bool
// Restores the next snapshot. Returns false when there is none.
func (m *docModule) redo(L *lua.LState) int {
	err := m.engine.Redo()
	if errors.Is(err, engine.ErrNothingToRedo) {
		L.Push(lua.LFalse)
		return 1
	}
	if err != nil {
		L.RaiseError("redo: %v", err)
		return 0
	}
	L.Push(lua.LTrue)
	return 1
}

// checkpoint()
// Captures pending edits as their own undo step.
func (m *docModule) checkpoint(L *lua.LState) int {
	if err := m.engine.Checkpoint(); err != nil {
		L.RaiseError("checkpoint: %v", err)
	}
	return 0
}

// state(path) -> value
// Looks up a gjson path in the document literal.
func (m *docModule) state(L *lua.LState) int {
	path := L.CheckString(1)
	res := m.engine.Query(path)
	if !res.Exists() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toLuaValue(L, res.Value()))
	return 1
}
