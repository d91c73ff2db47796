package script

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// toGoValue converts a Lua value to a Go value.
// Tables with keys 1..n become slices, other tables become maps.
func toGoValue(lv lua.LValue) any {
	return toGoValueWithVisited(lv, make(map[*lua.LTable]bool))
}

func toGoValueWithVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return tableToGo(v, visited)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = toGoValueWithVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGoValueWithVisited(v, visited)
	})
	return m
}

// toLuaValue converts a decoded JSON value to a Lua value.
func toLuaValue(L *lua.LState, v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(t)
	case float64:
		return lua.LNumber(t)
	case int:
		return lua.LNumber(t)
	case int64:
		return lua.LNumber(t)
	case string:
		return lua.LString(t)
	case []any:
		tbl := L.CreateTable(len(t), 0)
		for _, item := range t {
			tbl.Append(toLuaValue(L, item))
		}
		return tbl
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tbl := L.CreateTable(0, len(t))
		for _, k := range keys {
			tbl.RawSetString(k, toLuaValue(L, t[k]))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprint(t))
	}
}

// pathFromTable reads a Lua sequence of integers as an engine path.
func pathFromTable(t *lua.LTable) ([]int, error) {
	n := t.Len()
	path := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		num, ok := t.RawGetInt(i).(lua.LNumber)
		if !ok || float64(num) != float64(int(num)) {
			return nil, fmt.Errorf("path element %d is not an integer", i)
		}
		path = append(path, int(num))
	}
	return path, nil
}

// pathToTable returns path as a Lua sequence.
func pathToTable(L *lua.LState, path []int) *lua.LTable {
	tbl := L.CreateTable(len(path), 0)
	for _, n := range path {
		tbl.Append(lua.LNumber(n))
	}
	return tbl
}
