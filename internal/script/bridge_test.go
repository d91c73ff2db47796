package script

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"
)

func TestToGoValue(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(`
		seq = {1, "two", true}
		map = {href = "https://example.com", size = 12}
		nested = {items = {"a", "b"}}
	`); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		want any
	}{
		{"seq", []any{float64(1), "two", true}},
		{"map", map[string]any{"href": "https://example.com", "size": float64(12)}},
		{"nested", map[string]any{"items": []any{"a", "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toGoValue(L.GetGlobal(tt.name))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToGoValueCycle(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(`loop = {} loop.self = loop`); err != nil {
		t.Fatal(err)
	}
	got := toGoValue(L.GetGlobal("loop"))
	want := map[string]any{"self": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestToLuaValue(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	in := map[string]any{
		"name":  "image",
		"width": float64(320),
		"tags":  []any{"a", "b"},
		"alt":   nil,
	}
	got := toGoValue(toLuaValue(L, in))
	want := map[string]any{
		"name":  "image",
		"width": float64(320),
		"tags":  []any{"a", "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPathTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	path := []int{0, 1, 0, 4}
	got, err := pathFromTable(pathToTable(L, path))
	if err != nil {
		t.Fatalf("pathFromTable failed: %v", err)
	}
	if diff := cmp.Diff(path, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	bad := L.NewTable()
	bad.Append(lua.LNumber(1.5))
	if _, err := pathFromTable(bad); err == nil {
		t.Error("expected error for a fractional element")
	}
}
