package model

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// plainValue converts a format value to plain data: scalars, strings,
// []string, json.RawMessage, and maps and slices of those. Any other value
// goes through a JSON round trip so the slot never keeps a reference the
// caller still holds. Values JSON cannot encode are stored as their string
// form.
func plainValue(v any) any {
	switch t := v.(type) {
	case nil, bool, string,
		float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plainValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case json.RawMessage:
		return cloneBytes(t)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Sprint(v)
	}
	return out
}

// cloneValue deep-copies a value already made plain by plainValue.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case json.RawMessage:
		return cloneBytes(t)
	default:
		return v
	}
}

// equalValues reports whether two format values are structurally equal.
func equalValues(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
