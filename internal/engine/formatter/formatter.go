// Package formatter provides the built-in inline formatters and the value
// normalization each one applies before a value is stored in a slot.
package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/folio/internal/engine/model"
)

// Priorities of the built-in formatters. Lower values render outermost.
const (
	PriorityMark  = 0
	PriorityLink  = 10
	PriorityColor = 20
	PrioritySize  = 30
)

// Built-in formatters.
var (
	Bold            = &model.Formatter{Name: "bold", Priority: PriorityMark, Normalize: normalizeFlag}
	Italic          = &model.Formatter{Name: "italic", Priority: PriorityMark, Normalize: normalizeFlag}
	Underline       = &model.Formatter{Name: "underline", Priority: PriorityMark, Normalize: normalizeFlag}
	Strikethrough   = &model.Formatter{Name: "strikethrough", Priority: PriorityMark, Normalize: normalizeFlag}
	Code            = &model.Formatter{Name: "code", Priority: PriorityMark, Normalize: normalizeFlag}
	Link            = &model.Formatter{Name: "link", Priority: PriorityLink, Normalize: normalizeLink}
	Color           = &model.Formatter{Name: "color", Priority: PriorityColor, Normalize: NormalizeColor}
	BackgroundColor = &model.Formatter{Name: "backgroundColor", Priority: PriorityColor, Normalize: NormalizeColor}
	FontSize        = &model.Formatter{Name: "fontSize", Priority: PrioritySize, Normalize: normalizeSize}
)

// All returns the built-in formatters in registration order.
func All() []*model.Formatter {
	return []*model.Formatter{
		Bold, Italic, Underline, Strikethrough, Code,
		Link, Color, BackgroundColor, FontSize,
	}
}

// Register installs the built-in formatters into reg.
func Register(reg *model.Registry) error {
	return reg.RegisterFormatter(All()...)
}

// IsFlag reports whether f takes a plain on/off value.
func IsFlag(f *model.Formatter) bool {
	return f != nil && f.Priority == PriorityMark
}

func normalizeFlag(v any) any {
	switch t := v.(type) {
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return v
}

func normalizeLink(v any) any {
	switch t := v.(type) {
	case string:
		return map[string]any{"href": strings.TrimSpace(t)}
	case map[string]any:
		if href, ok := t["href"].(string); ok {
			t["href"] = strings.TrimSpace(href)
		}
	}
	return v
}

// NormalizeColor converts a CSS-like color to lowercase #rrggbb.
// It accepts #rgb, #rrggbb, rrggbb and rgb(r, g, b). Values it cannot
// parse are returned unchanged.
func NormalizeColor(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	c, err := ParseColor(s)
	if err != nil {
		return v
	}
	return c.Clamped().Hex()
}

// ParseColor parses a CSS-like color string.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) != 3 {
			return colorful.Color{}, fmt.Errorf("color %q: want 3 components", s)
		}
		var rgb [3]float64
		for i, p := range parts {
			n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return colorful.Color{}, fmt.Errorf("color %q: %w", s, err)
			}
			rgb[i] = n / 255
		}
		return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return colorful.Hex(s)
}

func normalizeSize(v any) any {
	switch t := v.(type) {
	case float64:
		return formatPixels(t)
	case int:
		return formatPixels(float64(t))
	case string:
		t = strings.TrimSpace(t)
		if n, err := strconv.ParseFloat(t, 64); err == nil {
			return formatPixels(n)
		}
		return t
	}
	return v
}

func formatPixels(n float64) string {
	if n == math.Trunc(n) {
		return strconv.FormatInt(int64(n), 10) + "px"
	}
	return strconv.FormatFloat(n, 'f', -1, 64) + "px"
}
