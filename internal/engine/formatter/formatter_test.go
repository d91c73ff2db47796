package formatter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/folio/internal/engine/model"
)

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{"#FF0000", "#ff0000"},
		{"#f00", "#ff0000"},
		{"00ff00", "#00ff00"},
		{" rgb(0, 0, 255) ", "#0000ff"},
		{"rgb(300, 0, 0)", "#ff0000"},
		{"tomato", "tomato"},
		{42.0, 42.0},
	}

	for _, tt := range tests {
		if got := NormalizeColor(tt.in); got != tt.want {
			t.Errorf("NormalizeColor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeFlag(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{true, true},
		{"true", true},
		{" 0 ", false},
		{1.0, true},
		{0, false},
		{"bogus", "bogus"},
	}

	for _, tt := range tests {
		if got := normalizeFlag(tt.in); got != tt.want {
			t.Errorf("normalizeFlag(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSize(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{14.0, "14px"},
		{12, "12px"},
		{"10.5", "10.5px"},
		{" 2em ", "2em"},
	}

	for _, tt := range tests {
		if got := normalizeSize(tt.in); got != tt.want {
			t.Errorf("normalizeSize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLink(t *testing.T) {
	got := normalizeLink(" https://example.com ")
	want := map[string]any{"href": "https://example.com"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalizeLink mismatch (-want +got):\n%s", diff)
	}
}

func TestRegister(t *testing.T) {
	reg := model.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	want := []string{"backgroundColor", "bold", "code", "color", "fontSize", "italic", "link", "strikethrough", "underline"}
	if diff := cmp.Diff(want, reg.FormatterNames()); diff != "" {
		t.Errorf("formatter names mismatch (-want +got):\n%s", diff)
	}
	if err := Register(reg); !errors.Is(err, model.ErrDuplicateName) {
		t.Errorf("second Register error = %v, want ErrDuplicateName", err)
	}
}

func TestColorAppliedThroughSlot(t *testing.T) {
	s := model.NewSlot([]model.ContentType{model.ContentText})
	if err := s.Insert(model.Text("hello")); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyFormat(Color, "#ABC", 0, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyFormat(Color, "rgb(170, 187, 204)", 2, 5); err != nil {
		t.Fatal(err)
	}

	want := []model.FormatRange{{Start: 0, End: 5, Value: "#aabbcc"}}
	if diff := cmp.Diff(want, s.FormatRanges("color")); diff != "" {
		t.Errorf("color ranges mismatch (-want +got):\n%s", diff)
	}
}

func TestIsFlag(t *testing.T) {
	if !IsFlag(Bold) || IsFlag(Color) || IsFlag(nil) {
		t.Error("IsFlag classification wrong")
	}
}
