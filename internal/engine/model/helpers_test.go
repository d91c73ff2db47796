package model

import (
	"encoding/json"
	"strings"
	"testing"
)

var (
	textOnly   = []ContentType{ContentText}
	textAndInl = []ContentType{ContentText, ContentInline}
	blocksOnly = []ContentType{ContentBlock}
	testBold   = &Formatter{Name: "bold", Priority: 0}
	testItalic = &Formatter{Name: "italic", Priority: 0}
	testColor  = &Formatter{Name: "color", Priority: 20, Normalize: func(v any) any {
		if s, ok := v.(string); ok {
			return strings.ToLower(s)
		}
		return v
	}}
)

var (
	rootDef  = &Definition{Name: "root", Kind: KindDivision, Type: ContentBlock, Schema: blocksOnly}
	paraDef  = &Definition{Name: "paragraph", Kind: KindDivision, Type: ContentBlock, Schema: textAndInl}
	listDef  = &Definition{Name: "list", Kind: KindBackbone, Type: ContentBlock, Schema: textAndInl}
	tableDef = &Definition{
		Name:      "table",
		Kind:      KindBranch,
		Type:      ContentBlock,
		Schema:    blocksOnly,
		SlotNames: []string{"head", "body"},
	}
	imageDef = &Definition{
		Name:  "image",
		Kind:  KindLeaf,
		Type:  ContentInline,
		State: json.RawMessage(`{"src":""}`),
	}
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := r.RegisterComponent(rootDef, paraDef, listDef, tableDef, imageDef); err != nil {
		t.Fatalf("RegisterComponent: %v", err)
	}
	if err := r.RegisterFormatter(testBold, testItalic, testColor); err != nil {
		t.Fatalf("RegisterFormatter: %v", err)
	}
	return r
}

func mustCreate(t *testing.T, d *Definition, init *InitData) *Component {
	t.Helper()
	c, err := d.CreateInstance(init)
	if err != nil {
		t.Fatalf("CreateInstance(%s): %v", d.Name, err)
	}
	return c
}

func newTextSlot(t *testing.T, text string) *Slot {
	t.Helper()
	s := NewSlot(textAndInl)
	if err := s.Insert(Text(text)); err != nil {
		t.Fatalf("Insert(%q): %v", text, err)
	}
	return s
}

func newParagraph(t *testing.T, text string) *Component {
	t.Helper()
	p := mustCreate(t, paraDef, nil)
	if text != "" {
		if err := p.Slot().Insert(Text(text)); err != nil {
			t.Fatalf("Insert(%q): %v", text, err)
		}
	}
	return p
}

// buildDocument returns root > [paragraph "intro", list [item0, item1 with image, item2], table{head, body > paragraph "cell"}].
func buildDocument(t *testing.T) *Component {
	t.Helper()
	root := mustCreate(t, rootDef, nil)
	body := root.Slot()

	if err := body.Insert(Embed(newParagraph(t, "intro"))); err != nil {
		t.Fatalf("insert paragraph: %v", err)
	}

	list := mustCreate(t, listDef, &InitData{Slots: []*Slot{
		newTextSlot(t, "first"),
		newTextSlot(t, "second"),
		newTextSlot(t, "third"),
	}})
	item1, _ := list.SlotAt(1)
	if err := item1.InsertAt(3, Embed(mustCreate(t, imageDef, nil))); err != nil {
		t.Fatalf("insert image: %v", err)
	}
	if err := body.Insert(Embed(list)); err != nil {
		t.Fatalf("insert list: %v", err)
	}

	table := mustCreate(t, tableDef, nil)
	tbody, _ := table.SlotByName("body")
	if err := tbody.Insert(Embed(newParagraph(t, "cell"))); err != nil {
		t.Fatalf("insert cell: %v", err)
	}
	if err := body.Insert(Embed(table)); err != nil {
		t.Fatalf("insert table: %v", err)
	}
	return root
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	return string(b)
}
