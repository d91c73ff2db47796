// Package blocks defines the built-in structural components of a folio
// document: the root, paragraphs, lists, tables and images.
//
// Only the structure of each component is described here. How a component
// is drawn belongs to whatever renders the document.
package blocks

import (
	"encoding/json"

	"github.com/dshills/folio/internal/engine/model"
)

// Component names.
const (
	NameRoot      = "root"
	NameParagraph = "paragraph"
	NameList      = "list"
	NameTable     = "table"
	NameImage     = "image"
)

// Table slot names.
const (
	SlotHead = "head"
	SlotBody = "body"
)

var (
	inlineContent = []model.ContentType{model.ContentText, model.ContentInline}
	blockContent  = []model.ContentType{model.ContentBlock}
)

// Built-in definitions.
var (
	// Root is the document container. Its single slot holds blocks.
	Root = &model.Definition{
		Name:   NameRoot,
		Kind:   model.KindDivision,
		Type:   model.ContentBlock,
		Schema: blockContent,
	}

	// Paragraph holds one run of text and inline components.
	Paragraph = &model.Definition{
		Name:   NameParagraph,
		Kind:   model.KindDivision,
		Type:   model.ContentBlock,
		Schema: inlineContent,
	}

	// List has one slot per item.
	List = &model.Definition{
		Name:   NameList,
		Kind:   model.KindBackbone,
		Type:   model.ContentBlock,
		Schema: inlineContent,
		State:  json.RawMessage(`{"ordered":false}`),
	}

	// Table has a head and a body section, each holding blocks.
	Table = &model.Definition{
		Name:      NameTable,
		Kind:      model.KindBranch,
		Type:      model.ContentBlock,
		Schema:    blockContent,
		SlotNames: []string{SlotHead, SlotBody},
	}

	// Image is an inline leaf described entirely by its state.
	Image = &model.Definition{
		Name:  NameImage,
		Kind:  model.KindLeaf,
		Type:  model.ContentInline,
		State: json.RawMessage(`{"src":"","alt":""}`),
	}
)

// All returns the built-in definitions.
func All() []*model.Definition {
	return []*model.Definition{Root, Paragraph, List, Table, Image}
}

// Register installs the built-in definitions into reg.
func Register(reg *model.Registry) error {
	return reg.RegisterComponent(All()...)
}

// NewParagraph creates a paragraph holding text.
func NewParagraph(text string) (*model.Component, error) {
	p, err := Paragraph.CreateInstance(nil)
	if err != nil {
		return nil, err
	}
	if err := p.Slot().Insert(model.Text(text)); err != nil {
		return nil, err
	}
	return p, nil
}

// NewDocument creates a root holding one empty paragraph.
func NewDocument() (*model.Component, error) {
	root, err := Root.CreateInstance(nil)
	if err != nil {
		return nil, err
	}
	p, err := NewParagraph("")
	if err != nil {
		return nil, err
	}
	if err := root.Slot().Insert(model.Embed(p)); err != nil {
		return nil, err
	}
	return root, nil
}

// NewList creates a list with one slot per item.
func NewList(ordered bool, items ...string) (*model.Component, error) {
	slots := make([]*model.Slot, len(items))
	for i, text := range items {
		slots[i] = NewListItem()
		if err := slots[i].Insert(model.Text(text)); err != nil {
			return nil, err
		}
	}
	l, err := List.CreateInstance(&model.InitData{Slots: slots})
	if err != nil {
		return nil, err
	}
	if err := l.SetStateValue("ordered", ordered); err != nil {
		return nil, err
	}
	return l, nil
}

// NewListItem creates an empty detached list item slot.
func NewListItem() *model.Slot {
	return model.NewSlot(inlineContent)
}

// NewImage creates an image pointing at src.
func NewImage(src, alt string) (*model.Component, error) {
	img, err := Image.CreateInstance(nil)
	if err != nil {
		return nil, err
	}
	if err := img.SetStateValue("src", src); err != nil {
		return nil, err
	}
	if err := img.SetStateValue("alt", alt); err != nil {
		return nil, err
	}
	return img, nil
}
