package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var blockListDef = &Definition{Name: "blocklist", Kind: KindBackbone, Type: ContentBlock, Schema: blocksOnly}

func TestCreateInstanceKinds(t *testing.T) {
	root := mustCreate(t, rootDef, nil)
	if root.SlotCount() != 1 || root.Slot() == nil {
		t.Errorf("division: SlotCount() = %d, Slot() = %v", root.SlotCount(), root.Slot())
	}
	if root.Slot().Parent() != root {
		t.Error("division slot parent not set")
	}
	if !root.Slot().Accepts(ContentBlock) {
		t.Error("division slot should use the definition schema")
	}

	table := mustCreate(t, tableDef, nil)
	if diff := cmp.Diff([]string{"head", "body"}, table.SlotNames()); diff != "" {
		t.Errorf("branch names mismatch (-want +got):\n%s", diff)
	}
	if table.Slot() != nil {
		t.Error("Slot() on a branch should be nil")
	}
	if _, ok := table.SlotByName("body"); !ok {
		t.Error("SlotByName(body) not found")
	}
	if _, ok := table.SlotByName("foot"); ok {
		t.Error("SlotByName(foot) should not exist")
	}

	list := mustCreate(t, listDef, nil)
	if list.SlotCount() != 0 {
		t.Errorf("backbone default SlotCount() = %d, want 0", list.SlotCount())
	}

	img := mustCreate(t, imageDef, &InitData{State: json.RawMessage(`{"src":"a.png"}`)})
	if img.SlotCount() != 0 {
		t.Errorf("leaf SlotCount() = %d, want 0", img.SlotCount())
	}
	if got := img.StateValue("src").String(); got != "a.png" {
		t.Errorf("src = %q, want a.png", got)
	}
	if got := mustCreate(t, imageDef, nil).StateValue("src").Exists(); !got {
		t.Error("default state not applied")
	}
}

func TestCreateInstanceErrors(t *testing.T) {
	attached := mustCreate(t, rootDef, nil).Slot()
	shared := NewSlot(textOnly)

	tests := []struct {
		name string
		def  *Definition
		init *InitData
		want error
	}{
		{"division two slots", rootDef, &InitData{Slots: []*Slot{NewSlot(blocksOnly), NewSlot(blocksOnly)}}, ErrInvalidSlots},
		{"division no slots", rootDef, &InitData{Slots: []*Slot{}}, ErrInvalidSlots},
		{"leaf with slot", imageDef, &InitData{Slots: []*Slot{NewSlot(textOnly)}}, ErrInvalidSlots},
		{"branch missing names", tableDef, &InitData{Slots: []*Slot{NewSlot(blocksOnly)}}, ErrInvalidSlots},
		{"branch duplicate names", tableDef, &InitData{
			Slots:     []*Slot{NewSlot(blocksOnly), NewSlot(blocksOnly)},
			SlotNames: []string{"a", "a"},
		}, ErrDuplicateName},
		{"attached slot", listDef, &InitData{Slots: []*Slot{attached}}, ErrAlreadyAttached},
		{"slot twice", listDef, &InitData{Slots: []*Slot{shared, shared}}, ErrInvalidSlots},
		{"nil slot", listDef, &InitData{Slots: []*Slot{nil}}, ErrInvalidSlots},
		{"invalid state", imageDef, &InitData{State: json.RawMessage(`{`)}, ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.CreateInstance(tt.init)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if shared.Parent() != nil {
		t.Error("failed creation must not attach slots")
	}
}

func TestComponentNavigation(t *testing.T) {
	root := buildDocument(t)
	blocks := root.Slot().Components()
	if len(blocks) != 3 {
		t.Fatalf("root has %d blocks, want 3", len(blocks))
	}

	list := blocks[1]
	if list.Name() != "list" || list.Kind() != KindBackbone {
		t.Errorf("blocks[1] = %s/%s, want list/backbone", list.Name(), list.Kind())
	}
	if list.Parent() != root.Slot() {
		t.Error("list parent should be the root slot")
	}

	item1, err := list.SlotAt(1)
	if err != nil {
		t.Fatal(err)
	}
	if list.IndexOfSlot(item1) != 1 {
		t.Errorf("IndexOfSlot = %d, want 1", list.IndexOfSlot(item1))
	}
	img := item1.Components()[0]
	if img.Root() != root {
		t.Error("Root() from image should reach the root")
	}
	if root.Root() != root {
		t.Error("Root() of root should be itself")
	}

	table := blocks[2]
	name, err := table.SlotName(1)
	if err != nil || name != "body" {
		t.Errorf("SlotName(1) = %q, %v; want body", name, err)
	}
	if _, err := list.SlotName(0); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("SlotName on backbone error = %v, want ErrKindMismatch", err)
	}
	if _, err := list.SlotAt(3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SlotAt(3) error = %v, want ErrOutOfBounds", err)
	}
	if list.IndexOfSlot(NewSlot(textOnly)) != -1 {
		t.Error("IndexOfSlot of a foreign slot should be -1")
	}
}

func TestComponentBackboneSlots(t *testing.T) {
	list := mustCreate(t, listDef, nil)
	a, b, c := newTextSlot(t, "a"), newTextSlot(t, "b"), newTextSlot(t, "c")

	for i, s := range []*Slot{a, b, c} {
		if err := list.InsertSlot(i, s); err != nil {
			t.Fatalf("InsertSlot(%d): %v", i, err)
		}
	}
	if err := list.MoveSlot(0, 2); err != nil {
		t.Fatalf("MoveSlot: %v", err)
	}
	if got := slotTexts(list); !cmp.Equal(got, []string{"b", "c", "a"}) {
		t.Errorf("after move got %v, want [b c a]", got)
	}

	removed, err := list.RemoveSlot(1)
	if err != nil {
		t.Fatalf("RemoveSlot: %v", err)
	}
	if removed != c || removed.Parent() != nil {
		t.Error("RemoveSlot should return the detached slot")
	}
	if got := slotTexts(list); !cmp.Equal(got, []string{"b", "a"}) {
		t.Errorf("after remove got %v, want [b a]", got)
	}

	if err := list.InsertSlot(0, a); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("reinsert error = %v, want ErrAlreadyAttached", err)
	}
	if err := list.InsertSlot(5, NewSlot(textOnly)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("InsertSlot(5) error = %v, want ErrOutOfBounds", err)
	}
	if err := list.InsertNamedSlot(0, "x", NewSlot(textOnly)); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("InsertNamedSlot on backbone error = %v, want ErrKindMismatch", err)
	}
	if err := list.MoveSlot(0, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("MoveSlot(0,2) error = %v, want ErrOutOfBounds", err)
	}
}

func TestComponentBranchSlots(t *testing.T) {
	table := mustCreate(t, tableDef, nil)

	foot := NewSlot(blocksOnly)
	if err := table.InsertNamedSlot(2, "foot", foot); err != nil {
		t.Fatalf("InsertNamedSlot: %v", err)
	}
	if err := table.InsertNamedSlot(0, "head", NewSlot(blocksOnly)); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate name error = %v, want ErrDuplicateName", err)
	}
	if err := table.MoveSlot(2, 0); err != nil {
		t.Fatalf("MoveSlot: %v", err)
	}
	if diff := cmp.Diff([]string{"foot", "head", "body"}, table.SlotNames()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if s, _ := table.SlotByName("foot"); s != foot {
		t.Error("SlotByName(foot) returned the wrong slot")
	}
	if err := table.InsertSlot(0, NewSlot(blocksOnly)); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("InsertSlot on branch error = %v, want ErrKindMismatch", err)
	}

	if _, err := table.RemoveSlot(1); err != nil {
		t.Fatalf("RemoveSlot: %v", err)
	}
	if diff := cmp.Diff([]string{"foot", "body"}, table.SlotNames()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestComponentSlotOpsKindMismatch(t *testing.T) {
	para := newParagraph(t, "x")
	img := mustCreate(t, imageDef, nil)

	for _, c := range []*Component{para, img} {
		if err := c.InsertSlot(0, NewSlot(textOnly)); !errors.Is(err, ErrKindMismatch) {
			t.Errorf("%s InsertSlot error = %v, want ErrKindMismatch", c.Name(), err)
		}
		if _, err := c.RemoveSlot(0); !errors.Is(err, ErrKindMismatch) {
			t.Errorf("%s RemoveSlot error = %v, want ErrKindMismatch", c.Name(), err)
		}
		if err := c.MoveSlot(0, 0); !errors.Is(err, ErrKindMismatch) {
			t.Errorf("%s MoveSlot error = %v, want ErrKindMismatch", c.Name(), err)
		}
	}
}

func TestComponentSlotCycle(t *testing.T) {
	outer := NewSlot(blocksOnly)
	bl := mustCreate(t, blockListDef, nil)
	if err := outer.Insert(Embed(bl)); err != nil {
		t.Fatal(err)
	}
	if err := bl.InsertSlot(0, outer); !errors.Is(err, ErrCycle) {
		t.Errorf("InsertSlot(own container) error = %v, want ErrCycle", err)
	}

	inner := NewSlot(blocksOnly)
	if err := bl.InsertSlot(0, inner); err != nil {
		t.Fatal(err)
	}
	if err := inner.Insert(Embed(bl)); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("insert attached component error = %v, want ErrAlreadyAttached", err)
	}
}

func TestComponentClone(t *testing.T) {
	root := buildDocument(t)
	intro := root.Slot().Components()[0]
	if err := intro.Slot().ApplyFormat(testBold, true, 0, 3); err != nil {
		t.Fatal(err)
	}
	if err := intro.SetStateValue("align", "center"); err != nil {
		t.Fatal(err)
	}

	var calls int
	root.OnChange(func(Change) { calls++ })

	clone := root.Clone()
	if mustJSON(t, clone) != mustJSON(t, root) {
		t.Fatalf("clone JSON differs:\n%s\n%s", mustJSON(t, clone), mustJSON(t, root))
	}
	if clone.Parent() != nil {
		t.Error("clone should be detached")
	}

	before := mustJSON(t, root)
	cintro := clone.Slot().Components()[0]
	if err := cintro.Slot().Insert(Text("!")); err != nil {
		t.Fatal(err)
	}
	if err := cintro.SetStateValue("align", "right"); err != nil {
		t.Fatal(err)
	}
	list := clone.Slot().Components()[1]
	if _, err := list.RemoveSlot(0); err != nil {
		t.Fatal(err)
	}

	if mustJSON(t, root) != before {
		t.Error("mutating the clone changed the original")
	}
	if calls != 0 {
		t.Errorf("clone mutations reached original observers %d times", calls)
	}
}

func TestComponentReplaceContent(t *testing.T) {
	root := buildDocument(t)
	snapshot := root.Clone()

	var got []ChangeOp
	root.OnChange(func(ch Change) { got = append(got, ch.Op) })

	intro := root.Slot().Components()[0]
	if err := intro.Slot().Insert(Text(" more")); err != nil {
		t.Fatal(err)
	}
	oldSlot := root.Slot()

	if err := root.ReplaceContent(snapshot); err != nil {
		t.Fatalf("ReplaceContent: %v", err)
	}
	if root.Slot().Components()[0].Slot().Text() != "intro" {
		t.Errorf("content not restored: %q", root.Slot().Components()[0].Slot().Text())
	}
	if root.Slot().Parent() != root {
		t.Error("replaced slot should belong to the target")
	}
	if oldSlot.Parent() != nil {
		t.Error("old slot should be detached")
	}
	if snapshot.SlotCount() != 0 {
		t.Error("source should give up its slots")
	}

	if err := root.Slot().Components()[0].Slot().Insert(Text("?")); err != nil {
		t.Fatal(err)
	}
	want := []ChangeOp{ChangeInsert, ChangeReplace, ChangeInsert}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("observed ops mismatch (-want +got):\n%s", diff)
	}

	if err := root.ReplaceContent(mustCreate(t, listDef, nil)); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("ReplaceContent kind mismatch error = %v", err)
	}
}

func TestComponentChangePropagation(t *testing.T) {
	root := buildDocument(t)
	list := root.Slot().Components()[1]
	item2, _ := list.SlotAt(2)

	var rootChanges, listChanges []Change
	sub := root.OnChange(func(ch Change) { rootChanges = append(rootChanges, ch) })
	list.OnChange(func(ch Change) { listChanges = append(listChanges, ch) })

	if err := item2.Insert(Text("!")); err != nil {
		t.Fatal(err)
	}
	if len(rootChanges) != 1 || len(listChanges) != 1 {
		t.Fatalf("got %d root and %d list changes, want 1 each", len(rootChanges), len(listChanges))
	}
	ch := rootChanges[0]
	if ch.Op != ChangeInsert || ch.Slot != item2 || ch.Component != list {
		t.Errorf("change = %+v, want insert on item2 of list", ch)
	}

	if _, err := list.RemoveSlot(0); err != nil {
		t.Fatal(err)
	}
	if rootChanges[1].Op != ChangeSlots || rootChanges[1].Slot != nil {
		t.Errorf("change = %+v, want slots change", rootChanges[1])
	}

	sub.Unsubscribe()
	if err := root.SetStateValue("title", "doc"); err != nil {
		t.Fatal(err)
	}
	if len(rootChanges) != 2 {
		t.Errorf("unsubscribed observer called, got %d changes", len(rootChanges))
	}
}

func TestDetachedSlotChangesAreSilent(t *testing.T) {
	root := buildDocument(t)
	var calls int
	root.OnChange(func(Change) { calls++ })

	list := root.Slot().Components()[1]
	removed, err := list.RemoveSlot(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := removed.Insert(Text("x")); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRegistry(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.RegisterComponent(paraDef); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate component error = %v, want ErrDuplicateName", err)
	}
	if err := r.RegisterFormatter(testBold); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate formatter error = %v, want ErrDuplicateName", err)
	}
	if _, err := r.Create("video", nil); !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("Create(video) error = %v, want ErrUnknownComponent", err)
	}

	p, err := r.Create("paragraph", nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition() != paraDef {
		t.Error("Create should use the registered definition")
	}

	wantComponents := []string{"image", "list", "paragraph", "root", "table"}
	if diff := cmp.Diff(wantComponents, r.ComponentNames()); diff != "" {
		t.Errorf("component names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bold", "color", "italic"}, r.FormatterNames()); diff != "" {
		t.Errorf("formatter names mismatch (-want +got):\n%s", diff)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindDivision, "division"},
		{KindBranch, "branch"},
		{KindBackbone, "backbone"},
		{KindLeaf, "leaf"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func slotTexts(c *Component) []string {
	var out []string
	for _, s := range c.Slots() {
		out = append(out, s.Text())
	}
	return out
}
