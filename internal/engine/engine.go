package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/folio/internal/engine/blocks"
	"github.com/dshills/folio/internal/engine/formatter"
	"github.com/dshills/folio/internal/engine/history"
	"github.com/dshills/folio/internal/engine/model"
	"github.com/dshills/folio/internal/engine/selection"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/notify"
)

// Engine is the main document editing facade.
// It combines the content model, the selection and the snapshot history
// into a thread-safe API.
type Engine struct {
	mu sync.RWMutex

	registry *model.Registry
	root     *model.Component
	sel      *selection.Selection
	history  *history.History
	logger   *logging.Logger

	// Configuration
	initRoot        *model.Component
	extraDefs       []*model.Definition
	extraFormatters []*model.Formatter
	maxHistory      int
	sampleInterval  time.Duration
	scheduler       history.Scheduler
	normalize       bool
	readOnly        bool

	closed bool
}

// New creates a new engine with the given options.
// Without WithRoot the document is a root holding one empty paragraph.
// The caret starts at the first slot that accepts text.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		maxHistory:     DefaultMaxHistory,
		sampleInterval: DefaultSampleInterval,
		scheduler:      history.RealScheduler,
		logger:         logging.Null(),
		normalize:      true,
	}
	for _, opt := range opts {
		opt(e)
	}
	base := e.logger
	e.logger = base.WithComponent("engine")

	e.registry = model.NewRegistry()
	if err := formatter.Register(e.registry); err != nil {
		return nil, err
	}
	if err := e.registry.RegisterFormatter(e.extraFormatters...); err != nil {
		return nil, err
	}
	if err := blocks.Register(e.registry); err != nil {
		return nil, err
	}
	if err := e.registry.RegisterComponent(e.extraDefs...); err != nil {
		return nil, err
	}

	root := e.initRoot
	if root == nil {
		var err error
		if root, err = blocks.NewDocument(); err != nil {
			return nil, err
		}
	}
	if err := checkRoot(root); err != nil {
		return nil, err
	}
	e.root = root
	e.sel = selection.New(root)
	e.resetCaretLocked()

	e.history = history.New(root, e.sel,
		history.WithMaxSize(e.maxHistory),
		history.WithSampleInterval(e.sampleInterval),
		history.WithScheduler(e.scheduler),
		history.WithLocker(&e.mu),
		history.WithLogger(base),
	)
	if err := e.history.Record(); err != nil {
		return nil, err
	}
	return e, nil
}

func checkRoot(root *model.Component) error {
	switch {
	case root.Parent() != nil:
		return fmt.Errorf("root %s: %w", root.Name(), model.ErrAlreadyAttached)
	case root.Kind() != model.KindDivision || !root.Slot().Accepts(model.ContentBlock):
		return fmt.Errorf("root %s must be a division holding blocks: %w", root.Name(), model.ErrKindMismatch)
	}
	return nil
}

// ============================================================================
// Read Operations
// ============================================================================

// Registry returns the component and formatter registry.
func (e *Engine) Registry() *model.Registry {
	return e.registry
}

// Text returns the document as plain text, one line per text slot.
func (e *Engine) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return plainText(e.root)
}

// Document returns the document literal.
func (e *Engine) Document() model.ComponentLiteral {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.root.ToJSON()
}

// DocumentJSON returns the document literal as JSON.
func (e *Engine) DocumentJSON() ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return json.Marshal(e.root)
}

// Query evaluates a gjson path against the document JSON.
func (e *Engine) Query(path string) gjson.Result {
	data, err := e.DocumentJSON()
	if err != nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(data, path)
}

// ReadOnly returns true if the engine rejects edits.
func (e *Engine) ReadOnly() bool {
	return e.readOnly
}

// OnChange subscribes to document changes. Observers run while the engine
// is locked and must not call back into it.
func (e *Engine) OnChange(observer notify.Observer[model.Change]) *notify.Subscription[model.Change] {
	return e.root.OnChange(observer)
}

// ============================================================================
// Selection
// ============================================================================

// SelectionState returns the shape of the selection.
func (e *Engine) SelectionState() selection.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sel.State()
}

// Ranges returns the selected ranges.
func (e *Engine) Ranges() []selection.Range {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sel.Ranges()
}

// Caret returns the path of the selection focus.
func (e *Engine) Caret() ([]int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.sel.Focus()
	if !ok {
		return nil, ErrNoSelection
	}
	return selection.PathOf(p)
}

// Paths captures the selection as structural paths.
func (e *Engine) Paths() ([]selection.Paths, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sel.Paths()
}

// Select replaces the selection with the given paths. Nothing changes if
// any path fails to resolve.
func (e *Engine) Select(paths []selection.Paths) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.sel.UsePaths(paths)
}

// SetCaret collapses the selection to the position at path.
func (e *Engine) SetCaret(path []int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	p, err := selection.ResolvePath(path, e.root)
	if err != nil {
		return err
	}
	return e.sel.SetPosition(p.Slot, p.Offset)
}

// SelectRange selects from the anchor path to the focus path.
func (e *Engine) SelectRange(anchor, focus []int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	a, err := selection.ResolvePath(anchor, e.root)
	if err != nil {
		return err
	}
	f, err := selection.ResolvePath(focus, e.root)
	if err != nil {
		return err
	}
	return e.sel.SetBaseAndExtent(a.Slot, a.Offset, f.Slot, f.Offset)
}

// MoveToStart puts the caret at the start of the first text slot.
func (e *Engine) MoveToStart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetCaretLocked()
}

// MoveToEnd puts the caret at the end of the last text slot.
func (e *Engine) MoveToEnd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := lastTextPosition(e.root); ok {
		_ = e.sel.SetPosition(p.Slot, p.Offset)
	}
}

// MoveNext moves the caret one grapheme cluster forward.
func (e *Engine) MoveNext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.ToNext()
}

// MovePrevious moves the caret one grapheme cluster back.
func (e *Engine) MovePrevious() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.ToPrevious()
}

// resetCaretLocked puts the caret at the first text slot, or empties the
// selection when the document has none.
func (e *Engine) resetCaretLocked() {
	if p, ok := firstTextPosition(e.root); ok {
		_ = e.sel.SetPosition(p.Slot, p.Offset)
		return
	}
	e.sel.RemoveAllRanges()
}

// ============================================================================
// Edit Operations
// ============================================================================

// InsertText replaces the selection with text and puts the caret after it.
func (e *Engine) InsertText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.primaryRangeLocked()
	if err != nil {
		return err
	}
	if e.normalize {
		text = norm.NFC.String(text)
	}
	if text == "" && r.IsCollapsed() {
		return nil
	}
	if !r.Start.Slot.Accepts(model.ContentText) {
		return fmt.Errorf("insert text: %w", model.ErrContentNotAllowed)
	}

	pos, err := e.deleteRangeLocked(r)
	if err != nil {
		return err
	}
	if text != "" {
		if err := pos.Slot.InsertAt(pos.Offset, model.Text(text)); err != nil {
			return err
		}
	}
	e.logger.Debug("inserted %d runes at %s", utf8.RuneCountInString(text), pos)
	return e.sel.SetPosition(pos.Slot, pos.Offset+utf8.RuneCountInString(text))
}

// InsertComponent creates the named component and inserts it at the caret.
// An inline component goes into the caret's slot. A block component goes
// into the caret's slot if it takes blocks, otherwise after the block that
// holds the caret. The caret moves into the new component's first text
// slot, or after an inline component. A new Backbone starts with one empty
// item.
func (e *Engine) InsertComponent(name string, state json.RawMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.primaryRangeLocked()
	if err != nil {
		return err
	}
	c, err := e.registry.Create(name, &model.InitData{State: state})
	if err != nil {
		return err
	}
	if c.Kind() == model.KindBackbone && c.SlotCount() == 0 {
		if err := c.InsertSlot(0, model.NewSlot(c.Definition().Schema)); err != nil {
			return err
		}
	}

	slot := r.Start.Slot
	var host *model.Slot
	var after *model.Component
	if !slot.Accepts(c.Definition().Type) {
		if c.Definition().Type != model.ContentBlock {
			return fmt.Errorf("insert %s: %w", name, model.ErrContentNotAllowed)
		}
		after, host = slot.Parent(), slot.Parent().Parent()
		for host != nil && !host.Accepts(model.ContentBlock) {
			after = host.Parent()
			host = after.Parent()
		}
		if host == nil {
			return fmt.Errorf("insert %s: %w", name, model.ErrContentNotAllowed)
		}
	}

	pos, err := e.deleteRangeLocked(r)
	if err != nil {
		return err
	}
	caret := selection.At(pos.Slot, pos.Offset+1)
	if host == nil {
		err = pos.Slot.InsertAt(pos.Offset, model.Embed(c))
	} else {
		err = host.InsertAt(host.IndexOf(after)+1, model.Embed(c))
		caret = pos
	}
	if err != nil {
		return err
	}
	if p, ok := firstTextPosition(c); ok {
		caret = p
	}
	e.logger.Debug("inserted component %s", name)
	return e.sel.SetPosition(caret.Slot, caret.Offset)
}

// DeleteSelection removes the selected content and collapses the caret to
// where it was. A collapsed selection is left alone.
func (e *Engine) DeleteSelection() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.primaryRangeLocked()
	if err != nil {
		return err
	}
	if r.IsCollapsed() {
		return nil
	}
	pos, err := e.deleteRangeLocked(r)
	if err != nil {
		return err
	}
	return e.sel.SetPosition(pos.Slot, pos.Offset)
}

// DeleteBackward deletes the selection, or the grapheme cluster before the
// caret. At the start of a paragraph or list item it joins it onto the one
// before.
func (e *Engine) DeleteBackward() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.primaryRangeLocked()
	if err != nil {
		return err
	}
	if !r.IsCollapsed() {
		pos, err := e.deleteRangeLocked(r)
		if err != nil {
			return err
		}
		return e.sel.SetPosition(pos.Slot, pos.Offset)
	}

	p := r.Start
	if p.Offset > 0 {
		prev := p.Slot.PrevOffset(p.Offset)
		if _, err := p.Slot.Delete(prev, p.Offset-prev); err != nil {
			return err
		}
		return e.sel.SetPosition(p.Slot, prev)
	}

	pos, ok, err := e.joinBackwardLocked(p.Slot)
	if err != nil || !ok {
		return err
	}
	return e.sel.SetPosition(pos.Slot, pos.Offset)
}

// DeleteForward deletes the selection, or the grapheme cluster after the
// caret.
func (e *Engine) DeleteForward() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.primaryRangeLocked()
	if err != nil {
		return err
	}
	if !r.IsCollapsed() {
		pos, err := e.deleteRangeLocked(r)
		if err != nil {
			return err
		}
		return e.sel.SetPosition(pos.Slot, pos.Offset)
	}

	p := r.Start
	next := p.Slot.NextOffset(p.Offset)
	if next == p.Offset {
		return nil
	}
	if _, err := p.Slot.Delete(p.Offset, next-p.Offset); err != nil {
		return err
	}
	return e.sel.SetPosition(p.Slot, p.Offset)
}

// BreakSlot splits the caret's slot. The tail becomes a new block of the
// same type after the caret's block, or a new item after the caret's item
// in a Backbone.
func (e *Engine) BreakSlot() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.primaryRangeLocked()
	if err != nil {
		return err
	}
	owner := r.Start.Slot.Parent()
	switch owner.Kind() {
	case model.KindBackbone:
	case model.KindDivision:
		if owner.Parent() == nil || !owner.Parent().Accepts(owner.Definition().Type) {
			return ErrCannotBreak
		}
	default:
		return ErrCannotBreak
	}

	pos, err := e.deleteRangeLocked(r)
	if err != nil {
		return err
	}
	tail, err := pos.Slot.Cut(pos.Offset)
	if err != nil {
		return err
	}

	if owner.Kind() == model.KindBackbone {
		err = owner.InsertSlot(owner.IndexOfSlot(pos.Slot)+1, tail)
	} else {
		err = e.insertBlockAfter(owner, tail)
	}
	if err != nil {
		return err
	}
	e.logger.Debug("split %s at %d", owner.Name(), pos.Offset)
	return e.sel.SetPosition(tail, 0)
}

func (e *Engine) insertBlockAfter(owner *model.Component, tail *model.Slot) error {
	block, err := owner.Definition().CreateInstance(&model.InitData{
		State: owner.State(),
		Slots: []*model.Slot{tail},
	})
	if err != nil {
		return err
	}
	host := owner.Parent()
	return host.InsertAt(host.IndexOf(owner)+1, model.Embed(block))
}

// ============================================================================
// Formatting
// ============================================================================

// ApplyFormat sets the named format to value over every selected range.
// A nil value removes the format.
func (e *Engine) ApplyFormat(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, spans, err := e.formatSpansLocked(name)
	if err != nil {
		return err
	}
	for _, sp := range spans {
		if err := sp.slot.ApplyFormat(f, value, sp.start, sp.end); err != nil {
			return err
		}
	}
	e.logger.Debug("applied %s over %d spans", name, len(spans))
	return nil
}

// UnapplyFormat removes the named format from every selected range.
func (e *Engine) UnapplyFormat(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, spans, err := e.formatSpansLocked(name)
	if err != nil {
		return err
	}
	for _, sp := range spans {
		if err := sp.slot.UnapplyFormat(f, sp.start, sp.end); err != nil {
			return err
		}
	}
	return nil
}

// ToggleFormat removes an on/off format if it covers the whole selection
// and applies it otherwise.
func (e *Engine) ToggleFormat(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, spans, err := e.formatSpansLocked(name)
	if err != nil {
		return err
	}
	if !formatter.IsFlag(f) {
		return fmt.Errorf("toggle %s: %w", name, ErrNotFlag)
	}

	covered := true
	for _, sp := range spans {
		if !coveredBy(sp, name) {
			covered = false
			break
		}
	}
	var value any = true
	if covered {
		value = nil
	}
	for _, sp := range spans {
		if err := sp.slot.ApplyFormat(f, value, sp.start, sp.end); err != nil {
			return err
		}
	}
	e.logger.Debug("toggled %s to %v", name, !covered)
	return nil
}

// FormatsAt returns the formats at the caret.
func (e *Engine) FormatsAt() ([]model.FormatItem, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.sel.Focus()
	if !ok {
		return nil, ErrNoSelection
	}
	if !e.sel.Valid() {
		return nil, ErrStaleSelection
	}
	return p.Slot.FormatsAt(p.Offset), nil
}

func (e *Engine) formatSpansLocked(name string) (*model.Formatter, []span, error) {
	if err := e.checkWritableLocked(); err != nil {
		return nil, nil, err
	}
	f, ok := e.registry.Formatter(name)
	if !ok {
		return nil, nil, fmt.Errorf("format %q: %w", name, model.ErrUnknownFormatter)
	}
	if e.sel.IsEmpty() {
		return nil, nil, ErrNoSelection
	}
	if !e.sel.Valid() {
		return nil, nil, ErrStaleSelection
	}

	var spans []span
	for _, r := range e.sel.Ranges() {
		rs, err := rangeSpans(e.root, r)
		if err != nil {
			return nil, nil, err
		}
		for _, sp := range rs {
			if sp.end > sp.start {
				spans = append(spans, sp)
			}
		}
	}
	if len(spans) == 0 {
		return nil, nil, ErrEmptyRange
	}
	return f, spans, nil
}

// ============================================================================
// History
// ============================================================================

// Undo restores the previous snapshot. Edits still waiting to be sampled
// are captured first, so they are what gets undone.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritableLocked(); err != nil {
		return err
	}
	if err := e.history.Flush(); err != nil {
		return err
	}
	if !e.history.CanBack() {
		return ErrNothingToUndo
	}
	return e.restoredLocked(e.history.Back())
}

// Redo restores the next snapshot.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritableLocked(); err != nil {
		return err
	}
	if err := e.history.Flush(); err != nil {
		return err
	}
	if !e.history.CanForward() {
		return ErrNothingToRedo
	}
	return e.restoredLocked(e.history.Forward())
}

// restoredLocked handles the result of a history move. When the content
// was restored but the selection could not be, the caret moves to the
// start of the document.
func (e *Engine) restoredLocked(err error) error {
	if err != nil && history.IsLookupError(err) {
		e.logger.Debug("caret reset after restore: %v", err)
		e.resetCaretLocked()
		return nil
	}
	return err
}

// CanUndo returns true if Undo would restore a snapshot.
func (e *Engine) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanBack()
}

// CanRedo returns true if Redo would restore a snapshot.
func (e *Engine) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanForward()
}

// Checkpoint captures pending edits as a snapshot now.
func (e *Engine) Checkpoint() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.history.Flush()
}

// HistoryLen returns the number of snapshots.
func (e *Engine) HistoryLen() int {
	return e.history.Len()
}

// OnHistoryChange subscribes to history stack changes.
func (e *Engine) OnHistoryChange(observer notify.Observer[history.ChangeEvent]) *notify.Subscription[history.ChangeEvent] {
	return e.history.OnChange(observer)
}

// ExportHistory writes the history to w. Pending edits are captured first.
func (e *Engine) ExportHistory(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if err := e.history.Flush(); err != nil {
		return err
	}
	return e.history.Export(w)
}

// ImportHistory replaces the history with one read from r and makes the
// document match its current snapshot.
func (e *Engine) ImportHistory(r io.Reader) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritableLocked(); err != nil {
		return err
	}
	if err := e.history.Flush(); err != nil {
		return err
	}
	e.history.StopListen()
	defer func() {
		_ = e.history.Listen()
	}()

	if err := e.history.Import(r, e.registry); err != nil {
		return err
	}
	cur := e.history.Current()
	if cur == nil {
		return e.recordLocked()
	}
	content, paths := cur.Restore()
	if err := e.root.ReplaceContent(content); err != nil {
		return err
	}
	if err := e.sel.UsePaths(paths); err != nil || e.sel.IsEmpty() {
		e.resetCaretLocked()
	}
	e.logger.Debug("imported %d snapshots", e.history.Len())
	return nil
}

// ============================================================================
// Document Operations
// ============================================================================

// Load replaces the document with lit and starts a new history.
func (e *Engine) Load(lit model.ComponentLiteral) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritableLocked(); err != nil {
		return err
	}
	c, err := e.registry.DecodeComponent(lit)
	if err != nil {
		return err
	}
	if err := checkRoot(c); err != nil {
		return err
	}

	e.history.StopListen()
	if err := e.root.ReplaceContent(c); err != nil {
		_ = e.history.Listen()
		return err
	}
	e.resetCaretLocked()
	e.history.Clean()
	e.logger.Debug("loaded document %s", lit.Name)
	return e.recordLocked()
}

// LoadJSON decodes a document literal and loads it.
func (e *Engine) LoadJSON(data []byte) error {
	var lit model.ComponentLiteral
	if err := json.Unmarshal(data, &lit); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	return e.Load(lit)
}

func (e *Engine) recordLocked() error {
	return e.history.Record()
}

// Close stops history sampling and releases observers. Later edits return
// ErrClosed. It is safe to call Close more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.history.Destroy()
	e.logger.Debug("closed")
	return nil
}

// ============================================================================
// Internal Helpers
// ============================================================================

func (e *Engine) checkWritableLocked() error {
	if e.closed {
		return ErrClosed
	}
	if e.readOnly {
		return ErrReadOnly
	}
	return nil
}

// primaryRangeLocked returns the first selected range of a writable engine.
func (e *Engine) primaryRangeLocked() (selection.Range, error) {
	if err := e.checkWritableLocked(); err != nil {
		return selection.Range{}, err
	}
	r, ok := e.sel.FirstRange()
	if !ok {
		return selection.Range{}, ErrNoSelection
	}
	if !e.sel.Valid() {
		return selection.Range{}, ErrStaleSelection
	}
	return r, nil
}

// deleteRangeLocked removes the content of r and returns where it started.
// Ranges across slots are supported between items of one Backbone and
// between sibling Division blocks; the end slot's remainder is joined onto
// the start slot. Nothing is changed when an error is returned.
func (e *Engine) deleteRangeLocked(r selection.Range) (selection.Position, error) {
	if r.IsCollapsed() {
		return r.Start, nil
	}
	s, t := r.Start.Slot, r.End.Slot
	if s == t {
		if _, err := s.Delete(r.Start.Offset, r.End.Offset-r.Start.Offset); err != nil {
			return selection.Position{}, err
		}
		return r.Start, nil
	}

	so, to := s.Parent(), t.Parent()
	var join func() error
	switch {
	case so == to && so.Kind() == model.KindBackbone:
		i, j := so.IndexOfSlot(s), so.IndexOfSlot(t)
		join = func() error {
			for k := j; k > i; k-- {
				if _, err := so.RemoveSlot(k); err != nil {
					return err
				}
			}
			return nil
		}
	case so.Kind() == model.KindDivision && to.Kind() == model.KindDivision &&
		so.Parent() != nil && so.Parent() == to.Parent():
		host := so.Parent()
		i, j := host.IndexOf(so), host.IndexOf(to)
		join = func() error {
			_, err := host.Delete(i+1, j-i)
			return err
		}
	default:
		return selection.Position{}, ErrUnsupportedRange
	}
	if err := checkMerge(t, r.End.Offset, s); err != nil {
		return selection.Position{}, err
	}

	if _, err := s.Delete(r.Start.Offset, s.Length()-r.Start.Offset); err != nil {
		return selection.Position{}, err
	}
	if _, err := t.Delete(0, r.End.Offset); err != nil {
		return selection.Position{}, err
	}
	if err := t.CutTo(s, 0); err != nil {
		return selection.Position{}, err
	}
	if err := join(); err != nil {
		return selection.Position{}, err
	}
	e.logger.Debug("joined %s into %s", r.End, r.Start)
	return r.Start, nil
}

// joinBackwardLocked joins slot onto the slot before it when slot is a
// list item after another item, or the slot of a block after another
// block of the same shape. ok is false when there is nothing to join.
func (e *Engine) joinBackwardLocked(slot *model.Slot) (pos selection.Position, ok bool, err error) {
	owner := slot.Parent()
	var prev *model.Slot
	var remove func() error

	switch owner.Kind() {
	case model.KindBackbone:
		i := owner.IndexOfSlot(slot)
		if i <= 0 {
			return pos, false, nil
		}
		if prev, err = owner.SlotAt(i - 1); err != nil {
			return pos, false, err
		}
		remove = func() error {
			_, err := owner.RemoveSlot(i)
			return err
		}
	case model.KindDivision:
		host := owner.Parent()
		if host == nil {
			return pos, false, nil
		}
		i := host.IndexOf(owner)
		if i <= 0 {
			return pos, false, nil
		}
		item, err := host.ContentAt(i - 1)
		if err != nil {
			return pos, false, err
		}
		before := item.Component()
		if before == nil || before.Kind() != model.KindDivision || !before.Slot().Accepts(model.ContentText) {
			return pos, false, nil
		}
		prev = before.Slot()
		remove = func() error {
			_, err := host.Delete(i, 1)
			return err
		}
	default:
		return pos, false, nil
	}

	if err := checkMerge(slot, 0, prev); err != nil {
		return pos, false, err
	}
	at := prev.Length()
	if err := slot.CutTo(prev, 0); err != nil {
		return pos, false, err
	}
	if err := remove(); err != nil {
		return pos, false, err
	}
	return selection.At(prev, at), true, nil
}
