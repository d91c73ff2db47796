package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"

	"github.com/dshills/folio/internal/engine/model"
	"github.com/dshills/folio/internal/engine/selection"
)

// exportFile is the persisted form of a stack.
type exportFile struct {
	Cursor  int           `json:"cursor"`
	Entries []exportEntry `json:"entries"`
}

type exportEntry struct {
	ID        string                 `json:"id"`
	Time      time.Time              `json:"time"`
	Component model.ComponentLiteral `json:"component"`
	Paths     []selection.Paths      `json:"paths"`
}

// Export writes the stack to w as xz-compressed JSON.
func (h *History) Export(w io.Writer) error {
	h.mu.Lock()
	file := exportFile{Cursor: h.cursor, Entries: make([]exportEntry, len(h.stack))}
	for i, s := range h.stack {
		file.Entries[i] = exportEntry{
			ID:        s.ID.String(),
			Time:      s.Time,
			Component: s.Component.ToJSON(),
			Paths:     clonePaths(s.Paths),
		}
	}
	h.mu.Unlock()

	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("export history: %w", err)
	}
	if err := json.NewEncoder(xw).Encode(file); err != nil {
		_ = xw.Close()
		return fmt.Errorf("export history: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("export history: %w", err)
	}
	return nil
}

// Import replaces the stack with one read from r. Components are decoded
// with reg. The live document is not changed.
func (h *History) Import(r io.Reader, reg *model.Registry) error {
	xr, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("import history: %w: %v", ErrInvalidExport, err)
	}
	var file exportFile
	if err := json.NewDecoder(xr).Decode(&file); err != nil {
		return fmt.Errorf("import history: %w: %v", ErrInvalidExport, err)
	}
	if len(file.Entries) > 0 && (file.Cursor < 0 || file.Cursor >= len(file.Entries)) {
		return fmt.Errorf("import history: cursor %d of %d entries: %w", file.Cursor, len(file.Entries), ErrInvalidExport)
	}

	stack := make([]*Snapshot, len(file.Entries))
	for i, e := range file.Entries {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return fmt.Errorf("import history: entry %d: %w: %v", i, ErrInvalidExport, err)
		}
		c, err := reg.DecodeComponent(e.Component)
		if err != nil {
			return fmt.Errorf("import history: entry %d: %w", i, err)
		}
		digest, err := Digest(c)
		if err != nil {
			return err
		}
		stack[i] = &Snapshot{ID: id, Time: e.Time, Component: c, Paths: e.Paths, Digest: digest}
	}

	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return ErrDestroyed
	}
	h.stack = stack
	h.cursor = 0
	if len(stack) > 0 {
		h.cursor = file.Cursor
	}
	if over := len(h.stack) - h.maxSize; over > 0 {
		h.stack = h.stack[over:]
		h.cursor = max(h.cursor-over, 0)
	}
	ev := ChangeEvent{Len: len(h.stack), Cursor: h.cursor}
	h.mu.Unlock()

	h.changes.Notify(ev)
	return nil
}
