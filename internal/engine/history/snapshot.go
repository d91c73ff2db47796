package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/dshills/folio/internal/engine/model"
	"github.com/dshills/folio/internal/engine/selection"
)

// Snapshot is one stack entry. Component is a frozen clone owned by the
// snapshot; it is cloned again before it becomes live and must not be
// modified.
type Snapshot struct {
	ID        uuid.UUID
	Time      time.Time
	Component *model.Component
	Paths     []selection.Paths
	Digest    [32]byte
}

// NewSnapshot freezes root and the given paths. The paths are copied.
func NewSnapshot(root *model.Component, paths []selection.Paths, at time.Time) (*Snapshot, error) {
	clone := root.Clone()
	digest, err := Digest(clone)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:        uuid.New(),
		Time:      at,
		Component: clone,
		Paths:     clonePaths(paths),
		Digest:    digest,
	}, nil
}

// Digest returns the blake3 hash of the component literal.
func Digest(c *model.Component) ([32]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return [32]byte{}, fmt.Errorf("digest %s: %w", c.Name(), err)
	}
	return blake3.Sum256(data), nil
}

// Restore returns a live copy of the snapshot content and paths.
func (s *Snapshot) Restore() (*model.Component, []selection.Paths) {
	return s.Component.Clone(), clonePaths(s.Paths)
}

func clonePaths(paths []selection.Paths) []selection.Paths {
	if paths == nil {
		return nil
	}
	out := make([]selection.Paths, len(paths))
	for i, p := range paths {
		out[i] = p.Clone()
	}
	return out
}
