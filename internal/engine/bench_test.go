package engine

import (
	"strings"
	"testing"

	"github.com/dshills/folio/internal/engine/blocks"
	"github.com/dshills/folio/internal/engine/model"
)

// ============================================================================
// Setup Helpers
// ============================================================================

func setupLargeEngine(b *testing.B, paragraphs int) *Engine {
	b.Helper()
	root, err := blocks.Root.CreateInstance(nil)
	if err != nil {
		b.Fatal(err)
	}
	line := strings.Repeat("x", 80)
	for i := 0; i < paragraphs; i++ {
		p, err := blocks.NewParagraph(line)
		if err != nil {
			b.Fatal(err)
		}
		if err := root.Slot().Insert(model.Embed(p)); err != nil {
			b.Fatal(err)
		}
	}
	e, err := New(WithRoot(root), WithScheduler(&manualScheduler{}))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { e.Close() })
	return e
}

// ============================================================================
// Read Operation Benchmarks
// ============================================================================

func BenchmarkEngineText(b *testing.B) {
	e := setupLargeEngine(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.Text()
	}
}

func BenchmarkEngineDocumentJSON(b *testing.B) {
	e := setupLargeEngine(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.DocumentJSON(); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Write Operation Benchmarks
// ============================================================================

func BenchmarkEngineInsertText(b *testing.B) {
	e := setupLargeEngine(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := e.InsertText("y"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngineCheckpointUndo(b *testing.B) {
	e := setupLargeEngine(b, 100)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := e.InsertText("y"); err != nil {
			b.Fatal(err)
		}
		if err := e.Undo(); err != nil {
			b.Fatal(err)
		}
	}
}
