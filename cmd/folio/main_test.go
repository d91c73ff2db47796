package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/dshills/folio/internal/engine"
)

// runCLI parses and runs args the way main does, capturing stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var stdout, stderr bytes.Buffer
	parser, err := kong.New(&cli,
		kong.Name("folio"),
		kong.Writers(&stdout, &stderr),
		kong.Exit(func(int) {}),
		kong.Bind(&cli),
	)
	if err != nil {
		t.Fatalf("kong.New failed: %v", err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return stdout.String(), err
	}
	err = kctx.Run(kctx)
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeDoc saves a document holding one paragraph of text.
func writeDoc(t *testing.T, dir, name, text string) string {
	t.Helper()
	e, err := engine.New()
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	defer e.Close()
	if err := e.InsertText(text); err != nil {
		t.Fatalf("InsertText failed: %v", err)
	}
	data, err := e.DocumentJSON()
	if err != nil {
		t.Fatalf("DocumentJSON failed: %v", err)
	}
	return writeFile(t, dir, name, string(data))
}

func readText(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	e, err := engine.New()
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	defer e.Close()
	if err := e.LoadJSON(data); err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	return e.Text()
}

func TestRunWritesDocument(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "in.json", "hello")
	edit := writeFile(t, dir, "edit.lua", `
		doc.move("end")
		doc.insert(" world")
		doc.select({0, 0}, {0, 5})
		doc.format("bold")
	`)
	out := filepath.Join(dir, "out.json")

	if _, err := runCLI(t, "run", "--doc", doc, "--script", edit, "--out", out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := readText(t, out); got != "hello world" {
		t.Errorf("expected text %q, got %q", "hello world", got)
	}
}

func TestRunToStdout(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "in.json", "hello")
	edit := writeFile(t, dir, "edit.lua", `print(doc.text())`)

	stdout, err := runCLI(t, "run", "--doc", doc, "--script", edit)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "hello\n") {
		t.Errorf("expected script output first, got %q", stdout)
	}
	if !strings.Contains(stdout, `"name": "root"`) {
		t.Errorf("expected document JSON, got %q", stdout)
	}
}

func TestRunWithoutDoc(t *testing.T) {
	dir := t.TempDir()
	edit := writeFile(t, dir, "edit.lua", `doc.insert("fresh")`)
	out := filepath.Join(dir, "out.json")

	if _, err := runCLI(t, "run", "--script", edit, "--out", out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := readText(t, out); got != "fresh" {
		t.Errorf("expected text %q, got %q", "fresh", got)
	}
}

func TestRunHistory(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "in.json", "hello")
	hist := filepath.Join(dir, "history.xz")
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")

	edit := writeFile(t, dir, "edit.lua", `doc.move("end") doc.insert(" there")`)
	if _, err := runCLI(t, "run", "--doc", doc, "--script", edit, "--history", hist, "--out", first); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if got := readText(t, first); got != "hello there" {
		t.Fatalf("expected text %q, got %q", "hello there", got)
	}
	if info, err := os.Stat(hist); err != nil || info.Size() == 0 {
		t.Fatalf("expected history file, got %v", err)
	}

	undo := writeFile(t, dir, "undo.lua", `assert(doc.undo(), "nothing to undo")`)
	if _, err := runCLI(t, "run", "--script", undo, "--history", hist, "--out", second); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if got := readText(t, second); got != "hello" {
		t.Errorf("expected text %q after undo, got %q", "hello", got)
	}
}

func TestExportHistoryKeepsFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	hist := writeFile(t, dir, "history.xz", "previous")

	e, err := engine.New()
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	e.Close()

	if err := exportHistory(e, hist); err == nil {
		t.Fatal("expected export of a closed engine to fail")
	}
	data, err := os.ReadFile(hist)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous" {
		t.Errorf("expected history file to be kept, got %q", data)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the history file, got %d entries", len(entries))
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "in.json", "hello")
	bad := writeFile(t, dir, "bad.json", `{"name": "paragraph"}`)
	failing := writeFile(t, dir, "fail.lua", `doc.select({0, 0}, {0, 2}) doc.format("sparkle")`)
	ok := writeFile(t, dir, "ok.lua", `doc.insert("x")`)
	badConfig := writeFile(t, dir, "folio.toml", "[history]\nmax_size = \"lots\"\n")

	tests := []struct {
		name string
		args []string
	}{
		{"script error", []string{"run", "--doc", doc, "--script", failing}},
		{"missing script", []string{"run", "--doc", doc, "--script", filepath.Join(dir, "nope.lua")}},
		{"no script flag", []string{"run", "--doc", doc}},
		{"bad root", []string{"run", "--doc", bad, "--script", ok}},
		{"bad config", []string{"--config", badConfig, "run", "--script", ok}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunConfig(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   string
	}{
		{"normalized by default", "", "caf\u00e9"},
		{"normalization off", "text:\n  normalize: false\n", "cafe\u0301"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			edit := writeFile(t, dir, "edit.lua", `doc.insert("cafe\204\129")`)
			out := filepath.Join(dir, "out.json")

			args := []string{"run", "--script", edit, "--out", out}
			if tt.config != "" {
				cfg := writeFile(t, dir, "folio.yaml", tt.config)
				args = append([]string{"--config", cfg}, args...)
			}
			if _, err := runCLI(t, args...); err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if got := readText(t, out); got != tt.want {
				t.Errorf("expected text %q, got %q", tt.want, got)
			}
		})
	}
}

func TestQuery(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "in.json", "hello")

	stdout, err := runCLI(t, "query", "--doc", doc, "name")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if stdout != "root\n" {
		t.Errorf("expected %q, got %q", "root\n", stdout)
	}

	stdout, err = runCLI(t, "query", "--doc", doc, "slots.0.content.0")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(stdout, `"name": "paragraph"`) {
		t.Errorf("expected paragraph object, got %q", stdout)
	}

	if _, err := runCLI(t, "query", "--doc", doc, "slots.7.name"); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestText(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "in.json", "hello")

	stdout, err := runCLI(t, "text", "--doc", doc)
	if err != nil {
		t.Fatalf("text failed: %v", err)
	}
	if stdout != "hello\n" {
		t.Errorf("expected %q, got %q", "hello\n", stdout)
	}
}

func TestVersion(t *testing.T) {
	stdout, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "folio dev") {
		t.Errorf("expected version line, got %q", stdout)
	}
}
