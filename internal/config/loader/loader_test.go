package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

type settings struct {
	History struct {
		MaxSize int    `toml:"max_size" yaml:"max_size"`
		Mode    string `toml:"mode" yaml:"mode"`
	} `toml:"history" yaml:"history"`
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"folio.toml", FormatTOML, false},
		{"/etc/folio/folio.TOML", FormatTOML, false},
		{"folio.yaml", FormatYAML, false},
		{"folio.yml", FormatYAML, false},
		{"folio.json", 0, true},
		{"folio", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("FormatOf(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FormatOf(%q) = %v, %v; want %v", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestFileLoader_LoadInto(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/folio.toml", `
[history]
max_size = 20
`)
	memfs.AddFile("/folio.yaml", `
history:
  max_size: 30
  mode: sampled
`)

	loader := NewFileLoaderWithFS(memfs)

	var fromTOML settings
	fromTOML.History.Mode = "kept"
	if err := loader.LoadInto("/folio.toml", &fromTOML); err != nil {
		t.Fatalf("LoadInto toml failed: %v", err)
	}
	if fromTOML.History.MaxSize != 20 || fromTOML.History.Mode != "kept" {
		t.Errorf("toml settings = %+v", fromTOML.History)
	}

	var fromYAML settings
	if err := loader.LoadInto("/folio.yaml", &fromYAML); err != nil {
		t.Fatalf("LoadInto yaml failed: %v", err)
	}
	if fromYAML.History.MaxSize != 30 || fromYAML.History.Mode != "sampled" {
		t.Errorf("yaml settings = %+v", fromYAML.History)
	}
}

func TestFileLoader_Missing(t *testing.T) {
	loader := NewFileLoaderWithFS(NewMemFS())

	var s settings
	err := loader.LoadInto("/nonexistent.toml", &s)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestFileLoader_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		wantPos bool
	}{
		{"toml syntax", "/invalid.toml", "[history\nmax_size = 4\n", true},
		{"toml unknown key", "/unknown.toml", "[history]\nmax_entries = 4\n", false},
		{"yaml syntax", "/invalid.yaml", "history: [\n", false},
		{"yaml unknown key", "/unknown.yaml", "history:\n  max_entries: 4\n", false},
		{"yaml type", "/type.yaml", "history:\n  max_size: many\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memfs := NewMemFS()
			memfs.AddFile(tt.path, tt.content)

			var s settings
			err := NewFileLoaderWithFS(memfs).LoadInto(tt.path, &s)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T (%v)", err, err)
			}
			if parseErr.Path != tt.path {
				t.Errorf("Path = %q, want %q", parseErr.Path, tt.path)
			}
			if tt.wantPos && parseErr.Line == 0 {
				t.Errorf("expected a line number in %v", parseErr)
			}
		})
	}
}

func TestLoadReaderInto(t *testing.T) {
	var s settings
	if err := LoadReaderInto(strings.NewReader("history:\n  max_size: 7\n"), FormatYAML, &s); err != nil {
		t.Fatalf("LoadReaderInto failed: %v", err)
	}
	if s.History.MaxSize != 7 {
		t.Errorf("MaxSize = %d, want 7", s.History.MaxSize)
	}

	if err := LoadReaderInto(strings.NewReader(""), FormatYAML, &s); err != nil {
		t.Errorf("empty yaml should decode, got %v", err)
	}
}

func TestEnvLoader_Load(t *testing.T) {
	loader := NewEnvLoaderWithEnviron("FOLIO_", []string{
		"FOLIO_HISTORY_MAX_SIZE=50",
		"FOLIO_LOG_LEVEL=debug",
		"FOLIO_TEXT_NORMALIZE=",
		"FOLIO_CUSTOM_SOME_SETTING=x",
		"FOLIO_BARE=1",
		"HOME=/root",
	})

	got := loader.Load()
	want := map[string]string{
		"history.max_size":    "50",
		"logging.level":       "debug",
		"text.normalize":      "",
		"custom.some_setting": "x",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	loader := NewEnvLoaderWithEnviron("FOLIO_", []string{"FOLIO_UNDO=9"})
	loader.AddMapping("FOLIO_UNDO", "history.max_size")

	if got := loader.Load()["history.max_size"]; got != "9" {
		t.Errorf("history.max_size = %q, want %q", got, "9")
	}
}
