package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/tidwall/pretty"

	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/engine"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/script"
)

// RunCmd runs a Lua script against a document.
type RunCmd struct {
	Doc     string        `name:"doc" short:"d" help:"Document JSON to load (an empty document when omitted)" type:"existingfile"`
	Script  string        `name:"script" short:"s" required:"" help:"Lua script to run" type:"existingfile"`
	Out     string        `name:"out" short:"o" help:"Where to write the edited document (stdout when omitted)" type:"path"`
	History string        `name:"history" help:"xz history file to resume from and save to; its current snapshot replaces --doc" type:"path"`
	Timeout time.Duration `name:"timeout" default:"5s" help:"Time limit for the script (0 for none)"`
}

func (c *RunCmd) Run(kctx *kong.Context, cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg, kctx.Stderr)

	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	if c.Doc != "" {
		if err := loadDocument(e, c.Doc); err != nil {
			return err
		}
	}
	if c.History != "" {
		if err := importHistory(e, c.History); err != nil {
			return err
		}
	}

	state, err := script.NewState(e,
		script.WithOutput(kctx.Stdout),
		script.WithLogger(logger),
		script.WithExecutionTimeout(c.Timeout),
	)
	if err != nil {
		return err
	}
	defer state.Close()

	if err := state.DoFile(ctx, c.Script); err != nil {
		return err
	}
	if err := e.Checkpoint(); err != nil {
		return fmt.Errorf("failed to record edits: %w", err)
	}

	if c.History != "" {
		if err := exportHistory(e, c.History); err != nil {
			return err
		}
	}
	return writeDocument(e, c.Out, kctx.Stdout)
}

// QueryCmd prints one value of a document.
type QueryCmd struct {
	Doc  string `name:"doc" short:"d" required:"" help:"Document JSON to query" type:"existingfile"`
	Path string `arg:"" help:"gjson path, such as slots.0.content.0.name"`
}

func (c *QueryCmd) Run(kctx *kong.Context, cli *CLI) error {
	e, err := openDocument(cli, kctx.Stderr, c.Doc)
	if err != nil {
		return err
	}
	defer e.Close()

	res := e.Query(c.Path)
	if !res.Exists() {
		return fmt.Errorf("no value at %q", c.Path)
	}
	if res.IsObject() || res.IsArray() {
		_, err = kctx.Stdout.Write(pretty.Pretty([]byte(res.Raw)))
		return err
	}
	_, err = fmt.Fprintln(kctx.Stdout, res.String())
	return err
}

// TextCmd prints the plain text of a document.
type TextCmd struct {
	Doc string `name:"doc" short:"d" required:"" help:"Document JSON to read" type:"existingfile"`
}

func (c *TextCmd) Run(kctx *kong.Context, cli *CLI) error {
	e, err := openDocument(cli, kctx.Stderr, c.Doc)
	if err != nil {
		return err
	}
	defer e.Close()

	_, err = fmt.Fprintln(kctx.Stdout, e.Text())
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(kctx *kong.Context) error {
	_, err := fmt.Fprintf(kctx.Stdout, "folio %s (%s)\n", version, commit)
	return err
}

// Helper functions

func newLogger(cfg config.Config, w io.Writer) *logging.Logger {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel()
	logCfg.Output = w
	return logging.New(logCfg)
}

// newEngine creates an engine with the history and text settings of cfg.
func newEngine(cfg config.Config, logger *logging.Logger) (*engine.Engine, error) {
	e, err := engine.New(
		engine.WithMaxHistory(cfg.History.MaxSize),
		engine.WithSampleInterval(cfg.History.SampleInterval.Duration),
		engine.WithNormalize(cfg.Text.Normalize),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return e, nil
}

// openDocument creates an engine holding the document at path.
func openDocument(cli *CLI, stderr io.Writer, path string) (*engine.Engine, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	e, err := newEngine(cfg, newLogger(cfg, stderr))
	if err != nil {
		return nil, err
	}
	if err := loadDocument(e, path); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func loadDocument(e *engine.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	if err := e.LoadJSON(data); err != nil {
		return fmt.Errorf("failed to load document %s: %w", path, err)
	}
	return nil
}

// importHistory resumes from a saved history. A missing file is not an
// error; it is created when the run finishes.
func importHistory(e *engine.Engine, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	if err := e.ImportHistory(f); err != nil {
		return fmt.Errorf("failed to import history %s: %w", path, err)
	}
	return nil
}

// exportHistory writes the history next to path and renames it into
// place, so a failed export leaves the previous file intact.
func exportHistory(e *engine.Engine, path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create history: %w", err)
	}
	tmp := f.Name()
	if err := e.ExportHistory(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to export history: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

func writeDocument(e *engine.Engine, path string, stdout io.Writer) error {
	data, err := e.DocumentJSON()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = pretty.Pretty(data)
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
