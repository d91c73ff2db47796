package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/folio/internal/engine"
	"github.com/dshills/folio/internal/logging"
)

// DefaultExecutionTimeout bounds a single DoString or DoFile call.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps gopher-lua with the doc module bound to one engine.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes calls
// from Go; the engine itself may still be used concurrently.
type State struct {
	L *lua.LState

	mu sync.Mutex

	engine           *engine.Engine
	executionTimeout time.Duration
	out              io.Writer
	logger           *logging.Logger

	closed bool
}

// Option configures a State.
type Option func(*State)

// WithExecutionTimeout sets the time limit for each execution.
// Zero disables the limit.
func WithExecutionTimeout(d time.Duration) Option {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithOutput sets where print writes. The default is standard output.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets the logger for script execution.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewState creates a sandboxed Lua state editing e.
func NewState(e *engine.Engine, opts ...Option) (*State, error) {
	if e == nil {
		return nil, ErrNoEngine
	}
	s := &State{
		engine:           e,
		executionTimeout: DefaultExecutionTimeout,
		out:              os.Stdout,
		logger:           logging.Null(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("script")

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	s.L = L
	openSafeLibraries(L)
	s.installPrint()

	mod := newDocModule(e)
	if err := mod.Register(L); err != nil {
		L.Close()
		return nil, err
	}
	return s, nil
}

// openSafeLibraries opens only the base, table, string and math libraries
// and removes the loaders that read files or compile strings.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (s *State) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// DoString executes Lua source.
// Execution is synchronous and stops when ctx is done or the execution
// timeout passes.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, "string", func() error {
		return s.L.DoString(code)
	})
}

// DoFile executes the Lua file at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, path, func() error {
		return s.L.DoFile(path)
	})
}

func (s *State) run(ctx context.Context, name string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	if s.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.executionTimeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	s.logger.Debug("running %s", name)
	if err := s.doWithRecovery(fn); err != nil {
		s.logger.Warn("script %s failed: %v", name, err)
		return fmt.Errorf("script %s: %w", name, err)
	}
	return nil
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Global returns a global variable converted to a Go value.
func (s *State) Global(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	return toGoValue(s.L.GetGlobal(name))
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. The engine is left open.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
