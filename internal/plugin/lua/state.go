package lua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

var (
	// ErrClosed is returned by a State after Close.
	ErrClosed = errors.New("lua: state closed")

	// ErrTimeout wraps the error of a chunk stopped by the state's timeout.
	ErrTimeout = errors.New("lua: script timed out")
)

// DefaultTimeout bounds a single DoString or DoFile.
const DefaultTimeout = 5 * time.Second

// libraries are the standard libraries a script can use. io, os, debug and
// package stay closed.
var libraries = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// blocked are base functions that load code from outside the script.
var blocked = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// State is a sandboxed Lua runtime. The underlying LState is not safe for
// concurrent use, so every entry point takes mu.
type State struct {
	mu      sync.Mutex
	vm      *lua.LState
	closed  bool
	timeout time.Duration
	out     io.Writer
}

// Option configures a State.
type Option func(*State)

// WithTimeout bounds each chunk. Zero means no limit beyond the caller's
// context.
func WithTimeout(d time.Duration) Option {
	return func(s *State) { s.timeout = d }
}

// WithOutput sets where print writes.
func WithOutput(w io.Writer) Option {
	return func(s *State) { s.out = w }
}

func NewState(opts ...Option) *State {
	s := &State{timeout: DefaultTimeout, out: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}

	s.vm = lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range libraries {
		s.vm.Push(s.vm.NewFunction(lib.open))
		s.vm.Push(lua.LString(lib.name))
		s.vm.Call(1, 0)
	}
	for _, name := range blocked {
		s.vm.SetGlobal(name, lua.LNil)
	}
	s.vm.SetGlobal("print", s.vm.NewFunction(s.print))
	return s
}

func (s *State) print(L *lua.LState) int {
	var b strings.Builder
	for i := 1; i <= L.GetTop(); i++ {
		if i > 1 {
			b.WriteByte('\t')
		}
		b.WriteString(L.ToStringMeta(L.Get(i)).String())
	}
	b.WriteByte('\n')
	io.WriteString(s.out, b.String())
	return 0
}

// DoString runs a chunk of Lua source.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.exec(ctx, "<string>", code)
}

// DoFile runs the script at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return s.exec(ctx, path, string(src))
}

func (s *State) exec(ctx context.Context, name, src string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	chunk, err := s.vm.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("lua: compile %s: %w", name, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.vm.SetContext(ctx)
	defer s.vm.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua: %s panicked: %v", name, r)
		}
	}()

	s.vm.Push(chunk)
	err = s.vm.PCall(0, lua.MultRet, nil)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// Global returns the value of a global, or LNil once the state is closed.
func (s *State) Global(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return lua.LNil
	}
	return s.vm.GetGlobal(name)
}

// Module installs funcs as the fields of a global table called name.
func (s *State) Module(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.vm.SetGlobal(name, s.vm.SetFuncs(s.vm.NewTable(), funcs))
	}
}

// Close releases the runtime. Closing twice is harmless.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.vm.Close()
		s.closed = true
	}
	return nil
}
