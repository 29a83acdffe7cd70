package lua

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
		"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func TestStateDoString(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(context.Background(), `x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v, ok := state.Global("x").(glua.LNumber); !ok || float64(v) != 2 {
		t.Errorf("x = %v, want 2", state.Global("x"))
	}
}

func TestStateSyntaxError(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(context.Background(), `invalid lua code !!!`); err == nil {
		t.Error("DoString() should fail on a syntax error")
	}
}

func TestStateSandbox(t *testing.T) {
	state := NewState()
	defer state.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "io", "os", "debug"} {
		if v := state.Global(name); v != glua.LNil {
			t.Errorf("%s should not be available, got %s", name, v.Type())
		}
	}
	for _, name := range []string{"string", "table", "math", "pairs", "pcall"} {
		if v := state.Global(name); v == glua.LNil {
			t.Errorf("%s should be available", name)
		}
	}
}

func TestStatePrint(t *testing.T) {
	var out bytes.Buffer
	state := NewState(WithOutput(&out))
	defer state.Close()

	if err := state.DoString(context.Background(), `print("a", 1, true)`); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "a\t1\ttrue\n" {
		t.Errorf("print wrote %q", got)
	}
}

func TestStateTimeout(t *testing.T) {
	state := NewState(WithTimeout(50 * time.Millisecond))
	defer state.Close()

	err := state.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("DoString() error = %v, want ErrTimeout", err)
	}

	if err := state.DoString(context.Background(), `y = 1`); err != nil {
		t.Errorf("state should be usable after a timeout: %v", err)
	}
}

func TestStateDoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.lua")
	if err := os.WriteFile(path, []byte(`answer = 6 * 7`), 0o644); err != nil {
		t.Fatal(err)
	}

	state := NewState()
	defer state.Close()

	if err := state.DoFile(context.Background(), path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if v := state.Global("answer"); v.String() != "42" {
		t.Errorf("answer = %v", v)
	}
	if err := state.DoFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("DoFile() on a missing file error = %v", err)
	}
}

func TestStateClosed(t *testing.T) {
	state := NewState()
	if err := state.Close(); err != nil {
		t.Fatal(err)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := state.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrClosed) {
		t.Errorf("DoString() on closed state error = %v", err)
	}
	if v := state.Global("x"); v != glua.LNil {
		t.Errorf("Global() on closed state = %v", v)
	}
}

func TestBridgeRoundTrip(t *testing.T) {
	L := glua.NewState()
	defer L.Close()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 42, int64(42)},
		{"float", 1.5, 1.5},
		{"string", "hi", "hi"},
		{"strings", []string{"a", "b"}, []any{"a", "b"}},
		{"map", map[string]any{"k": "v", "n": 1}, map[string]any{"k": "v", "n": int64(1)}},
		{"error", errors.New("bad"), "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToGo(ToLua(L, tt.in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("round trip of %v = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToGoCycle(t *testing.T) {
	L := glua.NewState()
	defer L.Close()

	tbl := L.NewTable()
	tbl.RawSetString("self", tbl)
	got, ok := ToGo(tbl).(map[string]any)
	if !ok {
		t.Fatalf("ToGo() = %T", ToGo(tbl))
	}
	if got["self"] != nil {
		t.Errorf("cycle should be cut, got %v", got["self"])
	}
}
