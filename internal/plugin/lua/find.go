package lua

import (
	"context"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/findstorm/internal/dispatcher"
	"github.com/dshills/findstorm/internal/dispatcher/handler"
	findh "github.com/dshills/findstorm/internal/dispatcher/handlers/find"
	"github.com/dshills/findstorm/internal/engine/buffer"
	"github.com/dshills/findstorm/internal/engine/index"
	"github.com/dshills/findstorm/internal/find/controller"
	"github.com/dshills/findstorm/internal/input"
)

// Buffer is the document view exposed to scripts as the buf module.
type Buffer interface {
	Text() string
	Cursor() buffer.Point
	SetCursor(p buffer.Point)
	Selection() buffer.PointRange
}

// Host is what Install binds scripts to.
type Host struct {
	Dispatcher *dispatcher.Dispatcher
	Controller *controller.Controller
	Buffer     Buffer
}

// Install registers the find and buf modules in s.
func Install(s *State, h Host) {
	s.Module("find", h.findFuncs())
	if h.Buffer != nil {
		s.Module("buf", h.bufFuncs())
	}
}

func (h Host) findFuncs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"start":          h.action(findh.ActionStart),
		"reverse":        h.action(findh.ActionReverse),
		"delete":         h.action(findh.ActionDeleteLeft),
		"next":           h.action(findh.ActionNext),
		"prev":           h.action(findh.ActionPrev),
		"toggle_regex":   h.action(findh.ActionToggleRegex),
		"toggle_case":    h.action(findh.ActionToggleCase),
		"toggle_word":    h.action(findh.ActionToggleWholeWord),
		"toggle_replace": h.action(findh.ActionToggleReplaceMode),
		"toggle_simple":  h.action(findh.ActionToggleSimpleMode),
		"history_next":   h.action(findh.ActionHistoryNext),
		"history_prev":   h.action(findh.ActionHistoryPrev),
		"finish":         h.action(findh.ActionEnd),
		"cancel":         h.action(findh.ActionCancel),
		"type":           h.typeText,
		"replace":        h.replace,
		"run":            h.run,
		"info":           h.info,
	}
}

// action returns a Lua function dispatching name with no arguments.
func (h Host) action(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		return h.dispatch(L, input.NewAction(name))
	}
}

func (h Host) typeText(L *lua.LState) int {
	return h.dispatch(L, input.NewAction(findh.ActionType).WithText(L.CheckString(1)))
}

func (h Host) replace(L *lua.LState) int {
	name := findh.ActionReplaceOne
	if L.OptBool(1, false) {
		name = findh.ActionReplaceAll
	}
	return h.dispatch(L, input.NewAction(name))
}

// run dispatches any action: run(name, [text], [args]).
func (h Host) run(L *lua.LState) int {
	action := input.NewAction(L.CheckString(1))
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		action = action.WithText(L.CheckString(2))
	}
	if tbl, ok := L.Get(3).(*lua.LTable); ok {
		if args, ok := ToGo(tbl).(map[string]any); ok {
			keys := make([]string, 0, len(args))
			for k := range args {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				action = action.WithArg(k, args[k])
			}
		}
	}
	return h.dispatch(L, action)
}

// dispatch runs action and returns the result table to Lua, raising a Lua
// error when the action failed.
func (h Host) dispatch(L *lua.LState, action input.Action) int {
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	r := h.Dispatcher.Dispatch(ctx, action.WithSource(input.SourcePlugin))
	if r.IsError() {
		msg := r.Message
		if msg == "" && r.Error != nil {
			msg = r.Error.Error()
		}
		L.RaiseError("%s: %s", action.Name, msg)
		return 0
	}
	L.Push(resultTable(L, r))
	return 1
}

func resultTable(L *lua.LState, r handler.Result) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("status", lua.LString(r.Status.String()))
	if r.Message != "" {
		tbl.RawSetString("message", lua.LString(r.Message))
	}
	for k, v := range r.Data {
		tbl.RawSetString(k, ToLua(L, v))
	}
	return tbl
}

// info returns the controller status. Indices are 1-based.
func (h Host) info(L *lua.LState) int {
	st := h.Controller.Status()
	tbl := L.NewTable()
	tbl.RawSetString("active", lua.LBool(st.Active))
	tbl.RawSetString("replace_mode", lua.LBool(st.ReplaceMode))
	tbl.RawSetString("simple_mode", lua.LBool(st.SimpleMode))
	tbl.RawSetString("regex", lua.LBool(st.Toggles.Regex))
	tbl.RawSetString("case_sensitive", lua.LBool(st.Toggles.CaseSensitive))
	tbl.RawSetString("whole_word", lua.LBool(st.Toggles.WholeWord))
	tbl.RawSetString("matches", lua.LNumber(st.Matches))
	tbl.RawSetString("history", lua.LNumber(st.HistoryLen))
	if st.HasIndex {
		tbl.RawSetString("index", lua.LNumber(st.Index+1))
		tbl.RawSetString("match", lua.LString(st.Current.Text))
	}
	if st.Active {
		tbl.RawSetString("query", lua.LString(st.Session.FindText))
		tbl.RawSetString("replacement", lua.LString(st.Session.ReplaceText))
	}
	if st.Err != nil {
		tbl.RawSetString("error", lua.LString(st.Err.Error()))
	}
	L.Push(tbl)
	return 1
}

func (h Host) bufFuncs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"text": func(L *lua.LState) int {
			L.Push(lua.LString(h.Buffer.Text()))
			return 1
		},
		"line_count": func(L *lua.LState) int {
			L.Push(lua.LNumber(index.Build(h.Buffer.Text()).LineCount()))
			return 1
		},
		"line": func(L *lua.LState) int {
			text := h.Buffer.Text()
			idx := index.Build(text)
			n := L.CheckInt(1)
			if n < 1 || n > idx.LineCount() {
				L.ArgError(1, "line out of range")
				return 0
			}
			L.Push(lua.LString(text[idx.LineStart(n-1):idx.LineEnd(n-1)]))
			return 1
		},
		"cursor": func(L *lua.LState) int {
			p := h.Buffer.Cursor()
			L.Push(lua.LNumber(p.Line + 1))
			L.Push(lua.LNumber(p.Column + 1))
			return 2
		},
		"set_cursor": func(L *lua.LState) int {
			line, col := L.CheckInt(1), L.OptInt(2, 1)
			if line < 1 || col < 1 {
				L.ArgError(1, "positions are 1-based")
				return 0
			}
			h.Buffer.SetCursor(buffer.Point{Line: line - 1, Column: col - 1})
			return 0
		},
		"selection": func(L *lua.LState) int {
			sel := h.Buffer.Selection()
			L.Push(lua.LNumber(sel.Start.Line + 1))
			L.Push(lua.LNumber(sel.Start.Column + 1))
			L.Push(lua.LNumber(sel.End.Line + 1))
			L.Push(lua.LNumber(sel.End.Column + 1))
			return 4
		},
		"selected_text": func(L *lua.LState) int {
			text := h.Buffer.Text()
			idx := index.Build(text)
			sel := h.Buffer.Selection()
			start, end := idx.OffsetOf(sel.Start), idx.OffsetOf(sel.End)
			if start > end {
				start, end = end, start
			}
			L.Push(lua.LString(text[start:end]))
			return 1
		},
	}
}
