package lua

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
)

// ToLua converts result data and script arguments for Lua. Slices become
// 1-based sequences, string-keyed maps become tables, errors become their
// message and anything else unknown becomes its fmt.Sprint form.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case lua.LValue:
		return v
	case nil:
		return lua.LNil
	case string:
		return lua.LString(v)
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case error:
		return lua.LString(v.Error())
	case []string:
		return sequence(L, len(v), func(i int) lua.LValue { return lua.LString(v[i]) })
	case []any:
		return sequence(L, len(v), func(i int) lua.LValue { return ToLua(L, v[i]) })
	case map[string]any:
		t := L.CreateTable(0, len(v))
		for k, item := range v {
			t.RawSetString(k, ToLua(L, item))
		}
		return t
	}
	return lua.LString(fmt.Sprint(v))
}

func sequence(L *lua.LState, n int, at func(int) lua.LValue) *lua.LTable {
	t := L.CreateTable(n, 0)
	for i := 0; i < n; i++ {
		t.RawSetInt(i+1, at(i))
	}
	return t
}

// ToGo converts a Lua value to Go. Whole numbers become int64. A table whose
// keys are exactly 1..n becomes []any; any other table becomes
// map[string]any keeping only its string keys. A table nested inside itself
// converts to nil at the point of recursion.
func ToGo(v lua.LValue) any {
	c := converter{open: make(map[*lua.LTable]struct{})}
	return c.value(v)
}

type converter struct {
	open map[*lua.LTable]struct{}
}

func (c converter) value(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LString:
		return string(v)
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		if f := float64(v); f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return int64(f)
		}
		return float64(v)
	case *lua.LUserData:
		return v.Value
	case *lua.LTable:
		if _, ok := c.open[v]; ok {
			return nil
		}
		c.open[v] = struct{}{}
		defer delete(c.open, v)
		return c.table(v)
	}
	return nil
}

func (c converter) table(t *lua.LTable) any {
	keys := 0
	t.ForEach(func(lua.LValue, lua.LValue) { keys++ })

	if n := t.Len(); n > 0 && n == keys {
		list := make([]any, n)
		for i := range list {
			list[i] = c.value(t.RawGetInt(i + 1))
		}
		return list
	}

	m := make(map[string]any, keys)
	t.ForEach(func(k, v lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			m[string(s)] = c.value(v)
		}
	})
	return m
}
