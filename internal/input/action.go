// Package input defines the actions produced by keyboards, scripts and
// plugins and consumed by the dispatcher.
package input

import (
	"fmt"
	"maps"
)

// Source is where an action came from.
type Source uint8

const (
	SourceKeyboard Source = iota
	// SourceScript marks steps of a YAML action script.
	SourceScript
	// SourcePlugin marks calls from a Lua script.
	SourcePlugin
	SourceAPI
)

var sourceNames = [...]string{"keyboard", "script", "plugin", "api"}

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("source(%d)", s)
}

// Action is a named command with optional text and named arguments. Actions
// are values; the With methods return modified copies.
type Action struct {
	Name   string
	Text   string
	Args   map[string]any
	Source Source
}

func NewAction(name string) Action { return Action{Name: name} }

func (a Action) WithText(text string) Action {
	a.Text = text
	return a
}

func (a Action) WithSource(src Source) Action {
	a.Source = src
	return a
}

// WithArg sets a named argument without touching a's map.
func (a Action) WithArg(key string, value any) Action {
	args := maps.Clone(a.Args)
	if args == nil {
		args = make(map[string]any, 1)
	}
	args[key] = value
	a.Args = args
	return a
}

// Arg returns the named argument.
func (a Action) Arg(key string) (any, bool) {
	v, ok := a.Args[key]
	return v, ok
}

// StringArg returns the named argument when it is a string.
func (a Action) StringArg(key string) string {
	s, _ := a.Args[key].(string)
	return s
}

func (a Action) String() string {
	if a.Text == "" {
		return a.Name + " (" + a.Source.String() + ")"
	}
	return fmt.Sprintf("%s %q (%s)", a.Name, a.Text, a.Source)
}
