// Package handler defines what the dispatcher calls: single-action
// handlers, namespace handlers owning a prefix such as "find", and key
// handlers that see editing keystrokes before the editor does.
package handler

import (
	"context"
	"sort"

	"github.com/dshills/findstorm/internal/input"
)

// Handler runs an action.
type Handler interface {
	Handle(ctx context.Context, action input.Action) Result
}

// Func adapts a plain function to Handler.
type Func func(ctx context.Context, action input.Action) Result

// Handle implements Handler.
func (f Func) Handle(ctx context.Context, action input.Action) Result {
	if f == nil {
		return Errorf("%s: nil handler func", action.Name)
	}
	return f(ctx, action)
}

// NamespaceHandler owns the actions named "<namespace>.<rest>" that
// CanHandle accepts.
type NamespaceHandler interface {
	Namespace() string
	CanHandle(actionName string) bool
	HandleAction(ctx context.Context, action input.Action) Result
}

// ActionTable is a NamespaceHandler backed by a map of action names to
// funcs. Embed it and Register the namespace's actions.
type ActionTable struct {
	namespace string
	funcs     map[string]Func
}

// NewActionTable creates an empty table for namespace.
func NewActionTable(namespace string) *ActionTable {
	return &ActionTable{namespace: namespace, funcs: make(map[string]Func)}
}

// Register binds name to fn, replacing any earlier binding.
func (t *ActionTable) Register(name string, fn Func) {
	t.funcs[name] = fn
}

// Namespace implements NamespaceHandler.
func (t *ActionTable) Namespace() string { return t.namespace }

// CanHandle implements NamespaceHandler.
func (t *ActionTable) CanHandle(name string) bool {
	_, ok := t.funcs[name]
	return ok
}

// Names returns the registered action names, sorted.
func (t *ActionTable) Names() []string {
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HandleAction implements NamespaceHandler.
func (t *ActionTable) HandleAction(ctx context.Context, action input.Action) Result {
	fn, ok := t.funcs[action.Name]
	if !ok {
		return Errorf("%s has no action %q", t.namespace, action.Name)
	}
	return fn(ctx, action)
}
