package dispatcher

import (
	"context"
	"slices"

	"github.com/dshills/findstorm/internal/dispatcher/handler"
	"github.com/dshills/findstorm/internal/input"
	"github.com/dshills/findstorm/internal/logging"
)

// PreDispatchHook sees an action before its handler. It may rewrite the
// action in place; returning false vetoes the dispatch.
type PreDispatchHook interface {
	PreDispatch(ctx context.Context, action *input.Action) bool
}

// PostDispatchHook sees the action and its result after the handler ran and
// may amend the result.
type PostDispatchHook interface {
	PostDispatch(ctx context.Context, action *input.Action, result *handler.Result)
}

type PreDispatchFunc func(ctx context.Context, action *input.Action) bool

func (f PreDispatchFunc) PreDispatch(ctx context.Context, action *input.Action) bool {
	return f(ctx, action)
}

type PostDispatchFunc func(ctx context.Context, action *input.Action, result *handler.Result)

func (f PostDispatchFunc) PostDispatch(ctx context.Context, action *input.Action, result *handler.Result) {
	f(ctx, action, result)
}

// LoggingHook traces dispatches at debug level and logs failed ones as
// warnings. Register it as both a pre and a post hook.
type LoggingHook struct {
	logger *logging.Logger
}

func NewLoggingHook(logger *logging.Logger) *LoggingHook {
	return &LoggingHook{logger: logger.WithComponent("dispatch")}
}

func (h *LoggingHook) PreDispatch(_ context.Context, action *input.Action) bool {
	h.logger.Debug("%s from %s", action.Name, action.Source)
	return true
}

func (h *LoggingHook) PostDispatch(_ context.Context, action *input.Action, result *handler.Result) {
	if result.IsError() {
		h.logger.WithError(result.Error).Warn("%s failed", action.Name)
		return
	}
	h.logger.Debug("%s: %s", action.Name, result.Status)
}

// SourceGuard vetoes actions arriving from a source not listed for them.
// Actions without an entry pass from every source.
type SourceGuard struct {
	allowed map[string][]input.Source
}

func NewSourceGuard() *SourceGuard {
	return &SourceGuard{allowed: make(map[string][]input.Source)}
}

// Allow restricts name to the given sources.
func (g *SourceGuard) Allow(name string, sources ...input.Source) *SourceGuard {
	g.allowed[name] = append(g.allowed[name], sources...)
	return g
}

func (g *SourceGuard) PreDispatch(_ context.Context, action *input.Action) bool {
	sources, guarded := g.allowed[action.Name]
	return !guarded || slices.Contains(sources, action.Source)
}
