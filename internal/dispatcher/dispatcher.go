package dispatcher

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/hbollon/go-edlib"

	"github.com/dshills/findstorm/internal/dispatcher/handler"
	"github.com/dshills/findstorm/internal/input"
	"github.com/dshills/findstorm/internal/logging"
)

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 4

// Dispatcher routes actions to handlers and keystrokes to key handlers.
type Dispatcher struct {
	routes *routes

	mu          sync.RWMutex
	keyHandlers []handler.KeyHandler
	preHooks    []PreDispatchHook
	postHooks   []PostDispatchHook

	stats   *Stats
	logger  *logging.Logger
	recover bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for recovered panics.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l.WithComponent("dispatcher")
		}
	}
}

// WithStats turns on per-action dispatch statistics.
func WithStats() Option {
	return func(d *Dispatcher) {
		d.stats = newStats()
	}
}

// WithPanicRecovery controls whether handler panics become error results.
// It is on by default.
func WithPanicRecovery(on bool) Option {
	return func(d *Dispatcher) {
		d.recover = on
	}
}

// New creates a dispatcher with no handlers.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		routes:  newRoutes(),
		logger:  logging.NullLogger,
		recover: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs action through the pre hooks, its handler and the post
// hooks.
func (d *Dispatcher) Dispatch(ctx context.Context, action input.Action) handler.Result {
	start := time.Now()
	if strings.TrimSpace(action.Name) == "" {
		return handler.Error(ErrEmptyAction)
	}

	d.mu.RLock()
	pre, post := d.preHooks, d.postHooks
	d.mu.RUnlock()

	for _, hook := range pre {
		if !hook.PreDispatch(ctx, &action) {
			return handler.Result{
				Status:  handler.StatusCancelled,
				Error:   fmt.Errorf("%w: %s", ErrVetoed, action.Name),
				Message: action.Name + " was vetoed",
			}
		}
	}

	var result handler.Result
	if h := d.routes.lookup(action.Name); h != nil {
		result = d.run(ctx, h, action)
	} else {
		result = d.unknown(action.Name)
	}

	for _, hook := range post {
		hook.PostDispatch(ctx, &action, &result)
	}
	if d.stats != nil {
		d.stats.record(action.Name, time.Since(start), result.Status)
	}
	return result
}

func (d *Dispatcher) run(ctx context.Context, h handler.Handler, action input.Action) (result handler.Result) {
	if !d.recover {
		return h.Handle(ctx, action)
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("%s panicked: %v\n%s", action.Name, r, debug.Stack())
			result = handler.Error(fmt.Errorf("%w: %s: %v", ErrPanic, action.Name, r))
			if d.stats != nil {
				d.stats.recordPanic()
			}
		}
	}()
	return h.Handle(ctx, action)
}

// unknown builds the result for a name nothing routes, with a suggestion
// when a known name is close.
func (d *Dispatcher) unknown(name string) handler.Result {
	result := handler.Error(fmt.Errorf("%w: %s", ErrNoHandler, name))
	if s, ok := d.Suggest(name); ok {
		result.Message = fmt.Sprintf("unknown action %q, did you mean %q?", name, s)
		result = result.WithData("suggestion", s)
	}
	return result
}

// RegisterHandler binds an exact action name. A later registration of the
// same name replaces the earlier one.
func (d *Dispatcher) RegisterHandler(name string, h handler.Handler) {
	d.routes.add(name, h)
}

// RegisterHandlerFunc binds an exact action name to fn.
func (d *Dispatcher) RegisterHandlerFunc(name string, fn func(context.Context, input.Action) handler.Result) {
	d.routes.add(name, handler.Func(fn))
}

// RegisterNamespace routes the actions ns claims to it.
func (d *Dispatcher) RegisterNamespace(ns handler.NamespaceHandler) {
	d.routes.addNamespace(ns)
}

// RegisterKeyHandler adds a handler to the keystroke handler set.
func (d *Dispatcher) RegisterKeyHandler(h handler.KeyHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keyHandlers = append(d.keyHandlers, h)
}

// RegisterPreHook appends a pre-dispatch hook.
func (d *Dispatcher) RegisterPreHook(hook PreDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preHooks = append(d.preHooks, hook)
}

// RegisterPostHook appends a post-dispatch hook.
func (d *Dispatcher) RegisterPostHook(hook PostDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postHooks = append(d.postHooks, hook)
}

// Text offers typed text to the key handlers. It returns true when the
// editor should insert the text itself.
func (d *Dispatcher) Text(ctx context.Context, text string) bool {
	return d.keystroke(func(h handler.KeyHandler) bool { return h.OnText(ctx, text) })
}

// Move offers a cursor movement to the key handlers.
func (d *Dispatcher) Move(ctx context.Context) bool {
	return d.keystroke(func(h handler.KeyHandler) bool { return h.OnMove(ctx) })
}

// Delete offers a delete command to the key handlers.
func (d *Dispatcher) Delete(ctx context.Context, kind handler.DeleteKind) bool {
	return d.keystroke(func(h handler.KeyHandler) bool { return h.OnDelete(ctx, kind) })
}

// Yank offers a paste to the key handlers.
func (d *Dispatcher) Yank(ctx context.Context) bool {
	return d.keystroke(func(h handler.KeyHandler) bool { return h.OnYank(ctx) })
}

// Kill offers a kill-to-end-of-line to the key handlers.
func (d *Dispatcher) Kill(ctx context.Context) bool {
	return d.keystroke(func(h handler.KeyHandler) bool { return h.OnKill(ctx) })
}

// Cancel offers a cancel keystroke to the key handlers.
func (d *Dispatcher) Cancel(ctx context.Context) bool {
	return d.keystroke(func(h handler.KeyHandler) bool { return h.OnCancel(ctx) })
}

// keystroke calls fn on every active key handler in registration order.
// Every active handler sees the keystroke even after one has vetoed it.
func (d *Dispatcher) keystroke(fn func(handler.KeyHandler) bool) bool {
	d.mu.RLock()
	handlers := d.keyHandlers
	d.mu.RUnlock()

	allow := true
	for _, h := range handlers {
		if h.Active() && !fn(h) {
			allow = false
		}
	}
	return allow
}

// Actions returns the sorted names of every routable action.
func (d *Dispatcher) Actions() []string {
	return d.routes.names()
}

// Suggest returns the known action closest to name by edit distance, if any
// is close enough to be a plausible typo.
func (d *Dispatcher) Suggest(name string) (string, bool) {
	best, bestDistance := "", maxSuggestionDistance+1
	lower := strings.ToLower(name)
	for _, candidate := range d.Actions() {
		if dist := edlib.LevenshteinDistance(lower, strings.ToLower(candidate)); dist < bestDistance {
			best, bestDistance = candidate, dist
		}
	}
	return best, best != ""
}

// Stats returns the dispatch statistics, or nil without WithStats.
func (d *Dispatcher) Stats() *Stats {
	return d.stats
}
