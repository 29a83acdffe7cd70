package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/findstorm/internal/config"
	"github.com/dshills/findstorm/internal/dispatcher"
	"github.com/dshills/findstorm/internal/dispatcher/handler"
	findh "github.com/dshills/findstorm/internal/dispatcher/handlers/find"
	"github.com/dshills/findstorm/internal/find/controller"
	"github.com/dshills/findstorm/internal/find/match"
	"github.com/dshills/findstorm/internal/input"
	"github.com/dshills/findstorm/internal/logging"
	"github.com/dshills/findstorm/internal/plugin/lua"
	"github.com/dshills/findstorm/internal/script"
	"github.com/dshills/findstorm/internal/state"
)

// ActionQuit asks the host to exit.
const ActionQuit = "app.quit"

// Options configures an App.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	// Logger defaults to a logger built from Config.Logging.
	Logger *logging.Logger
	// Store overrides the state store selected by Config.State.
	Store state.Store
}

// App owns the find controller, the dispatcher and the editor currently
// being searched.
type App struct {
	mu sync.Mutex

	cfg    *config.Config
	logger *logging.Logger
	logOut io.Closer
	store  state.Store

	dispatcher *dispatcher.Dispatcher
	controller *controller.Controller
	find       *findh.Handler
	editor     *Editor

	quit atomic.Bool
}

// New builds an App. Components are created in dependency order: logger,
// state store, match engine, controller, dispatcher.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{cfg: cfg, logger: opts.Logger}

	if a.logger == nil {
		logger, closer, err := NewLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		a.logger, a.logOut = logger, closer
	}

	a.store = opts.Store
	if a.store == nil {
		store, err := openStore(cfg.State)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init state: %w", err)
		}
		a.store = store
	}

	a.controller = controller.New(nil, nil, controllerOptions(cfg, a.logger, a.store)...)
	a.find = findh.NewHandler(a.controller)

	a.dispatcher = dispatcher.New(dispatcher.WithLogger(a.logger), dispatcher.WithStats())
	hook := dispatcher.NewLoggingHook(a.logger)
	a.dispatcher.RegisterPreHook(hook)
	a.dispatcher.RegisterPostHook(hook)
	a.dispatcher.RegisterPreHook(dispatcher.NewSourceGuard().Allow(ActionQuit, input.SourceKeyboard, input.SourceAPI))
	a.dispatcher.RegisterNamespace(a.find)
	a.dispatcher.RegisterKeyHandler(a.find)
	a.dispatcher.RegisterHandlerFunc(ActionQuit, func(context.Context, input.Action) handler.Result {
		a.quit.Store(true)
		return handler.SuccessWithMessage("quit")
	})

	a.logger.Debug("app ready: max_sessions=%d persist_toggles=%t", cfg.Find.MaxSessions, cfg.Find.PersistToggles)
	return a, nil
}

func controllerOptions(cfg *config.Config, logger *logging.Logger, store state.Store) []controller.Option {
	return []controller.Option{
		controller.WithLogger(logger),
		controller.WithEngine(match.NewEngine(match.WithCacheSize(cfg.Find.PatternCacheSize))),
		controller.WithMaxSessions(cfg.Find.MaxSessions),
		controller.WithNavigationDepth(cfg.Find.NavigationDepth),
		controller.WithToggles(togglesFrom(cfg.Find)),
		controller.WithStore(store, cfg.Find.PersistToggles),
		controller.WithSimpleModeDefault(cfg.Find.SimpleMode),
	}
}

func togglesFrom(f config.FindConfig) controller.Toggles {
	return controller.Toggles{
		Regex:         f.Regex,
		CaseSensitive: f.CaseSensitive,
		WholeWord:     f.WholeWord,
	}
}

func openStore(cfg config.StateConfig) (state.Store, error) {
	if cfg.File == "" {
		return state.NewMemoryStore(), nil
	}
	return state.OpenFileStore(cfg.File)
}

// NewLogger builds the logger described by cfg. The returned closer is nil
// unless output goes to a file.
func NewLogger(cfg config.LoggingConfig) (*logging.Logger, io.Closer, error) {
	lc := logging.DefaultConfig()
	if cfg.Level != "" {
		level, err := logging.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, err
		}
		lc.Level = level
	}
	if cfg.File == "" {
		return logging.New(lc), nil, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	lc.Output = f
	return logging.New(lc), f, nil
}

// Open makes doc the searched document, ending any session on the previous
// one.
func (a *App) Open(ctx context.Context, doc *Document) *Editor {
	ed := NewEditor(doc)
	a.mu.Lock()
	a.editor = ed
	a.mu.Unlock()
	a.controller.SetEditor(ctx, ed)
	a.controller.SetUI(ed)
	a.logger.WithField("document", doc.Name).Debug("opened")
	return ed
}

// Attach points the controller at an external host, such as a terminal view.
func (a *App) Attach(ctx context.Context, e controller.Editor, ui controller.UI) {
	a.controller.SetEditor(ctx, e)
	a.controller.SetUI(ui)
}

// ApplyConfig updates settings that can change at runtime: the default
// toggles and the log level.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	if !cfg.Find.PersistToggles {
		a.controller.SetToggles(togglesFrom(cfg.Find))
	}
	if level, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
		a.logger.SetLevel(level)
	}
	a.logger.Info("configuration reloaded")
}

// RunScript runs a YAML action script.
func (a *App) RunScript(ctx context.Context, s *script.Script) (*script.Report, error) {
	return script.NewRunner(a.dispatcher, a.logger).Run(ctx, s)
}

// RunLua runs a Lua script file with the find and buf modules installed.
// print output goes to out.
func (a *App) RunLua(ctx context.Context, path string, out io.Writer) error {
	L := lua.NewState(lua.WithOutput(out), lua.WithTimeout(a.Config().Script.Timeout()))
	defer L.Close()

	host := lua.Host{Dispatcher: a.dispatcher, Controller: a.controller}
	if ed := a.Editor(); ed != nil {
		host.Buffer = ed
	}
	lua.Install(L, host)
	return L.DoFile(ctx, path)
}

// Dispatch runs a single action.
func (a *App) Dispatch(ctx context.Context, action input.Action) handler.Result {
	return a.dispatcher.Dispatch(ctx, action)
}

// QuitRequested reports whether app.quit was dispatched.
func (a *App) QuitRequested() bool {
	return a.quit.Load()
}

// Config returns the current configuration.
func (a *App) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Editor returns the editor opened last, or nil.
func (a *App) Editor() *Editor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editor
}

// Controller returns the find controller.
func (a *App) Controller() *controller.Controller { return a.controller }

// Dispatcher returns the action dispatcher.
func (a *App) Dispatcher() *dispatcher.Dispatcher { return a.dispatcher }

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger { return a.logger }

func (a *App) logStats() {
	n, errs, panics := a.dispatcher.Stats().Totals()
	if n == 0 {
		return
	}
	a.logger.Debug("dispatched %d actions: %d errors, %d panics", n, errs, panics)
	for _, s := range a.dispatcher.Stats().Busiest(5) {
		a.logger.Debug("  %-24s %5d mean=%s slowest=%s", s.Name, s.Count, s.Mean(), s.Slowest)
	}
}

// Close ends any find session and releases the log file.
func (a *App) Close() error {
	if a.controller != nil {
		_ = a.controller.End(context.Background())
	}
	if a.dispatcher != nil {
		a.logStats()
	}
	if a.logOut != nil {
		return a.logOut.Close()
	}
	return nil
}
