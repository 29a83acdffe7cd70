package controller

import (
	"github.com/dshills/findstorm/internal/find/match"
	"github.com/dshills/findstorm/internal/find/navstack"
	"github.com/dshills/findstorm/internal/find/session"
	"github.com/dshills/findstorm/internal/logging"
	"github.com/dshills/findstorm/internal/state"
)

// Toggles are the match flags shared by every session.
type Toggles struct {
	Regex         bool
	CaseSensitive bool
	WholeWord     bool
}

// Codes returns the flag letters shown in the overlay, in C, W, R order.
func (t Toggles) Codes() string {
	codes := ""
	if t.CaseSensitive {
		codes += "C"
	}
	if t.WholeWord {
		codes += "W"
	}
	if t.Regex {
		codes += "R"
	}
	return codes
}

// State keys used with the state store.
const (
	KeySimpleMode    = "find.simpleMode"
	KeyRegex         = "find.regex"
	KeyCaseSensitive = "find.caseSensitive"
	KeyWholeWord     = "find.wholeWord"
)

type options struct {
	logger         *logging.Logger
	engine         *match.Engine
	maxSessions    int
	navDepth       int
	toggles        Toggles
	store          state.Store
	persistToggles bool
	simpleDefault  bool
}

func defaultOptions() options {
	return options{
		logger:      logging.NullLogger,
		maxSessions: session.DefaultMaxSessions,
		navDepth:    navstack.DefaultDepth,
	}
}

// Option configures a Controller.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEngine sets the match engine.
func WithEngine(e *match.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithMaxSessions sets the session history capacity.
func WithMaxSessions(n int) Option {
	return func(o *options) {
		o.maxSessions = n
	}
}

// WithNavigationDepth bounds the per-session navigation stack.
func WithNavigationDepth(n int) Option {
	return func(o *options) {
		o.navDepth = n
	}
}

// WithToggles sets the initial match flags.
func WithToggles(t Toggles) Option {
	return func(o *options) {
		o.toggles = t
	}
}

// WithStore sets the state store holding simple mode. When persistToggles is
// set, the match flags are read from and written to the store too.
func WithStore(s state.Store, persistToggles bool) Option {
	return func(o *options) {
		o.store = s
		o.persistToggles = persistToggles
	}
}

// WithSimpleModeDefault sets simple mode for stores that hold no value.
func WithSimpleModeDefault(on bool) Option {
	return func(o *options) {
		o.simpleDefault = on
	}
}
