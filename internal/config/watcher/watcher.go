// Package watcher reloads the configuration file when it changes on disk.
//
// The file's directory is watched rather than the file, so an editor that
// saves by renaming a temporary file over the original still counts as a
// change, and a file created after startup is picked up.
package watcher

import (
	"errors"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/findstorm/internal/config"
	"github.com/dshills/findstorm/internal/logging"
)

// ErrClosed is returned by a second Close.
var ErrClosed = errors.New("watcher: already closed")

// DefaultQuiet is how long the file must go without events before a change
// is reported.
const DefaultQuiet = 100 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithQuiet sets the quiet period. Zero reports every event batch at once.
func WithQuiet(d time.Duration) Option {
	return func(w *Watcher) { w.quiet = max(d, 0) }
}

func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l.WithComponent("config-watch")
		}
	}
}

// Watcher reports changes to one file. The callback runs on the watcher's
// goroutine with every operation seen since the previous report.
type Watcher struct {
	fsw    *fsnotify.Watcher
	path   string
	quiet  time.Duration
	logger *logging.Logger
	notify func(fsnotify.Op)

	closed  atomic.Bool
	stop    chan struct{}
	stopped chan struct{}
}

// New watches path, which need not exist yet although its directory must.
func New(path string, notify func(fsnotify.Op), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:    abs,
		quiet:   DefaultQuiet,
		logger:  logging.NullLogger,
		notify:  notify,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.fsw, err = fsnotify.NewWatcher(); err != nil {
		return nil, err
	}
	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		w.fsw.Close()
		return nil, err
	}
	go w.run()
	return w, nil
}

// Reload watches path and calls apply with the result of config.Load(opts)
// after each change. A removed file reloads defaults and the environment.
func Reload(path string, opts config.Options, apply func(*config.Config, error), wopts ...Option) (*Watcher, error) {
	return New(path, func(fsnotify.Op) { apply(config.Load(opts)) }, wopts...)
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Close stops watching and waits for a running callback to return.
func (w *Watcher) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	close(w.stop)
	err := w.fsw.Close()
	<-w.stopped
	return err
}

func (w *Watcher) run() {
	defer close(w.stopped)

	var (
		pending fsnotify.Op
		settle  <-chan time.Time
	)
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op == fsnotify.Chmod {
				continue
			}
			pending |= ev.Op
			settle = time.After(w.quiet)
		case <-settle:
			settle = nil
			w.deliver(pending)
			pending = 0
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("watch %s", w.path)
		}
	}
}

func (w *Watcher) deliver(op fsnotify.Op) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("change callback for %s panicked: %v", w.path, r)
		}
	}()
	w.notify(op)
}
