package terminal

import (
	"context"
	"io"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/findstorm/internal/config"
	"github.com/dshills/findstorm/internal/config/watcher"
)

// Run draws the view and handles events until app.quit is dispatched or
// ctx is cancelled. It finalizes the screen before returning.
func (v *View) Run(ctx context.Context) error {
	defer v.screen.Fini()

	done := make(chan struct{})
	defer close(done)
	go v.poll(done)

	for {
		v.Draw()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-v.events:
			if v.HandleEvent(ctx, ev) {
				return nil
			}
		}
	}
}

// poll feeds screen events to the loop. PollEvent returns nil once the
// screen is finalized.
func (v *View) poll(done <-chan struct{}) {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case v.events <- ev:
		case <-done:
			return
		}
	}
}

// WatchConfig reloads the configuration when the file at path changes.
// Reloads reach the view as interrupt events, so they are applied on the
// event loop goroutine.
func (v *View) WatchConfig(path string, opts config.Options) (io.Closer, error) {
	w, err := watcher.Reload(path, opts, func(cfg *config.Config, err error) {
		if perr := v.screen.PostEvent(tcell.NewEventInterrupt(reload{cfg: cfg, err: err})); perr != nil {
			v.logger.WithError(perr).Warn("dropped configuration reload")
		}
	}, watcher.WithLogger(v.logger))
	if err != nil {
		return nil, err
	}
	return w, nil
}
