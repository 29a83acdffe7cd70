package terminal

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/findstorm/internal/config"
	"github.com/dshills/findstorm/internal/dispatcher"
	"github.com/dshills/findstorm/internal/dispatcher/handler"
	"github.com/dshills/findstorm/internal/find/controller"
	"github.com/dshills/findstorm/internal/input"
)

// ActionSave writes the document back to its file.
const ActionSave = "app.save"

// sessionActions only take a key while a find session is active. Outside
// a session those keys edit the document.
var sessionActions = map[string]struct{}{
	"find.end":               {},
	"find.cancel":            {},
	"find.deleteLeft":        {},
	"find.toggleReplaceMode": {},
	"find.replaceOne":        {},
	"find.replaceAll":        {},
	"find.history.next":      {},
	"find.history.prev":      {},
}

// reload is posted as an interrupt when the configuration file changes.
type reload struct {
	cfg *config.Config
	err error
}

// HandleEvent processes one terminal event and reports whether the view
// should exit.
func (v *View) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	if key, ok := ev.(*tcell.EventKey); ok {
		v.handleKey(ctx, key)
	} else {
		v.handleNonKey(ev)
	}
	return v.app.QuitRequested()
}

func (v *View) handleNonKey(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventInterrupt:
		if r, ok := ev.Data().(reload); ok {
			v.applyReload(r)
		}
	}
}

func (v *View) applyReload(r reload) {
	if r.err != nil {
		v.ShowMessage(controller.MessageError, "config: "+r.err.Error())
		return
	}
	palette, err := NewPalette(r.cfg.UI)
	if err != nil {
		v.ShowMessage(controller.MessageError, "config: "+err.Error())
		return
	}
	keys, err := Keymap(r.cfg)
	if err != nil {
		v.ShowMessage(controller.MessageError, "config: "+err.Error())
		return
	}
	v.app.ApplyConfig(r.cfg)
	v.palette, v.keys = palette, keys
	v.ShowMessage(controller.MessageInfo, "Configuration reloaded")
}

func (v *View) handleKey(ctx context.Context, ev *tcell.EventKey) {
	v.message = ""
	if b, ok := v.keys.Lookup(KeyName(ev)); ok && v.takesKey(b.Action) {
		v.dispatch(ctx, b.Action)
	} else {
		v.edit(ctx, ev)
	}
	if !v.app.Controller().Active() {
		v.scrollToCursor()
	}
}

func (v *View) takesKey(action string) bool {
	if v.app.Controller().Active() {
		return true
	}
	_, sessionOnly := sessionActions[action]
	return !sessionOnly
}

func (v *View) dispatch(ctx context.Context, name string) {
	res := v.app.Dispatch(ctx, input.NewAction(name).WithSource(input.SourceKeyboard))
	switch {
	case res.IsError() && errors.Is(res.Error, dispatcher.ErrNoHandler):
		v.ShowMessage(controller.MessageError, res.Error.Error())
	case res.IsError() && v.message == "":
		v.ShowMessage(controller.MessageError, describe(res))
	}
}

func describe(r handler.Result) string {
	if r.Message != "" {
		return r.Message
	}
	if r.Error != nil {
		return r.Error.Error()
	}
	return r.Status.String()
}

// edit runs the keystroke protocol: the dispatcher's key handlers see the
// keystroke first and the default editing happens unless one vetoes it.
func (v *View) edit(ctx context.Context, ev *tcell.EventKey) {
	d := v.app.Dispatcher()
	switch key := ev.Key(); key {
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModAlt|tcell.ModCtrl) != 0 {
			return
		}
		if text := string(ev.Rune()); d.Text(ctx, text) {
			v.insert(text)
		}
	case tcell.KeyEnter:
		if d.Text(ctx, "\n") {
			v.insert("\n")
		}
	case tcell.KeyTab:
		if d.Text(ctx, "\t") {
			v.insert("\t")
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if d.Delete(ctx, handler.DeleteLeft) {
			v.deleteLeft()
		}
	case tcell.KeyDelete:
		if d.Delete(ctx, handler.DeleteRight) {
			v.deleteRight()
		}
	case tcell.KeyCtrlW:
		if d.Delete(ctx, handler.DeleteWordLeft) {
			v.deleteWordLeft()
		}
	case tcell.KeyCtrlK:
		if d.Kill(ctx) {
			v.kill()
		}
	case tcell.KeyCtrlY:
		if d.Yank(ctx) {
			v.yank()
		}
	case tcell.KeyEscape, tcell.KeyCtrlG:
		d.Cancel(ctx)
	case tcell.KeyLeft, tcell.KeyRight, tcell.KeyUp, tcell.KeyDown,
		tcell.KeyHome, tcell.KeyEnd, tcell.KeyPgUp, tcell.KeyPgDn:
		if d.Move(ctx) {
			v.move(key)
		}
	}
}

func (v *View) save(context.Context, input.Action) handler.Result {
	if err := v.doc.Save(); err != nil {
		return handler.Error(err)
	}
	v.dirty = false
	v.ShowMessage(controller.MessageInfo, "Saved "+v.doc.Name)
	return handler.Success()
}
