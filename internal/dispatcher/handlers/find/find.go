// Package find binds the find controller to the dispatcher: the find.*
// actions and the keystroke callbacks used while a find session is active.
package find

import (
	"context"
	"errors"

	"github.com/dshills/findstorm/internal/dispatcher/handler"
	"github.com/dshills/findstorm/internal/find/controller"
	"github.com/dshills/findstorm/internal/find/session"
	"github.com/dshills/findstorm/internal/input"
)

// Action names for find operations.
const (
	ActionStart             = "find.start"
	ActionReverse           = "find.reverse"
	ActionNext              = "find.next"
	ActionPrev              = "find.prev"
	ActionToggleRegex       = "find.toggleRegex"
	ActionToggleCase        = "find.toggleCase"
	ActionToggleWholeWord   = "find.toggleWholeWord"
	ActionToggleReplaceMode = "find.toggleReplaceMode"
	ActionToggleSimpleMode  = "find.toggleSimpleMode"
	ActionReplaceOne        = "find.replaceOne"
	ActionReplaceAll        = "find.replaceAll"
	ActionHistoryNext       = "find.history.next"
	ActionHistoryPrev       = "find.history.prev"
	ActionCancel            = "find.cancel"
	ActionEnd               = "find.end"
	ActionType              = "find.type"
	ActionDeleteLeft        = "find.deleteLeft"
)

// ArgText is the argument key carrying typed text for find.type when it is
// not given as the action's Text.
const ArgText = "text"

// Handler implements namespace-based find handling and reacts to
// keystrokes while a session is active.
type Handler struct {
	*handler.ActionTable
	ctrl *controller.Controller
}

// NewHandler creates a find handler driving ctrl.
func NewHandler(ctrl *controller.Controller) *Handler {
	h := &Handler{
		ActionTable: handler.NewActionTable("find"),
		ctrl:        ctrl,
	}

	h.Register(ActionStart, h.simple(func(ctx context.Context) error { return ctrl.Start(ctx, false) }))
	h.Register(ActionReverse, h.simple(func(ctx context.Context) error { return ctrl.Start(ctx, true) }))
	h.Register(ActionNext, h.simple(ctrl.NextMatch))
	h.Register(ActionPrev, h.simple(ctrl.PrevMatch))
	h.Register(ActionToggleRegex, h.simple(ctrl.ToggleRegex))
	h.Register(ActionToggleCase, h.simple(ctrl.ToggleCase))
	h.Register(ActionToggleWholeWord, h.simple(ctrl.ToggleWholeWord))
	h.Register(ActionToggleReplaceMode, h.simple(ctrl.ToggleReplaceMode))
	h.Register(ActionToggleSimpleMode, h.simple(ctrl.ToggleSimpleMode))
	h.Register(ActionReplaceOne, h.simple(func(ctx context.Context) error { return ctrl.Replace(ctx, false) }))
	h.Register(ActionReplaceAll, h.simple(func(ctx context.Context) error { return ctrl.Replace(ctx, true) }))
	h.Register(ActionHistoryNext, h.simple(ctrl.NextContext))
	h.Register(ActionHistoryPrev, h.simple(ctrl.PrevContext))
	h.Register(ActionEnd, h.end)
	h.Register(ActionCancel, h.cancel)
	h.Register(ActionType, h.typeText)
	h.Register(ActionDeleteLeft, h.simple(ctrl.DeleteLeft))
	return h
}

// Controller returns the driven controller.
func (h *Handler) Controller() *controller.Controller {
	return h.ctrl
}

func (h *Handler) simple(fn func(context.Context) error) handler.Func {
	return func(ctx context.Context, _ input.Action) handler.Result {
		return h.result(fn(ctx))
	}
}

func (h *Handler) typeText(ctx context.Context, action input.Action) handler.Result {
	text := action.Text
	if text == "" {
		text = action.StringArg(ArgText)
	}
	if text == "" {
		return handler.NoOpWithMessage("find.type: no text")
	}
	return h.result(h.ctrl.InsertText(ctx, text))
}

func (h *Handler) end(ctx context.Context, _ input.Action) handler.Result {
	if !h.ctrl.Active() {
		return handler.NoOp()
	}
	return h.result(h.ctrl.End(ctx))
}

func (h *Handler) cancel(ctx context.Context, _ input.Action) handler.Result {
	if !h.ctrl.Active() {
		return handler.NoOp()
	}
	if err := h.ctrl.Cancel(ctx); err != nil {
		return h.result(err)
	}
	return handler.CancelledWithMessage("find cancelled")
}

// result maps controller errors onto dispatcher results and attaches the
// controller state for callers such as scripts.
func (h *Handler) result(err error) handler.Result {
	var r handler.Result
	switch {
	case err == nil:
		r = handler.Success()
	case errors.Is(err, session.ErrHistoryStart), errors.Is(err, session.ErrHistoryEnd):
		r = handler.NoOpWithMessage(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r = handler.Result{Status: handler.StatusCancelled, Error: err}
	default:
		r = handler.Error(err)
	}

	st := h.ctrl.Status()
	r = r.WithData("active", st.Active).WithData("matches", st.Matches)
	if st.HasIndex {
		r = r.WithData("index", st.Index)
	}
	if st.Active {
		r = r.WithData("query", st.Session.FindText)
	}
	return r
}

// Active implements handler.KeyHandler.
func (h *Handler) Active() bool {
	return h.ctrl.Active()
}

// OnText sends typed text to the query.
func (h *Handler) OnText(ctx context.Context, text string) bool {
	_ = h.ctrl.InsertText(ctx, text)
	return false
}

// OnMove ends the session and lets the move happen.
func (h *Handler) OnMove(ctx context.Context) bool {
	_ = h.ctrl.End(ctx)
	return true
}

// OnDelete handles backspace; other deletes are reported and swallowed.
func (h *Handler) OnDelete(ctx context.Context, kind handler.DeleteKind) bool {
	if kind == handler.DeleteLeft {
		_ = h.ctrl.DeleteLeft(ctx)
		return false
	}
	h.ctrl.Notify(controller.MessageInfo, "Unsupported find command: "+kind.String())
	return false
}

// OnYank lets the editor paste as usual.
func (h *Handler) OnYank(context.Context) bool {
	return true
}

// OnKill lets the editor kill as usual.
func (h *Handler) OnKill(context.Context) bool {
	return true
}

// OnCancel ends the session.
func (h *Handler) OnCancel(ctx context.Context) bool {
	_ = h.ctrl.Cancel(ctx)
	return false
}

var (
	_ handler.NamespaceHandler = (*Handler)(nil)
	_ handler.KeyHandler       = (*Handler)(nil)
)
