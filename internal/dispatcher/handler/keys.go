package handler

import "context"

// DeleteKind identifies a delete command.
type DeleteKind uint8

const (
	DeleteLeft DeleteKind = iota
	DeleteRight
	DeleteWordLeft
	DeleteWordRight
	DeleteLine
)

// String returns the delete kind name.
func (k DeleteKind) String() string {
	switch k {
	case DeleteLeft:
		return "deleteLeft"
	case DeleteRight:
		return "deleteRight"
	case DeleteWordLeft:
		return "deleteWordLeft"
	case DeleteWordRight:
		return "deleteWordRight"
	case DeleteLine:
		return "deleteLine"
	default:
		return "unknown"
	}
}

// KeyHandler reacts to editing keystrokes before the editor applies them.
// Each method returns true when the editor's default behavior should still
// run; returning false vetoes it.
type KeyHandler interface {
	// Active reports whether the handler currently wants keystrokes.
	Active() bool

	OnText(ctx context.Context, text string) bool
	OnMove(ctx context.Context) bool
	OnDelete(ctx context.Context, kind DeleteKind) bool
	OnYank(ctx context.Context) bool
	OnKill(ctx context.Context) bool
	OnCancel(ctx context.Context) bool
}

// BaseKeyHandler lets every keystroke through. Embed it to implement only
// the callbacks a handler cares about.
type BaseKeyHandler struct{}

func (BaseKeyHandler) OnText(context.Context, string) bool       { return true }
func (BaseKeyHandler) OnMove(context.Context) bool               { return true }
func (BaseKeyHandler) OnDelete(context.Context, DeleteKind) bool { return true }
func (BaseKeyHandler) OnYank(context.Context) bool               { return true }
func (BaseKeyHandler) OnKill(context.Context) bool               { return true }
func (BaseKeyHandler) OnCancel(context.Context) bool             { return true }
