package controller

import (
	"context"

	"github.com/dshills/findstorm/internal/engine/buffer"
)

// HighlightKind selects one of the two match decorations.
type HighlightKind int

const (
	// HighlightAll marks every match except the current one.
	HighlightAll HighlightKind = iota
	// HighlightCurrent marks the current match.
	HighlightCurrent
)

// String returns the highlight kind name.
func (k HighlightKind) String() string {
	if k == HighlightCurrent {
		return "current-match"
	}
	return "all-matches"
}

// MessageLevel is the severity of a transient message.
type MessageLevel int

const (
	MessageInfo MessageLevel = iota
	MessageError
)

// String returns the message level name.
func (l MessageLevel) String() string {
	if l == MessageError {
		return "error"
	}
	return "info"
}

// Editor is the text editor a find session operates on.
type Editor interface {
	// Text returns the current buffer content.
	Text() string
	// Cursor returns the cursor position.
	Cursor() buffer.Point
	// ApplyEdits replaces byte ranges of the buffer. It must not return
	// before the edits are visible through Text.
	ApplyEdits(ctx context.Context, edits []buffer.Edit) error
	// SetSelection selects r. An empty range places the cursor.
	SetSelection(r buffer.PointRange)
	// SetHighlights replaces the ranges decorated with kind.
	SetHighlights(kind HighlightKind, ranges []buffer.PointRange)
}

// Revealer is implemented by editors that can scroll a range into view.
type Revealer interface {
	Reveal(r buffer.PointRange)
}

// UI shows find state to the user.
type UI interface {
	// ShowOverlay displays the status lines next to the cursor. A nil slice
	// hides the overlay.
	ShowOverlay(lines []string)
	// ShowMessage displays a transient message.
	ShowMessage(level MessageLevel, text string)
	// PromptText asks for a line of text. ok is false if the user
	// dismissed the prompt.
	PromptText(ctx context.Context, placeholder, prompt string) (text string, ok bool, err error)
}

// nopUI is used until a UI is attached.
type nopUI struct{}

func (nopUI) ShowOverlay([]string)             {}
func (nopUI) ShowMessage(MessageLevel, string) {}
func (nopUI) PromptText(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}
