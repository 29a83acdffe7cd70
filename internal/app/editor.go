package app

import (
	"context"
	"sync"

	"github.com/dshills/findstorm/internal/engine/buffer"
	"github.com/dshills/findstorm/internal/find/controller"
)

// Message is a message shown through the UI.
type Message struct {
	Level controller.MessageLevel
	Text  string
}

// Prompter answers text prompts for an Editor.
type Prompter func(ctx context.Context, placeholder, prompt string) (string, bool, error)

// Editor is a headless host for one document. It records everything the
// find controller asks the UI for, which makes it the host for scripts and
// batch runs.
type Editor struct {
	mu sync.Mutex

	doc        *Document
	selection  buffer.PointRange
	highlights map[controller.HighlightKind][]buffer.PointRange
	revealed   buffer.PointRange
	overlay    []string
	messages   []Message
	prompt     Prompter
	edits      int
}

// NewEditor creates an editor over doc with the cursor at the start.
func NewEditor(doc *Document) *Editor {
	return &Editor{
		doc:        doc,
		highlights: make(map[controller.HighlightKind][]buffer.PointRange),
	}
}

// SetPrompter sets the function answering PromptText. Without one, prompts
// are dismissed.
func (e *Editor) SetPrompter(p Prompter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prompt = p
}

// Document returns the edited document.
func (e *Editor) Document() *Document {
	return e.doc
}

// Text implements controller.Editor.
func (e *Editor) Text() string {
	return e.doc.Buffer.Text()
}

// Cursor implements controller.Editor.
func (e *Editor) Cursor() buffer.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.End
}

// SetCursor collapses the selection at p, clamped to the buffer.
func (e *Editor) SetCursor(p buffer.Point) {
	p = e.doc.Buffer.OffsetToPoint(e.doc.Buffer.PointToOffset(p))
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = buffer.NewPointRange(p, p)
}

// Selection returns the current selection.
func (e *Editor) Selection() buffer.PointRange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection
}

// ApplyEdits implements controller.Editor.
func (e *Editor) ApplyEdits(_ context.Context, edits []buffer.Edit) error {
	if _, err := e.doc.Buffer.ApplyEdits(edits); err != nil {
		return err
	}
	e.mu.Lock()
	e.edits += len(edits)
	e.mu.Unlock()
	return nil
}

// SetSelection implements controller.Editor.
func (e *Editor) SetSelection(r buffer.PointRange) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = r
}

// SetHighlights implements controller.Editor.
func (e *Editor) SetHighlights(kind controller.HighlightKind, ranges []buffer.PointRange) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(ranges) == 0 {
		delete(e.highlights, kind)
		return
	}
	e.highlights[kind] = append([]buffer.PointRange(nil), ranges...)
}

// Reveal implements controller.Revealer.
func (e *Editor) Reveal(r buffer.PointRange) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.revealed = r
}

// Highlights returns the ranges decorated with kind.
func (e *Editor) Highlights(kind controller.HighlightKind) []buffer.PointRange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]buffer.PointRange(nil), e.highlights[kind]...)
}

// Revealed returns the last range the controller asked to reveal.
func (e *Editor) Revealed() buffer.PointRange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revealed
}

// Edits returns how many edits were applied.
func (e *Editor) Edits() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.edits
}

// ShowOverlay implements controller.UI.
func (e *Editor) ShowOverlay(lines []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overlay = append([]string(nil), lines...)
}

// Overlay returns the overlay lines last shown.
func (e *Editor) Overlay() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.overlay...)
}

// ShowMessage implements controller.UI.
func (e *Editor) ShowMessage(level controller.MessageLevel, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, Message{Level: level, Text: text})
}

// Messages returns every message shown so far.
func (e *Editor) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Message(nil), e.messages...)
}

// PromptText implements controller.UI.
func (e *Editor) PromptText(ctx context.Context, placeholder, prompt string) (string, bool, error) {
	e.mu.Lock()
	p := e.prompt
	e.mu.Unlock()
	if p == nil {
		return "", false, nil
	}
	return p(ctx, placeholder, prompt)
}

var (
	_ controller.Editor   = (*Editor)(nil)
	_ controller.Revealer = (*Editor)(nil)
	_ controller.UI       = (*Editor)(nil)
)
