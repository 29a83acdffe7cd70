package terminal

import (
	"context"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/findstorm/internal/app"
	"github.com/dshills/findstorm/internal/engine/buffer"
	"github.com/dshills/findstorm/internal/find/controller"
	"github.com/dshills/findstorm/internal/input/keymap"
	"github.com/dshills/findstorm/internal/logging"
)

// TabWidth is the display width of a tab stop.
const TabWidth = 4

// View is a tcell host for one document.
type View struct {
	screen  tcell.Screen
	app     *app.App
	doc     *app.Document
	keys    *keymap.Keymap
	palette Palette
	logger  *logging.Logger

	events chan tcell.Event

	// top and left are the first visible line and display column.
	top, left int

	selection  buffer.PointRange
	highlights map[controller.HighlightKind][]buffer.PointRange
	overlay    []string

	message      string
	messageLevel controller.MessageLevel
	prompt       *promptState

	killRing string
	dirty    bool
}

type promptState struct {
	label       string
	placeholder string
	text        string
}

// Option configures a View.
type Option func(*View)

// WithKeymap replaces the default key bindings.
func WithKeymap(km *keymap.Keymap) Option {
	return func(v *View) {
		if km != nil {
			v.keys = km
		}
	}
}

// WithPalette sets the drawing styles.
func WithPalette(p Palette) Option {
	return func(v *View) {
		v.palette = p
	}
}

// NewView creates a view of doc on screen and attaches it to a's find
// controller. The screen must already be initialized.
func NewView(ctx context.Context, screen tcell.Screen, a *app.App, doc *app.Document, opts ...Option) *View {
	v := &View{
		screen:     screen,
		app:        a,
		doc:        doc,
		keys:       keymap.Default(),
		palette:    DefaultPalette(),
		logger:     a.Logger().WithComponent("terminal"),
		events:     make(chan tcell.Event, 64),
		highlights: make(map[controller.HighlightKind][]buffer.PointRange),
	}
	for _, opt := range opts {
		opt(v)
	}
	a.Dispatcher().RegisterHandlerFunc(ActionSave, v.save)
	a.Attach(ctx, v, v)
	return v
}

// Document returns the displayed document.
func (v *View) Document() *app.Document {
	return v.doc
}

// Modified reports whether the buffer was edited since it was loaded or
// saved.
func (v *View) Modified() bool {
	return v.dirty
}

// Text implements controller.Editor.
func (v *View) Text() string {
	return v.doc.Buffer.Text()
}

// Cursor implements controller.Editor.
func (v *View) Cursor() buffer.Point {
	return v.selection.End
}

// SetCursor collapses the selection at p.
func (v *View) SetCursor(p buffer.Point) {
	p = v.clamp(p)
	v.selection = buffer.NewPointRange(p, p)
}

// Selection returns the current selection.
func (v *View) Selection() buffer.PointRange {
	return v.selection
}

// ApplyEdits implements controller.Editor.
func (v *View) ApplyEdits(_ context.Context, edits []buffer.Edit) error {
	if _, err := v.doc.Buffer.ApplyEdits(edits); err != nil {
		return err
	}
	v.dirty = true
	return nil
}

// SetSelection implements controller.Editor.
func (v *View) SetSelection(r buffer.PointRange) {
	v.selection = r
}

// SetHighlights implements controller.Editor.
func (v *View) SetHighlights(kind controller.HighlightKind, ranges []buffer.PointRange) {
	v.highlights[kind] = ranges
}

// Reveal implements controller.Revealer by scrolling r into the middle of
// the screen when it is not visible.
func (v *View) Reveal(r buffer.PointRange) {
	h := v.textHeight()
	if r.Start.Line < v.top || r.End.Line >= v.top+h {
		v.top = max(r.Start.Line-h/2, 0)
	}
}

// ShowOverlay implements controller.UI.
func (v *View) ShowOverlay(lines []string) {
	v.overlay = lines
}

// ShowMessage implements controller.UI.
func (v *View) ShowMessage(level controller.MessageLevel, text string) {
	v.message, v.messageLevel = text, level
	if level == controller.MessageError {
		v.logger.Debug("error shown: %s", text)
	}
}

// PromptText implements controller.UI by reading a line on the status row.
// It consumes events until Enter or Esc. The controller is locked while it
// runs, so events other than keys and resizes are posted again afterwards.
func (v *View) PromptText(ctx context.Context, placeholder, prompt string) (string, bool, error) {
	v.prompt = &promptState{label: prompt, placeholder: placeholder}
	var deferred []tcell.Event
	defer func() {
		v.prompt = nil
		for _, ev := range deferred {
			_ = v.screen.PostEvent(ev)
		}
	}()

	for {
		v.Draw()
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case ev, ok := <-v.events:
			if !ok {
				return "", false, nil
			}
			key, isKey := ev.(*tcell.EventKey)
			if !isKey {
				if _, resize := ev.(*tcell.EventResize); resize {
					v.screen.Sync()
				} else {
					deferred = append(deferred, ev)
				}
				continue
			}
			switch key.Key() {
			case tcell.KeyEnter:
				return v.prompt.text, true, nil
			case tcell.KeyEscape, tcell.KeyCtrlG:
				return "", false, nil
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				v.prompt.text = trimLastGrapheme(v.prompt.text)
			case tcell.KeyRune:
				v.prompt.text += string(key.Rune())
			}
		}
	}
}

func (v *View) textHeight() int {
	_, h := v.screen.Size()
	return max(h-1, 1)
}

// clamp moves p onto the buffer and onto a rune boundary.
func (v *View) clamp(p buffer.Point) buffer.Point {
	b := v.doc.Buffer
	return b.OffsetToPoint(v.runeStart(b.PointToOffset(p)))
}

func (v *View) runeStart(off int) int {
	text := v.doc.Buffer.Text()
	for off > 0 && off < len(text) && !utf8.RuneStart(text[off]) {
		off--
	}
	return off
}

func (v *View) offset() int {
	return v.doc.Buffer.PointToOffset(v.selection.End)
}

func (v *View) lineBounds(line int) (start, end int) {
	b := v.doc.Buffer
	start = b.PointToOffset(buffer.Point{Line: line})
	return start, start + len(b.LineText(line))
}

func (v *View) setOffset(off int) {
	v.SetCursor(v.doc.Buffer.OffsetToPoint(off))
}

func (v *View) insert(text string) {
	end, err := v.doc.Buffer.Insert(v.offset(), text)
	if err != nil {
		v.ShowMessage(controller.MessageError, err.Error())
		return
	}
	v.dirty = true
	v.setOffset(end)
}

func (v *View) deleteRange(start, end int) string {
	if start >= end {
		return ""
	}
	removed := v.doc.Buffer.TextRange(start, end)
	if err := v.doc.Buffer.Delete(start, end); err != nil {
		v.ShowMessage(controller.MessageError, err.Error())
		return ""
	}
	v.dirty = true
	v.setOffset(start)
	return removed
}

// prevBoundary returns the start of the grapheme cluster before off, or
// the preceding newline at a line start.
func (v *View) prevBoundary(off int) int {
	line := v.selectionLineFor(off)
	start, _ := v.lineBounds(line)
	if off <= start {
		return max(off-1, 0)
	}
	text := v.doc.Buffer.TextRange(start, off)
	return start + len(text) - len(lastGrapheme(text))
}

// nextBoundary returns the end of the grapheme cluster after off, or the
// following newline at a line end.
func (v *View) nextBoundary(off int) int {
	line := v.selectionLineFor(off)
	_, end := v.lineBounds(line)
	if off >= end {
		return min(off+1, v.doc.Buffer.Len())
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(v.doc.Buffer.TextRange(off, end), -1)
	return off + len(cluster)
}

func (v *View) selectionLineFor(off int) int {
	return v.doc.Buffer.OffsetToPoint(off).Line
}

func (v *View) deleteLeft() {
	off := v.offset()
	v.deleteRange(v.prevBoundary(off), off)
}

func (v *View) deleteRight() {
	off := v.offset()
	v.deleteRange(off, v.nextBoundary(off))
}

func (v *View) deleteWordLeft() {
	off := v.offset()
	text := v.doc.Buffer.TextRange(0, off)
	i := len(text)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if !unicode.IsSpace(r) {
			break
		}
		i -= size
	}
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if unicode.IsSpace(r) {
			break
		}
		i -= size
	}
	v.deleteRange(i, off)
}

// kill deletes to the end of the line, or the newline at a line end, and
// keeps the text for yank.
func (v *View) kill() {
	off := v.offset()
	_, end := v.lineBounds(v.selection.End.Line)
	if off >= end {
		end = min(off+1, v.doc.Buffer.Len())
	}
	if removed := v.deleteRange(off, end); removed != "" {
		v.killRing = removed
	}
}

func (v *View) yank() {
	if v.killRing != "" {
		v.insert(v.killRing)
	}
}

func (v *View) move(key tcell.Key) {
	cur := v.selection.End
	b := v.doc.Buffer
	switch key {
	case tcell.KeyLeft:
		v.setOffset(v.prevBoundary(v.offset()))
	case tcell.KeyRight:
		v.setOffset(v.nextBoundary(v.offset()))
	case tcell.KeyUp:
		v.SetCursor(buffer.Point{Line: max(cur.Line-1, 0), Column: cur.Column})
	case tcell.KeyDown:
		v.SetCursor(buffer.Point{Line: min(cur.Line+1, b.LineCount()-1), Column: cur.Column})
	case tcell.KeyHome:
		v.SetCursor(buffer.Point{Line: cur.Line})
	case tcell.KeyEnd:
		_, end := v.lineBounds(cur.Line)
		v.setOffset(end)
	case tcell.KeyPgUp:
		v.SetCursor(buffer.Point{Line: max(cur.Line-v.textHeight(), 0), Column: cur.Column})
	case tcell.KeyPgDn:
		v.SetCursor(buffer.Point{Line: min(cur.Line+v.textHeight(), b.LineCount()-1), Column: cur.Column})
	}
}

// scrollToCursor keeps the cursor on screen.
func (v *View) scrollToCursor() {
	cur := v.selection.End
	h := v.textHeight()
	if cur.Line < v.top {
		v.top = cur.Line
	} else if cur.Line >= v.top+h {
		v.top = cur.Line - h + 1
	}

	w, _ := v.screen.Size()
	x := v.cursorX()
	if x < v.left {
		v.left = x
	} else if x >= v.left+w {
		v.left = x - w + 1
	}
}

func lastGrapheme(s string) string {
	last := ""
	state := -1
	for len(s) > 0 {
		last, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
	}
	return last
}

func trimLastGrapheme(s string) string {
	return s[:len(s)-len(lastGrapheme(s))]
}
