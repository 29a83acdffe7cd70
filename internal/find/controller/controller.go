// Package controller drives interactive find and replace.
//
// A Controller receives one command at a time (typed text, deletes, flag
// toggles, history and match navigation, replace, end) and after each one
// recomputes the matches for the active session, re-anchors the current
// match and updates the editor highlights and the status overlay.
//
// The controller is either inactive or active; while active it is in find or
// replace sub-mode. Commands other than start, toggles and end require an
// active session and fail with ErrNotActive otherwise.
//
// Host callbacks (Editor and UI methods) are invoked while the controller's
// lock is held and must not call back into the Controller.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/findstorm/internal/engine/buffer"
	"github.com/dshills/findstorm/internal/engine/index"
	"github.com/dshills/findstorm/internal/find/match"
	"github.com/dshills/findstorm/internal/find/navstack"
	"github.com/dshills/findstorm/internal/find/session"
	"github.com/dshills/findstorm/internal/find/tracker"
	"github.com/dshills/findstorm/internal/logging"
	"github.com/dshills/findstorm/internal/state"
)

// Status is a read-only view of the controller.
type Status struct {
	Active      bool
	ReplaceMode bool
	Reverse     bool
	SimpleMode  bool
	Toggles     Toggles

	// Session is a copy of the active session; zero when inactive.
	Session      session.Session
	HistoryLen   int
	HistoryIndex int

	Matches  int
	Index    int
	HasIndex bool
	Current  match.Match
	Err      error
}

// Controller coordinates the session history, match engine, tracker and
// navigation stack for one editor at a time.
type Controller struct {
	mu sync.Mutex

	editor Editor
	ui     UI
	logger *logging.Logger

	engine  *match.Engine
	tracker *tracker.Tracker
	cache   *session.Cache
	nav     *navstack.Stack

	store          state.Store
	persistToggles bool
	simple         *state.BoolTracker
	toggles        Toggles

	active      bool
	replaceMode bool
	reverse     bool

	// text and idx describe the snapshot the current matches came from.
	text string
	idx  *index.Index
}

// New creates a Controller. editor may be nil until SetEditor is called.
func New(editor Editor, ui UI, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.engine == nil {
		o.engine = match.NewEngine()
	}
	if o.store == nil {
		o.store = state.NewMemoryStore()
	}
	if ui == nil {
		ui = nopUI{}
	}

	c := &Controller{
		editor:         editor,
		ui:             ui,
		logger:         o.logger.WithComponent("find"),
		engine:         o.engine,
		tracker:        tracker.New(buffer.Point{}),
		cache:          session.NewCache(o.maxSessions),
		nav:            navstack.New(o.navDepth),
		store:          o.store,
		persistToggles: o.persistToggles,
		toggles:        o.toggles,
		idx:            index.Build(""),
	}
	c.simple = state.NewBoolTracker(o.store, KeySimpleMode, o.simpleDefault,
		func() { c.message(MessageInfo, "Simple Find Mode activated") },
		func() { c.message(MessageInfo, "Regular Find Mode activated") },
	)
	if c.persistToggles {
		c.toggles.Regex = c.storedBool(KeyRegex, c.toggles.Regex)
		c.toggles.CaseSensitive = c.storedBool(KeyCaseSensitive, c.toggles.CaseSensitive)
		c.toggles.WholeWord = c.storedBool(KeyWholeWord, c.toggles.WholeWord)
	}
	return c
}

func (c *Controller) storedBool(key string, def bool) bool {
	if v, ok := c.store.GetBool(key); ok {
		return v
	}
	return def
}

// SetEditor attaches a different editor. An active session on the previous
// editor is ended first.
func (c *Controller) SetEditor(ctx context.Context, e Editor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		c.end(ctx, "editor changed")
	}
	c.editor = e
}

// SetUI replaces the UI. A nil ui discards overlays and messages.
func (c *Controller) SetUI(ui UI) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ui == nil {
		ui = nopUI{}
	}
	c.ui = ui
}

// Active reports whether a find session is in progress.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := c.tracker.Info()
	st := Status{
		Active:       c.active,
		ReplaceMode:  c.replaceMode,
		Reverse:      c.reverse,
		SimpleMode:   c.simple.Get(),
		Toggles:      c.toggles,
		HistoryLen:   c.cache.Len(),
		HistoryIndex: c.cache.ActiveIndex(),
		Matches:      len(info.Matches),
		Index:        info.Index,
		HasIndex:     info.HasIndex,
		Current:      info.Current,
		Err:          info.Err,
	}
	if s := c.cache.Active(); c.active && s != nil {
		st.Session = *s
	}
	return st
}

// Start begins a find session at the cursor. With reverse set, retyping the
// query prefers the match before the cursor. In simple mode the whole query
// is requested through the UI prompt first. If a session is already active,
// Start moves to the next match (or the previous one when reverse is set).
func (c *Controller) Start(ctx context.Context, reverse bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return c.nextOrPrev(ctx, reverse)
	}
	if c.editor == nil {
		return c.fail("Cannot activate find mode from outside an editor", ErrNoEditor)
	}

	initial := ""
	if c.simple.Get() {
		text, ok, err := c.ui.PromptText(ctx, "Search query", "Search text")
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}
		if ok {
			initial = text
		}
	}
	c.start(reverse, initial)
	return nil
}

// StartWith begins a find session whose query is initial.
func (c *Controller) StartWith(ctx context.Context, reverse bool, initial string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return c.nextOrPrev(ctx, reverse)
	}
	if c.editor == nil {
		return c.fail("Cannot activate find mode from outside an editor", ErrNoEditor)
	}
	c.start(reverse, initial)
	return nil
}

func (c *Controller) start(reverse bool, initial string) {
	c.active = true
	c.reverse = reverse
	c.replaceMode = false
	c.nav.Clear()
	s := c.cache.Push(initial)
	c.tracker.Reset(c.editor.Cursor())

	c.logger.WithField("session", s.ID).Debug("find started (reverse=%t)", reverse)
	c.refresh()
	c.focus()
}

// InsertText appends s to the find text, or to the replace text in replace
// mode. In find mode the match that was current before the change is
// recorded so DeleteLeft can restore it.
func (c *Controller) InsertText(ctx context.Context, s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActive("find.type"); err != nil {
		return err
	}
	if s == "" {
		return nil
	}

	sess := c.cache.Active()
	if c.replaceMode {
		sess.AppendReplace(s)
		c.focus()
		return nil
	}

	c.nav.Push(c.tracker.Index())
	sess.AppendFind(s)
	c.refresh()
	c.focus()
	return nil
}

// DeleteLeft removes the last character of the find text, or of the replace
// text in replace mode. In find mode the previously current match is
// restored when one was recorded.
func (c *Controller) DeleteLeft(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActive("find.deleteLeft"); err != nil {
		return err
	}

	sess := c.cache.Active()
	if c.replaceMode {
		sess.DeleteReplace()
		c.focus()
		return nil
	}

	if sess.DeleteFind() {
		c.refresh()
		if i, ok := c.nav.Pop(); ok {
			c.tracker.SetIndex(i)
		}
	}
	c.focus()
	return nil
}

// ToggleRegex flips regex matching.
func (c *Controller) ToggleRegex(ctx context.Context) error {
	return c.toggle(KeyRegex, func(t *Toggles) *bool { return &t.Regex })
}

// ToggleCase flips case-sensitive matching.
func (c *Controller) ToggleCase(ctx context.Context) error {
	return c.toggle(KeyCaseSensitive, func(t *Toggles) *bool { return &t.CaseSensitive })
}

// ToggleWholeWord flips whole-word matching.
func (c *Controller) ToggleWholeWord(ctx context.Context) error {
	return c.toggle(KeyWholeWord, func(t *Toggles) *bool { return &t.WholeWord })
}

// toggle flips one flag. Flags belong to the controller rather than to a
// session, so they may be flipped while inactive and carry over to the next
// session.
func (c *Controller) toggle(key string, field func(*Toggles) *bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	flag := field(&c.toggles)
	*flag = !*flag

	var err error
	if c.persistToggles {
		if err = c.store.SetBool(key, *flag); err != nil {
			c.logger.WithError(err).Warn("persist %s", key)
			err = fmt.Errorf("persist %s: %w", key, err)
		}
	}

	if c.active {
		c.refresh()
		c.focus()
	}
	return err
}

// SetToggles replaces all match flags at once, for example after a
// configuration reload.
func (c *Controller) SetToggles(t Toggles) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.toggles == t {
		return
	}
	c.toggles = t
	if c.active {
		c.refresh()
		c.focus()
	}
}

// ToggleReplaceMode switches between editing the find and the replace text.
func (c *Controller) ToggleReplaceMode(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActive("find.toggleReplaceMode"); err != nil {
		return err
	}
	c.replaceMode = !c.replaceMode
	c.focus()
	return nil
}

// ToggleSimpleMode flips simple mode, in which Start prompts for the whole
// query instead of matching as the user types.
func (c *Controller) ToggleSimpleMode(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.simple.Toggle(); err != nil {
		return c.fail("Failed to toggle simple find mode", err)
	}
	return nil
}

// NextContext makes the following session in the history active.
func (c *Controller) NextContext(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActive("find.history.next"); err != nil {
		return err
	}
	return c.moveContext(c.cache.Next)
}

// PrevContext makes the preceding session in the history active.
func (c *Controller) PrevContext(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActive("find.history.prev"); err != nil {
		return err
	}
	return c.moveContext(c.cache.Prev)
}

func (c *Controller) moveContext(move func() error) error {
	if err := move(); err != nil {
		c.message(MessageInfo, err.Error())
		return err
	}
	c.nav.Clear()
	c.refresh()
	c.focus()
	return nil
}

// Replace substitutes the replace text for the current match, or for every
// match when all is set. Regex sessions expand group references. The edits
// are applied before matches are recomputed.
func (c *Controller) Replace(ctx context.Context, all bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	op := "find.replaceOne"
	if all {
		op = "find.replaceAll"
	}
	if err := c.requireActive(op); err != nil {
		return err
	}
	if c.editor == nil {
		return c.fail("Cannot replace matches from outside an editor", ErrNoEditor)
	}

	// Matches are offsets into the last snapshot; recompute if the buffer
	// changed underneath us.
	if c.editor.Text() != c.text {
		c.refresh()
	}

	var targets []match.Match
	if all {
		targets = c.tracker.Matches()
	} else if m, ok := c.tracker.Current(); ok {
		targets = []match.Match{m}
	}

	if len(targets) > 0 {
		repl := c.cache.Active().ReplaceText
		edits := make([]buffer.Edit, len(targets))
		for i, m := range targets {
			edits[i] = buffer.NewEdit(m.ByteRange(), m.Replacement(repl, c.toggles.Regex))
		}
		if err := c.editor.ApplyEdits(ctx, edits); err != nil {
			c.logger.WithError(err).Warn("apply %d replacements", len(edits))
			return c.fail("Failed to replace matches", fmt.Errorf("%s: %w", op, err))
		}
		c.logger.Debug("replaced %d matches", len(edits))
	}

	c.refresh()
	c.focus()
	return nil
}

// NextMatch moves to the following match.
func (c *Controller) NextMatch(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive("find.next"); err != nil {
		return err
	}
	return c.nextOrPrev(ctx, false)
}

// PrevMatch moves to the preceding match.
func (c *Controller) PrevMatch(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive("find.prev"); err != nil {
		return err
	}
	return c.nextOrPrev(ctx, true)
}

// nextOrPrev first falls back to the previous session if the active one was
// started and never used; otherwise it advances the tracker.
func (c *Controller) nextOrPrev(ctx context.Context, prev bool) error {
	if c.cache.DropTransient() {
		c.nav.Clear()
		c.refresh()
		c.focus()
		return nil
	}
	if prev {
		c.tracker.Advance(tracker.Backward)
	} else {
		c.tracker.Advance(tracker.Forward)
	}
	c.focus()
	return nil
}

// End finishes the session, selecting the current match. Calling End while
// inactive does nothing.
func (c *Controller) End(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		c.end(ctx, "")
	}
	return nil
}

// Cancel finishes the session at the user's request. The effect on the
// editor and history is the same as End.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		c.end(ctx, "cancelled")
	}
	return nil
}

func (c *Controller) end(ctx context.Context, reason string) {
	if m, ok := c.tracker.Current(); ok && c.editor != nil {
		c.editor.SetSelection(m.Range)
	}

	ended := c.cache.Active()
	c.active = false
	c.cache.Finish()
	c.replaceMode = false
	c.reverse = false
	c.nav.Clear()
	c.tracker.Reset(buffer.Point{})

	if c.editor != nil {
		c.editor.SetHighlights(HighlightAll, nil)
		c.editor.SetHighlights(HighlightCurrent, nil)
	}
	c.ui.ShowOverlay(nil)

	log := c.logger.WithField("history", c.cache.Len())
	if ended != nil {
		log = log.WithField("session", ended.ID)
	}
	if reason != "" {
		log = log.WithField("reason", reason)
	}
	log.Debug("find ended")
}

// refresh recomputes matches for the active session over a fresh snapshot.
func (c *Controller) refresh() {
	sess := c.cache.Active()
	if sess == nil || c.editor == nil {
		return
	}
	c.text = c.editor.Text()
	c.idx = index.Build(c.text)

	params := match.Params{
		Query:           sess.FindText,
		CaseInsensitive: !c.toggles.CaseSensitive,
		Regex:           c.toggles.Regex,
		WholeWord:       c.toggles.WholeWord,
	}
	err := c.tracker.Refresh(c.engine, c.text, params, c.reverse)

	if c.logger.Enabled(logging.LevelDebug) {
		idx, ok := c.tracker.Index()
		log := c.logger.WithFields(map[string]any{
			"session": sess.ID,
			"matches": len(c.tracker.Matches()),
			"flags":   c.toggles.Codes(),
		})
		if ok {
			log = log.WithField("index", idx)
		}
		if err != nil {
			log = log.WithError(err)
		}
		log.Debug("rematched %q", sess.FindText)
	}
}

// focus pushes the tracker state to the editor and the overlay.
func (c *Controller) focus() {
	if c.editor == nil {
		return
	}
	info := c.tracker.Info()

	others := make([]buffer.PointRange, 0, len(info.Matches))
	for i, m := range info.Matches {
		if info.HasIndex && i == info.Index {
			continue
		}
		others = append(others, m.Range)
	}
	c.editor.SetHighlights(HighlightAll, others)

	if info.HasIndex {
		cur := info.Current
		c.editor.SetHighlights(HighlightCurrent, []buffer.PointRange{cur.Range})

		end := c.idx.LineEndPosition(cur.Range.End.Line)
		c.editor.SetSelection(buffer.NewPointRange(end, end))
		if r, ok := c.editor.(Revealer); ok {
			r.Reveal(cur.Range)
		}
	} else {
		c.editor.SetHighlights(HighlightCurrent, nil)
	}

	c.ui.ShowOverlay(c.overlay(info))
}

func (c *Controller) requireActive(op string) error {
	if c.active {
		return nil
	}
	return c.fail(op+" can only be executed in find mode", fmt.Errorf("%s: %w", op, ErrNotActive))
}

func (c *Controller) fail(msg string, err error) error {
	c.message(MessageError, msg)
	if !errors.Is(err, ErrNotActive) {
		c.logger.WithError(err).Warn(msg)
	}
	return err
}

// Notify shows a transient message through the UI.
func (c *Controller) Notify(level MessageLevel, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message(level, text)
}

func (c *Controller) message(level MessageLevel, text string) {
	c.ui.ShowMessage(level, text)
}
