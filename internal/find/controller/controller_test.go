package controller

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/findstorm/internal/engine/buffer"
	"github.com/dshills/findstorm/internal/find/session"
	"github.com/dshills/findstorm/internal/state"
)

// fakeEditor is an Editor over a buffer.Buffer that records what the
// controller asked for.
type fakeEditor struct {
	buf        *buffer.Buffer
	cursor     buffer.Point
	selection  buffer.PointRange
	highlights map[HighlightKind][]buffer.PointRange
	revealed   []buffer.PointRange
	editErr    error
}

func newFakeEditor(text string) *fakeEditor {
	return &fakeEditor{
		buf:        buffer.NewBufferFromString(text),
		highlights: make(map[HighlightKind][]buffer.PointRange),
	}
}

func (e *fakeEditor) Text() string         { return e.buf.Text() }
func (e *fakeEditor) Cursor() buffer.Point { return e.cursor }

func (e *fakeEditor) ApplyEdits(_ context.Context, edits []buffer.Edit) error {
	if e.editErr != nil {
		return e.editErr
	}
	_, err := e.buf.ApplyEdits(edits)
	return err
}

func (e *fakeEditor) SetSelection(r buffer.PointRange) {
	e.selection = r
	e.cursor = r.End
}

func (e *fakeEditor) SetHighlights(kind HighlightKind, ranges []buffer.PointRange) {
	e.highlights[kind] = ranges
}

func (e *fakeEditor) Reveal(r buffer.PointRange) {
	e.revealed = append(e.revealed, r)
}

type message struct {
	level MessageLevel
	text  string
}

type fakeUI struct {
	overlay  []string
	messages []message

	answer    string
	answerOK  bool
	promptErr error
	prompts   int
}

func (u *fakeUI) ShowOverlay(lines []string) { u.overlay = lines }

func (u *fakeUI) ShowMessage(level MessageLevel, text string) {
	u.messages = append(u.messages, message{level, text})
}

func (u *fakeUI) PromptText(context.Context, string, string) (string, bool, error) {
	u.prompts++
	return u.answer, u.answerOK, u.promptErr
}

func (u *fakeUI) lastMessage() string {
	if len(u.messages) == 0 {
		return ""
	}
	return u.messages[len(u.messages)-1].text
}

func setup(t *testing.T, text string, opts ...Option) (*Controller, *fakeEditor, *fakeUI) {
	t.Helper()
	ed := newFakeEditor(text)
	ui := &fakeUI{}
	return New(ed, ui, opts...), ed, ui
}

func typeText(t *testing.T, c *Controller, s string) {
	t.Helper()
	require.NoError(t, c.InsertText(context.Background(), s))
}

func currentIndex(t *testing.T, c *Controller) int {
	t.Helper()
	st := c.Status()
	require.True(t, st.HasIndex, "expected a current match")
	return st.Index
}

func TestStartAndType(t *testing.T) {
	ctx := context.Background()
	c, ed, ui := setup(t, "foo bar\nfoo baz")

	require.NoError(t, c.Start(ctx, false))
	assert.True(t, c.Active())
	assert.Equal(t, []string{"No results", "Flags: []", "Text: "}, ui.overlay)

	typeText(t, c, "fo")
	typeText(t, c, "o")

	st := c.Status()
	assert.Equal(t, 2, st.Matches)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, "foo", st.Session.FindText)
	assert.Equal(t, []string{"1 of 2", "Flags: []", "Text: foo"}, ui.overlay)

	require.Len(t, ed.highlights[HighlightCurrent], 1)
	assert.Equal(t, buffer.Point{Line: 0, Column: 0}, ed.highlights[HighlightCurrent][0].Start)
	require.Len(t, ed.highlights[HighlightAll], 1, "all-match highlight excludes the current match")
	assert.Equal(t, buffer.Point{Line: 1, Column: 0}, ed.highlights[HighlightAll][0].Start)

	// The cursor is parked at the end of the match line.
	assert.Equal(t, buffer.Point{Line: 0, Column: 7}, ed.cursor)
	assert.NotEmpty(t, ed.revealed)
}

func TestStartAnchorsAtCursor(t *testing.T) {
	ctx := context.Background()
	c, ed, _ := setup(t, "ab ab ab")
	ed.cursor = buffer.Point{Line: 0, Column: 4}

	require.NoError(t, c.StartWith(ctx, false, "ab"))
	assert.Equal(t, 2, currentIndex(t, c))
	assert.True(t, c.Status().Session.Modified)
}

func TestReverseStartPrefersPrevious(t *testing.T) {
	ctx := context.Background()
	c, ed, _ := setup(t, "ab ab ab")
	ed.cursor = buffer.Point{Line: 0, Column: 4}

	require.NoError(t, c.Start(ctx, true))
	typeText(t, c, "ab")
	assert.Equal(t, 1, currentIndex(t, c))
	assert.True(t, c.Status().Reverse)

	require.NoError(t, c.End(ctx))
	assert.False(t, c.Status().Reverse)
}

func TestStartWithoutEditor(t *testing.T) {
	ui := &fakeUI{}
	c := New(nil, ui)
	err := c.Start(context.Background(), false)
	assert.ErrorIs(t, err, ErrNoEditor)
	assert.False(t, c.Active())
	assert.Equal(t, MessageError, ui.messages[0].level)
}

func TestCommandsRequireActiveSession(t *testing.T) {
	ctx := context.Background()
	c, _, ui := setup(t, "abc")

	for name, op := range map[string]func() error{
		"type":        func() error { return c.InsertText(ctx, "a") },
		"deleteLeft":  func() error { return c.DeleteLeft(ctx) },
		"replaceMode": func() error { return c.ToggleReplaceMode(ctx) },
		"replaceOne":  func() error { return c.Replace(ctx, false) },
		"replaceAll":  func() error { return c.Replace(ctx, true) },
		"historyNext": func() error { return c.NextContext(ctx) },
		"historyPrev": func() error { return c.PrevContext(ctx) },
		"next":        func() error { return c.NextMatch(ctx) },
		"prev":        func() error { return c.PrevMatch(ctx) },
	} {
		err := op()
		assert.ErrorIs(t, err, ErrNotActive, name)
	}
	assert.Len(t, ui.messages, 9)
	assert.Contains(t, ui.lastMessage(), "can only be executed in find mode")

	// End and cancel are harmless while inactive.
	assert.NoError(t, c.End(ctx))
	assert.NoError(t, c.Cancel(ctx))
}

func TestTogglesWhileInactiveCarryOver(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t, "Foo foo")

	require.NoError(t, c.ToggleCase(ctx))
	require.NoError(t, c.StartWith(ctx, false, "foo"))
	assert.Equal(t, 1, c.Status().Matches)
	assert.Equal(t, "Flags: [C]", strings.TrimSpace(c.Overlay()[1]))

	require.NoError(t, c.ToggleCase(ctx))
	assert.Equal(t, 2, c.Status().Matches, "toggles rematch immediately")
}

func TestFlagCodesOrder(t *testing.T) {
	assert.Equal(t, "CWR", Toggles{Regex: true, CaseSensitive: true, WholeWord: true}.Codes())
	assert.Equal(t, "WR", Toggles{Regex: true, WholeWord: true}.Codes())
	assert.Equal(t, "", Toggles{}.Codes())
}

func TestPatternErrorKeepsTyping(t *testing.T) {
	ctx := context.Background()
	c, _, ui := setup(t, "(a)")

	require.NoError(t, c.ToggleRegex(ctx))
	require.NoError(t, c.Start(ctx, false))
	typeText(t, c, "(")

	st := c.Status()
	assert.Zero(t, st.Matches)
	require.Error(t, st.Err)
	assert.Equal(t, "No results", ui.overlay[0])
	last := ui.overlay[len(ui.overlay)-1]
	assert.True(t, strings.HasPrefix(last, "Error: "), last)

	typeText(t, c, "a)")
	st = c.Status()
	assert.NoError(t, st.Err)
	assert.Equal(t, 1, st.Matches)
}

func TestNavigationStackRestoresIndex(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t, "ab ac ab ad")

	require.NoError(t, c.Start(ctx, false))
	typeText(t, c, "a")
	require.NoError(t, c.NextMatch(ctx))
	require.NoError(t, c.NextMatch(ctx))
	assert.Equal(t, 2, currentIndex(t, c))

	typeText(t, c, "d")
	assert.Equal(t, 0, currentIndex(t, c))
	assert.Equal(t, 1, c.Status().Matches)

	require.NoError(t, c.DeleteLeft(ctx))
	assert.Equal(t, "a", c.Status().Session.FindText)
	assert.Equal(t, 2, currentIndex(t, c), "deleting restores the match focused before typing")
}

func TestDeleteLeftOnEmptyQuery(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t, "abc")
	require.NoError(t, c.Start(ctx, false))
	require.NoError(t, c.DeleteLeft(ctx))
	st := c.Status()
	assert.Equal(t, "", st.Session.FindText)
	assert.False(t, st.Session.Modified)
}

func TestReplaceModeEditsReplaceText(t *testing.T) {
	ctx := context.Background()
	c, _, ui := setup(t, "bcd")

	require.NoError(t, c.StartWith(ctx, false, "b"))
	require.NoError(t, c.ToggleReplaceMode(ctx))
	assert.Equal(t, "No replace text set", ui.overlay[3])

	typeText(t, c, "xy ")
	assert.Equal(t, "Repl: xy |", ui.overlay[3])
	require.NoError(t, c.DeleteLeft(ctx))

	st := c.Status()
	assert.Equal(t, "b", st.Session.FindText)
	assert.Equal(t, "xy", st.Session.ReplaceText)
	assert.True(t, st.ReplaceMode)
}

func TestReplaceOne(t *testing.T) {
	ctx := context.Background()
	c, ed, _ := setup(t, "cat cat cat")

	require.NoError(t, c.StartWith(ctx, false, "cat"))
	require.NoError(t, c.NextMatch(ctx))
	require.NoError(t, c.ToggleReplaceMode(ctx))
	typeText(t, c, "dog")
	require.NoError(t, c.Replace(ctx, false))

	assert.Equal(t, "cat dog cat", ed.Text())
	st := c.Status()
	assert.Equal(t, 2, st.Matches)
	assert.Equal(t, 1, st.Index, "focus moves to the next remaining match")
}

func TestReplaceAllRemovesEveryMatch(t *testing.T) {
	ctx := context.Background()
	c, ed, _ := setup(t, "a1 b2 a3\na4")

	require.NoError(t, c.StartWith(ctx, false, "a"))
	require.NoError(t, c.ToggleReplaceMode(ctx))
	typeText(t, c, "z")
	require.NoError(t, c.Replace(ctx, true))

	assert.Equal(t, "z1 b2 z3\nz4", ed.Text())
	assert.Zero(t, c.Status().Matches)
}

func TestReplaceAllRegexGroups(t *testing.T) {
	ctx := context.Background()
	c, ed, _ := setup(t, "John Smith\nJane Doe")

	require.NoError(t, c.ToggleRegex(ctx))
	require.NoError(t, c.StartWith(ctx, false, `(\w+) (\w+)`))
	require.NoError(t, c.ToggleReplaceMode(ctx))
	typeText(t, c, "$2, $1")
	require.NoError(t, c.Replace(ctx, true))

	assert.Equal(t, "Smith, John\nDoe, Jane", ed.Text())
}

func TestReplaceRefreshesStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	c, ed, _ := setup(t, "xx a")

	require.NoError(t, c.StartWith(ctx, false, "a"))
	_, err := ed.buf.Insert(0, "a ")
	require.NoError(t, err)

	require.NoError(t, c.Replace(ctx, true))
	assert.Equal(t, " xx ", ed.Text())
}

func TestReplaceEditFailure(t *testing.T) {
	ctx := context.Background()
	c, ed, ui := setup(t, "abc")
	ed.editErr = errors.New("read only")

	require.NoError(t, c.StartWith(ctx, false, "b"))
	err := c.Replace(ctx, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ed.editErr)
	assert.Equal(t, "abc", ed.Text())
	assert.Equal(t, MessageError, ui.messages[len(ui.messages)-1].level)
}

func TestEndSelectsCurrentMatchAndCleansUp(t *testing.T) {
	ctx := context.Background()
	c, ed, ui := setup(t, "one two")

	require.NoError(t, c.StartWith(ctx, false, "two"))
	require.NoError(t, c.End(ctx))

	assert.False(t, c.Active())
	assert.Equal(t, buffer.NewPointRange(buffer.Point{Column: 4}, buffer.Point{Column: 7}), ed.selection)
	assert.Empty(t, ed.highlights[HighlightAll])
	assert.Empty(t, ed.highlights[HighlightCurrent])
	assert.Nil(t, ui.overlay)
	assert.Nil(t, c.Overlay())
}

func TestEndCollapsesDuplicateSessions(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t, "x")

	for i := 0; i < 2; i++ {
		require.NoError(t, c.Start(ctx, false))
		typeText(t, c, "x")
		require.NoError(t, c.End(ctx))
	}
	assert.Equal(t, 1, c.Status().HistoryLen)

	// An unused session is dropped on end.
	require.NoError(t, c.Start(ctx, false))
	require.NoError(t, c.Cancel(ctx))
	assert.Equal(t, 1, c.Status().HistoryLen)
}

func TestNextMatchFallsBackToPreviousSession(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t, "foo x foo")

	require.NoError(t, c.StartWith(ctx, false, "foo"))
	require.NoError(t, c.End(ctx))

	require.NoError(t, c.Start(ctx, false))
	require.Equal(t, 2, c.Status().HistoryLen)
	require.NoError(t, c.NextMatch(ctx))

	st := c.Status()
	assert.Equal(t, 1, st.HistoryLen)
	assert.Equal(t, "foo", st.Session.FindText)
	assert.Equal(t, 2, st.Matches)
	// End left the cursor after the first match, so the second one is
	// focused; falling back refocuses without advancing past it.
	assert.Equal(t, 1, st.Index)

	require.NoError(t, c.NextMatch(ctx))
	assert.Equal(t, 0, currentIndex(t, c))
}

func TestStartWhileActiveMovesMatches(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t, "a a a")

	require.NoError(t, c.StartWith(ctx, false, "a"))
	require.NoError(t, c.Start(ctx, false))
	assert.Equal(t, 1, currentIndex(t, c))
	require.NoError(t, c.Start(ctx, true))
	require.NoError(t, c.Start(ctx, true))
	assert.Equal(t, 2, currentIndex(t, c))
}

func TestHistoryNavigation(t *testing.T) {
	ctx := context.Background()
	c, _, ui := setup(t, "alpha beta")

	require.NoError(t, c.StartWith(ctx, false, "alpha"))
	require.NoError(t, c.End(ctx))
	require.NoError(t, c.StartWith(ctx, false, "beta"))

	err := c.NextContext(ctx)
	assert.ErrorIs(t, err, session.ErrHistoryEnd)
	assert.Equal(t, session.ErrHistoryEnd.Error(), ui.lastMessage())

	require.NoError(t, c.PrevContext(ctx))
	st := c.Status()
	assert.Equal(t, "alpha", st.Session.FindText)
	assert.Equal(t, 1, st.Matches)

	assert.ErrorIs(t, c.PrevContext(ctx), session.ErrHistoryStart)
	assert.Equal(t, 0, c.Status().HistoryIndex)
}

func TestOverlayIndentFollowsMatchColumn(t *testing.T) {
	ctx := context.Background()
	c, _, ui := setup(t, "\tx  foo\n漢字foo")

	require.NoError(t, c.StartWith(ctx, false, "foo"))
	assert.Equal(t, "\t   1 of 2", ui.overlay[0])
	assert.Equal(t, "\t   Text: foo", ui.overlay[2])

	require.NoError(t, c.NextMatch(ctx))
	assert.Equal(t, "    2 of 2", ui.overlay[0], "wide runes take two columns")
}

func TestSimpleModePromptsForQuery(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	c, _, ui := setup(t, "foo bar", WithStore(store, false), WithSimpleModeDefault(true))
	ui.answer, ui.answerOK = "bar", true

	require.NoError(t, c.Start(ctx, false))
	assert.Equal(t, 1, ui.prompts)
	st := c.Status()
	assert.True(t, st.SimpleMode)
	assert.Equal(t, "bar", st.Session.FindText)
	assert.Equal(t, 1, st.Matches)
	require.NoError(t, c.End(ctx))

	// A dismissed prompt still starts an empty session.
	ui.answerOK = false
	require.NoError(t, c.Start(ctx, false))
	assert.Equal(t, "", c.Status().Session.FindText)
	require.NoError(t, c.End(ctx))

	require.NoError(t, c.ToggleSimpleMode(ctx))
	assert.Equal(t, "Regular Find Mode activated", ui.lastMessage())
	v, ok := store.GetBool(KeySimpleMode)
	assert.True(t, ok)
	assert.False(t, v)

	require.NoError(t, c.Start(ctx, false))
	assert.Equal(t, 2, ui.prompts, "regular mode does not prompt")
}

func TestSimpleModePromptError(t *testing.T) {
	c, _, ui := setup(t, "x", WithSimpleModeDefault(true))
	ui.promptErr = context.Canceled

	err := c.Start(context.Background(), false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, c.Active())
}

func TestTogglesPersist(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	require.NoError(t, store.SetBool(KeyWholeWord, true))

	c, _, _ := setup(t, "x", WithStore(store, true))
	assert.True(t, c.Status().Toggles.WholeWord, "toggles are loaded from the store")

	require.NoError(t, c.ToggleRegex(ctx))
	v, ok := store.GetBool(KeyRegex)
	assert.True(t, ok)
	assert.True(t, v)

	// Without persistence the store is left alone.
	other := state.NewMemoryStore()
	c, _, _ = setup(t, "x", WithStore(other, false))
	require.NoError(t, c.ToggleCase(ctx))
	_, ok = other.GetBool(KeyCaseSensitive)
	assert.False(t, ok)
}

func TestSetEditorEndsSession(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t, "abc")
	require.NoError(t, c.StartWith(ctx, false, "b"))

	next := newFakeEditor("bbb")
	c.SetEditor(ctx, next)
	assert.False(t, c.Active())

	require.NoError(t, c.StartWith(ctx, false, "b"))
	assert.Equal(t, 3, c.Status().Matches)
}

func TestHistoryCapacity(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t, "x", WithMaxSessions(3))
	for _, q := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.StartWith(ctx, false, q))
		require.NoError(t, c.End(ctx))
	}
	assert.Equal(t, 3, c.Status().HistoryLen)
}
