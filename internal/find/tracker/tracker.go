// Package tracker keeps track of which match in a result set is current.
//
// The current match is chosen relative to a reference position: the first
// match starting at or after the reference, wrapping to the first match in
// the document. Once a match is chosen the reference moves to its start, so
// recomputing matches after the query changes keeps the focus in the same
// neighborhood instead of jumping back to the top of the document.
package tracker

import (
	"sort"

	"github.com/dshills/findstorm/internal/engine/buffer"
	"github.com/dshills/findstorm/internal/find/match"
)

// Direction selects which way Advance moves.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// Info is a read-only view of the tracker state.
type Info struct {
	Matches []match.Match
	Current match.Match
	Index   int
	// HasIndex is false when there are no matches.
	HasIndex bool
	// Err is the pattern error from the last Refresh, if any.
	Err error
}

// Tracker holds the current match list and the index of the current match.
// If the list is empty there is no current index; otherwise the index is
// always valid. Tracker is not safe for concurrent use.
type Tracker struct {
	matches  []match.Match
	index    int
	hasIndex bool
	ref      buffer.Point
	err      error
}

// New creates a Tracker anchored at ref.
func New(ref buffer.Point) *Tracker {
	return &Tracker{ref: ref}
}

// Reset drops all matches and re-anchors the tracker at ref.
func (t *Tracker) Reset(ref buffer.Point) {
	t.matches = nil
	t.index = 0
	t.hasIndex = false
	t.ref = ref
	t.err = nil
}

// Reference returns the position used to choose the current match.
func (t *Tracker) Reference() buffer.Point {
	return t.ref
}

// SetReference moves the reference position without touching the matches.
func (t *Tracker) SetReference(p buffer.Point) {
	t.ref = p
}

// Refresh recomputes matches for p over text and re-anchors the current
// index. A pattern error leaves the tracker with no matches and is returned
// as well as recorded for Info.
func (t *Tracker) Refresh(eng *match.Engine, text string, p match.Params, preferPrevious bool) error {
	ms, err := eng.FindMatches(text, p)
	t.err = err
	t.SetMatches(ms, preferPrevious)
	return err
}

// SetMatches replaces the match list and picks the current index: the first
// match starting at or after the reference, or the first match overall when
// the reference is past the last one. When preferPrevious is set and the
// chosen match does not start exactly at the reference, the match before it
// (circularly) is chosen instead. The reference then moves to the start of
// the chosen match.
func (t *Tracker) SetMatches(ms []match.Match, preferPrevious bool) {
	t.matches = ms
	if len(ms) == 0 {
		t.index = 0
		t.hasIndex = false
		return
	}

	i := sort.Search(len(ms), func(i int) bool {
		return ms[i].Range.Start.Compare(t.ref) >= 0
	})
	if i == len(ms) {
		i = 0
	}
	if preferPrevious && ms[i].Range.Start != t.ref {
		i = (i + len(ms) - 1) % len(ms)
	}
	t.choose(i)
}

// Advance moves the current index one step in dir, wrapping at either end.
// It does nothing when there are no matches.
func (t *Tracker) Advance(dir Direction) {
	if !t.hasIndex {
		return
	}
	n := len(t.matches)
	t.choose(((t.index+int(dir))%n + n) % n)
}

// SetIndex makes i the current index. Out of range values are ignored and
// reported as false.
func (t *Tracker) SetIndex(i int) bool {
	if i < 0 || i >= len(t.matches) {
		return false
	}
	t.choose(i)
	return true
}

func (t *Tracker) choose(i int) {
	t.index = i
	t.hasIndex = true
	t.ref = t.matches[i].Range.Start
}

// Index returns the current index, if any.
func (t *Tracker) Index() (int, bool) {
	return t.index, t.hasIndex
}

// Current returns the current match, if any.
func (t *Tracker) Current() (match.Match, bool) {
	if !t.hasIndex {
		return match.Match{}, false
	}
	return t.matches[t.index], true
}

// Matches returns the current match list.
func (t *Tracker) Matches() []match.Match {
	return t.matches
}

// Err returns the pattern error from the last Refresh.
func (t *Tracker) Err() error {
	return t.err
}

// Info returns a snapshot of the tracker state.
func (t *Tracker) Info() Info {
	info := Info{
		Matches:  t.matches,
		Index:    t.index,
		HasIndex: t.hasIndex,
		Err:      t.err,
	}
	if t.hasIndex {
		info.Current = t.matches[t.index]
	}
	return info
}
