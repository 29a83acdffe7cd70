// Package session keeps the history of find sessions.
//
// Each session is one find/replace query pair. Sessions are kept in a
// bounded, ordered history with a cursor pointing at the active one. The
// cursor moves freely through the history; the history itself only changes
// when a session is pushed, when a transient session is dropped, and when a
// session finishes.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
)

// DefaultMaxSessions is the default history capacity.
const DefaultMaxSessions = 100

// Errors returned when navigating past either end of the history.
var (
	ErrHistoryStart = errors.New("no earlier find sessions available")
	ErrHistoryEnd   = errors.New("end of find history")
)

// Session is one find/replace query pair.
type Session struct {
	ID          string
	FindText    string
	ReplaceText string
	// Modified is set once either text has been edited or was given an
	// initial value.
	Modified bool
	Created  time.Time
}

func newSession(initial string) *Session {
	return &Session{
		ID:       uuid.New().String(),
		FindText: initial,
		Modified: initial != "",
		Created:  time.Now(),
	}
}

// IsEmpty returns true if both texts are empty.
func (s *Session) IsEmpty() bool {
	return s.FindText == "" && s.ReplaceText == ""
}

// AppendFind appends text to the find text.
func (s *Session) AppendFind(text string) {
	s.FindText += text
	s.Modified = true
}

// AppendReplace appends text to the replace text.
func (s *Session) AppendReplace(text string) {
	s.ReplaceText += text
	s.Modified = true
}

// DeleteFind removes the last grapheme cluster of the find text and reports
// whether anything was removed.
func (s *Session) DeleteFind() bool {
	var ok bool
	s.FindText, ok = trimLastGrapheme(s.FindText)
	if ok {
		s.Modified = true
	}
	return ok
}

// DeleteReplace removes the last grapheme cluster of the replace text and
// reports whether anything was removed.
func (s *Session) DeleteReplace() bool {
	var ok bool
	s.ReplaceText, ok = trimLastGrapheme(s.ReplaceText)
	if ok {
		s.Modified = true
	}
	return ok
}

func (s *Session) sameQuery(other *Session) bool {
	return s.FindText == other.FindText && s.ReplaceText == other.ReplaceText
}

func trimLastGrapheme(s string) (string, bool) {
	if s == "" {
		return s, false
	}
	last := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if len(rest) > 0 {
			last += len(cluster)
		}
	}
	return s[:last], true
}
