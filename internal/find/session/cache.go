package session

// Cache is a bounded history of sessions with a cursor on the active one.
// Pushing beyond capacity evicts the oldest session. Cache is not safe for
// concurrent use.
type Cache struct {
	sessions []*Session
	active   int
	max      int
}

// NewCache creates a Cache holding at most max sessions.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Cache{max: max, active: -1}
}

// Len returns the number of sessions in the history.
func (c *Cache) Len() int {
	return len(c.sessions)
}

// Cap returns the history capacity.
func (c *Cache) Cap() int {
	return c.max
}

// At returns the session at index i, or nil when out of range.
func (c *Cache) At(i int) *Session {
	if i < 0 || i >= len(c.sessions) {
		return nil
	}
	return c.sessions[i]
}

// Active returns the session under the cursor, or nil when the history is
// empty.
func (c *Cache) Active() *Session {
	return c.At(c.active)
}

// ActiveIndex returns the cursor position, or -1 when the history is empty.
func (c *Cache) ActiveIndex() int {
	return c.active
}

// Push appends a new session and makes it active. The session counts as
// modified when initial is non-empty.
func (c *Cache) Push(initial string) *Session {
	s := newSession(initial)
	c.sessions = append(c.sessions, s)
	if excess := len(c.sessions) - c.max; excess > 0 {
		n := copy(c.sessions, c.sessions[excess:])
		clear(c.sessions[n:])
		c.sessions = c.sessions[:n]
	}
	c.active = len(c.sessions) - 1
	return s
}

// Next moves the cursor to the following session.
func (c *Cache) Next() error {
	if c.active >= len(c.sessions)-1 {
		return ErrHistoryEnd
	}
	c.active++
	return nil
}

// Prev moves the cursor to the preceding session.
func (c *Cache) Prev() error {
	if c.active <= 0 {
		return ErrHistoryStart
	}
	c.active--
	return nil
}

// DropTransient discards the newest session when it is active, unmodified
// and has a predecessor, making the predecessor active. It reports whether a
// session was dropped.
func (c *Cache) DropTransient() bool {
	last := len(c.sessions) - 1
	if last < 1 || c.active != last || c.sessions[last].Modified {
		return false
	}
	c.pop()
	return true
}

// Finish tidies the history at the end of a search. The newest session is
// discarded if it is empty and unmodified, then any run of identical
// sessions at the end of the history is collapsed into one. The cursor is
// left on the newest remaining session.
func (c *Cache) Finish() {
	if last := len(c.sessions) - 1; last >= 0 {
		if s := c.sessions[last]; s.IsEmpty() && !s.Modified {
			c.pop()
		}
	}
	for n := len(c.sessions); n >= 2 && c.sessions[n-1].sameQuery(c.sessions[n-2]); n = len(c.sessions) {
		c.pop()
	}
	c.active = len(c.sessions) - 1
}

func (c *Cache) pop() {
	last := len(c.sessions) - 1
	c.sessions[last] = nil
	c.sessions = c.sessions[:last]
	if c.active > last-1 {
		c.active = last - 1
	}
}
