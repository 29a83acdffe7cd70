// Package navstack records which match was current before each keystroke of
// a find session, so deleting a character can restore the earlier focus.
package navstack

// DefaultDepth bounds the number of entries kept.
const DefaultDepth = 1000

type entry struct {
	index int
	ok    bool
}

// Stack is a LIFO of optional match indexes. When full, the oldest entry is
// discarded. Stack is not safe for concurrent use.
type Stack struct {
	entries []entry
	depth   int
}

// New creates a Stack holding at most depth entries.
func New(depth int) *Stack {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Stack{depth: depth}
}

// Push records an index. ok is false when no match was current.
func (s *Stack) Push(index int, ok bool) {
	s.entries = append(s.entries, entry{index: index, ok: ok})
	if excess := len(s.entries) - s.depth; excess > 0 {
		n := copy(s.entries, s.entries[excess:])
		s.entries = s.entries[:n]
	}
}

// Pop removes the newest entry. The first result is the recorded index and
// the second is true only if an entry existed and it held an index.
func (s *Stack) Pop() (int, bool) {
	if len(s.entries) == 0 {
		return 0, false
	}
	e := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return e.index, e.ok
}

// Clear drops every entry.
func (s *Stack) Clear() {
	s.entries = s.entries[:0]
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}
