// Package index maps byte offsets in a text snapshot to line/column positions.
//
// An Index records the offset of every newline plus a terminal sentinel at
// len(text). Lookups use binary search over those offsets, so converting an
// offset costs O(log lines) regardless of document size.
//
//	idx := index.Build("abc\ndef\nghi")
//	idx.PositionOf(5) // (1:1)
//	idx.OffsetOf(index.Position{Line: 2, Column: 0}) // 8
package index

import (
	"fmt"
	"sort"
)

// Position is a 0-indexed line and column. Column is measured in bytes from
// the start of the line.
type Position struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero position (0:0).
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

// Index is an immutable line index over one text snapshot.
type Index struct {
	// breaks holds the offset of every '\n' followed by len(text).
	breaks []int
}

// Build scans text once and records its line breaks.
func Build(text string) *Index {
	breaks := make([]int, 0, 16)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			breaks = append(breaks, i)
		}
	}
	breaks = append(breaks, len(text))
	return &Index{breaks: breaks}
}

// Len returns the length of the indexed text in bytes.
func (idx *Index) Len() int {
	return idx.breaks[len(idx.breaks)-1]
}

// LineCount returns the number of lines. An empty text has one line.
func (idx *Index) LineCount() int {
	return len(idx.breaks)
}

// PositionOf converts a byte offset into a Position. Offsets outside
// [0, Len()] are clamped.
func (idx *Index) PositionOf(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > idx.Len() {
		offset = idx.Len()
	}

	// First break not less than offset. The sentinel guarantees a hit.
	line := sort.SearchInts(idx.breaks, offset)
	return Position{Line: line, Column: offset - idx.LineStart(line)}
}

// OffsetOf converts a Position into a byte offset. Lines past the end map to
// Len(); columns past the end of their line are clamped to the line end.
func (idx *Index) OffsetOf(p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(idx.breaks) {
		return idx.Len()
	}
	start := idx.LineStart(p.Line)
	end := idx.LineEnd(p.Line)
	col := p.Column
	if col < 0 {
		col = 0
	}
	if start+col > end {
		return end
	}
	return start + col
}

// LineStart returns the offset of the first byte of line.
func (idx *Index) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(idx.breaks) {
		return idx.Len()
	}
	return idx.breaks[line-1] + 1
}

// LineEnd returns the offset of the newline that terminates line, or Len()
// for the last line.
func (idx *Index) LineEnd(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(idx.breaks) {
		return idx.Len()
	}
	return idx.breaks[line]
}

// LineEndPosition returns the position just before the newline of line.
func (idx *Index) LineEndPosition(line int) Position {
	if line >= len(idx.breaks) {
		line = len(idx.breaks) - 1
	}
	if line < 0 {
		line = 0
	}
	return Position{Line: line, Column: idx.LineEnd(line) - idx.LineStart(line)}
}
