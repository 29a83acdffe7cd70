// Package buffer holds the text a find session searches and edits.
//
// A Buffer keeps its content as an immutable Snapshot: the LF-normalized
// text plus a line index. Readers take the current snapshot without
// locking; writers build the next snapshot under a mutex and publish it
// atomically, so a Snapshot never changes once obtained.
package buffer

import (
	"cmp"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/findstorm/internal/engine/index"
)

var (
	ErrOffsetOutOfRange = errors.New("buffer: offset out of range")
	ErrRangeInvalid     = errors.New("buffer: invalid range")
	ErrEditsOverlap     = errors.New("buffer: edits overlap")
)

// LineEnding is the line terminator written by Encoded.
type LineEnding uint8

const (
	LineEndingLF LineEnding = iota
	LineEndingCRLF
)

func (le LineEnding) String() string {
	if le == LineEndingCRLF {
		return "CRLF"
	}
	return "LF"
}

// DetectLineEnding picks CRLF when CRLF terminators are at least as common
// as bare LFs.
func DetectLineEnding(text string) LineEnding {
	crlf := strings.Count(text, "\r\n")
	if crlf > 0 && 2*crlf >= strings.Count(text, "\n") {
		return LineEndingCRLF
	}
	return LineEndingLF
}

// normalize converts CRLF and lone CR terminators to LF.
func normalize(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// Snapshot is one immutable state of a buffer.
type Snapshot struct {
	text string
	idx  *index.Index
	rev  Revision
}

func newSnapshot(text string, rev Revision) *Snapshot {
	return &Snapshot{text: text, idx: index.Build(text), rev: rev}
}

func (s *Snapshot) Text() string       { return s.text }
func (s *Snapshot) Len() int           { return len(s.text) }
func (s *Snapshot) Revision() Revision { return s.rev }
func (s *Snapshot) LineCount() int     { return s.idx.LineCount() }

// LineText returns line without its terminator.
func (s *Snapshot) LineText(line int) string {
	return s.text[s.idx.LineStart(line):s.idx.LineEnd(line)]
}

// TextRange returns text[start:end], or "" when the range is out of bounds.
func (s *Snapshot) TextRange(start, end int) string {
	if !NewRange(start, end).within(len(s.text)) {
		return ""
	}
	return s.text[start:end]
}

func (s *Snapshot) OffsetToPoint(offset int) Point { return s.idx.PositionOf(offset) }
func (s *Snapshot) PointToOffset(p Point) int      { return s.idx.OffsetOf(p) }

// Option configures a Buffer.
type Option func(*Buffer)

// WithLineEnding sets the terminator Encoded writes. Content is always held
// with LF.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) { b.eol = le }
}

// Buffer is a mutable document. All methods are safe for concurrent use.
type Buffer struct {
	mu  sync.Mutex // serializes writers
	cur atomic.Pointer[Snapshot]
	eol LineEnding
}

// NewBuffer returns an empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	return NewBufferFromString("", opts...)
}

// NewBufferFromString returns a buffer holding s with line endings
// normalized.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := &Buffer{}
	for _, opt := range opts {
		opt(b)
	}
	b.cur.Store(newSnapshot(normalize(s), 1))
	return b
}

// NewBufferFromReader reads r to the end into a new buffer.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...), nil
}

// Snapshot returns the current state.
func (b *Buffer) Snapshot() *Snapshot { return b.cur.Load() }

func (b *Buffer) Text() string                    { return b.Snapshot().Text() }
func (b *Buffer) Len() int                        { return b.Snapshot().Len() }
func (b *Buffer) IsEmpty() bool                   { return b.Len() == 0 }
func (b *Buffer) Revision() Revision              { return b.Snapshot().Revision() }
func (b *Buffer) LineCount() int                  { return b.Snapshot().LineCount() }
func (b *Buffer) LineText(line int) string        { return b.Snapshot().LineText(line) }
func (b *Buffer) TextRange(start, end int) string { return b.Snapshot().TextRange(start, end) }
func (b *Buffer) OffsetToPoint(offset int) Point  { return b.Snapshot().OffsetToPoint(offset) }
func (b *Buffer) PointToOffset(p Point) int       { return b.Snapshot().PointToOffset(p) }
func (b *Buffer) LineEnding() LineEnding          { return b.eol }

// Encoded returns the content with the buffer's line ending.
func (b *Buffer) Encoded() string {
	text := b.Text()
	if b.eol == LineEndingCRLF {
		return strings.ReplaceAll(text, "\n", "\r\n")
	}
	return text
}

// Insert puts text at offset and returns the offset just past it.
func (b *Buffer) Insert(offset int, text string) (int, error) {
	if offset < 0 || offset > b.Len() {
		return 0, ErrOffsetOutOfRange
	}
	return b.Replace(offset, offset, text)
}

// Delete removes [start, end).
func (b *Buffer) Delete(start, end int) error {
	_, err := b.Replace(start, end, "")
	return err
}

// Replace swaps [start, end) for text and returns the offset just past the
// new text.
func (b *Buffer) Replace(start, end int, text string) (int, error) {
	text = normalize(text)
	if _, err := b.ApplyEdits([]Edit{NewEdit(NewRange(start, end), text)}); err != nil {
		return 0, err
	}
	return start + len(text), nil
}

// ApplyEdits applies edits as one change. Their ranges refer to the text
// before any of them and may be given in any order, but must not overlap;
// two insertions at the same offset keep their given order. Nothing
// changes when any edit is rejected. An empty batch keeps the revision.
func (b *Buffer) ApplyEdits(edits []Edit) (Revision, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.cur.Load()
	if len(edits) == 0 {
		return cur.rev, nil
	}

	ordered := slices.Clone(edits)
	slices.SortStableFunc(ordered, func(x, y Edit) int {
		return cmp.Compare(x.Range.Start, y.Range.Start)
	})

	var sb strings.Builder
	sb.Grow(len(cur.text))
	at := 0
	for _, e := range ordered {
		switch {
		case !e.Range.within(len(cur.text)):
			return cur.rev, ErrRangeInvalid
		case e.Range.Start < at:
			return cur.rev, ErrEditsOverlap
		}
		sb.WriteString(cur.text[at:e.Range.Start])
		sb.WriteString(normalize(e.NewText))
		at = e.Range.End
	}
	sb.WriteString(cur.text[at:])

	next := newSnapshot(sb.String(), cur.rev+1)
	b.cur.Store(next)
	return next.rev, nil
}
