package buffer

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 1, b.LineCount())
	assert.Equal(t, Revision(1), b.Revision())
}

func TestLines(t *testing.T) {
	b := NewBufferFromString("line1\nline2\n\nline4")
	require.Equal(t, 4, b.LineCount())
	for i, want := range []string{"line1", "line2", "", "line4"} {
		assert.Equal(t, want, b.LineText(i), "line %d", i)
	}
}

func TestLineEndings(t *testing.T) {
	b := NewBufferFromString("a\r\nb\rc")
	assert.Equal(t, "a\nb\nc", b.Text())
	assert.Equal(t, "a\nb\nc", b.Encoded())

	crlf := NewBufferFromString("a\r\nb", WithLineEnding(LineEndingCRLF))
	assert.Equal(t, "a\r\nb", crlf.Encoded())
	assert.Equal(t, LineEndingCRLF, crlf.LineEnding())

	_, err := crlf.Insert(1, "x\r\ny")
	require.NoError(t, err)
	assert.Equal(t, "ax\ny\nb", crlf.Text())
}

func TestDetectLineEnding(t *testing.T) {
	assert.Equal(t, LineEndingCRLF, DetectLineEnding("a\r\nb\r\n"))
	assert.Equal(t, LineEndingCRLF, DetectLineEnding("a\r\nb\n"))
	assert.Equal(t, LineEndingLF, DetectLineEnding("a\nb\r\nc\n"))
	assert.Equal(t, LineEndingLF, DetectLineEnding(""))
}

func TestFromReader(t *testing.T) {
	b, err := NewBufferFromReader(strings.NewReader("x\r\ny"))
	require.NoError(t, err)
	assert.Equal(t, "x\ny", b.Text())
}

func TestInsertDeleteReplace(t *testing.T) {
	b := NewBufferFromString("Hello World")

	end, err := b.Insert(6, "Big ")
	require.NoError(t, err)
	assert.Equal(t, 10, end)
	assert.Equal(t, "Hello Big World", b.Text())

	require.NoError(t, b.Delete(0, 6))
	assert.Equal(t, "Big World", b.Text())

	end, err = b.Replace(0, 3, "Small")
	require.NoError(t, err)
	assert.Equal(t, 5, end)
	assert.Equal(t, "Small World", b.Text())
	assert.Equal(t, Revision(4), b.Revision())

	_, err = b.Insert(100, "x")
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
	assert.ErrorIs(t, b.Delete(5, 2), ErrRangeInvalid)
	assert.Equal(t, Revision(4), b.Revision())
}

func TestApplyEdits(t *testing.T) {
	b := NewBufferFromString("foo bar foo")

	rev, err := b.ApplyEdits([]Edit{
		NewEdit(NewRange(8, 11), "quux"),
		NewEdit(NewRange(0, 3), "quux"),
	})
	require.NoError(t, err)
	assert.Equal(t, "quux bar quux", b.Text())
	assert.Equal(t, b.Revision(), rev)
}

func TestApplyEditsAdjacentAndInserts(t *testing.T) {
	b := NewBufferFromString("abc")
	_, err := b.ApplyEdits([]Edit{
		NewEdit(NewRange(1, 2), "B"),
		NewEdit(NewRange(0, 1), "A"),
		NewEdit(NewRange(3, 3), "1"),
		NewEdit(NewRange(3, 3), "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ABc12", b.Text())
}

func TestApplyEditsRejected(t *testing.T) {
	b := NewBufferFromString("abcdef")
	before := b.Revision()

	_, err := b.ApplyEdits([]Edit{
		NewEdit(NewRange(0, 3), "x"),
		NewEdit(NewRange(2, 4), "y"),
	})
	assert.ErrorIs(t, err, ErrEditsOverlap)

	_, err = b.ApplyEdits([]Edit{NewEdit(NewRange(0, 1), "z"), NewEdit(NewRange(4, 10), "z")})
	assert.ErrorIs(t, err, ErrRangeInvalid)

	assert.Equal(t, "abcdef", b.Text(), "rejected batches change nothing")
	assert.Equal(t, before, b.Revision())

	rev, err := b.ApplyEdits(nil)
	require.NoError(t, err)
	assert.Equal(t, before, rev)
}

func TestPoints(t *testing.T) {
	b := NewBufferFromString("ab\ncd\nef")
	for offset, want := range map[int]Point{
		0: {Line: 0, Column: 0},
		2: {Line: 0, Column: 2},
		3: {Line: 1, Column: 0},
		7: {Line: 2, Column: 1},
	} {
		got := b.OffsetToPoint(offset)
		assert.Equal(t, want, got, "OffsetToPoint(%d)", offset)
		assert.Equal(t, offset, b.PointToOffset(got))
	}
	assert.Equal(t, "b\nc", b.TextRange(1, 4))
	assert.Empty(t, b.TextRange(4, 1))
}

func TestSnapshotIsStable(t *testing.T) {
	b := NewBufferFromString("one\ntwo")
	snap := b.Snapshot()

	_, err := b.Insert(0, "zero\n")
	require.NoError(t, err)

	assert.Equal(t, "one\ntwo", snap.Text())
	assert.Equal(t, 2, snap.LineCount())
	assert.Equal(t, "two", snap.LineText(1))
	assert.Equal(t, Point{Line: 1}, snap.OffsetToPoint(4))
	assert.Less(t, snap.Revision(), b.Revision())
}

func TestConcurrentReadWrite(t *testing.T) {
	b := NewBufferFromString(strings.Repeat("x", 100))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap := b.Snapshot()
				assert.Equal(t, snap.Len(), len(snap.Text()))
				_ = snap.OffsetToPoint(j)
			}
		}()
		go func() {
			defer wg.Done()
			for k := 0; k < 50; k++ {
				_, _ = b.Insert(0, "y")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100+8*50, b.Len())
	assert.Equal(t, Revision(1+8*50), b.Revision())
}

func TestRanges(t *testing.T) {
	r := NewPointRange(Point{Line: 1, Column: 2}, Point{Line: 1, Column: 5})
	assert.True(t, r.Contains(Point{Line: 1, Column: 2}))
	assert.False(t, r.Contains(Point{Line: 1, Column: 5}))
	assert.False(t, r.IsEmpty())
	assert.True(t, NewPointRange(r.Start, r.Start).IsEmpty())
	assert.False(t, NewPointRange(r.Start, r.Start).Contains(r.Start))
	assert.Equal(t, 3, NewRange(2, 5).Len())
}

func TestEditString(t *testing.T) {
	assert.Equal(t, `insert "x" at 2`, NewEdit(NewRange(2, 2), "x").String())
	assert.Equal(t, "delete [1:3)", NewEdit(NewRange(1, 3), "").String())
	assert.Equal(t, `replace [1:3) with "y"`, NewEdit(NewRange(1, 3), "y").String())
}
