package buffer

import (
	"fmt"

	"github.com/dshills/findstorm/internal/engine/index"
)

// Point is a 0-based line and byte column.
type Point = index.Position

// Revision numbers the states of one buffer. It increases by one with each
// successful change.
type Revision uint64

// Range is the half-open byte interval [Start, End).
type Range struct {
	Start, End int
}

func NewRange(start, end int) Range { return Range{Start: start, End: end} }

func (r Range) Len() int { return r.End - r.Start }

func (r Range) String() string { return fmt.Sprintf("[%d:%d)", r.Start, r.End) }

// within reports whether r is ordered and lies inside [0, n].
func (r Range) within(n int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= n
}

// PointRange is the half-open interval [Start, End) in line and column
// terms.
type PointRange struct {
	Start, End Point
}

func NewPointRange(start, end Point) PointRange { return PointRange{Start: start, End: end} }

func (r PointRange) IsEmpty() bool { return r.Start == r.End }

// Contains reports whether p lies in r. An empty range contains nothing.
func (r PointRange) Contains(p Point) bool {
	return !p.Before(r.Start) && p.Before(r.End)
}

func (r PointRange) String() string { return fmt.Sprintf("[%s-%s)", r.Start, r.End) }

// Edit replaces the bytes of Range with NewText.
type Edit struct {
	Range   Range
	NewText string
}

func NewEdit(r Range, text string) Edit { return Edit{Range: r, NewText: text} }

func (e Edit) String() string {
	switch {
	case e.Range.Len() == 0:
		return fmt.Sprintf("insert %q at %d", e.NewText, e.Range.Start)
	case e.NewText == "":
		return "delete " + e.Range.String()
	default:
		return fmt.Sprintf("replace %s with %q", e.Range, e.NewText)
	}
}
