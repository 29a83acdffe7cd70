package match

import (
	"fmt"
	"regexp"

	"github.com/dshills/findstorm/internal/engine/buffer"
)

// Params describes one query.
type Params struct {
	Query           string
	CaseInsensitive bool
	Regex           bool
	WholeWord       bool
}

// key returns a stable string identifying the params.
func (p Params) key() string {
	return fmt.Sprintf("%t%t%t\x00%s", p.CaseInsensitive, p.Regex, p.WholeWord, p.Query)
}

// Match is a single occurrence of a query in a snapshot.
// Start and End are byte offsets with Start < End.
type Match struct {
	Start int
	End   int
	Range buffer.PointRange
	Text  string

	// Pattern is the compiled query that produced the match.
	Pattern *regexp.Regexp

	// groups holds submatch offsets relative to Start.
	groups []int
}

// ByteRange returns the match as a buffer byte range.
func (m Match) ByteRange() buffer.Range {
	return buffer.NewRange(m.Start, m.End)
}

// String returns a human-readable representation of the match.
func (m Match) String() string {
	return fmt.Sprintf("%q%s", m.Text, m.Range.String())
}
