package match

import (
	"errors"
	"regexp/syntax"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/findstorm/internal/engine/buffer"
)

func spans(ms []Match) [][2]int {
	out := make([][2]int, len(ms))
	for i, m := range ms {
		out[i] = [2]int{m.Start, m.End}
	}
	return out
}

func TestFindMatchesLiteral(t *testing.T) {
	eng := NewEngine()

	ms, err := eng.FindMatches("foo.bar foo", Params{Query: "foo."})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 4}}, spans(ms))
	assert.Equal(t, "foo.", ms[0].Text)
}

func TestFindMatchesLiteralMetacharacters(t *testing.T) {
	text := `a|b \d {1} (x) [y] ^$ +*? a-z`
	for _, q := range []string{"a|b", `\d`, "{1}", "(x)", "[y]", "^$", "+*?", "a-z"} {
		ms, err := Find(text, Params{Query: q})
		require.NoError(t, err, q)
		require.Len(t, ms, 1, q)
		assert.Equal(t, q, ms[0].Text)
	}
}

func TestFindMatchesEmptyQuery(t *testing.T) {
	for _, p := range []Params{
		{},
		{Regex: true},
		{CaseInsensitive: true, WholeWord: true},
		{Regex: true, CaseInsensitive: true, WholeWord: true},
	} {
		ms, err := Find("anything at all", p)
		assert.NoError(t, err)
		assert.Empty(t, ms)
	}
}

func TestFindMatchesWholeWord(t *testing.T) {
	ms, err := Find("cat catalog", Params{Query: "cat", WholeWord: true})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 3}}, spans(ms))

	ms, err = Find("bobcat cat", Params{Query: "cat", WholeWord: true})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{7, 10}}, spans(ms))

	// Regex mode uses the same neighbor check.
	ms, err = Find("cat catalog", Params{Query: "c.t", Regex: true, WholeWord: true})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 3}}, spans(ms))

	// A match that starts with punctuation is not constrained on that side.
	ms, err = Find("x.y", Params{Query: ".y", WholeWord: true})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}}, spans(ms))
}

func TestFindMatchesWholeWordUnicode(t *testing.T) {
	ms, err := Find("éte te", Params{Query: "te", WholeWord: true})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{5, 7}}, spans(ms))
}

func TestFindMatchesCaseInsensitive(t *testing.T) {
	ms, err := Find("Foo FOO foo", Params{Query: "fOo", CaseInsensitive: true})
	require.NoError(t, err)
	assert.Len(t, ms, 3)
	assert.Equal(t, "FOO", ms[1].Text, "text is taken from the original document")

	ms, err = Find("Foo FOO foo", Params{Query: "foo"})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{8, 11}}, spans(ms))
}

func TestFindMatchesCaseInsensitiveRegexKeepsEscapes(t *testing.T) {
	ms, err := Find("A-b", Params{Query: `\W`, Regex: true, CaseInsensitive: true})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 2}}, spans(ms))
}

func TestFindMatchesCaseFoldKeepsOffsets(t *testing.T) {
	// U+0130 lowercases to a longer sequence and must be left alone.
	text := "İx ÄX"
	ms, err := Find(text, Params{Query: "äx", CaseInsensitive: true})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "ÄX", ms[0].Text)
	assert.Equal(t, text[ms[0].Start:ms[0].End], ms[0].Text)
}

func TestFindMatchesMultiline(t *testing.T) {
	ms, err := Find("one\ntwo\nthree", Params{Query: "^t", Regex: true})
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, buffer.Point{Line: 1, Column: 0}, ms[0].Range.Start)
	assert.Equal(t, buffer.Point{Line: 2, Column: 1}, ms[1].Range.End)
}

func TestFindMatchesDropsEmptyMatches(t *testing.T) {
	ms, err := Find("baaac", Params{Query: "a*", Regex: true})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 4}}, spans(ms))
}

func TestFindMatchesMalformedRegex(t *testing.T) {
	ms, err := Find("(abc)", Params{Query: "(", Regex: true})
	assert.Empty(t, ms)
	require.Error(t, err)

	var perr *PatternError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "(", perr.Query)
	assert.NotEmpty(t, perr.Error())
	assert.NotContains(t, perr.Error(), "error parsing regexp")

	var serr *syntax.Error
	assert.True(t, errors.As(err, &serr))
}

func TestFindMatchesOrderedAndDisjoint(t *testing.T) {
	ms, err := Find("aaaaaa", Params{Query: "aa"})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 2}, {2, 4}, {4, 6}}, spans(ms))
	for i := 1; i < len(ms); i++ {
		assert.LessOrEqual(t, ms[i-1].End, ms[i].Start)
	}
}

func TestEngineMemo(t *testing.T) {
	eng := NewEngine()
	p := Params{Query: "a"}

	first, err := eng.FindMatches("a a", p)
	require.NoError(t, err)
	first[0].Text = "mutated"

	second, err := eng.FindMatches("a a", p)
	require.NoError(t, err)
	assert.Equal(t, "a", second[0].Text, "memoized result must not alias caller slices")
	assert.Equal(t, int64(1), eng.Stats().MemoHits)

	_, err = eng.FindMatches("a a a", p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), eng.Stats().MemoHits)
	assert.Equal(t, int64(1), eng.Stats().Hits, "pattern reused from cache")
}

func TestEngineCacheEviction(t *testing.T) {
	eng := NewEngine(WithCacheSize(2))
	for _, q := range []string{"a", "b", "c", "a"} {
		_, err := eng.FindMatches("abc", Params{Query: q})
		require.NoError(t, err)
	}
	st := eng.Stats()
	assert.Equal(t, int64(4), st.Misses)
	assert.Equal(t, int64(2), st.Evictions)
	assert.Equal(t, 2, eng.cache.len())
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\.b\x2dc\\`, Escape(`a.b-c\`))
	assert.Equal(t, `\[\^x\]`, Escape(`[^x]`))
}

func TestReplacement(t *testing.T) {
	ms, err := Find("John Smith", Params{Query: `(\w+) (?P<last>\w+)`, Regex: true})
	require.NoError(t, err)
	require.Len(t, ms, 1)

	assert.Equal(t, "Smith, John", ms[0].Replacement("${last}, $1", true))
	assert.Equal(t, "[John Smith]", ms[0].Replacement("[$&]", true))
	assert.Equal(t, "$1", ms[0].Replacement("$1", false))
}

func TestReplacementAnchoredPattern(t *testing.T) {
	ms, err := Find("xab ab", Params{Query: `^x(a)`, Regex: true})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "<a>", ms[0].Replacement("<$1>", true))
}

func TestMatchByteRange(t *testing.T) {
	ms, err := Find("xyz", Params{Query: "y"})
	require.NoError(t, err)
	assert.Equal(t, buffer.NewRange(1, 2), ms[0].ByteRange())
	assert.Equal(t, `"y"[(0:1):(0:2))`, ms[0].String())
}
