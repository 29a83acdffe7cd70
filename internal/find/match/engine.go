package match

import (
	"regexp"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/findstorm/internal/engine/buffer"
	"github.com/dshills/findstorm/internal/engine/index"
)

// DefaultCacheSize is the number of compiled patterns kept by an Engine.
const DefaultCacheSize = 64

// Option configures an Engine.
type Option func(*Engine)

// WithCacheSize sets the compiled pattern cache size. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.cache = newPatternCache(n)
		}
	}
}

// Engine computes matches. It caches compiled patterns and remembers the
// result of the last call, so repeating a query over unchanged text is free.
// Engine is safe for concurrent use.
type Engine struct {
	mu    sync.Mutex
	cache *patternCache
	stats CacheStats

	memoKey  uint64
	memoLen  int
	memoArgs Params
	memo     []Match
	memoErr  error
	memoOK   bool
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{cache: newPatternCache(DefaultCacheSize)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats returns a copy of the engine's cache counters.
func (e *Engine) Stats() CacheStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// FindMatches returns every match of p in text in ascending order of Start.
// An empty query yields no matches and no error. A query that fails to
// compile yields no matches and a *PatternError.
func (e *Engine) FindMatches(text string, p Params) ([]Match, error) {
	if p.Query == "" {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	key := fingerprint(text, p)
	if e.memoOK && e.memoKey == key && e.memoLen == len(text) && e.memoArgs == p {
		e.stats.MemoHits++
		return slices.Clone(e.memo), e.memoErr
	}

	matches, err := e.find(text, p)
	e.memoKey, e.memoLen, e.memoArgs = key, len(text), p
	e.memo, e.memoErr, e.memoOK = matches, err, true
	return slices.Clone(matches), err
}

// Find is a convenience wrapper that runs p against text with a fresh Engine.
func Find(text string, p Params) ([]Match, error) {
	return NewEngine(WithCacheSize(0)).FindMatches(text, p)
}

func fingerprint(text string, p Params) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(text)
	_, _ = d.WriteString(p.key())
	return d.Sum64()
}

func (e *Engine) find(text string, p Params) ([]Match, error) {
	haystack := text
	source := p.Query
	switch {
	case p.Regex && p.CaseInsensitive:
		// Folding a regexp source would change escapes like \W, so the
		// regexp engine folds instead.
		source = "(?i)" + source
	case p.CaseInsensitive:
		haystack = foldCase(text)
		source = Escape(foldCase(source))
	case !p.Regex:
		source = Escape(source)
	}

	re, err := e.compile("(?m)" + source)
	if err != nil {
		return nil, &PatternError{Query: p.Query, Err: err}
	}

	locs := re.FindAllStringSubmatchIndex(haystack, -1)
	if len(locs) == 0 {
		return nil, nil
	}

	idx := index.Build(text)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if start >= end {
			continue
		}
		if p.WholeWord && !onWordBoundary(text, start, end) {
			continue
		}
		matches = append(matches, Match{
			Start:   start,
			End:     end,
			Range:   buffer.NewPointRange(idx.PositionOf(start), idx.PositionOf(end)),
			Text:    text[start:end],
			Pattern: re,
			groups:  rebase(loc, start),
		})
	}
	return matches, nil
}

func (e *Engine) compile(source string) (*regexp.Regexp, error) {
	if re, ok := e.cache.get(source); ok {
		e.stats.Hits++
		return re, nil
	}
	e.stats.Misses++
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	if e.cache.put(source, re) {
		e.stats.Evictions++
	}
	return re, nil
}

func rebase(loc []int, start int) []int {
	out := make([]int, len(loc))
	for i, v := range loc {
		if v < 0 {
			out[i] = -1
			continue
		}
		out[i] = v - start
	}
	return out
}
