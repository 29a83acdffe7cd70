package match

import (
	"container/list"
	"regexp"
)

// CacheStats reports pattern cache usage.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	MemoHits  int64
}

type cacheEntry struct {
	key string
	re  *regexp.Regexp
}

// patternCache is an LRU of compiled patterns keyed by their source.
// It is not safe for concurrent use; Engine serializes access.
type patternCache struct {
	max     int
	entries map[string]*list.Element
	lru     *list.List
}

func newPatternCache(max int) *patternCache {
	return &patternCache{
		max:     max,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *patternCache) get(key string) (*regexp.Regexp, bool) {
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(el)
	return el.Value.(*cacheEntry).re, true
}

// put stores re and reports whether an older entry was evicted.
func (c *patternCache) put(key string, re *regexp.Regexp) bool {
	if c.max <= 0 {
		return false
	}
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).re = re
		c.lru.MoveToFront(el)
		return false
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, re: re})
	if c.lru.Len() <= c.max {
		return false
	}
	oldest := c.lru.Back()
	c.lru.Remove(oldest)
	delete(c.entries, oldest.Value.(*cacheEntry).key)
	return true
}

func (c *patternCache) len() int {
	return c.lru.Len()
}
