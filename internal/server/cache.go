package server

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// maxCachedResults bounds the number of memoized query results.
const maxCachedResults = 256

// resultCache memoizes successful query results for a fixed time.
// A zero ttl disables it.
type resultCache struct {
	lru *expirable.LRU[string, any]
}

func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		return &resultCache{}
	}
	return &resultCache{lru: expirable.NewLRU[string, any](maxCachedResults, nil, ttl)}
}

func (c *resultCache) get(key string) (any, bool) {
	if c.lru == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *resultCache) set(key string, value any) {
	if c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}
