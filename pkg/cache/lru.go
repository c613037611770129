// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/xorname"
)

// LRU is an in-memory cache holding the most recently used responses.
type LRU struct {
	entries *lru.Cache[xorname.Name, message.Response]
}

// NewLRU returns a cache holding up to size responses.
func NewLRU(size int) (*LRU, error) {
	entries, err := lru.New[xorname.Name, message.Response](size)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &LRU{entries: entries}, nil
}

// Get implements Cache.
func (cache *LRU) Get(req message.Request) (message.Response, bool) {
	if !message.Cacheable(req) {
		return nil, false
	}
	resp, ok := cache.entries.Get(message.RequestKey(req))
	if ok {
		mon.Counter("cache_hits").Inc(1)
	} else {
		mon.Counter("cache_misses").Inc(1)
	}
	return resp, ok
}

// Put implements Cache.
func (cache *LRU) Put(req message.Request, resp message.Response) {
	if !message.Cacheable(req) || !resp.Success() {
		return
	}
	cache.entries.Add(message.RequestKey(req), resp)
}

// Len returns the number of cached responses.
func (cache *LRU) Len() int { return cache.entries.Len() }
