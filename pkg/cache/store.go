// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storj.io/routing/pkg/message"
	"storj.io/routing/storage"
)

// DefaultStoreTimeout bounds a single lookup in a Store.
const DefaultStoreTimeout = 5 * time.Second

// Store is a cache persisted in a key/value store, so that it can outlive a
// session or be shared between processes.
type Store struct {
	log     *zap.Logger
	db      storage.KeyValueStore
	timeout time.Duration
}

// NewStore returns a cache backed by db.
func NewStore(log *zap.Logger, db storage.KeyValueStore) *Store {
	return &Store{log: log, db: db, timeout: DefaultStoreTimeout}
}

// Get implements Cache.
func (cache *Store) Get(req message.Request) (message.Response, bool) {
	if !message.Cacheable(req) {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), cache.timeout)
	defer cancel()

	key := message.RequestKey(req)
	value, err := cache.db.Get(ctx, key.Bytes())
	if err != nil {
		if !storage.ErrKeyNotFound.Has(err) {
			cache.log.Warn("cache lookup failed", zap.Stringer("Key", key), zap.Error(err))
		}
		mon.Counter("cache_misses").Inc(1)
		return nil, false
	}

	resp, err := message.DecodeResponse(value)
	if err != nil {
		cache.log.Warn("dropping undecodable cache entry", zap.Stringer("Key", key), zap.Error(err))
		_ = cache.db.Delete(ctx, key.Bytes())
		return nil, false
	}
	mon.Counter("cache_hits").Inc(1)
	return resp, true
}

// Put implements Cache.
func (cache *Store) Put(req message.Request, resp message.Response) {
	if !message.Cacheable(req) || !resp.Success() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cache.timeout)
	defer cancel()

	key := message.RequestKey(req)
	value, err := message.EncodeResponse(resp)
	if err != nil {
		cache.log.Warn("unable to encode response", zap.Stringer("Key", key), zap.Error(err))
		return
	}
	if err := cache.db.Put(ctx, key.Bytes(), value); err != nil {
		cache.log.Warn("unable to cache response", zap.Stringer("Key", key), zap.Error(err))
	}
}
