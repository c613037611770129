// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package redis

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/routing/storage"
)

var (
	// Error is a redis error
	Error = errs.Class("redis error")

	mon = monkit.Package()
)

// Client is the entrypoint into Redis
type Client struct {
	db *redis.Client
	// Namespace is prepended to every key.
	Namespace string
	// TTL is applied to every Put when greater than zero.
	TTL time.Duration
}

// NewClient returns a configured Client instance, verifying a successful connection to redis
func NewClient(address, password string, db int) (*Client, error) {
	client := &Client{
		db: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
	}

	// ping here to verify we are able to connect to redis with the initialized client.
	if err := client.db.Ping().Err(); err != nil {
		return nil, Error.New("ping failed: %v", errs.Combine(err, client.db.Close()))
	}

	return client, nil
}

// NewClientFrom returns a configured Client instance from a redis address, verifying a successful connection to redis
//
// The address has the form redis://host:port?db=0&password=secret&namespace=cache&ttl=1h.
func NewClientFrom(address string) (*Client, error) {
	redisurl, err := url.Parse(address)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if redisurl.Scheme != "redis" {
		return nil, Error.New("not a redis:// formatted address")
	}

	q := redisurl.Query()

	db := 0
	if q.Get("db") != "" {
		db, err = strconv.Atoi(q.Get("db"))
		if err != nil {
			return nil, Error.Wrap(err)
		}
	}

	client, err := NewClient(redisurl.Host, q.Get("password"), db)
	if err != nil {
		return nil, err
	}
	client.Namespace = q.Get("namespace")
	if q.Get("ttl") != "" {
		client.TTL, err = time.ParseDuration(q.Get("ttl"))
		if err != nil {
			return nil, Error.Wrap(errs.Combine(err, client.Close()))
		}
	}
	return client, nil
}

func (client *Client) key(key storage.Key) string { return client.Namespace + string(key) }

// Get looks up the provided key from redis returning either an error or the result.
func (client *Client) Get(ctx context.Context, key storage.Key) (_ storage.Value, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return nil, storage.ErrEmptyKey.New("")
	}

	value, err := client.db.Get(client.key(key)).Bytes()
	if err == redis.Nil {
		return nil, storage.ErrKeyNotFound.New("%q", key)
	}
	if err != nil {
		return nil, Error.New("get error: %v", err)
	}
	return value, nil
}

// Put adds a value to the provided key in redis, returning an error on failure.
func (client *Client) Put(ctx context.Context, key storage.Key, value storage.Value) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}

	err = client.db.Set(client.key(key), []byte(value), client.TTL).Err()
	if err != nil {
		return Error.New("put error: %v", err)
	}
	return nil
}

// Delete deletes a key/value pair from redis, for a given the key
func (client *Client) Delete(ctx context.Context, key storage.Key) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}

	removed, err := client.db.Del(client.key(key)).Result()
	if err != nil {
		return Error.New("delete error: %v", err)
	}
	if removed == 0 {
		return storage.ErrKeyNotFound.New("%q", key)
	}
	return nil
}

// List returns keys starting from first and upto limit items.
//
// Redis has no ordered key space, so the whole namespace is scanned and sorted.
func (client *Client) List(ctx context.Context, first storage.Key, limit int) (_ storage.Keys, err error) {
	defer mon.Task()(&ctx)(&err)
	limit, err = storage.CheckLimit(limit)
	if err != nil {
		return nil, err
	}

	match := string(escapeMatch([]byte(client.Namespace))) + "*"
	it := client.db.Scan(0, match, 0).Iterator()

	seen := map[string]struct{}{}
	var keys storage.Keys
	for it.Next() {
		name := it.Val()[len(client.Namespace):]
		// redis may return duplicates
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		key := storage.Key(name)
		if key.Less(first) {
			continue
		}
		keys = append(keys, key)
	}
	if err := it.Err(); err != nil {
		return nil, Error.New("scan error: %v", err)
	}

	sort.Slice(keys, func(i, k int) bool { return keys[i].Less(keys[k]) })
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

// Close closes a redis client
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}
