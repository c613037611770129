// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package bootstrapcache remembers contacts between runs so a restarted node
// has candidates to bootstrap from.
package bootstrapcache

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
	"storj.io/routing/storage"
)

var (
	// Error is the default bootstrap cache error class
	Error = errs.Class("bootstrap cache error")
	mon   = monkit.Package()
)

// Cache keeps contacts in a key/value store, keyed by name.
type Cache struct {
	log *zap.Logger
	db  storage.KeyValueStore
}

// New returns a bootstrap cache stored in db.
func New(log *zap.Logger, db storage.KeyValueStore) *Cache {
	return &Cache{log: log, db: db}
}

// Save replaces the cached contacts with contacts.
func (cache *Cache) Save(ctx context.Context, contacts []identity.PublicID) (err error) {
	defer mon.Task()(&ctx)(&err)

	keep := make(map[xorname.Name]struct{}, len(contacts))
	for _, contact := range contacts {
		value, err := pb.Marshal(contact.ToPB())
		if err != nil {
			return Error.Wrap(err)
		}
		if err := cache.db.Put(ctx, contact.Name.Bytes(), value); err != nil {
			return Error.Wrap(err)
		}
		keep[contact.Name] = struct{}{}
	}

	keys, err := cache.keys(ctx)
	if err != nil {
		return err
	}
	var group errs.Group
	for _, key := range keys {
		name, err := xorname.FromBytes(key)
		if err == nil {
			if _, ok := keep[name]; ok {
				continue
			}
		}
		group.Add(cache.db.Delete(ctx, key))
	}
	return Error.Wrap(group.Err())
}

// Load returns the cached contacts. Entries that do not decode into a valid
// identity are skipped.
func (cache *Cache) Load(ctx context.Context) (_ []identity.PublicID, err error) {
	defer mon.Task()(&ctx)(&err)

	keys, err := cache.keys(ctx)
	if err != nil {
		return nil, err
	}

	contacts := make([]identity.PublicID, 0, len(keys))
	for _, key := range keys {
		value, err := cache.db.Get(ctx, key)
		if err != nil {
			if storage.ErrKeyNotFound.Has(err) {
				continue
			}
			return nil, Error.Wrap(err)
		}

		var m pb.PublicID
		if err := pb.Unmarshal(value, &m); err != nil {
			cache.log.Warn("skipping undecodable contact", zap.Error(err))
			continue
		}
		contact, err := identity.PublicIDFromPB(&m)
		if err != nil {
			cache.log.Warn("skipping invalid contact", zap.Error(err))
			continue
		}
		if !key.Equal(contact.Name.Bytes()) {
			cache.log.Warn("skipping misfiled contact", zap.Stringer("Name", contact.Name))
			continue
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

// keys lists every key in the store, one page at a time.
func (cache *Cache) keys(ctx context.Context) (storage.Keys, error) {
	var all storage.Keys
	var first storage.Key
	for {
		keys, err := cache.db.List(ctx, first, storage.LookupLimit)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		all = append(all, keys...)
		if len(keys) < storage.LookupLimit {
			return all, nil
		}
		last := keys[len(keys)-1]
		first = append(storage.CloneKey(last), 0)
	}
}
