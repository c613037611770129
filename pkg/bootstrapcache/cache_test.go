// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package bootstrapcache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/routing/internal/testcontext"
	"storj.io/routing/pkg/bootstrapcache"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
	"storj.io/routing/storage/boltdb"
)

func contacts(t *testing.T, n int) []identity.PublicID {
	ids := make([]identity.PublicID, n)
	for i := range ids {
		id, err := identity.Generate()
		require.NoError(t, err)
		ids[i] = id.Public()
	}
	return ids
}

func byName(ids []identity.PublicID) map[xorname.Name]identity.PublicID {
	result := make(map[xorname.Name]identity.PublicID, len(ids))
	for _, id := range ids {
		result[id.Name] = id
	}
	return result
}

func TestSaveLoad(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	db, err := boltdb.New(ctx.File("bootstrap.db"), "contacts")
	require.NoError(t, err)
	defer ctx.Check(db.Close)

	cache := bootstrapcache.New(zaptest.NewLogger(t), db)

	loaded, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	first := contacts(t, 5)
	require.NoError(t, cache.Save(ctx, first))

	loaded, err = cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, byName(first), byName(loaded))

	second := append(first[:2:2], contacts(t, 2)...)
	require.NoError(t, cache.Save(ctx, second))

	loaded, err = cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, byName(second), byName(loaded))
}

func TestLoadSkipsInvalid(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	db, err := boltdb.New(ctx.File("bootstrap.db"), "contacts")
	require.NoError(t, err)
	defer ctx.Check(db.Close)

	cache := bootstrapcache.New(zaptest.NewLogger(t), db)
	good := contacts(t, 2)
	require.NoError(t, cache.Save(ctx, good))

	spoofed := contacts(t, 1)[0].ToPB()
	spoofed.Name = xorname.Random().Bytes()
	value, err := pb.Marshal(spoofed)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, spoofed.Name, value))
	require.NoError(t, db.Put(ctx, []byte("garbage"), []byte{0xff, 0xff}))

	loaded, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, byName(good), byName(loaded))
}
