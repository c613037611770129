// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package testsuite contains the tests every storage.KeyValueStore must pass.
package testsuite

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/routing/storage"
)

// RunTests runs common storage.KeyValueStore tests
func RunTests(t *testing.T, store storage.KeyValueStore) {
	t.Run("CRUD", func(t *testing.T) { testCRUD(t, store) })
	t.Run("Constraints", func(t *testing.T) { testConstraints(t, store) })
	t.Run("List", func(t *testing.T) { testList(t, store) })
}

func testCRUD(t *testing.T, store storage.KeyValueStore) {
	ctx := context.Background()
	key, value := storage.Key("crud"), storage.Value("first")

	_, err := store.Get(ctx, key)
	require.True(t, storage.ErrKeyNotFound.Has(err), "missing key: %v", err)

	require.NoError(t, store.Put(ctx, key, value))
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	require.NoError(t, store.Put(ctx, key, storage.Value("second")))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, storage.Value("second"), got)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	require.True(t, storage.ErrKeyNotFound.Has(err))

	err = store.Delete(ctx, key)
	require.True(t, storage.ErrKeyNotFound.Has(err))
}

func testConstraints(t *testing.T, store storage.KeyValueStore) {
	ctx := context.Background()

	err := store.Put(ctx, nil, storage.Value("x"))
	require.True(t, storage.ErrEmptyKey.Has(err), "empty put: %v", err)

	_, err = store.Get(ctx, storage.Key{})
	require.True(t, storage.ErrEmptyKey.Has(err), "empty get: %v", err)

	_, err = store.List(ctx, nil, storage.LookupLimit+1)
	require.True(t, storage.ErrLimitExceeded.Has(err), "list limit: %v", err)
}

func testList(t *testing.T, store storage.KeyValueStore) {
	ctx := context.Background()

	var names storage.Keys
	for i := 0; i < 5; i++ {
		names = append(names, storage.Key("list-"+strconv.Itoa(i)))
	}
	// insert out of order
	for _, i := range []int{3, 0, 4, 1, 2} {
		require.NoError(t, store.Put(ctx, names[i], storage.Value(strconv.Itoa(i))))
	}
	defer func() {
		for _, key := range names {
			_ = store.Delete(ctx, key)
		}
	}()

	keys, err := store.List(ctx, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, names, keys)

	keys, err = store.List(ctx, storage.Key("list-2"), 2)
	require.NoError(t, err)
	assert.Equal(t, names[2:4], keys)

	keys, err = store.List(ctx, storage.Key("list-9"), 0)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
