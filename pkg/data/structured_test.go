// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package data_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/xorname"
)

func newIdentities(t *testing.T, n int) []*identity.FullID {
	ids := make([]*identity.FullID, n)
	for i := range ids {
		id, err := identity.Generate()
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func keysOf(ids ...*identity.FullID) []identity.SignKey {
	keys := make([]identity.SignKey, len(ids))
	for i, id := range ids {
		keys[i] = id.Public().SignKey
	}
	return keys
}

func structured(name xorname.Name, version uint64, payload string, owners []identity.SignKey, signers ...*identity.FullID) *data.StructuredData {
	d := &data.StructuredData{
		XorName:       name,
		TypeTag:       100,
		Version:       version,
		Payload:       []byte(payload),
		CurrentOwners: owners,
	}
	for _, signer := range signers {
		d.Sign(signer)
	}
	return d
}

func TestStructuredVersionAndOwner(t *testing.T) {
	ids := newIdentities(t, 2)
	k1, k2 := ids[0], ids[1]
	name := xorname.Random()

	current := structured(name, 3, "v3", keysOf(k1), k1)
	require.NoError(t, current.Validate())

	forged := structured(name, 4, "v4", keysOf(k1), k2)
	_, err := current.ValidateSuccessor(forged)
	require.Error(t, err)
	assert.True(t, data.ErrValidation.Has(err))

	_, err = current.Update(forged)
	require.Error(t, err)
	assert.EqualValues(t, 3, current.Version)

	next := structured(name, 4, "v4", keysOf(k1), k1)
	outcome, err := current.Update(next)
	require.NoError(t, err)
	assert.Equal(t, data.Applied, outcome)
	assert.EqualValues(t, 4, current.Version)
	assert.Equal(t, []byte("v4"), current.Payload)

	outcome, err = current.Update(structured(name, 4, "v4", keysOf(k1), k1))
	require.NoError(t, err)
	assert.Equal(t, data.Duplicate, outcome)

	for _, version := range []uint64{4, 6, 3} {
		_, err := current.ValidateSuccessor(structured(name, version, "other", keysOf(k1), k1))
		assert.True(t, data.ErrValidation.Has(err), "version %d", version)
	}

	other := structured(xorname.Random(), 5, "v5", keysOf(k1), k1)
	_, err = current.ValidateSuccessor(other)
	assert.True(t, data.ErrValidation.Has(err))
}

func TestStructuredMajority(t *testing.T) {
	ids := newIdentities(t, 4)
	owners := keysOf(ids[0], ids[1], ids[2])
	name := xorname.Random()

	current := structured(name, 0, "start", owners, ids[0], ids[1])
	require.NoError(t, current.Validate())

	one := structured(name, 1, "next", owners, ids[0])
	_, err := current.ValidateSuccessor(one)
	assert.True(t, data.ErrValidation.Has(err), "one of three")

	twice := structured(name, 1, "next", owners, ids[0], ids[0])
	require.Len(t, twice.Signatures, 1)
	_, err = current.ValidateSuccessor(twice)
	assert.True(t, data.ErrValidation.Has(err), "same owner twice")

	outsider := structured(name, 1, "next", owners, ids[0], ids[3])
	_, err = current.ValidateSuccessor(outsider)
	assert.True(t, data.ErrValidation.Has(err), "non owner signature")

	two := structured(name, 1, "next", owners, ids[2], ids[1])
	outcome, err := current.ValidateSuccessor(two)
	require.NoError(t, err)
	assert.Equal(t, data.Applied, outcome)
}

func TestStructuredTakeOwnership(t *testing.T) {
	ids := newIdentities(t, 2)
	k1, k2 := ids[0], ids[1]
	name := xorname.Random()
	current := structured(name, 1, "mine", keysOf(k1), k1)

	changed := structured(name, 2, "yours", keysOf(k2), k1)
	_, err := current.ValidateSuccessor(changed)
	assert.True(t, data.ErrValidation.Has(err), "owner change without previous owners")

	transfer := structured(name, 2, "yours", keysOf(k2))
	transfer.PreviousOwners = keysOf(k1)
	transfer.Sign(k2)
	_, err = current.ValidateSuccessor(transfer)
	assert.True(t, data.ErrValidation.Has(err), "signed by the new owner only")

	transfer.Sign(k1)
	outcome, err := current.Update(transfer)
	require.NoError(t, err)
	assert.Equal(t, data.Applied, outcome)
	assert.Equal(t, keysOf(k2), current.CurrentOwners)

	next := structured(name, 3, "still yours", keysOf(k2), k2)
	_, err = current.Update(next)
	require.NoError(t, err)
	assert.EqualValues(t, 3, current.Version)
}

func TestStructuredNoOwner(t *testing.T) {
	ids := newIdentities(t, 1)
	k1 := ids[0]
	name := xorname.Random()
	current := structured(name, 1, "final", keysOf(k1), k1)

	terminal := structured(name, 2, "final", []identity.SignKey{data.NoOwnerPubKey})
	terminal.PreviousOwners = keysOf(k1)
	terminal.Sign(k1)
	require.NoError(t, terminal.Validate())
	_, err := current.Update(terminal)
	require.NoError(t, err)

	attempts := []*data.StructuredData{
		structured(name, 3, "changed", []identity.SignKey{data.NoOwnerPubKey}, k1),
		structured(name, 3, "changed", []identity.SignKey{data.NoOwnerPubKey}),
	}
	reclaim := structured(name, 3, "mine again", keysOf(k1), k1)
	reclaim.PreviousOwners = []identity.SignKey{data.NoOwnerPubKey}
	reclaim.Signatures = append(reclaim.Signatures, data.OwnerSignature{
		SignKey:   data.NoOwnerPubKey,
		Signature: make([]byte, 64),
	})
	attempts = append(attempts, reclaim)

	for i, attempt := range attempts {
		_, err := current.ValidateSuccessor(attempt)
		require.Error(t, err, i)
		assert.True(t, data.ErrValidation.Has(err), i)
	}
	assert.EqualValues(t, 2, current.Version)
}

func TestStructuredSizeLimit(t *testing.T) {
	ids := newIdentities(t, 1)
	name := xorname.Random()
	big := structured(name, 0, string(make([]byte, data.MaxStructuredDataSizeInBytes)), keysOf(ids[0]), ids[0])

	err := big.Validate()
	require.Error(t, err)
	assert.True(t, data.ErrValidation.Has(err))

	current := structured(name, 0, "small", keysOf(ids[0]), ids[0])
	big.Version = 1
	big.Sign(ids[0])
	_, err = current.ValidateSuccessor(big)
	assert.True(t, data.ErrValidation.Has(err))
}
