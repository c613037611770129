// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package data_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/xorname"
)

func pubAppendable(owner *identity.FullID, filter data.Filter) *data.PubAppendableData {
	d := &data.PubAppendableData{
		XorName:       xorname.Random(),
		Version:       1,
		CurrentOwners: keysOf(owner),
		Filter:        filter,
	}
	d.Sign(owner)
	return d
}

func pointer() data.Identifier {
	return data.Identifier{Kind: data.KindImmutable, Name: xorname.Random()}
}

func TestFilter(t *testing.T) {
	ids := newIdentities(t, 2)
	listed, other := ids[0].Public().SignKey, ids[1].Public().SignKey

	white := data.Filter{Mode: data.Whitelist, Keys: []identity.SignKey{listed}}
	assert.True(t, white.Allows(listed))
	assert.False(t, white.Allows(other))

	black := data.Filter{Mode: data.Blacklist, Keys: []identity.SignKey{listed}}
	assert.False(t, black.Allows(listed))
	assert.True(t, black.Allows(other))

	assert.True(t, data.Filter{Mode: data.Blacklist}.Allows(other))
	assert.False(t, data.Filter{Mode: data.Whitelist}.Allows(other))
}

func TestPubAppendFilter(t *testing.T) {
	ids := newIdentities(t, 3)
	owner, allowed, denied := ids[0], ids[1], ids[2]

	d := pubAppendable(owner, data.Filter{Mode: data.Whitelist, Keys: keysOf(allowed)})
	require.NoError(t, d.Validate())
	before := d.Clone()

	w := data.NewPubAppendWrapper(denied, d.XorName, d.Version, data.NewAppendedData(denied, pointer()))
	_, err := d.Append(w)
	require.Error(t, err)
	assert.True(t, data.ErrValidation.Has(err))
	assert.Equal(t, before, d)

	item := data.NewAppendedData(allowed, pointer())
	w = data.NewPubAppendWrapper(allowed, d.XorName, d.Version, item)
	outcome, err := d.Append(w)
	require.NoError(t, err)
	assert.Equal(t, data.Applied, outcome)
	require.Len(t, d.Items, 1)
	assert.True(t, d.Items[0].Equal(item))

	outcome, err = d.Append(w)
	require.NoError(t, err)
	assert.Equal(t, data.Duplicate, outcome)
	assert.Len(t, d.Items, 1)

	// appends do not invalidate owner signatures
	require.NoError(t, d.Validate())

	blacklisted := pubAppendable(owner, data.Filter{Mode: data.Blacklist, Keys: keysOf(denied)})
	_, err = blacklisted.Append(data.NewPubAppendWrapper(denied, blacklisted.XorName, 1, data.NewAppendedData(denied, pointer())))
	assert.True(t, data.ErrValidation.Has(err))
	assert.Empty(t, blacklisted.Items)
	_, err = blacklisted.Append(data.NewPubAppendWrapper(allowed, blacklisted.XorName, 1, data.NewAppendedData(allowed, pointer())))
	assert.NoError(t, err)
}

func TestPubAppendRejects(t *testing.T) {
	ids := newIdentities(t, 2)
	owner, appender := ids[0], ids[1]
	d := pubAppendable(owner, data.Filter{Mode: data.Blacklist})
	item := data.NewAppendedData(appender, pointer())

	wrongVersion := data.NewPubAppendWrapper(appender, d.XorName, d.Version+1, item)
	wrongTarget := data.NewPubAppendWrapper(appender, xorname.Random(), d.Version, item)
	tampered := data.NewPubAppendWrapper(appender, d.XorName, d.Version, item)
	tampered.Pub.Pointer = pointer()
	forgedSigner := data.NewPubAppendWrapper(appender, d.XorName, d.Version, item)
	forgedSigner.SignKey = owner.Public().SignKey

	priv := data.PrivAppendedData{EncryptKey: appender.Public().EncryptKey, Sealed: make([]byte, 64)}
	wrongForm := data.NewPrivAppendWrapper(appender, d.XorName, d.Version, priv)

	for name, w := range map[string]data.AppendWrapper{
		"version":   wrongVersion,
		"target":    wrongTarget,
		"tampered":  tampered,
		"forged":    forgedSigner,
		"wrongForm": wrongForm,
	} {
		_, err := d.Append(w)
		require.Error(t, err, name)
		assert.True(t, data.ErrValidation.Has(err), name)
	}
	assert.Empty(t, d.Items)
}

func TestPubAppendSizeLimit(t *testing.T) {
	ids := newIdentities(t, 2)
	owner, appender := ids[0], ids[1]
	d := pubAppendable(owner, data.Filter{Mode: data.Blacklist})

	var appended int
	for {
		w := data.NewPubAppendWrapper(appender, d.XorName, d.Version, data.NewAppendedData(appender, pointer()))
		before := d.Clone()
		_, err := d.Append(w)
		if err != nil {
			assert.True(t, data.ErrValidation.Has(err))
			assert.Equal(t, before, d, "item set changed by a failed append")
			break
		}
		appended++
		require.Less(t, appended, data.MaxPubAppendableDataSizeInBytes, "limit never reached")
	}

	assert.Greater(t, appended, 0)
	assert.Len(t, d.Items, appended)
	assert.LessOrEqual(t, d.Size(), data.MaxPubAppendableDataSizeInBytes)
}

func TestPubAppendIsDeterministic(t *testing.T) {
	ids := newIdentities(t, 2)
	owner, appender := ids[0], ids[1]
	d := pubAppendable(owner, data.Filter{Mode: data.Blacklist})
	w := data.NewPubAppendWrapper(appender, d.XorName, d.Version, data.NewAppendedData(appender, pointer()))

	a, b := d.Clone(), d.Clone()
	_, errA := a.Append(w)
	_, errB := b.Append(w)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
	assert.Empty(t, d.Items)
}

func TestPubAppendableUpdate(t *testing.T) {
	ids := newIdentities(t, 3)
	owner, appender, other := ids[0], ids[1], ids[2]
	d := pubAppendable(owner, data.Filter{Mode: data.Blacklist})

	first := data.NewAppendedData(appender, pointer())
	second := data.NewAppendedData(appender, pointer())
	for _, item := range []data.AppendedData{first, second} {
		_, err := d.Append(data.NewPubAppendWrapper(appender, d.XorName, d.Version, item))
		require.NoError(t, err)
	}

	next := d.Clone()
	next.Version++
	next.Items = nil
	next.DeletedItems = []data.AppendedData{first}
	next.Filter = data.Filter{Mode: data.Blacklist, Keys: keysOf(other)}
	next.Signatures = nil

	_, err := d.Update(next)
	assert.True(t, data.ErrValidation.Has(err), "unsigned update")

	next.Sign(owner)
	outcome, err := d.Update(next)
	require.NoError(t, err)
	assert.Equal(t, data.Applied, outcome)
	assert.EqualValues(t, 2, d.Version)
	require.Len(t, d.Items, 1)
	assert.True(t, d.Items[0].Equal(second))

	// deleted items can not come back
	outcome, err = d.Append(data.NewPubAppendWrapper(appender, d.XorName, d.Version, first))
	require.NoError(t, err)
	assert.Equal(t, data.Duplicate, outcome)
	assert.Len(t, d.Items, 1)

	_, err = d.Append(data.NewPubAppendWrapper(other, d.XorName, d.Version, data.NewAppendedData(other, pointer())))
	assert.True(t, data.ErrValidation.Has(err), "filter was updated")
}

func TestPrivAppend(t *testing.T) {
	ids := newIdentities(t, 3)
	owner, appender, outsider := ids[0], ids[1], ids[2]

	d := &data.PrivAppendableData{
		XorName:       xorname.Random(),
		Version:       7,
		CurrentOwners: keysOf(owner),
		Filter:        data.Filter{Mode: data.Whitelist, Keys: keysOf(appender)},
		EncryptKey:    owner.Public().EncryptKey,
	}
	d.Sign(owner)
	require.NoError(t, d.Validate())

	item := data.NewAppendedData(appender, pointer())
	sealed, err := data.SealAppendedData(appender, d.EncryptKey, item)
	require.NoError(t, err)

	outcome, err := d.Append(data.NewPrivAppendWrapper(appender, d.XorName, d.Version, sealed))
	require.NoError(t, err)
	assert.Equal(t, data.Applied, outcome)
	require.Len(t, d.Items, 1)

	opened, err := data.OpenAppendedData(owner, d.Items[0])
	require.NoError(t, err)
	assert.True(t, opened.Equal(item))
	require.NoError(t, opened.Verify())

	_, err = data.OpenAppendedData(outsider, d.Items[0])
	assert.True(t, data.ErrValidation.Has(err))

	short := data.PrivAppendedData{EncryptKey: appender.Public().EncryptKey, Sealed: []byte("plain")}
	_, err = d.Append(data.NewPrivAppendWrapper(appender, d.XorName, d.Version, short))
	assert.True(t, data.ErrValidation.Has(err))

	_, err = d.Append(data.NewPrivAppendWrapper(outsider, d.XorName, d.Version, sealed))
	assert.True(t, data.ErrValidation.Has(err))
	assert.Len(t, d.Items, 1)
}

func TestRoundTrip(t *testing.T) {
	ids := newIdentities(t, 3)
	owner, appender, previous := ids[0], ids[1], ids[2]

	sd := structured(xorname.Random(), 9, "payload", keysOf(owner), owner, previous)
	sd.PreviousOwners = keysOf(previous)

	pub := pubAppendable(owner, data.Filter{Mode: data.Whitelist, Keys: keysOf(appender)})
	item := data.NewAppendedData(appender, data.Identifier{Kind: data.KindStructured, Name: sd.XorName, TypeTag: sd.TypeTag})
	_, err := pub.Append(data.NewPubAppendWrapper(appender, pub.XorName, pub.Version, item))
	require.NoError(t, err)
	pub.DeletedItems = []data.AppendedData{data.NewAppendedData(appender, pointer())}

	priv := &data.PrivAppendableData{
		XorName:       xorname.Random(),
		CurrentOwners: keysOf(owner),
		Filter:        data.Filter{Mode: data.Blacklist, Keys: keysOf(previous)},
		EncryptKey:    owner.Public().EncryptKey,
	}
	sealed, err := data.SealAppendedData(appender, priv.EncryptKey, item)
	require.NoError(t, err)
	priv.Items = []data.PrivAppendedData{sealed}
	priv.Sign(owner)

	values := []data.Data{
		data.NewImmutableData([]byte("immutable")),
		data.NewImmutableData(nil),
		sd,
		pub,
		priv,
		&data.PlainData{XorName: xorname.Random(), Value: []byte("plain")},
	}

	for _, value := range values {
		encoded, err := data.Encode(value)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), value.Size())

		decoded, err := data.Decode(encoded)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(value, decoded, cmpopts.EquateEmpty()), value.Identifier().String())
		assert.Equal(t, value.Identifier(), decoded.Identifier())
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := data.Decode([]byte{0x08, 0x02})
	require.Error(t, err)
	assert.True(t, data.ErrValidation.Has(err))

	_, err = data.Decode([]byte{0xff})
	assert.True(t, data.ErrValidation.Has(err))
}
