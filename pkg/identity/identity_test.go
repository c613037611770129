// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/routing/internal/testcontext"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/xorname"
)

func TestGenerate(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)

	public := id.Public()
	require.NoError(t, public.Validate())
	assert.Equal(t, xorname.Hash(public.SignKey[:]), public.Name)
	assert.Equal(t, public.Name, id.Name())

	other, err := identity.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, public.Name, other.Name())
}

func TestSpoofedName(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)

	spoofed := id.Public()
	spoofed.Name = xorname.Random()
	err = spoofed.Validate()
	require.Error(t, err)
	assert.True(t, identity.ErrIdentity.Has(err))
}

func TestSignVerify(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)
	other, err := identity.Generate()
	require.NoError(t, err)

	msg := []byte("hello")
	sig := id.Sign(msg)

	assert.True(t, identity.Verify(id.Public(), msg, sig))
	assert.False(t, identity.Verify(other.Public(), msg, sig))
	assert.False(t, identity.Verify(id.Public(), []byte("tampered"), sig))
	assert.False(t, identity.Verify(id.Public(), msg, sig[:10]))
}

func TestSeal(t *testing.T) {
	alice, err := identity.Generate()
	require.NoError(t, err)
	bob, err := identity.Generate()
	require.NoError(t, err)

	sealed, err := alice.Seal(bob.Public().EncryptKey, []byte("secret"))
	require.NoError(t, err)

	plain, err := bob.Open(alice.Public().EncryptKey, sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), plain)

	_, err = alice.Open(alice.Public().EncryptKey, sealed)
	assert.True(t, identity.ErrSeal.Has(err))

	anon, err := identity.SealAnonymous(bob.Public().EncryptKey, []byte("anon"))
	require.NoError(t, err)
	plain, err = bob.OpenAnonymous(anon)
	require.NoError(t, err)
	assert.Equal(t, []byte("anon"), plain)
}

func TestLoadOrCreate(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	log := zaptest.NewLogger(t)
	config := identity.Config{KeyPath: ctx.File("identity", "node.key")}

	created, err := config.LoadOrCreate(log)
	require.NoError(t, err)

	loaded, err := config.LoadOrCreate(log)
	require.NoError(t, err)
	assert.Equal(t, created.Public(), loaded.Public())

	msg := []byte("persisted")
	assert.True(t, identity.Verify(created.Public(), msg, loaded.Sign(msg)))
}

func TestPublicIDFromPB(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)

	decoded, err := identity.PublicIDFromPB(id.Public().ToPB())
	require.NoError(t, err)
	assert.Equal(t, id.Public(), decoded)

	spoofed := id.Public().ToPB()
	spoofed.Name = xorname.Random().Bytes()
	_, err = identity.PublicIDFromPB(spoofed)
	assert.True(t, identity.ErrIdentity.Has(err))

	_, err = identity.PublicIDFromPB(nil)
	assert.True(t, identity.ErrIdentity.Has(err))
}
