// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package identity manages the key pairs behind node and client identities.
//
// A FullID holds a signing key pair and an encryption key pair. Its Name is
// the hash of the public signing key, so an identity can never claim an
// arbitrary location in the XOR space. Only this package touches private
// key material; everything else works with PublicID.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"io"

	"github.com/zeebo/errs"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"storj.io/routing/pkg/xorname"
)

// ErrIdentity is returned when an identity does not match its keys.
var ErrIdentity = errs.Class("identity error")

// SignKeySize is the size of a public signing key.
const SignKeySize = ed25519.PublicKeySize

// SignKey is a public signing key.
type SignKey [SignKeySize]byte

// EncryptKey is a public encryption key.
type EncryptKey [32]byte

// SignKeyFromBytes converts b into a SignKey.
func SignKeyFromBytes(b []byte) (SignKey, error) {
	var key SignKey
	if len(b) != SignKeySize {
		return key, ErrIdentity.New("invalid signing key length %d", len(b))
	}
	copy(key[:], b)
	return key, nil
}

// EncryptKeyFromBytes converts b into an EncryptKey.
func EncryptKeyFromBytes(b []byte) (EncryptKey, error) {
	var key EncryptKey
	if len(b) != len(key) {
		return key, ErrIdentity.New("invalid encryption key length %d", len(b))
	}
	copy(key[:], b)
	return key, nil
}

// Less orders keys lexicographically.
func (key SignKey) Less(other SignKey) bool {
	for i := range key {
		if key[i] != other[i] {
			return key[i] < other[i]
		}
	}
	return false
}

// Name returns the XOR name bound to the signing key.
func (key SignKey) Name() xorname.Name { return xorname.Hash(key[:]) }

// String returns the base58 form of the key.
func (key SignKey) String() string { return xorname.Name(key).String() }

// PublicID is the shareable part of an identity.
type PublicID struct {
	Name       xorname.Name
	SignKey    SignKey
	EncryptKey EncryptKey
}

// Validate checks that the name is derived from the signing key.
func (id PublicID) Validate() error {
	if id.SignKey.Name() != id.Name {
		return ErrIdentity.New("name %s does not match signing key", id.Name.Short())
	}
	return nil
}

// String implements fmt.Stringer.
func (id PublicID) String() string { return id.Name.Short() }

// FullID is an identity including its private keys.
type FullID struct {
	public        PublicID
	signSecret    ed25519.PrivateKey
	encryptSecret [32]byte
}

// Generate creates a fresh identity from crypto/rand.
func Generate() (*FullID, error) { return GenerateFrom(rand.Reader) }

// GenerateFrom creates an identity from the given entropy source.
func GenerateFrom(r io.Reader) (*FullID, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, ErrIdentity.Wrap(err)
	}
	encPublic, encSecret, err := box.GenerateKey(r)
	if err != nil {
		return nil, ErrIdentity.Wrap(err)
	}
	return fromKeys(seed, *encPublic, *encSecret)
}

// FromSeeds reconstructs an identity from its signing seed and encryption
// secret key.
func FromSeeds(signSeed []byte, encryptSecret [32]byte) (*FullID, error) {
	pub, err := curve25519.X25519(encryptSecret[:], curve25519.Basepoint)
	if err != nil {
		return nil, ErrIdentity.Wrap(err)
	}
	var encPublic [32]byte
	copy(encPublic[:], pub)
	return fromKeys(signSeed, encPublic, encryptSecret)
}

func fromKeys(signSeed []byte, encPublic, encSecret [32]byte) (*FullID, error) {
	if len(signSeed) != ed25519.SeedSize {
		return nil, ErrIdentity.New("invalid seed length %d", len(signSeed))
	}
	secret := ed25519.NewKeyFromSeed(signSeed)
	signKey, err := SignKeyFromBytes(secret.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	return &FullID{
		public: PublicID{
			Name:       signKey.Name(),
			SignKey:    signKey,
			EncryptKey: EncryptKey(encPublic),
		},
		signSecret:    secret,
		encryptSecret: encSecret,
	}, nil
}

// Public returns the shareable projection of the identity.
func (id *FullID) Public() PublicID { return id.public }

// Name returns the name of the identity.
func (id *FullID) Name() xorname.Name { return id.public.Name }

// Sign signs msg with the private signing key.
func (id *FullID) Sign(msg []byte) []byte { return ed25519.Sign(id.signSecret, msg) }

// Verify checks that sig is a valid signature of msg by id.
func Verify(id PublicID, msg, sig []byte) bool { return VerifyKey(id.SignKey, msg, sig) }

// VerifyKey checks that sig is a valid signature of msg by key.
func VerifyKey(key SignKey, msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(key[:]), msg, sig)
}
