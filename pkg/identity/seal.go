// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package identity

import (
	"crypto/rand"

	"github.com/zeebo/errs"
	"golang.org/x/crypto/nacl/box"
)

// ErrSeal is returned when sealing or opening a box fails.
var ErrSeal = errs.Class("seal error")

const nonceSize = 24

// SealOverhead is the number of bytes Seal adds to a plaintext.
const SealOverhead = nonceSize + box.Overhead

// Seal encrypts plaintext for the holder of to, authenticated as id.
// The random nonce is prepended to the result.
func (id *FullID) Seal(to EncryptKey, plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, ErrSeal.Wrap(err)
	}
	peer := [32]byte(to)
	return box.Seal(nonce[:], plaintext, &nonce, &peer, &id.encryptSecret), nil
}

// Open decrypts a message sealed by the holder of from for id.
func (id *FullID) Open(from EncryptKey, sealed []byte) ([]byte, error) {
	if len(sealed) < SealOverhead {
		return nil, ErrSeal.New("sealed message too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	peer := [32]byte(from)
	plaintext, ok := box.Open(nil, sealed[nonceSize:], &nonce, &peer, &id.encryptSecret)
	if !ok {
		return nil, ErrSeal.New("unable to open sealed message")
	}
	return plaintext, nil
}

// SealAnonymous encrypts plaintext for the holder of to without revealing
// the sender.
func SealAnonymous(to EncryptKey, plaintext []byte) ([]byte, error) {
	peer := [32]byte(to)
	sealed, err := box.SealAnonymous(nil, plaintext, &peer, rand.Reader)
	if err != nil {
		return nil, ErrSeal.Wrap(err)
	}
	return sealed, nil
}

// OpenAnonymous decrypts a message produced by SealAnonymous for id.
func (id *FullID) OpenAnonymous(sealed []byte) ([]byte, error) {
	public := [32]byte(id.public.EncryptKey)
	plaintext, ok := box.OpenAnonymous(nil, sealed, &public, &id.encryptSecret)
	if !ok {
		return nil, ErrSeal.New("unable to open anonymous message")
	}
	return plaintext, nil
}
