// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package message

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/zeebo/errs"
)

// Error is the class of malformed messages.
var Error = errs.Class("message error")

// ID correlates a request with its responses.
type ID [32]byte

// ZeroID is the zero value ID.
var ZeroID ID

// NewID returns a random ID.
func NewID() ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		panic(err)
	}
	return id
}

// IDFromBytes converts b into an ID.
func IDFromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != len(id) {
		return id, Error.New("invalid message id length %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Increment returns the id following id, treating it as a big endian number.
// It derives follow up ids deterministically so every member of a group
// picks the same one.
func (id ID) Increment() ID {
	for i := len(id) - 1; i >= 0; i-- {
		id[i]++
		if id[i] != 0 {
			break
		}
	}
	return id
}

// String returns a short hex form of the id.
func (id ID) String() string { return hex.EncodeToString(id[:4]) }
