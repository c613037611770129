// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package storage

import (
	"bytes"
	"context"

	"github.com/zeebo/errs"
)

var (
	// ErrKeyNotFound used when something doesn't exist
	ErrKeyNotFound = errs.Class("key not found")

	// ErrEmptyKey is returned when an empty key is used in Put
	ErrEmptyKey = errs.Class("empty key")

	// ErrLimitExceeded is returned when request limit is exceeded
	ErrLimitExceeded = errs.Class("limit exceeded")
)

// LookupLimit is the maximum number of keys a single List returns.
const LookupLimit = 1000

// Key is the type for the keys in a `KeyValueStore`
type Key []byte

// Value is the type for the values in a `KeyValueStore`
type Value []byte

// Keys is the type for a slice of keys in a `KeyValueStore`
type Keys []Key

// KeyValueStore describes key/value stores like redis and boltdb
type KeyValueStore interface {
	// Put adds a value to the provided key, replacing any previous value.
	Put(ctx context.Context, key Key, value Value) error
	// Get gets the value of key, ErrKeyNotFound when missing.
	Get(ctx context.Context, key Key) (Value, error)
	// Delete deletes key and the value.
	Delete(ctx context.Context, key Key) error
	// List lists keys in ascending order starting at first, at most limit
	// keys. A zero limit means LookupLimit.
	List(ctx context.Context, first Key, limit int) (Keys, error)
	// Close closes the store.
	Close() error
}

// IsZero returns true if the value struct is it's zero value
func (value Value) IsZero() bool { return len(value) == 0 }

// IsZero returns true if the key struct is it's zero value
func (key Key) IsZero() bool { return len(key) == 0 }

// Equal returns whether key and other are equal
func (key Key) Equal(other Key) bool { return bytes.Equal(key, other) }

// Less returns whether key should be sorted before other
func (key Key) Less(other Key) bool { return bytes.Compare(key, other) < 0 }

// String implements the Stringer interface
func (key Key) String() string { return string(key) }

// Strings returns everything as strings
func (keys Keys) Strings() []string {
	strs := make([]string, 0, len(keys))
	for _, key := range keys {
		strs = append(strs, string(key))
	}
	return strs
}
