// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package data

import (
	"bytes"

	"storj.io/routing/pkg/xorname"
)

// ImmutableData is content addressed: its name is the hash of its value.
type ImmutableData struct {
	XorName xorname.Name
	Value   []byte
}

// NewImmutableData names value by its hash.
func NewImmutableData(value []byte) *ImmutableData {
	return &ImmutableData{
		XorName: xorname.Hash(value),
		Value:   append([]byte(nil), value...),
	}
}

// Name implements Data.
func (d *ImmutableData) Name() xorname.Name { return d.XorName }

// Identifier implements Data.
func (d *ImmutableData) Identifier() Identifier {
	return Identifier{Kind: KindImmutable, Name: d.XorName}
}

// Size implements Data.
func (d *ImmutableData) Size() int { return encodedSize(d) }

// SelfValidating reports whether the claimed name is the hash of the value.
func (d *ImmutableData) SelfValidating() bool {
	return xorname.Hash(d.Value) == d.XorName
}

// Validate implements Data.
func (d *ImmutableData) Validate() error {
	if err := checkSize(d, MaxImmutableDataSizeInBytes); err != nil {
		return err
	}
	if !d.SelfValidating() {
		return ErrValidation.New("name %s is not the hash of the value", d.XorName.Short())
	}
	return nil
}

// Equal compares two immutable data values.
func (d *ImmutableData) Equal(other *ImmutableData) bool {
	return d.XorName == other.XorName && bytes.Equal(d.Value, other.Value)
}
