// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package data

import "storj.io/routing/pkg/xorname"

// PlainData is an unauthenticated name and value.
type PlainData struct {
	XorName xorname.Name
	Value   []byte
}

// Name implements Data.
func (d *PlainData) Name() xorname.Name { return d.XorName }

// Identifier implements Data.
func (d *PlainData) Identifier() Identifier {
	return Identifier{Kind: KindPlain, Name: d.XorName}
}

// Size implements Data.
func (d *PlainData) Size() int { return encodedSize(d) }

// Validate implements Data.
func (d *PlainData) Validate() error { return checkSize(d, MaxPlainDataSizeInBytes) }
