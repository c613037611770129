// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package data

import (
	"bytes"

	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/xorname"
)

// StructuredData is versioned data owned by a set of signing keys.
type StructuredData struct {
	XorName        xorname.Name
	TypeTag        uint64
	Version        uint64
	Payload        []byte
	CurrentOwners  []identity.SignKey
	PreviousOwners []identity.SignKey
	Signatures     []OwnerSignature
}

// Name implements Data.
func (d *StructuredData) Name() xorname.Name { return d.XorName }

// Identifier implements Data.
func (d *StructuredData) Identifier() Identifier {
	return Identifier{Kind: KindStructured, Name: d.XorName, TypeTag: d.TypeTag}
}

// Size implements Data.
func (d *StructuredData) Size() int { return encodedSize(d) }

// SigningBytes is everything owners sign: all fields except signatures.
func (d *StructuredData) SigningBytes() []byte {
	m := structuredToPB(d)
	m.Signatures = nil
	return mustMarshal(m)
}

// Sign adds the signature of owner, replacing an earlier one by the same key.
func (d *StructuredData) Sign(owner *identity.FullID) {
	d.Signatures = addSignature(d.Signatures, owner, d.SigningBytes())
}

func (d *StructuredData) owned() owned {
	return owned{
		version:    d.Version,
		current:    d.CurrentOwners,
		previous:   d.PreviousOwners,
		signing:    d.SigningBytes(),
		signatures: d.Signatures,
	}
}

// Validate implements Data.
func (d *StructuredData) Validate() error {
	if err := checkSize(d, MaxStructuredDataSizeInBytes); err != nil {
		return err
	}
	return validateOwned(d.owned())
}

// ValidateSuccessor checks whether next may replace d.
func (d *StructuredData) ValidateSuccessor(next *StructuredData) (_ Outcome, err error) {
	defer mon.Task()(nil)(&err)
	if next.XorName != d.XorName || next.TypeTag != d.TypeTag {
		return Applied, ErrValidation.New("successor of %s has a different identifier", d.Identifier())
	}
	if err := checkSize(next, MaxStructuredDataSizeInBytes); err != nil {
		return Applied, err
	}
	return checkSuccessor(d.owned(), next.owned())
}

// Equal compares every field including signatures.
func (d *StructuredData) Equal(other *StructuredData) bool {
	return bytes.Equal(mustMarshal(structuredToPB(d)), mustMarshal(structuredToPB(other)))
}

// Update replaces d with next when next is a valid successor.
// On error d is unchanged.
func (d *StructuredData) Update(next *StructuredData) (Outcome, error) {
	outcome, err := d.ValidateSuccessor(next)
	if err != nil || outcome == Duplicate {
		return outcome, err
	}
	*d = *next
	d.CurrentOwners = append([]identity.SignKey(nil), next.CurrentOwners...)
	d.PreviousOwners = append([]identity.SignKey(nil), next.PreviousOwners...)
	d.Signatures = append([]OwnerSignature(nil), next.Signatures...)
	return Applied, nil
}
