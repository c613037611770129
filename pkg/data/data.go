// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package data implements the data variants carried by routed messages and
// the rules for accepting them and their mutations.
//
// ImmutableData is content addressed. StructuredData and the appendable
// types are owned by a set of signing keys; a successor is accepted only
// when its version follows the current one and a strict majority of the
// owners signed it. PlainData is an unauthenticated name and value pair.
//
// Rejections are ErrValidation errors. Re-applying an identical mutation is
// not an error and reports Duplicate instead.
package data

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
)

var (
	mon = monkit.Package()

	// ErrValidation is returned when data or a mutation of it is invalid.
	ErrValidation = errs.Class("validation error")
)

// Maximum serialized sizes.
const (
	MaxImmutableDataSizeInBytes      = 1024*1024 + 10*1024
	MaxStructuredDataSizeInBytes     = 100 * 1024
	MaxPubAppendableDataSizeInBytes  = 100 * 1024
	MaxPrivAppendableDataSizeInBytes = 100 * 1024
	MaxPlainDataSizeInBytes          = MaxImmutableDataSizeInBytes
)

// NoOwnerPubKey is a signing key without a private key. Data owned by it
// can never be mutated again.
var NoOwnerPubKey identity.SignKey

// Kind is the variant of a Data value.
type Kind int

// Data kinds.
const (
	KindImmutable      = Kind(pb.DataKind_IMMUTABLE)
	KindStructured     = Kind(pb.DataKind_STRUCTURED)
	KindPubAppendable  = Kind(pb.DataKind_PUB_APPENDABLE)
	KindPrivAppendable = Kind(pb.DataKind_PRIV_APPENDABLE)
	KindPlain          = Kind(pb.DataKind_PLAIN)
)

func (kind Kind) String() string {
	switch kind {
	case KindImmutable:
		return "immutable"
	case KindStructured:
		return "structured"
	case KindPubAppendable:
		return "pub-appendable"
	case KindPrivAppendable:
		return "priv-appendable"
	case KindPlain:
		return "plain"
	default:
		return "unknown"
	}
}

// Outcome describes what applying a valid mutation did.
type Outcome int

const (
	// Applied means the mutation changed the data.
	Applied Outcome = iota
	// Duplicate means the mutation was already applied.
	Duplicate
)

func (outcome Outcome) String() string {
	if outcome == Duplicate {
		return "duplicate"
	}
	return "applied"
}

// Identifier names a data item.
type Identifier struct {
	Kind    Kind
	Name    xorname.Name
	TypeTag uint64
}

func (id Identifier) String() string {
	return id.Kind.String() + "/" + id.Name.Short()
}

// Data is one of *ImmutableData, *StructuredData, *PubAppendableData,
// *PrivAppendableData or *PlainData.
type Data interface {
	Name() xorname.Name
	Identifier() Identifier
	// Validate checks the data on its own: size limits, naming and owner
	// signatures.
	Validate() error
	// Size is the serialized size.
	Size() int

	data()
}

func (*ImmutableData) data()      {}
func (*StructuredData) data()     {}
func (*PubAppendableData) data()  {}
func (*PrivAppendableData) data() {}
func (*PlainData) data()          {}

func checkSize(d Data, limit int) error {
	if size := d.Size(); size > limit {
		return ErrValidation.New("%s is %d bytes, limit is %d", d.Identifier(), size, limit)
	}
	return nil
}
