// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package xorname implements the 256-bit identifier space and its XOR metric.
package xorname

import (
	"bytes"
	"crypto/rand"
	"math/bits"
	"sort"

	"github.com/minio/sha256-simd"
	"github.com/mr-tron/base58"
	"github.com/zeebo/errs"
)

const (
	// Length is the size of a Name in bytes.
	Length = 32
	// Bits is the size of a Name in bits and the number of routing table buckets.
	Bits = Length * 8
)

// Error is the class of name parsing errors.
var Error = errs.Class("xorname error")

// Name is an identifier in the XOR space. Nodes, clients and data share it.
type Name [Length]byte

// Zero is the zero value Name.
var Zero Name

// FromBytes converts a byte slice into a Name.
func FromBytes(b []byte) (Name, error) {
	var name Name
	if len(b) != Length {
		return name, Error.New("invalid length %d, expected %d", len(b), Length)
	}
	copy(name[:], b)
	return name, nil
}

// FromString parses the base58 form produced by Name.String.
func FromString(s string) (Name, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Name{}, Error.Wrap(err)
	}
	return FromBytes(b)
}

// Hash derives a Name from data by SHA-256.
func Hash(data ...[]byte) Name {
	h := sha256.New()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	var name Name
	copy(name[:], h.Sum(nil))
	return name
}

// Random returns a uniformly random Name.
func Random() Name {
	var name Name
	if _, err := rand.Read(name[:]); err != nil {
		panic(err)
	}
	return name
}

// Bytes returns a copy of the raw bytes.
func (name Name) Bytes() []byte { return append([]byte(nil), name[:]...) }

// IsZero returns whether the name is the zero value.
func (name Name) IsZero() bool { return name == Zero }

// Less does a lexicographic byte comparison.
func (name Name) Less(other Name) bool { return bytes.Compare(name[:], other[:]) < 0 }

// String returns the base58 encoding of the name.
func (name Name) String() string { return base58.Encode(name[:]) }

// Short returns a truncated form for log output.
func (name Name) Short() string {
	s := name.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Bit returns the i-th bit counting from the most significant one.
func (name Name) Bit(i int) bool {
	return name[i/8]&(0x80>>uint(i%8)) != 0
}

// Distance returns a XOR b. Interpreted as a big endian unsigned integer it
// is the distance between a and b.
func Distance(a, b Name) Name {
	var d Name
	for i := range a {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// CompareDistance compares the distances of a and b to target. It returns
// -1 if a is closer, 1 if b is closer and 0 only if a == b. Equidistant
// names cannot exist for distinct a and b, so the ordering is total.
func CompareDistance(a, b, target Name) int {
	for i, t := range target {
		x, y := a[i]^t, b[i]^t
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Closer returns whether a is strictly closer to target than b.
func Closer(a, b, target Name) bool { return CompareDistance(a, b, target) < 0 }

// CommonPrefixLen returns the number of leading bits a and b have in common.
func CommonPrefixLen(a, b Name) int {
	for i := range a {
		if x := a[i] ^ b[i]; x != 0 {
			return i*8 + bits.LeadingZeros8(x)
		}
	}
	return Bits
}

// BucketIndex returns the routing table bucket other belongs to relative to
// self. Bucket 0 holds the farthest half of the space.
func BucketIndex(self, other Name) int { return CommonPrefixLen(self, other) }

// SortByDistance sorts names in place, nearest to target first.
func SortByDistance(names []Name, target Name) {
	sort.Slice(names, func(i, k int) bool {
		return CompareDistance(names[i], names[k], target) < 0
	})
}

// WithBucket returns a random name that falls into bucket i relative to self.
func WithBucket(self Name, i int) Name {
	if i >= Bits {
		return self
	}
	name := Random()
	for b := 0; b < i; b++ {
		setBit(&name, b, self.Bit(b))
	}
	setBit(&name, i, !self.Bit(i))
	return name
}

func setBit(name *Name, i int, v bool) {
	mask := byte(0x80 >> uint(i%8))
	if v {
		name[i/8] |= mask
	} else {
		name[i/8] &^= mask
	}
}
