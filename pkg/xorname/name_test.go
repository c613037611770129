// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package xorname_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/routing/pkg/xorname"
)

func toInt(n xorname.Name) *big.Int { return new(big.Int).SetBytes(n[:]) }

func TestDistanceProperties(t *testing.T) {
	for i := 0; i < 100; i++ {
		a, b, c := xorname.Random(), xorname.Random(), xorname.Random()

		assert.Equal(t, xorname.Distance(a, b), xorname.Distance(b, a))
		assert.True(t, xorname.Distance(a, a).IsZero())
		assert.False(t, xorname.Distance(a, b).IsZero())

		// d(a,c) <= d(a,b) + d(b,c)
		ab, bc, ac := toInt(xorname.Distance(a, b)), toInt(xorname.Distance(b, c)), toInt(xorname.Distance(a, c))
		assert.True(t, ac.Cmp(new(big.Int).Add(ab, bc)) <= 0)

		// ordering agrees with the integer interpretation of the distance
		expected := toInt(xorname.Distance(a, c)).Cmp(toInt(xorname.Distance(b, c)))
		assert.Equal(t, expected, xorname.CompareDistance(a, b, c))
	}
}

func TestCompareDistanceOnlyZeroWhenEqual(t *testing.T) {
	a, b := xorname.Random(), xorname.Random()
	assert.Equal(t, 0, xorname.CompareDistance(a, a, b))
	assert.NotEqual(t, 0, xorname.CompareDistance(a, b, b))
	assert.Equal(t, -1, xorname.CompareDistance(b, a, b))
}

func TestCommonPrefixLen(t *testing.T) {
	var a, b xorname.Name
	assert.Equal(t, xorname.Bits, xorname.CommonPrefixLen(a, b))

	b[0] = 0x80
	assert.Equal(t, 0, xorname.CommonPrefixLen(a, b))

	b[0] = 0x01
	assert.Equal(t, 7, xorname.CommonPrefixLen(a, b))

	b[0] = 0
	b[31] = 0x01
	assert.Equal(t, 255, xorname.CommonPrefixLen(a, b))
}

func TestWithBucket(t *testing.T) {
	self := xorname.Random()
	for _, i := range []int{0, 1, 7, 8, 100, 255} {
		assert.Equal(t, i, xorname.BucketIndex(self, xorname.WithBucket(self, i)))
	}
}

func TestSortByDistance(t *testing.T) {
	target := xorname.Random()
	names := make([]xorname.Name, 20)
	for i := range names {
		names[i] = xorname.Random()
	}
	xorname.SortByDistance(names, target)
	for i := 1; i < len(names); i++ {
		assert.True(t, xorname.Closer(names[i-1], names[i], target))
	}
}

func TestStringRoundTrip(t *testing.T) {
	name := xorname.Random()
	parsed, err := xorname.FromString(name.String())
	require.NoError(t, err)
	assert.Equal(t, name, parsed)

	_, err = xorname.FromBytes([]byte{1, 2, 3})
	assert.True(t, xorname.Error.Has(err))
}

func TestHash(t *testing.T) {
	assert.Equal(t, xorname.Hash([]byte("ab")), xorname.Hash([]byte("a"), []byte("b")))
	assert.NotEqual(t, xorname.Hash([]byte("a")), xorname.Hash([]byte("b")))
}
