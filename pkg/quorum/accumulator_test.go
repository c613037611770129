// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package quorum_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/quorum"
	"storj.io/routing/pkg/xorname"
)

type group struct {
	src     authority.NaeManager
	members []*identity.FullID
	names   map[xorname.Name]bool
}

func newGroup(t *testing.T, size int) *group {
	g := &group{src: authority.NaeManager{XorName: xorname.Random()}, names: map[xorname.Name]bool{}}
	for i := 0; i < size; i++ {
		id, err := identity.Generate()
		require.NoError(t, err)
		g.members = append(g.members, id)
		g.names[id.Name()] = true
	}
	return g
}

func (g *group) membership(groupName, signer xorname.Name) bool {
	return groupName == g.src.XorName && g.names[signer]
}

func (g *group) message(id message.ID, payload string) message.RoutingMessage {
	return message.RoutingMessage{
		Src: g.src,
		Dst: authority.ManagedNode{XorName: xorname.Random()},
		ID:  id,
		Content: message.GetSuccess{Data: &data.PlainData{
			XorName: g.src.XorName,
			Value:   []byte(payload),
		}},
	}
}

func newAccumulator(t *testing.T, g *group, clk clock.Clock) *quorum.Accumulator {
	return quorum.New(zaptest.NewLogger(t), quorum.Config{QuorumSize: 5, Timeout: time.Minute}, clk, g.membership)
}

func copyFrom(t *testing.T, msg message.RoutingMessage, member *identity.FullID) (*message.SignedMessage, []identity.PublicID) {
	signed := message.NewSignedMessage(msg, member)
	signers, err := signed.VerifiedSigners()
	require.NoError(t, err)
	return signed, signers
}

func TestQuorumExactlyOnce(t *testing.T) {
	g := newGroup(t, 8)
	acc := newAccumulator(t, g, clock.NewMock())
	id := message.NewID()
	msg := g.message(id, "value")

	for i, member := range g.members[:4] {
		signed, signers := copyFrom(t, msg, member)
		result, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
		assert.Equal(t, quorum.Pending, result.Status, i)
		assert.Len(t, result.Signers, i+1)
	}
	assert.True(t, acc.Pending(id))

	signed, signers := copyFrom(t, msg, g.members[4])
	result, err := acc.Accumulate(id, g.src, signed, signers)
	require.NoError(t, err)
	require.Equal(t, quorum.Quorum, result.Status)
	assert.Len(t, result.Signers, 5)
	require.NotNil(t, result.Message)
	assert.Len(t, result.Message.Signatures, 5)
	merged, err := result.Message.VerifiedSigners()
	require.NoError(t, err)
	assert.Len(t, merged, 5)
	assert.False(t, acc.Pending(id))

	for _, member := range g.members[5:] {
		signed, signers := copyFrom(t, msg, member)
		result, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
		assert.Equal(t, quorum.Absorbed, result.Status)
	}
	assert.Equal(t, 0, acc.Len())
}

func TestNonMembersAndDuplicates(t *testing.T) {
	g := newGroup(t, 8)
	outsiders := newGroup(t, 5)
	acc := newAccumulator(t, g, clock.NewMock())
	id := message.NewID()
	msg := g.message(id, "value")

	for _, outsider := range outsiders.members {
		signed, signers := copyFrom(t, msg, outsider)
		result, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
		assert.Equal(t, quorum.Pending, result.Status)
	}
	assert.False(t, acc.Pending(id), "non members do not open an entry")

	for i := 0; i < 10; i++ {
		signed, signers := copyFrom(t, msg, g.members[0])
		result, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
		assert.Equal(t, quorum.Pending, result.Status)
		assert.Len(t, result.Signers, 1)
	}

	// a single copy may carry several member signatures
	signed := message.NewSignedMessage(msg, g.members[1])
	for _, member := range g.members[2:5] {
		signed.Sign(member)
	}
	signers, err := signed.VerifiedSigners()
	require.NoError(t, err)
	result, err := acc.Accumulate(id, g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Quorum, result.Status)
	assert.Len(t, result.Signers, 5)
}

func TestConflict(t *testing.T) {
	g := newGroup(t, 8)
	acc := newAccumulator(t, g, clock.NewMock())
	id := message.NewID()
	honest, forged := g.message(id, "honest"), g.message(id, "forged")
	forged.Dst = honest.Dst

	for _, member := range g.members[:3] {
		signed, signers := copyFrom(t, honest, member)
		result, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
		assert.Equal(t, quorum.Pending, result.Status)
	}

	signed, signers := copyFrom(t, forged, g.members[3])
	result, err := acc.Accumulate(id, g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Conflict, result.Status)
	assert.Nil(t, result.Message)

	for _, member := range g.members[4:6] {
		signed, signers := copyFrom(t, honest, member)
		result, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
		if result.Status == quorum.Quorum {
			assert.Equal(t, honest.Digest(), result.Message.Message.Digest())
		}
	}
	assert.False(t, acc.Pending(id))
}

func TestTimeout(t *testing.T) {
	g := newGroup(t, 8)
	clk := clock.NewMock()
	acc := newAccumulator(t, g, clk)
	id := message.NewID()
	msg := g.message(id, "slow")

	for _, member := range g.members[:3] {
		signed, signers := copyFrom(t, msg, member)
		_, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
	}

	clk.Add(30 * time.Second)
	assert.Empty(t, acc.Expire())
	assert.True(t, acc.Pending(id))

	clk.Add(30 * time.Second)
	expired := acc.Expire()
	require.Len(t, expired, 1)
	assert.Equal(t, id, expired[0].ID)
	assert.Equal(t, authority.Authority(g.src), expired[0].Src)
	assert.Equal(t, 0, acc.Len())

	// the id starts over after expiry
	signed, signers := copyFrom(t, msg, g.members[3])
	result, err := acc.Accumulate(id, g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Pending, result.Status)
	assert.Len(t, result.Signers, 1)
}

func TestLateCopyAbsorbed(t *testing.T) {
	g := newGroup(t, 8)
	clk := clock.NewMock()
	acc := newAccumulator(t, g, clk)
	id := message.NewID()
	msg := g.message(id, "value")

	for _, member := range g.members[:5] {
		signed, signers := copyFrom(t, msg, member)
		_, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
	}

	// a straggler arriving long after quorum neither reopens the id nor
	// times out as a failed consensus
	clk.Add(10 * time.Minute)
	assert.Empty(t, acc.Expire())

	signed, signers := copyFrom(t, msg, g.members[5])
	result, err := acc.Accumulate(id, g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Absorbed, result.Status)
	assert.False(t, acc.Pending(id))

	clk.Add(10 * time.Minute)
	assert.Empty(t, acc.Expire())
}

func TestCompletedEvicted(t *testing.T) {
	g := newGroup(t, 8)
	acc := quorum.New(zaptest.NewLogger(t), quorum.Config{QuorumSize: 5, Timeout: time.Minute, CompletedSize: 2}, clock.NewMock(), g.membership)

	var ids []message.ID
	for i := 0; i < 3; i++ {
		id := message.NewID()
		ids = append(ids, id)
		msg := g.message(id, "value")
		for _, member := range g.members[:5] {
			signed, signers := copyFrom(t, msg, member)
			_, err := acc.Accumulate(id, g.src, signed, signers)
			require.NoError(t, err)
		}
	}

	// the oldest id was evicted and starts over
	signed, signers := copyFrom(t, g.message(ids[0], "value"), g.members[5])
	result, err := acc.Accumulate(ids[0], g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Pending, result.Status)

	signed, signers = copyFrom(t, g.message(ids[2], "value"), g.members[5])
	result, err = acc.Accumulate(ids[2], g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Absorbed, result.Status)
}

func TestConflictReportedOnce(t *testing.T) {
	g := newGroup(t, 8)
	acc := newAccumulator(t, g, clock.NewMock())
	id := message.NewID()
	honest, forged := g.message(id, "honest"), g.message(id, "forged")
	forged.Dst = honest.Dst

	signed, signers := copyFrom(t, honest, g.members[0])
	result, err := acc.Accumulate(id, g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Pending, result.Status)

	signed, signers = copyFrom(t, forged, g.members[1])
	result, err = acc.Accumulate(id, g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Conflict, result.Status)

	for i, member := range g.members[2:4] {
		signed, signers := copyFrom(t, forged, member)
		result, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
		assert.Equal(t, quorum.Pending, result.Status)
		assert.Len(t, result.Signers, i+2)
	}

	// a third distinct content is a new conflict
	third := g.message(id, "third")
	third.Dst = honest.Dst
	signed, signers = copyFrom(t, third, g.members[4])
	result, err = acc.Accumulate(id, g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Conflict, result.Status)
}

func TestMergedSignaturesCounted(t *testing.T) {
	g := newGroup(t, 8)
	outsiders := newGroup(t, 2)
	acc := newAccumulator(t, g, clock.NewMock())
	id := message.NewID()
	msg := g.message(id, "value")

	// outsider signatures riding along with members are not merged
	reached := false
	for _, member := range g.members[:5] {
		signed := message.NewSignedMessage(msg, member)
		for _, outsider := range outsiders.members {
			signed.Sign(outsider)
		}
		signers, err := signed.VerifiedSigners()
		require.NoError(t, err)
		result, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
		if result.Status != quorum.Quorum {
			continue
		}
		reached = true
		require.Len(t, result.Message.Signatures, 5)
		for _, sig := range result.Message.Signatures {
			assert.True(t, g.names[sig.Signer.Name], sig.Signer)
		}
	}
	assert.True(t, reached)
}

func TestRevalidate(t *testing.T) {
	g := newGroup(t, 8)
	acc := newAccumulator(t, g, clock.NewMock())
	id := message.NewID()
	msg := g.message(id, "value")

	for _, member := range g.members[:4] {
		signed, signers := copyFrom(t, msg, member)
		_, err := acc.Accumulate(id, g.src, signed, signers)
		require.NoError(t, err)
	}

	// churn: two of the signers left the group
	delete(g.names, g.members[0].Name())
	delete(g.names, g.members[1].Name())
	acc.Revalidate()

	signed, signers := copyFrom(t, msg, g.members[4])
	result, err := acc.Accumulate(id, g.src, signed, signers)
	require.NoError(t, err)
	assert.Equal(t, quorum.Pending, result.Status)
	assert.Len(t, result.Signers, 3)
}

func TestMisuse(t *testing.T) {
	g := newGroup(t, 8)
	acc := newAccumulator(t, g, clock.NewMock())
	id := message.NewID()
	signed, signers := copyFrom(t, g.message(id, "value"), g.members[0])

	_, err := acc.Accumulate(id, authority.ManagedNode{XorName: g.src.XorName}, signed, signers)
	assert.True(t, quorum.Error.Has(err))

	_, err = acc.Accumulate(id.Increment(), g.src, signed, signers)
	assert.True(t, quorum.Error.Has(err))
}
