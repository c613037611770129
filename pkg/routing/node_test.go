// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/routing/internal/testcontext"
	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/cache"
	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/routing"
	"storj.io/routing/pkg/xorname"
)

const settle = 200 * time.Millisecond

func isRequest(id message.ID) func(routing.Event) bool {
	return func(ev routing.Event) bool {
		req, ok := ev.(routing.RequestReceived)
		return ok && req.Message.Message.ID == id
	}
}

func isResponse(id message.ID) func(routing.Event) bool {
	return func(ev routing.Event) bool {
		resp, ok := ev.(routing.ResponseReceived)
		return ok && resp.Message.Message.ID == id
	}
}

func TestStartup(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	p := newPlanet(t, ctx, 10, testConfig())
	defer p.shutdown()

	for _, node := range p.nodes {
		assert.Equal(t, routing.Connected, node.State())
		assert.True(t, node.Converged())

		var states []routing.StateChanged
		require.Eventually(t, func() bool {
			states = states[:0]
			for _, ev := range node.events.all() {
				if state, ok := ev.(routing.StateChanged); ok {
					states = append(states, state)
				}
			}
			return len(states) >= 3 && states[len(states)-1].Converged
		}, waitTimeout, 5*time.Millisecond)
		assert.Equal(t, routing.StateChanged{State: routing.Connecting}, states[0])
		assert.Equal(t, routing.StateChanged{State: routing.Connected}, states[1])
		assert.Equal(t, routing.StateChanged{State: routing.Connected, Converged: true}, states[len(states)-1])

		require.Eventually(t, func() bool {
			return node.events.count(func(ev routing.Event) bool {
				_, ok := ev.(routing.PeerConnected)
				return ok
			}) == 9
		}, waitTimeout, 5*time.Millisecond)

		groupChanged := node.events.count(func(ev routing.Event) bool {
			_, ok := ev.(routing.GroupChanged)
			return ok
		})
		assert.True(t, groupChanged > 0)

		group, err := node.CloseGroup(ctx, node.Name())
		require.NoError(t, err)
		assert.Len(t, group, 8)
		assert.Equal(t, node.Name(), group[0].Name)

		snapshot, err := node.RoutingTableSnapshot(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, snapshot)
	}
}

func TestDirectRequest(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	p := newPlanet(t, ctx, 4, testConfig())
	defer p.shutdown()

	from, to := p.nodes[0], p.nodes[3]
	id, err := from.SendRequest(ctx,
		authority.ManagedNode{XorName: from.Name()},
		authority.ManagedNode{XorName: to.Name()},
		message.GetAccountInfoRequest{})
	require.NoError(t, err)

	ev := to.events.wait(t, isRequest(id)).(routing.RequestReceived)
	assert.Equal(t, authority.ManagedNode{XorName: from.Name()}, ev.Message.Message.Src)
	assert.Equal(t, message.GetAccountInfoRequest{}, ev.Message.Message.Content)

	time.Sleep(settle)
	assert.Equal(t, 1, to.events.count(isRequest(id)))

	_, err = from.SendRequest(ctx,
		authority.ManagedNode{XorName: to.Name()},
		authority.ManagedNode{XorName: from.Name()},
		message.GetAccountInfoRequest{})
	assert.True(t, routing.InterfaceError.Has(err))
	assert.True(t, routing.ErrAddressing.Has(err))
}

func TestGroupResponseQuorum(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	p := newPlanet(t, ctx, 10, testConfig())
	defer p.shutdown()
	client := p.newClient(p.nodes[0], nil)

	chunk := data.NewImmutableData([]byte("quorum"))
	dst := authority.NaeManager{XorName: chunk.Name()}
	id, err := client.SendRequest(ctx, dst, message.PutRequest{Data: chunk})
	require.NoError(t, err)

	group := p.group(chunk.Name())
	require.Len(t, group, 8)

	requests := make([]*message.SignedMessage, len(group))
	for i, member := range group {
		ev := member.events.wait(t, isRequest(id)).(routing.RequestReceived)
		requests[i] = ev.Message
	}

	success := message.PutSuccess{DataID: chunk.Identifier()}
	respond := func(i int) {
		req := requests[i].Message
		require.NoError(t, group[i].SendResponse(ctx, req.Dst, req.Src, req.ID.Increment(), success))
	}
	accepted := isResponse(id.Increment())

	for i := 0; i < 4; i++ {
		respond(i)
	}
	time.Sleep(settle)
	assert.Zero(t, client.events.count(accepted))

	respond(4)
	ev := client.events.wait(t, accepted).(routing.ResponseReceived)
	assert.Equal(t, success, ev.Message.Message.Content)
	assert.Equal(t, dst, ev.Message.Message.Src)
	assert.False(t, ev.Message.Cached)
	signers, err := ev.Message.VerifiedSigners()
	require.NoError(t, err)
	assert.Len(t, signers, 5)

	for i := 5; i < len(group); i++ {
		respond(i)
	}
	time.Sleep(settle)
	assert.Equal(t, 1, client.events.count(accepted))

	for _, member := range group {
		assert.Equal(t, 1, member.events.count(isRequest(id)))
	}
}

func TestConsensusTimeout(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	config := testConfig()
	config.QuorumTimeout = 300 * time.Millisecond
	p := newPlanet(t, ctx, 10, config)
	defer p.shutdown()
	proxy := p.nodes[0]
	client := p.newClient(proxy, nil)

	chunk := data.NewImmutableData([]byte("timeout"))
	dst := authority.NaeManager{XorName: chunk.Name()}
	id, err := client.SendRequest(ctx, dst, message.PutRequest{Data: chunk})
	require.NoError(t, err)

	group := p.group(chunk.Name())
	for _, member := range group[:2] {
		ev := member.events.wait(t, isRequest(id)).(routing.RequestReceived)
		req := ev.Message.Message
		require.NoError(t, member.SendResponse(ctx, req.Dst, req.Src, req.ID.Increment(), message.PutSuccess{DataID: chunk.Identifier()}))
	}

	ev := proxy.events.wait(t, func(ev routing.Event) bool {
		failed, ok := ev.(routing.ConsensusFailed)
		return ok && failed.ID == id.Increment()
	}).(routing.ConsensusFailed)
	assert.True(t, routing.RoutingError.Has(ev.Err))
	assert.True(t, routing.ErrConsensusTimeout.Has(ev.Err))
	assert.Equal(t, dst, ev.Src)
	assert.Zero(t, client.events.count(isResponse(id.Increment())))
}

func TestInvalidDataRejected(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	p := newPlanet(t, ctx, 10, testConfig())
	defer p.shutdown()
	client := p.newClient(p.nodes[0], nil)

	forged := &data.ImmutableData{XorName: xorname.Random(), Value: []byte("forged")}
	oversized := data.NewImmutableData(make([]byte, data.MaxImmutableDataSizeInBytes+1))

	for _, invalid := range []data.Data{forged, oversized} {
		dst := authority.NaeManager{XorName: invalid.Name()}

		_, err := client.SendRequest(ctx, dst, message.PutRequest{Data: invalid})
		require.Error(t, err)
		assert.True(t, routing.InterfaceError.Has(err))
		assert.True(t, routing.ErrValidation.Has(err))

		node := p.nodes[1]
		_, err = node.SendRequest(ctx, authority.ManagedNode{XorName: node.Name()}, dst, message.PutRequest{Data: invalid})
		require.Error(t, err)
		assert.True(t, routing.InterfaceError.Has(err))
		assert.True(t, routing.ErrValidation.Has(err))
	}

	time.Sleep(settle)
	for _, node := range p.nodes {
		assert.Zero(t, node.events.count(func(ev routing.Event) bool {
			req, ok := ev.(routing.RequestReceived)
			if !ok {
				return false
			}
			_, put := req.Message.Message.Content.(message.PutRequest)
			return put
		}))
	}
}

func TestRelayRejectsInvalidData(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	p := newPlanet(t, ctx, 10, testConfig())
	defer p.shutdown()
	relay := p.nodes[0]

	rogue, err := identity.Generate()
	require.NoError(t, err)
	endpoint := p.network.Endpoint(rogue.Name())
	endpoint.Attach(silent{})
	require.NoError(t, p.network.Connect(ctx, rogue.Name(), relay.Name()))

	hello, err := message.EncodeFrame(message.NewHello(rogue, false))
	require.NoError(t, err)
	require.NoError(t, endpoint.Send(ctx, relay.Name(), hello))
	relay.events.wait(t, func(ev routing.Event) bool {
		connected, ok := ev.(routing.PeerConnected)
		return ok && connected.Peer.Name == rogue.Name()
	})

	forged := &data.ImmutableData{XorName: xorname.Random(), Value: []byte("forged")}
	msg := message.RoutingMessage{
		Src:     authority.ManagedNode{XorName: rogue.Name()},
		Dst:     authority.NaeManager{XorName: forged.Name()},
		ID:      message.NewID(),
		Content: message.PutRequest{Data: forged},
	}
	frame, err := message.EncodeFrame(message.Routed{Message: message.NewSignedMessage(msg, rogue)})
	require.NoError(t, err)
	require.NoError(t, endpoint.Send(ctx, relay.Name(), frame))

	ev := relay.events.wait(t, func(ev routing.Event) bool {
		rejected, ok := ev.(routing.MessageRejected)
		return ok && rejected.ID == msg.ID
	}).(routing.MessageRejected)
	assert.Equal(t, rogue.Name(), ev.From)
	assert.True(t, routing.ErrValidation.Has(ev.Err))

	// the relay dropped the message instead of forwarding it
	time.Sleep(settle)
	for _, node := range p.nodes[1:] {
		assert.Zero(t, node.events.count(func(ev routing.Event) bool {
			rejected, ok := ev.(routing.MessageRejected)
			return ok && rejected.ID == msg.ID
		}))
		assert.Zero(t, node.events.count(isRequest(msg.ID)))
	}
}

func TestCachedReads(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	p := newPlanet(t, ctx, 10, testConfig())
	defer p.shutdown()

	chunk := data.NewImmutableData([]byte("cached"))
	get := message.GetRequest{DataID: chunk.Identifier()}
	found := message.GetSuccess{Data: chunk}
	dst := authority.NaeManager{XorName: chunk.Name()}

	t.Run("Client", func(t *testing.T) {
		responses, err := cache.NewLRU(10)
		require.NoError(t, err)
		responses.Put(get, found)

		client := p.newClient(p.nodes[1], responses)
		id, err := client.SendRequest(ctx, dst, get)
		require.NoError(t, err)

		ev := client.events.wait(t, isResponse(id.Increment())).(routing.ResponseReceived)
		assert.True(t, ev.Message.Cached)
		assert.Equal(t, found, ev.Message.Message.Content)
		for _, node := range p.group(chunk.Name()) {
			assert.Zero(t, node.events.count(isRequest(id)))
		}
	})

	t.Run("Proxy", func(t *testing.T) {
		responses, err := cache.NewLRU(10)
		require.NoError(t, err)
		responses.Put(get, found)

		proxy := p.join(responses)
		client := p.newClient(proxy, nil)
		id, err := client.SendRequest(ctx, dst, get)
		require.NoError(t, err)

		ev := client.events.wait(t, isResponse(id.Increment())).(routing.ResponseReceived)
		assert.True(t, ev.Message.Cached)
		assert.Equal(t, found, ev.Message.Message.Content)

		time.Sleep(settle)
		for _, node := range p.group(chunk.Name()) {
			assert.Zero(t, node.events.count(isRequest(id)))
		}
	})
}

type silent struct{}

func (silent) Connected(context.Context, xorname.Name) error       { return nil }
func (silent) Disconnected(context.Context, xorname.Name) error    { return nil }
func (silent) Receive(context.Context, xorname.Name, []byte) error { return nil }

func TestSpoofedHello(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	p := newPlanet(t, ctx, 2, testConfig())
	defer p.shutdown()
	node := p.nodes[0]

	impostor, err := identity.Generate()
	require.NoError(t, err)
	victim, err := identity.Generate()
	require.NoError(t, err)

	endpoint := p.network.Endpoint(impostor.Name())
	endpoint.Attach(silent{})
	require.NoError(t, p.network.Connect(ctx, impostor.Name(), node.Name()))

	frame, err := message.EncodeFrame(message.NewHello(victim, false))
	require.NoError(t, err)
	require.NoError(t, endpoint.Send(ctx, node.Name(), frame))

	ev := node.events.wait(t, func(ev routing.Event) bool {
		rejected, ok := ev.(routing.MessageRejected)
		return ok && rejected.From == impostor.Name()
	}).(routing.MessageRejected)
	assert.True(t, routing.ErrIdentity.Has(ev.Err))

	require.Eventually(t, func() bool {
		return !p.network.Connected(impostor.Name(), node.Name())
	}, waitTimeout, 5*time.Millisecond)

	contacts, err := node.Contacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}

func TestChurn(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	p := newPlanet(t, ctx, 4, testConfig())
	defer p.shutdown()
	a, b := p.nodes[0], p.nodes[1]
	seen := map[*testNode]int{a: len(a.events.all()), b: len(b.events.all())}

	require.NoError(t, p.network.Disconnect(a.Name(), b.Name()))

	for _, pair := range [][2]*testNode{{a, b}, {b, a}} {
		node, lost := pair[0], pair[1]
		node.events.wait(t, func(ev routing.Event) bool {
			gone, ok := ev.(routing.NodeLost)
			return ok && gone.Name == lost.Name()
		})
		node.events.wait(t, func(ev routing.Event) bool {
			gone, ok := ev.(routing.PeerDisconnected)
			return ok && gone.Name == lost.Name()
		})
		node.events.waitSince(t, seen[node], func(ev routing.Event) bool {
			changed, ok := ev.(routing.GroupChanged)
			return ok && len(changed.Members) == 3
		})
	}

	snapshot, err := a.RoutingTableSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	for _, entry := range snapshot {
		assert.NotEqual(t, b.Name(), entry.ID.Name)
	}

	require.NoError(t, p.network.Connect(ctx, a.Name(), b.Name()))
	require.Eventually(t, func() bool {
		return a.events.count(func(ev routing.Event) bool {
			added, ok := ev.(routing.NodeAdded)
			return ok && added.Peer.Name == b.Name()
		}) == 2
	}, waitTimeout, 5*time.Millisecond)
}

func TestClose(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	p := newPlanet(t, ctx, 3, testConfig())
	defer p.shutdown()
	node, other := p.nodes[0], p.nodes[1]

	require.NoError(t, node.Close())
	require.Eventually(t, node.events.isClosed, waitTimeout, 5*time.Millisecond)

	events := node.events.all()
	require.NotEmpty(t, events)
	assert.Equal(t, routing.SessionTerminated{}, events[len(events)-1])
	assert.Equal(t, routing.Terminated, node.State())

	_, err := node.SendRequest(ctx,
		authority.ManagedNode{XorName: node.Name()},
		authority.ManagedNode{XorName: other.Name()},
		message.GetAccountInfoRequest{})
	assert.True(t, routing.InterfaceError.Has(err))
	assert.True(t, routing.ErrState.Has(err))

	err = node.Receive(ctx, other.Name(), []byte("late"))
	assert.True(t, routing.ErrState.Has(err))

	err = node.Run(ctx)
	assert.True(t, routing.ErrState.Has(err))
}

func TestBackpressure(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	id, err := identity.Generate()
	require.NoError(t, err)

	config := testConfig()
	config.VerifyWorkers = 1
	config.InputBuffer = 2
	node, err := routing.NewNode(zaptest.NewLogger(t), id, config, nopTransport{}, nil, nil)
	require.NoError(t, err)

	// nothing drains the queue as long as the node does not run
	from := xorname.Random()
	require.NoError(t, node.Receive(ctx, from, []byte("one")))
	require.NoError(t, node.Receive(ctx, from, []byte("two")))
	err = node.Receive(ctx, from, []byte("three"))
	assert.True(t, routing.InterfaceError.Has(err))
	assert.True(t, routing.ErrBackpressure.Has(err))
}

type nopTransport struct{}

func (nopTransport) Send(context.Context, xorname.Name, []byte) error { return nil }
func (nopTransport) Disconnect(xorname.Name) error                    { return nil }
