// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing_test

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/routing/internal/testcontext"
	"storj.io/routing/pkg/cache"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/routing"
	"storj.io/routing/pkg/transport/memnet"
	"storj.io/routing/pkg/xorname"
)

const waitTimeout = 10 * time.Second

// eventLog drains the events of a session so it never backs up.
type eventLog struct {
	mu     sync.Mutex
	events []routing.Event
	closed bool
}

func collect(ctx *testcontext.Context, events <-chan routing.Event) *eventLog {
	log := &eventLog{}
	ctx.Go(func() error {
		for ev := range events {
			log.mu.Lock()
			log.events = append(log.events, ev)
			log.mu.Unlock()
		}
		log.mu.Lock()
		log.closed = true
		log.mu.Unlock()
		return nil
	})
	return log
}

func (log *eventLog) all() []routing.Event {
	log.mu.Lock()
	defer log.mu.Unlock()
	return append([]routing.Event(nil), log.events...)
}

func (log *eventLog) count(match func(routing.Event) bool) int {
	n := 0
	for _, ev := range log.all() {
		if match(ev) {
			n++
		}
	}
	return n
}

func (log *eventLog) wait(t *testing.T, match func(routing.Event) bool) routing.Event {
	t.Helper()
	return log.waitSince(t, 0, match)
}

// waitSince waits for a matching event among those after the first start.
func (log *eventLog) waitSince(t *testing.T, start int, match func(routing.Event) bool) routing.Event {
	t.Helper()
	var found routing.Event
	require.Eventually(t, func() bool {
		for _, ev := range log.all()[start:] {
			if match(ev) {
				found = ev
				return true
			}
		}
		return false
	}, waitTimeout, 5*time.Millisecond)
	return found
}

func (log *eventLog) isClosed() bool {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.closed
}

type testNode struct {
	*routing.Node
	id     *identity.FullID
	events *eventLog
}

type testClient struct {
	*routing.Client
	id     *identity.FullID
	events *eventLog
}

type planet struct {
	t       *testing.T
	ctx     *testcontext.Context
	config  routing.Config
	network *memnet.Network
	nodes   []*testNode
	clients []*testClient
}

func testConfig() routing.Config {
	config := routing.DefaultConfig()
	config.QuorumTimeout = time.Minute
	config.SweepInterval = 50 * time.Millisecond
	return config
}

// newPlanet starts n fully meshed nodes.
func newPlanet(t *testing.T, ctx *testcontext.Context, n int, config routing.Config) *planet {
	p := &planet{
		t:       t,
		ctx:     ctx,
		config:  config,
		network: memnet.New(zaptest.NewLogger(t).Named("memnet")),
	}
	p.network.Retryable = routing.ErrBackpressure.Has

	for i := 0; i < n; i++ {
		p.addNode(nil)
	}
	for i := range p.nodes {
		for k := i + 1; k < len(p.nodes); k++ {
			require.NoError(t, p.network.Connect(ctx, p.nodes[i].Name(), p.nodes[k].Name()))
		}
	}
	for _, node := range p.nodes {
		p.awaitContacts(node, n-1)
	}
	return p
}

// awaitContacts waits until node knows n peers and, when the network is
// large enough, a complete close group.
func (p *planet) awaitContacts(node *testNode, n int) {
	small := n < p.config.GroupSize-1
	require.Eventually(p.t, func() bool {
		contacts, err := node.Contacts(p.ctx)
		return err == nil && len(contacts) == n && (small || node.Converged())
	}, waitTimeout, 5*time.Millisecond)
}

// join starts a node connected to every other node of the planet.
func (p *planet) join(responses cache.Cache) *testNode {
	node := p.addNode(responses)
	for _, other := range p.nodes {
		if other != node {
			require.NoError(p.t, p.network.Connect(p.ctx, node.Name(), other.Name()))
		}
	}
	for _, other := range p.nodes {
		p.awaitContacts(other, len(p.nodes)-1)
	}
	return node
}

func (p *planet) addNode(responses cache.Cache) *testNode {
	id, err := identity.Generate()
	require.NoError(p.t, err)

	endpoint := p.network.Endpoint(id.Name())
	node, err := routing.NewNode(zaptest.NewLogger(p.t).Named(id.Name().Short()), id, p.config, endpoint, responses, nil)
	require.NoError(p.t, err)
	endpoint.Attach(node)

	tn := &testNode{Node: node, id: id, events: collect(p.ctx, node.Events())}
	p.ctx.Go(func() error { return node.Run(p.ctx) })
	p.nodes = append(p.nodes, tn)
	return tn
}

// newClient starts a client connected to proxy.
func (p *planet) newClient(proxy *testNode, responses cache.Cache) *testClient {
	id, err := identity.Generate()
	require.NoError(p.t, err)

	endpoint := p.network.Endpoint(id.Name())
	client, err := routing.NewClient(zaptest.NewLogger(p.t).Named("client"), id, p.config, endpoint, responses, nil)
	require.NoError(p.t, err)
	endpoint.Attach(client)

	tc := &testClient{Client: client, id: id, events: collect(p.ctx, client.Events())}
	p.ctx.Go(func() error { return client.Run(p.ctx) })

	p.clients = append(p.clients, tc)

	require.NoError(p.t, p.network.Connect(p.ctx, id.Name(), proxy.Name()))
	require.Eventually(p.t, func() bool { return client.State() == routing.Connected }, waitTimeout, 5*time.Millisecond)
	return tc
}

// group returns the nodes closest to target, nearest first.
func (p *planet) group(target xorname.Name) []*testNode {
	nodes := append([]*testNode(nil), p.nodes...)
	sort.Slice(nodes, func(i, k int) bool {
		return xorname.Closer(nodes[i].Name(), nodes[k].Name(), target)
	})
	if len(nodes) > p.config.GroupSize {
		nodes = nodes[:p.config.GroupSize]
	}
	return nodes
}

func (p *planet) shutdown() {
	for _, client := range p.clients {
		require.NoError(p.t, client.Close())
	}
	for _, node := range p.nodes {
		require.NoError(p.t, node.Close())
	}
	require.NoError(p.t, p.network.Close())
}
