// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package memnet implements an in-process network of ordered links.
package memnet

import (
	"context"
	"sync"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storj.io/routing/pkg/xorname"
)

var (
	// Error is the default memnet error class
	Error = errs.Class("memnet error")
	// ErrNotConnected is returned when sending over a link that does not exist.
	ErrNotConnected = errs.Class("not connected")
)

const (
	linkBuffer   = 1024
	retryDelay   = time.Millisecond
	retryTimeout = 5 * time.Second
)

// Handler receives what happens on the links of an endpoint.
type Handler interface {
	Connected(ctx context.Context, name xorname.Name) error
	Disconnected(ctx context.Context, name xorname.Name) error
	Receive(ctx context.Context, from xorname.Name, frame []byte) error
}

type pair struct{ from, to xorname.Name }

// link is one direction of a connection, delivering frames in order.
type link struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func (l *link) close() { l.once.Do(func() { close(l.closed) }) }

// Network connects endpoints by name.
type Network struct {
	log *zap.Logger

	// Retryable decides whether a frame refused by its receiver is offered
	// again. When nil every refused frame is retried.
	Retryable func(error) bool

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu        sync.Mutex
	endpoints map[xorname.Name]*Endpoint
	links     map[pair]*link
}

// New creates an empty network.
func New(log *zap.Logger) *Network {
	ctx, cancel := context.WithCancel(context.Background())
	return &Network{
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		endpoints: map[xorname.Name]*Endpoint{},
		links:     map[pair]*link{},
	}
}

// Endpoint returns the endpoint for name, creating it when needed.
func (network *Network) Endpoint(name xorname.Name) *Endpoint {
	network.mu.Lock()
	defer network.mu.Unlock()
	endpoint, ok := network.endpoints[name]
	if !ok {
		endpoint = &Endpoint{network: network, name: name}
		network.endpoints[name] = endpoint
	}
	return endpoint
}

// Connect links a and b in both directions and notifies both handlers.
func (network *Network) Connect(ctx context.Context, a, b xorname.Name) error {
	if a == b {
		return Error.New("can not connect %s to itself", a.Short())
	}

	network.mu.Lock()
	ea, oka := network.endpoints[a]
	eb, okb := network.endpoints[b]
	if !oka || !okb || ea.handler() == nil || eb.handler() == nil {
		network.mu.Unlock()
		return Error.New("both endpoints need a handler")
	}
	if _, ok := network.links[pair{a, b}]; ok {
		network.mu.Unlock()
		return nil
	}
	for _, p := range []pair{{a, b}, {b, a}} {
		l := &link{frames: make(chan []byte, linkBuffer), closed: make(chan struct{})}
		network.links[p] = l
		p, receiver := p, network.endpoints[p.to]
		network.group.Go(func() error {
			network.deliver(p, l, receiver)
			return nil
		})
	}
	network.mu.Unlock()

	return errs.Combine(
		ea.handler().Connected(ctx, b),
		eb.handler().Connected(ctx, a),
	)
}

// Disconnect removes the link between a and b and notifies both handlers.
func (network *Network) Disconnect(a, b xorname.Name) error {
	network.mu.Lock()
	var found bool
	for _, p := range []pair{{a, b}, {b, a}} {
		if l, ok := network.links[p]; ok {
			l.close()
			delete(network.links, p)
			found = true
		}
	}
	ea, eb := network.endpoints[a], network.endpoints[b]
	network.mu.Unlock()

	if !found {
		return ErrNotConnected.New("%s and %s", a.Short(), b.Short())
	}
	var group errs.Group
	if h := ea.handler(); h != nil {
		group.Add(h.Disconnected(network.ctx, b))
	}
	if h := eb.handler(); h != nil {
		group.Add(h.Disconnected(network.ctx, a))
	}
	return group.Err()
}

// Connected returns whether a and b are linked.
func (network *Network) Connected(a, b xorname.Name) bool {
	network.mu.Lock()
	defer network.mu.Unlock()
	_, ok := network.links[pair{a, b}]
	return ok
}

// Close stops delivering frames.
func (network *Network) Close() error {
	network.cancel()
	network.mu.Lock()
	for p, l := range network.links {
		l.close()
		delete(network.links, p)
	}
	network.mu.Unlock()
	return network.group.Wait()
}

func (network *Network) send(p pair, frame []byte) error {
	network.mu.Lock()
	l, ok := network.links[p]
	network.mu.Unlock()
	if !ok {
		return ErrNotConnected.New("%s to %s", p.from.Short(), p.to.Short())
	}
	select {
	case l.frames <- frame:
		return nil
	case <-l.closed:
		return ErrNotConnected.New("%s to %s", p.from.Short(), p.to.Short())
	}
}

// deliver hands the frames of l to the receiver in order. A receiver that
// refuses a frame, for example under backpressure, gets it again shortly.
func (network *Network) deliver(p pair, l *link, receiver *Endpoint) {
	for {
		select {
		case frame := <-l.frames:
			network.retry(p, l, receiver, frame)
		case <-l.closed:
			return
		case <-network.ctx.Done():
			return
		}
	}
}

func (network *Network) retry(p pair, l *link, receiver *Endpoint, frame []byte) {
	deadline := time.Now().Add(retryTimeout)
	for {
		err := receiver.handler().Receive(network.ctx, p.from, frame)
		if err == nil {
			return
		}
		if network.Retryable != nil && !network.Retryable(err) {
			network.log.Debug("frame refused", zap.Stringer("From", p.from), zap.Stringer("To", p.to), zap.Error(err))
			return
		}
		if time.Now().After(deadline) {
			network.log.Warn("dropping frame", zap.Stringer("From", p.from), zap.Stringer("To", p.to), zap.Error(err))
			return
		}
		select {
		case <-time.After(retryDelay):
		case <-l.closed:
			return
		case <-network.ctx.Done():
			return
		}
	}
}

// Endpoint is the view of the network from one name. It implements the
// transport a routing session sends through.
type Endpoint struct {
	network *Network
	name    xorname.Name

	mu sync.Mutex
	h  Handler
}

// Name returns the name of the endpoint.
func (endpoint *Endpoint) Name() xorname.Name { return endpoint.name }

// Attach sets the handler receiving the endpoint's links and frames.
func (endpoint *Endpoint) Attach(h Handler) {
	endpoint.mu.Lock()
	defer endpoint.mu.Unlock()
	endpoint.h = h
}

func (endpoint *Endpoint) handler() Handler {
	endpoint.mu.Lock()
	defer endpoint.mu.Unlock()
	return endpoint.h
}

// Send writes frame to the link to to.
func (endpoint *Endpoint) Send(ctx context.Context, to xorname.Name, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return Error.Wrap(err)
	}
	return endpoint.network.send(pair{endpoint.name, to}, frame)
}

// Disconnect drops the link to to.
func (endpoint *Endpoint) Disconnect(to xorname.Name) error {
	return endpoint.network.Disconnect(endpoint.name, to)
}
