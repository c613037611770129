// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/cache"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/quorum"
	"storj.io/routing/pkg/xorname"
)

// Client is a routing session that reaches the network through a single
// proxy node. The proxy collects the member copies of group messages for
// the client and passes them on once they reach a quorum, so the client
// only checks that enough distinct members signed.
type Client struct {
	*session

	acc     *quorum.Accumulator
	history *relayHistory
	cache   cache.Cache

	proxy   *identity.PublicID
	greeted map[xorname.Name]bool
}

// NewClient creates a client session for id. The cache may be nil.
func NewClient(log *zap.Logger, id *identity.FullID, config Config, transport Transport, responses cache.Cache, clk clock.Clock) (*Client, error) {
	s, err := newSession(log, id, config, transport, clk)
	if err != nil {
		return nil, err
	}
	history, err := newRelayHistory(config.RelayHistorySize)
	if err != nil {
		return nil, err
	}
	if responses == nil {
		responses = cache.Noop{}
	}

	client := &Client{
		session: s,
		history: history,
		cache:   responses,
		greeted: map[xorname.Name]bool{},
	}
	client.acc = quorum.New(log.Named("quorum"), config.quorum(), s.clock, func(group, signer xorname.Name) bool {
		return signer != client.Name()
	})
	s.handler = client
	return client, nil
}

// Authority returns the authority the client sends as.
func (client *Client) Authority(ctx context.Context) (_ authority.Client, err error) {
	defer mon.Task()(&ctx)(&err)
	var src authority.Client
	var connected bool
	err = client.call(ctx, func() {
		src, connected = client.authority()
	})
	if err != nil {
		return authority.Client{}, err
	}
	if !connected {
		return authority.Client{}, InterfaceError.Wrap(ErrState.New("client has no proxy"))
	}
	return src, nil
}

func (client *Client) authority() (authority.Client, bool) {
	if client.proxy == nil {
		return authority.Client{}, false
	}
	return authority.Client{
		ClientKey:     client.PublicID().SignKey,
		ProxyNodeName: client.proxy.Name,
		PeerID:        client.Name(),
	}, true
}

// SendRequest sends req to dst through the proxy. A cacheable request that
// the cache can answer is not sent; its response is delivered as a cached
// ResponseReceived event instead.
func (client *Client) SendRequest(ctx context.Context, dst authority.Authority, req message.Request) (_ message.ID, err error) {
	defer mon.Task()(&ctx)(&err)
	if dst == nil || req == nil {
		return message.ZeroID, InterfaceError.Wrap(ErrAddressing.New("request needs a destination and content"))
	}
	if err := validateRequest(req); err != nil {
		return message.ZeroID, InterfaceError.Wrap(err)
	}

	src, err := client.Authority(ctx)
	if err != nil {
		return message.ZeroID, err
	}

	id := message.NewID()
	signed := message.NewSignedMessage(message.RoutingMessage{Src: src, Dst: dst, ID: id, Content: req}, client.id)

	var result error
	if err := client.call(ctx, func() { result = client.sendLocal(signed) }); err != nil {
		return message.ZeroID, err
	}
	return id, result
}

func (client *Client) sendLocal(signed *message.SignedMessage) error {
	if client.proxy == nil {
		return InterfaceError.Wrap(ErrState.New("client has no proxy"))
	}
	msg := &signed.Message

	if req, ok := msg.Request(); ok && message.Cacheable(req) {
		if resp, ok := client.cache.Get(req); ok {
			mon.Counter("cache_answers").Inc(1)
			client.emit(ResponseReceived{Message: &message.SignedMessage{
				Message: message.RoutingMessage{
					Src:     msg.Dst,
					Dst:     msg.Src,
					ID:      msg.ID.Increment(),
					Content: resp,
				},
				Cached: true,
			}})
			return nil
		}
	}

	client.history.observe(signed)
	client.send(client.proxy.Name, message.Routed{Message: signed})
	return nil
}

func (client *Client) handle(in interface{}) error {
	switch in := in.(type) {
	case linkUp:
		if client.State() == Bootstrapping {
			client.setState(Connecting)
		}
		client.greet(in.name)
	case linkDown:
		delete(client.greeted, in.name)
		if client.proxy != nil && client.proxy.Name == in.name {
			client.emit(PeerDisconnected{Name: in.name})
			return RoutingError.Wrap(ErrState.New("lost proxy %s", in.name.Short()))
		}
	case helloIn:
		client.hello(in)
	case routedIn:
		client.routed(in)
	case malformedIn:
		client.reject(message.ZeroID, in.from, RoutingError.Wrap(in.err))
	case callIn:
		in.fn()
		close(in.done)
	}
	return nil
}

func (client *Client) sweep() {
	for _, expired := range client.acc.Expire() {
		client.emit(ConsensusFailed{
			ID:  expired.ID,
			Src: expired.Src,
			Err: RoutingError.Wrap(ErrConsensusTimeout.New("no quorum for %v within %v", expired.ID, client.config.QuorumTimeout)),
		})
	}
}

func (client *Client) greet(name xorname.Name) {
	if client.greeted[name] {
		return
	}
	client.greeted[name] = true
	client.send(name, message.NewHello(client.id, true))
}

func (client *Client) hello(in helloIn) {
	if in.err == nil && in.hello.PublicID.Name != in.from {
		in.err = ErrIdentity.New("link %s presented identity %v", in.from.Short(), in.hello.PublicID)
	}
	if in.err == nil && in.hello.IsClient {
		in.err = ErrIdentity.New("link %s is another client", in.from.Short())
	}
	if in.err != nil {
		client.reject(message.ZeroID, in.from, RoutingError.Wrap(in.err))
		client.drop(in.from)
		return
	}
	if client.proxy != nil {
		if client.proxy.Name != in.from {
			client.log.Debug("ignoring second proxy", zap.Stringer("Name", in.from))
			client.drop(in.from)
		}
		return
	}

	proxy := in.hello.PublicID
	client.proxy = &proxy
	client.greet(proxy.Name)
	client.emit(PeerConnected{Peer: proxy})
	if client.State() == Bootstrapping {
		client.setState(Connecting)
	}
	client.setState(Connected)
}

func (client *Client) routed(in routedIn) {
	signed := in.signed
	msg := &signed.Message

	if client.proxy == nil || in.from != client.proxy.Name {
		client.reject(msg.ID, in.from, RoutingError.Wrap(ErrIdentity.New("message on unauthenticated link")))
		return
	}
	if dst, ok := msg.Dst.(authority.Client); !ok || dst.PeerID != client.Name() {
		client.reject(msg.ID, in.from, RoutingError.Wrap(ErrAddressing.New("message for %v", msg.Dst)))
		return
	}
	if err := checkSource(msg.Src, in.signers); err != nil && !signed.Cached {
		client.reject(msg.ID, in.from, RoutingError.Wrap(err))
		return
	}
	if client.history.observe(signed) {
		return
	}

	resp, isResponse := msg.Response()
	accepted := signed
	switch {
	case isResponse && signed.Cached:
		if !message.SelfValidating(resp) {
			client.reject(msg.ID, in.from, RoutingError.Wrap(ErrValidation.New("cached response does not validate itself")))
			return
		}
	case msg.Src.IsGroup():
		result, err := client.acc.Accumulate(msg.ID, msg.Src, signed, in.signers)
		if err != nil {
			client.reject(msg.ID, in.from, RoutingError.Wrap(err))
			return
		}
		switch result.Status {
		case quorum.Quorum:
			accepted = result.Message
		case quorum.Conflict:
			client.emit(ConsensusFailed{
				ID:  msg.ID,
				Src: msg.Src,
				Err: RoutingError.Wrap(ErrConsensusConflict.New("copy of %v differs from the first one", msg.ID)),
			})
			return
		default:
			return
		}
	case len(in.signers) == 0:
		client.reject(msg.ID, in.from, RoutingError.Wrap(ErrIdentity.New("message carries no valid signature")))
		return
	}

	if isResponse {
		if get, ok := resp.(message.GetSuccess); ok {
			client.cache.Put(message.GetRequest{DataID: get.Data.Identifier()}, resp)
		}
		client.emit(ResponseReceived{Message: accepted})
		return
	}
	client.emit(RequestReceived{Message: accepted})
}
