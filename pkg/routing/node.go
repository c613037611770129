// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/cache"
	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/quorum"
	"storj.io/routing/pkg/routingtable"
	"storj.io/routing/pkg/xorname"
)

// Node is a routing session of a full member of the network.
type Node struct {
	*session

	table   *routingtable.Table
	acc     *quorum.Accumulator
	history *relayHistory
	cache   cache.Cache

	peers   map[xorname.Name]identity.PublicID
	clients map[xorname.Name]identity.PublicID
	greeted map[xorname.Name]bool
}

// NewNode creates a node session for id. The cache may be nil.
func NewNode(log *zap.Logger, id *identity.FullID, config Config, transport Transport, responses cache.Cache, clk clock.Clock) (*Node, error) {
	s, err := newSession(log, id, config, transport, clk)
	if err != nil {
		return nil, err
	}
	table, err := routingtable.New(id.Public(), config.table(), s.clock)
	if err != nil {
		return nil, InterfaceError.Wrap(err)
	}
	history, err := newRelayHistory(config.RelayHistorySize)
	if err != nil {
		return nil, err
	}
	if responses == nil {
		responses = cache.Noop{}
	}

	node := &Node{
		session: s,
		table:   table,
		history: history,
		cache:   responses,
		peers:   map[xorname.Name]identity.PublicID{},
		clients: map[xorname.Name]identity.PublicID{},
		greeted: map[xorname.Name]bool{},
	}
	node.acc = quorum.New(log.Named("quorum"), config.quorum(), s.clock, node.isMember)
	s.handler = node
	return node, nil
}

func (node *Node) isMember(group, signer xorname.Name) bool {
	return node.table.WouldBeInGroup(group, signer)
}

func (node *Node) router() router {
	return router{self: node.Name(), table: node.table, clients: node.clients}
}

// SendRequest sends req from src to dst and returns the id of the message.
// src is either the node itself or a group the node belongs to.
func (node *Node) SendRequest(ctx context.Context, src, dst authority.Authority, req message.Request) (_ message.ID, err error) {
	defer mon.Task()(&ctx)(&err)
	id := message.NewID()
	return id, node.sendMessage(ctx, message.RoutingMessage{Src: src, Dst: dst, ID: id, Content: req})
}

// SendResponse sends resp from src to dst under id. Members of a group
// answering together must use the same id, by convention the request id
// incremented once.
func (node *Node) SendResponse(ctx context.Context, src, dst authority.Authority, id message.ID, resp message.Response) (err error) {
	defer mon.Task()(&ctx)(&err)
	return node.sendMessage(ctx, message.RoutingMessage{Src: src, Dst: dst, ID: id, Content: resp})
}

func (node *Node) sendMessage(ctx context.Context, msg message.RoutingMessage) error {
	if msg.Src == nil || msg.Dst == nil || msg.Content == nil {
		return InterfaceError.Wrap(ErrAddressing.New("message needs a source, a destination and content"))
	}
	switch src := msg.Src.(type) {
	case authority.ManagedNode:
		if src.XorName != node.Name() {
			return InterfaceError.Wrap(ErrAddressing.New("can not send as %v", src))
		}
	case authority.Client:
		return InterfaceError.Wrap(ErrAddressing.New("a node can not send as a client"))
	}
	if req, ok := msg.Content.(message.Request); ok {
		if err := validateRequest(req); err != nil {
			return InterfaceError.Wrap(err)
		}
	}

	// signing happens on the calling goroutine
	signed := message.NewSignedMessage(msg, node.id)

	var result error
	if err := node.call(ctx, func() { result = node.sendLocal(signed) }); err != nil {
		return err
	}
	return result
}

func (node *Node) sendLocal(signed *message.SignedMessage) error {
	msg := &signed.Message
	if msg.Src.IsGroup() && !node.table.IsClose(msg.Src.Name()) {
		return InterfaceError.Wrap(ErrAddressing.New("not a member of %v", msg.Src))
	}
	node.history.observe(signed)

	next, err := node.router().nextHops(msg.Dst, node.Name())
	if err != nil {
		return RoutingError.Wrap(err)
	}
	node.dispatch(signed, []identity.PublicID{node.PublicID()}, next)
	return nil
}

// CloseGroup returns the close group of name, when the node belongs to it.
func (node *Node) CloseGroup(ctx context.Context, name xorname.Name) (group []identity.PublicID, err error) {
	defer mon.Task()(&ctx)(&err)
	var isClose bool
	err = node.call(ctx, func() {
		isClose = node.table.IsClose(name)
		if isClose {
			group = node.table.ClosestGroup(name)
		}
	})
	if err != nil {
		return nil, err
	}
	if !isClose {
		return nil, RoutingError.Wrap(ErrAddressing.New("not close to %s", name.Short()))
	}
	return group, nil
}

// RoutingTableSnapshot returns the entries of the routing table, nearest first.
func (node *Node) RoutingTableSnapshot(ctx context.Context) (entries []routingtable.Entry, err error) {
	defer mon.Task()(&ctx)(&err)
	err = node.call(ctx, func() {
		for _, peer := range node.table.Peers() {
			entry, _ := node.table.Get(peer.Name)
			entries = append(entries, entry)
		}
	})
	return entries, err
}

// Contacts returns every authenticated node the session is linked to.
func (node *Node) Contacts(ctx context.Context) (contacts []identity.PublicID, err error) {
	defer mon.Task()(&ctx)(&err)
	err = node.call(ctx, func() {
		for _, peer := range node.peers {
			contacts = append(contacts, peer)
		}
	})
	return contacts, err
}

func (node *Node) handle(in interface{}) error {
	switch in := in.(type) {
	case linkUp:
		node.linkUp(in.name)
	case linkDown:
		node.linkDown(in.name)
	case helloIn:
		node.hello(in)
	case routedIn:
		node.routed(in)
	case malformedIn:
		node.reject(message.ZeroID, in.from, RoutingError.Wrap(in.err))
	case callIn:
		in.fn()
		close(in.done)
	}
	return nil
}

func (node *Node) sweep() {
	for _, expired := range node.acc.Expire() {
		node.emit(ConsensusFailed{
			ID:  expired.ID,
			Src: expired.Src,
			Err: RoutingError.Wrap(ErrConsensusTimeout.New("no quorum for %v within %v", expired.ID, node.config.QuorumTimeout)),
		})
	}
}

func (node *Node) greet(name xorname.Name) {
	if node.greeted[name] {
		return
	}
	node.greeted[name] = true
	node.send(name, message.NewHello(node.id, false))
}

func (node *Node) linkUp(name xorname.Name) {
	if node.State() == Bootstrapping {
		node.setState(Connecting)
	}
	node.greet(name)
}

func (node *Node) linkDown(name xorname.Name) {
	delete(node.greeted, name)
	_, wasPeer := node.peers[name]
	_, wasClient := node.clients[name]
	delete(node.peers, name)
	delete(node.clients, name)
	if wasPeer || wasClient {
		node.emit(PeerDisconnected{Name: name})
	}

	result, ok := node.table.Remove(name)
	if !ok {
		return
	}
	node.log.Debug("node lost", zap.Stringer("Name", name))
	node.emit(NodeLost{Name: name})
	if result.Promoted != nil {
		node.emit(NodeAdded{Peer: result.Promoted.ID})
	}
	node.churned(result.GroupChanged)
}

func (node *Node) hello(in helloIn) {
	if in.err == nil && in.hello.PublicID.Name != in.from {
		in.err = ErrIdentity.New("link %s presented identity %v", in.from.Short(), in.hello.PublicID)
	}
	if in.err != nil {
		node.reject(message.ZeroID, in.from, RoutingError.Wrap(in.err))
		node.drop(in.from)
		return
	}

	id := in.hello.PublicID
	if in.hello.IsClient {
		if _, ok := node.clients[id.Name]; ok {
			return
		}
		node.clients[id.Name] = id
		node.emit(PeerConnected{Peer: id, IsClient: true})
		node.greet(id.Name)
		return
	}

	if _, ok := node.peers[id.Name]; ok {
		return
	}
	node.peers[id.Name] = id
	node.emit(PeerConnected{Peer: id})
	node.greet(id.Name)
	// the hello may overtake the link notification
	if node.State() == Bootstrapping {
		node.setState(Connecting)
	}
	node.setState(Connected)

	result, err := node.table.Add(id)
	if err != nil {
		node.log.Warn("unable to add peer", zap.Stringer("Peer", id), zap.Error(err))
		return
	}
	switch result.Outcome {
	case routingtable.Added:
		node.log.Debug("node added", zap.Stringer("Peer", id), zap.Int("Bucket", result.Bucket))
		node.emit(NodeAdded{Peer: id})
		if result.Evicted != nil {
			node.emit(NodeLost{Name: result.Evicted.ID.Name})
		}
		node.churned(result.GroupChanged)
	case routingtable.BucketFull:
		node.log.Debug("bucket full", zap.Stringer("Peer", id), zap.Int("Bucket", result.Bucket))
	}
}

func (node *Node) churned(groupChanged bool) {
	node.acc.Revalidate()
	if groupChanged {
		node.emit(GroupChanged{Members: node.table.OurGroup()})
	}
	node.setConverged(node.table.IsComplete())
}

func (node *Node) routed(in routedIn) {
	signed := in.signed
	msg := &signed.Message

	_, fromPeer := node.peers[in.from]
	client, fromClient := node.clients[in.from]
	if !fromPeer && !fromClient {
		node.reject(msg.ID, in.from, RoutingError.Wrap(ErrIdentity.New("message on unauthenticated link")))
		return
	}
	if len(in.signers) == 0 {
		err := in.err
		if err == nil {
			err = ErrIdentity.New("message carries no signature")
		}
		node.reject(msg.ID, in.from, RoutingError.Wrap(err))
		return
	}
	if in.err != nil {
		node.log.Debug("ignoring invalid signatures", zap.Stringer("ID", msg.ID), zap.Error(in.err))
	}

	if err := checkSource(msg.Src, in.signers); err != nil {
		node.reject(msg.ID, in.from, RoutingError.Wrap(err))
		return
	}
	if fromClient {
		src, ok := msg.Src.(authority.Client)
		if !ok || src.ProxyNodeName != node.Name() || src.PeerID != in.from || src.ClientKey != client.SignKey {
			node.reject(msg.ID, in.from, RoutingError.Wrap(ErrAddressing.New("client %s sent as %v", in.from.Short(), msg.Src)))
			return
		}
	}
	if req, ok := msg.Request(); ok {
		if err := validateRequest(req); err != nil {
			node.reject(msg.ID, in.from, RoutingError.Wrap(err))
			return
		}
	}

	if node.history.observe(signed) {
		mon.Counter("messages_duplicate").Inc(1)
		return
	}
	node.table.Touch(in.from)

	if req, ok := msg.Request(); ok && msg.Dst.IsGroup() && message.Cacheable(req) {
		if resp, ok := node.cache.Get(req); ok && message.SelfValidating(resp) {
			node.answerFromCache(msg, resp)
			return
		}
	}
	if resp, ok := msg.Response(); ok && message.SelfValidating(resp) {
		node.remember(resp)
	}

	next, err := node.router().nextHops(msg.Dst, in.from)
	if err != nil {
		node.reject(msg.ID, in.from, RoutingError.Wrap(err))
		return
	}
	node.dispatch(signed, in.signers, next)
}

// checkSource verifies that a single source signed its own message.
func checkSource(src authority.Authority, signers []identity.PublicID) error {
	switch src := src.(type) {
	case authority.Client:
		for _, signer := range signers {
			if signer.SignKey == src.ClientKey {
				return nil
			}
		}
		return ErrIdentity.New("message from %v is not signed by its key", src)
	case authority.ManagedNode:
		for _, signer := range signers {
			if signer.Name == src.XorName {
				return nil
			}
		}
		return ErrIdentity.New("message from %v is not signed by it", src)
	case nil:
		return ErrAddressing.New("message has no source")
	default:
		return nil
	}
}

func (node *Node) dispatch(signed *message.SignedMessage, signers []identity.PublicID, next hops) {
	mon.Counter("messages_routed").Inc(int64(len(next.peers)))
	for _, peer := range next.peers {
		node.send(peer, message.Routed{Message: signed})
	}
	if next.client != nil {
		if accepted, ok := node.accept(signed, signers); ok {
			node.send(*next.client, message.Routed{Message: accepted})
		}
	}
	if next.local {
		node.deliver(signed, signers)
	}
}

// accept runs group messages through consensus. It returns the aggregated
// message once a quorum of members signed it.
func (node *Node) accept(signed *message.SignedMessage, signers []identity.PublicID) (*message.SignedMessage, bool) {
	msg := &signed.Message
	if !msg.Src.IsGroup() {
		return signed, true
	}
	if resp, ok := msg.Response(); ok && signed.Cached && message.SelfValidating(resp) {
		return signed, true
	}

	result, err := node.acc.Accumulate(msg.ID, msg.Src, signed, signers)
	if err != nil {
		node.reject(msg.ID, node.Name(), RoutingError.Wrap(err))
		return nil, false
	}
	switch result.Status {
	case quorum.Quorum:
		mon.Counter("messages_accepted").Inc(1)
		return result.Message, true
	case quorum.Conflict:
		node.emit(ConsensusFailed{
			ID:  msg.ID,
			Src: msg.Src,
			Err: RoutingError.Wrap(ErrConsensusConflict.New("copy of %v differs from the first one", msg.ID)),
		})
	}
	return nil, false
}

func (node *Node) deliver(signed *message.SignedMessage, signers []identity.PublicID) {
	if req, ok := signed.Message.Request(); ok {
		if err := validateRequest(req); err != nil {
			node.reject(signed.Message.ID, node.Name(), RoutingError.Wrap(err))
			return
		}
	}

	accepted, ok := node.accept(signed, signers)
	if !ok {
		return
	}
	if resp, ok := accepted.Message.Response(); ok {
		node.remember(resp)
		node.emit(ResponseReceived{Message: accepted})
		return
	}
	node.emit(RequestReceived{Message: accepted})
}

// answerFromCache responds to a group read on behalf of the group.
func (node *Node) answerFromCache(req *message.RoutingMessage, resp message.Response) {
	mon.Counter("cache_answers").Inc(1)
	answer := message.NewSignedMessage(message.RoutingMessage{
		Src:     req.Dst,
		Dst:     req.Src,
		ID:      req.ID.Increment(),
		Content: resp,
	}, node.id)
	answer.Cached = true
	node.history.observe(answer)

	next, err := node.router().nextHops(answer.Message.Dst, node.Name())
	if err != nil {
		node.log.Debug("unable to route cached answer", zap.Stringer("ID", answer.Message.ID), zap.Error(err))
		return
	}
	node.dispatch(answer, []identity.PublicID{node.PublicID()}, next)
}

func (node *Node) remember(resp message.Response) {
	if get, ok := resp.(message.GetSuccess); ok {
		node.cache.Put(message.GetRequest{DataID: get.Data.Identifier()}, resp)
	}
}

// validateRequest checks the data a request carries.
func validateRequest(req message.Request) error {
	switch req := req.(type) {
	case message.PutRequest:
		return validateData(req.Data)
	case message.PostRequest:
		return validateData(req.Data)
	case message.DeleteRequest:
		return validateData(req.Data)
	case message.AppendRequest:
		return req.Wrapper.Verify()
	default:
		return nil
	}
}

func validateData(d data.Data) error {
	if d == nil {
		return ErrValidation.New("request carries no data")
	}
	return d.Validate()
}
