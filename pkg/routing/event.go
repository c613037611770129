// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

import (
	"fmt"

	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/xorname"
)

// Event is something a session reports to the layer above. Events of one
// session are delivered in order on its Events channel.
type Event interface {
	fmt.Stringer
	event()
}

// StateChanged reports a lifecycle transition or a change of convergence.
type StateChanged struct {
	State State
	// Converged is set once the routing table can form a full close group.
	Converged bool
}

// PeerConnected reports an authenticated link to a node or client.
type PeerConnected struct {
	Peer     identity.PublicID
	IsClient bool
}

// PeerDisconnected reports a dropped link.
type PeerDisconnected struct {
	Name xorname.Name
}

// NodeAdded reports a node entering the routing table.
type NodeAdded struct {
	Peer identity.PublicID
}

// NodeLost reports a node leaving the routing table.
type NodeLost struct {
	Name xorname.Name
}

// GroupChanged reports a new close group around the local node.
type GroupChanged struct {
	Members []identity.PublicID
}

// RequestReceived delivers an accepted request.
type RequestReceived struct {
	Message *message.SignedMessage
}

// ResponseReceived delivers an accepted response.
type ResponseReceived struct {
	Message *message.SignedMessage
}

// MessageRejected reports an inbound message that failed validation.
type MessageRejected struct {
	ID   message.ID
	From xorname.Name
	Err  error
}

// ConsensusFailed reports a group message that conflicted or timed out.
type ConsensusFailed struct {
	ID  message.ID
	Src authority.Authority
	Err error
}

// SessionTerminated is the final event of a session.
type SessionTerminated struct {
	Err error
}

func (StateChanged) event()      {}
func (PeerConnected) event()     {}
func (PeerDisconnected) event()  {}
func (NodeAdded) event()         {}
func (NodeLost) event()          {}
func (GroupChanged) event()      {}
func (RequestReceived) event()   {}
func (ResponseReceived) event()  {}
func (MessageRejected) event()   {}
func (ConsensusFailed) event()   {}
func (SessionTerminated) event() {}

func (e StateChanged) String() string {
	return fmt.Sprintf("StateChanged(%v, converged=%t)", e.State, e.Converged)
}
func (e PeerConnected) String() string {
	return fmt.Sprintf("PeerConnected(%v, client=%t)", e.Peer, e.IsClient)
}
func (e PeerDisconnected) String() string { return "PeerDisconnected(" + e.Name.Short() + ")" }
func (e NodeAdded) String() string        { return "NodeAdded(" + e.Peer.String() + ")" }
func (e NodeLost) String() string         { return "NodeLost(" + e.Name.Short() + ")" }
func (e GroupChanged) String() string     { return fmt.Sprintf("GroupChanged(%v)", e.Members) }
func (e RequestReceived) String() string {
	return "RequestReceived(" + e.Message.Message.String() + ")"
}
func (e ResponseReceived) String() string {
	return "ResponseReceived(" + e.Message.Message.String() + ")"
}
func (e MessageRejected) String() string {
	return fmt.Sprintf("MessageRejected(%v from %s: %v)", e.ID, e.From.Short(), e.Err)
}
func (e ConsensusFailed) String() string {
	return fmt.Sprintf("ConsensusFailed(%v from %v: %v)", e.ID, e.Src, e.Err)
}
func (e SessionTerminated) String() string { return fmt.Sprintf("SessionTerminated(%v)", e.Err) }
