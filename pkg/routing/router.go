// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

import (
	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/routingtable"
	"storj.io/routing/pkg/xorname"
)

// hops is where a message goes next.
type hops struct {
	// local is set when the message is for this node.
	local bool
	// client is the connected client the message is for, if any.
	client *xorname.Name
	// peers are the nodes the message is forwarded to.
	peers []xorname.Name
}

// router resolves destinations against the routing table.
//
// Messages are only ever forwarded to peers strictly closer to the target
// than the local node, so every hop makes progress and routes terminate.
// Distinct names never share a distance to a target, so the closest peer is
// always unique; comparisons break ties by byte order for completeness.
type router struct {
	self    xorname.Name
	table   *routingtable.Table
	clients map[xorname.Name]identity.PublicID
}

// nextHops returns the hops for a message to dst that arrived from the
// link from. Locally originated messages use the local name as from.
func (r router) nextHops(dst authority.Authority, from xorname.Name) (hops, error) {
	switch dst := dst.(type) {
	case authority.Client:
		if dst.ProxyNodeName == r.self {
			if _, ok := r.clients[dst.PeerID]; !ok {
				return hops{}, ErrAddressing.New("client %s is not connected", dst.PeerID.Short())
			}
			peer := dst.PeerID
			return hops{client: &peer}, nil
		}
		return r.single(dst.ProxyNodeName, from)
	case authority.ManagedNode:
		if dst.XorName == r.self {
			return hops{local: true}, nil
		}
		return r.single(dst.XorName, from)
	case authority.ClientManager, authority.NaeManager, authority.NodeManager:
		return r.group(dst.Name(), from)
	default:
		return hops{}, ErrAddressing.New("unroutable destination %v", dst)
	}
}

func (r router) single(target, from xorname.Name) (hops, error) {
	if target != from && r.table.Contains(target) {
		return hops{peers: []xorname.Name{target}}, nil
	}
	return r.closer(target, from)
}

func (r router) closer(target, from xorname.Name) (hops, error) {
	hop, ok := r.table.NextHop(target, map[xorname.Name]struct{}{from: {}})
	if !ok {
		return hops{}, ErrAddressing.New("no route to %s", target.Short())
	}
	return hops{peers: []xorname.Name{hop.Name}}, nil
}

// group delivers locally when the local node is part of the close group of
// target. A message entering the group from outside is relayed to the other
// members, so that every member handles it.
func (r router) group(target, from xorname.Name) (hops, error) {
	if !r.table.IsClose(target) {
		return r.closer(target, from)
	}

	result := hops{local: true}
	_, fromClient := r.clients[from]
	if from != r.self && !fromClient && r.table.WouldBeInGroup(target, from) {
		return result, nil
	}
	for _, member := range r.table.ClosestGroup(target) {
		if member.Name != r.self && member.Name != from {
			result.peers = append(result.peers, member.Name)
		}
	}
	return result, nil
}
