// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package authority describes the logical source or destination of a
// routed message.
//
// An Authority is either a single client, a single node, or one of the
// groups of nodes responsible for a name. Groups resolve to the close group
// of their name.
package authority

import (
	"fmt"

	"github.com/zeebo/errs"

	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
)

// ErrAddressing is returned when an authority cannot be resolved or decoded.
var ErrAddressing = errs.Class("addressing error")

// Authority is one of Client, ManagedNode, ClientManager, NaeManager or
// NodeManager.
type Authority interface {
	// Name is the point in the XOR space the authority resolves to.
	Name() xorname.Name
	// IsGroup reports whether the authority is a close group.
	IsGroup() bool
	String() string

	authority()
}

// Client is a single client connected through a proxy node.
type Client struct {
	ClientKey     identity.SignKey
	ProxyNodeName xorname.Name
	PeerID        xorname.Name
}

// ManagedNode is a single node.
type ManagedNode struct{ XorName xorname.Name }

// ClientManager is the group close to a client's name.
type ClientManager struct{ XorName xorname.Name }

// NaeManager is the group close to a data name.
type NaeManager struct{ XorName xorname.Name }

// NodeManager is the group close to a node's name.
type NodeManager struct{ XorName xorname.Name }

func (Client) authority()        {}
func (ManagedNode) authority()   {}
func (ClientManager) authority() {}
func (NaeManager) authority()    {}
func (NodeManager) authority()   {}

// Name returns the name of the client, derived from its key.
func (a Client) Name() xorname.Name { return a.ClientKey.Name() }

// Name implements Authority.
func (a ManagedNode) Name() xorname.Name { return a.XorName }

// Name implements Authority.
func (a ClientManager) Name() xorname.Name { return a.XorName }

// Name implements Authority.
func (a NaeManager) Name() xorname.Name { return a.XorName }

// Name implements Authority.
func (a NodeManager) Name() xorname.Name { return a.XorName }

// IsGroup implements Authority.
func (Client) IsGroup() bool        { return false }
func (ManagedNode) IsGroup() bool   { return false }
func (ClientManager) IsGroup() bool { return true }
func (NaeManager) IsGroup() bool    { return true }
func (NodeManager) IsGroup() bool   { return true }

func (a Client) String() string {
	return fmt.Sprintf("Client(%s via %s)", a.Name().Short(), a.ProxyNodeName.Short())
}
func (a ManagedNode) String() string   { return "ManagedNode(" + a.XorName.Short() + ")" }
func (a ClientManager) String() string { return "ClientManager(" + a.XorName.Short() + ")" }
func (a NaeManager) String() string    { return "NaeManager(" + a.XorName.Short() + ")" }
func (a NodeManager) String() string   { return "NodeManager(" + a.XorName.Short() + ")" }

// IsClient reports whether a is a Client.
func IsClient(a Authority) bool {
	_, ok := a.(Client)
	return ok
}

// Equal compares two authorities, treating nil as equal only to nil.
func Equal(a, b Authority) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// Encode converts a to its wire form.
func Encode(a Authority) *pb.Authority {
	switch a := a.(type) {
	case Client:
		return &pb.Authority{
			Kind:          pb.AuthorityKind_CLIENT,
			ClientKey:     append([]byte(nil), a.ClientKey[:]...),
			ProxyNodeName: a.ProxyNodeName.Bytes(),
			PeerID:        a.PeerID.Bytes(),
		}
	case ManagedNode:
		return &pb.Authority{Kind: pb.AuthorityKind_MANAGED_NODE, Name: a.XorName.Bytes()}
	case ClientManager:
		return &pb.Authority{Kind: pb.AuthorityKind_CLIENT_MANAGER, Name: a.XorName.Bytes()}
	case NaeManager:
		return &pb.Authority{Kind: pb.AuthorityKind_NAE_MANAGER, Name: a.XorName.Bytes()}
	case NodeManager:
		return &pb.Authority{Kind: pb.AuthorityKind_NODE_MANAGER, Name: a.XorName.Bytes()}
	default:
		panic(fmt.Sprintf("unhandled authority %T", a))
	}
}

// Decode converts the wire form into an Authority.
func Decode(m *pb.Authority) (Authority, error) {
	if m == nil {
		return nil, ErrAddressing.New("missing authority")
	}

	if m.Kind == pb.AuthorityKind_CLIENT {
		key, err := identity.SignKeyFromBytes(m.ClientKey)
		if err != nil {
			return nil, ErrAddressing.Wrap(err)
		}
		proxy, err := xorname.FromBytes(m.ProxyNodeName)
		if err != nil {
			return nil, ErrAddressing.Wrap(err)
		}
		peer, err := xorname.FromBytes(m.PeerID)
		if err != nil {
			return nil, ErrAddressing.Wrap(err)
		}
		return Client{ClientKey: key, ProxyNodeName: proxy, PeerID: peer}, nil
	}

	name, err := xorname.FromBytes(m.Name)
	if err != nil {
		return nil, ErrAddressing.Wrap(err)
	}
	switch m.Kind {
	case pb.AuthorityKind_MANAGED_NODE:
		return ManagedNode{XorName: name}, nil
	case pb.AuthorityKind_CLIENT_MANAGER:
		return ClientManager{XorName: name}, nil
	case pb.AuthorityKind_NAE_MANAGER:
		return NaeManager{XorName: name}, nil
	case pb.AuthorityKind_NODE_MANAGER:
		return NodeManager{XorName: name}, nil
	default:
		return nil, ErrAddressing.New("unknown authority kind %v", m.Kind)
	}
}
