// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package message

import (
	"fmt"

	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/pb"
)

// Frame is one unit exchanged over a connection: a Hello or a Routed
// message.
type Frame interface {
	frame()
}

// Hello introduces the sender of a connection and proves it holds the
// private key of PublicID.
type Hello struct {
	PublicID  identity.PublicID
	IsClient  bool
	Signature []byte
}

// Routed carries a signed message.
type Routed struct {
	Message *SignedMessage
}

func (Hello) frame()  {}
func (Routed) frame() {}

func helloBytes(id identity.PublicID, isClient bool) []byte {
	m := &pb.Hello{PublicID: id.ToPB(), IsClient: isClient}
	data, err := pb.Marshal(m)
	if err != nil {
		panic(err)
	}
	return data
}

// NewHello creates a Hello signed by id.
func NewHello(id *identity.FullID, isClient bool) Hello {
	return Hello{
		PublicID:  id.Public(),
		IsClient:  isClient,
		Signature: id.Sign(helloBytes(id.Public(), isClient)),
	}
}

// Verify checks the name binding and the signature.
func (hello Hello) Verify() error {
	if err := hello.PublicID.Validate(); err != nil {
		return err
	}
	if !identity.Verify(hello.PublicID, helloBytes(hello.PublicID, hello.IsClient), hello.Signature) {
		return identity.ErrIdentity.New("invalid hello signature from %s", hello.PublicID)
	}
	return nil
}

// EncodeFrame serializes frame.
func EncodeFrame(frame Frame) ([]byte, error) {
	var m *pb.Frame
	switch frame := frame.(type) {
	case Hello:
		m = &pb.Frame{Kind: pb.FrameKind_HELLO, Hello: &pb.Hello{
			PublicID:  frame.PublicID.ToPB(),
			IsClient:  frame.IsClient,
			Signature: frame.Signature,
		}}
	case Routed:
		m = &pb.Frame{Kind: pb.FrameKind_ROUTED, Routed: signedToPB(frame.Message)}
	default:
		panic(fmt.Sprintf("unhandled frame %T", frame))
	}
	data, err := pb.Marshal(m)
	return data, Error.Wrap(err)
}

// DecodeFrame deserializes a frame. Signer identities are validated;
// message signatures are not.
func DecodeFrame(buf []byte) (Frame, error) {
	var m pb.Frame
	if err := pb.Unmarshal(buf, &m); err != nil {
		return nil, Error.Wrap(err)
	}
	switch m.Kind {
	case pb.FrameKind_HELLO:
		if m.Hello == nil {
			break
		}
		id, err := identity.PublicIDFromPB(m.Hello.PublicID)
		if err != nil {
			return nil, err
		}
		return Hello{PublicID: id, IsClient: m.Hello.IsClient, Signature: m.Hello.Signature}, nil
	case pb.FrameKind_ROUTED:
		signed, err := signedFromPB(m.Routed)
		if err != nil {
			return nil, err
		}
		return Routed{Message: signed}, nil
	}
	return nil, Error.New("malformed %v frame", m.Kind)
}
