// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package message

import (
	"fmt"

	proto "github.com/gogo/protobuf/proto"

	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
)

// RoutingMessage is the routed part of an envelope.
type RoutingMessage struct {
	Src     authority.Authority
	Dst     authority.Authority
	ID      ID
	Content Content
}

// Request returns the content as a Request.
func (msg *RoutingMessage) Request() (Request, bool) {
	req, ok := msg.Content.(Request)
	return req, ok
}

// Response returns the content as a Response.
func (msg *RoutingMessage) Response() (Response, bool) {
	resp, ok := msg.Content.(Response)
	return resp, ok
}

func (msg *RoutingMessage) String() string {
	return fmt.Sprintf("%T %s from %s to %s", msg.Content, msg.ID, msg.Src, msg.Dst)
}

// Bytes is the canonical encoding of msg, the input to member signatures.
func (msg *RoutingMessage) Bytes() []byte {
	data, err := proto.Marshal(routingToPB(msg))
	if err != nil {
		panic(err)
	}
	return data
}

// Digest identifies the exact content of msg. Copies of a group message
// signed by different members share the digest.
func (msg *RoutingMessage) Digest() xorname.Name {
	return xorname.Hash(msg.Bytes())
}

func routingToPB(msg *RoutingMessage) *pb.RoutingMessage {
	m := &pb.RoutingMessage{
		Src: authority.Encode(msg.Src),
		Dst: authority.Encode(msg.Dst),
		ID:  append([]byte(nil), msg.ID[:]...),
	}
	switch content := msg.Content.(type) {
	case Request:
		m.Request = requestToPB(content)
	case Response:
		m.Response = responseToPB(content)
	default:
		panic(fmt.Sprintf("unhandled content %T", content))
	}
	return m
}

func routingFromPB(m *pb.RoutingMessage) (*RoutingMessage, error) {
	if m == nil {
		return nil, Error.New("missing routing message")
	}
	src, err := authority.Decode(m.Src)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	dst, err := authority.Decode(m.Dst)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	id, err := IDFromBytes(m.ID)
	if err != nil {
		return nil, err
	}

	msg := &RoutingMessage{Src: src, Dst: dst, ID: id}
	switch {
	case m.Request != nil && m.Response == nil:
		msg.Content, err = requestFromPB(m.Request)
	case m.Response != nil && m.Request == nil:
		msg.Content, err = responseFromPB(m.Response)
	default:
		return nil, Error.New("message must hold exactly one of request and response")
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MemberSignature is one signature over a RoutingMessage.
type MemberSignature struct {
	Signer    identity.PublicID
	Signature []byte
}

// SignedMessage is a RoutingMessage with the signatures vouching for it.
// Single sources sign once; group sources collect one signature per member.
type SignedMessage struct {
	Message    RoutingMessage
	Signatures []MemberSignature
	// Cached is set when the content was answered from a cache rather
	// than by its source.
	Cached bool
}

// NewSignedMessage signs msg by id.
func NewSignedMessage(msg RoutingMessage, id *identity.FullID) *SignedMessage {
	signed := &SignedMessage{Message: msg}
	signed.Sign(id)
	return signed
}

// Sign adds the signature of id, replacing an earlier one by id.
func (signed *SignedMessage) Sign(id *identity.FullID) {
	public := id.Public()
	sig := id.Sign(signed.Message.Bytes())
	for i := range signed.Signatures {
		if signed.Signatures[i].Signer.Name == public.Name {
			signed.Signatures[i] = MemberSignature{Signer: public, Signature: sig}
			return
		}
	}
	signed.Signatures = append(signed.Signatures, MemberSignature{Signer: public, Signature: sig})
}

// Merge adds the signatures of other, which must carry the same message.
func (signed *SignedMessage) Merge(other *SignedMessage) error {
	if signed.Message.Digest() != other.Message.Digest() {
		return Error.New("can not merge signatures of different messages")
	}
	known := map[xorname.Name]bool{}
	for _, sig := range signed.Signatures {
		known[sig.Signer.Name] = true
	}
	for _, sig := range other.Signatures {
		if !known[sig.Signer.Name] {
			known[sig.Signer.Name] = true
			signed.Signatures = append(signed.Signatures, sig)
		}
	}
	return nil
}

// Signers returns the names of all claimed signers.
func (signed *SignedMessage) Signers() []xorname.Name {
	names := make([]xorname.Name, 0, len(signed.Signatures))
	for _, sig := range signed.Signatures {
		names = append(names, sig.Signer.Name)
	}
	return names
}

// VerifiedSigners checks every signature and returns the distinct signers
// whose signature is valid. The error describes the invalid ones.
func (signed *SignedMessage) VerifiedSigners() ([]identity.PublicID, error) {
	msg := signed.Message.Bytes()

	var invalid []string
	seen := map[xorname.Name]bool{}
	var valid []identity.PublicID
	for _, sig := range signed.Signatures {
		if err := sig.Signer.Validate(); err != nil {
			invalid = append(invalid, sig.Signer.String())
			continue
		}
		if !identity.Verify(sig.Signer, msg, sig.Signature) {
			invalid = append(invalid, sig.Signer.String())
			continue
		}
		if seen[sig.Signer.Name] {
			continue
		}
		seen[sig.Signer.Name] = true
		valid = append(valid, sig.Signer)
	}
	if len(invalid) > 0 {
		return valid, identity.ErrIdentity.New("invalid signatures by %v", invalid)
	}
	return valid, nil
}

func signedToPB(signed *SignedMessage) *pb.SignedMessage {
	m := &pb.SignedMessage{Message: routingToPB(&signed.Message), Cached: signed.Cached}
	for _, sig := range signed.Signatures {
		m.Signatures = append(m.Signatures, &pb.MemberSignature{Signer: sig.Signer.ToPB(), Signature: sig.Signature})
	}
	return m
}

func signedFromPB(m *pb.SignedMessage) (*SignedMessage, error) {
	if m == nil {
		return nil, Error.New("missing signed message")
	}
	msg, err := routingFromPB(m.Message)
	if err != nil {
		return nil, err
	}
	signed := &SignedMessage{Message: *msg, Cached: m.Cached}
	for _, sig := range m.Signatures {
		signer, err := identity.PublicIDFromPB(sig.Signer)
		if err != nil {
			return nil, err
		}
		signed.Signatures = append(signed.Signatures, MemberSignature{Signer: signer, Signature: sig.Signature})
	}
	return signed, nil
}
