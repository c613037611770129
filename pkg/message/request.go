// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package message

import (
	"fmt"

	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
)

// Content is either a Request or a Response.
type Content interface {
	content()
}

// Request is one of GetRequest, PutRequest, PostRequest, DeleteRequest,
// AppendRequest, GetAccountInfoRequest or RefreshRequest.
type Request interface {
	Content
	request()
}

// GetRequest asks for the data identified by DataID.
type GetRequest struct{ DataID data.Identifier }

// PutRequest stores new data.
type PutRequest struct{ Data data.Data }

// PostRequest replaces data with a successor.
type PostRequest struct{ Data data.Data }

// DeleteRequest removes data, signed like a successor.
type DeleteRequest struct{ Data data.Data }

// AppendRequest appends an item to appendable data.
type AppendRequest struct{ Wrapper data.AppendWrapper }

// GetAccountInfoRequest asks the client managers for account usage.
type GetAccountInfoRequest struct{}

// RefreshRequest carries group state between members after churn.
type RefreshRequest struct {
	TypeTag uint64
	Payload []byte
}

func (GetRequest) content()            {}
func (PutRequest) content()            {}
func (PostRequest) content()           {}
func (DeleteRequest) content()         {}
func (AppendRequest) content()         {}
func (GetAccountInfoRequest) content() {}
func (RefreshRequest) content()        {}

func (GetRequest) request()            {}
func (PutRequest) request()            {}
func (PostRequest) request()           {}
func (DeleteRequest) request()         {}
func (AppendRequest) request()         {}
func (GetAccountInfoRequest) request() {}
func (RefreshRequest) request()        {}

// Target returns the name a request is about, when it has one.
func Target(req Request) (xorname.Name, bool) {
	switch req := req.(type) {
	case GetRequest:
		return req.DataID.Name, true
	case PutRequest:
		return req.Data.Name(), true
	case PostRequest:
		return req.Data.Name(), true
	case DeleteRequest:
		return req.Data.Name(), true
	case AppendRequest:
		return req.Wrapper.AppendTo, true
	case GetAccountInfoRequest, RefreshRequest:
		return xorname.Name{}, false
	default:
		panic(fmt.Sprintf("unhandled request %T", req))
	}
}

func requestToPB(req Request) *pb.Request {
	switch req := req.(type) {
	case GetRequest:
		return &pb.Request{Kind: pb.RequestKind_GET, DataID: data.IdentifierToPB(req.DataID)}
	case PutRequest:
		return &pb.Request{Kind: pb.RequestKind_PUT, Data: data.ToPB(req.Data)}
	case PostRequest:
		return &pb.Request{Kind: pb.RequestKind_POST, Data: data.ToPB(req.Data)}
	case DeleteRequest:
		return &pb.Request{Kind: pb.RequestKind_DELETE, Data: data.ToPB(req.Data)}
	case AppendRequest:
		return &pb.Request{Kind: pb.RequestKind_APPEND, Wrapper: data.WrapperToPB(&req.Wrapper)}
	case GetAccountInfoRequest:
		return &pb.Request{Kind: pb.RequestKind_GET_ACCOUNT_INFO}
	case RefreshRequest:
		return &pb.Request{Kind: pb.RequestKind_REFRESH, TypeTag: req.TypeTag, Payload: req.Payload}
	default:
		panic(fmt.Sprintf("unhandled request %T", req))
	}
}

func requestFromPB(m *pb.Request) (Request, error) {
	switch m.Kind {
	case pb.RequestKind_GET:
		id, err := data.IdentifierFromPB(m.DataID)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		return GetRequest{DataID: id}, nil
	case pb.RequestKind_PUT, pb.RequestKind_POST, pb.RequestKind_DELETE:
		d, err := data.FromPB(m.Data)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		switch m.Kind {
		case pb.RequestKind_PUT:
			return PutRequest{Data: d}, nil
		case pb.RequestKind_POST:
			return PostRequest{Data: d}, nil
		default:
			return DeleteRequest{Data: d}, nil
		}
	case pb.RequestKind_APPEND:
		w, err := data.WrapperFromPB(m.Wrapper)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		return AppendRequest{Wrapper: w}, nil
	case pb.RequestKind_GET_ACCOUNT_INFO:
		return GetAccountInfoRequest{}, nil
	case pb.RequestKind_REFRESH:
		return RefreshRequest{TypeTag: m.TypeTag, Payload: m.Payload}, nil
	default:
		return nil, Error.New("unknown request kind %v", m.Kind)
	}
}
