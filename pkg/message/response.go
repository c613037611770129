// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package message

import (
	"fmt"

	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/pb"
)

// Response is the success or failure answer to one kind of Request.
type Response interface {
	Content
	// Success reports whether the request succeeded.
	Success() bool
	response()
}

// GetSuccess returns the requested data.
type GetSuccess struct{ Data data.Data }

// GetFailure reports that fetching DataID failed.
type GetFailure struct {
	DataID data.Identifier
	Error  ClientError
}

// PutSuccess confirms a PutRequest.
type PutSuccess struct{ DataID data.Identifier }

// PutFailure rejects a PutRequest.
type PutFailure struct {
	DataID data.Identifier
	Error  ClientError
}

// PostSuccess confirms a PostRequest.
type PostSuccess struct{ DataID data.Identifier }

// PostFailure rejects a PostRequest.
type PostFailure struct {
	DataID data.Identifier
	Error  ClientError
}

// DeleteSuccess confirms a DeleteRequest.
type DeleteSuccess struct{ DataID data.Identifier }

// DeleteFailure rejects a DeleteRequest.
type DeleteFailure struct {
	DataID data.Identifier
	Error  ClientError
}

// AppendSuccess confirms an AppendRequest.
type AppendSuccess struct{ DataID data.Identifier }

// AppendFailure rejects an AppendRequest.
type AppendFailure struct {
	DataID data.Identifier
	Error  ClientError
}

// GetAccountInfoSuccess reports account usage.
type GetAccountInfoSuccess struct {
	DataStored     uint64
	SpaceAvailable uint64
}

// GetAccountInfoFailure rejects a GetAccountInfoRequest.
type GetAccountInfoFailure struct{ Error ClientError }

func (GetSuccess) content()            {}
func (GetFailure) content()            {}
func (PutSuccess) content()            {}
func (PutFailure) content()            {}
func (PostSuccess) content()           {}
func (PostFailure) content()           {}
func (DeleteSuccess) content()         {}
func (DeleteFailure) content()         {}
func (AppendSuccess) content()         {}
func (AppendFailure) content()         {}
func (GetAccountInfoSuccess) content() {}
func (GetAccountInfoFailure) content() {}

func (GetSuccess) response()            {}
func (GetFailure) response()            {}
func (PutSuccess) response()            {}
func (PutFailure) response()            {}
func (PostSuccess) response()           {}
func (PostFailure) response()           {}
func (DeleteSuccess) response()         {}
func (DeleteFailure) response()         {}
func (AppendSuccess) response()         {}
func (AppendFailure) response()         {}
func (GetAccountInfoSuccess) response() {}
func (GetAccountInfoFailure) response() {}

// Success implements Response.
func (GetSuccess) Success() bool            { return true }
func (GetFailure) Success() bool            { return false }
func (PutSuccess) Success() bool            { return true }
func (PutFailure) Success() bool            { return false }
func (PostSuccess) Success() bool           { return true }
func (PostFailure) Success() bool           { return false }
func (DeleteSuccess) Success() bool         { return true }
func (DeleteFailure) Success() bool         { return false }
func (AppendSuccess) Success() bool         { return true }
func (AppendFailure) Success() bool         { return false }
func (GetAccountInfoSuccess) Success() bool { return true }
func (GetAccountInfoFailure) Success() bool { return false }

func responseToPB(resp Response) *pb.Response {
	failure := func(kind pb.ResponseKind, id data.Identifier, e ClientError) *pb.Response {
		return &pb.Response{Kind: kind, DataID: data.IdentifierToPB(id), Error: clientErrorToPB(e)}
	}
	success := func(kind pb.ResponseKind, id data.Identifier) *pb.Response {
		return &pb.Response{Kind: kind, DataID: data.IdentifierToPB(id)}
	}

	switch resp := resp.(type) {
	case GetSuccess:
		return &pb.Response{Kind: pb.ResponseKind_GET_SUCCESS, Data: data.ToPB(resp.Data)}
	case GetFailure:
		return failure(pb.ResponseKind_GET_FAILURE, resp.DataID, resp.Error)
	case PutSuccess:
		return success(pb.ResponseKind_PUT_SUCCESS, resp.DataID)
	case PutFailure:
		return failure(pb.ResponseKind_PUT_FAILURE, resp.DataID, resp.Error)
	case PostSuccess:
		return success(pb.ResponseKind_POST_SUCCESS, resp.DataID)
	case PostFailure:
		return failure(pb.ResponseKind_POST_FAILURE, resp.DataID, resp.Error)
	case DeleteSuccess:
		return success(pb.ResponseKind_DELETE_SUCCESS, resp.DataID)
	case DeleteFailure:
		return failure(pb.ResponseKind_DELETE_FAILURE, resp.DataID, resp.Error)
	case AppendSuccess:
		return success(pb.ResponseKind_APPEND_SUCCESS, resp.DataID)
	case AppendFailure:
		return failure(pb.ResponseKind_APPEND_FAILURE, resp.DataID, resp.Error)
	case GetAccountInfoSuccess:
		return &pb.Response{Kind: pb.ResponseKind_GET_ACCOUNT_INFO_SUCCESS, DataStored: resp.DataStored, SpaceAvailable: resp.SpaceAvailable}
	case GetAccountInfoFailure:
		return &pb.Response{Kind: pb.ResponseKind_GET_ACCOUNT_INFO_FAILURE, Error: clientErrorToPB(resp.Error)}
	default:
		panic(fmt.Sprintf("unhandled response %T", resp))
	}
}

func responseFromPB(m *pb.Response) (Response, error) {
	switch m.Kind {
	case pb.ResponseKind_GET_SUCCESS:
		d, err := data.FromPB(m.Data)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		return GetSuccess{Data: d}, nil
	case pb.ResponseKind_GET_ACCOUNT_INFO_SUCCESS:
		return GetAccountInfoSuccess{DataStored: m.DataStored, SpaceAvailable: m.SpaceAvailable}, nil
	case pb.ResponseKind_GET_ACCOUNT_INFO_FAILURE:
		return GetAccountInfoFailure{Error: clientErrorFromPB(m.Error)}, nil
	}

	id, err := data.IdentifierFromPB(m.DataID)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	clientErr := clientErrorFromPB(m.Error)

	switch m.Kind {
	case pb.ResponseKind_GET_FAILURE:
		return GetFailure{DataID: id, Error: clientErr}, nil
	case pb.ResponseKind_PUT_SUCCESS:
		return PutSuccess{DataID: id}, nil
	case pb.ResponseKind_PUT_FAILURE:
		return PutFailure{DataID: id, Error: clientErr}, nil
	case pb.ResponseKind_POST_SUCCESS:
		return PostSuccess{DataID: id}, nil
	case pb.ResponseKind_POST_FAILURE:
		return PostFailure{DataID: id, Error: clientErr}, nil
	case pb.ResponseKind_DELETE_SUCCESS:
		return DeleteSuccess{DataID: id}, nil
	case pb.ResponseKind_DELETE_FAILURE:
		return DeleteFailure{DataID: id, Error: clientErr}, nil
	case pb.ResponseKind_APPEND_SUCCESS:
		return AppendSuccess{DataID: id}, nil
	case pb.ResponseKind_APPEND_FAILURE:
		return AppendFailure{DataID: id, Error: clientErr}, nil
	default:
		return nil, Error.New("unknown response kind %v", m.Kind)
	}
}
