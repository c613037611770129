// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package message

import (
	"errors"

	"github.com/zeebo/errs"

	"storj.io/routing/pkg/pb"
)

// ErrClient wraps client errors returned to callers as Go errors.
var ErrClient = errs.Class("client error")

// ClientErrorCode categorizes failures reported to clients.
type ClientErrorCode int

// Client error codes.
const (
	NetworkOther     = ClientErrorCode(pb.ClientErrorCode_NETWORK_OTHER)
	NoSuchData       = ClientErrorCode(pb.ClientErrorCode_NO_SUCH_DATA)
	DataExists       = ClientErrorCode(pb.ClientErrorCode_DATA_EXISTS)
	LowBalance       = ClientErrorCode(pb.ClientErrorCode_LOW_BALANCE)
	NoSuchAccount    = ClientErrorCode(pb.ClientErrorCode_NO_SUCH_ACCOUNT)
	AccessDenied     = ClientErrorCode(pb.ClientErrorCode_ACCESS_DENIED)
	InvalidOperation = ClientErrorCode(pb.ClientErrorCode_INVALID_OPERATION)
	InvalidSuccessor = ClientErrorCode(pb.ClientErrorCode_INVALID_SUCCESSOR)
	LimitExceeded    = ClientErrorCode(pb.ClientErrorCode_LIMIT_EXCEEDED)
)

func (code ClientErrorCode) String() string {
	switch code {
	case NoSuchData:
		return "no such data"
	case DataExists:
		return "data exists"
	case LowBalance:
		return "low balance"
	case NoSuchAccount:
		return "no such account"
	case AccessDenied:
		return "access denied"
	case InvalidOperation:
		return "invalid operation"
	case InvalidSuccessor:
		return "invalid successor"
	case LimitExceeded:
		return "limit exceeded"
	default:
		return "network error"
	}
}

// ClientError is a failure reported by the vaults handling a request.
type ClientError struct {
	Code   ClientErrorCode
	Detail string
}

// Error implements error.
func (e ClientError) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Detail
}

// Err returns e as an ErrClient error.
func (e ClientError) Err() error { return ErrClient.Wrap(e) }

// AsClientError extracts a ClientError from err.
func AsClientError(err error) (ClientError, bool) {
	var target ClientError
	ok := errors.As(err, &target)
	return target, ok
}

func clientErrorToPB(e ClientError) *pb.ClientError {
	return &pb.ClientError{Code: pb.ClientErrorCode(e.Code), Detail: e.Detail}
}

func clientErrorFromPB(m *pb.ClientError) ClientError {
	if m == nil {
		return ClientError{Code: NetworkOther}
	}
	code := ClientErrorCode(m.Code)
	if _, ok := pb.ClientErrorCode_name[int32(m.Code)]; !ok {
		code = NetworkOther
	}
	return ClientError{Code: code, Detail: m.Detail}
}
