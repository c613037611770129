// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package message

import (
	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
)

// Cacheable reports whether responses to req may be memoized. Only reads
// qualify.
func Cacheable(req Request) bool {
	_, ok := req.(GetRequest)
	return ok
}

// RequestKey is the cache key of req.
func RequestKey(req Request) xorname.Name {
	data, err := pb.Marshal(requestToPB(req))
	if err != nil {
		panic(err)
	}
	return xorname.Hash(data)
}

// EncodeResponse serializes resp for storage in a cache.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := pb.Marshal(responseToPB(resp))
	return data, Error.Wrap(err)
}

// DecodeResponse deserializes a response produced by EncodeResponse.
func DecodeResponse(buf []byte) (Response, error) {
	var m pb.Response
	if err := pb.Unmarshal(buf, &m); err != nil {
		return nil, Error.Wrap(err)
	}
	return responseFromPB(&m)
}

// SelfValidating reports whether resp proves itself without signatures:
// immutable data whose name is the hash of its value.
func SelfValidating(resp Response) bool {
	get, ok := resp.(GetSuccess)
	if !ok {
		return false
	}
	immutable, ok := get.Data.(*data.ImmutableData)
	return ok && immutable.Validate() == nil
}
