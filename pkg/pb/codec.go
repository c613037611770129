// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package pb

import (
	proto "github.com/gogo/protobuf/proto"
	"github.com/zeebo/errs"
)

// Error is the class of encoding failures.
var Error = errs.Class("protobuf error")

// Marshal encodes msg.
func Marshal(msg proto.Message) ([]byte, error) {
	data, err := proto.Marshal(msg)
	return data, Error.Wrap(err)
}

// Unmarshal decodes data into msg.
func Unmarshal(data []byte, msg proto.Message) error {
	return Error.Wrap(proto.Unmarshal(data, msg))
}
