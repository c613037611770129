// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package pb contains the protobuf wire types described by routing.proto.
//
// Domain packages convert their values to and from these messages; nothing
// outside of encoding should hold on to them.
package pb
