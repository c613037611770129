// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

import (
	"context"

	"storj.io/routing/pkg/xorname"
)

// Transport carries frames to directly connected peers. Connection
// establishment is the transport's business; it reports links through
// the session's Connected, Disconnected and Receive methods.
type Transport interface {
	Send(ctx context.Context, to xorname.Name, frame []byte) error
	Disconnect(to xorname.Name) error
}
