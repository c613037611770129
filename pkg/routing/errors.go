// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

import (
	"github.com/zeebo/errs"

	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/quorum"
)

var (
	// RoutingError wraps internal routing, consensus and validation failures.
	RoutingError = errs.Class("routing error")
	// InterfaceError wraps misuse of a session by the caller.
	InterfaceError = errs.Class("interface error")

	// ErrState is returned when a session can not accept the operation,
	// for example after it terminated.
	ErrState = errs.Class("state error")
	// ErrBackpressure is returned when the session has no room for more input.
	ErrBackpressure = errs.Class("backpressure")
)

// Error kinds produced by the other packages, so callers can branch on them
// without importing every package.
var (
	ErrAddressing        = authority.ErrAddressing
	ErrConsensusConflict = quorum.ErrConsensusConflict
	ErrConsensusTimeout  = quorum.ErrConsensusTimeout
	ErrValidation        = data.ErrValidation
	ErrIdentity          = identity.ErrIdentity
)

var errTerminated = InterfaceError.Wrap(ErrState.New("session terminated"))
