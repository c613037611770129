// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

// State is the lifecycle stage of a session. States are entered in order
// and Terminated is final.
type State int32

const (
	// Bootstrapping is the state before any connection.
	Bootstrapping State = iota
	// Connecting means links exist but no peer has been authenticated.
	Connecting
	// Connected means at least one peer has been authenticated.
	Connected
	// Terminated means the session has stopped.
	Terminated
)

// String implements fmt.Stringer.
func (state State) String() string {
	switch state {
	case Bootstrapping:
		return "bootstrapping"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}
