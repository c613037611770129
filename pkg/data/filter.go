// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package data

import "storj.io/routing/pkg/identity"

// FilterMode selects how Filter keys are interpreted.
type FilterMode int

const (
	// Whitelist allows only the listed keys.
	Whitelist FilterMode = iota
	// Blacklist allows every key except the listed ones.
	Blacklist
)

// Filter decides which keys may append to appendable data.
type Filter struct {
	Mode FilterMode
	Keys []identity.SignKey
}

// Allows reports whether key passes the filter.
func (filter Filter) Allows(key identity.SignKey) bool {
	listed := containsKey(filter.Keys, key)
	if filter.Mode == Blacklist {
		return !listed
	}
	return listed
}
