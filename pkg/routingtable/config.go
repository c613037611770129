// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routingtable

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	// Error is the class for all errors pertaining to routing table operations
	Error = errs.Class("routing table error")
	mon   = monkit.Package()
)

const (
	// DefaultGroupSize is the number of nodes responsible for a name.
	DefaultGroupSize = 8
	// DefaultReplacementCacheSize is the number of spare contacts kept per bucket.
	DefaultReplacementCacheSize = 4
)

// Config defines the shape of the routing table.
type Config struct {
	GroupSize            int `help:"number of nodes that form a close group" default:"8"`
	ReplacementCacheSize int `help:"number of spare contacts remembered per bucket" default:"4"`
}

// Verify checks that the config is usable.
func (config Config) Verify() error {
	var group errs.Group
	if config.GroupSize <= 0 {
		group.Add(Error.New("group size must be positive, got %d", config.GroupSize))
	}
	if config.ReplacementCacheSize < 0 {
		group.Add(Error.New("replacement cache size can not be negative, got %d", config.ReplacementCacheSize))
	}
	return group.Err()
}
