// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package cache provides response caches that the routing layer consults
// before dispatching a request.
package cache

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/routing/pkg/message"
)

var (
	// Error is the default cache error class
	Error = errs.Class("cache error")
	mon   = monkit.Package()
)

// Cache memoizes responses by the request that produced them.
type Cache interface {
	Get(req message.Request) (message.Response, bool)
	Put(req message.Request, resp message.Response)
}

// Noop is a cache that never stores anything.
type Noop struct{}

// Get implements Cache.
func (Noop) Get(message.Request) (message.Response, bool) { return nil, false }

// Put implements Cache.
func (Noop) Put(message.Request, message.Response) {}
