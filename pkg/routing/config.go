// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

import (
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/routing/pkg/quorum"
	"storj.io/routing/pkg/routingtable"
)

var mon = monkit.Package()

const (
	// GroupSize is the number of nodes responsible for a name.
	GroupSize = routingtable.DefaultGroupSize
	// QuorumSize is the number of matching member signatures that make a
	// group message authentic.
	QuorumSize = 5
)

// Config configures a Node or a Client.
type Config struct {
	GroupSize            int           `help:"number of nodes that form a close group" default:"8"`
	QuorumSize           int           `help:"matching member signatures required to accept a group message" default:"5"`
	QuorumTimeout        time.Duration `help:"how long copies of a group message are collected before giving up" default:"20s"`
	SweepInterval        time.Duration `help:"how often timed out consensus state is reclaimed" default:"1s"`
	ReplacementCacheSize int           `help:"number of spare contacts remembered per routing table bucket" default:"4"`
	RelayHistorySize     int           `help:"number of relayed messages remembered to drop duplicates" default:"10000"`
	CompletedSize        int           `help:"number of accepted group message ids remembered to absorb late copies" default:"10000"`
	EventBuffer          int           `help:"number of events buffered for the consumer" default:"256"`
	InputBuffer          int           `help:"number of inputs queued for the event loop" default:"256"`
	VerifyWorkers        int           `help:"number of workers decoding and verifying inbound frames" default:"4"`
	SendWorkers          int           `help:"number of workers writing outbound frames" default:"4"`
	OutboxBuffer         int           `help:"number of outbound frames queued per send worker" default:"256"`
	MaxInflightBytes     int64         `help:"maximum bytes of inbound frames waiting to be processed" default:"67108864"`
}

// DefaultConfig returns the config with every default applied.
func DefaultConfig() Config {
	return Config{
		GroupSize:            GroupSize,
		QuorumSize:           QuorumSize,
		QuorumTimeout:        20 * time.Second,
		SweepInterval:        time.Second,
		ReplacementCacheSize: routingtable.DefaultReplacementCacheSize,
		RelayHistorySize:     10000,
		CompletedSize:        quorum.DefaultCompletedSize,
		EventBuffer:          256,
		InputBuffer:          256,
		VerifyWorkers:        4,
		SendWorkers:          4,
		OutboxBuffer:         256,
		MaxInflightBytes:     64 << 20,
	}
}

// Verify checks that the config is usable.
func (config Config) Verify() error {
	var group errs.Group
	if config.GroupSize <= 0 {
		group.Add(errs.New("group size must be positive, got %d", config.GroupSize))
	}
	if config.QuorumSize <= config.GroupSize/2 || config.QuorumSize > config.GroupSize {
		group.Add(errs.New("quorum size %d must be a strict majority of group size %d", config.QuorumSize, config.GroupSize))
	}
	if config.QuorumTimeout <= 0 {
		group.Add(errs.New("quorum timeout must be positive"))
	}
	if config.SweepInterval <= 0 {
		group.Add(errs.New("sweep interval must be positive"))
	}
	for name, value := range map[string]int{
		"relay history size": config.RelayHistorySize,
		"completed size":     config.CompletedSize,
		"event buffer":       config.EventBuffer,
		"input buffer":       config.InputBuffer,
		"verify workers":     config.VerifyWorkers,
		"send workers":       config.SendWorkers,
		"outbox buffer":      config.OutboxBuffer,
	} {
		if value <= 0 {
			group.Add(errs.New("%s must be positive, got %d", name, value))
		}
	}
	if config.MaxInflightBytes <= 0 {
		group.Add(errs.New("max inflight bytes must be positive"))
	}
	return InterfaceError.Wrap(group.Err())
}

func (config Config) table() routingtable.Config {
	return routingtable.Config{
		GroupSize:            config.GroupSize,
		ReplacementCacheSize: config.ReplacementCacheSize,
	}
}

func (config Config) quorum() quorum.Config {
	return quorum.Config{
		QuorumSize:    config.QuorumSize,
		Timeout:       config.QuorumTimeout,
		CompletedSize: config.CompletedSize,
	}
}
