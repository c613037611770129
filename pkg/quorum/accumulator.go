// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package quorum accumulates signed copies of group sourced messages until
// enough distinct members agree on them.
package quorum

import (
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/xorname"
)

var (
	mon = monkit.Package()

	// Error is the class of misuse of the accumulator.
	Error = errs.Class("quorum error")
	// ErrConsensusConflict is reported when members sign different
	// contents under one message id.
	ErrConsensusConflict = errs.Class("consensus conflict")
	// ErrConsensusTimeout is reported when quorum was not reached in time.
	ErrConsensusTimeout = errs.Class("consensus timeout")
)

// Status is the state of a message id after a copy was accumulated.
type Status int

const (
	// Pending means more signatures are needed.
	Pending Status = iota
	// Quorum means the message was accepted. It is reported once per id.
	Quorum
	// Conflict means the copy opened a candidate that disagrees with the
	// first one. Later copies of that candidate are Pending.
	Conflict
	// Absorbed means quorum was already reported and the copy was dropped.
	Absorbed
)

func (status Status) String() string {
	switch status {
	case Pending:
		return "pending"
	case Quorum:
		return "quorum"
	case Conflict:
		return "conflict"
	case Absorbed:
		return "absorbed"
	default:
		return "unknown"
	}
}

// Membership reports whether signer belongs to the close group of group.
type Membership func(group, signer xorname.Name) bool

// Config configures an Accumulator.
type Config struct {
	QuorumSize int           `help:"matching member signatures required to accept a group message" default:"5"`
	Timeout    time.Duration `help:"how long copies of a group message are collected" default:"20s"`
	// CompletedSize bounds the ids remembered after quorum. DefaultCompletedSize
	// is used when it is not positive.
	CompletedSize int `help:"number of accepted group message ids remembered to absorb late copies" default:"10000"`
}

// DefaultCompletedSize is the number of accepted ids remembered by default.
const DefaultCompletedSize = 10000

// Result is the outcome of Accumulate.
type Result struct {
	Status Status
	// Message holds the merged copy when Status is Quorum.
	Message *message.SignedMessage
	// Signers are the counted members of the copy's candidate.
	Signers []identity.PublicID
}

// Expired describes a message id dropped without reaching quorum.
type Expired struct {
	ID        message.ID
	Src       authority.Authority
	Conflicts int
}

type candidate struct {
	digest  xorname.Name
	message *message.SignedMessage
	signers []identity.PublicID
}

func (c *candidate) has(name xorname.Name) bool {
	for _, signer := range c.signers {
		if signer.Name == name {
			return true
		}
	}
	return false
}

type entry struct {
	src        authority.Authority
	started    time.Time
	candidates []*candidate
}

// Accumulator collects copies per message id. It is owned by one session
// and is not safe for concurrent use.
type Accumulator struct {
	log        *zap.Logger
	config     Config
	clock      clock.Clock
	membership Membership

	entries   map[message.ID]*entry
	completed *lru.Cache[message.ID, struct{}]
}

// New creates an accumulator.
func New(log *zap.Logger, config Config, clk clock.Clock, membership Membership) *Accumulator {
	size := config.CompletedSize
	if size <= 0 {
		size = DefaultCompletedSize
	}
	completed, err := lru.New[message.ID, struct{}](size)
	if err != nil {
		panic(err)
	}
	return &Accumulator{
		log:        log,
		config:     config,
		clock:      clk,
		membership: membership,
		entries:    map[message.ID]*entry{},
		completed:  completed,
	}
}

// Accumulate records a copy of the message id from the group src.
// signers are the members whose signatures on the copy were verified.
func (acc *Accumulator) Accumulate(id message.ID, src authority.Authority, signed *message.SignedMessage, signers []identity.PublicID) (Result, error) {
	if src == nil || !src.IsGroup() {
		return Result{}, Error.New("%v is not a group", src)
	}
	if signed.Message.ID != id || !authority.Equal(signed.Message.Src, src) {
		return Result{}, Error.New("copy does not belong to %s from %s", id, src)
	}

	if acc.completed.Contains(id) {
		mon.Counter("quorum_absorbed").Inc(1)
		return Result{Status: Absorbed}, nil
	}

	var counted []identity.PublicID
	for _, signer := range signers {
		if !acc.membership(src.Name(), signer.Name) {
			acc.log.Debug("ignoring signature of non member", zap.Stringer("Signer", signer), zap.Stringer("Group", src))
			continue
		}
		counted = append(counted, signer)
	}

	e, ok := acc.entries[id]
	if len(counted) == 0 {
		return Result{Status: Pending}, nil
	}
	if !ok {
		e = &entry{src: src, started: acc.clock.Now()}
		acc.entries[id] = e
	}

	digest := signed.Message.Digest()
	var current *candidate
	for _, c := range e.candidates {
		if c.digest == digest {
			current = c
			break
		}
	}
	created := current == nil
	if created {
		current = &candidate{digest: digest, message: &message.SignedMessage{Message: signed.Message}}
		e.candidates = append(e.candidates, current)
	}

	// only signatures of newly counted members are merged
	fresh := &message.SignedMessage{Message: signed.Message}
	for _, signer := range counted {
		if current.has(signer.Name) {
			continue
		}
		current.signers = append(current.signers, signer)
		for _, sig := range signed.Signatures {
			if sig.Signer.Name == signer.Name {
				fresh.Signatures = append(fresh.Signatures, sig)
				break
			}
		}
	}
	if err := current.message.Merge(fresh); err != nil {
		return Result{}, Error.Wrap(err)
	}

	if len(current.signers) >= acc.config.QuorumSize {
		delete(acc.entries, id)
		acc.completed.Add(id, struct{}{})
		mon.Counter("quorum_reached").Inc(1)
		acc.log.Debug("quorum reached", zap.Stringer("ID", id), zap.Int("Signers", len(current.signers)))
		return Result{Status: Quorum, Message: current.message, Signers: current.signers}, nil
	}

	if created && current != e.candidates[0] {
		mon.Counter("quorum_conflict").Inc(1)
		return Result{Status: Conflict, Signers: current.signers}, nil
	}
	return Result{Status: Pending, Signers: current.signers}, nil
}

// Expire drops entries older than the timeout and returns them. Accepted ids
// stay remembered until newer ones evict them.
func (acc *Accumulator) Expire() []Expired {
	now := acc.clock.Now()

	var expired []Expired
	for id, e := range acc.entries {
		if now.Sub(e.started) < acc.config.Timeout {
			continue
		}
		delete(acc.entries, id)
		expired = append(expired, Expired{ID: id, Src: e.src, Conflicts: len(e.candidates) - 1})
	}

	if len(expired) > 0 {
		mon.Counter("quorum_timeout").Inc(int64(len(expired)))
		acc.log.Debug("consensus timed out", zap.Int("Count", len(expired)))
	}
	return expired
}

// Revalidate drops counted signers that are no longer members of their
// group, after the routing table changed.
func (acc *Accumulator) Revalidate() {
	for _, e := range acc.entries {
		group := e.src.Name()
		for _, c := range e.candidates {
			kept := c.signers[:0]
			for _, signer := range c.signers {
				if acc.membership(group, signer.Name) {
					kept = append(kept, signer)
				}
			}
			c.signers = kept

			sigs := c.message.Signatures[:0]
			for _, sig := range c.message.Signatures {
				if c.has(sig.Signer.Name) {
					sigs = append(sigs, sig)
				}
			}
			c.message.Signatures = sigs
		}
	}
}

// Pending reports whether copies of id are being collected.
func (acc *Accumulator) Pending(id message.ID) bool {
	_, ok := acc.entries[id]
	return ok
}

// Len returns the number of pending ids.
func (acc *Accumulator) Len() int { return len(acc.entries) }
