// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package sim runs a network of vaults and a client in one process.
//
// Every node of the network is a vault holding the immutable chunks of
// the groups it belongs to. The client stores chunks and reads them back
// twice; the second read is served by the response cache.
package sim

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storj.io/routing/internal/sync2"
	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/bootstrapcache"
	"storj.io/routing/pkg/cache"
	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/routing"
	"storj.io/routing/pkg/transport/memnet"
	"storj.io/routing/storage/boltdb"
	"storj.io/routing/storage/redis"
	"storj.io/routing/storage/storelogger"
)

var (
	mon = monkit.Package()

	// Error is the class of simulation errors.
	Error = errs.Class("sim error")
)

// Config configures a simulation.
type Config struct {
	Nodes        int           `help:"number of nodes in the network" default:"10"`
	Puts         int           `help:"number of chunks stored and read back" default:"3"`
	ChunkSize    int           `help:"size of every chunk in bytes" default:"1024"`
	CacheSize    int           `help:"number of responses the client keeps in memory" default:"256"`
	Redis        string        `help:"redis url of a shared response cache, empty keeps responses in memory" default:""`
	BootstrapDB  string        `help:"bolt database remembering the contacts of the first node, empty disables it" default:""`
	SaveInterval time.Duration `help:"how often the contacts are saved" default:"1s"`
	Timeout      time.Duration `help:"how long to wait for convergence and for every response" default:"30s"`

	Routing routing.Config
}

// Verify checks that the config can run.
func (config Config) Verify() error {
	var group errs.Group
	if config.Nodes < config.Routing.QuorumSize {
		group.Add(errs.New("%d nodes can not reach a quorum of %d", config.Nodes, config.Routing.QuorumSize))
	}
	if config.Puts < 0 || config.ChunkSize <= 0 {
		group.Add(errs.New("puts must not be negative and chunks must not be empty"))
	}
	if config.CacheSize <= 0 {
		group.Add(errs.New("cache size must be positive"))
	}
	if config.SaveInterval <= 0 || config.Timeout <= 0 {
		group.Add(errs.New("intervals must be positive"))
	}
	group.Add(config.Routing.Verify())
	return Error.Wrap(group.Err())
}

// Result summarizes a simulation.
type Result struct {
	Nodes     int
	Stored    int
	Fetched   int
	CacheHits int
	// Contacts is the number of contacts saved to the bootstrap database.
	Contacts int
	// PreviousContacts were loaded from an earlier run.
	PreviousContacts int
}

// Simulation is a running network.
type Simulation struct {
	log     *zap.Logger
	config  Config
	network *memnet.Network
	group   *errgroup.Group

	vaults   []*vault
	client   *routing.Client
	requests *requester

	sessions []io.Closer
	stores   []func() error
}

// Run starts the network, stores and reads back Puts chunks and shuts the
// network down again.
func Run(ctx context.Context, log *zap.Logger, config Config) (result Result, err error) {
	defer mon.Task()(&ctx)(&err)
	if err := config.Verify(); err != nil {
		return result, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)

	sim := &Simulation{
		log:     log,
		config:  config,
		network: memnet.New(log.Named("memnet")),
		group:   group,
	}
	sim.network.Retryable = routing.ErrBackpressure.Has
	defer func() {
		err = errs.Combine(err, sim.close(cancel))
	}()

	responses, err := sim.openCache()
	if err != nil {
		return result, err
	}

	contacts, err := sim.openBootstrap()
	if err != nil {
		return result, err
	}
	if contacts != nil {
		previous, err := contacts.Load(ctx)
		if err != nil {
			return result, err
		}
		result.PreviousContacts = len(previous)
		log.Info("loaded contacts of an earlier run", zap.Int("Count", len(previous)))
	}

	if err := sim.startVaults(ctx); err != nil {
		return result, err
	}
	result.Nodes = len(sim.vaults)
	if err := sim.awaitConvergence(ctx); err != nil {
		return result, err
	}
	if err := sim.startClient(ctx, responses); err != nil {
		return result, err
	}

	var cycle *sync2.Cycle
	var saved int
	cycleDone := make(chan error, 1)
	if contacts != nil {
		cycle = sync2.NewCycle(clock.New(), config.SaveInterval)
		go func() {
			cycleDone <- cycle.Run(ctx, func(ctx context.Context) error {
				return sim.saveContacts(ctx, contacts, &saved)
			})
		}()
	}

	for i := 0; i < config.Puts; i++ {
		if err := sim.storeAndFetch(ctx, &result); err != nil {
			return result, err
		}
	}

	if cycle != nil {
		cycle.TriggerWait()
		cycle.Stop()
		if err := <-cycleDone; err != nil {
			return result, Error.Wrap(err)
		}
		result.Contacts = saved
	}
	return result, nil
}

func (sim *Simulation) openCache() (cache.Cache, error) {
	if sim.config.Redis == "" {
		return cache.NewLRU(sim.config.CacheSize)
	}
	db, err := redis.NewClientFrom(sim.config.Redis)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	sim.stores = append(sim.stores, db.Close)
	log := sim.log.Named("cache")
	return cache.NewStore(log, storelogger.New(log, db)), nil
}

func (sim *Simulation) openBootstrap() (*bootstrapcache.Cache, error) {
	if sim.config.BootstrapDB == "" {
		return nil, nil
	}
	db, err := boltdb.New(sim.config.BootstrapDB, "contacts")
	if err != nil {
		return nil, Error.Wrap(err)
	}
	sim.stores = append(sim.stores, db.Close)
	log := sim.log.Named("bootstrap")
	return bootstrapcache.New(log, storelogger.New(log, db)), nil
}

func (sim *Simulation) startVaults(ctx context.Context) error {
	for i := 0; i < sim.config.Nodes; i++ {
		id, err := identity.Generate()
		if err != nil {
			return Error.Wrap(err)
		}
		log := sim.log.Named(fmt.Sprintf("node%d", i))

		endpoint := sim.network.Endpoint(id.Name())
		node, err := routing.NewNode(log, id, sim.config.Routing, endpoint, nil, nil)
		if err != nil {
			return Error.Wrap(err)
		}
		endpoint.Attach(node)
		sim.sessions = append(sim.sessions, node)

		v := newVault(log, node)
		sim.vaults = append(sim.vaults, v)
		sim.group.Go(func() error { return node.Run(ctx) })
		sim.group.Go(func() error {
			v.pump()
			return nil
		})
		sim.group.Go(func() error { return v.serve(ctx) })
	}

	for i, a := range sim.vaults {
		for _, b := range sim.vaults[i+1:] {
			if err := sim.network.Connect(ctx, a.node.Name(), b.node.Name()); err != nil {
				return Error.Wrap(err)
			}
		}
	}
	return nil
}

// awaitConvergence waits until every node knows all others and, in networks
// larger than a group, a full close group.
func (sim *Simulation) awaitConvergence(ctx context.Context) error {
	small := sim.config.Nodes-1 < sim.config.Routing.GroupSize-1
	return sim.poll(ctx, "convergence", func() bool {
		for _, v := range sim.vaults {
			contacts, err := v.node.Contacts(ctx)
			if err != nil || len(contacts) != sim.config.Nodes-1 {
				return false
			}
			if !small && !v.node.Converged() {
				return false
			}
		}
		return true
	})
}

func (sim *Simulation) startClient(ctx context.Context, responses cache.Cache) error {
	id, err := identity.Generate()
	if err != nil {
		return Error.Wrap(err)
	}
	log := sim.log.Named("client")

	endpoint := sim.network.Endpoint(id.Name())
	client, err := routing.NewClient(log, id, sim.config.Routing, endpoint, responses, nil)
	if err != nil {
		return Error.Wrap(err)
	}
	endpoint.Attach(client)
	sim.sessions = append(sim.sessions, client)
	sim.client = client
	sim.requests = newRequester(log, client)

	sim.group.Go(func() error { return client.Run(ctx) })
	sim.group.Go(func() error {
		sim.requests.pump()
		return nil
	})

	if err := sim.network.Connect(ctx, id.Name(), sim.vaults[0].node.Name()); err != nil {
		return Error.Wrap(err)
	}
	return sim.poll(ctx, "client connection", func() bool {
		return client.State() == routing.Connected
	})
}

func (sim *Simulation) storeAndFetch(ctx context.Context, result *Result) error {
	value := make([]byte, sim.config.ChunkSize)
	if _, err := rand.Read(value); err != nil {
		return Error.Wrap(err)
	}
	chunk := data.NewImmutableData(value)
	dst := authority.NaeManager{XorName: chunk.Name()}

	reqCtx, cancel := context.WithTimeout(ctx, sim.config.Timeout)
	defer cancel()

	stored, err := sim.requests.request(reqCtx, dst, message.PutRequest{Data: chunk})
	if err != nil {
		return err
	}
	if _, ok := stored.Message.Content.(message.PutSuccess); !ok {
		return Error.New("put of %s failed: %v", chunk.Name().Short(), stored.Message.Content)
	}
	result.Stored++
	sim.log.Info("stored", zap.Stringer("Name", chunk.Name()))

	for i := 0; i < 2; i++ {
		fetched, err := sim.requests.request(reqCtx, dst, message.GetRequest{DataID: chunk.Identifier()})
		if err != nil {
			return err
		}
		found, ok := fetched.Message.Content.(message.GetSuccess)
		if !ok {
			return Error.New("get of %s failed: %v", chunk.Name().Short(), fetched.Message.Content)
		}
		got, ok := found.Data.(*data.ImmutableData)
		if !ok || !got.Equal(chunk) {
			return Error.New("get of %s returned different data", chunk.Name().Short())
		}
		if fetched.Cached {
			result.CacheHits++
		} else {
			result.Fetched++
		}
		sim.log.Info("fetched", zap.Stringer("Name", chunk.Name()), zap.Bool("Cached", fetched.Cached))
	}
	return nil
}

func (sim *Simulation) saveContacts(ctx context.Context, contacts *bootstrapcache.Cache, saved *int) error {
	known, err := sim.vaults[0].node.Contacts(ctx)
	if err != nil {
		if routing.ErrState.Has(err) {
			return nil
		}
		return Error.Wrap(err)
	}
	if err := contacts.Save(ctx, known); err != nil {
		return err
	}
	*saved = len(known)
	return nil
}

func (sim *Simulation) poll(ctx context.Context, what string, done func() bool) error {
	ctx, cancel := context.WithTimeout(ctx, sim.config.Timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for !done() {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return Error.New("waiting for %s: %v", what, ctx.Err())
		}
	}
	return nil
}

// close shuts the sessions and the network down, waits for every goroutine
// and closes the stores.
func (sim *Simulation) close(cancel func()) error {
	var group errs.Group
	for _, session := range sim.sessions {
		group.Add(session.Close())
	}
	group.Add(sim.network.Close())
	cancel()
	if err := sim.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		group.Add(err)
	}
	for i := len(sim.stores) - 1; i >= 0; i-- {
		group.Add(sim.stores[i]())
	}
	return group.Err()
}
