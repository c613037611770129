// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/xorname"
)

// flushTimeout bounds how long a terminating session waits for the consumer
// to take the remaining events.
const flushTimeout = 5 * time.Second

// handler is the part of a session that owns its routing state. All of its
// methods run on the event loop.
type handler interface {
	handle(in interface{}) error
	sweep()
}

type inboundKind int

const (
	inboundFrame inboundKind = iota
	inboundUp
	inboundDown
)

type inbound struct {
	kind  inboundKind
	from  xorname.Name
	frame []byte
}

// inputs for the event loop
type (
	linkUp   struct{ name xorname.Name }
	linkDown struct{ name xorname.Name }
	helloIn  struct {
		from  xorname.Name
		hello message.Hello
		err   error
	}
	routedIn struct {
		from    xorname.Name
		signed  *message.SignedMessage
		signers []identity.PublicID
		err     error
	}
	malformedIn struct {
		from xorname.Name
		err  error
	}
	callIn struct {
		fn   func()
		done chan struct{}
	}
)

type outbound struct {
	to         xorname.Name
	frame      message.Frame
	disconnect bool
}

// session runs the event loop shared by nodes and clients.
//
// Inbound frames are decoded and verified by a pool of workers, sharded by
// sender so that frames of one link keep their order, and then serialized
// into the loop. Outbound frames are written by a pool of send workers,
// sharded by destination. Events queue in a backlog while the consumer is
// behind; as long as the backlog is not empty the loop takes no new input,
// which in turn makes Receive and the public methods fail with
// ErrBackpressure.
type session struct {
	log       *zap.Logger
	id        *identity.FullID
	config    Config
	clock     clock.Clock
	transport Transport
	handler   handler

	inputs   chan interface{}
	shards   []chan inbound
	outbox   []chan outbound
	inflight *semaphore.Weighted

	events  chan Event
	backlog []Event

	state     int32
	converged int32
	running   int32

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newSession(log *zap.Logger, id *identity.FullID, config Config, transport Transport, clk clock.Clock) (*session, error) {
	if err := config.Verify(); err != nil {
		return nil, err
	}
	if id == nil || transport == nil {
		return nil, InterfaceError.New("identity and transport are required")
	}
	if clk == nil {
		clk = clock.New()
	}

	s := &session{
		log:       log,
		id:        id,
		config:    config,
		clock:     clk,
		transport: transport,
		inputs:    make(chan interface{}, config.InputBuffer),
		inflight:  semaphore.NewWeighted(config.MaxInflightBytes),
		events:    make(chan Event, config.EventBuffer),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for i := 0; i < config.VerifyWorkers; i++ {
		s.shards = append(s.shards, make(chan inbound, config.InputBuffer))
	}
	for i := 0; i < config.SendWorkers; i++ {
		s.outbox = append(s.outbox, make(chan outbound, config.OutboxBuffer))
	}
	return s, nil
}

// Name returns the name of the session's identity.
func (s *session) Name() xorname.Name { return s.id.Name() }

// PublicID returns the session's public identity.
func (s *session) PublicID() identity.PublicID { return s.id.Public() }

// State returns the current lifecycle state.
func (s *session) State() State { return State(atomic.LoadInt32(&s.state)) }

// Converged returns whether the routing table knows a full close group.
func (s *session) Converged() bool { return atomic.LoadInt32(&s.converged) == 1 }

// Events returns the channel of events. It is closed after SessionTerminated.
func (s *session) Events() <-chan Event { return s.events }

// QuorumSize returns the number of member signatures that make a group
// message authentic.
func (s *session) QuorumSize() int { return s.config.QuorumSize }

// Close stops the session. Run returns once the remaining events are
// delivered.
func (s *session) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *session) terminated() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Connected tells the session that the transport opened a link to name.
func (s *session) Connected(ctx context.Context, name xorname.Name) error {
	return s.enqueue(ctx, inbound{kind: inboundUp, from: name})
}

// Disconnected tells the session that the link to name is gone.
func (s *session) Disconnected(ctx context.Context, name xorname.Name) error {
	return s.enqueue(ctx, inbound{kind: inboundDown, from: name})
}

func (s *session) enqueue(ctx context.Context, in inbound) error {
	if s.terminated() {
		return errTerminated
	}
	select {
	case s.shard(in.from) <- in:
		return nil
	case <-s.done:
		return errTerminated
	case <-ctx.Done():
		return InterfaceError.Wrap(ctx.Err())
	}
}

// Receive hands a frame received from the link to from to the session.
// It never blocks; when the session is behind it returns ErrBackpressure
// and the transport should retry later.
func (s *session) Receive(ctx context.Context, from xorname.Name, frame []byte) error {
	if s.terminated() {
		return errTerminated
	}
	size := int64(len(frame))
	if !s.inflight.TryAcquire(size) {
		mon.Counter("frames_backpressured").Inc(1)
		return InterfaceError.Wrap(ErrBackpressure.New("too many inbound bytes in flight"))
	}
	select {
	case s.shard(from) <- inbound{kind: inboundFrame, from: from, frame: frame}:
		return nil
	default:
		s.inflight.Release(size)
		mon.Counter("frames_backpressured").Inc(1)
		return InterfaceError.Wrap(ErrBackpressure.New("inbound queue full"))
	}
}

func shardIndex(name xorname.Name, n int) int {
	h := fnv.New32a()
	_, _ = h.Write(name[:])
	return int(h.Sum32() % uint32(n))
}

func (s *session) shard(name xorname.Name) chan inbound {
	return s.shards[shardIndex(name, len(s.shards))]
}

// call runs fn on the event loop and waits for it.
func (s *session) call(ctx context.Context, fn func()) error {
	if s.terminated() {
		return errTerminated
	}
	done := make(chan struct{})
	select {
	case s.inputs <- callIn{fn: fn, done: done}:
	case <-s.done:
		return errTerminated
	default:
		return InterfaceError.Wrap(ErrBackpressure.New("input queue full"))
	}
	select {
	case <-done:
		return nil
	case <-s.done:
		return errTerminated
	case <-ctx.Done():
		return InterfaceError.Wrap(ctx.Err())
	}
}

// Run drives the session until ctx is canceled or Close is called.
func (s *session) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return InterfaceError.Wrap(ErrState.New("session already running"))
	}

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var group errgroup.Group
	for _, shard := range s.shards {
		shard := shard
		group.Go(func() error {
			s.verifyWorker(workerCtx, shard)
			return nil
		})
	}
	for _, queue := range s.outbox {
		queue := queue
		group.Go(func() error {
			s.sendWorker(workerCtx, queue)
			return nil
		})
	}

	err = s.loop(ctx)
	cancel()
	_ = group.Wait()
	return err
}

func (s *session) loop(ctx context.Context) error {
	ticker := s.clock.Ticker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		var inputs <-chan interface{}
		var out chan<- Event
		var next Event
		if len(s.backlog) == 0 {
			inputs = s.inputs
		} else {
			out, next = s.events, s.backlog[0]
		}

		select {
		case in := <-inputs:
			if err := s.handler.handle(in); err != nil {
				s.terminate(err)
				return err
			}
		case out <- next:
			s.backlog[0] = nil
			s.backlog = s.backlog[1:]
		case <-ticker.C:
			s.handler.sweep()
		case <-s.stop:
			s.terminate(nil)
			return nil
		case <-ctx.Done():
			s.terminate(nil)
			return nil
		}
	}
}

// terminate emits the final event, delivers what the consumer still takes
// within flushTimeout and closes the events channel.
func (s *session) terminate(err error) {
	atomic.StoreInt32(&s.state, int32(Terminated))
	close(s.done)
	if err != nil {
		s.log.Error("session terminated", zap.Error(err))
	} else {
		s.log.Info("session terminated")
	}
	s.backlog = append(s.backlog, SessionTerminated{Err: err})

	timer := time.NewTimer(flushTimeout)
	defer timer.Stop()
	for len(s.backlog) > 0 {
		select {
		case s.events <- s.backlog[0]:
			s.backlog = s.backlog[1:]
		case <-timer.C:
			s.log.Warn("dropping undelivered events", zap.Int("Count", len(s.backlog)))
			s.backlog = nil
		}
	}
	close(s.events)
}

// emit queues ev for the consumer, preserving order.
func (s *session) emit(ev Event) {
	s.backlog = append(s.backlog, ev)
	for len(s.backlog) > 0 {
		select {
		case s.events <- s.backlog[0]:
			s.backlog[0] = nil
			s.backlog = s.backlog[1:]
		default:
			return
		}
	}
}

func (s *session) setState(state State) {
	if s.State() == state {
		return
	}
	atomic.StoreInt32(&s.state, int32(state))
	s.log.Info("state changed", zap.Stringer("State", state))
	s.emit(StateChanged{State: state, Converged: s.Converged()})
}

func (s *session) setConverged(converged bool) {
	value := int32(0)
	if converged {
		value = 1
	}
	if atomic.SwapInt32(&s.converged, value) == value {
		return
	}
	s.log.Info("convergence changed", zap.Bool("Converged", converged))
	s.emit(StateChanged{State: s.State(), Converged: converged})
}

func (s *session) reject(id message.ID, from xorname.Name, err error) {
	mon.Counter("messages_rejected").Inc(1)
	s.log.Warn("message rejected", zap.Stringer("ID", id), zap.Stringer("From", from), zap.Error(err))
	s.emit(MessageRejected{ID: id, From: from, Err: err})
}

func (s *session) verifyWorker(ctx context.Context, shard chan inbound) {
	for {
		select {
		case in := <-shard:
			next := s.decode(in)
			select {
			case s.inputs <- next:
			case <-ctx.Done():
			}
			if in.kind == inboundFrame {
				s.inflight.Release(int64(len(in.frame)))
			}
		case <-ctx.Done():
			return
		}
	}
}

// decode turns raw inbound work into loop input, verifying signatures.
func (s *session) decode(in inbound) interface{} {
	switch in.kind {
	case inboundUp:
		return linkUp{name: in.from}
	case inboundDown:
		return linkDown{name: in.from}
	}

	frame, err := message.DecodeFrame(in.frame)
	if err != nil {
		return malformedIn{from: in.from, err: err}
	}
	switch frame := frame.(type) {
	case message.Hello:
		return helloIn{from: in.from, hello: frame, err: frame.Verify()}
	case message.Routed:
		signers, err := frame.Message.VerifiedSigners()
		return routedIn{from: in.from, signed: frame.Message, signers: signers, err: err}
	default:
		return malformedIn{from: in.from, err: message.Error.New("unexpected frame %T", frame)}
	}
}

// send queues frame for to without blocking the loop.
func (s *session) send(to xorname.Name, frame message.Frame) {
	s.queue(outbound{to: to, frame: frame})
}

// drop disconnects to once the frames queued before are written.
func (s *session) drop(to xorname.Name) {
	s.queue(outbound{to: to, disconnect: true})
}

func (s *session) queue(out outbound) {
	select {
	case s.outbox[shardIndex(out.to, len(s.outbox))] <- out:
	default:
		mon.Counter("frames_dropped").Inc(1)
		s.log.Warn("outbox full, dropping frame", zap.Stringer("To", out.to))
	}
}

func (s *session) sendWorker(ctx context.Context, queue chan outbound) {
	for {
		select {
		case out := <-queue:
			if out.disconnect {
				if err := s.transport.Disconnect(out.to); err != nil {
					s.log.Debug("disconnect failed", zap.Stringer("To", out.to), zap.Error(err))
				}
				continue
			}
			frame, err := message.EncodeFrame(out.frame)
			if err != nil {
				s.log.Error("unable to encode frame", zap.Error(err))
				continue
			}
			if err := s.transport.Send(ctx, out.to, frame); err != nil {
				mon.Counter("frames_send_failed").Inc(1)
				s.log.Debug("send failed", zap.Stringer("To", out.to), zap.Error(err))
				continue
			}
			mon.Counter("frames_sent").Inc(1)
		case <-ctx.Done():
			return
		}
	}
}
