// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package sim

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storj.io/routing/pkg/authority"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/routing"
)

// requester pairs client requests with their responses.
type requester struct {
	log    *zap.Logger
	client *routing.Client

	mu      sync.Mutex
	arrived map[message.ID]*message.SignedMessage
	waiting map[message.ID]chan *message.SignedMessage
}

func newRequester(log *zap.Logger, client *routing.Client) *requester {
	return &requester{
		log:     log,
		client:  client,
		arrived: map[message.ID]*message.SignedMessage{},
		waiting: map[message.ID]chan *message.SignedMessage{},
	}
}

func (r *requester) pump() {
	for ev := range r.client.Events() {
		switch ev := ev.(type) {
		case routing.ResponseReceived:
			r.deliver(ev.Message)
		case routing.ConsensusFailed:
			r.log.Warn("consensus failed", zap.Stringer("ID", ev.ID), zap.Error(ev.Err))
		case routing.MessageRejected:
			r.log.Warn("message rejected", zap.Stringer("ID", ev.ID), zap.Error(ev.Err))
		default:
			r.log.Debug("event", zap.Stringer("Event", ev))
		}
	}
}

func (r *requester) deliver(signed *message.SignedMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := signed.Message.ID
	if ch, ok := r.waiting[id]; ok {
		delete(r.waiting, id)
		ch <- signed
		return
	}
	r.arrived[id] = signed
}

func (r *requester) await(ctx context.Context, id message.ID) (*message.SignedMessage, error) {
	r.mu.Lock()
	if signed, ok := r.arrived[id]; ok {
		delete(r.arrived, id)
		r.mu.Unlock()
		return signed, nil
	}
	ch := make(chan *message.SignedMessage, 1)
	r.waiting[id] = ch
	r.mu.Unlock()

	select {
	case signed := <-ch:
		return signed, nil
	case <-ctx.Done():
		r.mu.Lock()
		delete(r.waiting, id)
		r.mu.Unlock()
		return nil, Error.New("no response to %v: %v", id, ctx.Err())
	}
}

// request sends req to dst and waits for the response of the group.
func (r *requester) request(ctx context.Context, dst authority.Authority, req message.Request) (*message.SignedMessage, error) {
	var id message.ID
	err := retry(ctx, func() (err error) {
		id, err = r.client.SendRequest(ctx, dst, req)
		return err
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return r.await(ctx, id.Increment())
}
