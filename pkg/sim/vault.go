// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package sim

import (
	"context"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/routing/pkg/data"
	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/routing"
	"storj.io/routing/storage"
	"storj.io/routing/storage/teststore"
)

// requestQueueSize bounds the requests a vault has not answered yet.
const requestQueueSize = 1024

// vault is a node that stores the immutable chunks its groups are
// responsible for and answers Put and Get requests.
type vault struct {
	log      *zap.Logger
	node     *routing.Node
	chunks   storage.KeyValueStore
	requests chan *message.SignedMessage
}

func newVault(log *zap.Logger, node *routing.Node) *vault {
	return &vault{
		log:      log,
		node:     node,
		chunks:   teststore.New(),
		requests: make(chan *message.SignedMessage, requestQueueSize),
	}
}

// pump drains the events of the node. It never blocks on a request so
// the node never stalls behind its consumer.
func (v *vault) pump() {
	for ev := range v.node.Events() {
		switch ev := ev.(type) {
		case routing.RequestReceived:
			select {
			case v.requests <- ev.Message:
			default:
				v.log.Warn("dropping request", zap.Stringer("ID", ev.Message.Message.ID))
			}
		case routing.MessageRejected:
			v.log.Debug("message rejected", zap.Stringer("ID", ev.ID), zap.Error(ev.Err))
		case routing.ConsensusFailed:
			v.log.Debug("consensus failed", zap.Stringer("ID", ev.ID), zap.Error(ev.Err))
		default:
			v.log.Debug("event", zap.Stringer("Event", ev))
		}
	}
	close(v.requests)
}

// serve answers requests until the node terminates.
func (v *vault) serve(ctx context.Context) error {
	for req := range v.requests {
		resp := v.handle(ctx, req.Message)
		if resp == nil {
			continue
		}
		msg := req.Message
		err := retry(ctx, func() error {
			return v.node.SendResponse(ctx, msg.Dst, msg.Src, msg.ID.Increment(), resp)
		})
		if err != nil && !routing.ErrState.Has(err) {
			v.log.Warn("unable to respond", zap.Stringer("ID", msg.ID), zap.Error(err))
		}
	}
	return nil
}

func (v *vault) handle(ctx context.Context, msg message.RoutingMessage) message.Response {
	switch req := msg.Content.(type) {
	case message.PutRequest:
		id := req.Data.Identifier()
		if id.Kind != data.KindImmutable {
			return message.PutFailure{DataID: id, Error: message.ClientError{Code: message.InvalidOperation, Detail: "only immutable data is stored"}}
		}
		value, err := data.Encode(req.Data)
		if err == nil {
			err = v.chunks.Put(ctx, storage.Key(id.Name.Bytes()), value)
		}
		if err != nil {
			return message.PutFailure{DataID: id, Error: message.ClientError{Code: message.NetworkOther, Detail: err.Error()}}
		}
		return message.PutSuccess{DataID: id}

	case message.GetRequest:
		value, err := v.chunks.Get(ctx, storage.Key(req.DataID.Name.Bytes()))
		if storage.ErrKeyNotFound.Has(err) {
			return message.GetFailure{DataID: req.DataID, Error: message.ClientError{Code: message.NoSuchData}}
		}
		var chunk data.Data
		if err == nil {
			chunk, err = data.Decode(value)
		}
		if err != nil {
			return message.GetFailure{DataID: req.DataID, Error: message.ClientError{Code: message.NetworkOther, Detail: err.Error()}}
		}
		return message.GetSuccess{Data: chunk}

	default:
		v.log.Debug("unsupported request", zap.Stringer("Message", &msg))
		return nil
	}
}

// retry calls fn until it stops failing with backpressure.
func retry(ctx context.Context, fn func() error) error {
	for {
		err := fn()
		if !routing.ErrBackpressure.Has(err) {
			return err
		}
		select {
		case <-time.After(10 * time.Millisecond):
		case <-ctx.Done():
			return errs.Combine(err, ctx.Err())
		}
	}
}
