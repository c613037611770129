// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package memnet_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/routing/internal/testcontext"
	"storj.io/routing/pkg/transport/memnet"
	"storj.io/routing/pkg/xorname"
)

type recorder struct {
	mu        sync.Mutex
	connected []xorname.Name
	gone      []xorname.Name
	frames    chan string
	refuse    int
}

func newRecorder() *recorder { return &recorder{frames: make(chan string, 100)} }

func (r *recorder) Connected(ctx context.Context, name xorname.Name) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = append(r.connected, name)
	return nil
}

func (r *recorder) Disconnected(ctx context.Context, name xorname.Name) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gone = append(r.gone, name)
	return nil
}

func (r *recorder) Receive(ctx context.Context, from xorname.Name, frame []byte) error {
	r.mu.Lock()
	if r.refuse > 0 {
		r.refuse--
		r.mu.Unlock()
		return errors.New("busy")
	}
	r.mu.Unlock()
	r.frames <- string(frame)
	return nil
}

func TestNetwork(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	network := memnet.New(zaptest.NewLogger(t))
	defer ctx.Check(network.Close)

	a, b := network.Endpoint(xorname.Random()), network.Endpoint(xorname.Random())
	ra, rb := newRecorder(), newRecorder()
	a.Attach(ra)
	b.Attach(rb)

	err := a.Send(ctx, b.Name(), []byte("early"))
	assert.True(t, memnet.ErrNotConnected.Has(err))

	require.NoError(t, network.Connect(ctx, a.Name(), b.Name()))
	assert.True(t, network.Connected(a.Name(), b.Name()))
	assert.True(t, network.Connected(b.Name(), a.Name()))
	assert.Equal(t, []xorname.Name{b.Name()}, ra.connected)
	assert.Equal(t, []xorname.Name{a.Name()}, rb.connected)

	rb.mu.Lock()
	rb.refuse = 3
	rb.mu.Unlock()

	for _, frame := range []string{"one", "two", "three"} {
		require.NoError(t, a.Send(ctx, b.Name(), []byte(frame)))
	}
	assert.Equal(t, "one", <-rb.frames)
	assert.Equal(t, "two", <-rb.frames)
	assert.Equal(t, "three", <-rb.frames)

	require.NoError(t, b.Send(ctx, a.Name(), []byte("back")))
	assert.Equal(t, "back", <-ra.frames)

	require.NoError(t, b.Disconnect(a.Name()))
	assert.False(t, network.Connected(a.Name(), b.Name()))
	assert.Equal(t, []xorname.Name{b.Name()}, ra.gone)
	assert.Equal(t, []xorname.Name{a.Name()}, rb.gone)

	err = a.Send(ctx, b.Name(), []byte("late"))
	assert.True(t, memnet.ErrNotConnected.Has(err))

	err = network.Disconnect(a.Name(), b.Name())
	assert.True(t, memnet.ErrNotConnected.Has(err))
}

func TestConnectNeedsHandlers(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	network := memnet.New(zaptest.NewLogger(t))
	defer ctx.Check(network.Close)

	a, b := network.Endpoint(xorname.Random()), network.Endpoint(xorname.Random())
	a.Attach(newRecorder())
	assert.True(t, memnet.Error.Has(network.Connect(ctx, a.Name(), b.Name())))
	assert.True(t, memnet.Error.Has(network.Connect(ctx, a.Name(), a.Name())))
}

func TestNotRetryable(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	network := memnet.New(zaptest.NewLogger(t))
	defer ctx.Check(network.Close)
	network.Retryable = func(error) bool { return false }

	a, b := network.Endpoint(xorname.Random()), network.Endpoint(xorname.Random())
	rb := newRecorder()
	rb.refuse = 1
	a.Attach(newRecorder())
	b.Attach(rb)
	require.NoError(t, network.Connect(ctx, a.Name(), b.Name()))

	require.NoError(t, a.Send(ctx, b.Name(), []byte("dropped")))
	require.NoError(t, a.Send(ctx, b.Name(), []byte("kept")))
	assert.Equal(t, "kept", <-rb.frames)
}
