// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package sync2 provides scheduling helpers driven by a clock.
package sync2

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Cycle implements a controllable recurring event.
type Cycle struct {
	interval time.Duration
	clock    clock.Clock

	init     sync.Once
	control  chan interface{}
	stop     chan struct{}
	stopOnce sync.Once
}

// cycleTrigger asks the cycle to run the function out of schedule.
type cycleTrigger struct {
	done chan struct{}
}

// NewCycle creates a new cycle with the specified interval on clk.
func NewCycle(clk clock.Clock, interval time.Duration) *Cycle {
	if clk == nil {
		clk = clock.New()
	}
	return &Cycle{interval: interval, clock: clk}
}

func (cycle *Cycle) initialize() {
	cycle.init.Do(func() {
		cycle.control = make(chan interface{})
		cycle.stop = make(chan struct{})
	})
}

// sendControl sends a control message
func (cycle *Cycle) sendControl(message interface{}) bool {
	cycle.initialize()
	select {
	case cycle.control <- message:
		return true
	case <-cycle.stop:
		return false
	}
}

// Run runs fn once immediately and then on every tick until ctx is
// canceled, Stop is called or fn fails.
func (cycle *Cycle) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	cycle.initialize()

	ticker := cycle.clock.Ticker(cycle.interval)
	defer ticker.Stop()

	if err := fn(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				return err
			}

		case message := <-cycle.control:
			if trigger, ok := message.(cycleTrigger); ok {
				if err := fn(ctx); err != nil {
					return err
				}
				close(trigger.done)
			}

		case <-cycle.stop:
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop stops the cycle permanently
func (cycle *Cycle) Stop() {
	cycle.initialize()
	cycle.stopOnce.Do(func() { close(cycle.stop) })
}

// TriggerWait runs the function out of schedule and waits for it to finish.
// It returns false when the cycle has been stopped.
func (cycle *Cycle) TriggerWait() bool {
	done := make(chan struct{})
	if !cycle.sendControl(cycleTrigger{done: done}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-cycle.stop:
		return false
	}
}
