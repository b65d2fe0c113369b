package app

import (
	"context"
	"sync"
	"time"
)

// TickerFactory creates a tick source and its stop function.
type TickerFactory func(interval time.Duration) (<-chan time.Time, func())

// RealTicker is the TickerFactory backed by time.Ticker.
func RealTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Countdown is a cancellable handle to a running tick loop.
type Countdown struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// StartCountdown calls onTick once per interval until Stop is called or ctx
// is cancelled.
func StartCountdown(ctx context.Context, interval time.Duration, newTicker TickerFactory, onTick func()) *Countdown {
	if newTicker == nil {
		newTicker = RealTicker
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &Countdown{cancel: cancel, done: make(chan struct{})}
	ticks, stop := newTicker(interval)

	go func() {
		defer close(c.done)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				// a tick racing with Stop is dropped
				if ctx.Err() != nil {
					return
				}
				onTick()
			}
		}
	}()
	return c
}

// Stop cancels the loop. It is safe to call more than once and does not wait.
func (c *Countdown) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(c.cancel)
}

// Done is closed once the tick loop has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
