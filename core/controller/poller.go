package controller

import (
	"context"
	"sync"
	"time"
)

// Poller calls its function every `interval` until stopped: the dashboard's auto-refresh.
// A failed call is not retried before the next tick.
type Poller struct {
	interval time.Duration
	fn       func(ctx context.Context) error
	onError  func(error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewPoller(interval time.Duration, fn func(ctx context.Context) error, onError func(error)) *Poller {
	return &Poller{interval: interval, fn: fn, onError: onError}
}

// Start begins polling in the background. Starting a running Poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || p.interval <= 0 {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.running = true
	go p.loop(ctx, p.done)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.fn(ctx); err != nil && ctx.Err() == nil && p.onError != nil {
				p.onError(err)
			}
		}
	}
}

// Stop ends polling and waits for an in-progress call to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
