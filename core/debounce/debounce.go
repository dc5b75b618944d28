// Package debounce coalesces rapidly repeating events into a single effect.
package debounce

import (
	"sync"
	"time"
)

// Debouncer calls its function once per quiet window of `delay`, with the last value triggered.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending bool
	last    T
	stopped bool
}

func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger (re)starts the quiet window with `v` as the value to deliver. It is a no-op after Stop.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.last = v
	d.pending = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	// a newer trigger, a Cancel or a Stop raced the timer
	if seq != d.seq || !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.last
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}

// Pending reports whether a value is waiting for its window to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Cancel drops the pending value, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Debouncer[T]) cancelLocked() {
	d.seq++
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush delivers the pending value now instead of at the end of its window.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.last
	d.cancelLocked()
	d.mu.Unlock()

	d.fn(v)
}

// Stop cancels the pending value and makes later triggers no-ops, as at teardown.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}
