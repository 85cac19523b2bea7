// Package debounce coalesces rapid update sequences into a single delivery
// after a quiet period. A view subscribed to a stream that emits bursts
// (mock producers on a tight interval, or a backend catch-up after
// reconnect) re-renders once per settled window instead of once per frame.
//
// Only the most recent payload is ever delivered; payloads superseded
// within the window are discarded, not merged. Merging happens downstream.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delivers the last payload seen once updates go quiet for the
// configured delay. The zero value is not usable; construct with New.
type Debouncer[T any] struct {
	mu        sync.Mutex
	delay     time.Duration
	timer     *time.Timer
	pending   T
	hasValue  bool
	callbacks []func(T)
	destroyed bool
}

// New creates a debouncer with the given quiet-period delay.
func New[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{delay: delay}
}

// AddCallback registers a function invoked with the latest payload each time
// the quiet period elapses. Callbacks run synchronously, in registration
// order, from the timer goroutine.
func (d *Debouncer[T]) AddCallback(fn func(T)) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.callbacks = append(d.callbacks, fn)
}

// Update replaces any pending payload and restarts the quiet-period timer.
func (d *Debouncer[T]) Update(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.pending = v
	d.hasValue = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// fire delivers the pending payload to every callback. The destroyed flag is
// re-checked here because a timer that already fired cannot be cancelled;
// its queued callback must become a no-op after Destroy. Delivery happens
// under the lock so Destroy cannot return while a delivery is in flight;
// callbacks must not call back into the debouncer.
func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed || !d.hasValue {
		return
	}
	v := d.pending
	d.hasValue = false
	var zero T
	d.pending = zero

	for _, fn := range d.callbacks {
		fn(v)
	}
}

// Destroy cancels any pending timer and clears callbacks. Safe to call
// multiple times; no callback fires after the first call returns.
func (d *Debouncer[T]) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callbacks = nil
	d.hasValue = false
}
