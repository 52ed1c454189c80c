package lifecycle

import (
	"errors"
	"fmt"
	"sync"
)

// Dispatcher fans lifecycle events out to callbacks in registration order.
// Every callback receives every event even when an earlier one fails; the
// errors are joined and returned.
type Dispatcher struct {
	mu        sync.Mutex
	callbacks []Callback
}

// NewDispatcher creates a dispatcher for the given callbacks. Nil callbacks
// are skipped.
func NewDispatcher(callbacks ...Callback) *Dispatcher {
	d := &Dispatcher{}
	for _, cb := range callbacks {
		d.Register(cb)
	}
	return d
}

// Register appends a callback.
func (d *Dispatcher) Register(cb Callback) {
	if cb == nil {
		return
	}
	d.mu.Lock()
	d.callbacks = append(d.callbacks, cb)
	d.mu.Unlock()
}

// Len returns the number of registered callbacks.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.callbacks)
}

// PlayStart delivers OnPlayStart.
func (d *Dispatcher) PlayStart(play Play) error {
	return d.each(func(cb Callback) error { return cb.OnPlayStart(play) })
}

// TaskStart delivers OnTaskStart.
func (d *Dispatcher) TaskStart(task Task) error {
	return d.each(func(cb Callback) error { return cb.OnTaskStart(task) })
}

// Stats delivers OnStats.
func (d *Dispatcher) Stats(stats *Stats) error {
	return d.each(func(cb Callback) error { return cb.OnStats(stats) })
}

// Result delivers OnResult to callbacks implementing ResultCallback.
func (d *Dispatcher) Result(result Result) error {
	return d.each(func(cb Callback) error {
		if rc, ok := cb.(ResultCallback); ok {
			return rc.OnResult(result)
		}
		return nil
	})
}

// Close closes every callback implementing Closer.
func (d *Dispatcher) Close() error {
	return d.each(func(cb Callback) error {
		if c, ok := cb.(Closer); ok {
			return c.Close()
		}
		return nil
	})
}

// each holds the dispatcher lock for the whole fan-out so that events from
// concurrent workers reach callbacks one at a time.
func (d *Dispatcher) each(fn func(Callback) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for _, cb := range d.callbacks {
		if err := fn(cb); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", cb, err))
		}
	}
	return errors.Join(errs...)
}
