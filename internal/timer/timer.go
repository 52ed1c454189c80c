// Package timer provides a background interval timer that repeatedly invokes a
// callback until it is stopped.
//
// The first invocation happens one interval after Start, and each following
// invocation happens one interval after the previous one returned. Stopping is
// cooperative: Stop only signals the loop, and Wait joins it.
package timer

import (
	"errors"
	"sync"
	"time"
)

// DefaultInterval is the delay between callbacks when none is configured.
const DefaultInterval = 2 * time.Second

var (
	// ErrInvalidInterval is returned when the interval is zero or negative.
	ErrInvalidInterval = errors.New("timer interval must be positive")
	// ErrNilCallback is returned when no callback is supplied.
	ErrNilCallback = errors.New("timer callback is nil")
)

// Timer invokes a callback every interval on its own goroutine.
type Timer struct {
	fn       func()
	interval time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}

	mu      sync.Mutex
	started bool
	active  bool
}

// New creates a stopped Timer. Call Start to begin the loop.
func New(fn func(), interval time.Duration) (*Timer, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	return &Timer{
		fn:       fn,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start creates a Timer and starts it.
func Start(fn func(), interval time.Duration) (*Timer, error) {
	t, err := New(fn, interval)
	if err != nil {
		return nil, err
	}
	t.Start()
	return t, nil
}

// Start launches the loop in a background goroutine and returns immediately.
// Calling Start more than once has no effect.
func (t *Timer) Start() {
	t.startOnce.Do(func() {
		t.mu.Lock()
		t.started = true
		t.active = true
		t.mu.Unlock()
		go t.run()
	})
}

// Stop signals the loop to exit. It does not wait for a callback that is
// already running; use Wait for that. Stop is safe to call multiple times and
// before Start.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}

// Wait blocks until the loop has exited. It returns immediately if the timer
// was never started.
func (t *Timer) Wait() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if !started {
		return
	}
	<-t.done
}

// Active reports whether the loop goroutine is running.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Interval returns the delay between callbacks.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

func (t *Timer) run() {
	defer func() {
		t.setActive(false)
		close(t.done)
	}()

	wait := time.NewTimer(t.interval)
	defer wait.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-wait.C:
		}

		// a stop that raced with the wake-up wins
		select {
		case <-t.stop:
			return
		default:
		}

		t.fn()
		wait.Reset(t.interval)
	}
}

func (t *Timer) setActive(v bool) {
	t.mu.Lock()
	t.active = v
	t.mu.Unlock()
}
