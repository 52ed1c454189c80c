// Package lifecycle defines the hook surface an orchestration host drives:
// the events it announces (play start, task start, per-host results, run
// statistics) and the Callback interface plugins implement to receive them.
//
// There is no event bus and no goroutines of its own. The Dispatcher calls
// callbacks in registration order on the caller's goroutine.
package lifecycle

import "io"

// Callback receives the lifecycle notifications a host issues.
//
// Hooks return errors so that failures inside a plugin propagate to the host,
// which decides how to report them.
type Callback interface {
	// OnPlayStart is called before the first task of a play.
	OnPlayStart(play Play) error

	// OnTaskStart is called before a task runs on any host.
	OnTaskStart(task Task) error

	// OnStats is called once after the last play, with the final tallies.
	OnStats(stats *Stats) error
}

// ResultCallback is implemented by callbacks that also want per-host task
// results. Results may be delivered from several goroutines; the Dispatcher
// serializes them.
type ResultCallback interface {
	OnResult(result Result) error
}

// Closer is an alias for io.Closer, checked by Dispatcher.Close.
type Closer = io.Closer
