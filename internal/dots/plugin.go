// Package dots implements a callback that prints progress dots while a task
// does remote work. Dots are written to the terminal only and are never logged.
//
// Every task start replaces the running dot timer; a play start stops it.
// Output written without a newline is remembered so that the next terminated
// line, or the end of the run, starts on a fresh line instead of being glued
// to the dots.
package dots

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"syscall"
	"time"

	"github.com/ariel-frischer/progressdots/internal/lifecycle"
	"github.com/ariel-frischer/progressdots/internal/output"
	"github.com/ariel-frischer/progressdots/internal/timer"
)

// Name is the callback name the plugin registers under.
const Name = "progress_dots"

// DefaultDot is the character printed on every tick.
const DefaultDot = "."

// Options configures a Plugin.
type Options struct {
	// Interval between dots. Zero selects timer.DefaultInterval, so callers
	// converting a configured value must reject one that rounds to zero
	// rather than pass it through. Negative values are an error.
	Interval time.Duration
	// Dot is printed on every tick. Empty means DefaultDot.
	Dot string
	// Color for the dot; empty prints it uncolored.
	Color string
}

// Plugin is the progress-dots callback. It is safe for concurrent use: hook
// calls, Display calls from the host and the timer's dots serialize on one
// mutex.
type Plugin struct {
	console output.Console
	opts    Options

	mu       sync.Mutex
	carried  string
	carrying bool
	progress *timer.Timer
	bgErr    error
}

var (
	_ lifecycle.Callback = (*Plugin)(nil)
	_ lifecycle.Closer   = (*Plugin)(nil)
)

// New creates a Plugin writing through console.
func New(console output.Console, opts Options) (*Plugin, error) {
	if console == nil {
		return nil, errors.New("dots: console is nil")
	}
	if opts.Interval == 0 {
		opts.Interval = timer.DefaultInterval
	}
	if opts.Interval < 0 {
		return nil, fmt.Errorf("dots: %w: %s", timer.ErrInvalidInterval, opts.Interval)
	}
	if opts.Dot == "" {
		opts.Dot = DefaultDot
	}
	return &Plugin{console: console, opts: opts}, nil
}

// Options returns the effective options.
func (p *Plugin) Options() Options {
	return p.opts
}

// OnTaskStart stops the previous task's timer and starts a new one.
func (p *Plugin) OnTaskStart(task lifecycle.Task) error {
	t, err := timer.New(p.PrintDot, p.opts.Interval)
	if err != nil {
		return fmt.Errorf("starting progress timer: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.progress != nil {
		p.progress.Stop()
	}
	p.progress = t
	t.Start()
	log.Printf("[dots] debug: task %q started, dot every %s", task.Name, p.opts.Interval)

	return p.takeBackgroundErr()
}

// OnPlayStart stops the running timer, since a new play means new tasks, and
// terminates any carried line.
func (p *Plugin) OnPlayStart(play lifecycle.Play) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.progress != nil {
		p.progress.Stop()
		p.progress = nil
	}
	log.Printf("[dots] debug: play %q started", play.Name)

	err := p.flushCarried()
	return errors.Join(err, p.takeBackgroundErr())
}

// OnStats terminates any carried line so the shell prompt does not land on it.
func (p *Plugin) OnStats(_ *lifecycle.Stats) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.flushCarried()
	return errors.Join(err, p.takeBackgroundErr())
}

// Close stops the running timer and waits for it to exit. It returns the
// error of a dot that failed after the last hook call, if any.
func (p *Plugin) Close() error {
	p.mu.Lock()
	t := p.progress
	p.progress = nil
	p.mu.Unlock()

	// the timer callback takes p.mu, so join without holding it
	if t != nil {
		t.Stop()
		t.Wait()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.takeBackgroundErr()
}

// Running reports whether a dot timer is active.
func (p *Plugin) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress != nil && p.progress.Active()
}

// Carried returns the text written since the last terminated line and whether
// there is any.
func (p *Plugin) Carried() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.carried, p.carrying
}

// PrintDot displays one dot without ending the line. It is the timer
// callback; a failed write is kept and returned by the next hook call.
func (p *Plugin) PrintDot() {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.display(p.opts.Dot, output.DisplayOptions{Color: p.opts.Color, Partial: true})
	if err != nil {
		log.Printf("[dots] debug: printing dot: %v", err)
		if p.bgErr == nil {
			p.bgErr = err
		}
	}
}

// Display writes msg to the selected stream. With Partial set the line is
// left open and msg is carried; otherwise a carried line is terminated first
// and msg is written with a trailing newline.
//
// Characters the output charset cannot represent are replaced. A write to a
// closed pipe is ignored; any other write error is returned.
func (p *Plugin) Display(msg string, opts output.DisplayOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.display(msg, opts)
}

func (p *Plugin) display(msg string, opts output.DisplayOptions) error {
	text := msg
	if opts.Color != "" {
		text = p.console.Colorize(msg, opts.Color)
	}

	if opts.Partial {
		p.carry(msg)
		return p.write(text, opts.Stream)
	}

	if p.carrying {
		if err := p.flushCarried(); err != nil {
			return err
		}
	}
	return p.write(text+"\n", opts.Stream)
}

// carry appends raw, uncolored text to the open line.
func (p *Plugin) carry(msg string) {
	p.carried += msg
	p.carrying = true
}

// flushCarried ends the open line on stdout, where dots are printed.
func (p *Plugin) flushCarried() error {
	if !p.carrying {
		return nil
	}
	p.carried = ""
	p.carrying = false
	return p.write("\n", output.Stdout)
}

func (p *Plugin) write(text string, stream output.Stream) error {
	w := p.console.Writer(stream)
	if _, err := w.Write(p.console.Encode(text, stream)); err != nil {
		return ignoreBrokenPipe(err, stream)
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return ignoreBrokenPipe(err, stream)
		}
	}
	return nil
}

func (p *Plugin) takeBackgroundErr() error {
	err := p.bgErr
	p.bgErr = nil
	return err
}

type flusher interface {
	Flush() error
}

// ignoreBrokenPipe drops EPIPE, e.g. when output is piped to "head -n1".
func ignoreBrokenPipe(err error, stream output.Stream) error {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe) {
		log.Printf("[dots] debug: ignoring broken pipe on %s", stream)
		return nil
	}
	return fmt.Errorf("writing to %s: %w", stream, err)
}
