package playbook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ariel-frischer/progressdots/internal/lifecycle"
	"golang.org/x/sync/errgroup"
)

// ErrHostsFailed is returned by Run when at least one task failed on a host.
var ErrHostsFailed = errors.New("one or more hosts failed")

// Runner executes a playbook and announces its progress to callbacks.
type Runner struct {
	dispatcher *lifecycle.Dispatcher
	// sleep waits for d or until ctx is done; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a runner that notifies the dispatcher's callbacks.
func NewRunner(dispatcher *lifecycle.Dispatcher) *Runner {
	return &Runner{dispatcher: dispatcher, sleep: sleepContext}
}

// Run executes every play in order and returns the final statistics. Hook
// errors abort the run. Task failures do not; they remove the host from the
// rest of the play and make Run return ErrHostsFailed after the recap.
func (r *Runner) Run(ctx context.Context, pb *Playbook) (*lifecycle.Stats, error) {
	stats := lifecycle.NewStats()

	for _, play := range pb.Plays {
		if err := r.runPlay(ctx, play, stats); err != nil {
			return stats, err
		}
	}

	if err := r.dispatcher.Stats(stats); err != nil {
		return stats, fmt.Errorf("stats hook: %w", err)
	}
	if stats.Failures() > 0 {
		return stats, ErrHostsFailed
	}
	return stats, nil
}

func (r *Runner) runPlay(ctx context.Context, play Play, stats *lifecycle.Stats) error {
	if err := r.dispatcher.PlayStart(lifecycle.Play{Name: play.Name, Hosts: play.Hosts}); err != nil {
		return fmt.Errorf("play start hook: %w", err)
	}
	log.Printf("[playbook] debug: play %q on %d hosts (forks=%d)", play.Name, len(play.Hosts), play.Forks)

	live := append([]string(nil), play.Hosts...)
	for _, task := range play.Tasks {
		if len(live) == 0 {
			log.Printf("[playbook] debug: no hosts left in play %q", play.Name)
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		event := lifecycle.Task{Name: task.Name, Play: play.Name, Conditional: task.Conditional()}
		if err := r.dispatcher.TaskStart(event); err != nil {
			return fmt.Errorf("task start hook: %w", err)
		}

		failed, err := r.runTask(ctx, play.Forks, live, task, event, stats)
		if err != nil {
			return err
		}
		live = remaining(live, failed)
	}
	return nil
}

// runTask runs task on hosts, at most forks at a time, and returns the hosts
// it failed on.
func (r *Runner) runTask(ctx context.Context, forks int, hosts []string, task Task, event lifecycle.Task, stats *lifecycle.Stats) (map[string]bool, error) {
	var mu sync.Mutex
	failed := make(map[string]bool)

	// Validate fills in forks; a zero limit would block every g.Go
	if forks <= 0 {
		forks = DefaultForks
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(forks)

	for _, host := range hosts {
		g.Go(func() error {
			result := lifecycle.Result{Host: host, Task: event}

			switch {
			case task.Skipped():
				result.Status = lifecycle.StatusSkipped
			default:
				if err := r.sleep(gctx, time.Duration(task.Duration)); err != nil {
					return err
				}
				switch {
				case task.FailsOn(host):
					result.Status = lifecycle.StatusFailed
					result.Message = "simulated failure"
					mu.Lock()
					failed[host] = true
					mu.Unlock()
				case task.Changed:
					result.Status = lifecycle.StatusChanged
				default:
					result.Status = lifecycle.StatusOK
				}
			}

			stats.Record(host, result.Status)
			if err := r.dispatcher.Result(result); err != nil {
				return fmt.Errorf("result hook for %s: %w", host, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return failed, nil
}

func remaining(hosts []string, failed map[string]bool) []string {
	if len(failed) == 0 {
		return hosts
	}
	out := hosts[:0:0]
	for _, h := range hosts {
		if !failed[h] {
			out = append(out, h)
		}
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
