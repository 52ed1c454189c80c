// Package playbook is a minimal orchestration host used to drive callbacks
// from the command line. It reads a YAML list of plays, "runs" each task on
// every host by waiting for the task's duration, and announces play starts,
// task starts, per-host results and final statistics through a
// lifecycle.Dispatcher.
package playbook

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultForks bounds how many hosts run a task at the same time.
const DefaultForks = 5

// Duration is a time.Duration that unmarshals from Go duration strings
// ("1.5s", "2m") or a plain number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string or number: %w", value.Line, err)
	}
	if parsed, err := time.ParseDuration(s); err == nil {
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("line %d: invalid duration %q", value.Line, s)
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// Task is a unit of simulated remote work.
type Task struct {
	Name     string   `yaml:"name"`
	Duration Duration `yaml:"duration"`
	// Fail lists the hosts this task fails on.
	Fail []string `yaml:"fail,omitempty"`
	// Changed marks successful results as changed.
	Changed bool `yaml:"changed,omitempty"`
	// When, if present and false, skips the task on every host.
	When *bool `yaml:"when,omitempty"`
}

// Conditional reports whether the task carries a when clause.
func (t Task) Conditional() bool {
	return t.When != nil
}

// Skipped reports whether the when clause is false.
func (t Task) Skipped() bool {
	return t.When != nil && !*t.When
}

// FailsOn reports whether the task fails on host.
func (t Task) FailsOn(host string) bool {
	for _, h := range t.Fail {
		if h == host {
			return true
		}
	}
	return false
}

// Play is a list of tasks run against a set of hosts.
type Play struct {
	Name  string   `yaml:"name"`
	Hosts []string `yaml:"hosts"`
	Forks int      `yaml:"forks,omitempty"`
	Tasks []Task   `yaml:"tasks"`
}

// Playbook is an ordered list of plays.
type Playbook struct {
	Path  string
	Plays []Play
}

// Load reads and validates a playbook file.
func Load(path string) (*Playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading playbook: %w", err)
	}
	pb, err := Parse(data)
	if err != nil {
		return nil, err
	}
	pb.Path = path
	return pb, nil
}

// Parse decodes and validates playbook YAML.
func Parse(data []byte) (*Playbook, error) {
	var plays []Play
	if err := yaml.Unmarshal(data, &plays); err != nil {
		return nil, fmt.Errorf("parsing playbook: %w", err)
	}
	pb := &Playbook{Plays: plays}
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	return pb, nil
}

// Validate checks the playbook and fills in defaults.
func (pb *Playbook) Validate() error {
	if len(pb.Plays) == 0 {
		return errors.New("playbook has no plays")
	}

	var errs []error
	for i := range pb.Plays {
		play := &pb.Plays[i]
		where := fmt.Sprintf("play %d", i+1)
		if strings.TrimSpace(play.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		} else {
			where = fmt.Sprintf("play %q", play.Name)
		}
		if len(play.Hosts) == 0 {
			errs = append(errs, fmt.Errorf("%s: at least one host is required", where))
		}
		if play.Forks < 0 {
			errs = append(errs, fmt.Errorf("%s: forks must not be negative", where))
		}
		if play.Forks == 0 {
			play.Forks = DefaultForks
		}
		for j, task := range play.Tasks {
			if strings.TrimSpace(task.Name) == "" {
				errs = append(errs, fmt.Errorf("%s task %d: name is required", where, j+1))
			}
			if task.Duration < 0 {
				errs = append(errs, fmt.Errorf("%s task %q: duration must not be negative", where, task.Name))
			}
		}
	}
	return errors.Join(errs...)
}
