package lifecycle

import (
	"fmt"
	"sort"
	"sync"
)

// Play identifies a play about to start.
type Play struct {
	Name  string
	Hosts []string
}

// Task identifies a task about to start.
type Task struct {
	Name string
	// Play is the name of the enclosing play.
	Play string
	// Conditional is true when the task carries a when clause.
	Conditional bool
}

// Status is the outcome of a task on one host.
type Status string

const (
	StatusOK      Status = "ok"
	StatusChanged Status = "changed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of a task on a single host.
type Result struct {
	Host    string
	Task    Task
	Status  Status
	Message string
}

// HostSummary holds the counters for one host.
type HostSummary struct {
	OK      int `yaml:"ok"`
	Changed int `yaml:"changed"`
	Failed  int `yaml:"failed"`
	Skipped int `yaml:"skipped"`
}

// String formats the summary the way the recap prints it.
func (s HostSummary) String() string {
	return fmt.Sprintf("ok=%d changed=%d failed=%d skipped=%d", s.OK, s.Changed, s.Failed, s.Skipped)
}

// Stats aggregates per-host results. It is safe for concurrent use.
type Stats struct {
	mu    sync.Mutex
	hosts map[string]*HostSummary
}

// NewStats returns empty Stats.
func NewStats() *Stats {
	return &Stats{hosts: make(map[string]*HostSummary)}
}

// Record counts one result for host. Changed results also count as ok.
func (s *Stats) Record(host string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hosts == nil {
		s.hosts = make(map[string]*HostSummary)
	}
	sum, ok := s.hosts[host]
	if !ok {
		sum = &HostSummary{}
		s.hosts[host] = sum
	}
	switch status {
	case StatusOK:
		sum.OK++
	case StatusChanged:
		sum.OK++
		sum.Changed++
	case StatusFailed:
		sum.Failed++
	case StatusSkipped:
		sum.Skipped++
	}
}

// Hosts returns the hosts seen so far, sorted.
func (s *Stats) Hosts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	hosts := make([]string, 0, len(s.hosts))
	for h := range s.hosts {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Summary returns a copy of the counters for host.
func (s *Stats) Summary(host string) HostSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sum, ok := s.hosts[host]; ok {
		return *sum
	}
	return HostSummary{}
}

// Failures returns the total number of failed results.
func (s *Stats) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, sum := range s.hosts {
		total += sum.Failed
	}
	return total
}
