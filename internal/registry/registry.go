// Package registry holds the scenario runs recorded during a session.
package registry

import (
	"sort"
	"sync"
)

// Registry is an append-only collection of scenario runs keyed by suite name.
type Registry struct {
	mu   sync.RWMutex
	runs map[string][]ScenarioRun
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{runs: map[string][]ScenarioRun{}}
}

// Append stores a deep copy of run under its suite.
func (r *Registry) Append(run ScenarioRun) {
	snapshot := run.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.Suite] = append(r.runs[run.Suite], snapshot)
}

// Suites returns the suite names with recorded runs, sorted.
func (r *Registry) Suites() []string {
	r.mu.RLock()
	suites := make([]string, 0, len(r.runs))
	for suite := range r.runs {
		suites = append(suites, suite)
	}
	r.mu.RUnlock()
	sort.Strings(suites)
	return suites
}

// Runs returns copies of the runs recorded for a suite in append order.
func (r *Registry) Runs(suite string) []ScenarioRun {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runs := r.runs[suite]
	out := make([]ScenarioRun, len(runs))
	for i, run := range runs {
		out[i] = run.Clone()
	}
	return out
}

// Has reports whether any run was recorded for suite.
func (r *Registry) Has(suite string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs[suite]) > 0
}

// Len returns the total number of recorded runs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, runs := range r.runs {
		total += len(runs)
	}
	return total
}
