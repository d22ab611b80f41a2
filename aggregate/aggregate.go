// Copyright (c) 2017 Ryan Stone. Adapted under the BSD-style license
// used throughout this module.

// Package aggregate groups resolved call chains by process identity.
package aggregate

import (
	"fmt"
	"path"
	"sort"

	"github.com/aclements/go-symprof/sample"
)

// An Aggregation groups every Callchain belonging to one process
// identity. A new exec for an existing pid produces a fresh
// Aggregation rather than mutating this one, so earlier aggregations
// remain reachable through the Registry's ordered list even after the
// pid moves on to a new executable.
type Aggregation struct {
	pid                   int
	executable            string
	sampleCount           uint64
	userlandSampleCount   uint64
	chains                map[sample.Key]*sample.Callchain
	baseNameCache         string
	displayNameCache      string
}

func newAggregation(pid int, executable string) *Aggregation {
	return &Aggregation{
		pid:        pid,
		executable: executable,
		chains:     make(map[sample.Key]*sample.Callchain),
	}
}

// PID returns this aggregation's process identity.
func (a *Aggregation) PID() int {
	return a.pid
}

// Executable returns the path observed at exec time or first map-in,
// or "" if neither has happened yet.
func (a *Aggregation) Executable() string {
	return a.executable
}

// SampleCount returns the total number of samples folded into this
// aggregation, across both kernel and user mode.
func (a *Aggregation) SampleCount() uint64 {
	return a.sampleCount
}

// UserlandSampleCount returns the subset of SampleCount observed in
// user mode.
func (a *Aggregation) UserlandSampleCount() uint64 {
	return a.userlandSampleCount
}

// BaseName returns the executable's path tail, or a fallback:
// "kernel" if this aggregation has seen no userland samples, else
// "unknown_file".
func (a *Aggregation) BaseName() string {
	if a.baseNameCache != "" {
		return a.baseNameCache
	}
	switch {
	case a.executable != "":
		a.baseNameCache = path.Base(a.executable)
	case a.userlandSampleCount == 0:
		a.baseNameCache = "kernel"
	default:
		a.baseNameCache = "unknown_file"
	}
	return a.baseNameCache
}

// DisplayName returns "<exec> (<pid>)", substituting "kproc" for a
// kernel-only aggregation with no known executable, or "<unknown>"
// otherwise.
func (a *Aggregation) DisplayName() string {
	if a.displayNameCache != "" {
		return a.displayNameCache
	}
	procName := a.executable
	if procName == "" {
		if a.userlandSampleCount == 0 {
			procName = "kproc"
		} else {
			procName = "<unknown>"
		}
	}
	a.displayNameCache = fmt.Sprintf("%s (%d)", procName, a.pid)
	return a.displayNameCache
}

// AddSample finds or inserts a Callchain for s, using mapFrame to
// resolve any newly observed sample's addresses, and bumps the
// relevant totals.
func (a *Aggregation) AddSample(s sample.Sample, mapFrame sample.MapFrame) {
	a.sampleCount++
	if s.Mode == sample.User {
		a.userlandSampleCount++
	}

	key := s.Key()
	if cc, ok := a.chains[key]; ok {
		cc.AddSample()
		return
	}
	a.chains[key] = sample.NewCallchain(s, mapFrame)
}

// Callchains returns every distinct Callchain folded into this
// aggregation, in no particular order.
func (a *Aggregation) Callchains() []*sample.Callchain {
	out := make([]*sample.Callchain, 0, len(a.chains))
	for _, cc := range a.chains {
		out = append(out, cc)
	}
	return out
}

// SetExecutable records the executable name for an aggregation created
// before it was known (e.g. by a MapIn that preceded any Exec).
func (a *Aggregation) SetExecutable(path string) {
	a.executable = path
	a.baseNameCache = ""
	a.displayNameCache = ""
}

// A Registry owns every Aggregation ever created, keyed by the pid
// currently using it, and keeps every aggregation reachable (even
// superseded ones) in insertion order for final reporting.
type Registry struct {
	current map[int]*Aggregation
	all     []*Aggregation
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{current: make(map[int]*Aggregation)}
}

// GetOrCreate returns the aggregation currently registered for pid,
// inventing an empty-name one if none exists yet.
func (r *Registry) GetOrCreate(pid int) *Aggregation {
	if a, ok := r.current[pid]; ok {
		return a
	}
	return r.create(pid, "")
}

// MapIn ensures an aggregation exists for pid, naming it path if one
// had to be created.
func (r *Registry) MapIn(pid int, path string) {
	if _, ok := r.current[pid]; !ok {
		r.create(pid, path)
	}
}

// Exec replaces the current aggregation for pid with a fresh one named
// path. The superseded aggregation, if any, remains in the registry's
// ordered list.
func (r *Registry) Exec(pid int, path string) *Aggregation {
	return r.create(pid, path)
}

func (r *Registry) create(pid int, executable string) *Aggregation {
	a := newAggregation(pid, executable)
	r.current[pid] = a
	r.all = append(r.all, a)
	return a
}

// List returns every non-empty aggregation, sorted descending by total
// sample count, ties broken by insertion order.
func (r *Registry) List() []*Aggregation {
	out := make([]*Aggregation, 0, len(r.all))
	for _, a := range r.all {
		if a.sampleCount > 0 {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].sampleCount > out[j].sampleCount
	})
	return out
}
