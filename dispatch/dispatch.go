// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

// Package dispatch drives the aggregation registry and per-pid address
// spaces from a stream of perfevents.Events.
package dispatch

import (
	"log"
	"path/filepath"

	"github.com/aclements/go-symprof/addrspace"
	"github.com/aclements/go-symprof/aggregate"
	"github.com/aclements/go-symprof/binimage"
	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/perfevents"
)

// A Dispatcher applies events from a Source to a Registry, maintaining
// one addrspace.Space per pid. The kernel is tracked under
// perfevents.KernelPID like any other pid.
type Dispatcher struct {
	registry  *aggregate.Registry
	cache     *binimage.Cache
	spaces    map[int]*addrspace.Space
	pidFilter map[int]bool // nil or empty means no filtering

	// ModulePath is searched, in order, for a kernel module named by a
	// bare filename (no directory component) in a MapIn for the kernel
	// pid. Left nil by New; the orchestrator wires in module_path.
	ModulePath []string

	// QuitOnError makes a kernel module search miss fatal instead of a
	// logged fallback to the unmapped image, per spec.md §6.
	QuitOnError bool
}

// New creates a Dispatcher that deposits resolved state into registry,
// resolving images through cache. pidFilter, if non-empty, restricts
// which pids' Sample events are kept; MapIn and Exec events are always
// honored, per spec.md §4.9.
func New(registry *aggregate.Registry, cache *binimage.Cache, pidFilter map[int]bool) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		cache:     cache,
		spaces:    make(map[int]*addrspace.Space),
		pidFilter: pidFilter,
	}
}

// Run drains every event from src and applies it, stopping at end of
// stream or the first read error.
func (d *Dispatcher) Run(src *perfevents.Source) error {
	for {
		ev, ok := src.Next()
		if !ok {
			break
		}
		d.apply(ev)
	}
	return src.Err()
}

func (d *Dispatcher) apply(ev perfevents.Event) {
	switch {
	case ev.IsMapIn():
		d.registry.MapIn(ev.MapInPID, ev.MapInPath)
		space := d.spaceFor(ev.MapInPID)
		if ev.MapInPID == perfevents.KernelPID && !filepath.IsAbs(ev.MapInPath) {
			if !space.FindAndMap(ev.MapInAddr, d.ModulePath, ev.MapInPath) && d.QuitOnError {
				log.Fatalf("dispatch: kernel module %q not found in module_path %v", ev.MapInPath, d.ModulePath)
			}
			return
		}
		space.MapIn(ev.MapInAddr, ev.MapInPath)

	case ev.IsExec():
		d.registry.Exec(ev.ExecPID, ev.ExecPath)
		space := addrspace.New(d.cache)
		d.spaces[ev.ExecPID] = space
		space.ProcessExec(ev.ExecPath)

	case ev.IsSample():
		if d.filtered(ev.Sample.PID) {
			return
		}
		space := d.spaceFor(ev.Sample.PID)
		agg := d.registry.GetOrCreate(ev.Sample.PID)
		agg.AddSample(ev.Sample, func(addr frame.Addr) *frame.Callframe {
			return space.MapFrame(uint64(addr))
		})

	case ev.IsUnhandled():
		// Silently skipped, per spec.
	}
}

func (d *Dispatcher) spaceFor(pid int) *addrspace.Space {
	s, ok := d.spaces[pid]
	if !ok {
		s = addrspace.New(d.cache)
		d.spaces[pid] = s
	}
	return s
}

func (d *Dispatcher) filtered(pid int) bool {
	if len(d.pidFilter) == 0 {
		return false
	}
	return !d.pidFilter[pid]
}
