// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

// Package orchestrator drives one end-to-end run: open the event log,
// dispatch every event, resolve every image's outstanding raw frames,
// and hand the resulting aggregation list to a printer.
package orchestrator

import (
	"fmt"
	"log"
	"strings"

	"github.com/aclements/go-symprof/aggregate"
	"github.com/aclements/go-symprof/binimage"
	"github.com/aclements/go-symprof/diag"
	"github.com/aclements/go-symprof/dispatch"
	"github.com/aclements/go-symprof/dwarfsym"
	"github.com/aclements/go-symprof/intern"
	"github.com/aclements/go-symprof/perfevents"
	"github.com/aclements/go-symprof/perffile"
)

// A Config holds the Orchestrator's configuration surface, per
// spec.md §6.
type Config struct {
	// DataFile is the perf.data file to read events from.
	DataFile string

	// ShowLines controls whether printers may emit line-number lists.
	// The core never reads this; it is only threaded through to the
	// printer package by the caller.
	ShowLines bool

	// ModulePath is searched, in order, for kernel modules named by a
	// bare filename in a MapIn event.
	ModulePath []string

	// PIDFilter, if non-empty, restricts which pids' Sample events are
	// kept. MapIn and Exec events are always honored.
	PIDFilter map[int]bool

	// IncludeTemplates keeps template arguments in demangled C++
	// names when true.
	IncludeTemplates bool

	// QuitOnError makes a missing kernel module fatal instead of a
	// logged fallback to the unmapped image.
	QuitOnError bool
}

// ParseModulePath splits a colon-separated search path the way the
// teacher's flag parsing expects module_path to be given on the
// command line.
func ParseModulePath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ":")
}

// An Orchestrator runs one pass over a perf.data file and exposes the
// resulting aggregations, per spec.md §2 step 5-6.
type Orchestrator struct {
	cfg      Config
	tab      intern.Table
	cache    *binimage.Cache
	registry *aggregate.Registry
	counters diag.Counters
}

// New prepares an Orchestrator for cfg. It does not open data_file
// yet; call Run to do that.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{cfg: cfg, registry: aggregate.NewRegistry()}
	o.cache = binimage.NewCache(&o.tab)
	o.cache.Counters = &o.counters
	return o
}

// Run opens cfg.DataFile, dispatches every event in it, resolves every
// outstanding raw frame, and returns the resulting non-empty
// aggregation list, ordered descending by sample count.
//
// Run returns an error only for InputMissing (spec.md §7): the data
// file could not be opened or read at all.
func (o *Orchestrator) Run() ([]*aggregate.Aggregation, error) {
	f, err := perffile.Open(o.cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: opening %s: %w", o.cfg.DataFile, err)
	}
	defer f.Close()

	resolver := dwarfsym.New(&o.tab, dwarfsym.Options{
		IncludeTemplates: o.cfg.IncludeTemplates,
		Counters:         &o.counters,
	})

	d := dispatch.New(o.registry, o.cache, o.cfg.PIDFilter)
	d.ModulePath = o.cfg.ModulePath
	d.QuitOnError = o.cfg.QuitOnError

	src := perfevents.Open(f)
	if err := d.Run(src); err != nil {
		return nil, fmt.Errorf("orchestrator: reading %s: %w", o.cfg.DataFile, err)
	}
	o.counters.MalformedRecordHit(src.MalformedCount())

	for _, img := range o.cache.Images() {
		img.MapAll(resolver)
	}

	list := o.registry.List()
	log.Printf("orchestrator: %s", o.counters.String())
	if mean, stddev, ok := diag.SampleCountSummary(list); ok {
		log.Printf("orchestrator: sample counts: mean=%.1f stddev=%.1f", mean, stddev)
	}
	return list, nil
}

// Counters returns the diagnostic counters accumulated by the most
// recent (or in-progress) Run.
func (o *Orchestrator) Counters() *diag.Counters {
	return &o.counters
}
