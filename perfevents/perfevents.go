// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

// Package perfevents adapts a perffile record stream into the tagged
// union of MapIn/Exec/Sample/Unhandled events the dispatcher consumes,
// per spec.md §6's external event-source contract.
package perfevents

import (
	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/perffile"
	"github.com/aclements/go-symprof/sample"
)

// KernelPID is the sentinel pid identifying the kernel's own address
// space.
const KernelPID = -1

// An Event is one tagged union member of the event-source contract.
// Exactly one of the Is* predicates is true for any Event the source
// produces.
type Event struct {
	kind eventKind

	MapInPID  int
	MapInAddr uint64
	MapInPath string

	ExecPID       int
	ExecPath      string
	ExecEntryAddr uint64

	Sample sample.Sample

	UnhandledKind uint32
}

type eventKind int

const (
	kindUnhandled eventKind = iota
	kindMapIn
	kindExec
	kindSample
)

func (e Event) IsMapIn() bool     { return e.kind == kindMapIn }
func (e Event) IsExec() bool      { return e.kind == kindExec }
func (e Event) IsSample() bool    { return e.kind == kindSample }
func (e Event) IsUnhandled() bool { return e.kind == kindUnhandled }

// MapInEvent builds a synthetic MapIn event, for callers that drive a
// Dispatcher without a perf.data file (tests, replay of a different
// event source).
func MapInEvent(pid int, addr uint64, path string) Event {
	return Event{kind: kindMapIn, MapInPID: pid, MapInAddr: addr, MapInPath: path}
}

// ExecEvent builds a synthetic Exec event.
func ExecEvent(pid int, path string) Event {
	return Event{kind: kindExec, ExecPID: pid, ExecPath: path}
}

// SampleEvent builds a synthetic Sample event.
func SampleEvent(s sample.Sample) Event {
	return Event{kind: kindSample, Sample: s}
}

// A Source reads events from one open perf.data file, translating
// perffile's lower-level record stream into the dispatcher's event
// union. It subtracts 1 from every sampled address and truncates a
// sample's chain at its first kernel/user mode transition, so the
// dispatcher and everything downstream can, per spec.md §6, simply
// trust the declared mode.
type Source struct {
	records *perffile.Records
}

// Open starts reading events from f in causal order: weakly
// time-ordered, which is enough to guarantee a MapIn is seen before
// the Samples it enables. perffile handles this order with the same
// full time-stamp sort it uses for RecordsTimeOrder.
func Open(f *perffile.File) *Source {
	return &Source{records: f.Records(perffile.RecordsCausalOrder)}
}

// Next returns the next event, or ok=false at end of stream or on a
// read error (the caller distinguishes the two with Err).
func (s *Source) Next() (Event, bool) {
	for s.records.Next() {
		if ev, ok := translate(s.records.Record); ok {
			return ev, true
		}
	}
	return Event{}, false
}

// Err returns the first error encountered reading the underlying
// perf.data file, if any.
func (s *Source) Err() error {
	return s.records.Err()
}

// MalformedCount returns the number of records skipped so far because
// they referenced an event attribute ID the perf.data file never
// declared.
func (s *Source) MalformedCount() int {
	return s.records.Malformed
}

func translate(r perffile.Record) (Event, bool) {
	switch r := r.(type) {
	case *perffile.RecordMmap:
		return Event{
			kind:      kindMapIn,
			MapInPID:  mmapPID(r),
			MapInAddr: r.Addr,
			MapInPath: r.Filename,
		}, true

	case *perffile.RecordComm:
		if !r.Exec {
			return Event{}, false
		}
		return Event{
			kind:     kindExec,
			ExecPID:  r.PID,
			ExecPath: r.Comm,
		}, true

	case *perffile.RecordSample:
		s, ok := translateSample(r)
		if !ok {
			return Event{}, false
		}
		return Event{kind: kindSample, Sample: s}, true
	}
	return Event{kind: kindUnhandled, UnhandledKind: uint32(r.Type())}, true
}

// mmapPID maps a kernel module mmap (no owning process) to the
// sentinel kernel pid; perf.data represents this with PID/TID 0 or -1
// depending on producer.
func mmapPID(r *perffile.RecordMmap) int {
	if r.PID <= 0 {
		return KernelPID
	}
	return r.PID
}

func translateSample(r *perffile.RecordSample) (sample.Sample, bool) {
	mode := sampleMode(r.CPUMode)

	var addrs []frame.Addr
	cur := mode
	if len(r.Callchain) > 0 {
		for _, ip := range r.Callchain {
			if m, ok := callchainMarker(ip); ok {
				if addrsTransition(cur, m) {
					break
				}
				cur = m
				continue
			}
			addrs = append(addrs, frame.Addr(ip-1))
		}
	} else if r.IP != 0 {
		addrs = append(addrs, frame.Addr(r.IP-1))
	}

	if len(addrs) == 0 {
		return sample.Sample{}, false
	}
	return sample.Sample{Mode: mode, PID: r.PID, Addresses: addrs}, true
}

// addrsTransition reports whether moving from cur to next crosses the
// kernel/user boundary, per spec.md §6's truncate-at-first-transition
// rule.
func addrsTransition(cur, next sample.Mode) bool {
	return cur != next
}

func sampleMode(m perffile.CPUMode) sample.Mode {
	switch m {
	case perffile.CPUModeKernel, perffile.CPUModeGuestKernel:
		return sample.Kernel
	default:
		return sample.User
	}
}

// callchainMarker reports whether ip is one of the Callchain* stack
// separator pseudo-addresses, and if so, which mode it introduces.
func callchainMarker(ip uint64) (sample.Mode, bool) {
	switch ip {
	case perffile.CallchainKernel, perffile.CallchainGuestKernel:
		return sample.Kernel, true
	case perffile.CallchainUser, perffile.CallchainGuestUser, perffile.CallchainHV, perffile.CallchainGuest:
		return sample.User, true
	}
	return sample.Mode(0), false
}
