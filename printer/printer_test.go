// Copyright (c) 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package printer

import (
	"testing"

	"github.com/aclements/go-symprof/aggregate"
	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/intern"
	"github.com/aclements/go-symprof/sample"
)

// namedFrame resolves a single-entry Callframe for a distinct
// (file, function) pair per address, letting tests build callchains
// with recognizably different leaf/caller/root frames.
func namedFrame(tab *intern.Table, img intern.String, names map[frame.Addr]string) sample.MapFrame {
	return func(addr frame.Addr) *frame.Callframe {
		name := names[addr]
		c := frame.New(addr, img)
		c.SetFrames([]frame.InlineFrame{{
			File:      tab.InternString(name + ".c"),
			Func:      tab.InternString(name),
			Demangled: tab.InternString(name),
			Offset:    addr,
			CodeLine:  1,
			FuncLine:  1,
			Image:     img,
		}})
		return c
	}
}

// buildAgg returns an aggregation with one sample per entry of chains,
// each entry used as-is as a Sample's Addresses (leaf first, per the
// dispatcher's convention — see sample.Sample).
func buildAgg(t *testing.T, pid int, exec string, chains [][]frame.Addr, names map[frame.Addr]string) *aggregate.Aggregation {
	t.Helper()
	var tab intern.Table
	img := tab.InternString(exec)
	r := aggregate.NewRegistry()
	a := r.Exec(pid, exec)
	mf := namedFrame(&tab, img, names)
	for _, addrs := range chains {
		a.AddSample(sample.Sample{Mode: sample.User, PID: pid, Addresses: addrs}, mf)
	}
	return a
}
