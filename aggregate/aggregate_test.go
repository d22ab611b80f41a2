// Copyright (c) 2017 Ryan Stone. Adapted under the BSD-style license
// used throughout this module.

package aggregate

import (
	"testing"

	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/intern"
	"github.com/aclements/go-symprof/sample"
)

func mapFrame(tab *intern.Table, img intern.String) sample.MapFrame {
	return func(addr frame.Addr) *frame.Callframe {
		c := frame.New(addr, img)
		c.SetFrames([]frame.InlineFrame{{
			Func:      tab.InternString("f"),
			Demangled: tab.InternString("f"),
			Offset:    addr,
			CodeLine:  1,
			FuncLine:  1,
			Image:     img,
		}})
		return c
	}
}

func TestAggregationDedupesIdenticalChains(t *testing.T) {
	var tab intern.Table
	img := tab.InternString("/bin/a")
	a := newAggregation(1, "/bin/a")

	s := sample.Sample{Mode: sample.User, PID: 1, Addresses: []frame.Addr{0x10, 0x20}}
	a.AddSample(s, mapFrame(&tab, img))
	a.AddSample(s, mapFrame(&tab, img))

	chains := a.Callchains()
	if len(chains) != 1 {
		t.Fatalf("got %d distinct chains, want 1", len(chains))
	}
	if chains[0].SampleCount() != 2 {
		t.Errorf("SampleCount() = %d, want 2", chains[0].SampleCount())
	}
	if a.SampleCount() != 2 {
		t.Errorf("Aggregation.SampleCount() = %d, want 2", a.SampleCount())
	}
}

func TestAggregationSeparatesDistinctChains(t *testing.T) {
	var tab intern.Table
	img := tab.InternString("/bin/a")
	a := newAggregation(1, "/bin/a")

	a.AddSample(sample.Sample{Mode: sample.User, PID: 1, Addresses: []frame.Addr{0x10}}, mapFrame(&tab, img))
	a.AddSample(sample.Sample{Mode: sample.User, PID: 1, Addresses: []frame.Addr{0x20}}, mapFrame(&tab, img))

	if len(a.Callchains()) != 2 {
		t.Fatalf("got %d distinct chains, want 2", len(a.Callchains()))
	}
}

func TestAggregationCountsUserlandSeparately(t *testing.T) {
	var tab intern.Table
	img := tab.InternString("/bin/a")
	a := newAggregation(1, "/bin/a")

	a.AddSample(sample.Sample{Mode: sample.User, PID: 1, Addresses: []frame.Addr{0x10}}, mapFrame(&tab, img))
	a.AddSample(sample.Sample{Mode: sample.Kernel, PID: 1, Addresses: []frame.Addr{0x20}}, mapFrame(&tab, img))

	if a.SampleCount() != 2 {
		t.Errorf("SampleCount() = %d, want 2", a.SampleCount())
	}
	if a.UserlandSampleCount() != 1 {
		t.Errorf("UserlandSampleCount() = %d, want 1", a.UserlandSampleCount())
	}
}

func TestBaseNameFallbacks(t *testing.T) {
	a1 := newAggregation(1, "/usr/bin/foo")
	if got := a1.BaseName(); got != "foo" {
		t.Errorf("BaseName() = %q, want foo", got)
	}

	a2 := newAggregation(2, "")
	if got := a2.BaseName(); got != "kernel" {
		t.Errorf("BaseName() with no executable and no userland samples = %q, want kernel", got)
	}

	a3 := newAggregation(3, "")
	a3.userlandSampleCount = 1
	if got := a3.BaseName(); got != "unknown_file" {
		t.Errorf("BaseName() with userland samples but no known executable = %q, want unknown_file", got)
	}
}

func TestDisplayNameFallbacks(t *testing.T) {
	a1 := newAggregation(42, "/usr/bin/foo")
	if got := a1.DisplayName(); got != "/usr/bin/foo (42)" {
		t.Errorf("DisplayName() = %q, want \"/usr/bin/foo (42)\"", got)
	}

	a2 := newAggregation(7, "")
	if got := a2.DisplayName(); got != "kproc (7)" {
		t.Errorf("DisplayName() for a kernel-only aggregation = %q, want \"kproc (7)\"", got)
	}
}

func TestSetExecutableInvalidatesNameCache(t *testing.T) {
	a := newAggregation(1, "")
	if got := a.BaseName(); got != "kernel" {
		t.Fatalf("BaseName() before SetExecutable = %q, want kernel", got)
	}
	a.SetExecutable("/bin/late")
	if got := a.BaseName(); got != "late" {
		t.Errorf("BaseName() after SetExecutable = %q, want late", got)
	}
}

func TestRegistryListOrdersBySampleCountDescending(t *testing.T) {
	var tab intern.Table
	img := tab.InternString("/bin/a")
	r := NewRegistry()

	low := r.GetOrCreate(1)
	low.AddSample(sample.Sample{Mode: sample.User, PID: 1, Addresses: []frame.Addr{1}}, mapFrame(&tab, img))

	high := r.GetOrCreate(2)
	for i := 0; i < 3; i++ {
		high.AddSample(sample.Sample{Mode: sample.User, PID: 2, Addresses: []frame.Addr{frame.Addr(i)}}, mapFrame(&tab, img))
	}

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d aggregations, want 2", len(list))
	}
	if list[0] != high || list[1] != low {
		t.Errorf("List() not sorted descending by sample count")
	}
}

func TestRegistryListExcludesEmptyAggregations(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreate(1) // never sampled
	if list := r.List(); len(list) != 0 {
		t.Errorf("List() = %d entries, want 0 for an aggregation with no samples", len(list))
	}
}

func TestRegistryExecSupersedesButKeepsHistory(t *testing.T) {
	var tab intern.Table
	img := tab.InternString("/bin/a")
	r := NewRegistry()

	first := r.Exec(1, "/bin/old")
	first.AddSample(sample.Sample{Mode: sample.User, PID: 1, Addresses: []frame.Addr{1}}, mapFrame(&tab, img))

	second := r.Exec(1, "/bin/new")
	second.AddSample(sample.Sample{Mode: sample.User, PID: 1, Addresses: []frame.Addr{2}}, mapFrame(&tab, img))

	if r.GetOrCreate(1) != second {
		t.Fatalf("GetOrCreate after Exec did not return the new aggregation")
	}
	list := r.List()
	if len(list) != 2 {
		t.Fatalf("List() = %d entries, want 2 (old and new both retained)", len(list))
	}
}
