// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

package dwarfsym

import (
	"testing"

	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/intern"
)

// TestBuildFramesOrderingAndThreading exercises the leaf-to-root
// inline-frame chain construction against a synthetic two-level
// inlining tree: a physical function "outer" containing an inlined
// "middle" containing an inlined "leaf", with the sampled address
// inside "leaf". It checks both the emission order (innermost first,
// physical function last) and that each location's own
// call_file/call_line attributes land on the InlineFrame built for its
// caller, one level further out, per the outward-threading rule.
func TestBuildFramesOrderingAndThreading(t *testing.T) {
	var tab intern.Table
	cu := &compileUnit{name: "a.cc"}

	outer := &location{
		ranges:   []addrRange{{0x1000, 0x2000}},
		funcName: "outer",
		funcLine: 10,
		callFile: -1,
	}
	middle := &location{
		ranges:   []addrRange{{0x1100, 0x1200}},
		caller:   outer,
		funcName: "middle",
		funcLine: 20,
		callFile: 0,
		callLine: 15, // the line in "outer" where "middle" was inlined
	}
	leaf := &location{
		ranges:   []addrRange{{0x1110, 0x1120}},
		caller:   middle,
		funcName: "leaf",
		funcLine: 30,
		callFile: 0,
		callLine: 25, // the line in "middle" where "leaf" was inlined
	}

	sp := &subprogram{cu: cu, all: []*location{outer, middle, leaf}}
	for _, loc := range sp.all {
		for _, rg := range loc.ranges {
			sp.locs.Insert(rg.Low, loc)
		}
	}

	image := tab.InternString("/bin/a")
	frames := buildFrames(&tab, Options{}, nil, cu, sp, image, 0x1115)
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}

	if got := frames[0].Func.String(); got != "leaf" {
		t.Errorf("frames[0].Func = %q, want leaf (innermost first)", got)
	}
	if got := frames[1].Func.String(); got != "middle" {
		t.Errorf("frames[1].Func = %q, want middle", got)
	}
	if got := frames[2].Func.String(); got != "outer" {
		t.Errorf("frames[2].Func = %q, want outer (physical function last)", got)
	}

	// leaf's own call_line (25) describes where it was inlined into
	// middle, so it must appear on middle's frame, one level out.
	if frames[1].CodeLine != 25 {
		t.Errorf("frames[1] (middle).CodeLine = %d, want 25 (leaf's call_line)", frames[1].CodeLine)
	}
	// middle's own call_line (15) describes where it was inlined into
	// outer, so it must appear on outer's frame.
	if frames[2].CodeLine != 15 {
		t.Errorf("frames[2] (outer).CodeLine = %d, want 15 (middle's call_line)", frames[2].CodeLine)
	}

	for i, f := range frames {
		if f.Offset != frame.Addr(0x1115) {
			t.Errorf("frames[%d].Offset = %#x, want 0x1115", i, f.Offset)
		}
		if f.Image != image {
			t.Errorf("frames[%d].Image not set to the resolved image", i)
		}
	}
}

func TestSymbolOnlyFrame(t *testing.T) {
	var tab intern.Table
	image := tab.InternString("/bin/a")
	sym := elfSym{name: "memcpy", lo: 0x4000, hi: 0x4100}

	f := symbolOnlyFrame(&tab, image, sym, 0x4010)
	if f.Func.String() != "memcpy" {
		t.Errorf("Func = %q, want memcpy", f.Func.String())
	}
	if f.File != image {
		t.Errorf("File = %v, want the image path %v", f.File, image)
	}
	if f.FuncLine != -1 {
		t.Errorf("FuncLine = %d, want -1 (unknown)", f.FuncLine)
	}
	if f.CodeLine != -1 {
		t.Errorf("CodeLine = %d, want -1 (unknown)", f.CodeLine)
	}
	if f.Offset != 0x4010 {
		t.Errorf("Offset = %#x, want 0x4010", f.Offset)
	}
}

func TestAssemblyResidualFrameUsesLineTableAndSymbol(t *testing.T) {
	var tab intern.Table
	image := tab.InternString("/bin/a")
	li := &loadedImage{path: "/bin/a"}
	li.symbols.Insert(0x5000, elfSym{name: "asm_helper", lo: 0x5000, hi: 0x5100})
	cu := &compileUnit{name: "a.cc"} // no lineRdr: line table unavailable

	f, ok := assemblyResidualFrame(&tab, li, cu, image, 0x5010)
	if !ok {
		t.Fatal("assemblyResidualFrame reported no ELF symbol coverage")
	}
	if f.Func.String() != "asm_helper" {
		t.Errorf("Func = %q, want asm_helper", f.Func.String())
	}
	if f.CodeLine != f.FuncLine {
		t.Errorf("CodeLine (%d) != FuncLine (%d), want equal", f.CodeLine, f.FuncLine)
	}

	if _, ok := assemblyResidualFrame(&tab, li, cu, image, 0x9000); ok {
		t.Error("assemblyResidualFrame reported coverage for an address outside every symbol")
	}
}
