// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

package dwarfsym

import "testing"

func newTestSubprogram(funcName string, ranges []addrRange, inlined ...*location) *subprogram {
	root := &location{ranges: ranges, funcName: funcName, callFile: -1}
	sp := &subprogram{all: append([]*location{root}, inlined...)}
	for _, loc := range sp.all {
		for _, rg := range loc.ranges {
			sp.locs.Insert(rg.Low, loc)
		}
	}
	return sp
}

func TestSubprogramFindPicksInnermostLocation(t *testing.T) {
	inlined := &location{
		ranges:   []addrRange{{0x1010, 0x1020}},
		funcName: "inlined_helper",
		callFile: 0,
		callLine: 42,
	}
	sp := newTestSubprogram("outer", []addrRange{{0x1000, 0x1100}}, inlined)
	inlined.caller = sp.all[0]

	if got := sp.find(0x1015); got != inlined {
		t.Errorf("find(0x1015) = %v, want the inlined location", got)
	}
	if got := sp.find(0x1005); got != sp.all[0] {
		t.Errorf("find(0x1005) = %v, want the root location", got)
	}
}

func TestSubprogramFindPicksNarrowestOnGap(t *testing.T) {
	// outer ⊃ middle ⊃ leaf. 0x1125 falls after leaf's range ends
	// but is still within middle's range, so it must resolve to
	// middle, not fall through to outer.
	middle := &location{
		ranges:   []addrRange{{0x1100, 0x1200}},
		funcName: "middle",
		callFile: -1,
	}
	leaf := &location{
		ranges:   []addrRange{{0x1110, 0x1120}},
		funcName: "leaf",
		callFile: -1,
		caller:   middle,
	}
	sp := newTestSubprogram("outer", []addrRange{{0x1000, 0x2000}}, middle, leaf)
	middle.caller = sp.all[0]

	if got := sp.find(0x1125); got != middle {
		t.Errorf("find(0x1125) = %v, want middle", got)
	}
	if got := sp.find(0x1115); got != leaf {
		t.Errorf("find(0x1115) = %v, want leaf", got)
	}
	if got := sp.find(0x1050); got != sp.all[0] {
		t.Errorf("find(0x1050) = %v, want outer (root)", got)
	}
}

func TestSubprogramFindOutsideCoverage(t *testing.T) {
	sp := newTestSubprogram("outer", []addrRange{{0x1000, 0x1100}})
	if got := sp.find(0x2000); got != nil {
		t.Errorf("find(0x2000) = %v, want nil", got)
	}
}

func TestSPIndexFind(t *testing.T) {
	sp1 := newTestSubprogram("f1", []addrRange{{0x1000, 0x1100}})
	sp2 := newTestSubprogram("f2", []addrRange{{0x2000, 0x2100}})
	idx := newSPIndex([]*subprogram{sp1, sp2})

	if got := idx.find(0x1050); got != sp1 {
		t.Errorf("find(0x1050) = %v, want sp1", got)
	}
	if got := idx.find(0x2050); got != sp2 {
		t.Errorf("find(0x2050) = %v, want sp2", got)
	}
	if got := idx.find(0x1500); got != nil {
		t.Errorf("find(0x1500) = %v, want nil (gap between subprograms)", got)
	}
}
