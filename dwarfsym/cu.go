// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

package dwarfsym

import (
	"debug/dwarf"

	"github.com/aclements/go-symprof/diag"
	"github.com/aclements/go-symprof/rangemap"
)

// A compileUnit is one DW_TAG_compile_unit entry together with its
// address coverage and a line-table reader good for the lifetime of one
// resolve pass.
type compileUnit struct {
	entry    *dwarf.Entry
	ranges   []addrRange
	lineRdr  *dwarf.LineReader
	name     string
	compDir  string
}

// loadCompileUnits walks the top-level DIEs of d and returns one
// compileUnit per DW_TAG_compile_unit, per spec.md §4.5.2. A CU with no
// resolvable coverage (no DW_AT_ranges, no low/high_pc, and an empty or
// absent line table) is skipped; frames that fall in the gap are
// counted as NoCoverage and end up unmapped, with no ELF-only retry.
func loadCompileUnits(d *dwarf.Data, counters *diag.Counters) []*compileUnit {
	var cus []*compileUnit
	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			counters.DwarfMalformedHit()
			break
		}
		if entry == nil {
			break
		}
		if entry.Tag != dwarf.TagCompileUnit {
			r.SkipChildren()
			continue
		}

		cu := &compileUnit{entry: entry}
		if name, ok := entry.Val(dwarf.AttrName).(string); ok {
			cu.name = name
		}
		if dir, ok := entry.Val(dwarf.AttrCompDir).(string); ok {
			cu.compDir = dir
		}

		lr, lerr := d.LineReader(entry)
		if lerr == nil && lr != nil {
			cu.lineRdr = lr
		}

		cu.ranges = entryRanges(d, entry, func() (uint64, uint64, bool) {
			return lineTableBounds(lr)
		})
		if len(cu.ranges) == 0 {
			r.SkipChildren()
			continue
		}

		cus = append(cus, cu)
		r.SkipChildren()
	}
	return cus
}

// lineTableBounds scans lr's full statement program and returns the
// smallest and largest address it mentions. It rewinds lr before
// returning so later consumers see every row again.
func lineTableBounds(lr *dwarf.LineReader) (lo, hi uint64, ok bool) {
	if lr == nil {
		return 0, 0, false
	}
	defer lr.Reset()

	var entry dwarf.LineEntry
	first := true
	for {
		if err := lr.Next(&entry); err != nil {
			break
		}
		if first {
			lo, hi = entry.Address, entry.Address
			first = false
			continue
		}
		if entry.Address < lo {
			lo = entry.Address
		}
		if entry.Address > hi {
			hi = entry.Address
		}
	}
	if first {
		return 0, 0, false
	}
	// Line tables record instruction starts; widen hi by one so the
	// final instruction's bytes fall inside the half-open range.
	return lo, hi + 1, true
}

// cuIndex is a RangeMap from each compile unit's lowest covered address
// to the compileUnit, supporting the "largest key <= query" lookup
// pattern used everywhere else in this module.
type cuIndex struct {
	m    rangemap.Map[*compileUnit]
	cus  []*compileUnit
}

func newCUIndex(cus []*compileUnit) *cuIndex {
	idx := &cuIndex{cus: cus}
	for _, cu := range cus {
		lo := cu.ranges[0].Low
		for _, rg := range cu.ranges {
			if rg.Low < lo {
				lo = rg.Low
			}
		}
		idx.m.Insert(lo, cu)
	}
	return idx
}

// find returns the compile unit whose coverage contains addr, or nil.
// A RangeMap only finds the right bucket by low address; a CU with
// several DW_AT_ranges entries can still have gaps, so find double
// checks full containment once it has a candidate.
func (idx *cuIndex) find(addr uint64) *compileUnit {
	_, cand, ok := idx.m.LookupLE(addr)
	if !ok {
		return nil
	}
	for _, rg := range cand.ranges {
		if rg.contains(addr) {
			return cand
		}
	}
	// The address fell between this CU's ranges; fall back to a linear
	// scan since compile units are rarely numerous enough to justify a
	// fancier interval structure.
	for _, cu := range idx.cus {
		for _, rg := range cu.ranges {
			if rg.contains(addr) {
				return cu
			}
		}
	}
	return nil
}
