// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

package dwarfsym

import (
	"debug/dwarf"

	"github.com/aclements/go-symprof/rangemap"
)

// A location is one scope in a subprogram's inlining tree: either the
// subprogram itself (caller == nil) or one DW_TAG_inlined_subroutine
// nested somewhere inside it. spec.md §4.5.4.3 calls this the
// "location chain"; caller links point one level further out, toward
// the subprogram root.
//
// callFile/callLine are the DW_AT_call_file/DW_AT_call_line attributes
// recorded on *this* location's own DIE, i.e. the source position at
// which this location was inlined into its caller. They describe the
// caller's frame, not this one; the outward walk in resolver.go applies
// them to the InlineFrame built for loc.caller, not to loc itself.
type location struct {
	ranges   []addrRange
	caller   *location
	dieOffset uint64
	funcName  string
	funcLine  int
	callFile  int64 // raw DW_AT_call_file file-table index, -1 if absent
	callLine  int
}

// A subprogram is one top-level DW_TAG_subprogram definition together
// with every inlined_subroutine nested inside it, indexed for
// innermost-scope lookup by PC.
type subprogram struct {
	cu   *compileUnit
	locs rangemap.Map[*location]
	all  []*location
}

// walkAction tells walkChildren how to proceed past the entry it just
// visited.
type walkAction int

const (
	actionSkip walkAction = iota
	actionDescend
	actionHandled
)

// walkChildren iterates the sibling chain immediately following the
// reader's current position (i.e. the children of whatever Entry was
// last read with Children == true), dispatching each to visit.
func walkChildren(r *dwarf.Reader, visit func(e *dwarf.Entry) walkAction) {
	for {
		e, err := r.Next()
		if err != nil || e == nil {
			return
		}
		if e.Tag == 0 {
			return
		}
		switch visit(e) {
		case actionDescend:
			if e.Children {
				walkChildren(r, visit)
			}
		case actionHandled:
			// visit already consumed e's children itself.
		default:
			if e.Children {
				r.SkipChildren()
			}
		}
	}
}

// collectSubprograms finds every concrete DW_TAG_subprogram in cu,
// descending through DW_TAG_namespace to reach nested ones, per
// spec.md §4.5.4.1. A subprogram's coverage comes only from
// low_pc/high_pc or DW_AT_ranges; the line table is not consulted, so
// a subprogram with neither (a declaration, an abstract instance) is
// skipped even where the line table covers addresses for it.
func collectSubprograms(d *dwarf.Data, cu *compileUnit) []*subprogram {
	r := d.Reader()
	r.Seek(cu.entry.Offset)
	if _, err := r.Next(); err != nil {
		return nil
	}

	var subs []*subprogram
	var visit func(e *dwarf.Entry) walkAction
	visit = func(e *dwarf.Entry) walkAction {
		switch e.Tag {
		case dwarf.TagNamespace:
			return actionDescend
		case dwarf.TagSubprogram:
			if sp := buildSubprogram(d, r, cu, e); sp != nil {
				subs = append(subs, sp)
			}
			return actionHandled
		default:
			return actionSkip
		}
	}
	walkChildren(r, visit)
	return subs
}

// buildSubprogram builds the location tree for one DW_TAG_subprogram
// entry. If e has children, this function always consumes them (either
// by walking them into the inline tree or by skipping), leaving r
// positioned after the subprogram's subtree either way.
func buildSubprogram(d *dwarf.Data, r *dwarf.Reader, cu *compileUnit, e *dwarf.Entry) *subprogram {
	ranges := entryRanges(d, e, nil)
	if len(ranges) == 0 {
		if e.Children {
			r.SkipChildren()
		}
		return nil
	}

	root := &location{
		ranges:    ranges,
		dieOffset: uint64(e.Offset),
		funcName:  dieName(d, e),
		funcLine:  declLineChain(d, e),
		callFile:  -1,
	}

	sp := &subprogram{cu: cu, all: []*location{root}}

	if e.Children {
		var walk func(parent *location) func(e *dwarf.Entry) walkAction
		walk = func(parent *location) func(e *dwarf.Entry) walkAction {
			return func(e *dwarf.Entry) walkAction {
				switch e.Tag {
				case dwarf.TagLexDwarfBlock:
					saved := parent
					if e.Children {
						walkChildren(r, walk(saved))
					}
					return actionHandled
				case dwarf.TagInlinedSubroutine:
					loc := &location{
						caller:    parent,
						dieOffset: uint64(e.Offset),
						funcName:  dieName(d, e),
						funcLine:  declLineChain(d, e),
						callFile:  callFileIndex(e),
						callLine:  callLine(e),
					}
					loc.ranges = entryRanges(d, e, nil)
					sp.all = append(sp.all, loc)
					if e.Children {
						walkChildren(r, walk(loc))
					}
					return actionHandled
				default:
					return actionSkip
				}
			}
		}
		walkChildren(r, walk(root))
	}

	for _, loc := range sp.all {
		for _, rg := range loc.ranges {
			sp.locs.Insert(rg.Low, loc)
		}
	}
	return sp
}

// declLineChain resolves DW_AT_decl_line, following the
// abstract_origin/specification chain the same way dieName does, since
// concrete inlined instances usually omit decl_line and leave it on
// their abstract origin.
func declLineChain(d *dwarf.Data, entry *dwarf.Entry) int {
	r := d.Reader()
	seen := map[dwarf.Offset]bool{}
	for entry != nil {
		if line := declLine(entry); line >= 0 {
			return line
		}
		off, ok := originOffset(entry)
		if !ok || seen[off] {
			break
		}
		seen[off] = true
		r.Seek(off)
		next, err := r.Next()
		if err != nil || next == nil {
			break
		}
		entry = next
	}
	return -1
}

// callFileIndex returns DW_AT_call_file, or -1 if absent.
func callFileIndex(entry *dwarf.Entry) int64 {
	if v, ok := entry.Val(dwarf.AttrCallFile).(int64); ok {
		return v
	}
	return -1
}

// fileName resolves a DW_AT_call_file/DW_AT_decl_file index against
// cu's line table file list. It returns "" if the index is out of
// range or cu has no line table.
func fileName(cu *compileUnit, idx int64) string {
	if cu.lineRdr == nil || idx < 0 {
		return ""
	}
	files := cu.lineRdr.Files()
	if idx >= int64(len(files)) || files[idx] == nil {
		return ""
	}
	return files[idx].Name
}

// find returns the innermost location covering addr, or nil if addr
// falls in none (which should not happen for an address already
// matched to sp by its enclosing compile unit, but defensively
// tolerated).
func (sp *subprogram) find(addr uint64) *location {
	if _, cand, ok := sp.locs.LookupLE(addr); ok {
		for _, rg := range cand.ranges {
			if rg.contains(addr) {
				return cand
			}
		}
	}

	// sp.all is in depth-first insertion order, so the subprogram
	// root is always first. Taking the first containing range here
	// would misattribute an address that falls in a gap after an
	// inner inline's range ends but is still covered by an
	// intermediate inline straight to the physical function, skipping
	// the intermediate frame. Pick the narrowest containing range
	// instead, which is always the innermost location.
	var best *location
	var bestWidth uint64
	for _, loc := range sp.all {
		for _, rg := range loc.ranges {
			if !rg.contains(addr) {
				continue
			}
			width := rg.High - rg.Low
			if best == nil || width < bestWidth {
				best, bestWidth = loc, width
			}
		}
	}
	return best
}

// spIndex indexes every subprogram of a compile unit by PC.
type spIndex struct {
	m   rangemap.Map[*subprogram]
	all []*subprogram
}

func newSPIndex(subs []*subprogram) *spIndex {
	idx := &spIndex{all: subs}
	for _, sp := range subs {
		lo := sp.all[0].ranges[0].Low
		for _, rg := range sp.all[0].ranges {
			if rg.Low < lo {
				lo = rg.Low
			}
		}
		idx.m.Insert(lo, sp)
	}
	return idx
}

func (idx *spIndex) find(addr uint64) *subprogram {
	if _, cand, ok := idx.m.LookupLE(addr); ok {
		for _, rg := range cand.all[0].ranges {
			if rg.contains(addr) {
				return cand
			}
		}
	}
	for _, sp := range idx.all {
		for _, rg := range sp.all[0].ranges {
			if rg.contains(addr) {
				return sp
			}
		}
	}
	return nil
}
