// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

package dwarfsym

import "debug/dwarf"

// addrRange is a half-open [Low, High) instruction range.
type addrRange struct {
	Low, High uint64
}

// contains reports whether addr falls in [r.Low, r.High).
func (r addrRange) contains(addr uint64) bool {
	return r.Low <= addr && addr < r.High
}

// entryRanges computes the address coverage of entry using the
// three-way rule spec.md §4.5.2 describes:
//
//  1. DW_AT_ranges or DW_AT_low_pc/DW_AT_high_pc, resolved through
//     d.Ranges, which already applies the DWARF 4 rule that a
//     constant-form high_pc is an offset from low_pc, merges
//     range-list entries, and handles DWARF 5 range lists.
//  2. Otherwise the caller-supplied line-table scan (lineBounds) is used
//     to approximate coverage from the smallest and largest address the
//     statement program touches.
func entryRanges(d *dwarf.Data, entry *dwarf.Entry, lineBounds func() (lo, hi uint64, ok bool)) []addrRange {
	if ranges, err := d.Ranges(entry); err == nil && len(ranges) > 0 {
		out := make([]addrRange, len(ranges))
		for i, r := range ranges {
			out[i] = addrRange{r[0], r[1]}
		}
		return out
	}

	if lineBounds != nil {
		if lo, hi, ok := lineBounds(); ok {
			return []addrRange{{lo, hi}}
		}
	}
	return nil
}

// dieName resolves a subprogram or inlined-subroutine DIE's display name,
// preferring DW_AT_linkage_name, then DW_AT_name, then the same
// attributes on its DW_AT_abstract_origin/DW_AT_specification chain, and
// finally "" (spec.md §4.5.4.3.a).
func dieName(d *dwarf.Data, entry *dwarf.Entry) string {
	r := d.Reader()
	seen := map[dwarf.Offset]bool{}
	for entry != nil {
		if name, ok := entry.Val(dwarf.AttrLinkageName).(string); ok && name != "" {
			return name
		}
		if name, ok := entry.Val(dwarf.AttrName).(string); ok && name != "" {
			return name
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
	return ""
}

// originOffset returns the offset referenced by DW_AT_abstract_origin or
// DW_AT_specification, in that order.
func originOffset(entry *dwarf.Entry) (dwarf.Offset, bool) {
	if off, ok := entry.Val(dwarf.AttrAbstractOrigin).(dwarf.Offset); ok {
		return off, true
	}
	if off, ok := entry.Val(dwarf.AttrSpecification).(dwarf.Offset); ok {
		return off, true
	}
	return 0, false
}

// declLine returns DW_AT_decl_line, or -1 if absent.
func declLine(entry *dwarf.Entry) int {
	if v, ok := entry.Val(dwarf.AttrDeclLine).(int64); ok {
		return int(v)
	}
	return -1
}

// callLine returns DW_AT_call_line, or -1 if absent.
func callLine(entry *dwarf.Entry) int {
	if v, ok := entry.Val(dwarf.AttrCallLine).(int64); ok {
		return int(v)
	}
	return -1
}
