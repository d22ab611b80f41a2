// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

// Package dwarfsym resolves raw instruction offsets within one
// executable into inline-frame chains, using the executable's ELF
// symbol table and DWARF debugging information. It implements
// binimage.Resolver.
package dwarfsym

import (
	"debug/dwarf"

	"github.com/aclements/go-symprof/binimage"
	"github.com/aclements/go-symprof/diag"
	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/intern"
)

// Options controls optional resolution behavior.
type Options struct {
	// IncludeTemplates keeps template arguments in demangled C++
	// names. When false (the default), they are elided.
	IncludeTemplates bool

	// Counters, if non-nil, receives per-run diagnostic counts
	// (spec.md §7).
	Counters *diag.Counters
}

// New returns a binimage.Resolver that symbolicates frames using DWARF
// and ELF symbol data, interning every string it produces in tab.
func New(tab *intern.Table, opts Options) binimage.Resolver {
	return func(path string, raw []binimage.OffsetFrame) error {
		return resolveImage(tab, opts, path, raw)
	}
}

// resolveImage is the entry point spec.md §4.5 describes: it opens one
// executable once and resolves every raw frame belonging to it in a
// single pass. A returned error means no progress could be made on the
// image at all (open failure); per-frame DWARF trouble is absorbed
// internally and simply leaves that frame raw, so binimage.Image.MapAll
// can fall it through to unmapped.
func resolveImage(tab *intern.Table, opts Options, path string, raw []binimage.OffsetFrame) error {
	li, err := loadImage(path)
	if err != nil {
		opts.Counters.ImageMalformedHit()
		return err
	}

	var cus []*compileUnit
	var cuIdx *cuIndex
	var spCache = map[*compileUnit]*spIndex{}

	if li.dwarf != nil {
		cus = loadCompileUnits(li.dwarf, opts.Counters)
		cuIdx = newCUIndex(cus)
	}

	pathInterned := tab.InternString(path)

	for _, of := range raw {
		addr := uint64(of.Offset)

		if cuIdx != nil {
			// spec.md §4.5.3: an offset matched to no compile unit's
			// coverage is flagged unmapped directly; it never falls
			// through to the ELF-only path below, which is reserved
			// for images with no DWARF data at all.
			cu := cuIdx.find(addr)
			if cu == nil {
				opts.Counters.NoCoverageHit()
				continue
			}

			sp, ok := spCache[cu]
			if !ok {
				sp = newSPIndex(collectSubprograms(li.dwarf, cu))
				spCache[cu] = sp
			}
			if subp := sp.find(addr); subp != nil {
				if frames := buildFrames(tab, opts, li.dwarf, cu, subp, pathInterned, of.Offset); frames != nil {
					of.Frame.SetFrames(frames)
					continue
				}
			}

			// spec.md §4.5.4.5: assembly residual. The CU covers
			// this offset but no subprogram does; resolve it from
			// the line table and the nearest ELF symbol instead of
			// treating it like a no-DWARF image.
			if f, ok := assemblyResidualFrame(tab, li, cu, pathInterned, of.Offset); ok {
				of.Frame.SetFrames([]frame.InlineFrame{f})
				continue
			}
			opts.Counters.NoCoverageHit()
			continue
		}

		// spec.md §4.5.5: no DWARF anywhere in this image.
		if sym, ok := li.findSymbol(addr); ok {
			of.Frame.SetFrames([]frame.InlineFrame{symbolOnlyFrame(tab, pathInterned, sym, of.Offset)})
			continue
		}

		// Leave raw; the caller (binimage.Image.MapAll) will
		// transition it to unmapped.
		opts.Counters.NoCoverageHit()
	}

	return nil
}

// buildFrames constructs the inline-frame chain for one address inside
// subp, threading each location's DW_AT_call_file/DW_AT_call_line one
// level outward onto the InlineFrame built for its caller, per
// spec.md §4.5.4.3/§4.5.4.4. The result is ordered innermost (leaf)
// first.
func buildFrames(tab *intern.Table, opts Options, d *dwarf.Data, cu *compileUnit, subp *subprogram, image intern.String, off frame.Addr) []frame.InlineFrame {
	loc := subp.find(uint64(off))
	if loc == nil {
		return nil
	}

	codeFile, codeLine := leafLine(cu, uint64(off))

	var frames []frame.InlineFrame
	for loc != nil {
		var fileInterned intern.String
		if codeFile != "" {
			fileInterned = tab.InternString(codeFile)
		}
		demangled := demangleName(loc.funcName, opts.IncludeTemplates)
		frames = append(frames, frame.InlineFrame{
			File:           fileInterned,
			Func:           tab.InternString(loc.funcName),
			Demangled:      tab.InternString(demangled),
			Offset:         off,
			CodeLine:       codeLine,
			FuncLine:       loc.funcLine,
			DwarfDieOffset: loc.dieOffset,
			Image:          image,
		})

		if loc.callFile >= 0 {
			codeFile = fileName(cu, loc.callFile)
		} else {
			codeFile = ""
		}
		codeLine = loc.callLine
		loc = loc.caller
	}
	return frames
}

// leafLine looks up the source file and line the statement program
// attributes to addr, for seeding the innermost InlineFrame's code
// location.
func leafLine(cu *compileUnit, addr uint64) (file string, line int) {
	if cu.lineRdr == nil {
		return "", -1
	}
	var entry dwarf.LineEntry
	if err := cu.lineRdr.SeekPC(addr, &entry); err != nil {
		return "", -1
	}
	if entry.File != nil {
		file = entry.File.Name
	}
	return file, entry.Line
}

// assemblyResidualFrame builds the single degenerate InlineFrame for
// an offset covered by cu but by no subprogram in it (spec.md
// §4.5.4.5): hand-written assembly, or a PLT stub inside an otherwise
// DWARF-covered compile unit. The file/line come from the statement
// line table and the function name from the nearest ELF symbol; code
// and function lines are reported equal since no subprogram DIE gives
// a more precise function-start line. ok is false if no ELF symbol
// covers off, in which case the caller should mark the frame unmapped.
func assemblyResidualFrame(tab *intern.Table, li *loadedImage, cu *compileUnit, image intern.String, off frame.Addr) (frame.InlineFrame, bool) {
	sym, ok := li.findSymbol(uint64(off))
	if !ok {
		return frame.InlineFrame{}, false
	}

	file, line := leafLine(cu, uint64(off))
	var fileInterned intern.String
	if file != "" {
		fileInterned = tab.InternString(file)
	}

	return frame.InlineFrame{
		File:      fileInterned,
		Func:      tab.InternString(sym.name),
		Demangled: tab.InternString(sym.name),
		Offset:    off,
		CodeLine:  line,
		FuncLine:  line,
		Image:     image,
	}, true
}

// symbolOnlyFrame builds the single degenerate InlineFrame used when
// the whole image has no DWARF data at all (spec.md §4.5.5): file is
// set to the image's own path and both lines are -1, since only the
// ELF symbol table is available to name the frame.
func symbolOnlyFrame(tab *intern.Table, image intern.String, sym elfSym, off frame.Addr) frame.InlineFrame {
	return frame.InlineFrame{
		File:      image,
		Func:      tab.InternString(sym.name),
		Demangled: tab.InternString(sym.name),
		Offset:    off,
		CodeLine:  -1,
		FuncLine:  -1,
		Image:     image,
	}
}
