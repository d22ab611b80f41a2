// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

package dwarfsym

import (
	"bytes"
	"debug/dwarf"
	"debug/elf"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aclements/go-symprof/rangemap"
)

// elfSym is one STT_FUNC symbol's coverage, used for the ELF-only
// fallback spec.md §4.5.5 describes for code with no DWARF coverage
// (hand-written assembly, stripped helper routines, PLT stubs).
type elfSym struct {
	name string
	lo   uint64
	hi   uint64
}

// loadedImage bundles together everything extracted from one
// executable's ELF and (possibly split-out) DWARF data for the
// lifetime of a single resolve pass.
type loadedImage struct {
	path    string
	dwarf   *dwarf.Data // nil if no DWARF data could be found anywhere
	symbols rangemap.Map[elfSym]
}

// loadImage opens path, loads its ELF symbol table, and loads DWARF
// data either directly from path or, per the .gnu_debuglink convention
// (spec.md §4.5.1), from a split debug file found alongside it.
func loadImage(path string) (*loadedImage, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	li := &loadedImage{path: path}
	li.loadSymbols(f)

	if d, err := f.DWARF(); err == nil {
		li.dwarf = d
	} else if dbg, derr := openDebugLink(f, path); derr == nil && dbg != nil {
		defer dbg.Close()
		if d, err := dbg.DWARF(); err == nil {
			li.dwarf = d
		}
	}

	return li, nil
}

// loadSymbols populates li.symbols from f's static and, if present,
// dynamic symbol tables. Zero-size or non-function symbols are
// skipped.
func (li *loadedImage) loadSymbols(f *elf.File) {
	add := func(syms []elf.Symbol) {
		for _, s := range syms {
			if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Size == 0 || s.Name == "" {
				continue
			}
			li.symbols.Insert(s.Value, elfSym{name: s.Name, lo: s.Value, hi: s.Value + s.Size})
		}
	}
	if syms, err := f.Symbols(); err == nil {
		add(syms)
	}
	if syms, err := f.DynamicSymbols(); err == nil {
		add(syms)
	}
}

// findSymbol returns the ELF symbol covering addr, if any, for the
// no-DWARF fallback path.
func (li *loadedImage) findSymbol(addr uint64) (elfSym, bool) {
	_, cand, ok := li.symbols.LookupLE(addr)
	if !ok || addr >= cand.hi {
		return elfSym{}, false
	}
	return cand, true
}

// openDebugLink resolves f's .gnu_debuglink section, if present,
// against the three conventional search locations relative to
// execPath: alongside the executable, in its .debug subdirectory, and
// under /usr/lib/debug mirroring the executable's absolute directory.
// It does not verify the embedded CRC32; a mismatched but present file
// is still preferred over no DWARF data at all.
func openDebugLink(f *elf.File, execPath string) (*elf.File, error) {
	sec := f.Section(".gnu_debuglink")
	if sec == nil {
		return nil, fmt.Errorf("no .gnu_debuglink section")
	}
	data, err := sec.Data()
	if err != nil {
		return nil, err
	}
	nul := bytes.IndexByte(data, 0)
	if nul < 0 {
		return nil, fmt.Errorf("malformed .gnu_debuglink section")
	}
	name := string(data[:nul])

	dir := filepath.Dir(execPath)
	absDir, aerr := filepath.Abs(dir)
	candidates := []string{
		filepath.Join(dir, name),
		filepath.Join(dir, ".debug", name),
	}
	if aerr == nil {
		candidates = append(candidates, filepath.Join("/usr/lib/debug", absDir, name))
	}

	for _, cand := range candidates {
		if _, err := os.Stat(cand); err != nil {
			continue
		}
		if df, err := elf.Open(cand); err == nil {
			return df, nil
		}
	}
	return nil, fmt.Errorf("debug file %s not found in search path", name)
}
