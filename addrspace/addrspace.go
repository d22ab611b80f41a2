// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

// Package addrspace tracks the mapping from load addresses to images
// within one process (or the kernel), and translates sampled program
// counters into per-image offsets.
package addrspace

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aclements/go-symprof/binimage"
	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/rangemap"
)

// A mapping records one loaded image and the offset between its load
// address and its own preferred base.
type mapping struct {
	image      *binimage.Image
	loadOffset uint64
}

// A Space is an ordered mapping from load address to loaded image,
// scoped to one process identity (or the kernel, by convention). It
// replaces the live mmap/munmap bookkeeping of a running process with
// permanent retention: once an address is mapped, the entry is never
// removed, matching this system's offline, whole-log processing model.
type Space struct {
	cache      *binimage.Cache
	loaded     rangemap.Map[mapping]
	executable *binimage.Image
}

// New creates an address space that resolves images through cache.
func New(cache *binimage.Cache) *Space {
	return &Space{cache: cache}
}

// MapIn records that path is loaded at loadAddr. The first call on a
// Space fixes the space's executable identity and always uses a
// load_offset of 0; later calls compute load_offset from the image's
// ELF-reported preferred base.
func (s *Space) MapIn(loadAddr uint64, path string) {
	img := s.cache.GetImage(path)

	var loadOffset uint64
	if s.executable == nil {
		s.executable = img
	} else {
		loadOffset = loadAddr - binimage.PreferredBase(path)
	}
	s.loaded.Insert(loadAddr, mapping{image: img, loadOffset: loadOffset})
}

// FindAndMap probes each directory in searchPath for a file named
// moduleName and, on the first hit, maps it in at loadAddr, returning
// true. If no directory has the module, it logs a warning, maps the
// unmapped image sentinel at loadAddr instead, and returns false so the
// caller can honor quit_on_error (spec.md §6).
func (s *Space) FindAndMap(loadAddr uint64, searchPath []string, moduleName string) bool {
	for _, dir := range searchPath {
		cand := filepath.Join(dir, moduleName)
		if _, err := os.Stat(cand); err == nil {
			s.MapIn(loadAddr, cand)
			return true
		}
	}
	log.Printf("addrspace: module %s not found in search path %v", moduleName, searchPath)
	s.loaded.Insert(loadAddr, mapping{image: s.cache.UnmappedImage()})
	return false
}

// ProcessExec maps path in at its ELF-reported preferred load address,
// as the first mapping for a freshly created Space.
func (s *Space) ProcessExec(path string) {
	s.MapIn(binimage.PreferredBase(path), path)
}

// MapFrame translates addr, an absolute load address, into the
// Callframe for the image occupying it. Addresses with no covering
// mapping resolve against the cache's unmapped-image sentinel.
func (s *Space) MapFrame(addr uint64) *frame.Callframe {
	_, m, ok := s.loaded.LookupLE(addr)
	if !ok {
		return s.cache.UnmappedImage().GetFrame(frame.Addr(addr))
	}
	return m.image.GetFrame(frame.Addr(addr - m.loadOffset))
}

// Executable returns the canonical path of this space's executable
// identity, or "" if nothing has been mapped yet.
func (s *Space) Executable() string {
	if s.executable == nil {
		return ""
	}
	return s.executable.CanonicalPath().String()
}

// String is for diagnostics only.
func (s *Space) String() string {
	return fmt.Sprintf("addrspace{executable=%s, mappings=%d}", s.Executable(), s.loaded.Len())
}
