// Copyright 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

// Package binimage owns the per-binary symbolication state: one Image
// per executable, shared library, or kernel module, plus the ImageCache
// that vends a stable Image per canonical path.
package binimage

import (
	"debug/elf"
	"log"

	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/intern"
	"github.com/aclements/go-symprof/rangemap"
)

// An OffsetFrame pairs a raw Callframe with the offset it was created
// at, for handoff to a resolver.
type OffsetFrame struct {
	Offset frame.Addr
	Frame  *frame.Callframe
}

// A Resolver fills in inline-frame data for every frame in raw, given
// the canonical path of the image they belong to. It returns an error
// only when it could not make progress on the image at all (e.g. the
// file is not valid ELF); partial failures (a single bad compile unit)
// must be absorbed internally and simply leave the affected frames
// raw, per spec.md §7's "caught at the Callframe boundary" policy.
//
// Any frame Resolve leaves raw is transitioned to unmapped by the
// caller (Image.MapAll), so a Resolver may always abandon work that it
// cannot complete.
type Resolver func(canonicalPath string, raw []OffsetFrame) error

// An Image owns the Callframes for one binary and drives resolution for
// exactly that binary. Two distinct Images never share a canonical
// path; see ImageCache.
type Image struct {
	tab            *intern.Table
	canonicalPath  intern.String
	frames         rangemap.Map[*frame.Callframe]
	alwaysUnmapped bool
}

func newImage(tab *intern.Table, path intern.String, alwaysUnmapped bool) *Image {
	return &Image{tab: tab, canonicalPath: path, alwaysUnmapped: alwaysUnmapped}
}

// CanonicalPath returns this image's immutable identity.
func (img *Image) CanonicalPath() intern.String {
	return img.canonicalPath
}

// GetFrame returns the Callframe for imageOffset, creating a new raw
// one on first demand. Subsequent calls for the same offset return the
// same reference.
func (img *Image) GetFrame(imageOffset frame.Addr) *frame.Callframe {
	if c, ok := img.frames.Get(uint64(imageOffset)); ok {
		return c
	}
	c := frame.New(imageOffset, img.canonicalPath)
	img.frames.Insert(uint64(imageOffset), c)
	if img.alwaysUnmapped {
		c.SetUnmapped(img.tab)
	}
	return c
}

// rawFrames returns every Callframe still in the raw state, ordered by
// offset.
func (img *Image) rawFrames() []OffsetFrame {
	var out []OffsetFrame
	img.frames.Do(func(key uint64, c *frame.Callframe) bool {
		if c.IsRaw() {
			out = append(out, OffsetFrame{frame.Addr(key), c})
		}
		return true
	})
	return out
}

// HasRaw reports whether any frame of img is still unsymbolicated.
func (img *Image) HasRaw() bool {
	found := false
	img.frames.Do(func(key uint64, c *frame.Callframe) bool {
		if c.IsRaw() {
			found = true
			return false
		}
		return true
	})
	return found
}

// MapAll resolves every raw frame of img using resolve. It is a no-op,
// and never touches the filesystem, if img has no raw frames. Any frame
// resolve leaves raw afterward (because of a whole-image failure)
// transitions to unmapped here, so MapAll always leaves every frame
// resolved.
//
// MapAll is safe to call multiple times.
func (img *Image) MapAll(resolve Resolver) {
	raw := img.rawFrames()
	if len(raw) == 0 {
		return
	}
	if err := resolve(img.canonicalPath.String(), raw); err != nil {
		log.Printf("binimage: resolving %s: %v", img.canonicalPath, err)
	}
	for _, of := range raw {
		if of.Frame.IsRaw() {
			of.Frame.SetUnmapped(img.tab)
		}
	}
}

// MapAllUnmapped transitions every raw frame of img to unmapped without
// opening the image file. Used for images ImageCache could not open.
func (img *Image) MapAllUnmapped() {
	for _, of := range img.rawFrames() {
		of.Frame.SetUnmapped(img.tab)
	}
}

// PreferredBase reads path's ELF program headers and returns the
// preferred load address: the smallest PT_LOAD segment with the
// executable flag set, masked by its own alignment. It returns 0 if the
// file cannot be read or has no executable PT_LOAD segment.
func PreferredBase(path string) uint64 {
	f, err := elf.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	var best *elf.ProgHeader
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Flags&elf.PF_X == 0 {
			continue
		}
		ph := p.ProgHeader
		if best == nil || ph.Vaddr < best.Vaddr {
			cp := ph
			best = &cp
		}
	}
	if best == nil {
		return 0
	}
	align := best.Align
	if align == 0 {
		return best.Vaddr
	}
	return best.Vaddr &^ (align - 1)
}
