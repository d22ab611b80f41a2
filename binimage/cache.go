// Copyright 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package binimage

import (
	"debug/elf"
	"log"

	"github.com/aclements/go-symprof/diag"
	"github.com/aclements/go-symprof/intern"
)

// unmappedImagePath is the synthetic canonical path of the process-wide
// unmapped-image singleton. It never collides with a real filesystem
// path.
const unmappedImagePath = "<unmapped>"

// A Cache owns one Image per canonical path and vends stable references
// to it. It also owns the singleton "unmapped image" used whenever no
// physical file is known for a region, or when the file named by a
// mapping cannot even be opened as ELF.
type Cache struct {
	tab      *intern.Table
	images   map[intern.String]*Image
	unmapped *Image

	// Counters, if set, receives ImageMissing hits. Left nil by
	// NewCache; the orchestrator wires a real one in.
	Counters *diag.Counters
}

// NewCache creates an ImageCache that interns image paths in tab.
func NewCache(tab *intern.Table) *Cache {
	c := &Cache{
		tab:    tab,
		images: make(map[intern.String]*Image),
	}
	c.unmapped = newImage(tab, tab.InternString(unmappedImagePath), true)
	return c
}

// UnmappedImage returns the process-wide singleton whose Callframes
// resolve immediately to the sentinel unmapped frame.
func (c *Cache) UnmappedImage() *Image {
	return c.unmapped
}

// GetImage returns the Image for path, creating it on first request. If
// path cannot be opened or is not a valid ELF file, GetImage logs a
// warning and returns the unmapped-image singleton instead; the path is
// remembered so repeated requests don't re-probe the filesystem.
func (c *Cache) GetImage(path string) *Image {
	key := c.tab.InternString(path)
	if img, ok := c.images[key]; ok {
		return img
	}

	if !probeELF(path) {
		log.Printf("binimage: %s: cannot open or not a valid ELF file", path)
		c.Counters.ImageMissingHit()
		c.images[key] = c.unmapped
		return c.unmapped
	}

	img := newImage(c.tab, key, false)
	c.images[key] = img
	return img
}

// probeELF reports whether path opens as a readable ELF file. It does
// not validate DWARF or the symbol table; those failures are handled
// later, per frame, by the DWARF resolution stage (spec.md §7,
// ImageMalformed).
func probeELF(path string) bool {
	f, err := elf.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// Images returns every distinct, non-singleton Image currently cached,
// for the orchestrator's final resolve-all pass.
func (c *Cache) Images() []*Image {
	seen := make(map[*Image]bool, len(c.images))
	var out []*Image
	for _, img := range c.images {
		if img == c.unmapped || seen[img] {
			continue
		}
		seen[img] = true
		out = append(out, img)
	}
	return out
}
