// Copyright (c) 2017 Ryan Stone. Adapted under the BSD-style license
// used throughout this module.

// Package diag collects per-run diagnostic counters and summary
// statistics, the Go equivalent of this system's handful of global
// failure counters.
package diag

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"

	"github.com/aclements/go-symprof/aggregate"
)

// Counters tallies the non-fatal error kinds spec.md §7 defines. A nil
// *Counters is valid and every method on it is a no-op, so components
// deep in the resolution path can take a possibly-nil Counters without
// every caller needing to construct one.
type Counters struct {
	ImageMissing    int
	ImageMalformed  int
	DwarfMalformed  int
	NoCoverage      int
	MalformedRecord int
}

// ImageMissingHit records that an image path could not be opened at
// all (spec.md's ImageMissing error kind).
func (c *Counters) ImageMissingHit() {
	if c != nil {
		c.ImageMissing++
	}
}

// ImageMalformedHit records that an image opened but its ELF headers
// or symbol table were unusable.
func (c *Counters) ImageMalformedHit() {
	if c != nil {
		c.ImageMalformed++
	}
}

// DwarfMalformedHit records that one compile unit or DIE subtree was
// skipped because it failed to decode.
func (c *Counters) DwarfMalformedHit() {
	if c != nil {
		c.DwarfMalformed++
	}
}

// NoCoverageHit records that a sample address fell outside every
// mapping, compile unit, or subprogram and resolved to unmapped for
// lack of any covering structure, rather than a parse failure.
func (c *Counters) NoCoverageHit() {
	if c != nil {
		c.NoCoverage++
	}
}

// MalformedRecordHit records that the event source skipped n records
// in the perf.data file because they referenced an event attribute ID
// the file never declared.
func (c *Counters) MalformedRecordHit(n int) {
	if c != nil {
		c.MalformedRecord += n
	}
}

// String summarizes the counters for end-of-run logging.
func (c *Counters) String() string {
	if c == nil {
		return "diag.Counters{}"
	}
	return fmt.Sprintf("image_missing=%d image_malformed=%d dwarf_malformed=%d no_coverage=%d malformed_record=%d",
		c.ImageMissing, c.ImageMalformed, c.DwarfMalformed, c.NoCoverage, c.MalformedRecord)
}

// SampleCountSummary reports the mean and standard deviation of total
// sample counts across every non-empty aggregation in list, using
// go-moremath's stats package. ok is false if list is empty.
func SampleCountSummary(list []*aggregate.Aggregation) (mean, stddev float64, ok bool) {
	if len(list) == 0 {
		return 0, 0, false
	}
	xs := make([]float64, len(list))
	for i, a := range list {
		xs[i] = float64(a.SampleCount())
	}
	s := stats.Sample{Xs: xs}
	return s.Mean(), s.StdDev(), true
}
