// Copyright (c) 2017 Ryan Stone. Adapted under the BSD-style license
// used throughout this module.

package diag

import (
	"testing"

	"github.com/aclements/go-symprof/aggregate"
)

func TestCountersNilReceiverIsNoop(t *testing.T) {
	var c *Counters
	c.ImageMissingHit()
	c.ImageMalformedHit()
	c.DwarfMalformedHit()
	c.NoCoverageHit()
	if c != nil {
		t.Fatalf("nil *Counters became non-nil")
	}
	if got := c.String(); got == "" {
		t.Errorf("String() on a nil *Counters returned an empty string")
	}
}

func TestCountersHitIncrements(t *testing.T) {
	var c Counters
	c.ImageMissingHit()
	c.ImageMissingHit()
	c.DwarfMalformedHit()
	if c.ImageMissing != 2 {
		t.Errorf("ImageMissing = %d, want 2", c.ImageMissing)
	}
	if c.DwarfMalformed != 1 {
		t.Errorf("DwarfMalformed = %d, want 1", c.DwarfMalformed)
	}
	if c.ImageMalformed != 0 || c.NoCoverage != 0 {
		t.Errorf("unrelated counters were touched: %+v", c)
	}
}

func TestSampleCountSummaryEmpty(t *testing.T) {
	if _, _, ok := SampleCountSummary(nil); ok {
		t.Errorf("SampleCountSummary(nil) ok=true, want false")
	}
}

func TestSampleCountSummaryEmptySlice(t *testing.T) {
	if _, _, ok := SampleCountSummary([]*aggregate.Aggregation{}); ok {
		t.Errorf("SampleCountSummary([]) ok=true, want false")
	}
}
