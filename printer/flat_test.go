// Copyright (c) 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aclements/go-symprof/aggregate"
	"github.com/aclements/go-symprof/frame"
)

func TestFlatOrdersRowsBySampleCountDescending(t *testing.T) {
	names := map[frame.Addr]string{1: "leaf1", 2: "leaf2"}
	agg := buildAgg(t, 1, "/bin/a", [][]frame.Addr{
		{1}, {2}, {2},
	}, names)

	var buf bytes.Buffer
	if err := Flat(&buf, []*aggregate.Aggregation{agg}, false); err != nil {
		t.Fatalf("Flat: %v", err)
	}

	out := buf.String()
	i1 := strings.Index(out, "leaf1")
	i2 := strings.Index(out, "leaf2")
	if i1 < 0 || i2 < 0 {
		t.Fatalf("missing expected rows in output:\n%s", out)
	}
	if i2 > i1 {
		t.Errorf("expected leaf2 (2 samples) before leaf1 (1 sample), got:\n%s", out)
	}
}

func TestFlatSkipsBlankLineForSingleAggregation(t *testing.T) {
	names := map[frame.Addr]string{1: "leaf1"}
	agg := buildAgg(t, 1, "/bin/a", [][]frame.Addr{{1}}, names)

	var buf bytes.Buffer
	if err := Flat(&buf, []*aggregate.Aggregation{agg}, false); err != nil {
		t.Fatalf("Flat: %v", err)
	}
	if strings.HasPrefix(buf.String(), "\n") {
		t.Errorf("unexpected leading blank line for a single aggregation")
	}
}
