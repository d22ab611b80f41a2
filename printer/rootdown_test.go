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

func TestRootDownGroupsByRootAndShowsImmediateCallee(t *testing.T) {
	// addresses are leaf-first; the root is the last address.
	names := map[frame.Addr]string{1: "leafA", 2: "leafB", 3: "root"}
	agg := buildAgg(t, 1, "/bin/a", [][]frame.Addr{
		{1, 3}, {1, 3}, {2, 3},
	}, names)

	var buf bytes.Buffer
	if err := RootDown(&buf, []*aggregate.Aggregation{agg}, false); err != nil {
		t.Fatalf("RootDown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "root") {
		t.Fatalf("expected a root group in output:\n%s", out)
	}
	iLeafA := strings.Index(out, "leafA")
	iLeafB := strings.Index(out, "leafB")
	if iLeafA < 0 || iLeafB < 0 {
		t.Fatalf("missing callee breakdown in output:\n%s", out)
	}
	if iLeafB < iLeafA {
		t.Errorf("expected leafA (2 chains) listed before leafB (1 chain), got:\n%s", out)
	}
}
