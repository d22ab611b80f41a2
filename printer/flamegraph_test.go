// Copyright (c) 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package printer

import (
	"bytes"
	"testing"

	"github.com/aclements/go-symprof/aggregate"
	"github.com/aclements/go-symprof/frame"
)

func TestFlameGraphEmitsOnePNGPerNonEmptyAggregation(t *testing.T) {
	names := map[frame.Addr]string{1: "leaf", 2: "root"}
	withSamples := buildAgg(t, 1, "/bin/a", [][]frame.Addr{{1, 2}}, names)
	empty := buildAgg(t, 2, "/bin/b", nil, names)

	var buf bytes.Buffer
	if err := FlameGraph(&buf, []*aggregate.Aggregation{withSamples, empty}); err != nil {
		t.Fatalf("FlameGraph: %v", err)
	}

	out := buf.Bytes()
	if len(out) == 0 {
		t.Fatal("FlameGraph produced no output")
	}
	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if !bytes.Contains(out, pngMagic) {
		t.Errorf("output does not contain a PNG signature")
	}
	if c := bytes.Count(out, pngMagic); c != 1 {
		t.Errorf("got %d PNG images, want 1 (the empty aggregation should be skipped)", c)
	}
}

func TestBuildFlameTreeMergesCommonRoot(t *testing.T) {
	names := map[frame.Addr]string{1: "leafA", 2: "leafB", 3: "root"}
	agg := buildAgg(t, 1, "/bin/a", [][]frame.Addr{{1, 3}, {2, 3}}, names)

	tree := buildFlameTree(agg)
	if len(tree.order) != 1 {
		t.Fatalf("got %d root children, want 1 (both chains share the same root frame)", len(tree.order))
	}
	rootNode := tree.children[tree.order[0]]
	if rootNode.count != 2 {
		t.Errorf("root node count = %d, want 2", rootNode.count)
	}
	if len(rootNode.order) != 2 {
		t.Errorf("root node has %d distinct children, want 2 (leafA and leafB)", len(rootNode.order))
	}
}
