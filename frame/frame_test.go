// Copyright 2017 Ryan Stone. Adapted under the BSD-style license used
// throughout this module; see the teacher's LICENSE file.

package frame

import (
	"testing"

	"github.com/aclements/go-symprof/intern"
)

func TestSetUnmapped(t *testing.T) {
	var tab intern.Table
	img := tab.InternString("/bin/a")
	c := New(0x40, img)

	if !c.IsRaw() {
		t.Fatalf("new Callframe is not raw")
	}
	c.SetUnmapped(&tab)
	if c.IsRaw() {
		t.Fatalf("Callframe still raw after SetUnmapped")
	}
	if !c.Unmapped() {
		t.Fatalf("Unmapped() = false, want true")
	}
	frames := c.InlineFrames()
	if len(frames) != 1 {
		t.Fatalf("len(InlineFrames()) = %d, want 1", len(frames))
	}
	if frames[0].Func.String() != UnmappedFunction || frames[0].CodeLine != -1 {
		t.Fatalf("unmapped frame = %+v", frames[0])
	}
}

func TestSetFramesThenResolveAgainPanics(t *testing.T) {
	var tab intern.Table
	img := tab.InternString("/bin/a")
	c := New(0x40, img)
	c.SetFrames([]InlineFrame{{Func: tab.InternString("main")}})

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on double resolution")
		}
	}()
	c.SetUnmapped(&tab)
}

func TestObservingRawPanics(t *testing.T) {
	c := New(0x10, intern.String{})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic observing a raw Callframe")
		}
	}()
	c.InlineFrames()
}
