// Copyright 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package binimage

import (
	"testing"

	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/intern"
)

func TestGetFrameIsIdempotent(t *testing.T) {
	var tab intern.Table
	c := NewCache(&tab)
	img := newImage(&tab, tab.InternString("/bin/a"), false)
	_ = c

	f1 := img.GetFrame(0x10)
	f2 := img.GetFrame(0x10)
	if f1 != f2 {
		t.Fatalf("GetFrame returned different Callframes for the same offset")
	}
	if !f1.IsRaw() {
		t.Fatalf("freshly created frame is not raw")
	}
}

func TestMapAllNoRawFramesIsNoop(t *testing.T) {
	var tab intern.Table
	img := newImage(&tab, tab.InternString("/bin/a"), false)
	called := false
	img.MapAll(func(path string, raw []OffsetFrame) error {
		called = true
		return nil
	})
	if called {
		t.Fatalf("MapAll invoked the resolver with no raw frames")
	}
}

func TestMapAllUnresolvedFramesBecomeUnmapped(t *testing.T) {
	var tab intern.Table
	img := newImage(&tab, tab.InternString("/bin/a"), false)
	f := img.GetFrame(0x10)

	img.MapAll(func(path string, raw []OffsetFrame) error {
		// Resolver makes no progress at all.
		return nil
	})
	if f.IsRaw() {
		t.Fatalf("frame still raw after MapAll")
	}
	if !f.Unmapped() {
		t.Fatalf("frame not unmapped after a no-op resolver")
	}
}

func TestMapAllUnmapped(t *testing.T) {
	var tab intern.Table
	img := newImage(&tab, tab.InternString("/bin/a"), false)
	f := img.GetFrame(0x10)
	img.MapAllUnmapped()
	if !f.Unmapped() {
		t.Fatalf("MapAllUnmapped did not mark frame unmapped")
	}
}

func TestUnmappedImageResolvesImmediately(t *testing.T) {
	var tab intern.Table
	cache := NewCache(&tab)
	f := cache.UnmappedImage().GetFrame(frame.Addr(0x1234))
	if f.IsRaw() {
		t.Fatalf("unmapped image's frame is still raw")
	}
	if !f.Unmapped() {
		t.Fatalf("unmapped image's frame did not resolve to unmapped")
	}
}

func TestCacheGetImageStable(t *testing.T) {
	var tab intern.Table
	cache := NewCache(&tab)
	img1 := cache.GetImage("/nonexistent/path/does/not/exist")
	img2 := cache.GetImage("/nonexistent/path/does/not/exist")
	if img1 != img2 {
		t.Fatalf("GetImage returned different Images for the same path")
	}
	if img1 != cache.UnmappedImage() {
		t.Fatalf("GetImage of an unopenable path did not return the unmapped image")
	}
}
