// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

package addrspace

import (
	"testing"

	"github.com/aclements/go-symprof/binimage"
	"github.com/aclements/go-symprof/intern"
)

func TestMapFrameBeforeAnyMappingIsUnmapped(t *testing.T) {
	var tab intern.Table
	cache := binimage.NewCache(&tab)
	s := New(cache)

	f := s.MapFrame(0x1000)
	if f.IsRaw() {
		t.Fatalf("frame from an empty address space is still raw")
	}
	if !f.Unmapped() {
		t.Fatalf("frame from an empty address space should resolve unmapped")
	}
}

func TestMapInFixesExecutableOnFirstCall(t *testing.T) {
	var tab intern.Table
	cache := binimage.NewCache(&tab)
	s := New(cache)

	// Neither path opens as real ELF, so both fall back to the
	// unmapped-image singleton; this test only checks the Space's own
	// executable-identity bookkeeping, not image loading.
	s.MapIn(0x1000, "/nonexistent/exe")
	if s.Executable() == "" {
		// unmapped image's canonical path is the sentinel, which is a
		// non-empty string.
		t.Fatalf("Executable() is empty after the first MapIn")
	}
	first := s.Executable()

	s.MapIn(0x5000, "/nonexistent/lib.so")
	if s.Executable() != first {
		t.Fatalf("Executable() changed after a second MapIn: got %q, want %q", s.Executable(), first)
	}
}

func TestMapFrameAfterMapIn(t *testing.T) {
	var tab intern.Table
	cache := binimage.NewCache(&tab)
	s := New(cache)
	s.MapIn(0x1000, "/nonexistent/exe")

	f := s.MapFrame(0x1500)
	if f.IsRaw() {
		t.Fatalf("frame is still raw")
	}
	// The image never opened, so every address in it resolves unmapped,
	// but it must be the image's own unmapped resolution, not a crash.
	if !f.Unmapped() {
		t.Fatalf("expected frame to resolve unmapped for an unopenable image")
	}
}

func TestFindAndMapFallsBackToUnmapped(t *testing.T) {
	var tab intern.Table
	cache := binimage.NewCache(&tab)
	s := New(cache)

	s.FindAndMap(0x9000, []string{"/nonexistent/dir/one", "/nonexistent/dir/two"}, "module.ko")

	f := s.MapFrame(0x9010)
	if f.IsRaw() {
		t.Fatalf("frame is still raw")
	}
	if !f.Unmapped() {
		t.Fatalf("expected unmapped sentinel when no search directory has the module")
	}
}
