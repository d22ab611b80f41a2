// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package intern

import "testing"

func TestInternIdentity(t *testing.T) {
	var tab Table

	a1 := tab.InternString("main")
	a2 := tab.InternString("main")
	if a1 != a2 {
		t.Fatalf("interning the same bytes twice produced different handles")
	}

	b := tab.InternString("other")
	if a1 == b {
		t.Fatalf("interning different bytes produced the same handle")
	}
}

func TestInternBytesVsString(t *testing.T) {
	var tab Table

	a := tab.Intern([]byte("foo"))
	b := tab.InternString("foo")
	if a != b {
		t.Fatalf("Intern and InternString diverged for equal content")
	}
	if a.String() != "foo" {
		t.Fatalf("String() = %q, want %q", a.String(), "foo")
	}
}

func TestReleaseFreesStorage(t *testing.T) {
	var tab Table

	s := tab.InternString("transient")
	if tab.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tab.Len())
	}
	tab.Release(s)
	if tab.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after Release", tab.Len())
	}

	// The old handle still reads its own (now orphaned) storage
	// correctly.
	if s.String() != "transient" {
		t.Fatalf("orphaned handle lost its data")
	}
}

func TestRetainKeepsAliveUntilBothReleased(t *testing.T) {
	var tab Table

	s := tab.InternString("shared")
	s2 := tab.Retain(s)
	tab.Release(s)
	if tab.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after one of two releases", tab.Len())
	}
	tab.Release(s2)
	if tab.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after both releases", tab.Len())
	}
}

func TestZeroStringIsInert(t *testing.T) {
	var tab Table
	var z String
	if !z.IsZero() {
		t.Fatalf("zero value reports non-zero")
	}
	if z.String() != "" || z.Bytes() != nil {
		t.Fatalf("zero value is not empty")
	}
	tab.Release(z) // must not panic
}
