// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rangemap

import "testing"

func TestLookupLE(t *testing.T) {
	var m Map[string]
	m.Insert(0x1000, "a")
	m.Insert(0x2000, "b")
	m.Insert(0x500, "z")

	cases := []struct {
		addr    uint64
		wantKey uint64
		wantVal string
		wantOK  bool
	}{
		{0x400, 0, "", false},
		{0x500, 0x500, "z", true},
		{0x1500, 0x1000, "a", true},
		{0x2000, 0x2000, "b", true},
		{0x9000, 0x2000, "b", true},
	}
	for _, c := range cases {
		key, val, ok := m.LookupLE(c.addr)
		if ok != c.wantOK || key != c.wantKey || val != c.wantVal {
			t.Errorf("LookupLE(%#x) = (%#x, %q, %v), want (%#x, %q, %v)",
				c.addr, key, val, ok, c.wantKey, c.wantVal, c.wantOK)
		}
	}
}

func TestInsertReplacesDuplicateKey(t *testing.T) {
	var m Map[int]
	m.Insert(10, 1)
	m.Insert(10, 2)
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	if v, _ := m.Get(10); v != 2 {
		t.Fatalf("Get(10) = %d, want 2", v)
	}
}

func TestDoInOrder(t *testing.T) {
	var m Map[int]
	m.Insert(30, 3)
	m.Insert(10, 1)
	m.Insert(20, 2)

	var keys []uint64
	m.Do(func(key uint64, val int) bool {
		keys = append(keys, key)
		return true
	})
	want := []uint64{10, 20, 30}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}

func TestDoEarlyStop(t *testing.T) {
	var m Map[int]
	m.Insert(1, 1)
	m.Insert(2, 2)
	m.Insert(3, 3)

	n := 0
	m.Do(func(key uint64, val int) bool {
		n++
		return key < 2
	})
	if n != 2 {
		t.Fatalf("Do visited %d entries, want 2", n)
	}
}
