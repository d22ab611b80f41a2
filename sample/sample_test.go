// Copyright 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package sample

import (
	"testing"

	"github.com/aclements/go-symprof/frame"
)

func TestKeyDistinguishesMode(t *testing.T) {
	addrs := []frame.Addr{1, 2, 3}
	k1 := NewKey(User, 100, addrs)
	k2 := NewKey(Kernel, 100, addrs)
	if k1 == k2 {
		t.Fatalf("keys for User and Kernel samples collided")
	}
}

func TestKeyDistinguishesPID(t *testing.T) {
	addrs := []frame.Addr{1, 2, 3}
	k1 := NewKey(User, 100, addrs)
	k2 := NewKey(User, 200, addrs)
	if k1 == k2 {
		t.Fatalf("keys for different pids collided")
	}
}

func TestKeyDistinguishesAddresses(t *testing.T) {
	k1 := NewKey(User, 100, []frame.Addr{1, 2, 3})
	k2 := NewKey(User, 100, []frame.Addr{1, 2, 4})
	if k1 == k2 {
		t.Fatalf("keys for different address sequences collided")
	}
}

func TestKeyStableForEqualInputs(t *testing.T) {
	k1 := NewKey(User, 100, []frame.Addr{1, 2, 3})
	k2 := NewKey(User, 100, []frame.Addr{1, 2, 3})
	if k1 != k2 {
		t.Fatalf("keys for identical inputs differ")
	}
}

func TestSampleKeyMatchesNewKey(t *testing.T) {
	s := Sample{Mode: Kernel, PID: 42, Addresses: []frame.Addr{0xdead, 0xbeef}}
	if s.Key() != NewKey(Kernel, 42, s.Addresses) {
		t.Fatalf("Sample.Key() does not match NewKey with the same fields")
	}
}

func TestKeyDoesNotConfuseAddressBoundaries(t *testing.T) {
	// A two-element and a three-element sequence that could alias under a naive
	// byte-concatenation scheme without fixed-width fields.
	k1 := NewKey(User, 100, []frame.Addr{0x0100, 0x0002})
	k2 := NewKey(User, 100, []frame.Addr{0x0001, 0x0000, 0x0002})
	if k1 == k2 {
		t.Fatalf("keys for different-length address sequences collided")
	}
}
