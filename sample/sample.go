// Copyright 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

// Package sample defines the raw, immutable record of one captured
// call chain and its resolved counterpart, the Callchain.
package sample

import (
	"encoding/binary"

	"github.com/aclements/go-symprof/frame"
)

// Mode distinguishes a kernel sample from a userland one.
type Mode int

const (
	User Mode = iota
	Kernel
)

// A Sample is one observed call chain: the addresses are ordered
// leaf-first and already adjusted (1 subtracted from each raw PC) to
// point at the call instruction rather than the return address. A
// Sample is immutable once built; its Key is the deduplication
// identity a SampleAggregation uses to fold repeat occurrences into a
// single Callchain.
type Sample struct {
	Mode      Mode
	PID       int
	Addresses []frame.Addr
}

// Key is a comparable value over every field Sample's equality
// considers. Go maps require comparable keys, and a slice of
// addresses is not one, so Key packs mode, pid, and the address list
// into a single string — the same concatenate-then-hash shape this
// module's dedup keys have used elsewhere for structural equality over
// variable-length sequences.
type Key string

// NewKey builds the deduplication key for a Sample's fields without
// requiring a fully constructed Sample.
func NewKey(mode Mode, pid int, addrs []frame.Addr) Key {
	buf := make([]byte, 9+8*len(addrs))
	buf[0] = byte(mode)
	binary.LittleEndian.PutUint64(buf[1:9], uint64(pid))
	for i, a := range addrs {
		binary.LittleEndian.PutUint64(buf[9+8*i:9+8*(i+1)], uint64(a))
	}
	return Key(buf)
}

// Key returns s's deduplication key.
func (s *Sample) Key() Key {
	return NewKey(s.Mode, s.PID, s.Addresses)
}
