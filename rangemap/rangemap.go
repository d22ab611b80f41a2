// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rangemap implements an ordered address-to-value map that
// supports "largest key less than or equal to" lookup, the substrate
// used throughout this module for address-space mappings, per-image
// offset-to-frame tables, and DWARF coverage lookups.
package rangemap

import "sort"

// A Map is an ordered mapping from uint64 keys to values of type V.
// Unlike an interval tree, Map does not know the extent of each entry;
// callers that need "does this key fall inside entry i's range" call
// Contains themselves (typically using a closure or a Contains method
// on V) after LookupLE has found the candidate entry. This mirrors how
// every consumer in this module already has readily-available range
// bounds to check (spec.md §4.2).
//
// A Map is not safe for concurrent use.
type Map[V any] struct {
	keys   []uint64
	vals   []V
	sorted bool
}

// Insert adds or replaces the value for key. Insertion of a duplicate
// key replaces the previous value.
func (m *Map[V]) Insert(key uint64, val V) {
	if i, ok := m.find(key); ok {
		m.vals[i] = val
		return
	}
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, val)
	m.sorted = false
}

// find returns the index of key if it is already present.
func (m *Map[V]) find(key uint64) (int, bool) {
	m.ensureSorted()
	i := sort.Search(len(m.keys), func(i int) bool { return m.keys[i] >= key })
	if i < len(m.keys) && m.keys[i] == key {
		return i, true
	}
	return 0, false
}

func (m *Map[V]) ensureSorted() {
	if m.sorted || len(m.keys) < 2 {
		m.sorted = true
		return
	}
	idx := make([]int, len(m.keys))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return m.keys[idx[i]] < m.keys[idx[j]] })
	nk := make([]uint64, len(m.keys))
	nv := make([]V, len(m.vals))
	for i, j := range idx {
		nk[i] = m.keys[j]
		nv[i] = m.vals[j]
	}
	m.keys, m.vals = nk, nv
	m.sorted = true
}

// LookupLE returns the entry with the largest key <= addr, and ok=true
// if one exists.
func (m *Map[V]) LookupLE(addr uint64) (key uint64, val V, ok bool) {
	m.ensureSorted()
	i := sort.Search(len(m.keys), func(i int) bool { return m.keys[i] > addr })
	if i == 0 {
		return 0, val, false
	}
	return m.keys[i-1], m.vals[i-1], true
}

// Get returns the value stored exactly at key, if any.
func (m *Map[V]) Get(key uint64) (val V, ok bool) {
	i, found := m.find(key)
	if !found {
		return val, false
	}
	return m.vals[i], true
}

// Len returns the number of entries in the map.
func (m *Map[V]) Len() int {
	return len(m.keys)
}

// Do calls f for every entry in increasing key order. Do stops early
// if f returns false.
func (m *Map[V]) Do(f func(key uint64, val V) bool) {
	m.ensureSorted()
	for i, k := range m.keys {
		if !f(k, m.vals[i]) {
			return
		}
	}
}
