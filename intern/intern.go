// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package intern implements a process-wide, content-addressed table of
// reference-counted byte strings.
//
// A String is a stable handle for a UTF-8 byte sequence. Two Strings
// produced by interning the same bytes compare equal by identity (the
// handle itself, not its contents), which makes Strings cheap to use as
// map keys and to compare in hot paths such as address resolution.
package intern

import "sync"

// A cell is the shared storage behind one or more String handles.
type cell struct {
	data []byte
	refs int
}

// A String is a handle to an interned byte sequence. The zero String is
// not valid; use Table.Intern to create one.
//
// Two Strings are == if and only if they were produced by interning
// equal byte sequences in the same Table.
type String struct {
	c *cell
}

// Bytes returns the interned byte sequence.
func (s String) Bytes() []byte {
	if s.c == nil {
		return nil
	}
	return s.c.data
}

// String returns the interned byte sequence as a Go string.
func (s String) String() string {
	if s.c == nil {
		return ""
	}
	return string(s.c.data)
}

// IsZero reports whether s is the zero value (never interned).
func (s String) IsZero() bool {
	return s.c == nil
}

// A Table is a process-wide (or session-wide) string-interning table.
// The zero Table is ready to use. Its methods serialize on an internal
// mutex, so a Table may be shared between goroutines.
type Table struct {
	mu      sync.Mutex
	entries map[string]*cell
}

// Intern returns the canonical String handle for data. Calling Intern
// twice with equal byte sequences returns handles that compare equal;
// calling it with unequal byte sequences never does.
//
// The returned handle's storage is retained for the lifetime of the
// Table unless the caller explicitly balances Intern with Release; a
// one-shot run (the only mode this package supports) typically never
// calls Release and simply lets the whole Table go out of scope at
// process exit.
func (t *Table) Intern(data []byte) String {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = make(map[string]*cell)
	}
	key := string(data) // one copy; also used as the map key
	if c, ok := t.entries[key]; ok {
		c.refs++
		return String{c}
	}
	c := &cell{data: []byte(key), refs: 1}
	t.entries[key] = c
	return String{c}
}

// InternString is Intern for a Go string: it converts s to a byte
// slice and passes that to Intern.
func (t *Table) InternString(s string) String {
	return t.Intern([]byte(s))
}

// Retain bumps s's reference count and returns s unchanged. Use Retain
// when a second, independent owner begins holding the same handle.
func (t *Table) Retain(s String) String {
	if s.c == nil {
		return s
	}
	t.mu.Lock()
	s.c.refs++
	t.mu.Unlock()
	return s
}

// Release decrements s's reference count, freeing the underlying
// storage from the table when it reaches zero. Release is a no-op on
// the zero String.
func (t *Table) Release(s String) {
	if s.c == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s.c.refs--
	if s.c.refs <= 0 {
		delete(t.entries, string(s.c.data))
	}
}

// Len returns the number of live entries, for diagnostics and tests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
