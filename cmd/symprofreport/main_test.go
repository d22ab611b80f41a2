// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

package main

import (
	"testing"

	"github.com/aclements/go-symprof/perffile"
)

func TestParsePIDs(t *testing.T) {
	cases := []struct {
		in      string
		wantLen int
		wantErr bool
	}{
		{"", 0, false},
		{"1,2,3", 3, false},
		{" 4 , 5", 2, false},
		{"not-a-pid", 0, true},
	}
	for _, c := range cases {
		got, err := parsePIDs(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("parsePIDs(%q) error = %v, wantErr %v", c.in, err, c.wantErr)
			continue
		}
		if len(got) != c.wantLen {
			t.Errorf("parsePIDs(%q) = %v, want %d entries", c.in, got, c.wantLen)
		}
	}
}

func TestParseDumpOrder(t *testing.T) {
	cases := []struct {
		in   string
		want perffile.RecordsOrder
		ok   bool
	}{
		{"file", perffile.RecordsFileOrder, true},
		{"time", perffile.RecordsTimeOrder, true},
		{"causal", perffile.RecordsCausalOrder, true},
		{"bogus", 0, false},
	}
	for _, c := range cases {
		got, ok := parseDumpOrder(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("parseDumpOrder(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestDumpRecordsMissingFile(t *testing.T) {
	if err := dumpRecords(nil, "/nonexistent/perf.data", perffile.RecordsFileOrder); err == nil {
		t.Fatal("dumpRecords on a missing file returned no error")
	}
}
