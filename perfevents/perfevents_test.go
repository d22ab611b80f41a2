// Copyright 2015 The Go Authors. Adapted under the BSD-style license
// used throughout this module.

package perfevents

import (
	"testing"

	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/perffile"
	"github.com/aclements/go-symprof/sample"
)

func TestTranslateMmap(t *testing.T) {
	r := &perffile.RecordMmap{
		RecordCommon: perffile.RecordCommon{PID: 123},
		Addr:         0x400000,
		Filename:     "/bin/a",
	}
	ev, ok := translate(r)
	if !ok {
		t.Fatalf("translate(RecordMmap) ok=false")
	}
	if !ev.IsMapIn() {
		t.Fatalf("translate(RecordMmap) is not a MapIn event")
	}
	if ev.MapInPID != 123 || ev.MapInAddr != 0x400000 || ev.MapInPath != "/bin/a" {
		t.Errorf("translate(RecordMmap) = %+v, want pid=123 addr=0x400000 path=/bin/a", ev)
	}
}

func TestTranslateMmapKernelModule(t *testing.T) {
	r := &perffile.RecordMmap{
		RecordCommon: perffile.RecordCommon{PID: 0},
		Addr:         0xffffffff81000000,
		Filename:     "[kernel.kallsyms]",
	}
	ev, ok := translate(r)
	if !ok || ev.MapInPID != KernelPID {
		t.Errorf("translate(kernel RecordMmap) pid = %d, ok=%v, want %d, true", ev.MapInPID, ok, KernelPID)
	}
}

func TestTranslateCommExecOnly(t *testing.T) {
	execR := &perffile.RecordComm{RecordCommon: perffile.RecordCommon{PID: 5}, Exec: true, Comm: "/bin/b"}
	ev, ok := translate(execR)
	if !ok || !ev.IsExec() || ev.ExecPID != 5 || ev.ExecPath != "/bin/b" {
		t.Errorf("translate(exec RecordComm) = %+v, ok=%v, want a valid Exec event", ev, ok)
	}

	nonExecR := &perffile.RecordComm{RecordCommon: perffile.RecordCommon{PID: 5}, Exec: false, Comm: "/bin/b"}
	if _, ok := translate(nonExecR); ok {
		t.Errorf("translate(non-exec RecordComm) ok=true, want false (thread rename is not an Exec)")
	}
}

func TestTranslateUnhandled(t *testing.T) {
	r := &perffile.RecordLost{NumLost: 3}
	ev, ok := translate(r)
	if !ok || !ev.IsUnhandled() {
		t.Fatalf("translate(RecordLost) ok=%v, IsUnhandled=%v, want true, true", ok, ev.IsUnhandled())
	}
	if ev.UnhandledKind != uint32(perffile.RecordTypeLost) {
		t.Errorf("UnhandledKind = %d, want %d", ev.UnhandledKind, perffile.RecordTypeLost)
	}
}

func TestTranslateSampleNoCallchainSubtractsOne(t *testing.T) {
	r := &perffile.RecordSample{
		RecordCommon: perffile.RecordCommon{PID: 9},
		CPUMode:      perffile.CPUModeUser,
		IP:           0x1001,
	}
	s, ok := translateSample(r)
	if !ok {
		t.Fatalf("translateSample ok=false")
	}
	if s.Mode != sample.User || s.PID != 9 {
		t.Errorf("translateSample mode/pid = %v/%d, want User/9", s.Mode, s.PID)
	}
	if len(s.Addresses) != 1 || s.Addresses[0] != frame.Addr(0x1000) {
		t.Errorf("translateSample addresses = %v, want [0x1000]", s.Addresses)
	}
}

func TestTranslateSampleTruncatesAtModeTransition(t *testing.T) {
	r := &perffile.RecordSample{
		RecordCommon: perffile.RecordCommon{PID: 9},
		CPUMode:      perffile.CPUModeUser,
		Callchain: []uint64{
			perffile.CallchainUser,
			0x2001, 0x2002,
			perffile.CallchainKernel,
			0x3001,
		},
	}
	s, ok := translateSample(r)
	if !ok {
		t.Fatalf("translateSample ok=false")
	}
	want := []frame.Addr{0x2000, 0x2001}
	if len(s.Addresses) != len(want) {
		t.Fatalf("translateSample addresses = %v, want %v", s.Addresses, want)
	}
	for i, a := range want {
		if s.Addresses[i] != a {
			t.Errorf("translateSample addresses[%d] = %#x, want %#x", i, s.Addresses[i], a)
		}
	}
}

func TestTranslateSampleEmptyChainIsRejected(t *testing.T) {
	r := &perffile.RecordSample{CPUMode: perffile.CPUModeUser}
	if _, ok := translateSample(r); ok {
		t.Errorf("translateSample with no IP and no callchain ok=true, want false")
	}
}

func TestSampleModeGuestKernelIsKernel(t *testing.T) {
	if sampleMode(perffile.CPUModeGuestKernel) != sample.Kernel {
		t.Errorf("sampleMode(CPUModeGuestKernel) != Kernel")
	}
	if sampleMode(perffile.CPUModeGuestUser) != sample.User {
		t.Errorf("sampleMode(CPUModeGuestUser) != User")
	}
}
