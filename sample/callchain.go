// Copyright 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package sample

import (
	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/intern"
)

// SelfFrame is the synthetic sentinel flame-graph-style printers
// attach to represent time spent in a function's own body, as opposed
// to any callee.
const SelfFrame = frame.SelfFunction

// A Callchain is one observed Sample shape plus how many times it was
// seen. Its Callframes are borrowed from the Images that own them, not
// copied, and may still be raw until the resolution pass runs.
type Callchain struct {
	sample      Sample
	frames      []*frame.Callframe
	sampleCount uint64
	self        *frame.InlineFrame
}

// MapFrame resolves one Addr to its Callframe; AddressSpace.MapFrame
// satisfies this.
type MapFrame func(addr frame.Addr) *frame.Callframe

// NewCallchain builds a Callchain from s, resolving each address to
// its (possibly still-raw) Callframe via mapFrame. Initial sample
// count is 1.
func NewCallchain(s Sample, mapFrame MapFrame) *Callchain {
	frames := make([]*frame.Callframe, len(s.Addresses))
	for i, a := range s.Addresses {
		frames[i] = mapFrame(a)
	}
	return &Callchain{sample: s, frames: frames, sampleCount: 1}
}

// AddSample bumps the observed count without touching the frames.
func (c *Callchain) AddSample() {
	c.sampleCount++
}

// SampleCount returns how many times this exact chain shape was seen.
func (c *Callchain) SampleCount() uint64 {
	return c.sampleCount
}

// Sample returns the prototype sample this chain was built from.
func (c *Callchain) Sample() Sample {
	return c.sample
}

// Flatten expands every Callframe into a flat, leaf-to-root sequence
// of resolved inline frames. Every Callframe must already be resolved
// (panics otherwise, via frame.Callframe.InlineFrames).
func (c *Callchain) Flatten() []frame.InlineFrame {
	var out []frame.InlineFrame
	for _, cf := range c.frames {
		out = append(out, cf.InlineFrames()...)
	}
	return out
}

// SelfInlineFrame lazily synthesizes the "[self]" sentinel frame used
// by flame-graph-style printers to represent time spent directly in
// the leaf function, borrowing file/line/offset from the leaf's
// innermost resolved inline frame.
func (c *Callchain) SelfInlineFrame(tab *intern.Table) frame.InlineFrame {
	if c.self != nil {
		return *c.self
	}
	proto := c.Flatten()[0]
	self := proto
	selfName := tab.InternString(frame.SelfFunction)
	self.Func = selfName
	self.Demangled = selfName
	c.self = &self
	return self
}
