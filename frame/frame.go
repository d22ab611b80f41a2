// Copyright 2017 Ryan Stone. Adapted under the BSD-style license used
// throughout this module; see the teacher's LICENSE file.

// Package frame holds the resolved symbolic data for one sampled
// instruction: InlineFrame (one logical call site) and Callframe (the
// full inline chain for one (image, offset) pair).
package frame

import "github.com/aclements/go-symprof/intern"

// UnmappedFunction is the sentinel function name carried by an
// InlineFrame that could not be symbolicated.
const UnmappedFunction = "[unmapped_function]"

// SelfFunction is the synthetic function name some printers (flame
// graphs, leaf-up views) use to represent "time spent in this frame
// itself, not any callee."
const SelfFunction = "[self]"

// An Addr is a target instruction address or image-relative offset.
type Addr uint64

// An InlineFrame is one logical call site in a flattened call chain: the
// physical function, or one level of inlining into it.
type InlineFrame struct {
	File          intern.String // source file
	Func          intern.String // raw (mangled) function symbol
	Demangled     intern.String // demangled function name
	Offset        Addr          // image-relative offset of the sample (not the call site)
	CodeLine      int           // source line of this call site; -1 if unknown
	FuncLine      int           // line where the containing function begins; -1 if unknown
	DwarfDieOffset uint64       // opaque, for diagnostics/dedup
	Image         intern.String // image name
}

// Unmapped reports whether f is the sentinel produced when an address
// could not be symbolicated.
func (f InlineFrame) Unmapped() bool {
	return f.Func.String() == UnmappedFunction
}

// unmappedFrame builds the sentinel InlineFrame for offset off in image
// img.
func unmappedFrame(tab *intern.Table, img intern.String, off Addr) InlineFrame {
	return InlineFrame{
		File:      img,
		Func:      tab.InternString(UnmappedFunction),
		Demangled: tab.InternString(UnmappedFunction),
		Offset:    off,
		CodeLine:  -1,
		FuncLine:  -1,
		Image:     img,
	}
}

// state tracks the three-state lifecycle spec.md §3 requires: a
// Callframe is raw until resolved exactly once, after which it is
// either unmapped or carries a real inline-frame chain.
type state int

const (
	stateRaw state = iota
	stateResolved
)

// A Callframe is the resolved data for one (image, offset) pair: an
// ordered sequence of inline frames, innermost inline first and the
// physical function last.
//
// A Callframe is created in the raw state by Image.GetFrame on first
// demand for a given offset. It must be resolved exactly once (via
// SetFrames or SetUnmapped) before InlineFrames or Unmapped may be
// called.
type Callframe struct {
	offset Addr
	image  intern.String

	st           state
	inlineFrames []InlineFrame
	unmapped     bool
}

// New creates a raw Callframe for offset off in image img. It is not
// yet symbolicated.
func New(off Addr, img intern.String) *Callframe {
	return &Callframe{offset: off, image: img}
}

// Offset returns the image-relative offset this Callframe resolves.
func (c *Callframe) Offset() Addr { return c.offset }

// Image returns the owning image's name.
func (c *Callframe) Image() intern.String { return c.image }

// IsRaw reports whether this Callframe has not yet been symbolicated.
func (c *Callframe) IsRaw() bool { return c.st == stateRaw }

// SetFrames symbolicates c with a non-empty inline-frame chain ending
// in the physical function. It panics if called more than once or with
// an empty slice (use SetUnmapped for the unmapped case).
func (c *Callframe) SetFrames(frames []InlineFrame) {
	if c.st != stateRaw {
		panic("frame: Callframe resolved twice")
	}
	if len(frames) == 0 {
		panic("frame: SetFrames called with no frames")
	}
	c.inlineFrames = frames
	c.unmapped = false
	c.st = stateResolved
}

// SetUnmapped symbolicates c as unmapped: exactly one sentinel inline
// frame, code_line -1.
func (c *Callframe) SetUnmapped(tab *intern.Table) {
	if c.st != stateRaw {
		panic("frame: Callframe resolved twice")
	}
	c.inlineFrames = []InlineFrame{unmappedFrame(tab, c.image, c.offset)}
	c.unmapped = true
	c.st = stateResolved
}

// InlineFrames returns the resolved inline-frame chain, innermost
// inline first. It panics if c has not been resolved.
func (c *Callframe) InlineFrames() []InlineFrame {
	if c.st != stateResolved {
		panic("frame: InlineFrames called before resolution")
	}
	return c.inlineFrames
}

// Unmapped reports whether c resolved to the unmapped sentinel. It
// panics if c has not been resolved.
func (c *Callframe) Unmapped() bool {
	if c.st != stateResolved {
		panic("frame: Unmapped called before resolution")
	}
	return c.unmapped
}
