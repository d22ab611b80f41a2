// Copyright (c) 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

// Package printer renders resolved aggregations as text or a flame
// graph image. Every printer here consumes only the read-only
// aggregate.Aggregation/sample.Callchain contract spec.md §6 describes
// for the consumer surface; none of them reach back into the
// symbolication core.
package printer

import (
	"fmt"
	"io"

	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/sample"
)

// funcKeyOf returns the grouping key for f: its source file and
// demangled name. Two InlineFrames from different inline instances of
// the same function compare equal under this key.
func funcKeyOf(f frame.InlineFrame) (file, name string) {
	return f.File.String(), f.Demangled.String()
}

// formatLocation renders one InlineFrame as "func (file:line)", eliding
// the location when file is unknown, and appending "[line N]" only if
// showLines is set, mirroring ProfilePrinter::printLineNumbers.
func formatLocation(f frame.InlineFrame, showLines bool) string {
	name := f.Demangled.String()
	if name == "" {
		name = frame.UnmappedFunction
	}
	loc := ""
	if file := f.File.String(); file != "" {
		if f.CodeLine > 0 {
			loc = fmt.Sprintf(" (%s:%d)", file, f.CodeLine)
		} else {
			loc = fmt.Sprintf(" (%s)", file)
		}
	}
	s := name + loc
	if showLines && f.FuncLine > 0 {
		s += fmt.Sprintf(" [line %d]", f.FuncLine)
	}
	return s
}

// percent computes n/total*100, or 0 if total is 0.
func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

// writeHeader writes the common "process (pid), N samples" section
// header every printer in this package uses, matching the teacher's
// plain fmt.Fprintf report style.
func writeHeader(w io.Writer, displayName string, sampleCount uint64) error {
	_, err := fmt.Fprintf(w, "%s: %d samples\n", displayName, sampleCount)
	return err
}

// sampleModeLabel renders a sample's mode the way the original printer
// tagged each row ("kern" or "user").
func sampleModeLabel(s sample.Sample) string {
	if s.Mode == sample.Kernel {
		return "kern"
	}
	return "user"
}
