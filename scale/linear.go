// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scale

// Linear maps a range of sample counts linearly onto [0, 1].
type Linear struct {
	min   uint64
	width float64
}

// NewLinear returns a linear scale spanning the minimum and maximum
// of input, which is typically the bounds of a flame-graph box (the
// root's sample count) rather than raw per-sample data.
func NewLinear(input []uint64) Linear {
	min, max := minmax(input)
	return Linear{min, float64(max - min)}
}

// Of maps x onto [0, 1]. If the scale's domain has zero width (every
// input value in NewLinear was equal), Of always returns 0 rather
// than dividing by zero.
func (s Linear) Of(x uint64) float64 {
	if s.width == 0 {
		return 0
	}
	return (float64(x) - float64(s.min)) / s.width
}
