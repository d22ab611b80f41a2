// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scale maps sample-count domains onto the [0, 1] interval a
// rasterizer can turn into pixel coordinates.
package scale

// A scale satisfies Interface if it maps from some input range of
// sample counts to an output interval [0, 1].
type Interface interface {
	Of(x uint64) float64
}
