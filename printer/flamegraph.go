// Copyright (c) 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package printer

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sort"

	"github.com/aclements/go-symprof/aggregate"
	"github.com/aclements/go-symprof/frame"
	"github.com/aclements/go-symprof/scale"
	"github.com/golang/freetype"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	rowHeight  = 16
	imageWidth = 1200
)

// flameNode is one box in the flame graph: a group of callchains
// sharing the same frame at this depth, merged from the root down.
type flameNode struct {
	f        frame.InlineFrame
	count    uint64
	children map[[2]string]*flameNode
	order    [][2]string
}

func newFlameNode(f frame.InlineFrame) *flameNode {
	return &flameNode{f: f, children: map[[2]string]*flameNode{}}
}

func (n *flameNode) child(f frame.InlineFrame) *flameNode {
	file, name := funcKeyOf(f)
	key := [2]string{file, name}
	c, ok := n.children[key]
	if !ok {
		c = newFlameNode(f)
		n.children[key] = c
		n.order = append(n.order, key)
	}
	return c
}

func (n *flameNode) sortedChildren() []*flameNode {
	out := make([]*flameNode, 0, len(n.order))
	for _, k := range n.order {
		out = append(out, n.children[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

// buildFlameTree merges every callchain in agg into a tree rooted at a
// synthetic root, root-first (outermost physical frame nearest the
// root), mirroring the usual flame-graph convention of stacking
// outermost frames at the bottom.
func buildFlameTree(agg *aggregate.Aggregation) *flameNode {
	root := newFlameNode(frame.InlineFrame{})
	root.count = agg.SampleCount()

	for _, cc := range agg.Callchains() {
		flat := cc.Flatten()
		cur := root
		for i := len(flat) - 1; i >= 0; i-- {
			cur = cur.child(flat[i])
			cur.count += cc.SampleCount()
		}
	}
	return root
}

// box is a flattened, positioned flameNode ready to rasterize.
type box struct {
	depth      int
	start, end uint64
	n          *flameNode
}

func layout(root *flameNode) []box {
	var boxes []box
	var walk func(n *flameNode, depth int, start uint64)
	walk = func(n *flameNode, depth int, start uint64) {
		if depth > 0 {
			boxes = append(boxes, box{depth: depth, start: start, end: start + n.count, n: n})
		}
		childStart := start
		for _, c := range n.sortedChildren() {
			walk(c, depth+1, childStart)
			childStart += c.count
		}
	}
	walk(root, 0, 0)
	return boxes
}

// FlameGraph renders one flame-graph PNG per aggregation to w, in
// order, each preceded by its display name and sample count on a
// label row: boxes are frames, width proportional to sample count,
// stacked bottom-up from the root (outermost physical frame) to each
// chain's leaf.
func FlameGraph(w io.Writer, aggs []*aggregate.Aggregation) error {
	font, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return err
	}

	for _, agg := range aggs {
		if agg.SampleCount() == 0 {
			continue
		}
		tree := buildFlameTree(agg)
		boxes := layout(tree)

		maxDepth := 0
		for _, b := range boxes {
			if b.depth > maxDepth {
				maxDepth = b.depth
			}
		}

		xScale := scale.NewLinear([]uint64{0, agg.SampleCount()})
		img := image.NewNRGBA(image.Rect(0, 0, imageWidth, (maxDepth+1)*rowHeight))
		draw.Draw(img, img.Bounds(), image.White, image.ZP, draw.Src)

		fc := freetype.NewContext()
		fc.SetFont(font)
		fc.SetFontSize(10)
		fc.SetSrc(image.Black)
		fc.SetDst(img)
		fc.SetClip(img.Bounds())

		for _, b := range boxes {
			x0 := int(xScale.Of(b.start) * imageWidth)
			x1 := int(xScale.Of(b.end) * imageWidth)
			if x1 <= x0 {
				x1 = x0 + 1
			}
			y0 := img.Bounds().Dy() - (b.depth+1)*rowHeight
			rect := image.Rect(x0, y0, x1, y0+rowHeight-1)
			draw.Draw(img, rect, &image.Uniform{boxColor(b.n)}, image.ZP, draw.Src)

			if x1-x0 > 20 {
				fc.DrawString(formatLocation(b.n.f, false), freetype.Pt(x0+2, y0+rowHeight-4))
			}
		}

		if err := writeHeader(w, agg.DisplayName(), agg.SampleCount()); err != nil {
			return err
		}
		if err := png.Encode(w, img); err != nil {
			return err
		}
	}
	return nil
}

// boxColor picks a stable, warm color from a node's function name so
// repeated frames across a flame graph are visually recognizable.
func boxColor(n *flameNode) color.NRGBA {
	_, name := funcKeyOf(n.f)
	var h uint32
	for _, c := range name {
		h = h*31 + uint32(c)
	}
	r := 200 + uint8(h&0x3f)
	g := 100 + uint8((h>>6)&0x7f)
	b := uint8((h >> 13) & 0x3f)
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
