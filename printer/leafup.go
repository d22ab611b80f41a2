// Copyright (c) 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package printer

import (
	"fmt"
	"io"
	"sort"

	"github.com/aclements/go-symprof/aggregate"
	"github.com/aclements/go-symprof/frame"
)

// leafGroup accumulates every callchain sharing the same leaf
// function, plus a breakdown of their immediate callers.
type leafGroup struct {
	leaf    frame.InlineFrame
	count   uint64
	callers map[[2]string]*callerGroup
}

type callerGroup struct {
	frame frame.InlineFrame
	count uint64
}

// LeafUp writes, for each aggregation, every distinct leaf function
// observed (sorted descending by total sample count) together with one
// level of immediate-caller drill-down beneath it, the same shape as
// the teacher's leaf-anchored FuncLocMap view without its unbounded
// recursive StringChainMap drill-down.
func LeafUp(w io.Writer, aggs []*aggregate.Aggregation, showLines bool) error {
	for i, agg := range aggs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeHeader(w, agg.DisplayName(), agg.SampleCount()); err != nil {
			return err
		}

		groups := map[[2]string]*leafGroup{}
		var order [][2]string
		for _, cc := range agg.Callchains() {
			flat := cc.Flatten()
			if len(flat) == 0 {
				continue
			}
			leaf := flat[0]
			leafFile, leafName := funcKeyOf(leaf)
			key := [2]string{leafFile, leafName}
			g, ok := groups[key]
			if !ok {
				g = &leafGroup{leaf: leaf, callers: map[[2]string]*callerGroup{}}
				groups[key] = g
				order = append(order, key)
			}
			g.count += cc.SampleCount()

			if len(flat) > 1 {
				caller := flat[1]
				callerFile, callerName := funcKeyOf(caller)
				ckey := [2]string{callerFile, callerName}
				cg, ok := g.callers[ckey]
				if !ok {
					cg = &callerGroup{frame: caller}
					g.callers[ckey] = cg
				}
				cg.count += cc.SampleCount()
			}
		}

		sort.Slice(order, func(i, j int) bool {
			return groups[order[i]].count > groups[order[j]].count
		})

		for _, key := range order {
			g := groups[key]
			_, err := fmt.Fprintf(w, "  %6.2f%% %s\n",
				percent(g.count, agg.SampleCount()), formatLocation(g.leaf, showLines))
			if err != nil {
				return err
			}

			callers := make([]*callerGroup, 0, len(g.callers))
			for _, cg := range g.callers {
				callers = append(callers, cg)
			}
			sort.Slice(callers, func(i, j int) bool {
				return callers[i].count > callers[j].count
			})
			for _, cg := range callers {
				_, err := fmt.Fprintf(w, "    %6.2f%% called by %s\n",
					percent(cg.count, g.count), formatLocation(cg.frame, showLines))
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}
