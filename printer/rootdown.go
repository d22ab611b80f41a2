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

// rootGroup accumulates every callchain sharing the same root
// (outermost physical) function, plus a breakdown of their immediate
// callees.
type rootGroup struct {
	root    frame.InlineFrame
	count   uint64
	callees map[[2]string]*calleeGroup
}

type calleeGroup struct {
	frame frame.InlineFrame
	count uint64
}

// RootDown writes, for each aggregation, every distinct root function
// observed (sorted descending by total sample count) together with one
// level of immediate-callee drill-down beneath it: the mirror image of
// LeafUp, anchored on the physical outermost frame instead of the leaf.
func RootDown(w io.Writer, aggs []*aggregate.Aggregation, showLines bool) error {
	for i, agg := range aggs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeHeader(w, agg.DisplayName(), agg.SampleCount()); err != nil {
			return err
		}

		groups := map[[2]string]*rootGroup{}
		var order [][2]string
		for _, cc := range agg.Callchains() {
			flat := cc.Flatten()
			if len(flat) == 0 {
				continue
			}
			root := flat[len(flat)-1]
			rootFile, rootName := funcKeyOf(root)
			key := [2]string{rootFile, rootName}
			g, ok := groups[key]
			if !ok {
				g = &rootGroup{root: root, callees: map[[2]string]*calleeGroup{}}
				groups[key] = g
				order = append(order, key)
			}
			g.count += cc.SampleCount()

			if len(flat) > 1 {
				callee := flat[len(flat)-2]
				calleeFile, calleeName := funcKeyOf(callee)
				ckey := [2]string{calleeFile, calleeName}
				cg, ok := g.callees[ckey]
				if !ok {
					cg = &calleeGroup{frame: callee}
					g.callees[ckey] = cg
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
				percent(g.count, agg.SampleCount()), formatLocation(g.root, showLines))
			if err != nil {
				return err
			}

			callees := make([]*calleeGroup, 0, len(g.callees))
			for _, cg := range g.callees {
				callees = append(callees, cg)
			}
			sort.Slice(callees, func(i, j int) bool {
				return callees[i].count > callees[j].count
			})
			for _, cg := range callees {
				_, err := fmt.Fprintf(w, "    %6.2f%% calls %s\n",
					percent(cg.count, g.count), formatLocation(cg.frame, showLines))
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}
