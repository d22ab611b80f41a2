// Copyright (c) 2009-2014 Sandvine Incorporated. Adapted under the
// BSD-style license used throughout this module.

package printer

import (
	"fmt"
	"io"
	"sort"

	"github.com/aclements/go-symprof/aggregate"
)

// Flat writes one row per distinct callchain observed in each
// aggregation, sorted descending by sample count, the same shape as
// the teacher's FlatProfilePrinter: percent of the aggregation's total,
// cumulative percent, sample mode, and the leaf frame's location.
func Flat(w io.Writer, aggs []*aggregate.Aggregation, showLines bool) error {
	for i, agg := range aggs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeHeader(w, agg.DisplayName(), agg.SampleCount()); err != nil {
			return err
		}

		chains := agg.Callchains()
		sort.Slice(chains, func(i, j int) bool {
			return chains[i].SampleCount() > chains[j].SampleCount()
		})

		var cumulative uint64
		for _, cc := range chains {
			cumulative += cc.SampleCount()
			flat := cc.Flatten()
			if len(flat) == 0 {
				continue
			}
			leaf := flat[0]
			_, err := fmt.Fprintf(w, "  %6.2f%% %6.2f%% %-4s %s\n",
				percent(cc.SampleCount(), agg.SampleCount()),
				percent(cumulative, agg.SampleCount()),
				sampleModeLabel(cc.Sample()),
				formatLocation(leaf, showLines))
			if err != nil {
				return err
			}
		}
	}
	return nil
}
