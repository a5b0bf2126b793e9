// Package chain implements ChainFilter (spec.md §4.3): it drops low-weight
// chains and suppresses chains overlapping heavier chains, with an ALT guard
// that prevents an ALT chain from ever suppressing a primary-contig chain.
package chain

import (
	"sort"

	"github.com/gralign/bwamem/seed"
)

// Filter removes chains with weight < max(minChainWeight, minSeedLength),
// then sorts the remainder by weight descending and drops any chain j that
// is sufficiently dominated in query-overlap by a heavier chain i, unless i
// is ALT and j is primary (the ALT guard).
//
// Returns the surviving chains, sorted by weight descending (the order the
// extension stage consumes them in).
func Filter(chains []*seed.Chain, minChainWeight, minSeedLength int32, dropRatio float64) []*seed.Chain {
	floor := minChainWeight
	if minSeedLength > floor {
		floor = minSeedLength
	}

	kept := make([]*seed.Chain, 0, len(chains))
	for _, c := range chains {
		if c.Weight >= floor {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Weight > kept[j].Weight })

	dropped := make([]bool, len(kept))
	spans := make([][2]int32, len(kept))
	for i, c := range kept {
		qb, qe := c.Span()
		spans[i] = [2]int32{qb, qe}
	}

	for i := 0; i < len(kept); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(kept); j++ {
			if dropped[j] {
				continue
			}
			overlap := queryOverlap(spans[i], spans[j])
			if overlap <= 0 {
				continue
			}
			jSpanLen := spans[j][1] - spans[j][0]
			if jSpanLen <= 0 {
				continue
			}
			if float64(overlap)/float64(jSpanLen) <= dropRatio {
				continue
			}
			if float64(kept[j].Weight) >= dropRatio*float64(kept[i].Weight) {
				continue
			}
			if kept[i].IsAlt && !kept[j].IsAlt {
				// ALT guard: an ALT chain never suppresses a primary chain.
				continue
			}
			dropped[j] = true
		}
	}

	out := make([]*seed.Chain, 0, len(kept))
	for i, c := range kept {
		if !dropped[i] {
			out = append(out, c)
		}
	}
	return out
}

func queryOverlap(a, b [2]int32) int32 {
	lo := a[0]
	if b[0] > lo {
		lo = b[0]
	}
	hi := a[1]
	if b[1] < hi {
		hi = b[1]
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
