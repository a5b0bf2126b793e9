package seed

import (
	"sort"

	"github.com/gralign/bwamem/fmindex"
)

// Reseed implements the internal midpoint reseeding pass (spec.md §4.2).
//
// For every SMEM whose length >= floor(minSeedLength*seedSplitRatio+0.499)
// and whose SA-interval occurrence count <= splitWidth, SMEM search is
// re-run from the SMEM's midpoint with minIntv = occurrences+1. Newly found
// SMEMs are appended, de-duplicated on (queryBegin, queryEnd, k), and the
// full set is resorted by (queryBegin asc, length desc).
//
// Implemented as an iterative worklist rather than recursion, per the
// "Midpoint reseed recursion" re-architecture hint in spec.md §9: each
// eligible input SMEM contributes one (midpoint, minIntv) work item, drained
// by one loop instead of a function calling itself. This is a single round:
// SMEMs found by reseeding are not queued for reseeding themselves.
func Reseed(
	query []fmindex.Base,
	smems []fmindex.SMEM,
	finder fmindex.SMEMFinder,
	minSeedLength int32,
	minSplitLen int32,
	splitWidth int32,
) []fmindex.SMEM {
	all := append([]fmindex.SMEM(nil), smems...)

	type workItem struct {
		midpoint int32
		minIntv  int64
	}
	var worklist []workItem
	for _, m := range smems {
		if m.Len() >= minSplitLen && m.Interval.Count <= int64(splitWidth) {
			worklist = append(worklist, workItem{
				midpoint: (m.QueryBegin + m.QueryEnd) / 2,
				minIntv:  m.Interval.Count + 1,
			})
		}
	}

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]
		found := finder.FindSMEMsAtPosition(query, item.midpoint, minSeedLength, item.minIntv)
		all = append(all, found...)
	}

	all = dedupSMEMs(all)
	sort.Slice(all, func(i, j int) bool {
		if all[i].QueryBegin != all[j].QueryBegin {
			return all[i].QueryBegin < all[j].QueryBegin
		}
		return all[i].Len() > all[j].Len()
	})
	return all
}

func dedupSMEMs(smems []fmindex.SMEM) []fmindex.SMEM {
	type key struct {
		qb, qe int32
		k      int64
	}
	seen := make(map[key]bool, len(smems))
	out := make([]fmindex.SMEM, 0, len(smems))
	for _, m := range smems {
		k := key{m.QueryBegin, m.QueryEnd, m.Interval.K}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}
