// Package dedup implements DedupPatch: redundancy removal and colinear
// patch-merging of overlapping/adjacent regions from the same strand group
// (spec.md §4.5). The backward neighbor walk runs over an llrb.Tree keyed by
// (Rid, Rb), the same indexing bampair/shard_info.go uses for its shard
// boundary lookups, generalized here from BAM shards to alignment regions.
package dedup

import (
	"sort"

	"github.com/gralign/bwamem/cigar"
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/hashutil"
	"github.com/gralign/bwamem/region"
)

// Process runs one DedupPatch pass over regions that all share a strand
// orientation — query is that orientation's 2-bit read (reverse-complemented
// by the caller for a reverse-strand group, the same contract ExtendChain
// uses), and ref fetches forward-strand reference bases by BWT-space
// position. readID breaks ties between equal-score survivors deterministically
// (sort.Slice gives no stability guarantee on its own). Returns the surviving
// regions, sorted by score descending with exact duplicates removed.
func Process(regions []*region.AlnRegion, query []fmindex.Base, ref fmindex.ReferenceFetcher, opts *config.Options, readID uint64) []*region.AlnRegion {
	if len(regions) == 0 {
		return regions
	}

	sort.Slice(regions, func(a, b int) bool {
		if regions[a].Rid != regions[b].Rid {
			return regions[a].Rid < regions[b].Rid
		}
		return regions[a].Re < regions[b].Re
	})

	neighbors := buildNeighborIndex(regions)
	for i := range regions {
		ri := regions[i]
		if ri.Deleted {
			continue
		}
		for rj := neighbors.predecessorOf(ri); rj != nil; rj = neighbors.predecessorOf(rj) {
			if rj.Rid != ri.Rid {
				break
			}
			if ri.Rb-rj.Re > int64(opts.MaxChainGap) {
				break
			}
			if rj.Deleted {
				continue
			}

			if redundant(ri, rj, opts.MaskLevelRedun) {
				if ri.Score < rj.Score {
					ri.Deleted = true
					ri.Qe = ri.Qb
					break // ri is gone; nothing left to compare it against
				}
				rj.Deleted = true
				rj.Qe = rj.Qb
				continue
			}

			tryPatch(ri, rj, query, ref, opts)
		}
	}

	var kept []*region.AlnRegion
	for _, r := range regions {
		if !r.Deleted {
			kept = append(kept, r)
		}
	}

	sort.Slice(kept, func(a, b int) bool {
		if kept[a].Score != kept[b].Score {
			return kept[a].Score > kept[b].Score
		}
		return hashutil.RegionTieBreaker(readID, a) < hashutil.RegionTieBreaker(readID, b)
	})
	return dedupExact(kept)
}

func redundant(a, b *region.AlnRegion, maskLevelRedun float64) bool {
	refOverlap := overlapI64(a.Rb, a.Re, b.Rb, b.Re)
	queryOverlap := overlapI32(a.Qb, a.Qe, b.Qb, b.Qe)
	minRefLen := a.RSpan()
	if b.RSpan() < minRefLen {
		minRefLen = b.RSpan()
	}
	minQueryLen := a.QSpan()
	if b.QSpan() < minQueryLen {
		minQueryLen = b.QSpan()
	}
	if minRefLen <= 0 || minQueryLen <= 0 {
		return false
	}
	return float64(refOverlap)/float64(minRefLen) > maskLevelRedun &&
		float64(queryOverlap)/float64(minQueryLen) > maskLevelRedun
}

func overlapI64(aLo, aHi, bLo, bHi int64) int64 {
	lo := aLo
	if bLo > lo {
		lo = bLo
	}
	hi := aHi
	if bHi < hi {
		hi = bHi
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

func overlapI32(aLo, aHi, bLo, bHi int32) int32 {
	lo := aLo
	if bLo > lo {
		lo = bLo
	}
	hi := aHi
	if bHi < hi {
		hi = bHi
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

// tryPatch attempts to merge a colinear (q, p) pair into p, deleting q on
// acceptance (spec.md §4.5 "Patch").
func tryPatch(a, b *region.AlnRegion, query []fmindex.Base, ref fmindex.ReferenceFetcher, opts *config.Options) {
	q, p := a, b
	if q.Qb > p.Qb {
		q, p = p, q
	}
	if !(q.Qb < p.Qb && q.Qe < p.Qe && q.Re < p.Re) {
		return
	}

	qGap := p.Qb - q.Qe
	rGap := int32(p.Rb - q.Re)
	bw := qGap - rGap
	if bw < 0 {
		bw = -bw
	}
	overlapping := qGap < 0 || rGap < 0

	denom := qGap
	if rGap > denom {
		denom = rGap
	}
	if denom < 0 {
		denom = -denom
	}
	if denom < 1 {
		denom = 1
	}
	relBW := float32(bw) / float32(denom)

	w := opts.BandWidth
	if overlapping {
		if bw > 4*w || relBW >= 0.10 {
			return
		}
	} else {
		if bw > 2*w || relBW >= 0.05 {
			return
		}
	}

	mergedQuery := query[q.Qb:p.Qe]
	rLo, rHi := q.Rb, p.Re
	if p.Rb < rLo {
		rLo = p.Rb
	}
	if q.Re > rHi {
		rHi = q.Re
	}
	mergedRef, _ := ref.GetReference(rLo, int(rHi-rLo))

	band := w + bw
	if band < w {
		band = w
	}
	result := cigar.GlobalAlign(mergedQuery, mergedRef, band, opts.Scoring)

	qLen := int32(len(mergedQuery))
	rLen := int32(len(mergedRef))
	expected := qLen * opts.MatchScore
	if rLen*opts.MatchScore > expected {
		expected = rLen * opts.MatchScore
	}
	diff := qLen - rLen
	if diff < 0 {
		diff = -diff
	}
	expected -= opts.GapOpenPenalty + opts.GapExtendPenalty*diff
	if expected <= 0 {
		return
	}

	if float32(result.Score)/float32(expected) < 0.90 {
		return
	}

	p.Qb = q.Qb
	p.Rb = rLo
	p.Re = rHi
	p.Score = result.Score
	p.TrueScore = result.Score
	p.SeedCov += q.SeedCov
	q.Deleted = true
	q.Qe = q.Qb
}

func dedupExact(regions []*region.AlnRegion) []*region.AlnRegion {
	type key struct {
		score int32
		rb    int64
		qb    int32
	}
	seen := make(map[key]bool, len(regions))
	out := regions[:0]
	for _, r := range regions {
		k := key{r.Score, r.Rb, r.Qb}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
