// Package secondary implements plain and ALT-aware secondary marking
// (spec.md §4.6).
package secondary

import (
	"sort"

	"github.com/gralign/bwamem/region"
)

// hash64 is a SplitMix64-style deterministic mixer: hash64(readID ^ i)
// needs no collision resistance, only cheap, stable tie-breaking, and
// spec.md §4.6 names this exact formula, so it stays a plain arithmetic
// mixer here rather than pulling in a hashing library (those are wired
// instead in `hashutil`, for the dedup survivor tie-break and the
// resolveSA memoization cache key).
func hash64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// AssignHashes stamps each region's tie-breaker hash from the read ID and
// its index, matching spec.md §4.6's "hash64(readId⊕i)".
func AssignHashes(regions []*region.AlnRegion, readID uint64) {
	for i, r := range regions {
		r.Hash = hash64(readID ^ uint64(i))
	}
}

func queryOverlapFrac(a, b *region.AlnRegion) float64 {
	lo := a.Qb
	if b.Qb > lo {
		lo = b.Qb
	}
	hi := a.Qe
	if b.Qe < hi {
		hi = b.Qe
	}
	if hi <= lo {
		return 0
	}
	spanA, spanB := a.QSpan(), b.QSpan()
	minSpan := spanA
	if spanB < minSpan {
		minSpan = spanB
	}
	if minSpan <= 0 {
		return 0
	}
	return float64(hi-lo) / float64(minSpan)
}

// MarkPlain implements the no-ALT path: sort by (score desc, hash asc), then
// for each i mark every lower-ranked j whose query overlap with i exceeds
// maskLevel as secondary to i.
func MarkPlain(regions []*region.AlnRegion, maskLevel float64) {
	order := rankOrder(regions)
	for oi, i := range order {
		ri := regions[i]
		if !ri.Secondary.IsPrimary() {
			continue
		}
		for _, j := range order[oi+1:] {
			rj := regions[j]
			if !rj.Secondary.IsPrimary() {
				continue
			}
			if queryOverlapFrac(ri, rj) > maskLevel {
				rj.Secondary = region.SecondaryRef{Kind: region.SecondaryTo, Index: int32(i)}
			}
		}
	}
}

// SecondaryAllPromotedALT is the reserved sentinel SecondaryAll value for an
// ALT hit that stayed primary through Phase 1 of ALT-aware marking but had
// no primary-only dominator in Phase 2 (spec.md §4.6, §9 "tagged variants").
const SecondaryAllPromotedALT = int32(1<<31 - 1)

// MarkALTAware implements the two-phase ALT-aware path (spec.md §4.6).
func MarkALTAware(regions []*region.AlnRegion, maskLevel float64) {
	phase1 := altAwareRankOrder(regions)
	for rank, idx := range phase1 {
		regions[idx].SecondaryAll = int32(rank)
	}

	for oi, i := range phase1 {
		ri := regions[i]
		if !ri.Secondary.IsPrimary() {
			continue
		}
		for _, j := range phase1[oi+1:] {
			rj := regions[j]
			if !rj.Secondary.IsPrimary() {
				continue
			}
			if queryOverlapFrac(ri, rj) <= maskLevel {
				continue
			}
			rj.Secondary = region.SecondaryRef{Kind: region.SecondaryTo, Index: int32(i)}
			if ri.IsAlt || !rj.IsAlt {
				ri.SubN++
			}
			if ri.IsAlt {
				rj.AltSc = ri.Score
			}
		}
	}

	// Phase 2: re-rank with non-ALT regions first, re-mark secondary within
	// that primary-only prefix, and reindex references to match.
	phase2 := make([]int, len(regions))
	copy(phase2, phase1)
	sort.SliceStable(phase2, func(a, b int) bool {
		ra, rb := regions[phase2[a]], regions[phase2[b]]
		if ra.IsAlt != rb.IsAlt {
			return !ra.IsAlt
		}
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		return ra.Hash < rb.Hash
	})

	reindex := make(map[int]int32, len(regions))
	for rank, idx := range phase2 {
		reindex[idx] = int32(rank)
	}

	primaryPrefix := phase2
	altSuffix := phase2[:0]
	for end, idx := range phase2 {
		if regions[idx].IsAlt {
			primaryPrefix = phase2[:end]
			altSuffix = phase2[end:]
			break
		}
	}

	// ALT hits carry forward their phase-1 domination reindexed, except an
	// ALT hit that was primary in phase 1: it never gets a real dominator
	// here (only non-ALT regions are re-marked below), so it keeps its
	// status via the reserved sentinel instead of the −1/primary meaning.
	for _, idx := range altSuffix {
		r := regions[idx]
		if r.Secondary.Kind == region.SecondaryTo {
			r.Secondary = region.SecondaryRef{Kind: region.SecondaryTo, Index: reindex[int(r.Secondary.Index)]}
			continue
		}
		r.Secondary = region.SecondaryRef{Kind: region.SecondaryToALT}
		r.SecondaryAll = SecondaryAllPromotedALT
	}

	// Re-mark secondary from scratch within the non-ALT prefix: a region
	// dominated only by an ALT hit in phase 1 is not truly dominated by any
	// non-ALT alignment, so it starts over as primary here.
	for _, idx := range primaryPrefix {
		regions[idx].Secondary = region.SecondaryRef{}
	}
	for oi, idx := range primaryPrefix {
		ri := regions[idx]
		if !ri.Secondary.IsPrimary() {
			continue
		}
		for _, j := range primaryPrefix[oi+1:] {
			rj := regions[j]
			if !rj.Secondary.IsPrimary() {
				continue
			}
			if queryOverlapFrac(ri, rj) > maskLevel {
				rj.Secondary = region.SecondaryRef{Kind: region.SecondaryTo, Index: reindex[idx]}
			}
		}
	}
}

func rankOrder(regions []*region.AlnRegion) []int {
	order := make([]int, len(regions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := regions[order[a]], regions[order[b]]
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		return ra.Hash < rb.Hash
	})
	return order
}

func altAwareRankOrder(regions []*region.AlnRegion) []int {
	order := make([]int, len(regions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := regions[order[a]], regions[order[b]]
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		if ra.IsAlt != rb.IsAlt {
			return !ra.IsAlt
		}
		return ra.Hash < rb.Hash
	})
	return order
}
