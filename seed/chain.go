package seed

import (
	"sort"

	"github.com/gralign/bwamem/fmindex"
)

// BuildChains converts a read's SMEMs into chains, per spec.md §4.1.
//
// For each SMEM of length >= minSeedLength, up to maxOccurrences positions
// are materialized by stepping through the SMEM's SA interval by
// occurrences/maxOccurrences (at least 1). Each materialized position joins
// the youngest compatible chain on the same rid when
// max(|refGap|,|queryGap|) < maxChainGap; otherwise it starts a new chain.
func BuildChains(
	smems []fmindex.SMEM,
	resolveSA func(pos int64) int64,
	genomeLength int64,
	sequenceID func(pos int64) int32,
	minSeedLength int32,
	maxOccurrences int32,
	maxChainGap int32,
) []*Chain {
	// active[rid] holds the youngest chain for that contig seen so far, the
	// way BWA-MEM's chaining walks one growing chain per rid rather than
	// re-scanning all existing chains for every seed.
	active := make(map[int32]*Chain)
	var chains []*Chain

	for _, m := range smems {
		if m.Len() < minSeedLength {
			continue
		}
		step := m.Interval.Count / int64(maxOccurrences)
		if step < 1 {
			step = 1
		}
		emitted := int32(0)
		for row := m.Interval.K; row < m.Interval.K+m.Interval.Count && emitted < maxOccurrences; row += step {
			pos := resolveSA(row)
			forwardPos, reverse := fmindex.DecodeForwardCoordinate(pos, genomeLength, m.Len())
			rid := sequenceID(forwardPos)

			var s Seed
			if reverse {
				// Reverse-strand seed: the BWT-space rbeg stays pos (callers
				// that fetch reference bases use the BWT-space coordinate
				// directly); qbeg/len are unaffected by strand, matching
				// the Seed contract in spec.md §3 (rbeg is in BWT space).
				s = Seed{RBeg: pos, QBeg: m.QueryBegin, Len: m.Len(), Score: m.Len()}
			} else {
				s = Seed{RBeg: pos, QBeg: m.QueryBegin, Len: m.Len(), Score: m.Len()}
			}

			c := active[rid]
			if c != nil && compatible(c, s, maxChainGap) {
				c.Seeds = append(c.Seeds, s)
			} else {
				c = &Chain{Rid: rid, Seeds: []Seed{s}}
				active[rid] = c
				chains = append(chains, c)
			}
			emitted++
		}
	}

	for _, c := range chains {
		sort.Slice(c.Seeds, func(i, j int) bool { return c.Seeds[i].RBeg < c.Seeds[j].RBeg })
		c.Pos = c.Seeds[0].RBeg
		c.Weight = chainWeight(c)
	}
	return chains
}

// compatible reports whether seed s may be appended to chain c: same rid
// (guaranteed by caller keying active[] by rid) and
// max(|refGap|, |queryGap|) < maxChainGap against the chain's most recently
// appended seed.
func compatible(c *Chain, s Seed, maxChainGap int32) bool {
	last := c.Seeds[len(c.Seeds)-1]
	refGap := s.RBeg - last.REnd()
	if refGap < 0 {
		refGap = -refGap
	}
	queryGap := int64(s.QBeg - last.QEnd())
	if queryGap < 0 {
		queryGap = -queryGap
	}
	gap := refGap
	if queryGap > gap {
		gap = queryGap
	}
	return gap < int64(maxChainGap)
}

// chainWeight sums each seed's length contribution, subtracting overlap with
// the already-accumulated query span so identical/overlapping seeds aren't
// double counted, matching BWA-MEM's mem_chain_weight.
func chainWeight(c *Chain) int32 {
	sort.Slice(c.Seeds, func(i, j int) bool { return c.Seeds[i].QBeg < c.Seeds[j].QBeg })
	var weight int32
	var coveredEnd int32
	for _, s := range c.Seeds {
		qb, qe := s.QBeg, s.QEnd()
		if qb < coveredEnd {
			qb = coveredEnd
		}
		if qe > qb {
			weight += qe - qb
		}
		if s.QEnd() > coveredEnd {
			coveredEnd = s.QEnd()
		}
	}
	sort.Slice(c.Seeds, func(i, j int) bool { return c.Seeds[i].RBeg < c.Seeds[j].RBeg })
	return weight
}
