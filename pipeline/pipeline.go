// Package pipeline orchestrates one read's single-end alignment: seed
// finding, chaining, chain filtering, extension, dedup/patch-merge,
// secondary marking, CIGAR generation and MAPQ, per spec.md §2's control
// flow. Paired-end resolution on top of two single-end results lives in
// pe/ and is wired by batch/, not here.
//
// Grounded on bampair/shard_info.go's per-read stage sequencing (resolve,
// score, finalize) generalized from its duplicate-bookkeeping pipeline to
// the alignment core's seed-through-mapq pipeline.
package pipeline

import (
	"sort"

	"github.com/gralign/bwamem/chain"
	"github.com/gralign/bwamem/cigar"
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/dedup"
	"github.com/gralign/bwamem/extend"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/hashutil"
	"github.com/gralign/bwamem/mapq"
	"github.com/gralign/bwamem/region"
	"github.com/gralign/bwamem/secondary"
	"github.com/gralign/bwamem/seed"
	"github.com/gralign/bwamem/seq"
)

// memoizedResolveSA wraps idx.ResolveSA with a per-read cache keyed by
// hashutil.SAResolutionKey: overlapping seeds within one read frequently
// resolve the same SA-interval row, and skipping the repeat collaborator
// call matters when ResolveSA crosses an RPC/S3 boundary.
func memoizedResolveSA(idx *fmindex.Index) func(pos int64) int64 {
	cache := make(map[uint64]int64)
	return func(pos int64) int64 {
		key := hashutil.SAResolutionKey(pos, 0, 0)
		if v, ok := cache[key]; ok {
			return v
		}
		v := idx.ResolveSA(pos)
		cache[key] = v
		return v
	}
}

// Alignment bundles one surviving AlnRegion with the strand it was aligned
// on and its finalized CIGAR, ready for record.Builder.
type Alignment struct {
	Region   *region.AlnRegion
	Reverse  bool
	Cigar    *cigar.Result
	LocalPos int64 // forward-strand, 0-based within Region.Rid's contig
}

// AlignSingleEnd runs the full seed→chain→filter→extend→dedup→secondary→
// cigar→mapq pipeline for one read and returns its surviving alignments,
// sorted score-descending (index 0 is primary). A nil/empty return means
// the read is unmapped: no region scored at least opts.MinOutputScore.
func AlignSingleEnd(query []fmindex.Base, idx *fmindex.Index, opts *config.Options, readID uint64) []Alignment {
	readLen := int32(len(query))
	genomeLength := idx.GenomeLength()

	smems := idx.FindSMEMs(query)
	smems = seed.Reseed(query, smems, idx, opts.MinSeedLength, opts.MinSeedLengthSplit(), opts.SplitWidth)

	chains := seed.BuildChains(smems, memoizedResolveSA(idx), genomeLength, idx.SequenceID, opts.MinSeedLength, opts.MaxOccurrences, opts.MaxChainGap)

	contigs := idx.Contigs()
	for _, c := range chains {
		if int(c.Rid) < len(contigs) {
			c.IsAlt = contigs[c.Rid].IsAlt
		}
	}

	chains = chain.Filter(chains, opts.MinChainWeight, opts.MinSeedLength, opts.ChainDropRatio)

	revQuery := make([]fmindex.Base, readLen)
	seq.ReverseComplement(revQuery, query)

	var fwdRegions, revRegions []*region.AlnRegion
	for _, c := range chains {
		if c.Pos >= genomeLength {
			revRegions = append(revRegions, extend.ExtendChain(c, revQuery, idx, opts)...)
		} else {
			fwdRegions = append(fwdRegions, extend.ExtendChain(c, query, idx, opts)...)
		}
	}

	fwdRegions = dedup.Process(fwdRegions, query, idx, opts, readID)
	revRegions = dedup.Process(revRegions, revQuery, idx, opts, readID)

	all := make([]*region.AlnRegion, 0, len(fwdRegions)+len(revRegions))
	reverseOf := make(map[*region.AlnRegion]bool, len(fwdRegions)+len(revRegions))
	for _, r := range fwdRegions {
		all = append(all, r)
		reverseOf[r] = false
	}
	for _, r := range revRegions {
		all = append(all, r)
		reverseOf[r] = true
	}

	secondary.AssignHashes(all, readID)
	if opts.Flags.Has(config.NoAlt) {
		secondary.MarkPlain(all, opts.MaskLevel)
	} else {
		secondary.MarkALTAware(all, opts.MaskLevel)
	}

	mapq.Compute(all, readLen, opts.MatchScore)

	out := make([]Alignment, 0, len(all))
	for _, r := range all {
		if r.Score < opts.MinOutputScore {
			continue
		}
		rev := reverseOf[r]
		orientedQuery := query
		if rev {
			orientedQuery = revQuery
		}

		refBases, _ := idx.GetReference(r.Rb, int(r.RSpan()))
		cig := cigar.Generate(orientedQuery[r.Qb:r.Qe], refBases, r.TrueScore, rev, readLen, r.Qb, opts.BandWidth, opts.Scoring)

		forwardPos, _ := fmindex.DecodeForwardCoordinate(r.Rb, genomeLength, int32(r.RSpan()))
		_, localPos := idx.DecodePosition(forwardPos)

		out = append(out, Alignment{Region: r, Reverse: rev, Cigar: cig, LocalPos: localPos})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Region.Score > out[j].Region.Score })
	if len(out) == 0 {
		return nil
	}
	return out
}
