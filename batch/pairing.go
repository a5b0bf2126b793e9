package batch

import (
	"github.com/gralign/bwamem/cigar"
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/mapq"
	"github.com/gralign/bwamem/pe"
	"github.com/gralign/bwamem/pipeline"
	"github.com/gralign/bwamem/region"
	"github.com/gralign/bwamem/seq"
)

// toCandidates adapts a strand-oriented alignment list into pe.Candidate,
// the shape pe.ScorePairs consumes.
func toCandidates(alns []pipeline.Alignment) []pe.Candidate {
	out := make([]pe.Candidate, len(alns))
	for i, a := range alns {
		out[i] = pe.Candidate{Region: a.Region, Index: i}
	}
	return out
}

// swapAlignments mirrors pe.promoteOne's region-slice swap onto the parallel
// Alignment slice, so alns[0] stays the record.Builder input for whichever
// region Promote moved to the front.
func swapAlignments(alns []pipeline.Alignment, idx int) {
	if idx <= 0 || idx >= len(alns) {
		return
	}
	alns[0], alns[idx] = alns[idx], alns[0]
}

// expectedMateReverse estimates the strand a rescued mate should be searched
// on, from the batch's dominant pairing orientation and the anchor's own
// strand — the inverse of pe.Classify's FR/RF/FF/RR convention (spec.md §4.9
// "Mate rescue"). This assumes the anchor is the upstream mate of the pair,
// the common case when the other mate is entirely unmapped.
func expectedMateReverse(primary pe.Orientation, anchorReverse bool) bool {
	switch primary {
	case pe.FR, pe.RF:
		return !anchorReverse
	default: // FF, RR: both mates share the anchor's strand
		return anchorReverse
	}
}

// rescueMate runs pe.Rescue for one mate against an anchor alignment from
// its partner, generating the CIGAR and MAPQ for any recovered region (a
// rescued region never went through the per-region cigar.Generate and
// mapq.Compute calls pipeline.AlignSingleEnd makes, so they are made here).
func rescueMate(mateQuery []fmindex.Base, readLen int32, anchor pipeline.Alignment, dist *pe.InsertSizeDistribution, idx *fmindex.Index, opts *config.Options) *pipeline.Alignment {
	rev := expectedMateReverse(dist.PrimaryOrientation, anchor.Reverse)
	query := mateQuery
	if rev {
		rc := make([]fmindex.Base, len(mateQuery))
		seq.ReverseComplement(rc, mateQuery)
		query = rc
	}

	reg := pe.Rescue(anchor.Region, query, idx, dist, idx.GenomeLength(), opts)
	if reg == nil {
		return nil
	}

	refBases, _ := idx.GetReference(reg.Rb, int(reg.RSpan()))
	cig := cigar.Generate(query[reg.Qb:reg.Qe], refBases, reg.TrueScore, rev, readLen, reg.Qb, opts.BandWidth, opts.Scoring)

	forwardPos, _ := fmindex.DecodeForwardCoordinate(reg.Rb, idx.GenomeLength(), int32(reg.RSpan()))
	_, localPos := idx.DecodePosition(forwardPos)

	mapq.Compute([]*region.AlnRegion{reg}, readLen, opts.MatchScore)

	return &pipeline.Alignment{Region: reg, Reverse: rev, Cigar: cig, LocalPos: localPos}
}

// resolvePair runs pair scoring (and, failing that, mate rescue) over two
// single-end alignment lists, promoting the chosen pair to index 0 of each
// list in place (spec.md §4.9). Returns the winning decision, or nil if
// pairing is disabled, no distribution is available yet, or no acceptable
// pair/rescue was found.
func resolvePair(mate1Query, mate2Query []fmindex.Base, alns1, alns2 *[]pipeline.Alignment, dist *pe.InsertSizeDistribution, idx *fmindex.Index, opts *config.Options) *pe.PairDecision {
	if opts.Flags.Has(config.NoPairing) || dist == nil {
		return nil
	}

	if len(*alns1) > 0 && len(*alns2) == 0 && !opts.Flags.Has(config.NoRescue) {
		if rescued := rescueMate(mate2Query, int32(len(mate2Query)), (*alns1)[0], dist, idx, opts); rescued != nil {
			*alns2 = append([]pipeline.Alignment{*rescued}, *alns2...)
		}
	} else if len(*alns2) > 0 && len(*alns1) == 0 && !opts.Flags.Has(config.NoRescue) {
		if rescued := rescueMate(mate1Query, int32(len(mate1Query)), (*alns2)[0], dist, idx, opts); rescued != nil {
			*alns1 = append([]pipeline.Alignment{*rescued}, *alns1...)
		}
	}

	if len(*alns1) == 0 || len(*alns2) == 0 {
		return nil
	}

	cands1 := toCandidates(*alns1)
	cands2 := toCandidates(*alns2)
	decision, ok := pe.ScorePairs(cands1, cands2, dist, idx.GenomeLength(), opts.Scoring)
	if !ok {
		return nil
	}

	regions1 := regionsOf(*alns1)
	regions2 := regionsOf(*alns2)
	moved1, moved2 := pe.Promote(regions1, regions2, decision)
	if moved1 {
		swapAlignments(*alns1, decision.Idx1)
	}
	if moved2 {
		swapAlignments(*alns2, decision.Idx2)
	}
	return decision
}

func regionsOf(alns []pipeline.Alignment) []*region.AlnRegion {
	out := make([]*region.AlnRegion, len(alns))
	for i, a := range alns {
		out[i] = a.Region
	}
	return out
}
