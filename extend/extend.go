package extend

import (
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/region"
	"github.com/gralign/bwamem/seed"
	"github.com/gralign/bwamem/seq"
)

const rightExtensionTargetCap = 10000

// ExtendChain extends every seed of a filtered chain, choosing clip-vs-extend
// at each end, and returns the finalized regions (spec.md §4.4).
//
// query is the full 2-bit encoded read (already reverse-complemented if this
// chain is on the reverse strand — the caller is responsible for orienting
// both query and ref fetches consistently, matching how BWA-MEM treats
// reverse-strand chains as operating on the reverse-complemented read against
// the same forward reference fetcher).
func ExtendChain(c *seed.Chain, query []fmindex.Base, ref fmindex.ReferenceFetcher, opts *config.Options) []*region.AlnRegion {
	var regions []*region.AlnRegion

	for _, s := range c.Seeds {
		if covered, idx := containedInExtended(regions, s); covered {
			r := regions[idx]
			seedAlnScore := s.Len * opts.MatchScore
			if seedAlnScore > r.Sub {
				r.Sub = seedAlnScore
			}
			if seedAlnScore >= r.Score-maxSingleEventPenalty(opts) {
				r.SubN++
			}
			continue
		}

		reg := extendOneSeed(s, c, query, ref, opts)
		regions = append(regions, reg)
	}

	for _, r := range regions {
		if r.Sub > 0 && r.Sub < opts.MinSeedLength*opts.MatchScore {
			r.Sub = 0
		}
	}
	return regions
}

// maxSingleEventPenalty bounds the near-tie window used for subN counting;
// a single indel-open-sized event is the largest gap BWA-MEM tolerates
// before two seed-driven scores are no longer considered "near ties".
func maxSingleEventPenalty(opts *config.Options) int32 {
	return opts.GapOpenPenalty + opts.GapExtendPenalty
}

func containedInExtended(regions []*region.AlnRegion, s seed.Seed) (bool, int) {
	for i, r := range regions {
		if s.QBeg >= r.Qb && s.QEnd() <= r.Qe {
			return true, i
		}
	}
	return false, -1
}

func extendOneSeed(s seed.Seed, c *seed.Chain, query []fmindex.Base, ref fmindex.ReferenceFetcher, opts *config.Options) *region.AlnRegion {
	readLen := int32(len(query))

	var leftQLen, leftTLen int32
	var leftChosen int32
	accumulatedH0 := s.Score

	if s.QBeg > 0 {
		l := s.QBeg + opts.BandWidth
		if int64(l) > s.RBeg {
			l = int32(s.RBeg)
		}
		qPrefix := reversedCopy(query[:s.QBeg])
		refPrefix, actual := ref.GetReference(s.RBeg-int64(l), int(l))
		refPrefix = reverseBases(refPrefix)

		res := Dispatch(qPrefix, refPrefix, s.Score, opts.BandWidth, opts.Scoring, opts.ZDrop)
		accumulatedH0 = res.Score

		extend := res.GlobalScore > 0 && res.GlobalScore > res.Score-opts.PenClip5
		if extend {
			leftChosen = res.GlobalScore
			leftQLen = int32(len(qPrefix))
			leftTLen = res.GlobalTargetEnd
		} else {
			leftChosen = res.Score
			leftQLen = res.QueryEnd
			leftTLen = res.TargetEnd
		}
		_ = actual
	}

	var rightQLen, rightTLen int32
	var rightChosen int32
	seedQEnd := s.QEnd()
	if seedQEnd < readLen {
		remaining := readLen - seedQEnd
		l := remaining + opts.BandWidth
		if l > rightExtensionTargetCap {
			l = rightExtensionTargetCap
		}
		qSuffix := query[seedQEnd:]
		refSuffix, _ := ref.GetReference(s.REnd(), int(l))

		res := Dispatch(qSuffix, refSuffix, accumulatedH0, opts.BandWidth, opts.Scoring, opts.ZDrop)

		extend := res.GlobalScore > 0 && res.GlobalScore > res.Score-opts.PenClip3
		if extend {
			rightChosen = res.GlobalScore
			rightQLen = int32(len(qSuffix))
			rightTLen = res.GlobalTargetEnd
		} else {
			rightChosen = res.Score
			rightQLen = res.QueryEnd
			rightTLen = res.TargetEnd
		}
	}

	trueScore := s.Len * opts.MatchScore
	if leftChosen > 0 {
		trueScore = leftChosen
	}
	if rightChosen > 0 {
		trueScore += rightChosen - accumulatedH0
	}

	reg := &region.AlnRegion{
		Rid:       c.Rid,
		Qb:        s.QBeg - leftQLen,
		Qe:        seedQEnd + rightQLen,
		Rb:        s.RBeg - int64(leftTLen),
		Re:        s.REnd() + int64(rightTLen),
		Score:     trueScore,
		TrueScore: trueScore,
		SeedLen0:  s.Len,
		IsAlt:     c.IsAlt,
	}

	var cov int32
	for _, other := range c.Seeds {
		if other.QBeg >= reg.Qb && other.QEnd() <= reg.Qe && other.RBeg >= reg.Rb && other.REnd() <= reg.Re {
			cov += other.Len
		}
	}
	reg.SeedCov = cov
	return reg
}

func reversedCopy(bases []fmindex.Base) []fmindex.Base {
	out := make([]fmindex.Base, len(bases))
	copy(out, bases)
	seq.Reverse(out)
	return out
}

func reverseBases(bases []fmindex.Base) []fmindex.Base {
	out := append([]fmindex.Base(nil), bases...)
	seq.Reverse(out)
	return out
}
