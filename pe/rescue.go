package pe

import (
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/extend"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/region"
)

// windowSigma is how many standard deviations of slack to fetch around the
// expected mate position before running the rescue SW (spec.md §4.9 "Mate
// rescue").
const windowSigma = 4.0

// Rescue attempts to locate the unmapped (or poorly mapped) mate of anchor
// by fetching a reference window around the expected insert-size position
// and running a full local SW over it, recovering the true start position
// with a second reversed pass (spec.md §4.9). mateQuery is the mate's 2-bit
// read, oriented to match the strand the rescue window expects (the caller
// reverse-complements it when the primary orientation calls for it).
func Rescue(anchor *region.AlnRegion, mateQuery []fmindex.Base, ref fmindex.ReferenceFetcher, dist *InsertSizeDistribution, genomeLength int64, opts *config.Options) *region.AlnRegion {
	stat := dist.Stats[dist.PrimaryOrientation]
	if stat.Failed || len(mateQuery) == 0 {
		return nil
	}

	anchorFwd, _ := fmindex.DecodeForwardCoordinate(anchor.Rb, genomeLength, int32(anchor.RSpan()))

	half := int64(stat.Mean + windowSigma*stat.Stddev)
	if half < int64(len(mateQuery)) {
		half = int64(len(mateQuery))
	}

	// The mate is expected within ±half of the anchor under the primary
	// orientation; the caller already reverse-complemented mateQuery to
	// match whichever side of that window it should land on.
	windowStart := anchorFwd - half
	if windowStart < 0 {
		windowStart = 0
	}
	windowLen := int(2 * half)

	winFwd, actual := ref.GetReference(forwardToBWT(windowStart, genomeLength), windowLen)
	if actual == 0 {
		return nil
	}

	// A band as wide as the window makes this a full local SW over it.
	best := extend.Dispatch(mateQuery, winFwd, 0, int32(len(winFwd)), opts.Scoring, opts.ZDrop)
	if best.Score < opts.MinSeedLength*opts.MatchScore {
		return nil
	}

	// Second pass: reverse both the matched prefix of the query and the
	// corresponding target prefix to recover the true start position, the
	// same "reverse the slices" idiom extend.ExtendChain uses for left
	// extension.
	matchedQuery := reversedBases(mateQuery[:best.QueryEnd])
	matchedTarget := reversedBases(winFwd[:best.TargetEnd])
	startRes := extend.Dispatch(matchedQuery, matchedTarget, 0, opts.BandWidth, opts.Scoring, opts.ZDrop)

	qb := best.QueryEnd - startRes.QueryEnd
	if qb < 0 {
		qb = 0
	}
	rbWindowOffset := best.TargetEnd - startRes.TargetEnd
	if rbWindowOffset < 0 {
		rbWindowOffset = 0
	}

	forwardStart := windowStart + int64(rbWindowOffset)
	forwardEnd := windowStart + int64(best.TargetEnd)

	bwtRb, bwtRe := forwardSpanToBWT(forwardStart, forwardEnd, genomeLength)

	return &region.AlnRegion{
		Rid:       anchor.Rid,
		Qb:        qb,
		Qe:        best.QueryEnd,
		Rb:        bwtRb,
		Re:        bwtRe,
		Score:     best.Score,
		TrueScore: best.Score,
	}
}

func reversedBases(b []fmindex.Base) []fmindex.Base {
	out := make([]fmindex.Base, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// forwardToBWT and forwardSpanToBWT map a forward-strand fetch window back
// to BWT-space coordinates for the strand the rescued region turned out to
// be on. Since Rescue always fetches the forward-strand reference (ref is a
// forward-strand fetcher per the ReferenceFetcher contract), the result is
// always a forward-strand BWT-space span.
func forwardToBWT(forwardPos, genomeLength int64) int64 {
	if forwardPos < 0 {
		return 0
	}
	if forwardPos > genomeLength {
		return genomeLength
	}
	return forwardPos
}

func forwardSpanToBWT(start, end, genomeLength int64) (int64, int64) {
	if start < 0 {
		start = 0
	}
	if end > genomeLength {
		end = genomeLength
	}
	return start, end
}
