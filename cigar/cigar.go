package cigar

import (
	"strconv"

	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
)

// Result is the final, soft-clip-inclusive CIGAR plus its NM/MD tags
// (spec.md §4.7).
type Result struct {
	Ops []Op
	NM  int32
	MD  string
}

// Generate produces the final CIGAR, NM and MD for one region. query and ref
// are the raw (qb,qe)/(rb,re) slices — query already reverse-complemented if
// isReverse, ref always forward-strand, per spec.md §4.7. trueScore is the
// region's already-computed alignment score; initialW is opts.BandWidth; qb
// is the region's query-start offset into the full (already oriented) read,
// needed to size the soft clips correctly.
func Generate(query, ref []fmindex.Base, trueScore int32, isReverse bool, readLen, qb, initialW int32, sc config.Scoring) *Result {
	qLen, rLen := int32(len(query)), int32(len(ref))

	var ops []Op
	if qLen == rLen {
		gapCost := sc.GapOpenPenalty + sc.GapExtendPenalty + sc.GapOpenPenaltyDeletion + sc.GapExtendPenaltyDeletion
		if qLen*sc.MatchScore-trueScore < gapCost {
			ops = []Op{{OpMatch, qLen}}
		}
	}

	if ops == nil {
		w := inferBand(qLen, rLen, trueScore, initialW, sc)
		var res *GlobalResult
		for attempt := 0; attempt < 3; attempt++ {
			res = GlobalAlign(query, ref, w, sc)
			if res.Score >= trueScore {
				break
			}
			w *= 2
		}
		ops = res.Ops
	}

	ops, refOffset := squeezeDeletions(ops)
	trimmedRef := ref[refOffset:]

	nm, md := computeNMAndMD(ops, query, trimmedRef)

	return &Result{
		Ops: addSoftClips(ops, isReverse, readLen, qb, qLen),
		NM:  nm,
		MD:  md,
	}
}

// inferBand computes the band width heuristic (spec.md §4.7 "Band
// inference"): a cheap one when the region is near-perfect, a deficit-driven
// one when it isn't.
func inferBand(qLen, rLen, trueScore, initialW int32, sc config.Scoring) int32 {
	diff := qLen - rLen
	if diff < 0 {
		diff = -diff
	}
	heuristic := diff + 3

	minLen := qLen
	if rLen < minLen {
		minLen = rLen
	}
	if trueScore < minLen*sc.MatchScore {
		expected := qLen * sc.MatchScore
		if rLen*sc.MatchScore > expected {
			expected = rLen * sc.MatchScore
		}
		deficit := expected - trueScore
		gapCost := sc.GapOpenPenalty + sc.GapExtendPenalty
		if sc.GapOpenPenaltyDeletion+sc.GapExtendPenaltyDeletion < gapCost {
			gapCost = sc.GapOpenPenaltyDeletion + sc.GapExtendPenaltyDeletion
		}
		matchMismatchDelta := sc.MatchScore + sc.MismatchPenalty
		denom := gapCost
		if matchMismatchDelta < denom {
			denom = matchMismatchDelta
		}
		if denom < 1 {
			denom = 1
		}
		errors := deficit / denom
		if errors > heuristic {
			heuristic = errors
		}
	}
	if heuristic < initialW {
		return initialW
	}
	return heuristic
}

// squeezeDeletions removes leading and trailing deletion runs, which carry
// no emitted reference position, and reports how many reference bases to
// skip from the front of the slice the caller passes to NM/MD computation.
func squeezeDeletions(ops []Op) ([]Op, int32) {
	var refOffset int32
	for len(ops) > 0 && ops[0].Type == OpDel {
		refOffset += ops[0].Len
		ops = ops[1:]
	}
	for len(ops) > 0 && ops[len(ops)-1].Type == OpDel {
		ops = ops[:len(ops)-1]
	}
	return ops, refOffset
}

func computeNMAndMD(ops []Op, query, ref []fmindex.Base) (int32, string) {
	var nm int32
	var md []byte
	var matchRun int32
	qi, ri := 0, 0

	flushRun := func() {
		md = appendInt(md, matchRun)
		matchRun = 0
	}

	for _, op := range ops {
		switch op.Type {
		case OpMatch:
			for k := int32(0); k < op.Len; k++ {
				if query[qi] == ref[ri] {
					matchRun++
				} else {
					flushRun()
					md = append(md, baseLetter(ref[ri]))
					nm++
				}
				qi++
				ri++
			}
		case OpIns:
			nm += op.Len
			qi += int(op.Len)
		case OpDel:
			flushRun()
			md = append(md, '^')
			for k := int32(0); k < op.Len; k++ {
				md = append(md, baseLetter(ref[ri]))
				ri++
			}
			nm += op.Len
		}
	}
	flushRun()
	return nm, string(md)
}

func appendInt(b []byte, n int32) []byte {
	return strconv.AppendInt(b, int64(n), 10)
}

func baseLetter(b fmindex.Base) byte {
	switch b {
	case fmindex.BaseA:
		return 'A'
	case fmindex.BaseC:
		return 'C'
	case fmindex.BaseG:
		return 'G'
	case fmindex.BaseT:
		return 'T'
	default:
		return 'N'
	}
}

// addSoftClips prepends/appends the clipped read prefix/suffix as S ops,
// swapping sides for reverse-strand regions (spec.md §4.7).
func addSoftClips(ops []Op, isReverse bool, readLen, qb, qLen int32) []Op {
	qe := qb + qLen
	lead := qb
	trail := readLen - qe
	if isReverse {
		lead, trail = trail, lead
	}
	out := make([]Op, 0, len(ops)+2)
	if lead > 0 {
		out = append(out, Op{OpSoftClip, lead})
	}
	out = append(out, ops...)
	if trail > 0 {
		out = append(out, Op{OpSoftClip, trail})
	}
	return out
}

// OpSoftClip is the fourth CIGAR operation, only ever produced by
// addSoftClips at the ends of the final op list.
const OpSoftClip OpType = 3
