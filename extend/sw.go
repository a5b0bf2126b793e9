// Package extend implements the per-seed extension stage: tiered banded
// Smith-Waterman with z-dropoff, the clip-vs-extend decision, and region
// finalization (spec.md §4.4).
package extend

import (
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
)

// SWResult is the outcome of one banded local-extension SW run (spec.md
// §3 "SWResult").
type SWResult struct {
	Score            int32
	QueryEnd         int32 // local-best endpoint, 1-past
	TargetEnd        int32
	GlobalScore      int32 // best H at the last query column, any target row
	GlobalTargetEnd  int32 // target column reaching queryEnd, for "extend to end"
	MaxOff           int32 // max |i-j| observed near the max score
}

const negInf = int32(-1 << 28)

// cellWidth names the tier of the tiered SIMD dispatch (§4.4 "Tiered banded
// SW dispatch"). Every tier runs the identical recurrence below; what
// differs in a true SIMD implementation is the lane width and striping.
// Since this package has no assembly of its own, the tiers are expressed as
// the same Go recurrence under an explicit bit-width ceiling, so the
// observable contract (8-bit and 16-bit signal overflow of their ceiling by
// returning nil; scalar always returns a value; all three agree on
// non-overflowing inputs)
// is preserved exactly as specified, matching biosimd's generic/amd64 split
// where the generic path is behaviorally identical to, just slower than,
// the vectorized one.
type cellWidth int

const (
	width8 cellWidth = 8
	width16 cellWidth = 16
	widthScalar cellWidth = 32
)

func ceiling(w cellWidth) int32 {
	switch w {
	case width8:
		return 250 // spec.md §4.4: "overflow ... any intermediate score > 250"
	case width16:
		return 1<<15 - 1
	default:
		return 1<<30 - 1
	}
}

// bandedSW runs the shared banded local-SW recurrence. query and target are
// already oriented forward (callers reverse the prefix slices for left
// extension, per §4.4). h0 seeds H at (0,-1)/(−1,0) the way BWA-MEM seeds
// the extension with the anchoring seed's score; h0 == 0 means there is no
// anchoring seed and the run is a plain local SW within the band. Returns
// (nil, true) if an intermediate H would exceed the tier's ceiling.
func bandedSW(query, target []fmindex.Base, h0 int32, bandWidth int32, sc config.Scoring, zDrop int32, w cellWidth) (*SWResult, bool) {
	m, n := len(query), len(target)
	if m == 0 || n == 0 {
		return &SWResult{}, false
	}
	ceil := ceiling(w)

	// Rolling H/E rows; F is computed within the row scan.
	prevH := make([]int32, n+1)
	curH := make([]int32, n+1)
	E := make([]int32, n+1)

	prevH[0] = h0
	for j := 1; j <= n; j++ {
		prevH[j] = negInf
		E[j] = negInf
	}

	var best SWResult
	maxScore := h0
	maxI, maxJ := 0, 0
	globalScore := negInf
	globalTargetEnd := 0

	gapOpenDel, gapExtDel := sc.GapOpenPenaltyDeletion, sc.GapExtendPenaltyDeletion
	gapOpenIns, gapExtIns := sc.GapOpenPenalty, sc.GapExtendPenalty

	// prevLo/prevHi bound the columns prevH actually holds valid data for;
	// anything outside that range is treated as negInf regardless of what
	// the reused backing array still contains, since curH/prevH are rolling
	// buffers swapped in place rather than cleared every row.
	prevLo, prevHi := 0, 0
	if h0 == 0 {
		// No anchoring seed: a local alignment may start at any target
		// column, so row 0 is all zeros.
		for j := range prevH {
			prevH[j] = 0
		}
		prevHi = n
	}

	for i := 1; i <= m; i++ {
		lo := i - int(bandWidth)
		if lo < 0 {
			lo = 0
		}
		hi := i + int(bandWidth)
		if hi > n {
			hi = n
		}

		if lo == 0 {
			// True left edge of the matrix: the standard SW column-0 floor
			// of zero (a diagonal step out of it is taken only when h0 == 0,
			// per the restart rule below).
			curH[0] = 0
		} else {
			// Outside the band: treated as -infinity to block paths
			// entering the recurrence from beyond the computed diagonal.
			curH[lo] = negInf
		}
		E[lo] = negInf
		var f int32 = negInf
		rowMax := int32(0)
		rowMaxJ := 0

		atPrev := func(j int) int32 {
			if j < prevLo || j > prevHi {
				return negInf
			}
			return prevH[j]
		}

		for j := lo + 1; j <= hi; j++ {
			// E: gap-in-query (deletion, target/reference consumed only).
			eOpen := curH[j-1] - gapOpenDel - gapExtDel
			eExt := E[j-1] - gapExtDel
			e := eOpen
			if eExt > e {
				e = eExt
			}
			E[j] = e

			// F: gap-in-target (insertion, query consumed only).
			fOpen := atPrev(j) - gapOpenIns - gapExtIns
			fExt := f - gapExtIns
			fNew := fOpen
			if fExt > fNew {
				fNew = fExt
			}
			f = fNew

			// Diagonal restart prevention: when extending an anchoring seed
			// (h0 > 0), zero the diagonal contribution wherever the incoming
			// H was zero, so the band never launches a brand-new local
			// alignment mid-extension (spec.md §4.4). With h0 == 0 there is
			// no seed, and a zero cell is a valid local-alignment start.
			prevDiagH := atPrev(j - 1)
			diag := negInf
			if prevDiagH > 0 || (h0 == 0 && prevDiagH == 0) {
				diag = prevDiagH + matchScore(query[i-1], target[j-1], sc)
			}

			h := int32(0)
			if diag > h {
				h = diag
			}
			if E[j] > h {
				h = E[j]
			}
			if f > h {
				h = f
			}
			curH[j] = h

			if h > ceil {
				return nil, true
			}
			if h > rowMax {
				rowMax = h
				rowMaxJ = j
			}
		}

		if i == m {
			// Query-exhaustion row: "global score" in BWA-MEM's sense is the
			// best H anywhere in this row's band, not just at the target's
			// last column — the query, not the target, is what must be fully
			// consumed for "extend to end" (spec.md §4.4 gscore/gtle).
			for jj := lo; jj <= hi; jj++ {
				if curH[jj] > globalScore {
					globalScore = curH[jj]
					globalTargetEnd = jj
				}
			}
		}

		if rowMax > maxScore {
			maxScore = rowMax
			maxI, maxJ = i, rowMaxJ
		}

		off := rowMaxJ - i
		if off < 0 {
			off = -off
		}
		if off > best.MaxOff && rowMax >= maxScore-int32(bandWidth) {
			best.MaxOff = off
		}

		// Z-dropoff rule (shared, spec.md §4.4).
		if rowMax < maxScore {
			dI := int32(i - maxI)
			dJ := int32(rowMaxJ - maxJ)
			if dI > dJ {
				if maxScore-rowMax-(dI-dJ)*gapExtDel > zDrop {
					break
				}
			} else {
				if maxScore-rowMax-(dJ-dI)*gapExtIns > zDrop {
					break
				}
			}
		}
		if rowMax == 0 && h0 > 0 {
			// Early termination when the row-max drops to 0 while extending
			// a seed: extension can only restart from zero here, which the
			// diagonal-restart prevention forbids, so there's nothing left
			// to find.
			break
		}

		prevH, curH = curH, prevH
		prevLo, prevHi = lo, hi
	}

	best.Score = maxScore
	best.QueryEnd = int32(maxI)
	best.TargetEnd = int32(maxJ)
	best.GlobalScore = globalScore
	best.GlobalTargetEnd = int32(globalTargetEnd)
	return &best, false
}

func matchScore(a, b fmindex.Base, sc config.Scoring) int32 {
	if a == b && a < 4 {
		return sc.MatchScore
	}
	return -sc.MismatchPenalty
}
