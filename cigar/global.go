// Package cigar implements banded global alignment and CIGAR/NM/MD
// generation for a finalized region (spec.md §4.7), and is reused by dedup
// for patch-merge scoring (spec.md §4.5).
package cigar

import (
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
)

// OpType names one of the three CIGAR operations this package produces
// internally; soft clips are appended afterward by Generate.
type OpType byte

const (
	OpMatch OpType = iota // M: consumes one reference and one query base
	OpIns                 // I: consumes one query base only
	OpDel                 // D: consumes one reference base only
)

// Op is one run-length-encoded CIGAR operation.
type Op struct {
	Type OpType
	Len  int32
}

// GlobalResult is the outcome of one banded global-alignment run (spec.md
// §3 "GlobalResult").
type GlobalResult struct {
	Score int32
	Ops   []Op // query-order, already merged into runs
}

const negInf = int32(-1 << 28)

// backtrack bit layout (spec.md §4.7):
//
//	bit0  E-extends (this cell's E continues a deletion run)
//	bit1  F-extends (this cell's F continues an insertion run)
//	bit2  H came from E
//	bit3  H came from F
//
// absence of bits 2 and 3 means H came from the diagonal.
const (
	btEExtend = 1 << 0
	btFExtend = 1 << 1
	btFromE   = 1 << 2
	btFromF   = 1 << 3
)

// GlobalAlign runs banded Needleman-Wunsch with backpointer traceback. ref
// indexes rows, query indexes columns: a reference base consumed alone is a
// deletion (D), a query base consumed alone is an insertion (I).
func GlobalAlign(query, ref []fmindex.Base, bandWidth int32, sc config.Scoring) *GlobalResult {
	qn, rn := len(query), len(ref)
	if qn == 0 && rn == 0 {
		return &GlobalResult{}
	}
	if qn == 0 {
		return &GlobalResult{
			Score: -(sc.GapOpenPenaltyDeletion + sc.GapExtendPenaltyDeletion*int32(rn)),
			Ops:   []Op{{OpDel, int32(rn)}},
		}
	}
	if rn == 0 {
		return &GlobalResult{
			Score: -(sc.GapOpenPenalty + sc.GapExtendPenalty*int32(qn)),
			Ops:   []Op{{OpIns, int32(qn)}},
		}
	}

	w := int(bandWidth)
	// H/E/F rows indexed [i][j], i over ref 0..rn, j over query 0..qn.
	H := make([][]int32, rn+1)
	E := make([][]int32, rn+1)
	F := make([][]int32, rn+1)
	bt := make([][]byte, rn+1)
	for i := range H {
		H[i] = make([]int32, qn+1)
		E[i] = make([]int32, qn+1)
		F[i] = make([]int32, qn+1)
		bt[i] = make([]byte, qn+1)
		for j := range H[i] {
			H[i][j] = negInf
			E[i][j] = negInf
			F[i][j] = negInf
		}
	}
	H[0][0] = 0

	gapOpenDel, gapExtDel := sc.GapOpenPenaltyDeletion, sc.GapExtendPenaltyDeletion
	gapOpenIns, gapExtIns := sc.GapOpenPenalty, sc.GapExtendPenalty

	inBand := func(i, j int) bool {
		return j >= i-w && j <= i+w
	}

	for i := 0; i <= rn; i++ {
		lo := i - w
		if lo < 0 {
			lo = 0
		}
		hi := i + w
		if hi > qn {
			hi = qn
		}
		for j := lo; j <= hi; j++ {
			if i == 0 && j == 0 {
				continue
			}
			var b byte

			// E: deletion, consumes ref row only (i-1 -> i), same column j.
			if i > 0 && inBand(i-1, j) {
				eOpen := H[i-1][j] - gapOpenDel - gapExtDel
				eExt := E[i-1][j] - gapExtDel
				if eExt > eOpen {
					E[i][j] = eExt
					b |= btEExtend
				} else {
					E[i][j] = eOpen
				}
			}

			// F: insertion, consumes query column only (j-1 -> j), same row i.
			if j > 0 && inBand(i, j-1) {
				fOpen := H[i][j-1] - gapOpenIns - gapExtIns
				fExt := F[i][j-1] - gapExtIns
				if fExt > fOpen {
					F[i][j] = fExt
					b |= btFExtend
				} else {
					F[i][j] = fOpen
				}
			}

			h := negInf
			if i > 0 && j > 0 && inBand(i-1, j-1) {
				diag := H[i-1][j-1] + matchScore(ref[i-1], query[j-1], sc)
				h = diag
			}
			if E[i][j] > h {
				h = E[i][j]
				b = b&^btFromF | btFromE
			}
			if F[i][j] > h {
				h = F[i][j]
				b = b&^btFromE | btFromF
			}
			H[i][j] = h
			bt[i][j] = b
		}
	}

	ops := traceback(bt, rn, qn)
	return &GlobalResult{Score: H[rn][qn], Ops: mergeOps(ops)}
}

func traceback(bt [][]byte, i, j int) []Op {
	var ops []Op
	const stM, stE, stF = 0, 1, 2
	st := stM

	for i > 0 || j > 0 {
		switch st {
		case stM:
			if j == 0 {
				st = stE
				continue
			}
			if i == 0 {
				st = stF
				continue
			}
			b := bt[i][j]
			switch {
			case b&btFromF != 0:
				st = stF
			case b&btFromE != 0:
				st = stE
			default:
				ops = append(ops, Op{OpMatch, 1})
				i--
				j--
			}
		case stE:
			b := bt[i][j]
			ops = append(ops, Op{OpDel, 1})
			i--
			if b&btEExtend == 0 {
				st = stM
			}
		case stF:
			b := bt[i][j]
			ops = append(ops, Op{OpIns, 1})
			j--
			if b&btFExtend == 0 {
				st = stM
			}
		}
	}
	return ops
}

// mergeOps run-length-encodes a reverse-order op list into forward order.
func mergeOps(reversed []Op) []Op {
	if len(reversed) == 0 {
		return nil
	}
	var out []Op
	for i := len(reversed) - 1; i >= 0; i-- {
		op := reversed[i]
		if n := len(out); n > 0 && out[n-1].Type == op.Type {
			out[n-1].Len += op.Len
		} else {
			out = append(out, op)
		}
	}
	return out
}

func matchScore(a, b fmindex.Base, sc config.Scoring) int32 {
	if a == b && a < 4 {
		return sc.MatchScore
	}
	return -sc.MismatchPenalty
}
