package pe

import (
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/region"
)

// Classify decodes two regions' BWT-space spans to forward-strand
// coordinates and derives their relative orientation and insert size
// (spec.md §3's FR/RF/FF/RR convention; §4.9 feeds this into estimation and
// pair scoring).
func Classify(r1, r2 *region.AlnRegion, genomeLength int64) (o Orientation, insertSize int64) {
	pos1, rev1 := fmindex.DecodeForwardCoordinate(r1.Rb, genomeLength, int32(r1.RSpan()))
	pos2, rev2 := fmindex.DecodeForwardCoordinate(r2.Rb, genomeLength, int32(r2.RSpan()))

	end1 := pos1 + r1.RSpan()
	end2 := pos2 + r2.RSpan()

	left := pos1
	leftEnd, rightEnd := end1, end2
	leftRev, rightRev := rev1, rev2
	if pos2 < pos1 {
		left = pos2
		leftEnd, rightEnd = end2, end1
		leftRev, rightRev = rev2, rev1
	}

	outerEnd := leftEnd
	if rightEnd > outerEnd {
		outerEnd = rightEnd
	}
	insertSize = outerEnd - left

	switch {
	case !leftRev && rightRev:
		o = FR
	case leftRev && !rightRev:
		o = RF
	default:
		if leftRev {
			o = RR
		} else {
			o = FF
		}
	}
	return o, insertSize
}
