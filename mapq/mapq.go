// Package mapq computes single-end mapping quality (spec.md §4.8).
package mapq

import (
	"math"

	"github.com/gralign/bwamem/region"
)

// Compute assigns MAPQ to every region in a read's result set. readLen is
// the full (unclipped) read length and matchScore is opts.MatchScore.
func Compute(regions []*region.AlnRegion, readLen int32, matchScore int32) {
	if len(regions) == 0 {
		return
	}
	if len(regions) == 1 && regions[0].Score == readLen*matchScore {
		regions[0].MAPQ = 60
		return
	}
	for _, r := range regions {
		if !r.Secondary.IsPrimary() {
			r.MAPQ = 0
			continue
		}
		r.MAPQ = computePrimary(r, readLen, matchScore)
	}
}

func computePrimary(r *region.AlnRegion, readLen, matchScore int32) int32 {
	full := readLen * matchScore
	identity := float64(r.Score) / float64(full)

	sub := r.Sub
	scoreDiff := r.Score - sub

	var raw float64
	if scoreDiff != 0 {
		raw = 250 * (1 - float64(sub)/float64(r.Score)) * identity *
			math.Log2(float64(scoreDiff)+1) / math.Log2(float64(full)+1)
	}

	q := raw
	if q > 60 {
		q = 60
	}
	if r.SubN > 0 {
		q -= 4.343 * math.Log(1+float64(r.SubN))
	}
	if q < 0 {
		q = 0
	}
	return int32(q + 0.5)
}
