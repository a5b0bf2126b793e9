package pe

import (
	"math"

	"github.com/gralign/bwamem/region"
)

// Promote swaps a resolved pair's regions to index 0 of their respective
// lists, fixes up secondary back-references that pointed at the old index
// 0, and reports whether each mate's region moved, so a caller holding a
// parallel per-region slice can mirror the swap (spec.md §4.9 "Promotion and
// MAPQ adjustment"). It does not touch CIGARs.
func Promote(mate1, mate2 []*region.AlnRegion, decision *PairDecision) (moved1, moved2 bool) {
	moved1 = promoteOne(mate1, decision.Idx1)
	moved2 = promoteOne(mate2, decision.Idx2)
	return moved1, moved2
}

func promoteOne(regions []*region.AlnRegion, idx int) bool {
	if idx == 0 || idx >= len(regions) {
		return false
	}
	regions[0], regions[idx] = regions[idx], regions[0]
	for _, r := range regions {
		if r.Secondary.Kind != region.SecondaryTo {
			continue
		}
		switch int(r.Secondary.Index) {
		case idx:
			r.Secondary.Index = 0
		case 0:
			r.Secondary.Index = int32(idx)
		}
	}
	return true
}

// AdjustMAPQ implements the §4.9 MAPQ-adjustment formula: a paired-end score
// (q_pe) derived from the pair margin, then blended into each mate's
// single-end MAPQ when pairing is preferred.
func AdjustMAPQ(singleEndScore int32, decision *PairDecision, unpairedPenalty, matchScore int32, singleEndMAPQ int32) int32 {
	floor := decision.SecondBestScore
	if singleEndScore-unpairedPenalty > floor {
		floor = singleEndScore - unpairedPenalty
	}
	qPE := 6.02*float64(decision.Score-floor)/float64(matchScore) - 4.343*math.Log(float64(decision.NSub)+1)

	qSE := float64(singleEndMAPQ)
	boosted := qSE
	if decision.IsProperPair {
		ceiling := qSE + 40
		target := qPE
		if target > ceiling {
			target = ceiling
		}
		if target > boosted {
			boosted = target
		}
	}
	if boosted > 60 {
		boosted = 60
	}
	if boosted < 0 {
		boosted = 0
	}
	return int32(boosted + 0.5)
}
