package pe

import (
	"math"

	"github.com/gralign/bwamem/config"
)

// PairPenalty computes the insert-size-deviation penalty for one candidate
// pair (spec.md §4.9 "Pair scoring"): an erfc-based log-odds penalty,
// floored at zero.
func PairPenalty(insertSize int64, stat OrientationStats, matchScore int32) int32 {
	if stat.Stddev <= 0 {
		return 0
	}
	z := math.Abs(float64(insertSize)-stat.Mean) / stat.Stddev
	penalty := -math.Floor(0.721*math.Log(2*math.Erfc(z/math.Sqrt2))*float64(matchScore) + 0.499)
	if penalty < 0 {
		return 0
	}
	return int32(penalty)
}

// ScorePairs evaluates every (r1,r2) candidate combination sharing a
// reference contig and a proper insert size, returning the best decision
// and enough runner-up bookkeeping for MAPQ adjustment (spec.md §4.9
// "Pair scoring").
func ScorePairs(mate1, mate2 []Candidate, dist *InsertSizeDistribution, genomeLength int64, sc config.Scoring) (best *PairDecision, ok bool) {
	primary := dist.Stats[dist.PrimaryOrientation]
	if primary.Failed {
		return nil, false
	}

	type scored struct {
		decision PairDecision
	}
	var all []scored

	for _, c1 := range mate1 {
		for _, c2 := range mate2 {
			if c1.Region.Rid != c2.Region.Rid {
				continue
			}
			o, insertSize := Classify(c1.Region, c2.Region, genomeLength)
			if o != dist.PrimaryOrientation {
				continue
			}
			if insertSize < primary.ProperLow || insertSize > primary.ProperHigh {
				continue
			}
			penalty := PairPenalty(insertSize, primary, sc.MatchScore)
			pairScore := c1.Region.Score + c2.Region.Score - penalty
			all = append(all, scored{PairDecision{
				Idx1:         c1.Index,
				Idx2:         c2.Index,
				Score:        pairScore,
				IsProperPair: true,
				InsertSize:   insertSize,
				Orientation:  o,
			}})
		}
	}
	if len(all) == 0 {
		return nil, false
	}

	bestIdx := 0
	for i := 1; i < len(all); i++ {
		if all[i].decision.Score > all[bestIdx].decision.Score {
			bestIdx = i
		}
	}

	secondBest := int32(math.MinInt32)
	var nSub int32
	closeThreshold := sc.MatchScore + sc.MismatchPenalty
	for i, s := range all {
		if i == bestIdx {
			continue
		}
		if s.decision.Score > secondBest {
			secondBest = s.decision.Score
		}
	}
	for i, s := range all {
		if i == bestIdx {
			continue
		}
		if secondBest-s.decision.Score <= closeThreshold && s.decision.Score <= secondBest {
			nSub++
		}
	}

	result := all[bestIdx].decision
	if secondBest == int32(math.MinInt32) {
		secondBest = 0
	}
	result.SecondBestScore = secondBest
	result.NSub = nSub
	return &result, true
}
