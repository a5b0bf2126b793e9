package pe

import (
	"math"
	"sort"
)

const minOrientationSamples = 25

// EstimateInsertSize implements spec.md §4.9 "Insert-size estimation":
// per-orientation Q25/Q75/IQR outlier filtering, mean/stddev over the
// filtered set, and argmax-count primary-orientation selection.
func EstimateInsertSize(samples []Sample) *InsertSizeDistribution {
	buckets := [numOrientations][]int64{}
	for _, s := range samples {
		buckets[s.Orientation] = append(buckets[s.Orientation], s.AbsInsertSize)
	}

	dist := &InsertSizeDistribution{}
	bestCount := int32(-1)
	for o := Orientation(0); o < numOrientations; o++ {
		stat := estimateOne(buckets[o])
		dist.Stats[o] = stat
		if stat.Count > bestCount {
			bestCount = stat.Count
			dist.PrimaryOrientation = o
		}
	}
	return dist
}

func estimateOne(sizes []int64) OrientationStats {
	stat := OrientationStats{Count: int32(len(sizes))}
	if len(sizes) < minOrientationSamples {
		stat.Failed = true
		return stat
	}

	sorted := append([]int64(nil), sizes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	q25 := percentile(sorted, 0.25)
	q75 := percentile(sorted, 0.75)
	iqr := q75 - q25

	lowBound := q25 - 2*iqr
	highBound := q75 + 2*iqr

	var filtered []int64
	for _, v := range sorted {
		if float64(v) >= lowBound && float64(v) <= highBound {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		filtered = sorted
	}

	var sum float64
	for _, v := range filtered {
		sum += float64(v)
	}
	mean := sum / float64(len(filtered))

	var sqSum float64
	for _, v := range filtered {
		d := float64(v) - mean
		sqSum += d * d
	}
	stddev := 0.0
	if len(filtered) > 1 {
		stddev = math.Sqrt(sqSum / float64(len(filtered)-1))
	}

	stat.Mean = mean
	stat.Stddev = stddev
	stat.ProperLow = int64(lowBound)
	if stat.ProperLow < 0 {
		stat.ProperLow = 0
	}
	stat.ProperHigh = int64(highBound)
	return stat
}

func percentile(sorted []int64, p float64) float64 {
	if len(sorted) == 1 {
		return float64(sorted[0])
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}
