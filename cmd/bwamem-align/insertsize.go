package main

import (
	"github.com/gralign/bwamem/batch"
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/pe"
	"github.com/gralign/bwamem/pipeline"
)

// estimateInsertSize aligns each mate of the first sampleSize pairs
// independently (no pairing resolution yet) and feeds the top hit of every
// pair where both mates produced at least one alignment to
// pe.EstimateInsertSize. No MAPQ or uniqueness filter is applied, and pairs of
// every orientation are sampled. Returns nil only if no pair yielded a
// sample; otherwise pe.EstimateInsertSize marks each orientation with too few
// samples as Failed. A nil result is the "insert-size estimation failure"
// spec.md §7 says must not fail the run.
func estimateInsertSize(pairs []batch.ReadPair, idx *fmindex.Index, opts *config.Options, sampleSize int) *pe.InsertSizeDistribution {
	n := sampleSize
	if n > len(pairs) {
		n = len(pairs)
	}

	var samples []pe.Sample
	for i := 0; i < n; i++ {
		p := pairs[i]
		if p.Mate2 == nil {
			continue
		}
		alns1 := pipeline.AlignSingleEnd(p.Mate1.Seq, idx, opts, uint64(i)<<1)
		alns2 := pipeline.AlignSingleEnd(p.Mate2.Seq, idx, opts, uint64(i)<<1|1)
		if len(alns1) == 0 || len(alns2) == 0 {
			continue
		}
		orientation, insertSize := pe.Classify(alns1[0].Region, alns2[0].Region, idx.GenomeLength())
		samples = append(samples, pe.Sample{Orientation: orientation, AbsInsertSize: insertSize})
	}
	if len(samples) == 0 {
		return nil
	}
	return pe.EstimateInsertSize(samples)
}
