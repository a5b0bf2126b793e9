// Package batch implements the per-batch orchestrator of spec.md §5: a
// bounded worker pool dispatches per-read/per-pair alignment units, output
// is drained through an index-keyed array in strict input order, and an
// optional GPU collaborator can be handed extension-task batches over the
// ExtensionTask/ExtensionResult wire protocol (wire.go).
//
// Grounded on markduplicates.generatePAM's channel-of-work + WaitGroup +
// errors.Once worker pool (mark_duplicates.go), and on bampair/shard_info.go's
// per-template keyed bookkeeping, generalized from BAM-shard accounting to
// per-read-pair ordering and mate-arrival tracking (subbatch.go).
package batch

import (
	"sync"

	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/pe"
	"github.com/gralign/bwamem/pipeline"
	"github.com/gralign/bwamem/record"
	"github.com/gralign/bwamem/region"
	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// ReadPair is one template's mates as they reach the orchestrator. Mate2 is
// nil for an unpaired (single-end) read.
type ReadPair struct {
	BatchIndex int // input order; the Sink is written in this order
	Mate1      record.ReadInput
	Mate2      *record.ReadInput
}

// PairResult is the fully-formed SAM record set for one template.
type PairResult struct {
	BatchIndex int
	Records    []*sam.Record
}

// Sink receives finalized results strictly in input order (spec.md §5
// "Output is written in input order").
type Sink interface {
	Write(res PairResult) error
}

// Orchestrator owns the shared, read-only collaborators (FM-index, options,
// record builder) and drives one batch of reads through the alignment core
// with a bounded worker pool.
type Orchestrator struct {
	idx     *fmindex.Index
	opts    *config.Options
	builder *record.Builder
	gpu     GPUDispatcher
	dist    *pe.InsertSizeDistribution
}

// NewOrchestrator constructs an Orchestrator. gpu may be nil, disabling the
// optional extension-task submission seam. The insert-size distribution is
// set separately via SetInsertSizeDistribution once the consumer has built
// it from the first ready sub-batch (spec.md §5 "Insert-size distribution:
// built once ... then shared read-only").
func NewOrchestrator(idx *fmindex.Index, opts *config.Options, builder *record.Builder, gpu GPUDispatcher) *Orchestrator {
	return &Orchestrator{idx: idx, opts: opts, builder: builder, gpu: gpu}
}

// SetInsertSizeDistribution installs the once-built distribution pairing
// uses for the remainder of the run. Passing nil disables pairing (reads
// are then aligned and emitted as unpaired).
func (o *Orchestrator) SetInsertSizeDistribution(dist *pe.InsertSizeDistribution) {
	o.dist = dist
}

func readID(name string, mateNum int) uint64 {
	return farm.Hash64WithSeed([]byte(name), uint64(mateNum))
}

// Run dispatches every pair in input across opts.NumThreads workers and
// writes results to sink in input order, draining a monotonic cursor as
// soon as each contiguous prefix of results becomes ready (spec.md §5). It
// returns the first error encountered by either a worker or the sink; per
// spec.md §7, the whole batch aborts on a sink error and any still-pending
// results are discarded.
func (o *Orchestrator) Run(input []ReadPair, sink Sink) error {
	n := len(input)
	vlog.Infof("batch: starting %d workers for %d read pairs", o.opts.NumThreads, n)

	results := make([]*PairResult, n)
	ready := make([]bool, n)
	var mu sync.Mutex
	cond := sync.NewCond(&mu)

	work := make(chan int, n)
	for i := range input {
		work <- i
	}
	close(work)

	var once errors.Once
	var wg sync.WaitGroup
	numWorkers := o.opts.NumThreads
	if numWorkers < 1 {
		numWorkers = 1
	}
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				res, err := o.alignPair(input[i])
				mu.Lock()
				if err != nil {
					once.Set(err)
				} else {
					results[i] = res
				}
				ready[i] = true
				cond.Broadcast()
				mu.Unlock()
			}
		}()
	}

	drainErr := make(chan error, 1)
	go func() {
		cursor := 0
		mu.Lock()
		defer mu.Unlock()
		for cursor < n {
			for cursor < n && !ready[cursor] {
				cond.Wait()
			}
			if cursor >= n {
				break
			}
			res := results[cursor]
			cursor++
			if res == nil {
				continue
			}
			mu.Unlock()
			err := sink.Write(*res)
			mu.Lock()
			if err != nil {
				drainErr <- err
				return
			}
		}
		drainErr <- nil
	}()

	wg.Wait()
	mu.Lock()
	cond.Broadcast()
	mu.Unlock()

	sinkErr := <-drainErr
	vlog.Infof("batch: finished %d read pairs", n)
	if sinkErr != nil {
		log.Error.Print(sinkErr)
		return sinkErr
	}
	return once.Err()
}

func (o *Orchestrator) alignPair(pair ReadPair) (*PairResult, error) {
	id1 := readID(pair.Mate1.Name, 1)
	alns1 := pipeline.AlignSingleEnd(pair.Mate1.Seq, o.idx, o.opts, id1)

	if pair.Mate2 == nil {
		recs, err := o.buildMateRecords(pair.Mate1, alns1, record.MateInfo{}, false, true, false, nil)
		if err != nil {
			return nil, err
		}
		return &PairResult{BatchIndex: pair.BatchIndex, Records: recs}, nil
	}

	id2 := readID(pair.Mate2.Name, 2)
	alns2 := pipeline.AlignSingleEnd(pair.Mate2.Seq, o.idx, o.opts, id2)

	decision := resolvePair(pair.Mate1.Seq, pair.Mate2.Seq, &alns1, &alns2, o.dist, o.idx, o.opts)

	var pairScoreRatio *float64
	properPair := false
	if decision != nil {
		properPair = decision.IsProperPair
		if decision.Score > 0 {
			ratio := float64(decision.SecondBestScore) / float64(decision.Score)
			pairScoreRatio = &ratio
		}
		if len(alns1) > 0 {
			alns1[0].Region.MAPQ = pe.AdjustMAPQ(alns1[0].Region.Score, decision, o.opts.UnpairedPenalty, o.opts.MatchScore, alns1[0].Region.MAPQ)
		}
		if len(alns2) > 0 {
			alns2[0].Region.MAPQ = pe.AdjustMAPQ(alns2[0].Region.Score, decision, o.opts.UnpairedPenalty, o.opts.MatchScore, alns2[0].Region.MAPQ)
		}
	}

	mate1Info := mateInfoOf(alns2)
	mate2Info := mateInfoOf(alns1)

	recs1, err := o.buildMateRecords(pair.Mate1, alns1, mate1Info, true, true, properPair, pairScoreRatio)
	if err != nil {
		return nil, err
	}
	recs2, err := o.buildMateRecords(*pair.Mate2, alns2, mate2Info, true, false, properPair, pairScoreRatio)
	if err != nil {
		return nil, err
	}

	o.submitGPUAudit(id1, pair.Mate1, id2, pair.Mate2)

	return &PairResult{BatchIndex: pair.BatchIndex, Records: append(recs1, recs2...)}, nil
}

// mateInfoOf builds the MateInfo another mate's record needs from this
// mate's primary alignment (or reports unmapped).
func mateInfoOf(alns []pipeline.Alignment) record.MateInfo {
	if len(alns) == 0 {
		return record.MateInfo{}
	}
	primary := alns[0]
	return record.MateInfo{
		Mapped:  true,
		Rid:     primary.Region.Rid,
		Pos:     primary.LocalPos,
		Reverse: primary.Reverse,
		Cigar:   primary.Cigar,
	}
}

// buildMateRecords turns one mate's surviving alignments into SAM records:
// the primary record, plus either supplementary records (distinct,
// non-overlapping split alignments — region.Primary-kind survivors beyond
// the first) or secondary records for genuine multi-mapping alternates
// (region.SecondaryTo/SecondaryToALT survivors), folded into an XA tag
// unless opts.Flags has All set (spec.md §6, §7). Only supplementary records
// use hard clips, and only when opts.Flags lacks SoftClip.
func (o *Orchestrator) buildMateRecords(read record.ReadInput, alns []pipeline.Alignment, mate record.MateInfo, paired, read1, properPair bool, pairScoreRatio *float64) ([]*sam.Record, error) {
	if len(alns) == 0 {
		ctx := record.Context{Paired: paired, Read1: read1, Mate: mate}
		rec, err := o.builder.BuildUnmapped(read, ctx)
		if err != nil {
			return nil, err
		}
		return []*sam.Record{rec}, nil
	}

	primary := alns[0]
	hardClip := !o.opts.Flags.Has(config.SoftClip)

	var xaHits []record.XAHit
	var records []*sam.Record

	for _, aln := range alns[1:] {
		isSplit := aln.Region.Secondary.Kind == region.Primary
		switch {
		case isSplit:
			ctx := record.Context{
				Paired: paired, Read1: read1, Reverse: aln.Reverse, Mate: mate,
				Secondary:     o.opts.Flags.Has(config.NoMulti),
				Supplementary: !o.opts.Flags.Has(config.NoMulti),
			}
			rec, err := o.builder.BuildMapped(read, aln.Region, aln.Cigar, aln.LocalPos, hardClip && ctx.Supplementary, ctx)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		case o.opts.Flags.Has(config.All):
			ctx := record.Context{Paired: paired, Read1: read1, Reverse: aln.Reverse, Secondary: true, Mate: mate}
			rec, err := o.builder.BuildMapped(read, aln.Region, aln.Cigar, aln.LocalPos, false, ctx)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		default:
			xaHits = append(xaHits, record.XAHit{
				Contig:  o.contigName(aln.Region.Rid),
				Pos:     aln.LocalPos,
				Reverse: aln.Reverse,
				Cigar:   aln.Cigar,
				NM:      aln.Cigar.NM,
			})
		}
	}

	ctx := record.Context{
		Paired: paired, Read1: read1, Reverse: primary.Reverse, ProperPair: properPair,
		Mate: mate, PairScoreRatio: pairScoreRatio, XAHits: xaHits,
	}
	rec, err := o.builder.BuildMapped(read, primary.Region, primary.Cigar, primary.LocalPos, false, ctx)
	if err != nil {
		return nil, err
	}
	return append([]*sam.Record{rec}, records...), nil
}

func (o *Orchestrator) contigName(rid int32) string {
	contigs := o.idx.Contigs()
	if int(rid) < 0 || int(rid) >= len(contigs) {
		return ""
	}
	return contigs[rid].Name
}

// submitGPUAudit hands the already-CPU-aligned pair's read payload to the
// optional GPU collaborator as an ExtensionBatch, purely as a submission/
// replay seam (spec.md §5): nothing downstream consumes the result yet, the
// same lag a real accelerator integration has between "wired" and "load-
// bearing". Errors are logged, never propagated — the GPU path is advisory.
func (o *Orchestrator) submitGPUAudit(id1 uint64, read1 record.ReadInput, id2 uint64, read2 *record.ReadInput) {
	if o.gpu == nil {
		return
	}
	batch := &ExtensionBatch{Tasks: []*ExtensionTask{
		{ReadId: id1, Query: []byte(read1.Seq)},
	}}
	if read2 != nil {
		batch.Tasks = append(batch.Tasks, &ExtensionTask{ReadId: id2, Query: []byte(read2.Seq)})
	}
	results, err := o.gpu.Submit(batch)
	if err != nil {
		log.Error.Printf("batch: GPU dispatch failed: %v", err)
		return
	}
	if len(results) != len(batch.Tasks) {
		log.Error.Printf("batch: GPU returned %d results for %d tasks", len(results), len(batch.Tasks))
	}
}
