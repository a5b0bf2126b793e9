// bwamem-align is the command-line driver for the alignment core: it wires
// flags into a config.Options, loads a FASTA reference into an in-memory
// fmindex.Index collaborator, reads FASTQ input, estimates the insert-size
// distribution from a leading sample of pairs, and runs every read through
// batch.Orchestrator, writing results to a BAM file in input order.
//
// Usage:
//
//	bwamem-align -ref ref.fa -r1 reads_1.fq -r2 reads_2.fq -out out.bam
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gralign/bwamem/batch"
	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/record"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/vlog"
)

func main() {
	refPath := flag.String("ref", "", "Path to the reference FASTA file (required).")
	r1Path := flag.String("r1", "", "Path to the R1 (or single-end) FASTQ file (required).")
	r2Path := flag.String("r2", "", "Path to the R2 FASTQ file. If empty, -r1 is treated as single-end or, with -interleaved, as an interleaved paired stream.")
	interleaved := flag.Bool("interleaved", false, "Treat -r1 as one interleaved paired FASTQ stream (mates share a name with a /1, /2 suffix).")
	outPath := flag.String("out", "", "Path to the output BAM file (required).")

	minSeedLength := flag.Int("min-seed-len", int(config.DefaultOptions().MinSeedLength), "Minimum seed length.")
	bandWidth := flag.Int("band-width", int(config.DefaultOptions().BandWidth), "Band width for banded alignment.")
	minOutputScore := flag.Int("min-score", int(config.DefaultOptions().MinOutputScore), "Minimum output score.")
	numThreads := flag.Int("t", config.DefaultOptions().NumThreads, "Number of worker threads.")
	noMulti := flag.Bool("no-multi", false, "Mark shorter split alignments secondary instead of supplementary.")
	softClip := flag.Bool("soft-clip", false, "Use soft clips instead of hard clips for supplementary alignments.")
	noRescue := flag.Bool("no-rescue", false, "Disable mate rescue.")
	noPairing := flag.Bool("no-pairing", false, "Disable paired-end resolution entirely.")
	allHits := flag.Bool("all", false, "Emit every alignment region as its own record instead of folding it into XA.")
	insertSizeSampleSize := flag.Int("insert-size-sample", 10000, "Number of leading pairs used to estimate the insert-size distribution.")

	flag.Parse()

	if *refPath == "" || *r1Path == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "bwamem-align: -ref, -r1, and -out are required")
		flag.Usage()
		os.Exit(2)
	}

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	opts := config.DefaultOptions()
	opts.MinSeedLength = int32(*minSeedLength)
	opts.BandWidth = int32(*bandWidth)
	opts.MinOutputScore = int32(*minOutputScore)
	opts.NumThreads = *numThreads
	if *noMulti {
		opts.Flags |= config.NoMulti
	}
	if *softClip {
		opts.Flags |= config.SoftClip
	}
	if *noRescue {
		opts.Flags |= config.NoRescue
	}
	if *noPairing {
		opts.Flags |= config.NoPairing
	}
	if *allHits {
		opts.Flags |= config.All
	}
	if err := opts.Validate(); err != nil {
		log.Panic(err)
	}

	vlog.Infof("bwamem-align: loading reference %s", *refPath)
	mock, err := loadReference(ctx, *refPath)
	if err != nil {
		log.Panic(err)
	}
	idx := &fmindex.Index{Metadata: mock, SAResolver: mock, ReferenceFetcher: mock, SMEMFinder: mock}

	var pairs []batch.ReadPair
	switch {
	case *r2Path != "":
		pairs, err = readPairedFASTQ(ctx, *r1Path, *r2Path)
	case *interleaved:
		pairs, err = readInterleavedFASTQ(ctx, *r1Path)
	default:
		pairs, err = readSingleEndFASTQ(ctx, *r1Path)
	}
	if err != nil {
		log.Panic(err)
	}
	vlog.Infof("bwamem-align: loaded %d read pairs", len(pairs))

	builder, err := record.NewBuilder(mock, opts)
	if err != nil {
		log.Panic(err)
	}

	orch := batch.NewOrchestrator(idx, opts, builder, nil)
	if !opts.Flags.Has(config.NoPairing) {
		if dist := estimateInsertSize(pairs, idx, opts, *insertSizeSampleSize); dist != nil {
			orch.SetInsertSizeDistribution(dist)
		} else {
			vlog.Infof("bwamem-align: insert-size estimation found no concordant pairs; running unpaired")
		}
	}

	sink, closeSink, err := newBAMSink(ctx, *outPath, builder.Header(), opts.NumThreads)
	if err != nil {
		log.Panic(err)
	}

	if err := orch.Run(pairs, sink); err != nil {
		log.Panic(err)
	}
	if err := closeSink(ctx); err != nil {
		log.Panic(err)
	}
	vlog.Infof("bwamem-align: done")
}
