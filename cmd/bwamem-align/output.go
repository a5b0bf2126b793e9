package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/gralign/bwamem/batch"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// bamSink implements batch.Sink by writing every record of each PairResult,
// in the order Orchestrator.Run hands them over (already input-order,
// per spec.md §5), to one bam.Writer. Write calls are serialized with a
// mutex since the orchestrator's drain goroutine is the only caller but a
// Sink contract shouldn't assume that of every implementation.
type bamSink struct {
	mu sync.Mutex
	w  *bam.Writer
}

func newBAMSink(ctx context.Context, outPath string, hdr *sam.Header, concurrency int) (*bamSink, func(context.Context) error, error) {
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("bwamem-align: create %s: %w", outPath, err)
	}
	w, err := bam.NewWriter(out.Writer(ctx), hdr, concurrency)
	if err != nil {
		return nil, nil, fmt.Errorf("bwamem-align: bam writer for %s: %w", outPath, err)
	}
	closer := func(ctx context.Context) error {
		if err := w.Close(); err != nil {
			return err
		}
		return out.Close(ctx)
	}
	return &bamSink{w: w}, closer, nil
}

func (s *bamSink) Write(res batch.PairResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range res.Records {
		if err := s.w.Write(rec); err != nil {
			return fmt.Errorf("bwamem-align: write record %s: %w", rec.Name, err)
		}
	}
	return nil
}
