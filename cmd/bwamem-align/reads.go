package main

import (
	"context"
	"fmt"

	"github.com/gralign/bwamem/batch"
	"github.com/gralign/bwamem/encoding/fastq"
	"github.com/gralign/bwamem/record"
	"github.com/gralign/bwamem/seq"
	"github.com/grailbio/base/file"
)

// decodePhred converts FASTQ's Phred+33 ASCII quality string into the raw
// Phred-scaled bytes sam.Record.Qual expects.
func decodePhred(s string) []byte {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = s[i] - 33
	}
	return out
}

// splitNameComment strips the FASTQ "@" sigil and separates the read name
// from any trailing whitespace-delimited comment (e.g. "/1 BX:Z:...").
func splitNameComment(id string) (name, comment string) {
	if len(id) > 0 && id[0] == '@' {
		id = id[1:]
	}
	for i := 0; i < len(id); i++ {
		if id[i] == ' ' || id[i] == '\t' {
			return id[:i], id[i+1:]
		}
	}
	return id, ""
}

func toReadInput(r fastq.Read) record.ReadInput {
	name, comment := splitNameComment(r.ID)
	return record.ReadInput{
		Name:    name,
		Comment: comment,
		Seq:     seq.EncodeASCII(r.Seq),
		Qual:    decodePhred(r.Qual),
	}
}

// readPairedFASTQ opens r1Path/r2Path and returns every ReadPair in file
// order, tagging BatchIndex with each pair's position in the stream. The two
// files are assumed mate-synchronized, the common case bwa itself expects,
// so no SubBatchBuffer reordering is needed here.
func readPairedFASTQ(ctx context.Context, r1Path, r2Path string) ([]batch.ReadPair, error) {
	f1, err := file.Open(ctx, r1Path)
	if err != nil {
		return nil, fmt.Errorf("bwamem-align: open %s: %w", r1Path, err)
	}
	defer f1.Close(ctx)
	f2, err := file.Open(ctx, r2Path)
	if err != nil {
		return nil, fmt.Errorf("bwamem-align: open %s: %w", r2Path, err)
	}
	defer f2.Close(ctx)

	scanner := fastq.NewPairScanner(f1.Reader(ctx), f2.Reader(ctx), fastq.ID|fastq.Seq|fastq.Qual)
	var pairs []batch.ReadPair
	var r1, r2 fastq.Read
	for scanner.Scan(&r1, &r2) {
		mate1 := toReadInput(r1)
		mate2 := toReadInput(r2)
		pairs = append(pairs, batch.ReadPair{BatchIndex: len(pairs), Mate1: mate1, Mate2: &mate2})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bwamem-align: read %s/%s: %w", r1Path, r2Path, err)
	}
	return pairs, nil
}

// readSingleEndFASTQ opens path and returns every read as an unpaired
// ReadPair, in file order.
func readSingleEndFASTQ(ctx context.Context, path string) ([]batch.ReadPair, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("bwamem-align: open %s: %w", path, err)
	}
	defer f.Close(ctx)

	scanner := fastq.NewScanner(f.Reader(ctx), fastq.ID|fastq.Seq|fastq.Qual)
	var pairs []batch.ReadPair
	var r fastq.Read
	for scanner.Scan(&r) {
		pairs = append(pairs, batch.ReadPair{BatchIndex: len(pairs), Mate1: toReadInput(r)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bwamem-align: read %s: %w", path, err)
	}
	return pairs, nil
}

// readInterleavedFASTQ reads consecutive records from one FASTQ stream, two
// per template (mate1 immediately followed by mate2), pairing them through a
// batch.SubBatchBuffer keyed by template index the way a sharded/concurrent
// producer would hand mates to the orchestrator out of strict adjacency
// (spec.md §5's streaming pair path).
func readInterleavedFASTQ(ctx context.Context, path string) ([]batch.ReadPair, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("bwamem-align: open %s: %w", path, err)
	}
	defer f.Close(ctx)

	scanner := fastq.NewScanner(f.Reader(ctx), fastq.ID|fastq.Seq|fastq.Qual)
	buf := batch.NewSubBatchBuffer()
	var pairs []batch.ReadPair
	var r fastq.Read
	recordIndex := 0
	for scanner.Scan(&r) {
		read := toReadInput(r)
		mateNum, name := splitMateSuffix(read.Name)
		read.Name = name
		templateIndex := recordIndex / 2
		if pair, ok := buf.Add(templateIndex, mateNum, read); ok {
			pairs = append(pairs, pair)
		}
		recordIndex++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bwamem-align: read %s: %w", path, err)
	}
	pairs = append(pairs, buf.Drain()...)
	return pairs, nil
}

// splitMateSuffix strips a trailing "/1" or "/2" mate marker, the
// conventional interleaved-FASTQ naming, and reports which mate slot (1 or
// 2) the read belongs to; unmarked reads are treated as mate 1.
func splitMateSuffix(id string) (mateNum int, name string) {
	n := len(id)
	if n >= 2 && id[n-2] == '/' && (id[n-1] == '1' || id[n-1] == '2') {
		if id[n-1] == '2' {
			return 2, id[:n-2]
		}
		return 1, id[:n-2]
	}
	return 1, id
}
