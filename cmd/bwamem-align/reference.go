package main

import (
	"context"
	"fmt"

	"github.com/gralign/bwamem/encoding/fasta"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/seq"
	"github.com/grailbio/base/file"
)

// loadReference reads every sequence from the FASTA file at refPath and
// builds the in-memory collaborator the alignment core runs against,
// following encoding/bamprovider's "open via file.File, hand io.Reader to
// the format-specific parser" idiom so the path transparently supports
// file.Open's S3 backend.
func loadReference(ctx context.Context, refPath string) (*fmindex.MockIndex, error) {
	f, err := file.Open(ctx, refPath)
	if err != nil {
		return nil, fmt.Errorf("bwamem-align: open reference %s: %w", refPath, err)
	}
	defer f.Close(ctx)

	fa, err := fasta.New(f.Reader(ctx))
	if err != nil {
		return nil, fmt.Errorf("bwamem-align: parse reference %s: %w", refPath, err)
	}

	names := fa.SeqNames()
	sequences := make([][]fmindex.Base, len(names))
	for i, name := range names {
		length, err := fa.Len(name)
		if err != nil {
			return nil, fmt.Errorf("bwamem-align: length of %s: %w", name, err)
		}
		s, err := fa.Get(name, 0, length)
		if err != nil {
			return nil, fmt.Errorf("bwamem-align: sequence %s: %w", name, err)
		}
		sequences[i] = seq.EncodeASCII(s)
	}
	return fmindex.NewMockIndex(names, sequences), nil
}
