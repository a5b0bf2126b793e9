package pipeline

import (
	"testing"

	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex is a minimal in-memory collaborator for one contig, built the
// way spec.md §6 describes: BWT space is [0,G) forward plus [G,2G) the
// reverse complement mirror, with ResolveSA the identity (the "suffix
// array" row IS the BWT-space position) and a single pre-baked SMEM so the
// test drives the real chain/extend/dedup/secondary/cigar/mapq stages
// without needing a real FM-index.
type fakeIndex struct {
	genome []fmindex.Base
	smem   fmindex.SMEM
}

func (f *fakeIndex) Contigs() []fmindex.Contig {
	return []fmindex.Contig{{Name: "chr1", Offset: 0, Length: int64(len(f.genome))}}
}
func (f *fakeIndex) GenomeLength() int64                { return int64(len(f.genome)) }
func (f *fakeIndex) SequenceID(pos int64) int32         { return 0 }
func (f *fakeIndex) DecodePosition(pos int64) (int32, int64) { return 0, pos }
func (f *fakeIndex) ResolveSA(pos int64) int64          { return pos }

func (f *fakeIndex) GetReference(pos int64, length int) ([]fmindex.Base, int) {
	g := int64(len(f.genome))
	if pos < g {
		end := pos + int64(length)
		if end > g {
			end = g
		}
		if pos >= end {
			return nil, 0
		}
		return f.genome[pos:end], int(end - pos)
	}
	off := pos - g
	end := off + int64(length)
	if end > g {
		end = g
	}
	if off >= end {
		return nil, 0
	}
	mirror := make([]fmindex.Base, end-off)
	for i := range mirror {
		mirror[i] = fmindex.Complement(f.genome[g-1-(off+int64(i))])
	}
	return mirror, len(mirror)
}

func (f *fakeIndex) FindSMEMs(query []fmindex.Base) []fmindex.SMEM {
	return []fmindex.SMEM{f.smem}
}

func (f *fakeIndex) FindSMEMsAtPosition(query []fmindex.Base, startPos int32, minSeedLen int32, minIntv int64) []fmindex.SMEM {
	return nil
}

func repeatBases(pattern []fmindex.Base, n int) []fmindex.Base {
	out := make([]fmindex.Base, 0, n)
	for len(out) < n {
		out = append(out, pattern...)
	}
	return out[:n]
}

func TestAlignSingleEndForwardPerfectMatch(t *testing.T) {
	pattern := []fmindex.Base{fmindex.BaseA, fmindex.BaseC, fmindex.BaseG, fmindex.BaseT}
	genome := repeatBases(pattern, 400)
	query := append([]fmindex.Base(nil), genome[100:140]...)

	idx := &fakeIndex{genome: genome, smem: fmindex.SMEM{
		QueryBegin: 0, QueryEnd: 40,
		Interval: fmindex.SAInterval{K: 100, L: 0, Count: 1},
	}}

	opts := config.DefaultOptions()
	opts.MinSeedLength = 10
	opts.MinOutputScore = 1

	index := &fmindex.Index{Metadata: idx, SAResolver: idx, ReferenceFetcher: idx, SMEMFinder: idx}

	alns := AlignSingleEnd(query, index, opts, 1)
	require.NotEmpty(t, alns)
	primary := alns[0]
	assert.False(t, primary.Reverse)
	assert.Equal(t, int64(100), primary.LocalPos)
	assert.Equal(t, int32(40), primary.Region.Score)
	require.NotNil(t, primary.Cigar)
	assert.Equal(t, int32(0), primary.Cigar.NM)
}

func TestAlignSingleEndReverseStrandMatch(t *testing.T) {
	pattern := []fmindex.Base{fmindex.BaseA, fmindex.BaseC, fmindex.BaseG, fmindex.BaseT}
	genome := repeatBases(pattern, 400)
	g := int64(len(genome))

	// Build the query as the reverse complement of genome[100:140], the
	// read BWA-MEM would align to the reverse strand.
	fwd := genome[100:140]
	query := make([]fmindex.Base, len(fwd))
	for i, b := range fwd {
		query[len(fwd)-1-i] = fmindex.Complement(b)
	}

	// BWT-space position for a reverse hit of length L starting at forward
	// position 100 is 2G-1-100-L+1 per fmindex.DecodeForwardCoordinate.
	bwtPos := 2*g - 1 - 100 - 40 + 1

	idx := &fakeIndex{genome: genome, smem: fmindex.SMEM{
		QueryBegin: 0, QueryEnd: 40,
		Interval: fmindex.SAInterval{K: bwtPos, L: 0, Count: 1},
	}}

	opts := config.DefaultOptions()
	opts.MinSeedLength = 10
	opts.MinOutputScore = 1

	index := &fmindex.Index{Metadata: idx, SAResolver: idx, ReferenceFetcher: idx, SMEMFinder: idx}

	alns := AlignSingleEnd(query, index, opts, 2)
	require.NotEmpty(t, alns)
	primary := alns[0]
	assert.True(t, primary.Reverse)
	assert.Equal(t, int64(100), primary.LocalPos)
}

func TestAlignSingleEndBelowMinOutputScoreIsUnmapped(t *testing.T) {
	pattern := []fmindex.Base{fmindex.BaseA, fmindex.BaseC, fmindex.BaseG, fmindex.BaseT}
	genome := repeatBases(pattern, 400)
	query := append([]fmindex.Base(nil), genome[100:110]...)

	idx := &fakeIndex{genome: genome, smem: fmindex.SMEM{
		QueryBegin: 0, QueryEnd: 10,
		Interval: fmindex.SAInterval{K: 100, L: 0, Count: 1},
	}}

	opts := config.DefaultOptions()
	opts.MinSeedLength = 10
	opts.MinOutputScore = 1000

	index := &fmindex.Index{Metadata: idx, SAResolver: idx, ReferenceFetcher: idx, SMEMFinder: idx}

	alns := AlignSingleEnd(query, index, opts, 3)
	assert.Empty(t, alns)
}
