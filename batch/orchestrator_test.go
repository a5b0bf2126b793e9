package batch

import (
	"sync"
	"testing"

	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/record"
	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	genome []fmindex.Base
	smem   fmindex.SMEM
}

func (f *fakeIndex) Contigs() []fmindex.Contig {
	return []fmindex.Contig{{Name: "chr1", Offset: 0, Length: int64(len(f.genome))}}
}
func (f *fakeIndex) GenomeLength() int64                     { return int64(len(f.genome)) }
func (f *fakeIndex) SequenceID(pos int64) int32               { return 0 }
func (f *fakeIndex) DecodePosition(pos int64) (int32, int64) { return 0, pos }
func (f *fakeIndex) ResolveSA(pos int64) int64                { return pos }

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

type collectingSink struct {
	mu      sync.Mutex
	results []PairResult
}

func (s *collectingSink) Write(res PairResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	return nil
}

func newTestOrchestrator(t *testing.T, genome []fmindex.Base, smem fmindex.SMEM, numThreads int) *Orchestrator {
	fi := &fakeIndex{genome: genome, smem: smem}
	idx := &fmindex.Index{Metadata: fi, SAResolver: fi, ReferenceFetcher: fi, SMEMFinder: fi}

	opts := config.DefaultOptions()
	opts.MinSeedLength = 10
	opts.MinOutputScore = 1
	opts.NumThreads = numThreads

	builder, err := record.NewBuilder(fi, opts)
	require.NoError(t, err)

	return NewOrchestrator(idx, opts, builder, nil)
}

func TestRunSingleEndProducesOneRecordPerRead(t *testing.T) {
	pattern := []fmindex.Base{fmindex.BaseA, fmindex.BaseC, fmindex.BaseG, fmindex.BaseT}
	genome := repeatBases(pattern, 400)
	query := append([]fmindex.Base(nil), genome[100:140]...)

	orch := newTestOrchestrator(t, genome, fmindex.SMEM{
		QueryBegin: 0, QueryEnd: 40,
		Interval: fmindex.SAInterval{K: 100, L: 0, Count: 1},
	}, 2)

	input := []ReadPair{
		{BatchIndex: 0, Mate1: record.ReadInput{Name: "r0", Seq: query, Qual: make([]byte, 40)}},
		{BatchIndex: 1, Mate1: record.ReadInput{Name: "r1", Seq: query, Qual: make([]byte, 40)}},
	}

	sink := &collectingSink{}
	err := orch.Run(input, sink)
	require.NoError(t, err)
	require.Len(t, sink.results, 2)
	assert.Equal(t, 0, sink.results[0].BatchIndex)
	assert.Equal(t, 1, sink.results[1].BatchIndex)
	require.Len(t, sink.results[0].Records, 1)
	assert.Equal(t, sam.Flags(0), sink.results[0].Records[0].Flags&sam.Unmapped)
}

func TestRunUnmappedReadEmitsOneUnmappedRecord(t *testing.T) {
	pattern := []fmindex.Base{fmindex.BaseA, fmindex.BaseC, fmindex.BaseG, fmindex.BaseT}
	genome := repeatBases(pattern, 400)
	query := append([]fmindex.Base(nil), genome[100:110]...)

	orch := newTestOrchestrator(t, genome, fmindex.SMEM{
		QueryBegin: 0, QueryEnd: 10,
		Interval: fmindex.SAInterval{K: 100, L: 0, Count: 1},
	}, 1)
	orch.opts.MinOutputScore = 1000

	input := []ReadPair{{BatchIndex: 0, Mate1: record.ReadInput{Name: "r0", Seq: query}}}
	sink := &collectingSink{}
	require.NoError(t, orch.Run(input, sink))
	require.Len(t, sink.results, 1)
	require.Len(t, sink.results[0].Records, 1)
	assert.NotEqual(t, sam.Flags(0), sink.results[0].Records[0].Flags&sam.Unmapped)
}

func TestSubBatchBufferReleasesOnceBothMatesArrive(t *testing.T) {
	buf := NewSubBatchBuffer()
	_, ok := buf.Add(3, 1, record.ReadInput{Name: "r/1"})
	assert.False(t, ok)
	assert.Equal(t, 1, buf.Pending())

	pair, ok := buf.Add(3, 2, record.ReadInput{Name: "r/2"})
	require.True(t, ok)
	assert.Equal(t, 3, pair.BatchIndex)
	assert.Equal(t, "r/1", pair.Mate1.Name)
	require.NotNil(t, pair.Mate2)
	assert.Equal(t, "r/2", pair.Mate2.Name)
	assert.Equal(t, 0, buf.Pending())
}

func TestSubBatchBufferDrainReturnsStragglers(t *testing.T) {
	buf := NewSubBatchBuffer()
	buf.Add(5, 1, record.ReadInput{Name: "lonely"})
	stragglers := buf.Drain()
	require.Len(t, stragglers, 1)
	assert.Equal(t, 5, stragglers[0].BatchIndex)
	assert.Nil(t, stragglers[0].Mate2)
	assert.Equal(t, 0, buf.Pending())
}
