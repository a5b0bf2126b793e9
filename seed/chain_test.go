package seed

import (
	"testing"

	"github.com/gralign/bwamem/fmindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChainsSingleChain(t *testing.T) {
	const genomeLength = 1000
	smems := []fmindex.SMEM{
		{QueryBegin: 0, QueryEnd: 20, Interval: fmindex.SAInterval{K: 100, Count: 1}},
		{QueryBegin: 25, QueryEnd: 45, Interval: fmindex.SAInterval{K: 200, Count: 1}},
	}
	resolveSA := func(pos int64) int64 {
		switch pos {
		case 100:
			return 10
		case 200:
			return 35
		}
		t.Fatalf("unexpected SA row %d", pos)
		return -1
	}
	sequenceID := func(pos int64) int32 { return 0 }

	chains := BuildChains(smems, resolveSA, genomeLength, sequenceID, 19, 500, 10000)
	require.Len(t, chains, 1)
	c := chains[0]
	assert.Equal(t, int32(0), c.Rid)
	require.Len(t, c.Seeds, 2)
	assert.Equal(t, int64(10), c.Seeds[0].RBeg)
	assert.Equal(t, int64(35), c.Seeds[1].RBeg)
	assert.Equal(t, int64(10), c.Pos)
	// Seeds sorted by rbeg.
	assert.True(t, c.Seeds[0].RBeg < c.Seeds[1].RBeg)
}

func TestBuildChainsSplitsOnLargeGap(t *testing.T) {
	const genomeLength = 100000
	smems := []fmindex.SMEM{
		{QueryBegin: 0, QueryEnd: 20, Interval: fmindex.SAInterval{K: 1, Count: 1}},
		{QueryBegin: 25, QueryEnd: 45, Interval: fmindex.SAInterval{K: 2, Count: 1}},
	}
	resolveSA := func(pos int64) int64 {
		if pos == 1 {
			return 10
		}
		return 50000 // far away: gap > maxChainGap
	}
	sequenceID := func(pos int64) int32 { return 0 }

	chains := BuildChains(smems, resolveSA, genomeLength, sequenceID, 19, 500, 1000)
	assert.Len(t, chains, 2)
}

func TestBuildChainsDropsShortSMEMs(t *testing.T) {
	smems := []fmindex.SMEM{
		{QueryBegin: 0, QueryEnd: 10, Interval: fmindex.SAInterval{K: 1, Count: 1}}, // len 10 < minSeedLength 19
	}
	resolveSA := func(pos int64) int64 { return 10 }
	sequenceID := func(pos int64) int32 { return 0 }
	chains := BuildChains(smems, resolveSA, 1000, sequenceID, 19, 500, 10000)
	assert.Empty(t, chains)
}

func TestReseedDedupsAndSorts(t *testing.T) {
	query := seqOf(50)
	initial := []fmindex.SMEM{
		{QueryBegin: 10, QueryEnd: 40, Interval: fmindex.SAInterval{K: 1, Count: 1}},
	}
	finder := fakeFinder{
		result: []fmindex.SMEM{
			{QueryBegin: 10, QueryEnd: 40, Interval: fmindex.SAInterval{K: 1, Count: 1}}, // duplicate
			{QueryBegin: 5, QueryEnd: 20, Interval: fmindex.SAInterval{K: 2, Count: 1}},
		},
	}
	out := Reseed(query, initial, finder, 19, 9, 10)
	require.Len(t, out, 2)
	assert.Equal(t, int32(5), out[0].QueryBegin)
	assert.Equal(t, int32(10), out[1].QueryBegin)
}

type fakeFinder struct {
	result []fmindex.SMEM
}

func (f fakeFinder) FindSMEMs(query []fmindex.Base) []fmindex.SMEM { return nil }
func (f fakeFinder) FindSMEMsAtPosition(query []fmindex.Base, startPos int32, minSeedLen int32, minIntv int64) []fmindex.SMEM {
	return f.result
}

func seqOf(n int) []fmindex.Base {
	out := make([]fmindex.Base, n)
	for i := range out {
		out[i] = fmindex.Base(i % 4)
	}
	return out
}
