package fmindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeStr(s string) []Base {
	out := make([]Base, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A':
			out[i] = BaseA
		case 'C':
			out[i] = BaseC
		case 'G':
			out[i] = BaseG
		case 'T':
			out[i] = BaseT
		default:
			out[i] = BaseN
		}
	}
	return out
}

func TestMockIndexContigsAndDecodePosition(t *testing.T) {
	idx := NewMockIndex([]string{"chr1", "chr2"}, [][]Base{encodeStr("ACGTACGT"), encodeStr("TTTTGGGG")})
	assert.Equal(t, int64(16), idx.GenomeLength())

	rid, pos := idx.DecodePosition(2)
	assert.Equal(t, int32(0), rid)
	assert.Equal(t, int64(2), pos)

	rid, pos = idx.DecodePosition(9)
	assert.Equal(t, int32(1), rid)
	assert.Equal(t, int64(1), pos)
}

func TestMockIndexGetReferenceCoversMirror(t *testing.T) {
	idx := NewMockIndex([]string{"chr1"}, [][]Base{encodeStr("ACGT")})
	fwd, n := idx.GetReference(0, 4)
	require.Equal(t, 4, n)
	assert.Equal(t, encodeStr("ACGT"), fwd)

	mirror, n := idx.GetReference(4, 4)
	require.Equal(t, 4, n)
	assert.Equal(t, encodeStr("ACGT"), mirror) // reverse complement of ACGT is ACGT
}

func TestMockIndexFindSMEMsLocatesExactMatch(t *testing.T) {
	genome := encodeStr("ACGTACGTTTTTACGTACGT")
	idx := NewMockIndex([]string{"chr1"}, [][]Base{genome})

	query := encodeStr("ACGTACGT")
	smems := idx.FindSMEMs(query)
	require.NotEmpty(t, smems)

	found := false
	for _, s := range smems {
		if s.QueryBegin == 0 && s.QueryEnd == int32(len(query)) {
			found = true
			assert.GreaterOrEqual(t, s.Interval.Count, int64(1))
		}
	}
	assert.True(t, found, "expected a full-length SMEM covering the whole query")
}

func TestMockIndexResolveSAIsIdentity(t *testing.T) {
	idx := NewMockIndex(nil, nil)
	assert.Equal(t, int64(42), idx.ResolveSA(42))
}
