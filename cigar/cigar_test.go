package cigar

import (
	"testing"

	"github.com/gralign/bwamem/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFastPathOnPerfectMatch(t *testing.T) {
	sc := config.DefaultScoring()
	q := bases(0, 1, 2, 3, 0, 1, 2, 3)
	r := Generate(q, q, int32(len(q))*sc.MatchScore, false, int32(len(q)), 0, 5, sc)
	require.Len(t, r.Ops, 1)
	assert.Equal(t, OpMatch, r.Ops[0].Type)
	assert.Equal(t, int32(0), r.NM)
	assert.Equal(t, "8", r.MD)
}

func TestGenerateEmitsSoftClipsForwardStrand(t *testing.T) {
	sc := config.DefaultScoring()
	q := bases(0, 1, 2, 3)
	readLen := int32(10)
	qb := int32(3)
	r := Generate(q, q, int32(len(q))*sc.MatchScore, false, readLen, qb, 5, sc)
	require.True(t, len(r.Ops) >= 2)
	assert.Equal(t, OpSoftClip, r.Ops[0].Type)
	assert.Equal(t, qb, r.Ops[0].Len)
	last := r.Ops[len(r.Ops)-1]
	assert.Equal(t, OpSoftClip, last.Type)
	assert.Equal(t, readLen-qb-int32(len(q)), last.Len)
}

func TestGenerateEmitsSoftClipsReverseStrandSwapped(t *testing.T) {
	sc := config.DefaultScoring()
	q := bases(0, 1, 2, 3)
	readLen := int32(10)
	qb := int32(3)
	r := Generate(q, q, int32(len(q))*sc.MatchScore, true, readLen, qb, 5, sc)
	// Reverse strand: the lead/trail clip sizes swap sides relative to the
	// forward-strand case above.
	assert.Equal(t, readLen-qb-int32(len(q)), r.Ops[0].Len)
	assert.Equal(t, qb, r.Ops[len(r.Ops)-1].Len)
}

func TestGenerateMDReportsMismatch(t *testing.T) {
	sc := config.DefaultScoring()
	ref := bases(0, 1, 2, 3)
	query := bases(0, 1, 1, 3) // mismatch at index 2 (ref=G(2), query=C(1))
	r := Generate(query, ref, int32(len(query))*sc.MatchScore-sc.MismatchPenalty-sc.MatchScore, false, int32(len(query)), 0, 5, sc)
	assert.Equal(t, int32(1), r.NM)
	assert.Equal(t, "2G1", r.MD)
}
