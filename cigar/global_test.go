package cigar

import (
	"testing"

	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bases(vals ...byte) []fmindex.Base {
	out := make([]fmindex.Base, len(vals))
	for i, v := range vals {
		out[i] = fmindex.Base(v)
	}
	return out
}

func TestGlobalAlignPerfectMatch(t *testing.T) {
	sc := config.DefaultScoring()
	q := bases(0, 1, 2, 3, 0, 1, 2, 3)
	r := GlobalAlign(q, q, 5, sc)
	require.Len(t, r.Ops, 1)
	assert.Equal(t, OpMatch, r.Ops[0].Type)
	assert.Equal(t, int32(len(q)), r.Ops[0].Len)
	assert.Equal(t, int32(len(q))*sc.MatchScore, r.Score)
}

func TestGlobalAlignSingleInsertion(t *testing.T) {
	sc := config.DefaultScoring()
	ref := bases(0, 1, 2, 3)
	query := bases(0, 1, 3, 2, 3) // extra base inserted after position 2
	r := GlobalAlign(query, ref, 5, sc)
	var totalQ, totalR int32
	for _, op := range r.Ops {
		switch op.Type {
		case OpMatch:
			totalQ += op.Len
			totalR += op.Len
		case OpIns:
			totalQ += op.Len
		case OpDel:
			totalR += op.Len
		}
	}
	assert.Equal(t, int32(len(query)), totalQ)
	assert.Equal(t, int32(len(ref)), totalR)
}

func TestGlobalAlignSingleDeletion(t *testing.T) {
	sc := config.DefaultScoring()
	ref := bases(0, 1, 2, 3, 0)
	query := bases(0, 1, 3, 0)
	r := GlobalAlign(query, ref, 5, sc)
	var totalQ, totalR int32
	for _, op := range r.Ops {
		switch op.Type {
		case OpMatch:
			totalQ += op.Len
			totalR += op.Len
		case OpIns:
			totalQ += op.Len
		case OpDel:
			totalR += op.Len
		}
	}
	assert.Equal(t, int32(len(query)), totalQ)
	assert.Equal(t, int32(len(ref)), totalR)
}

func TestGlobalAlignEmptyQueryIsAllDeletion(t *testing.T) {
	sc := config.DefaultScoring()
	r := GlobalAlign(nil, bases(0, 1, 2), 5, sc)
	require.Len(t, r.Ops, 1)
	assert.Equal(t, OpDel, r.Ops[0].Type)
	assert.Equal(t, int32(3), r.Ops[0].Len)
}
