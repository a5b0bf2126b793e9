package dedup

import (
	"testing"

	"github.com/gralign/bwamem/config"
	"github.com/gralign/bwamem/fmindex"
	"github.com/gralign/bwamem/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRef struct {
	bases []fmindex.Base
}

func (f *fakeRef) GetReference(pos int64, length int) ([]fmindex.Base, int) {
	end := pos + int64(length)
	if end > int64(len(f.bases)) {
		end = int64(len(f.bases))
	}
	if pos >= end {
		return nil, 0
	}
	out := f.bases[pos:end]
	return out, len(out)
}

func bases(vals ...byte) []fmindex.Base {
	out := make([]fmindex.Base, len(vals))
	for i, v := range vals {
		out[i] = fmindex.Base(v)
	}
	return out
}

func TestProcessDropsRedundantLowerScoring(t *testing.T) {
	opts := config.DefaultOptions()
	regions := []*region.AlnRegion{
		{Rid: 0, Qb: 0, Qe: 50, Rb: 0, Re: 50, Score: 50},
		{Rid: 0, Qb: 2, Qe: 48, Rb: 2, Re: 48, Score: 40},
	}
	query := make([]fmindex.Base, 100)
	ref := &fakeRef{bases: make([]fmindex.Base, 200)}
	out := Process(regions, query, ref, opts, 1)
	require.Len(t, out, 1)
	assert.Equal(t, int32(50), out[0].Score)
}

func TestProcessPatchesColinearRegions(t *testing.T) {
	opts := config.DefaultOptions()
	// Two exactly-colinear, abutting regions over an all-match sequence:
	// the patch merge should accept and leave one surviving region.
	seqLen := 40
	q := make([]fmindex.Base, seqLen)
	for i := range q {
		q[i] = fmindex.Base(i % 4)
	}
	ref := &fakeRef{bases: q}

	regions := []*region.AlnRegion{
		{Rid: 0, Qb: 0, Qe: 20, Rb: 0, Re: 20, Score: 20, SeedCov: 20},
		{Rid: 0, Qb: 20, Qe: 40, Rb: 20, Re: 40, Score: 20, SeedCov: 20},
	}
	out := Process(regions, q, ref, opts, 1)
	require.Len(t, out, 1)
	assert.Equal(t, int32(40), out[0].Score)
}

func TestProcessRemovesExactDuplicates(t *testing.T) {
	opts := config.DefaultOptions()
	regions := []*region.AlnRegion{
		{Rid: 0, Qb: 0, Qe: 10, Rb: 0, Re: 10, Score: 10},
		{Rid: 1, Qb: 0, Qe: 10, Rb: 0, Re: 10, Score: 10},
	}
	query := make([]fmindex.Base, 20)
	ref := &fakeRef{bases: make([]fmindex.Base, 20)}
	out := Process(regions, query, ref, opts, 1)
	assert.Len(t, out, 1)
}
