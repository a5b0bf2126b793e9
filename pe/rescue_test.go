package pe

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
	if pos < 0 {
		pos = 0
	}
	if pos >= end {
		return nil, 0
	}
	return f.bases[pos:end], int(end - pos)
}

func TestRescueFindsMateInWindow(t *testing.T) {
	opts := config.DefaultOptions()
	genomeLength := int64(100000)

	refBases := make([]fmindex.Base, 2000)
	for i := range refBases {
		refBases[i] = fmindex.Base(i % 4)
	}
	ref := &fakeRef{bases: refBases}

	anchor := &region.AlnRegion{Rid: 0, Rb: 1000, Re: 1030}
	mateQuery := append([]fmindex.Base(nil), refBases[1300:1330]...)

	dist := &InsertSizeDistribution{PrimaryOrientation: FR}
	dist.Stats[FR] = OrientationStats{Mean: 300, Stddev: 20}

	rescued := Rescue(anchor, mateQuery, ref, dist, genomeLength, opts)
	require.NotNil(t, rescued)
	assert.GreaterOrEqual(t, rescued.Score, opts.MinSeedLength*opts.MatchScore)
}

func TestRescueReturnsNilWhenDistributionFailed(t *testing.T) {
	opts := config.DefaultOptions()
	ref := &fakeRef{bases: make([]fmindex.Base, 100)}
	anchor := &region.AlnRegion{Rid: 0, Rb: 10, Re: 40}
	dist := &InsertSizeDistribution{PrimaryOrientation: FR}
	dist.Stats[FR] = OrientationStats{Failed: true}
	rescued := Rescue(anchor, make([]fmindex.Base, 30), ref, dist, 100000, opts)
	assert.Nil(t, rescued)
}
