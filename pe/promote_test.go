package pe

import (
	"testing"

	"github.com/gralign/bwamem/region"
	"github.com/stretchr/testify/assert"
)

func TestPromoteSwapsAndFixesSecondaryRefs(t *testing.T) {
	regions := []*region.AlnRegion{
		{Score: 100},
		{Score: 80, Secondary: region.SecondaryRef{Kind: region.SecondaryTo, Index: 0}},
		{Score: 70},
	}
	moved := promoteOne(regions, 2)
	assert.True(t, moved)
	assert.Equal(t, int32(70), regions[0].Score)
	assert.Equal(t, int32(100), regions[2].Score)
	// the region that pointed at the old index 0 must now point at 2
	assert.Equal(t, int32(2), regions[1].Secondary.Index)
}

func TestPromoteNoopWhenAlreadyFirst(t *testing.T) {
	regions := []*region.AlnRegion{{Score: 100}, {Score: 80}}
	moved := promoteOne(regions, 0)
	assert.False(t, moved)
}

func TestAdjustMAPQBoostsWhenPairPreferred(t *testing.T) {
	decision := &PairDecision{Score: 180, SecondBestScore: 100, NSub: 0, IsProperPair: true}
	q := AdjustMAPQ(60, decision, 17, 1, 20)
	assert.Greater(t, q, int32(20))
}
