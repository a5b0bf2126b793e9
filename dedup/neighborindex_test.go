package dedup

import (
	"testing"

	"github.com/gralign/bwamem/region"
	"github.com/stretchr/testify/assert"
)

func TestNeighborIndexWalksBackwardWithinRid(t *testing.T) {
	r0 := &region.AlnRegion{Rid: 0, Rb: 10, Re: 20}
	r1 := &region.AlnRegion{Rid: 0, Rb: 30, Re: 40}
	r2 := &region.AlnRegion{Rid: 1, Rb: 5, Re: 15}
	sorted := []*region.AlnRegion{r0, r1, r2}

	idx := buildNeighborIndex(sorted)

	assert.Same(t, r0, idx.predecessorOf(r1))
	assert.Nil(t, idx.predecessorOf(r0))
	assert.Nil(t, idx.predecessorOf(r2))
}

func TestNeighborIndexTieBreaksBySeqOnEqualRb(t *testing.T) {
	r0 := &region.AlnRegion{Rid: 0, Rb: 10, Re: 18}
	r1 := &region.AlnRegion{Rid: 0, Rb: 10, Re: 22}
	sorted := []*region.AlnRegion{r0, r1}

	idx := buildNeighborIndex(sorted)

	assert.Same(t, r0, idx.predecessorOf(r1))
}
