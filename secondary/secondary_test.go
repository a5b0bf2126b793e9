package secondary

import (
	"testing"

	"github.com/gralign/bwamem/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignHashesIsDeterministic(t *testing.T) {
	regions := []*region.AlnRegion{{}, {}, {}}
	AssignHashes(regions, 42)
	again := []*region.AlnRegion{{}, {}, {}}
	AssignHashes(again, 42)
	for i := range regions {
		assert.Equal(t, regions[i].Hash, again[i].Hash)
	}
}

func TestMarkPlainMarksOverlappingLowerScore(t *testing.T) {
	regions := []*region.AlnRegion{
		{Qb: 0, Qe: 100, Score: 100},
		{Qb: 10, Qe: 90, Score: 50},
	}
	AssignHashes(regions, 1)
	MarkPlain(regions, 0.5)
	assert.True(t, regions[0].Secondary.IsPrimary())
	require.False(t, regions[1].Secondary.IsPrimary())
	assert.Equal(t, int32(0), regions[1].Secondary.Index)
}

func TestMarkPlainLeavesNonOverlappingAlone(t *testing.T) {
	regions := []*region.AlnRegion{
		{Qb: 0, Qe: 50, Score: 100},
		{Qb: 60, Qe: 110, Score: 50},
	}
	AssignHashes(regions, 1)
	MarkPlain(regions, 0.5)
	assert.True(t, regions[0].Secondary.IsPrimary())
	assert.True(t, regions[1].Secondary.IsPrimary())
}

func TestMarkALTAwarePrefersNonALTPrimary(t *testing.T) {
	regions := []*region.AlnRegion{
		{Qb: 0, Qe: 100, Score: 90, IsAlt: true},
		{Qb: 5, Qe: 95, Score: 85, IsAlt: false},
	}
	AssignHashes(regions, 7)
	MarkALTAware(regions, 0.5)
	// Phase 2 ranks non-ALT first regardless of score, so the non-ALT
	// region must end up primary even though it scored lower.
	assert.True(t, regions[1].Secondary.IsPrimary())
}
