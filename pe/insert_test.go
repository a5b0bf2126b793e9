package pe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateInsertSizeBelowThresholdFails(t *testing.T) {
	var samples []Sample
	for i := 0; i < 10; i++ {
		samples = append(samples, Sample{Orientation: FR, AbsInsertSize: 300})
	}
	dist := EstimateInsertSize(samples)
	assert.True(t, dist.Stats[FR].Failed)
}

func TestEstimateInsertSizePicksPrimaryByCount(t *testing.T) {
	var samples []Sample
	for i := 0; i < 30; i++ {
		samples = append(samples, Sample{Orientation: FR, AbsInsertSize: int64(290 + i%20)})
	}
	for i := 0; i < 26; i++ {
		samples = append(samples, Sample{Orientation: RF, AbsInsertSize: int64(500)})
	}
	dist := EstimateInsertSize(samples)
	require.False(t, dist.Stats[FR].Failed)
	assert.Equal(t, FR, dist.PrimaryOrientation)
	assert.InDelta(t, 299.5, dist.Stats[FR].Mean, 5)
}

func TestEstimateInsertSizeFiltersOutliers(t *testing.T) {
	var samples []Sample
	for i := 0; i < 30; i++ {
		samples = append(samples, Sample{Orientation: FR, AbsInsertSize: 300})
	}
	samples = append(samples, Sample{Orientation: FR, AbsInsertSize: 100000})
	dist := EstimateInsertSize(samples)
	assert.InDelta(t, 300, dist.Stats[FR].Mean, 1)
}
