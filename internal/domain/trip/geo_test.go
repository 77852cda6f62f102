package trip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMeters(t *testing.T) {
	// One hundredth of a degree of latitude is ~1112 m anywhere on the globe.
	d := HaversineMeters(12.97, 77.59, 12.98, 77.59)
	assert.InDelta(t, 1111.95, d, 1)

	assert.Zero(t, HaversineMeters(12.97, 77.59, 12.97, 77.59))

	// Symmetric.
	assert.InDelta(t,
		HaversineMeters(12.97, 77.59, 12.98, 77.60),
		HaversineMeters(12.98, 77.60, 12.97, 77.59),
		1e-9,
	)
}

func TestBoundingRegion(t *testing.T) {
	now := time.Now()
	samples := []LocationSample{
		NewLocationSample(12.90, 77.50, now, 0, 10),
		NewLocationSample(13.00, 77.60, now, 0, 10),
	}

	region, ok := BoundingRegion(samples, 0.005)
	require.True(t, ok)
	assert.InDelta(t, 12.95, region.CenterLatitude, 1e-9)
	assert.InDelta(t, 77.55, region.CenterLongitude, 1e-9)
	assert.InDelta(t, 0.1*1.6, region.LatitudeSpan, 1e-9)
	assert.InDelta(t, 0.1*1.6, region.LongitudeSpan, 1e-9)

	// A single point still frames with the minimum padding.
	region, ok = BoundingRegion(samples[:1], 0.005)
	require.True(t, ok)
	assert.InDelta(t, 0.005, region.LatitudeSpan, 1e-9)

	_, ok = BoundingRegion(nil, 0.005)
	assert.False(t, ok)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0m 0s", FormatElapsed(0))
	assert.Equal(t, "0m 0s", FormatElapsed(-time.Second))
	assert.Equal(t, "4m 5s", FormatElapsed(4*time.Minute+5*time.Second))
	assert.Equal(t, "1h 2m 3s", FormatElapsed(time.Hour+2*time.Minute+3*time.Second))
}
