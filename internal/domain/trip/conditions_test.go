package trip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTripConditions_Multiplier(t *testing.T) {
	rates := testRates()

	tests := []struct {
		name string
		c    TripConditions
		want float64
	}{
		{"clear", ClearConditions, 1},
		{"rain", TripConditions{Raining: true}, 1.2},
		{"night", TripConditions{Night: true}, 1.25},
		{"traffic", TripConditions{HeavyTraffic: true}, 1.15},
		{"rain and night", TripConditions{Raining: true, Night: true}, 1.2 * 1.25},
		{"all three", TripConditions{Raining: true, Night: true, HeavyTraffic: true}, 1.2 * 1.25 * 1.15},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.c.Multiplier(rates), 1e-9)
		})
	}
}

func TestIsNightHour(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
	}

	assert.False(t, IsNightHour(at(21, 59)))
	assert.True(t, IsNightHour(at(22, 0)))
	assert.True(t, IsNightHour(at(23, 30)))
	assert.True(t, IsNightHour(at(0, 0)))
	assert.True(t, IsNightHour(at(5, 59)))
	assert.False(t, IsNightHour(at(6, 0)))
	assert.False(t, IsNightHour(at(12, 0)))
}
