package trip

import "time"

// Night hours run from 22:00 (inclusive) to 06:00 (exclusive) local time.
const (
	nightStartHour = 22
	nightEndHour   = 6
)

// TripConditions holds the three independent surcharge conditions. Raining
// and HeavyTraffic are driver-toggled; Night is derived from the wall clock
// and recomputed by the engine on every tick.
type TripConditions struct {
	Raining      bool `json:"raining"`
	Night        bool `json:"night"`
	HeavyTraffic bool `json:"heavyTraffic"`
}

// ClearConditions is the all-off condition set.
var ClearConditions = TripConditions{}

// Multiplier returns the combined surcharge factor: the product of each
// active condition's configured rate, 1.0 when nothing is active.
func (c TripConditions) Multiplier(rates RateSnapshot) float64 {
	m := 1.0
	if c.Raining {
		m *= rates.RainMultiplier
	}
	if c.Night {
		m *= rates.NightMultiplier
	}
	if c.HeavyTraffic {
		m *= rates.TrafficMultiplier
	}
	return m
}

// IsNightHour reports whether the given instant falls inside the night
// surcharge window.
func IsNightHour(t time.Time) bool {
	h := t.Hour()
	return h >= nightStartHour || h < nightEndHour
}
