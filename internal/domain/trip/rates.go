package trip

import "fmt"

// RateProfile holds the user-editable fare configuration for the meter.
// All fields are non-negative; multipliers of 1.0 mean "no surcharge".
type RateProfile struct {
	BaseFare             float64 `json:"baseFare"`
	PerDistanceRate      float64 `json:"perDistanceRate"`
	PerWaitingMinuteRate float64 `json:"perWaitingMinuteRate"`
	MinimumFare          float64 `json:"minimumFare"`
	RainMultiplier       float64 `json:"rainMultiplier"`
	NightMultiplier      float64 `json:"nightMultiplier"`
	TrafficMultiplier    float64 `json:"trafficMultiplier"`
}

// BengaluruDefaultRates returns the stock auto-rickshaw rate card used when no
// saved profile exists.
func BengaluruDefaultRates() RateProfile {
	return RateProfile{
		BaseFare:             30,
		PerDistanceRate:      15,
		PerWaitingMinuteRate: 1.5,
		MinimumFare:          30,
		RainMultiplier:       1.2,
		NightMultiplier:      1.25,
		TrafficMultiplier:    1.15,
	}
}

// Validate checks the profile invariants: every field must be non-negative.
func (p RateProfile) Validate() error {
	fields := map[string]float64{
		"baseFare":             p.BaseFare,
		"perDistanceRate":      p.PerDistanceRate,
		"perWaitingMinuteRate": p.PerWaitingMinuteRate,
		"minimumFare":          p.MinimumFare,
		"rainMultiplier":       p.RainMultiplier,
		"nightMultiplier":      p.NightMultiplier,
		"trafficMultiplier":    p.TrafficMultiplier,
	}
	for name, v := range fields {
		if v < 0 {
			return fmt.Errorf("rate field %s must be non-negative, got %v", name, v)
		}
	}
	return nil
}

// RateSnapshot is an immutable copy of a RateProfile frozen at trip start.
// A finished trip's fare basis never changes even if the profile is edited
// mid-trip or afterwards.
type RateSnapshot struct {
	BaseFare             float64 `json:"baseFare"`
	PerDistanceRate      float64 `json:"perDistanceRate"`
	PerWaitingMinuteRate float64 `json:"perWaitingMinuteRate"`
	MinimumFare          float64 `json:"minimumFare"`
	RainMultiplier       float64 `json:"rainMultiplier"`
	NightMultiplier      float64 `json:"nightMultiplier"`
	TrafficMultiplier    float64 `json:"trafficMultiplier"`
}

// SnapshotOf freezes the given profile into a RateSnapshot.
func SnapshotOf(p RateProfile) RateSnapshot {
	return RateSnapshot{
		BaseFare:             p.BaseFare,
		PerDistanceRate:      p.PerDistanceRate,
		PerWaitingMinuteRate: p.PerWaitingMinuteRate,
		MinimumFare:          p.MinimumFare,
		RainMultiplier:       p.RainMultiplier,
		NightMultiplier:      p.NightMultiplier,
		TrafficMultiplier:    p.TrafficMultiplier,
	}
}
