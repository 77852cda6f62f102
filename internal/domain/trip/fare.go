package trip

import "math"

// IncludedDistanceKm is the distance covered by the base fare; only travel
// beyond it is charged per kilometre.
const IncludedDistanceKm = 2.0

// FareParams holds the inputs for a fare computation.
type FareParams struct {
	DistanceMeters float64
	WaitingSeconds float64
	Multiplier     float64
	Rates          RateSnapshot
}

// FareCalculator computes a fare from the current live-trip figures. The
// computation must be pure: the engine re-runs it after every event that
// could change an input.
type FareCalculator interface {
	Calculate(params FareParams) float64
}

// MeteredFareCalculator implements the standard auto-rickshaw meter formula:
//
//	chargeableKm = max(0, distanceKm - 2.0)
//	raw          = base + chargeableKm*perKm + waitingMinutes*perWaitingMinute
//	fare         = max(minimumFare, raw*multiplier)
type MeteredFareCalculator struct{}

// NewMeteredFareCalculator creates a new MeteredFareCalculator.
func NewMeteredFareCalculator() *MeteredFareCalculator {
	return &MeteredFareCalculator{}
}

// Calculate computes the fare for the given parameters.
func (MeteredFareCalculator) Calculate(p FareParams) float64 {
	distanceKm := p.DistanceMeters / 1000
	chargeableKm := math.Max(0, distanceKm-IncludedDistanceKm)
	waitingMinutes := p.WaitingSeconds / 60
	raw := p.Rates.BaseFare +
		chargeableKm*p.Rates.PerDistanceRate +
		waitingMinutes*p.Rates.PerWaitingMinuteRate
	return math.Max(p.Rates.MinimumFare, raw*p.Multiplier)
}
