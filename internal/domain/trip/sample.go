package trip

import (
	"time"

	"github.com/google/uuid"
)

// LocationSample is a single reading from the positioning provider.
// HorizontalAccuracyMeters below zero marks an invalid fix; the engine
// rejects such samples rather than repairing them.
type LocationSample struct {
	ID                       uuid.UUID `json:"id"`
	Latitude                 float64   `json:"latitude"`
	Longitude                float64   `json:"longitude"`
	Timestamp                time.Time `json:"timestamp"`
	SpeedMetersPerSecond     float64   `json:"speedMetersPerSecond"`
	HorizontalAccuracyMeters float64   `json:"horizontalAccuracyMeters"`
}

// NewLocationSample builds a sample with a fresh identity. Negative provider
// speeds (the "speed unknown" convention) are clamped to zero.
func NewLocationSample(lat, lng float64, at time.Time, speedMPS, accuracyMeters float64) LocationSample {
	if speedMPS < 0 {
		speedMPS = 0
	}
	return LocationSample{
		ID:                       uuid.New(),
		Latitude:                 lat,
		Longitude:                lng,
		Timestamp:                at,
		SpeedMetersPerSecond:     speedMPS,
		HorizontalAccuracyMeters: accuracyMeters,
	}
}
