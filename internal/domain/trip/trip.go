package trip

import (
	"time"

	"github.com/google/uuid"
)

// Trip is one complete metered journey. It is immutable once built by the
// engine except for Name (user-editable afterwards) and StartLocationName
// (filled in once by reverse geocoding); both are owned by the history
// service after creation.
type Trip struct {
	ID              uuid.UUID        `json:"id"`
	StartedAt       time.Time        `json:"startedAt"`
	EndedAt         time.Time        `json:"endedAt"`
	DistanceMeters  float64          `json:"distanceMeters"`
	DurationSeconds float64          `json:"durationSeconds"`
	Fare            float64          `json:"fare"`
	WaitingSeconds  float64          `json:"waitingDurationSeconds"`
	Samples         []LocationSample `json:"samples"`
	Conditions      TripConditions   `json:"conditions"`
	RateSnapshot    RateSnapshot     `json:"rateSnapshot"`
	Multiplier      float64          `json:"multiplier"`

	Name              *string `json:"name,omitempty"`
	StartLocationName *string `json:"startLocationName,omitempty"`
}
