package trip

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrip() Trip {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return Trip{
		ID:              uuid.New(),
		StartedAt:       start,
		EndedAt:         start.Add(10 * time.Minute),
		DistanceMeters:  3200,
		DurationSeconds: 600,
		Fare:            48,
		WaitingSeconds:  60,
		Samples: []LocationSample{
			NewLocationSample(12.9716, 77.5946, start, 5, 10),
			NewLocationSample(12.9730, 77.5950, start.Add(time.Minute), 5, 10),
		},
		Conditions:   TripConditions{Raining: true},
		RateSnapshot: testRates(),
		Multiplier:   1.2,
	}
}

func TestTrip_JSONRoundTrip(t *testing.T) {
	original := sampleTrip()
	name := "airport run"
	place := "Bengaluru"
	original.Name = &name
	original.StartLocationName = &place

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Trip
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestTrip_OptionalFieldsOmittedWhenAbsent(t *testing.T) {
	data, err := json.Marshal(sampleTrip())
	require.NoError(t, err)

	// Absent means omitted key, not null.
	assert.NotContains(t, string(data), `"name"`)
	assert.NotContains(t, string(data), `"startLocationName"`)

	var decoded Trip
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded.Name)
	assert.Nil(t, decoded.StartLocationName)
}

func TestTrip_LegacyRecordWithoutWaitingDecodes(t *testing.T) {
	data, err := json.Marshal(sampleTrip())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	delete(raw, "waitingDurationSeconds")
	legacy, err := json.Marshal(raw)
	require.NoError(t, err)

	var decoded Trip
	require.NoError(t, json.Unmarshal(legacy, &decoded))
	assert.Zero(t, decoded.WaitingSeconds)
}

func TestRateProfile_JSONRoundTrip(t *testing.T) {
	original := BengaluruDefaultRates()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded RateProfile
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
