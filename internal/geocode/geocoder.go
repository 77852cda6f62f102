// Package geocode resolves human-readable place names for coordinates and
// bounds the upstream lookups with a small quantized-key LRU cache.
package geocode

import "context"

// Geocoder resolves a locality-level place name for a coordinate. An empty
// name with a nil error means the provider had no usable result; callers
// treat both failure modes as "leave the name unset".
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}
