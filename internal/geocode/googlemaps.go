package geocode

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// Address component types consulted for a trip's start-location name, most
// specific first.
var localityTypes = []string{
	"locality",
	"administrative_area_level_2",
	"administrative_area_level_1",
}

// GoogleGeocoder resolves place names through the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a new GoogleGeocoder with the given API key.
func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

// ReverseGeocode returns the locality-level name for the coordinate, falling
// back through administrative areas. An empty string (no error) means the
// API returned nothing usable.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	req := &maps.GeocodingRequest{
		LatLng:     &maps.LatLng{Lat: lat, Lng: lng},
		ResultType: localityTypes,
	}
	results, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode failed: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}

	for _, wanted := range localityTypes {
		for _, result := range results {
			for _, component := range result.AddressComponents {
				for _, t := range component.Types {
					if t == wanted && component.LongName != "" {
						return component.LongName, nil
					}
				}
			}
		}
	}
	return results[0].FormattedAddress, nil
}
