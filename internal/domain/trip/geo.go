package trip

import "math"

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance in metres between two
// points specified in decimal degrees.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Region is a map framing rectangle: a center coordinate plus a span in
// degrees, padded so the route does not touch the viewport edges.
type Region struct {
	CenterLatitude  float64
	CenterLongitude float64
	LatitudeSpan    float64
	LongitudeSpan   float64
}

const regionSpanFactor = 1.6

// BoundingRegion returns the framing region for a recorded route, or false
// when the route is empty. padding is the minimum span in degrees.
func BoundingRegion(samples []LocationSample, padding float64) (Region, bool) {
	if len(samples) == 0 {
		return Region{}, false
	}

	minLat, maxLat := samples[0].Latitude, samples[0].Latitude
	minLng, maxLng := samples[0].Longitude, samples[0].Longitude
	for _, s := range samples[1:] {
		minLat = math.Min(minLat, s.Latitude)
		maxLat = math.Max(maxLat, s.Latitude)
		minLng = math.Min(minLng, s.Longitude)
		maxLng = math.Max(maxLng, s.Longitude)
	}

	return Region{
		CenterLatitude:  (minLat + maxLat) / 2,
		CenterLongitude: (minLng + maxLng) / 2,
		LatitudeSpan:    math.Max((maxLat-minLat)*regionSpanFactor, padding),
		LongitudeSpan:   math.Max((maxLng-minLng)*regionSpanFactor, padding),
	}, true
}
