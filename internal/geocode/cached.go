package geocode

import (
	"context"

	"go.uber.org/zap"
)

// CachedGeocoder fronts an upstream Geocoder with the bounded cache. Only
// successful non-empty resolutions are cached; failures and empty results
// stay retryable.
type CachedGeocoder struct {
	upstream Geocoder
	cache    *Cache
	logger   *zap.Logger
}

// NewCachedGeocoder creates a new CachedGeocoder.
func NewCachedGeocoder(upstream Geocoder, cache *Cache, logger *zap.Logger) *CachedGeocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{upstream: upstream, cache: cache, logger: logger}
}

// ReverseGeocode resolves from the cache first and consults the upstream
// provider on a miss. Cancellation mid-flight leaves the cache untouched.
func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if name, ok := c.cache.Get(lat, lng); ok {
		return name, nil
	}

	name, err := c.upstream.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if name != "" {
		c.cache.Insert(lat, lng, name)
		c.logger.Debug("cached place name",
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
			zap.String("name", name),
		)
	}
	return name, nil
}
