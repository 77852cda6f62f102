package geocode

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGeocoder struct {
	calls int32
	name  string
	err   error
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.name, f.err
}

func newCachedForTest(t *testing.T, upstream Geocoder) *CachedGeocoder {
	t.Helper()
	cache, err := NewCache(DefaultCacheCapacity)
	require.NoError(t, err)
	return NewCachedGeocoder(upstream, cache, zap.NewNop())
}

func TestCachedGeocoder_HitsUpstreamOncePerCell(t *testing.T) {
	upstream := &fakeGeocoder{name: "Bengaluru"}
	cached := newCachedForTest(t, upstream)

	name, err := cached.ReverseGeocode(context.Background(), 12.9716, 77.5946)
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", name)

	// Nearby coordinate shares the grid cell: served from cache.
	name, err = cached.ReverseGeocode(context.Background(), 12.9718, 77.5947)
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&upstream.calls))
}

func TestCachedGeocoder_FailuresAreRetryable(t *testing.T) {
	upstream := &fakeGeocoder{err: errors.New("timeout")}
	cached := newCachedForTest(t, upstream)

	_, err := cached.ReverseGeocode(context.Background(), 12.9716, 77.5946)
	require.Error(t, err)

	_, err = cached.ReverseGeocode(context.Background(), 12.9716, 77.5946)
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&upstream.calls), "errors must not be cached")
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	upstream := &fakeGeocoder{name: ""}
	cached := newCachedForTest(t, upstream)

	name, err := cached.ReverseGeocode(context.Background(), 12.9716, 77.5946)
	require.NoError(t, err)
	assert.Empty(t, name)

	_, _ = cached.ReverseGeocode(context.Background(), 12.9716, 77.5946)
	assert.Equal(t, int32(2), atomic.LoadInt32(&upstream.calls))
}

func TestCachedGeocoder_CancelledLookupLeavesCacheUntouched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	upstream := geocoderFunc(func(context.Context, float64, float64) (string, error) {
		cancel() // cancelled while the lookup is in flight
		return "Bengaluru", nil
	})
	cached := newCachedForTest(t, upstream)

	_, err := cached.ReverseGeocode(ctx, 12.9716, 77.5946)
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := cached.cache.Get(12.9716, 77.5946)
	assert.False(t, ok)
}

type geocoderFunc func(ctx context.Context, lat, lng float64) (string, error)

func (f geocoderFunc) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	return f(ctx, lat, lng)
}
