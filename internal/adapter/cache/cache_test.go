package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks for cache tests ---

type countingWeather struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (m *countingWeather) FetchWeather(_ context.Context, lat, _ float64) (domain.WeatherSnapshot, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return domain.WeatherSnapshot{}, m.err
	}
	return domain.WeatherSnapshot{Current: &domain.CurrentConditions{TemperatureC: domain.Float(lat)}}, nil
}

type countingFires struct {
	calls int
	fires []domain.FireDetection
	err   error
}

func (m *countingFires) FetchFires(context.Context) ([]domain.FireDetection, error) {
	m.calls++
	return m.fires, m.err
}

type countingAlerts struct {
	calls  int
	alerts []domain.DisasterAlert
}

func (m *countingAlerts) FetchAlerts(context.Context) ([]domain.DisasterAlert, error) {
	m.calls++
	return m.alerts, nil
}

func testOptions(clock clockwork.Clock, ttl time.Duration) Options {
	return Options{TTL: ttl, MaxEntries: 10, Clock: clock, Metrics: observability.NewMetricsForTesting()}
}

// --- decorator tests ---

func TestWeatherProvider_CacheHit(t *testing.T) {
	inner := &countingWeather{}
	opts := testOptions(clockwork.NewFakeClock(), 5*time.Minute)
	cached := NewWeatherProvider(inner, opts)

	s1, err := cached.FetchWeather(context.Background(), 21.1458, 79.0882)
	require.NoError(t, err)
	s2, err := cached.FetchWeather(context.Background(), 21.1458, 79.0882)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, int32(1), inner.calls.Load(), "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.CacheLookups.WithLabelValues("openmeteo", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.CacheLookups.WithLabelValues("openmeteo", "miss")))
}

func TestWeatherProvider_KeyedByCoordinate(t *testing.T) {
	inner := &countingWeather{}
	cached := NewWeatherProvider(inner, testOptions(clockwork.NewFakeClock(), 5*time.Minute))

	_, _ = cached.FetchWeather(context.Background(), 21.1458, 79.0882)
	_, _ = cached.FetchWeather(context.Background(), 21.14581, 79.08819) // same 4-decimal key
	_, _ = cached.FetchWeather(context.Background(), 28.6139, 77.2090)

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestWeatherProvider_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingWeather{}
	cached := NewWeatherProvider(inner, testOptions(clock, 5*time.Minute))

	_, _ = cached.FetchWeather(context.Background(), 1, 2)
	clock.Advance(4*time.Minute + 59*time.Second)
	_, _ = cached.FetchWeather(context.Background(), 1, 2)
	assert.Equal(t, int32(1), inner.calls.Load())

	clock.Advance(time.Second)
	_, _ = cached.FetchWeather(context.Background(), 1, 2)
	assert.Equal(t, int32(2), inner.calls.Load(), "entry expires at exactly TTL")
}

func TestWeatherProvider_ErrorsAreNotCached(t *testing.T) {
	inner := &countingWeather{err: errors.New("upstream down")}
	cached := NewWeatherProvider(inner, testOptions(clockwork.NewFakeClock(), 5*time.Minute))

	_, err := cached.FetchWeather(context.Background(), 1, 2)
	require.Error(t, err)
	_, err = cached.FetchWeather(context.Background(), 1, 2)
	require.Error(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestWeatherProvider_ConcurrentMissesShareOneCall(t *testing.T) {
	inner := &countingWeather{delay: 50 * time.Millisecond}
	cached := NewWeatherProvider(inner, testOptions(clockwork.NewRealClock(), time.Minute))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cached.FetchWeather(context.Background(), 5, 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
}

// gatedWeather blocks until released and fails if its own context was canceled.
type gatedWeather struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (m *gatedWeather) FetchWeather(ctx context.Context, lat, _ float64) (domain.WeatherSnapshot, error) {
	m.calls.Add(1)
	close(m.started)
	select {
	case <-m.release:
	case <-ctx.Done():
		return domain.WeatherSnapshot{}, ctx.Err()
	}
	return domain.WeatherSnapshot{Current: &domain.CurrentConditions{TemperatureC: domain.Float(lat)}}, nil
}

func TestWeatherProvider_CanceledCallerDoesNotFailOthers(t *testing.T) {
	inner := &gatedWeather{started: make(chan struct{}), release: make(chan struct{})}
	cached := NewWeatherProvider(inner, testOptions(clockwork.NewRealClock(), time.Minute))

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := cached.FetchWeather(ctxA, 12, 77)
		errA <- err
	}()
	<-inner.started

	type result struct {
		snap domain.WeatherSnapshot
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		snap, err := cached.FetchWeather(context.Background(), 12, 77)
		resB <- result{snap, err}
	}()

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled, "canceled caller returns promptly")

	close(inner.release)
	b := <-resB
	require.NoError(t, b.err)
	require.NotNil(t, b.snap.Current)
	assert.Equal(t, 12.0, *b.snap.Current.TemperatureC)
	assert.Equal(t, int32(1), inner.calls.Load())

	_, err := cached.FetchWeather(context.Background(), 12, 77)
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.calls.Load(), "flight result was cached")
}

func TestFireFeed_CachesForTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingFires{fires: []domain.FireDetection{{Lat: 1, Lon: 2, Confidence: 90}}}
	cached := NewFireFeed(inner, testOptions(clock, time.Hour))

	fires, err := cached.FetchFires(context.Background())
	require.NoError(t, err)
	require.Len(t, fires, 1)

	_, _ = cached.FetchFires(context.Background())
	assert.Equal(t, 1, inner.calls)

	clock.Advance(time.Hour)
	_, _ = cached.FetchFires(context.Background())
	assert.Equal(t, 2, inner.calls)
}

func TestFireFeed_ErrorsAreNotCached(t *testing.T) {
	inner := &countingFires{err: errors.New("boom")}
	cached := NewFireFeed(inner, testOptions(clockwork.NewFakeClock(), time.Hour))

	_, err := cached.FetchFires(context.Background())
	require.Error(t, err)
	_, _ = cached.FetchFires(context.Background())
	assert.Equal(t, 2, inner.calls)
}

func TestAlertFeed_CacheHit(t *testing.T) {
	inner := &countingAlerts{alerts: []domain.DisasterAlert{{Title: "Cyclone", EventType: "TC"}}}
	cached := NewAlertFeed(inner, testOptions(clockwork.NewFakeClock(), time.Hour))

	a1, _ := cached.FetchAlerts(context.Background())
	a2, _ := cached.FetchAlerts(context.Background())

	assert.Equal(t, a1, a2)
	assert.Equal(t, 1, inner.calls)
}

// --- LRU cache unit tests ---

func TestTTLLRU_BasicGetPut(t *testing.T) {
	c := newTTLLRU[int](3, time.Minute, clockwork.NewFakeClock())

	c.put("a", 1)
	c.put("b", 2)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestTTLLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newTTLLRU[int](2, time.Minute, clockwork.NewFakeClock())

	c.put("a", 1)
	c.put("b", 2)
	_, _ = c.get("a") // a is now most recent
	c.put("c", 3)     // evicts b

	_, ok := c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestTTLLRU_UpdateRefreshesExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTTLLRU[string](2, time.Minute, clock)

	c.put("k", "old")
	clock.Advance(50 * time.Second)
	c.put("k", "new")
	clock.Advance(50 * time.Second)

	v, ok := c.get("k")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, c.len())
}

func TestTTLLRU_ExpiredEntryIsRemoved(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTTLLRU[int](2, time.Minute, clock)

	c.put("a", 1)
	clock.Advance(2 * time.Minute)

	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.len())

	c.put("b", 2)
	c.put("c", 3)
	assert.Equal(t, 2, c.len())
}
