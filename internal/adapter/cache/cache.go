// Package cache wraps providers with read-through TTL caches.
//
// Entries are keyed by request parameters and expire independently. Only
// successful fetches are stored, so a failed upstream call is retried on the
// next request. Concurrent misses for one key share a single upstream call.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Options configures a cache decorator.
type Options struct {
	TTL        time.Duration
	MaxEntries int
	Clock      clockwork.Clock // nil uses the real clock
	Metrics    *observability.Metrics
}

// readThrough is the shared lookup/fill path behind every decorator.
type readThrough[V any] struct {
	provider string
	entries  *ttlLRU[V]
	group    singleflight.Group
	metrics  *observability.Metrics
}

func newReadThrough[V any](provider string, opts Options) *readThrough[V] {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &readThrough[V]{
		provider: provider,
		entries:  newTTLLRU[V](maxEntries, opts.TTL, clock),
		metrics:  opts.Metrics,
	}
}

// get returns the cached value for key or fills it with fetch. The fill runs
// detached from any one caller's cancellation, so a caller that gives up
// returns ctx.Err() without failing the others waiting on the same key. The
// fill stays bounded by the upstream client's timeout.
func (r *readThrough[V]) get(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	if v, ok := r.entries.get(key); ok {
		r.metrics.CacheLookups.WithLabelValues(r.provider, "hit").Inc()
		return v, nil
	}
	r.metrics.CacheLookups.WithLabelValues(r.provider, "miss").Inc()

	flightCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		// A flight that finished between our miss and this call already filled the entry.
		if v, ok := r.entries.get(key); ok {
			return v, nil
		}
		v, err := fetch(flightCtx)
		if err != nil {
			return v, err
		}
		r.entries.put(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val.(V), res.Err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// WeatherProvider caches snapshots by coordinate, rounded to four decimal
// places (about 11 m).
type WeatherProvider struct {
	inner domain.WeatherProvider
	cache *readThrough[domain.WeatherSnapshot]
}

// NewWeatherProvider creates a cache decorator around a weather provider.
func NewWeatherProvider(inner domain.WeatherProvider, opts Options) *WeatherProvider {
	return &WeatherProvider{inner: inner, cache: newReadThrough[domain.WeatherSnapshot]("openmeteo", opts)}
}

func (w *WeatherProvider) FetchWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	return w.cache.get(ctx, key, func(ctx context.Context) (domain.WeatherSnapshot, error) {
		return w.inner.FetchWeather(ctx, lat, lon)
	})
}

// FireFeed caches the fire feed under a single key.
type FireFeed struct {
	inner domain.FireFeed
	cache *readThrough[[]domain.FireDetection]
}

// NewFireFeed creates a cache decorator around a fire feed.
func NewFireFeed(inner domain.FireFeed, opts Options) *FireFeed {
	opts.MaxEntries = 1
	return &FireFeed{inner: inner, cache: newReadThrough[[]domain.FireDetection]("firms", opts)}
}

func (f *FireFeed) FetchFires(ctx context.Context) ([]domain.FireDetection, error) {
	return f.cache.get(ctx, "fires", func(ctx context.Context) ([]domain.FireDetection, error) {
		return f.inner.FetchFires(ctx)
	})
}

// AlertFeed caches the alert feed under a single key.
type AlertFeed struct {
	inner domain.AlertFeed
	cache *readThrough[[]domain.DisasterAlert]
}

// NewAlertFeed creates a cache decorator around an alert feed.
func NewAlertFeed(inner domain.AlertFeed, opts Options) *AlertFeed {
	opts.MaxEntries = 1
	return &AlertFeed{inner: inner, cache: newReadThrough[[]domain.DisasterAlert]("gdacs", opts)}
}

func (a *AlertFeed) FetchAlerts(ctx context.Context) ([]domain.DisasterAlert, error) {
	return a.cache.get(ctx, "alerts", func(ctx context.Context) ([]domain.DisasterAlert, error) {
		return a.inner.FetchAlerts(ctx)
	})
}
