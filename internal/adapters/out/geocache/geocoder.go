// Package geocache caches geocoding results in Redis in front of another
// ports.Geocoder. Redis failures degrade to an uncached lookup.
package geocache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "orderflow:geocode:"
	DefaultTTL = 24 * time.Hour
)

type cachedPosition struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CachedGeocoder keeps geocoding results in Redis.
type CachedGeocoder struct {
	next   ports.Geocoder
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedGeocoder caches results of next for ttl.
func NewCachedGeocoder(next ports.Geocoder, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedGeocoder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedGeocoder{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With("component", "geocode_cache"),
	}
}

// Geocode serves from the cache and falls back to next. Cache failures
// are logged and never fail the lookup.
func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (kernel.Coordinate, error) {
	key := cacheKey(address)

	raw, err := g.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var pos cachedPosition
		if jsonErr := json.Unmarshal(raw, &pos); jsonErr == nil {
			if coord, coordErr := kernel.NewCoordinate(pos.Lat, pos.Lon); coordErr == nil {
				metrics.GeocodeCacheTotal.WithLabelValues(metrics.OutcomeHit).Inc()
				return coord, nil
			}
		}
		g.logger.WarnContext(ctx, "discarding unreadable cache entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		g.logger.WarnContext(ctx, "geocode cache unavailable", "error", err)
	}
	metrics.GeocodeCacheTotal.WithLabelValues(metrics.OutcomeMiss).Inc()

	coord, err := g.next.Geocode(ctx, address)
	if err != nil {
		return kernel.Coordinate{}, err
	}

	b, _ := json.Marshal(cachedPosition{Lat: coord.Latitude(), Lon: coord.Longitude()})
	if setErr := g.rdb.Set(ctx, key, b, g.ttl).Err(); setErr != nil {
		g.logger.WarnContext(ctx, "failed to cache geocode result", "key", key, "error", setErr)
	}
	return coord, nil
}

// cacheKey folds case and whitespace so trivially different spellings share an entry.
func cacheKey(address string) string {
	return keyPrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
}
