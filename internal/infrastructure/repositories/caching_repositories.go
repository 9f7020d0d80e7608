package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/avatarctic/placeproxy/internal/application/query"
	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/internal/core/ports"
)

// DefaultCacheTTL is how long a normalized result is served before the upstream is asked again.
const DefaultCacheTTL = 24 * time.Hour

// Cache kinds, used as metric labels and key prefixes.
const (
	kindCountry = "country"
	kindPlaces  = "places"
	kindPlace   = "place"
)

// Key builders. Every parameter that changes the rendered query is part of the key.
func CountryKey(code place.CountryCode) string {
	return kindCountry + ":" + code.String()
}

// PlacesKey clamps limit and minSitelinks first so requests that render the same query share a key.
func PlacesKey(code place.CountryCode, limit, minSitelinks int) string {
	return kindPlaces + ":" + code.String() +
		":limit=" + strconv.Itoa(query.ClampLimit(limit)) +
		":minSitelinks=" + strconv.Itoa(query.ClampMinSitelinks(minSitelinks))
}

func PlaceKey(id place.EntityID) string {
	return kindPlace + ":" + id.String()
}

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// CachingPlaceRepository decorates a PlaceRepository with a read-through cache.
// Every upstream access goes through readThrough. Concurrent misses for one key each
// reach the inner repository unless coalescing is enabled.
type CachingPlaceRepository struct {
	inner    ports.PlaceRepository
	cache    ports.Cache
	ttl      time.Duration
	coalesce bool
	sf       singleflight.Group
	logger   *logrus.Logger
}

// CachingOption configures a CachingPlaceRepository.
type CachingOption func(*CachingPlaceRepository)

// WithMissCoalescing makes concurrent misses for the same key share one inner call.
func WithMissCoalescing(enabled bool) CachingOption {
	return func(c *CachingPlaceRepository) { c.coalesce = enabled }
}

func WithLogger(logger *logrus.Logger) CachingOption {
	return func(c *CachingPlaceRepository) { c.logger = logger }
}

func NewCachingPlaceRepository(inner ports.PlaceRepository, cache ports.Cache, ttl time.Duration, opts ...CachingOption) *CachingPlaceRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &CachingPlaceRepository{inner: inner, cache: cache, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachingPlaceRepository) GetCountry(ctx context.Context, code place.CountryCode) (*place.CountryInfo, error) {
	return readThrough(c, ctx, kindCountry, CountryKey(code), func() (*place.CountryInfo, error) {
		return c.inner.GetCountry(ctx, code)
	})
}

func (c *CachingPlaceRepository) ListPlaces(ctx context.Context, code place.CountryCode, limit, minSitelinks int) ([]place.PlaceSummary, error) {
	v, err := readThrough(c, ctx, kindPlaces, PlacesKey(code, limit, minSitelinks), func() (*[]place.PlaceSummary, error) {
		places, err := c.inner.ListPlaces(ctx, code, query.ClampLimit(limit), query.ClampMinSitelinks(minSitelinks))
		if err != nil {
			return nil, err
		}
		if places == nil {
			places = []place.PlaceSummary{}
		}
		return &places, nil
	})
	if err != nil {
		return nil, err
	}
	return *v, nil
}

func (c *CachingPlaceRepository) GetPlaceDetail(ctx context.Context, id place.EntityID) (*place.PlaceDetail, error) {
	return readThrough(c, ctx, kindPlace, PlaceKey(id), func() (*place.PlaceDetail, error) {
		return c.inner.GetPlaceDetail(ctx, id)
	})
}

// readThrough serves key from the cache, or loads, stores and returns it on a miss.
// Failed loads are not cached.
func readThrough[T any](c *CachingPlaceRepository, ctx context.Context, kind, key string, loader func() (*T, error)) (*T, error) {
	if v, ok := cacheGet[T](c.cache, ctx, key); ok {
		cacheLookups.WithLabelValues(kind, "hit").Inc()
		return v, nil
	}
	cacheLookups.WithLabelValues(kind, "miss").Inc()

	load := func() (*T, error) {
		v, err := loader()
		if err != nil {
			return nil, err
		}
		cacheSetSilently(c.cache, ctx, key, v, c.ttl)
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"key": key, "ttl": c.ttl}).Debug("cached upstream result")
		}
		return v, nil
	}
	if !c.coalesce {
		return load()
	}

	res, err, shared := c.sf.Do(key, func() (any, error) {
		// a concurrent flight may have filled the cache meanwhile
		if v, ok := cacheGet[T](c.cache, ctx, key); ok {
			return v, nil
		}
		return load()
	})
	if err != nil {
		return nil, err
	}
	if shared {
		cacheLookups.WithLabelValues(kind, "coalesced").Inc()
	}
	v, ok := res.(*T)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return v, nil
}
