package geocode

import (
	"context"

	"golang.org/x/sync/singleflight"
)

type GeocodeService interface {
	CachedAddress(ctx context.Context, lat, lon float64, short bool) string
}

type geocodeService struct {
	cache    *Cache
	resolver *Resolver
	inflight singleflight.Group
}

// NewGeocodeService composes the resolver with an injected cache. Concurrent
// lookups for the same rounded bucket are coalesced into one upstream call.
func NewGeocodeService(cache *Cache, resolver *Resolver) GeocodeService {
	return &geocodeService{
		cache:    cache,
		resolver: resolver,
	}
}

func (s *geocodeService) CachedAddress(ctx context.Context, lat, lon float64, short bool) string {
	if cached, ok := s.cache.Get(lat, lon); ok {
		return cached
	}

	// Long and short forms share a bucket, as in the original cache: the
	// first form resolved for a bucket is the one served from then on.
	key := CacheKey(lat, lon)
	addr, _, _ := s.inflight.Do(key, func() (interface{}, error) {
		resolved := s.resolver.Resolve(ctx, lat, lon, short)
		s.cache.Set(lat, lon, resolved)
		return resolved, nil
	})
	return addr.(string)
}
