package location

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"salesroute/internal/model"

	"go.uber.org/zap"
)

const GeocodeKeyPrefix = "geocode"

// Geocoder resolves an address; nil coordinate means no candidate
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*model.Coordinate, error)
}

// Cache is a string key/value store with expiry
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
}

// LocationService geocodes addresses through HERE with a read-through cache
type LocationService struct {
	geocoder Geocoder
	cache    Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewLocationService creates the service. cache may be nil.
func NewLocationService(geocoder Geocoder, cache Cache, ttl time.Duration, logger *zap.Logger) *LocationService {
	return &LocationService{geocoder: geocoder, cache: cache, ttl: ttl, logger: logger}
}

// cachedLocation also records misses so unknown addresses are not re-queried
type cachedLocation struct {
	Found bool             `json:"found"`
	Coord model.Coordinate `json:"coord"`
}

// Geocode returns the position of address, or nil when HERE has no candidate.
// Cache failures are logged and bypassed.
func (s *LocationService) Geocode(ctx context.Context, address string) (*model.Coordinate, error) {
	key := CacheKey(address)

	if s.cache != nil {
		if raw, found, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			var cached cachedLocation
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				if !cached.Found {
					return nil, nil
				}
				coord := cached.Coord
				return &coord, nil
			}
		}
	}

	coord, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		entry := cachedLocation{Found: coord != nil}
		if coord != nil {
			entry.Coord = *coord
		}
		raw, _ := json.Marshal(entry)
		if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
			s.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return coord, nil
}

// CacheKey normalizes whitespace and case so equivalent spellings share an entry
func CacheKey(address string) string {
	return GeocodeKeyPrefix + ":" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}
