package route

import (
	"context"
	"fmt"
	"time"

	"salesroute/internal/model"
	"salesroute/internal/util"

	"go.uber.org/zap"
)

const RouteKeyPrefix = "route"

// shapeCachePrecision keeps v7 shapes at 1e-6 degrees in the cache. v8 polylines are
// already precision 5 and round-trip exactly.
const shapeCachePrecision = 6

// Router is the HERE routing collaborator
type Router interface {
	Route(ctx context.Context, origin, destination model.Coordinate) (*model.RouteResponse, error)
	RouteShape(ctx context.Context, origin, destination model.Coordinate) (*model.ShapeResponse, error)
}

// Cache is a string key/value store with expiry
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
}

// RouteService turns an origin/destination pair into an ordered coordinate sequence
type RouteService struct {
	router     Router
	cache      Cache
	ttl        time.Duration
	apiVersion int
	logger     *zap.Logger
}

// NewRouteService creates the service. apiVersion 7 uses shape arrays, anything else
// Routing v8 polylines. cache may be nil.
func NewRouteService(router Router, cache Cache, ttl time.Duration, apiVersion int, logger *zap.Logger) *RouteService {
	return &RouteService{
		router:     router,
		cache:      cache,
		ttl:        ttl,
		apiVersion: apiVersion,
		logger:     logger,
	}
}

// Plan returns the driving path from origin to destination
func (s *RouteService) Plan(ctx context.Context, origin, destination model.Coordinate) (model.CoordinateSequence, error) {
	key := s.cacheKey(origin, destination)
	if coords, ok := s.fromCache(ctx, key); ok {
		return coords, nil
	}

	start := time.Now()
	var coords model.CoordinateSequence
	var err error

	if s.apiVersion == 7 {
		var resp *model.ShapeResponse
		resp, err = s.router.RouteShape(ctx, origin, destination)
		if err == nil {
			coords, err = DecodeShape(resp)
		}
	} else {
		var resp *model.RouteResponse
		resp, err = s.router.Route(ctx, origin, destination)
		if err == nil {
			coords, err = Assemble(resp)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("plan route %s -> %s: %w", origin, destination, err)
	}

	// Return what a warm cache would return
	encoded := util.EncodePolylineWithPrecision(coords, s.precision())
	coords, err = util.DecodePolylineWithPrecision(encoded, s.precision())
	if err != nil {
		return nil, fmt.Errorf("plan route %s -> %s: %w", origin, destination, err)
	}

	s.logger.Info("route planned",
		zap.Int("api_version", s.apiVersion),
		zap.Int("points", len(coords)),
		zap.Duration("took", time.Since(start)),
	)

	s.toCache(ctx, key, encoded)
	return coords, nil
}

func (s *RouteService) precision() int {
	if s.apiVersion == 7 {
		return shapeCachePrecision
	}
	return util.DefaultPrecision
}

func (s *RouteService) cacheKey(origin, destination model.Coordinate) string {
	return fmt.Sprintf("%s:v%d:%s:%s", RouteKeyPrefix, s.apiVersion, origin, destination)
}

// fromCache reads a route stored as an encoded polyline
func (s *RouteService) fromCache(ctx context.Context, key string) (model.CoordinateSequence, bool) {
	if s.cache == nil {
		return nil, false
	}

	encoded, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("route cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	coords, err := util.DecodePolylineWithPrecision(encoded, s.precision())
	if err != nil {
		s.logger.Warn("discarding corrupt cached route", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return coords, true
}

func (s *RouteService) toCache(ctx context.Context, key, encoded string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
		s.logger.Warn("route cache write failed", zap.String("key", key), zap.Error(err))
	}
}
