package route

import (
	"context"
	"errors"
	"testing"

	"salesroute/internal/model"
	"salesroute/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticExtractor struct {
	addresses []string
	err       error
}

func (s staticExtractor) Extract(context.Context, string) ([]string, error) {
	return s.addresses, s.err
}

type fakeLocator map[string]*model.Coordinate

func (f fakeLocator) Geocode(_ context.Context, addr string) (*model.Coordinate, error) {
	if addr == "broken" {
		return nil, errors.New("status 503")
	}
	return f[addr], nil
}

type fakePlanner struct {
	origin, destination model.Coordinate
	coords              model.CoordinateSequence
}

func (p *fakePlanner) Plan(_ context.Context, origin, destination model.Coordinate) (model.CoordinateSequence, error) {
	p.origin, p.destination = origin, destination
	return p.coords, nil
}

var locator = fakeLocator{
	"1 Main St": {Lat: 45.5, Lon: -73.5},
	"2 Oak Ave": {Lat: 46.8, Lon: -71.2},
	"3 Elm Rd":  {Lat: 40, Lon: -70},
}

func TestMapFor_NoAddress(t *testing.T) {
	svc := NewMapService(staticExtractor{addresses: []string{}}, locator, &fakePlanner{}, zap.NewNop())

	result, err := svc.MapFor(context.Background(), "how are sales?")
	require.NoError(t, err)
	assert.Nil(t, result.View)
	assert.Equal(t, NoAddressMessage, result.Message)
}

func TestMapFor_SingleAddress(t *testing.T) {
	svc := NewMapService(staticExtractor{addresses: []string{"1 Main St"}}, locator, &fakePlanner{}, zap.NewNop())

	result, err := svc.MapFor(context.Background(), "where is 1 Main St")
	require.NoError(t, err)
	require.NotNil(t, result.View)
	assert.Equal(t, render.KindPoint, result.View.Kind)
	assert.Equal(t, &model.Coordinate{Lat: 45.5, Lon: -73.5}, result.View.Center)
}

func TestMapFor_RouteUsesFirstTwo(t *testing.T) {
	planner := &fakePlanner{coords: model.CoordinateSequence{{Lat: 45.5, Lon: -73.5}, {Lat: 46.8, Lon: -71.2}}}
	svc := NewMapService(staticExtractor{addresses: []string{"1 Main St", "2 Oak Ave", "3 Elm Rd"}}, locator, planner, zap.NewNop())

	result, err := svc.MapFor(context.Background(), "route")
	require.NoError(t, err)
	require.NotNil(t, result.View)
	assert.Equal(t, render.KindRoute, result.View.Kind)
	assert.Equal(t, "1 Main St → 2 Oak Ave", result.View.Label)
	assert.Equal(t, model.Coordinate{Lat: 45.5, Lon: -73.5}, planner.origin)
	assert.Equal(t, model.Coordinate{Lat: 46.8, Lon: -71.2}, planner.destination)
}

func TestMapFor_EmptyRoute(t *testing.T) {
	svc := NewMapService(staticExtractor{addresses: []string{"1 Main St", "2 Oak Ave"}}, locator, &fakePlanner{coords: model.CoordinateSequence{}}, zap.NewNop())

	result, err := svc.MapFor(context.Background(), "route")
	require.NoError(t, err)
	assert.Equal(t, render.KindEmpty, result.View.Kind)
	assert.Equal(t, render.NoCoordinatesMessage, result.View.Message)
}

func TestMapFor_GeocodingFailures(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := NewMapService(staticExtractor{addresses: []string{"1 Main St", "unknown"}}, locator, &fakePlanner{}, zap.NewNop())

		result, err := svc.MapFor(context.Background(), "route")
		assert.True(t, errors.Is(err, ErrNotGeocoded))
		assert.Nil(t, result.View)
		assert.Equal(t, []string{"1 Main St", "unknown"}, result.Addresses)
	})

	t.Run("service error", func(t *testing.T) {
		svc := NewMapService(staticExtractor{addresses: []string{"broken"}}, locator, &fakePlanner{}, zap.NewNop())

		_, err := svc.MapFor(context.Background(), "x")
		assert.ErrorContains(t, err, `geocoding failed for "broken"`)
	})

	t.Run("extractor error", func(t *testing.T) {
		svc := NewMapService(staticExtractor{err: errors.New("agent down")}, locator, &fakePlanner{}, zap.NewNop())

		result, err := svc.MapFor(context.Background(), "x")
		assert.Nil(t, result)
		assert.ErrorContains(t, err, "agent down")
	})
}
