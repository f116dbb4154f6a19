package route

import (
	"context"
	"errors"
	"fmt"

	"salesroute/internal/model"
	"salesroute/internal/render"

	"go.uber.org/zap"
)

// NoAddressMessage is reported when the text holds nothing to map
const NoAddressMessage = "No address(es) found to map."

// ErrNotGeocoded means HERE returned no candidate for an address
var ErrNotGeocoded = errors.New("could not geocode address")

// AddressExtractor finds street addresses in text
type AddressExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// Locator resolves an address to a coordinate; nil means not found
type Locator interface {
	Geocode(ctx context.Context, address string) (*model.Coordinate, error)
}

// Planner computes a path between two coordinates
type Planner interface {
	Plan(ctx context.Context, origin, destination model.Coordinate) (model.CoordinateSequence, error)
}

// MapResult is what the address logic produced for one chat turn
type MapResult struct {
	Addresses []string        `json:"addresses"`
	View      *render.MapView `json:"view,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// MapService maps the addresses mentioned in a conversation turn
type MapService struct {
	extractor AddressExtractor
	locator   Locator
	planner   Planner
	logger    *zap.Logger
}

func NewMapService(extractor AddressExtractor, locator Locator, planner Planner, logger *zap.Logger) *MapService {
	return &MapService{extractor: extractor, locator: locator, planner: planner, logger: logger}
}

// MapFor extracts addresses from text. One address gives a pin, two or more give the
// route between the first two, none gives a message and no view.
func (s *MapService) MapFor(ctx context.Context, text string) (*MapResult, error) {
	addresses, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("extracted addresses", zap.Strings("addresses", addresses))

	result := &MapResult{Addresses: addresses}

	switch {
	case len(addresses) == 0:
		result.Message = NoAddressMessage
		return result, nil

	case len(addresses) == 1:
		view, err := s.Point(ctx, addresses[0])
		if err != nil {
			return result, err
		}
		result.View = &view
		return result, nil

	default:
		if len(addresses) > 2 {
			s.logger.Info("more than two addresses, routing between the first two",
				zap.Int("count", len(addresses)))
		}
		view, err := s.RouteBetween(ctx, addresses[0], addresses[1])
		if err != nil {
			return result, err
		}
		result.View = &view
		return result, nil
	}
}

// Point geocodes a single address into a pin view
func (s *MapService) Point(ctx context.Context, addr string) (render.MapView, error) {
	coord, err := s.locate(ctx, addr)
	if err != nil {
		return render.MapView{}, err
	}
	return render.PointView(addr, *coord), nil
}

// RouteBetween geocodes both ends and renders the driving route
func (s *MapService) RouteBetween(ctx context.Context, origin, destination string) (render.MapView, error) {
	from, err := s.locate(ctx, origin)
	if err != nil {
		return render.MapView{}, err
	}
	to, err := s.locate(ctx, destination)
	if err != nil {
		return render.MapView{}, err
	}

	coords, err := s.planner.Plan(ctx, *from, *to)
	if err != nil {
		return render.MapView{}, err
	}
	return render.RouteView(origin+" → "+destination, coords), nil
}

func (s *MapService) locate(ctx context.Context, addr string) (*model.Coordinate, error) {
	coord, err := s.locator.Geocode(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed for %q: %w", addr, err)
	}
	if coord == nil {
		return nil, fmt.Errorf("%w %q", ErrNotGeocoded, addr)
	}
	return coord, nil
}
