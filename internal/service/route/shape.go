package route

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"salesroute/internal/model"
)

// ParseError reports a shape token that is not a "lat,lon" pair
type ParseError struct {
	Index int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse shape token %d %q: %v", e.Index, e.Token, e.Err)
	}
	return fmt.Sprintf("parse shape token %d %q: expected \"lat,lon\"", e.Index, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DecodeShape reads response.route[0].leg[0].shape. A missing route or leg yields an
// empty sequence; a malformed token fails the whole decode.
func DecodeShape(resp *model.ShapeResponse) (model.CoordinateSequence, error) {
	coords := model.CoordinateSequence{}
	if resp == nil || len(resp.Response.Route) == 0 || len(resp.Response.Route[0].Leg) == 0 {
		return coords, nil
	}

	shape := resp.Response.Route[0].Leg[0].Shape
	coords = make(model.CoordinateSequence, 0, len(shape))
	for i, token := range shape {
		c, err := parseShapeToken(token)
		if err != nil {
			return nil, &ParseError{Index: i, Token: token, Err: err}
		}
		coords = append(coords, c)
	}

	return coords, nil
}

var errNotFinite = errors.New("coordinate is not a finite number")

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func parseShapeToken(token string) (model.Coordinate, error) {
	fields := strings.Split(token, ",")
	if len(fields) != 2 {
		return model.Coordinate{}, fmt.Errorf("want 2 fields, got %d", len(fields))
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return model.Coordinate{}, err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return model.Coordinate{}, err
	}
	if !isFinite(lat) || !isFinite(lon) {
		return model.Coordinate{}, errNotFinite
	}

	return model.Coordinate{Lat: lat, Lon: lon}, nil
}
