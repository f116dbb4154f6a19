package route

import (
	"fmt"

	"salesroute/internal/model"
	"salesroute/internal/util"
)

// Assemble walks routes then sections in order and concatenates every decoded polyline.
// Sections without a polyline are skipped. The first malformed polyline aborts the whole
// assembly; the returned error wraps *util.DecodeError.
func Assemble(resp *model.RouteResponse) (model.CoordinateSequence, error) {
	coords := model.CoordinateSequence{}
	if resp == nil {
		return coords, nil
	}

	for r, rt := range resp.Routes {
		for s, section := range rt.Sections {
			if section.Polyline == "" {
				continue
			}

			points, err := util.DecodePolyline(section.Polyline)
			if err != nil {
				return nil, fmt.Errorf("route %d section %d: %w", r, s, err)
			}
			coords = append(coords, points...)
		}
	}

	return coords, nil
}
