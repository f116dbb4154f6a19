package render

import (
	"salesroute/internal/model"
	"salesroute/internal/util"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	KindRoute = "route"
	KindPoint = "point"
	KindEmpty = "empty"

	DefaultZoom      = 10
	DefaultPathWidth = 5

	NoCoordinatesMessage = "No coordinates to display."
)

// MapView is everything a map widget needs to draw a route or a pin
type MapView struct {
	Kind         string                     `json:"kind"`
	Label        string                     `json:"label,omitempty"`
	Message      string                     `json:"message,omitempty"`
	Center       *model.Coordinate          `json:"center,omitempty"`
	Zoom         int                        `json:"zoom,omitempty"`
	PathWidth    int                        `json:"path_width,omitempty"`
	LengthMeters float64                    `json:"length_meters,omitempty"`
	BBox         []float64                  `json:"bbox,omitempty"`
	Coordinates  model.CoordinateSequence   `json:"coordinates"`
	GeoJSON      *geojson.FeatureCollection `json:"geojson,omitempty"`
}

// RouteView builds a path layer for seq. An empty sequence gives an "empty" view.
func RouteView(label string, seq model.CoordinateSequence) MapView {
	if len(seq) == 0 {
		return MapView{
			Kind:        KindEmpty,
			Label:       label,
			Message:     NoCoordinatesMessage,
			Coordinates: model.CoordinateSequence{},
		}
	}

	center, _ := util.MeanCenter(seq)
	line := toLineString(seq)

	feature := geojson.NewFeature(line)
	feature.Properties["name"] = label
	feature.Properties["width"] = DefaultPathWidth

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)

	return MapView{
		Kind:         KindRoute,
		Label:        label,
		Center:       &center,
		Zoom:         DefaultZoom,
		PathWidth:    DefaultPathWidth,
		LengthMeters: util.PathLength(seq),
		BBox:         bbox(line.Bound()),
		Coordinates:  seq,
		GeoJSON:      fc,
	}
}

// PointView builds a single pin centered on coord
func PointView(label string, coord model.Coordinate) MapView {
	point := orb.Point{coord.Lon, coord.Lat}

	feature := geojson.NewFeature(point)
	feature.Properties["name"] = label

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)

	return MapView{
		Kind:        KindPoint,
		Label:       label,
		Center:      &coord,
		Zoom:        DefaultZoom,
		Coordinates: model.CoordinateSequence{coord},
		GeoJSON:     fc,
	}
}

// toLineString flips to [lon, lat] for GeoJSON
func toLineString(seq model.CoordinateSequence) orb.LineString {
	line := make(orb.LineString, len(seq))
	for i, c := range seq {
		line[i] = orb.Point{c.Lon, c.Lat}
	}
	return line
}

func bbox(b orb.Bound) []float64 {
	return []float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}
}
