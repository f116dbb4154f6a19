package util

import (
	"salesroute/internal/model"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371000.0

// HaversineDistance returns the great-circle distance between two points in meters
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert coordinates from degrees to S2 points
	point1 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lng1))
	point2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lng2))

	// Calculate angle between points
	angle := s1.Angle(s2.ChordAngleBetweenPoints(point1, point2).Angle())

	return angle.Radians() * earthRadiusMeters
}

// PathLength sums the great-circle length of consecutive segments in meters
func PathLength(seq model.CoordinateSequence) float64 {
	if len(seq) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(seq); i++ {
		total += HaversineDistance(seq[i-1].Lat, seq[i-1].Lon, seq[i].Lat, seq[i].Lon)
	}
	return total
}

// MeanCenter returns the arithmetic mean of latitudes and longitudes.
// ok is false for an empty sequence.
func MeanCenter(seq model.CoordinateSequence) (center model.Coordinate, ok bool) {
	if len(seq) == 0 {
		return model.Coordinate{}, false
	}

	for _, c := range seq {
		center.Lat += c.Lat
		center.Lon += c.Lon
	}
	n := float64(len(seq))
	center.Lat /= n
	center.Lon /= n
	return center, true
}
