package model

import "strconv"

// Coordinate is a geographic point in degrees. No bounds validation is done.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the coordinate the way HERE expects it in query parameters ("lat,lon")
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// CoordinateSequence is an ordered path. Order is traversal order of the source response.
type CoordinateSequence []Coordinate

