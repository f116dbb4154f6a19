package model

// Position is the HERE lat/lng object
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodeResponse is the HERE Geocoding v1 response shape
type GeocodeResponse struct {
	Items []GeocodeItem `json:"items"`
}

type GeocodeItem struct {
	Title    string   `json:"title"`
	Position Position `json:"position"`
}

// Coordinate converts a HERE position to a Coordinate
func (p Position) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lng}
}
