package model

// RouteResponse is the HERE Routing v8 response shape (return=polyline)
type RouteResponse struct {
	Routes []Route `json:"routes"`
}

type Route struct {
	ID       string    `json:"id,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is one independently encoded leg of a route
type Section struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	Polyline  string `json:"polyline,omitempty"`
	Departure *Stop  `json:"departure,omitempty"`
	Arrival   *Stop  `json:"arrival,omitempty"`
}

type Stop struct {
	Time  string `json:"time,omitempty"`
	Place Place  `json:"place"`
}

type Place struct {
	Type     string    `json:"type,omitempty"`
	Location *Position `json:"location,omitempty"`
}

// ShapeResponse is the HERE Routing v7 response shape (legAttributes=shape)
type ShapeResponse struct {
	Response ShapeBody `json:"response"`
}

type ShapeBody struct {
	Route []ShapeRoute `json:"route"`
}

type ShapeRoute struct {
	Leg []ShapeLeg `json:"leg"`
}

// ShapeLeg holds literal "lat,lon" tokens, not delta-encoded
type ShapeLeg struct {
	Shape []string `json:"shape"`
}
