package model

import "fmt"

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Waypoint identifies one end of a route lookup: a stable place identifier
// when available, otherwise raw coordinates.
type Waypoint struct {
	PlaceID  string
	Location *Location
}

// Key returns the provider-facing identity of the waypoint, used both as
// the request parameter and as the cache key.
func (w Waypoint) Key() string {
	if w.PlaceID != "" {
		return "place_id:" + w.PlaceID
	}
	if w.Location != nil {
		return fmt.Sprintf("%f,%f", w.Location.Lat, w.Location.Lng)
	}
	return ""
}

// RouteResult is what a route lookup yields for a single leg.
type RouteResult struct {
	DurationMin int     `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km"`
	Polyline    string  `json:"polyline"`
}
