package internals

import (
	"github.com/golang/geo/s2"
	"trip-planner-server/model"
)

// earth radius in km, matches the haversine convention
const earthRadiusKm = 6371.0

// MaxOptimizePoints caps the optimizer input; the 2-opt sweep is quadratic
// per pass and only meant for a day's worth of stops.
const MaxOptimizePoints = 10

// DefaultOptimizeIterations is the number of 2-opt passes when the caller
// does not ask for more.
const DefaultOptimizeIterations = 2

// RoutePoint is one candidate stop for the optimizer.
type RoutePoint struct {
	EventID int     `json:"id"`
	PlaceID string  `json:"place_id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// GreatCircleKm is the straight-line distance between two points in km.
func GreatCircleKm(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * earthRadiusKm
}

// RouteDistance sums the straight-line legs from start through every point
// in order.
func RouteDistance(start model.Location, points []RoutePoint) float64 {
	total := 0.0
	lat, lng := start.Lat, start.Lng
	for _, p := range points {
		total += GreatCircleKm(lat, lng, p.Lat, p.Lng)
		lat, lng = p.Lat, p.Lng
	}
	return total
}

// nearestNeighborRoute builds an initial visiting order by repeatedly
// jumping to the closest unvisited point.
func nearestNeighborRoute(start model.Location, points []RoutePoint) []RoutePoint {
	unvisited := append([]RoutePoint(nil), points...)
	route := make([]RoutePoint, 0, len(points))
	lat, lng := start.Lat, start.Lng

	for len(unvisited) > 0 {
		nearest := 0
		best := GreatCircleKm(lat, lng, unvisited[0].Lat, unvisited[0].Lng)
		for i := 1; i < len(unvisited); i++ {
			d := GreatCircleKm(lat, lng, unvisited[i].Lat, unvisited[i].Lng)
			if d < best {
				best = d
				nearest = i
			}
		}
		next := unvisited[nearest]
		route = append(route, next)
		unvisited = append(unvisited[:nearest], unvisited[nearest+1:]...)
		lat, lng = next.Lat, next.Lng
	}
	return route
}

// twoOptSwap reverses the sub-route [i..k].
func twoOptSwap(route []RoutePoint, i, k int) []RoutePoint {
	swapped := make([]RoutePoint, 0, len(route))
	swapped = append(swapped, route[:i]...)
	for j := k; j >= i; j-- {
		swapped = append(swapped, route[j])
	}
	swapped = append(swapped, route[k+1:]...)
	return swapped
}

// OptimizeRoute proposes a visiting order for the given points starting
// from a fixed origin: nearest-neighbor construction followed by up to
// iterations passes of 2-opt improvement, stopping early once a full pass
// yields no improvement. Distances are straight-line; real travel segments
// are computed afterwards, once an order is chosen.
func OptimizeRoute(start model.Location, points []RoutePoint, iterations int) []RoutePoint {
	if len(points) <= 1 {
		return points
	}
	if iterations <= 0 {
		iterations = DefaultOptimizeIterations
	}

	route := nearestNeighborRoute(start, points)
	bestDistance := RouteDistance(start, route)

	for pass := 0; pass < iterations; pass++ {
		improved := false
		for i := 0; i < len(route)-1; i++ {
			for k := i + 1; k < len(route); k++ {
				candidate := twoOptSwap(route, i, k)
				distance := RouteDistance(start, candidate)
				if distance < bestDistance {
					route = candidate
					bestDistance = distance
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return route
}
