package internals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner-server/model"
)

func TestGreatCircleKm(t *testing.T) {
	// one degree of longitude on the equator
	distance := GreatCircleKm(0, 0, 0, 1)
	assert.InDelta(t, 111.19, distance, 0.1)

	assert.Zero(t, GreatCircleKm(37.5, 127.0, 37.5, 127.0))
}

func TestRouteDistance(t *testing.T) {
	start := model.Location{Lat: 0, Lng: 0}
	points := []RoutePoint{
		{EventID: 1, Lat: 0, Lng: 1},
		{EventID: 2, Lat: 0, Lng: 2},
	}

	total := RouteDistance(start, points)
	assert.InDelta(t, 2*111.19, total, 0.5)

	assert.Zero(t, RouteDistance(start, nil))
}

func TestOptimizeRouteColinearPoints(t *testing.T) {
	// three colinear points with the start at one end: the only optimal
	// order is by increasing distance from start, and 2-opt cannot improve
	// on what nearest-neighbor already finds
	start := model.Location{Lat: 0, Lng: 0}
	points := []RoutePoint{
		{EventID: 3, Lat: 0, Lng: 3},
		{EventID: 1, Lat: 0, Lng: 1},
		{EventID: 2, Lat: 0, Lng: 2},
	}

	optimized := OptimizeRoute(start, points, 2)

	require.Len(t, optimized, 3)
	assert.Equal(t, 1, optimized[0].EventID)
	assert.Equal(t, 2, optimized[1].EventID)
	assert.Equal(t, 3, optimized[2].EventID)
}

func TestOptimizeRouteImprovesBadOrder(t *testing.T) {
	start := model.Location{Lat: 0, Lng: 0}
	// deliberately zig-zagging order
	points := []RoutePoint{
		{EventID: 4, Lat: 0, Lng: 4},
		{EventID: 1, Lat: 0, Lng: 1},
		{EventID: 3, Lat: 0, Lng: 3},
		{EventID: 2, Lat: 0, Lng: 2},
	}

	original := RouteDistance(start, points)
	optimized := OptimizeRoute(start, points, 2)
	improved := RouteDistance(start, optimized)

	assert.Less(t, improved, original)
	// colinear, so the optimum is the straight sweep
	assert.Equal(t, []int{1, 2, 3, 4}, []int{
		optimized[0].EventID, optimized[1].EventID,
		optimized[2].EventID, optimized[3].EventID,
	})
}

func TestOptimizeRouteSmallInputs(t *testing.T) {
	start := model.Location{Lat: 0, Lng: 0}

	assert.Empty(t, OptimizeRoute(start, nil, 2))

	single := []RoutePoint{{EventID: 1, Lat: 1, Lng: 1}}
	assert.Equal(t, single, OptimizeRoute(start, single, 2))
}

func TestOptimizeRouteDoesNotMutateInput(t *testing.T) {
	start := model.Location{Lat: 0, Lng: 0}
	points := []RoutePoint{
		{EventID: 2, Lat: 0, Lng: 2},
		{EventID: 1, Lat: 0, Lng: 1},
	}

	_ = OptimizeRoute(start, points, 2)

	assert.Equal(t, 2, points[0].EventID)
	assert.Equal(t, 1, points[1].EventID)
}
