package externals

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner-server/model"
)

const directionsBody = `{
	"status": "OK",
	"routes": [
		{
			"legs": [{"distance": {"value": 5200}, "duration": {"value": 1200}}],
			"overview_polyline": {"points": "abc123"}
		}
	]
}`

func waypoint(placeID string, lat, lng float64) model.Waypoint {
	return model.Waypoint{PlaceID: placeID, Location: &model.Location{Lat: lat, Lng: lng}}
}

func TestResolveParsesDirectionsResponse(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "place_id:p1", r.URL.Query().Get("origin"))
		assert.Equal(t, "place_id:p2", r.URL.Query().Get("destination"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directionsBody))
	}))
	defer server.Close()

	previousURL := directionsApiURL
	directionsApiURL = server.URL
	defer func() { directionsApiURL = previousURL }()

	service := NewRouteService(nil)

	route, err := service.Resolve(waypoint("p1", 37.5, 127.0), waypoint("p2", 37.6, 127.1))
	require.NoError(t, err)
	require.NotNil(t, route)

	assert.Equal(t, 20, route.DurationMin)
	assert.InDelta(t, 5.2, route.DistanceKm, 1e-9)
	assert.Equal(t, "abc123", route.Polyline)
	assert.Equal(t, 1, hits)
}

func TestResolveServesRepeatsFromMemoryCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directionsBody))
	}))
	defer server.Close()

	previousURL := directionsApiURL
	directionsApiURL = server.URL
	defer func() { directionsApiURL = previousURL }()

	service := NewRouteService(nil)

	_, err := service.Resolve(waypoint("p1", 37.5, 127.0), waypoint("p2", 37.6, 127.1))
	require.NoError(t, err)
	_, err = service.Resolve(waypoint("p1", 37.5, 127.0), waypoint("p2", 37.6, 127.1))
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
}

func TestResolveMemoryCacheExpires(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directionsBody))
	}))
	defer server.Close()

	previousURL := directionsApiURL
	directionsApiURL = server.URL
	defer func() { directionsApiURL = previousURL }()

	service := NewRouteService(nil)
	current := time.Now()
	service.now = func() time.Time { return current }

	_, err := service.Resolve(waypoint("p1", 37.5, 127.0), waypoint("p2", 37.6, 127.1))
	require.NoError(t, err)

	// jump past the TTL, the next lookup goes live again
	current = current.Add(memoryCacheTTL + time.Minute)

	_, err = service.Resolve(waypoint("p1", 37.5, 127.0), waypoint("p2", 37.6, 127.1))
	require.NoError(t, err)

	assert.Equal(t, 2, hits)
}

func TestResolveFailsOnProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	previousURL := directionsApiURL
	directionsApiURL = server.URL
	defer func() { directionsApiURL = previousURL }()

	service := NewRouteService(nil)

	route, err := service.Resolve(waypoint("p1", 37.5, 127.0), waypoint("p2", 37.6, 127.1))
	assert.Error(t, err)
	assert.Nil(t, route)
}

func TestResolveFailsOnMissingRouteData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}))
	defer server.Close()

	previousURL := directionsApiURL
	directionsApiURL = server.URL
	defer func() { directionsApiURL = previousURL }()

	service := NewRouteService(nil)

	route, err := service.Resolve(waypoint("p1", 37.5, 127.0), waypoint("p2", 37.6, 127.1))
	assert.Error(t, err)
	assert.Nil(t, route)
}

func TestResolveRejectsEmptyWaypoints(t *testing.T) {
	service := NewRouteService(nil)

	route, err := service.Resolve(model.Waypoint{}, waypoint("p2", 37.6, 127.1))
	assert.Error(t, err)
	assert.Nil(t, route)
}

func TestWaypointKey(t *testing.T) {
	assert.Equal(t, "place_id:p1", model.Waypoint{PlaceID: "p1"}.Key())

	coords := model.Waypoint{Location: &model.Location{Lat: 37.5, Lng: 127.0}}
	assert.Equal(t, "37.500000,127.000000", coords.Key())

	assert.Equal(t, "", model.Waypoint{}.Key())
}
