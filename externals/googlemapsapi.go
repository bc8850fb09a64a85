package externals

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"trip-planner-server/db"
	"trip-planner-server/model"
)

var googleApiKey string
var directionsApiURL = "https://maps.googleapis.com/maps/api/directions/json"
var placesApiURL = "https://maps.googleapis.com/maps/api/place"

// every outbound call carries its own timeout; a timeout is just another
// failed lookup
var httpClient = &http.Client{Timeout: 10 * time.Second}

// memoryCacheTTL is the in-process cache lifetime; the persisted cache in
// route_cache lives longer and only holds place-ID pairs.
const memoryCacheTTL = time.Hour

// directions response

type DirectionsResponse struct {
	Status string  `json:"status"`
	Routes []Route `json:"routes"`
}
type Route struct {
	Legs             []Leg     `json:"legs"`
	OverviewPolyline *Polyline `json:"overview_polyline"`
}
type Leg struct {
	Distance *Distance `json:"distance"`
	Duration *Duration `json:"duration"`
}
type Distance struct {
	Value int `json:"value"`
}
type Duration struct {
	Value int `json:"value"`
}
type Polyline struct {
	Points string `json:"points"`
}

// places response

type PlacesResponse struct {
	Status  string       `json:"status"`
	Results []PlaceEntry `json:"results"`
}
type PlaceEntry struct {
	PlaceID          string         `json:"place_id"`
	Name             string         `json:"name"`
	FormattedAddress string         `json:"formatted_address"`
	Geometry         *PlaceGeometry `json:"geometry"`
	Types            []string       `json:"types"`
	Rating           float64        `json:"rating"`
}
type PlaceGeometry struct {
	Location *PlaceLocation `json:"location"`
}
type PlaceLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func InitGoogleMapsApi() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
	googleApiKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	// the mock server overrides these in test mode
	if override := os.Getenv("DIRECTIONS_API_URL"); override != "" {
		directionsApiURL = override
	}
	if override := os.Getenv("PLACES_API_URL"); override != "" {
		placesApiURL = override
	}
}

type cachedRoute struct {
	route   model.RouteResult
	expires time.Time
}

// RouteService resolves travel legs through the Directions API with an
// in-process short-TTL cache and the persisted route cache in front of the
// live call. Callers only see "got a result" or an error.
type RouteService struct {
	cacheDAO *db.RouteCacheDAO
	now      func() time.Time

	mu     sync.Mutex
	memory map[string]cachedRoute
}

// NewRouteService wires the service to the persisted cache. cacheDAO may be
// nil, in which case only the in-process cache applies.
func NewRouteService(cacheDAO *db.RouteCacheDAO) *RouteService {
	return &RouteService{
		cacheDAO: cacheDAO,
		now:      time.Now,
		memory:   make(map[string]cachedRoute),
	}
}

// Resolve computes one travel leg between two waypoints.
func (service *RouteService) Resolve(origin, destination model.Waypoint) (*model.RouteResult, error) {
	originKey := origin.Key()
	destinationKey := destination.Key()
	if originKey == "" || destinationKey == "" {
		return nil, fmt.Errorf("waypoint without place id or location")
	}
	memoryKey := "route:" + originKey + ":" + destinationKey

	// in-process cache
	service.mu.Lock()
	entry, ok := service.memory[memoryKey]
	service.mu.Unlock()
	if ok && service.now().Before(entry.expires) {
		route := entry.route
		return &route, nil
	}

	// persisted cache, place-ID pairs only
	if origin.PlaceID != "" && destination.PlaceID != "" && service.cacheDAO != nil {
		cached, err := service.cacheDAO.GetRoute(origin.PlaceID, destination.PlaceID, service.now())
		if err != nil {
			log.Println("Route cache lookup failed: ", err)
		} else if cached != nil {
			service.remember(memoryKey, *cached)
			return cached, nil
		}
	}

	route, err := service.callDirectionsApi(originKey, destinationKey)
	if err != nil {
		return nil, err
	}

	service.remember(memoryKey, *route)
	if origin.PlaceID != "" && destination.PlaceID != "" && service.cacheDAO != nil {
		err = service.cacheDAO.PutRoute(origin.PlaceID, destination.PlaceID, *route, service.now())
		if err != nil {
			log.Println("Route cache store failed: ", err)
		}
	}

	return route, nil
}

func (service *RouteService) remember(memoryKey string, route model.RouteResult) {
	service.mu.Lock()
	service.memory[memoryKey] = cachedRoute{route: route, expires: service.now().Add(memoryCacheTTL)}
	service.mu.Unlock()
}

func (service *RouteService) callDirectionsApi(originKey, destinationKey string) (*model.RouteResult, error) {
	params := url.Values{}
	params.Add("origin", originKey)
	params.Add("destination", destinationKey)
	params.Add("mode", "driving")
	params.Add("key", googleApiKey)

	fullURL := fmt.Sprintf("%s?%s", directionsApiURL, params.Encode())

	start := time.Now()

	resp, err := httpClient.Get(fullURL)
	if err != nil {
		log.Println("error creating the request: ", err)
		return nil, err
	}
	defer func() {
		err = resp.Body.Close()
		if err != nil {
			log.Println("Error closing response body:", err)
		}
	}()

	elapsed := time.Since(start)
	log.Println("CALL Google Maps Directions API took: ", elapsed)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Println("error reading the body: ", err)
		return nil, err
	}

	// check response status code
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, string(body))
	}

	var response DirectionsResponse
	err = json.Unmarshal(body, &response)
	if err != nil {
		log.Println("error decoding JSON: ", err)
		return nil, err
	}

	if response.Status != "OK" ||
		len(response.Routes) == 0 ||
		len(response.Routes[0].Legs) == 0 ||
		response.Routes[0].Legs[0].Distance == nil ||
		response.Routes[0].Legs[0].Duration == nil {
		log.Println("Missing data in the response")
		return nil, fmt.Errorf("missing data in response")
	}

	leg := response.Routes[0].Legs[0]
	route := model.RouteResult{
		DurationMin: leg.Duration.Value / 60,
		DistanceKm:  float64(leg.Distance.Value) / 1000.0,
	}
	if response.Routes[0].OverviewPolyline != nil {
		route.Polyline = response.Routes[0].OverviewPolyline.Points
	}

	return &route, nil
}

// PlaceResult is one hit of a text search.
type PlaceResult struct {
	PlaceID          string          `json:"place_id"`
	Name             string          `json:"name"`
	FormattedAddress string          `json:"formatted_address"`
	Location         *model.Location `json:"location"`
	Types            []string        `json:"types"`
	Rating           float64         `json:"rating"`
}

// SearchPlaces proxies the Places Text Search API so the key never reaches
// the client. Failures surface as an empty result list with an error.
func (service *RouteService) SearchPlaces(query, location string, radius int) ([]PlaceResult, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("key", googleApiKey)
	if location != "" {
		params.Add("location", location)
	}
	if radius > 0 {
		params.Add("radius", fmt.Sprintf("%d", radius))
	}

	fullURL := fmt.Sprintf("%s/textsearch/json?%s", placesApiURL, params.Encode())

	resp, err := httpClient.Get(fullURL)
	if err != nil {
		log.Println("error creating the request: ", err)
		return nil, err
	}
	defer func() {
		err = resp.Body.Close()
		if err != nil {
			log.Println("Error closing response body:", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Println("error reading the body: ", err)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, string(body))
	}

	var response PlacesResponse
	err = json.Unmarshal(body, &response)
	if err != nil {
		log.Println("error decoding JSON: ", err)
		return nil, err
	}

	if response.Status != "OK" {
		return []PlaceResult{}, nil
	}

	results := make([]PlaceResult, 0, len(response.Results))
	for _, place := range response.Results {
		result := PlaceResult{
			PlaceID:          place.PlaceID,
			Name:             place.Name,
			FormattedAddress: place.FormattedAddress,
			Types:            place.Types,
			Rating:           place.Rating,
		}
		if place.Geometry != nil && place.Geometry.Location != nil {
			result.Location = &model.Location{
				Lat: place.Geometry.Location.Lat,
				Lng: place.Geometry.Location.Lng,
			}
		}
		results = append(results, result)
	}

	return results, nil
}
