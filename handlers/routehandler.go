package handlers

import (
	"encoding/json"
	"log"
	"math"
	"net/http"

	"github.com/shopspring/decimal"

	"trip-planner-server/db"
	"trip-planner-server/internals"
	"trip-planner-server/model"
)

// duration estimate for straight-line distances, minutes per km
const estimatedMinPerKm = 3.0

type RouteCalculateRequest struct {
	StartLocation model.Location `json:"startLocation"`
	Places        []struct {
		PlaceID string  `json:"placeId"`
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
	} `json:"places"`
}

type CalculatedRoute struct {
	FromPlaceID string  `json:"fromPlaceId"`
	ToPlaceID   string  `json:"toPlaceId"`
	DurationMin int     `json:"durationMin"`
	DistanceKm  float64 `json:"distanceKm"`
	Polyline    string  `json:"polyline"`
}

type RouteCalculateResponse struct {
	Routes  []CalculatedRoute  `json:"routes"`
	Summary model.RouteSummary `json:"summary"`
}

type OptimizeRequest struct {
	StartLocation model.Location         `json:"startLocation"`
	Places        []internals.RoutePoint `json:"places"`
	Iterations    int                    `json:"iterations"`
}

type OptimizedPlace struct {
	ID      int     `json:"id"`
	PlaceID string  `json:"placeId"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Order   float64 `json:"order"`
}

type RouteEstimate struct {
	TotalDurationMin int     `json:"totalDurationMin"`
	TotalDistanceKm  float64 `json:"totalDistanceKm"`
}

type OptimizeResponse struct {
	Original  RouteEstimate `json:"original"`
	Optimized struct {
		Places           []OptimizedPlace `json:"places"`
		TotalDurationMin int              `json:"totalDurationMin"`
		TotalDistanceKm  float64          `json:"totalDistanceKm"`
	} `json:"optimized"`
	Improvement struct {
		DurationPercent int `json:"durationPercent"`
		DistancePercent int `json:"distancePercent"`
	} `json:"improvement"`
}

type OptimizeApplyRequest struct {
	Events []struct {
		ID    int             `json:"id"`
		Order decimal.Decimal `json:"order"`
	} `json:"events"`
}

type OptimizeApplyResponse struct {
	Events  []model.Event      `json:"events"`
	Summary model.RouteSummary `json:"routeSummary"`
}

func handleTripRoutes(w http.ResponseWriter, r *http.Request, tripID int, rest []string) {
	if r.Method != "POST" {
		log.Println("Method not supported")
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}
	switch {
	case len(rest) == 1 && rest[0] == "calculate":
		calculateRoutes(w, r, tripID)
	case len(rest) == 1 && rest[0] == "optimize":
		optimizeRoute(w, r, tripID)
	case len(rest) == 2 && rest[0] == "optimize" && rest[1] == "apply":
		applyOptimization(w, r, tripID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// calculateRoutes resolves the chain start -> p1 -> p2 -> ... and returns
// the legs and their totals without persisting anything. The stored summary
// stays owned by the reconciler, which keeps it equal to the persisted
// segments.
func calculateRoutes(w http.ResponseWriter, r *http.Request, tripID int) {
	var request RouteCalculateRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		log.Println("Error decoding JSON: ", err)
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	tripDAO := db.NewTripDAO(db.GetDB())
	_, err = tripDAO.GetTripByID(tripID)
	if err != nil {
		respondNotFoundOrError(w, err, "Trip not found", "Error loading trip")
		return
	}

	routes := make([]CalculatedRoute, 0, len(request.Places))
	totalDuration := 0
	totalDistance := 0.0

	previousKey := "start"
	previous := model.Waypoint{Location: &request.StartLocation}
	for _, place := range request.Places {
		location := model.Location{Lat: place.Lat, Lng: place.Lng}
		destination := model.Waypoint{PlaceID: place.PlaceID, Location: &location}

		route, err := routeService.Resolve(previous, destination)
		if err == nil && route != nil {
			routes = append(routes, CalculatedRoute{
				FromPlaceID: previousKey,
				ToPlaceID:   place.PlaceID,
				DurationMin: route.DurationMin,
				DistanceKm:  route.DistanceKm,
				Polyline:    route.Polyline,
			})
			totalDuration += route.DurationMin
			totalDistance += route.DistanceKm
		} else {
			log.Println("Route lookup failed for ", place.PlaceID, ": ", err)
		}

		previousKey = place.PlaceID
		previous = destination
	}

	writeJSON(w, http.StatusOK, RouteCalculateResponse{
		Routes: routes,
		Summary: model.RouteSummary{
			TotalDurationMin: totalDuration,
			TotalDistanceKm:  math.Round(totalDistance*100) / 100,
		},
	})
}

// optimizeRoute proposes a better visiting order over straight-line
// distances. Durations are rough estimates; the real segments come from the
// reconciler once an order is applied.
func optimizeRoute(w http.ResponseWriter, r *http.Request, tripID int) {
	var request OptimizeRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		log.Println("Error decoding JSON: ", err)
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	tripDAO := db.NewTripDAO(db.GetDB())
	_, err = tripDAO.GetTripByID(tripID)
	if err != nil {
		respondNotFoundOrError(w, err, "Trip not found", "Error loading trip")
		return
	}

	if len(request.Places) > internals.MaxOptimizePoints {
		log.Println("Too many places to optimize: ", len(request.Places))
		http.Error(w, "At most 10 places can be optimized", http.StatusBadRequest)
		return
	}

	originalDistance := internals.RouteDistance(request.StartLocation, request.Places)
	optimized := internals.OptimizeRoute(request.StartLocation, request.Places, request.Iterations)
	optimizedDistance := internals.RouteDistance(request.StartLocation, optimized)

	originalDuration := int(originalDistance * estimatedMinPerKm)
	optimizedDuration := int(optimizedDistance * estimatedMinPerKm)

	distanceImprovement := 0
	if originalDistance > 0 {
		distanceImprovement = int(((originalDistance - optimizedDistance) / originalDistance) * 100)
	}
	durationImprovement := 0
	if originalDuration > 0 {
		durationImprovement = int(float64(originalDuration-optimizedDuration) / float64(originalDuration) * 100)
	}

	var response OptimizeResponse
	response.Original = RouteEstimate{
		TotalDurationMin: originalDuration,
		TotalDistanceKm:  math.Round(originalDistance*100) / 100,
	}
	response.Optimized.TotalDurationMin = optimizedDuration
	response.Optimized.TotalDistanceKm = math.Round(optimizedDistance*100) / 100
	response.Optimized.Places = make([]OptimizedPlace, 0, len(optimized))
	for i, place := range optimized {
		response.Optimized.Places = append(response.Optimized.Places, OptimizedPlace{
			ID:      place.EventID,
			PlaceID: place.PlaceID,
			Name:    place.Name,
			Lat:     place.Lat,
			Lng:     place.Lng,
			Order:   float64(i+1) * 10,
		})
	}
	if distanceImprovement > 0 {
		response.Improvement.DistancePercent = distanceImprovement
	}
	if durationImprovement > 0 {
		response.Improvement.DurationPercent = durationImprovement
	}

	writeJSON(w, http.StatusOK, response)
}

// applyOptimization feeds the proposed order into the normal reorder path,
// which recomputes global order, rebalances, and reconciles the segments.
func applyOptimization(w http.ResponseWriter, r *http.Request, tripID int) {
	var request OptimizeApplyRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		log.Println("Error decoding JSON: ", err)
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if len(request.Events) == 0 {
		http.Error(w, "Missing events", http.StatusBadRequest)
		return
	}

	tripDAO := db.NewTripDAO(db.GetDB())
	trip, err := tripDAO.GetTripByID(tripID)
	if err != nil {
		respondNotFoundOrError(w, err, "Trip not found", "Error loading trip")
		return
	}

	changes := make([]db.EventOrderChange, 0, len(request.Events))
	for _, entry := range request.Events {
		changes = append(changes, db.EventOrderChange{EventID: entry.ID, DayOrder: entry.Order})
	}

	eventDAO := db.NewEventDAO(db.GetDB())
	err = eventDAO.ReorderEvents(tripID, changes)
	if err != nil {
		respondNotFoundOrError(w, err, "Event not found in trip", "Error applying optimization")
		return
	}

	_, err = newReconciler().Reconcile(trip, internals.ModeParallel)
	if err != nil {
		log.Println("Segment reconciliation failed after optimization: ", err)
	}

	events, err := eventDAO.GetEventsByTrip(tripID)
	if err != nil {
		log.Println("Error loading events: ", err)
		http.Error(w, "Error loading events", http.StatusInternalServerError)
		return
	}
	trip, err = tripDAO.GetTripByID(tripID)
	if err != nil {
		respondNotFoundOrError(w, err, "Trip not found", "Error loading trip")
		return
	}

	writeJSON(w, http.StatusOK, OptimizeApplyResponse{
		Events:  events,
		Summary: trip.RouteSummary(),
	})
}
