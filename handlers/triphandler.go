package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trip-planner-server/db"
	"trip-planner-server/internals"
	"trip-planner-server/model"
)

type TripCreateRequest struct {
	Title     string  `json:"title"`
	City      string  `json:"city"`
	StartLat  float64 `json:"startLat"`
	StartLng  float64 `json:"startLng"`
	StartDate string  `json:"startDate"`
	TotalDays int     `json:"totalDays"`
}

type TripDetailsResponse struct {
	Trip     model.Trip           `json:"trip"`
	Events   []model.Event        `json:"events"`
	Segments []model.RouteSegment `json:"segments"`
}

func HandleTrips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		createTrip(w, r)
	default:
		log.Println("Method not supported")
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}
}

// HandleTripResources dispatches everything below /trips/{id}.
// Paths handled:
//
//	/trips/{id}
//	/trips/{id}/events
//	/trips/{id}/events/reorder
//	/trips/{id}/events/{eventId}
//	/trips/{id}/events/{eventId}/route
//	/trips/{id}/routes/calculate
//	/trips/{id}/routes/optimize
//	/trips/{id}/routes/optimize/apply
func HandleTripResources(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/trips/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Missing trip id", http.StatusBadRequest)
		return
	}

	tripID, err := strconv.Atoi(parts[0])
	if err != nil {
		log.Println("Wrong trip id: ", err)
		http.Error(w, "Wrong trip id", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1:
		handleSingleTrip(w, r, tripID)
	case parts[1] == "events":
		handleTripEvents(w, r, tripID, parts[2:])
	case parts[1] == "routes":
		handleTripRoutes(w, r, tripID, parts[2:])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func createTrip(w http.ResponseWriter, r *http.Request) {
	var request TripCreateRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		log.Println("Error decoding JSON: ", err)
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if request.Title == "" {
		http.Error(w, "Missing title", http.StatusBadRequest)
		return
	}

	trip := model.Trip{
		Title:     request.Title,
		City:      request.City,
		StartLat:  request.StartLat,
		StartLng:  request.StartLng,
		TotalDays: request.TotalDays,
	}
	if request.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", request.StartDate)
		if err != nil {
			log.Println("Wrong date format: ", err)
			http.Error(w, "Wrong date format", http.StatusBadRequest)
			return
		}
		trip.StartDate = &startDate
	}

	tripDAO := db.NewTripDAO(db.GetDB())
	err = tripDAO.CreateTrip(&trip)
	if err != nil {
		log.Println("Error creating trip: ", err)
		http.Error(w, "Error creating trip", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, trip)
}

func handleSingleTrip(w http.ResponseWriter, r *http.Request, tripID int) {
	switch r.Method {
	case "GET":
		getTripDetails(w, r, tripID)
	case "DELETE":
		deleteTrip(w, r, tripID)
	default:
		log.Println("Method not supported")
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
	}
}

func getTripDetails(w http.ResponseWriter, _ *http.Request, tripID int) {
	tripDAO := db.NewTripDAO(db.GetDB())
	trip, err := tripDAO.GetTripByID(tripID)
	if err != nil {
		respondNotFoundOrError(w, err, "Trip not found", "Error loading trip")
		return
	}

	eventDAO := db.NewEventDAO(db.GetDB())
	events, err := eventDAO.GetEventsByTrip(tripID)
	if err != nil {
		log.Println("Error loading events: ", err)
		http.Error(w, "Error loading events", http.StatusInternalServerError)
		return
	}

	segmentDAO := db.NewSegmentDAO(db.GetDB())
	segments, err := segmentDAO.GetSegmentsByTrip(tripID)
	if err != nil {
		log.Println("Error loading segments: ", err)
		http.Error(w, "Error loading segments", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, TripDetailsResponse{Trip: trip, Events: events, Segments: segments})
}

func deleteTrip(w http.ResponseWriter, _ *http.Request, tripID int) {
	tripDAO := db.NewTripDAO(db.GetDB())
	err := tripDAO.DeleteTrip(tripID)
	if err != nil {
		respondNotFoundOrError(w, err, "Trip not found", "Error deleting trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		log.Println("Error encoding JSON: ", err)
	}
}

func respondNotFoundOrError(w http.ResponseWriter, err error, notFoundMessage, errorMessage string) {
	var validationErr *internals.ValidationError
	switch {
	case errors.Is(err, internals.ErrNotFound):
		log.Println(notFoundMessage)
		http.Error(w, notFoundMessage, http.StatusNotFound)
	case errors.As(err, &validationErr):
		log.Println("Validation failed: ", validationErr)
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	default:
		log.Println(errorMessage, ": ", err)
		http.Error(w, errorMessage, http.StatusInternalServerError)
	}
}
