package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"trip-planner-server/db"
	"trip-planner-server/internals"
	"trip-planner-server/model"
)

type EventCreateRequest struct {
	PlaceID           string   `json:"placeId"`
	PlaceName         string   `json:"placeName"`
	Lat               *float64 `json:"lat"`
	Lng               *float64 `json:"lng"`
	Address           string   `json:"address"`
	ActivityType      string   `json:"activityType"`
	CustomTitle       string   `json:"customTitle"`
	Day               *int     `json:"day"`
	StartTime         string   `json:"startTime"`
	DurationMin       *int     `json:"durationMin"`
	Memo              string   `json:"memo"`
	RecalculateRoutes *bool    `json:"recalculateRoutes"`
}

type EventCreateResponse struct {
	Event    model.Event          `json:"event"`
	Segments []model.RouteSegment `json:"segments,omitempty"`
	Summary  *model.RouteSummary  `json:"routeSummary,omitempty"`
}

type EventReorderRequest struct {
	Events []struct {
		ID    int             `json:"id"`
		Order decimal.Decimal `json:"order"`
		Day   *int            `json:"day"`
	} `json:"events"`
	RecalculateRoutes *bool `json:"recalculateRoutes"`
}

type EventReorderResponse struct {
	Events   []model.Event        `json:"events"`
	Segments []model.RouteSegment `json:"segments"`
	Summary  model.RouteSummary   `json:"routeSummary"`
}

type EventRouteUpdateRequest struct {
	TravelMode    *string `json:"travelMode"`
	DepartureTime *string `json:"departureTime"`
}

func handleTripEvents(w http.ResponseWriter, r *http.Request, tripID int, rest []string) {
	switch {
	case len(rest) == 0 || rest[0] == "":
		if r.Method != "POST" {
			log.Println("Method not supported")
			http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
			return
		}
		createEvent(w, r, tripID)
	case rest[0] == "reorder":
		if r.Method != "PATCH" {
			log.Println("Method not supported")
			http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
			return
		}
		reorderEvents(w, r, tripID)
	default:
		eventID, err := strconv.Atoi(rest[0])
		if err != nil {
			log.Println("Wrong event id: ", err)
			http.Error(w, "Wrong event id", http.StatusBadRequest)
			return
		}
		if len(rest) > 1 && rest[1] == "route" {
			if r.Method != "PATCH" {
				log.Println("Method not supported")
				http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
				return
			}
			updateEventRoute(w, r, tripID, eventID)
			return
		}
		switch r.Method {
		case "PATCH", "PUT":
			updateEvent(w, r, tripID, eventID)
		case "DELETE":
			deleteEvent(w, r, tripID, eventID)
		default:
			log.Println("Method not supported")
			http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		}
	}
}

// createEvent appends an event to its day and, unless disabled, reconciles
// the segments right away. The reconciliation runs sequentially so the
// fresh event is visible to the segment writes of the same request.
func createEvent(w http.ResponseWriter, r *http.Request, tripID int) {
	var request EventCreateRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		log.Println("Error decoding JSON: ", err)
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	tripDAO := db.NewTripDAO(db.GetDB())
	trip, err := tripDAO.GetTripByID(tripID)
	if err != nil {
		respondNotFoundOrError(w, err, "Trip not found", "Error loading trip")
		return
	}

	event := model.Event{
		PlaceID:      request.PlaceID,
		PlaceName:    request.PlaceName,
		Lat:          request.Lat,
		Lng:          request.Lng,
		Address:      request.Address,
		ActivityType: request.ActivityType,
		CustomTitle:  request.CustomTitle,
		Day:          request.Day,
		StartTime:    request.StartTime,
		DurationMin:  request.DurationMin,
		Memo:         request.Memo,
	}

	eventDAO := db.NewEventDAO(db.GetDB())
	err = eventDAO.CreateEvent(trip, &event)
	if err != nil {
		log.Println("Error creating event: ", err)
		http.Error(w, "Error creating event", http.StatusInternalServerError)
		return
	}

	response := EventCreateResponse{Event: event}
	if request.RecalculateRoutes == nil || *request.RecalculateRoutes {
		// provider failures stay internal, the create still succeeded
		segments, err := newReconciler().Reconcile(trip, internals.ModeSequential)
		if err != nil {
			log.Println("Segment reconciliation failed after create: ", err)
		} else {
			response.Segments = segments
			trip, err = tripDAO.GetTripByID(tripID)
			if err == nil {
				summary := trip.RouteSummary()
				response.Summary = &summary
			}
		}
	}

	writeJSON(w, http.StatusCreated, response)
}

// reorderEvents applies an atomic ordering batch, then reconciles the
// segments with the parallel strategy (no fresh rows involved, so the
// bounded fan-out is safe).
func reorderEvents(w http.ResponseWriter, r *http.Request, tripID int) {
	var request EventReorderRequest
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
		changes = append(changes, db.EventOrderChange{
			EventID:  entry.ID,
			DayOrder: entry.Order,
			Day:      entry.Day,
		})
	}

	eventDAO := db.NewEventDAO(db.GetDB())
	err = eventDAO.ReorderEvents(tripID, changes)
	if err != nil {
		respondNotFoundOrError(w, err, "Event not found in trip", "Error reordering events")
		return
	}

	var segments []model.RouteSegment
	if request.RecalculateRoutes == nil || *request.RecalculateRoutes {
		segments, err = newReconciler().Reconcile(trip, internals.ModeParallel)
		if err != nil {
			log.Println("Segment reconciliation failed after reorder: ", err)
		}
	}
	if segments == nil {
		segmentDAO := db.NewSegmentDAO(db.GetDB())
		segments, err = segmentDAO.GetSegmentsByTrip(tripID)
		if err != nil {
			log.Println("Error loading segments: ", err)
			http.Error(w, "Error loading segments", http.StatusInternalServerError)
			return
		}
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

	writeJSON(w, http.StatusOK, EventReorderResponse{
		Events:   events,
		Segments: segments,
		Summary:  trip.RouteSummary(),
	})
}

func updateEvent(w http.ResponseWriter, r *http.Request, tripID, eventID int) {
	var fields map[string]interface{}
	err := json.NewDecoder(r.Body).Decode(&fields)
	if err != nil {
		log.Println("Error decoding JSON: ", err)
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	eventDAO := db.NewEventDAO(db.GetDB())
	event, err := eventDAO.UpdateEventFields(tripID, eventID, fields)
	if err != nil {
		respondNotFoundOrError(w, err, "Event not found", "Error updating event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// deleteEvent removes the event and immediately reconciles, so the segments
// touching the event disappear and the bridging leg is recreated.
func deleteEvent(w http.ResponseWriter, _ *http.Request, tripID, eventID int) {
	tripDAO := db.NewTripDAO(db.GetDB())
	trip, err := tripDAO.GetTripByID(tripID)
	if err != nil {
		respondNotFoundOrError(w, err, "Trip not found", "Error loading trip")
		return
	}

	eventDAO := db.NewEventDAO(db.GetDB())
	err = eventDAO.DeleteEvent(tripID, eventID)
	if err != nil {
		respondNotFoundOrError(w, err, "Event not found", "Error deleting event")
		return
	}

	_, err = newReconciler().Reconcile(trip, internals.ModeParallel)
	if err != nil {
		log.Println("Segment reconciliation failed after delete: ", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// updateEventRoute edits the user-owned fields of the segment from this
// event to the next one in the same day.
func updateEventRoute(w http.ResponseWriter, r *http.Request, tripID, eventID int) {
	var request EventRouteUpdateRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		log.Println("Error decoding JSON: ", err)
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	eventDAO := db.NewEventDAO(db.GetDB())
	event, err := eventDAO.GetEventByID(tripID, eventID)
	if err != nil {
		respondNotFoundOrError(w, err, "Event not found", "Error loading event")
		return
	}

	// find the successor within the day
	events, err := eventDAO.GetEventsByTrip(tripID)
	if err != nil {
		log.Println("Error loading events: ", err)
		http.Error(w, "Error loading events", http.StatusInternalServerError)
		return
	}
	var next *model.Event
	for i := range events {
		if events[i].Day == nil || event.Day == nil || *events[i].Day != *event.Day {
			continue
		}
		// segments chain located events only
		if events[i].Location() == nil {
			continue
		}
		if events[i].DayOrder.GreaterThan(event.DayOrder) {
			next = &events[i]
			break
		}
	}
	if next == nil {
		http.Error(w, "No next event in day", http.StatusBadRequest)
		return
	}

	segmentDAO := db.NewSegmentDAO(db.GetDB())
	segment, err := segmentDAO.GetSegmentBetween(tripID, event.EventID, next.EventID)
	if err != nil {
		respondNotFoundOrError(w, err, "No segment between the events", "Error loading segment")
		return
	}

	err = segmentDAO.UpdateSegmentRoute(&segment, request.TravelMode, request.DepartureTime)
	if err != nil {
		respondNotFoundOrError(w, err, "No segment between the events", "Error updating segment")
		return
	}

	writeJSON(w, http.StatusOK, segment)
}
