package internals

import (
	"fmt"
	"log"
	"sync"

	"trip-planner-server/model"
)

// ReconcileMode selects how the missing segments are created.
//
// Sequential creation is required when the batch must observe writes from
// the same request (an event created moments ago may not be visible to
// other connections yet). Parallel creation is safe for pure reorders over
// pre-existing events and fans the provider calls out to a bounded pool.
type ReconcileMode int

const (
	ModeSequential ReconcileMode = iota
	ModeParallel
)

// maxParallelResolves bounds the provider fan-out in parallel mode.
const maxParallelResolves = 5

// EventSource yields a trip's events sorted by (day, day key).
type EventSource interface {
	GetEventsByTrip(tripID int) ([]model.Event, error)
}

// SegmentStore owns the persisted route segments of a trip.
type SegmentStore interface {
	GetSegmentsByTrip(tripID int) ([]model.RouteSegment, error)
	CreateSegment(segment *model.RouteSegment) error
	DeleteSegmentsByID(segmentIDs []int) error
}

// TripSummaryStore persists the recomputed route summary.
type TripSummaryStore interface {
	UpdateRouteSummary(tripID int, totalDurationMin int, totalDistanceKm float64) error
}

// RouteResolver resolves one travel leg, or fails. Caching sits behind this
// interface; the reconciler only sees "got a result" or not.
type RouteResolver interface {
	Resolve(origin, destination model.Waypoint) (*model.RouteResult, error)
}

// Reconciler brings the persisted segment set in line with the current
// event ordering and keeps the trip summary consistent with it.
type Reconciler struct {
	events   EventSource
	segments SegmentStore
	trips    TripSummaryStore
	resolver RouteResolver
}

func NewReconciler(events EventSource, segments SegmentStore, trips TripSummaryStore, resolver RouteResolver) *Reconciler {
	return &Reconciler{
		events:   events,
		segments: segments,
		trips:    trips,
		resolver: resolver,
	}
}

// Reconcile diffs the required adjacencies against the stored segments,
// deletes the stale ones, resolves and creates the missing ones, then
// recomputes the trip summary over everything persisted for the trip.
//
// A failed provider lookup never fails the reconciliation: the pair is
// logged and skipped, and the next reconciliation retries it. Reconciling
// twice without an ordering change is a no-op with zero provider calls.
func (rec *Reconciler) Reconcile(trip model.Trip, mode ReconcileMode) ([]model.RouteSegment, error) {
	events, err := rec.events.GetEventsByTrip(trip.TripID)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	existing, err := rec.segments.GetSegmentsByTrip(trip.TripID)
	if err != nil {
		return nil, fmt.Errorf("loading segments: %w", err)
	}

	diff := DiffPairs(SegmentsByPair(existing), RequiredPairs(events))

	// stale rows go first so a recreated pair never collides
	if len(diff.ToDelete) > 0 {
		byPair := SegmentsByPair(existing)
		deleteIDs := make([]int, 0, len(diff.ToDelete))
		for _, pair := range diff.ToDelete {
			deleteIDs = append(deleteIDs, byPair[pair].SegmentID)
		}
		if err := rec.segments.DeleteSegmentsByID(deleteIDs); err != nil {
			return nil, fmt.Errorf("deleting stale segments: %w", err)
		}
	}

	if len(diff.ToCreate) > 0 {
		eventsByID := make(map[int]model.Event, len(events))
		for _, event := range events {
			eventsByID[event.EventID] = event
		}
		if mode == ModeParallel {
			rec.createSegmentsParallel(trip, diff.ToCreate, eventsByID)
		} else {
			for _, pair := range diff.ToCreate {
				rec.createSegment(trip, pair, eventsByID)
			}
		}
	}

	// summary covers everything persisted, not just the touched pairs
	segments, err := rec.segments.GetSegmentsByTrip(trip.TripID)
	if err != nil {
		return nil, fmt.Errorf("reloading segments: %w", err)
	}
	totalDuration := 0
	totalDistance := 0.0
	for _, segment := range segments {
		totalDuration += segment.DurationMin
		totalDistance += segment.DistanceKm
	}
	if err := rec.trips.UpdateRouteSummary(trip.TripID, totalDuration, totalDistance); err != nil {
		return nil, fmt.Errorf("updating trip summary: %w", err)
	}

	return segments, nil
}

func (rec *Reconciler) createSegmentsParallel(trip model.Trip, pairs []PairKey, eventsByID map[int]model.Event) {
	jobs := make(chan PairKey)
	var wg sync.WaitGroup

	workers := maxParallelResolves
	if len(pairs) < workers {
		workers = len(pairs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range jobs {
				rec.createSegment(trip, pair, eventsByID)
			}
		}()
	}
	for _, pair := range pairs {
		jobs <- pair
	}
	close(jobs)
	wg.Wait()
}

// createSegment resolves one pair and persists the resulting segment.
// Failures are logged and swallowed; the pair stays absent until the next
// reconciliation.
func (rec *Reconciler) createSegment(trip model.Trip, pair PairKey, eventsByID map[int]model.Event) {
	toEvent, ok := eventsByID[pair.ToEventID]
	if !ok || toEvent.Location() == nil {
		return
	}

	var origin model.Waypoint
	var fromEventID *int
	if pair.FromEventID == TripStartID {
		start := trip.StartLocation()
		origin = model.Waypoint{Location: &start}
	} else {
		fromEvent, ok := eventsByID[pair.FromEventID]
		if !ok || fromEvent.Location() == nil {
			return
		}
		origin = model.Waypoint{PlaceID: fromEvent.PlaceID, Location: fromEvent.Location()}
		id := fromEvent.EventID
		fromEventID = &id
	}
	destination := model.Waypoint{PlaceID: toEvent.PlaceID, Location: toEvent.Location()}

	route, err := rec.resolver.Resolve(origin, destination)
	if err != nil || route == nil {
		log.Println("Failed resolving segment", pair, ":", err)
		return
	}

	segment := model.RouteSegment{
		TripID:      trip.TripID,
		FromEventID: fromEventID,
		ToEventID:   toEvent.EventID,
		DurationMin: route.DurationMin,
		DistanceKm:  route.DistanceKm,
		Polyline:    route.Polyline,
		TravelMode:  model.TravelModeDriving,
	}
	if err := rec.segments.CreateSegment(&segment); err != nil {
		log.Println("Failed creating segment", pair, ":", err)
	}
}
