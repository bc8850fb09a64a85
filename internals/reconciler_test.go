package internals

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner-server/model"
)

type fakeEventSource struct {
	events []model.Event
}

func (f *fakeEventSource) GetEventsByTrip(int) ([]model.Event, error) {
	return f.events, nil
}

type fakeSegmentStore struct {
	mu       sync.Mutex
	nextID   int
	segments map[int]model.RouteSegment
}

func newFakeSegmentStore() *fakeSegmentStore {
	return &fakeSegmentStore{segments: make(map[int]model.RouteSegment)}
}

func (f *fakeSegmentStore) GetSegmentsByTrip(int) ([]model.RouteSegment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.RouteSegment, 0, len(f.segments))
	for _, segment := range f.segments {
		out = append(out, segment)
	}
	return out, nil
}

func (f *fakeSegmentStore) CreateSegment(segment *model.RouteSegment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	segment.SegmentID = f.nextID
	f.segments[segment.SegmentID] = *segment
	return nil
}

func (f *fakeSegmentStore) DeleteSegmentsByID(segmentIDs []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range segmentIDs {
		delete(f.segments, id)
	}
	return nil
}

func (f *fakeSegmentStore) pairs(t *testing.T) map[PairKey]model.RouteSegment {
	t.Helper()
	segments, err := f.GetSegmentsByTrip(0)
	require.NoError(t, err)
	return SegmentsByPair(segments)
}

type fakeTripStore struct {
	mu          sync.Mutex
	durationMin int
	distanceKm  float64
	updates     int
}

func (f *fakeTripStore) UpdateRouteSummary(_ int, totalDurationMin int, totalDistanceKm float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durationMin = totalDurationMin
	f.distanceKm = totalDistanceKm
	f.updates++
	return nil
}

type fakeResolver struct {
	mu       sync.Mutex
	calls    int
	failFor  map[string]bool
	duration int
	distance float64
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{failFor: make(map[string]bool), duration: 20, distance: 5.2}
}

func (f *fakeResolver) Resolve(_, destination model.Waypoint) (*model.RouteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failFor[destination.PlaceID] {
		return nil, errors.New("provider unavailable")
	}
	return &model.RouteResult{
		DurationMin: f.duration,
		DistanceKm:  f.distance,
		Polyline:    "poly",
	}, nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testTrip() model.Trip {
	return model.Trip{TripID: 1, StartLat: 37.5665, StartLng: 126.978, TotalDays: 1}
}

func plannedEvent(id int, order int64, placeID string) model.Event {
	event := locatedEvent(id, 1, order)
	event.PlaceID = placeID
	return event
}

func newTestReconciler(events *fakeEventSource, segments *fakeSegmentStore, trips *fakeTripStore, resolver *fakeResolver) *Reconciler {
	return NewReconciler(events, segments, trips, resolver)
}

func TestReconcileBuildsSegmentsIncrementally(t *testing.T) {
	events := &fakeEventSource{events: []model.Event{plannedEvent(1, 10, "p1")}}
	segments := newFakeSegmentStore()
	trips := &fakeTripStore{}
	resolver := newFakeResolver()
	reconciler := newTestReconciler(events, segments, trips, resolver)

	// first event: exactly the start leg
	got, err := reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)
	require.Len(t, got, 1)
	byPair := segments.pairs(t)
	assert.Contains(t, byPair, PairKey{FromEventID: TripStartID, ToEventID: 1})
	assert.Equal(t, 20, trips.durationMin)
	assert.InDelta(t, 5.2, trips.distanceKm, 1e-9)

	// second event appended: the start leg survives, one new leg appears
	events.events = append(events.events, plannedEvent(2, 20, "p2"))
	callsBefore := resolver.callCount()

	got, err = reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)
	require.Len(t, got, 2)
	byPair = segments.pairs(t)
	assert.Contains(t, byPair, PairKey{FromEventID: TripStartID, ToEventID: 1})
	assert.Contains(t, byPair, PairKey{FromEventID: 1, ToEventID: 2})
	assert.Equal(t, 1, resolver.callCount()-callsBefore)
	assert.Equal(t, 40, trips.durationMin)
	assert.InDelta(t, 10.4, trips.distanceKm, 1e-9)
}

func TestReconcileIsIdempotent(t *testing.T) {
	events := &fakeEventSource{events: []model.Event{
		plannedEvent(1, 10, "p1"),
		plannedEvent(2, 20, "p2"),
	}}
	segments := newFakeSegmentStore()
	trips := &fakeTripStore{}
	resolver := newFakeResolver()
	reconciler := newTestReconciler(events, segments, trips, resolver)

	first, err := reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)
	callsAfterFirst := resolver.callCount()

	second, err := reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)

	// no new provider calls and the same persisted set
	assert.Equal(t, callsAfterFirst, resolver.callCount())
	assert.ElementsMatch(t, first, second)
}

func TestReconcileRemovesStaleSegmentsOnDelete(t *testing.T) {
	events := &fakeEventSource{events: []model.Event{
		plannedEvent(1, 10, "p1"),
		plannedEvent(2, 20, "p2"),
	}}
	segments := newFakeSegmentStore()
	trips := &fakeTripStore{}
	resolver := newFakeResolver()
	reconciler := newTestReconciler(events, segments, trips, resolver)

	_, err := reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)

	// delete the first event: both of its legs disappear, the second
	// event now connects straight to the start
	events.events = events.events[1:]

	got, err := reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)

	require.Len(t, got, 1)
	byPair := segments.pairs(t)
	assert.Contains(t, byPair, PairKey{FromEventID: TripStartID, ToEventID: 2})
	assert.Equal(t, 20, trips.durationMin)
}

func TestReconcileSkipsFailedPairAndHealsLater(t *testing.T) {
	events := &fakeEventSource{events: []model.Event{
		plannedEvent(1, 10, "p1"),
		plannedEvent(2, 20, "p2"),
	}}
	segments := newFakeSegmentStore()
	trips := &fakeTripStore{}
	resolver := newFakeResolver()
	resolver.failFor["p2"] = true
	reconciler := newTestReconciler(events, segments, trips, resolver)

	// the failing pair is skipped, the rest of the batch still lands
	got, err := reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)
	require.Len(t, got, 1)
	byPair := segments.pairs(t)
	assert.Contains(t, byPair, PairKey{FromEventID: TripStartID, ToEventID: 1})
	assert.NotContains(t, byPair, PairKey{FromEventID: 1, ToEventID: 2})
	assert.Equal(t, 20, trips.durationMin)

	// provider recovers: the next reconciliation fills the gap without
	// any special retry
	resolver.mu.Lock()
	resolver.failFor["p2"] = false
	resolver.mu.Unlock()

	got, err = reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Contains(t, segments.pairs(t), PairKey{FromEventID: 1, ToEventID: 2})
	assert.Equal(t, 40, trips.durationMin)
}

func TestReconcileParallelMatchesSequential(t *testing.T) {
	buildEvents := func() []model.Event {
		var out []model.Event
		for i := 1; i <= 8; i++ {
			out = append(out, plannedEvent(i, int64(i*10), ""))
		}
		return out
	}

	sequentialStore := newFakeSegmentStore()
	sequentialTrips := &fakeTripStore{}
	_, err := newTestReconciler(
		&fakeEventSource{events: buildEvents()}, sequentialStore, sequentialTrips, newFakeResolver(),
	).Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)

	parallelStore := newFakeSegmentStore()
	parallelTrips := &fakeTripStore{}
	_, err = newTestReconciler(
		&fakeEventSource{events: buildEvents()}, parallelStore, parallelTrips, newFakeResolver(),
	).Reconcile(testTrip(), ModeParallel)
	require.NoError(t, err)

	sequentialPairs := sequentialStore.pairs(t)
	parallelPairs := parallelStore.pairs(t)
	require.Equal(t, len(sequentialPairs), len(parallelPairs))
	for pair := range sequentialPairs {
		assert.Contains(t, parallelPairs, pair)
	}
	assert.Equal(t, sequentialTrips.durationMin, parallelTrips.durationMin)
	assert.InDelta(t, sequentialTrips.distanceKm, parallelTrips.distanceKm, 1e-9)
}

func TestReconcileSkipsUnlocatedDestinations(t *testing.T) {
	withoutLocation := model.Event{EventID: 2, Day: intPtr(1), DayOrder: decimal.NewFromInt(20)}
	events := &fakeEventSource{events: []model.Event{
		plannedEvent(1, 10, "p1"),
		withoutLocation,
		plannedEvent(3, 30, "p3"),
	}}
	segments := newFakeSegmentStore()
	trips := &fakeTripStore{}
	resolver := newFakeResolver()
	reconciler := newTestReconciler(events, segments, trips, resolver)

	got, err := reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)

	// the unlocated event has no legs at all, its neighbors connect
	require.Len(t, got, 2)
	byPair := segments.pairs(t)
	assert.Contains(t, byPair, PairKey{FromEventID: TripStartID, ToEventID: 1})
	assert.Contains(t, byPair, PairKey{FromEventID: 1, ToEventID: 3})
}

func TestReconcileSummaryCoversAllSegments(t *testing.T) {
	events := &fakeEventSource{events: []model.Event{
		plannedEvent(1, 10, "p1"),
		plannedEvent(2, 20, "p2"),
		plannedEvent(3, 30, "p3"),
	}}
	segments := newFakeSegmentStore()
	trips := &fakeTripStore{}
	resolver := newFakeResolver()
	reconciler := newTestReconciler(events, segments, trips, resolver)

	got, err := reconciler.Reconcile(testTrip(), ModeSequential)
	require.NoError(t, err)
	require.Len(t, got, 3)

	totalDuration := 0
	totalDistance := 0.0
	for _, segment := range got {
		totalDuration += segment.DurationMin
		totalDistance += segment.DistanceKm
	}
	assert.Equal(t, totalDuration, trips.durationMin)
	assert.InDelta(t, totalDistance, trips.distanceKm, 1e-9)
	assert.Equal(t, 1, trips.updates)
}
