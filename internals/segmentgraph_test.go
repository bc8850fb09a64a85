package internals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner-server/model"
)

func floatPtr(v float64) *float64 {
	return &v
}

func locatedEvent(id, day int, order int64) model.Event {
	return model.Event{
		EventID:  id,
		Day:      intPtr(day),
		DayOrder: decimal.NewFromInt(order),
		Lat:      floatPtr(37.5 + float64(id)*0.01),
		Lng:      floatPtr(127.0 + float64(id)*0.01),
	}
}

func unlocatedEvent(id, day int, order int64) model.Event {
	return model.Event{
		EventID:  id,
		Day:      intPtr(day),
		DayOrder: decimal.NewFromInt(order),
	}
}

func TestRequiredPairsSingleDay(t *testing.T) {
	events := []model.Event{
		locatedEvent(1, 1, 10),
		locatedEvent(2, 1, 20),
		locatedEvent(3, 1, 30),
	}

	pairs := RequiredPairs(events)

	assert.Equal(t, []PairKey{
		{FromEventID: TripStartID, ToEventID: 1},
		{FromEventID: 1, ToEventID: 2},
		{FromEventID: 2, ToEventID: 3},
	}, pairs)
}

func TestRequiredPairsSkipsUnlocatedWithoutBreakingChain(t *testing.T) {
	// the unlocated event in the middle neither starts nor ends a pair,
	// its neighbors connect directly
	events := []model.Event{
		locatedEvent(1, 1, 10),
		unlocatedEvent(2, 1, 20),
		locatedEvent(3, 1, 30),
	}

	pairs := RequiredPairs(events)

	assert.Equal(t, []PairKey{
		{FromEventID: TripStartID, ToEventID: 1},
		{FromEventID: 1, ToEventID: 3},
	}, pairs)
}

func TestRequiredPairsDaysAreIndependent(t *testing.T) {
	events := []model.Event{
		locatedEvent(1, 1, 10),
		locatedEvent(2, 1, 20),
		locatedEvent(3, 2, 10),
		locatedEvent(4, 2, 20),
	}

	pairs := RequiredPairs(events)

	// no pair bridges day 1 and day 2, and only day 1 connects to the
	// trip start
	assert.Equal(t, []PairKey{
		{FromEventID: TripStartID, ToEventID: 1},
		{FromEventID: 1, ToEventID: 2},
		{FromEventID: 3, ToEventID: 4},
	}, pairs)
}

func TestRequiredPairsStartPairOnlyForDayOne(t *testing.T) {
	events := []model.Event{
		locatedEvent(5, 2, 10),
		locatedEvent(6, 2, 20),
	}

	pairs := RequiredPairs(events)

	assert.Equal(t, []PairKey{{FromEventID: 5, ToEventID: 6}}, pairs)
}

func TestRequiredPairsIgnoresUnscheduled(t *testing.T) {
	unscheduled := locatedEvent(9, 1, 10)
	unscheduled.Day = nil

	pairs := RequiredPairs([]model.Event{unscheduled})

	assert.Empty(t, pairs)
}

func TestDiffPairs(t *testing.T) {
	segA := model.RouteSegment{SegmentID: 1, FromEventID: intPtr(1), ToEventID: 2}
	segB := model.RouteSegment{SegmentID: 2, FromEventID: intPtr(2), ToEventID: 3}
	existing := SegmentsByPair([]model.RouteSegment{segA, segB})

	required := []PairKey{
		{FromEventID: 1, ToEventID: 2},
		{FromEventID: 2, ToEventID: 4},
	}

	diff := DiffPairs(existing, required)

	assert.Equal(t, []PairKey{{FromEventID: 2, ToEventID: 3}}, diff.ToDelete)
	assert.Equal(t, []PairKey{{FromEventID: 2, ToEventID: 4}}, diff.ToCreate)
	assert.Equal(t, []PairKey{{FromEventID: 1, ToEventID: 2}}, diff.ToReuse)
}

func TestDiffPairsEmptyWhenUnchanged(t *testing.T) {
	segment := model.RouteSegment{SegmentID: 1, ToEventID: 1}
	existing := SegmentsByPair([]model.RouteSegment{segment})
	required := []PairKey{{FromEventID: TripStartID, ToEventID: 1}}

	diff := DiffPairs(existing, required)

	assert.Empty(t, diff.ToDelete)
	assert.Empty(t, diff.ToCreate)
	assert.Equal(t, required, diff.ToReuse)
}

func TestSegmentsByPairTripStart(t *testing.T) {
	segment := model.RouteSegment{SegmentID: 7, FromEventID: nil, ToEventID: 3}

	byPair := SegmentsByPair([]model.RouteSegment{segment})

	got, ok := byPair[PairKey{FromEventID: TripStartID, ToEventID: 3}]
	require.True(t, ok)
	assert.Equal(t, 7, got.SegmentID)
}
