package internals

import (
	"sort"

	"trip-planner-server/model"
)

// TripStartID is the FromEventID value that marks "from the trip's start
// location" in a pair key. Event IDs are positive, so 0 is free.
const TripStartID = 0

// PairKey identifies a directed travel leg by its endpoints.
type PairKey struct {
	FromEventID int
	ToEventID   int
}

func pairKeyOf(segment model.RouteSegment) PairKey {
	from := TripStartID
	if segment.FromEventID != nil {
		from = *segment.FromEventID
	}
	return PairKey{FromEventID: from, ToEventID: segment.ToEventID}
}

// SegmentsByPair indexes a trip's segments by their pair identity.
func SegmentsByPair(segments []model.RouteSegment) map[PairKey]model.RouteSegment {
	byPair := make(map[PairKey]model.RouteSegment, len(segments))
	for _, segment := range segments {
		byPair[pairKeyOf(segment)] = segment
	}
	return byPair
}

// RequiredPairs derives the adjacencies that need a travel segment from the
// events in their current order (sorted by day, then day key).
//
// Each day is an independent chain: the last event of one day is never
// connected to the first event of the next. Events without a location are
// skipped without breaking the chain, so the next located event follows the
// previous located one. Day 1's first located event additionally gets a leg
// from the trip start.
func RequiredPairs(events []model.Event) []PairKey {
	located := make(map[int][]int)
	var days []int
	for i := range events {
		if events[i].Day == nil || events[i].Location() == nil {
			continue
		}
		day := *events[i].Day
		if _, seen := located[day]; !seen {
			days = append(days, day)
		}
		located[day] = append(located[day], events[i].EventID)
	}
	sort.Ints(days)

	var pairs []PairKey
	for _, day := range days {
		ids := located[day]
		if day == 1 {
			pairs = append(pairs, PairKey{FromEventID: TripStartID, ToEventID: ids[0]})
		}
		for i := 0; i+1 < len(ids); i++ {
			pairs = append(pairs, PairKey{FromEventID: ids[i], ToEventID: ids[i+1]})
		}
	}
	return pairs
}

// PairDiff classifies every existing and required pair.
type PairDiff struct {
	ToDelete []PairKey
	ToCreate []PairKey
	ToReuse  []PairKey
}

// DiffPairs computes the set difference between the pairs that currently
// have a segment and the pairs the ordering requires. ToCreate keeps the
// required order; ToDelete and ToReuse are sorted for stable output.
func DiffPairs(existing map[PairKey]model.RouteSegment, required []PairKey) PairDiff {
	requiredSet := make(map[PairKey]bool, len(required))
	var diff PairDiff
	for _, pair := range required {
		requiredSet[pair] = true
	}
	for _, pair := range required {
		if _, ok := existing[pair]; ok {
			diff.ToReuse = append(diff.ToReuse, pair)
		} else {
			diff.ToCreate = append(diff.ToCreate, pair)
		}
	}
	for pair := range existing {
		if !requiredSet[pair] {
			diff.ToDelete = append(diff.ToDelete, pair)
		}
	}
	sortPairs(diff.ToDelete)
	sortPairs(diff.ToReuse)
	return diff
}

func sortPairs(pairs []PairKey) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].FromEventID != pairs[j].FromEventID {
			return pairs[i].FromEventID < pairs[j].FromEventID
		}
		return pairs[i].ToEventID < pairs[j].ToEventID
	})
}
