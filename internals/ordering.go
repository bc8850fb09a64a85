package internals

import (
	"sort"

	"github.com/shopspring/decimal"
	"trip-planner-server/model"
)

// OrderStep is the spacing between freshly appended siblings. Appending at
// the end always leaves a full step of room, so many midpoint insertions
// fit before a rebalance becomes necessary.
var OrderStep = decimal.NewFromInt(10)

// MinOrderGap is the smallest gap between two adjacent day keys that is
// still considered healthy. Anything below triggers a rebalance of the day.
var MinOrderGap = decimal.RequireFromString("0.0001")

// NextAppendKey returns the day key for an event appended at the end of a
// day: last key plus one step, or one step for an empty day.
func NextAppendKey(last *decimal.Decimal) decimal.Decimal {
	if last == nil {
		return OrderStep
	}
	return last.Add(OrderStep)
}

// KeyBetween picks a key strictly between prev and next. With prev nil the
// key lands below next (half of it), with next nil above prev (one step).
// Decimal arithmetic keeps repeated midpoints exact; float64 would
// eventually collapse two neighbors onto the same value.
func KeyBetween(prev, next *decimal.Decimal) decimal.Decimal {
	switch {
	case prev == nil && next == nil:
		return OrderStep
	case prev == nil:
		return next.Div(decimal.NewFromInt(2))
	case next == nil:
		return prev.Add(OrderStep)
	default:
		return prev.Add(*next).Div(decimal.NewFromInt(2))
	}
}

// NeedsRebalance reports whether any adjacent gap in the (ascending) key
// sequence fell below MinOrderGap.
func NeedsRebalance(keys []decimal.Decimal) bool {
	for i := 0; i+1 < len(keys); i++ {
		if keys[i+1].Sub(keys[i]).LessThan(MinOrderGap) {
			return true
		}
	}
	return false
}

// RebalancedKeys returns n evenly spaced keys 10, 20, 30, ... to reassign
// over a day's events in their current relative order.
func RebalancedKeys(n int) []decimal.Decimal {
	keys := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		keys[i] = decimal.NewFromInt(int64(i + 1)).Mul(OrderStep)
	}
	return keys
}

// dayRank maps a nullable day to a sortable value; unscheduled events sort
// after every scheduled day.
func dayRank(day *int) int {
	if day == nil {
		return int(^uint(0) >> 1)
	}
	return *day
}

// RecomputeGlobalOrder stably sorts the events by (day, day key) and
// assigns the 1-based rank as the global order. Pure transform over the
// given slice, idempotent when the ordering is unchanged.
func RecomputeGlobalOrder(events []model.Event) []model.Event {
	sort.SliceStable(events, func(i, j int) bool {
		di, dj := dayRank(events[i].Day), dayRank(events[j].Day)
		if di != dj {
			return di < dj
		}
		return events[i].DayOrder.LessThan(events[j].DayOrder)
	})
	for i := range events {
		events[i].GlobalOrder = i + 1
	}
	return events
}
