package db

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"trip-planner-server/internals"
	"trip-planner-server/model"
)

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{db: db}
}

// EventOrderChange is one entry of a reorder batch: a new day key and
// optionally a new day for the event.
type EventOrderChange struct {
	EventID  int
	DayOrder decimal.Decimal
	Day      *int
}

// eventFieldColumns is the whitelist of externally updatable attributes,
// mapped to their columns. Ordering fields are deliberately absent: they
// only change through CreateEvent and ReorderEvents.
var eventFieldColumns = map[string]string{
	"placeId":      "place_id",
	"placeName":    "place_name",
	"lat":          "lat",
	"lng":          "lng",
	"address":      "address",
	"activityType": "activity_type",
	"customTitle":  "custom_title",
	"day":          "day",
	"startTime":    "start_time",
	"durationMin":  "duration_min",
	"memo":         "memo",
}

// CreateEvent appends the event at the end of its day. The day defaults to
// the trip's total days; the day key is the day's last key plus one step;
// the global order is recomputed from scratch, never trusted from the
// caller.
func (eventDAO *EventDAO) CreateEvent(trip model.Trip, event *model.Event) error {
	// create transaction
	transaction := eventDAO.db.Begin()
	if transaction.Error != nil {
		return transaction.Error
	}

	defer func() {
		if r := recover(); r != nil {
			transaction.Rollback()
			panic(r)
		} else if transaction.Error != nil {
			transaction.Rollback()
		}
	}()

	event.TripID = trip.TripID
	if event.Day == nil {
		day := trip.TotalDays
		if day < 1 {
			day = 1
		}
		event.Day = &day
	}

	// day key = last key in the day + step
	var last model.Event
	result := transaction.
		Where("id_trip = ? AND day = ?", trip.TripID, *event.Day).
		Order("day_order DESC").
		First(&last)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		event.DayOrder = internals.NextAppendKey(nil)
	} else {
		event.DayOrder = internals.NextAppendKey(&last.DayOrder)
	}

	var count int64
	result = transaction.Model(&model.Event{}).Where("id_trip = ?", trip.TripID).Count(&count)
	if result.Error != nil {
		return result.Error
	}
	event.GlobalOrder = int(count) + 1

	result = transaction.Create(event)
	if result.Error != nil {
		return result.Error
	}

	result = transaction.Commit()
	return result.Error
}

// GetEventsByTrip returns the trip's events sorted by (day, day key), with
// unscheduled events last.
func (eventDAO *EventDAO) GetEventsByTrip(tripID int) ([]model.Event, error) {
	var events []model.Event
	result := eventDAO.db.
		Where("id_trip = ?", tripID).
		Order("day ASC NULLS LAST, day_order ASC").
		Find(&events)
	return events, result.Error
}

func (eventDAO *EventDAO) GetEventByID(tripID, eventID int) (model.Event, error) {
	var event model.Event
	result := eventDAO.db.Where("id_event = ? AND id_trip = ?", eventID, tripID).First(&event)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return model.Event{}, internals.ErrNotFound
	}
	return event, result.Error
}

// UpdateEventFields applies a partial update through the field whitelist.
// Unknown attribute names fail validation before anything is written.
// Ordering keys are never touched here.
func (eventDAO *EventDAO) UpdateEventFields(tripID, eventID int, fields map[string]interface{}) (model.Event, error) {
	columns := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		column, ok := eventFieldColumns[name]
		if !ok {
			return model.Event{}, &internals.ValidationError{Field: name, Message: "unknown field"}
		}
		columns[column] = value
	}

	event, err := eventDAO.GetEventByID(tripID, eventID)
	if err != nil {
		return model.Event{}, err
	}

	if len(columns) > 0 {
		result := eventDAO.db.Model(&event).Updates(columns)
		if result.Error != nil {
			return model.Event{}, result.Error
		}
	}

	return eventDAO.GetEventByID(tripID, eventID)
}

// DeleteEvent removes the event and its adjacent segments. The segment set
// is rebuilt by the next reconciliation, which also recreates the leg that
// now bridges the gap.
func (eventDAO *EventDAO) DeleteEvent(tripID, eventID int) error {
	// create transaction
	transaction := eventDAO.db.Begin()
	if transaction.Error != nil {
		return transaction.Error
	}

	defer func() {
		if r := recover(); r != nil {
			transaction.Rollback()
			panic(r)
		} else if transaction.Error != nil {
			transaction.Rollback()
		}
	}()

	result := transaction.
		Where("id_trip = ? AND (id_from_event = ? OR id_to_event = ?)", tripID, eventID, eventID).
		Delete(&model.RouteSegment{})
	if result.Error != nil {
		return result.Error
	}

	result = transaction.Where("id_trip = ?", tripID).Delete(&model.Event{}, eventID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		transaction.Rollback()
		return internals.ErrNotFound
	}

	result = transaction.Commit()
	return result.Error
}

// ReorderEvents applies a batch of ordering changes as one atomic unit.
// Any change referencing an event outside the trip rolls the whole batch
// back. Afterwards the global order is recomputed over the whole trip and
// every affected day is rebalanced if its keys got too dense.
func (eventDAO *EventDAO) ReorderEvents(tripID int, changes []EventOrderChange) error {
	// create transaction
	transaction := eventDAO.db.Begin()
	if transaction.Error != nil {
		return transaction.Error
	}

	defer func() {
		if r := recover(); r != nil {
			transaction.Rollback()
			panic(r)
		} else if transaction.Error != nil {
			transaction.Rollback()
		}
	}()

	affectedDays := make(map[int]bool)
	for _, change := range changes {
		var event model.Event
		result := transaction.Where("id_event = ? AND id_trip = ?", change.EventID, tripID).First(&event)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			transaction.Rollback()
			return internals.ErrNotFound
		}
		if result.Error != nil {
			return result.Error
		}

		event.DayOrder = change.DayOrder
		if change.Day != nil {
			event.Day = change.Day
		}
		if event.Day != nil {
			affectedDays[*event.Day] = true
		}

		result = transaction.Save(&event)
		if result.Error != nil {
			return result.Error
		}
	}

	// recompute global order over the whole trip
	var events []model.Event
	result := transaction.
		Where("id_trip = ?", tripID).
		Order("day ASC NULLS LAST, day_order ASC").
		Find(&events)
	if result.Error != nil {
		return result.Error
	}
	events = internals.RecomputeGlobalOrder(events)
	for i := range events {
		result = transaction.Model(&model.Event{}).
			Where("id_event = ?", events[i].EventID).
			Update("global_order", events[i].GlobalOrder)
		if result.Error != nil {
			return result.Error
		}
	}

	// per-day rebalance check, only for the days the batch touched
	for day := range affectedDays {
		if err := rebalanceDay(transaction, tripID, day); err != nil {
			return err
		}
	}

	result = transaction.Commit()
	return result.Error
}

func rebalanceDay(transaction *gorm.DB, tripID, day int) error {
	var events []model.Event
	result := transaction.
		Where("id_trip = ? AND day = ?", tripID, day).
		Order("day_order ASC").
		Find(&events)
	if result.Error != nil {
		return result.Error
	}
	if len(events) < 2 {
		return nil
	}

	keys := make([]decimal.Decimal, len(events))
	for i := range events {
		keys[i] = events[i].DayOrder
	}
	if !internals.NeedsRebalance(keys) {
		return nil
	}

	for i, key := range internals.RebalancedKeys(len(events)) {
		result = transaction.Model(&model.Event{}).
			Where("id_event = ?", events[i].EventID).
			Update("day_order", key)
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// MaxDayOrder returns the highest day key currently used in a day, or nil
// for an empty day.
func (eventDAO *EventDAO) MaxDayOrder(tripID, day int) (*decimal.Decimal, error) {
	var event model.Event
	result := eventDAO.db.
		Where("id_trip = ? AND day = ?", tripID, day).
		Order("day_order DESC").
		First(&event)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &event.DayOrder, nil
}
