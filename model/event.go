package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Event struct {
	EventID int `gorm:"column:id_event;primaryKey;autoIncrement" json:"event_id"`
	TripID  int `gorm:"column:id_trip;type:integer;not null;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"trip_id"`

	// Day is 1-based, nil means the event is not scheduled on any day yet.
	Day *int `gorm:"column:day;type:integer" json:"day"`

	// DayOrder positions the event within its day. Fractional decimal so
	// that an event can be dropped between two neighbors without rewriting
	// every sibling key.
	DayOrder decimal.Decimal `gorm:"column:day_order;type:numeric(10,4);not null" json:"day_order"`

	// GlobalOrder is the trip-wide rank, derived from a stable sort over
	// (day, day_order). Recomputed after every ordering mutation.
	GlobalOrder int `gorm:"column:global_order;type:integer;not null;default:0" json:"global_order"`

	PlaceID      string   `gorm:"column:place_id;type:text" json:"place_id"`
	PlaceName    string   `gorm:"column:place_name;type:text" json:"place_name"`
	Lat          *float64 `gorm:"column:lat;type:numeric" json:"lat"`
	Lng          *float64 `gorm:"column:lng;type:numeric" json:"lng"`
	Address      string   `gorm:"column:address;type:text" json:"address"`
	ActivityType string   `gorm:"column:activity_type;type:text" json:"activity_type"`
	CustomTitle  string   `gorm:"column:custom_title;type:text" json:"custom_title"`
	StartTime    string   `gorm:"column:start_time;type:text" json:"start_time"`
	DurationMin  *int     `gorm:"column:duration_min;type:integer" json:"duration_min"`
	Memo         string   `gorm:"column:memo;type:text" json:"memo"`
}

func (Event) TableName() string {
	return "event"
}

// Location returns nil for events that have no coordinates; such events are
// skipped when building route segments.
func (e *Event) Location() *Location {
	if e.Lat == nil || e.Lng == nil {
		return nil
	}
	return &Location{Lat: *e.Lat, Lng: *e.Lng}
}

func (e *Event) DisplayTitle() string {
	if e.CustomTitle != "" {
		return e.CustomTitle
	}
	if e.PlaceName != "" {
		if e.ActivityType != "" {
			return e.PlaceName + " - " + e.ActivityType
		}
		return e.PlaceName
	}
	return fmt.Sprintf("Event %d", e.GlobalOrder)
}
