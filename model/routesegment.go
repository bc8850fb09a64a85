package model

const (
	TravelModeDriving   = "DRIVING"
	TravelModeWalking   = "WALKING"
	TravelModeTransit   = "TRANSIT"
	TravelModeBicycling = "BICYCLING"
)

func IsValidTravelMode(mode string) bool {
	switch mode {
	case TravelModeDriving, TravelModeWalking, TravelModeTransit, TravelModeBicycling:
		return true
	}
	return false
}

// RouteSegment is a directed travel leg between two adjacent events of a
// trip. FromEventID nil means the leg starts at the trip's start location.
// At most one segment exists per (trip, from, to) pair, and only for pairs
// that are adjacent under the current ordering.
type RouteSegment struct {
	SegmentID   int    `gorm:"column:id_segment;primaryKey;autoIncrement" json:"segment_id"`
	TripID      int    `gorm:"column:id_trip;type:integer;not null;uniqueIndex:idx_segment_pair;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"trip_id"`
	FromEventID *int   `gorm:"column:id_from_event;type:integer;uniqueIndex:idx_segment_pair;constraint:OnDelete:CASCADE" json:"from_event_id"`
	ToEventID   int    `gorm:"column:id_to_event;type:integer;not null;uniqueIndex:idx_segment_pair;constraint:OnDelete:CASCADE" json:"to_event_id"`
	DurationMin int    `gorm:"column:duration_min;type:integer;not null" json:"duration_min"`
	DistanceKm  float64 `gorm:"column:distance_km;type:numeric;not null" json:"distance_km"`
	Polyline    string `gorm:"column:polyline;type:text" json:"polyline"`
	TravelMode  string `gorm:"column:travel_mode;type:text;not null;default:DRIVING" json:"travel_mode"`

	// DepartureTime is a user-set "HH:MM" value, not touched by the
	// reconciler.
	DepartureTime string `gorm:"column:departure_time;type:text" json:"departure_time"`
}

func (RouteSegment) TableName() string {
	return "route_segment"
}
