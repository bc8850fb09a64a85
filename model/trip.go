package model

import "time"

type Trip struct {
	TripID    int        `gorm:"column:id_trip;primaryKey;autoIncrement" json:"trip_id"`
	Title     string     `gorm:"column:title;type:text;not null" json:"title"`
	City      string     `gorm:"column:city;type:text" json:"city"`
	StartLat  float64    `gorm:"column:start_lat;type:numeric;not null" json:"start_lat"`
	StartLng  float64    `gorm:"column:start_lng;type:numeric;not null" json:"start_lng"`
	StartDate *time.Time `gorm:"column:start_date;type:date" json:"start_date"`
	TotalDays int        `gorm:"column:total_days;type:integer;not null;default:1" json:"total_days"`

	// Route summary, recomputed from the trip's segments after every
	// reconciliation. Never written by anything else.
	TotalDurationMin int     `gorm:"column:total_duration_min;type:integer;not null;default:0" json:"total_duration_min"`
	TotalDistanceKm  float64 `gorm:"column:total_distance_km;type:numeric;not null;default:0" json:"total_distance_km"`
}

func (Trip) TableName() string {
	return "trip"
}

func (t *Trip) StartLocation() Location {
	return Location{Lat: t.StartLat, Lng: t.StartLng}
}

type RouteSummary struct {
	TotalDurationMin int     `json:"total_duration_min"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
}

func (t *Trip) RouteSummary() RouteSummary {
	return RouteSummary{
		TotalDurationMin: t.TotalDurationMin,
		TotalDistanceKm:  t.TotalDistanceKm,
	}
}
