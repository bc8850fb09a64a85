package model

import "time"

// RouteCache is the persisted provider cache. It is keyed by place
// identifiers only; coordinate-keyed lookups go through the in-process
// cache and the live API. Not authoritative: an expired or missing row
// always falls through to a live call.
type RouteCache struct {
	CacheID     int       `gorm:"column:id_cache;primaryKey;autoIncrement" json:"cache_id"`
	FromPlaceID string    `gorm:"column:from_place_id;type:text;not null;uniqueIndex:idx_cache_pair" json:"from_place_id"`
	ToPlaceID   string    `gorm:"column:to_place_id;type:text;not null;uniqueIndex:idx_cache_pair" json:"to_place_id"`
	DurationMin int       `gorm:"column:duration_min;type:integer;not null" json:"duration_min"`
	DistanceKm  float64   `gorm:"column:distance_km;type:numeric;not null" json:"distance_km"`
	Polyline    string    `gorm:"column:polyline;type:text" json:"polyline"`
	ExpiresAt   time.Time `gorm:"column:expires_at;type:timestamptz;not null" json:"expires_at"`
}

func (RouteCache) TableName() string {
	return "route_cache"
}

func (c *RouteCache) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
