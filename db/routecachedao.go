package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trip-planner-server/model"
)

// RouteCacheTTL is how long a persisted route lookup stays valid.
const RouteCacheTTL = 7 * 24 * time.Hour

type RouteCacheDAO struct {
	db *gorm.DB
}

func NewRouteCacheDAO(db *gorm.DB) *RouteCacheDAO {
	return &RouteCacheDAO{db: db}
}

// GetRoute returns the cached result for a place-ID pair, or nil when the
// pair is unknown or expired. Never an error path for the caller's logic:
// a miss simply falls through to a live call.
func (cacheDAO *RouteCacheDAO) GetRoute(fromPlaceID, toPlaceID string, now time.Time) (*model.RouteResult, error) {
	var cached model.RouteCache
	result := cacheDAO.db.
		Where("from_place_id = ? AND to_place_id = ? AND expires_at > ?", fromPlaceID, toPlaceID, now).
		First(&cached)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &model.RouteResult{
		DurationMin: cached.DurationMin,
		DistanceKm:  cached.DistanceKm,
		Polyline:    cached.Polyline,
	}, nil
}

// PutRoute upserts the cached result for a place-ID pair with a fresh
// expiry.
func (cacheDAO *RouteCacheDAO) PutRoute(fromPlaceID, toPlaceID string, route model.RouteResult, now time.Time) error {
	entry := model.RouteCache{
		FromPlaceID: fromPlaceID,
		ToPlaceID:   toPlaceID,
		DurationMin: route.DurationMin,
		DistanceKm:  route.DistanceKm,
		Polyline:    route.Polyline,
		ExpiresAt:   now.Add(RouteCacheTTL),
	}
	result := cacheDAO.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "from_place_id"}, {Name: "to_place_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"duration_min", "distance_km", "polyline", "expires_at",
		}),
	}).Create(&entry)
	return result.Error
}
