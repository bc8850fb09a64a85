package db

import (
	"errors"

	"gorm.io/gorm"

	"trip-planner-server/internals"
	"trip-planner-server/model"
)

type TripDAO struct {
	db *gorm.DB
}

func NewTripDAO(db *gorm.DB) *TripDAO {
	return &TripDAO{db: db}
}

func (tripDAO *TripDAO) CreateTrip(trip *model.Trip) error {
	if trip.TotalDays < 1 {
		trip.TotalDays = 1
	}
	result := tripDAO.db.Create(trip)
	return result.Error
}

func (tripDAO *TripDAO) GetTripByID(tripID int) (model.Trip, error) {
	var trip model.Trip
	result := tripDAO.db.First(&trip, tripID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return model.Trip{}, internals.ErrNotFound
	}
	return trip, result.Error
}

// UpdateRouteSummary is the only writer of the trip's summary columns. It
// is called by the reconciler after every segment-set mutation.
func (tripDAO *TripDAO) UpdateRouteSummary(tripID int, totalDurationMin int, totalDistanceKm float64) error {
	result := tripDAO.db.Model(&model.Trip{}).
		Where("id_trip = ?", tripID).
		Updates(map[string]interface{}{
			"total_duration_min": totalDurationMin,
			"total_distance_km":  totalDistanceKm,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internals.ErrNotFound
	}
	return nil
}

func (tripDAO *TripDAO) DeleteTrip(tripID int) error {
	// create transaction
	transaction := tripDAO.db.Begin()
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

	// delete segments and events first, then the trip itself
	result := transaction.Where("id_trip = ?", tripID).Delete(&model.RouteSegment{})
	if result.Error != nil {
		return result.Error
	}
	result = transaction.Where("id_trip = ?", tripID).Delete(&model.Event{})
	if result.Error != nil {
		return result.Error
	}
	result = transaction.Delete(&model.Trip{}, tripID)
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
