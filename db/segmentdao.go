package db

import (
	"errors"

	"gorm.io/gorm"

	"trip-planner-server/internals"
	"trip-planner-server/model"
)

type SegmentDAO struct {
	db *gorm.DB
}

func NewSegmentDAO(db *gorm.DB) *SegmentDAO {
	return &SegmentDAO{db: db}
}

func (segmentDAO *SegmentDAO) GetSegmentsByTrip(tripID int) ([]model.RouteSegment, error) {
	var segments []model.RouteSegment
	result := segmentDAO.db.Where("id_trip = ?", tripID).Find(&segments)
	return segments, result.Error
}

func (segmentDAO *SegmentDAO) CreateSegment(segment *model.RouteSegment) error {
	result := segmentDAO.db.Create(segment)
	return result.Error
}

func (segmentDAO *SegmentDAO) DeleteSegmentsByID(segmentIDs []int) error {
	if len(segmentIDs) == 0 {
		return nil
	}
	result := segmentDAO.db.Delete(&model.RouteSegment{}, segmentIDs)
	return result.Error
}

// GetSegmentBetween finds the segment from one event to another, if any.
func (segmentDAO *SegmentDAO) GetSegmentBetween(tripID, fromEventID, toEventID int) (model.RouteSegment, error) {
	var segment model.RouteSegment
	result := segmentDAO.db.
		Where("id_trip = ? AND id_from_event = ? AND id_to_event = ?", tripID, fromEventID, toEventID).
		First(&segment)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return model.RouteSegment{}, internals.ErrNotFound
	}
	return segment, result.Error
}

// UpdateSegmentRoute mutates the user-owned route fields (travel mode,
// departure time) of an existing segment. Reconciler-owned fields are not
// reachable from here.
func (segmentDAO *SegmentDAO) UpdateSegmentRoute(segment *model.RouteSegment, travelMode, departureTime *string) error {
	columns := make(map[string]interface{})
	if travelMode != nil {
		if !model.IsValidTravelMode(*travelMode) {
			return &internals.ValidationError{Field: "travelMode", Message: "invalid travel mode"}
		}
		columns["travel_mode"] = *travelMode
	}
	if departureTime != nil {
		columns["departure_time"] = *departureTime
	}
	if len(columns) == 0 {
		return nil
	}
	result := segmentDAO.db.Model(segment).Updates(columns)
	return result.Error
}
