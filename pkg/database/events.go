package database

import (
	"context"

	"github.com/arnavshah/trip-roster-api/pkg/models"
	"gorm.io/gorm"
)

// EventLog appends and lists roster status changes
type EventLog struct {
	db *gorm.DB
}

// NewEventLog wraps an initialized database
func NewEventLog(db *gorm.DB) *EventLog {
	return &EventLog{db: db}
}

// Record appends events in a single insert
func (l *EventLog) Record(ctx context.Context, events ...models.RosterEvent) error {
	if len(events) == 0 {
		return nil
	}
	recs := make([]RosterEventRecord, len(events))
	for i, e := range events {
		recs[i] = RosterEventRecord{
			TripID:    e.TripID,
			SignupID:  e.SignupID,
			Status:    e.Status,
			Action:    e.Action,
			CreatedAt: e.CreatedAt,
		}
	}
	return l.db.WithContext(ctx).Create(&recs).Error
}

// List returns a trip's most recent events, newest first
func (l *EventLog) List(ctx context.Context, tripID string, limit int) ([]models.RosterEvent, error) {
	var recs []RosterEventRecord
	err := l.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	events := make([]models.RosterEvent, len(recs))
	for i, r := range recs {
		events[i] = models.RosterEvent{
			TripID:    r.TripID,
			SignupID:  r.SignupID,
			Status:    r.Status,
			Action:    r.Action,
			CreatedAt: r.CreatedAt,
		}
	}
	return events, nil
}
