package database

import (
	"context"
	"errors"
	"net/http"

	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/arnavshah/trip-roster-api/pkg/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const signupPageSize = 100

// SQLStore is a store.Store over the trips and signups tables
type SQLStore struct {
	db *gorm.DB
}

var _ store.Store = (*SQLStore)(nil)

// NewSQLStore wraps an initialized database
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// ListTrips returns every trip ordered by start date
func (s *SQLStore) ListTrips(ctx context.Context) ([]models.Trip, error) {
	var recs []TripRecord
	if err := s.db.WithContext(ctx).Order("start_date, id").Find(&recs).Error; err != nil {
		return nil, upstream("fetch trips", err)
	}
	trips := make([]models.Trip, len(recs))
	for i, r := range recs {
		trips[i] = r.toModel()
	}
	return trips, nil
}

// GetTrip looks a trip up by id
func (s *SQLStore) GetTrip(ctx context.Context, id string) (models.Trip, error) {
	var rec TripRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return models.Trip{}, upstream("fetch trip", err)
	}
	return rec.toModel(), nil
}

// ListSignupsForTrip pages through the signups table in insertion order
// and keeps the rows linked to the trip
func (s *SQLStore) ListSignupsForTrip(ctx context.Context, tripID string) ([]models.Signup, error) {
	var out []models.Signup
	for offset := 0; ; offset += signupPageSize {
		var page []SignupRecord
		err := s.db.WithContext(ctx).
			Order("seq").
			Limit(signupPageSize).
			Offset(offset).
			Find(&page).Error
		if err != nil {
			return nil, upstream("fetch signups", err)
		}
		for _, r := range page {
			if m := r.toModel(); m.HasTrip(tripID) {
				out = append(out, m)
			}
		}
		if len(page) < signupPageSize {
			return out, nil
		}
	}
}

// UpdateSignupStatus sets the status column of one signup
func (s *SQLStore) UpdateSignupStatus(ctx context.Context, id, status string) (models.Signup, error) {
	var rec SignupRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&SignupRecord{}).Where("signup_id = ?", id).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("signup_id = ?", id).First(&rec).Error
	})
	if err != nil {
		return models.Signup{}, upstream("update signup", err)
	}
	return rec.toModel(), nil
}

// SaveTrip inserts or replaces a trip
func (s *SQLStore) SaveTrip(ctx context.Context, t models.Trip) error {
	rec := tripRecord(t)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// SaveSignup inserts a signup or updates the existing row with the same id
func (s *SQLStore) SaveSignup(ctx context.Context, su models.Signup) error {
	rec := signupRecord(su)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "signup_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "trip_ids", "is_driver", "status", "email", "phone", "updated_at"}),
	}).Create(&rec).Error
}

func upstream(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &store.UpstreamError{Op: op, StatusCode: http.StatusNotFound, Message: "record not found", Err: store.ErrNotFound}
	}
	return &store.UpstreamError{Op: op, Err: err}
}

func (r TripRecord) toModel() models.Trip {
	return models.Trip{
		ID:                r.ID,
		Name:              r.Name,
		LeadName:          r.LeadName,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		Status:            models.TripStatus(r.Status),
		Capacity:          r.Capacity,
		DriverSeats:       r.DriverSeats,
		NonDriverCapacity: r.NonDriverCapacity,
		Cost:              r.Cost,
		TripTypes:         r.TripTypes,
		Full:              r.Full,
	}
}

func tripRecord(t models.Trip) TripRecord {
	return TripRecord{
		ID:                t.ID,
		Name:              t.Name,
		LeadName:          t.LeadName,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
		Status:            string(t.Status),
		Capacity:          t.Capacity,
		DriverSeats:       t.DriverSeats,
		NonDriverCapacity: t.NonDriverCapacity,
		Cost:              t.Cost,
		TripTypes:         t.TripTypes,
		Full:              t.Full,
	}
}

func (r SignupRecord) toModel() models.Signup {
	tripIDs := r.TripIDs
	if tripIDs == nil {
		tripIDs = []string{}
	}
	return models.Signup{
		ID:       r.SignupID,
		Name:     r.Name,
		TripIDs:  tripIDs,
		IsDriver: r.IsDriver,
		Status:   r.Status,
		Email:    r.Email,
		Phone:    r.Phone,
	}
}

func signupRecord(s models.Signup) SignupRecord {
	return SignupRecord{
		SignupID: s.ID,
		Name:     s.Name,
		TripIDs:  s.TripIDs,
		IsDriver: s.IsDriver,
		Status:   s.Status,
		Email:    s.Email,
		Phone:    s.Phone,
	}
}
