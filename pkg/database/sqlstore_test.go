package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/arnavshah/trip-roster-api/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB("", filepath.Join(t.TempDir(), "roster.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSQLStore_Trips(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t))

	require.NoError(t, s.SaveTrip(ctx, models.Trip{ID: "t2", Name: "Later", StartDate: "2026-06-01"}))
	require.NoError(t, s.SaveTrip(ctx, models.Trip{
		ID: "t1", Name: "Ridge", StartDate: "2026-05-01", Capacity: 10, DriverSeats: 3,
		NonDriverCapacity: 7, Cost: []float64{20}, TripTypes: []string{"Hiking"},
	}))

	trips, err := s.ListTrips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "t1", trips[0].ID)

	trip, err := s.GetTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, trip.DriverSeats)
	assert.Equal(t, []string{"Hiking"}, trip.TripTypes)

	require.NoError(t, s.SaveTrip(ctx, models.Trip{ID: "t1", Name: "Ridge", StartDate: "2026-05-01", Capacity: 12}))
	trip, err = s.GetTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 12, trip.Capacity)

	_, err = s.GetTrip(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLStore_SignupsPagedInOrder(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t))

	total := signupPageSize + 20
	for i := 0; i < total; i++ {
		trip := "t1"
		if i%3 == 0 {
			trip = "t2"
		}
		require.NoError(t, s.SaveSignup(ctx, models.Signup{
			ID: fmt.Sprintf("s%03d", i), Name: "P", TripIDs: []string{trip}, IsDriver: i%2 == 0, Status: "WAITLIST",
		}))
	}

	signups, err := s.ListSignupsForTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, signups, total-(total+2)/3)
	for i := 1; i < len(signups); i++ {
		assert.Less(t, signups[i-1].ID, signups[i].ID)
	}
}

func TestSQLStore_UpdateSignupStatus(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t))
	require.NoError(t, s.SaveSignup(ctx, models.Signup{ID: "s1", Name: "Ann", TripIDs: []string{"t1"}, Status: "WAITLIST"}))

	updated, err := s.UpdateSignupStatus(ctx, "s1", "Selected (nondriver)")
	require.NoError(t, err)
	assert.Equal(t, "Selected (nondriver)", updated.Status)
	assert.Equal(t, "Ann", updated.Name)

	_, err = s.UpdateSignupStatus(ctx, "ghost", "x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLStore_SaveSignupUpserts(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(newTestDB(t))
	require.NoError(t, s.SaveSignup(ctx, models.Signup{ID: "s1", Name: "Ann", TripIDs: []string{"t1"}}))
	require.NoError(t, s.SaveSignup(ctx, models.Signup{ID: "s1", Name: "Ann B", TripIDs: []string{"t1"}, IsDriver: true}))

	signups, err := s.ListSignupsForTrip(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, signups, 1)
	assert.Equal(t, "Ann B", signups[0].Name)
	assert.True(t, signups[0].IsDriver)
}

func TestEventLog(t *testing.T) {
	ctx := context.Background()
	log := NewEventLog(newTestDB(t))
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, log.Record(ctx,
		models.RosterEvent{TripID: "t1", SignupID: "s1", Status: "Selected (driver)", Action: models.ActionApprove, CreatedAt: base},
		models.RosterEvent{TripID: "t1", SignupID: "s2", Status: "Waitlist (driver) - 1", Action: models.ActionApprove, CreatedAt: base.Add(time.Second)},
		models.RosterEvent{TripID: "t2", SignupID: "s3", Status: "Dropped- 04/01/2026", Action: models.ActionDrop, CreatedAt: base},
	))
	require.NoError(t, log.Record(ctx))

	events, err := log.List(ctx, "t1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "s2", events[0].SignupID)
	assert.Equal(t, "s1", events[1].SignupID)

	events, err = log.List(ctx, "t1", 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
