package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnavshah/trip-roster-api/pkg/models"
)

// ErrNotFound is wrapped by UpstreamError when a record does not exist
var ErrNotFound = errors.New("record not found")

// Store reads trips and signups and writes signup statuses
type Store interface {
	ListTrips(ctx context.Context) ([]models.Trip, error)
	GetTrip(ctx context.Context, id string) (models.Trip, error)
	// ListSignupsForTrip returns every signup linked to the trip in store order
	ListSignupsForTrip(ctx context.Context, tripID string) ([]models.Signup, error)
	UpdateSignupStatus(ctx context.Context, id, status string) (models.Signup, error)
}

// UpstreamError is a failed call to the backing store. Message carries the
// remote error text verbatim.
type UpstreamError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("Failed to %s: %s", e.Op, msg)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
