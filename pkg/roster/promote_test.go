package roster

import (
	"testing"

	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var promoTrip = models.Trip{ID: "trip1", Capacity: 4, DriverSeats: 2, NonDriverCapacity: 2}

func TestPromoteNext_PrefersDriverWhenBothOpen(t *testing.T) {
	signups := []models.Signup{
		signup("n1", false, "Waitlist (nondriver) - 1"),
		signup("d1", true, "Waitlist (driver) - 1"),
	}

	p, err := PromoteNext(promoTrip, signups)
	require.NoError(t, err)
	assert.Equal(t, "d1", p.Signup.ID)
	assert.Equal(t, SelectedDriver, p.Status)
}

func TestPromoteNext_NonDriverWhenNoDriverWaiting(t *testing.T) {
	signups := []models.Signup{signup("n1", false, "Waitlist (nondriver) - 1")}

	p, err := PromoteNext(promoTrip, signups)
	require.NoError(t, err)
	assert.Equal(t, "n1", p.Signup.ID)
	assert.Equal(t, SelectedNonDriver, p.Status)
}

func TestPromoteNext_FillsOpenSubPool(t *testing.T) {
	signups := []models.Signup{
		signup("d1", true, "Selected (driver)"),
		signup("d2", true, "Selected (driver)"),
		signup("d3", true, "Waitlist (driver) - 1"),
		signup("n1", false, "Waitlist (nondriver) - 1"),
	}

	p, err := PromoteNext(promoTrip, signups)
	require.NoError(t, err)
	assert.Equal(t, "n1", p.Signup.ID)
}

func TestPromoteNext_NoCandidateForOpenSubPool(t *testing.T) {
	signups := []models.Signup{
		signup("d1", true, "Selected (driver)"),
		signup("d2", true, "Selected (driver)"),
		signup("d3", true, "Waitlist (driver) - 1"),
	}

	_, err := PromoteNext(promoTrip, signups)
	assert.ErrorIs(t, err, ErrNoEligibleCandidate)
}

func TestPromoteNext_EmptyWaitlist(t *testing.T) {
	_, err := PromoteNext(promoTrip, []models.Signup{signup("d1", true, "Selected (driver)")})
	assert.ErrorIs(t, err, ErrNoEligibleCandidate)
}

func TestPromoteNext_RosterFull(t *testing.T) {
	signups := []models.Signup{
		signup("d1", true, "Selected (driver)"),
		signup("d2", true, "Selected (driver)"),
		signup("n1", false, "Selected (nondriver)"),
		signup("n2", false, "ON TRIP"),
		signup("n3", false, "Waitlist (nondriver) - 1"),
	}

	_, err := PromoteNext(promoTrip, signups)
	assert.ErrorIs(t, err, ErrRosterFull)
}

func TestPromoteDriver_DriverSeatsFilled(t *testing.T) {
	signups := []models.Signup{
		signup("d1", true, "Selected (driver)"),
		signup("d2", true, "Selected (driver)"),
		signup("d3", true, "Waitlist (driver) - 1"),
	}

	_, err := PromoteDriver(promoTrip, signups)
	assert.ErrorIs(t, err, ErrRosterFull)

	var rule *RuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "No driver spots available", rule.Message)
}

func TestPromoteDriver_UsesWaitlistOrder(t *testing.T) {
	signups := []models.Signup{
		signup("d9", true, "Waitlist (driver) - 2"),
		signup("d4", true, "Waitlist (driver) - 1"),
		signup("n1", false, "Waitlist (nondriver) - 1"),
	}

	p, err := PromoteDriver(promoTrip, signups)
	require.NoError(t, err)
	assert.Equal(t, "d4", p.Signup.ID)
}

func TestPromoteDriver_NoDriverWaiting(t *testing.T) {
	_, err := PromoteDriver(promoTrip, []models.Signup{signup("n1", false, "WAITLIST")})
	assert.ErrorIs(t, err, ErrNoEligibleCandidate)
}

func TestPromoteNonDriver(t *testing.T) {
	signups := []models.Signup{
		signup("n1", false, "Selected (nondriver)"),
		signup("n2", false, "WAITLIST"),
		signup("n3", false, "Waitlist (nondriver) - 1"),
	}

	p, err := PromoteNonDriver(promoTrip, signups)
	require.NoError(t, err)
	assert.Equal(t, "n3", p.Signup.ID)
	assert.Equal(t, SelectedNonDriver, p.Status)

	signups[1].Status = "Selected (nondriver)"
	_, err = PromoteNonDriver(promoTrip, signups)
	assert.ErrorIs(t, err, ErrRosterFull)
}

func TestReAdd(t *testing.T) {
	signups := []models.Signup{
		signup("d1", true, "Selected (driver)"),
		signup("n1", false, "Dropped- 01/02/2026"),
	}

	p, err := ReAdd(promoTrip, signups, "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", p.Signup.ID)
	assert.Equal(t, SelectedNonDriver, p.Status)
}

func TestReAdd_NotFound(t *testing.T) {
	_, err := ReAdd(promoTrip, nil, "ghost")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestReAdd_AlreadyOnRoster(t *testing.T) {
	_, err := ReAdd(promoTrip, []models.Signup{signup("d1", true, "Selected (driver)")}, "d1")
	assert.ErrorIs(t, err, ErrNoEligibleCandidate)
}

func TestReAdd_SubPoolFull(t *testing.T) {
	signups := []models.Signup{
		signup("d1", true, "Selected (driver)"),
		signup("d2", true, "Selected (driver)"),
		signup("d3", true, "Dropped- 01/02/2026"),
	}

	_, err := ReAdd(promoTrip, signups, "d3")
	assert.ErrorIs(t, err, ErrRosterFull)
}

func TestCapacityOf(t *testing.T) {
	c := CapacityOf(models.Trip{Capacity: 10, DriverSeats: 3}, []models.Signup{
		signup("d1", true, "Selected (driver)"),
		signup("n1", false, "ON TRIP"),
		signup("n2", false, "WAITLIST"),
	})

	assert.Equal(t, 2, c.RosterSize)
	assert.Equal(t, 2, c.DriverSpots())
	assert.Equal(t, 7, c.NonDriverSlots())
	assert.Equal(t, 6, c.NonDriverSpots())
}
