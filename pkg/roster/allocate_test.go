package roster

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pool(drivers, nonDrivers int) []models.Signup {
	var out []models.Signup
	for i := 0; i < drivers; i++ {
		out = append(out, signup(fmt.Sprintf("d%d", i), true, ""))
	}
	for i := 0; i < nonDrivers; i++ {
		out = append(out, signup(fmt.Sprintf("n%d", i), false, ""))
	}
	return out
}

func countDrivers(signups []models.Signup) int {
	n := 0
	for _, s := range signups {
		if s.IsDriver {
			n++
		}
	}
	return n
}

func TestPropose_Scenario(t *testing.T) {
	trip := models.Trip{ID: "trip1", Capacity: 10, DriverSeats: 3, NonDriverCapacity: 7}
	a := NewAllocator(rand.NewSource(1))

	alloc, err := a.Propose(trip, pool(5, 7))
	require.NoError(t, err)

	assert.Len(t, alloc.Roster, 10)
	assert.Equal(t, 3, countDrivers(alloc.Roster))
	assert.Len(t, alloc.Waitlist, 2)
	assert.Equal(t, 2, countDrivers(alloc.Waitlist))
	assert.Equal(t, 0, alloc.Backfilled)
}

func TestPropose_Properties(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		r := rand.New(rand.NewSource(seed))
		d, n := r.Intn(5), r.Intn(8)
		if d+n == 0 {
			n = 1
		}
		drivers, nonDrivers := d+r.Intn(4), n+r.Intn(4)
		signups := pool(drivers, nonDrivers)
		trip := models.Trip{ID: "t", DriverSeats: d, NonDriverCapacity: n, Capacity: d + n}

		alloc, err := NewAllocator(rand.NewSource(seed)).Propose(trip, signups)
		require.NoError(t, err)

		assert.Len(t, alloc.Roster, d+n, "seed %d", seed)
		seen := map[string]bool{}
		for _, s := range append(append([]models.Signup{}, alloc.Roster...), alloc.Waitlist...) {
			assert.False(t, seen[s.ID], "seed %d: %s allocated twice", seed, s.ID)
			seen[s.ID] = true
		}
		assert.Len(t, seen, len(signups), "seed %d", seed)
	}
}

func TestPropose_Backfill(t *testing.T) {
	trip := models.Trip{ID: "trip1", Capacity: 8, DriverSeats: 2, NonDriverCapacity: 6}

	alloc, err := NewAllocator(rand.NewSource(7)).Propose(trip, pool(6, 3))
	require.NoError(t, err)

	assert.Equal(t, 2, alloc.DriversSelected)
	assert.Equal(t, 6, alloc.NonDriversSelected)
	assert.Equal(t, 3, alloc.Backfilled)
	assert.Len(t, alloc.Roster, 8)
	assert.Equal(t, 5, countDrivers(alloc.Roster))
	assert.Len(t, alloc.Waitlist, 1)
	assert.True(t, alloc.Waitlist[0].IsDriver)
}

func TestPropose_BackfillLimitedByDriverOverflow(t *testing.T) {
	trip := models.Trip{ID: "trip1", Capacity: 10, DriverSeats: 2, NonDriverCapacity: 8}

	alloc, err := NewAllocator(rand.NewSource(3)).Propose(trip, pool(3, 2))
	require.NoError(t, err)

	assert.Equal(t, 1, alloc.Backfilled)
	assert.Equal(t, 3, alloc.NonDriversSelected)
	assert.LessOrEqual(t, alloc.NonDriversSelected, trip.NonDriverCapacity)
	assert.Empty(t, alloc.Waitlist)
}

func TestPropose_WaitlistDriversFirst(t *testing.T) {
	trip := models.Trip{ID: "trip1", Capacity: 2, DriverSeats: 1, NonDriverCapacity: 1}

	alloc, err := NewAllocator(rand.NewSource(11)).Propose(trip, pool(3, 3))
	require.NoError(t, err)

	require.Len(t, alloc.Waitlist, 4)
	assert.True(t, alloc.Waitlist[0].IsDriver)
	assert.True(t, alloc.Waitlist[1].IsDriver)
	assert.False(t, alloc.Waitlist[2].IsDriver)
	assert.False(t, alloc.Waitlist[3].IsDriver)
}

func TestPropose_Reproducible(t *testing.T) {
	trip := models.Trip{ID: "trip1", Capacity: 5, DriverSeats: 2, NonDriverCapacity: 3}
	signups := pool(5, 5)

	first, err := NewAllocator(rand.NewSource(42)).Propose(trip, signups)
	require.NoError(t, err)
	second, err := NewAllocator(rand.NewSource(42)).Propose(trip, signups)
	require.NoError(t, err)

	assert.Equal(t, first.RosterIDs(), second.RosterIDs())
	assert.Equal(t, first.WaitlistIDs(), second.WaitlistIDs())
}

func TestPropose_DoesNotMutateInput(t *testing.T) {
	trip := models.Trip{ID: "trip1", Capacity: 3, DriverSeats: 1, NonDriverCapacity: 2}
	signups := pool(3, 3)
	before := ids(signups)

	_, err := NewAllocator(rand.NewSource(5)).Propose(trip, signups)
	require.NoError(t, err)
	assert.Equal(t, before, ids(signups))
}

func TestPropose_Errors(t *testing.T) {
	a := NewAllocator(rand.NewSource(1))

	_, err := a.Propose(models.Trip{ID: "t"}, pool(1, 1))
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = a.Propose(models.Trip{ID: "t", DriverSeats: 1}, nil)
	assert.True(t, errors.Is(err, ErrEmptyPool))

	var rule *RuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "No participants signed up for this trip", rule.Message)
}

func TestPlanStatuses(t *testing.T) {
	signups := []models.Signup{
		signup("d1", true, ""), signup("d2", true, ""), signup("d3", true, ""),
		signup("n1", false, ""), signup("n2", false, ""), signup("n3", false, ""),
	}

	updates, missing := PlanStatuses(
		[]string{"d1", "n1"},
		[]string{"d3", "d2", "n3", "n2", "ghost"},
		signups,
	)

	assert.Equal(t, []string{"ghost"}, missing)
	assert.Equal(t, []StatusUpdate{
		{SignupID: "d1", Status: "Selected (driver)"},
		{SignupID: "n1", Status: "Selected (nondriver)"},
		{SignupID: "d3", Status: "Waitlist (driver) - 1"},
		{SignupID: "d2", Status: "Waitlist (driver) - 2"},
		{SignupID: "n3", Status: "Waitlist (nondriver) - 1"},
		{SignupID: "n2", Status: "Waitlist (nondriver) - 2"},
	}, updates)
}
