package roster

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/arnavshah/trip-roster-api/pkg/models"
)

// Allocation is a proposed roster/waitlist split for a trip
type Allocation struct {
	Roster   []models.Signup
	Waitlist []models.Signup

	// DriversSelected fill driver seats; NonDriversSelected fill non-driver
	// seats and include Backfilled drivers
	DriversSelected    int
	NonDriversSelected int
	Backfilled         int
}

// RosterIDs returns the roster signup ids in roster order
func (a Allocation) RosterIDs() []string {
	return ids(a.Roster)
}

// WaitlistIDs returns the waitlist signup ids in waitlist order
func (a Allocation) WaitlistIDs() []string {
	return ids(a.Waitlist)
}

func ids(signups []models.Signup) []string {
	out := make([]string, len(signups))
	for i, s := range signups {
		out[i] = s.ID
	}
	return out
}

// Allocator draws randomized rosters. It is safe for concurrent use.
type Allocator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAllocator creates an allocator drawing from src. A nil source seeds
// from the clock.
func NewAllocator(src rand.Source) *Allocator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Allocator{rng: rand.New(src)}
}

// Propose shuffles the driver and non-driver pools independently, fills the
// trip's driver seats from drivers and its non-driver seats from
// non-drivers, then backfills any non-driver shortfall with the leftover
// drivers. Everyone not selected goes to the waitlist, drivers first.
func (a *Allocator) Propose(trip models.Trip, signups []models.Signup) (Allocation, error) {
	driverSeats := max(trip.DriverSeats, 0)
	nonDriverSeats := max(trip.NonDriverCapacity, 0)
	if driverSeats == 0 && nonDriverSeats == 0 {
		return Allocation{}, ruleError(ErrConfiguration,
			"Trip has no capacity defined for drivers or non-drivers",
			fmt.Sprintf("trip %s", trip.ID))
	}
	if len(signups) == 0 {
		return Allocation{}, ruleError(ErrEmptyPool, "No participants signed up for this trip", "")
	}

	var drivers, nonDrivers []models.Signup
	for _, s := range signups {
		if s.IsDriver {
			drivers = append(drivers, s)
		} else {
			nonDrivers = append(nonDrivers, s)
		}
	}
	a.shuffle(drivers)
	a.shuffle(nonDrivers)

	selectedDrivers, driverOverflow := split(drivers, driverSeats)
	selectedNonDrivers, nonDriverOverflow := split(nonDrivers, nonDriverSeats)

	backfilled := 0
	if shortfall := nonDriverSeats - len(selectedNonDrivers); shortfall > 0 && len(driverOverflow) > 0 {
		var fill []models.Signup
		fill, driverOverflow = split(driverOverflow, shortfall)
		selectedNonDrivers = append(selectedNonDrivers, fill...)
		backfilled = len(fill)
	}

	alloc := Allocation{
		Roster:             make([]models.Signup, 0, len(selectedDrivers)+len(selectedNonDrivers)),
		Waitlist:           make([]models.Signup, 0, len(driverOverflow)+len(nonDriverOverflow)),
		DriversSelected:    len(selectedDrivers),
		NonDriversSelected: len(selectedNonDrivers),
		Backfilled:         backfilled,
	}
	alloc.Roster = append(alloc.Roster, selectedDrivers...)
	alloc.Roster = append(alloc.Roster, selectedNonDrivers...)
	alloc.Waitlist = append(alloc.Waitlist, driverOverflow...)
	alloc.Waitlist = append(alloc.Waitlist, nonDriverOverflow...)
	return alloc, nil
}

// shuffle is a Fisher-Yates permutation in place
func (a *Allocator) shuffle(pool []models.Signup) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
}

func split(pool []models.Signup, n int) ([]models.Signup, []models.Signup) {
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n:n], pool[n:]
}

// StatusUpdate is a status write planned for one signup
type StatusUpdate struct {
	SignupID string
	Status   string
}

// PlanStatuses turns an approved roster and waitlist into store writes.
// Roster members get the selected value for their driver flag; waitlisted
// drivers and non-drivers are numbered from 1 independently in waitlist
// order. Ids missing from signups are returned separately.
func PlanStatuses(rosterIDs, waitlistIDs []string, signups []models.Signup) (updates []StatusUpdate, missing []string) {
	byID := make(map[string]models.Signup, len(signups))
	for _, s := range signups {
		byID[s.ID] = s
	}

	for _, id := range rosterIDs {
		s, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		updates = append(updates, StatusUpdate{SignupID: id, Status: SelectedStatus(s.IsDriver)})
	}

	var waitDrivers, waitNonDrivers []string
	for _, id := range waitlistIDs {
		s, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if s.IsDriver {
			waitDrivers = append(waitDrivers, id)
		} else {
			waitNonDrivers = append(waitNonDrivers, id)
		}
	}
	for i, id := range waitDrivers {
		updates = append(updates, StatusUpdate{SignupID: id, Status: WaitlistStatus(true, i+1)})
	}
	for i, id := range waitNonDrivers {
		updates = append(updates, StatusUpdate{SignupID: id, Status: WaitlistStatus(false, i+1)})
	}
	return updates, missing
}
