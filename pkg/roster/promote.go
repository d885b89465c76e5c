package roster

import (
	"fmt"

	"github.com/arnavshah/trip-roster-api/pkg/models"
)

// Promotion is a single participant chosen to move onto the roster
type Promotion struct {
	Signup models.Signup
	// Status is the canonical roster value to write
	Status string
}

// Capacity is the live roster composition checked against a trip's limits
type Capacity struct {
	Total       int
	DriverSlots int

	RosterSize       int
	RosterDrivers    int
	RosterNonDrivers int
}

// CapacityOf recomputes roster composition from the signups
func CapacityOf(trip models.Trip, signups []models.Signup) Capacity {
	b := Classify(signups)
	return Capacity{
		Total:            trip.Capacity,
		DriverSlots:      trip.DriverSeats,
		RosterSize:       b.RosterSize(),
		RosterDrivers:    b.RosterDrivers,
		RosterNonDrivers: b.RosterNonDrivers,
	}
}

// NonDriverSlots is the total capacity minus the driver slots
func (c Capacity) NonDriverSlots() int {
	return c.Total - c.DriverSlots
}

// DriverSpots is the number of open driver seats
func (c Capacity) DriverSpots() int {
	return c.DriverSlots - c.RosterDrivers
}

// NonDriverSpots is the number of open non-driver seats
func (c Capacity) NonDriverSpots() int {
	return c.NonDriverSlots() - c.RosterNonDrivers
}

func (c Capacity) checkTotal(what string) error {
	if c.RosterSize >= c.Total {
		return ruleError(ErrRosterFull, "Roster currently full!",
			fmt.Sprintf("%sRoster is at capacity (%d/%d)", what, c.RosterSize, c.Total))
	}
	return nil
}

func (c Capacity) checkDrivers() error {
	if c.DriverSpots() <= 0 {
		return ruleError(ErrRosterFull, "No driver spots available",
			fmt.Sprintf("All driver spots are filled (%d/%d)", c.RosterDrivers, c.DriverSlots))
	}
	return nil
}

func (c Capacity) checkNonDrivers() error {
	if c.NonDriverSpots() <= 0 {
		return ruleError(ErrRosterFull, "No non-driver spots available",
			fmt.Sprintf("All non-driver spots are filled (%d/%d)", c.RosterNonDrivers, c.NonDriverSlots()))
	}
	return nil
}

// PromoteNext picks the next waitlisted participant for whichever sub-pool
// has room. With room in both, a waiting driver is preferred.
func PromoteNext(trip models.Trip, signups []models.Signup) (Promotion, error) {
	c := CapacityOf(trip, signups)
	if err := c.checkTotal(""); err != nil {
		return Promotion{}, err
	}

	drivers := WaitlistQueue(signups, true)
	nonDrivers := WaitlistQueue(signups, false)
	if len(drivers) == 0 && len(nonDrivers) == 0 {
		return Promotion{}, ruleError(ErrNoEligibleCandidate, "No participants on waitlist", "")
	}

	driverSpots, nonDriverSpots := c.DriverSpots(), c.NonDriverSpots()
	switch {
	case driverSpots > 0 && nonDriverSpots > 0:
		if len(drivers) > 0 {
			return promotion(drivers[0]), nil
		}
		return promotion(nonDrivers[0]), nil
	case driverSpots > 0:
		if len(drivers) == 0 {
			return Promotion{}, ruleError(ErrNoEligibleCandidate, "No drivers available on waitlist",
				fmt.Sprintf("%d driver spots available but no drivers on waitlist.", driverSpots))
		}
		return promotion(drivers[0]), nil
	case nonDriverSpots > 0:
		if len(nonDrivers) == 0 {
			return Promotion{}, ruleError(ErrNoEligibleCandidate, "No non-drivers available on waitlist",
				fmt.Sprintf("%d non-driver spots available but no non-drivers on waitlist.", nonDriverSpots))
		}
		return promotion(nonDrivers[0]), nil
	}
	// Unreachable while the total check holds: the sub-pools sum to the total.
	return Promotion{}, ruleError(ErrRosterFull, "Roster currently full!", "")
}

// PromoteDriver moves the first waitlisted driver onto an open driver seat
func PromoteDriver(trip models.Trip, signups []models.Signup) (Promotion, error) {
	c := CapacityOf(trip, signups)
	if err := c.checkTotal(""); err != nil {
		return Promotion{}, err
	}
	if err := c.checkDrivers(); err != nil {
		return Promotion{}, err
	}
	queue := WaitlistQueue(signups, true)
	if len(queue) == 0 {
		return Promotion{}, ruleError(ErrNoEligibleCandidate, "No drivers on waitlist", "")
	}
	return promotion(queue[0]), nil
}

// PromoteNonDriver moves the first waitlisted non-driver onto an open
// non-driver seat
func PromoteNonDriver(trip models.Trip, signups []models.Signup) (Promotion, error) {
	c := CapacityOf(trip, signups)
	if err := c.checkTotal(""); err != nil {
		return Promotion{}, err
	}
	if err := c.checkNonDrivers(); err != nil {
		return Promotion{}, err
	}
	queue := WaitlistQueue(signups, false)
	if len(queue) == 0 {
		return Promotion{}, ruleError(ErrNoEligibleCandidate, "No non-drivers on waitlist", "")
	}
	return promotion(queue[0]), nil
}

// ReAdd puts a specific dropped or waitlisted participant back on the roster
// if their sub-pool has room.
func ReAdd(trip models.Trip, signups []models.Signup, participantID string) (Promotion, error) {
	var target *models.Signup
	for i := range signups {
		if signups[i].ID == participantID {
			target = &signups[i]
			break
		}
	}
	if target == nil {
		return Promotion{}, ruleError(ErrParticipantNotFound, "Participant not found",
			fmt.Sprintf("participant %s is not signed up for trip %s", participantID, trip.ID))
	}
	if ParseStatus(target.Status).Category == Roster {
		return Promotion{}, ruleError(ErrNoEligibleCandidate, "Participant already on roster", target.Name)
	}

	c := CapacityOf(trip, signups)
	if err := c.checkTotal("Cannot re-add participant. "); err != nil {
		return Promotion{}, err
	}
	if target.IsDriver {
		if err := c.checkDrivers(); err != nil {
			return Promotion{}, err
		}
	} else if err := c.checkNonDrivers(); err != nil {
		return Promotion{}, err
	}
	return promotion(*target), nil
}

func promotion(s models.Signup) Promotion {
	return Promotion{Signup: s, Status: SelectedStatus(s.IsDriver)}
}
