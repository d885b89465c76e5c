package roster

import (
	"math"
	"sort"

	"github.com/arnavshah/trip-roster-api/pkg/models"
)

// Breakdown partitions a trip's signups by roster category
type Breakdown struct {
	Roster       []models.Signup
	Waitlist     []models.Signup
	Dropped      []models.Signup
	Unclassified []models.Signup

	RosterDrivers      int
	RosterNonDrivers   int
	WaitlistDrivers    int
	WaitlistNonDrivers int
}

// Classify splits signups into roster, waitlist and dropped, keeping input
// order within each partition. Signups whose status matches none of the
// categories land in Unclassified only. Driver counts use the driver flag,
// not the role named in the status text.
func Classify(signups []models.Signup) Breakdown {
	var b Breakdown
	for _, s := range signups {
		switch ParseStatus(s.Status).Category {
		case Roster:
			b.Roster = append(b.Roster, s)
			if s.IsDriver {
				b.RosterDrivers++
			} else {
				b.RosterNonDrivers++
			}
		case Waitlist:
			b.Waitlist = append(b.Waitlist, s)
			if s.IsDriver {
				b.WaitlistDrivers++
			} else {
				b.WaitlistNonDrivers++
			}
		case Dropped:
			b.Dropped = append(b.Dropped, s)
		default:
			b.Unclassified = append(b.Unclassified, s)
		}
	}
	return b
}

// RosterSize is the number of signups currently on the roster
func (b Breakdown) RosterSize() int {
	return len(b.Roster)
}

// WaitlistQueue returns the waitlisted signups with the given driver flag in
// promotion order: lowest waitlist number first, unnumbered entries after all
// numbered ones, ties kept in input order.
func WaitlistQueue(signups []models.Signup, drivers bool) []models.Signup {
	var queue []models.Signup
	for _, s := range signups {
		if s.IsDriver == drivers && ParseStatus(s.Status).Category == Waitlist {
			queue = append(queue, s)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queueRank(queue[i]) < queueRank(queue[j])
	})
	return queue
}

func queueRank(s models.Signup) int {
	if p := ParseStatus(s.Status).Position; p > 0 {
		return p
	}
	return math.MaxInt
}
