package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Category is the roster bucket a signup status falls into
type Category int

const (
	Unknown Category = iota
	Roster
	Waitlist
	Dropped
)

func (c Category) String() string {
	switch c {
	case Roster:
		return "roster"
	case Waitlist:
		return "waitlist"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Role is the sub-pool named in a status, if any
type Role int

const (
	RoleUnspecified Role = iota
	RoleDriver
	RoleNonDriver
)

// Canonical status strings written back to the store
const (
	SelectedDriver    = "Selected (driver)"
	SelectedNonDriver = "Selected (nondriver)"
	droppedLayout     = "01/02/2006"
)

// Status is the parsed form of a free-text signup status
type Status struct {
	Category Category
	Role     Role
	// Position is the 1-based waitlist number, 0 when absent
	Position int
	// DroppedOn is set for dropped statuses carrying a parseable date
	DroppedOn time.Time
}

var positionPattern = regexp.MustCompile(`-\s*(\d+)\s*$`)

// ParseStatus classifies a status string. Matching is case-insensitive and
// substring based so legacy values like "ON TRIP" and "WAITLIST" still
// classify. A status containing "dropped" is dropped even when it also
// mentions the roster or the waitlist; empty text is Unknown.
func ParseStatus(text string) Status {
	lower := strings.ToLower(strings.TrimSpace(text))

	var st Status
	switch {
	case lower == "":
		return st
	case strings.Contains(lower, "dropped"):
		st.Category = Dropped
		if i := strings.Index(lower, "dropped-"); i >= 0 {
			date := strings.TrimSpace(lower[i+len("dropped-"):])
			if t, err := time.Parse(droppedLayout, date); err == nil {
				st.DroppedOn = t
			}
		}
		return st
	case strings.Contains(lower, "waitlist"):
		st.Category = Waitlist
		if m := positionPattern.FindStringSubmatch(lower); m != nil {
			st.Position, _ = strconv.Atoi(m[1])
		}
	case strings.Contains(lower, "selected"), strings.Contains(lower, "on trip"):
		st.Category = Roster
	default:
		return st
	}

	switch {
	case strings.Contains(lower, "nondriver"), strings.Contains(lower, "non-driver"):
		st.Role = RoleNonDriver
	case strings.Contains(lower, "driver"):
		st.Role = RoleDriver
	}
	return st
}

// String renders the canonical store value for the status
func (s Status) String() string {
	switch s.Category {
	case Roster:
		if s.Role == RoleDriver {
			return SelectedDriver
		}
		return SelectedNonDriver
	case Waitlist:
		if s.Role == RoleDriver {
			return fmt.Sprintf("Waitlist (driver) - %d", s.Position)
		}
		return fmt.Sprintf("Waitlist (nondriver) - %d", s.Position)
	case Dropped:
		return "Dropped- " + s.DroppedOn.Format(droppedLayout)
	default:
		return ""
	}
}

func roleOf(isDriver bool) Role {
	if isDriver {
		return RoleDriver
	}
	return RoleNonDriver
}

// SelectedStatus is the roster value for a participant
func SelectedStatus(isDriver bool) string {
	return Status{Category: Roster, Role: roleOf(isDriver)}.String()
}

// WaitlistStatus is the waitlist value at a 1-based position within a sub-pool
func WaitlistStatus(isDriver bool, position int) string {
	return Status{Category: Waitlist, Role: roleOf(isDriver), Position: position}.String()
}

// DroppedStatus is the dropped value for the given day
func DroppedStatus(day time.Time) string {
	return Status{Category: Dropped, DroppedOn: day}.String()
}
