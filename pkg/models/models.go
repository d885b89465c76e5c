package models

import "time"

// TripStatus mirrors the trip status column of the signup sheet
type TripStatus string

const (
	TripOpen      TripStatus = "Open"
	TripWaitlist  TripStatus = "Waitlist"
	TripFull      TripStatus = "Full"
	TripCompleted TripStatus = "Completed"
)

// Trip represents an outing participants can sign up for
type Trip struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	LeadName  string     `json:"leadName,omitempty"`
	StartDate string     `json:"startDate"`
	EndDate   string     `json:"endDate"`
	Status    TripStatus `json:"status,omitempty"`
	// Capacity includes the trip leads and is the authoritative ceiling
	Capacity int `json:"capacity"`
	// DriverSeats is the number of additional drivers the trip needs
	DriverSeats       int       `json:"driverSeats"`
	NonDriverCapacity int       `json:"nonDriverCapacity"`
	Cost              []float64 `json:"cost,omitempty"`
	TripTypes         []string  `json:"tripTypes,omitempty"`
	Full              string    `json:"full,omitempty"`
}

// Signup represents one participant's signup for one or more trips
type Signup struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TripIDs  []string `json:"tripIds"`
	IsDriver bool     `json:"isDriver"`
	Status   string   `json:"status"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
}

// HasTrip reports whether the signup is linked to the given trip
func (s Signup) HasTrip(tripID string) bool {
	for _, id := range s.TripIDs {
		if id == tripID {
			return true
		}
	}
	return false
}

// RosterEvent records a status change written to the store
type RosterEvent struct {
	TripID    string    `json:"tripId"`
	SignupID  string    `json:"signupId"`
	Status    string    `json:"status"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"createdAt"`
}

// Actions recorded in the roster event log
const (
	ActionApprove      = "approve-randomization"
	ActionAddWaitlist  = "add-from-waitlist"
	ActionAddDriver    = "add-driver"
	ActionAddNonDriver = "add-non-driver"
	ActionReAdd        = "re-add"
	ActionDrop         = "drop"
)

// LoginRequest is the body of the login endpoint
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// TripRequest is the body of the randomize and single-add endpoints
type TripRequest struct {
	TripID string `json:"tripId" binding:"required"`
}

// ApproveRequest echoes a staged proposal back for commit
type ApproveRequest struct {
	TripID      string   `json:"tripId" binding:"required"`
	RosterIDs   []string `json:"rosterIds" binding:"required"`
	WaitlistIDs []string `json:"waitlistIds" binding:"required"`
}

// ParticipantRequest is the body of the re-add and drop endpoints
type ParticipantRequest struct {
	TripID          string `json:"tripId" binding:"required"`
	ParticipantID   string `json:"participantId" binding:"required"`
	ParticipantName string `json:"participantName"`
}

// TripsResponse lists every trip
type TripsResponse struct {
	Trips []Trip `json:"trips"`
}

// SignupsResponse is a trip's signups split into roster categories
type SignupsResponse struct {
	Signups     []Signup `json:"signups"`
	Roster      []Signup `json:"roster"`
	Waitlist    []Signup `json:"waitlist"`
	Dropped     []Signup `json:"dropped"`
	DriverCount int      `json:"driverCount"`
}

// RandomizeResponse carries a staged proposal awaiting approval
type RandomizeResponse struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	ProposedRoster   []Signup `json:"proposedRoster"`
	ProposedWaitlist []Signup `json:"proposedWaitlist"`
}

// ActionResponse is returned by approve and drop
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AddResponse is returned by the single-add operations
type AddResponse struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message"`
	AddedParticipant *Signup `json:"addedParticipant,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
