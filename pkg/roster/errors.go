package roster

import "errors"

var (
	// ErrConfiguration means the trip has no usable capacity numbers
	ErrConfiguration = errors.New("trip capacity not configured")
	// ErrEmptyPool means there are no signups to allocate
	ErrEmptyPool = errors.New("no signups to allocate")
	// ErrRosterFull means the roster or the requested sub-pool is at capacity
	ErrRosterFull = errors.New("roster full")
	// ErrNoEligibleCandidate means no waiting participant fits the open spot
	ErrNoEligibleCandidate = errors.New("no eligible candidate")
	// ErrParticipantNotFound means the participant is not signed up for the trip
	ErrParticipantNotFound = errors.New("participant not found")
)

// RuleError is a domain rule violation with a client-facing message.
// Kind is one of the package sentinels and is matched by errors.Is.
type RuleError struct {
	Kind    error
	Message string
	Details string
}

func (e *RuleError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *RuleError) Unwrap() error {
	return e.Kind
}

func ruleError(kind error, message, details string) *RuleError {
	return &RuleError{Kind: kind, Message: message, Details: details}
}
