package booking

import "railbooker/internal/passengers"

// OutcomeKind classifies how a worker's claim attempt ended
type OutcomeKind string

const (
	// OutcomeWon means this worker reserved its seat group and holds the
	// race's single claim.
	OutcomeWon OutcomeKind = "WON"

	// OutcomeLostToOther means another worker claimed first; this worker
	// stops without error.
	OutcomeLostToOther OutcomeKind = "LOST_TO_OTHER"

	// OutcomeTransientFailure means the attempt failed in a way worth
	// retrying after a short pause: no adjacent group in the snapshot,
	// a timeout, a generic remote error.
	OutcomeTransientFailure OutcomeKind = "TRANSIENT_FAILURE"

	// OutcomeTerminalFailure means this worker must stop: the seat group
	// was taken first, the session is unauthorized, or the remote hit an
	// order limit. Order-limit class errors additionally terminate the
	// whole race; the Err field carries them to the orchestrator.
	OutcomeTerminalFailure OutcomeKind = "TERMINAL_FAILURE"
)

// IsValid checks if the outcome kind is a known value
func (k OutcomeKind) IsValid() bool {
	switch k {
	case OutcomeWon, OutcomeLostToOther, OutcomeTransientFailure, OutcomeTerminalFailure:
		return true
	}
	return false
}

// String returns the string representation
func (k OutcomeKind) String() string {
	return string(k)
}

// ClaimOutcome is the result of one worker attempt. Seats, TicketIDs and
// Passengers are populated only on a Won outcome.
type ClaimOutcome struct {
	Kind       OutcomeKind
	WorkerID   int
	Seats      []string
	TicketIDs  []int
	Passengers []passengers.Passenger
	Reason     string
	Err        error
}
