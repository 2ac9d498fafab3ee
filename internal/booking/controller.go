package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"railbooker/internal/railapi"
	"railbooker/internal/receipts"
	"railbooker/internal/trips"
	"railbooker/pkg/logger"
)

// State is one phase of the outer booking loop
type State string

const (
	StateSearching  State = "SEARCHING"
	StateRacing     State = "RACING"
	StateFinalizing State = "FINALIZING"
	StateDone       State = "DONE"
)

// IsValid checks if the state is a known value
func (s State) IsValid() bool {
	switch s {
	case StateSearching, StateRacing, StateFinalizing, StateDone:
		return true
	}
	return false
}

// String returns the string representation
func (s State) String() string {
	return string(s)
}

// Authenticator renews the session when the remote rejects it mid-run
type Authenticator interface {
	Login(ctx context.Context) error
}

// ControllerConfig tunes the outer booking loop
type ControllerConfig struct {
	Criteria       trips.SearchCriteria
	TripNumber     int
	AutoSelectTrip bool
	WorkerCount    int

	// MaxAttempts bounds the outer loop; 0 means retry without bound
	MaxAttempts int

	// RetryPause separates failed attempts
	RetryPause time.Duration
}

// Controller is the outer retry state machine. Each attempt walks
// Searching, Racing, Finalizing; any failure short of a fatal one loops
// back for another attempt until the bound runs out.
type Controller struct {
	trips        trips.Repository
	orchestrator *Orchestrator
	finalizer    *Finalizer
	auth         Authenticator
	cfg          ControllerConfig
	log          *logger.Logger
}

// NewController creates the outer booking controller
func NewController(tripsRepo trips.Repository, orchestrator *Orchestrator, finalizer *Finalizer, auth Authenticator, cfg ControllerConfig, log *logger.Logger) *Controller {
	if cfg.RetryPause <= 0 {
		cfg.RetryPause = transientPause
	}
	return &Controller{
		trips:        tripsRepo,
		orchestrator: orchestrator,
		finalizer:    finalizer,
		auth:         auth,
		cfg:          cfg,
		log:          log,
	}
}

// Run drives attempts until a booking confirms, the attempt bound is
// exceeded, the race hits an unrecoverable error, or ctx is canceled
func (c *Controller) Run(ctx context.Context) (*receipts.Receipt, error) {
	for attempt := 1; c.cfg.MaxAttempts == 0 || attempt <= c.cfg.MaxAttempts; attempt++ {
		receipt, err := c.attempt(ctx, attempt)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		if err != nil && !c.recoverable(ctx, err) {
			return nil, err
		}

		willRetry := c.cfg.MaxAttempts == 0 || attempt < c.cfg.MaxAttempts
		reason := "no winner this attempt"
		if err != nil {
			reason = err.Error()
		}
		c.log.LogAttemptFailed(ctx, attempt, reason, willRetry)

		if !willRetry {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.RetryPause):
		}
	}

	return nil, fmt.Errorf("booking failed after %d attempts", c.cfg.MaxAttempts)
}

// attempt is one pass through the state machine
func (c *Controller) attempt(ctx context.Context, attempt int) (*receipts.Receipt, error) {
	state := StateSearching
	c.logState(ctx, attempt, state)

	found, err := c.trips.SearchTrips(ctx, c.cfg.Criteria)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		// Inventory opens in waves; an empty search now may fill later
		return nil, errNoTrips
	}

	found = trips.FilterByPreferredTrain(found, c.cfg.Criteria.PreferredTrain)
	trip := trips.SelectTrip(found, c.cfg.TripNumber, c.cfg.AutoSelectTrip)

	state = StateRacing
	c.logState(ctx, attempt, state)

	claim, err := c.orchestrator.RaceForSeats(ctx, trip, c.cfg.WorkerCount)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, nil
	}

	state = StateFinalizing
	c.logState(ctx, attempt, state)

	journey := JourneyDetails{
		FromCity:    c.cfg.Criteria.FromCity,
		ToCity:      c.cfg.Criteria.ToCity,
		JourneyDate: trips.FormatJourneyDate(c.cfg.Criteria.JourneyDate),
		SeatClass:   c.cfg.Criteria.SeatClass,
	}
	return c.finalizer.Finalize(ctx, claim, journey)
}

// errNoTrips marks an empty search result; retried like any transient
var errNoTrips = errors.New("no trips found for the requested journey")

// recoverable decides whether the outer loop should try again after err.
// Order-limit class errors and canceled contexts end the run; an
// unauthorized session triggers a re-login and continues.
func (c *Controller) recoverable(ctx context.Context, err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false

	case railapi.IsRaceTerminal(err):
		return false

	case railapi.IsUnauthorized(err):
		c.log.Warn("session rejected, re-authenticating")
		if loginErr := c.auth.Login(ctx); loginErr != nil {
			c.log.WithError(loginErr).Error("re-authentication failed")
			return false
		}
		return true

	default:
		return true
	}
}

func (c *Controller) logState(ctx context.Context, attempt int, state State) {
	c.log.InfoWithContext(ctx, "booking state", map[string]interface{}{
		"attempt": attempt,
		"state":   state.String(),
	})
}
