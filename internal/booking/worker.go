package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"railbooker/internal/passengers"
	"railbooker/internal/railapi"
	"railbooker/internal/seatmap"
	"railbooker/internal/trips"
	"railbooker/pkg/logger"
)

// SeatLayoutFetcher fetches a fresh seat inventory snapshot for a trip
type SeatLayoutFetcher interface {
	GetSeatLayout(ctx context.Context, tripID, tripRouteID int) (*seatmap.SeatMap, error)
}

// SeatReserver claims a single seat against the remote service
type SeatReserver interface {
	ReserveSeat(ctx context.Context, ticketID, routeID int) error
}

// PassengerProvider prepares the passenger list for one attempt
type PassengerProvider interface {
	Passengers(ctx context.Context) ([]passengers.Passenger, error)
}

// transientPause is how long a worker sleeps after a transient failure
// before trying again.
const transientPause = 100 * time.Millisecond

// raceAttemptLimit bounds one worker's attempts within a single race.
// When every worker exhausts its attempts the race ends without a
// winner and the outer retry loop decides whether to start a new one.
const raceAttemptLimit = 25

// Worker is one unit of concurrent acquisition. Workers of a race share
// the trip, the arbiter, and the remote client; each carries its own
// random source so seeded tests stay deterministic per worker.
type Worker struct {
	id       int
	trip     trips.Trip
	layouts  SeatLayoutFetcher
	reserver SeatReserver
	roster   PassengerProvider
	arbiter  *Arbiter
	rng      *rand.Rand
	log      *logger.Logger
}

// NewWorker creates a worker for one race
func NewWorker(id int, trip trips.Trip, layouts SeatLayoutFetcher, reserver SeatReserver, roster PassengerProvider, arbiter *Arbiter, rng *rand.Rand, log *logger.Logger) *Worker {
	return &Worker{
		id:       id,
		trip:     trip,
		layouts:  layouts,
		reserver: reserver,
		roster:   roster,
		arbiter:  arbiter,
		rng:      rng,
		log:      log.WithWorkerID(id),
	}
}

// Run loops attempts until the worker wins, loses to another worker,
// fails terminally, or exhausts its per-race attempt budget. Transient
// failures pause briefly and try again; context cancellation ends the
// loop as LostToOther since the race is over for this worker either way.
func (w *Worker) Run(ctx context.Context) ClaimOutcome {
	var outcome ClaimOutcome
	for attempt := 1; attempt <= raceAttemptLimit; attempt++ {
		outcome = w.Attempt(ctx)
		if outcome.Kind != OutcomeTransientFailure {
			return outcome
		}

		w.log.WithFields(map[string]interface{}{"reason": outcome.Reason}).Debug("attempt failed, retrying")

		select {
		case <-ctx.Done():
			return ClaimOutcome{Kind: OutcomeLostToOther, WorkerID: w.id}
		case <-time.After(transientPause):
		}
	}
	return outcome
}

// Attempt performs one acquisition attempt
func (w *Worker) Attempt(ctx context.Context) ClaimOutcome {
	// Fast path: once someone has won, skip the network entirely
	if w.arbiter.IsClaimed() {
		return ClaimOutcome{Kind: OutcomeLostToOther, WorkerID: w.id}
	}

	if err := ctx.Err(); err != nil {
		return ClaimOutcome{Kind: OutcomeLostToOther, WorkerID: w.id}
	}

	// The snapshot fetch and the roster preparation are independent
	var (
		snapshot *seatmap.SeatMap
		roster   []passengers.Passenger
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = w.layouts.GetSeatLayout(gctx, w.trip.TripID, w.trip.TripRouteID)
		return err
	})
	g.Go(func() error {
		var err error
		roster, err = w.roster.Passengers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return w.classify(err)
	}

	if w.log.Enabled(ctx, slog.LevelDebug) {
		w.log.Debug("seat snapshot\n" + snapshot.Summary())
	}

	group := snapshot.FindRandomAdjacentGroup(len(roster), w.rng)
	if len(group) == 0 {
		return ClaimOutcome{
			Kind:     OutcomeTransientFailure,
			WorkerID: w.id,
			Reason:   "no seats found",
		}
	}

	won, err := w.arbiter.Claim(func() error {
		return w.reserveGroup(ctx, group)
	})
	if err != nil {
		return w.classify(err)
	}
	if !won {
		return ClaimOutcome{Kind: OutcomeLostToOther, WorkerID: w.id}
	}

	seats := make([]string, 0, len(group))
	ticketIDs := make([]int, 0, len(group))
	for _, seat := range group {
		seats = append(seats, seat.Number)
		ticketIDs = append(ticketIDs, seat.TicketID)
	}

	return ClaimOutcome{
		Kind:       OutcomeWon,
		WorkerID:   w.id,
		Seats:      seats,
		TicketIDs:  ticketIDs,
		Passengers: roster,
	}
}

// reserveGroup claims every seat of the group concurrently. The remote
// service gives no all-or-nothing guarantee across seats; on any failure
// the attempt is abandoned whole and the first error is reported, since
// a partial group never seats the roster together.
func (w *Worker) reserveGroup(ctx context.Context, group []seatmap.Seat) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, seat := range group {
		g.Go(func() error {
			if err := w.reserver.ReserveSeat(gctx, seat.TicketID, w.trip.RouteID); err != nil {
				return fmt.Errorf("seat %s: %w", seat.Number, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// classify converts a remote error into a ClaimOutcome per the failure
// taxonomy. Errors that should end the whole race travel onward in Err.
func (w *Worker) classify(err error) ClaimOutcome {
	switch {
	case errors.Is(err, context.Canceled):
		return ClaimOutcome{Kind: OutcomeLostToOther, WorkerID: w.id}

	case railapi.IsRaceTerminal(err):
		return ClaimOutcome{
			Kind:     OutcomeTerminalFailure,
			WorkerID: w.id,
			Reason:   err.Error(),
			Err:      err,
		}

	case railapi.IsUnauthorized(err):
		// The session token is shared; one worker seeing 401 means every
		// worker will, so the error surfaces for a re-login
		return ClaimOutcome{
			Kind:     OutcomeTerminalFailure,
			WorkerID: w.id,
			Reason:   err.Error(),
			Err:      err,
		}

	case railapi.IsSeatAlreadyReserved(err):
		return ClaimOutcome{
			Kind:     OutcomeTerminalFailure,
			WorkerID: w.id,
			Reason:   err.Error(),
		}

	case railapi.IsTransient(err):
		return ClaimOutcome{
			Kind:     OutcomeTransientFailure,
			WorkerID: w.id,
			Reason:   err.Error(),
		}

	default:
		// Unclassified errors stop the worker and surface for logging
		return ClaimOutcome{
			Kind:     OutcomeTerminalFailure,
			WorkerID: w.id,
			Reason:   err.Error(),
			Err:      err,
		}
	}
}
