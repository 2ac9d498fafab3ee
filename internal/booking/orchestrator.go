package booking

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"railbooker/internal/passengers"
	"railbooker/internal/trips"
	"railbooker/pkg/logger"
)

// BookingClaim is the winning worker's payload, handed to finalization
type BookingClaim struct {
	RaceID     uuid.UUID
	WorkerID   int
	Trip       trips.Trip
	Seats      []string
	TicketIDs  []int
	Passengers []passengers.Passenger
}

// Orchestrator runs seat races: it spawns workers, waits for the first
// winner, and cancels the rest.
type Orchestrator struct {
	layouts  SeatLayoutFetcher
	reserver SeatReserver
	roster   PassengerProvider
	log      *logger.Logger

	// newRand builds each worker's random source. Overridden in tests
	// for deterministic selection.
	newRand func(workerID int) *rand.Rand
}

// NewOrchestrator creates an orchestrator over the given collaborators
func NewOrchestrator(layouts SeatLayoutFetcher, reserver SeatReserver, roster PassengerProvider, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		layouts:  layouts,
		reserver: reserver,
		roster:   roster,
		log:      log,
		newRand: func(workerID int) *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
		},
	}
}

// RaceForSeats runs one race of workerCount workers over trip. It
// returns the winning claim, or nil when every worker exhausted without
// winning. A fresh arbiter is created per race, so a new race always
// starts unclaimed.
//
// The first Won outcome cancels the remaining workers; a worker caught
// mid reserve finishes or abandons under the arbiter's guard, so its
// late result can never displace the winner. Race-terminal errors
// (order limit, multiple order attempt) are returned so the outer loop
// can stop retrying.
func (o *Orchestrator) RaceForSeats(ctx context.Context, trip trips.Trip, workerCount int) (*BookingClaim, error) {
	if workerCount < 1 {
		workerCount = 1
	}

	raceID := uuid.New()
	arbiter := NewArbiter()

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.log.LogRaceStarted(ctx, raceID.String(), trip.TripID, workerCount)

	outcomes := make(chan ClaimOutcome, workerCount)
	var wg sync.WaitGroup
	for id := 1; id <= workerCount; id++ {
		worker := NewWorker(id, trip, o.layouts, o.reserver, o.roster, arbiter, o.newRand(id), o.log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes <- worker.Run(raceCtx)
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var raceErr error
	for outcome := range outcomes {
		switch outcome.Kind {
		case OutcomeWon:
			// Stop the losers; drain so every worker goroutine exits
			cancel()
			o.log.LogSeatsClaimed(ctx, raceID.String(), outcome.WorkerID, outcome.Seats)
			go func() {
				for range outcomes {
				}
			}()
			return &BookingClaim{
				RaceID:     raceID,
				WorkerID:   outcome.WorkerID,
				Trip:       trip,
				Seats:      outcome.Seats,
				TicketIDs:  outcome.TicketIDs,
				Passengers: outcome.Passengers,
			}, nil

		case OutcomeTerminalFailure:
			o.log.WithWorkerID(outcome.WorkerID).WithFields(map[string]interface{}{
				"race_id": raceID.String(),
				"reason":  outcome.Reason,
			}).Warn("worker stopped")
			if outcome.Err != nil && raceErr == nil {
				raceErr = outcome.Err
				// The whole race is doomed, stop the rest promptly
				cancel()
			}

		case OutcomeTransientFailure:
			// The worker exhausted its per-race attempt budget
			o.log.WithWorkerID(outcome.WorkerID).WithFields(map[string]interface{}{
				"race_id": raceID.String(),
				"reason":  outcome.Reason,
			}).Info("worker exhausted attempts")

		case OutcomeLostToOther:
			o.log.WithWorkerID(outcome.WorkerID).WithFields(map[string]interface{}{
				"race_id": raceID.String(),
			}).Debug("worker lost race")
		}
	}

	return nil, raceErr
}
