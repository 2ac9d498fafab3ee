package booking

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"railbooker/internal/passengers"
	"railbooker/internal/railapi"
	"railbooker/internal/seatmap"
	"railbooker/internal/trips"
	"railbooker/pkg/logger"
)

func testTrip() trips.Trip {
	return trips.Trip{
		TrainName:   "TEST EXPRESS",
		TripID:      7001,
		TripRouteID: 7101,
		RouteID:     71,
	}
}

func testRoster(n int) []passengers.Passenger {
	roster := make([]passengers.Passenger, n)
	for i := range roster {
		roster[i] = passengers.Passenger{
			Name:   "Passenger",
			Email:  "p@example.com",
			Mobile: "01700000000",
			Gender: "male",
			Type:   "Adult",
		}
	}
	return roster
}

// fakeLayouts serves a fixed snapshot, or an error
type fakeLayouts struct {
	snapshot *seatmap.SeatMap
	err      error
}

func (f *fakeLayouts) GetSeatLayout(ctx context.Context, tripID, tripRouteID int) (*seatmap.SeatMap, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

// fakeReserver records reservations and fails configured ticket IDs
type fakeReserver struct {
	mu       sync.Mutex
	reserved []int
	failWith error
}

func (f *fakeReserver) ReserveSeat(ctx context.Context, ticketID, routeID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.reserved = append(f.reserved, ticketID)
	return nil
}

type fakeRoster struct {
	roster []passengers.Passenger
}

func (f *fakeRoster) Passengers(ctx context.Context) ([]passengers.Passenger, error) {
	return f.roster, nil
}

func twoSeatSnapshot() *seatmap.SeatMap {
	return &seatmap.SeatMap{
		TripID:      7001,
		TripRouteID: 7101,
		Floors: []seatmap.Floor{{
			Number:    1,
			Name:      "COACH-1",
			Available: true,
			Rows: []seatmap.Row{{
				{Number: "A1", TicketID: 11, Available: true},
				{Number: "A2", TicketID: 12, Available: true},
			}},
		}},
	}
}

func newTestWorker(layouts SeatLayoutFetcher, reserver SeatReserver, roster PassengerProvider, arbiter *Arbiter) *Worker {
	return NewWorker(1, testTrip(), layouts, reserver, roster, arbiter, rand.New(rand.NewSource(1)), logger.GetDefault())
}

func TestWorkerAttemptWins(t *testing.T) {
	t.Parallel()

	reserver := &fakeReserver{}
	w := newTestWorker(&fakeLayouts{snapshot: twoSeatSnapshot()}, reserver, &fakeRoster{roster: testRoster(2)}, NewArbiter())

	outcome := w.Attempt(context.Background())
	if outcome.Kind != OutcomeWon {
		t.Fatalf("expected WON, got %s (%s)", outcome.Kind, outcome.Reason)
	}
	if len(outcome.Seats) != 2 || len(outcome.TicketIDs) != 2 {
		t.Fatalf("winning outcome missing seats: %+v", outcome)
	}
	if len(outcome.Passengers) != 2 {
		t.Fatalf("winning outcome missing passengers: %+v", outcome)
	}
	if len(reserver.reserved) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(reserver.reserved))
	}
}

func TestWorkerAttemptLosesWhenAlreadyClaimed(t *testing.T) {
	t.Parallel()

	arbiter := NewArbiter()
	arbiter.TryCheckAndClaim()

	reserver := &fakeReserver{}
	w := newTestWorker(&fakeLayouts{snapshot: twoSeatSnapshot()}, reserver, &fakeRoster{roster: testRoster(2)}, arbiter)

	outcome := w.Attempt(context.Background())
	if outcome.Kind != OutcomeLostToOther {
		t.Fatalf("expected LOST_TO_OTHER, got %s", outcome.Kind)
	}
	if len(reserver.reserved) != 0 {
		t.Fatal("losing worker must not issue reservations")
	}
}

func TestWorkerAttemptTransientWhenNoSeats(t *testing.T) {
	t.Parallel()

	// Roster of 3 but the longest run is 2
	w := newTestWorker(&fakeLayouts{snapshot: twoSeatSnapshot()}, &fakeReserver{}, &fakeRoster{roster: testRoster(3)}, NewArbiter())

	outcome := w.Attempt(context.Background())
	if outcome.Kind != OutcomeTransientFailure {
		t.Fatalf("expected TRANSIENT_FAILURE, got %s", outcome.Kind)
	}
	if outcome.Reason != "no seats found" {
		t.Fatalf("unexpected reason %q", outcome.Reason)
	}
}

func TestWorkerAttemptSeatReservedIsTerminal(t *testing.T) {
	t.Parallel()

	reserver := &fakeReserver{failWith: &railapi.APIError{
		Kind:     railapi.KindSeatReserved,
		Status:   422,
		Endpoint: "bookings/reserve-seat",
		Message:  "seat is already reserved",
	}}
	arbiter := NewArbiter()
	w := newTestWorker(&fakeLayouts{snapshot: twoSeatSnapshot()}, reserver, &fakeRoster{roster: testRoster(2)}, arbiter)

	outcome := w.Attempt(context.Background())
	if outcome.Kind != OutcomeTerminalFailure {
		t.Fatalf("expected TERMINAL_FAILURE, got %s", outcome.Kind)
	}
	if outcome.Err != nil {
		t.Fatal("seat-reserved is terminal for the worker only, not the race")
	}
	if arbiter.IsClaimed() {
		t.Fatal("failed reservation must leave the arbiter unclaimed")
	}
}

func TestWorkerAttemptOrderLimitSurfacesRaceError(t *testing.T) {
	t.Parallel()

	reserver := &fakeReserver{failWith: &railapi.APIError{
		Kind:    railapi.KindOrderLimit,
		Status:  422,
		Message: "orderlimitexceeded",
	}}
	w := newTestWorker(&fakeLayouts{snapshot: twoSeatSnapshot()}, reserver, &fakeRoster{roster: testRoster(2)}, NewArbiter())

	outcome := w.Attempt(context.Background())
	if outcome.Kind != OutcomeTerminalFailure {
		t.Fatalf("expected TERMINAL_FAILURE, got %s", outcome.Kind)
	}
	if !railapi.IsRaceTerminal(outcome.Err) {
		t.Fatalf("expected race-terminal error, got %v", outcome.Err)
	}
}

func TestWorkerAttemptGenericFetchErrorIsTransient(t *testing.T) {
	t.Parallel()

	w := newTestWorker(&fakeLayouts{err: context.DeadlineExceeded}, &fakeReserver{}, &fakeRoster{roster: testRoster(1)}, NewArbiter())

	outcome := w.Attempt(context.Background())
	if outcome.Kind != OutcomeTransientFailure {
		t.Fatalf("expected TRANSIENT_FAILURE, got %s", outcome.Kind)
	}
}

func TestWorkerAttemptCanceledContextLoses(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := newTestWorker(&fakeLayouts{snapshot: twoSeatSnapshot()}, &fakeReserver{}, &fakeRoster{roster: testRoster(1)}, NewArbiter())

	outcome := w.Attempt(ctx)
	if outcome.Kind != OutcomeLostToOther {
		t.Fatalf("expected LOST_TO_OTHER on canceled context, got %s", outcome.Kind)
	}
}

func TestWorkerRunStopsOnUnclassifiedError(t *testing.T) {
	t.Parallel()

	w := newTestWorker(&fakeLayouts{err: errors.New("schema drift")}, &fakeReserver{}, &fakeRoster{roster: testRoster(1)}, NewArbiter())

	outcome := w.Run(context.Background())
	if outcome.Kind != OutcomeTerminalFailure {
		t.Fatalf("expected TERMINAL_FAILURE, got %s", outcome.Kind)
	}
	if outcome.Err == nil {
		t.Fatal("unclassified errors must surface for logging")
	}
}
