package booking

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestArbiterExactlyOneWinner(t *testing.T) {
	t.Parallel()

	// Repeated randomized stress: N goroutines, exactly one true, every run
	for run := 0; run < 50; run++ {
		arbiter := NewArbiter()

		const callers = 64
		var wins int64
		var wg sync.WaitGroup
		start := make(chan struct{})

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if arbiter.TryCheckAndClaim() {
					atomic.AddInt64(&wins, 1)
				}
			}()
		}

		close(start)
		wg.Wait()

		if wins != 1 {
			t.Fatalf("run %d: expected exactly 1 winner, got %d", run, wins)
		}
		if !arbiter.IsClaimed() {
			t.Fatalf("run %d: arbiter not claimed after a win", run)
		}
	}
}

func TestArbiterClaimRunsReserveOnce(t *testing.T) {
	t.Parallel()

	arbiter := NewArbiter()

	const callers = 32
	var reserveCalls int64
	var wins int64
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := arbiter.Claim(func() error {
				atomic.AddInt64(&reserveCalls, 1)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if won {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected 1 winner, got %d", wins)
	}
	// Losers must not have spent a reserve call
	if reserveCalls != 1 {
		t.Fatalf("expected 1 reserve call, got %d", reserveCalls)
	}
}

func TestArbiterClaimFailureLeavesRaceOpen(t *testing.T) {
	t.Parallel()

	arbiter := NewArbiter()
	boom := errors.New("seat taken")

	won, err := arbiter.Claim(func() error { return boom })
	if won {
		t.Fatal("failed reserve must not win")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected reserve error, got %v", err)
	}
	if arbiter.IsClaimed() {
		t.Fatal("failed reserve must leave the race unclaimed")
	}

	// A later caller can still win
	won, err = arbiter.Claim(func() error { return nil })
	if err != nil || !won {
		t.Fatalf("expected win after failed reserve, got won=%v err=%v", won, err)
	}
}

func TestArbiterIsClaimedInitiallyFalse(t *testing.T) {
	t.Parallel()

	if NewArbiter().IsClaimed() {
		t.Fatal("fresh arbiter must be unclaimed")
	}
}
