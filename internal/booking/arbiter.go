package booking

import "sync"

// Arbiter decides the single winner of a seat race. All workers of one
// race share one Arbiter; at most one claim ever succeeds on it, no
// matter how many workers race or how their attempts interleave.
type Arbiter struct {
	mu      sync.Mutex
	claimed bool
}

// NewArbiter creates an unclaimed arbiter for one race
func NewArbiter() *Arbiter {
	return &Arbiter{}
}

// IsClaimed reports whether the race already has a winner. Workers use
// it as a cheap bail-out before spending a network round trip.
func (a *Arbiter) IsClaimed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.claimed
}

// TryCheckAndClaim atomically claims the race if it is still open. It
// returns true exactly once across all callers.
func (a *Arbiter) TryCheckAndClaim() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.claimed {
		return false
	}
	a.claimed = true
	return true
}

// Claim runs reserve under the arbiter's guard: the race is checked,
// the reservation executed, and the claim recorded as one critical
// section. Holding the lock across the remote call serializes workers
// at the moment of reservation, so a winner is never raced by a second
// reservation that also succeeds remotely.
//
// The returned bool reports whether this caller won. When reserve
// fails the race stays open and the error is returned for
// classification.
func (a *Arbiter) Claim(reserve func() error) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.claimed {
		return false, nil
	}

	if err := reserve(); err != nil {
		return false, err
	}

	a.claimed = true
	return true, nil
}
