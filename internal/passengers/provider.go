package passengers

import "context"

// Provider serves a roster loaded once at startup. Workers request the
// roster on every attempt; the list is fixed for the run, so the same
// validated slice is handed out each time.
type Provider struct {
	roster []Passenger
}

// NewProvider creates a provider over a validated roster
func NewProvider(roster []Passenger) *Provider {
	return &Provider{roster: roster}
}

// Passengers returns the roster
func (p *Provider) Passengers(ctx context.Context) ([]Passenger, error) {
	return p.roster, nil
}
