package cache

import (
	"context"
	"fmt"
	"time"
)

// Service is the trip search cache consumed by the trip repository.
// Implementations must be safe for concurrent use.
type Service interface {
	// Get unmarshals the cached value for key into dest.
	// Returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// ClearAll drops every entry. Used by the --refresh flag.
	ClearAll(ctx context.Context) error

	// Health check
	Ping(ctx context.Context) error
}

// Error definitions
var (
	ErrCacheMiss = fmt.Errorf("cache miss")
)

// SearchKey builds the cache key for a trip search
func SearchKey(fromCity, toCity, date, seatClass string) string {
	return fmt.Sprintf("search_%s_%s_%s_%s", fromCity, toCity, date, seatClass)
}

// SeatLayoutKey builds the cache key for a seat layout
func SeatLayoutKey(tripID, tripRouteID int) string {
	return fmt.Sprintf("seat_layout_%d_%d", tripID, tripRouteID)
}
