// Package notifications publishes booking lifecycle events to Kafka so
// downstream consumers (alerts, dashboards) learn about confirmed and
// failed bookings without polling the receipt store.
package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a booking lifecycle event
type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingFailed    EventType = "booking.failed"
)

// BookingEvent is the message published per booking outcome
type BookingEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      EventType `json:"type"`
	RaceID    uuid.UUID `json:"race_id"`
	TrainName string    `json:"train_name"`
	TripID    int       `json:"trip_id"`
	Seats     []string  `json:"seats,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToJSON serializes the event for the wire
func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one trip to the same partition so
// consumers see a trip's events in order
func (e *BookingEvent) PartitionKey() string {
	return e.RaceID.String()
}
