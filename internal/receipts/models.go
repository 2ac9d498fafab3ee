// Package receipts persists confirmed bookings, to local JSON files or
// to Postgres.
package receipts

import (
	"time"

	"github.com/google/uuid"

	"railbooker/internal/passengers"
)

// Receipt is one confirmed booking
type Receipt struct {
	ID           uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	TrainName    string                 `gorm:"type:varchar(100);not null" json:"train_name"`
	FromCity     string                 `gorm:"type:varchar(100);not null" json:"from_city"`
	ToCity       string                 `gorm:"type:varchar(100);not null" json:"to_city"`
	JourneyDate  string                 `gorm:"type:varchar(20);not null" json:"journey_date"`
	SeatClass    string                 `gorm:"type:varchar(30);not null" json:"seat_class"`
	TripID       int                    `gorm:"index;not null" json:"trip_id"`
	TripRouteID  int                    `gorm:"not null" json:"trip_route_id"`
	Seats        []string               `gorm:"serializer:json;type:jsonb" json:"seats"`
	TicketIDs    []int                  `gorm:"serializer:json;type:jsonb" json:"ticket_ids"`
	Passengers   []passengers.Passenger `gorm:"serializer:json;type:jsonb" json:"passengers"`
	TotalFare    float64                `gorm:"not null" json:"total_fare"`
	PaymentURL   string                 `gorm:"type:text" json:"payment_url,omitempty"`
	WinnerWorker int                    `json:"winner_worker"`
	BookedAt     time.Time              `gorm:"index" json:"booked_at"`
	CreatedAt    time.Time              `json:"created_at"`
}

// TableName sets the table name for Receipt
func (Receipt) TableName() string {
	return "receipts"
}
