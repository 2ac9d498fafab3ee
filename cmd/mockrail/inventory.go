package main

import (
	"fmt"
	"sync"
)

// seatCell mirrors the wire shape of one seat in a layout response
type seatCell struct {
	SeatNumber       string `json:"seat_number"`
	TicketID         int    `json:"ticket_id"`
	SeatAvailability int    `json:"seat_availability"`
	IsHidden         bool   `json:"isHidden"`
	TicketType       int    `json:"ticket_type"`
}

// inventory is the mock's seat stock for one trip. Reservations go
// through a mutex so concurrent clients contend the way they would
// against the real service.
type inventory struct {
	mu       sync.Mutex
	reserved map[int]bool
	coaches  []string
	rows     int
	seatsPer int
}

// newInventory builds coaches x rows of seats, 4 per row with an aisle
// after the second seat
func newInventory(coaches []string, rows int) *inventory {
	return &inventory{
		reserved: make(map[int]bool),
		coaches:  coaches,
		rows:     rows,
		seatsPer: 4,
	}
}

// ticketID derives a stable ticket id from coach, row, and seat position
func (inv *inventory) ticketID(coach, row, pos int) int {
	return 100000 + coach*10000 + row*10 + pos
}

// layout renders the full floor list, marking reserved seats unavailable.
// Each coach is one "floor" with rows of 2+aisle+2 seats.
func (inv *inventory) layout() []map[string]interface{} {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	floors := make([]map[string]interface{}, 0, len(inv.coaches))
	for ci, coach := range inv.coaches {
		available := 0
		rows := make([][]seatCell, 0, inv.rows)
		for r := 1; r <= inv.rows; r++ {
			row := make([]seatCell, 0, inv.seatsPer+1)
			for p := 1; p <= inv.seatsPer; p++ {
				if p == 3 {
					// Aisle placeholder between seat pairs
					row = append(row, seatCell{})
				}
				id := inv.ticketID(ci, r, p)
				avail := 1
				if inv.reserved[id] {
					avail = 2
				} else {
					available++
				}
				row = append(row, seatCell{
					SeatNumber:       fmt.Sprintf("%s-%d%c", coach, r, 'A'+p-1),
					TicketID:         id,
					SeatAvailability: avail,
					TicketType:       1,
				})
			}
			rows = append(rows, row)
		}

		floorAvail := 0
		if available > 0 {
			floorAvail = 1
		}
		floors = append(floors, map[string]interface{}{
			"floor_name":        coach,
			"seat_floor":        ci + 1,
			"seat_availability": floorAvail,
			"layout":            rows,
		})
	}
	return floors
}

// reserve claims one ticket. The check and the write are one critical
// section, so exactly one caller ever wins a contested seat.
func (inv *inventory) reserve(ticketID int) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.reserved[ticketID] {
		return fmt.Errorf("seat is already reserved")
	}
	inv.reserved[ticketID] = true
	return nil
}

// release frees a ticket, used by the reservation expiry sweep
func (inv *inventory) release(ticketID int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	delete(inv.reserved, ticketID)
}
