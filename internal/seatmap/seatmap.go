// Package seatmap models a trip's seat inventory (floors, rows, seats) and
// selects adjacent seat groups from it. A SeatMap is an immutable snapshot:
// workers refetch rather than mutate.
package seatmap

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Seat is one cell of a seat layout. Cells with an empty number are aisle
// placeholders and are never selectable.
type Seat struct {
	Number     string `json:"seat_number"`
	TicketID   int    `json:"ticket_id"`
	Available  bool   `json:"available"`
	Hidden     bool   `json:"hidden"`
	TicketType int    `json:"ticket_type"`
}

// IsAisle reports whether this cell is an aisle placeholder
func (s Seat) IsAisle() bool {
	return s.Number == ""
}

// selectable reports whether this seat may be part of an adjacent group
func (s Seat) selectable() bool {
	return !s.IsAisle() && s.Available && !s.Hidden
}

// Row is an ordered run of seat cells
type Row []Seat

// Floor is one floor of a coach
type Floor struct {
	Number    int    `json:"floor_number"`
	Name      string `json:"floor_name"`
	Available bool   `json:"available"`
	Rows      []Row  `json:"rows"`
}

// AvailableSeatCount counts selectable seats on the floor
func (f Floor) AvailableSeatCount() int {
	count := 0
	for _, row := range f.Rows {
		for _, seat := range row {
			if seat.selectable() {
				count++
			}
		}
	}
	return count
}

// SeatMap is a full inventory snapshot for one trip
type SeatMap struct {
	TripID      int     `json:"trip_id"`
	TripRouteID int     `json:"trip_route_id"`
	Floors      []Floor `json:"floors"`
}

// AvailableFloors returns the floors flagged as having availability
func (m *SeatMap) AvailableFloors() []Floor {
	var floors []Floor
	for _, floor := range m.Floors {
		if floor.Available {
			floors = append(floors, floor)
		}
	}
	return floors
}

// Summary renders a per-floor availability table for logging
func (m *SeatMap) Summary() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FLOOR\tROWS\tAVAILABLE")
	for _, floor := range m.Floors {
		fmt.Fprintf(w, "%s\t%d\t%d\n", floor.Name, len(floor.Rows), floor.AvailableSeatCount())
	}
	w.Flush()
	return sb.String()
}
