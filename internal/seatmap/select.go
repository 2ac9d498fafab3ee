package seatmap

import "math/rand"

// FindRandomAdjacentGroup picks a group of groupSize mutually adjacent,
// available, non-aisle seats, or nil when no such group exists.
//
// Selection is random in two stages: first a floor (uniform over floors
// with availability), then a window (uniform over every contiguous window
// of exactly groupSize seats on that floor). The two-stage pick disperses
// parallel workers across the inventory, which lowers collision odds
// without any coordination between them.
//
// Partial groups are never returned: all passengers in one booking sit
// together or the attempt is abandoned.
func (m *SeatMap) FindRandomAdjacentGroup(groupSize int, rng *rand.Rand) []Seat {
	if groupSize <= 0 {
		return nil
	}

	floors := m.AvailableFloors()
	if len(floors) == 0 {
		return nil
	}

	floor := floors[rng.Intn(len(floors))]

	windows := floor.adjacentWindows(groupSize)
	if len(windows) == 0 {
		return nil
	}

	return windows[rng.Intn(len(windows))]
}

// adjacentWindows enumerates every contiguous window of exactly groupSize
// selectable seats across the floor's rows. Runs never cross an aisle
// placeholder or an unavailable seat, and never wrap between rows.
func (f Floor) adjacentWindows(groupSize int) [][]Seat {
	var windows [][]Seat

	for _, row := range f.Rows {
		var run []Seat
		for _, seat := range row {
			if seat.selectable() {
				run = append(run, seat)
				continue
			}
			windows = appendWindows(windows, run, groupSize)
			run = nil
		}
		windows = appendWindows(windows, run, groupSize)
	}

	return windows
}

// appendWindows slides a window of groupSize over one maximal run
func appendWindows(windows [][]Seat, run []Seat, groupSize int) [][]Seat {
	for i := 0; i+groupSize <= len(run); i++ {
		group := make([]Seat, groupSize)
		copy(group, run[i:i+groupSize])
		windows = append(windows, group)
	}
	return windows
}
