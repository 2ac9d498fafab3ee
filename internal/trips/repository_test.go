package trips

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"railbooker/internal/railapi"
	"railbooker/pkg/cache"
	"railbooker/pkg/logger"
)

func searchResponse() map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"trains": []map[string]interface{}{{
				"trip_number":         "SUBARNA EXPRESS (701)",
				"departure_date_time": "01-Sep-2026, 08:00 am",
				"arrival_date_time":   "01-Sep-2026, 01:30 pm",
				"travel_time":         "05:30",
				"seat_types": []map[string]interface{}{
					{
						"type":          "S_CHAIR",
						"trip_id":       6001,
						"trip_route_id": 6101,
						"route_id":      61,
						"fare":          "320",
						"vat_amount":    48.0,
					},
					{
						"type":          "SNIGDHA",
						"trip_id":       7001,
						"trip_route_id": 7101,
						"route_id":      71,
						"fare":          "505",
						"vat_amount":    75.75,
					},
				},
				"boarding_points": []map[string]interface{}{
					{"trip_point_id": 1, "location_name": "Dhaka", "location_time": "08:00 am"},
				},
			}},
		},
	}
}

func layoutResponse() map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"seatLayout": []map[string]interface{}{{
				"floor_name":        "COACH-1",
				"seat_floor":        1,
				"seat_availability": 1,
				"layout": [][]map[string]interface{}{{
					{"seat_number": "A1", "ticket_id": 11, "seat_availability": 1},
					{"seat_number": "A2", "ticket_id": 12, "seat_availability": 2},
					{"seat_number": "", "ticket_id": 0, "seat_availability": 0},
					{"seat_number": "A3", "ticket_id": 13, "seat_availability": 1, "isHidden": true},
				}},
			}},
		},
	}
}

func newTestRepository(t *testing.T, searches, layouts *int64) Repository {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bookings/search-trips-v2":
			atomic.AddInt64(searches, 1)
			json.NewEncoder(w).Encode(searchResponse())
		case "/bookings/seat-layout":
			atomic.AddInt64(layouts, 1)
			json.NewEncoder(w).Encode(layoutResponse())
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	api := railapi.NewClient(srv.URL, 5*time.Second, logger.GetDefault())
	fileCache, err := cache.NewFileService(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRepository(api, fileCache, time.Hour, logger.GetDefault())
}

func TestSearchTripsParsesMatchingClass(t *testing.T) {
	t.Parallel()

	var searches, layouts int64
	repo := newTestRepository(t, &searches, &layouts)

	found, err := repo.SearchTrips(context.Background(), SearchCriteria{
		FromCity:    "Dhaka",
		ToCity:      "Chattogram",
		JourneyDate: "01-Sep-2026",
		SeatClass:   "SNIGDHA",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(found))
	}

	trip := found[0]
	if trip.TripID != 7001 || trip.TripRouteID != 7101 || trip.RouteID != 71 {
		t.Fatalf("wrong seat type matched: %+v", trip)
	}
	if trip.Fare != 505 || trip.TotalFare != 580.75 {
		t.Fatalf("fare parsing wrong: fare=%v total=%v", trip.Fare, trip.TotalFare)
	}
	if len(trip.BoardingPoints) != 1 || trip.BoardingPoints[0].Name != "Dhaka" {
		t.Fatalf("boarding points missing: %+v", trip.BoardingPoints)
	}
}

func TestSearchTripsServedFromCache(t *testing.T) {
	t.Parallel()

	var searches, layouts int64
	repo := newTestRepository(t, &searches, &layouts)
	criteria := SearchCriteria{
		FromCity:    "Dhaka",
		ToCity:      "Chattogram",
		JourneyDate: "01-Sep-2026",
		SeatClass:   "SNIGDHA",
	}

	for i := 0; i < 3; i++ {
		if _, err := repo.SearchTrips(context.Background(), criteria); err != nil {
			t.Fatal(err)
		}
	}

	if searches != 1 {
		t.Fatalf("expected 1 remote search, got %d", searches)
	}
}

func TestGetSeatLayoutNeverCached(t *testing.T) {
	t.Parallel()

	var searches, layouts int64
	repo := newTestRepository(t, &searches, &layouts)

	for i := 0; i < 3; i++ {
		m, err := repo.GetSeatLayout(context.Background(), 7001, 7101)
		if err != nil {
			t.Fatal(err)
		}
		if len(m.Floors) != 1 {
			t.Fatalf("expected 1 floor, got %d", len(m.Floors))
		}
	}

	// Workers need a fresh snapshot on every attempt
	if layouts != 3 {
		t.Fatalf("expected 3 remote layout fetches, got %d", layouts)
	}
}

func TestParseSeatMapFlags(t *testing.T) {
	t.Parallel()

	var searches, layouts int64
	repo := newTestRepository(t, &searches, &layouts)

	m, err := repo.GetSeatLayout(context.Background(), 7001, 7101)
	if err != nil {
		t.Fatal(err)
	}

	row := m.Floors[0].Rows[0]
	if len(row) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(row))
	}
	if !row[0].Available || row[0].Number != "A1" {
		t.Fatalf("A1 should be available: %+v", row[0])
	}
	if row[1].Available {
		t.Fatalf("A2 (availability=2) should be unavailable: %+v", row[1])
	}
	if !row[2].IsAisle() {
		t.Fatalf("empty-number cell should be an aisle: %+v", row[2])
	}
	if !row[3].Hidden {
		t.Fatalf("A3 should be hidden: %+v", row[3])
	}
}
