package trips

import (
	"strconv"
	"strings"
	"time"
)

// BoardingPoint is one boarding option on a trip
type BoardingPoint struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Time string `json:"time"`
	Date string `json:"date"`
}

// Trip is one bookable train trip in the requested seat class
type Trip struct {
	TrainName      string          `json:"train_name"`
	DepartureTime  string          `json:"departure_time"`
	ArrivalTime    string          `json:"arrival_time"`
	TravelTime     string          `json:"travel_time"`
	TripID         int             `json:"trip_id"`
	TripRouteID    int             `json:"trip_route_id"`
	RouteID        int             `json:"route_id"`
	Fare           float64         `json:"fare"`
	VatAmount      float64         `json:"vat_amount"`
	TotalFare      float64         `json:"total_fare"`
	BoardingPoints []BoardingPoint `json:"boarding_points"`
}

// FindBoardingPoint returns the boarding point whose name starts with
// fromCity, falling back to the first one
func (t Trip) FindBoardingPoint(fromCity string) BoardingPoint {
	for _, bp := range t.BoardingPoints {
		if strings.HasPrefix(strings.ToLower(bp.Name), strings.ToLower(fromCity)) {
			return bp
		}
	}
	if len(t.BoardingPoints) > 0 {
		return t.BoardingPoints[0]
	}
	return BoardingPoint{}
}

// SearchCriteria describes one trip search
type SearchCriteria struct {
	FromCity       string
	ToCity         string
	JourneyDate    string
	SeatClass      string
	PreferredTrain string
}

// FormatJourneyDate resolves a configured journey date to DD-MMM-YYYY.
// "auto" means today; "auto+N" means today plus N days; anything else is
// passed through unchanged.
func FormatJourneyDate(dateStr string) string {
	lower := strings.ToLower(dateStr)
	if !strings.HasPrefix(lower, "auto") {
		return dateStr
	}

	daysOffset := 0
	if idx := strings.Index(lower, "+"); idx >= 0 {
		if n, err := strconv.Atoi(lower[idx+1:]); err == nil {
			daysOffset = n
		}
	}

	return time.Now().AddDate(0, 0, daysOffset).Format("02-Jan-2006")
}

// FilterByPreferredTrain keeps trips whose train name contains name
// (case-insensitive). When nothing matches, the original list is returned
// so the caller can still book something.
func FilterByPreferredTrain(trips []Trip, name string) []Trip {
	if name == "" {
		return trips
	}

	var filtered []Trip
	for _, trip := range trips {
		if strings.Contains(strings.ToLower(trip.TrainName), strings.ToLower(name)) {
			filtered = append(filtered, trip)
		}
	}

	if len(filtered) == 0 {
		return trips
	}
	return filtered
}

// SelectTrip picks a trip by 1-based number, clamping invalid selections
// to the first trip. autoSelect short-circuits to the first trip.
func SelectTrip(trips []Trip, tripNumber int, autoSelect bool) Trip {
	if autoSelect || len(trips) == 1 {
		return trips[0]
	}

	idx := tripNumber - 1
	if idx < 0 || idx >= len(trips) {
		idx = 0
	}
	return trips[idx]
}
