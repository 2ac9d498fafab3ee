package trips

import (
	"testing"
	"time"
)

func TestFormatJourneyDate(t *testing.T) {
	t.Parallel()

	today := time.Now().Format("02-Jan-2006")
	inTen := time.Now().AddDate(0, 0, 10).Format("02-Jan-2006")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"explicit date passes through", "15-Sep-2026", "15-Sep-2026"},
		{"auto is today", "auto", today},
		{"auto uppercase", "AUTO", today},
		{"auto plus offset", "auto+10", inTen},
		{"auto with junk offset", "auto+x", today},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatJourneyDate(tt.input); got != tt.want {
				t.Errorf("FormatJourneyDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilterByPreferredTrain(t *testing.T) {
	t.Parallel()

	list := []Trip{
		{TrainName: "SUBARNA EXPRESS (701)"},
		{TrainName: "MOHANAGAR PROVATI (704)"},
	}

	filtered := FilterByPreferredTrain(list, "subarna")
	if len(filtered) != 1 || filtered[0].TrainName != "SUBARNA EXPRESS (701)" {
		t.Fatalf("unexpected filter result: %+v", filtered)
	}

	// No match falls back to the full list
	fallback := FilterByPreferredTrain(list, "nonexistent")
	if len(fallback) != 2 {
		t.Fatalf("expected fallback to full list, got %+v", fallback)
	}

	// Empty preference is a no-op
	if got := FilterByPreferredTrain(list, ""); len(got) != 2 {
		t.Fatalf("expected unfiltered list, got %+v", got)
	}
}

func TestSelectTrip(t *testing.T) {
	t.Parallel()

	list := []Trip{{TripID: 1}, {TripID: 2}, {TripID: 3}}

	if got := SelectTrip(list, 2, false); got.TripID != 2 {
		t.Errorf("expected trip 2, got %d", got.TripID)
	}
	if got := SelectTrip(list, 99, false); got.TripID != 1 {
		t.Errorf("out-of-range selection should clamp to first, got %d", got.TripID)
	}
	if got := SelectTrip(list, 3, true); got.TripID != 1 {
		t.Errorf("auto-select should pick first, got %d", got.TripID)
	}
	if got := SelectTrip(list[:1], 0, false); got.TripID != 1 {
		t.Errorf("single trip should be picked regardless, got %d", got.TripID)
	}
}

func TestFindBoardingPoint(t *testing.T) {
	t.Parallel()

	trip := Trip{BoardingPoints: []BoardingPoint{
		{ID: 1, Name: "Dhaka"},
		{ID: 2, Name: "Dhaka Airport"},
		{ID: 3, Name: "Joydebpur"},
	}}

	if got := trip.FindBoardingPoint("joydebpur"); got.ID != 3 {
		t.Errorf("expected boarding point 3, got %d", got.ID)
	}
	// Prefix match returns the first hit
	if got := trip.FindBoardingPoint("dhaka"); got.ID != 1 {
		t.Errorf("expected boarding point 1, got %d", got.ID)
	}
	// Unknown city falls back to the first point
	if got := trip.FindBoardingPoint("sylhet"); got.ID != 1 {
		t.Errorf("expected fallback to first point, got %d", got.ID)
	}

	var empty Trip
	if got := empty.FindBoardingPoint("dhaka"); got.ID != 0 {
		t.Errorf("expected zero boarding point, got %+v", got)
	}
}
