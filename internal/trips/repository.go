package trips

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"railbooker/internal/railapi"
	"railbooker/internal/seatmap"
	"railbooker/pkg/cache"
	"railbooker/pkg/logger"
)

// Repository interface defines trip lookup operations
type Repository interface {
	SearchTrips(ctx context.Context, criteria SearchCriteria) ([]Trip, error)
	GetSeatLayout(ctx context.Context, tripID, tripRouteID int) (*seatmap.SeatMap, error)
}

// repository implements Repository against the remote API with a
// cache-aside on trip searches. Seat layouts are never cached: workers
// need a fresh availability snapshot per attempt.
type repository struct {
	api      *railapi.Client
	cache    cache.Service
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewRepository creates a trip repository
func NewRepository(api *railapi.Client, cacheService cache.Service, cacheTTL time.Duration, log *logger.Logger) Repository {
	return &repository{
		api:      api,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// SearchTrips searches trips matching criteria, serving repeated searches
// from cache
func (r *repository) SearchTrips(ctx context.Context, criteria SearchCriteria) ([]Trip, error) {
	date := FormatJourneyDate(criteria.JourneyDate)
	key := cache.SearchKey(criteria.FromCity, criteria.ToCity, date, criteria.SeatClass)

	var resp railapi.SearchTripsResponse
	err := r.cache.Get(ctx, key, &resp)
	if err == nil {
		return parseTrips(&resp, criteria.SeatClass), nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.log.WithError(err).Warn("trip search cache read failed")
	}

	fresh, err := r.api.SearchTrips(ctx, criteria.FromCity, criteria.ToCity, date, criteria.SeatClass)
	if err != nil {
		return nil, fmt.Errorf("trip search failed: %w", err)
	}

	if err := r.cache.Set(ctx, key, fresh, r.cacheTTL); err != nil {
		r.log.WithError(err).Warn("trip search cache write failed")
	}

	return parseTrips(fresh, criteria.SeatClass), nil
}

// GetSeatLayout fetches and parses a fresh seat inventory snapshot
func (r *repository) GetSeatLayout(ctx context.Context, tripID, tripRouteID int) (*seatmap.SeatMap, error) {
	resp, err := r.api.GetSeatLayout(ctx, tripID, tripRouteID)
	if err != nil {
		return nil, err
	}

	return parseSeatMap(resp, tripID, tripRouteID), nil
}

// parseTrips extracts the trips matching seatClass from a search response
func parseTrips(resp *railapi.SearchTripsResponse, seatClass string) []Trip {
	var trips []Trip

	for _, train := range resp.Data.Trains {
		for _, seatType := range train.SeatTypes {
			if seatType.Type != seatClass {
				continue
			}

			fare, err := strconv.ParseFloat(seatType.Fare, 64)
			if err != nil {
				fare = 0
			}

			var boardingPoints []BoardingPoint
			for _, point := range train.BoardingPoints {
				boardingPoints = append(boardingPoints, BoardingPoint{
					ID:   point.TripPointID,
					Name: point.LocationName,
					Time: point.LocationTime,
					Date: point.LocationDate,
				})
			}

			trips = append(trips, Trip{
				TrainName:      train.TripNumber,
				DepartureTime:  train.DepartureDateTime,
				ArrivalTime:    train.ArrivalDateTime,
				TravelTime:     train.TravelTime,
				TripID:         seatType.TripID,
				TripRouteID:    seatType.TripRouteID,
				RouteID:        seatType.RouteID,
				Fare:           fare,
				VatAmount:      seatType.VatAmount,
				TotalFare:      fare + seatType.VatAmount,
				BoardingPoints: boardingPoints,
			})

			// Found the matching seat class, move to the next train
			break
		}
	}

	return trips
}

// parseSeatMap converts a seat layout response into a SeatMap snapshot
func parseSeatMap(resp *railapi.SeatLayoutResponse, tripID, tripRouteID int) *seatmap.SeatMap {
	m := &seatmap.SeatMap{
		TripID:      tripID,
		TripRouteID: tripRouteID,
	}

	for _, floorDTO := range resp.Data.SeatLayout {
		floor := seatmap.Floor{
			Number:    floorDTO.SeatFloor,
			Name:      floorDTO.FloorName,
			Available: floorDTO.SeatAvailability != 0,
		}

		for _, rowDTO := range floorDTO.Layout {
			row := make(seatmap.Row, 0, len(rowDTO))
			for _, seatDTO := range rowDTO {
				row = append(row, seatmap.Seat{
					Number:     seatDTO.SeatNumber,
					TicketID:   seatDTO.TicketID,
					Available:  seatDTO.SeatAvailability == 1,
					Hidden:     seatDTO.IsHidden,
					TicketType: seatDTO.TicketType,
				})
			}
			floor.Rows = append(floor.Rows, row)
		}

		m.Floors = append(m.Floors, floor)
	}

	return m
}
