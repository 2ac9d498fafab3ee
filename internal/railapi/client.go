package railapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"railbooker/pkg/logger"
)

// Client talks to the railway e-ticket API. Safe for concurrent use:
// acquisition workers share one client and its connection pool.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates an API client. Every request carries the timeout as
// its upper bound; a timeout is a transient failure, never terminal.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log,
	}
}

// SetToken updates the bearer token used on subsequent requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do executes one request and decodes the response into dest (when dest is
// non-nil). Non-200 responses become *APIError classified by kind.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body, dest interface{}) error {
	reqURL := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", "https://eticket.railway.gov.bd/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.LogAPIError(ctx, method, endpoint, err)
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	c.log.LogAPIRequest(ctx, method, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp.StatusCode, endpoint, respBody)
	}

	if dest != nil {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
	}

	return nil
}

// decodeError builds a classified *APIError from a non-200 response body
func (c *Client) decodeError(status int, endpoint string, body []byte) error {
	message := string(body)

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error.Messages) > 0 {
		message = string(envelope.Error.Messages)
	}

	return &APIError{
		Kind:     classify(status, message),
		Status:   status,
		Endpoint: endpoint,
		Message:  message,
	}
}

// Login signs in and returns a bearer token. The token is not installed
// on the client; the auth service owns that decision.
func (c *Client) Login(ctx context.Context, mobileNumber, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "auth/sign-in", nil, LoginRequest{
		MobileNumber: mobileNumber,
		Password:     password,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	if resp.Data.Token == "" {
		return "", fmt.Errorf("no token received from login response")
	}

	return resp.Data.Token, nil
}

// SearchTrips searches available trips between two cities on a date
func (c *Client) SearchTrips(ctx context.Context, fromCity, toCity, dateOfJourney, seatClass string) (*SearchTripsResponse, error) {
	params := url.Values{}
	params.Set("from_city", fromCity)
	params.Set("to_city", toCity)
	params.Set("date_of_journey", dateOfJourney)
	params.Set("seat_class", seatClass)

	var resp SearchTripsResponse
	if err := c.do(ctx, http.MethodGet, "bookings/search-trips-v2", params, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSeatLayout fetches a fresh seat inventory snapshot for a trip
func (c *Client) GetSeatLayout(ctx context.Context, tripID, tripRouteID int) (*SeatLayoutResponse, error) {
	params := url.Values{}
	params.Set("trip_id", strconv.Itoa(tripID))
	params.Set("trip_route_id", strconv.Itoa(tripRouteID))

	var resp SeatLayoutResponse
	if err := c.do(ctx, http.MethodGet, "bookings/seat-layout", params, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReserveSeat claims one ticket on one route. The remote service is the
// authoritative arbiter of whether the seat is actually free.
func (c *Client) ReserveSeat(ctx context.Context, ticketID, routeID int) error {
	return c.do(ctx, http.MethodPatch, "bookings/reserve-seat", nil, ReserveSeatRequest{
		TicketID: ticketID,
		RouteID:  routeID,
	}, nil)
}

// GetPassengerDetails triggers the OTP dispatch for the reserved tickets
func (c *Client) GetPassengerDetails(ctx context.Context, tripID, tripRouteID int, ticketIDs []int) error {
	return c.do(ctx, http.MethodPost, "bookings/passenger-details", nil, PassengerDetailsRequest{
		TripID:      tripID,
		TripRouteID: tripRouteID,
		TicketIDs:   ticketIDs,
	}, nil)
}

// VerifyOTP verifies the operator-supplied OTP for the reserved tickets
func (c *Client) VerifyOTP(ctx context.Context, tripID, tripRouteID int, ticketIDs []int, otp string) error {
	err := c.do(ctx, http.MethodPost, "bookings/verify-otp", nil, VerifyOTPRequest{
		TripID:      tripID,
		TripRouteID: tripRouteID,
		TicketIDs:   ticketIDs,
		OTP:         otp,
	}, nil)
	if err != nil {
		var apiErr *APIError
		// OTP rejections come back as generic 422s; tag them so the outer
		// retry loop can treat them as terminal for the race.
		if errors.As(err, &apiErr) && apiErr.Status == 422 && apiErr.Kind == KindGeneric {
			apiErr.Kind = KindOTPVerification
		}
		return err
	}
	return nil
}

// ConfirmBooking submits the final booking payload and returns the receipt
func (c *Client) ConfirmBooking(ctx context.Context, payload ConfirmRequest) (*ConfirmResponse, error) {
	reqURL := c.baseURL + "/bookings/confirm"

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.LogAPIError(ctx, http.MethodPatch, "bookings/confirm", err)
		return nil, fmt.Errorf("request to bookings/confirm failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read confirmation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp.StatusCode, "bookings/confirm", respBody)
	}

	var confirmation ConfirmResponse
	if err := json.Unmarshal(respBody, &confirmation); err != nil {
		return nil, fmt.Errorf("failed to decode confirmation response: %w", err)
	}
	confirmation.Raw = respBody

	return &confirmation, nil
}
