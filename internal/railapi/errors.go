package railapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorKind classifies the structured errors the remote API can return.
// Every remote failure a caller needs to branch on has a kind; everything
// else is KindGeneric.
type ErrorKind string

const (
	KindGeneric         ErrorKind = "GENERIC"
	KindSeatReserved    ErrorKind = "SEAT_ALREADY_RESERVED"
	KindUnauthorized    ErrorKind = "UNAUTHORIZED"
	KindOrderLimit      ErrorKind = "ORDER_LIMIT_EXCEEDED"
	KindMultipleOrder   ErrorKind = "MULTIPLE_ORDER_ATTEMPT"
	KindOTPVerification ErrorKind = "OTP_VERIFICATION_FAILED"
)

// APIError is a structured error decoded from a non-200 API response
type APIError struct {
	Kind     ErrorKind
	Status   int
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%s) %d on %s: %s", e.Kind, e.Status, e.Endpoint, e.Message)
}

// classify maps a non-200 status and error message to an ErrorKind.
// The remote API signals business errors through 422 responses whose
// message text identifies the condition.
func classify(status int, message string) ErrorKind {
	lower := strings.ToLower(message)

	switch {
	case status == 401 || status == 403:
		return KindUnauthorized
	case status == 422 && strings.Contains(lower, "orderlimitexceeded"):
		return KindOrderLimit
	case status == 422 && strings.Contains(lower, "multiple order attempt"):
		return KindMultipleOrder
	case status == 422 && strings.Contains(lower, "reserved"):
		return KindSeatReserved
	case status == 422 && strings.Contains(lower, "not available"):
		return KindSeatReserved
	default:
		return KindGeneric
	}
}

// kindOf extracts the ErrorKind from err, or KindGeneric
func kindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindGeneric
}

// IsUnauthorized reports whether err is an authentication/authorization failure
func IsUnauthorized(err error) bool {
	return kindOf(err) == KindUnauthorized
}

// IsSeatAlreadyReserved reports whether err signals a seat taken by someone else
func IsSeatAlreadyReserved(err error) bool {
	return kindOf(err) == KindSeatReserved
}

// IsOrderLimitExceeded reports whether err signals the per-day order limit
func IsOrderLimitExceeded(err error) bool {
	return kindOf(err) == KindOrderLimit
}

// IsMultipleOrderAttempt reports whether err signals a concurrent order conflict
// on the account
func IsMultipleOrderAttempt(err error) bool {
	return kindOf(err) == KindMultipleOrder
}

// IsRaceTerminal reports whether err ends the whole race, not just one worker
func IsRaceTerminal(err error) bool {
	kind := kindOf(err)
	return kind == KindOrderLimit || kind == KindMultipleOrder
}

// IsTransient reports whether err is worth retrying: timeouts, transport
// failures, and remote 5xx. Structured business errors are never transient.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindGeneric && apiErr.Status >= 500
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Transport-level failures (refused, reset, DNS) surface as *url.Error
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
