package railapi

import "encoding/json"

// Request payloads

// LoginRequest is the sign-in payload
type LoginRequest struct {
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
}

// ReserveSeatRequest claims one ticket on one route
type ReserveSeatRequest struct {
	TicketID int `json:"ticket_id"`
	RouteID  int `json:"route_id"`
}

// PassengerDetailsRequest triggers the OTP dispatch for reserved tickets
type PassengerDetailsRequest struct {
	TripID      int   `json:"trip_id"`
	TripRouteID int   `json:"trip_route_id"`
	TicketIDs   []int `json:"ticket_ids"`
}

// VerifyOTPRequest submits the operator-supplied OTP
type VerifyOTPRequest struct {
	TripID      int    `json:"trip_id"`
	TripRouteID int    `json:"trip_route_id"`
	TicketIDs   []int  `json:"ticket_ids"`
	OTP         string `json:"otp"`
}

// ConfirmRequest is the full booking-confirmation payload. The field set
// mirrors what the e-ticket web client submits; domestic bookings leave the
// passport and visa arrays as nulls of matching length.
type ConfirmRequest struct {
	IsBkashOnline             bool      `json:"is_bkash_online"`
	BoardingPointID           int       `json:"boarding_point_id"`
	ContactPerson             int       `json:"contactperson"`
	FromCity                  string    `json:"from_city"`
	ToCity                    string    `json:"to_city"`
	DateOfJourney             string    `json:"date_of_journey"`
	SeatClass                 string    `json:"seat_class"`
	Gender                    []string  `json:"gender"`
	Page                      []string  `json:"page"`
	PassengerType             []string  `json:"passengerType"`
	PEmail                    string    `json:"pemail"`
	PMobile                   string    `json:"pmobile"`
	PName                     []string  `json:"pname"`
	PPassport                 []string  `json:"ppassport"`
	PriyojonOrderID           *string   `json:"priyojon_order_id"`
	ReferralMobileNumber      *string   `json:"referral_mobile_number"`
	TicketIDs                 []int     `json:"ticket_ids"`
	TripID                    int       `json:"trip_id"`
	TripRouteID               int       `json:"trip_route_id"`
	IsShohoz                  int       `json:"isShohoz"`
	EnableSMSAlert            int       `json:"enable_sms_alert"`
	FirstName                 []*string `json:"first_name"`
	MiddleName                []*string `json:"middle_name"`
	LastName                  []*string `json:"last_name"`
	DateOfBirth               []*string `json:"date_of_birth"`
	Nationality               []*string `json:"nationality"`
	PassportType              []*string `json:"passport_type"`
	PassportNo                []*string `json:"passport_no"`
	PassportExpiryDate        []*string `json:"passport_expiry_date"`
	VisaType                  []*string `json:"visa_type"`
	VisaNo                    []*string `json:"visa_no"`
	VisaIssuePlace            []*string `json:"visa_issue_place"`
	VisaIssueDate             []*string `json:"visa_issue_date"`
	VisaExpireDate            []*string `json:"visa_expire_date"`
	OTP                       string    `json:"otp"`
	SelectedMobileTransaction int       `json:"selected_mobile_transaction"`
}

// Response payloads

// loginResponse carries the bearer token
type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// SearchTripsResponse is the trip search result
type SearchTripsResponse struct {
	Data struct {
		Trains []TrainDTO `json:"trains"`
	} `json:"data"`
}

// TrainDTO is one train in a search result
type TrainDTO struct {
	TripNumber        string             `json:"trip_number"`
	DepartureDateTime string             `json:"departure_date_time"`
	ArrivalDateTime   string             `json:"arrival_date_time"`
	TravelTime        string             `json:"travel_time"`
	SeatTypes         []SeatTypeDTO      `json:"seat_types"`
	BoardingPoints    []BoardingPointDTO `json:"boarding_points"`
}

// SeatTypeDTO is one bookable class on a train. Fare comes over the wire
// as a string; VAT as a number.
type SeatTypeDTO struct {
	Type        string  `json:"type"`
	TripID      int     `json:"trip_id"`
	TripRouteID int     `json:"trip_route_id"`
	RouteID     int     `json:"route_id"`
	Fare        string  `json:"fare"`
	VatAmount   float64 `json:"vat_amount"`
}

// BoardingPointDTO is one boarding option on a trip
type BoardingPointDTO struct {
	TripPointID  int    `json:"trip_point_id"`
	LocationName string `json:"location_name"`
	LocationTime string `json:"location_time"`
	LocationDate string `json:"location_date"`
}

// SeatLayoutResponse is the seat inventory snapshot for a trip
type SeatLayoutResponse struct {
	Data struct {
		SeatLayout []FloorDTO `json:"seatLayout"`
	} `json:"data"`
}

// FloorDTO is one floor of a coach. Availability flags are 0/1 ints on
// the wire.
type FloorDTO struct {
	FloorName        string      `json:"floor_name"`
	SeatFloor        int         `json:"seat_floor"`
	SeatAvailability int         `json:"seat_availability"`
	Layout           [][]SeatDTO `json:"layout"`
}

// SeatDTO is one seat cell. Aisles are cells with an empty seat number.
type SeatDTO struct {
	SeatNumber       string `json:"seat_number"`
	TicketID         int    `json:"ticket_id"`
	SeatAvailability int    `json:"seat_availability"`
	IsHidden         bool   `json:"isHidden"`
	TicketType       int    `json:"ticket_type"`
}

// ConfirmResponse is the booking confirmation receipt
type ConfirmResponse struct {
	Data struct {
		RedirectURL string `json:"redirectUrl"`
	} `json:"data"`

	// Raw preserves the complete response body for receipt persistence
	Raw json.RawMessage `json:"-"`
}

// errorEnvelope is the error body shape the API returns on non-200s
type errorEnvelope struct {
	Error struct {
		Code     int             `json:"code"`
		Messages json.RawMessage `json:"messages"`
	} `json:"error"`
}
