package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"railbooker/internal/notifications"
	"railbooker/internal/passengers"
	"railbooker/internal/railapi"
	"railbooker/internal/receipts"
	"railbooker/pkg/logger"
)

// FinalizeAPI is the slice of the remote API the finalizer drives
type FinalizeAPI interface {
	GetPassengerDetails(ctx context.Context, tripID, tripRouteID int, ticketIDs []int) error
	VerifyOTP(ctx context.Context, tripID, tripRouteID int, ticketIDs []int, otp string) error
	ConfirmBooking(ctx context.Context, payload railapi.ConfirmRequest) (*railapi.ConfirmResponse, error)
}

// OTPPrompter obtains the one-time code from the operator. The remote
// service texts the code to the account's mobile number; collecting it
// is interactive by nature.
type OTPPrompter interface {
	PromptOTP(ctx context.Context) (string, error)
}

// JourneyDetails carries the journey fields that belong on the
// confirmation payload and the receipt but not on the claim itself
type JourneyDetails struct {
	FromCity    string
	ToCity      string
	JourneyDate string
	SeatClass   string
}

// Finalizer drives the post-claim phase: OTP verification, booking
// confirmation, receipt persistence, event publication.
type Finalizer struct {
	api       FinalizeAPI
	prompter  OTPPrompter
	store     receipts.Store
	publisher notifications.Publisher
	log       *logger.Logger
}

// NewFinalizer creates a finalizer
func NewFinalizer(api FinalizeAPI, prompter OTPPrompter, store receipts.Store, publisher notifications.Publisher, log *logger.Logger) *Finalizer {
	return &Finalizer{
		api:       api,
		prompter:  prompter,
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// Finalize takes the winning claim through verification and confirmation.
// An OTP rejection or confirmation failure returns an error; the caller
// decides whether the whole race restarts.
func (f *Finalizer) Finalize(ctx context.Context, claim *BookingClaim, journey JourneyDetails) (*receipts.Receipt, error) {
	trip := claim.Trip

	// Requesting passenger details makes the remote service dispatch the
	// OTP to the account's registered mobile number
	if err := f.api.GetPassengerDetails(ctx, trip.TripID, trip.TripRouteID, claim.TicketIDs); err != nil {
		return nil, fmt.Errorf("failed to initiate verification: %w", err)
	}

	otp, err := f.prompter.PromptOTP(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read verification code: %w", err)
	}

	if err := f.api.VerifyOTP(ctx, trip.TripID, trip.TripRouteID, claim.TicketIDs, otp); err != nil {
		f.publishFailed(ctx, claim, err)
		return nil, fmt.Errorf("verification rejected: %w", err)
	}

	payload := buildConfirmRequest(claim, journey, otp)
	resp, err := f.api.ConfirmBooking(ctx, payload)
	if err != nil {
		f.publishFailed(ctx, claim, err)
		return nil, fmt.Errorf("confirmation failed: %w", err)
	}

	receipt := &receipts.Receipt{
		ID:           uuid.New(),
		TrainName:    trip.TrainName,
		FromCity:     journey.FromCity,
		ToCity:       journey.ToCity,
		JourneyDate:  journey.JourneyDate,
		SeatClass:    journey.SeatClass,
		TripID:       trip.TripID,
		TripRouteID:  trip.TripRouteID,
		Seats:        claim.Seats,
		TicketIDs:    claim.TicketIDs,
		Passengers:   claim.Passengers,
		TotalFare:    trip.TotalFare * float64(len(claim.Seats)),
		PaymentURL:   resp.Data.RedirectURL,
		WinnerWorker: claim.WorkerID,
		BookedAt:     time.Now(),
	}

	if err := f.store.Save(ctx, receipt); err != nil {
		// The booking is confirmed remotely; a lost receipt is not worth
		// failing the run over
		f.log.WithError(err).Error("failed to persist receipt")
	}

	f.publish(ctx, &notifications.BookingEvent{
		ID:        uuid.New(),
		Type:      notifications.EventBookingConfirmed,
		RaceID:    claim.RaceID,
		TrainName: trip.TrainName,
		TripID:    trip.TripID,
		Seats:     claim.Seats,
		CreatedAt: time.Now(),
	})

	f.log.LogBookingConfirmed(ctx, trip.TripID, claim.TicketIDs)
	return receipt, nil
}

// buildConfirmRequest shapes the confirmation payload from the claim.
// Array fields are per passenger and must all match the ticket count;
// passport and visa arrays stay as nulls for domestic bookings.
func buildConfirmRequest(claim *BookingClaim, journey JourneyDetails, otp string) railapi.ConfirmRequest {
	n := len(claim.TicketIDs)
	roster := passengers.AdjustCount(claim.Passengers, n)

	genders := make([]string, n)
	pages := make([]string, n)
	types := make([]string, n)
	names := make([]string, n)
	passports := make([]string, n)
	for i, p := range roster {
		genders[i] = p.Gender
		types[i] = p.Type
		names[i] = p.Name
	}

	contact := roster[0]

	return railapi.ConfirmRequest{
		IsBkashOnline:             true,
		BoardingPointID:           claim.Trip.FindBoardingPoint(journey.FromCity).ID,
		ContactPerson:             0,
		FromCity:                  journey.FromCity,
		ToCity:                    journey.ToCity,
		DateOfJourney:             journey.JourneyDate,
		SeatClass:                 journey.SeatClass,
		Gender:                    genders,
		Page:                      pages,
		PassengerType:             types,
		PEmail:                    contact.Email,
		PMobile:                   contact.Mobile,
		PName:                     names,
		PPassport:                 passports,
		TicketIDs:                 claim.TicketIDs,
		TripID:                    claim.Trip.TripID,
		TripRouteID:               claim.Trip.TripRouteID,
		IsShohoz:                  0,
		EnableSMSAlert:            0,
		FirstName:                 make([]*string, n),
		MiddleName:                make([]*string, n),
		LastName:                  make([]*string, n),
		DateOfBirth:               make([]*string, n),
		Nationality:               make([]*string, n),
		PassportType:              make([]*string, n),
		PassportNo:                make([]*string, n),
		PassportExpiryDate:        make([]*string, n),
		VisaType:                  make([]*string, n),
		VisaNo:                    make([]*string, n),
		VisaIssuePlace:            make([]*string, n),
		VisaIssueDate:             make([]*string, n),
		VisaExpireDate:            make([]*string, n),
		OTP:                       otp,
		SelectedMobileTransaction: 1,
	}
}

func (f *Finalizer) publishFailed(ctx context.Context, claim *BookingClaim, cause error) {
	f.publish(ctx, &notifications.BookingEvent{
		ID:        uuid.New(),
		Type:      notifications.EventBookingFailed,
		RaceID:    claim.RaceID,
		TrainName: claim.Trip.TrainName,
		TripID:    claim.Trip.TripID,
		Seats:     claim.Seats,
		Reason:    cause.Error(),
		CreatedAt: time.Now(),
	})
}

func (f *Finalizer) publish(ctx context.Context, event *notifications.BookingEvent) {
	if err := f.publisher.Publish(ctx, event); err != nil {
		f.log.WithError(err).Warn("failed to publish booking event")
	}
}
