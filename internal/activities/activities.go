package activities

import (
	"context"
	"errors"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/booking"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/notifications"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// Registered activity names
const (
	CreateBookingName    = "CreateBooking"
	SendConfirmationName = "SendConfirmation"
)

// ErrTypeBookingRejected marks application errors carrying a refusal that
// should reach the user unchanged.
const ErrTypeBookingRejected = "BookingRejected"

// BookingStore creates bookings against seat inventory
type BookingStore interface {
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
}

// EventPublisher sends booking events downstream
type EventPublisher interface {
	Publish(ctx context.Context, event *notifications.BookingEvent) error
}

// Activities holds the dependencies of the booking activities
type Activities struct {
	store     BookingStore
	publisher EventPublisher
}

// NewActivities creates activities; publisher may be nil, in which case
// confirmations are only logged.
func NewActivities(store BookingStore, publisher EventPublisher) *Activities {
	return &Activities{store: store, publisher: publisher}
}

// CreateBooking books the seats. A refusal becomes a non-retryable
// application error whose details hold the refusal message.
func (a *Activities) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Creating booking", "flightId", req.FlightID, "seats", req.SelectedSeats)

	b, err := a.store.CreateBooking(ctx, &req)
	if err != nil {
		var rejected *booking.RejectionError
		if errors.As(err, &rejected) {
			logger.Info("Booking rejected", "reason", rejected.Message)
			return nil, temporal.NewNonRetryableApplicationError(rejected.Message, ErrTypeBookingRejected, nil, rejected.Message)
		}
		logger.Error("Booking failed", "error", err)
		return nil, err
	}

	logger.Info("Booking created", "bookingId", b.ID, "reference", b.Reference)
	return b, nil
}

// SendConfirmation publishes the confirmed booking event
func (a *Activities) SendConfirmation(ctx context.Context, b models.Booking) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Sending confirmation", "bookingId", b.ID, "email", b.ContactDetails.Email)

	if a.publisher == nil {
		return nil
	}
	return a.publisher.Publish(ctx, notifications.NewBookingEvent(&b))
}
