// Package booking validates checkout input, assembles booking requests and
// interprets the booking service's answer.
package booking

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/go-playground/validator/v10"
)

const DateOfBirthLayout = "2006-01-02"

// Booker is the booking service collaborator. Refusals are reported as *RejectionError.
type Booker interface {
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
}

// Selection is the part of a selection session the builder reads.
type Selection interface {
	SelectedSeats() []string
	RequiredCount() int
}

type Builder struct {
	booker   Booker
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Builder)

// WithClock overrides the clock used to reject future dates of birth.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(booker Booker, opts ...Option) *Builder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	b := &Builder{booker: booker, validate: v, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Validate checks checkout input without modifying it. Checks run in the order
// the checkout form reports them: seat count, passengers, then contact.
func (b *Builder) Validate(passengers []models.Passenger, contact models.ContactDetails, sel Selection) error {
	required := sel.RequiredCount()
	if selected := len(sel.SelectedSeats()); selected != required {
		return fmt.Errorf("%w: please select %d seat(s), %d selected", ErrSeatCountMismatch, required, selected)
	}

	// calendar date in the clock's own zone, compared against dates parsed as UTC midnight
	y, m, d := b.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for i := 0; i < required; i++ {
		if i >= len(passengers) {
			return &PassengerError{Index: i, Err: ErrIncompletePassengerInfo}
		}
		if err := b.checkPassenger(i, passengers[i], today); err != nil {
			return err
		}
	}

	if strings.TrimSpace(contact.Phone) == "" {
		return ErrMissingContact
	}
	return nil
}

func (b *Builder) checkPassenger(i int, p models.Passenger, today time.Time) error {
	trimmed := p
	trimmed.FirstName = strings.TrimSpace(p.FirstName)
	trimmed.LastName = strings.TrimSpace(p.LastName)
	trimmed.DateOfBirth = strings.TrimSpace(p.DateOfBirth)

	if err := b.validate.Struct(trimmed); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &PassengerError{Index: i, Field: fieldErrs[0].Field(), Err: ErrIncompletePassengerInfo}
		}
		return &PassengerError{Index: i, Err: err}
	}

	dob, err := time.Parse(DateOfBirthLayout, trimmed.DateOfBirth)
	if err != nil || dob.After(today) {
		return &PassengerError{Index: i, Field: "dateOfBirth", Err: ErrInvalidDateOfBirth}
	}
	return nil
}

// Build validates and assembles the request. Passenger i gets the i-th selected
// seat, in the order the seats were picked.
func (b *Builder) Build(passengers []models.Passenger, contact models.ContactDetails, sel Selection, flightID string) (*models.BookingRequest, error) {
	if err := b.Validate(passengers, contact, sel); err != nil {
		return nil, err
	}

	seats := sel.SelectedSeats()
	paired := make([]models.PassengerSeat, len(seats))
	for i, seat := range seats {
		paired[i] = models.PassengerSeat{Passenger: passengers[i], SeatNumber: seat}
	}

	return &models.BookingRequest{
		FlightID:        flightID,
		Passengers:      paired,
		ContactDetails:  contact,
		SelectedSeats:   slices.Clone(seats),
		SpecialServices: []string{},
	}, nil
}

// Submit sends the request to the booking service once. A refusal comes back as
// *FailedError carrying the service's message; anything else is a transport fault.
func (b *Builder) Submit(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	created, err := b.booker.CreateBooking(ctx, req)
	if err != nil {
		var rejected *RejectionError
		if errors.As(err, &rejected) {
			return nil, &FailedError{Message: rejected.Message}
		}
		return nil, fmt.Errorf("booking service: %w", err)
	}
	if created == nil {
		return nil, errors.New("booking service: empty response")
	}
	return created, nil
}
