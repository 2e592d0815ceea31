package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/advisor"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/booking"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/database"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/logger"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/seatmap"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/selection"
	"golang.org/x/sync/errgroup"
)

var (
	ErrFlightNotFound     = errors.New("flight not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// FlightStore provides flight records and seat maps
type FlightStore interface {
	ListFlights(ctx context.Context) ([]*models.Flight, error)
	GetFlight(ctx context.Context, flightID string) (*models.Flight, error)
	GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error)
}

// BookingListener is told about every confirmed booking
type BookingListener interface {
	BookingConfirmed(ctx context.Context, b *models.Booking)
}

// BookingService defines the booking service interface
type BookingService interface {
	SearchFlights(ctx context.Context, q models.FlightQuery) ([]*models.Flight, error)
	GetFlight(ctx context.Context, flightID string) (*models.Flight, error)
	GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error)
	SeatAdvice(ctx context.Context, flightID string) (*advisor.Advice, error)

	OpenSession(ctx context.Context, user *models.User, req *OpenSessionRequest) (*SessionView, error)
	GetSession(ctx context.Context, user *models.User, sessionID string) (*SessionView, error)
	SelectSeat(ctx context.Context, user *models.User, sessionID, seatNumber string) (*SessionView, error)
	DeselectSeat(ctx context.Context, user *models.User, sessionID, seatNumber string) (*SessionView, error)
	ToggleSeat(ctx context.Context, user *models.User, sessionID, seatNumber string) (*SessionView, error)
	SetSeatCount(ctx context.Context, user *models.User, sessionID string, count int) (*SessionView, error)
	CheckoutForm(ctx context.Context, user *models.User, sessionID string) (*CheckoutForm, error)
	Checkout(ctx context.Context, user *models.User, sessionID string, req *CheckoutRequest) (*models.Booking, error)
	CloseSession(ctx context.Context, user *models.User, sessionID string) error
	ExpireSessions(maxIdle time.Duration) int
}

// OpenSessionRequest starts seat selection on a flight
type OpenSessionRequest struct {
	FlightID   string `json:"flightId" validate:"required"`
	CabinClass string `json:"cabinClass"`
	SeatCount  int    `json:"seatCount"`
}

// CheckoutRequest carries the completed checkout form
type CheckoutRequest struct {
	Passengers     []models.Passenger    `json:"passengers"`
	ContactDetails models.ContactDetails `json:"contactDetails"`
}

// SessionView is the client-facing state of a selection session
type SessionView struct {
	ID             string            `json:"id"`
	FlightID       string            `json:"flightId"`
	CabinClass     models.CabinClass `json:"cabinClass"`
	ClassBasePrice float64           `json:"classBasePrice"`
	State          selection.State   `json:"state"`
	RequiredCount  int               `json:"requiredCount"`
	SelectedSeats  []string          `json:"selectedSeats"`
	Quote          models.PriceQuote `json:"quote"`
}

// CheckoutForm is the prefilled checkout form of a session
type CheckoutForm struct {
	SessionID      string                `json:"sessionId"`
	Passengers     []models.Passenger    `json:"passengers"`
	ContactDetails models.ContactDetails `json:"contactDetails"`
	SelectedSeats  []string              `json:"selectedSeats"`
	Quote          models.PriceQuote     `json:"quote"`
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	flights      FlightStore
	builder      *booking.Builder
	listeners    []BookingListener
	sessions     *registry
	paymentDelay time.Duration
	now          func() time.Time
	log          *logger.Logger
}

type Option func(*bookingServiceImpl)

// WithListeners registers listeners notified after each confirmed booking.
func WithListeners(listeners ...BookingListener) Option {
	return func(s *bookingServiceImpl) { s.listeners = append(s.listeners, listeners...) }
}

// WithPaymentDelay sets the simulated payment processing time of checkout.
func WithPaymentDelay(d time.Duration) Option {
	return func(s *bookingServiceImpl) { s.paymentDelay = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *bookingServiceImpl) { s.now = now }
}

// NewBookingService creates a new BookingService
func NewBookingService(flights FlightStore, booker booking.Booker, log *logger.Logger, opts ...Option) BookingService {
	s := &bookingServiceImpl{
		flights:  flights,
		sessions: newRegistry(),
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = booking.NewBuilder(booker, booking.WithClock(s.now))
	return s
}

func (s *bookingServiceImpl) SearchFlights(ctx context.Context, q models.FlightQuery) ([]*models.Flight, error) {
	flights, err := s.flights.ListFlights(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", seatmap.ErrDataUnavailable, err)
	}
	return filterFlights(flights, q, s.now()), nil
}

func (s *bookingServiceImpl) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	f, err := s.flights.GetFlight(ctx, flightID)
	if err != nil {
		return nil, dataError(flightID, err)
	}
	return f, nil
}

func (s *bookingServiceImpl) GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error) {
	m, err := seatmap.Load(ctx, s.flights, flightID)
	if err != nil {
		return nil, dataError(flightID, err)
	}
	return m.Record(), nil
}

func (s *bookingServiceImpl) SeatAdvice(ctx context.Context, flightID string) (*advisor.Advice, error) {
	f, err := s.GetFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	advice := advisor.Recommend(f)
	return &advice, nil
}

// OpenSession loads the flight and its seat map together and opens a
// selection session over the snapshot.
func (s *bookingServiceImpl) OpenSession(ctx context.Context, user *models.User, req *OpenSessionRequest) (*SessionView, error) {
	class, err := models.ParseCabinClass(req.CabinClass)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	var (
		flight *models.Flight
		seats  *seatmap.Map
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := s.flights.GetFlight(gctx, req.FlightID)
		flight = f
		return err
	})
	g.Go(func() error {
		m, err := seatmap.Load(gctx, s.flights, req.FlightID)
		seats = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dataError(req.FlightID, err)
	}

	base := flight.BasePrice(class)
	if base <= 0 {
		return nil, fmt.Errorf("%w: flight %s has no %s fare", ErrInvalidRequest, flight.ID, class)
	}

	sel, err := selection.New(seats, req.SeatCount)
	if err != nil {
		return nil, err
	}

	e := s.sessions.add(ownerID(user), flight, class, base, sel, s.now())
	s.log.WithSession(e.id).Info("selection session opened",
		"flight_id", flight.ID,
		"cabin_class", string(class),
		"seat_count", req.SeatCount,
	)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view(), nil
}

func (s *bookingServiceImpl) GetSession(ctx context.Context, user *models.User, sessionID string) (*SessionView, error) {
	e, err := s.sessions.get(ownerID(user), sessionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch(s.now())
	return e.view(), nil
}

func (s *bookingServiceImpl) SelectSeat(ctx context.Context, user *models.User, sessionID, seatNumber string) (*SessionView, error) {
	return s.mutate(user, sessionID, func(sel *selection.Session) error {
		return sel.Select(seatNumber)
	})
}

func (s *bookingServiceImpl) DeselectSeat(ctx context.Context, user *models.User, sessionID, seatNumber string) (*SessionView, error) {
	return s.mutate(user, sessionID, func(sel *selection.Session) error {
		return sel.Deselect(seatNumber)
	})
}

// ToggleSeat is a click on the seat map: a selected seat is released, any other is selected.
func (s *bookingServiceImpl) ToggleSeat(ctx context.Context, user *models.User, sessionID, seatNumber string) (*SessionView, error) {
	return s.mutate(user, sessionID, func(sel *selection.Session) error {
		return sel.Toggle(seatNumber)
	})
}

func (s *bookingServiceImpl) SetSeatCount(ctx context.Context, user *models.User, sessionID string, count int) (*SessionView, error) {
	return s.mutate(user, sessionID, func(sel *selection.Session) error {
		return sel.SetRequiredCount(count)
	})
}

// mutate applies one selection change under the session lock. Changes are
// refused while a checkout is running so the booked seats match the form.
func (s *bookingServiceImpl) mutate(user *models.User, sessionID string, fn func(*selection.Session) error) (*SessionView, error) {
	e, err := s.sessions.get(ownerID(user), sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.checkingOut {
		return nil, ErrCheckoutInProgress
	}
	if err := fn(e.sel); err != nil {
		return nil, err
	}
	e.touch(s.now())
	return e.view(), nil
}

func (s *bookingServiceImpl) CheckoutForm(ctx context.Context, user *models.User, sessionID string) (*CheckoutForm, error) {
	e, err := s.sessions.get(ownerID(user), sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.sel.Active() {
		return nil, selection.ErrSessionClosed
	}
	return &CheckoutForm{
		SessionID:      e.id,
		Passengers:     booking.SeedPassengers(user, e.sel.RequiredCount()),
		ContactDetails: booking.SeedContact(user),
		SelectedSeats:  e.sel.SelectedSeats(),
		Quote:          e.sel.Quote(e.base),
	}, nil
}

// Checkout validates the form and builds the request under the session lock,
// then simulates payment and submits with the lock released. The session is
// discarded on success only if it is still the registered one.
func (s *bookingServiceImpl) Checkout(ctx context.Context, user *models.User, sessionID string, req *CheckoutRequest) (*models.Booking, error) {
	e, err := s.sessions.get(ownerID(user), sessionID)
	if err != nil {
		return nil, err
	}
	log := s.log.WithSession(sessionID)

	e.mu.Lock()
	if e.checkingOut {
		e.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	if !e.sel.Active() {
		e.mu.Unlock()
		return nil, selection.ErrSessionClosed
	}
	bookingReq, err := s.builder.Build(req.Passengers, req.ContactDetails, e.sel, e.flight.ID)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.checkingOut = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.checkingOut = false
		e.mu.Unlock()
	}()

	if err := s.simulatePayment(ctx); err != nil {
		return nil, err
	}

	created, err := s.builder.Submit(ctx, bookingReq)
	if err != nil {
		if errors.Is(err, booking.ErrBookingFailed) {
			log.Info("booking rejected", "flight_id", e.flight.ID, "reason", err.Error())
		} else {
			log.WithError(err).Error("booking submission failed", "flight_id", e.flight.ID)
		}
		return nil, err
	}

	if s.sessions.removeIf(sessionID, e) {
		e.mu.Lock()
		e.sel.Discard()
		e.mu.Unlock()
	}

	log.Info("booking confirmed",
		"booking_id", created.ID,
		"reference", created.Reference,
		"seats", created.SelectedSeats,
	)
	s.notify(context.WithoutCancel(ctx), created)
	return created, nil
}

func (s *bookingServiceImpl) simulatePayment(ctx context.Context) error {
	if s.paymentDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.paymentDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *bookingServiceImpl) notify(ctx context.Context, b *models.Booking) {
	for _, l := range s.listeners {
		l.BookingConfirmed(ctx, b)
	}
}

func (s *bookingServiceImpl) CloseSession(ctx context.Context, user *models.User, sessionID string) error {
	e, err := s.sessions.get(ownerID(user), sessionID)
	if err != nil {
		return err
	}
	s.sessions.removeIf(sessionID, e)

	e.mu.Lock()
	e.sel.Discard()
	e.mu.Unlock()
	s.log.WithSession(sessionID).Info("selection session closed")
	return nil
}

// ExpireSessions discards sessions untouched for longer than maxIdle.
func (s *bookingServiceImpl) ExpireSessions(maxIdle time.Duration) int {
	n := s.sessions.expire(s.now().Add(-maxIdle))
	if n > 0 {
		s.log.Info("idle selection sessions expired", "count", n)
	}
	return n
}

func dataError(flightID string, err error) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrFlightNotFound, flightID)
	case errors.Is(err, seatmap.ErrDataUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", seatmap.ErrDataUnavailable, err)
	}
}

func ownerID(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.ID
}
