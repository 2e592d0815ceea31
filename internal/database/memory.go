package database

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/booking"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/google/uuid"
)

type flightRecord struct {
	flight *models.Flight
	seats  *models.SeatMap
	index  map[string]int
}

// MemoryStore keeps flights, seats and bookings in memory. It backs the
// server when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	flights  map[string]*flightRecord
	bookings map[string]*models.Booking
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		flights:  make(map[string]*flightRecord),
		bookings: make(map[string]*models.Booking),
		now:      time.Now,
	}
}

// NewSeededMemoryStore returns a store holding the sample schedule.
func NewSeededMemoryStore(now time.Time) *MemoryStore {
	s := NewMemoryStore()
	for _, f := range SampleFlights(now) {
		s.AddFlight(f, SampleSeatMap(f))
	}
	return s
}

// AddFlight registers a flight with its seat map, replacing any previous one.
func (s *MemoryStore) AddFlight(f *models.Flight, seats *models.SeatMap) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &flightRecord{flight: cloneFlight(f), seats: cloneSeatMap(seats), index: make(map[string]int)}
	rec.seats.FlightID = f.ID
	for i, seat := range rec.seats.Seats {
		rec.index[seat.SeatNumber] = i
	}
	s.flights[f.ID] = rec
}

func (s *MemoryStore) ListFlights(ctx context.Context) ([]*models.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flights := make([]*models.Flight, 0, len(s.flights))
	for _, rec := range s.flights {
		flights = append(flights, cloneFlight(rec.flight))
	}
	sort.Slice(flights, func(i, j int) bool {
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})
	return flights, nil
}

func (s *MemoryStore) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.flights[flightID]
	if !ok {
		return nil, fmt.Errorf("flight %s: %w", flightID, ErrNotFound)
	}
	return cloneFlight(rec.flight), nil
}

func (s *MemoryStore) GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.flights[flightID]
	if !ok {
		return nil, fmt.Errorf("flight %s: %w", flightID, ErrNotFound)
	}
	return cloneSeatMap(rec.seats), nil
}

// CreateBooking applies the same checks as Repository.CreateBooking.
func (s *MemoryStore) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	if len(req.SelectedSeats) == 0 {
		return nil, booking.Reject("No seats selected")
	}
	if dup, ok := hasDuplicates(req.SelectedSeats); ok {
		return nil, booking.Reject("Seat %s was selected more than once", dup)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.flights[req.FlightID]
	if !ok {
		return nil, booking.Reject("Flight %s not found", req.FlightID)
	}
	for _, n := range req.SelectedSeats {
		i, ok := rec.index[n]
		if !ok {
			return nil, booking.Reject("Seat %s does not exist on flight %s", n, req.FlightID)
		}
		if seat := rec.seats.Seats[i]; !seat.IsAvailable || seat.IsBlocked {
			return nil, booking.Reject("Seat %s is no longer available", n)
		}
	}
	for _, n := range req.SelectedSeats {
		rec.seats.Seats[rec.index[n]].IsAvailable = false
	}

	b := &models.Booking{
		ID:             uuid.NewString(),
		Reference:      NewReference(),
		FlightID:       req.FlightID,
		Status:         models.BookingStatusConfirmed,
		Passengers:     slices.Clone(req.Passengers),
		ContactDetails: req.ContactDetails,
		SelectedSeats:  slices.Clone(req.SelectedSeats),
		CreatedAt:      s.now().UTC(),
	}
	s.bookings[b.ID] = b
	return b, nil
}

// Booking returns a stored booking by ID.
func (s *MemoryStore) Booking(id string) (*models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	return b, ok
}

func cloneFlight(f *models.Flight) *models.Flight {
	c := *f
	c.Pricing = make(map[models.CabinClass]float64, len(f.Pricing))
	for k, v := range f.Pricing {
		c.Pricing[k] = v
	}
	return &c
}

func cloneSeatMap(sm *models.SeatMap) *models.SeatMap {
	c := &models.SeatMap{FlightID: sm.FlightID, Layout: sm.Layout, Seats: make([]models.Seat, len(sm.Seats))}
	for i, seat := range sm.Seats {
		if seat.Price != nil {
			p := *seat.Price
			seat.Price = &p
		}
		seat.Features = slices.Clone(seat.Features)
		c.Seats[i] = seat
	}
	return c
}
