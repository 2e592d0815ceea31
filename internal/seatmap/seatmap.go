// Package seatmap holds the read-only seat snapshot of one flight.
package seatmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
)

var (
	// ErrDataUnavailable means the seat or flight data could not be fetched.
	ErrDataUnavailable = errors.New("flight data unavailable")
	ErrDuplicateSeat   = errors.New("duplicate seat number")
)

// Source is the flight-data collaborator that owns seat inventory.
type Source interface {
	GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error)
}

// Map is a point-in-time snapshot of a flight's seats. It has no mutators;
// re-fetching is the only way to observe seats claimed elsewhere.
type Map struct {
	flightID string
	layout   string
	seats    []models.Seat
	index    map[string]int
}

// Load fetches the seat map of a flight and indexes it.
func Load(ctx context.Context, src Source, flightID string) (*Map, error) {
	record, err := src.GetSeatMap(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("%w: seat map for flight %s: %w", ErrDataUnavailable, flightID, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: empty seat map for flight %s", ErrDataUnavailable, flightID)
	}
	m, err := FromRecord(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	if m.flightID == "" {
		m.flightID = flightID
	}
	return m, nil
}

// FromRecord builds a snapshot from an already fetched seat map.
func FromRecord(record *models.SeatMap) (*Map, error) {
	m := &Map{
		flightID: record.FlightID,
		layout:   record.Layout,
		seats:    make([]models.Seat, 0, len(record.Seats)),
		index:    make(map[string]int, len(record.Seats)),
	}
	for _, s := range record.Seats {
		if _, dup := m.index[s.SeatNumber]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSeat, s.SeatNumber)
		}
		m.index[s.SeatNumber] = len(m.seats)
		m.seats = append(m.seats, copySeat(s))
	}
	return m, nil
}

// Get returns the seat with the given number; ok is false when the flight has no such seat.
func (m *Map) Get(seatNumber string) (models.Seat, bool) {
	i, ok := m.index[seatNumber]
	if !ok {
		return models.Seat{}, false
	}
	return copySeat(m.seats[i]), true
}

// IsSelectable reports whether the seat exists, is unsold and is not blocked.
func (m *Map) IsSelectable(seatNumber string) bool {
	i, ok := m.index[seatNumber]
	if !ok {
		return false
	}
	s := m.seats[i]
	return s.IsAvailable && !s.IsBlocked
}

// PriceOf returns the seat's own price when set and positive, the class fare otherwise.
func (m *Map) PriceOf(seatNumber string, classBasePrice float64) float64 {
	i, ok := m.index[seatNumber]
	if !ok {
		return classBasePrice
	}
	if p := m.seats[i].Price; p != nil && *p > 0 {
		return *p
	}
	return classBasePrice
}

// Seats returns a copy of the seats in their original order.
func (m *Map) Seats() []models.Seat {
	out := make([]models.Seat, len(m.seats))
	for i, s := range m.seats {
		out[i] = copySeat(s)
	}
	return out
}

// Record converts the snapshot back into its wire form.
func (m *Map) Record() *models.SeatMap {
	return &models.SeatMap{FlightID: m.flightID, Layout: m.layout, Seats: m.Seats()}
}

func (m *Map) FlightID() string { return m.flightID }
func (m *Map) Layout() string   { return m.layout }
func (m *Map) Len() int         { return len(m.seats) }

func copySeat(s models.Seat) models.Seat {
	if s.Price != nil {
		p := *s.Price
		s.Price = &p
	}
	if s.Features != nil {
		s.Features = append([]string(nil), s.Features...)
	}
	return s
}
