// Package selection tracks the seats a user picks for one booking attempt.
package selection

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/seatmap"
)

const (
	MinSeatCount = 1
	MaxSeatCount = 9
)

var (
	ErrSeatUnavailable = errors.New("seat is not available")
	ErrSelectionFull   = errors.New("required number of seats already selected")
	ErrInvalidCount    = errors.New("seat count out of range")
	ErrSessionClosed   = errors.New("selection session is closed")
)

// State of a session, derived from selected vs required counts
type State string

const (
	StateEmpty    State = "empty"
	StatePartial  State = "partial"
	StateComplete State = "complete"
)

// Session holds the in-progress seat picks for one flight. It is not safe for
// concurrent use; callers serialize operations per session.
type Session struct {
	seats    *seatmap.Map
	required int
	selected []string
	closed   bool
}

// New opens a session over a loaded seat map.
func New(seats *seatmap.Map, required int) (*Session, error) {
	if err := checkCount(required); err != nil {
		return nil, err
	}
	return &Session{seats: seats, required: required}, nil
}

func checkCount(n int) error {
	if n < MinSeatCount || n > MaxSeatCount {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidCount, n, MinSeatCount, MaxSeatCount)
	}
	return nil
}

// Select appends a seat to the selection, keeping selection order.
func (s *Session) Select(seatNumber string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.seats.IsSelectable(seatNumber) {
		return fmt.Errorf("%w: %s", ErrSeatUnavailable, seatNumber)
	}
	if slices.Contains(s.selected, seatNumber) {
		return nil
	}
	if len(s.selected) >= s.required {
		return fmt.Errorf("%w: you can only select %d seat%s", ErrSelectionFull, s.required, plural(s.required))
	}
	s.selected = append(s.selected, seatNumber)
	return nil
}

// Deselect removes a seat if it is selected; unknown seats are ignored.
func (s *Session) Deselect(seatNumber string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if i := slices.Index(s.selected, seatNumber); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
	}
	return nil
}

// Toggle deselects a selected seat and selects an unselected one, like a click on the seat map.
func (s *Session) Toggle(seatNumber string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.seats.IsSelectable(seatNumber) {
		return fmt.Errorf("%w: %s", ErrSeatUnavailable, seatNumber)
	}
	if slices.Contains(s.selected, seatNumber) {
		return s.Deselect(seatNumber)
	}
	return s.Select(seatNumber)
}

// SetRequiredCount changes the number of seats wanted and clears the selection,
// since passenger-to-seat pairing depends on a stable count.
func (s *Session) SetRequiredCount(n int) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := checkCount(n); err != nil {
		return err
	}
	s.required = n
	s.selected = nil
	return nil
}

// Discard closes the session; later mutations fail with ErrSessionClosed.
func (s *Session) Discard() {
	s.closed = true
	s.selected = nil
}

func (s *Session) Active() bool { return !s.closed }

func (s *Session) State() State {
	switch {
	case len(s.selected) == 0:
		return StateEmpty
	case len(s.selected) < s.required:
		return StatePartial
	default:
		return StateComplete
	}
}

// SelectedSeats returns the selected seat numbers in selection order.
func (s *Session) SelectedSeats() []string {
	return slices.Clone(s.selected)
}

func (s *Session) RequiredCount() int { return s.required }

// Quote prices the current selection. It is informative for partial selections;
// callers compare SelectedCount and RequiredCount before booking.
func (s *Session) Quote(classBasePrice float64) models.PriceQuote {
	return Quote(s.seats, s.selected, s.required, classBasePrice)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
