package database

import (
	"context"
	"errors"
	"strings"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Store is the flight data and booking service contract. Repository and
// MemoryStore both implement it.
type Store interface {
	ListFlights(ctx context.Context) ([]*models.Flight, error)
	GetFlight(ctx context.Context, flightID string) (*models.Flight, error)
	GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error)
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
}

// NewReference returns a six character booking reference.
func NewReference() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

func hasDuplicates(seats []string) (string, bool) {
	seen := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		if _, ok := seen[s]; ok {
			return s, true
		}
		seen[s] = struct{}{}
	}
	return "", false
}
