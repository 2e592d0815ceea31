package mocks

import (
	"context"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/advisor"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

var _ service.BookingService = (*MockBookingService)(nil)

func (m *MockBookingService) SearchFlights(ctx context.Context, q models.FlightQuery) ([]*models.Flight, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Flight), args.Error(1)
}

func (m *MockBookingService) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flight), args.Error(1)
}

func (m *MockBookingService) GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SeatMap), args.Error(1)
}

func (m *MockBookingService) SeatAdvice(ctx context.Context, flightID string) (*advisor.Advice, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*advisor.Advice), args.Error(1)
}

func (m *MockBookingService) OpenSession(ctx context.Context, user *models.User, req *service.OpenSessionRequest) (*service.SessionView, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionView), args.Error(1)
}

func (m *MockBookingService) GetSession(ctx context.Context, user *models.User, sessionID string) (*service.SessionView, error) {
	args := m.Called(ctx, user, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionView), args.Error(1)
}

func (m *MockBookingService) SelectSeat(ctx context.Context, user *models.User, sessionID, seatNumber string) (*service.SessionView, error) {
	args := m.Called(ctx, user, sessionID, seatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionView), args.Error(1)
}

func (m *MockBookingService) ToggleSeat(ctx context.Context, user *models.User, sessionID, seatNumber string) (*service.SessionView, error) {
	args := m.Called(ctx, user, sessionID, seatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionView), args.Error(1)
}

func (m *MockBookingService) DeselectSeat(ctx context.Context, user *models.User, sessionID, seatNumber string) (*service.SessionView, error) {
	args := m.Called(ctx, user, sessionID, seatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionView), args.Error(1)
}

func (m *MockBookingService) SetSeatCount(ctx context.Context, user *models.User, sessionID string, count int) (*service.SessionView, error) {
	args := m.Called(ctx, user, sessionID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionView), args.Error(1)
}

func (m *MockBookingService) CheckoutForm(ctx context.Context, user *models.User, sessionID string) (*service.CheckoutForm, error) {
	args := m.Called(ctx, user, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutForm), args.Error(1)
}

func (m *MockBookingService) Checkout(ctx context.Context, user *models.User, sessionID string, req *service.CheckoutRequest) (*models.Booking, error) {
	args := m.Called(ctx, user, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) CloseSession(ctx context.Context, user *models.User, sessionID string) error {
	args := m.Called(ctx, user, sessionID)
	return args.Error(0)
}

func (m *MockBookingService) ExpireSessions(maxIdle time.Duration) int {
	args := m.Called(maxIdle)
	return args.Int(0)
}
