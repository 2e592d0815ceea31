package activities

import (
	"context"
	"errors"
	"testing"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/booking"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/notifications"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event *notifications.BookingEvent) error {
	return m.Called(ctx, event).Error(0)
}

type ActivitiesTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env       *testsuite.TestActivityEnvironment
	store     *mockStore
	publisher *mockPublisher
	acts      *Activities
}

func (s *ActivitiesTestSuite) SetupTest() {
	s.env = s.NewTestActivityEnvironment()
	s.store = new(mockStore)
	s.publisher = new(mockPublisher)
	s.acts = NewActivities(s.store, s.publisher)
	s.env.RegisterActivityWithOptions(s.acts.CreateBooking, activity.RegisterOptions{Name: CreateBookingName})
	s.env.RegisterActivityWithOptions(s.acts.SendConfirmation, activity.RegisterOptions{Name: SendConfirmationName})
}

func (s *ActivitiesTestSuite) AfterTest(suiteName, testName string) {
	s.store.AssertExpectations(s.T())
	s.publisher.AssertExpectations(s.T())
}

func TestActivitiesTestSuite(t *testing.T) {
	suite.Run(t, new(ActivitiesTestSuite))
}

func request() models.BookingRequest {
	return models.BookingRequest{
		FlightID:      "FL001",
		SelectedSeats: []string{"12A"},
		Passengers: []models.PassengerSeat{
			{Passenger: models.Passenger{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1990-12-10"}, SeatNumber: "12A"},
		},
		ContactDetails: models.ContactDetails{Email: "ada@example.com", Phone: "+1 555 0100"},
	}
}

func (s *ActivitiesTestSuite) TestCreateBooking_Success() {
	created := &models.Booking{ID: "bk-1", Reference: "ABC123", FlightID: "FL001", Status: models.BookingStatusConfirmed}
	s.store.On("CreateBooking", mock.Anything, mock.MatchedBy(func(r *models.BookingRequest) bool {
		return r.FlightID == "FL001" && len(r.SelectedSeats) == 1
	})).Return(created, nil).Once()

	val, err := s.env.ExecuteActivity(CreateBookingName, request())
	s.Require().NoError(err)

	var got models.Booking
	s.Require().NoError(val.Get(&got))
	s.Equal("ABC123", got.Reference)
}

func (s *ActivitiesTestSuite) TestCreateBooking_RejectionIsNonRetryable() {
	s.store.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, booking.Reject("Seat 12A is no longer available")).Once()

	_, err := s.env.ExecuteActivity(CreateBookingName, request())
	s.Require().Error(err)

	var appErr *temporal.ApplicationError
	s.Require().True(errors.As(err, &appErr))
	s.Equal(ErrTypeBookingRejected, appErr.Type())
	s.True(appErr.NonRetryable())

	var msg string
	s.Require().NoError(appErr.Details(&msg))
	s.Equal("Seat 12A is no longer available", msg)
}

func (s *ActivitiesTestSuite) TestCreateBooking_StoreFailureIsRetryable() {
	s.store.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset")).Once()

	_, err := s.env.ExecuteActivity(CreateBookingName, request())
	s.Require().Error(err)
	s.Contains(err.Error(), "connection reset")

	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		s.NotEqual(ErrTypeBookingRejected, appErr.Type())
	}
}

func (s *ActivitiesTestSuite) TestSendConfirmation_Publishes() {
	b := models.Booking{ID: "bk-1", Reference: "ABC123", FlightID: "FL001", SelectedSeats: []string{"12A"}}
	s.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(ev *notifications.BookingEvent) bool {
		return ev.BookingID == "bk-1" && ev.Type == notifications.EventBookingConfirmed
	})).Return(nil).Once()

	_, err := s.env.ExecuteActivity(SendConfirmationName, b)
	s.NoError(err)
}

func (s *ActivitiesTestSuite) TestSendConfirmation_PublishError() {
	s.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := s.env.ExecuteActivity(SendConfirmationName, models.Booking{ID: "bk-2"})
	s.Error(err)
}

func (s *ActivitiesTestSuite) TestSendConfirmation_NoPublisher() {
	env := s.NewTestActivityEnvironment()
	acts := NewActivities(s.store, nil)
	env.RegisterActivityWithOptions(acts.SendConfirmation, activity.RegisterOptions{Name: SendConfirmationName})

	_, err := env.ExecuteActivity(SendConfirmationName, models.Booking{ID: "bk-3"})
	s.NoError(err)
}
