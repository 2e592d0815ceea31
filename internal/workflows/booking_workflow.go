package workflows

import (
	"errors"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/activities"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	TaskQueue = "flight-seat-booking-queue"

	BookingTimeout          = 30 * time.Second
	ConfirmationTimeout     = 10 * time.Second
	MaxConfirmationAttempts = 3
)

// BookingWorkflowInput is the input to the booking workflow
type BookingWorkflowInput struct {
	Request models.BookingRequest `json:"request"`
}

// BookingWorkflow creates the booking and then sends its confirmation.
// Creation runs once: a refused request must not be retried behind the
// user's back. The confirmation is best effort.
func BookingWorkflow(ctx workflow.Context, input BookingWorkflowInput) (*models.Booking, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Booking workflow started", "flightId", input.Request.FlightID, "seats", input.Request.SelectedSeats)

	createCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: BookingTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	var b models.Booking
	err := workflow.ExecuteActivity(createCtx, activities.CreateBookingName, input.Request).Get(ctx, &b)
	if err != nil {
		var appErr *temporal.ApplicationError
		if errors.As(err, &appErr) && appErr.Type() == activities.ErrTypeBookingRejected {
			msg := rejectionMessage(appErr)
			logger.Info("Booking rejected", "reason", msg)
			return nil, temporal.NewNonRetryableApplicationError(msg, activities.ErrTypeBookingRejected, nil, msg)
		}
		logger.Error("Booking failed", "error", err)
		return nil, err
	}

	confirmCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: ConfirmationTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    MaxConfirmationAttempts,
		},
	})
	if err := workflow.ExecuteActivity(confirmCtx, activities.SendConfirmationName, b).Get(ctx, nil); err != nil {
		logger.Warn("Failed to send confirmation", "bookingId", b.ID, "error", err)
	}

	logger.Info("Booking workflow completed", "bookingId", b.ID, "reference", b.Reference)
	return &b, nil
}

// rejectionMessage reads the refusal text carried in the error details,
// falling back to the error text.
func rejectionMessage(appErr *temporal.ApplicationError) string {
	var msg string
	if appErr.HasDetails() {
		if err := appErr.Details(&msg); err == nil && msg != "" {
			return msg
		}
	}
	return appErr.Error()
}
