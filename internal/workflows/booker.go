package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/activities"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/booking"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
)

// Booker creates bookings by running BookingWorkflow and waiting for it
type Booker struct {
	client    client.Client
	taskQueue string
}

func NewBooker(c client.Client, taskQueue string) *Booker {
	if taskQueue == "" {
		taskQueue = TaskQueue
	}
	return &Booker{client: c, taskQueue: taskQueue}
}

// CreateBooking starts the workflow and blocks until it finishes. A refusal
// raised by the booking activity comes back as *booking.RejectionError.
func (b *Booker) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	opts := client.StartWorkflowOptions{
		ID:        "booking-" + uuid.New().String(),
		TaskQueue: b.taskQueue,
	}

	run, err := b.client.ExecuteWorkflow(ctx, opts, BookingWorkflow, BookingWorkflowInput{Request: *req})
	if err != nil {
		return nil, fmt.Errorf("failed to start booking workflow: %w", err)
	}

	var result models.Booking
	if err := run.Get(ctx, &result); err != nil {
		var appErr *temporal.ApplicationError
		if errors.As(err, &appErr) && appErr.Type() == activities.ErrTypeBookingRejected {
			return nil, &booking.RejectionError{Message: rejectionMessage(appErr)}
		}
		return nil, fmt.Errorf("booking workflow failed: %w", err)
	}
	return &result, nil
}
