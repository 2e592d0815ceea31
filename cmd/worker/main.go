package main

import (
	"context"
	"log"
	"os"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/activities"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/config"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/database"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/logger"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/notifications"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/workflows"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	lg := logger.New(cfg.LogLevel, cfg.IsProduction())

	// The worker books against the same database the API server reads.
	if cfg.DatabaseURL == "" {
		lg.Error("DATABASE_URL is required for the worker")
		os.Exit(1)
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	lg.Info("connected to database")

	repo := database.NewRepository(pool)

	var publisher activities.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := notifications.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			lg.Warn("kafka unavailable, confirmations will only be logged", "error", err)
		} else {
			kp := notifications.NewKafkaPublisher(producer, cfg.Kafka.Topic, lg.Logger)
			defer kp.Close()
			publisher = kp
		}
	}

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalHost})
	if err != nil {
		lg.Error("failed to connect to Temporal", "host", cfg.TemporalHost, "error", err)
		os.Exit(1)
	}
	defer c.Close()
	lg.Info("connected to Temporal", "host", cfg.TemporalHost)

	w := worker.New(c, workflows.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.BookingWorkflow)

	acts := activities.NewActivities(repo, publisher)
	w.RegisterActivityWithOptions(acts.CreateBooking, activity.RegisterOptions{Name: activities.CreateBookingName})
	w.RegisterActivityWithOptions(acts.SendConfirmation, activity.RegisterOptions{Name: activities.SendConfirmationName})

	lg.Info("starting Temporal worker", "task_queue", workflows.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		lg.Error("worker failed", "error", err)
		os.Exit(1)
	}
}
