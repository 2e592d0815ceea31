package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/auth"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/booking"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/cache"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/config"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/database"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/handlers"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/logger"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/notifications"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/router"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/service"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/websocket"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/workflows"
	"go.temporal.io/sdk/client"
)

const (
	sessionIdleTimeout = 30 * time.Minute
	sessionSweepPeriod = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	lg := logger.New(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Flight data and seat inventory
	var store database.Store
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			lg.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		repo := database.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			lg.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		store = repo
		lg.Info("connected to database")
	} else {
		lg.Warn("DATABASE_URL not set, serving in-memory sample flights")
		store = database.NewSeededMemoryStore(time.Now())
	}

	var flights service.FlightStore = store
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			lg.Warn("redis unavailable, flight cache disabled", "error", err)
		} else {
			defer rdb.Close()
			flights = cache.NewFlights(store, rdb, cfg.Redis.FlightTTL, lg.Logger)
			lg.Info("flight cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.FlightTTL)
		}
	}

	hub := websocket.NewHub(lg.Logger)
	go hub.Run(ctx)
	listeners := []service.BookingListener{hub}

	// In temporal mode the worker publishes confirmations itself.
	var booker booking.Booker = store
	switch cfg.BookingMode {
	case config.BookingModeTemporal:
		temporalClient, err := client.Dial(client.Options{HostPort: cfg.TemporalHost})
		if err != nil {
			lg.Error("failed to create Temporal client", "host", cfg.TemporalHost, "error", err)
			os.Exit(1)
		}
		defer temporalClient.Close()
		booker = workflows.NewBooker(temporalClient, workflows.TaskQueue)
		lg.Info("bookings run as Temporal workflows", "host", cfg.TemporalHost, "task_queue", workflows.TaskQueue)

	default:
		if len(cfg.Kafka.Brokers) > 0 {
			producer, err := notifications.NewSyncProducer(cfg.Kafka.Brokers)
			if err != nil {
				lg.Warn("kafka unavailable, booking events disabled", "error", err)
			} else {
				publisher := notifications.NewKafkaPublisher(producer, cfg.Kafka.Topic, lg.Logger)
				defer publisher.Close()
				listeners = append(listeners, publisher)
			}
		}
	}

	// Initialize services
	bookingService := service.NewBookingService(flights, booker, lg,
		service.WithListeners(listeners...),
		service.WithPaymentDelay(cfg.PaymentDelay),
	)
	go expireSessions(ctx, bookingService)

	// Initialize handlers
	h := handlers.NewHandler(bookingService, cfg.DefaultCountry, lg)

	r := router.SetupRouter(h, router.Config{
		Auth:        auth.New(cfg.JWTSecret),
		Hub:         hub,
		Logger:      lg,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.PaymentDelay,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("API server starting",
			"addr", srv.Addr,
			"env", cfg.AppEnv,
			"booking_mode", cfg.BookingMode,
			"auth", cfg.AuthEnabled(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", "error", err)
	}
	lg.Info("server stopped")
}

func expireSessions(ctx context.Context, svc service.BookingService) {
	ticker := time.NewTicker(sessionSweepPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.ExpireSessions(sessionIdleTimeout)
		}
	}
}
