// Package cache keeps flight records in Redis in front of the flight store.
// Seat maps are never cached: a seat map must reflect the store when loaded.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/config"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	flightKeyPrefix = "flight:"
	flightListKey   = "flights:all"
)

// FlightSource is the uncached flight data store.
type FlightSource interface {
	ListFlights(ctx context.Context) ([]*models.Flight, error)
	GetFlight(ctx context.Context, flightID string) (*models.Flight, error)
	GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error)
}

// Flights serves flight records from Redis, filling misses from the source.
// Redis failures are logged and the source is used directly.
type Flights struct {
	source FlightSource
	rdb    *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewFlights(source FlightSource, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Flights {
	return &Flights{source: source, rdb: rdb, ttl: ttl, log: log}
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func (c *Flights) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	var flight models.Flight
	if c.load(ctx, flightKeyPrefix+flightID, &flight) {
		return &flight, nil
	}

	f, err := c.source.GetFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, flightKeyPrefix+flightID, f)
	return f, nil
}

func (c *Flights) ListFlights(ctx context.Context) ([]*models.Flight, error) {
	var flights []*models.Flight
	if c.load(ctx, flightListKey, &flights) {
		return flights, nil
	}

	flights, err := c.source.ListFlights(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, flightListKey, flights)
	return flights, nil
}

func (c *Flights) GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error) {
	return c.source.GetSeatMap(ctx, flightID)
}

func (c *Flights) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "flight cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.WarnContext(ctx, "flight cache entry corrupt", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (c *Flights) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "flight cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
