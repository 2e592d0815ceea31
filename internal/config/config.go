package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BookingModeDirect   = "direct"
	BookingModeTemporal = "temporal"
)

// Config holds all configuration for the server and worker
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	DatabaseURL string

	Redis RedisConfig
	Kafka KafkaConfig

	TemporalHost string
	BookingMode  string

	JWTSecret      string
	PaymentDelay   time.Duration
	DefaultCountry string
	CORSOrigins    []string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	FlightTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("API_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("FLIGHT_CACHE_TTL", "5m")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "booking-events")
	v.SetDefault("TEMPORAL_HOST", "localhost:7233")
	v.SetDefault("BOOKING_MODE", BookingModeDirect)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("PAYMENT_DELAY", "2s")
	v.SetDefault("DEFAULT_COUNTRY", "US")
	v.SetDefault("CORS_ORIGINS", "*")
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:        v.GetString("API_PORT"),
		AppEnv:      v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		Redis: RedisConfig{
			Addr:      v.GetString("REDIS_ADDR"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			FlightTTL: v.GetDuration("FLIGHT_CACHE_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		TemporalHost:   v.GetString("TEMPORAL_HOST"),
		BookingMode:    strings.ToLower(v.GetString("BOOKING_MODE")),
		JWTSecret:      v.GetString("JWT_SECRET"),
		PaymentDelay:   v.GetDuration("PAYMENT_DELAY"),
		DefaultCountry: strings.ToUpper(v.GetString("DEFAULT_COUNTRY")),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
	}

	if cfg.BookingMode != BookingModeDirect && cfg.BookingMode != BookingModeTemporal {
		return nil, fmt.Errorf("invalid BOOKING_MODE %q: want %s or %s", cfg.BookingMode, BookingModeDirect, BookingModeTemporal)
	}
	// the worker books into Postgres, so the server has to read the same database
	if cfg.BookingMode == BookingModeTemporal && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("BOOKING_MODE %s requires DATABASE_URL", BookingModeTemporal)
	}
	if cfg.PaymentDelay < 0 {
		return nil, fmt.Errorf("invalid PAYMENT_DELAY %s", cfg.PaymentDelay)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func (c *Config) Addr() string { return ":" + c.Port }

// AuthEnabled reports whether session routes require a bearer token.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }
