package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/google/uuid"
)

const EventBookingConfirmed = "booking.confirmed"

// BookingEvent is the message published for every confirmed booking
type BookingEvent struct {
	EventID    string    `json:"eventId"`
	Type       string    `json:"type"`
	BookingID  string    `json:"bookingId"`
	Reference  string    `json:"reference"`
	FlightID   string    `json:"flightId"`
	Seats      []string  `json:"seats"`
	Email      string    `json:"email"`
	Passengers int       `json:"passengers"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewBookingEvent(b *models.Booking) *BookingEvent {
	return &BookingEvent{
		EventID:    uuid.New().String(),
		Type:       EventBookingConfirmed,
		BookingID:  b.ID,
		Reference:  b.Reference,
		FlightID:   b.FlightID,
		Seats:      b.SelectedSeats,
		Email:      b.ContactDetails.Email,
		Passengers: len(b.Passengers),
		OccurredAt: time.Now().UTC(),
	}
}

// KafkaPublisher publishes booking events keyed by flight so events of one
// flight stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

// NewSyncProducer creates the producer used by KafkaPublisher
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Timeout = 10 * time.Second
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.FlightID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	p.log.DebugContext(ctx, "booking event published",
		slog.String("booking_id", event.BookingID),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

// BookingConfirmed publishes the event for a confirmed booking. Failures are
// logged; the booking itself already succeeded.
func (p *KafkaPublisher) BookingConfirmed(ctx context.Context, b *models.Booking) {
	if err := p.Publish(ctx, NewBookingEvent(b)); err != nil {
		p.log.ErrorContext(ctx, "booking event not published",
			slog.String("booking_id", b.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
