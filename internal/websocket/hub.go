package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/gorilla/websocket"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSeatsBooked MessageType = "seats_booked"
)

// SeatUpdate represents a seat status change
type SeatUpdate struct {
	SeatNumber string `json:"seatNumber"`
	Status     string `json:"status"`
}

// Message represents a WebSocket message. Clients treat it as a hint to
// re-fetch the seat map; it never carries the seat map itself.
type Message struct {
	Type      MessageType  `json:"type"`
	FlightID  string       `json:"flightId"`
	Seats     []SeatUpdate `json:"seats,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// Client represents a WebSocket client connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	flightID string
}

// Hub manages WebSocket connections per flight
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	mu         sync.RWMutex
	log        *slog.Logger
}

// NewHub creates a new Hub
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop; it returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.flightID] == nil {
				h.clients[client.flightID] = make(map[*Client]bool)
			}
			h.clients[client.flightID][client] = true
			count := len(h.clients[client.flightID])
			h.mu.Unlock()
			h.log.Debug("websocket client registered", "flight_id", client.flightID, "clients", count)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.log.Error("failed to marshal websocket message", "error", err)
				continue
			}

			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients[message.FlightID]))
			for c := range h.clients[message.FlightID] {
				clients = append(clients, c)
			}
			h.mu.RUnlock()

			h.log.Debug("broadcasting websocket message",
				"type", string(message.Type),
				"flight_id", message.FlightID,
				"clients", len(clients),
			)
			for _, client := range clients {
				select {
				case client.send <- data:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[client.flightID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, client.flightID)
			}
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for flightID, clients := range h.clients {
		for c := range clients {
			close(c.send)
		}
		delete(h.clients, flightID)
	}
}

// BroadcastSeatsBooked tells everyone watching a flight that seats were sold
func (h *Hub) BroadcastSeatsBooked(flightID string, seatNumbers []string) {
	seats := make([]SeatUpdate, len(seatNumbers))
	for i, n := range seatNumbers {
		seats[i] = SeatUpdate{SeatNumber: n, Status: "booked"}
	}

	msg := &Message{
		Type:      MessageTypeSeatsBooked,
		FlightID:  flightID,
		Seats:     seats,
		Message:   "Seats have been booked, refresh the seat map to see current availability",
		Timestamp: time.Now().UnixMilli(),
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("websocket broadcast queue full, message dropped", "flight_id", flightID)
	}
}

// BookingConfirmed broadcasts the booked seats of a confirmed booking
func (h *Hub) BookingConfirmed(ctx context.Context, b *models.Booking) {
	h.BroadcastSeatsBooked(b.FlightID, b.SelectedSeats)
}

// ClientCount returns the number of clients watching a flight
func (h *Hub) ClientCount(flightID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[flightID])
}
