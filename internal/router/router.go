package router

import (
	"net/http"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/auth"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/handlers"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/logger"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/websocket"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Config holds what the router needs besides the handlers
type Config struct {
	Auth        *auth.Authenticator
	Hub         *websocket.Hub
	Logger      *logger.Logger
	CORSOrigins []string
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, cfg Config) http.Handler {
	r := mux.NewRouter()
	r.Use(cfg.Logger.Middleware)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Flights
	api.HandleFunc("/flights", h.GetFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/seatmap", h.GetSeatMap).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/advice", h.GetSeatAdvice).Methods(http.MethodGet)
	api.HandleFunc("/currencies", h.GetCurrencies).Methods(http.MethodGet)

	// WebSocket for seat map refresh notices
	if cfg.Hub != nil {
		api.HandleFunc("/flights/{id}/ws", cfg.Hub.HandleWebSocket)
	}

	// Selection sessions
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(cfg.Auth.Middleware)
	sessions.HandleFunc("", h.OpenSession).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}", h.GetSession).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", h.CloseSession).Methods(http.MethodDelete)
	sessions.HandleFunc("/{id}/count", h.SetSeatCount).Methods(http.MethodPut)
	sessions.HandleFunc("/{id}/seats/{seat}", h.SelectSeat).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/seats/{seat}", h.DeselectSeat).Methods(http.MethodDelete)
	sessions.HandleFunc("/{id}/seats/{seat}/toggle", h.ToggleSeat).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/checkout", h.GetCheckoutForm).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/checkout", h.Checkout).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	})
	return c.Handler(r)
}
