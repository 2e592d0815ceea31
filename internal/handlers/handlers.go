package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/auth"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/booking"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/currency"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/logger"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/seatmap"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/selection"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const dateLayout = "2006-01-02"

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	validate       *validator.Validate
	defaultCountry string
	log            *logger.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService, defaultCountry string, log *logger.Logger) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
			return name
		}
		return fld.Name
	})

	return &Handler{
		bookingService: bookingService,
		validate:       v,
		defaultCountry: defaultCountry,
		log:            log,
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Passenger int    `json:"passenger,omitempty"`
	Field     string `json:"field,omitempty"`
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondServiceError maps domain errors to HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var passengerErr *booking.PassengerError
	if errors.As(err, &passengerErr) {
		code := "INCOMPLETE_PASSENGER_INFO"
		if errors.Is(err, booking.ErrInvalidDateOfBirth) {
			code = "INVALID_DATE_OF_BIRTH"
		}
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:     passengerErr.Err.Error(),
			Code:      code,
			Passenger: passengerErr.Index + 1,
			Field:     passengerErr.Field,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrFlightNotFound):
		respondError(w, http.StatusNotFound, "FLIGHT_NOT_FOUND", "Flight not found")
	case errors.Is(err, service.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
	case errors.Is(err, seatmap.ErrDataUnavailable):
		h.log.WithError(err).Warn("flight data unavailable", "path", r.URL.Path)
		respondError(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE", "Flight data is currently unavailable, please try again")
	case errors.Is(err, selection.ErrSeatUnavailable):
		respondError(w, http.StatusConflict, "SEAT_UNAVAILABLE", err.Error())
	case errors.Is(err, selection.ErrSelectionFull):
		respondError(w, http.StatusConflict, "SELECTION_FULL", err.Error())
	case errors.Is(err, booking.ErrBookingFailed):
		respondError(w, http.StatusConflict, "BOOKING_FAILED", err.Error())
	case errors.Is(err, service.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, "CHECKOUT_IN_PROGRESS", err.Error())
	case errors.Is(err, selection.ErrInvalidCount):
		respondError(w, http.StatusBadRequest, "INVALID_COUNT", err.Error())
	case errors.Is(err, selection.ErrSessionClosed):
		respondError(w, http.StatusBadRequest, "SESSION_CLOSED", err.Error())
	case errors.Is(err, booking.ErrSeatCountMismatch):
		respondError(w, http.StatusBadRequest, "SEAT_COUNT_MISMATCH", err.Error())
	case errors.Is(err, booking.ErrMissingContact):
		respondError(w, http.StatusBadRequest, "MISSING_CONTACT", err.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		h.log.WithError(err).Error("request failed", "method", r.Method, "path", r.URL.Path)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", fieldErrs[0].Field()+" is required")
			return false
		}
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return false
	}
	return true
}

func currentUser(r *http.Request) *models.User {
	user, _ := auth.UserFromContext(r.Context())
	return user
}

func (h *Handler) currency(r *http.Request) currency.Currency {
	if c := r.URL.Query().Get("country"); c != "" {
		return currency.Lookup(c)
	}
	return currency.Lookup(h.defaultCountry)
}

// priceDisplay holds quote amounts formatted in the caller's currency
type priceDisplay struct {
	Currency      string `json:"currency"`
	BasePrice     string `json:"basePrice"`
	SeatSurcharge string `json:"seatSurcharge"`
	TaxesAndFees  string `json:"taxesAndFees"`
	Total         string `json:"total"`
}

func displayQuote(q models.PriceQuote, c currency.Currency) priceDisplay {
	return priceDisplay{
		Currency:      c.Code,
		BasePrice:     c.Format(q.BasePrice),
		SeatSurcharge: c.Format(q.SeatSurcharge),
		TaxesAndFees:  c.Format(q.TaxesAndFees),
		Total:         c.Format(q.Total),
	}
}

type sessionResponse struct {
	*service.SessionView
	Display priceDisplay `json:"display"`
}

type checkoutFormResponse struct {
	*service.CheckoutForm
	Display priceDisplay `json:"display"`
}

type seatCountRequest struct {
	SeatCount int `json:"seatCount"`
}

// GetFlights handles GET /api/flights
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	q := models.FlightQuery{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if d := strings.TrimSpace(r.URL.Query().Get("date")); d != "" {
		date, err := time.Parse(dateLayout, d)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "date must be in YYYY-MM-DD format")
			return
		}
		q.Date = &date
	}

	flights, err := h.bookingService.SearchFlights(r.Context(), q)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, flights)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flight, err := h.bookingService.GetFlight(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// GetSeatMap handles GET /api/flights/{id}/seatmap
func (h *Handler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	sm, err := h.bookingService.GetSeatMap(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sm)
}

// GetSeatAdvice handles GET /api/flights/{id}/advice
func (h *Handler) GetSeatAdvice(w http.ResponseWriter, r *http.Request) {
	advice, err := h.bookingService.SeatAdvice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, advice)
}

// GetCurrencies handles GET /api/currencies
func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currency.All())
}

// OpenSession handles POST /api/sessions
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req service.OpenSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.bookingService.OpenSession(r.Context(), currentUser(r), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.session(r, view))
}

// GetSession handles GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.bookingService.GetSession(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session(r, view))
}

// CloseSession handles DELETE /api/sessions/{id}
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.bookingService.CloseSession(r.Context(), currentUser(r), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Session closed"})
}

// SetSeatCount handles PUT /api/sessions/{id}/count
func (h *Handler) SetSeatCount(w http.ResponseWriter, r *http.Request) {
	var req seatCountRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.bookingService.SetSeatCount(r.Context(), currentUser(r), mux.Vars(r)["id"], req.SeatCount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session(r, view))
}

// SelectSeat handles POST /api/sessions/{id}/seats/{seat}
func (h *Handler) SelectSeat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.bookingService.SelectSeat(r.Context(), currentUser(r), vars["id"], vars["seat"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session(r, view))
}

// ToggleSeat handles POST /api/sessions/{id}/seats/{seat}/toggle
func (h *Handler) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.bookingService.ToggleSeat(r.Context(), currentUser(r), vars["id"], vars["seat"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session(r, view))
}

// DeselectSeat handles DELETE /api/sessions/{id}/seats/{seat}
func (h *Handler) DeselectSeat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.bookingService.DeselectSeat(r.Context(), currentUser(r), vars["id"], vars["seat"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.session(r, view))
}

// GetCheckoutForm handles GET /api/sessions/{id}/checkout
func (h *Handler) GetCheckoutForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.bookingService.CheckoutForm(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutFormResponse{CheckoutForm: form, Display: displayQuote(form.Quote, h.currency(r))})
}

// Checkout handles POST /api/sessions/{id}/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	b, err := h.bookingService.Checkout(r.Context(), currentUser(r), mux.Vars(r)["id"], &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) session(r *http.Request, view *service.SessionView) sessionResponse {
	return sessionResponse{SessionView: view, Display: displayQuote(view.Quote, h.currency(r))}
}
