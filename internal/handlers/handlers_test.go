package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/advisor"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/booking"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/logger"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/seatmap"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/selection"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/service"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/service/mocks"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/flights", h.GetFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/seatmap", h.GetSeatMap).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/advice", h.GetSeatAdvice).Methods(http.MethodGet)
	api.HandleFunc("/currencies", h.GetCurrencies).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.OpenSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.CloseSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/count", h.SetSeatCount).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/seats/{seat}", h.SelectSeat).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/seats/{seat}/toggle", h.ToggleSeat).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/seats/{seat}", h.DeselectSeat).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/checkout", h.GetCheckoutForm).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/checkout", h.Checkout).Methods(http.MethodPost)
	return r
}

func newTestHandler() (*mocks.MockBookingService, *mux.Router) {
	mockService := new(mocks.MockBookingService)
	h := NewHandler(mockService, "US", logger.NewWithWriter(io.Discard, "error", false))
	return mockService, setupTestRouter(h)
}

func doRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func sampleView() *service.SessionView {
	return &service.SessionView{
		ID:             "sess-1",
		FlightID:       "FL001",
		CabinClass:     models.CabinClassEconomy,
		ClassBasePrice: 150,
		State:          selection.StatePartial,
		RequiredCount:  2,
		SelectedSeats:  []string{"12A"},
		Quote:          models.PriceQuote{BasePrice: 300, SeatSurcharge: 45, TaxesAndFees: 60, Total: 405, SelectedCount: 1, RequiredCount: 2},
	}
}

func TestHandler_GetFlights(t *testing.T) {
	mockService, router := newTestHandler()

	flights := []*models.Flight{{ID: "FL001", FlightNumber: "AA123"}}
	mockService.On("SearchFlights", mock.Anything, mock.MatchedBy(func(q models.FlightQuery) bool {
		return q.From == "New York" && q.Date != nil && q.Date.Day() == 11
	})).Return(flights, nil)

	rec := doRequest(router, http.MethodGet, "/api/flights?from=New+York&date=2026-03-11", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response []models.Flight
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response, 1)
	assert.Equal(t, "AA123", response[0].FlightNumber)
	mockService.AssertExpectations(t)
}

func TestHandler_GetFlights_BadDate(t *testing.T) {
	mockService, router := newTestHandler()

	rec := doRequest(router, http.MethodGet, "/api/flights?date=11-03-2026", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)
}

func TestHandler_GetFlight(t *testing.T) {
	tests := []struct {
		name           string
		mockReturn     *models.Flight
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{name: "flight found", mockReturn: &models.Flight{ID: "FL001"}, expectedStatus: http.StatusOK},
		{name: "flight not found", mockError: fmt.Errorf("%w: FL001", service.ErrFlightNotFound), expectedStatus: http.StatusNotFound, expectedCode: "FLIGHT_NOT_FOUND"},
		{name: "data unavailable", mockError: fmt.Errorf("%w: timeout", seatmap.ErrDataUnavailable), expectedStatus: http.StatusServiceUnavailable, expectedCode: "DATA_UNAVAILABLE"},
		{name: "unexpected", mockError: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, router := newTestHandler()
			mockService.On("GetFlight", mock.Anything, "FL001").Return(tt.mockReturn, tt.mockError)

			rec := doRequest(router, http.MethodGet, "/api/flights/FL001", nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Code)
			}
		})
	}
}

func TestHandler_GetSeatMapAndAdvice(t *testing.T) {
	mockService, router := newTestHandler()
	mockService.On("GetSeatMap", mock.Anything, "FL001").Return(&models.SeatMap{FlightID: "FL001", Layout: "3-3"}, nil)
	mockService.On("SeatAdvice", mock.Anything, "FL001").Return(&advisor.Advice{FlightID: "FL001", Title: "Seat advice"}, nil)

	rec := doRequest(router, http.MethodGet, "/api/flights/FL001/seatmap", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var sm models.SeatMap
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sm))
	assert.Equal(t, "3-3", sm.Layout)

	rec = doRequest(router, http.MethodGet, "/api/flights/FL001/advice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_GetCurrencies(t *testing.T) {
	_, router := newTestHandler()

	rec := doRequest(router, http.MethodGet, "/api/currencies", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 10)
}

func TestHandler_OpenSession(t *testing.T) {
	mockService, router := newTestHandler()
	mockService.On("OpenSession", mock.Anything, mock.Anything, &service.OpenSessionRequest{FlightID: "FL001", CabinClass: "economy", SeatCount: 2}).
		Return(sampleView(), nil)

	rec := doRequest(router, http.MethodPost, "/api/sessions?country=GB", map[string]any{
		"flightId": "FL001", "cabinClass": "economy", "seatCount": 2,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID      string       `json:"id"`
		State   string       `json:"state"`
		Display priceDisplay `json:"display"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "sess-1", resp.ID)
	assert.Equal(t, "partial", resp.State)
	assert.Equal(t, "GBP", resp.Display.Currency)
	assert.Equal(t, "£319.95", resp.Display.Total)
	mockService.AssertExpectations(t)
}

func TestHandler_OpenSession_ZeroSeatsIsInvalidCount(t *testing.T) {
	mockService, router := newTestHandler()
	mockService.On("OpenSession", mock.Anything, mock.Anything, mock.MatchedBy(func(req *service.OpenSessionRequest) bool {
		return req.FlightID == "FL001" && req.SeatCount == 0
	})).Return(nil, fmt.Errorf("%w: 0 not in [1,9]", selection.ErrInvalidCount))

	rec := doRequest(router, http.MethodPost, "/api/sessions", map[string]any{"flightId": "FL001", "seatCount": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_COUNT", decodeError(t, rec).Code)
	mockService.AssertExpectations(t)
}

func TestHandler_OpenSession_Validation(t *testing.T) {
	mockService, router := newTestHandler()

	rec := doRequest(router, http.MethodPost, "/api/sessions", map[string]any{"seatCount": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "flightId is required", decodeError(t, rec).Error)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString("{not json"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mockService.AssertNotCalled(t, "OpenSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_SelectSeat_StatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"unavailable", fmt.Errorf("%w: 16A", selection.ErrSeatUnavailable), http.StatusConflict, "SEAT_UNAVAILABLE"},
		{"full", fmt.Errorf("%w: you can only select 1 seat", selection.ErrSelectionFull), http.StatusConflict, "SELECTION_FULL"},
		{"checkout running", service.ErrCheckoutInProgress, http.StatusConflict, "CHECKOUT_IN_PROGRESS"},
		{"no session", service.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"closed", selection.ErrSessionClosed, http.StatusBadRequest, "SESSION_CLOSED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, router := newTestHandler()
			mockService.On("SelectSeat", mock.Anything, mock.Anything, "sess-1", "16A").Return(nil, tt.err)

			rec := doRequest(router, http.MethodPost, "/api/sessions/sess-1/seats/16A", nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCode, decodeError(t, rec).Code)
		})
	}
}

func TestHandler_SeatChanges(t *testing.T) {
	mockService, router := newTestHandler()
	mockService.On("SelectSeat", mock.Anything, mock.Anything, "sess-1", "12A").Return(sampleView(), nil)
	mockService.On("DeselectSeat", mock.Anything, mock.Anything, "sess-1", "12A").Return(sampleView(), nil)
	mockService.On("ToggleSeat", mock.Anything, mock.Anything, "sess-1", "12B").Return(sampleView(), nil)
	mockService.On("SetSeatCount", mock.Anything, mock.Anything, "sess-1", 0).
		Return(nil, fmt.Errorf("%w: 0 not in [1,9]", selection.ErrInvalidCount))
	mockService.On("SetSeatCount", mock.Anything, mock.Anything, "sess-1", 3).Return(sampleView(), nil)
	mockService.On("SetSeatCount", mock.Anything, mock.Anything, "sess-1", 12).
		Return(nil, fmt.Errorf("%w: 12 not in [1,9]", selection.ErrInvalidCount))

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/api/sessions/sess-1/seats/12A", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodDelete, "/api/sessions/sess-1/seats/12A", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodPut, "/api/sessions/sess-1/count", map[string]int{"seatCount": 3}).Code)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/api/sessions/sess-1/seats/12B/toggle", nil).Code)

	for _, n := range []int{0, 12} {
		rec := doRequest(router, http.MethodPut, "/api/sessions/sess-1/count", map[string]int{"seatCount": n})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_COUNT", decodeError(t, rec).Code)
	}
	mockService.AssertExpectations(t)
}

func TestHandler_GetSessionAndClose(t *testing.T) {
	mockService, router := newTestHandler()
	mockService.On("GetSession", mock.Anything, mock.Anything, "sess-1").Return(sampleView(), nil)
	mockService.On("CloseSession", mock.Anything, mock.Anything, "sess-1").Return(nil)

	rec := doRequest(router, http.MethodGet, "/api/sessions/sess-1?country=JP", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp sessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "¥60,548", resp.Display.Total)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodDelete, "/api/sessions/sess-1", nil).Code)
	mockService.AssertExpectations(t)
}

func TestHandler_GetCheckoutForm(t *testing.T) {
	mockService, router := newTestHandler()
	mockService.On("CheckoutForm", mock.Anything, mock.Anything, "sess-1").Return(&service.CheckoutForm{
		SessionID:     "sess-1",
		Passengers:    []models.Passenger{{FirstName: "alice", Title: "Mr"}},
		SelectedSeats: []string{"12A"},
		Quote:         models.PriceQuote{Total: 405},
	}, nil)

	rec := doRequest(router, http.MethodGet, "/api/sessions/sess-1/checkout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp checkoutFormResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Passengers, 1)
	assert.Equal(t, "alice", resp.Passengers[0].FirstName)
	assert.Equal(t, "$405.00", resp.Display.Total)
}

func TestHandler_Checkout(t *testing.T) {
	body := service.CheckoutRequest{
		Passengers:     []models.Passenger{{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1990-12-10"}},
		ContactDetails: models.ContactDetails{Email: "ada@example.com", Phone: "+1 555 0100"},
	}

	t.Run("confirmed", func(t *testing.T) {
		mockService, router := newTestHandler()
		mockService.On("Checkout", mock.Anything, mock.Anything, "sess-1", &body).Return(&models.Booking{
			ID: "bk-1", Reference: "QX7P2L", Status: models.BookingStatusConfirmed, CreatedAt: time.Now(),
		}, nil)

		rec := doRequest(router, http.MethodPost, "/api/sessions/sess-1/checkout", body)
		assert.Equal(t, http.StatusCreated, rec.Code)
		var b models.Booking
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&b))
		assert.Equal(t, "QX7P2L", b.Reference)
	})

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "booking rejected",
			err:            &booking.FailedError{Message: "Seat 12A is no longer available"},
			expectedStatus: http.StatusConflict,
			expectedCode:   "BOOKING_FAILED",
			expectedMsg:    "Seat 12A is no longer available",
		},
		{
			name:           "seat count mismatch",
			err:            fmt.Errorf("%w: please select 2 seat(s), 1 selected", booking.ErrSeatCountMismatch),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "SEAT_COUNT_MISMATCH",
		},
		{
			name:           "missing contact",
			err:            booking.ErrMissingContact,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_CONTACT",
			expectedMsg:    "please provide a contact phone number",
		},
		{
			name:           "transport fault",
			err:            fmt.Errorf("booking service: %w", errors.New("connection reset")),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, router := newTestHandler()
			mockService.On("Checkout", mock.Anything, mock.Anything, "sess-1", mock.Anything).Return(nil, tt.err)

			rec := doRequest(router, http.MethodPost, "/api/sessions/sess-1/checkout", body)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.expectedCode, resp.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, resp.Error)
			}
		})
	}
}

func TestHandler_Checkout_PassengerError(t *testing.T) {
	mockService, router := newTestHandler()
	mockService.On("Checkout", mock.Anything, mock.Anything, "sess-1", mock.Anything).
		Return(nil, &booking.PassengerError{Index: 1, Field: "dateOfBirth", Err: booking.ErrInvalidDateOfBirth})

	rec := doRequest(router, http.MethodPost, "/api/sessions/sess-1/checkout", service.CheckoutRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, "INVALID_DATE_OF_BIRTH", resp.Code)
	assert.Equal(t, 2, resp.Passenger)
	assert.Equal(t, "dateOfBirth", resp.Field)
}
