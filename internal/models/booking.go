package models

import "time"

// Passenger holds the traveller details entered for one seat slot
type Passenger struct {
	Title          string `json:"title"`
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required"` // YYYY-MM-DD
	Gender         string `json:"gender"`
	Nationality    string `json:"nationality"`
	PassportNumber string `json:"passportNumber,omitempty"`
	MealPreference string `json:"mealPreference"`
}

// EmergencyContact is carried for the booking service but never validated
type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

// ContactDetails of the person making the booking
type ContactDetails struct {
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
}

// PassengerSeat pairs a passenger with the seat assigned to them
type PassengerSeat struct {
	Passenger
	SeatNumber string `json:"seatNumber"`
}

// BookingRequest is the payload sent to the booking service
type BookingRequest struct {
	FlightID        string          `json:"flightId"`
	Passengers      []PassengerSeat `json:"passengers"`
	ContactDetails  ContactDetails  `json:"contactDetails"`
	SelectedSeats   []string        `json:"selectedSeats"`
	SpecialServices []string        `json:"specialServices"`
}

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is the record created by the booking service
type Booking struct {
	ID             string          `json:"id"`
	Reference      string          `json:"reference"`
	FlightID       string          `json:"flightId"`
	Status         BookingStatus   `json:"status"`
	Passengers     []PassengerSeat `json:"passengers"`
	ContactDetails ContactDetails  `json:"contactDetails"`
	SelectedSeats  []string        `json:"selectedSeats"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// PriceQuote is a computed, non-persisted price breakdown
type PriceQuote struct {
	BasePrice     float64 `json:"basePrice"`
	SeatSurcharge float64 `json:"seatSurcharge"`
	TaxesAndFees  float64 `json:"taxesAndFees"`
	Total         float64 `json:"total"`
	SelectedCount int     `json:"selectedCount"`
	RequiredCount int     `json:"requiredCount"`
}

// Complete reports whether the quote covers a full selection
func (q PriceQuote) Complete() bool {
	return q.SelectedCount == q.RequiredCount
}

// User is the authenticated caller
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone,omitempty"`
}
