package models

import (
	"strings"
	"time"
)

// Airport identifies one end of a route
type Airport struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country"`
}

// Flight represents a scheduled flight
type Flight struct {
	ID              string                 `json:"id"`
	FlightNumber    string                 `json:"flightNumber"`
	Airline         string                 `json:"airline"`
	Origin          Airport                `json:"origin"`
	Destination     Airport                `json:"destination"`
	DepartureTime   time.Time              `json:"departureTime"`
	ArrivalTime     time.Time              `json:"arrivalTime"`
	DurationMinutes int                    `json:"durationMinutes"`
	Pricing         map[CabinClass]float64 `json:"pricing"`
	Status          FlightStatus           `json:"status"`
}

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusDelayed   FlightStatus = "delayed"
	FlightStatusCancelled FlightStatus = "cancelled"
)

// BasePrice returns the per-seat fare of a cabin class, zero if the flight does not sell it.
func (f *Flight) BasePrice(class CabinClass) float64 {
	if f == nil || f.Pricing == nil {
		return 0
	}
	return f.Pricing[class]
}

// FlightQuery holds the search filters of the flight listing
type FlightQuery struct {
	From string
	To   string
	Date *time.Time
}

// IsEmpty reports whether no filter was supplied
func (q FlightQuery) IsEmpty() bool {
	return strings.TrimSpace(q.From) == "" && strings.TrimSpace(q.To) == "" && q.Date == nil
}
