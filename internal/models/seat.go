package models

import (
	"fmt"
	"strings"
)

// CabinClass is the fare class a seat belongs to
type CabinClass string

const (
	CabinClassFirst    CabinClass = "first"
	CabinClassBusiness CabinClass = "business"
	CabinClassEconomy  CabinClass = "economy"
)

// ParseCabinClass accepts a class name in any case; empty means economy.
func ParseCabinClass(s string) (CabinClass, error) {
	switch CabinClass(strings.ToLower(strings.TrimSpace(s))) {
	case "", CabinClassEconomy:
		return CabinClassEconomy, nil
	case CabinClassBusiness:
		return CabinClassBusiness, nil
	case CabinClassFirst:
		return CabinClassFirst, nil
	default:
		return "", fmt.Errorf("unknown cabin class %q", s)
	}
}

// SeatPosition locates a seat in the cabin
type SeatPosition struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
}

// Seat represents a seat on a flight
type Seat struct {
	SeatNumber  string       `json:"seatNumber"`
	Class       CabinClass   `json:"class"`
	Position    SeatPosition `json:"position"`
	IsAvailable bool         `json:"isAvailable"`
	IsBlocked   bool         `json:"isBlocked"`
	Price       *float64     `json:"price,omitempty"` // overrides the class fare when set
	Features    []string     `json:"features,omitempty"`
}

// SeatMap is the full seat collection of one flight
type SeatMap struct {
	FlightID string `json:"flightId"`
	Layout   string `json:"layout"` // column grouping such as "3-3", aisle placement only
	Seats    []Seat `json:"seats"`
}

const (
	FeatureExtraLegroom  = "extra-legroom"
	FeatureEmergencyExit = "emergency-exit"
	FeatureWindow        = "window"
	FeatureAisle         = "aisle"
)
