package database

import (
	"fmt"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
)

var sampleAirports = map[string]models.Airport{
	"JFK": {Code: "JFK", Name: "John F. Kennedy International Airport", City: "New York", State: "NY", Country: "USA"},
	"LAX": {Code: "LAX", Name: "Los Angeles International Airport", City: "Los Angeles", State: "CA", Country: "USA"},
	"ORD": {Code: "ORD", Name: "O'Hare International Airport", City: "Chicago", State: "IL", Country: "USA"},
	"MIA": {Code: "MIA", Name: "Miami International Airport", City: "Miami", State: "FL", Country: "USA"},
	"SFO": {Code: "SFO", Name: "San Francisco International Airport", City: "San Francisco", State: "CA", Country: "USA"},
	"SEA": {Code: "SEA", Name: "Seattle-Tacoma International Airport", City: "Seattle", State: "WA", Country: "USA"},
	"DXB": {Code: "DXB", Name: "Dubai International Airport", City: "Dubai", Country: "UAE"},
}

// SampleFlights returns the demo schedule, departing relative to now.
func SampleFlights(now time.Time) []*models.Flight {
	day := now.Truncate(time.Hour)
	mk := func(id, number, airline, from, to string, departIn time.Duration, minutes int, economy float64) *models.Flight {
		dep := day.Add(departIn)
		return &models.Flight{
			ID:              id,
			FlightNumber:    number,
			Airline:         airline,
			Origin:          sampleAirports[from],
			Destination:     sampleAirports[to],
			DepartureTime:   dep,
			ArrivalTime:     dep.Add(time.Duration(minutes) * time.Minute),
			DurationMinutes: minutes,
			Pricing: map[models.CabinClass]float64{
				models.CabinClassEconomy:  economy,
				models.CabinClassBusiness: economy * 2.5,
				models.CabinClassFirst:    economy * 4,
			},
			Status: models.FlightStatusScheduled,
		}
	}

	return []*models.Flight{
		mk("FL001", "AA123", "American Airlines", "JFK", "LAX", 24*time.Hour, 360, 150),
		mk("FL002", "UA456", "United Airlines", "ORD", "MIA", 48*time.Hour, 240, 200),
		mk("FL003", "DL789", "Delta Air Lines", "SFO", "SEA", 12*time.Hour, 120, 120),
		mk("FL004", "EK201", "Emirates", "DXB", "JFK", 72*time.Hour, 840, 650),
	}
}

const (
	firstClassRows    = 2
	businessClassRows = 6
	totalRows         = 30
	exitRow           = 12
)

var sampleColumns = []string{"A", "B", "C", "D", "E", "F"}

// SampleSeatMap lays out a 3-3 cabin for a flight: first class up front,
// then business, then economy. Exit row seats cost more, a few seats are sold
// and the last row is held back for crew.
func SampleSeatMap(f *models.Flight) *models.SeatMap {
	sm := &models.SeatMap{FlightID: f.ID, Layout: "3-3"}
	for row := 1; row <= totalRows; row++ {
		class := models.CabinClassEconomy
		switch {
		case row <= firstClassRows:
			class = models.CabinClassFirst
		case row <= businessClassRows:
			class = models.CabinClassBusiness
		}

		for i, col := range sampleColumns {
			seat := models.Seat{
				SeatNumber:  fmt.Sprintf("%d%s", row, col),
				Class:       class,
				Position:    models.SeatPosition{Row: row, Column: col},
				IsAvailable: (row*len(sampleColumns)+i)%7 != 3,
				IsBlocked:   row == totalRows,
			}
			switch col {
			case "A", "F":
				seat.Features = append(seat.Features, models.FeatureWindow)
			case "C", "D":
				seat.Features = append(seat.Features, models.FeatureAisle)
			}
			if row == exitRow {
				seat.Features = append(seat.Features, models.FeatureEmergencyExit, models.FeatureExtraLegroom)
				price := f.BasePrice(class) + 45
				seat.Price = &price
			}
			sm.Seats = append(sm.Seats, seat)
		}
	}
	return sm
}
