// Package advisor produces canned seat advice for a flight from its route,
// departure hour and length.
package advisor

import (
	"fmt"
	"strings"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
)

type Section struct {
	Heading string   `json:"heading"`
	Tips    []string `json:"tips"`
}

type Advice struct {
	FlightID string    `json:"flightId"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Summary  string    `json:"summary"`
}

type route int

const (
	routeGeneral route = iota
	routeDubaiOutbound
	routeDubaiInbound
	routeNewYork
)

func classify(f *models.Flight) route {
	from, to := f.Origin.Country, f.Destination.Country
	switch {
	case isUAE(from) && isUSA(to):
		return routeDubaiOutbound
	case isUSA(from) && isUAE(to):
		return routeDubaiInbound
	case strings.Contains(strings.ToLower(f.Origin.City), "new york"),
		strings.Contains(strings.ToLower(f.Destination.City), "new york"):
		return routeNewYork
	default:
		return routeGeneral
	}
}

func isUAE(country string) bool {
	switch strings.ToUpper(country) {
	case "UAE", "AE", "UNITED ARAB EMIRATES":
		return true
	}
	return false
}

func isUSA(country string) bool {
	switch strings.ToUpper(country) {
	case "USA", "US", "UNITED STATES":
		return true
	}
	return false
}

// Recommend builds the advice for a flight. The departure hour is read in the
// location DepartureTime carries.
func Recommend(f *models.Flight) Advice {
	r := classify(f)
	a := Advice{
		FlightID: f.ID,
		Title:    fmt.Sprintf("Seat analysis for %s to %s", f.Origin.City, f.Destination.City),
	}

	a.Sections = append(a.Sections, routeSection(r), timeSection(f.DepartureTime.Hour()), durationSection(f.DurationMinutes/60), classSection())

	side := "side that interests you most"
	switch r {
	case routeDubaiOutbound:
		side = "left side (A, B)"
	case routeDubaiInbound:
		side = "right side (E, F)"
	}
	a.Summary = fmt.Sprintf("For your %s to %s route, window seats on the %s give the best mix of views and comfort.",
		f.Origin.City, f.Destination.City, side)
	return a
}

func routeSection(r route) Section {
	switch r {
	case routeDubaiOutbound:
		return Section{Heading: "Scenic route", Tips: []string{
			"Left side seats (A, B): Dubai skyline on takeoff, including Burj Khalifa, Palm Jumeirah and Dubai Marina",
			"Right side seats (E, F): the Arabian Gulf and desert landscapes",
		}}
	case routeDubaiInbound:
		return Section{Heading: "Scenic route", Tips: []string{
			"Right side seats (E, F): Dubai skyline on approach, including Burj Al Arab and The World Islands",
			"Left side seats (A, B): the Persian Gulf and coastal developments",
		}}
	case routeNewYork:
		return Section{Heading: "New York route", Tips: []string{
			"Right side seats (E, F): Manhattan skyline, the Statue of Liberty and Central Park",
			"Left side seats (A, B): Brooklyn Bridge and the East River",
		}}
	default:
		return Section{Heading: "General route", Tips: []string{
			"Window seats (A, F): best for views and photography",
			"Aisle seats (C, D): easy to move around during the flight",
		}}
	}
}

func timeSection(hour int) Section {
	if hour >= 6 && hour <= 18 {
		return Section{Heading: "Daytime flight", Tips: []string{
			"Left side: morning sun, a warmer and brighter cabin",
			"Right side: the shaded side, cooler for passengers sensitive to sun",
			"Window seats: aerial photography and sightseeing",
		}}
	}
	return Section{Heading: "Night flight", Tips: []string{
		"Window seats: city lights and stargazing",
		"Any side: sun position does not matter",
		"Seats away from the galley and restrooms sleep better",
	}}
}

func durationSection(hours int) Section {
	switch {
	case hours >= 8:
		return Section{Heading: "Long-haul flight", Tips: []string{
			"Aisle seats: room to stretch and easy restroom access",
			"Front sections: quieter, faster boarding and deplaning",
			"Away from the galley: less noise and foot traffic",
		}}
	case hours >= 4:
		return Section{Heading: "Medium-haul flight", Tips: []string{
			"Window seats: views and rest",
			"Emergency exit rows: extra legroom when available",
		}}
	default:
		return Section{Heading: "Short flight", Tips: []string{
			"Any seat: comfort differences are minimal",
			"Window seats: make the most of a brief view",
		}}
	}
}

func classSection() Section {
	return Section{Heading: "By cabin class", Tips: []string{
		"First: every seat is premium, pick by preference",
		"Business: forward cabin for priority service and a quieter ride",
		"Economy: weigh seat pitch and distance to amenities",
	}}
}

// Text renders the advice as plain text.
func (a Advice) Text() string {
	var b strings.Builder
	b.WriteString(a.Title)
	b.WriteString("\n\n")
	for _, s := range a.Sections {
		b.WriteString(s.Heading)
		b.WriteString(":\n")
		for _, t := range s.Tips {
			b.WriteString("- ")
			b.WriteString(t)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(a.Summary)
	return b.String()
}
