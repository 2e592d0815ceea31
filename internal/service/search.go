package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
)

var (
	queryCity    = regexp.MustCompile(`^([^,]+)`)
	queryCode    = regexp.MustCompile(`\(([^)]+)\)`)
	queryCountry = regexp.MustCompile(`,\s*([^(]+)`)
)

// filterFlights applies the listing filters. A route search (from or to)
// covers every date; a date alone keeps flights departing that calendar day;
// with no filter only flights that have not departed are listed.
func filterFlights(flights []*models.Flight, q models.FlightQuery, now time.Time) []*models.Flight {
	from := strings.ToLower(strings.TrimSpace(q.From))
	to := strings.ToLower(strings.TrimSpace(q.To))

	out := make([]*models.Flight, 0, len(flights))
	for _, f := range flights {
		switch {
		case from != "" || to != "":
			if from != "" && !matchAirport(f.Origin, from) {
				continue
			}
			if to != "" && !matchAirport(f.Destination, to) {
				continue
			}
		case q.Date != nil:
			if !sameDay(f.DepartureTime, *q.Date) {
				continue
			}
		default:
			if f.DepartureTime.Before(now) {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// matchAirport matches a lowercased query against an airport. Besides plain
// substrings it understands the "City, Country (CODE)" form of the search box.
func matchAirport(a models.Airport, query string) bool {
	city := strings.ToLower(a.City)
	name := strings.ToLower(a.Name)
	code := strings.ToLower(a.Code)
	state := strings.ToLower(a.State)
	country := strings.ToLower(a.Country)

	for _, field := range []string{city, name, code, state, country} {
		if field != "" && strings.Contains(field, query) {
			return true
		}
	}

	if m := queryCity.FindStringSubmatch(query); m != nil {
		if part := strings.TrimSpace(m[1]); part != "" && (strings.Contains(city, part) || strings.Contains(name, part)) {
			return true
		}
	}
	if m := queryCode.FindStringSubmatch(query); m != nil {
		if part := strings.TrimSpace(m[1]); part != "" && strings.Contains(code, part) {
			return true
		}
	}
	if m := queryCountry.FindStringSubmatch(query); m != nil {
		part := strings.TrimSpace(m[1])
		if part != "" && (strings.Contains(country, part) || (state != "" && strings.Contains(state, part))) {
			return true
		}
	}
	return false
}

func sameDay(t, day time.Time) bool {
	t = t.In(day.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
