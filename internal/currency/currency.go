// Package currency converts USD fares for display in the traveller's currency.
package currency

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCountry is used for unknown or empty country codes.
const DefaultCountry = "US"

// Currency describes how prices are shown for one country.
type Currency struct {
	Country string  `json:"country"`
	Name    string  `json:"name"`
	Code    string  `json:"currency"`
	Symbol  string  `json:"symbol"`
	Rate    float64 `json:"rate"` // units per USD
}

// rates are fixed approximations, not live quotes
var currencies = map[string]Currency{
	"US": {Country: "US", Name: "United States", Code: "USD", Symbol: "$", Rate: 1},
	"IN": {Country: "IN", Name: "India", Code: "INR", Symbol: "₹", Rate: 83.12},
	"GB": {Country: "GB", Name: "United Kingdom", Code: "GBP", Symbol: "£", Rate: 0.79},
	"EU": {Country: "EU", Name: "European Union", Code: "EUR", Symbol: "€", Rate: 0.92},
	"CA": {Country: "CA", Name: "Canada", Code: "CAD", Symbol: "C$", Rate: 1.36},
	"AU": {Country: "AU", Name: "Australia", Code: "AUD", Symbol: "A$", Rate: 1.53},
	"JP": {Country: "JP", Name: "Japan", Code: "JPY", Symbol: "¥", Rate: 149.50},
	"SG": {Country: "SG", Name: "Singapore", Code: "SGD", Symbol: "S$", Rate: 1.35},
	"AE": {Country: "AE", Name: "UAE", Code: "AED", Symbol: "د.إ", Rate: 3.67},
	"CN": {Country: "CN", Name: "China", Code: "CNY", Symbol: "¥", Rate: 7.31},
}

var (
	enUS = message.NewPrinter(language.AmericanEnglish)
	enIN = message.NewPrinter(language.MustParse("en-IN"))
)

// Lookup returns the currency of a country, falling back to USD.
func Lookup(country string) Currency {
	if c, ok := currencies[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return c
	}
	return currencies[DefaultCountry]
}

// Supported reports whether a country code has its own currency entry.
func Supported(country string) bool {
	_, ok := currencies[strings.ToUpper(strings.TrimSpace(country))]
	return ok
}

// All lists the supported currencies ordered by country code.
func All() []Currency {
	out := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}

func (c Currency) wholeUnits() bool {
	return c.Code == "JPY" || c.Code == "CNY"
}

// Convert turns a USD amount into this currency, rounded to whole units for
// JPY and CNY and to cents otherwise.
func (c Currency) Convert(usd float64) float64 {
	if usd == 0 || math.IsNaN(usd) {
		return 0
	}
	v := usd * c.Rate
	if c.wholeUnits() {
		return math.Round(v)
	}
	return math.Round(v*100) / 100
}

// Format renders a USD amount with the currency symbol and grouped digits.
func (c Currency) Format(usd float64) string {
	v := c.Convert(usd)
	switch {
	case c.wholeUnits():
		return c.Symbol + enUS.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
	case c.Code == "INR":
		return c.Symbol + enIN.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
	default:
		return c.Symbol + enUS.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	}
}

// FormatPrice formats a USD amount for a country.
func FormatPrice(usd float64, country string) string {
	return Lookup(country).Format(usd)
}
