package selection

import (
	"math"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/seatmap"
)

const (
	TaxRate    = 0.10
	ServiceFee = 25.0
)

// Quote computes the price breakdown for a selection. The base fare is charged for
// every required seat; seats priced above the class fare add the difference.
func Quote(seats *seatmap.Map, selected []string, required int, classBasePrice float64) models.PriceQuote {
	base := classBasePrice * float64(required)

	var surcharge float64
	for _, n := range selected {
		surcharge += math.Max(0, seats.PriceOf(n, classBasePrice)-classBasePrice)
	}

	taxes := math.Round(TaxRate*(base+surcharge)) + ServiceFee

	return models.PriceQuote{
		BasePrice:     base,
		SeatSurcharge: surcharge,
		TaxesAndFees:  taxes,
		Total:         base + surcharge + taxes,
		SelectedCount: len(selected),
		RequiredCount: required,
	}
}
