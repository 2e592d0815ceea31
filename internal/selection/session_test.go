package selection

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/seatmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func newTestMap(t *testing.T) *seatmap.Map {
	t.Helper()
	seats := []models.Seat{
		{SeatNumber: "12A", Class: models.CabinClassEconomy, Position: models.SeatPosition{Row: 12, Column: "A"}, IsAvailable: true},
		{SeatNumber: "12B", Class: models.CabinClassEconomy, Position: models.SeatPosition{Row: 12, Column: "B"}, IsAvailable: true},
		{SeatNumber: "12C", Class: models.CabinClassEconomy, Position: models.SeatPosition{Row: 12, Column: "C"}, IsAvailable: true},
		{SeatNumber: "14C", Class: models.CabinClassEconomy, Position: models.SeatPosition{Row: 14, Column: "C"}, IsAvailable: true},
		{SeatNumber: "15A", Class: models.CabinClassEconomy, Position: models.SeatPosition{Row: 15, Column: "A"}, IsAvailable: true, IsBlocked: true},
		{SeatNumber: "16A", Class: models.CabinClassEconomy, Position: models.SeatPosition{Row: 16, Column: "A"}, IsAvailable: false},
		{SeatNumber: "20F", Class: models.CabinClassEconomy, Position: models.SeatPosition{Row: 20, Column: "F"}, IsAvailable: true, Price: price(450)},
		{SeatNumber: "21F", Class: models.CabinClassEconomy, Position: models.SeatPosition{Row: 21, Column: "F"}, IsAvailable: true, Price: price(250)},
	}
	m, err := seatmap.FromRecord(&models.SeatMap{FlightID: "FL001", Layout: "3-3", Seats: seats})
	require.NoError(t, err)
	return m
}

func TestNew_InvalidCount(t *testing.T) {
	m := newTestMap(t)
	for _, n := range []int{0, -1, 10} {
		_, err := New(m, n)
		assert.ErrorIs(t, err, ErrInvalidCount, "count %d", n)
	}
}

func TestSelect_CompletesSelection(t *testing.T) {
	s, err := New(newTestMap(t), 2)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, s.State())

	require.NoError(t, s.Select("12A"))
	assert.Equal(t, StatePartial, s.State())

	require.NoError(t, s.Select("12B"))
	assert.Equal(t, StateComplete, s.State())
	assert.Equal(t, []string{"12A", "12B"}, s.SelectedSeats())

	q := s.Quote(300)
	assert.Equal(t, 600.0, q.BasePrice)
	assert.Equal(t, 0.0, q.SeatSurcharge)
	assert.Equal(t, 85.0, q.TaxesAndFees)
	assert.Equal(t, 685.0, q.Total)
	assert.True(t, q.Complete())
}

func TestSelect_Unavailable(t *testing.T) {
	s, err := New(newTestMap(t), 2)
	require.NoError(t, err)
	require.NoError(t, s.Select("12A"))

	for _, seat := range []string{"15A", "16A", "99Z"} {
		err := s.Select(seat)
		assert.ErrorIs(t, err, ErrSeatUnavailable, seat)
	}
	assert.Equal(t, []string{"12A"}, s.SelectedSeats())
}

func TestSelect_Full(t *testing.T) {
	s, err := New(newTestMap(t), 1)
	require.NoError(t, err)
	require.NoError(t, s.Select("12A"))

	err = s.Select("12B")
	assert.ErrorIs(t, err, ErrSelectionFull)
	assert.Contains(t, err.Error(), "only select 1 seat")
	assert.Equal(t, []string{"12A"}, s.SelectedSeats())
}

func TestSelect_SameSeatTwice(t *testing.T) {
	s, err := New(newTestMap(t), 3)
	require.NoError(t, err)
	require.NoError(t, s.Select("12A"))
	require.NoError(t, s.Select("12A"))
	assert.Equal(t, []string{"12A"}, s.SelectedSeats())
}

func TestSelect_SameSeatWhenComplete(t *testing.T) {
	s, err := New(newTestMap(t), 2)
	require.NoError(t, err)
	require.NoError(t, s.Select("12A"))
	require.NoError(t, s.Select("12B"))
	require.Equal(t, StateComplete, s.State())

	assert.NoError(t, s.Select("12B"))
	assert.Equal(t, []string{"12A", "12B"}, s.SelectedSeats())
	assert.ErrorIs(t, s.Select("12C"), ErrSelectionFull)
}

func TestDeselect(t *testing.T) {
	s, err := New(newTestMap(t), 3)
	require.NoError(t, err)
	require.NoError(t, s.Select("12A"))
	require.NoError(t, s.Select("12B"))
	require.NoError(t, s.Select("12C"))

	require.NoError(t, s.Deselect("12B"))
	assert.Equal(t, []string{"12A", "12C"}, s.SelectedSeats())
	assert.Equal(t, StatePartial, s.State())

	require.NoError(t, s.Deselect("14C"))
	require.NoError(t, s.Deselect("99Z"))
	assert.Equal(t, []string{"12A", "12C"}, s.SelectedSeats())
}

func TestToggle(t *testing.T) {
	s, err := New(newTestMap(t), 2)
	require.NoError(t, err)

	require.NoError(t, s.Toggle("12A"))
	require.NoError(t, s.Toggle("12B"))
	assert.Equal(t, []string{"12A", "12B"}, s.SelectedSeats())

	// a click on a selected seat frees it even when the selection is complete
	require.NoError(t, s.Toggle("12A"))
	assert.Equal(t, []string{"12B"}, s.SelectedSeats())

	assert.ErrorIs(t, s.Toggle("15A"), ErrSeatUnavailable)
}

func TestSetRequiredCount_ClearsSelection(t *testing.T) {
	s, err := New(newTestMap(t), 1)
	require.NoError(t, err)
	require.NoError(t, s.Select("14C"))

	require.NoError(t, s.SetRequiredCount(3))
	assert.Empty(t, s.SelectedSeats())
	assert.Equal(t, StateEmpty, s.State())
	assert.Equal(t, 3, s.RequiredCount())
}

func TestSetRequiredCount_Invalid(t *testing.T) {
	s, err := New(newTestMap(t), 2)
	require.NoError(t, err)
	require.NoError(t, s.Select("12A"))

	assert.ErrorIs(t, s.SetRequiredCount(0), ErrInvalidCount)
	assert.ErrorIs(t, s.SetRequiredCount(10), ErrInvalidCount)
	assert.Equal(t, []string{"12A"}, s.SelectedSeats())
	assert.Equal(t, 2, s.RequiredCount())
}

func TestDiscard(t *testing.T) {
	s, err := New(newTestMap(t), 2)
	require.NoError(t, err)
	require.NoError(t, s.Select("12A"))

	s.Discard()
	assert.False(t, s.Active())
	assert.ErrorIs(t, s.Select("12B"), ErrSessionClosed)
	assert.ErrorIs(t, s.Deselect("12A"), ErrSessionClosed)
	assert.ErrorIs(t, s.SetRequiredCount(1), ErrSessionClosed)
	assert.Empty(t, s.SelectedSeats())
}

func TestQuote_Surcharge(t *testing.T) {
	s, err := New(newTestMap(t), 2)
	require.NoError(t, err)
	require.NoError(t, s.Select("20F"))
	require.NoError(t, s.Select("12A"))

	q := s.Quote(300)
	assert.Equal(t, 600.0, q.BasePrice)
	assert.Equal(t, 150.0, q.SeatSurcharge)
	assert.Equal(t, 100.0, q.TaxesAndFees) // round(75) + 25
	assert.Equal(t, 850.0, q.Total)
}

func TestQuote_CheaperSeatNoDiscount(t *testing.T) {
	s, err := New(newTestMap(t), 1)
	require.NoError(t, err)
	require.NoError(t, s.Select("21F"))

	q := s.Quote(300)
	assert.Equal(t, 0.0, q.SeatSurcharge)
}

func TestQuote_PartialSelection(t *testing.T) {
	s, err := New(newTestMap(t), 3)
	require.NoError(t, err)
	require.NoError(t, s.Select("20F"))

	q := s.Quote(120)
	assert.Equal(t, 360.0, q.BasePrice)
	assert.Equal(t, 330.0, q.SeatSurcharge)
	assert.Equal(t, 94.0, q.TaxesAndFees) // round(69) + 25
	assert.False(t, q.Complete())
}

func TestQuote_MonotonicInRequiredCount(t *testing.T) {
	m := newTestMap(t)
	prev := Quote(m, nil, MinSeatCount, 199.99).Total
	for n := MinSeatCount + 1; n <= MaxSeatCount; n++ {
		total := Quote(m, nil, n, 199.99).Total
		assert.GreaterOrEqual(t, total, prev, "count %d", n)
		prev = total
	}
}

func TestSelection_NeverExceedsRequired(t *testing.T) {
	m := newTestMap(t)
	seats := []string{"12A", "12B", "12C", "14C", "15A", "16A", "20F", "21F", "99Z"}
	rng := rand.New(rand.NewSource(42))

	for required := MinSeatCount; required <= 4; required++ {
		t.Run(fmt.Sprintf("required=%d", required), func(t *testing.T) {
			s, err := New(m, required)
			require.NoError(t, err)
			for i := 0; i < 500; i++ {
				seat := seats[rng.Intn(len(seats))]
				if rng.Intn(3) == 0 {
					_ = s.Deselect(seat)
				} else {
					_ = s.Select(seat)
				}
				selected := s.SelectedSeats()
				require.LessOrEqual(t, len(selected), required)
				seen := map[string]bool{}
				for _, n := range selected {
					require.False(t, seen[n], "duplicate %s", n)
					require.True(t, m.IsSelectable(n))
					seen[n] = true
				}
			}
		})
	}
}
