package database

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/booking"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// DB is the subset of pgxpool.Pool the repository uses
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository handles all database operations
type Repository struct {
	db DB
}

// NewRepository creates a new repository
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Connect opens a pool and checks the database answers
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the tables if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// --- Flight Operations ---

const flightColumns = `
		f.id, f.flight_number, f.airline,
		o.code, o.name, o.city, o.state, o.country,
		d.code, d.name, d.city, d.state, d.country,
		f.departure_time, f.arrival_time, f.duration_minutes, f.pricing, f.status
	FROM flights f
	JOIN airports o ON o.code = f.origin_code
	JOIN airports d ON d.code = f.destination_code`

func scanFlight(row pgx.Row) (*models.Flight, error) {
	var (
		f       models.Flight
		pricing []byte
		status  string
	)
	err := row.Scan(
		&f.ID, &f.FlightNumber, &f.Airline,
		&f.Origin.Code, &f.Origin.Name, &f.Origin.City, &f.Origin.State, &f.Origin.Country,
		&f.Destination.Code, &f.Destination.Name, &f.Destination.City, &f.Destination.State, &f.Destination.Country,
		&f.DepartureTime, &f.ArrivalTime, &f.DurationMinutes, &pricing, &status,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(pricing, &f.Pricing); err != nil {
		return nil, fmt.Errorf("invalid pricing for flight %s: %w", f.ID, err)
	}
	f.Status = models.FlightStatus(status)
	return &f, nil
}

// ListFlights returns every flight ordered by departure
func (r *Repository) ListFlights(ctx context.Context) ([]*models.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT`+flightColumns+` ORDER BY f.departure_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []*models.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flights: %w", err)
	}
	return flights, nil
}

// GetFlight returns a flight by ID
func (r *Repository) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT`+flightColumns+` WHERE f.id = $1`, flightID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("flight %s: %w", flightID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return f, nil
}

// --- Seat Operations ---

// GetSeatMap returns all seats of a flight ordered by row and column
func (r *Repository) GetSeatMap(ctx context.Context, flightID string) (*models.SeatMap, error) {
	sm := &models.SeatMap{FlightID: flightID}
	err := r.db.QueryRow(ctx, `SELECT layout FROM flights WHERE id = $1`, flightID).Scan(&sm.Layout)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("flight %s: %w", flightID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get flight layout: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT seat_number, class, row_number, column_letter,
		       is_available, is_blocked, price, features
		FROM seats
		WHERE flight_id = $1
		ORDER BY row_number, column_letter
	`, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s     models.Seat
			class string
		)
		err := rows.Scan(
			&s.SeatNumber, &class, &s.Position.Row, &s.Position.Column,
			&s.IsAvailable, &s.IsBlocked, &s.Price, &s.Features,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		s.Class = models.CabinClass(class)
		sm.Seats = append(sm.Seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seats: %w", err)
	}
	return sm, nil
}

// --- Booking Operations ---

// CreateBooking locks the requested seats, marks them sold and stores the
// booking in one transaction. Seats that are unknown, sold or blocked reject
// the whole request with a *booking.RejectionError.
func (r *Repository) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	if len(req.SelectedSeats) == 0 {
		return nil, booking.Reject("No seats selected")
	}
	if dup, ok := hasDuplicates(req.SelectedSeats); ok {
		return nil, booking.Reject("Seat %s was selected more than once", dup)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT seat_number, is_available, is_blocked
		FROM seats
		WHERE flight_id = $1 AND seat_number = ANY($2)
		FOR UPDATE
	`, req.FlightID, req.SelectedSeats)
	if err != nil {
		return nil, fmt.Errorf("failed to lock seats: %w", err)
	}
	type seatState struct{ available, blocked bool }
	locked := make(map[string]seatState, len(req.SelectedSeats))
	for rows.Next() {
		var (
			n  string
			st seatState
		)
		if err := rows.Scan(&n, &st.available, &st.blocked); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		locked[n] = st
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seats: %w", err)
	}

	for _, n := range req.SelectedSeats {
		st, ok := locked[n]
		switch {
		case !ok:
			return nil, booking.Reject("Seat %s does not exist on flight %s", n, req.FlightID)
		case !st.available || st.blocked:
			return nil, booking.Reject("Seat %s is no longer available", n)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE seats SET is_available = FALSE
		WHERE flight_id = $1 AND seat_number = ANY($2)
	`, req.FlightID, req.SelectedSeats); err != nil {
		return nil, fmt.Errorf("failed to mark seats sold: %w", err)
	}

	emergency, err := json.Marshal(req.ContactDetails.EmergencyContact)
	if err != nil {
		return nil, fmt.Errorf("failed to encode emergency contact: %w", err)
	}

	b := &models.Booking{
		ID:             uuid.NewString(),
		Reference:      NewReference(),
		FlightID:       req.FlightID,
		Status:         models.BookingStatusConfirmed,
		Passengers:     req.Passengers,
		ContactDetails: req.ContactDetails,
		SelectedSeats:  req.SelectedSeats,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (id, reference, flight_id, status, contact_email, contact_phone, emergency_contact)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, b.ID, b.Reference, b.FlightID, string(b.Status),
		req.ContactDetails.Email, req.ContactDetails.Phone, emergency,
	).Scan(&b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	for _, p := range req.Passengers {
		dob, err := time.Parse(booking.DateOfBirthLayout, p.DateOfBirth)
		if err != nil {
			return nil, booking.Reject("Invalid date of birth for %s %s", p.FirstName, p.LastName)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO booking_passengers
				(booking_id, seat_number, title, first_name, last_name, date_of_birth,
				 gender, nationality, passport_number, meal_preference)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, b.ID, p.SeatNumber, p.Title, p.FirstName, p.LastName, dob,
			p.Gender, p.Nationality, p.PassportNumber, p.MealPreference,
		); err != nil {
			return nil, fmt.Errorf("failed to add passenger: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return b, nil
}
