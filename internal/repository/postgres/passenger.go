package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
)

// PassengerRepository is a PostgreSQL implementation of
// repository.PassengerRepository.
type PassengerRepository struct {
	db *sql.DB
}

// NewPassengerRepository creates a new PostgreSQL passenger repository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{db: db}
}

const passengerColumns = `id, name, phone, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, luggage_count, max_detour_minutes, ride_id, requested_at`

// GetByID retrieves a passenger by ID.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE id = $1`

	p, err := scanPassenger(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// FindByPhone retrieves a passenger's booking history by phone number.
func (r *PassengerRepository) FindByPhone(ctx context.Context, phone string) ([]*domain.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE phone = $1 ORDER BY requested_at DESC`
	return r.queryPassengers(ctx, query, phone)
}

// FindByRideID retrieves the members of a ride in join order.
func (r *PassengerRepository) FindByRideID(ctx context.Context, rideID string) ([]*domain.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE ride_id = $1 ORDER BY position`
	return r.queryPassengers(ctx, query, rideID)
}

func (r *PassengerRepository) queryPassengers(ctx context.Context, query string, args ...any) ([]*domain.Passenger, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passengers []*domain.Passenger
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}

	return passengers, rows.Err()
}

func scanPassenger(row rowScanner) (*domain.Passenger, error) {
	var p domain.Passenger
	var rideID sql.NullString

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Phone,
		&p.Pickup.Latitude,
		&p.Pickup.Longitude,
		&p.Dropoff.Latitude,
		&p.Dropoff.Longitude,
		&p.LuggageCount,
		&p.MaxDetourMinutes,
		&rideID,
		&p.RequestedAt,
	)
	if err != nil {
		return nil, err
	}

	if rideID.Valid {
		p.RideID = rideID.String
	}

	return &p, nil
}
