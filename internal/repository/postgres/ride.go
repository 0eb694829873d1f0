package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"ridepool/internal/domain"
	"ridepool/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	db *sql.DB
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{db: db}
}

const rideColumns = `id, status, max_seats, max_luggage, available_seats, available_luggage, total_distance, base_fare, final_fare, version, scheduled_time, created_at`

// Create persists a new ride together with its members.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var scheduledTime sql.NullTime
	if !ride.ScheduledTime.IsZero() {
		scheduledTime = sql.NullTime{Time: ride.ScheduledTime, Valid: true}
	}

	_, err = tx.ExecContext(ctx, query,
		ride.ID,
		ride.Status,
		ride.MaxSeats,
		ride.MaxLuggage,
		ride.AvailableSeats,
		ride.AvailableLuggage,
		ride.TotalDistance,
		ride.BaseFare,
		ride.FinalFare,
		ride.Version,
		scheduledTime,
		ride.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = upsertMembers(ctx, tx, ride); err != nil {
		return err
	}

	return tx.Commit()
}

// Save persists a mutated ride inside a single transaction. The UPDATE
// carries the version check: zero rows affected means the stored version
// advanced since the ride was read, and the save fails with
// ErrVersionConflict. Membership rows are synced in the same transaction.
func (r *RideRepository) Save(ctx context.Context, ride *domain.Ride) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE rides
		SET status = $1, available_seats = $2, available_luggage = $3, total_distance = $4, base_fare = $5, final_fare = $6, version = version + 1
		WHERE id = $7 AND version = $8
	`

	result, err := tx.ExecContext(ctx, query,
		ride.Status,
		ride.AvailableSeats,
		ride.AvailableLuggage,
		ride.TotalDistance,
		ride.BaseFare,
		ride.FinalFare,
		ride.ID,
		ride.Version,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rides WHERE id = $1)`, ride.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			err = repository.ErrNotFound
			return err
		}
		err = repository.ErrVersionConflict
		return err
	}

	// Detach passengers no longer on the ride, then upsert current members.
	if _, err = tx.ExecContext(ctx, `UPDATE passengers SET ride_id = NULL, position = 0 WHERE ride_id = $1`, ride.ID); err != nil {
		return err
	}

	if err = upsertMembers(ctx, tx, ride); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	ride.Version++
	return nil
}

// upsertMembers writes the ride's member rows with their join positions.
func upsertMembers(ctx context.Context, tx *sql.Tx, ride *domain.Ride) error {
	query := `
		INSERT INTO passengers (id, name, phone, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, luggage_count, max_detour_minutes, ride_id, position, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET ride_id = EXCLUDED.ride_id, position = EXCLUDED.position
	`

	for i, p := range ride.Passengers {
		if _, err := tx.ExecContext(ctx, query,
			p.ID,
			p.Name,
			p.Phone,
			p.Pickup.Latitude,
			p.Pickup.Longitude,
			p.Dropoff.Latitude,
			p.Dropoff.Longitude,
			p.LuggageCount,
			p.MaxDetourMinutes,
			ride.ID,
			i,
			p.RequestedAt,
		); err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a ride with its ordered member list.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	members, err := r.loadMembers(ctx, []string{ride.ID})
	if err != nil {
		return nil, err
	}
	ride.Passengers = members[ride.ID]

	return ride, nil
}

// FindPoolable retrieves rides in the given status with at least one free
// seat, in creation order.
func (r *RideRepository) FindPoolable(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides WHERE status = $1 AND available_seats > 0
		ORDER BY created_at
	`
	return r.queryRides(ctx, query, status)
}

// FindRecent retrieves the most recently created rides in the given status.
func (r *RideRepository) FindRecent(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides WHERE status = $1
		ORDER BY created_at DESC LIMIT $2
	`
	return r.queryRides(ctx, query, status, limit)
}

// CountByStatus counts rides in the given status.
func (r *RideRepository) CountByStatus(ctx context.Context, status domain.RideStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rides WHERE status = $1`, status).Scan(&count)
	return count, err
}

// queryRides runs a multi-row ride query and attaches members to each ride.
func (r *RideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	var ids []string
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
		ids = append(ids, ride.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(rides) == 0 {
		return rides, nil
	}

	members, err := r.loadMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, ride := range rides {
		ride.Passengers = members[ride.ID]
	}

	return rides, nil
}

// loadMembers fetches members for the given ride IDs in join order, keyed by
// ride ID.
func (r *RideRepository) loadMembers(ctx context.Context, rideIDs []string) (map[string][]domain.Passenger, error) {
	query := `
		SELECT id, name, phone, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, luggage_count, max_detour_minutes, ride_id, requested_at
		FROM passengers WHERE ride_id = ANY($1)
		ORDER BY ride_id, position
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(rideIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make(map[string][]domain.Passenger, len(rideIDs))
	for rows.Next() {
		var p domain.Passenger
		var rideID sql.NullString
		if err := rows.Scan(
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
		); err != nil {
			return nil, err
		}
		if rideID.Valid {
			p.RideID = rideID.String
		}
		members[p.RideID] = append(members[p.RideID], p)
	}

	return members, rows.Err()
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var scheduledTime sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.Status,
		&ride.MaxSeats,
		&ride.MaxLuggage,
		&ride.AvailableSeats,
		&ride.AvailableLuggage,
		&ride.TotalDistance,
		&ride.BaseFare,
		&ride.FinalFare,
		&ride.Version,
		&scheduledTime,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if scheduledTime.Valid {
		ride.ScheduledTime = scheduledTime.Time
	}

	return &ride, nil
}
