package repository

import (
	"context"

	"ridepool/internal/domain"
)

// RideRepository defines the persistence operations for rides.
//
// Save is the optimistic concurrency boundary: it must atomically verify
// that the stored version still matches ride.Version, apply the change
// together with the membership updates, and advance the version in the same
// transaction. A stale version fails with ErrVersionConflict.
type RideRepository interface {
	// Create persists a new ride together with its members.
	Create(ctx context.Context, ride *domain.Ride) error

	// Save persists a mutated ride with a version check. On success the
	// in-memory Version is advanced to the stored one.
	Save(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride with its ordered member list.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// FindPoolable retrieves rides in the given status that still have at
	// least one free seat. Order is stable within a call.
	FindPoolable(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error)

	// CountByStatus counts rides in the given status. Used as the demand
	// snapshot for surge pricing.
	CountByStatus(ctx context.Context, status domain.RideStatus) (int, error)

	// FindRecent retrieves the most recently created rides in the given
	// status.
	FindRecent(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error)
}
