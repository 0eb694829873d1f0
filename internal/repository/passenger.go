package repository

import (
	"context"

	"ridepool/internal/domain"
)

// PassengerRepository defines read access to passengers. Passenger rows are
// written through RideRepository so that membership changes stay in the same
// transaction as the ride's version check.
type PassengerRepository interface {
	// GetByID retrieves a passenger by ID.
	GetByID(ctx context.Context, id string) (*domain.Passenger, error)

	// FindByPhone retrieves a passenger's booking history by phone number.
	FindByPhone(ctx context.Context, phone string) ([]*domain.Passenger, error)

	// FindByRideID retrieves the members of a ride in join order.
	FindByRideID(ctx context.Context, rideID string) ([]*domain.Passenger, error)
}
