package redis

import "context"

// DemandStoreInterface defines the interface for the surge demand snapshot
// cache.
type DemandStoreInterface interface {
	GetPendingCount(ctx context.Context) (int, bool, error)
	SetPendingCount(ctx context.Context, count int) error
}

// PickupIndexInterface defines the interface for the poolable-ride pickup
// geo index.
type PickupIndexInterface interface {
	Add(ctx context.Context, rideID string, lat, lng float64) error
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]string, error)
	Remove(ctx context.Context, rideID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ DemandStoreInterface = (*DemandStore)(nil)
	_ PickupIndexInterface = (*PickupIndex)(nil)
)
