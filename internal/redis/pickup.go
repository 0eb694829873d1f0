package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const pickupIndexKey = "rides:pickups"

// PickupIndex maintains a geo index of the primary pickup location of each
// poolable ride, so candidate pools can be narrowed to rides within the
// matching search radius before constraint checking.
type PickupIndex struct {
	client *redis.Client
}

// NewPickupIndex creates a new PickupIndex.
func NewPickupIndex(client *redis.Client) *PickupIndex {
	return &PickupIndex{client: client}
}

// Add stores a ride's primary pickup location using GEOADD.
func (s *PickupIndex) Add(ctx context.Context, rideID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, pickupIndexKey, &redis.GeoLocation{
		Name:      rideID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearby returns IDs of rides whose primary pickup lies within the given
// radius (in kilometers), nearest first.
func (s *PickupIndex) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]string, error) {
	results, err := s.client.GeoRadius(ctx, pickupIndexKey, lng, lat, &redis.GeoRadiusQuery{
		Radius: radiusKm,
		Unit:   "km",
		Sort:   "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Name)
	}

	return ids, nil
}

// Remove drops a ride from the geo index.
func (s *PickupIndex) Remove(ctx context.Context, rideID string) error {
	return s.client.ZRem(ctx, pickupIndexKey, rideID).Err()
}
