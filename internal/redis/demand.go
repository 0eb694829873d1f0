package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingCountKey = "demand:pending_count"

	// PendingCountTTL bounds the staleness of the surge demand snapshot.
	// The snapshot is an approximate, unlocked read; a few seconds of
	// staleness is acceptable.
	PendingCountTTL = 5 * time.Second
)

// DemandStore caches the count of pending rides used as the surge pricing
// demand snapshot.
type DemandStore struct {
	client *redis.Client
}

// NewDemandStore creates a new DemandStore.
func NewDemandStore(client *redis.Client) *DemandStore {
	return &DemandStore{client: client}
}

// GetPendingCount retrieves the cached pending-ride count. The second return
// value is false on a cache miss.
func (s *DemandStore) GetPendingCount(ctx context.Context) (int, bool, error) {
	val, err := s.client.Get(ctx, pendingCountKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}

	return count, true, nil
}

// SetPendingCount caches the pending-ride count.
func (s *DemandStore) SetPendingCount(ctx context.Context, count int) error {
	return s.client.Set(ctx, pendingCountKey, count, PendingCountTTL).Err()
}
