package service

import (
	"context"
	"math"

	"ridepool/internal/domain"
	"ridepool/internal/redis"
	"ridepool/internal/repository"
)

// Pricing constants.
const (
	baseFare            = 5.0  // base booking fee
	ratePerKm           = 2.0  // per kilometer
	sharingDiscountRate = 0.25 // discount per additional passenger
	maxSharingDiscount  = 0.75
	maxSurgeFactor      = 0.5 // surge caps at 1.5x
	surgeThreshold      = 100 // pending rides at which surge saturates
)

// PricingService computes dynamic fares from distance, group size and the
// current demand snapshot (the count of pending rides). The snapshot is an
// approximate, unlocked read served from a short-TTL cache when available.
type PricingService struct {
	rideRepo repository.RideRepository
	demand   redis.DemandStoreInterface
}

// NewPricingService creates a new PricingService. demand may be nil, in
// which case every fare reads the count from the ride store.
func NewPricingService(rideRepo repository.RideRepository, demand redis.DemandStoreInterface) *PricingService {
	return &PricingService{
		rideRepo: rideRepo,
		demand:   demand,
	}
}

// SurgeMultiplier ramps linearly from 1.0x to 1.5x as pending rides rise to
// the surge threshold, saturating above it.
func SurgeMultiplier(activeRides int) float64 {
	surgeFactor := math.Min(float64(activeRides)/surgeThreshold, 1.0) * maxSurgeFactor
	return 1.0 + surgeFactor
}

// SharingDiscount is zero for a solo ride and grows per additional
// passenger, capped at 75%.
func SharingDiscount(passengerCount int) float64 {
	if passengerCount <= 1 {
		return 0
	}
	return math.Min(sharingDiscountRate*float64(passengerCount-1), maxSharingDiscount)
}

// Fare computes the fare for a trip given an explicit demand count, rounded
// to cents.
func Fare(distanceKm float64, passengerCount, activeRides int) float64 {
	price := (baseFare + distanceKm*ratePerKm) *
		SurgeMultiplier(activeRides) *
		(1 - SharingDiscount(passengerCount))

	return math.Round(price*100) / 100
}

// SavingsPercentage is the relative saving of the pooled fare over the solo
// fare, zero when the solo fare is zero.
func SavingsPercentage(soloFare, pooledFare float64) float64 {
	if soloFare == 0 {
		return 0
	}
	return (soloFare - pooledFare) / soloFare * 100
}

// CalculateFare computes the fare using the current demand snapshot.
func (s *PricingService) CalculateFare(ctx context.Context, distanceKm float64, passengerCount int) float64 {
	return Fare(distanceKm, passengerCount, s.activeRideCount(ctx))
}

// SurgeInfo describes the current surge state.
type SurgeInfo struct {
	ActiveRides int     `json:"active_rides"`
	Multiplier  float64 `json:"multiplier"`
	IsSurging   bool    `json:"is_surging"`
}

// CurrentSurge returns the surge state for the current demand snapshot.
func (s *PricingService) CurrentSurge(ctx context.Context) SurgeInfo {
	active := s.activeRideCount(ctx)
	multiplier := SurgeMultiplier(active)

	return SurgeInfo{
		ActiveRides: active,
		Multiplier:  multiplier,
		IsSurging:   multiplier > 1.0,
	}
}

// activeRideCount reads the pending-ride count, preferring the cached
// snapshot. Errors fail open to zero demand rather than blocking a booking
// on pricing input.
func (s *PricingService) activeRideCount(ctx context.Context) int {
	if s.demand != nil {
		count, ok, err := s.demand.GetPendingCount(ctx)
		if err == nil && ok {
			return count
		}
	}

	count, err := s.rideRepo.CountByStatus(ctx, domain.RideStatusPending)
	if err != nil {
		return 0
	}

	if s.demand != nil {
		_ = s.demand.SetPendingCount(ctx, count)
	}

	return count
}
