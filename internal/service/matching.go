package service

import (
	"log"
	"math"

	"ridepool/internal/domain"
)

const (
	maxSearchRadiusKm = 5.0
)

// MatchingService selects the best poolable ride for a candidate passenger.
//
// The algorithm is a greedy scan over the supplied pool: constraints are
// checked in order (capacity, pickup proximity, detour tolerance) and the
// passing ride with the smallest detour cost wins. Ties keep the first ride
// found, so pool order decides. O(n x m) for n rides of m members; the pool
// is supplied by the caller and nothing here touches a store.
type MatchingService struct{}

// NewMatchingService creates a new MatchingService.
func NewMatchingService() *MatchingService {
	return &MatchingService{}
}

// FindBestMatch returns the pool ride with the minimum detour cost that can
// take the candidate, or nil when no ride passes all constraints.
func (s *MatchingService) FindBestMatch(candidate domain.Passenger, pool []*domain.Ride) *domain.Ride {
	var bestMatch *domain.Ride
	minDetourCost := math.MaxFloat64

	for _, ride := range pool {
		if !ride.CanAccommodate(candidate) {
			continue
		}

		if !withinSearchRadius(ride, candidate) {
			continue
		}

		detourCost := detourCost(ride, candidate)

		if exceedsDetourTolerance(ride, candidate, detourCost) {
			continue
		}

		if detourCost < minDetourCost {
			minDetourCost = detourCost
			bestMatch = ride
		}
	}

	if bestMatch != nil {
		log.Printf("matched candidate %s to ride %s (detour %.2f km)", candidate.ID, bestMatch.ID, minDetourCost)
	}

	return bestMatch
}

// withinSearchRadius checks the candidate's pickup against the primary
// member's pickup. A ride with no members passes trivially.
func withinSearchRadius(ride *domain.Ride, candidate domain.Passenger) bool {
	primary := ride.PrimaryPassenger()
	if primary == nil {
		return true
	}

	return primary.Pickup.DistanceTo(candidate.Pickup) <= maxSearchRadiusKm
}

// detourCost is the extra distance of serving both trips on one pooled route
// versus serving each directly. The pooled route is approximated by the
// shorter of the two orderings that visit both pickups before either
// dropoff.
func detourCost(ride *domain.Ride, candidate domain.Passenger) float64 {
	primary := ride.PrimaryPassenger()
	if primary == nil {
		return 0
	}

	pooled := pooledRouteDistance(primary.Pickup, primary.Dropoff, candidate.Pickup, candidate.Dropoff)

	return pooled - primary.DirectDistance() - candidate.DirectDistance()
}

func pooledRouteDistance(pickup1, dropoff1, pickup2, dropoff2 domain.Location) float64 {
	// P1 -> P2 -> D1 -> D2
	routeA := pickup1.DistanceTo(pickup2) +
		pickup2.DistanceTo(dropoff1) +
		dropoff1.DistanceTo(dropoff2)

	// P1 -> P2 -> D2 -> D1
	routeB := pickup1.DistanceTo(pickup2) +
		pickup2.DistanceTo(dropoff2) +
		dropoff2.DistanceTo(dropoff1)

	return math.Min(routeA, routeB)
}

// exceedsDetourTolerance rejects the ride if the added distance costs any
// existing member more minutes than they accept, or pushes the candidate
// past their own budget. The candidate's budget is checked against their
// direct travel time scaled by the fractional detour, not the absolute
// detour time; existing members use the absolute conversion.
func exceedsDetourTolerance(ride *domain.Ride, candidate domain.Passenger, detourKm float64) bool {
	detourMinutes := detourKm / domain.AverageCitySpeedKmh * 60

	for _, member := range ride.Passengers {
		if detourMinutes > float64(member.MaxDetourMinutes) {
			return true
		}
	}

	candidateDetourMinutes := candidate.DirectTravelTime() * (detourKm / candidate.DirectDistance())

	return candidateDetourMinutes > float64(candidate.MaxDetourMinutes)
}
