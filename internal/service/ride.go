package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ridepool/internal/domain"
	"ridepool/internal/redis"
	"ridepool/internal/repository"
)

// maxBookingAttempts bounds the retry loop on version conflicts. There is no
// backoff; each attempt re-reads the pool and re-decides, and once the
// attempts are exhausted the passenger gets a fresh ride instead of an
// error.
const maxBookingAttempts = 3

// RideService orchestrates ride requests: match against the current pool,
// mutate or create a ride, price it, and persist behind the store's version
// check.
type RideService struct {
	rideRepo      repository.RideRepository
	passengerRepo repository.PassengerRepository
	matching      *MatchingService
	pricing       *PricingService
	pickupIndex   redis.PickupIndexInterface
	notifier      *NotificationService
}

// NewRideService creates a new RideService. pickupIndex and notifier may be
// nil.
func NewRideService(
	rideRepo repository.RideRepository,
	passengerRepo repository.PassengerRepository,
	matching *MatchingService,
	pricing *PricingService,
	pickupIndex redis.PickupIndexInterface,
	notifier *NotificationService,
) *RideService {
	return &RideService{
		rideRepo:      rideRepo,
		passengerRepo: passengerRepo,
		matching:      matching,
		pricing:       pricing,
		pickupIndex:   pickupIndex,
		notifier:      notifier,
	}
}

// RideRequest contains the parameters of a passenger's ride intent.
type RideRequest struct {
	Name             string
	Phone            string
	Pickup           domain.Location
	Dropoff          domain.Location
	LuggageCount     int
	MaxDetourMinutes int
}

// RideResponse summarizes the outcome of a ride request.
type RideResponse struct {
	RideID            string
	PassengerID       string
	Status            domain.RideStatus
	Fare              float64
	Distance          float64
	TotalPassengers   int
	AvailableSeats    int
	IsPooled          bool
	SavingsPercentage float64
	Message           string
}

// RequestRide matches the passenger into an existing ride or creates a new
// one. A version conflict on save means another booking won the race for the
// chosen ride; the whole attempt restarts against fresh state, up to
// maxBookingAttempts, after which a new ride is forced so the request still
// completes.
func (s *RideService) RequestRide(ctx context.Context, req RideRequest) (*RideResponse, error) {
	if err := validateRideRequest(req); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxBookingAttempts; attempt++ {
		passenger := s.newPassenger(req)

		pool, err := s.poolableRides(ctx, passenger.Pickup)
		if err != nil {
			return nil, err
		}

		match := s.matching.FindBestMatch(passenger, pool)
		if match == nil {
			return s.createRide(ctx, passenger)
		}

		resp, err := s.joinRide(ctx, *match, passenger)
		if errors.Is(err, repository.ErrVersionConflict) {
			log.Printf("booking conflict on ride %s (attempt %d), retrying with fresh state", match.ID, attempt)
			continue
		}
		return resp, err
	}

	// Retries exhausted while still conflicting: favor completing the
	// request over optimal pooling.
	log.Printf("max booking attempts reached, creating a new ride for %s", req.Phone)
	return s.createRide(ctx, s.newPassenger(req))
}

// poolableRides returns the current pool of joinable rides. When the pickup
// geo index is available it narrows the pool to rides whose primary pickup
// is within the search radius; otherwise the full pending set is scanned.
func (s *RideService) poolableRides(ctx context.Context, pickup domain.Location) ([]*domain.Ride, error) {
	if s.pickupIndex == nil {
		return s.rideRepo.FindPoolable(ctx, domain.RideStatusPending)
	}

	ids, err := s.pickupIndex.FindNearby(ctx, pickup.Latitude, pickup.Longitude, maxSearchRadiusKm)
	if err != nil {
		// Index unavailable: fall back to a full scan.
		return s.rideRepo.FindPoolable(ctx, domain.RideStatusPending)
	}

	pool := make([]*domain.Ride, 0, len(ids))
	for _, id := range ids {
		ride, err := s.rideRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if ride.Status != domain.RideStatusPending || ride.AvailableSeats == 0 {
			continue
		}
		pool = append(pool, ride)
	}

	return pool, nil
}

// joinRide adds the passenger to the matched ride and persists it against
// the version the match decision was made on.
func (s *RideService) joinRide(ctx context.Context, ride domain.Ride, passenger domain.Passenger) (*RideResponse, error) {
	updated, err := ride.WithPassenger(passenger)
	if err != nil {
		return nil, err
	}

	updated.Status = domain.RideStatusMatched

	pooledFare := s.pricing.CalculateFare(ctx, passenger.DirectDistance(), len(updated.Passengers))
	updated.FinalFare = pooledFare

	if err := s.rideRepo.Save(ctx, &updated); err != nil {
		return nil, err
	}

	// A matched ride leaves the pending pool.
	if s.pickupIndex != nil {
		_ = s.pickupIndex.Remove(ctx, updated.ID)
	}

	soloFare := s.pricing.CalculateFare(ctx, passenger.DirectDistance(), 1)
	savings := SavingsPercentage(soloFare, pooledFare)

	if s.notifier != nil {
		_ = s.notifier.NotifyRideMatched(ctx, &updated, passenger)
	}

	return &RideResponse{
		RideID:            updated.ID,
		PassengerID:       passenger.ID,
		Status:            updated.Status,
		Fare:              pooledFare,
		Distance:          passenger.DirectDistance(),
		TotalPassengers:   len(updated.Passengers),
		AvailableSeats:    updated.AvailableSeats,
		IsPooled:          true,
		SavingsPercentage: savings,
		Message: fmt.Sprintf("Ride matched! You're saving %.1f%% by pooling with %d other passenger(s)",
			savings, len(updated.Passengers)-1),
	}, nil
}

// createRide starts a fresh ride with the passenger as primary member.
func (s *RideService) createRide(ctx context.Context, passenger domain.Passenger) (*RideResponse, error) {
	ride, err := domain.NewRide(uuid.New().String()).WithPassenger(passenger)
	if err != nil {
		return nil, err
	}

	distance := passenger.DirectDistance()
	fare := s.pricing.CalculateFare(ctx, distance, 1)

	ride.TotalDistance = distance
	ride.BaseFare = fare
	ride.FinalFare = fare

	if err := s.rideRepo.Create(ctx, &ride); err != nil {
		return nil, err
	}

	if s.pickupIndex != nil {
		_ = s.pickupIndex.Add(ctx, ride.ID, passenger.Pickup.Latitude, passenger.Pickup.Longitude)
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyRideCreated(ctx, &ride, passenger)
	}

	return &RideResponse{
		RideID:            ride.ID,
		PassengerID:       passenger.ID,
		Status:            ride.Status,
		Fare:              fare,
		Distance:          distance,
		TotalPassengers:   1,
		AvailableSeats:    ride.AvailableSeats,
		IsPooled:          false,
		SavingsPercentage: 0,
		Message:           "Ride created! Waiting for potential matches to reduce your fare.",
	}, nil
}

// CancelPassenger removes a passenger from their ride. The last passenger
// leaving cancels the ride; otherwise the fare is recomputed for the
// remaining members.
func (s *RideService) CancelPassenger(ctx context.Context, passengerID string) error {
	if passengerID == "" {
		return ErrInvalidPassengerID
	}

	passenger, err := s.passengerRepo.GetByID(ctx, passengerID)
	if err != nil {
		return err
	}

	if passenger.RideID == "" {
		return ErrPassengerNotInRide
	}

	ride, err := s.rideRepo.GetByID(ctx, passenger.RideID)
	if err != nil {
		return err
	}

	updated, removed := ride.WithoutPassenger(passengerID)
	if !removed {
		return ErrPassengerNotInRide
	}

	if len(updated.Passengers) == 0 {
		updated.Status = domain.RideStatusCancelled
	} else {
		updated.FinalFare = s.pricing.CalculateFare(ctx, updated.TotalDistance, len(updated.Passengers))
	}

	if err := s.rideRepo.Save(ctx, &updated); err != nil {
		return err
	}

	if updated.Status == domain.RideStatusCancelled && s.pickupIndex != nil {
		_ = s.pickupIndex.Remove(ctx, updated.ID)
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyPassengerCancelled(ctx, &updated, *passenger)
	}

	log.Printf("cancelled passenger %s from ride %s (%d remaining)", passengerID, updated.ID, len(updated.Passengers))
	return nil
}

// RideDetails describes a ride with its full member list.
type RideDetails struct {
	RideID           string
	Status           domain.RideStatus
	Passengers       []domain.Passenger
	AvailableSeats   int
	AvailableLuggage int
	TotalDistance    float64
	FinalFare        float64
	OccupancyRate    float64
	CreatedAt        time.Time
}

// GetRideDetails retrieves the full state of a ride.
func (s *RideService) GetRideDetails(ctx context.Context, rideID string) (*RideDetails, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	return &RideDetails{
		RideID:           ride.ID,
		Status:           ride.Status,
		Passengers:       ride.Passengers,
		AvailableSeats:   ride.AvailableSeats,
		AvailableLuggage: ride.AvailableLuggage,
		TotalDistance:    ride.TotalDistance,
		FinalFare:        ride.FinalFare,
		OccupancyRate:    ride.OccupancyRate(),
		CreatedAt:        ride.CreatedAt,
	}, nil
}

// RecentRides retrieves the most recently created rides in a status.
func (s *RideService) RecentRides(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.rideRepo.FindRecent(ctx, status, limit)
}

func (s *RideService) newPassenger(req RideRequest) domain.Passenger {
	return domain.Passenger{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Phone:            req.Phone,
		Pickup:           req.Pickup,
		Dropoff:          req.Dropoff,
		LuggageCount:     req.LuggageCount,
		MaxDetourMinutes: req.MaxDetourMinutes,
		RequestedAt:      time.Now(),
	}
}

func validateRideRequest(req RideRequest) error {
	if req.Name == "" {
		return ErrInvalidName
	}
	if req.Phone == "" {
		return ErrInvalidPhone
	}
	if !isValidLatitude(req.Pickup.Latitude) || !isValidLongitude(req.Pickup.Longitude) {
		return ErrInvalidPickupLocation
	}
	if !isValidLatitude(req.Dropoff.Latitude) || !isValidLongitude(req.Dropoff.Longitude) {
		return ErrInvalidDropoffLocation
	}
	if req.LuggageCount < 0 {
		return ErrInvalidLuggageCount
	}
	if req.MaxDetourMinutes < 1 {
		return ErrInvalidMaxDetour
	}
	return nil
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
