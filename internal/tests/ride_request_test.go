package tests

import (
	"context"
	"errors"
	"testing"

	"ridepool/internal/domain"
	"ridepool/internal/service"
)

func TestRequestRide_CreatesNewRideWhenPoolEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	resp, err := f.rides.RequestRide(ctx, rideRequest("Asha", "+919000000001", cityCenter, techPark))
	if err != nil {
		t.Fatalf("RequestRide() error: %v", err)
	}

	if resp.IsPooled {
		t.Error("IsPooled = true for the first request")
	}
	if resp.Status != domain.RideStatusPending {
		t.Errorf("Status = %s, want %s", resp.Status, domain.RideStatusPending)
	}
	if resp.TotalPassengers != 1 {
		t.Errorf("TotalPassengers = %d, want 1", resp.TotalPassengers)
	}
	if resp.AvailableSeats != domain.DefaultMaxSeats-1 {
		t.Errorf("AvailableSeats = %d, want %d", resp.AvailableSeats, domain.DefaultMaxSeats-1)
	}

	// No demand yet, so no surge.
	if want := service.Fare(resp.Distance, 1, 0); resp.Fare != want {
		t.Errorf("Fare = %.2f, want %.2f", resp.Fare, want)
	}

	stored := f.rideRepo.GetRide(resp.RideID)
	if stored == nil {
		t.Fatal("ride not persisted")
	}
	if stored.Version != 1 {
		t.Errorf("stored Version = %d, want 1", stored.Version)
	}

	passenger, err := f.passengerRepo.GetByID(ctx, resp.PassengerID)
	if err != nil {
		t.Fatalf("passenger not persisted: %v", err)
	}
	if passenger.RideID != resp.RideID {
		t.Errorf("passenger RideID = %q, want %q", passenger.RideID, resp.RideID)
	}
}

func TestRequestRide_PoolsNearbyTrips(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	first, err := f.rides.RequestRide(ctx, rideRequest("Asha", "+919000000001", cityCenter, techPark))
	if err != nil {
		t.Fatalf("first RequestRide() error: %v", err)
	}

	second, err := f.rides.RequestRide(ctx, rideRequest("Ben", "+919000000002", nearCityCenter, nearTechPark))
	if err != nil {
		t.Fatalf("second RequestRide() error: %v", err)
	}

	if !second.IsPooled {
		t.Fatal("second request was not pooled")
	}
	if second.RideID != first.RideID {
		t.Errorf("second RideID = %s, want %s", second.RideID, first.RideID)
	}
	if second.TotalPassengers != 2 {
		t.Errorf("TotalPassengers = %d, want 2", second.TotalPassengers)
	}
	if second.Status != domain.RideStatusMatched {
		t.Errorf("Status = %s, want %s", second.Status, domain.RideStatusMatched)
	}
	if second.SavingsPercentage <= 0 {
		t.Errorf("SavingsPercentage = %.2f, want > 0", second.SavingsPercentage)
	}

	stored := f.rideRepo.GetRide(first.RideID)
	if stored.Status != domain.RideStatusMatched {
		t.Errorf("stored Status = %s, want %s", stored.Status, domain.RideStatusMatched)
	}
	if len(stored.Passengers) != 2 {
		t.Errorf("stored members = %d, want 2", len(stored.Passengers))
	}
	if stored.Version != 2 {
		t.Errorf("stored Version = %d, want 2 after one save", stored.Version)
	}
}

func TestRequestRide_DistantPickupCreatesSeparateRide(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	first, err := f.rides.RequestRide(ctx, rideRequest("Asha", "+919000000001", cityCenter, techPark))
	if err != nil {
		t.Fatalf("first RequestRide() error: %v", err)
	}

	second, err := f.rides.RequestRide(ctx, rideRequest("Ben", "+919000000002", farSuburb, techPark))
	if err != nil {
		t.Fatalf("second RequestRide() error: %v", err)
	}

	if second.IsPooled {
		t.Error("pooled despite pickups beyond the search radius")
	}
	if second.RideID == first.RideID {
		t.Error("both passengers landed on the same ride")
	}
}

func TestRequestRide_LuggageOverflowCreatesSeparateRide(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	heavy := rideRequest("Asha", "+919000000001", cityCenter, techPark)
	heavy.LuggageCount = domain.DefaultMaxLuggage

	first, err := f.rides.RequestRide(ctx, heavy)
	if err != nil {
		t.Fatalf("first RequestRide() error: %v", err)
	}

	second, err := f.rides.RequestRide(ctx, rideRequest("Ben", "+919000000002", cityCenter, techPark))
	if err != nil {
		t.Fatalf("second RequestRide() error: %v", err)
	}

	if second.IsPooled || second.RideID == first.RideID {
		t.Error("pooled despite no luggage space remaining")
	}
}

func TestRequestRide_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	valid := rideRequest("Asha", "+919000000001", cityCenter, techPark)

	tests := []struct {
		name    string
		mutate  func(*service.RideRequest)
		wantErr error
	}{
		{"missing name", func(r *service.RideRequest) { r.Name = "" }, service.ErrInvalidName},
		{"missing phone", func(r *service.RideRequest) { r.Phone = "" }, service.ErrInvalidPhone},
		{"latitude out of range", func(r *service.RideRequest) { r.Pickup.Latitude = 91 }, service.ErrInvalidPickupLocation},
		{"longitude out of range", func(r *service.RideRequest) { r.Dropoff.Longitude = -181 }, service.ErrInvalidDropoffLocation},
		{"negative luggage", func(r *service.RideRequest) { r.LuggageCount = -1 }, service.ErrInvalidLuggageCount},
		{"zero detour budget", func(r *service.RideRequest) { r.MaxDetourMinutes = 0 }, service.ErrInvalidMaxDetour},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := valid
			tt.mutate(&req)

			if _, err := f.rides.RequestRide(ctx, req); !errors.Is(err, tt.wantErr) {
				t.Errorf("RequestRide() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestRide_RetryAfterConflictThenJoins(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.rideRepo.AddRide(rideWith("ride-1", passengerAt("p1", cityCenter, techPark, 0, 15)))
	f.rideRepo.ConflictNextSaves = 1

	resp, err := f.rides.RequestRide(ctx, rideRequest("Ben", "+919000000002", nearCityCenter, nearTechPark))
	if err != nil {
		t.Fatalf("RequestRide() error: %v", err)
	}

	if !resp.IsPooled {
		t.Error("retry did not pool after the conflict cleared")
	}
	if resp.RideID != "ride-1" {
		t.Errorf("RideID = %s, want ride-1", resp.RideID)
	}
	if got := f.rideRepo.SaveCallCount; got != 2 {
		t.Errorf("SaveCallCount = %d, want 2", got)
	}
}

func TestRequestRide_ForcesNewRideWhenRetriesExhausted(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.rideRepo.AddRide(rideWith("ride-1", passengerAt("p1", cityCenter, techPark, 0, 15)))
	f.rideRepo.ConflictNextSaves = 3

	resp, err := f.rides.RequestRide(ctx, rideRequest("Ben", "+919000000002", nearCityCenter, nearTechPark))
	if err != nil {
		t.Fatalf("RequestRide() error: %v", err)
	}

	// The booking still completes, on a fresh ride.
	if resp.IsPooled {
		t.Error("IsPooled = true after exhausting the retry budget")
	}
	if resp.RideID == "ride-1" {
		t.Error("joined the contested ride despite every save conflicting")
	}
	if got := f.rideRepo.SaveCallCount; got != 3 {
		t.Errorf("SaveCallCount = %d, want 3", got)
	}
	if got := f.rideRepo.CreateCallCount; got != 1 {
		t.Errorf("CreateCallCount = %d, want 1", got)
	}

	if contested := f.rideRepo.GetRide("ride-1"); len(contested.Passengers) != 1 {
		t.Errorf("contested ride members = %d, want 1", len(contested.Passengers))
	}
}

func TestRequestRide_MaintainsPickupIndex(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	passengerRepo := NewMockPassengerRepository()
	rideRepo.Passengers = passengerRepo
	pickupIndex := NewMockPickupIndex()

	rides := service.NewRideService(
		rideRepo,
		passengerRepo,
		service.NewMatchingService(),
		service.NewPricingService(rideRepo, nil),
		pickupIndex,
		nil,
	)

	ctx := context.Background()

	first, err := rides.RequestRide(ctx, rideRequest("Asha", "+919000000001", cityCenter, techPark))
	if err != nil {
		t.Fatalf("first RequestRide() error: %v", err)
	}
	if !pickupIndex.Contains(first.RideID) {
		t.Fatal("open ride missing from the pickup index")
	}

	second, err := rides.RequestRide(ctx, rideRequest("Ben", "+919000000002", nearCityCenter, nearTechPark))
	if err != nil {
		t.Fatalf("second RequestRide() error: %v", err)
	}
	if !second.IsPooled {
		t.Fatal("second request was not pooled through the index")
	}

	// Matched rides leave the pending pool and the index with it.
	if pickupIndex.Contains(first.RideID) {
		t.Error("matched ride still present in the pickup index")
	}
}

func TestGetRideDetails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	resp, err := f.rides.RequestRide(ctx, rideRequest("Asha", "+919000000001", cityCenter, techPark))
	if err != nil {
		t.Fatalf("RequestRide() error: %v", err)
	}

	details, err := f.rides.GetRideDetails(ctx, resp.RideID)
	if err != nil {
		t.Fatalf("GetRideDetails() error: %v", err)
	}

	if details.RideID != resp.RideID {
		t.Errorf("RideID = %s, want %s", details.RideID, resp.RideID)
	}
	if len(details.Passengers) != 1 || details.Passengers[0].ID != resp.PassengerID {
		t.Errorf("Passengers = %v, want the requesting passenger", details.Passengers)
	}
	if details.FinalFare != resp.Fare {
		t.Errorf("FinalFare = %.2f, want %.2f", details.FinalFare, resp.Fare)
	}
	if details.OccupancyRate != 25 {
		t.Errorf("OccupancyRate = %.1f, want 25", details.OccupancyRate)
	}

	if _, err := f.rides.GetRideDetails(ctx, ""); !errors.Is(err, service.ErrInvalidRideID) {
		t.Errorf("empty ride id error = %v, want ErrInvalidRideID", err)
	}
}

func TestRecentRides(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	// Pickups far apart so each request opens its own ride.
	for i, pickup := range []domain.Location{cityCenter, farSuburb, airport} {
		req := rideRequest("Passenger", "+91900000000"+string(rune('1'+i)), pickup, techPark)
		if _, err := f.rides.RequestRide(ctx, req); err != nil {
			t.Fatalf("RequestRide() error: %v", err)
		}
	}

	recent, err := f.rides.RecentRides(ctx, domain.RideStatusPending, 2)
	if err != nil {
		t.Fatalf("RecentRides() error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}

	// Newest first: the airport ride was created last.
	if got := recent[0].PrimaryPassenger().Pickup; got != airport {
		t.Errorf("most recent pickup = %+v, want the airport", got)
	}
}
