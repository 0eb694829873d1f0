package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"ridepool/internal/domain"
	"ridepool/internal/service"
)

// TestRequestRide_ConcurrentLastSeat races two bookings for the single open
// seat of a ride. Both read the same pool state before either saves; the
// version check must let exactly one through and push the other onto a fresh
// ride.
func TestRequestRide_ConcurrentLastSeat(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.rideRepo.AddRide(rideWith("ride-1",
		passengerAt("p1", cityCenter, techPark, 0, 15),
		passengerAt("p2", cityCenter, techPark, 0, 15),
		passengerAt("p3", cityCenter, techPark, 0, 15),
	))

	// Hold both bookings at the pool read until each has seen the seat
	// free. Later re-reads during retries skip the barrier.
	var (
		barrier   sync.WaitGroup
		poolReads int32
	)
	barrier.Add(2)
	f.rideRepo.OnFindPoolable = func() {
		if atomic.AddInt32(&poolReads, 1) <= 2 {
			barrier.Done()
			barrier.Wait()
		}
	}

	type outcome struct {
		resp *service.RideResponse
		err  error
	}
	results := make(chan outcome, 2)

	var wg sync.WaitGroup
	for _, phone := range []string{"+919000000001", "+919000000002"} {
		wg.Add(1)
		go func(phone string) {
			defer wg.Done()
			resp, err := f.rides.RequestRide(ctx, rideRequest("Racer", phone, nearCityCenter, nearTechPark))
			results <- outcome{resp, err}
		}(phone)
	}
	wg.Wait()
	close(results)

	var pooled, created int
	for r := range results {
		if r.err != nil {
			t.Fatalf("RequestRide() error: %v", r.err)
		}
		if r.resp.IsPooled {
			pooled++
			if r.resp.RideID != "ride-1" {
				t.Errorf("pooled onto %s, want ride-1", r.resp.RideID)
			}
			if r.resp.AvailableSeats != 0 {
				t.Errorf("AvailableSeats = %d, want 0", r.resp.AvailableSeats)
			}
		} else {
			created++
		}
	}

	if pooled != 1 || created != 1 {
		t.Fatalf("pooled = %d, created = %d; want exactly one of each", pooled, created)
	}

	stored := f.rideRepo.GetRide("ride-1")
	if len(stored.Passengers) != domain.DefaultMaxSeats {
		t.Errorf("members = %d, want %d", len(stored.Passengers), domain.DefaultMaxSeats)
	}
	if stored.Status != domain.RideStatusMatched {
		t.Errorf("Status = %s, want %s", stored.Status, domain.RideStatusMatched)
	}
	if stored.Version != 2 {
		t.Errorf("Version = %d, want 2 after a single winning save", stored.Version)
	}
}

// TestRequestRide_ConcurrentDisjointTrips checks that unrelated bookings do
// not contend: concurrent requests from distant pickups each open their own
// ride without a single conflict retry.
func TestRequestRide_ConcurrentDisjointTrips(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	pickups := []domain.Location{cityCenter, farSuburb, airport}

	var wg sync.WaitGroup
	errs := make(chan error, len(pickups))
	for i, pickup := range pickups {
		wg.Add(1)
		go func(i int, pickup domain.Location) {
			defer wg.Done()
			req := rideRequest("Rider", "+91900000010"+string(rune('0'+i)), pickup, techPark)
			_, err := f.rides.RequestRide(ctx, req)
			errs <- err
		}(i, pickup)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("RequestRide() error: %v", err)
		}
	}

	if got := f.rideRepo.CreateCallCount; got != int32(len(pickups)) {
		t.Errorf("CreateCallCount = %d, want %d", got, len(pickups))
	}
}
