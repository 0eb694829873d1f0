package tests

import (
	"context"
	"math"
	"testing"

	"ridepool/internal/service"
)

func TestSurgeMultiplier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		activeRides int
		want        float64
	}{
		{0, 1.0},
		{50, 1.25},
		{100, 1.5},
		{250, 1.5},
	}

	for _, tt := range tests {
		if got := service.SurgeMultiplier(tt.activeRides); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SurgeMultiplier(%d) = %.4f, want %.4f", tt.activeRides, got, tt.want)
		}
	}
}

func TestSharingDiscount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		passengers int
		want       float64
	}{
		{1, 0},
		{2, 0.25},
		{3, 0.5},
		{4, 0.75},
		{6, 0.75},
	}

	for _, tt := range tests {
		if got := service.SharingDiscount(tt.passengers); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SharingDiscount(%d) = %.2f, want %.2f", tt.passengers, got, tt.want)
		}
	}
}

func TestFare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		distanceKm  float64
		passengers  int
		activeRides int
		want        float64
	}{
		{"solo no surge", 10, 1, 0, 25.00},
		{"pair under surge rounds to cents", 10, 2, 50, 23.44},
		{"zero distance is the base fare", 0, 1, 0, 5.00},
		{"full car max discount", 10, 4, 0, 6.25},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := service.Fare(tt.distanceKm, tt.passengers, tt.activeRides); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Fare(%.1f, %d, %d) = %.2f, want %.2f", tt.distanceKm, tt.passengers, tt.activeRides, got, tt.want)
			}
		})
	}
}

func TestSavingsPercentage(t *testing.T) {
	t.Parallel()

	if got := service.SavingsPercentage(25, 20); math.Abs(got-20) > 1e-9 {
		t.Errorf("SavingsPercentage(25, 20) = %.2f, want 20", got)
	}
	if got := service.SavingsPercentage(0, 20); got != 0 {
		t.Errorf("SavingsPercentage(0, 20) = %.2f, want 0", got)
	}
}

func TestPricingService_CalculateFare_PrefersCachedDemand(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	demand := NewMockDemandStore()
	demand.Prime(100)

	pricing := service.NewPricingService(rideRepo, demand)

	// 100 pending rides saturate the surge at 1.5x.
	if got := pricing.CalculateFare(context.Background(), 10, 1); math.Abs(got-37.50) > 1e-9 {
		t.Errorf("CalculateFare() = %.2f, want 37.50", got)
	}
}

func TestPricingService_CalculateFare_FillsCacheFromStore(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(rideWith("ride-1", passengerAt("p1", cityCenter, techPark, 0, 15)))
	rideRepo.AddRide(rideWith("ride-2", passengerAt("p2", cityCenter, airport, 0, 15)))

	demand := NewMockDemandStore()
	pricing := service.NewPricingService(rideRepo, demand)

	want := service.Fare(10, 1, 2)
	if got := pricing.CalculateFare(context.Background(), 10, 1); math.Abs(got-want) > 1e-9 {
		t.Errorf("CalculateFare() = %.2f, want %.2f", got, want)
	}

	// A cache miss populates the snapshot for the next caller.
	count, ok, err := demand.GetPendingCount(context.Background())
	if err != nil || !ok || count != 2 {
		t.Errorf("demand snapshot = (%d, %v, %v), want (2, true, nil)", count, ok, err)
	}
}

func TestPricingService_CalculateFare_FailsOpenOnErrors(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(rideWith("ride-1", passengerAt("p1", cityCenter, techPark, 0, 15)))

	demand := NewMockDemandStore()
	demand.GetError = context.DeadlineExceeded
	demand.SetError = context.DeadlineExceeded

	pricing := service.NewPricingService(rideRepo, demand)

	// Cache errors fall through to the store count.
	want := service.Fare(10, 1, 1)
	if got := pricing.CalculateFare(context.Background(), 10, 1); math.Abs(got-want) > 1e-9 {
		t.Errorf("CalculateFare() = %.2f, want %.2f", got, want)
	}
}

func TestPricingService_CurrentSurge(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	demand := NewMockDemandStore()
	demand.Prime(150)

	pricing := service.NewPricingService(rideRepo, demand)

	surge := pricing.CurrentSurge(context.Background())
	if surge.ActiveRides != 150 {
		t.Errorf("ActiveRides = %d, want 150", surge.ActiveRides)
	}
	if math.Abs(surge.Multiplier-1.5) > 1e-9 {
		t.Errorf("Multiplier = %.2f, want 1.50", surge.Multiplier)
	}
	if !surge.IsSurging {
		t.Error("IsSurging = false, want true")
	}

	calm := service.NewPricingService(NewMockRideRepository(), nil)
	if got := calm.CurrentSurge(context.Background()); got.IsSurging || got.Multiplier != 1.0 {
		t.Errorf("quiet system surge = %+v, want 1.0x and not surging", got)
	}
}
