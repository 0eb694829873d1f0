package tests

import (
	"ridepool/internal/domain"
	"ridepool/internal/service"
)

// Landmarks used across tests, roughly Bengaluru.
var (
	cityCenter     = domain.Location{Latitude: 12.9716, Longitude: 77.5946}
	nearCityCenter = domain.Location{Latitude: 12.9725, Longitude: 77.5950} // ~100 m away
	techPark       = domain.Location{Latitude: 12.9352, Longitude: 77.6245} // ~5.2 km southeast
	nearTechPark   = domain.Location{Latitude: 12.9360, Longitude: 77.6250}
	airport        = domain.Location{Latitude: 13.1986, Longitude: 77.7066} // ~28 km northeast
	farSuburb      = domain.Location{Latitude: 13.0500, Longitude: 77.5946} // ~8.7 km north
)

func passengerAt(id string, pickup, dropoff domain.Location, luggage, maxDetour int) domain.Passenger {
	return domain.Passenger{
		ID:               id,
		Name:             "Passenger " + id,
		Phone:            "+91900000" + id,
		Pickup:           pickup,
		Dropoff:          dropoff,
		LuggageCount:     luggage,
		MaxDetourMinutes: maxDetour,
	}
}

func rideWith(id string, members ...domain.Passenger) *domain.Ride {
	ride := domain.NewRide(id)
	for _, m := range members {
		var err error
		ride, err = ride.WithPassenger(m)
		if err != nil {
			panic(err)
		}
	}
	if primary := ride.PrimaryPassenger(); primary != nil {
		ride.TotalDistance = primary.DirectDistance()
	}
	return &ride
}

// fixture wires a RideService against in-memory mocks. The pickup index and
// demand cache are left out unless a test installs them.
type fixture struct {
	rideRepo      *MockRideRepository
	passengerRepo *MockPassengerRepository
	rides         *service.RideService
	pricing       *service.PricingService
}

func newFixture() *fixture {
	rideRepo := NewMockRideRepository()
	passengerRepo := NewMockPassengerRepository()
	rideRepo.Passengers = passengerRepo

	pricing := service.NewPricingService(rideRepo, nil)
	rides := service.NewRideService(
		rideRepo,
		passengerRepo,
		service.NewMatchingService(),
		pricing,
		nil,
		service.NewNotificationService(),
	)

	return &fixture{
		rideRepo:      rideRepo,
		passengerRepo: passengerRepo,
		rides:         rides,
		pricing:       pricing,
	}
}

func rideRequest(name, phone string, pickup, dropoff domain.Location) service.RideRequest {
	return service.RideRequest{
		Name:             name,
		Phone:            phone,
		Pickup:           pickup,
		Dropoff:          dropoff,
		LuggageCount:     1,
		MaxDetourMinutes: 15,
	}
}
