package service

import "errors"

var (
	// ErrInvalidName is returned when the passenger name is empty.
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidPhone is returned when the passenger phone is empty.
	ErrInvalidPhone = errors.New("phone number is required")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropoffLocation is returned when dropoff coordinates are invalid.
	ErrInvalidDropoffLocation = errors.New("invalid dropoff location")

	// ErrInvalidLuggageCount is returned when luggage count is negative.
	ErrInvalidLuggageCount = errors.New("luggage count cannot be negative")

	// ErrInvalidMaxDetour is returned when the detour tolerance is below one minute.
	ErrInvalidMaxDetour = errors.New("max detour must be at least 1 minute")

	// ErrInvalidRideID is returned when a ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidPassengerID is returned when a passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrPassengerNotInRide is returned when cancelling a passenger that is
	// not associated with any ride.
	ErrPassengerNotInRide = errors.New("passenger is not associated with any ride")
)
