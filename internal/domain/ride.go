package domain

import (
	"errors"
	"time"
)

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending    RideStatus = "PENDING"
	RideStatusMatched    RideStatus = "MATCHED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// Default vehicle capacity for newly created rides.
const (
	DefaultMaxSeats   = 4
	DefaultMaxLuggage = 6
)

// ErrCapacityExceeded is returned when a passenger is added to a ride that
// cannot accommodate them. The matching engine filters on capacity before
// selecting a ride, so hitting this indicates a programming error.
var ErrCapacityExceeded = errors.New("ride cannot accommodate passenger")

// Ride is a pooled trip shared by up to MaxSeats passengers.
//
// Mutations return a new Ride value rather than updating in place, so a
// booking attempt never exposes partially updated state to concurrent
// attempts; the only shared write happens at the store's version-checked
// save. Version holds the value read from the store and is advanced by the
// store on a successful save.
type Ride struct {
	ID               string
	Status           RideStatus
	Passengers       []Passenger // join order; the first member anchors proximity search
	MaxSeats         int
	MaxLuggage       int
	AvailableSeats   int
	AvailableLuggage int
	TotalDistance    float64
	BaseFare         float64
	FinalFare        float64
	Version          int64
	ScheduledTime    time.Time
	CreatedAt        time.Time
}

// NewRide creates an empty ride in PENDING state with full capacity.
func NewRide(id string) Ride {
	return Ride{
		ID:               id,
		Status:           RideStatusPending,
		MaxSeats:         DefaultMaxSeats,
		MaxLuggage:       DefaultMaxLuggage,
		AvailableSeats:   DefaultMaxSeats,
		AvailableLuggage: DefaultMaxLuggage,
		Version:          1,
		CreatedAt:        time.Now(),
	}
}

// CanAccommodate reports whether the ride has a free seat and enough luggage
// space for the passenger.
func (r Ride) CanAccommodate(p Passenger) bool {
	return r.AvailableSeats >= 1 && r.AvailableLuggage >= p.LuggageCount
}

// WithPassenger returns a copy of the ride with the passenger appended and
// capacity adjusted. Fails with ErrCapacityExceeded if the ride is full.
func (r Ride) WithPassenger(p Passenger) (Ride, error) {
	if !r.CanAccommodate(p) {
		return r, ErrCapacityExceeded
	}

	p.RideID = r.ID

	members := make([]Passenger, len(r.Passengers), len(r.Passengers)+1)
	copy(members, r.Passengers)

	r.Passengers = append(members, p)
	r.AvailableSeats--
	r.AvailableLuggage -= p.LuggageCount

	return r, nil
}

// WithoutPassenger returns a copy of the ride with the passenger removed and
// capacity restored. The second return value reports whether the passenger
// was a member.
func (r Ride) WithoutPassenger(passengerID string) (Ride, bool) {
	for i, member := range r.Passengers {
		if member.ID != passengerID {
			continue
		}

		members := make([]Passenger, 0, len(r.Passengers)-1)
		members = append(members, r.Passengers[:i]...)
		members = append(members, r.Passengers[i+1:]...)

		r.Passengers = members
		r.AvailableSeats++
		r.AvailableLuggage += member.LuggageCount

		return r, true
	}

	return r, false
}

// PrimaryPassenger returns the first passenger to book, or nil for an empty
// ride.
func (r Ride) PrimaryPassenger() *Passenger {
	if len(r.Passengers) == 0 {
		return nil
	}
	return &r.Passengers[0]
}

// IsFull reports whether all seats are taken.
func (r Ride) IsFull() bool {
	return r.AvailableSeats == 0
}

// OccupancyRate returns the percentage of seats taken.
func (r Ride) OccupancyRate() float64 {
	return float64(r.MaxSeats-r.AvailableSeats) / float64(r.MaxSeats) * 100
}
