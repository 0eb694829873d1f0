package domain

import "time"

// Passenger represents a rider requesting a pooled trip.
// A passenger belongs to at most one ride at a time; RideID is empty while
// unassigned and cleared again on cancellation.
type Passenger struct {
	ID               string
	Name             string
	Phone            string
	Pickup           Location
	Dropoff          Location
	LuggageCount     int
	MaxDetourMinutes int
	RideID           string
	RequestedAt      time.Time
}

// DirectDistance returns the distance of the passenger's own trip in km.
func (p Passenger) DirectDistance() float64 {
	return p.Pickup.DistanceTo(p.Dropoff)
}

// DirectTravelTime returns the estimated duration of the passenger's own
// trip in minutes.
func (p Passenger) DirectTravelTime() float64 {
	return p.Pickup.TravelTimeTo(p.Dropoff)
}
