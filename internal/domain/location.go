package domain

import "math"

const (
	earthRadiusKm = 6371.0

	// AverageCitySpeedKmh is the assumed average speed used to convert
	// distances into travel time estimates.
	AverageCitySpeedKmh = 30.0
)

// Location represents a geographic point with latitude and longitude.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceTo returns the great-circle distance to another location in
// kilometers, computed with the haversine formula.
func (l Location) DistanceTo(other Location) float64 {
	dLat := toRadians(other.Latitude - l.Latitude)
	dLng := toRadians(other.Longitude - l.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(l.Latitude))*
			math.Cos(toRadians(other.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// TravelTimeTo returns the estimated travel time to another location in
// minutes, assuming average city traffic speed.
func (l Location) TravelTimeTo(other Location) float64 {
	return l.TravelTimeAt(other, AverageCitySpeedKmh)
}

// TravelTimeAt returns the estimated travel time in minutes at the given
// average speed in km/h.
func (l Location) TravelTimeAt(other Location, speedKmh float64) float64 {
	return l.DistanceTo(other) / speedKmh * 60
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
