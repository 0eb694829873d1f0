package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ridepool/internal/domain"
	"ridepool/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService    *service.RideService
	pricingService *service.PricingService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, pricingService *service.PricingService) *RideHandler {
	return &RideHandler{
		rideService:    rideService,
		pricingService: pricingService,
	}
}

// RequestRideRequest is the HTTP request body for requesting a ride.
// LuggageCount defaults to 1 and MaxDetourMinutes to 15 when omitted.
type RequestRideRequest struct {
	Name             string           `json:"name"`
	Phone            string           `json:"phone"`
	PickupLocation   *domain.Location `json:"pickup_location"`
	DropoffLocation  *domain.Location `json:"dropoff_location"`
	LuggageCount     *int             `json:"luggage_count,omitempty"`
	MaxDetourMinutes *int             `json:"max_detour_minutes,omitempty"`
}

// RequestRideResponse is the HTTP response for requesting a ride.
type RequestRideResponse struct {
	RideID            string  `json:"ride_id"`
	PassengerID       string  `json:"passenger_id"`
	Status            string  `json:"status"`
	EstimatedFare     float64 `json:"estimated_fare"`
	Distance          float64 `json:"distance"`
	TotalPassengers   int     `json:"total_passengers"`
	AvailableSeats    int     `json:"available_seats"`
	IsPooled          bool    `json:"is_pooled"`
	SavingsPercentage float64 `json:"savings_percentage"`
	Message           string  `json:"message"`
}

// PassengerSummary describes a ride member in ride detail responses.
type PassengerSummary struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	PickupLocation  domain.Location `json:"pickup_location"`
	DropoffLocation domain.Location `json:"dropoff_location"`
	LuggageCount    int             `json:"luggage_count"`
}

// RideDetailsResponse is the HTTP response for ride details.
type RideDetailsResponse struct {
	RideID           string             `json:"ride_id"`
	Status           string             `json:"status"`
	Passengers       []PassengerSummary `json:"passengers"`
	AvailableSeats   int                `json:"available_seats"`
	AvailableLuggage int                `json:"available_luggage"`
	TotalDistance    float64            `json:"total_distance"`
	FinalFare        float64            `json:"final_fare"`
	OccupancyRate    float64            `json:"occupancy_rate"`
	CreatedAt        time.Time          `json:"created_at"`
}

// RequestRide handles POST /v1/rides/request
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.PickupLocation == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "pickup location is required"})
		return
	}
	if req.DropoffLocation == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "dropoff location is required"})
		return
	}

	luggage := 1
	if req.LuggageCount != nil {
		luggage = *req.LuggageCount
	}
	maxDetour := 15
	if req.MaxDetourMinutes != nil {
		maxDetour = *req.MaxDetourMinutes
	}

	result, err := h.rideService.RequestRide(c.Request.Context(), service.RideRequest{
		Name:             req.Name,
		Phone:            req.Phone,
		Pickup:           *req.PickupLocation,
		Dropoff:          *req.DropoffLocation,
		LuggageCount:     luggage,
		MaxDetourMinutes: maxDetour,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, RequestRideResponse{
		RideID:            result.RideID,
		PassengerID:       result.PassengerID,
		Status:            string(result.Status),
		EstimatedFare:     result.Fare,
		Distance:          result.Distance,
		TotalPassengers:   result.TotalPassengers,
		AvailableSeats:    result.AvailableSeats,
		IsPooled:          result.IsPooled,
		SavingsPercentage: result.SavingsPercentage,
		Message:           result.Message,
	})
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	details, err := h.rideService.GetRideDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	passengers := make([]PassengerSummary, 0, len(details.Passengers))
	for _, p := range details.Passengers {
		passengers = append(passengers, PassengerSummary{
			ID:              p.ID,
			Name:            p.Name,
			PickupLocation:  p.Pickup,
			DropoffLocation: p.Dropoff,
			LuggageCount:    p.LuggageCount,
		})
	}

	respondJSON(c, http.StatusOK, RideDetailsResponse{
		RideID:           details.RideID,
		Status:           string(details.Status),
		Passengers:       passengers,
		AvailableSeats:   details.AvailableSeats,
		AvailableLuggage: details.AvailableLuggage,
		TotalDistance:    details.TotalDistance,
		FinalFare:        details.FinalFare,
		OccupancyRate:    details.OccupancyRate,
		CreatedAt:        details.CreatedAt,
	})
}

// CancelPassenger handles DELETE /v1/rides/passengers/:id
func (h *RideHandler) CancelPassenger(c *gin.Context) {
	passengerID := c.Param("id")

	if err := h.rideService.CancelPassenger(c.Request.Context(), passengerID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message":      "Ride cancelled successfully",
		"passenger_id": passengerID,
	})
}

// GetSurge handles GET /v1/rides/pricing/surge
func (h *RideHandler) GetSurge(c *gin.Context) {
	respondJSON(c, http.StatusOK, h.pricingService.CurrentSurge(c.Request.Context()))
}

// GetRecent handles GET /v1/rides?status=&limit=
func (h *RideHandler) GetRecent(c *gin.Context) {
	status := domain.RideStatus(c.DefaultQuery("status", string(domain.RideStatusPending)))

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	rides, err := h.rideService.RecentRides(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideDetailsResponse, 0, len(rides))
	for _, r := range rides {
		passengers := make([]PassengerSummary, 0, len(r.Passengers))
		for _, p := range r.Passengers {
			passengers = append(passengers, PassengerSummary{
				ID:              p.ID,
				Name:            p.Name,
				PickupLocation:  p.Pickup,
				DropoffLocation: p.Dropoff,
				LuggageCount:    p.LuggageCount,
			})
		}
		response = append(response, RideDetailsResponse{
			RideID:           r.ID,
			Status:           string(r.Status),
			Passengers:       passengers,
			AvailableSeats:   r.AvailableSeats,
			AvailableLuggage: r.AvailableLuggage,
			TotalDistance:    r.TotalDistance,
			FinalFare:        r.FinalFare,
			OccupancyRate:    r.OccupancyRate(),
			CreatedAt:        r.CreatedAt,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive: %d", n)
	}
	return n, nil
}
