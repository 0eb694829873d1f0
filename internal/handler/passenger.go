package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepool/internal/repository"
)

// PassengerHandler handles HTTP requests for passengers.
type PassengerHandler struct {
	passengerRepo repository.PassengerRepository
}

// NewPassengerHandler creates a new PassengerHandler.
func NewPassengerHandler(passengerRepo repository.PassengerRepository) *PassengerHandler {
	return &PassengerHandler{passengerRepo: passengerRepo}
}

// PassengerResponse is the HTTP response for passenger data.
type PassengerResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	PickupLat        float64 `json:"pickup_lat"`
	PickupLng        float64 `json:"pickup_lng"`
	DropoffLat       float64 `json:"dropoff_lat"`
	DropoffLng       float64 `json:"dropoff_lng"`
	LuggageCount     int     `json:"luggage_count"`
	MaxDetourMinutes int     `json:"max_detour_minutes"`
	RideID           string  `json:"ride_id,omitempty"`
}

// GetHistory handles GET /v1/passengers?phone=
func (h *PassengerHandler) GetHistory(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "phone query parameter is required"})
		return
	}

	passengers, err := h.passengerRepo.FindByPhone(c.Request.Context(), phone)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PassengerResponse, 0, len(passengers))
	for _, p := range passengers {
		response = append(response, PassengerResponse{
			ID:               p.ID,
			Name:             p.Name,
			Phone:            p.Phone,
			PickupLat:        p.Pickup.Latitude,
			PickupLng:        p.Pickup.Longitude,
			DropoffLat:       p.Dropoff.Latitude,
			DropoffLng:       p.Dropoff.Longitude,
			LuggageCount:     p.LuggageCount,
			MaxDetourMinutes: p.MaxDetourMinutes,
			RideID:           p.RideID,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// GetPassenger handles GET /v1/passengers/:id
func (h *PassengerHandler) GetPassenger(c *gin.Context) {
	p, err := h.passengerRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PassengerResponse{
		ID:               p.ID,
		Name:             p.Name,
		Phone:            p.Phone,
		PickupLat:        p.Pickup.Latitude,
		PickupLng:        p.Pickup.Longitude,
		DropoffLat:       p.Dropoff.Latitude,
		DropoffLng:       p.Dropoff.Longitude,
		LuggageCount:     p.LuggageCount,
		MaxDetourMinutes: p.MaxDetourMinutes,
		RideID:           p.RideID,
	})
}
