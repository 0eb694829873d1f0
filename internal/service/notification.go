package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"ridepool/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideCreated        NotificationType = "RIDE_CREATED"
	NotificationRideMatched        NotificationType = "RIDE_MATCHED"
	NotificationPassengerCancelled NotificationType = "PASSENGER_CANCELLED"
	NotificationRideCancelled      NotificationType = "RIDE_CANCELLED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery.
type NotificationService struct {
	// In a real system, this would have:
	// - Push notification client (FCM, APNS)
	// - SMS client (Twilio)
	// - WebSocket connections for real-time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyRideCreated notifies the primary passenger that their ride is open
// for pooling.
func (s *NotificationService) NotifyRideCreated(ctx context.Context, ride *domain.Ride, passenger domain.Passenger) error {
	s.send(ctx, Notification{
		Type:        NotificationRideCreated,
		RecipientID: passenger.ID,
		Title:       "Ride Created",
		Message:     fmt.Sprintf("Your ride is booked at $%.2f. We'll keep looking for co-riders to lower your fare.", ride.FinalFare),
		Data: map[string]interface{}{
			"ride_id": ride.ID,
			"fare":    ride.FinalFare,
		},
		CreatedAt: time.Now(),
	})
	return nil
}

// NotifyRideMatched notifies every member of the ride that a new passenger
// joined and the fare changed.
func (s *NotificationService) NotifyRideMatched(ctx context.Context, ride *domain.Ride, joined domain.Passenger) error {
	for _, member := range ride.Passengers {
		s.send(ctx, Notification{
			Type:        NotificationRideMatched,
			RecipientID: member.ID,
			Title:       "Ride Matched",
			Message:     fmt.Sprintf("%s joined your ride. New fare: $%.2f for %d passengers.", joined.Name, ride.FinalFare, len(ride.Passengers)),
			Data: map[string]interface{}{
				"ride_id":    ride.ID,
				"fare":       ride.FinalFare,
				"passengers": len(ride.Passengers),
			},
			CreatedAt: time.Now(),
		})
	}
	return nil
}

// NotifyPassengerCancelled notifies remaining members after a cancellation,
// or records the ride cancellation when the last member left.
func (s *NotificationService) NotifyPassengerCancelled(ctx context.Context, ride *domain.Ride, cancelled domain.Passenger) error {
	if len(ride.Passengers) == 0 {
		s.send(ctx, Notification{
			Type:        NotificationRideCancelled,
			RecipientID: cancelled.ID,
			Title:       "Ride Cancelled",
			Message:     "Your ride was cancelled.",
			Data:        map[string]interface{}{"ride_id": ride.ID},
			CreatedAt:   time.Now(),
		})
		return nil
	}

	for _, member := range ride.Passengers {
		s.send(ctx, Notification{
			Type:        NotificationPassengerCancelled,
			RecipientID: member.ID,
			Title:       "Co-rider Cancelled",
			Message:     fmt.Sprintf("%s left your ride. Updated fare: $%.2f.", cancelled.Name, ride.FinalFare),
			Data: map[string]interface{}{
				"ride_id": ride.ID,
				"fare":    ride.FinalFare,
			},
			CreatedAt: time.Now(),
		})
	}
	return nil
}

// send delivers a notification. Currently logs; swap with a real push/SMS
// integration in production.
func (s *NotificationService) send(ctx context.Context, n Notification) {
	log.Printf("[NOTIFICATION] type=%s recipient=%s title=%q message=%q",
		n.Type, n.RecipientID, n.Title, n.Message)
}
