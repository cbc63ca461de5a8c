// README: FCM notification dispatcher; best-effort pushes to drivers' devices.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"firebase.google.com/go/v4/messaging"

	"taxiboard/internal/modules/ride"
)

// Sender is the FCM send boundary (*messaging.Client in production).
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type Service struct {
	sender Sender
}

func NewService(sender Sender) *Service {
	return &Service{sender: sender}
}

// NewRide tells a driver a ride was assigned to them. High priority with
// sound: this is the push that has to wake the phone up.
func (s *Service) NewRide(ctx context.Context, token string, r *ride.Ride) error {
	title := "Nouvelle course"
	body := fmt.Sprintf("%s - %s", r.ClientName, pickupTimeLabel(r))
	return s.send(ctx, token, title, body, "new_ride", r, "high")
}

// RideModified tells the driver a ride they hold changed.
func (s *Service) RideModified(ctx context.Context, token string, r *ride.Ride) error {
	title := "Course modifiée"
	body := fmt.Sprintf("%s - nouvelle heure: %s", r.ClientName, pickupTimeLabel(r))
	return s.send(ctx, token, title, body, "ride_modified", r, "normal")
}

// RideCancelled tells the driver a ride was cancelled or taken away.
func (s *Service) RideCancelled(ctx context.Context, token string, r *ride.Ride) error {
	title := "Course annulée"
	body := fmt.Sprintf("%s - course annulée", r.ClientName)
	return s.send(ctx, token, title, body, "ride_cancelled", r, "high")
}

func (s *Service) send(ctx context.Context, token, title, body, kind string, r *ride.Ride, priority string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type":        kind,
			"ride_id":     string(r.ID),
			"client_name": r.ClientName,
			"pickup":      r.PickupAddress,
			"dropoff":     r.DropoffAddress,
			"fare_cents":  strconv.FormatInt(r.Fare.Amount, 10),
			"km":          strconv.FormatFloat(r.DistanceKm, 'f', 1, 64),
		},
		Android: &messaging.AndroidConfig{
			Priority: priority,
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "courses_urgentes",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	_, err := s.sender.Send(ctx, msg)
	return err
}

func pickupTimeLabel(r *ride.Ride) string {
	if r.RequestedAt != nil {
		return r.RequestedAt.Format("15:04")
	}
	return "dès que possible"
}
