// README: FCM message construction tests with a capturing sender.
package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"

	"taxiboard/internal/modules/ride"
	"taxiboard/internal/types"
)

type captureSender struct {
	last *messaging.Message
	err  error
}

func (c *captureSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	c.last = message
	return "msg-1", c.err
}

func sampleRide(requested *time.Time) *ride.Ride {
	return &ride.Ride{
		ID:             "r1",
		ClientName:     "Mme Martin",
		PickupAddress:  "Dangeau, Place de l'Église",
		DropoffAddress: "Chartres Gare",
		RequestedAt:    requested,
		Fare:           types.Money{Amount: 2350, Currency: "EUR"},
		DistanceKm:     18.4,
	}
}

func TestNewRideMessage(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender)

	requested := time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)
	if err := svc.NewRide(context.Background(), "tok-d1", sampleRide(&requested)); err != nil {
		t.Fatalf("new ride push: %v", err)
	}

	msg := sender.last
	if msg == nil {
		t.Fatal("no message sent")
	}
	if msg.Token != "tok-d1" {
		t.Fatalf("unexpected token: %q", msg.Token)
	}
	if msg.Notification.Title != "Nouvelle course" {
		t.Fatalf("unexpected title: %q", msg.Notification.Title)
	}
	if msg.Notification.Body != "Mme Martin - 08:30" {
		t.Fatalf("unexpected body: %q", msg.Notification.Body)
	}
	if msg.Data["type"] != "new_ride" || msg.Data["ride_id"] != "r1" {
		t.Fatalf("unexpected data payload: %v", msg.Data)
	}
	if msg.Data["fare_cents"] != "2350" || msg.Data["km"] != "18.4" {
		t.Fatalf("unexpected fare/km payload: %v", msg.Data)
	}
	if msg.Android == nil || msg.Android.Priority != "high" {
		t.Fatalf("expected high android priority, got %+v", msg.Android)
	}
	if msg.Android.Notification.ChannelID != "courses_urgentes" {
		t.Fatalf("unexpected channel: %q", msg.Android.Notification.ChannelID)
	}
}

func TestNewRideWithoutRequestedTime(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender)

	if err := svc.NewRide(context.Background(), "tok-d1", sampleRide(nil)); err != nil {
		t.Fatalf("new ride push: %v", err)
	}
	if sender.last.Notification.Body != "Mme Martin - dès que possible" {
		t.Fatalf("unexpected body: %q", sender.last.Notification.Body)
	}
}

func TestRideModifiedMessage(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender)

	requested := time.Date(2026, 3, 14, 9, 15, 0, 0, time.UTC)
	if err := svc.RideModified(context.Background(), "tok-d1", sampleRide(&requested)); err != nil {
		t.Fatalf("modified push: %v", err)
	}

	msg := sender.last
	if msg.Notification.Title != "Course modifiée" {
		t.Fatalf("unexpected title: %q", msg.Notification.Title)
	}
	if msg.Notification.Body != "Mme Martin - nouvelle heure: 09:15" {
		t.Fatalf("unexpected body: %q", msg.Notification.Body)
	}
	if msg.Data["type"] != "ride_modified" {
		t.Fatalf("unexpected type: %q", msg.Data["type"])
	}
	if msg.Android.Priority != "normal" {
		t.Fatalf("expected normal priority, got %q", msg.Android.Priority)
	}
}

func TestRideCancelledMessage(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender)

	if err := svc.RideCancelled(context.Background(), "tok-d1", sampleRide(nil)); err != nil {
		t.Fatalf("cancelled push: %v", err)
	}

	msg := sender.last
	if msg.Notification.Title != "Course annulée" {
		t.Fatalf("unexpected title: %q", msg.Notification.Title)
	}
	if msg.Data["type"] != "ride_cancelled" {
		t.Fatalf("unexpected type: %q", msg.Data["type"])
	}
	if msg.Android.Priority != "high" {
		t.Fatalf("expected high priority, got %q", msg.Android.Priority)
	}
}

func TestSendErrorPropagates(t *testing.T) {
	wantErr := errors.New("registration-token-not-registered")
	svc := NewService(&captureSender{err: wantErr})

	if err := svc.NewRide(context.Background(), "tok-gone", sampleRide(nil)); !errors.Is(err, wantErr) {
		t.Fatalf("expected sender error, got %v", err)
	}
}
