// README: CSV export tests with a stubbed ride store.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"taxiboard/internal/modules/ride"
	"taxiboard/internal/types"
)

type stubLister struct {
	rides []ride.Ride
	err   error
	from  time.Time
	to    time.Time
}

func (s *stubLister) ListRange(ctx context.Context, from, to time.Time) ([]ride.Ride, error) {
	s.from, s.to = from, to
	return s.rides, s.err
}

func TestWriteCSV(t *testing.T) {
	requested := time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)
	created := time.Date(2026, 3, 13, 17, 2, 0, 0, time.UTC)
	driverID := types.ID("d1")

	lister := &stubLister{rides: []ride.Ride{
		{
			ID:             "r1",
			ClientName:     "Mme Martin",
			PickupAddress:  "Dangeau",
			DropoffAddress: "Chartres Gare",
			RequestedAt:    &requested,
			CreatedAt:      created,
			DriverID:       &driverID,
			Status:         ride.StatusConfirmed,
			Fare:           types.Money{Amount: 2350, Currency: "EUR"},
			DistanceKm:     18.4,
		},
		{
			ID:            "r2",
			ClientName:    "M. Durand",
			PickupAddress: "Brou",
			CreatedAt:     created.Add(time.Hour),
			Status:        ride.StatusNew,
		},
	}}

	var buf bytes.Buffer
	from := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)
	if err := NewService(lister).WriteCSV(context.Background(), &buf, from, to); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if !lister.from.Equal(from) || !lister.to.Equal(to) {
		t.Fatalf("range not forwarded: got [%v, %v)", lister.from, lister.to)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "ride_id" || records[0][8] != "fare_eur" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	r1 := records[1]
	if r1[0] != "r1" || r1[1] != "Mme Martin" || r1[6] != "d1" || r1[7] != "confirmed" {
		t.Fatalf("unexpected first row: %v", r1)
	}
	if r1[4] != "2026-03-14T08:30:00Z" {
		t.Fatalf("unexpected requested_at: %q", r1[4])
	}
	if r1[8] != "23.50" || r1[9] != "18.4" {
		t.Fatalf("unexpected fare/distance: %q %q", r1[8], r1[9])
	}

	r2 := records[2]
	if r2[4] != "" || r2[6] != "" {
		t.Fatalf("optional fields must be empty: %v", r2)
	}
	if r2[8] != "0.00" {
		t.Fatalf("unexpected zero fare: %q", r2[8])
	}
}

func TestWriteCSVStoreError(t *testing.T) {
	wantErr := errors.New("connection refused")
	var buf bytes.Buffer
	err := NewService(&stubLister{err: wantErr}).WriteCSV(context.Background(), &buf, time.Now(), time.Now())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written on store failure, got %q", buf.String())
	}
}
