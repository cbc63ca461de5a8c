// README: Admin CSV export; flat tabular dump of ride records over a date range.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"taxiboard/internal/modules/ride"
)

// RideLister is the read slice of the ride store the export needs.
type RideLister interface {
	ListRange(ctx context.Context, from, to time.Time) ([]ride.Ride, error)
}

type Service struct {
	rides RideLister
}

func NewService(rides RideLister) *Service {
	return &Service{rides: rides}
}

var header = []string{
	"ride_id", "client_name", "pickup", "dropoff", "requested_at",
	"created_at", "driver_id", "status", "fare_eur", "distance_km",
}

// WriteCSV streams one row per ride over [from, to), in board order.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, from, to time.Time) error {
	rides, err := s.rides.ListRange(ctx, from, to)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range rides {
		r := &rides[i]
		requested := ""
		if r.RequestedAt != nil {
			requested = r.RequestedAt.Format(time.RFC3339)
		}
		driverID := ""
		if r.DriverID != nil {
			driverID = string(*r.DriverID)
		}
		row := []string{
			string(r.ID),
			r.ClientName,
			r.PickupAddress,
			r.DropoffAddress,
			requested,
			r.CreatedAt.Format(time.RFC3339),
			driverID,
			string(r.Status),
			fmt.Sprintf("%.2f", float64(r.Fare.Amount)/100),
			fmt.Sprintf("%.1f", r.DistanceKm),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
