// README: Google Distance Matrix wrapper used by the driver suggestion engine.
package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// Cost is one origin→destination estimate out of a matrix lookup.
type Cost struct {
	DistanceKm float64
	Duration   time.Duration
	OK         bool
}

// DistanceService handles interactions with the Google Maps Distance Matrix API.
type DistanceService struct {
	client *maps.Client
}

// NewDistanceService creates a new DistanceService with the given API key.
func NewDistanceService(apiKey string) (*DistanceService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &DistanceService{client: client}, nil
}

// Matrix returns one travel cost per origin to the single destination,
// from a single batched Distance Matrix request. It assumes driving mode.
// Elements the API could not route are returned with OK=false; callers
// decide whether a partial result is usable.
func (s *DistanceService) Matrix(ctx context.Context, origins []string, destination string) ([]Cost, error) {
	r := &maps.DistanceMatrixRequest{
		Origins:      origins,
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
		Language:     "fr", // dispatch addresses are French
	}

	resp, err := s.client.DistanceMatrix(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(resp.Rows) != len(origins) {
		return nil, fmt.Errorf("maps api returned %d rows for %d origins", len(resp.Rows), len(origins))
	}

	costs := make([]Cost, len(resp.Rows))
	for i, row := range resp.Rows {
		if len(row.Elements) == 0 {
			continue
		}
		el := row.Elements[0]
		if el.Status != "OK" {
			continue
		}
		costs[i] = Cost{
			DistanceKm: float64(el.Distance.Meters) / 1000.0,
			Duration:   el.Duration,
			OK:         true,
		}
	}
	return costs, nil
}
