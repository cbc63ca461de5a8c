// README: Driver suggestion engine; one batched matrix lookup, cost-ascending ranking.
package suggestion

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"taxiboard/internal/config"
	"taxiboard/internal/maps"
	"taxiboard/internal/types"
)

// ErrUnavailable means the distance lookup failed or timed out. The caller
// falls back to an unranked list; a partial or guessed ranking is never
// returned.
var ErrUnavailable = errors.New("driver suggestion unavailable")

// DistanceMatrix is the travel-cost lookup boundary (Google Distance
// Matrix in production, a stub in tests).
type DistanceMatrix interface {
	Matrix(ctx context.Context, origins []string, destination string) ([]maps.Cost, error)
}

type Service struct {
	matrix DistanceMatrix
	cfg    config.SuggestionConfig
}

func NewService(matrix DistanceMatrix, cfg config.SuggestionConfig) *Service {
	return &Service{matrix: matrix, cfg: cfg}
}

type Request struct {
	PickupAddress string
	PickupPoint   types.Point
	Candidates    []Candidate
}

// Suggest ranks the free drivers by estimated travel cost from their last
// drop-off to the new pickup. One batched matrix call covers the whole
// candidate set; it is bounded by the configured timeout. The result is
// ordered ascending by estimated duration, ties broken by driver id for
// determinism. Stateless: purely a function over the given snapshot.
func (s *Service) Suggest(ctx context.Context, req Request) ([]Suggestion, error) {
	if len(req.Candidates) == 0 {
		return []Suggestion{}, nil
	}
	destination := req.PickupAddress
	if destination == "" {
		if req.PickupPoint.IsZero() {
			return nil, ErrUnavailable
		}
		destination = req.PickupPoint.LatLng()
	}

	origins := make([]string, len(req.Candidates))
	for i, c := range req.Candidates {
		if c.LastAddress != "" {
			origins[i] = c.LastAddress
			continue
		}
		origins[i] = c.LastKnown.LatLng()
	}

	tctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	costs, err := s.matrix.Matrix(tctx, origins, destination)
	if err != nil {
		slog.Warn("distance matrix lookup failed", "err", err)
		return nil, ErrUnavailable
	}
	if len(costs) != len(req.Candidates) {
		return nil, ErrUnavailable
	}

	out := make([]Suggestion, len(req.Candidates))
	for i, c := range req.Candidates {
		if !costs[i].OK {
			// one unroutable origin would skew the whole ranking
			return nil, ErrUnavailable
		}
		score, details := scoreDriver(costs[i].DistanceKm, c.RidesToday)
		out[i] = Suggestion{
			DriverID:    c.ID,
			DriverName:  c.Name,
			DistanceKm:  costs[i].DistanceKm,
			Duration:    costs[i].Duration,
			DurationMin: int(costs[i].Duration.Minutes()),
			RidesToday:  c.RidesToday,
			Score:       score,
			Details:     details,
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration < out[j].Duration
		}
		return out[i].DriverID < out[j].DriverID
	})
	return out, nil
}
