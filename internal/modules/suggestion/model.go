// README: Suggestion engine inputs/outputs and the informational driver score.
package suggestion

import (
	"fmt"
	"time"

	"taxiboard/internal/types"
)

// Candidate is a snapshot of one free driver at suggestion time.
type Candidate struct {
	ID          types.ID
	Name        string
	LastKnown   types.Point
	LastAddress string
	RidesToday  int
}

// Suggestion is one ranked candidate. Ordering is by Duration ascending
// (driver id breaks ties); Score and Details are display-only.
type Suggestion struct {
	DriverID    types.ID      `json:"driver_id"`
	DriverName  string        `json:"driver_name"`
	DistanceKm  float64       `json:"distance_km"`
	Duration    time.Duration `json:"duration_ns"`
	DurationMin int           `json:"duration_min"`
	RidesToday  int           `json:"rides_today"`
	Score       int           `json:"score"`
	Details     string        `json:"details"`
}

// scoreDriver reproduces the dispatch office's 0-100 grading: distance
// tiers worth up to 40 points, today's workload up to 30, and a flat 30
// for schedule availability.
func scoreDriver(distanceKm float64, ridesToday int) (int, string) {
	var distScore int
	switch {
	case distanceKm <= 10:
		distScore = 40
	case distanceKm <= 20:
		distScore = 30
	case distanceKm <= 30:
		distScore = 20
	case distanceKm <= 50:
		distScore = 10
	}

	var loadScore int
	switch {
	case ridesToday <= 2:
		loadScore = 30
	case ridesToday <= 4:
		loadScore = 20
	case ridesToday <= 6:
		loadScore = 10
	}

	const availScore = 30
	details := fmt.Sprintf("distance: %.1f km (%d pts) | load: %d rides (%d pts) | availability: ok (%d pts)",
		distanceKm, distScore, ridesToday, loadScore, availScore)
	return distScore + loadScore + availScore, details
}
