// README: Suggestion handler; builds the candidate snapshot and runs the engine.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxiboard/internal/authz"
	"taxiboard/internal/modules/driver"
	"taxiboard/internal/modules/suggestion"
	"taxiboard/internal/types"
)

type SuggestionHandler struct {
	engine  *suggestion.Service
	drivers *driver.Service
}

func NewSuggestionHandler(engine *suggestion.Service, drivers *driver.Service) *SuggestionHandler {
	return &SuggestionHandler{engine: engine, drivers: drivers}
}

type suggestReq struct {
	PickupAddress string    `json:"pickup_address"`
	PickupPoint   *pointReq `json:"pickup_point"`
	RequestedAt   *string   `json:"requested_at"`
}

// Suggest returns the free drivers ranked by estimated travel cost to the
// pickup. A 503 means the distance lookup failed and the secretary should
// pick manually from the unranked driver list.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	if _, ok := requireActor(c, authz.OpSuggest); !ok {
		return
	}
	var req suggestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.PickupAddress == "" && req.PickupPoint == nil {
		writeError(c, http.StatusBadRequest, "missing pickup")
		return
	}

	day := time.Now()
	if req.RequestedAt != nil {
		if t, err := time.Parse(time.RFC3339, *req.RequestedAt); err == nil {
			day = t
		}
	}

	free, err := h.drivers.ListAvailable(c.Request.Context())
	if err != nil {
		writeDriverError(c, err)
		return
	}
	candidates := make([]suggestion.Candidate, 0, len(free))
	for _, d := range free {
		if d.LastKnownAddress == "" && d.LastKnownPoint.IsZero() {
			continue // never dropped anyone yet, nothing to rank from
		}
		ridesToday, err := h.drivers.RidesToday(c.Request.Context(), d.ID, day)
		if err != nil {
			writeDriverError(c, err)
			return
		}
		candidates = append(candidates, suggestion.Candidate{
			ID:          d.ID,
			Name:        d.Name,
			LastKnown:   d.LastKnownPoint,
			LastAddress: d.LastKnownAddress,
			RidesToday:  ridesToday,
		})
	}

	sreq := suggestion.Request{PickupAddress: req.PickupAddress, Candidates: candidates}
	if req.PickupPoint != nil {
		sreq.PickupPoint = types.Point{Lat: req.PickupPoint.Lat, Lng: req.PickupPoint.Lng}
	}
	suggestions, err := h.engine.Suggest(c.Request.Context(), sreq)
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
