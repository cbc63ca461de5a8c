// README: Ride handlers: board reads, create/assign/advance/cancel/remove, comments.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxiboard/internal/authz"
	"taxiboard/internal/modules/ride"
	"taxiboard/internal/types"
)

type RideHandler struct {
	rides *ride.Service
}

func NewRideHandler(rides *ride.Service) *RideHandler {
	return &RideHandler{rides: rides}
}

type pointReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type createRideReq struct {
	ClientName     string    `json:"client_name"`
	PickupAddress  string    `json:"pickup_address"`
	PickupPoint    *pointReq `json:"pickup_point"`
	DropoffAddress string    `json:"dropoff_address"`
	DropoffPoint   *pointReq `json:"dropoff_point"`
	RequestedAt    *string   `json:"requested_at"` // RFC3339
	FareCents      int64     `json:"fare_cents"`
	DistanceKm     float64   `json:"distance_km"`
	DriverID       *string   `json:"driver_id"`
}

func (h *RideHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpCreate)
	if !ok {
		return
	}
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := ride.CreateCommand{
		ClientName:     req.ClientName,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		Fare:           types.Money{Amount: req.FareCents, Currency: "EUR"},
		DistanceKm:     req.DistanceKm,
		Actor:          actor,
	}
	if req.PickupPoint != nil {
		cmd.PickupPoint = types.Point{Lat: req.PickupPoint.Lat, Lng: req.PickupPoint.Lng}
	}
	if req.DropoffPoint != nil {
		cmd.DropoffPoint = types.Point{Lat: req.DropoffPoint.Lat, Lng: req.DropoffPoint.Lng}
	}
	if req.RequestedAt != nil {
		t, err := time.Parse(time.RFC3339, *req.RequestedAt)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid requested_at")
			return
		}
		cmd.RequestedAt = &t
	}
	if req.DriverID != nil {
		d := types.ID(*req.DriverID)
		cmd.DriverID = &d
	}

	id, err := h.rides.Create(c.Request.Context(), cmd)
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ride_id": id, "status": ride.StatusNew})
}

func (h *RideHandler) Get(c *gin.Context) {
	if _, ok := requireActor(c, authz.OpView); !ok {
		return
	}
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Board serves the day's rides in chronological board order. Drivers see
// only their own assignments; the office sees everything.
func (h *RideHandler) Board(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpView)
	if !ok {
		return
	}
	day := time.Now()
	if q := c.Query("day"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid day")
			return
		}
		day = parsed
	}

	var rides []ride.Ride
	var err error
	if actor.Role == types.RoleDriver {
		rides, err = h.rides.ListByDriver(c.Request.Context(), actor.ID, day)
	} else {
		rides, err = h.rides.ListByDay(c.Request.Context(), day, ride.Status(c.Query("status")))
	}
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day.Format("2006-01-02"), "rides": rides})
}

type assignReq struct {
	DriverID string `json:"driver_id"`
}

func (h *RideHandler) Assign(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpAssign)
	if !ok {
		return
	}
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "missing driver_id")
		return
	}
	err := h.rides.Assign(c.Request.Context(), ride.AssignCommand{
		RideID:   types.ID(c.Param("id")),
		DriverID: types.ID(req.DriverID),
		Actor:    actor,
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": ride.StatusNew})
}

type advanceReq struct {
	Target string `json:"target"`
}

func (h *RideHandler) Advance(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpAdvance)
	if !ok {
		return
	}
	var req advanceReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Target == "" {
		writeError(c, http.StatusBadRequest, "missing target")
		return
	}
	err := h.rides.Advance(c.Request.Context(), ride.AdvanceCommand{
		RideID: types.ID(c.Param("id")),
		Target: ride.Status(req.Target),
		Actor:  actor,
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Target})
}

func (h *RideHandler) Cancel(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpCancel)
	if !ok {
		return
	}
	if err := h.rides.Cancel(c.Request.Context(), types.ID(c.Param("id")), actor); err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": ride.StatusCancelled})
}

// Remove hard-deletes a ride. One confirmed call is enough; the UI asks
// its single confirmation before issuing the request.
func (h *RideHandler) Remove(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpRemove)
	if !ok {
		return
	}
	if err := h.rides.Remove(c.Request.Context(), types.ID(c.Param("id")), actor); err != nil {
		writeRideError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateRideReq struct {
	ClientName     *string   `json:"client_name"`
	PickupAddress  *string   `json:"pickup_address"`
	PickupPoint    *pointReq `json:"pickup_point"`
	DropoffAddress *string   `json:"dropoff_address"`
	DropoffPoint   *pointReq `json:"dropoff_point"`
	RequestedAt    *string   `json:"requested_at"`
	ClearRequested bool      `json:"clear_requested"`
	FareCents      *int64    `json:"fare_cents"`
	DistanceKm     *float64  `json:"distance_km"`
}

func (h *RideHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpCreate)
	if !ok {
		return
	}
	var req updateRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := ride.UpdateDetailsCommand{
		RideID:         types.ID(c.Param("id")),
		ClientName:     req.ClientName,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		ClearRequested: req.ClearRequested,
		DistanceKm:     req.DistanceKm,
		Actor:          actor,
	}
	if req.PickupPoint != nil {
		p := types.Point{Lat: req.PickupPoint.Lat, Lng: req.PickupPoint.Lng}
		cmd.PickupPoint = &p
	}
	if req.DropoffPoint != nil {
		p := types.Point{Lat: req.DropoffPoint.Lat, Lng: req.DropoffPoint.Lng}
		cmd.DropoffPoint = &p
	}
	if req.RequestedAt != nil {
		t, err := time.Parse(time.RFC3339, *req.RequestedAt)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid requested_at")
			return
		}
		cmd.RequestedAt = &t
	}
	if req.FareCents != nil {
		m := types.Money{Amount: *req.FareCents, Currency: "EUR"}
		cmd.Fare = &m
	}

	if err := h.rides.UpdateDetails(c.Request.Context(), cmd); err != nil {
		writeRideError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type commentReq struct {
	Text string `json:"text"`
}

func (h *RideHandler) AddComment(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpComment)
	if !ok {
		return
	}
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	comment, err := h.rides.AddComment(c.Request.Context(), ride.CommentCommand{
		RideID: types.ID(c.Param("id")),
		Text:   req.Text,
		Actor:  actor,
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *RideHandler) Comments(c *gin.Context) {
	if _, ok := requireActor(c, authz.OpView); !ok {
		return
	}
	comments, err := h.rides.Comments(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
