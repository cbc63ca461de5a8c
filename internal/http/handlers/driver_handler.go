// README: Driver handlers: listing, availability, FCM token registration.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxiboard/internal/authz"
	"taxiboard/internal/modules/driver"
	"taxiboard/internal/types"
)

type DriverHandler struct {
	drivers *driver.Service
}

func NewDriverHandler(drivers *driver.Service) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

type registerDriverReq struct {
	Name string `json:"name"`
}

func (h *DriverHandler) Register(c *gin.Context) {
	if _, ok := requireActor(c, authz.OpCreate); !ok {
		return
	}
	var req registerDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.drivers.Register(c.Request.Context(), driver.RegisterCommand{Name: req.Name})
	if err != nil {
		writeDriverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"driver_id": id})
}

func (h *DriverHandler) List(c *gin.Context) {
	if _, ok := requireActor(c, authz.OpView); !ok {
		return
	}
	drivers, err := h.drivers.List(c.Request.Context())
	if err != nil {
		writeDriverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

type availabilityReq struct {
	Available *bool `json:"available"`
}

func (h *DriverHandler) SetAvailability(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpDriverUpdate)
	if !ok {
		return
	}
	id := types.ID(c.Param("id"))
	// drivers may only flip their own flag
	if actor.Role == types.RoleDriver && actor.ID != id {
		writeError(c, http.StatusForbidden, "cannot modify another driver")
		return
	}
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		writeError(c, http.StatusBadRequest, "missing available")
		return
	}
	if err := h.drivers.SetAvailability(c.Request.Context(), id, *req.Available); err != nil {
		writeDriverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type fcmTokenReq struct {
	Token string `json:"token"`
}

func (h *DriverHandler) UpdateFCMToken(c *gin.Context) {
	actor, ok := requireActor(c, authz.OpDriverUpdate)
	if !ok {
		return
	}
	id := types.ID(c.Param("id"))
	if actor.Role == types.RoleDriver && actor.ID != id {
		writeError(c, http.StatusForbidden, "cannot modify another driver")
		return
	}
	var req fcmTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.drivers.UpdateFCMToken(c.Request.Context(), id, req.Token); err != nil {
		writeDriverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
