// README: Shared handler utilities (actor lookup, authz gate, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxiboard/internal/authz"
	"taxiboard/internal/http/middleware"
	"taxiboard/internal/modules/driver"
	"taxiboard/internal/modules/ride"
	"taxiboard/internal/modules/suggestion"
	"taxiboard/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// requireActor fetches the authenticated actor and checks the permission
// table; it writes the response itself on failure.
func requireActor(c *gin.Context, op authz.Operation) (types.Actor, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "not authenticated")
		return types.Actor{}, false
	}
	if err := authz.Check(actor.Role, op); err != nil {
		writeError(c, http.StatusForbidden, err.Error())
		return types.Actor{}, false
	}
	return actor, true
}

func writeRideError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ride.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ride.ErrNotFound), errors.Is(err, driver.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ride.ErrIllegalTransition), errors.Is(err, ride.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, suggestion.ErrUnavailable):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeDriverError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, driver.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, driver.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
