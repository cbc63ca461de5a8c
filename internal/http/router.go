// README: HTTP router registration on gin.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxiboard/internal/http/handlers"
	"taxiboard/internal/http/middleware"
	"taxiboard/internal/infra"
	"taxiboard/internal/modules/driver"
	"taxiboard/internal/modules/export"
	"taxiboard/internal/modules/ride"
	"taxiboard/internal/modules/suggestion"
)

type RouterDeps struct {
	Rides       *ride.Service
	Drivers     *driver.Service
	Suggestions *suggestion.Service
	Export      *export.Service
	Verifier    infra.TokenVerifier
}

func NewRouter(deps RouterDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	rideHandler := handlers.NewRideHandler(deps.Rides)
	api.POST("/rides", rideHandler.Create)
	api.GET("/rides/:id", rideHandler.Get)
	api.PATCH("/rides/:id", rideHandler.Update)
	api.DELETE("/rides/:id", rideHandler.Remove)
	api.POST("/rides/:id/assign", rideHandler.Assign)
	api.POST("/rides/:id/advance", rideHandler.Advance)
	api.POST("/rides/:id/cancel", rideHandler.Cancel)
	api.POST("/rides/:id/comments", rideHandler.AddComment)
	api.GET("/rides/:id/comments", rideHandler.Comments)
	api.GET("/board", rideHandler.Board)

	driverHandler := handlers.NewDriverHandler(deps.Drivers)
	api.POST("/drivers", driverHandler.Register)
	api.GET("/drivers", driverHandler.List)
	api.PUT("/drivers/:id/availability", driverHandler.SetAvailability)
	api.PUT("/drivers/:id/fcm_token", driverHandler.UpdateFCMToken)

	suggestionHandler := handlers.NewSuggestionHandler(deps.Suggestions, deps.Drivers)
	api.POST("/suggestions", suggestionHandler.Suggest)

	exportHandler := handlers.NewExportHandler(deps.Export)
	api.GET("/export.csv", exportHandler.CSV)

	return r
}
