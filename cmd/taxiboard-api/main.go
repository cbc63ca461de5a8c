// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taxiboard/internal/config"
	httptransport "taxiboard/internal/http"
	"taxiboard/internal/infra"
	"taxiboard/internal/maps"
	"taxiboard/internal/modules/driver"
	"taxiboard/internal/modules/export"
	"taxiboard/internal/modules/notify"
	"taxiboard/internal/modules/ride"
	"taxiboard/internal/modules/suggestion"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("TAXIBOARD_FIREBASE_PROJECT_ID is required")
	}
	if cfg.Maps.APIKey == "" {
		log.Fatal("TAXIBOARD_MAPS_API_KEY is required")
	}

	app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, app)
	if err != nil {
		log.Fatalf("firebase auth: %v", err)
	}
	messagingClient, err := infra.NewMessaging(ctx, app)
	if err != nil {
		log.Fatalf("firebase messaging: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	distanceSvc, err := maps.NewDistanceService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}

	driverStore := driver.NewStore(dbPool)
	driverSvc := driver.NewService(driverStore)

	notifySvc := notify.NewService(messagingClient)

	rideStore := ride.NewStore(dbPool)
	boardCache := ride.NewBoardCache(redisClient, cfg.Board.CacheTTL)
	rideSvc := ride.NewService(rideStore, boardCache, driverSvc, notifySvc)

	suggestionSvc := suggestion.NewService(distanceSvc, cfg.Suggestion)
	exportSvc := export.NewService(rideStore)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Rides:       rideSvc,
		Drivers:     driverSvc,
		Suggestions: suggestionSvc,
		Export:      exportSvc,
		Verifier:    verifier,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("taxiboard-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
