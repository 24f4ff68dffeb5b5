package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GabeGiancarlo/rideshare-app/internal/config"
	"github.com/GabeGiancarlo/rideshare-app/internal/database"
	"github.com/GabeGiancarlo/rideshare-app/internal/handler"
	"github.com/GabeGiancarlo/rideshare-app/internal/middleware"
	"github.com/GabeGiancarlo/rideshare-app/internal/queue"
	"github.com/GabeGiancarlo/rideshare-app/internal/repository"
	"github.com/GabeGiancarlo/rideshare-app/internal/router"
)

func main() {
	cfg := config.Load() // Load environment config

	pass := database.ResolvePassword(cfg.DBPass, cfg.DBUser)
	db, err := database.Open(cfg.DBUser, pass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	riders := repository.NewRiderRepo(db)
	drivers := repository.NewDriverRepo(db)
	rides := repository.NewRideRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Redis is optional: when unreachable, rate limiting and response
	// caching degrade to pass-through.
	rdb := config.NewRedisClient()

	// Ride events land on RabbitMQ; the consumer appends them to the
	// ride log and reconnects on broker failures.
	go func() {
		if err := queue.StartRideConsumer(); err != nil {
			log.Printf("ride-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	if rl := config.LoadRateLimitConfig(); rl.Enabled {
		e.Use(middleware.NewTokenBucket(rl, rdb))
	}
	var cache echo.MiddlewareFunc
	if cc := config.LoadCacheConfig(); cc.Enabled {
		cache = middleware.ResponseCache(cc, rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, riders, drivers, tokens))
	router.RegisterDriver(e, handler.NewDriverHandler(drivers, rides), cfg.JWTSecret, cache)
	router.RegisterRider(e, handler.NewRiderHandler(riders, drivers, rides), cfg.JWTSecret, cache)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
