package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/avereth/testing-center/internal/config"     // Internal config loader
	"github.com/avereth/testing-center/internal/database"   // MySQL connection setup
	"github.com/avereth/testing-center/internal/handler"    // HTTP handlers
	"github.com/avereth/testing-center/internal/middleware" // Redis cache and rate limit middleware
	"github.com/avereth/testing-center/internal/negotiation" // Slot negotiation engine
	"github.com/avereth/testing-center/internal/queue"      // Record event consumer
	"github.com/avereth/testing-center/internal/repository" // DB repositories
	"github.com/avereth/testing-center/internal/router"     // Route registration
	queue_publisher "github.com/avereth/testing-center/internal/service" // Record event publisher
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env always wins

	cfg := config.Load() // Load environment config

	// Connect to MySQL and verify the connection before serving traffic.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the single pooled connection.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	hours := repository.NewHoursRepo(db)
	tests := repository.NewTestRepo(db)
	enrollments := repository.NewEnrollmentRepo(db)
	seats := repository.NewSeatRepo(db)

	// The negotiator keeps live scheduling views; commits broadcast on the
	// record fanout exchange so other instances converge.
	neg := negotiation.New(enrollments, hours, queue_publisher.PublishRecordChanged)

	// Consume record change events in the background.  The consumer runs
	// its own reconnect loop and only returns on unrecoverable setup errors.
	go func() {
		if err := queue.StartRecordConsumer(neg.HandleEvent); err != nil {
			log.Printf("record consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance

	// Redis backs the response cache and the rate limiter.  A nil client
	// (Redis down at startup) disables both rather than failing requests.
	rdb := config.NewRedisClient()
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	router.RegisterRoutes(e) // Health check

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)

	adminHandler := handler.NewAdminHandler(hours, tests, enrollments, seats, queue_publisher.PublishRecordChanged)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	scheduleHandler := handler.NewScheduleHandler(neg)
	router.RegisterSchedule(e, scheduleHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
