package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ailuckly/SmartPropertyManagement/internal/auth"
	"github.com/ailuckly/SmartPropertyManagement/internal/config"
	"github.com/ailuckly/SmartPropertyManagement/internal/database"
	"github.com/ailuckly/SmartPropertyManagement/internal/handler"
	"github.com/ailuckly/SmartPropertyManagement/internal/middleware"
	"github.com/ailuckly/SmartPropertyManagement/internal/queue"
	"github.com/ailuckly/SmartPropertyManagement/internal/repository"
	"github.com/ailuckly/SmartPropertyManagement/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	properties := repository.NewPropertyRepo(db)
	leases := repository.NewLeaseRepo(db)
	payments := repository.NewPaymentRepo(db)
	maintenance := repository.NewMaintenanceRepo(db)
	notifications := repository.NewNotificationRepo(db)
	stats := repository.NewStatsRepo(db)

	// Seed the role table so registration and grants never race a missing row.
	if err := users.EnsureRoles(context.Background()); err != nil {
		log.Fatalf("seed roles: %v", err)
	}

	sessions := auth.NewSessionIssuer(cfg, tokens)

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens, sessions),
		Users:         handler.NewUserHandler(cfg, users),
		Properties:    handler.NewPropertyHandler(properties, users),
		Leases:        handler.NewLeaseHandler(leases, properties, users),
		Payments:      handler.NewPaymentHandler(payments, leases),
		Maintenance:   handler.NewMaintenanceHandler(maintenance, leases),
		Notifications: handler.NewNotificationHandler(notifications),
		Dashboard:     handler.NewDashboardHandler(stats),
	}

	identity := middleware.ResolveIdentity(cfg, users)

	// Redis is optional; without it the limiter lets everything through.
	rdb := config.NewRedisClient()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Queue consumer turns payment and maintenance events into notification
	// rows. It reconnects on its own, so a missing broker only costs events.
	go queue.StartNotificationConsumer(notifications)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, h, identity, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
