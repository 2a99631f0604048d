package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"hostel-facilities-backend/config"
	"hostel-facilities-backend/internal/api"
	"hostel-facilities-backend/internal/booking"
	"hostel-facilities-backend/internal/db"
	"hostel-facilities-backend/internal/events"
	"hostel-facilities-backend/internal/notification"
	"hostel-facilities-backend/internal/reaper"
	"hostel-facilities-backend/internal/store"
)

// eventSink is satisfied by both the RabbitMQ publisher and events.Nop.
type eventSink interface {
	booking.Publisher
	Close() error
}

func main() {
	logger := log.New(os.Stdout, "facilityd ", log.LstdFlags)

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("failed to read .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret must be configured (or FACILITY_AUTH_JWT_SECRET)")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	var sink eventSink = events.Nop{}
	if cfg.Events.Enabled {
		pub, err := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			logger.Fatalf("failed to connect event publisher: %v", err)
		}
		sink = pub
		logger.Printf("publishing events to exchange %s", cfg.Events.Exchange)
	}
	defer sink.Close()

	var webpushOptions *webpush.Options
	var notifier booking.Notifier
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		notifier = pool
	} else {
		logger.Println("VAPID keys are not configured; push notifications are disabled")
	}

	svc := booking.NewService(appStore, booking.PolicyFromConfig(cfg.Booking), notifier, sink)

	reaperSvc := reaper.NewService(&cfg.Reaper, svc.Policy().GracePeriod, appStore, svc)
	go reaperSvc.Run(ctx)

	router := api.NewRouter(api.NewHandler(svc, appStore, webpushOptions), cfg)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
