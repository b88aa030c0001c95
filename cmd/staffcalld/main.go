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

	"staffcall-backend/config"
	"staffcall-backend/internal/account"
	"staffcall-backend/internal/api"
	"staffcall-backend/internal/db"
	"staffcall-backend/internal/membership"
	"staffcall-backend/internal/notification"
	"staffcall-backend/internal/notificationtype"
	"staffcall-backend/internal/push"
	"staffcall-backend/internal/ratelimit"
	"staffcall-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "staffcall ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	// Push delivery
	gateway := push.NewGateway(cfg.Push.GatewayURL, cfg.Push.Timeout)
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, notification.NewResolver(appStore), gateway)

	var browser *push.WebPush
	if cfg.Push.WebPushEnabled() {
		browser = push.NewWebPush(&webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}, appStore)
		pool.SetBrowserSender(browser)
		logger.Println("browser push enabled")
	} else {
		logger.Println("VAPID keys not configured; browser push disabled")
	}
	pool.Start(ctx)

	limiter := ratelimit.New(appStore)
	go limiter.RunSweeper(ctx, cfg.RateLimit.SweepInterval)

	notifications := notification.NewService(appStore, pool)
	notifications.SetLimiter(limiter)

	router := api.NewRouter(api.Services{
		Accounts:      account.NewService(appStore, limiter),
		Memberships:   membership.NewService(appStore),
		Notifications: notifications,
		Types:         notificationtype.NewService(appStore),
		WebPush:       browser,
	}, cfg.Server)
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}
	cancel()

	logger.Println("Server gracefully stopped")
}
