package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	grpcapi "rental-booking-backend/internal/api/grpc"
	httpapi "rental-booking-backend/internal/api/http"
	"rental-booking-backend/internal/bootstrap"
	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Apply database migrations before serving")
	flag.Parse()

	// Load .env when present
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.InitializeWithFile(cfg.Log.Level, cfg.Log.Format, &logger.FileOptions{
		Path:       cfg.Log.File.Path,
		MaxSizeMB:  cfg.Log.File.MaxSizeMB,
		MaxBackups: cfg.Log.File.MaxBackups,
		MaxAgeDays: cfg.Log.File.MaxAgeDays,
		Compress:   cfg.Log.File.Compress,
	})
	logger.Info("Starting Rental Booking Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Booking configuration", "timezone", cfg.Booking.Timezone, "allow_same_day_turnover", cfg.Booking.AllowSameDayTurnover)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, *migrate)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	// Initialize services
	svcs := bootstrap.NewServices(cfg, store)

	// Rate limiting for the public endpoints
	rateLimiter, err := httpapi.NewRateLimiter(cfg.RateLimit.RedisURL)
	if err != nil {
		logger.Error("Failed to initialize rate limiter", "error", err)
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	defer rateLimiter.Close()

	router, err := httpapi.NewRouter(httpapi.Dependencies{
		Booking:            svcs.Booking,
		Coupon:             svcs.Coupon,
		Fleet:              svcs.Fleet,
		Auth:               svcs.Auth,
		Tokens:             svcs.Tokens,
		Limiter:            rateLimiter,
		QuoteRate:          cfg.RateLimit.Quote,
		CouponValidateRate: cfg.RateLimit.CouponValidate,
		Ping:               store.Ping,
	})
	if err != nil {
		logger.Error("Failed to build router", "error", err)
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Set up the gRPC health server when a port is configured
	var health *grpcapi.HealthServer
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		health = grpcapi.NewHealthServer(store.Ping, 0)
		go health.Watch(ctx)
		go func() {
			if err := health.Serve(lis); err != nil {
				logger.Error("gRPC health server error", "error", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		logger.Error("HTTP server error", "error", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if health != nil {
		health.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
