package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rental-booking-backend/internal/bootstrap"
	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/jobs"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-pickup-reminders', 'all-daily')")
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
	logger.Info("Starting Rental Booking Cronjob Runner...", "log_level", cfg.Log.Level, "timezone", cfg.Booking.Timezone)

	// Initialize storage
	store, closeStore, err := bootstrap.OpenStore(context.Background(), cfg, false)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	// Initialize services
	svcs := bootstrap.NewServices(cfg, store)
	jobServices := &jobs.Services{
		Booking:  svcs.Booking,
		Coupon:   svcs.Coupon,
		Notifier: svcs.Notifier,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "deactivate-expired-coupons":
		jobRunner.DeactivateExpiredCoupons()
	case "send-pickup-reminders":
		jobRunner.SendPickupReminders()
	case "send-balance-reminders":
		jobRunner.SendBalanceReminders()
	case "all-daily":
		jobRunner.RunAllDailyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - deactivate-expired-coupons\n")
		fmt.Printf("  - send-pickup-reminders\n")
		fmt.Printf("  - send-balance-reminders\n")
		fmt.Printf("  - all-daily\n")
		os.Exit(1)
	}
}
