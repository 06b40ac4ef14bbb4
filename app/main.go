package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chweng/bike-radar/app/api"
	"github.com/chweng/bike-radar/app/cfg"
	"github.com/chweng/bike-radar/app/database"
	"github.com/chweng/bike-radar/app/ingest"
	"github.com/chweng/bike-radar/app/stations"
	"github.com/chweng/bike-radar/app/tasks"
	"github.com/chweng/bike-radar/app/youbike"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	log.Printf("Starting Bike Radar server (version %s)...", appCfg.Version)

	// Database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName, appCfg.DBSSLMode)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Printf("Connected to database successfully")

	// Run migrations
	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database schema at version %d (dirty: %v)", version, dirty)

	// Initialize repositories
	stationRepo := database.NewStationRepository(db)
	statusRepo := database.NewStatusRepository(db)
	logRepo := database.NewLogRepository(db)

	// Initialize core components
	feedClient := youbike.NewClient(&http.Client{}, appCfg.FeedURL, appCfg.UserAgent)
	pipeline := ingest.NewPipeline(feedClient, stationRepo, statusRepo, logRepo)
	nearbyQuery := stations.NewNearbyQuery(stationRepo)

	// Initialize and start scheduler
	log.Printf("Starting background scheduler with %d workers (interval: %ds)...",
		appCfg.WorkerCount, appCfg.IngestInterval)
	scheduler := tasks.NewScheduler(pipeline)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(pipeline, nearbyQuery, stationRepo, statusRepo, logRepo)
	server := api.NewServer(apiHandler, appCfg.IngestAccessKey)

	// Create HTTP server with timeouts
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("API endpoints available:")
		log.Printf("  Nearby stations: http://localhost:%s/stations/nearby?lat=<lat>&lon=<lon>&dist=<meters>", appCfg.Port)
		log.Printf("  Station status:  http://localhost:%s/stations/<sno>/status", appCfg.Port)
		log.Printf("  Health check:    http://localhost:%s/health", appCfg.Port)
		log.Printf("  Ingest logs:     http://localhost:%s/logs", appCfg.Port)
		log.Printf("  Trigger ingest:  http://localhost:%s/ingest (POST)", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Bike Radar server started successfully!")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	log.Println("Background scheduler stopped")

	log.Println("Bike Radar server shutdown complete")
}
