package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gcbaptista/go-query-decomposer/api"
	"github.com/gcbaptista/go-query-decomposer/config"
	"github.com/gcbaptista/go-query-decomposer/internal/analytics"
	"github.com/gcbaptista/go-query-decomposer/internal/decompose"
	"github.com/gcbaptista/go-query-decomposer/internal/metrics"
	"github.com/gcbaptista/go-query-decomposer/internal/stopwords"
)

const analyticsSaveInterval = time.Minute

func main() {
	// Define command-line flags
	var (
		help       = flag.Bool("help", false, "Show help message")
		version    = flag.Bool("version", false, "Show version information")
		configFile = flag.String("config", "", "YAML settings file")
		port       = flag.String("port", config.DefaultPort, "Port to run the server on")
		dataDir    = flag.String("data-dir", config.DefaultDataDir, "Directory to store analytics snapshots")
		stopWords  = flag.String("stopwords", "", "YAML stop-word corpus (built-in corpus when empty)")
	)

	flag.Parse()

	// Handle help flag
	if *help {
		fmt.Printf("Go Query Decomposer - Splits multi-variable analytics queries into candidate sub-phrases\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                                # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000                    # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --config decomposer.yaml       # Load settings from a file\n", os.Args[0])
		fmt.Printf("  %s --stopwords stopwords.yaml     # Use a custom stop-word corpus\n", os.Args[0])
		return
	}

	// Handle version flag
	if *version {
		fmt.Printf("Go Query Decomposer v1.0.0\n")
		fmt.Printf("Delimiter and combinatorial splits with caching, analytics and metrics\n")
		return
	}

	settings := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		settings = loaded
		log.Printf("Loaded settings from %s", *configFile)
	}

	// Explicit flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			settings.Port = *port
		case "data-dir":
			settings.DataDir = *dataDir
		case "stopwords":
			settings.StopWordsFile = *stopWords
		}
	})

	stopWordSet := stopwords.Default()
	if settings.StopWordsFile != "" {
		set, err := stopwords.LoadFile(settings.StopWordsFile)
		if err != nil {
			log.Fatalf("Failed to load stop words: %v", err)
		}
		stopWordSet = set
		log.Printf("Loaded %d stop-word entries from %s", set.Len(), settings.StopWordsFile)
	}

	recorder, err := metrics.NewRecorder("", prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	log.Printf("Using data directory: %s", settings.DataDir)
	analyticsService := analytics.NewService(filepath.Join(settings.DataDir, analytics.DataFileName))

	decomposer, err := decompose.NewService(settings, stopWordSet,
		decompose.WithMetrics(recorder),
		decompose.WithEventTracker(analyticsService))
	if err != nil {
		log.Fatalf("Failed to create decomposition service: %v", err)
	}

	// Initialize Gin router
	router := gin.Default()
	router.Use(api.RequestIDMiddleware())
	router.Use(api.CORSMiddleware())
	router.Use(api.RequestSizeLimitMiddleware(settings.MaxRequestBytes))

	// Setup API routes
	api.SetupRoutes(router, decomposer, analyticsService, promhttp.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go saveAnalyticsPeriodically(ctx, analyticsService)

	server := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server
	go func() {
		log.Printf("Starting server on port %s...", settings.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: Server shutdown failed: %v", err)
	}
	if err := analyticsService.Save(); err != nil {
		log.Printf("Warning: Failed to save analytics data: %v", err)
	}
}

func saveAnalyticsPeriodically(ctx context.Context, service *analytics.Service) {
	ticker := time.NewTicker(analyticsSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := service.Save(); err != nil {
				log.Printf("Warning: Failed to save analytics data: %v", err)
			}
		}
	}
}
