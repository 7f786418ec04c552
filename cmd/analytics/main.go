package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"commerce-be/internal/config"
	"commerce-be/internal/handler"
	"commerce-be/internal/middleware"
	"commerce-be/internal/repository"
	"commerce-be/internal/service"
	"commerce-be/pkg/database"
	"commerce-be/pkg/logger"
	"commerce-be/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	server      *http.Server
	log         *logger.Logger
	mu          sync.Mutex
	closed      bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Stop accepting new requests first
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		}
	}

	if r.db != nil {
		r.db.Close()
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load("8003")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, "analytics-service")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting analytics service")

	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	redisClient, err := redis.NewClient(cfg.RedisURL, cfg.RedisNamespace, log.Logger)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}

	// Wire repositories and services
	analyticsRepo := repository.NewAnalyticsRepository(db)
	realtime := service.NewRealtimeService(redisClient, log)
	reportCache := service.NewReportCache(redisClient, log)
	analytics := service.NewAnalyticsService(analyticsRepo, realtime, reportCache, log)

	router := setupRouter(cfg, log, analytics, db, redisClient)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		db:          db,
		redisClient: redisClient,
		server:      server,
		log:         log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}
}

// setupRouter configures and returns the HTTP router
func setupRouter(cfg *config.Config, log *logger.Logger, analytics service.Analytics, db *database.PostgresDB, redisClient *redis.Client) *chi.Mux {
	trackingHandler := handler.NewTrackingHandler(analytics, log)
	reportHandler := handler.NewReportHandler(analytics, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, "analytics-service", log)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r := chi.NewRouter()
	r.Use(middleware.CORS(corsConfig, log))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tracking", func(r chi.Router) {
			r.Post("/view", trackingHandler.TrackView)
			r.Post("/sale", trackingHandler.TrackSale)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.SecretKey, log))
				r.Post("/activity", trackingHandler.TrackActivity)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/realtime", reportHandler.Realtime)
			r.Get("/daily/{date}", reportHandler.DailyStats)
			r.Get("/products/{productID}/daily/{date}", reportHandler.ProductStats)
			r.Get("/sales", reportHandler.Sales)
			r.Get("/product-views", reportHandler.ProductViews)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(cfg.SecretKey, log))
				r.Get("/activities", reportHandler.UserActivities)
				r.Post("/daily-metrics", reportHandler.UpdateDailyMetrics)
				r.Delete("/cache", reportHandler.InvalidateCache)
			})
		})
	})

	return r
}
