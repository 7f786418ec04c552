package handler

import (
	"net/http"

	"commerce-be/pkg/database"
	"commerce-be/pkg/logger"
	"commerce-be/pkg/redis"
)

// HealthHandler reports service liveness and dependency health
type HealthHandler struct {
	db      *database.PostgresDB
	redis   *redis.Client
	service string
	logger  *logger.Logger
}

// NewHealthHandler creates a new health handler. redis may be nil for
// services that do not use it.
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client, service string, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redisClient,
		service: service,
		logger:  logger,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	checks := map[string]string{}

	if err := h.db.Health(ctx); err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		checks["database"] = "unhealthy"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "healthy"
	}

	if h.redis != nil {
		if err := h.redis.Health(ctx); err != nil {
			h.logger.WithError(err).Error("Redis health check failed")
			checks["redis"] = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "healthy"
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	respondJSON(w, status, map[string]interface{}{
		"status":  overall,
		"service": h.service,
		"checks":  checks,
	}, h.logger)
}
