package handler

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/sendfy/campaign-engine/internal/db"
)

// HealthHandler reports service health
type HealthHandler struct {
	database *db.DB
	cache    *redis.Client
	logger   *slog.Logger
}

// NewHealthHandler creates a new health handler. cache may be nil when
// Redis is not configured.
func NewHealthHandler(database *db.DB, cache *redis.Client, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		database: database,
		cache:    cache,
		logger:   logger,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":   "ok",
		"database": "ok",
		"cache":    "ok",
	}
	httpStatus := http.StatusOK

	if err := h.database.Health(r.Context()); err != nil {
		h.logger.Error("database health check failed", slog.String("error", err.Error()))
		status["status"] = "degraded"
		status["database"] = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	}

	if h.cache == nil {
		status["cache"] = "disabled"
	} else if err := h.cache.Ping(r.Context()).Err(); err != nil {
		h.logger.Warn("redis health check failed", slog.String("error", err.Error()))
		// The shortener cache is optional: a down Redis degrades link
		// shortening but does not take the service down.
		status["cache"] = "unavailable"
	}

	respondJSON(w, httpStatus, status)
}
