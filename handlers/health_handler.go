package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type dbPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health checks.
type HealthHandler struct {
	db           dbPinger
	redis        pinger
	storage      pinger
	checkTimeout time.Duration
}

// NewHealthHandler takes nil for optional components that are not configured.
func NewHealthHandler(db dbPinger, redisClient, storageClient pinger) *HealthHandler {
	return &HealthHandler{
		db:           db,
		redis:        redisClient,
		storage:      storageClient,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and basic component statuses.
// @Summary Health check
// @Description Returns overall status with database, Valkey and object store connectivity results
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
		overallStatus = "down"
	} else if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "down"
		overallStatus = "down"
	}

	redisStatus := optionalStatus(ctx, h.redis)
	storageStatus := optionalStatus(ctx, h.storage)

	if overallStatus == "ok" && (redisStatus == "down" || storageStatus == "down") {
		overallStatus = "degraded"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"database": map[string]any{
				"status": dbStatus,
			},
			"redis": map[string]any{
				"status": redisStatus,
			},
			"storage": map[string]any{
				"status": storageStatus,
			},
		},
	})
}

func optionalStatus(ctx context.Context, p pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
