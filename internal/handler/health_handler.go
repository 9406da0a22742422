package handler

import (
	"context"
	"net/http"

	"notes-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Pinger reports whether the backing database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health check endpoint
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a health handler. db may be nil, which skips the database check.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck reports service health; ?check=db also pings the database
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	response := echo.Map{"status": "ok"}

	if c.QueryParam("check") == "db" && h.db != nil {
		if err := h.db.Ping(c.Request().Context()); err != nil {
			logger.FromContext(c).Error("Database ping error", zap.Error(err))
			response["status"] = "error"
			response["db_status"] = "error"
			return c.JSON(http.StatusServiceUnavailable, response)
		}
		response["db_status"] = "ok"
	}

	return c.JSON(http.StatusOK, response)
}
