package handler

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/go-insurance/internal/lib/health"
	"github.com/deppfellow/go-insurance/internal/middleware"
	"github.com/deppfellow/go-insurance/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the service and its dependencies are reachable.
type HealthHandler struct {
	Handler
	checker *health.Checker
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		checker: s.Health,
	}
}

// CheckHealth answers 200 when every required check passes and 503 otherwise.
// Advisory checks (redis) are reported but never flip the status.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	report := h.checker.Run(c.Request().Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
		logger.Warn().Msg("health check failed")
	} else {
		logger.Debug().Msg("health check passed")
	}

	if err := c.JSON(status, report); err != nil {
		logger.Error().Err(err).Msg("failed to write health check response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}
