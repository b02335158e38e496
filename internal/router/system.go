package router

import (
	"net/http"

	"github.com/deppfellow/go-insurance/internal/handler"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	OpStatus = "status"
	OpDocs   = "docs"
)

// registerSystemRoutes registers the endpoints outside the insurance table:
// health, the API reference page and its static assets. Health and docs are
// tagged like insurance routes so logs and traces name them too.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, logger *zerolog.Logger) {
	status := tagOperation(OpStatus, logger)
	r.GET("/status", h.Health.CheckHealth, status)
	r.HEAD("/status", h.Health.CheckHealth, status)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI, tagOperation(OpDocs, logger))
	r.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/docs")
	})
	r.Static("/static", "static")
}
