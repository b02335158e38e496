// Package router builds the echo instance: the global middleware chain,
// the system routes and the insurance route table.
package router

import (
	"github.com/deppfellow/go-insurance/internal/handler"
	"github.com/deppfellow/go-insurance/internal/middleware"
	"github.com/deppfellow/go-insurance/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request logger needs the request ID and the
	// context logger, and Recover must sit closest to the handlers.
	router.Use(
		middlewares.RateLimit.Limiter(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h, s.Logger)
	RegisterInsuranceRoutes(router, h.Insurance, s.Logger)

	return router
}
