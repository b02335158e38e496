package handler

import (
	"time"

	"github.com/deppfellow/go-insurance/internal/middleware"
	"github.com/deppfellow/go-insurance/internal/model"
	"github.com/deppfellow/go-insurance/internal/server"
	"github.com/deppfellow/go-insurance/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler carries the shared dependencies of every concrete handler.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is an endpoint that receives a bound, validated request.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler writes a successful result and describes it for tracing.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	for k, v := range resultFields(result) {
		txn.AddAttribute(k, v)
	}
}

// resultFields names the records a response carries, for logs and traces.
func resultFields(result interface{}) map[string]interface{} {
	switch r := result.(type) {
	case *model.Claim:
		return map[string]interface{}{
			"claim.id":     r.ClaimID,
			"claim.status": string(r.Status),
			"policy.num":   r.PolicyNum,
			"person.id":    r.PersonID,
		}
	case *model.Policy:
		return map[string]interface{}{
			"policy.num": r.PolicyNum,
			"person.id":  r.PersonID,
		}
	case *model.Person:
		return map[string]interface{}{"person.id": r.PersonID}
	case *model.PersonRecord:
		return map[string]interface{}{
			"person.id":       r.PersonID,
			"person.policies": len(r.Policies),
			"person.claims":   len(r.Claims),
		}
	case *model.Page[model.Person]:
		return map[string]interface{}{
			"page.size":  len(r.Data),
			"page.total": r.Total,
		}
	}
	return nil
}

// handleRequest binds and validates req, runs handler, and writes the
// result. Routes outside the insurance table have no operation tag, so the
// route pattern stands in for it.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	logCtx := middleware.GetLogger(c).With().Str("route", route)
	operation := middleware.GetOperation(c)
	if operation == "" {
		operation = route
		logCtx = logCtx.Str("operation", operation)
	}
	logger := logCtx.Logger()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", operation)
	}

	logger.Info().Msg("handling request")

	if err := validation.BindAndValidate(c, req); err != nil {
		logger.Warn().
			Err(err).
			Dur("validation_duration", time.Since(start)).
			Msg("request validation failed")

		if txn != nil {
			txn.AddAttribute("validation.status", "failed")
		}
		return err
	}
	validationDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Fields(resultFields(result)).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle adapts a typed endpoint into an echo.HandlerFunc. A fresh request
// value is allocated for every call, so concurrent requests never share one.
//
//	e.GET("/get_claim/:id", Handle(h.Handler, h.getClaim, http.StatusOK))
func Handle[Req any, PReq interface {
	*Req
	validation.Validatable
}, Res any](
	h Handler,
	handler HandlerFunc[PReq, Res],
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := PReq(new(Req))
		return handleRequest(c, req, func(c echo.Context, req PReq) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}
