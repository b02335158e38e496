package middleware

import (
	"net/http"

	"github.com/deppfellow/go-insurance/internal/errs"
	"github.com/deppfellow/go-insurance/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

// TracingMiddleware owns the New Relic echo middleware. Both methods are
// pass-throughs when New Relic is not configured.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware starts a transaction per request and stores it in the
// request context.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing tags the transaction with the request and, once the
// handler returns, with the insurance operation and outcome. Only server
// errors are noticed; a rejected claim or unknown person is an expected
// answer, not a fault.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())

			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			attrs := outcomeAttributes(c, err)
			for k, v := range attrs {
				txn.AddAttribute(k, v)
			}
			if err != nil && attrs["http.status_code"].(int) >= http.StatusInternalServerError {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			return err
		}
	}
}

// outcomeAttributes describes how the request ended. The status is taken
// from err when there is one, because the error handler has not written the
// response yet.
func outcomeAttributes(c echo.Context, err error) map[string]interface{} {
	attrs := map[string]interface{}{
		"http.status_code": statusFromError(c.Response().Status, err),
	}

	if operation := GetOperation(c); operation != "" {
		attrs["insurance.operation"] = operation
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		attrs["error.code"] = httpErr.Code
	}

	return attrs
}
