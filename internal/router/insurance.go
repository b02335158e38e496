package router

import (
	"net/http"

	"github.com/deppfellow/go-insurance/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	OpGetPerson    = "get_person"
	OpGetClaim     = "get_claim"
	OpCreateClaim  = "create_claim"
	OpApproveClaim = "approve_claim"
	OpRejectClaim  = "reject_claim"
	OpAddPolicy    = "add_policy"
	OpAddClaim     = "add_claim"
	OpListPerson   = "list_person"
	OpChangeHolder = "change_holder"
	OpAddPerson    = "add_person"
	OpGetPolicy    = "get_policy"
)

// Controller serves the insurance operations. Path parameters (:id, :holder)
// reach it exactly as the client sent them.
type Controller interface {
	GetPerson(c echo.Context) error
	GetClaim(c echo.Context) error
	CreateClaim(c echo.Context) error
	ApproveClaim(c echo.Context) error
	RejectClaim(c echo.Context) error
	AddPolicy(c echo.Context) error
	AddClaim(c echo.Context) error
	ListPerson(c echo.Context) error
	ChangeHolder(c echo.Context) error
}

// PersonRegistrar is implemented by controllers that can also create persons.
type PersonRegistrar interface {
	AddPerson(c echo.Context) error
}

// PolicyLookup is implemented by controllers that can read a single policy.
type PolicyLookup interface {
	GetPolicy(c echo.Context) error
}

// RouteAdder is satisfied by both *echo.Echo and *echo.Group.
type RouteAdder interface {
	Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route
}

// Route binds one method and path to a controller operation.
type Route struct {
	Method    string
	Path      string
	Operation string
	Bind      func(Controller) echo.HandlerFunc
}

// InsuranceRoutes returns the insurance route table.
func InsuranceRoutes() []Route {
	return []Route{
		{http.MethodGet, "/get_person/:id", OpGetPerson, func(c Controller) echo.HandlerFunc { return c.GetPerson }},
		{http.MethodGet, "/get_claim/:id", OpGetClaim, func(c Controller) echo.HandlerFunc { return c.GetClaim }},
		{http.MethodGet, "/create_claim/:holder", OpCreateClaim, func(c Controller) echo.HandlerFunc { return c.CreateClaim }},
		{http.MethodGet, "/approve_claim/:holder", OpApproveClaim, func(c Controller) echo.HandlerFunc { return c.ApproveClaim }},
		{http.MethodGet, "/reject_claim/:holder", OpRejectClaim, func(c Controller) echo.HandlerFunc { return c.RejectClaim }},
		{http.MethodGet, "/add_policy", OpAddPolicy, func(c Controller) echo.HandlerFunc { return c.AddPolicy }},
		{http.MethodGet, "/add_claim", OpAddClaim, func(c Controller) echo.HandlerFunc { return c.AddClaim }},
		{http.MethodGet, "/approve_claim", OpApproveClaim, func(c Controller) echo.HandlerFunc { return c.ApproveClaim }},
		{http.MethodGet, "/list_person", OpListPerson, func(c Controller) echo.HandlerFunc { return c.ListPerson }},
		{http.MethodGet, "/change_holder/:holder", OpChangeHolder, func(c Controller) echo.HandlerFunc { return c.ChangeHolder }},
	}
}

func addPersonRoute(pr PersonRegistrar) Route {
	return Route{
		Method:    http.MethodGet,
		Path:      "/add_person",
		Operation: OpAddPerson,
		Bind:      func(Controller) echo.HandlerFunc { return pr.AddPerson },
	}
}

func getPolicyRoute(pl PolicyLookup) Route {
	return Route{
		Method:    http.MethodGet,
		Path:      "/get_policy/:policy_num",
		Operation: OpGetPolicy,
		Bind:      func(Controller) echo.HandlerFunc { return pl.GetPolicy },
	}
}

// RegisterInsuranceRoutes registers the insurance table on r. Controllers
// that also implement PersonRegistrar or PolicyLookup get GET /add_person
// and GET /get_policy/:policy_num.
func RegisterInsuranceRoutes(r RouteAdder, ctrl Controller, logger *zerolog.Logger) []*echo.Route {
	routes := InsuranceRoutes()
	if pr, ok := ctrl.(PersonRegistrar); ok {
		routes = append(routes, addPersonRoute(pr))
	}
	if pl, ok := ctrl.(PolicyLookup); ok {
		routes = append(routes, getPolicyRoute(pl))
	}
	return RegisterRoutes(r, ctrl, routes, logger)
}

// RegisterRoutes registers routes in order. echo silently replaces a handler
// registered twice for the same method and path, so repeats are skipped here
// and the first registration wins.
func RegisterRoutes(r RouteAdder, ctrl Controller, routes []Route, logger *zerolog.Logger) []*echo.Route {
	seen := make(map[string]string, len(routes))
	registered := make([]*echo.Route, 0, len(routes))

	for _, rt := range routes {
		key := rt.Method + " " + rt.Path
		if first, dup := seen[key]; dup {
			logger.Warn().
				Str("method", rt.Method).
				Str("path", rt.Path).
				Str("operation", rt.Operation).
				Str("registered_operation", first).
				Msg("duplicate route skipped")
			continue
		}
		seen[key] = rt.Operation

		registered = append(registered, r.Add(rt.Method, rt.Path, rt.Bind(ctrl), tagOperation(rt.Operation, logger)))
	}

	logger.Info().Int("routes", len(registered)).Msg("insurance routes registered")
	return registered
}

// tagOperation records the operation on the echo context, where tracing
// and the handler pipeline read it, adds it to the request logger and logs
// the dispatch. The request and response are left untouched.
func tagOperation(operation string, fallback *zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetOperation(c, operation)

			base := middleware.GetLogger(c)
			if base.GetLevel() == zerolog.Disabled {
				base = fallback
			}

			tagged := base.With().Str("operation", operation).Logger()
			c.Set(middleware.LoggerKey, &tagged)

			tagged.Debug().
				Str("route", c.Path()).
				Msg("dispatching to controller")

			return next(c)
		}
	}
}
