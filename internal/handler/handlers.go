package handler

import (
	"github.com/deppfellow/go-insurance/internal/server"
	"github.com/deppfellow/go-insurance/internal/service"
)

type Handlers struct {
	Health    *HealthHandler
	OpenAPI   *OpenAPIHandler
	Insurance *InsuranceHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(s),
		OpenAPI:   NewOpenAPIHandler(s),
		Insurance: NewInsuranceHandler(s, services.Insurance),
	}
}
