package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/go-insurance/internal/config"
	"github.com/deppfellow/go-insurance/internal/errs"
	"github.com/deppfellow/go-insurance/internal/handler"
	"github.com/deppfellow/go-insurance/internal/lib/health"
	"github.com/deppfellow/go-insurance/internal/model"
	"github.com/deppfellow/go-insurance/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// claimsOnly serves claim lookups; every other operation is unused here.
type claimsOnly struct {
	handler.InsuranceService
	claims map[string]*model.Claim
}

func (s claimsOnly) GetClaim(_ context.Context, claimID string) (*model.Claim, error) {
	if claim, ok := s.claims[claimID]; ok {
		return claim, nil
	}
	return nil, errs.NewNotFoundError("Claim not found", true, nil)
}

func newRouterUnderTest(t *testing.T) (http.Handler, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server:  config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
		},
		Logger: &logger,
		Health: health.NewChecker("test", time.Second, &logger, nil, health.Check{
			Name:     "database",
			Required: true,
			Probe:    func(context.Context) error { return nil },
		}),
	}

	svc := claimsOnly{claims: map[string]*model.Claim{
		"C1": {ClaimID: "C1", PersonID: "P1", Status: model.ClaimStatusOpen},
	}}

	h := &handler.Handlers{
		Health:    handler.NewHealthHandler(s),
		OpenAPI:   handler.NewOpenAPIHandler(s),
		Insurance: handler.NewInsuranceHandler(s, svc),
	}

	return NewRouter(s, h), &buf
}

func TestNewRouter_ServesInsuranceRoutes(t *testing.T) {
	r, buf := newRouterUnderTest(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_claim/C1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var claim model.Claim
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &claim))
	assert.Equal(t, "C1", claim.ClaimID)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), "insurance routes registered")
}

func TestNewRouter_OperationReachesHandlerLogs(t *testing.T) {
	r, buf := newRouterUnderTest(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_claim/C1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var completed map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["message"] == "request completed successfully" {
			completed = entry
		}
	}

	require.NotNil(t, completed)
	assert.Equal(t, "get_claim", completed["operation"])
	assert.Equal(t, "/get_claim/:id", completed["route"])
	assert.Equal(t, "C1", completed["claim.id"])
	assert.Equal(t, "open", completed["claim.status"])
}

func TestNewRouter_SystemRoutes(t *testing.T) {
	r, _ := newRouterUnderTest(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/docs", rec.Header().Get("Location"))
}

func TestNewRouter_ErrorsUseErrorShape(t *testing.T) {
	r, _ := newRouterUnderTest(t)

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/get_claim/C404", http.StatusNotFound},
		{http.MethodGet, "/get_person/", http.StatusNotFound},
		{http.MethodPost, "/get_claim/C1", http.StatusMethodNotAllowed},
		{http.MethodGet, "/list_person?limit=0x", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			require.Equal(t, tt.status, rec.Code)

			var body errs.HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.NotEmpty(t, body.Code)
		})
	}
}

func TestNewRouter_Status(t *testing.T) {
	r, _ := newRouterUnderTest(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Healthy())
	assert.Contains(t, report.Checks, "database")
}
