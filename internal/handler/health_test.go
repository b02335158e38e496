package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deppfellow/go-insurance/internal/lib/health"
	"github.com/deppfellow/go-insurance/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthServer(checks ...health.Check) *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Logger: &logger,
		Health: health.NewChecker("test", time.Second, &logger, nil, checks...),
	}
}

func probe(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name   string
		checks []health.Check
		status int
	}{
		{
			name: "all healthy",
			checks: []health.Check{
				{Name: "database", Required: true, Probe: probe(nil)},
				{Name: "redis", Probe: probe(nil)},
			},
			status: http.StatusOK,
		},
		{
			name: "redis down is advisory",
			checks: []health.Check{
				{Name: "database", Required: true, Probe: probe(nil)},
				{Name: "redis", Probe: probe(errors.New("connection refused"))},
			},
			status: http.StatusOK,
		},
		{
			name: "database down",
			checks: []health.Check{
				{Name: "database", Required: true, Probe: probe(errors.New("connection refused"))},
			},
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(newHealthServer(tt.checks...))

			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)
			require.NoError(t, h.CheckHealth(c))
			assert.Equal(t, tt.status, rec.Code)

			var report health.Report
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.Equal(t, "test", report.Environment)
			assert.Len(t, report.Checks, len(tt.checks))
		})
	}
}

func TestServeOpenAPIUI(t *testing.T) {
	page := filepath.Join(t.TempDir(), "openapi.html")
	require.NoError(t, os.WriteFile(page, []byte("<html>docs</html>"), 0o600))

	h := NewOpenAPIHandler(nil)
	h.page = page

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), rec)
	require.NoError(t, h.ServeOpenAPIUI(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "docs")
}

func TestServeOpenAPIUI_MissingPage(t *testing.T) {
	h := NewOpenAPIHandler(nil)
	h.page = filepath.Join(t.TempDir(), "missing.html")

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), httptest.NewRecorder())
	assert.Error(t, h.ServeOpenAPIUI(c))
}
