package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marina-guard/backend/config"
	"marina-guard/backend/internal/api/handler"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/jwt"
)

func setupEngine(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server: config.ServerConfig{CORS: config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}}},
		Auth:   config.AuthConfig{JWTSecret: "test-secret-key-for-unit-tests", AccessTokenTTL: time.Minute},
	}
	var engine *gin.Engine
	require.NotPanics(t, func() {
		engine = Setup(cfg, handler.NewHandler(&service.Service{}, nil), jwt.NewManager(&cfg.Auth), deps, zap.NewNop())
	})
	return engine
}

func TestSetup_Routes(t *testing.T) {
	engine := setupEngine(t, Deps{})

	routes := make(map[string]bool)
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/auth/login",
		"POST /api/v1/patterns/generate",
		"GET /api/v1/shifts/my/calendar.ics",
		"POST /api/v1/duty/clock-in",
		"POST /api/v1/timesheets/bulk-approve",
		"PUT /api/v1/timesheets/entries/:entry_id",
		"POST /api/v1/timesheets/:id/entries",
		"GET /api/v1/timesheets/:id/adjustments",
		"GET /api/v1/export/timesheets",
		"POST /api/v1/equipment/:id/checkout",
		"POST /api/v1/incidents/:id/sign",
	} {
		assert.True(t, routes[want], want)
	}
}

func TestSetup_AuthRequired(t *testing.T) {
	engine := setupEngine(t, Deps{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/timesheets", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetup_HealthAndReady(t *testing.T) {
	engine := setupEngine(t, Deps{Ready: func() error { return errors.New("db down") }})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
