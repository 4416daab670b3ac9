package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"simex/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type stubCache struct{ err error }

func (s stubCache) HealthCheck(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	db := testutil.NewDB(t)

	tests := []struct {
		name   string
		cache  CacheChecker
		status int
		redis  string
	}{
		{"all up", stubCache{}, http.StatusOK, "connected"},
		{"no redis configured", nil, http.StatusOK, "disabled"},
		{"redis down", stubCache{err: errors.New("redis connection failed")}, http.StatusServiceUnavailable, "redis connection failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(db, tt.cache).HealthCheck)

			status, body := doRequest(t, app, http.MethodGet, "/health", "")

			assert.Equal(t, tt.status, status)
			services := body["services"].(map[string]interface{})
			assert.Equal(t, "connected", services["database"])
			assert.Equal(t, tt.redis, services["redis"])
		})
	}
}
