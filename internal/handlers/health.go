package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// CacheChecker is satisfied by cache.CacheService.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db    *gorm.DB
	cache CacheChecker
}

// NewHealthHandler builds the health endpoint. cache may be nil when the
// server runs without Redis.
func NewHealthHandler(db *gorm.DB, cache CacheChecker) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	services := fiber.Map{"database": "connected"}
	healthy := true

	if err := h.pingDB(ctx); err != nil {
		services["database"] = err.Error()
		healthy = false
	}

	if h.cache == nil {
		services["redis"] = "disabled"
	} else if err := h.cache.HealthCheck(ctx); err != nil {
		services["redis"] = err.Error()
		healthy = false
	} else {
		services["redis"] = "connected"
	}

	status, code := "ok", fiber.StatusOK
	if !healthy {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"services": services,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
