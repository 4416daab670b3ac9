// Package routes wires the HTTP handlers onto the fiber app.
package routes

import (
	"time"

	"simex/internal/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups everything SetupRoutes mounts. Metrics may be nil.
type Handlers struct {
	Wallet  *handlers.WalletHandler
	Health  *handlers.HealthHandler
	Metrics fiber.Handler
}

// RateLimit bounds mutating wallet calls per client IP. Max <= 0 disables it.
type RateLimit struct {
	Max        int
	Expiration time.Duration
}

func SetupRoutes(app *fiber.App, h Handlers, rl RateLimit) {
	app.Get("/health", h.Health.HealthCheck)
	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics)
	}

	api := app.Group("/api")
	setupWalletRoutes(api, h.Wallet, mutationLimiter(rl))
}

func setupWalletRoutes(router fiber.Router, h *handlers.WalletHandler, limit fiber.Handler) {
	wallet := router.Group("/wallet")

	// Deposits
	wallet.Post("/deposits", limit, h.Deposit)
	wallet.Post("/deposits/currency", limit, h.DepositByCurrency)

	// Holds
	wallet.Post("/holds", limit, h.LockFunds)
	wallet.Get("/holds/:id", h.GetHold)
	wallet.Post("/holds/:id/release", limit, h.ReleaseHold)
	wallet.Post("/holds/:id/capture", limit, h.CaptureHold)

	// Queries
	wallet.Get("/users/:userId/balances", h.GetBalances)
	wallet.Get("/users/:userId/holds", h.ListHolds)
}

func mutationLimiter(rl RateLimit) fiber.Handler {
	if rl.Max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        rl.Max,
		Expiration: rl.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
				"code":  "RATE_LIMITED",
			})
		},
	})
}
