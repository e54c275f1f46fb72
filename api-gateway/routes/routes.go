package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pinned-app/pinned/api-gateway/config"
	"github.com/pinned-app/pinned/api-gateway/health"
	"github.com/pinned-app/pinned/api-gateway/middleware"
	"github.com/pinned-app/pinned/api-gateway/proxy"
	"github.com/pinned-app/pinned/pkg/logger"
)

// RouteDefinition defines a route mapping
type RouteDefinition struct {
	Prefix       string
	ServiceName  string
	Description  string
	RequireAuth  bool // Every request must carry a valid token
	OptionalAuth bool // Token forwarded when present, not required
}

// Routes holds all route definitions. Browsing stalls, reviews and the
// map is public; the directory service enforces ownership and author
// checks on mutations itself.
var Routes = []RouteDefinition{
	{
		Prefix:      "/auth",
		ServiceName: "directory",
		Description: "Authentication endpoints (login, register)",
	},
	{
		Prefix:      "/users",
		ServiceName: "directory",
		Description: "Profile management",
		RequireAuth: true,
	},
	{
		Prefix:       "/stalls",
		ServiceName:  "directory",
		Description:  "Stall directory, menus and reviews",
		OptionalAuth: true,
	},
	{
		Prefix:       "/reviews",
		ServiceName:  "directory",
		Description:  "Review deletion and voting",
		OptionalAuth: true,
	},
	{
		Prefix:      "/map",
		ServiceName: "directory",
		Description: "Campus map pins",
	},
}

// SetupRoutes configures all routes in the gateway
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig, redisClient *redis.Client) {
	reverseProxy := proxy.NewReverseProxy(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway quick health check (no downstream checks)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	// Liveness probe (for Kubernetes)
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "alive",
		})
	})

	// Readiness probe (checks downstream instances)
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllInstances(ctx)

		statusCode := fiber.StatusOK
		if healthStatus.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(healthStatus)
	})

	// Detailed instance health checks
	app.Get("/health/services", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		return c.JSON(healthChecker.CheckAllInstances(ctx))
	})

	// API routes overview
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Pinned API Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})

	// Register all service routes
	for _, route := range Routes {
		registerServiceRoutes(app, route, reverseProxy, redisClient)
	}
}

// registerServiceRoutes registers all HTTP methods for a service prefix
func registerServiceRoutes(app *fiber.App, route RouteDefinition, proxyHandler *proxy.ReverseProxy, redisClient *redis.Client) {
	handler := func(c *fiber.Ctx) error {
		err := proxyHandler.ProxyRequest(c, route.ServiceName)

		// Cached directory pages go stale the moment a write lands
		if err == nil && redisClient != nil && isMutation(c.Method()) && c.Response().StatusCode() < 400 {
			if invErr := middleware.InvalidateCache(redisClient, "cache:*"); invErr != nil {
				logger.Logger.Warn().Err(invErr).Msg("Cache invalidation failed, entries expire by TTL")
			}
		}
		return err
	}

	var middlewares []fiber.Handler
	if route.RequireAuth {
		middlewares = append(middlewares, middleware.AuthMiddleware())
	} else if route.OptionalAuth {
		middlewares = append(middlewares, middleware.OptionalAuthMiddleware())
	}

	group := app.Group(route.Prefix, middlewares...)
	group.All("/*", handler)

	// Also handle the exact prefix path (without /*)
	if len(middlewares) > 0 {
		app.All(route.Prefix, append(middlewares, handler)...)
	} else {
		app.All(route.Prefix, handler)
	}
}

func isMutation(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}
