package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/FACorreiaa/fintrack-api/internal/http/middleware"
)

// Pinger checks database connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouteRegistrar is implemented by every domain handler.
type RouteRegistrar interface {
	RegisterRoutes(router fiber.Router)
}

// Routes bundles everything route registration needs.
type Routes struct {
	Logger        *slog.Logger
	Pinger        Pinger
	Sessions      middleware.SessionProvider
	SessionHeader string
	RateLimiter   *middleware.RateLimiter
	Metrics       *middleware.PrometheusMiddleware
	Gatherer      prometheus.Gatherer
	Handlers      []RouteRegistrar
}

// Register attaches middleware, operational endpoints, and the domain
// handlers to the app. Domain routes live under /api behind authentication.
func Register(app *fiber.App, r Routes) {
	app.Use(middleware.RequestID())
	app.Use(cors.New())
	app.Use(middleware.Logger(r.Logger))
	if r.Metrics != nil {
		app.Use(r.Metrics.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := r.Pinger.Ping(ctx); err != nil {
			return WriteError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// Liveness probe, no dependencies checked.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	if r.Gatherer != nil {
		app.Get("/metrics", metricsHandler(r.Gatherer))
	}

	api := app.Group("/api", middleware.Auth(r.Sessions, r.SessionHeader))
	if r.RateLimiter != nil {
		api.Use(r.RateLimiter.Handler())
	}
	for _, h := range r.Handlers {
		h.RegisterRoutes(api)
	}
}

// metricsHandler bridges promhttp into fiber via the fasthttp adaptor.
func metricsHandler(gatherer prometheus.Gatherer) fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	)
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
