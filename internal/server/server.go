// Package server assembles the fiber application and runs it until its
// context is canceled.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	_ "docconvert/docs"
	"docconvert/internal/config"
	"docconvert/internal/http/handler"
	"docconvert/internal/http/middleware"
	"docconvert/internal/logging"
	"docconvert/internal/service"
)

const shutdownTimeout = 5 * time.Second

// Deps are the collaborators the HTTP server is built from. Metrics, Gatherer
// and RateLimitStore are optional.
type Deps struct {
	Config         *config.AppConfig
	Service        service.ConversionService
	Metrics        *middleware.PrometheusMiddleware
	Gatherer       prometheus.Gatherer
	RateLimitStore fiber.Storage
}

// New returns a configured fiber app with middleware and routes registered.
func New(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		AppName:               "docconvert",
		BodyLimit:             cfg.Server.BodyLimitMB * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler(),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(cfg.Location()))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	if d.Metrics != nil {
		app.Use(d.Metrics.Handler())
	}
	if d.RateLimitStore != nil {
		app.Use(middleware.RateLimit(cfg.RateLimit, d.RateLimitStore))
	}

	handler.RegisterRoutes(app, d.Service, handler.RouteConfig{
		Greeting:  cfg.Server.Greeting,
		FileField: cfg.Server.FileField,
	})

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// The doc has no host, so the UI targets whatever host served it.
	app.Get("/swagger/*", swagger.HandlerDefault)

	return app
}

// Run serves app on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, app *fiber.App, addr string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server listening", "addr", addr)
		return app.Listen(addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Warn("Shutdown signal received, closing server...")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			logging.Error("Server forced to shutdown", "error", err)
			return err
		}
		logging.Info("Server stopped cleanly")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
