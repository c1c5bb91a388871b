package handler

import (
	"github.com/gofiber/fiber/v2"

	"docconvert/internal/service"
)

// RouteConfig carries the values the routes are parameterized with.
type RouteConfig struct {
	Greeting  string
	FileField string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, svc service.ConversionService, rc RouteConfig) {
	app.Get("/", Greeting(rc.Greeting))
	app.Post("/uploads", UploadAndConvert(svc, rc.FileField))

	app.Get("/health", HealthCheck(svc))
	app.Get("/healthz", LivenessProbe())

	app.Get("/conversions", ListConversions(svc))
	app.Get("/conversions/:id", GetConversion(svc))
}
