package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/formgate/formgate-api/internal/config"
	"github.com/formgate/formgate-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmitHandler *handler.SubmitHandler
}

// Register wires the HTTP routes into the fiber application. All endpoint
// paths come from configuration.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group(cfg.APIPrefix, func(c *fiber.Ctx) error {
		for key, value := range cfg.CustomHeaders {
			c.Set(key, value)
		}
		return c.Next()
	})

	api.Get(cfg.HealthEndpoint, handler.HealthCheck(cfg))

	if deps.SubmitHandler != nil {
		api.Post(cfg.FormEndpoint, deps.SubmitHandler.Handle)
		// Legacy alias kept for callers of the old contact endpoint.
		api.Post(cfg.ContactEndpoint, deps.SubmitHandler.Handle)
	}
}
