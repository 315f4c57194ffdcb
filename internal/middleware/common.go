package middleware

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/formgate/formgate-api/internal/config"
)

// Options customises the middleware registration pipeline.
type Options struct {
	Logger *zerolog.Logger
}

// Register attaches the common middlewares used across the relay. The CORS
// allow-list comes from configuration since the relay is called from browser
// forms on third-party sites.
func Register(app *fiber.App, cfg config.Config, opts Options) {
	requestLogger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		requestLogger = *opts.Logger
	}

	app.Use(recover.New())
	app.Use(CorrelationID())
	app.Use(Observability(requestLogger, cfg.APIPrefix))
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: strings.Join(cfg.AllowedMethods, ","),
		AllowHeaders: strings.Join(cfg.AllowedHeaders, ","),
		MaxAge:       cfg.CORSMaxAge,
	}))
}
