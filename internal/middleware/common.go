package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Config customises the middleware registration pipeline.
type Config struct {
	Logger *zerolog.Logger
	// RateLimit is the number of requests a client address may make per RateWindow. Zero disables it.
	RateLimit  int
	RateWindow time.Duration
}

// Register attaches the middlewares shared by the local listeners.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.Nop()
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}

	app.Use(recover.New())
	app.Use(CorrelationID())
	app.Use(Observability(requestLogger))
	if cfg.RateLimit > 0 {
		app.Use(RateLimit("local", cfg.RateLimit, cfg.RateWindow))
	}
}
