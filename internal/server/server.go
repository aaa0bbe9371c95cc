// Package server exposes the query engine over a JSON RPC endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yairfalse/regiondex/internal/telemetry"
)

// Config holds the server dependencies.
type Config struct {
	Handler *RPCHandler
	Metrics http.Handler // optional Prometheus handler
	Logger  *telemetry.Logger
}

// Server wraps the fiber app.
type Server struct {
	app *fiber.App
}

// New creates the fiber app and registers every route.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "regiondex",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestLogger(cfg.Logger))

	app.Get("/health", cfg.Handler.HandleHealth)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	v1 := app.Group("/api/v1")
	v1.Post("/rpc", cfg.Handler.HandleRPC)

	return &Server{app: app}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestLogger returns a middleware that logs HTTP requests
func requestLogger(logger *telemetry.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.WithContext(c.UserContext()).Debug().
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request")

		return err
	}
}
