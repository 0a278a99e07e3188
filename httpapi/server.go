// Package httpapi serves the admin resources over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/analytics"
	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

const shutdownTimeout = 5 * time.Second

// Config wires the server to its collaborators.
type Config struct {
	Registry *admin.Registry
	Store    pager.Store
	Logger   zerolog.Logger
	// Charts sets the default chart kinds of /analytics. Query parameters
	// override them per request.
	Charts analytics.ChartOptions
}

type Server struct {
	app      *fiber.App
	registry *admin.Registry
	store    pager.Store
	logger   zerolog.Logger
	charts   analytics.ChartOptions
}

func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("httpapi: registry is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("httpapi: store is required")
	}
	if err := cfg.Charts.Validate(); err != nil {
		return nil, fmt.Errorf("httpapi: %w", err)
	}

	s := &Server{
		registry: cfg.Registry,
		store:    cfg.Store,
		logger:   cfg.Logger,
		charts:   cfg.Charts,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "sparekart-admin",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(errorBody{Error: fe.Message})
			}
			return s.respondError(c, err)
		},
	})
	s.app.Use(requestLogger(s.logger))
	s.routes()

	return s, nil
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("cannot shut down: %w", err)
	}

	return <-errCh
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.app.Get("/metrics", s.handleMetrics)
	s.app.Get("/analytics", s.handleAnalytics)
	s.app.Get("/analytics/series", s.handleSeries)
	s.app.Get("/order-detail/:orderId", s.handleOrderDetail)

	for _, res := range s.registry.All() {
		path := "/" + res.Name()
		s.app.Get(path, s.handleList(res))
		s.app.Patch(path+"/:id", s.handleUpdate(res))
		s.app.Delete(path+"/:id", s.handleDelete(res))
	}
}

func requestLogger(l zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		ev := l.Info()
		if status >= fiber.StatusInternalServerError {
			ev = l.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = l.Warn()
		}

		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("request")

		return err
	}
}
