// Package server hosts the HTTP surface: the fiber app, route handlers,
// payload validation, the guard middleware, and the JSON error contract.
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/booklyhq/bookly/auth"
	"github.com/booklyhq/bookly/repository"
)

// Options carries the collaborators the server routes depend on.
type Options struct {
	Auther *auth.Auther
	Guard  *auth.Guard
	Repos  repository.Manager
	Logger auth.Logger
}

// Server is the HTTP front of the service.
type Server struct {
	app    *fiber.App
	auther *auth.Auther
	guard  *auth.Guard
	repos  repository.Manager
	logger auth.Logger
}

func New(opts Options) *Server {
	s := &Server{
		auther: opts.Auther,
		guard:  opts.Guard,
		repos:  opts.Repos,
		logger: opts.Logger,
	}

	if s.logger == nil {
		s.logger = noopLogger{}
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "bookly",
		ErrorHandler: s.errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(requestid.New())

	s.registerRoutes()

	return s
}

// App exposes the fiber app, mostly for tests driving app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api/v1")

	s.registerAuthRoutes(api.Group("/users"))
	s.registerBookRoutes(api.Group("/books"))
	s.registerReviewRoutes(api.Group("/reviews"))
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
