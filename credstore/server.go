package credstore

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"

	session "github.com/goliatone/go-session"
)

// Server bundles the fiber app with its dependencies
type Server struct {
	App     *fiber.App
	DB      *bun.DB
	Service *Service
	Tokens  *TokenService
}

// New opens the database and builds the app from cfg
func New(ctx context.Context, cfg *Config, logger session.Logger) (*Server, error) {
	db, err := Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	tokens := NewTokenService(cfg, logger)
	service := NewService(
		NewUsers(db),
		NewBcryptHasher(cfg.BcryptCost),
		tokens,
		NewPhoneNormalizer(cfg.PhoneRegion),
		WithServiceLogger(logger),
		WithHashid(cfg.UseHashid),
		WithDebug(cfg.Debug),
	)

	return &Server{
		App:     NewApp(service, tokens, logger),
		DB:      db,
		Service: service,
		Tokens:  tokens,
	}, nil
}

// NewApp builds the fiber app: /health, /metrics and the /api group
func NewApp(service *Service, tokens *TokenService, logger session.Logger) *fiber.App {
	if logger == nil {
		logger = nopLogger{}
	}

	app := fiber.New(fiber.Config{
		AppName:               "credstore",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	NewHTTPController(service).RegisterRoutes(api, BearerAuth(tokens))

	return app
}

// Listen serves on addr until Shutdown
func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

// Shutdown stops the app and closes the database
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.App.ShutdownWithContext(ctx)
	if cerr := s.DB.Close(); err == nil {
		err = cerr
	}
	return err
}
